// Package serrors provides enhanced errors carrying structured context.
//
// Errors created with serrors can carry key/value context pairs alongside
// the usual wrapped cause, and support errors.Is/errors.As the same way the
// standard library's wrapped errors do. A context pair is rendered as
// {key=value} when the error is formatted as a string, and as structured
// fields when logged through pkg/log.
package serrors

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap/zapcore"
)

type ctxPair struct {
	Key   string
	Value interface{}
}

type basicError struct {
	msg   string
	cause error
	ctx   []ctxPair
	// origin is the error this one was copied from by WithCtx, nil for
	// errors made by New or Wrap.
	origin *basicError
}

func (e *basicError) Error() string {
	var buf bytes.Buffer
	buf.WriteString(e.msg)
	if len(e.ctx) != 0 {
		buf.WriteString(" ")
		encodeContext(&buf, e.ctx)
	}
	if e.cause != nil {
		fmt.Fprintf(&buf, ": %s", e.cause)
	}
	return buf.String()
}

func (e *basicError) Unwrap() error {
	return e.cause
}

// Is reports whether target is the same sentinel: two *basicError values
// created from the same New() call (i.e. identical pointers) are equal;
// distinct New() calls are distinct errors even with the same message. A
// copy made by WithCtx is also equal to the error it was copied from.
func (e *basicError) Is(target error) bool {
	for o := e; o != nil; o = o.origin {
		if error(o) == target {
			return true
		}
	}
	return false
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging.
func (e *basicError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	for _, p := range e.ctx {
		zapAny(enc, p.Key, p.Value)
	}
	if e.cause != nil {
		enc.AddString("cause", e.cause.Error())
	}
	return nil
}

func zapAny(enc zapcore.ObjectEncoder, key string, v interface{}) {
	enc.AddString(key, fmt.Sprint(v))
}

// New creates a new sentinel error with the given message and context pairs
// (alternating key, value, key, value...). The returned error is a distinct
// value suitable for use as a package-level sentinel compared with errors.Is.
func New(msg string, ctx ...interface{}) error {
	return &basicError{msg: msg, ctx: pairs(ctx)}
}

// Wrap returns a new error that wraps cause with the given message and
// context. errors.Is(result, cause) is always true.
func Wrap(msg string, cause error, ctx ...interface{}) error {
	if cause == nil {
		return New(msg, ctx...)
	}
	return &basicError{msg: msg, cause: cause, ctx: pairs(ctx)}
}

// WithCtx returns a copy of err (if it is a serrors error) with additional
// context pairs appended, preserving Is/As semantics. If err is not a
// serrors error, it is wrapped with Wrap("error", err, ctx...).
func WithCtx(err error, ctx ...interface{}) error {
	var be *basicError
	if errors.As(err, &be) {
		clone := *be
		clone.ctx = append(append([]ctxPair{}, be.ctx...), pairs(ctx)...)
		clone.origin = be
		return &clone
	}
	return Wrap("error", err, ctx...)
}

func pairs(ctx []interface{}) []ctxPair {
	n := len(ctx) / 2
	out := make([]ctxPair, n)
	for i := 0; i < n; i++ {
		out[i] = ctxPair{Key: fmt.Sprint(ctx[2*i]), Value: ctx[2*i+1]}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Key < out[b].Key })
	return out
}

func encodeContext(buf *bytes.Buffer, pairs []ctxPair) {
	buf.WriteString("{")
	for i, p := range pairs {
		fmt.Fprintf(buf, "%s=%v", p.Key, p.Value)
		if i != len(pairs)-1 {
			buf.WriteString("; ")
		}
	}
	buf.WriteString("}")
}

// List aggregates multiple errors into one, e.g. validation of a
// configuration where several keys are malformed independently.
type List []error

func (l List) Error() string {
	if len(l) == 0 {
		return "no errors"
	}
	s := make([]string, len(l))
	for i, e := range l {
		s[i] = e.Error()
	}
	return fmt.Sprintf("[ %s ]", joinSemicolon(s))
}

func (l List) ToError() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func joinSemicolon(s []string) string {
	var buf bytes.Buffer
	for i, p := range s {
		buf.WriteString(p)
		if i != len(s)-1 {
			buf.WriteString("; ")
		}
	}
	return buf.String()
}
