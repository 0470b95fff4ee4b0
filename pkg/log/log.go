// Package log provides the context-scoped structured logger used across
// the synthesis engine: a zap.SugaredLogger reachable from a context.Context
// so that a worker goroutine, a strategy iteration, or a single convergence
// step can attach labels (worker id, iteration, seed) without threading a
// logger parameter through every function signature.
package log

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var (
	rootMu sync.RWMutex
	root   *zap.SugaredLogger
)

func init() {
	root = mustBuild("info")
}

func mustBuild(level string) *zap.SugaredLogger {
	lvl := zapcore.InfoLevel
	_ = lvl.UnmarshalText([]byte(level))
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), lvl)
	return zap.New(core).Sugar()
}

// Setup reconfigures the root logger with the given level
// ("debug"|"info"|"warn"|"error"). It is called once at application
// startup by private/app/launcher; library code never calls Setup.
func Setup(level string) {
	rootMu.Lock()
	defer rootMu.Unlock()
	root = mustBuild(level)
}

// Root returns the process-wide root logger. It is never nil.
func Root() *zap.SugaredLogger {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root
}

// CtxWith returns a new context carrying logger. Retrieve it with FromCtx.
func CtxWith(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	if ctx == nil {
		panic("nil context")
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromCtx returns the logger embedded in ctx, or Root() if none was
// attached. FromCtx never returns nil.
func FromCtx(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return Root()
	}
	if l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok && l != nil {
		return l
	}
	return Root()
}

// With returns a context and logger with the given labels attached, e.g.
//
//	ctx, logger := log.With(ctx, "worker", id, "seed", seed)
func With(ctx context.Context, labels ...interface{}) (context.Context, *zap.SugaredLogger) {
	l := FromCtx(ctx).With(labels...)
	return CtxWith(ctx, l), l
}

// HandlePanic recovers a panic in a goroutine and logs it at error level
// before re-panicking, so that a fan-out worker's crash is never silent.
func HandlePanic() {
	if r := recover(); r != nil {
		Root().Errorf("panic: %v", r)
		panic(r)
	}
}
