package serrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsg-ethz/snowcap/pkg/serrors"
)

func TestNew_IsItsOwnSentinel(t *testing.T) {
	err := serrors.New("boom")
	assert.True(t, errors.Is(err, err))
}

func TestNew_DistinctCallsAreDistinctSentinels(t *testing.T) {
	a := serrors.New("boom")
	b := serrors.New("boom")
	assert.False(t, errors.Is(a, b))
}

func TestWrap_IsTheWrappedSentinel(t *testing.T) {
	sentinel := serrors.New("not found")
	wrapped := serrors.Wrap("loading config", sentinel, "path", "/etc/x.toml")
	assert.True(t, errors.Is(wrapped, sentinel))
}

func TestWrap_NilCauseBehavesLikeNew(t *testing.T) {
	err := serrors.Wrap("boom", nil)
	assert.Equal(t, "boom", err.Error())
}

func TestWrap_UnwrapReturnsCause(t *testing.T) {
	cause := serrors.New("cause")
	err := serrors.Wrap("wrapper", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestError_RendersContextAndCause(t *testing.T) {
	cause := serrors.New("disk full")
	err := serrors.Wrap("writing file", cause, "path", "/tmp/x")
	msg := err.Error()
	assert.Contains(t, msg, "writing file")
	assert.Contains(t, msg, "path=/tmp/x")
	assert.Contains(t, msg, "disk full")
}

func TestError_ContextPairsAreSortedByKey(t *testing.T) {
	err := serrors.New("boom", "zeta", 1, "alpha", 2)
	msg := err.Error()
	assert.Less(t, indexOf(msg, "alpha"), indexOf(msg, "zeta"))
}

func TestWithCtx_AppendsContextPreservingIs(t *testing.T) {
	sentinel := serrors.New("invalid input")
	err := serrors.WithCtx(sentinel, "field", "name")
	assert.True(t, errors.Is(err, sentinel))
	assert.Contains(t, err.Error(), "field=name")
}

func TestWithCtx_WrapsAPlainErrorThatIsNotASerror(t *testing.T) {
	plain := errors.New("plain")
	err := serrors.WithCtx(plain, "key", "value")
	assert.True(t, errors.Is(err, plain))
	assert.Contains(t, err.Error(), "key=value")
}

func TestList_ErrorJoinsEachMessageWithSemicolons(t *testing.T) {
	l := serrors.List{serrors.New("a"), serrors.New("b")}
	assert.Equal(t, "[ a; b ]", l.Error())
}

func TestList_ErrorOnEmptyListIsNoErrors(t *testing.T) {
	var l serrors.List
	assert.Equal(t, "no errors", l.Error())
}

func TestList_ToErrorReturnsNilWhenEmpty(t *testing.T) {
	var l serrors.List
	assert.Nil(t, l.ToError())
}

func TestList_ToErrorReturnsItselfWhenNonEmpty(t *testing.T) {
	l := serrors.List{serrors.New("a")}
	err := l.ToError()
	require.Error(t, err)
	assert.Equal(t, l, err)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
