package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nsg-ethz/snowcap/pkg/log"
)

func TestRoot_IsNeverNil(t *testing.T) {
	assert.NotNil(t, log.Root())
}

func TestSetup_ReplacesTheRootLogger(t *testing.T) {
	before := log.Root()
	defer log.Setup("info")

	log.Setup("debug")
	assert.NotSame(t, before, log.Root())
}

func TestFromCtx_ReturnsRootWhenNilContext(t *testing.T) {
	assert.Same(t, log.Root(), log.FromCtx(nil))
}

func TestFromCtx_ReturnsRootWhenNothingAttached(t *testing.T) {
	assert.Same(t, log.Root(), log.FromCtx(context.Background()))
}

func TestCtxWith_RoundTripsThroughFromCtx(t *testing.T) {
	custom := zap.NewNop().Sugar()
	ctx := log.CtxWith(context.Background(), custom)
	assert.Same(t, custom, log.FromCtx(ctx))
}

func TestCtxWith_PanicsOnNilContext(t *testing.T) {
	assert.Panics(t, func() {
		log.CtxWith(nil, zap.NewNop().Sugar())
	})
}

func TestWith_AttachesLabelsAndReturnsUpdatedContext(t *testing.T) {
	ctx, logger := log.With(context.Background(), "worker", "w0")
	require.NotNil(t, logger)
	assert.Same(t, logger, log.FromCtx(ctx))
	assert.NotSame(t, log.Root(), logger)
}

func TestHandlePanic_LogsAndRePanics(t *testing.T) {
	defer func() {
		r := recover()
		assert.Equal(t, "boom", r)
	}()
	defer log.HandlePanic()
	panic("boom")
}
