package strategy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsg-ethz/snowcap/strategy"
)

func TestStopper_StopMarksStopped(t *testing.T) {
	s := strategy.NewStopper(context.Background())
	assert.False(t, s.Stopped())
	s.Stop()
	assert.True(t, s.Stopped())
}

func TestStopper_ContextCancellationStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := strategy.NewStopper(ctx)
	assert.False(t, s.Stopped())
	cancel()
	assert.True(t, s.Stopped())
}

func TestStopper_NilContextDefaultsToBackground(t *testing.T) {
	s := strategy.NewStopper(nil)
	assert.False(t, s.Stopped())
}

func TestStopper_NilReceiverIsNeverStopped(t *testing.T) {
	var s *strategy.Stopper
	assert.False(t, s.Stopped())
}
