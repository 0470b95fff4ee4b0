package config_test

import (
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsg-ethz/snowcap/pkg/config"
)

func TestRunConfig_InitDefaultsFillsWorkersAndSoftCost(t *testing.T) {
	var cfg config.RunConfig
	cfg.InitDefaults()
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "shift", cfg.SoftCost)
}

func TestRunConfig_InitDefaultsLeavesExplicitValuesAlone(t *testing.T) {
	cfg := config.RunConfig{Workers: 4, SoftCost: "max-shift"}
	cfg.InitDefaults()
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "max-shift", cfg.SoftCost)
}

func TestRunConfig_ValidateRequiresPolicy(t *testing.T) {
	cfg := config.RunConfig{Workers: 1, SoftCost: "shift"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidRun)
}

func TestRunConfig_ValidateRejectsZeroWorkers(t *testing.T) {
	cfg := config.RunConfig{Policy: "G reach(a,b)", Workers: 0, SoftCost: "shift"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidRun)
}

func TestRunConfig_ValidateRejectsUnknownSoftCost(t *testing.T) {
	cfg := config.RunConfig{Policy: "G reach(a,b)", Workers: 1, SoftCost: "shortest-path"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidRun)
}

func TestRunConfig_ValidateParsesBudgetString(t *testing.T) {
	cfg := config.RunConfig{Policy: "G reach(a,b)", Workers: 1, SoftCost: "shift", BudgetStr: "30s"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Budget())
}

func TestRunConfig_ValidateRejectsUnparsableBudget(t *testing.T) {
	cfg := config.RunConfig{Policy: "G reach(a,b)", Workers: 1, SoftCost: "shift", BudgetStr: "a while"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidRun)
}

func TestRunConfig_BudgetIsZeroWhenUnset(t *testing.T) {
	cfg := config.RunConfig{Policy: "G reach(a,b)", Workers: 1, SoftCost: "shift"}
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.Budget())
}

func TestRunConfig_SampleRoundTripsThroughLoadFile(t *testing.T) {
	var sampleCfg config.RunConfig
	sample := config.WriteSample(&sampleCfg)

	var cfg config.RunConfig
	require.NoError(t, toml.Unmarshal(sample, &cfg))
	cfg.InitDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Budget())
}
