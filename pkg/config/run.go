package config

import (
	"fmt"
	"io"
	"time"

	"github.com/nsg-ethz/snowcap/pkg/serrors"
)

// ErrInvalidRun is returned by RunConfig.Validate.
var ErrInvalidRun = serrors.New("invalid run configuration")

// RunConfig holds the synthesis parameters common to every cmd/snowcap
// subcommand: the hard policy text, and (for `optimize`) the soft-cost
// choice, budget, worker count and RNG seed. Budget is stored as its TOML
// string form (go-toml/v2 has no built-in time.Duration support) and parsed
// once by Validate.
type RunConfig struct {
	Policy    string `toml:"policy"`
	SoftCost  string `toml:"soft_cost"`
	BudgetStr string `toml:"budget"`
	Workers   int    `toml:"workers"`
	Seed      uint64 `toml:"seed"`

	budget time.Duration
}

// Budget returns the parsed budget duration; valid only after Validate has
// returned nil.
func (c *RunConfig) Budget() time.Duration { return c.budget }

func (c *RunConfig) InitDefaults() {
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.SoftCost == "" {
		c.SoftCost = "shift"
	}
}

func (c *RunConfig) Validate() error {
	if c.Policy == "" {
		return serrors.Wrap("policy must not be empty", ErrInvalidRun)
	}
	if c.Workers < 1 {
		return serrors.Wrap("workers must be >= 1", ErrInvalidRun, "workers", c.Workers)
	}
	switch c.SoftCost {
	case "shift", "max-shift", "max-utilization":
	default:
		return serrors.Wrap("unknown soft_cost", ErrInvalidRun, "soft_cost", c.SoftCost)
	}
	if c.BudgetStr != "" {
		d, err := time.ParseDuration(c.BudgetStr)
		if err != nil {
			return serrors.Wrap("invalid budget duration", ErrInvalidRun, "budget", c.BudgetStr)
		}
		c.budget = d
	}
	return nil
}

func (c *RunConfig) Sample(w io.Writer) {
	fmt.Fprint(w, `# Synthesis run parameters.
policy = "G reach(r1, r5)"
soft_cost = "shift"
budget = "30s"
workers = 4
seed = 42
`)
}
