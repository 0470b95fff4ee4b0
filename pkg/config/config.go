// Package config provides a uniform pattern for configuration structs used
// by cmd/snowcap: initialization of defaults, validation, and generation of
// a commented sample file. Every top-level TOML section snowcap reads
// implements Config.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/nsg-ethz/snowcap/pkg/serrors"
)

// Config is implemented by every configuration section snowcap reads from
// a TOML file: the topology, the delta, and the run parameters.
type Config interface {
	Sampler
	Validator
	Defaulter
}

// Validator recursively checks that a config struct holds valid values.
type Validator interface {
	Validate() error
}

// Defaulter recursively initializes default values for unset fields.
type Defaulter interface {
	InitDefaults()
}

// Sampler writes a commented sample of the config section to w.
type Sampler interface {
	Sample(w io.Writer)
}

// LoadFile parses the TOML file at path into cfg, calls InitDefaults, then
// Validate, returning a wrapped error naming the config section on failure.
func LoadFile(path string, cfg Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return serrors.Wrap("reading config file", err, "path", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return serrors.Wrap("parsing config file", err, "path", path)
	}
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return serrors.Wrap("validating config", err, "path", path)
	}
	return nil
}

// WriteSample renders cfg.Sample to a buffer and returns it, used by both
// `snowcap sample` and the sample-consistency tests every config section
// must provide (Sample output must round-trip through LoadFile).
func WriteSample(cfg Sampler) []byte {
	var buf bytes.Buffer
	cfg.Sample(&buf)
	return buf.Bytes()
}

func writeSection(w io.Writer, name string, body string) {
	fmt.Fprintf(w, "[%s]\n%s\n", name, body)
}
