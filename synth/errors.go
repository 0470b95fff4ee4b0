package synth

import (
	"errors"

	"github.com/nsg-ethz/snowcap/pkg/serrors"
	"github.com/nsg-ethz/snowcap/strategy"
)

// Error kinds surfaced at the public API boundary, per spec.md §6's exit
// code mapping (nil → 0, ErrNoSolution → 1, ErrInvalidInput → 2).
var (
	ErrNoSolution   = strategy.ErrNoSolution
	ErrCanceled     = strategy.ErrCanceled
	ErrInvalidInput = serrors.New("invalid synthesis input")
)

// IsNoSolution reports whether err is (or wraps) ErrNoSolution.
func IsNoSolution(err error) bool { return errors.Is(err, ErrNoSolution) }

// IsCanceled reports whether err is (or wraps) ErrCanceled.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// IsInvalidInput reports whether err is (or wraps) ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
