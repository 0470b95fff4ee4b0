// Package launcher provides the common startup/shutdown harness for every
// snowcap subcommand, grounded on the teacher's private/app/launcher
// Application pattern: logging setup, panic recovery, and an error-to-
// exit-code mapping, stripped of the Windows-service machinery the teacher
// carries for a long-running network daemon — snowcap's subcommands are
// one-shot CLI invocations (or, for `serve`, a single foreground process),
// not services.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nsg-ethz/snowcap/pkg/log"
	"github.com/nsg-ethz/snowcap/pkg/serrors"
	"github.com/nsg-ethz/snowcap/synth"
)

// Application models one snowcap subcommand invocation.
type Application struct {
	// ShortName identifies the subcommand in log lines ("run", "optimize",
	// "check", "serve").
	ShortName string

	// LogLevel is the zap level name ("debug"|"info"|"warn"|"error");
	// empty means "info".
	LogLevel string

	// Main is the subcommand's actual logic. Run maps its returned error
	// to an exit code via ExitCode before calling os.Exit.
	Main func(ctx context.Context) error

	// ErrorWriter is where the fatal-error line is printed; os.Stderr if
	// nil.
	ErrorWriter io.Writer
}

// Run executes Main under the common harness and terminates the process
// with the exit code ExitCode(err) computes. It never returns.
func (a *Application) Run(ctx context.Context) {
	log.Setup(a.logLevel())
	defer log.Root().Sync() //nolint:errcheck

	err := a.runMain(ctx)
	ec := ExitCode(err)
	if err != nil {
		fmt.Fprintf(a.errorWriter(), "%s: fatal error: %v\n", a.ShortName, err)
	}
	os.Exit(ec)
}

func (a *Application) runMain(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Root().Errorf("%s: panic: %v", a.ShortName, r)
			err = serrors.New("panic during execution", "recovered", fmt.Sprint(r))
		}
	}()
	if a.Main == nil {
		return nil
	}
	return a.Main(ctx)
}

func (a *Application) logLevel() string {
	if a.LogLevel == "" {
		return "info"
	}
	return a.LogLevel
}

func (a *Application) errorWriter() io.Writer {
	if a.ErrorWriter != nil {
		return a.ErrorWriter
	}
	return os.Stderr
}

// ExitCode maps a subcommand's terminal error to the process exit code of
// spec.md §6: nil -> 0, synth.ErrNoSolution -> 1, anything else
// (config/parse errors, synth.ErrInvalidInput) -> 2.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case synth.IsNoSolution(err):
		return 1
	default:
		return 2
	}
}
