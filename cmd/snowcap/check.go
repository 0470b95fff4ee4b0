package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsg-ethz/snowcap/cmd/snowcap/internal/report"
	"github.com/nsg-ethz/snowcap/hardpolicy/transient"
	"github.com/nsg-ethz/snowcap/pkg/serrors"
	"github.com/nsg-ethz/snowcap/private/app/launcher"
	"github.com/nsg-ethz/snowcap/strategy"
)

// errTransientViolation is the sentinel a failed `check` returns; it maps
// to the same exit code as strategy.ErrNoSolution (1), since a command
// ordering that violates the policy during convergence is, for this fixed
// ordering, exactly as unusable as a search that found none at all.
var errTransientViolation = strategy.ErrNoSolution

func newCheckCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the delta's commands, applied in the order given, for transient policy violations",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, _ := cmd.Flags().GetString("policy")
			app := &launcher.Application{
				ShortName: "check",
				LogLevel:  v.GetString(flagLogLevel),
				Main: func(ctx context.Context) error {
					return runCheck(v.GetString(flagTopology), v.GetString(flagDelta), policy)
				},
			}
			app.Run(cmd.Context())
			return nil
		},
	}
	cmd.Flags().String("policy", "", "hard policy LTL formula")
	_ = cmd.MarkFlagRequired("policy")
	return cmd
}

func runCheck(topologyPath, deltaPath, policyText string) error {
	in, err := loadInputs(topologyPath, deltaPath, policyText)
	if err != nil {
		return err
	}

	for i, cmd := range in.commands {
		ok, witness, err := transient.Check(in.net, cmd, in.policy)
		if err != nil {
			report.Failure(os.Stderr, "step %d (%s): %v", i, cmd, err)
			return err
		}
		if !ok {
			report.Failure(os.Stderr, "step %d (%s): transient violation: %s", i, cmd, witness.String())
			return serrors.Wrap("transient policy violation", errTransientViolation, "step", i, "command", cmd.String())
		}
		if _, err := in.net.Apply(cmd); err != nil {
			report.Failure(os.Stderr, "step %d (%s): %v", i, cmd, err)
			return err
		}
	}

	report.Success(os.Stderr, "no transient violation across %d commands", len(in.commands))
	return nil
}
