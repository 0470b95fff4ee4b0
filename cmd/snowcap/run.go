package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsg-ethz/snowcap/cmd/snowcap/internal/report"
	"github.com/nsg-ethz/snowcap/netsim"
	"github.com/nsg-ethz/snowcap/private/app/launcher"
	"github.com/nsg-ethz/snowcap/synth"
)

func newRunCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Synthesize a single hard-valid command ordering",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, _ := cmd.Flags().GetString("policy")
			out, _ := cmd.Flags().GetString("out")
			workers, _ := cmd.Flags().GetInt("workers")
			seed, _ := cmd.Flags().GetUint64("seed")

			app := &launcher.Application{
				ShortName: "run",
				LogLevel:  v.GetString(flagLogLevel),
				Main: func(ctx context.Context) error {
					return runSynthesize(ctx, v.GetString(flagTopology), v.GetString(flagDelta), policy, out, workers, seed)
				},
			}
			app.Run(cmd.Context())
			return nil // unreachable: Application.Run calls os.Exit
		},
	}
	cmd.Flags().String("policy", "", "hard policy LTL formula")
	cmd.Flags().String("out", "", "path to write the JSON result (stdout if empty)")
	cmd.Flags().Int("workers", 1, "number of parallel fan-out workers (1 = single-threaded)")
	cmd.Flags().Uint64("seed", 0, "base RNG seed for fan-out worker orderings")
	_ = cmd.MarkFlagRequired("policy")
	return cmd
}

func runSynthesize(ctx context.Context, topologyPath, deltaPath, policyText, out string, workers int, seed uint64) error {
	in, err := loadInputs(topologyPath, deltaPath, policyText)
	if err != nil {
		return err
	}

	var ordering []netsim.Command
	if workers <= 1 {
		ordering, err = synth.Synthesize(ctx, in.net, in.commands, in.policy, nil)
	} else {
		ordering, err = synth.SynthesizeParallel(ctx, in.net, in.commands, in.policy, workers, seed, nil)
	}
	if err != nil {
		report.Failure(os.Stderr, "%v", err)
		return err
	}

	report.Success(os.Stderr, "found a valid ordering of %d commands", len(ordering))
	report.Ordering(os.Stdout, ordering)

	result := synth.NewResult(ordering, 0, 0, 0, seed)
	return writeResult(result, out)
}
