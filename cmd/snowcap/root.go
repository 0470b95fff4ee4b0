package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagTopology = "topology"
	flagDelta    = "delta"
	flagLogLevel = "log-level"
)

func newRootCommand() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "snowcap",
		Short:         "Synthesize safe orderings of network reconfiguration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(flagTopology, "", "path to the topology TOML file")
	root.PersistentFlags().String(flagDelta, "", "path to the configuration delta TOML file")
	root.PersistentFlags().String(flagLogLevel, "info", "log level (debug|info|warn|error)")
	_ = v.BindPFlags(root.PersistentFlags())

	root.AddCommand(newRunCommand(v))
	root.AddCommand(newOptimizeCommand(v))
	root.AddCommand(newCheckCommand(v))
	root.AddCommand(newServeCommand(v))
	return root
}
