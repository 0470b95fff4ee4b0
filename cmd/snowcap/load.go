package main

import (
	"github.com/nsg-ethz/snowcap/hardpolicy"
	"github.com/nsg-ethz/snowcap/netsim"
	"github.com/nsg-ethz/snowcap/pkg/config"
	"github.com/nsg-ethz/snowcap/pkg/serrors"
)

// loaded bundles everything derived from --topology/--delta plus a policy
// string, shared by run/optimize/check.
type loaded struct {
	net      *netsim.Network
	commands []netsim.Command
	policy   *hardpolicy.Formula
}

func loadInputs(topologyPath, deltaPath, policyText string) (*loaded, error) {
	var topo config.TopologyConfig
	if err := config.LoadFile(topologyPath, &topo); err != nil {
		return nil, serrors.Wrap("loading topology", err, "path", topologyPath)
	}
	net, names, err := config.BuildNetwork(&topo)
	if err != nil {
		return nil, serrors.Wrap("building network from topology", err)
	}

	var delta config.DeltaConfig
	if err := config.LoadFile(deltaPath, &delta); err != nil {
		return nil, serrors.Wrap("loading delta", err, "path", deltaPath)
	}
	commands, err := config.BuildCommands(&delta, names)
	if err != nil {
		return nil, serrors.Wrap("building commands from delta", err)
	}

	formula, err := hardpolicy.Parse(policyText, names)
	if err != nil {
		return nil, serrors.Wrap("parsing hard policy", err, "policy", policyText)
	}

	return &loaded{net: net, commands: commands, policy: formula}, nil
}
