package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const evilTwinDeltaSafeOrderTOML = `
[[command]]
  kind = "insert"
  [command.session]
    a = "i2"
    b = "e2"
    kind = "ebgp"

[[command]]
  kind = "insert"
  [command.session]
    a = "i1"
    b = "i2"
    kind = "ibgp-peer"
`

func TestRunCheck_PassesForASafeCommandOrder(t *testing.T) {
	topoPath := writeTempFile(t, "topology.toml", evilTwinTopologyTOML)
	deltaPath := writeTempFile(t, "delta.toml", evilTwinDeltaSafeOrderTOML)

	err := runCheck(topoPath, deltaPath, "G !reach(i2,e1)")
	require.NoError(t, err)
}

func TestRunCheck_FailsForAnUnsafeCommandOrder(t *testing.T) {
	// evilTwinDeltaTOML connects i2 to i1 over iBGP before i2 has any
	// route to e2, so i2 transiently reaches e1 through the iBGP relay.
	topoPath := writeTempFile(t, "topology.toml", evilTwinTopologyTOML)
	deltaPath := writeTempFile(t, "delta.toml", evilTwinDeltaTOML)

	err := runCheck(topoPath, deltaPath, "G !reach(i2,e1)")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errTransientViolation))
}

func TestRunCheck_PropagatesLoadErrors(t *testing.T) {
	err := runCheck("missing.toml", "missing.toml", "G reach(a,b)")
	require.Error(t, err)
}
