package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsg-ethz/snowcap/synth"
)

// evilTwinTopologyTOML builds i1 (eBGP-peered with e1, which originates
// prefix 0) and an unconnected i2 and e2 (a duplicate originator of prefix
// 0 under a different AS) - the two commands in evilTwinDeltaTOML join i2
// to i1 over iBGP and to e2 over eBGP.
const evilTwinTopologyTOML = `
[[router]]
  name = "e1"
  kind = "external"
  as = 100

[[router]]
  name = "i1"
  kind = "internal"
  as = 1

[[router]]
  name = "i2"
  kind = "internal"
  as = 1

[[router]]
  name = "e2"
  kind = "external"
  as = 200

[[link]]
  a = "i1"
  b = "i2"
  weight = 10

[[session]]
  a = "e1"
  b = "i1"
  kind = "ebgp"

[[announcement]]
  router = "e1"
  prefix = 0
  as_path = [100]

[[announcement]]
  router = "e2"
  prefix = 0
  as_path = [200]
`

const evilTwinDeltaTOML = `
[[command]]
  kind = "insert"
  [command.session]
    a = "i1"
    b = "i2"
    kind = "ibgp-peer"

[[command]]
  kind = "insert"
  [command.session]
    a = "i2"
    b = "e2"
    kind = "ebgp"
`

func writeEvilTwinFiles(t *testing.T) (topoPath, deltaPath string) {
	t.Helper()
	return writeTempFile(t, "topology.toml", evilTwinTopologyTOML), writeTempFile(t, "delta.toml", evilTwinDeltaTOML)
}

func TestRunSynthesize_FindsAValidOrderingAndWritesResult(t *testing.T) {
	topoPath, deltaPath := writeEvilTwinFiles(t)
	outPath := filepath.Join(t.TempDir(), "result.json")

	err := runSynthesize(context.Background(), topoPath, deltaPath, "G !reach(i2,e1)", outPath, 1, 0)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var result synth.Result
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Ordering, 2)
}

func TestRunSynthesize_ReturnsErrorForUnsatisfiablePolicy(t *testing.T) {
	topoPath, deltaPath := writeEvilTwinFiles(t)
	err := runSynthesize(context.Background(), topoPath, deltaPath, "G reach(i2,e1)", "", 1, 0)
	require.Error(t, err)
	assert.True(t, synth.IsNoSolution(err))
}

func TestRunSynthesize_UsesParallelPathWhenWorkersAboveOne(t *testing.T) {
	topoPath, deltaPath := writeEvilTwinFiles(t)
	err := runSynthesize(context.Background(), topoPath, deltaPath, "G !reach(i2,e1)", "", 3, 11)
	require.NoError(t, err)
}

func TestRunSynthesize_PropagatesLoadErrors(t *testing.T) {
	err := runSynthesize(context.Background(), filepath.Join(t.TempDir(), "missing.toml"), "", "G reach(a,b)", "", 1, 0)
	require.Error(t, err)
}
