package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusSnapshot_MarshalsExpectedFieldNames(t *testing.T) {
	snap := statusSnapshot{Iterations: 7, BestCost: 1.5, HasBest: true}
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 7, decoded["iterations"])
	assert.EqualValues(t, 1.5, decoded["best_cost"])
	assert.Equal(t, true, decoded["has_best"])
}

func TestStatusSnapshot_OmitsBestCostWhenZeroAndNoBest(t *testing.T) {
	snap := statusSnapshot{Iterations: 0, HasBest: false}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "best_cost")
}

func TestNewServeCommand_DeclaresSoftCostAndAddrFlags(t *testing.T) {
	root := newRootCommand()
	for _, c := range root.Commands() {
		if c.Name() == "serve" {
			sc := c.Flags().Lookup("soft-cost")
			require.NotNil(t, sc)
			assert.Equal(t, "shift", sc.DefValue)
			addr := c.Flags().Lookup("addr")
			require.NotNil(t, addr)
			assert.Equal(t, ":8080", addr.DefValue)
		}
	}
}
