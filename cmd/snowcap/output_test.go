package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsg-ethz/snowcap/synth"
)

func TestWriteResult_WritesJSONToGivenPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	result := synth.NewResult(nil, 1.5, 3, 42, 7)

	require.NoError(t, writeResult(result, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded synth.Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result, decoded)
}

func TestWriteResult_ReturnsErrorForUnwritablePath(t *testing.T) {
	result := synth.NewResult(nil, 0, 0, 0, 0)
	err := writeResult(result, filepath.Join(t.TempDir(), "missing-dir", "result.json"))
	require.Error(t, err)
}

func TestWriteResult_WritesToStdoutWhenPathEmpty(t *testing.T) {
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	result := synth.NewResult(nil, 2, 1, 5, 0)
	writeErr := writeResult(result, "")

	w.Close()
	os.Stdout = origStdout
	require.NoError(t, writeErr)

	var decoded synth.Result
	require.NoError(t, json.NewDecoder(r).Decode(&decoded))
	assert.Equal(t, result, decoded)
}
