package main

import (
	"os"

	"github.com/nsg-ethz/snowcap/pkg/serrors"
	"github.com/nsg-ethz/snowcap/synth"
)

// writeResult writes result as JSON to path, or to stdout if path is empty.
func writeResult(result synth.Result, path string) error {
	if path == "" {
		return result.WriteJSON(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return serrors.Wrap("creating result file", err, "path", path)
	}
	defer f.Close()
	if err := result.WriteJSON(f); err != nil {
		return serrors.Wrap("writing result", err, "path", path)
	}
	return nil
}
