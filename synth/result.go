package synth

import (
	"encoding/json"
	"io"

	"github.com/nsg-ethz/snowcap/netsim"
)

// Result is the persisted artifact of spec.md §6: `{ordering, cost,
// iterations, wall_ms, seed}`. It is the only JSON-producing type in the
// module outside cmd/snowcap, which is the only caller that ever needs one
// (library entry points return plain Go values).
type Result struct {
	Ordering   []netsim.CommandID `json:"ordering"`
	Cost       float64            `json:"cost"`
	Iterations int                `json:"iterations"`
	WallMS     int64              `json:"wall_ms"`
	Seed       uint64             `json:"seed"`
}

// NewResult builds a Result from a successful synthesis's ordering.
func NewResult(ordering []netsim.Command, cost float64, iterations int, wallMS int64, seed uint64) Result {
	ids := make([]netsim.CommandID, len(ordering))
	for i, c := range ordering {
		ids[i] = c.ID()
	}
	return Result{Ordering: ids, Cost: cost, Iterations: iterations, WallMS: wallMS, Seed: seed}
}

// WriteJSON writes r to w as indented JSON, matching cmd/snowcap's
// --out file format.
func (r Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
