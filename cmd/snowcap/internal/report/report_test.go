package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsg-ethz/snowcap/cmd/snowcap/internal/report"
	"github.com/nsg-ethz/snowcap/netsim"
	"github.com/nsg-ethz/snowcap/strategy"
)

func sampleCommands() []netsim.Command {
	return []netsim.Command{
		{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: 0, B: 1, Kind: netsim.IBGPPeer}},
		{Kind: netsim.Insert, Expr: netsim.BGPSessionExpr{A: 1, B: 2, Kind: netsim.EBGP}},
	}
}

func TestSuccess_PrintsGreenOkLineWithFormattedMessage(t *testing.T) {
	var buf bytes.Buffer
	report.Success(&buf, "%d commands applied", 2)
	assert.Contains(t, buf.String(), "ok")
	assert.Contains(t, buf.String(), "2 commands applied")
}

func TestFailure_PrintsFailedLineWithFormattedMessage(t *testing.T) {
	var buf bytes.Buffer
	report.Failure(&buf, "no ordering found: %s", "budget exhausted")
	assert.Contains(t, buf.String(), "failed")
	assert.Contains(t, buf.String(), "budget exhausted")
}

func TestOrdering_RendersOneRowPerCommand(t *testing.T) {
	var buf bytes.Buffer
	cmds := sampleCommands()
	report.Ordering(&buf, cmds)
	out := buf.String()
	assert.Contains(t, out, "insert")
	assert.Contains(t, out, cmds[0].Expr.Key())
	assert.Contains(t, out, cmds[1].Expr.Key())
}

func TestOrdering_EmptyOrderingStillRendersAHeader(t *testing.T) {
	var buf bytes.Buffer
	report.Ordering(&buf, nil)
	assert.Contains(t, buf.String(), "step")
}

func TestProblemGroups_RendersOneRowPerGroup(t *testing.T) {
	var buf bytes.Buffer
	cmds := sampleCommands()
	groups := []strategy.ProblemGroup{
		{Deps: []netsim.CommandID{cmds[0].ID()}, Terminal: cmds[1].ID()},
	}
	report.ProblemGroups(&buf, groups)
	out := buf.String()
	assert.Contains(t, out, "deps")
	assert.Contains(t, out, string(cmds[1].ID()))
}

func TestDiff_MarksInsertedAndDeletedLines(t *testing.T) {
	cmds := sampleCommands()
	var buf bytes.Buffer
	report.Diff(&buf, []netsim.Command{cmds[0]}, []netsim.Command{cmds[1]})
	out := buf.String()
	assert.Contains(t, out, "+ ")
	assert.Contains(t, out, "- ")
}

func TestDiff_IdenticalOrderingsProduceNoMarkers(t *testing.T) {
	cmds := sampleCommands()
	var buf bytes.Buffer
	report.Diff(&buf, cmds, cmds)
	out := buf.String()
	assert.NotContains(t, out, "+ ")
	assert.NotContains(t, out, "- ")
	assert.Contains(t, out, cmds[0].String())
}
