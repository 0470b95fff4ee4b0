// Package report renders synthesis results to a terminal: the final
// ordering as a table, a human diff against the naive input ordering, and
// (on failure) the recorded problem groups, colored when stdout is a tty.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/nsg-ethz/snowcap/netsim"
	"github.com/nsg-ethz/snowcap/strategy"
)

func init() {
	// fatih/color auto-detects on Windows but not reliably on every
	// Unix terminal emulator; go-isatty is the conventional cross-check.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// Success prints a green "ok" status line to w.
func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.GreenString("ok")+": "+fmt.Sprintf(format, args...))
}

// Failure prints a red "failed" status line to w.
func Failure(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.RedString("failed")+": "+fmt.Sprintf(format, args...))
}

// Ordering renders a synthesized command ordering as a table: step index,
// kind, and configuration key.
func Ordering(w io.Writer, ordering []netsim.Command) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"step", "kind", "key"})
	for i, cmd := range ordering {
		table.Append([]string{fmt.Sprint(i), cmd.Kind.String(), cmd.Expr.Key()})
	}
	table.Render()
}

// ProblemGroups renders the problem groups a failed search recorded, for
// diagnosing why no ordering was found.
func ProblemGroups(w io.Writer, groups []strategy.ProblemGroup) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"#", "deps", "terminal"})
	for i, g := range groups {
		table.Append([]string{fmt.Sprint(i), fmt.Sprint(len(g.Deps)), string(g.Terminal)})
	}
	table.Render()
}

// Diff prints a human-readable diff between the naive (input-order) and
// synthesized orderings, one command String() per line, so a reader can
// see at a glance how much reordering the search actually needed.
func Diff(w io.Writer, naive, synthesized []netsim.Command) {
	naiveText, synthText := linesOf(naive), linesOf(synthesized)
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(naiveText, synthText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			fmt.Fprint(w, color.GreenString(prefixLines("+ ", d.Text)))
		case diffmatchpatch.DiffDelete:
			fmt.Fprint(w, color.RedString(prefixLines("- ", d.Text)))
		default:
			fmt.Fprint(w, prefixLines("  ", d.Text))
		}
	}
}

func linesOf(cmds []netsim.Command) string {
	s := ""
	for _, c := range cmds {
		s += c.String() + "\n"
	}
	return s
}

func prefixLines(prefix, text string) string {
	out := ""
	line := ""
	for _, r := range text {
		line += string(r)
		if r == '\n' {
			out += prefix + line
			line = ""
		}
	}
	if line != "" {
		out += prefix + line + "\n"
	}
	return out
}
