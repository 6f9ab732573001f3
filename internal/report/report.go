// Package report renders the final summary the CLI prints after a run:
// pass/fail counts and, when diagnostic collection was enabled, a table
// with one row per failing test (spec §4.D "Finalization", §7
// "user-visible failures").
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/jakt-lang/jakttest/internal/classify"
)

// Summary is the data report.Print renders.
type Summary struct {
	Passed  int
	Failed  int
	Skipped int
	Reasons map[string]classify.FailureReason // nil if --hide-reasons was passed
}

// Print writes the pass/fail totals and, if Reasons is non-empty, a
// tablewriter-rendered block of every failure, one row per test, following
// the teacher's RenderTable convention (canonical-lxd/lxc/utils/table.go).
func Print(w io.Writer, s Summary) {
	total := s.Passed + s.Failed

	passLabel := color.GreenString("%d passed", s.Passed)
	failLabel := fmt.Sprintf("%d failed", s.Failed)
	if s.Failed > 0 {
		failLabel = color.RedString("%d failed", s.Failed)
	}

	fmt.Fprintf(w, "%s, %s", passLabel, failLabel)
	if s.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped", s.Skipped)
	}
	fmt.Fprintf(w, " (%d tests)\n", total)

	if len(s.Reasons) == 0 {
		return
	}

	names := make([]string, 0, len(s.Reasons))
	for name := range s.Reasons {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetRowLine(true)
	table.SetHeader([]string{"file", "reason"})

	for _, name := range names {
		table.Append([]string{name, s.Reasons[name].Template()})
	}

	table.Render()
}

// AllPassed reports whether the run should be treated as an overall success
// for exit-code purposes (spec §6 "Exit 0 on all-pass").
func (s Summary) AllPassed() bool {
	return s.Failed == 0
}
