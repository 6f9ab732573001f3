package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakt-lang/jakttest/internal/classify"
)

func TestPrintTotalsOnly(t *testing.T) {
	var buf bytes.Buffer

	Print(&buf, Summary{Passed: 3, Failed: 0, Skipped: 1})

	out := buf.String()
	require.Contains(t, out, "3 passed")
	require.Contains(t, out, "0 failed")
	require.Contains(t, out, "1 skipped")
	require.Contains(t, out, "(3 tests)")
}

func TestPrintRendersFailureTable(t *testing.T) {
	var buf bytes.Buffer

	Print(&buf, Summary{
		Passed: 1,
		Failed: 2,
		Reasons: map[string]classify.FailureReason{
			"b.jakt": {Kind: classify.AbruptExit, ExitCode: 11},
			"a.jakt": {Kind: classify.ExpectedError, Expected: "boom"},
		},
	})

	out := buf.String()
	require.Contains(t, out, "a.jakt")
	require.Contains(t, out, "b.jakt")

	// Sorted by file name: a.jakt's row must appear before b.jakt's.
	require.Less(t, index(out, "a.jakt"), index(out, "b.jakt"))
}

func TestAllPassed(t *testing.T) {
	require.True(t, Summary{Passed: 5, Failed: 0}.AllPassed())
	require.False(t, Summary{Passed: 5, Failed: 1}.AllPassed())
}

func index(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}

	return -1
}
