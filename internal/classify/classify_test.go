package classify

import (
	"testing"

	"github.com/jakt-lang/jakttest/internal/directive"
	"github.com/stretchr/testify/require"
)

func TestOkayExactMatchPasses(t *testing.T) {
	out := Classify(0, directive.Expected{Kind: directive.Okay, Output: "hi\n"}, "hi\n", "")
	require.True(t, out.Passed)
}

func TestCompileErrorSubstringMatchPasses(t *testing.T) {
	out := Classify(3, directive.Expected{Kind: directive.CompileError, Output: "undefined name"},
		"", "error: undefined name foo\n")
	require.True(t, out.Passed)
}

func TestErroredAtEarlierStage(t *testing.T) {
	out := Classify(2, directive.Expected{Kind: directive.Okay, Output: "a"}, "", "oops")
	require.False(t, out.Passed)
	require.Equal(t, ErroredAtEarlierStage, out.Reason.Kind)
	require.Equal(t, "oops", out.Reason.Had)
	require.Equal(t, CompileCpp, out.Reason.FailedStage)
}

func TestExpectedErrorButRanClean(t *testing.T) {
	out := Classify(0, directive.Expected{Kind: directive.CompileError, Output: "X"}, "ok", "")
	require.False(t, out.Passed)
	require.Equal(t, ExpectedError, out.Reason.Kind)
	require.Equal(t, "ok", out.Reason.Had)
}

func TestStdoutUnmatched(t *testing.T) {
	out := Classify(0, directive.Expected{Kind: directive.Okay, Output: "hi\n"}, "bye\n", "")
	require.False(t, out.Passed)
	require.Equal(t, StdoutUnmatched, out.Reason.Kind)
}

func TestAbruptExit(t *testing.T) {
	out := Classify(7, directive.Expected{Kind: directive.Okay, Output: "a"}, "", "")
	require.False(t, out.Passed)
	require.Equal(t, AbruptExit, out.Reason.Kind)
	require.Equal(t, 7, out.Reason.ExitCode)
}

func TestOkayComparisonToleratesCRDifferences(t *testing.T) {
	out := Classify(0, directive.Expected{Kind: directive.Okay, Output: "hi\n"}, "hi\r\n", "")
	require.True(t, out.Passed)
}

func TestNormalizeSubstringTargetIsIdempotent(t *testing.T) {
	s := "line one\r\nline two\n"
	once := normalizeSubstringTarget(s)
	twice := normalizeSubstringTarget(once)
	require.Equal(t, once, twice)
}

func TestRuntimeErrorStderrUnmatched(t *testing.T) {
	out := Classify(0, directive.Expected{Kind: directive.RuntimeError, Output: "boom"}, "", "totally different failure")
	require.False(t, out.Passed)
	require.Equal(t, StderrUnmatched, out.Reason.Kind)
}
