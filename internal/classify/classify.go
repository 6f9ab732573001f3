package classify

import (
	"fmt"
	"strings"

	"github.com/jakt-lang/jakttest/internal/directive"
)

// ReasonKind tags the variant of FailureReason (spec §3 "Failure reason").
type ReasonKind int

const (
	CompilerErrorUnmatched ReasonKind = iota
	StdoutUnmatched
	StderrUnmatched
	ExpectedError
	ErroredAtEarlierStage
	ErroredAtLaterStage
	AbruptExit
)

// FailureReason is the tagged variant spec §3 describes. Go has no native
// sum type, so this carries every variant's payload fields; only the ones
// relevant to Kind are populated. FailedStage is only meaningful for
// ErroredAtEarlierStage/ErroredAtLaterStage; ExitCode only for AbruptExit.
type FailureReason struct {
	Kind        ReasonKind
	Had         string
	Expected    string
	FailedStage Stage
	ExitCode    int
}

// Template renders the variant-specific diagnostic block text (spec §7).
func (r FailureReason) Template() string {
	switch r.Kind {
	case CompilerErrorUnmatched:
		return fmt.Sprintf("compiler error did not match:\n  had:      %q\n  expected: %q", r.Had, r.Expected)
	case StdoutUnmatched:
		return fmt.Sprintf("stdout did not match:\n  had:      %q\n  expected: %q", r.Had, r.Expected)
	case StderrUnmatched:
		return fmt.Sprintf("stderr did not match:\n  had:      %q\n  expected: %q", r.Had, r.Expected)
	case ExpectedError:
		return fmt.Sprintf("expected an error but test ran to completion:\n  had:      %q\n  expected: %q", r.Had, r.Expected)
	case ErroredAtEarlierStage:
		return fmt.Sprintf("failed at an earlier stage than expected (%s):\n  had:      %q\n  expected: %q", r.FailedStage, r.Had, r.Expected)
	case ErroredAtLaterStage:
		return fmt.Sprintf("failed at a later stage than expected (%s):\n  had:      %q\n  expected: %q", r.FailedStage, r.Had, r.Expected)
	case AbruptExit:
		return fmt.Sprintf("driver exited abruptly with code %d", r.ExitCode)
	default:
		return "unknown failure"
	}
}

// Outcome is the classifier's verdict for one test.
type Outcome struct {
	Passed bool
	Reason FailureReason
}

// Classify implements spec §4.E. stdout/stderr are the raw bytes already
// read from the stage's output files (or empty strings if those files
// were missing).
func Classify(exitCode int, expected directive.Expected, stdout, stderr string) Outcome {
	stage, ok := StageForExitCode(exitCode)
	if !ok {
		return Outcome{Reason: FailureReason{Kind: AbruptExit, ExitCode: exitCode}}
	}

	expectedStage := expectedStageFor(expected.Kind)

	var (
		passed       bool
		had          string
		expectedText = expected.Output
	)

	if expected.Kind == directive.Okay {
		had = stripCR(stdout)
		passed = had == expected.Output
	} else {
		had = normalizeSubstringTarget(stderr)
		expectedText = normalizeSubstringTarget(expected.Output)
		passed = strings.Contains(had, expectedText)
	}

	if passed {
		return Outcome{Passed: true}
	}

	if stage != expectedStage {
		switch {
		case stage.Order() < expectedStage.Order():
			return Outcome{Reason: FailureReason{
				Kind:        ErroredAtEarlierStage,
				Had:         failureHad(stage, stdout, stderr),
				Expected:    expectedText,
				FailedStage: stage,
			}}
		case stage == TestRun && len(stdout) > 0:
			return Outcome{Reason: FailureReason{
				Kind:     ExpectedError,
				Had:      stdout,
				Expected: expectedText,
			}}
		default:
			return Outcome{Reason: FailureReason{
				Kind:        ErroredAtLaterStage,
				Had:         failureHad(stage, stdout, stderr),
				Expected:    expectedText,
				FailedStage: stage,
			}}
		}
	}

	switch expected.Kind {
	case directive.CompileError:
		return Outcome{Reason: FailureReason{Kind: CompilerErrorUnmatched, Had: had, Expected: expectedText}}
	case directive.RuntimeError:
		return Outcome{Reason: FailureReason{Kind: StderrUnmatched, Had: had, Expected: expectedText}}
	default:
		return Outcome{Reason: FailureReason{Kind: StdoutUnmatched, Had: had, Expected: expectedText}}
	}
}

func expectedStageFor(kind directive.Kind) Stage {
	if kind == directive.CompileError {
		return TranspileJakt
	}

	return TestRun
}

// failureHad picks whichever of stdout/stderr is non-empty for a stage
// mismatch diagnostic: earlier/later-stage failures are driven by whatever
// that stage actually produced, not by the expectation's own channel.
func failureHad(stage Stage, stdout, stderr string) string {
	if stage == TestRun && stdout != "" {
		return stdout
	}

	return stderr
}

func stripCR(s string) string {
	return strings.ReplaceAll(s, "\r", "")
}

// normalizeSubstringTarget implements spec §4.E's normalization for the
// substring comparison: drop \r, then replace \n with the two-character
// sequence "\n" (a literal backslash followed by n), matching how the
// directive's quoted string escapes newlines.
func normalizeSubstringTarget(s string) string {
	s = stripCR(s)
	return strings.ReplaceAll(s, "\n", `\n`)
}
