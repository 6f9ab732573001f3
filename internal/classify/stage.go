// Package classify maps a driver subprocess's exit code and captured
// output files back to a pass/fail verdict (spec §4.E, component E).
package classify

import "fmt"

// Stage is one of the three pipeline stages the driver subprocess runs
// through. Stages are ordered; Order() gives the comparison used to decide
// whether a failure happened earlier or later than expected.
type Stage int

const (
	TranspileJakt Stage = iota + 1
	CompileCpp
	TestRun
)

// Order returns the stage's position in the pipeline (1 < 2 < 3), per
// spec §3 "Test stage".
func (s Stage) Order() int {
	return int(s)
}

func (s Stage) String() string {
	switch s {
	case TranspileJakt:
		return "Jakt transpilation to C++"
	case CompileCpp:
		return "Clang++ compilation of generated C++ source"
	case TestRun:
		return "Execution of compiled test binary"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// OutputFilenames returns the (stdout, stderr) file names the driver
// writes for this stage under the test's scratch directory (spec §6).
// TranspileJakt and CompileCpp only ever have their stderr captured; the
// driver contract does not name a stdout file for them.
func (s Stage) OutputFilenames() (stdoutFile, stderrFile string) {
	switch s {
	case TranspileJakt:
		return "", "compile_jakt.err"
	case CompileCpp:
		return "", "compile_cpp.err"
	case TestRun:
		return "runtest.out", "runtest.err"
	default:
		return "", ""
	}
}

// StageForExitCode maps a driver exit code to the stage it represents
// (spec §4.E / §6). ok reports whether the code is a recognized stage
// code; codes other than 0-3 must be classified as AbruptExit instead.
func StageForExitCode(exitCode int) (stage Stage, ok bool) {
	switch exitCode {
	case 0, 1:
		return TestRun, true
	case 2:
		return CompileCpp, true
	case 3:
		return TranspileJakt, true
	default:
		return 0, false
	}
}
