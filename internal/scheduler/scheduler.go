// Package scheduler implements the parallel test scheduler described in
// spec §4.D: it assigns a fixed set of scratch directories to pending
// tests, launches each test's driver subprocess through the bounded
// execution pool (component B), blocks there to reap exited drivers
// without busy-waiting, and hands each exit to the classifier.
package scheduler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/jakt-lang/jakttest/internal/classify"
	"github.com/jakt-lang/jakttest/internal/directive"
	"github.com/jakt-lang/jakttest/internal/driver"
	"github.com/jakt-lang/jakttest/internal/jlog"
	"github.com/jakt-lang/jakttest/internal/pool"
)

// Test is the spec §3 "Test record": a pending or in-flight test case.
// DirectoryIndex is only meaningful once the test has been dispatched.
type Test struct {
	Expected       directive.Expected
	FileName       string
	DirectoryIndex int
	CppIncludes    string
}

// Result is what RunTests returns: spec §4.D's TestsRunResult.
type Result struct {
	PassedCount   int
	FailedCount   int
	SkippedCount  int
	FailedReasons map[string]classify.FailureReason // nil unless collection was enabled
}

// Scheduler holds the fixed pool of scratch directories and the bookkeeping
// described in spec §3 "Scheduler state". Dispatch and reaping are both
// delegated to a pool.Pool sized to the scratch-directory count (spec §2:
// "starts a driver subprocess through (B)") — the scheduler never spawns
// or waits on a process.Handle directly, only on the JobID the pool hands
// back.
type Scheduler struct {
	directories     []string
	freeDirectories []int
	runningTests    map[pool.JobID]*Test

	collectReasons bool
	passedCount    int
	failedCount    int
	failedReasons  map[string]classify.FailureReason

	cmdBuilder *driver.CommandBuilder
	pool       *pool.Pool
}

// New constructs a Scheduler over directories, with the free-directory
// stack seeded 0..len(directories) per spec §4.D. The backing pool's
// max_concurrent is set to len(directories): a job is never dispatched
// before a scratch directory has been reserved for it, so the pool can
// never be asked to exceed the directory budget.
func New(directories []string, collectReasons bool, cmdBuilder *driver.CommandBuilder) *Scheduler {
	free := make([]int, len(directories))
	for i := range directories {
		free[i] = i
	}

	var reasons map[string]classify.FailureReason
	if collectReasons {
		reasons = make(map[string]classify.FailureReason)
	}

	maxConcurrent := len(directories)
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Scheduler{
		directories:     directories,
		freeDirectories: free,
		runningTests:    make(map[pool.JobID]*Test),
		collectReasons:  collectReasons,
		failedReasons:   reasons,
		cmdBuilder:      cmdBuilder,
		pool:            pool.New(maxConcurrent),
	}
}

// RunTests implements spec §4.D's dispatch loop and finalization.
// startingFailedTests seeds the failed counter (tests that never reached
// the scheduler, e.g. directive parse failures counted by the CLI) so the
// progress line's failed count and the returned FailedCount cover the
// whole run, not just the tests this call dispatches; totalTestCount is
// the progress line's denominator.
func (s *Scheduler) RunTests(tests []Test, startingFailedTests, totalTestCount int) (Result, error) {
	s.failedCount = startingFailedTests

	for len(tests) > 0 {
		dirIndex, err := s.waitForFreeDirectory()
		if err != nil {
			return Result{}, err
		}

		// Pop from the end: test-start order is the reverse of the input
		// sequence (spec §5 "Ordering guarantees").
		last := len(tests) - 1
		test := tests[last]
		tests = tests[:last]
		test.DirectoryIndex = dirIndex

		scratchDir := s.directories[dirIndex]

		argv := s.cmdBuilder.Argv(test.CppIncludes, scratchDir, test.FileName)

		id, err := s.pool.Run(argv)
		if err != nil {
			return Result{}, fmt.Errorf("scheduler: spawn driver for %s: %w", test.FileName, err)
		}

		s.runningTests[id] = &test
		jlog.Debugf("scheduler: dispatched %s to %s (lease=%s): %s", test.FileName, scratchDir, uuid.NewString(), s.cmdBuilder.Command())

		s.printProgress(totalTestCount, test.FileName)
	}

	for len(s.runningTests) > 0 {
		err := s.reapCompleted()
		if err != nil {
			return Result{}, err
		}
	}

	clearProgressLine()

	return Result{
		PassedCount:   s.passedCount,
		FailedCount:   s.failedCount,
		FailedReasons: s.failedReasons,
	}, nil
}

// waitForFreeDirectory blocks, via the pool's own blocking reap, until a
// scratch directory is free (spec §4.D "Reaping"). This is the "wait-any
// primitive is itself blocking and is used directly in place of the
// signal-wait" variant noted in spec §9's design notes: the suspension
// point lives inside pool.WaitForAnyJobToComplete (which in turn blocks
// on process.WaitAny), so the scheduler itself never touches SIGCHLD or a
// process.Handle.
func (s *Scheduler) waitForFreeDirectory() (int, error) {
	for len(s.freeDirectories) == 0 {
		err := s.reapCompleted()
		if err != nil {
			return 0, err
		}
	}

	last := len(s.freeDirectories) - 1
	idx := s.freeDirectories[last]
	s.freeDirectories = s.freeDirectories[:last]

	return idx, nil
}

// reapCompleted blocks on the pool's WaitForAnyJobToComplete, which
// opportunistically reaps every other already-exited job alongside the one
// it woke up for, then hands every newly-completed job of ours to
// onTestExited (spec §4.D "poll_running_tests"/"on_test_exited"). completed
// is additive, so only the ids still present in runningTests are new.
func (s *Scheduler) reapCompleted() error {
	err := s.pool.WaitForAnyJobToComplete()
	if err != nil {
		return fmt.Errorf("scheduler: reap: %w", err)
	}

	completed := s.pool.Completed()
	for id, test := range s.runningTests {
		exit, ok := completed[id]
		if !ok {
			continue
		}

		s.onTestExited(id, test, exit.ExitCode)
	}

	return nil
}

// onTestExited returns test's directory to the free list, classifies the
// outcome, and updates counters (spec §4.D "on_test_exited").
func (s *Scheduler) onTestExited(id pool.JobID, test *Test, exitCode int) {
	delete(s.runningTests, id)
	s.freeDirectories = append(s.freeDirectories, test.DirectoryIndex)

	stage, stageOK := classify.StageForExitCode(exitCode)

	var stdout, stderr string
	if stageOK {
		stdout, stderr = s.readStageOutput(test.DirectoryIndex, stage)
	}

	outcome := classify.Classify(exitCode, test.Expected, stdout, stderr)

	if outcome.Passed {
		s.passedCount++
		fmt.Printf("\r%s %s\n", color.GreenString("[ PASS ]"), test.FileName)

		return
	}

	s.failedCount++
	fmt.Printf("\r%s %s\n", color.RedString("[ FAIL ]"), test.FileName)

	if s.collectReasons {
		s.failedReasons[test.FileName] = outcome.Reason
	}
}

func (s *Scheduler) readStageOutput(dirIndex int, stage classify.Stage) (stdout, stderr string) {
	dir := s.directories[dirIndex]
	stdoutFile, stderrFile := stage.OutputFilenames()

	if stdoutFile != "" {
		stdout = readFileOrEmpty(filepath.Join(dir, stdoutFile))
	}

	if stderrFile != "" {
		stderr = readFileOrEmpty(filepath.Join(dir, stderrFile))
	}

	return stdout, stderr
}

func readFileOrEmpty(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return string(b)
}

func (s *Scheduler) printProgress(total int, fileName string) {
	fmt.Printf("\r(%d/%d/%d) Testing %s", s.failedCount, s.passedCount, total, fileName)
}

func clearProgressLine() {
	fmt.Print("\r\x1b[2K")
}
