// Package buildpool is the secondary build-orchestration module noted in
// spec §1 and §4.B's rationale: compiling a list of source files into
// object files and linking them is architecturally identical to running
// the test pool, so it reuses internal/pool rather than re-implementing
// bounded concurrency.
package buildpool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jakt-lang/jakttest/internal/pool"
)

// Result is what Build returns: which sources failed to compile (if any),
// with each one's captured compiler stderr, and whether the link step
// itself failed.
type Result struct {
	FailedSources []string
	CompileErrors map[string]string
	LinkFailed    bool
	LinkExitCode  int
	LinkStderr    string
}

// Succeeded reports whether every source compiled and the link step (if it
// ran) exited zero.
func (r Result) Succeeded() bool {
	return len(r.FailedSources) == 0 && !r.LinkFailed
}

// Build compiles each of sources into an object file under objDir using
// compilerPath, then links the resulting object files into outputBinary.
// Compilation of every source is dispatched through its own pool.Pool, the
// same bounded pool type the test scheduler dispatches driver subprocesses
// through, capped at jobs concurrent compiles; the link step only runs if
// every compile succeeded.
// Each compile's stderr is captured to its own file under objDir via
// pool.RunWithFiles, so concurrent compiles never interleave their output
// on this process's own stderr; a failed compile's captured stderr comes
// back in Result.CompileErrors.
func Build(sources []string, compilerPath, objDir, outputBinary string, jobs int) (Result, error) {
	if jobs < 1 {
		jobs = 1
	}

	p := pool.New(jobs)

	jobToSource := make(map[pool.JobID]string, len(sources))
	jobToStderrPath := make(map[pool.JobID]string, len(sources))

	for _, src := range sources {
		base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		objFile := filepath.Join(objDir, base+".o")
		stderrPath := filepath.Join(objDir, base+".stderr")

		stderrFile, err := os.Create(stderrPath)
		if err != nil {
			return Result{}, fmt.Errorf("buildpool: create stderr capture for %s: %w", src, err)
		}

		id, err := p.RunWithFiles([]string{compilerPath, "-c", src, "-o", objFile}, os.Stdout, stderrFile)
		_ = stderrFile.Close()
		if err != nil {
			return Result{}, fmt.Errorf("buildpool: compile %s: %w", src, err)
		}

		jobToSource[id] = src
		jobToStderrPath[id] = stderrPath
	}

	err := p.WaitForAllJobsToComplete()
	if err != nil {
		return Result{}, fmt.Errorf("buildpool: waiting for compiles: %w", err)
	}

	var result Result

	// The builder subsystem iterates completed after a wait-for-all to
	// detect failures, per spec §4.B's rationale for the pool's additive
	// completed map.
	for id, exit := range p.Completed() {
		if exit.ExitCode != 0 {
			src := jobToSource[id]
			result.FailedSources = append(result.FailedSources, src)

			if result.CompileErrors == nil {
				result.CompileErrors = make(map[string]string)
			}
			result.CompileErrors[src] = readFileOrEmpty(jobToStderrPath[id])
		}
	}

	if len(result.FailedSources) > 0 {
		return result, nil
	}

	objFiles := make([]string, 0, len(sources))
	for _, src := range sources {
		objFiles = append(objFiles, filepath.Join(objDir, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))+".o"))
	}

	linkPool := pool.New(1)

	linkArgv := append([]string{compilerPath, "-o", outputBinary}, objFiles...)

	linkStderrPath := filepath.Join(objDir, "link.stderr")
	linkStderrFile, err := os.Create(linkStderrPath)
	if err != nil {
		return Result{}, fmt.Errorf("buildpool: create stderr capture for link: %w", err)
	}

	linkID, err := linkPool.RunWithFiles(linkArgv, os.Stdout, linkStderrFile)
	_ = linkStderrFile.Close()
	if err != nil {
		return Result{}, fmt.Errorf("buildpool: link: %w", err)
	}

	err = linkPool.WaitForAllJobsToComplete()
	if err != nil {
		return Result{}, fmt.Errorf("buildpool: waiting for link: %w", err)
	}

	linkExit, _ := linkPool.Status(linkID)
	if linkExit.ExitCode != 0 {
		result.LinkFailed = true
		result.LinkExitCode = linkExit.ExitCode
		result.LinkStderr = readFileOrEmpty(linkStderrPath)
	}

	return result, nil
}

func readFileOrEmpty(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return string(b)
}
