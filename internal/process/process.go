// Package process provides the primitives used to spawn, poll, wait for,
// and kill a single child process. It is the lowest layer of the test
// runner: the pool and scheduler packages build bounded concurrency and
// scratch-directory accounting on top of it, but this package knows
// nothing about jobs, tests, or directories.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Sentinel error kinds. Callers distinguish them with errors.Is.
var (
	// ErrSpawn indicates process creation itself failed (e.g. fork failure).
	ErrSpawn = errors.New("process: spawn failed")
	// ErrExec indicates the post-fork image replacement failed (exec(2) errno).
	ErrExec = errors.New("process: exec failed")
	// ErrWait indicates an unexpected failure from the kernel during wait/poll.
	ErrWait = errors.New("process: wait failed")
	// ErrEmptyWaitSet is returned by WaitAny when called with no handles to
	// wait for. Per the design notes, this is a caller bug: the scheduler
	// must never invoke WaitAny with an empty running set.
	ErrEmptyWaitSet = errors.New("process: wait-any called with empty set")
)

// Handle is an opaque identifier for a live child process. It is created by
// Spawn and consumed by PollExit, WaitAny, and Kill. A Handle has at most
// one logical owner at a time.
type Handle int

// ExitResult is produced when a child terminates, whether normally or via
// signal. ExitCode follows the host OS's standard decoding: for signalled
// processes this is 128+signal, matching the shell convention (computed
// here; syscall.WaitStatus.ExitStatus itself reports -1 for them).
type ExitResult struct {
	ExitCode int
	Process  Handle
}

// Spawn creates a child process executing argv[0] with the remaining
// elements as arguments, inheriting the parent's file descriptors. This is
// what the test scheduler's driver subprocess uses: the driver itself
// writes its per-stage stdout/stderr into files under the scratch
// directory it was given (spec §6), so the parent never needs to redirect
// anything for it.
func Spawn(argv []string) (Handle, error) {
	return SpawnWithFiles(argv, os.Stdin, os.Stdout, os.Stderr)
}

// SpawnWithFiles is Spawn with explicit stdio redirection. internal/pool's
// RunWithFiles exposes this to callers that need a child's own output
// captured rather than inherited — the build-orchestration module
// (internal/buildpool) uses it to capture each compiler invocation's
// stderr into a per-source file, so concurrent compiles don't interleave
// their output on the parent's stderr.
func SpawnWithFiles(argv []string, stdin, stdout, stderr *os.File) (Handle, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("%w: empty argv", ErrSpawn)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Start()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return 0, fmt.Errorf("%w: %s: %v", ErrExec, argv[0], execErr.Err)
		}

		// os.StartProcess reports an exec(2) failure in the forked child as
		// an *os.PathError carrying the child's errno; EAGAIN and ENOMEM
		// from fork itself stay ErrSpawn.
		var pathErr *os.PathError
		if errors.As(err, &pathErr) && !errors.Is(pathErr.Err, syscall.EAGAIN) && !errors.Is(pathErr.Err, syscall.ENOMEM) {
			return 0, fmt.Errorf("%w: %s: %v", ErrExec, argv[0], pathErr.Err)
		}

		return 0, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	// We only need the pid from here on; release the *os.Process so a
	// later garbage collection finalizer doesn't race with our own Wait4
	// calls against the same pid.
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()

	return Handle(pid), nil
}

// PollExit performs a non-blocking check of whether handle has exited. A
// nil *ExitResult with a nil error means the process is still running.
func PollExit(handle Handle) (*ExitResult, error) {
	var status syscall.WaitStatus

	wpid, err := syscall.Wait4(int(handle), &status, syscall.WNOHANG, nil)
	if err != nil {
		// ECHILD: no such child, already reaped by someone else or never
		// existed. Surfaced as ErrWait like any other failure; the pool's
		// reconciliation scan relies on this to detect stale entries.
		return nil, fmt.Errorf("%w: %v", ErrWait, err)
	}

	if wpid == 0 {
		return nil, nil
	}

	return &ExitResult{ExitCode: decodeExitCode(status), Process: Handle(wpid)}, nil
}

// PollAny is the non-blocking, wildcard-pid counterpart of PollExit: it
// reaps any already-exited child without knowing its handle in advance.
// The scheduler does not call it: it reaps through internal/pool, which
// uses WaitAny and PollExit. A nil *ExitResult with a nil error
// means no child has exited since the last call. ErrWait wrapping
// syscall.ECHILD means there are currently no children to wait for at all,
// which callers treat the same as "nothing exited".
func PollAny() (*ExitResult, error) {
	var status syscall.WaitStatus

	wpid, err := syscall.Wait4(-1, &status, syscall.WNOHANG, nil)
	if err != nil {
		if errors.Is(err, syscall.ECHILD) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: %v", ErrWait, err)
	}

	if wpid <= 0 {
		return nil, nil
	}

	return &ExitResult{ExitCode: decodeExitCode(status), Process: Handle(wpid)}, nil
}

// WaitAny blocks until some child of this process terminates. It does not
// filter on atLeast — it waits for any child, the same observable behavior
// as the reference implementation's wait-for-some-set-of-processes
// primitive (see design notes, §9 Open Question). matchedKey is populated
// only when the exited pid happens to be a member of atLeast; since
// syscall.Wait4(-1, ...) has no way to restrict itself to a subset of
// children, an exit belonging to some other subsystem's child leaves
// matchedKey nil. Callers must not rely on matchedKey alone for identity
// recovery — the pool ignores matchedKey, matches result.Process against
// its own running set, and then sweeps the rest of that set with PollExit.
func WaitAny(atLeast map[Handle]struct{}) (matchedKey *Handle, result ExitResult, err error) {
	if len(atLeast) == 0 {
		return nil, ExitResult{}, ErrEmptyWaitSet
	}

	var status syscall.WaitStatus

	wpid, werr := syscall.Wait4(-1, &status, 0, nil)
	if werr != nil {
		return nil, ExitResult{}, fmt.Errorf("%w: %v", ErrWait, werr)
	}

	result = ExitResult{ExitCode: decodeExitCode(status), Process: Handle(wpid)}

	if _, ok := atLeast[result.Process]; ok {
		h := result.Process
		matchedKey = &h
	}

	return matchedKey, result, nil
}

// Kill sends the strongest available termination signal to handle and does
// not wait for it to die. The caller is responsible for reaping it
// afterwards (via WaitAny/PollExit), same as kill(2)'s own contract.
func Kill(handle Handle) error {
	err := syscall.Kill(int(handle), syscall.SIGKILL)
	if err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("%w: kill: %v", ErrWait, err)
	}

	return nil
}

func decodeExitCode(status syscall.WaitStatus) int {
	switch {
	case status.Exited():
		return status.ExitStatus()
	case status.Signaled():
		return 128 + int(status.Signal())
	default:
		return -1
	}
}
