package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSpawnAndWaitAnySuccess(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "exit 0"})
	require.NoError(t, err)

	matched, result, err := WaitAny(map[Handle]struct{}{h: {}})
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
	if matched != nil {
		require.Equal(t, h, *matched)
	}
}

func TestSpawnNonZeroExit(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "exit 7"})
	require.NoError(t, err)

	_, result, err := WaitAny(map[Handle]struct{}{h: {}})
	require.NoError(t, err)
	require.Equal(t, 7, result.ExitCode)
}

func TestPollExitStillRunning(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "sleep 0.2"})
	require.NoError(t, err)

	res, err := PollExit(h)
	require.NoError(t, err)
	require.Nil(t, res)

	time.Sleep(300 * time.Millisecond)

	res, err = PollExit(h)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, 0, res.ExitCode)
}

func TestWaitAnyEmptySetErrors(t *testing.T) {
	_, _, err := WaitAny(map[Handle]struct{}{})
	require.ErrorIs(t, err, ErrEmptyWaitSet)
}

func TestSpawnMissingExecutable(t *testing.T) {
	_, err := Spawn([]string{"/no/such/executable-jakttest"})
	require.ErrorIs(t, err, ErrExec)
}

func TestPollAnyReapsWildcard(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "exit 3"})
	require.NoError(t, err)

	var exit *ExitResult
	for i := 0; i < 20 && exit == nil; i++ {
		exit, err = PollAny()
		require.NoError(t, err)
		if exit == nil {
			time.Sleep(20 * time.Millisecond)
		}
	}

	require.NotNil(t, exit)
	require.Equal(t, h, exit.Process)
	require.Equal(t, 3, exit.ExitCode)
}

func TestKillStopsRunningProcess(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "sleep 5"})
	require.NoError(t, err)

	require.NoError(t, Kill(h))

	_, result, err := WaitAny(map[Handle]struct{}{h: {}})
	require.NoError(t, err)
	require.NotEqual(t, 0, result.ExitCode)
}
