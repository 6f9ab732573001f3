package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgvShapeAndSentinel(t *testing.T) {
	b := NewCommandBuilder(Config{
		ShellInvocation: "/bin/sh",
		JaktBinary:      "/build/bin/jakt",
		JaktLibDir:      "/build/lib",
		TargetTriple:    "x86_64-linux-gnu",
	})

	argv := b.Argv("", "/tmp/jakttest-tmp-0", "foo.jakt")

	require.Equal(t, []string{
		"/bin/sh",
		"jakttest/run_one.py",
		"--jakt-binary", "/build/bin/jakt",
		"--jakt-lib-dir", "/build/lib",
		"--target-triple", "x86_64-linux-gnu",
		"--cpp-compiler", "clang++",
		"--cpp-include", "None",
		"/tmp/jakttest-tmp-0",
		"foo.jakt",
	}, argv)
}

func TestArgvNeverPassesEmptyCppInclude(t *testing.T) {
	b := NewCommandBuilder(Config{
		ShellInvocation: "/bin/sh",
		JaktBinary:      "/build/bin/jakt",
		JaktLibDir:      "/build/lib",
		TargetTriple:    "x86_64-linux-gnu",
	})
	argv := b.Argv("", "dir", "file.jakt")

	for _, a := range argv {
		require.NotEqual(t, "", a)
	}
}

func TestCommandShellQuotesArgv(t *testing.T) {
	b := NewCommandBuilder(Config{ShellInvocation: "/bin/sh"})
	b.Argv("<vector>", "dir with spaces", "file.jakt")

	cmd := b.Command()
	require.Contains(t, cmd, `'dir with spaces'`)
}

func TestArgvReusesBackingArray(t *testing.T) {
	b := NewCommandBuilder(Config{})

	first := b.Argv("<vector>", "dir1", "a.jakt")
	second := b.Argv("<string>", "dir2", "b.jakt")

	// Reused buffer: mutating via the second call is observable through
	// the first slice too, since they alias the same backing array.
	require.Equal(t, second, first)
}
