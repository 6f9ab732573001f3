package buildpool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCompiler writes a shell script standing in for a C++ compiler: it
// understands just enough of -c/-o/plain-link invocations to exercise
// Build's success and failure paths without needing a real toolchain.
func fakeCompiler(t *testing.T, failOn string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cc.sh")
	script := `#!/bin/sh
fail_on="` + failOn + `"
for arg in "$@"; do
  if [ -n "$fail_on" ] && [ "$arg" = "$fail_on" ]; then
    echo "error in $arg" >&2
    exit 1
  fi
done
# Find the -o argument and touch it so downstream link/status checks see a file.
prev=""
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then
    : > "$arg"
  fi
  prev="$arg"
done
exit 0
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}

func TestBuildSucceeds(t *testing.T) {
	srcDir := t.TempDir()
	objDir := t.TempDir()

	a := filepath.Join(srcDir, "a.cpp")
	b := filepath.Join(srcDir, "b.cpp")
	require.NoError(t, os.WriteFile(a, []byte(""), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(""), 0o644))

	cc := fakeCompiler(t, "")

	result, err := Build([]string{a, b}, cc, objDir, filepath.Join(objDir, "out"), 2)
	require.NoError(t, err)
	require.True(t, result.Succeeded())
}

func TestBuildReportsFailedSource(t *testing.T) {
	srcDir := t.TempDir()
	objDir := t.TempDir()

	a := filepath.Join(srcDir, "a.cpp")
	b := filepath.Join(srcDir, "bad.cpp")
	require.NoError(t, os.WriteFile(a, []byte(""), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(""), 0o644))

	cc := fakeCompiler(t, b)

	result, err := Build([]string{a, b}, cc, objDir, filepath.Join(objDir, "out"), 2)
	require.NoError(t, err)
	require.False(t, result.Succeeded())
	require.Contains(t, result.FailedSources, b)
	require.Contains(t, result.CompileErrors[b], "error in "+b)
}
