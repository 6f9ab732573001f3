package directive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "t.jakt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestParseOutputDirective(t *testing.T) {
	path := writeTemp(t, "// Expect:\n// - output: \"hi\\n\"\nfunction main() {}\n")

	parsed, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, Okay, parsed.Expected.Kind)
	require.Equal(t, "hi\n", parsed.Expected.Output)
}

func TestParseErrorDirective(t *testing.T) {
	path := writeTemp(t, "// Expect:\n// - error: \"undefined name\"\nfunction main() {}\n")

	parsed, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, RuntimeError, parsed.Expected.Kind)
	require.Equal(t, "undefined name", parsed.Expected.Output)
}

func TestParseCompileErrorDirective(t *testing.T) {
	path := writeTemp(t, "// Expect:\n// - compile_error: \"undefined type Foo\"\nfunction main() {}\n")

	parsed, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, CompileError, parsed.Expected.Kind)
	require.Equal(t, "undefined type Foo", parsed.Expected.Output)
}

func TestParseSkipDirective(t *testing.T) {
	path := writeTemp(t, "// Expect: skip\nfunction main() {}\n")

	_, err := Parse(path)
	require.ErrorIs(t, err, ErrSkip)
}

func TestParseMissingDirectiveErrors(t *testing.T) {
	path := writeTemp(t, "function main() {}\n")

	_, err := Parse(path)
	require.Error(t, err)
}

func TestParseCppIncludes(t *testing.T) {
	path := writeTemp(t, "// Expect:\n// - output: \"ok\"\n// cpp-includes: <vector>,<string>\n")

	parsed, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, "<vector>,<string>", parsed.CppIncludes)
}
