// Package driver is the test runner's external collaborator for the
// per-test driver subprocess (spec §1 component F, §6 "Driver subprocess
// contract"). The core engine only ever needs the argv it should spawn;
// what the driver actually does with that argv is out of scope here.
package driver

import "github.com/kballard/go-shellquote"

// Config is everything the scheduler needs to know to build a driver argv
// that doesn't change from test to test within one run.
type Config struct {
	ShellInvocation string // e.g. "/bin/sh", "-c" prefix, or a direct interpreter path
	JaktBinary      string // <build>/bin/jakt
	JaktLibDir      string // <build>/lib
	TargetTriple    string
	CppCompiler     string // path, or "clang++" if unset
}

// noneSentinel is the literal string substituted for an empty --cpp-include
// value. Some host shells cannot pass an empty argv element, so the driver
// contract requires a non-empty sentinel instead (spec §9 "Sentinel argv
// element").
const noneSentinel = "None"

// CommandBuilder holds the pre-allocated argv buffer the scheduler reuses
// across dispatches (spec §4.D, §5 "Resource sharing": the buffer is a
// single-owner scratch allocation; after Spawn returns it is read only by
// Command for a debug log line, before the next Argv call overwrites it).
// Only the buffer's last three elements vary per test: cpp includes, the
// scratch directory, and the source file name.
type CommandBuilder struct {
	argv []string
	// tailIndex is where the per-test tail (cppIncludes, dir, file) starts
	// within argv.
	tailIndex int
}

// NewCommandBuilder constructs the fixed prefix of the argv once per run.
func NewCommandBuilder(cfg Config) *CommandBuilder {
	cppCompiler := cfg.CppCompiler
	if cppCompiler == "" {
		cppCompiler = "clang++"
	}

	prefix := []string{
		cfg.ShellInvocation,
		"jakttest/run_one.py",
		"--jakt-binary", cfg.JaktBinary,
		"--jakt-lib-dir", cfg.JaktLibDir,
		"--target-triple", cfg.TargetTriple,
		"--cpp-compiler", cppCompiler,
		"--cpp-include", noneSentinel, // placeholder, overwritten per test
		"",                            // scratch dir placeholder
		"",                            // source file placeholder
	}

	return &CommandBuilder{
		argv:      prefix,
		tailIndex: len(prefix) - 3,
	}
}

// Argv overwrites the buffer's last three positions with this test's
// cpp includes, scratch directory, and source file, then returns the full
// argv. The returned slice aliases the builder's internal buffer: it must
// be consumed (passed to Spawn) before the next call to Argv.
func (b *CommandBuilder) Argv(cppIncludes, scratchDir, sourceFile string) []string {
	if cppIncludes == "" {
		cppIncludes = noneSentinel
	}

	b.argv[b.tailIndex] = cppIncludes
	b.argv[b.tailIndex+1] = scratchDir
	b.argv[b.tailIndex+2] = sourceFile

	return b.argv
}

// Command renders the current argv as a single shell-quoted string, used
// only for debug logging (the scheduler never executes this string — it
// always spawns the argv slice directly).
func (b *CommandBuilder) Command() string {
	return shellquote.Join(b.argv...)
}
