package main

import (
	"errors"
	"runtime"

	"github.com/spf13/cobra"
)

// errTestsFailed signals "ran cleanly but at least one test failed" (spec
// §6 "Exit ... 1 on any failure or argument error"), as distinct from an
// actual runner error, so main can exit 1 without printing "Error: ...".
var errTestsFailed = errors.New("one or more tests failed")

func newRootCmd() *cobra.Command {
	c := &cmdRun{}

	cmd := &cobra.Command{
		Use:   "jakttest [flags] <file-or-directory>...",
		Short: "Run Jakt compiler tests in parallel",
		// No minimum here: positional args are the usual source of paths,
		// but --config-file may supply a paths: list instead (see
		// resolvePaths in run.go), so the real "at least one path" check
		// happens in run() once the config has been loaded.
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.run,
	}

	cmd.Flags().IntVarP(&c.jobs, "jobs", "j", runtime.NumCPU(), "number of tests to run concurrently")
	cmd.Flags().StringVarP(&c.buildDir, "build-dir", "b", "build", "path to the Jakt toolchain build directory")
	cmd.Flags().StringVar(&c.tempDir, "temp-dir", "", "directory under which scratch directories are created")
	cmd.Flags().StringVarP(&c.cppCompiler, "cpp-compiler", "C", "clang++", "path to the C++ compiler used to build generated output")
	cmd.Flags().StringVar(&c.targetTriple, "target-triple", "", "target triple passed through to the driver")
	cmd.Flags().BoolVar(&c.hideReasons, "hide-reasons", false, "don't collect or print per-failure diagnostic reasons")
	cmd.Flags().StringVar(&c.configFile, "config-file", "", "optional YAML file supplying defaults for the flags above")
	cmd.Flags().BoolVar(&c.logDebug, "debug", false, "show all debug messages")
	cmd.Flags().BoolVarP(&c.logVerbose, "verbose", "v", false, "show all information messages")

	return cmd
}
