package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jakt-lang/jakttest/internal/config"
	"github.com/jakt-lang/jakttest/internal/directive"
	"github.com/jakt-lang/jakttest/internal/driver"
	"github.com/jakt-lang/jakttest/internal/jlog"
	"github.com/jakt-lang/jakttest/internal/report"
	"github.com/jakt-lang/jakttest/internal/scheduler"
)

// errArg signals a CLI argument-resolution failure (spec §7 ErrArg):
// neither positional args nor a --config-file paths: list supplied
// anything to test.
var errArg = errors.New("jakttest: no files or directories given")

// cmdRun holds every flag value newRootCmd wires up; run is its RunE.
type cmdRun struct {
	jobs         int
	buildDir     string
	tempDir      string
	cppCompiler  string
	targetTriple string
	hideReasons  bool
	configFile   string
	logDebug     bool
	logVerbose   bool
}

func (c *cmdRun) run(cmd *cobra.Command, args []string) error {
	if c.logDebug {
		jlog.SetDebug()
	} else if c.logVerbose {
		jlog.SetVerbose()
	}

	cfg, err := c.resolveConfig(cmd)
	if err != nil {
		return err
	}

	paths, err := resolvePaths(args, cfg)
	if err != nil {
		return err
	}

	files, err := discoverFiles(paths)
	if err != nil {
		return err
	}

	tests, failedParse, skipped := collectTests(files)

	dirs, cleanup, err := allocateScratchDirs(cfg.TempDir, cfg.Jobs)
	if err != nil {
		return err
	}
	defer cleanup()

	builder := driver.NewCommandBuilder(driver.Config{
		ShellInvocation: "/bin/sh",
		JaktBinary:      filepath.Join(cfg.BuildDir, "bin", "jakt"),
		JaktLibDir:      filepath.Join(cfg.BuildDir, "lib"),
		TargetTriple:    cfg.TargetTriple,
		CppCompiler:     cfg.CppCompiler,
	})

	sched := scheduler.New(dirs, !cfg.HideReasons, builder)

	totalTestCount := len(tests) + failedParse

	result, err := sched.RunTests(tests, failedParse, totalTestCount)
	if err != nil {
		return err
	}

	summary := report.Summary{
		Passed:  result.PassedCount,
		Failed:  result.FailedCount,
		Skipped: skipped,
		Reasons: result.FailedReasons,
	}
	report.Print(os.Stdout, summary)

	if !summary.AllPassed() {
		return errTestsFailed
	}

	return nil
}

// resolvePaths picks the positional arguments as the set of files and
// directories to test, falling back to the --config-file's paths: list
// when no positional arguments were given (internal/config.Config.Paths
// would otherwise never be read by anything).
func resolvePaths(args []string, cfg config.Config) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	if len(cfg.Paths) > 0 {
		return cfg.Paths, nil
	}

	return nil, errArg
}

// resolveConfig applies --config-file (if given) as a baseline, then lets
// any flag the user actually passed win over the file's value (spec_full.md
// "Configuration": flags always win).
func (c *cmdRun) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	cfg.Jobs = c.jobs
	cfg.BuildDir = c.buildDir
	cfg.TempDir = c.tempDir
	cfg.CppCompiler = c.cppCompiler
	cfg.TargetTriple = c.targetTriple
	cfg.HideReasons = c.hideReasons

	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	if c.configFile == "" {
		return cfg, nil
	}

	merged, err := config.LoadFile(c.configFile, cfg)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("jobs") {
		merged.Jobs = c.jobs
	}
	if flags.Changed("build-dir") {
		merged.BuildDir = c.buildDir
	}
	if flags.Changed("temp-dir") {
		merged.TempDir = c.tempDir
	}
	if flags.Changed("cpp-compiler") {
		merged.CppCompiler = c.cppCompiler
	}
	if flags.Changed("target-triple") {
		merged.TargetTriple = c.targetTriple
	}
	if flags.Changed("hide-reasons") {
		merged.HideReasons = c.hideReasons
	}

	return merged, nil
}

// collectTests runs the directive parser over every discovered file,
// separating skipped and unparseable files from the pending test list.
// Skipped tests are never dispatched to the scheduler and are counted
// separately (spec_full.md "Supplemented features"); parse failures count
// toward failedParse, matching invariant 4's "skipped tests and
// parse-failure tests are counted separately".
func collectTests(files []string) (tests []scheduler.Test, failedParse, skipped int) {
	for _, f := range files {
		parsed, err := directive.Parse(f)
		if err != nil {
			if errors.Is(err, directive.ErrSkip) {
				skipped++
				continue
			}

			jlog.Errorf("%v", err)
			failedParse++

			continue
		}

		tests = append(tests, scheduler.Test{
			Expected:    parsed.Expected,
			FileName:    f,
			CppIncludes: parsed.CppIncludes,
		})
	}

	return tests, failedParse, skipped
}
