// Package directive is the test runner's external collaborator that
// extracts expectations from a source file's comments (spec §1, component
// C). The core engine (pool, scheduler, classifier) only depends on the
// Expected and Kind types this package exports; it never cares how they
// were derived.
package directive

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Kind is the expected outcome of running a test, as declared by its
// source file's directives.
type Kind int

const (
	// Okay means the test is expected to run to completion and produce a
	// specific stdout.
	Okay Kind = iota
	// CompileError means the test is expected to fail to compile, with
	// output matching a substring of the failing compile stage's stderr;
	// the classifier treats TranspileJakt as its expected stage.
	CompileError
	// RuntimeError means the test is expected to run but exit reporting an
	// error, matched as a substring of stderr.
	RuntimeError
)

func (k Kind) String() string {
	switch k {
	case Okay:
		return "Okay"
	case CompileError:
		return "CompileError"
	case RuntimeError:
		return "RuntimeError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Expected is the directive-derived oracle for a test (spec §3).
type Expected struct {
	Kind   Kind
	Output string
}

// ErrSkip is returned by Parse when the source file carries a skip marker
// directive. Callers (the CLI's file-discovery step) exclude the file from
// the set of pending tests instead of treating it as a parse failure.
var ErrSkip = errors.New("directive: test skipped")

// Parsed is everything Parse recovers from a single source file.
type Parsed struct {
	Expected    Expected
	CppIncludes string
}

// Parse reads path and extracts its Expect directive. Directive syntax
// (spec §6):
//
//	// Expect:
//	// - output: "hi\n"
//
//	// Expect:
//	// - error: "undefined name"
//
//	// Expect:
//	// - compile_error: "undefined type Foo"
//
//	// Expect: skip
//
// `- error:` yields RuntimeError (checked against the TestRun stage's
// stderr); `- compile_error:` yields CompileError (checked against the
// TranspileJakt stage's stderr) — the two directive keys are how a source
// file distinguishes a runtime failure from a transpilation failure,
// since both are reported as substring-matched error text (spec §4.E).
//
// An optional `// cpp-includes: <header1>,<header2>` line supplies the
// cpp_includes test-record field.
func Parse(path string) (Parsed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Parsed{}, fmt.Errorf("directive: open %s: %w", path, err)
	}
	defer f.Close()

	var (
		haveExpect  bool
		kind        = Okay
		output      string
		cppIncludes string
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(scanner.Text()), "//"))
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "Expect:"):
			rest := strings.TrimSpace(strings.TrimPrefix(line, "Expect:"))
			if rest == "skip" {
				return Parsed{}, ErrSkip
			}

			haveExpect = true
		case strings.HasPrefix(line, "- output:"):
			output, err = unquoteDirectiveValue(strings.TrimPrefix(line, "- output:"))
			if err != nil {
				return Parsed{}, fmt.Errorf("directive: %s: %w", path, err)
			}

			kind = Okay
		case strings.HasPrefix(line, "- compile_error:"):
			output, err = unquoteDirectiveValue(strings.TrimPrefix(line, "- compile_error:"))
			if err != nil {
				return Parsed{}, fmt.Errorf("directive: %s: %w", path, err)
			}

			kind = CompileError
		case strings.HasPrefix(line, "- error:"):
			output, err = unquoteDirectiveValue(strings.TrimPrefix(line, "- error:"))
			if err != nil {
				return Parsed{}, fmt.Errorf("directive: %s: %w", path, err)
			}

			kind = RuntimeError
		case strings.HasPrefix(line, "cpp-includes:"):
			cppIncludes = strings.TrimSpace(strings.TrimPrefix(line, "cpp-includes:"))
		}
	}

	if err := scanner.Err(); err != nil {
		return Parsed{}, fmt.Errorf("directive: scan %s: %w", path, err)
	}

	if !haveExpect {
		return Parsed{}, fmt.Errorf("directive: %s: no Expect directive found", path)
	}

	return Parsed{
		Expected:    Expected{Kind: kind, Output: output},
		CppIncludes: cppIncludes,
	}, nil
}

func unquoteDirectiveValue(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}

	unquoted, err := strconv.Unquote(s)
	if err != nil {
		return "", fmt.Errorf("invalid quoted directive value %q: %w", s, err)
	}

	return unquoted, nil
}
