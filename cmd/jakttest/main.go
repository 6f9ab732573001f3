// Command jakttest is the parallel test runner's CLI entry point (spec §1,
// component G). It discovers source files, asks the directive parser what
// each one expects, hands the pending tests to the scheduler, and prints a
// summary.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd()

	err := cmd.Execute()
	if err != nil {
		if errors.Is(err, errTestsFailed) {
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
