package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jakt-lang/jakttest/internal/jlog"
)

// allocateScratchDirs creates n fixed scratch directories under tempDir,
// named jakttest-tmp-<i> (spec §6 "Persisted state"), and returns a cleanup
// function that removes them recursively.
func allocateScratchDirs(tempDir string, n int) (dirs []string, cleanup func(), err error) {
	if n < 1 {
		n = 1
	}

	dirs = make([]string, 0, n)

	for i := 0; i < n; i++ {
		dir := filepath.Join(tempDir, fmt.Sprintf("jakttest-tmp-%d", i))

		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			removeAll(dirs)
			return nil, nil, fmt.Errorf("jakttest: create scratch dir %s: %w", dir, err)
		}

		dirs = append(dirs, dir)
	}

	cleanup = func() {
		removeAll(dirs)
	}

	return dirs, cleanup, nil
}

func removeAll(dirs []string) {
	for _, dir := range dirs {
		err := os.RemoveAll(dir)
		if err != nil {
			jlog.Warnf("jakttest: cleanup %s: %v", dir, err)
		}
	}
}
