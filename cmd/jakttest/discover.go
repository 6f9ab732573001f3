package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// discoverFiles expands positional arguments into a flat list of test
// files: a plain file is used as-is, a directory is DFS-traversed for
// *.jakt files (spec §6 "directories are DFS-traversed for *.jakt").
func discoverFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("jakttest: %w", err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			if filepath.Ext(path) == ".jakt" {
				files = append(files, path)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("jakttest: walk %s: %w", arg, err)
		}
	}

	return files, nil
}
