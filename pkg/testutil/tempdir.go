// Package testutil provides helpers shared by tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

var (
	testRunDir     string
	testRunDirOnce sync.Once
)

// GetTestRunDir returns a directory shared by every test in the current test
// binary run. It lives under the system temp dir in "freeze-test-runs".
func GetTestRunDir() string {
	testRunDirOnce.Do(func() {
		base := filepath.Join(os.TempDir(), "freeze-test-runs")
		if err := os.MkdirAll(base, 0o755); err != nil {
			panic("failed to create test run base directory: " + err.Error())
		}
		dir, err := os.MkdirTemp(base, "run-*")
		if err != nil {
			panic("failed to create test run directory: " + err.Error())
		}
		testRunDir = dir
	})
	return testRunDir
}

// TempDir creates a directory matching pattern under the test run directory
// and removes it when the test finishes.
func TempDir(t testing.TB, pattern string) string {
	t.Helper()
	dir, err := os.MkdirTemp(GetTestRunDir(), pattern)
	if err != nil {
		t.Fatalf("failed to create temp directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	return dir
}

// Chdir changes the working directory for the duration of the test.
func Chdir(t testing.TB, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(prev)
	})
}

// ListFiles returns every regular file below root as slash separated paths
// relative to root.
func ListFiles(t testing.TB, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("failed to list files in %s: %v", root, err)
	}
	return files
}
