// Package fstest provides a conformance test suite for validating backend
// implementations against the core.Backend contract.
//
// Backend packages import it from their tests and run the whole suite, or a
// single group, against a fresh instance:
//
//	func TestConformance(t *testing.T) {
//	    fstest.TestSuite(t, func() (core.Backend, string) {
//	        return billy.NewLocal(), t.TempDir()
//	    })
//	}
//
// The second return value is a writable root, in the backend's
// protocol-stripped form, under which the suite creates its fixtures.
package fstest

import (
	"context"
	"io"
	"path"
	"slices"
	"testing"
	gofstest "testing/fstest"

	"github.com/amphancm/olmocr/fs/core"
)

// NewFunc returns a fresh backend and a writable root on it.
type NewFunc func() (core.Backend, string)

// FSTestConfig configures the test suite to match backend behavior.
type FSTestConfig struct {
	// VirtualDirectories indicates directories are virtual (e.g., S3 prefixes).
	// When true, a directory exists only while something is stored under it
	// and MkdirAll creates nothing.
	VirtualDirectories bool

	// ReadOnly indicates the backend cannot write. The suite then only runs
	// groups that need no fixtures.
	ReadOnly bool

	// SkipTests lists specific test names to skip.
	// Format: "Group/SubTest" (e.g., "WriteFS/Abort").
	SkipTests []string
}

// POSIXTestConfig returns configuration for POSIX-like backends (local, memory).
func POSIXTestConfig() FSTestConfig {
	return FSTestConfig{}
}

// S3TestConfig returns configuration for S3-like backends (MinIO, S3).
func S3TestConfig() FSTestConfig {
	return FSTestConfig{VirtualDirectories: true}
}

func (c FSTestConfig) skip(t *testing.T, name string) bool {
	t.Helper()
	if slices.Contains(c.SkipTests, name) {
		t.Skip("Skipped by provider configuration")
		return true
	}
	return false
}

// TestSuite runs all conformance tests with POSIXTestConfig.
func TestSuite(t *testing.T, newFS NewFunc) {
	TestSuiteWithConfig(t, newFS, POSIXTestConfig())
}

// TestSuiteWithConfig runs all conformance tests with behavior configuration.
// Each group gets a fresh backend from newFS.
func TestSuiteWithConfig(t *testing.T, newFS NewFunc, config FSTestConfig) {
	if config.ReadOnly {
		t.Skip("read-only backends are tested by their own package")
	}

	groups := []struct {
		name string
		run  func(*testing.T, core.Backend, string, FSTestConfig)
	}{
		{"QueryFS", TestQueryFSWithConfig},
		{"GlobFS", TestGlobFSWithConfig},
		{"ReadFS", TestReadFSWithConfig},
		{"WriteFS", TestWriteFSWithConfig},
		{"ManageFS", TestManageFSWithConfig},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if config.skip(t, g.name) {
				return
			}
			backend, root := newFS()
			g.run(t, backend, root, config)
		})
	}
}

// writeFixture creates name under root with content, failing the test on
// error.
func writeFixture(t *testing.T, b core.Backend, root, name, content string) string {
	t.Helper()
	full := path.Join(root, name)
	w, err := b.Create(context.Background(), full)
	if err != nil {
		t.Fatalf("Create(%q): setup failed: %v", full, err)
	}
	if _, err := io.WriteString(w, content); err != nil {
		t.Fatalf("Write(%q): setup failed: %v", full, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(%q): setup failed: %v", full, err)
	}
	return full
}

// seedFixtures copies names under dir in one pass, each holding its own name.
func seedFixtures(t *testing.T, b core.Backend, dir string, names ...string) {
	t.Helper()
	files := make(gofstest.MapFS, len(names))
	for _, n := range names {
		files[n] = &gofstest.MapFile{Data: []byte(n)}
	}
	if err := core.CopyFromFS(context.Background(), files, ".", b, dir); err != nil {
		t.Fatalf("CopyFromFS(%q): setup failed: %v", dir, err)
	}
}

// readAll opens name and returns its content.
func readAll(t *testing.T, b core.Backend, name string) (string, error) {
	t.Helper()
	r, err := b.Open(context.Background(), name)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	return string(data), err
}
