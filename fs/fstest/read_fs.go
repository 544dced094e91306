package fstest

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"testing"

	"github.com/amphancm/olmocr/fs/core"
)

// TestReadFSWithConfig tests Open.
func TestReadFSWithConfig(t *testing.T, b core.Backend, root string, config FSTestConfig) {
	file := writeFixture(t, b, root, "read/file.txt", "test file content")

	t.Run("Open", func(t *testing.T) {
		got, err := readAll(t, b, file)
		if err != nil {
			t.Fatalf("Open(%q): got error %v, want nil", file, err)
		}
		if got != "test file content" {
			t.Errorf("Open(%q) read %q, want %q", file, got, "test file content")
		}
	})

	t.Run("OpenNotExist", func(t *testing.T) {
		missing := path.Join(root, "read/missing.txt")
		_, err := b.Open(context.Background(), missing)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Open(%q): got error %v, want fs.ErrNotExist", missing, err)
		}
	})
}
