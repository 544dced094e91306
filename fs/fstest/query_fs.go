package fstest

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"testing"

	"github.com/amphancm/olmocr/fs/core"
)

// TestQueryFSWithConfig tests Exists, IsDir, IsFile and Stat.
func TestQueryFSWithConfig(t *testing.T, b core.Backend, root string, config FSTestConfig) {
	ctx := context.Background()
	file := writeFixture(t, b, root, "query/file.txt", "content")
	dir := path.Join(root, "query")
	missing := path.Join(root, "query/missing.txt")

	checks := []struct {
		name string
		fn   func(context.Context, string) (bool, error)
		path string
		want bool
	}{
		{"ExistsFile", b.Exists, file, true},
		{"ExistsDir", b.Exists, dir, true},
		{"ExistsNotExist", b.Exists, missing, false},
		{"IsDirOnDir", b.IsDir, dir, true},
		{"IsDirOnFile", b.IsDir, file, false},
		{"IsDirNotExist", b.IsDir, missing, false},
		{"IsFileOnFile", b.IsFile, file, true},
		{"IsFileOnDir", b.IsFile, dir, false},
		{"IsFileNotExist", b.IsFile, missing, false},
	}

	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if config.skip(t, "QueryFS/"+c.name) {
				return
			}
			got, err := c.fn(ctx, c.path)
			if err != nil {
				t.Errorf("%s(%q): got error %v, want nil", c.name, c.path, err)
				return
			}
			if got != c.want {
				t.Errorf("%s(%q) = %v, want %v", c.name, c.path, got, c.want)
			}
		})
	}

	t.Run("StatSize", func(t *testing.T) {
		info, err := b.Stat(ctx, file)
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", file, err)
		}
		if info.Size() != int64(len("content")) {
			t.Errorf("Stat(%q).Size() = %d, want %d", file, info.Size(), len("content"))
		}
		if info.IsDir() {
			t.Errorf("Stat(%q).IsDir() = true, want false", file)
		}
	})

	t.Run("StatNotExist", func(t *testing.T) {
		_, err := b.Stat(ctx, missing)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Stat(%q): got error %v, want fs.ErrNotExist", missing, err)
		}
	})
}
