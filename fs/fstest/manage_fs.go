package fstest

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"testing"

	"github.com/amphancm/olmocr/fs/core"
)

// TestManageFSWithConfig tests Remove.
func TestManageFSWithConfig(t *testing.T, b core.Backend, root string, config FSTestConfig) {
	ctx := context.Background()

	t.Run("RemoveFile", func(t *testing.T) {
		name := writeFixture(t, b, root, "manage/file.txt", "x")
		if err := b.Remove(ctx, name, false); err != nil {
			t.Fatalf("Remove(%q): got error %v, want nil", name, err)
		}
		if ok, _ := b.Exists(ctx, name); ok {
			t.Errorf("Exists(%q) after Remove = true, want false", name)
		}
	})

	t.Run("RemoveNotExist", func(t *testing.T) {
		name := path.Join(root, "manage/missing.txt")
		if err := b.Remove(ctx, name, false); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Remove(%q): got error %v, want fs.ErrNotExist", name, err)
		}
	})

	t.Run("RemoveDirNonRecursive", func(t *testing.T) {
		writeFixture(t, b, root, "manage/keep/a.txt", "a")
		dir := path.Join(root, "manage/keep")
		if err := b.Remove(ctx, dir, false); err == nil {
			t.Errorf("Remove(%q, recursive=false): got nil, want error", dir)
		}
		if ok, _ := b.Exists(ctx, path.Join(dir, "a.txt")); !ok {
			t.Errorf("file under %q was removed by a non-recursive Remove", dir)
		}
	})

	t.Run("RemoveRecursive", func(t *testing.T) {
		writeFixture(t, b, root, "manage/tree/a.txt", "a")
		writeFixture(t, b, root, "manage/tree/sub/b.txt", "b")
		dir := path.Join(root, "manage/tree")
		if err := b.Remove(ctx, dir, true); err != nil {
			t.Fatalf("Remove(%q, recursive=true): got error %v, want nil", dir, err)
		}
		if ok, _ := b.Exists(ctx, dir); ok {
			t.Errorf("Exists(%q) after recursive Remove = true, want false", dir)
		}
	})
}
