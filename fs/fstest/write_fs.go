package fstest

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"testing"

	"github.com/amphancm/olmocr/fs/core"
)

// TestWriteFSWithConfig tests Create and MkdirAll.
func TestWriteFSWithConfig(t *testing.T, b core.Backend, root string, config FSTestConfig) {
	ctx := context.Background()

	t.Run("CreateAndRead", func(t *testing.T) {
		name := writeFixture(t, b, root, "write/new.txt", "hello")
		got, err := readAll(t, b, name)
		if err != nil || got != "hello" {
			t.Errorf("read back %q, %v; want %q, nil", got, err, "hello")
		}
	})

	t.Run("CreateTruncates", func(t *testing.T) {
		writeFixture(t, b, root, "write/trunc.txt", "a much longer first version")
		name := writeFixture(t, b, root, "write/trunc.txt", "short")
		got, err := readAll(t, b, name)
		if err != nil || got != "short" {
			t.Errorf("read back %q, %v; want %q, nil", got, err, "short")
		}
	})

	t.Run("CreateNested", func(t *testing.T) {
		name := writeFixture(t, b, root, "write/x/y/z.txt", "deep")
		ok, err := b.IsFile(ctx, name)
		if err != nil || !ok {
			t.Errorf("IsFile(%q) = %v, %v; want true, nil", name, ok, err)
		}
	})

	t.Run("MkdirAll", func(t *testing.T) {
		if config.skip(t, "WriteFS/MkdirAll") {
			return
		}
		dir := path.Join(root, "write/made/a/b")
		if err := b.MkdirAll(ctx, dir, true); err != nil {
			t.Fatalf("MkdirAll(%q): got error %v, want nil", dir, err)
		}
		if err := b.MkdirAll(ctx, dir, true); err != nil {
			t.Errorf("MkdirAll(%q) again with existOK: got error %v, want nil", dir, err)
		}
		if config.VirtualDirectories {
			return
		}
		ok, err := b.IsDir(ctx, dir)
		if err != nil || !ok {
			t.Errorf("IsDir(%q) = %v, %v; want true, nil", dir, ok, err)
		}
		if err := b.MkdirAll(ctx, dir, false); !errors.Is(err, fs.ErrExist) {
			t.Errorf("MkdirAll(%q) without existOK: got error %v, want fs.ErrExist", dir, err)
		}
	})

	t.Run("Abort", func(t *testing.T) {
		if config.skip(t, "WriteFS/Abort") {
			return
		}
		name := path.Join(root, "write/aborted.txt")
		w, err := b.Create(ctx, name)
		if err != nil {
			t.Fatalf("Create(%q): got error %v", name, err)
		}
		a, ok := w.(core.Aborter)
		if !ok {
			_ = w.Close()
			t.Skip("writer does not support Abort")
		}
		_, _ = io.WriteString(w, "partial")
		if err := a.Abort(); err != nil {
			t.Errorf("Abort(): got error %v", err)
		}
		exists, err := b.Exists(ctx, name)
		if err != nil || exists {
			t.Errorf("Exists(%q) after Abort = %v, %v; want false, nil", name, exists, err)
		}
	})
}
