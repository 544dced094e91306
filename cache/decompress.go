package cache

import (
	"cmp"
	"compress/bzip2"
	"context"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/fs/registry"
	"github.com/amphancm/olmocr/locator"
)

type decoder func(io.Reader) (io.ReadCloser, error)

var decoders = map[string]decoder{
	".gz":   gunzip,
	".gzip": gunzip,
	".bz2": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(bzip2.NewReader(r)), nil
	},
	".xz": func(r io.Reader) (io.ReadCloser, error) {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	},
	".zst":  unzstd,
	".zstd": unzstd,
	".lz4": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(lz4.NewReader(r)), nil
	},
}

// suffixes lists the keys of decoders, longest first.
var suffixes = func() []string {
	out := make([]string, 0, len(decoders))
	for s := range decoders {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(b), len(a)), strings.Compare(a, b))
	})
	return out
}()

func gunzip(r io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return gr, nil
}

func unzstd(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

// CompressionSuffix returns the compression suffix path ends with, or "".
func CompressionSuffix(path string) string {
	name := strings.ToLower(locator.RemoveParams(path))
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return s
		}
	}
	return ""
}

// DecompressPath decompresses the single file at path into dest and returns
// dest. Paths without a known compression suffix are returned unchanged.
//
// When dest is empty, the output goes to the cache directory under the
// cache name of path minus its compression suffix; an existing output there
// is reused.
func (c *Cache) DecompressPath(ctx context.Context, path, dest string) (string, error) {
	suffix := CompressionSuffix(path)
	if suffix == "" {
		return path, nil
	}
	if c.reg.IsDir(ctx, path) {
		return "", errors.WithContext(
			errors.Newf(errors.CodeIsADirectory, "cannot decompress directory %s", path),
			"path", path,
		)
	}

	if dest == "" {
		root, err := c.Dir(ctx)
		if err != nil {
			return "", err
		}
		name := ResourceToFilename(path)
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
		}
		dest = filepath.Join(root, name)
		if c.reg.IsFile(ctx, dest) {
			c.logger.DebugContext(ctx, "decompressed copy exists", "src", path, "dst", dest)
			return dest, nil
		}
	}

	n, err := c.decompress(ctx, path, dest, decoders[suffix])
	if err != nil {
		return "", errors.WithContextMap(
			errors.Wrapf(err, errors.CodeTransferFailed, "decompress %s", path),
			map[string]interface{}{"src": path, "dst": dest, "codec": suffix},
		)
	}

	c.logger.InfoContext(ctx, "decompressed", "src", path, "dst", dest, "bytes", n)
	return dest, nil
}

func (c *Cache) decompress(ctx context.Context, src, dst string, dec decoder) (int64, error) {
	from, srcName, err := c.reg.For(src)
	if err != nil {
		return 0, err
	}
	to, dstName, err := c.reg.For(dst)
	if err != nil {
		return 0, err
	}

	r, err := from.Open(ctx, srcName)
	if err != nil {
		return 0, registry.Wrap(err, "open", src)
	}
	defer func() { _ = r.Close() }()

	dr, err := dec(r)
	if err != nil {
		return 0, err
	}
	defer func() { _ = dr.Close() }()

	if err := c.reg.MkdirParent(ctx, dst); err != nil {
		return 0, err
	}
	w, err := to.Create(ctx, dstName)
	if err != nil {
		return 0, registry.Wrap(err, "create", dst)
	}

	n, err := io.Copy(w, dr)
	if err != nil {
		if a, ok := w.(core.Aborter); ok {
			_ = a.Abort()
		} else {
			_ = w.Close()
		}
		return n, err
	}
	if err := w.Close(); err != nil {
		return n, registry.Wrap(err, "close", dst)
	}
	return n, nil
}
