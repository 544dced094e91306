// Package cache materializes remote resources as local files.
//
// Every remote locator maps to a fixed name under the cache directory: the
// SHA-256 of the full locator followed by its extension chain. A name that
// already exists is a hit and is returned without touching the remote side.
// Fills are not locked; concurrent fills of one locator converge on the same
// bytes because local writes are atomic.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/fs/registry"
	"github.com/amphancm/olmocr/glob"
	"github.com/amphancm/olmocr/locator"
	"github.com/amphancm/olmocr/transfer"
)

// DefaultAppName names the default cache directory.
const DefaultAppName = "olmocr"

// Cache fetches and decompresses resources into a local directory.
type Cache struct {
	dir         string
	appName     string
	concurrency int
	reg         *registry.Registry
	glob        *glob.Expander
	copier      *transfer.Copier
	logger      *slog.Logger

	mu   sync.Mutex
	root string
}

// Option configures a Cache.
type Option func(*Cache)

// WithDir places the cache at dir instead of the platform default.
func WithDir(dir string) Option {
	return func(c *Cache) { c.dir = dir }
}

// WithAppName sets the application name used for the default directory.
func WithAppName(name string) Option {
	return func(c *Cache) { c.appName = name }
}

// WithConcurrency bounds parallel downloads when fetching a directory.
func WithConcurrency(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRegistry dispatches through reg instead of registry.Default.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Cache) { c.reg = reg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New returns a Cache. The directory is created on first use.
func New(opts ...Option) *Cache {
	c := &Cache{
		appName:     DefaultAppName,
		concurrency: transfer.DefaultConcurrency,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reg == nil {
		c.reg = registry.Default()
	}
	c.glob = glob.New(c.reg)
	c.copier = transfer.New(
		transfer.WithRegistry(c.reg),
		transfer.WithConcurrency(c.concurrency),
		transfer.WithLogger(c.logger),
	)
	return c
}

// Dir returns the cache root, creating it on first successful call.
func (c *Cache) Dir(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.root != "" {
		return c.root, nil
	}

	root := c.dir
	if root == "" {
		var err error
		if root, err = DefaultDir(c.appName); err != nil {
			return "", errors.Wrap(err, errors.CodeInvalidConfig, "cannot locate cache directory")
		}
	}
	if err := c.reg.MkdirP(ctx, root); err != nil {
		return "", err
	}
	c.root = root
	return root, nil
}

// ResourceToFilename returns the cache file name for loc: the hex SHA-256 of
// the full locator, query included, followed by the extension chain of its
// final segment.
//
//	ResourceToFilename("https://h/f.tar.gz?x=1") // "<64 hex chars>.tar.gz"
func ResourceToFilename(loc string) string {
	sum := sha256.Sum256([]byte(loc))
	_, ext := locator.SplitBasenameAndExtension(locator.RemoveParams(loc))
	return hex.EncodeToString(sum[:]) + ext
}

// CachedPath returns a local path holding the contents of loc.
//
// Local locators are returned unchanged. Remote ones are fetched into the
// cache once; later calls return the cached copy without remote access. A
// remote directory is fetched file by file under the cached name. Nothing
// is cleaned up if a fetch fails part way.
func (c *Cache) CachedPath(ctx context.Context, loc string) (string, error) {
	if locator.IsLocal(loc) {
		return loc, nil
	}

	root, err := c.Dir(ctx)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(root, ResourceToFilename(loc))

	if c.reg.Exists(ctx, dest) {
		c.logger.DebugContext(ctx, "cache hit", "locator", loc, "dst", dest)
		return dest, nil
	}

	if c.reg.IsDir(ctx, loc) {
		err = c.fetchDir(ctx, loc, dest)
	} else {
		err = c.copier.CopyFile(ctx, loc, dest)
	}
	if err != nil {
		return "", fetchFailed(err, loc, dest)
	}

	c.logger.InfoContext(ctx, "cached resource", "locator", loc, "dst", dest)
	return dest, nil
}

// fetchDir copies every file under loc to the same relative place under
// dest through a bounded pool.
func (c *Cache) fetchDir(ctx context.Context, loc, dest string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	seq := c.glob.Glob(gctx, locator.QuoteMeta(loc),
		glob.WithHidden(true),
		glob.WithRecursiveDirs(true),
		glob.WithYieldDirs(false),
	)
	for path, err := range seq {
		if err != nil {
			_ = g.Wait()
			return err
		}
		rel, err := locator.SubPrefix(path, loc)
		if err != nil {
			_ = g.Wait()
			return err
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))
		g.Go(func() error {
			return c.copier.CopyFile(gctx, path, target)
		})
	}
	return g.Wait()
}

func fetchFailed(err error, loc, dest string) error {
	if errors.HasCode(err, errors.CodeTransferFailed) {
		return err
	}
	return errors.WithContextMap(
		errors.Wrapf(err, errors.CodeTransferFailed, "fetch %s", loc),
		map[string]interface{}{"locator": loc, "dst": dest},
	)
}
