// Package transfer copies files and directory trees between any two
// registered backends.
//
// Directory copies walk the source one level at a time. Subdirectories are
// copied synchronously as they are found; files are handed to a bounded
// pool. A level returns only after all of its file copies finish, with the
// first failure. Nothing already written is rolled back.
package transfer

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/fs/registry"
	"github.com/amphancm/olmocr/glob"
	"github.com/amphancm/olmocr/locator"
)

// DefaultConcurrency is the number of file copies run at once per level.
const DefaultConcurrency = 8

// Copier copies between locators.
type Copier struct {
	reg         *registry.Registry
	glob        *glob.Expander
	concurrency int
	logger      *slog.Logger
}

// Option configures a Copier.
type Option func(*Copier)

// WithConcurrency bounds concurrent file copies. Values below one are
// ignored.
func WithConcurrency(n int) Option {
	return func(c *Copier) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRegistry dispatches through reg instead of registry.Default.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Copier) { c.reg = reg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Copier) { c.logger = l }
}

// New returns a Copier.
func New(opts ...Option) *Copier {
	c := &Copier{
		concurrency: DefaultConcurrency,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reg == nil {
		c.reg = registry.Default()
	}
	c.glob = glob.New(c.reg)
	return c
}

// CopyFile streams src to dst, creating the parent of dst first. Both are
// concrete locators: wildcards and query strings are part of the name.
func (c *Copier) CopyFile(ctx context.Context, src, dst string) error {
	if err := c.reg.MkdirParent(ctx, dst); err != nil {
		return transferFailed(err, src, dst)
	}

	from, srcName, err := c.reg.For(src)
	if err != nil {
		return err
	}
	to, dstName, err := c.reg.For(dst)
	if err != nil {
		return err
	}

	n, err := core.Copy(ctx, from, srcName, to, dstName)
	if err != nil {
		return transferFailed(err, src, dst)
	}
	c.logger.DebugContext(ctx, "copied file", "src", src, "dst", dst, "bytes", n)
	return nil
}

// CopyDir reproduces the tree under src at dst, hidden entries included.
// src may be a pattern; escape metacharacters in a literal directory name
// with locator.QuoteMeta.
func (c *Copier) CopyDir(ctx context.Context, src, dst string) error {
	base := src
	if !locator.IsGlob(src) {
		base = locator.UnquoteMeta(src)
	}
	if err := c.copyDir(ctx, src, base, dst); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "copied directory", "src", src, "dst", dst)
	return nil
}

// copyDir copies what pattern expands to from under base to dst.
func (c *Copier) copyDir(ctx context.Context, pattern, base, dst string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for path, err := range c.glob.Glob(gctx, pattern, glob.WithHidden(true)) {
		if err != nil {
			_ = g.Wait()
			return err
		}

		target, err := retarget(path, base, dst)
		if err != nil {
			_ = g.Wait()
			return err
		}

		if c.reg.IsDir(gctx, path) {
			if err := c.copyDir(gctx, locator.QuoteMeta(path), path, target); err != nil {
				_ = g.Wait()
				return err
			}
			continue
		}

		g.Go(func() error {
			return c.CopyFile(gctx, path, target)
		})
	}
	return g.Wait()
}

// retarget moves path from under src to the same place under dst.
func retarget(path, src, dst string) (string, error) {
	rel, err := locator.SubPrefix(path, src)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return dst, nil
	}
	return locator.AddSuffix(dst, rel)
}

func transferFailed(err error, src, dst string) error {
	return errors.WithContextMap(
		errors.Wrapf(err, errors.CodeTransferFailed, "copy %s to %s", src, dst),
		map[string]interface{}{"src": src, "dst": dst},
	)
}
