package billy

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/internal/globmatch"
)

// LocalFS wraps billy's osfs for local disk access. Paths are absolute or
// relative to the working directory; writes are atomic per file.
type LocalFS struct {
	base
}

// MemoryFS wraps billy's memfs. Relative paths are rooted at "/".
type MemoryFS struct {
	base
}

// Option configures filesystem creation.
type Option func(*config)

type config struct {
	workDir string
	logger  *slog.Logger
}

// WithWorkingDir resolves relative paths against dir instead of the process
// working directory.
func WithWorkingDir(dir string) Option {
	return func(c *config) { c.workDir = dir }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func newConfig(opts []Option) config {
	c := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewLocal creates a go-billy-backed local filesystem rooted at "/".
func NewLocal(opts ...Option) *LocalFS {
	c := newConfig(opts)
	if c.workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.workDir = wd
		} else {
			c.workDir = root
		}
	}
	return &LocalFS{base{
		bfs:     osfs.New(root),
		typ:     core.FSTypeLocal,
		workDir: filepath.ToSlash(c.workDir),
		atomic:  true,
		logger:  c.logger,
	}}
}

// NewMemory creates a go-billy-backed in-memory filesystem.
// The filesystem is initially empty.
func NewMemory(opts ...Option) *MemoryFS {
	c := newConfig(opts)
	return &MemoryFS{base{
		bfs:     memfs.New(),
		typ:     core.FSTypeMemory,
		workDir: root,
		logger:  c.logger,
	}}
}

const root = "/"

// base holds the behavior shared by both billy filesystems.
type base struct {
	bfs     billy.Filesystem
	typ     core.FSType
	workDir string
	atomic  bool
	logger  *slog.Logger
}

// Unwrap returns the underlying billy.Filesystem.
func (b *base) Unwrap() billy.Filesystem {
	return b.bfs
}

// Type returns the backend type.
func (b *base) Type() core.FSType {
	return b.typ
}

// resolve converts name to a clean absolute slash path.
func (b *base) resolve(name string) string {
	name = filepath.ToSlash(name)
	if !path.IsAbs(name) {
		name = path.Join(b.workDir, name)
	}
	return path.Clean(name)
}

// relative maps an absolute result back to a path relative to the working
// directory. Results outside it keep their leading "../" segments.
func (b *base) relative(name string) string {
	rel, err := filepath.Rel(filepath.FromSlash(b.workDir), filepath.FromSlash(name))
	if err != nil {
		return strings.TrimPrefix(name, root)
	}
	return filepath.ToSlash(rel)
}

func (b *base) stat(name string) (fs.FileInfo, error) {
	info, err := b.bfs.Stat(name)
	if err != nil && name == root {
		return rootInfo{}, nil
	}
	if err != nil {
		var pe *fs.PathError
		if !errors.As(err, &pe) {
			err = core.PathError("stat", name, err)
		}
		return nil, err
	}
	return info, nil
}

// Stat returns file metadata for the named file.
func (b *base) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.stat(b.resolve(name))
}

// Exists reports whether the named file or directory exists.
func (b *base) Exists(ctx context.Context, name string) (bool, error) {
	_, err := b.Stat(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether name is a directory.
func (b *base) IsDir(ctx context.Context, name string) (bool, error) {
	info, err := b.Stat(ctx, name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// IsFile reports whether name is a regular file.
func (b *base) IsFile(ctx context.Context, name string) (bool, error) {
	info, err := b.Stat(ctx, name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// Glob returns the paths matching pattern in lexical order. Relative patterns
// produce relative matches.
func (b *base) Glob(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := globmatch.Compile(b.resolve(pattern))
	if err != nil {
		return nil, core.PathError("glob", pattern, core.ErrInvalid)
	}

	var matches []string
	if !m.HasMeta() {
		ok, err := b.Exists(ctx, m.Prefix())
		if err != nil || !ok {
			return nil, err
		}
		matches = []string{m.Prefix()}
	} else {
		matches, err = b.walkMatches(ctx, m)
		if err != nil {
			return nil, err
		}
	}

	if !path.IsAbs(filepath.ToSlash(pattern)) {
		for i, p := range matches {
			matches[i] = b.relative(p)
		}
	}
	slices.Sort(matches)
	return matches, nil
}

// walkMatches walks from the literal prefix of m and collects matches.
func (b *base) walkMatches(ctx context.Context, m *globmatch.Matcher) ([]string, error) {
	start := m.Prefix()
	if start == "" {
		start = b.workDir
	}

	info, err := b.stat(start)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var matches []string
	if m.Match(start) {
		matches = append(matches, start)
	}

	// explicit stack; directories are read in lexical order
	stack := []string{start}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := b.bfs.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				continue
			}
			return nil, err
		}
		for _, entry := range entries {
			p := path.Join(dir, entry.Name())
			if m.Match(p) {
				matches = append(matches, p)
			}
			if entry.IsDir() && m.Descend(p) {
				stack = append(stack, p)
			}
		}
	}
	return matches, nil
}

// Open opens the named file for reading.
func (b *base) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = b.resolve(name)
	info, err := b.stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, core.PathError("open", name, core.ErrIsDir)
	}
	f, err := b.bfs.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Create opens a write stream to name, creating parent directories. On the
// local disk data goes to a temporary file that is renamed into place on
// Close.
func (b *base) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = b.resolve(name)
	if info, err := b.stat(name); err == nil && info.IsDir() {
		return nil, core.PathError("create", name, core.ErrIsDir)
	}

	dir := path.Dir(name)
	if err := b.bfs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	if !b.atomic {
		f, err := b.bfs.Create(name)
		if err != nil {
			return nil, err
		}
		return &file{File: f}, nil
	}

	tmp, err := util.TempFile(b.bfs, dir, "."+path.Base(name)+".tmp-")
	if err != nil {
		return nil, err
	}
	return &atomicFile{file: file{File: tmp}, bfs: b.bfs, target: name, logger: b.logger}, nil
}

// MkdirAll creates a directory named name, along with any necessary parents.
func (b *base) MkdirAll(ctx context.Context, name string, existOK bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name = b.resolve(name)
	info, err := b.stat(name)
	switch {
	case err == nil && info.IsDir():
		if existOK {
			return nil
		}
		return core.PathError("mkdir", name, core.ErrExist)
	case err == nil:
		return core.PathError("mkdir", name, core.ErrExist)
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return b.bfs.MkdirAll(name, 0o755)
}

// Remove deletes the named file, or the whole tree under name when recursive
// is set.
func (b *base) Remove(ctx context.Context, name string, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name = b.resolve(name)
	info, err := b.stat(name)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return b.bfs.Remove(name)
	}
	if !recursive {
		return core.PathError("remove", name, core.ErrIsDir)
	}
	b.logger.DebugContext(ctx, "removing tree", "path", name)
	return util.RemoveAll(b.bfs, name)
}

// Compile-time interface checks.
var (
	_ core.Backend = (*LocalFS)(nil)
	_ core.Backend = (*MemoryFS)(nil)
)
