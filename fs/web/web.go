// Package web provides a read-only core.Backend over HTTP(S). Paths are
// "host/path?query"; the scheme is fixed per instance.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/internal/globmatch"
)

const defaultTimeout = 30 * time.Second

// Shared transport tunings; connections are reused across backends.
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// FS reads resources from a web server.
type FS struct {
	scheme  string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an FS.
type Option func(*FS)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *FS) { f.client = c }
}

// WithTimeout sets the request timeout. It applies to a client passed with
// WithClient too, in any order; that client is copied, not modified.
// Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(f *FS) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(f *FS) { f.logger = l }
}

// New returns a backend for scheme, "http" or "https".
func New(scheme string, opts ...Option) *FS {
	f := &FS{
		scheme: scheme,
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: defaultTransport.Clone(),
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.timeout > 0 {
		c := *f.client
		c.Timeout = f.timeout
		f.client = &c
	}
	return f
}

// Type returns FSTypeRemote.
func (f *FS) Type() core.FSType {
	return core.FSTypeRemote
}

func (f *FS) url(name string) string {
	return f.scheme + "://" + name
}

func (f *FS) do(ctx context.Context, method, name string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, f.url(name), nil)
	if err != nil {
		return nil, core.PathError(method, name, core.ErrInvalid)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, core.PathError(method, name, err)
	}
	f.logger.DebugContext(ctx, "http request", "method", method, "url", req.URL.String(), "status", resp.StatusCode)
	return resp, nil
}

// statusError maps a non-2xx response to an fs error.
func statusError(op, name string, code int) error {
	switch code {
	case http.StatusNotFound, http.StatusGone:
		return core.PathError(op, name, fs.ErrNotExist)
	case http.StatusUnauthorized, http.StatusForbidden:
		return core.PathError(op, name, fs.ErrPermission)
	default:
		return core.PathError(op, name, fmt.Errorf("unexpected status %d %s", code, http.StatusText(code)))
	}
}

// Stat issues a HEAD request, falling back to GET when the server does not
// allow HEAD.
func (f *FS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	resp, err := f.do(ctx, http.MethodHead, name)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed {
		resp, err = f.do(ctx, http.MethodGet, name)
		if err != nil {
			return nil, err
		}
		_ = resp.Body.Close()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("stat", name, resp.StatusCode)
	}

	size := max(resp.ContentLength, 0)
	modTime, _ := http.ParseTime(resp.Header.Get("Last-Modified"))
	return &fileInfo{name: path.Base(resp.Request.URL.Path), size: size, modTime: modTime}, nil
}

// Exists reports whether the resource answers with a success status.
func (f *FS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := f.Stat(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir is always false: web resources have no listing.
func (f *FS) IsDir(context.Context, string) (bool, error) {
	return false, nil
}

// IsFile reports whether the resource exists.
func (f *FS) IsFile(ctx context.Context, name string) (bool, error) {
	return f.Exists(ctx, name)
}

// Glob returns pattern itself when it exists. Wildcards are unsupported; a
// '?' starts the query string.
func (f *FS) Glob(ctx context.Context, pattern string) ([]string, error) {
	if p, _, _ := strings.Cut(pattern, "?"); globmatch.HasMeta(p) {
		return nil, core.PathError("glob", pattern, core.ErrUnsupported)
	}
	ok, err := f.Exists(ctx, pattern)
	if err != nil || !ok {
		return nil, err
	}
	return []string{pattern}, nil
}

// Open streams the resource body.
func (f *FS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := f.do(ctx, http.MethodGet, name)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, statusError("open", name, resp.StatusCode)
	}
	return resp.Body, nil
}

// Create is unsupported.
func (f *FS) Create(_ context.Context, name string) (io.WriteCloser, error) {
	return nil, core.PathError("create", name, core.ErrUnsupported)
}

// MkdirAll is unsupported.
func (f *FS) MkdirAll(_ context.Context, name string, _ bool) error {
	return core.PathError("mkdir", name, core.ErrUnsupported)
}

// Remove is unsupported.
func (f *FS) Remove(_ context.Context, name string, _ bool) error {
	return core.PathError("remove", name, core.ErrUnsupported)
}

// fileInfo describes a web resource from its response headers.
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() fs.FileMode  { return 0o444 }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return false }
func (fi *fileInfo) Sys() any           { return nil }

// Compile-time interface checks.
var (
	_ core.Backend = (*FS)(nil)
	_ fs.FileInfo  = (*fileInfo)(nil)
)
