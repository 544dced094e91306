// Package registry dispatches locators to storage backends by protocol.
//
// A Registry is built once, with every backend it will ever serve, and is
// read-only afterwards. Callers that want a process-wide instance use
// Default.
//
//	reg, err := registry.New(registry.WithS3(minio.Config{
//	    Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s",
//	}))
//	backend, key, err := reg.For("s3://bucket/data/x.json")
package registry

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/fs/billy"
	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/fs/minio"
	"github.com/amphancm/olmocr/fs/web"
	"github.com/amphancm/olmocr/locator"
)

// S3Schemes are the protocols served by the S3 backend.
var S3Schemes = []string{"s3", "s3a", "minio"}

// Registry maps protocols to backends.
type Registry struct {
	backends map[string]core.Backend
	logger   *slog.Logger
}

type options struct {
	backends    map[string]core.Backend
	s3          *minio.Config
	httpClient  *http.Client
	httpTimeout time.Duration
	workDir     string
	logger      *slog.Logger
}

// Option configures a Registry.
type Option func(*options)

// WithS3 serves s3, s3a and minio locators with a minio-go backend.
func WithS3(cfg minio.Config) Option {
	return func(o *options) { o.s3 = &cfg }
}

// WithBackend serves scheme with b, replacing any built-in backend.
// Use "" for bare local paths.
func WithBackend(scheme string, b core.Backend) Option {
	return func(o *options) { o.backends[scheme] = b }
}

// WithHTTPClient sets the client used for http and https locators.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithHTTPTimeout sets the request timeout for http and https locators.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *options) { o.httpTimeout = d }
}

// WithWorkingDir resolves relative local paths against dir.
func WithWorkingDir(dir string) Option {
	return func(o *options) { o.workDir = dir }
}

// WithLogger sets the logger handed to every built-in backend.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds a registry. Local paths ("" and file), mem, http and https are
// always served; S3 only with WithS3.
func New(opts ...Option) (*Registry, error) {
	o := &options{
		backends: make(map[string]core.Backend),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}

	backends := make(map[string]core.Backend)

	localOpts := []billy.Option{billy.WithLogger(o.logger)}
	if o.workDir != "" {
		localOpts = append(localOpts, billy.WithWorkingDir(o.workDir))
	}
	local := billy.NewLocal(localOpts...)
	backends[""] = local
	backends["file"] = local
	backends["mem"] = billy.NewMemory(billy.WithLogger(o.logger))

	webOpts := []web.Option{web.WithLogger(o.logger), web.WithTimeout(o.httpTimeout)}
	if o.httpClient != nil {
		webOpts = append(webOpts, web.WithClient(o.httpClient))
	}
	backends["http"] = web.New("http", webOpts...)
	backends["https"] = web.New("https", webOpts...)

	if o.s3 != nil {
		cfg := *o.s3
		if cfg.Logger == nil {
			cfg.Logger = o.logger
		}
		s3, err := minio.NewMinIO(cfg)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "cannot configure s3 backend")
		}
		for _, scheme := range S3Schemes {
			backends[scheme] = s3
		}
	}

	maps.Copy(backends, o.backends)
	return &Registry{backends: backends, logger: o.logger}, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns a process-wide registry built on first use. S3 locators
// go to AWS with credentials from the environment.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := New(WithS3(minio.Config{Endpoint: minio.DefaultEndpoint, UseSSL: true}))
		if err != nil {
			reg, _ = New()
		}
		defaultReg = reg
	})
	return defaultReg
}

// Resolve returns the backend serving protocol.
func (r *Registry) Resolve(protocol string) (core.Backend, error) {
	b, ok := r.backends[protocol]
	if !ok {
		return nil, errors.WithContext(
			errors.Newf(errors.CodeNotImplemented, "no backend for protocol %q", protocol),
			"protocol", protocol,
		)
	}
	return b, nil
}

// For resolves the backend for path and returns it with the
// protocol-stripped path the backend expects.
func (r *Registry) For(path string) (core.Backend, string, error) {
	b, err := r.Resolve(locator.Protocol(path))
	if err != nil {
		return nil, "", err
	}
	return b, locator.Strip(path), nil
}

// Protocols lists the served protocols in lexical order.
func (r *Registry) Protocols() []string {
	return slices.Sorted(maps.Keys(r.backends))
}

// Logger returns the registry's logger.
func (r *Registry) Logger() *slog.Logger {
	return r.logger
}
