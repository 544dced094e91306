// Package glob expands locator patterns into concrete paths across every
// registered backend.
package glob

import (
	"context"
	"iter"
	"slices"
	"strings"

	"github.com/amphancm/olmocr/fs/registry"
	"github.com/amphancm/olmocr/locator"
)

type settings struct {
	hidden    bool
	autoglob  bool
	recursive bool
	yieldDirs bool
}

// Option tunes a single expansion.
type Option func(*settings)

// WithHidden includes entries whose name starts with a dot.
func WithHidden(on bool) Option {
	return func(s *settings) { s.hidden = on }
}

// WithAutoglobDirs expands an existing directory to its children instead of
// yielding it. On by default.
func WithAutoglobDirs(on bool) Option {
	return func(s *settings) { s.autoglob = on }
}

// WithRecursiveDirs descends into matched directories.
func WithRecursiveDirs(on bool) Option {
	return func(s *settings) { s.recursive = on }
}

// WithYieldDirs yields matched directories alongside files. On by default.
func WithYieldDirs(on bool) Option {
	return func(s *settings) { s.yieldDirs = on }
}

// Expander resolves patterns through a registry.
type Expander struct {
	reg *registry.Registry
}

// New returns an Expander dispatching through reg.
func New(reg *registry.Registry) *Expander {
	return &Expander{reg: reg}
}

// Glob expands pattern with the default registry.
func Glob(ctx context.Context, pattern string, opts ...Option) iter.Seq2[string, error] {
	return New(registry.Default()).Glob(ctx, pattern, opts...)
}

// frame is one unit of pending work: a pattern to expand or a directory
// waiting to be yielded after its children.
type frame struct {
	path string
	emit bool
}

// Glob returns a lazy sequence of the paths pattern resolves to.
//
// An existing directory is turned into a one-level glob when autoglob is on.
// A pattern without wildcards is yielded with its escapes removed. Otherwise
// every backend
// match is yielded, skipping hidden entries unless requested; directories are
// descended into first when recursive, then yielded when yieldDirs is on.
//
// Yielded paths are concrete: they are not escaped, so pass them through
// locator.QuoteMeta before using one as a pattern again.
//
// Each range over the sequence queries the backend afresh. An error is
// yielded once and ends the sequence.
func (e *Expander) Glob(ctx context.Context, pattern string, opts ...Option) iter.Seq2[string, error] {
	s := settings{autoglob: true, yieldDirs: true}
	for _, opt := range opts {
		opt(&s)
	}

	return func(yield func(string, error) bool) {
		stack := []frame{{path: pattern}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if f.emit {
				if !yield(f.path, nil) {
					return
				}
				continue
			}

			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}

			path := f.path
			if s.autoglob && !locator.IsGlob(path) && e.reg.IsDir(ctx, locator.UnquoteMeta(path)) {
				path = strings.TrimRight(path, "/") + "/*"
			}

			if !locator.IsGlob(path) {
				if !yield(locator.UnquoteMeta(path), nil) {
					return
				}
				continue
			}

			next, err := e.expand(ctx, path, s)
			if err != nil {
				yield("", err)
				return
			}
			slices.Reverse(next)
			stack = append(stack, next...)
		}
	}
}

// expand queries the backend for pattern and returns the frames its matches
// produce, in yield order.
func (e *Expander) expand(ctx context.Context, pattern string, s settings) ([]frame, error) {
	b, name, err := e.reg.For(pattern)
	if err != nil {
		return nil, err
	}
	matches, err := b.Glob(ctx, name)
	if err != nil {
		return nil, registry.Wrap(err, "glob", pattern)
	}

	protocol := locator.Protocol(pattern)
	var out []frame
	for _, m := range matches {
		if !s.hidden && isHidden(m) {
			continue
		}
		if protocol != "" {
			m = protocol + "://" + m
		}

		if !e.reg.IsDir(ctx, m) {
			out = append(out, frame{path: m, emit: true})
			continue
		}
		if s.recursive {
			out = append(out, frame{path: locator.QuoteMeta(m)})
		}
		if s.yieldDirs {
			out = append(out, frame{path: m, emit: true})
		}
	}
	return out, nil
}

func isHidden(path string) bool {
	name := path[strings.LastIndexByte(strings.TrimRight(path, "/"), '/')+1:]
	return strings.HasPrefix(name, ".")
}
