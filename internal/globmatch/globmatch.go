// Package globmatch matches slash-separated paths against shell patterns with
// recursive "**" segments. Backends use it to filter listings so every
// protocol expands patterns the same way.
package globmatch

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/amphancm/olmocr/locator"
)

const doubleStar = "**"

// Matcher is a compiled pattern.
type Matcher struct {
	pattern   string
	globs     []glob.Glob
	prefix    string
	slashes   int
	recursive bool
	meta      bool
}

// Compile parses pattern. A segment that is exactly "**" matches zero or more
// whole segments; anywhere else "**" behaves like "*". A backslash makes the
// following character literal.
func Compile(pattern string) (*Matcher, error) {
	m := &Matcher{
		pattern: pattern,
		slashes: strings.Count(pattern, "/"),
		meta:    HasMeta(pattern),
	}

	segs := strings.Split(pattern, "/")
	literal := make([]string, 0, len(segs))
	seenMeta := false
	for i, s := range segs {
		if s == doubleStar {
			m.recursive = true
		} else {
			segs[i] = collapse(s)
		}
		if !seenMeta && HasMeta(s) {
			seenMeta = true
		}
		if !seenMeta {
			literal = append(literal, s)
		}
	}

	if m.meta {
		m.prefix = Unquote(strings.Join(literal, "/"))
		if m.prefix == "" && strings.HasPrefix(pattern, "/") {
			m.prefix = "/"
		}
	} else {
		m.prefix = Unquote(pattern)
	}

	for _, v := range variants(segs) {
		g, err := glob.Compile(quoteBraces(v), '/')
		if err != nil {
			return nil, err
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether name matches the pattern.
func (m *Matcher) Match(name string) bool {
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Prefix returns the literal directory part of the pattern in front of the
// first wildcard segment, unquoted. Listing from Prefix is enough to find
// every match. A pattern without wildcards is its own prefix.
func (m *Matcher) Prefix() string { return m.prefix }

// HasMeta reports whether the pattern contains wildcards.
func (m *Matcher) HasMeta() bool { return m.meta }

// Recursive reports whether the pattern has a "**" segment.
func (m *Matcher) Recursive() bool { return m.recursive }

// Descend reports whether a walker positioned at dir can still find matches
// below it.
func (m *Matcher) Descend(dir string) bool {
	return m.recursive || strings.Count(dir, "/") < m.slashes
}

func (m *Matcher) String() string { return m.pattern }

// HasMeta reports whether s holds an unescaped '*', '?' or '['.
func HasMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '*', '?', '[':
			return true
		}
	}
	return false
}

// Unquote removes the backslashes that escape pattern metacharacters.
func Unquote(s string) string {
	return locator.UnquoteMeta(s)
}

// collapse turns runs of '*' inside a segment into a single '*' so only a
// whole "**" segment crosses separators.
func collapse(seg string) string {
	for strings.Contains(seg, doubleStar) {
		seg = strings.ReplaceAll(seg, doubleStar, "*")
	}
	return seg
}

// variants expands every "**" segment into both its present and absent
// forms, so "a/**/b" also matches "a/b".
func variants(segs []string) []string {
	acc := [][]string{{}}
	for _, s := range segs {
		next := make([][]string, 0, len(acc)*2)
		for _, a := range acc {
			with := append(append([]string{}, a...), s)
			next = append(next, with)
			if s == doubleStar {
				next = append(next, append([]string{}, a...))
			}
		}
		acc = next
	}

	seen := make(map[string]bool, len(acc))
	out := make([]string, 0, len(acc))
	for _, a := range acc {
		p := strings.Join(a, "/")
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// quoteBraces escapes '{' and '}' which the matcher would otherwise read as
// alternation.
func quoteBraces(p string) string {
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '\\' && i+1 < len(p) {
			b.WriteByte(c)
			b.WriteByte(p[i+1])
			i++
			continue
		}
		if c == '{' || c == '}' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
