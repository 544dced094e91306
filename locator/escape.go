package locator

import "strings"

// Sentinels standing in for unescaped glob metacharacters while a locator is
// being split. They live in the Unicode private use area so they cannot
// collide with real path text.
const (
	sentinelStar  = '\uE001'
	sentinelOne   = '\uE002'
	sentinelOpen  = '\uE003'
	sentinelClose = '\uE004'
)

var unescapeReplacer = strings.NewReplacer(
	string(sentinelStar), "*",
	string(sentinelOne), "?",
	string(sentinelOpen), "[",
	string(sentinelClose), "]",
)

func sentinelFor(r rune) (rune, bool) {
	switch r {
	case '*':
		return sentinelStar, true
	case '?':
		return sentinelOne, true
	case '[':
		return sentinelOpen, true
	case ']':
		return sentinelClose, true
	}
	return 0, false
}

func isSentinel(r rune) bool {
	return r >= sentinelStar && r <= sentinelClose
}

// Escape replaces every glob metacharacter that is not directly preceded by a
// backslash with its sentinel. Backslash-escaped metacharacters are left as
// they are.
func Escape(s string) string {
	if !strings.ContainsAny(s, "*?[]") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)

	prev := rune(0)
	for _, r := range s {
		if sr, ok := sentinelFor(r); ok && prev != '\\' {
			b.WriteRune(sr)
		} else {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

// Unescape is the inverse of Escape.
func Unescape(s string) string {
	if !strings.ContainsFunc(s, isSentinel) {
		return s
	}
	return unescapeReplacer.Replace(s)
}

// IsGlob reports whether path contains an unescaped wildcard.
//
//	IsGlob(`a*b`)  // true
//	IsGlob(`a\*b`) // false
func IsGlob(path string) bool {
	prev := rune(0)
	for _, r := range path {
		if _, ok := sentinelFor(r); ok && prev != '\\' {
			return true
		}
		prev = r
	}
	return false
}

func hasSentinel(segment string) bool {
	return strings.ContainsFunc(segment, isSentinel)
}

// QuoteMeta backslash-escapes every glob metacharacter and backslash in s,
// so a concrete path can be embedded in a pattern and match only itself.
//
//	QuoteMeta("run[1]") // `run\[1\]`
func QuoteMeta(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(`*?[]\`, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// UnquoteMeta is the inverse of QuoteMeta: it drops the backslash in front
// of a metacharacter or another backslash.
func UnquoteMeta(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(`*?[]\`, s[i+1]) >= 0 {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
