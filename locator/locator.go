package locator

import (
	"strings"

	"github.com/amphancm/olmocr/errors"
)

const root = "/"

// parsed is a locator after escaping: protocol plus escaped segments.
type parsed struct {
	protocol string
	segments []string
}

// parse escapes p and splits it into protocol and segments.
func parse(p string) parsed {
	esc := Escape(p)
	protocol, rest := cutProtocol(esc)
	return parsed{protocol: protocol, segments: parseSegments(rest)}
}

// cutProtocol splits "scheme://rest". Anything that is not a valid URI
// scheme in front of "://" is treated as part of a local path.
func cutProtocol(p string) (string, string) {
	i := strings.Index(p, "://")
	if i <= 0 || !validScheme(p[:i]) {
		return "", p
	}
	return strings.ToLower(p[:i]), p[i+3:]
}

func validScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// parseSegments splits a slash-separated path. Empty and "." segments are
// dropped; a leading slash becomes the root segment.
func parseSegments(p string) []string {
	var segs []string
	if strings.HasPrefix(p, root) {
		segs = append(segs, root)
	}
	for _, s := range strings.Split(p, "/") {
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

// appendSegments joins more onto base; an absolute tail replaces base.
func appendSegments(base, more []string) []string {
	if len(more) > 0 && more[0] == root {
		return append([]string(nil), more...)
	}
	out := make([]string, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}

// render formats segments as a path string; no segments renders as ".".
func render(segs []string) string {
	if len(segs) == 0 {
		return "."
	}
	if segs[0] == root {
		return root + strings.Join(segs[1:], "/")
	}
	return strings.Join(segs, "/")
}

// format renders segments under protocol, normalizing trailing slashes.
// The result is still escaped.
func format(protocol string, segs []string) string {
	if protocol != "" {
		if len(segs) == 0 {
			return protocol + "://"
		}
		p := strings.Trim(render(segs), "/")
		if segs[0] == root {
			// file:///abs/path keeps its root
			p = root + p
		}
		return protocol + "://" + p
	}
	p := render(segs)
	if p != root {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func unescapeAll(segs []string) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = Unescape(s)
	}
	return out
}

// Split decomposes path into its protocol and segments.
//
//	Split("s3://bucket/a/b.txt") // "s3", ["bucket", "a", "b.txt"]
func Split(path string) (string, []string) {
	p := parse(path)
	return p.protocol, unescapeAll(p.segments)
}

// Join builds a locator from protocol and parts. Each part may itself be a
// multi-segment path. When protocol is empty, the protocol of the first part
// is used.
//
//	Join("", "s3://bucket/x", "y/z.json") // "s3://bucket/x/y/z.json"
//	Join("s3", "bucket", "x")             // "s3://bucket/x"
func Join(protocol string, parts ...string) string {
	var segs []string
	for i, part := range parts {
		p := parse(part)
		if i == 0 && protocol == "" {
			protocol = p.protocol
		}
		segs = appendSegments(segs, p.segments)
	}
	return Unescape(format(protocol, segs))
}

// Strip returns path without its protocol, in the form backends expect:
// "bucket/key" for object stores, "/abs/path" for file:// locators and the
// path itself for local locators. Query strings are kept.
func Strip(path string) string {
	protocol, rest := cutProtocol(path)
	if protocol == "" {
		return path
	}
	if trimmed := strings.TrimRight(rest, "/"); trimmed != "" {
		return trimmed
	}
	if strings.HasPrefix(rest, root) {
		return root
	}
	return rest
}

// Protocol returns the protocol of path, "" for local paths.
func Protocol(path string) string {
	protocol, _ := cutProtocol(Escape(path))
	return protocol
}

// IsLocal reports whether path addresses the local disk.
func IsLocal(path string) bool {
	protocol := Protocol(path)
	return protocol == "" || protocol == "file"
}

// SubPrefix returns a relative to b. Both must share a protocol. If a is not
// under b, a's full path is returned unchanged.
//
//	SubPrefix("s3://b/x/y/1.txt", "s3://b/x") // "y/1.txt"
func SubPrefix(a, b string) (string, error) {
	pa, pb := parse(a), parse(b)
	if pa.protocol != pb.protocol {
		return "", errors.ProtocolMismatch(a, b)
	}

	if !hasPrefix(pa.segments, pb.segments) {
		return Unescape(format(pa.protocol, pa.segments)), nil
	}
	return Unescape(render(pa.segments[len(pb.segments):])), nil
}

func hasPrefix(segs, prefix []string) bool {
	if len(prefix) > len(segs) {
		return false
	}
	for i := range prefix {
		if segs[i] != prefix[i] {
			return false
		}
	}
	return true
}

// SubSuffix removes the literal relative suffix b from the end of a.
//
//	SubSuffix("s3://b/x/y.txt", "y.txt") // "s3://b/x"
func SubSuffix(a, b string) (string, error) {
	pa, pb := parse(a), parse(b)
	if pb.protocol != "" {
		return "", errors.InvalidPath(b, "not a relative path")
	}

	sub := strings.TrimSuffix(render(pa.segments), render(pb.segments))

	prefix := ""
	if pa.protocol != "" {
		prefix = pa.protocol + "://"
	}
	if sub != root || prefix != "" {
		sub = strings.TrimRight(sub, "/")
	}
	return Unescape(prefix + sub), nil
}

// AddSuffix appends the relative path b to a.
//
//	AddSuffix("s3://b/x", "y/z.txt") // "s3://b/x/y/z.txt"
func AddSuffix(a, b string) (string, error) {
	pa, pb := parse(a), parse(b)
	if pb.protocol != "" {
		return "", errors.InvalidPath(b, "not a relative path")
	}
	return Unescape(format(pa.protocol, appendSegments(pa.segments, pb.segments))), nil
}

// PartitionPath splits path at the first segment holding an unescaped
// wildcard. The wildcard segment is in neither half. Without a wildcard all
// segments are returned as pre.
//
//	PartitionPath("s3://bucket/prefix/*/file.json")
//	// "s3", ["bucket", "prefix"], ["file.json"]
func PartitionPath(path string) (protocol string, pre, post []string) {
	p := parse(path)
	for i, s := range p.segments {
		if hasSentinel(s) {
			return p.protocol, unescapeAll(p.segments[:i]), unescapeAll(p.segments[i+1:])
		}
	}
	return p.protocol, unescapeAll(p.segments), []string{}
}

// SplitGlob splits path into the literal prefix before the first wildcard
// segment and the glob suffix from there on.
//
//	SplitGlob("data/run-*/out.jsonl") // "data", "run-*/out.jsonl"
//	SplitGlob("data/x.jsonl")         // "data/x.jsonl", ""
//	SplitGlob("*.jsonl")              // "", "*.jsonl"
//	SplitGlob("s3://*/x")             // "s3://", "*/x"
func SplitGlob(path string) (string, string) {
	if !IsGlob(path) {
		return path, ""
	}
	if strings.HasPrefix(path, "*") {
		return "", path
	}

	p := parse(path)
	i := 0
	for i < len(p.segments) && !hasSentinel(p.segments[i]) {
		i++
	}

	rest := Unescape(format("", p.segments[i:]))
	if i == 0 {
		if p.protocol != "" {
			return p.protocol + "://", rest
		}
		return "", rest
	}
	return Unescape(format(p.protocol, p.segments[:i])), rest
}

// MakeRelative finds the longest root shared by all paths and returns it
// together with each path relative to it. All paths must share a protocol.
// When nothing is shared, the root is the bare protocol and the relative
// paths are the protocol-stripped inputs.
//
//	MakeRelative([]string{"s3://b/x/1.txt", "s3://b/x/2.txt"})
//	// "s3://b/x", ["1.txt", "2.txt"]
func MakeRelative(paths []string) (string, []string, error) {
	if len(paths) == 0 {
		return "", nil, errors.New(errors.CodeInvalidInput, "cannot make relative path of empty list")
	}

	protocol, common, _ := PartitionPath(paths[0])
	for _, path := range paths[1:] {
		prot, parts, _ := PartitionPath(path)
		if prot != protocol {
			return "", nil, errors.ProtocolMismatch(path, paths[0])
		}
		n := min(len(common), len(parts))
		i := 0
		for i < n && common[i] == parts[i] {
			i++
		}
		common = common[:i]
	}

	rels := make([]string, len(paths))
	if len(common) == 0 {
		rootPath := ""
		if protocol != "" {
			rootPath = protocol + "://"
		}
		for i, path := range paths {
			rels[i] = Unescape(render(parse(path).segments))
		}
		return rootPath, rels, nil
	}

	rootPath := Join(protocol, common...)
	for i, path := range paths {
		rel, err := SubPrefix(path, rootPath)
		if err != nil {
			return "", nil, err
		}
		rels[i] = rel
	}
	return rootPath, rels, nil
}

// Parent returns the locator one segment up. A single-segment path is its
// own parent.
func Parent(path string) string {
	protocol, segs := Split(path)
	if len(segs) <= 1 {
		return path
	}
	return Join(protocol, segs[:len(segs)-1]...)
}

// RemoveParams drops the query string and fragment from path.
//
//	RemoveParams("https://h/f.tar.gz?x=1") // "https://h/f.tar.gz"
func RemoveParams(path string) string {
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}
