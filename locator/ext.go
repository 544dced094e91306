package locator

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// SplitBasenameAndExtension splits the final segment of path at its first
// dot, so compound extensions stay together.
//
//	SplitBasenameAndExtension("s3://b/foo/baz.tar.gz") // "s3://b/foo/baz", ".tar.gz"
//	SplitBasenameAndExtension("foo/README")            // "foo/README", ""
func SplitBasenameAndExtension(path string) (string, string) {
	protocol, segs := Split(path)
	if len(segs) == 0 {
		return path, ""
	}

	filename := segs[len(segs)-1]
	base, rest, found := strings.Cut(filename, ".")
	ext := ""
	if found {
		ext = "." + rest
	}

	parts := append(slices.Clone(segs[:len(segs)-1]), base)
	return Join(protocol, parts...), ext
}

// SplitExt peels extensions off the final segment of path one at a time, the
// way repeated calls to a single-extension splitter would. A leading dot on
// a hidden file is not an extension.
//
//	SplitExt("s3://b/x/data.jsonl.gz") // "s3", ["b", "x", "data"], ".jsonl.gz"
func SplitExt(path string) (string, []string, string) {
	protocol, segs := Split(path)
	if len(segs) == 0 {
		return protocol, segs, ""
	}

	filename := segs[len(segs)-1]
	var exts []string
	for {
		name, ext := splitOneExt(filename)
		if ext == "" {
			break
		}
		exts = append(exts, ext)
		filename = name
	}
	slices.Reverse(exts)

	out := append(slices.Clone(segs[:len(segs)-1]), filename)
	return protocol, out, strings.Join(exts, "")
}

func splitOneExt(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}

// UnifiedPath derives one deterministic locator standing for a set of paths:
// a SHA-256 of the sorted relative paths, carrying the first path's
// extension chain, placed under their common root. A single path is returned
// unchanged.
func UnifiedPath(paths []string) (string, error) {
	if len(paths) == 1 {
		return paths[0], nil
	}

	rootPath, rels, err := MakeRelative(paths)
	if err != nil {
		return "", err
	}

	_, _, ext := SplitExt(rels[0])

	sorted := slices.Clone(rels)
	slices.Sort(sorted)

	h := sha256.New()
	for _, rel := range sorted {
		h.Write([]byte(rel))
	}
	name := hex.EncodeToString(h.Sum(nil)) + ext

	if rootPath == "" {
		return name, nil
	}
	return Join("", rootPath, name), nil
}
