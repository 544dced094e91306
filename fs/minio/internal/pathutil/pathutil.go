// Package pathutil splits protocol-stripped S3 paths into bucket and key.
package pathutil

import (
	"path"
	"strings"
)

// Normalize cleans a path and trims leading and trailing slashes. Returns ""
// for empty paths. Backslashes are kept since they escape glob
// metacharacters.
func Normalize(p string) string {
	return strings.Trim(path.Clean("/"+p), "/")
}

// Split returns the bucket (first segment) and object key (the rest) of a
// "bucket/key" path.
func Split(p string) (bucket, key string) {
	p = Normalize(p)
	bucket, key, _ = strings.Cut(p, "/")
	return bucket, key
}

// Join builds a "bucket/key" path.
func Join(bucket, key string) string {
	if key == "" {
		return bucket
	}
	return bucket + "/" + key
}

// DirPrefix returns key as a listing prefix: "" for the bucket root and
// "key/" otherwise.
func DirPrefix(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSuffix(key, "/") + "/"
}

// Ancestors returns the directory keys between base and key, exclusive of
// key, shallowest first. Both are object keys; base is a DirPrefix.
//
//	Ancestors("a/", "a/b/c/d.txt") // ["a/b", "a/b/c"]
func Ancestors(base, key string) []string {
	rest := strings.TrimPrefix(key, base)
	var out []string
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			out = append(out, base+rest[:i])
		}
	}
	return out
}
