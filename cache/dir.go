package cache

import (
	"os"
	"strings"
)

// EnvVarName returns the variable that overrides the cache directory for
// appName.
//
//	EnvVarName("olmocr") // "OLMOCR_CACHE_DIR"
func EnvVarName(appName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, appName)
	return name + "_CACHE_DIR"
}

// DefaultDir returns the user cache directory for appName. The environment
// variable named by EnvVarName takes precedence over the platform default.
func DefaultDir(appName string) (string, error) {
	if dir := os.Getenv(EnvVarName(appName)); dir != "" {
		return dir, nil
	}
	return platformCacheDir(appName)
}
