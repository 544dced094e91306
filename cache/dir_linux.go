//go:build linux

package cache

import (
	"os"
	"path/filepath"
)

// platformCacheDir returns $XDG_CACHE_HOME/<appName> if set, otherwise
// ~/.cache/<appName>.
func platformCacheDir(appName string) (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); filepath.IsAbs(xdg) {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
