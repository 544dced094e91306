//go:build darwin

package cache

import (
	"os"
	"path/filepath"
)

// platformCacheDir returns ~/Library/Caches/<appName>.
func platformCacheDir(appName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "Caches", appName), nil
}
