//go:build !linux && !darwin && !windows

package cache

import (
	"os"
	"path/filepath"
)

func platformCacheDir(appName string) (string, error) {
	root, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appName), nil
}
