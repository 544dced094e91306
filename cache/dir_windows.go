//go:build windows

package cache

import (
	"os"
	"path/filepath"
)

// platformCacheDir returns %LOCALAPPDATA%\<appName>\Cache.
func platformCacheDir(appName string) (string, error) {
	local := os.Getenv("LOCALAPPDATA")
	if local == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		local = filepath.Join(home, "AppData", "Local")
	}
	return filepath.Join(local, appName, "Cache"), nil
}
