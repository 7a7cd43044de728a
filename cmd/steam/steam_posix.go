//go:build !windows

package steam

import (
	"os"
	"path/filepath"
)

var posixSteamDirs = []string{
	".local/share/Steam",                          // deb
	".var/app/com.valvesoftware.Steam/data/Steam", // Flatpak
	"Library/Application Support/Steam",           // macOS
	"snap/steam/common/.local/share/Steam",        // Snap
}

// FindSteamDir returns the Steam client's data directory.
func FindSteamDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return findSteamDirIn(home)
}

func findSteamDirIn(home string) (string, error) {
	for _, rel := range posixSteamDirs {
		dir := filepath.Join(home, filepath.FromSlash(rel))
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", ErrSteamNotFound
}
