// Package steam finds games installed through the Steam client.
package steam

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gigurra/stillalive/cmd/keyvalues"
)

// PortalAppID is Portal's Steam application id.
const PortalAppID = 400

var (
	ErrSteamNotFound = errors.New("unable to find Steam installation")
	ErrGameNotFound  = errors.New("game not installed in any Steam library")
)

// FindGame returns the install directory of appID, looking through the
// libraries listed in steamDir/steamapps/libraryfolders.vdf.
func FindGame(steamDir string, appID int) (string, error) {
	libraries, err := readVDF(filepath.Join(steamDir, "steamapps", "libraryfolders.vdf"))
	if err != nil {
		return "", err
	}
	folders, ok := libraries.Sub("libraryfolders")
	if !ok {
		return "", fmt.Errorf("libraryfolders.vdf: no libraryfolders block")
	}

	id := strconv.Itoa(appID)
	library := ""
	for _, entry := range folders.Entries {
		if _, err := strconv.Atoi(entry.Key); err != nil {
			continue
		}
		if !entry.IsBlock() {
			// Old format: "1" "D:\\SteamLibrary", without an app list.
			if fileExists(manifestPath(entry.Value, id)) {
				library = entry.Value
				break
			}
			continue
		}
		if apps, ok := entry.Child.Sub("apps"); ok && apps.Has(id) {
			library, _ = entry.Child.String("path")
			break
		}
	}
	if library == "" {
		return "", fmt.Errorf("app %s: %w", id, ErrGameNotFound)
	}

	manifest, err := readVDF(manifestPath(library, id))
	if err != nil {
		return "", err
	}
	installDir, ok := manifest.Path("AppState")
	if !ok {
		return "", fmt.Errorf("appmanifest_%s.acf: no AppState block", id)
	}
	dir, ok := installDir.String("installdir")
	if !ok {
		return "", fmt.Errorf("appmanifest_%s.acf: no installdir", id)
	}
	gameDir := filepath.Join(library, "steamapps", "common", dir)
	slog.Debug("found steam game", "app", appID, "dir", gameDir)
	return gameDir, nil
}

// FindPortal locates the Steam installation and then Portal within it.
func FindPortal() (string, error) {
	steamDir, err := FindSteamDir()
	if err != nil {
		return "", err
	}
	return FindGame(steamDir, PortalAppID)
}

func manifestPath(library, id string) string {
	return filepath.Join(library, "steamapps", "appmanifest_"+id+".acf")
}

func readVDF(path string) (*keyvalues.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	node, err := keyvalues.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return node, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
