//go:build !windows

package steam

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindSteamDirIn(t *testing.T) {
	home := t.TempDir()
	if _, err := findSteamDirIn(home); !errors.Is(err, ErrSteamNotFound) {
		t.Errorf("findSteamDirIn(empty home) error = %v, want %v", err, ErrSteamNotFound)
	}

	flatpak := filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", "data", "Steam")
	snap := filepath.Join(home, "snap", "steam", "common", ".local", "share", "Steam")
	for _, dir := range []string{flatpak, snap} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	got, err := findSteamDirIn(home)
	if err != nil {
		t.Fatalf("findSteamDirIn returned error: %v", err)
	}
	if got != flatpak {
		t.Errorf("findSteamDirIn = %q, want %q", got, flatpak)
	}
}
