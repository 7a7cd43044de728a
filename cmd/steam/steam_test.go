package steam

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// vdfPath escapes a path for a quoted KeyValues string.
func vdfPath(p string) string {
	return strings.ReplaceAll(p, `\`, `\\`)
}

func TestFindGame(t *testing.T) {
	steamDir := t.TempDir()
	library := t.TempDir()
	writeFile(t, filepath.Join(steamDir, "steamapps", "libraryfolders.vdf"), `"libraryfolders"
{
	"0"
	{
		"path"		"`+vdfPath(steamDir)+`"
		"apps"
		{
			"220"		"1234"
		}
	}
	"1"
	{
		"path"		"`+vdfPath(library)+`"
		"label"		""
		"apps"
		{
			"400"		"4567"
		}
	}
}
`)
	writeFile(t, filepath.Join(library, "steamapps", "appmanifest_400.acf"), `"AppState"
{
	"appid"		"400"
	"name"		"Portal"
	"installdir"		"Portal"
}
`)

	got, err := FindGame(steamDir, PortalAppID)
	if err != nil {
		t.Fatalf("FindGame returned error: %v", err)
	}
	if want := filepath.Join(library, "steamapps", "common", "Portal"); got != want {
		t.Errorf("FindGame = %q, want %q", got, want)
	}

	if _, err := FindGame(steamDir, 620); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("FindGame(620) error = %v, want %v", err, ErrGameNotFound)
	}
}

func TestFindGame_OldFormat(t *testing.T) {
	steamDir := t.TempDir()
	library := t.TempDir()
	writeFile(t, filepath.Join(steamDir, "steamapps", "libraryfolders.vdf"), `"LibraryFolders"
{
	"TimeNextStatsReport"		"1234567890"
	"1"		"`+vdfPath(library)+`"
}
`)
	writeFile(t, filepath.Join(library, "steamapps", "appmanifest_400.acf"), `"AppState" { "installdir" "Portal" }`)

	got, err := FindGame(steamDir, PortalAppID)
	if err != nil {
		t.Fatalf("FindGame returned error: %v", err)
	}
	if want := filepath.Join(library, "steamapps", "common", "Portal"); got != want {
		t.Errorf("FindGame = %q, want %q", got, want)
	}
}

func TestFindGame_Errors(t *testing.T) {
	if _, err := FindGame(t.TempDir(), PortalAppID); err == nil {
		t.Error("FindGame without libraryfolders.vdf returned no error")
	}

	steamDir := t.TempDir()
	writeFile(t, filepath.Join(steamDir, "steamapps", "libraryfolders.vdf"),
		`"libraryfolders" { "0" { "path" "`+vdfPath(steamDir)+`" "apps" { "400" "1" } } }`)
	if _, err := FindGame(steamDir, PortalAppID); err == nil {
		t.Error("FindGame without app manifest returned no error")
	}

	writeFile(t, filepath.Join(steamDir, "steamapps", "appmanifest_400.acf"), `"AppState" { "name" "Portal" }`)
	if _, err := FindGame(steamDir, PortalAppID); err == nil {
		t.Error("FindGame without installdir returned no error")
	}
}
