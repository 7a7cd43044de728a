package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gigurra/stillalive/cmd/keyvalues"
	"github.com/samber/lo"
)

const (
	gameinfoPath         = "|gameinfo_path|"
	allSourceEnginePaths = "|all_source_engine_paths|"
	allInDirectorySuffix = "/*"
	gameinfoFile         = "gameinfo.txt"
)

var archiveExtensions = []string{".zip", ".tar", ".tgz", ".tar.gz", ".tar.bz2", ".tar.xz", ".tar.zst", ".7z", ".rar"}

// MountPath mounts whatever lives at p: a VPK package, an archive bundle or a
// directory. A path that does not exist, or a plain file that is neither,
// finds nothing.
func MountPath(p string) (Finder, error) {
	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".vpk"):
		return MountVPK(p)
	case lo.SomeBy(archiveExtensions, func(ext string) bool { return strings.HasSuffix(lower, ext) }):
		if _, err := os.Stat(p); err != nil {
			return Empty, nil
		}
		return MountArchive(p)
	default:
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			return Empty, nil
		}
		return MountDir(p), nil
	}
}

// GameMounts mounts the search paths listed in gameDir/gameinfo.txt, in
// order. Paths are relative to engineDir unless prefixed with
// |gameinfo_path|; a trailing /* mounts every entry of the directory.
func GameMounts(engineDir, gameDir string) ([]Finder, error) {
	text, err := os.ReadFile(filepath.Join(gameDir, gameinfoFile))
	if err != nil {
		return nil, err
	}
	root, err := keyvalues.Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", gameinfoFile, err)
	}
	searchPaths, ok := root.Path("GameInfo", "FileSystem", "SearchPaths")
	if !ok {
		return nil, fmt.Errorf("%s: no GameInfo/FileSystem/SearchPaths block", gameinfoFile)
	}

	var result []Finder
	for _, entry := range searchPaths.Entries {
		if entry.IsBlock() {
			continue
		}
		target, all := strings.CutSuffix(entry.Value, allInDirectorySuffix)
		targetPath := resolveSearchPath(engineDir, gameDir, target)

		if !all {
			f, err := MountPath(targetPath)
			if err != nil {
				return nil, err
			}
			result = append(result, f)
			continue
		}
		dirEntries, err := os.ReadDir(targetPath)
		if err != nil {
			continue
		}
		for _, de := range dirEntries {
			f, err := MountPath(filepath.Join(targetPath, de.Name()))
			if err != nil {
				return nil, err
			}
			result = append(result, f)
		}
	}
	return slices.DeleteFunc(result, func(f Finder) bool { return f == Empty }), nil
}

func resolveSearchPath(engineDir, gameDir, target string) string {
	if rest, ok := strings.CutPrefix(target, gameinfoPath); ok {
		return filepath.Join(gameDir, filepath.FromSlash(rest))
	}
	if rest, ok := strings.CutPrefix(target, allSourceEnginePaths); ok {
		return filepath.Join(engineDir, filepath.FromSlash(rest))
	}
	return filepath.Join(engineDir, filepath.FromSlash(target))
}

// MountGame is Sequential over GameMounts.
func MountGame(engineDir, gameDir string) (Finder, error) {
	mounts, err := GameMounts(engineDir, gameDir)
	if err != nil {
		return nil, err
	}
	return Sequential(mounts...), nil
}
