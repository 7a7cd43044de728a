// Package game finds and loads the Portal resources the credits need.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gigurra/stillalive/cmd/assets"
	"github.com/gigurra/stillalive/cmd/config"
	"github.com/gigurra/stillalive/cmd/credits"
	"github.com/gigurra/stillalive/cmd/steam"
	"golang.org/x/sync/errgroup"
)

// Resource names a file by directory, name and extension, the way game
// packages index them.
type Resource struct {
	Dir, Name, Ext string
}

func (r Resource) String() string {
	return assets.ResourcePath(r.Dir, r.Name, r.Ext)
}

// Find reads the resource from f.
func (r Resource) Find(f assets.Finder) ([]byte, error) {
	data, err := f.Find(r.Dir, r.Name, r.Ext)
	if err != nil {
		return nil, fmt.Errorf("couldn't find %s: %w", r, err)
	}
	return data, nil
}

var (
	ScriptResource = Resource{"scripts", "credits", "txt"}
	SongResource   = Resource{"sound/music", "portal_still_alive", "mp3"}
)

// TranslationResource is the token file for a language.
func TranslationResource(language string) Resource {
	return Resource{"resource", "portal_" + language, "txt"}
}

// Options select where resources come from. Loose files win over Data,
// which wins over the game install.
type Options struct {
	// GameDir is the Portal install. Empty means ask Steam.
	GameDir string
	// Data is a directory, archive bundle or VPK with the resources.
	Data string

	Script       string
	Translations string
	Song         string

	Language string
	// NeedSong is false when audio is disabled.
	NeedSong bool
}

func (o Options) language() string {
	if o.Language == "" {
		return "english"
	}
	return o.Language
}

// Resources is everything loaded at startup.
type Resources struct {
	Script       *credits.Script
	Translations credits.Translations
	Song         []byte
}

// NewFinder assembles the finder chain for opts.
func NewFinder(opts Options) (assets.Finder, error) {
	var finders []assets.Finder
	overrides := []struct {
		res  Resource
		file string
	}{
		{ScriptResource, opts.Script},
		{TranslationResource(opts.language()), opts.Translations},
		{SongResource, opts.Song},
	}
	for _, o := range overrides {
		if o.file != "" {
			finders = append(finders, assets.File(o.res.Dir, o.res.Name, o.res.Ext, o.file))
		}
	}

	if opts.Data != "" {
		if _, err := os.Stat(opts.Data); err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
		f, err := assets.MountPath(opts.Data)
		if err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
		finders = append(finders, f)
	}

	gameDir := opts.GameDir
	if gameDir == "" {
		dir, err := steam.FindPortal()
		switch {
		case err == nil:
			gameDir = dir
		case len(finders) > 0:
			slog.Debug("no Portal install found, using the given files only", "error", err)
		default:
			return nil, fmt.Errorf("couldn't find Portal installation: %w", err)
		}
	}
	if gameDir != "" {
		f, err := MountInstall(gameDir)
		if err != nil {
			return nil, err
		}
		finders = append(finders, f)
	}
	return assets.Sequential(finders...), nil
}

// MountInstall mounts a Portal install through its gameinfo.txt search
// paths. Without a gameinfo.txt, the main package and the loose game
// directory are used.
func MountInstall(gameDir string) (assets.Finder, error) {
	modDir := filepath.Join(gameDir, "portal")
	f, err := assets.MountGame(gameDir, modDir)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading gameinfo.txt: %w", err)
	}

	pak := filepath.Join(modDir, "portal_pak_dir.vpk")
	if _, err := os.Stat(pak); err != nil {
		return nil, fmt.Errorf("couldn't find portal_pak_dir.vpk at %s", pak)
	}
	vpk, err := assets.OpenVPK(pak)
	if err != nil {
		return nil, err
	}
	return assets.Sequential(vpk, assets.MountDir(modDir)), nil
}

// Load reads the script, the translations and, when needed, the song
// concurrently. The first error is returned.
func Load(ctx context.Context, finder assets.Finder, opts Options) (*Resources, error) {
	var res Resources
	g, ctx := errgroup.WithContext(ctx)
	find := func(r Resource) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return r.Find(finder)
	}

	g.Go(func() error {
		data, err := find(ScriptResource)
		if err != nil {
			return err
		}
		script, err := credits.ParseScript(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", ScriptResource, err)
		}
		res.Script = script
		return nil
	})

	g.Go(func() error {
		r := TranslationResource(opts.language())
		data, err := find(r)
		if err != nil {
			return err
		}
		translations, err := credits.LoadTranslations(data)
		if err != nil {
			return fmt.Errorf("%s: %w", r, err)
		}
		res.Translations = translations
		return nil
	})

	if opts.NeedSong {
		g.Go(func() error {
			data, err := find(SongResource)
			if err != nil {
				return err
			}
			res.Song = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	slog.Debug("resources loaded", "lyrics", len(res.Script.Lyrics), "tokens", len(res.Translations), "song_bytes", len(res.Song))
	return &res, nil
}

// WithConfig fills options left empty on the command line from cfg.
func (o Options) WithConfig(cfg *config.Config) Options {
	if cfg == nil {
		return o
	}
	if o.GameDir == "" {
		o.GameDir = cfg.GameDir
	}
	if o.Data == "" {
		o.Data = cfg.Data
	}
	if o.Language == "" {
		o.Language = cfg.Language
	}
	return o
}

// LoadTimeline finds and loads the resources for opts and compiles them.
func LoadTimeline(ctx context.Context, opts Options) (*Resources, credits.Timeline, error) {
	finder, err := NewFinder(opts)
	if err != nil {
		return nil, credits.Timeline{}, err
	}
	res, err := Load(ctx, finder, opts)
	if err != nil {
		return nil, credits.Timeline{}, err
	}
	timeline, err := credits.Compile(res.Script, res.Translations)
	if err != nil {
		return nil, credits.Timeline{}, fmt.Errorf("compiling %s: %w", ScriptResource, err)
	}
	return res, timeline, nil
}
