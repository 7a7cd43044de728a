// Package assets locates game resources by directory, name and extension
// across loose directories, archive bundles and VPK packages.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

var ErrNotFound = errors.New("resource not found")

// Finder returns the contents of dir/name.ext, or ErrNotFound.
type Finder interface {
	Find(dir, name, ext string) ([]byte, error)
}

// FinderFunc adapts a function to the Finder interface.
type FinderFunc func(dir, name, ext string) ([]byte, error)

func (f FinderFunc) Find(dir, name, ext string) ([]byte, error) {
	return f(dir, name, ext)
}

// Empty finds nothing.
var Empty Finder = emptyFinder{}

type emptyFinder struct{}

func (emptyFinder) Find(dir, name, ext string) ([]byte, error) {
	return nil, fmt.Errorf("%s: %w", ResourcePath(dir, name, ext), ErrNotFound)
}

// ResourcePath joins a resource reference into a slash separated path.
func ResourcePath(dir, name, ext string) string {
	return path.Join(dir, name+"."+ext)
}

// Sequential searches finders in order and returns the first hit. Errors
// other than ErrNotFound stop the search.
func Sequential(finders ...Finder) Finder {
	switch len(finders) {
	case 0:
		return Empty
	case 1:
		return finders[0]
	}
	return FinderFunc(func(dir, name, ext string) ([]byte, error) {
		for _, f := range finders {
			data, err := f.Find(dir, name, ext)
			if err == nil {
				return data, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%s: %w", ResourcePath(dir, name, ext), ErrNotFound)
	})
}

// MountFS finds resources in a file system.
func MountFS(fsys fs.FS) Finder {
	return FinderFunc(func(dir, name, ext string) ([]byte, error) {
		p := ResourcePath(dir, name, ext)
		data, err := fs.ReadFile(fsys, p)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return data, err
	})
}

// MountDir finds resources below a directory on disk.
func MountDir(dir string) Finder {
	return MountFS(os.DirFS(dir))
}

// File serves exactly one resource from a file on disk. It is used for loose
// file overrides given on the command line.
func File(dir, name, ext, file string) Finder {
	want := ResourcePath(dir, name, ext)
	return FinderFunc(func(dir, name, ext string) ([]byte, error) {
		if ResourcePath(dir, name, ext) != want {
			return nil, ErrNotFound
		}
		return os.ReadFile(file)
	})
}
