package assets

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/mholt/archives"
)

// MountArchive finds resources inside an archive bundle (zip, tar.gz, 7z and
// the other formats mholt/archives identifies). The archive is read on every
// lookup.
func MountArchive(file string) (Finder, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cannot open archive: %w", err)
	}
	defer f.Close()
	format, _, err := archives.Identify(context.Background(), file, f)
	if err != nil {
		return nil, fmt.Errorf("cannot identify archive format of %s: %w", file, err)
	}
	if _, ok := format.(archives.Extractor); !ok {
		return nil, fmt.Errorf("%s: format %s does not support extraction", file, format.Extension())
	}
	return FinderFunc(func(dir, name, ext string) ([]byte, error) {
		return readFromArchive(file, ResourcePath(dir, name, ext))
	}), nil
}

func readFromArchive(file, want string) ([]byte, error) {
	ctx := context.Background()

	archiveFile, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cannot open archive: %w", err)
	}
	defer archiveFile.Close()

	format, reader, err := archives.Identify(ctx, file, archiveFile)
	if err != nil {
		return nil, fmt.Errorf("cannot identify archive format: %w", err)
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return nil, fmt.Errorf("format does not support extraction")
	}

	// Zip and 7z need the original file for seeking
	var archiveReader io.Reader = reader
	switch format.(type) {
	case archives.Zip, archives.SevenZip:
		if _, err := archiveFile.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		archiveReader = archiveFile
	}

	var data []byte
	found := false
	err = extractor.Extract(ctx, archiveReader, func(ctx context.Context, f archives.FileInfo) error {
		if f.IsDir() || archiveName(f.NameInArchive) != want {
			return nil
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		data, err = io.ReadAll(src)
		if err != nil {
			return err
		}
		found = true
		return fs.SkipAll
	})
	if found {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return nil, fmt.Errorf("%s in %s: %w", want, file, ErrNotFound)
}

// archiveName normalizes a member name to the form ResourcePath produces.
func archiveName(name string) string {
	return strings.TrimPrefix(path.Clean(strings.ReplaceAll(name, "\\", "/")), "./")
}
