package assets

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	vpkSignature  = 0x55aa1234
	vpkInline     = 0x7fff
	vpkTerminator = 0xffff
	vpkHeaderV1   = 12
	vpkHeaderV2   = 28
	vpkDirSuffix  = "_dir.vpk"
	vpkNoneMarker = " "
)

var ErrBadVPK = errors.New("not a VPK directory file")

type vpkEntry struct {
	ArchiveIndex uint16
	Offset       uint32
	Length       uint32
	Preload      []byte
}

// VPK is an opened Valve package: a directory file (name_dir.vpk) plus
// numbered data files (name_000.vpk, ...) next to it.
type VPK struct {
	dirFile    string
	base       string
	dataOffset int64
	entries    map[string]vpkEntry
}

// OpenVPK reads the directory tree of a name_dir.vpk file.
func OpenVPK(dirFile string) (*VPK, error) {
	if !strings.HasSuffix(dirFile, vpkDirSuffix) {
		return nil, fmt.Errorf("%s: %w", dirFile, ErrBadVPK)
	}
	f, err := os.Open(dirFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var header struct {
		Signature uint32
		Version   uint32
		TreeSize  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", dirFile, err)
	}
	if header.Signature != vpkSignature {
		return nil, fmt.Errorf("%s: %w", dirFile, ErrBadVPK)
	}
	headerSize := int64(vpkHeaderV1)
	switch header.Version {
	case 1:
	case 2:
		headerSize = vpkHeaderV2
		if _, err := r.Discard(vpkHeaderV2 - vpkHeaderV1); err != nil {
			return nil, fmt.Errorf("%s: reading header: %w", dirFile, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported VPK version %d", dirFile, header.Version)
	}

	entries, err := readVPKTree(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dirFile, err)
	}
	v := &VPK{
		dirFile:    dirFile,
		base:       strings.TrimSuffix(dirFile, vpkDirSuffix),
		dataOffset: headerSize + int64(header.TreeSize),
		entries:    entries,
	}
	slog.Debug("mounted VPK", "file", dirFile, "version", header.Version, "files", v.Len())
	return v, nil
}

// readVPKTree reads the extension / directory / file name nesting of the
// tree. Each level ends with an empty string.
func readVPKTree(r *bufio.Reader) (map[string]vpkEntry, error) {
	entries := make(map[string]vpkEntry)
	for {
		ext, err := readCString(r)
		if err != nil || ext == "" {
			return entries, err
		}
		for {
			dir, err := readCString(r)
			if err != nil {
				return nil, err
			}
			if dir == "" {
				break
			}
			for {
				name, err := readCString(r)
				if err != nil {
					return nil, err
				}
				if name == "" {
					break
				}
				entry, err := readVPKEntry(r)
				if err != nil {
					return nil, fmt.Errorf("entry %s/%s.%s: %w", dir, name, ext, err)
				}
				entries[vpkKey(dir, name, ext)] = entry
			}
		}
	}
}

func readVPKEntry(r *bufio.Reader) (vpkEntry, error) {
	var raw struct {
		CRC          uint32
		PreloadBytes uint16
		ArchiveIndex uint16
		Offset       uint32
		Length       uint32
		Terminator   uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return vpkEntry{}, err
	}
	if raw.Terminator != vpkTerminator {
		return vpkEntry{}, fmt.Errorf("bad entry terminator %#x", raw.Terminator)
	}
	entry := vpkEntry{ArchiveIndex: raw.ArchiveIndex, Offset: raw.Offset, Length: raw.Length}
	if raw.PreloadBytes > 0 {
		entry.Preload = make([]byte, raw.PreloadBytes)
		if _, err := io.ReadFull(r, entry.Preload); err != nil {
			return vpkEntry{}, err
		}
	}
	return entry, nil
}

func readCString(r *bufio.Reader) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return "", fmt.Errorf("reading tree: %w", err)
	}
	return s[:len(s)-1], nil
}

// vpkKey maps the tree's " " placeholders for an empty directory or extension.
func vpkKey(dir, name, ext string) string {
	if dir == vpkNoneMarker {
		dir = ""
	}
	if ext == vpkNoneMarker {
		ext = ""
	}
	return strings.ToLower(ResourcePath(dir, name, ext))
}

// Len returns the number of files in the package.
func (v *VPK) Len() int {
	return len(v.entries)
}

func (v *VPK) Find(dir, name, ext string) ([]byte, error) {
	entry, ok := v.entries[vpkKey(dir, name, ext)]
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", ResourcePath(dir, name, ext), v.dirFile, ErrNotFound)
	}
	if entry.Length == 0 {
		return entry.Preload, nil
	}

	file := v.dirFile
	offset := int64(entry.Offset)
	if entry.ArchiveIndex == vpkInline {
		offset += v.dataOffset
	} else {
		file = fmt.Sprintf("%s_%03d.vpk", v.base, entry.ArchiveIndex)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data := make([]byte, len(entry.Preload)+int(entry.Length))
	copy(data, entry.Preload)
	if _, err := f.ReadAt(data[len(entry.Preload):], offset); err != nil {
		return nil, fmt.Errorf("reading %s from %s: %w", ResourcePath(dir, name, ext), file, err)
	}
	return data, nil
}

// MountVPK mounts a package given either its directory file or the plain
// name.vpk form used by gameinfo.txt. A package without a directory file
// finds nothing.
func MountVPK(file string) (Finder, error) {
	dirFile := file
	if !strings.HasSuffix(file, vpkDirSuffix) {
		dirFile = strings.TrimSuffix(file, ".vpk") + vpkDirSuffix
	}
	if info, err := os.Stat(dirFile); err != nil || !info.Mode().IsRegular() {
		return Empty, nil
	}
	return OpenVPK(dirFile)
}
