package credits

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	artMarkerOpen  = "<<<"
	artMarkerClose = ">>>"
)

// ArtBank maps an art index to its multi-line picture. Entries are bucketed by
// the whole second of their timestamp; bucket 0 always exists.
type ArtBank map[int]string

// BuildArtBank buckets the script's "[time]text" art lines. Lines that land in
// the same second are joined with newlines, in file order. Bucket 0 is seeded
// with empty art, so its lines are joined onto that empty first row.
func BuildArtBank(lines []string) (ArtBank, error) {
	bank := ArtBank{0: ""}
	for _, line := range lines {
		ts, text, err := splitSegment(line)
		if err != nil {
			return nil, err
		}
		ms, err := ParseMillis(ts)
		if err != nil {
			return nil, fmt.Errorf("ascii art %q: %w", line, err)
		}
		idx := int(ms / 1000)
		if existing, ok := bank[idx]; ok {
			bank[idx] = existing + "\n" + text
		} else {
			bank[idx] = text
		}
	}
	return bank, nil
}

// Get returns the art for idx. Unknown indices yield empty art.
func (b ArtBank) Get(idx int) string {
	return b[idx]
}

// cutArtMarker strips a leading "<<<N>>>" reference from payload.
func cutArtMarker(payload string) (idx int, rest string, found bool, err error) {
	if !strings.HasPrefix(payload, artMarkerOpen) {
		return 0, payload, false, nil
	}
	end := strings.Index(payload, artMarkerClose)
	if end < 0 {
		return 0, "", false, fmt.Errorf("%w: unterminated art reference in %q", ErrMalformedScript, payload)
	}
	idx, err = strconv.Atoi(payload[len(artMarkerOpen):end])
	if err != nil {
		return 0, "", false, fmt.Errorf("%w: art reference in %q: %v", ErrMalformedScript, payload, err)
	}
	return idx, payload[end+len(artMarkerClose):], true, nil
}
