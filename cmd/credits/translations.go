package credits

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gigurra/stillalive/cmd/keyvalues"
	"golang.org/x/text/encoding/unicode"
)

var ErrUnknownToken = errors.New("unknown translation token")

// Translations maps a token name to its localized text.
type Translations map[string]string

// LoadTranslations decodes a language resource (resource/portal_<lang>.txt).
// The game ships these as UTF-16LE, usually with a byte order mark. Without a
// mark, a zero second byte means UTF-16LE and anything else is read as UTF-8.
// Later definitions of a token replace earlier ones.
func LoadTranslations(data []byte) (Translations, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	root, err := keyvalues.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing translations: %w", err)
	}
	tokens, ok := root.Path("lang", "Tokens")
	if !ok {
		return nil, fmt.Errorf("translations: missing lang/Tokens block")
	}
	out := make(Translations, len(tokens.Entries))
	for _, e := range tokens.Entries {
		if e.IsBlock() {
			continue
		}
		out[e.Key] = e.Value
	}
	return out, nil
}

func decodeText(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding UTF-16 translations: %w", err)
		}
		return string(decoded), nil
	}
	if len(data) >= 2 && data[0] != 0 && data[1] == 0 {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding UTF-16 translations: %w", err)
		}
		return string(decoded), nil
	}
	return string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})), nil
}

// Lookup returns the text for token.
func (t Translations) Lookup(token string) (string, error) {
	s, ok := t[token]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}
	return s, nil
}
