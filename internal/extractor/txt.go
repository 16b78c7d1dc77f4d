package extractor

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText decodes a plain-text file body on a best-effort basis. It never
// fails: undecodable byte sequences degrade to substitution rather than an
// error, since a word count only needs whitespace boundaries to survive.
func DecodeText(data []byte) string {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:])
	}

	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err == nil {
			return string(decoded)
		}
	}

	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err == nil {
			return string(decoded)
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	decoder := charmap.Windows1252.NewDecoder()
	decoded, _, err := transform.Bytes(decoder, data)
	if err == nil {
		return string(decoded)
	}

	decoder = charmap.ISO8859_1.NewDecoder()
	decoded, _, err = transform.Bytes(decoder, data)
	if err == nil {
		return string(decoded)
	}

	// string() replaces invalid sequences when ranged, and strings.Fields
	// splits on ASCII whitespace regardless, so the count stays usable.
	return string(data)
}
