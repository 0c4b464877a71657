// Package textenc decodes override tables and character-definition files
// to UTF-8, honoring a leading byte-order mark when one is present.
package textenc

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names accepted by NewReader.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "Windows-1252"
)

// Decoder returns the fallback decoder for name, used when the input has no
// byte-order mark. An empty name means UTF-8.
func Decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToUpper(name) {
	case "", strings.ToUpper(UTF8), "UTF8", "ASCII":
		return encoding.Nop.NewDecoder(), nil
	case strings.ToUpper(UTF16LE):
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder(), nil
	case strings.ToUpper(UTF16BE):
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder(), nil
	case strings.ToUpper(Windows1252), "CP1252", "LATIN1":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported input encoding %q", name)
	}
}

// NewReader wraps r so reads yield UTF-8. A UTF-8 or UTF-16 byte-order mark
// selects the encoding and is stripped; otherwise the named encoding applies.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	dec, err := Decoder(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(dec)), nil
}
