// Package encoding converts legacy-charset OBJ sources to UTF-8.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for charset names Lookup does not know.
var ErrUnknownCharset = errors.New("unknown charset")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// charsets maps normalized names to decoders. UTF-8 maps to nil.
var charsets = map[string]encoding.Encoding{
	"utf-8":        nil,
	"utf8":         nil,
	"euc-kr":       korean.EUCKR,
	"windows-1251": charmap.Windows1251,
	"cp1251":       charmap.Windows1251,
	"koi8-r":       charmap.KOI8R,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
}

// Lookup returns the encoding registered under name (case-insensitive).
// UTF-8 returns a nil encoding.
func Lookup(name string) (encoding.Encoding, error) {
	enc, ok := charsets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return enc, nil
}

// DecodeToUTF8 converts data from the named charset to UTF-8.
// A leading UTF-8 byte order mark is removed.
func DecodeToUTF8(data []byte, charset string) ([]byte, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}

	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", charset, err)
	}
	return result, nil
}
