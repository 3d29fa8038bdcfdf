package normalize

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrEncoding is returned when bytes are neither UTF-8 nor EUC-KR
var ErrEncoding = errors.New("normalize: transcript is neither UTF-8 nor EUC-KR")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns an exported transcript file into a string
// Mobile exports are UTF-8, possibly with a BOM; older PC exports are EUC-KR (CP949)
func Decode(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b), nil
	}
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), b)
	// the decoder substitutes U+FFFD for bytes it cannot map
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", ErrEncoding
	}
	return string(out), nil
}
