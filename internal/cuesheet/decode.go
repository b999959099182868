package cuesheet

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// DecodeText interprets raw cue sheet bytes as UTF-8 text. A leading byte
// order mark is stripped; cue sheets written on Windows often carry one.
// Anything that is not valid UTF-8 after that is an error rather than
// silently replaced, since a corrupt sheet must not compare equal to
// anything.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	decoded, _, err := transform.Bytes(encoding.UTF8Validator, data)
	if err != nil {
		return "", fmt.Errorf("decode cue sheet: %w", err)
	}
	return string(decoded), nil
}
