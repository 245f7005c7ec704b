// Package codec handles transfer-encoded payload bytes. Fingerprinting and
// classification always operate on decoded bytes; encoding exists only at
// record-serialization boundaries.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrDecode indicates a malformed transfer-encoded payload. It aborts the
// record being built, not the whole batch.
var ErrDecode = errors.New("malformed transfer encoding")

// Decode returns the raw bytes for the given transfer encoding. Only base64
// is actually decoded; any other encoding (including empty) passes the bytes
// through unchanged.
func Decode(data []byte, encoding string) ([]byte, error) {
	if !strings.EqualFold(encoding, "base64") {
		return data, nil
	}

	// Mail bodies wrap base64 in lines; strip all whitespace first.
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, string(data))

	out, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}

// Encode returns the base64 text form of raw bytes.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
