// Package template converts opaque fingerprint templates between the raw
// bytes the capture device produces and the text encoding the identity store
// persists. The pipeline never interprets template contents; it only needs the
// round trip to be lossless.
package template

import (
	"encoding/base64"
	"fmt"
)

// ErrCorrupt indicates stored template text that cannot be decoded. This only
// happens when a row was written by something other than Encode.
var ErrCorrupt = fmt.Errorf("corrupt template encoding")

// Encode serializes raw template bytes for storage.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode reverses Encode. Zero-length input is valid here; callers treat an
// empty template as unenrolled.
func Decode(text string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return raw, nil
}
