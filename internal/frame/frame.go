// Package frame turns upstream frame dumps into byte buffers for the decoder.
//
// Capture tools hand frames around as hexadecimal text. ParseHex accepts that
// text with optional whitespace, line breaks and a leading "0x", and fails
// with a *FormatError on odd length or a non-hex character. SkipHeader drops
// a fixed-size transport header from the front of a buffer.
package frame

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// FormatError reports hex input that cannot be turned into bytes
type FormatError struct {
	Offset int    // Character offset of the problem in the cleaned input, -1 if not applicable
	Reason string // What was wrong
}

// Error implements the error interface
func (e *FormatError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("invalid hex input at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("invalid hex input: %s", e.Reason)
}

// ParseHex decodes a hex string into bytes. Whitespace anywhere in the input
// and a leading "0x" are ignored. An empty input yields an empty buffer.
func ParseHex(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "0x"), "0X")

	if len(cleaned)%2 != 0 {
		return nil, &FormatError{Offset: -1, Reason: fmt.Sprintf("odd length %d", len(cleaned))}
	}

	data, err := hex.DecodeString(cleaned)
	if err != nil {
		var invalid hex.InvalidByteError
		if errors.As(err, &invalid) {
			return nil, &FormatError{
				Offset: strings.IndexByte(cleaned, byte(invalid)),
				Reason: fmt.Sprintf("non-hex character %q", rune(invalid)),
			}
		}
		return nil, &FormatError{Offset: -1, Reason: err.Error()}
	}
	return data, nil
}

// ReadHex reads all of r and parses it with ParseHex
func ReadHex(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read hex input: %w", err)
	}
	return ParseHex(string(raw))
}

// SkipHeader returns buf without its first n bytes. A header longer than the
// buffer is an error rather than an empty frame.
func SkipHeader(buf []byte, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("header length %d is negative", n)
	}
	if n > len(buf) {
		return nil, fmt.Errorf("header length %d exceeds frame length %d", n, len(buf))
	}
	return buf[n:], nil
}
