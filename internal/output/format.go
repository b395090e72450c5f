package output

import (
	"fmt"
	"strings"
)

// Format selects how a decode is written
type Format int

const (
	FormatDetailed Format = iota // Header plus a position-ordered field table
	FormatCompact                // One path=value line per field
	FormatJSON
	FormatYAML
	FormatCBOR
)

var formatNames = []string{"detailed", "compact", "json", "yaml", "cbor"}

// String returns the format name
func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", f)
	}
	return formatNames[f]
}

// Binary reports whether the format writes non-text bytes
func (f Format) Binary() bool {
	return f == FormatCBOR
}

// Formats lists the accepted format names
func Formats() []string {
	return append([]string(nil), formatNames...)
}

// ParseFormat maps a format name to a Format. "" selects detailed.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatDetailed, nil
	}
	if s == "yml" {
		return FormatYAML, nil
	}
	for i, name := range formatNames {
		if s == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown output format %q (want one of %s)", s, strings.Join(formatNames, ", "))
}
