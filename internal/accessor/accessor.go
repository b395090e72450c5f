package accessor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which decode rule an Accessor applies.
type Kind int

const (
	KindBool Kind = iota
	KindByte
	KindWord
	KindEnum
	KindTemperature
	KindTime
)

// String returns the catalog name for the kind
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindByte:
		return "byte"
	case KindWord:
		return "word"
	case KindEnum:
		return "enum"
	case KindTemperature:
		return "temperature"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ParseKind maps a catalog kind name to a Kind. Accepted aliases follow the
// names used by older catalogs ("temp", "boolean").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bool", "boolean":
		return KindBool, nil
	case "byte":
		return KindByte, nil
	case "word":
		return KindWord, nil
	case "enum":
		return KindEnum, nil
	case "temperature", "temp":
		return KindTemperature, nil
	case "time":
		return KindTime, nil
	default:
		return 0, fmt.Errorf("unknown accessor kind %q", s)
	}
}

// width returns how many bytes the kind reads starting at its index.
func (k Kind) width() int {
	switch k {
	case KindWord, KindTemperature, KindTime:
		return 2
	default:
		return 1
	}
}

// Access is carried through from the catalog. It has no effect on decoding.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
	AccessReadWrite
)

// String returns the short catalog form of the access tag
func (a Access) String() string {
	switch a {
	case AccessRead:
		return "r"
	case AccessWrite:
		return "w"
	case AccessReadWrite:
		return "rw"
	default:
		return fmt.Sprintf("Access(%d)", a)
	}
}

// ParseAccess maps a catalog access tag to an Access. An empty tag means read-only.
func ParseAccess(s string) (Access, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "r", "read", "readonly":
		return AccessRead, nil
	case "w", "write", "writeonly":
		return AccessWrite, nil
	case "rw", "readwrite", "all":
		return AccessReadWrite, nil
	default:
		return 0, fmt.Errorf("unknown access tag %q", s)
	}
}

// Unknown is substituted for an enum whose computed index has no entry in its value table.
const Unknown = "Unknown"

// ErrTruncated is returned when a two-byte accessor sits on the last byte of the buffer.
var ErrTruncated = errors.New("buffer truncated")

// RangeError reports an enum index with no entry in the accessor's value
// table. It is a warning: Decode still returns the Unknown sentinel.
type RangeError struct {
	Path     string
	Values   []string
	Index    int
	Raw      byte
	Position int
}

// Error implements the error interface
func (e *RangeError) Error() string {
	return fmt.Sprintf("enum accessor %s out-of-range for %v: value is %d (raw byte: %d), position is %d",
		e.Path, e.Values, e.Index, e.Raw, e.Position)
}

// Accessor describes how to extract one named value from a frame. The kind
// selects the decode rule; Bit applies to KindBool, Shift/MaskWidth/Values to
// KindEnum. Accessors are values and never change after construction.
type Accessor struct {
	path      string
	position  int
	access    Access
	kind      Kind
	bit       uint8
	shift     uint8
	maskWidth int
	values    []string
}

// Bool builds an accessor for a single flag bit (0-7) of the byte at position.
func Bool(path string, position int, bit uint8, access Access) Accessor {
	return Accessor{path: path, position: position, access: access, kind: KindBool, bit: bit}
}

// Byte builds an accessor for the raw byte at position.
func Byte(path string, position int, access Access) Accessor {
	return Accessor{path: path, position: position, access: access, kind: KindByte}
}

// Word builds an accessor for the big-endian 16-bit value at position.
func Word(path string, position int, access Access) Accessor {
	return Accessor{path: path, position: position, access: access, kind: KindWord}
}

// Temperature builds an accessor for a word holding a temperature in units of 1/18 °C.
func Temperature(path string, position int, access Access) Accessor {
	return Accessor{path: path, position: position, access: access, kind: KindTemperature}
}

// Time builds an accessor for an hour byte followed by a minute byte.
func Time(path string, position int, access Access) Accessor {
	return Accessor{path: path, position: position, access: access, kind: KindTime}
}

// Enum builds an accessor that maps a byte (optionally shifted right by shift
// and masked to maskWidth entries) onto values. A zero shift or maskWidth
// leaves that step out. maskWidth counts items, so it must be a power of two.
func Enum(path string, position int, shift uint8, maskWidth int, values []string, access Access) Accessor {
	v := make([]string, len(values))
	copy(v, values)
	return Accessor{
		path:      path,
		position:  position,
		access:    access,
		kind:      KindEnum,
		shift:     shift,
		maskWidth: maskWidth,
		values:    v,
	}
}

func (a Accessor) Path() string     { return a.path }
func (a Accessor) Position() int    { return a.position }
func (a Accessor) Access() Access   { return a.access }
func (a Accessor) Kind() Kind       { return a.kind }
func (a Accessor) Bit() uint8       { return a.bit }
func (a Accessor) Shift() uint8     { return a.shift }
func (a Accessor) MaskWidth() int   { return a.maskWidth }
func (a Accessor) Values() []string { return append([]string(nil), a.values...) }

// Validate checks the variant parameters. The schema calls it for every
// accessor before building its index.
func (a Accessor) Validate() error {
	if a.path == "" {
		return errors.New("path is empty")
	}
	if a.position < 0 {
		return fmt.Errorf("position %d is negative", a.position)
	}
	switch a.kind {
	case KindBool:
		if a.bit > 7 {
			return fmt.Errorf("bit %d out of range 0-7", a.bit)
		}
	case KindEnum:
		if len(a.values) == 0 {
			return errors.New("enum has no values")
		}
		if a.shift > 7 {
			return fmt.Errorf("bit shift %d out of range 0-7", a.shift)
		}
		if a.maskWidth < 0 || a.maskWidth&(a.maskWidth-1) != 0 {
			return fmt.Errorf("mask width %d is not a power of two", a.maskWidth)
		}
	case KindByte, KindWord, KindTemperature, KindTime:
	default:
		return fmt.Errorf("unknown kind %v", a.kind)
	}
	return nil
}

// Decode extracts the accessor's value from buf at index, the physical index
// that corresponds to the accessor's logical position. It reads buf[index]
// and, for two-byte kinds, buf[index+1]; it never writes to buf.
//
// A two-byte kind at the last byte yields ErrTruncated and no value. An enum
// index outside the value table yields Unknown together with a *RangeError.
func (a Accessor) Decode(buf []byte, index int) (any, error) {
	if index < 0 || index+a.kind.width() > len(buf) {
		return nil, ErrTruncated
	}
	b := buf[index]

	switch a.kind {
	case KindBool:
		return (b>>a.bit)&1 != 0, nil
	case KindByte:
		return int(b), nil
	case KindWord:
		return word(buf, index), nil
	case KindTemperature:
		return FormatTemperature(word(buf, index)), nil
	case KindTime:
		return fmt.Sprintf("%02d:%02d", b, buf[index+1]), nil
	case KindEnum:
		return a.decodeEnum(b)
	default:
		return nil, fmt.Errorf("unknown kind %v", a.kind)
	}
}

func (a Accessor) decodeEnum(raw byte) (any, error) {
	idx := int(raw)
	if a.shift > 0 {
		idx >>= a.shift
	}
	if a.maskWidth > 0 {
		idx &= a.maskWidth - 1
	}
	if idx >= len(a.values) {
		return Unknown, &RangeError{
			Path:     a.path,
			Values:   a.Values(),
			Index:    idx,
			Raw:      raw,
			Position: a.position,
		}
	}
	return a.values[idx], nil
}

func word(buf []byte, index int) int {
	return int(buf[index+1]) + int(buf[index])<<8
}

// FormatTemperature renders a raw temperature word as degrees Celsius using
// the shortest representation that round-trips, keeping a ".0" on whole values.
func FormatTemperature(raw int) string {
	s := strconv.FormatFloat(float64(raw)/18.0, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + " °C"
}

// String returns a compact description used in listings and logs
func (a Accessor) String() string {
	switch a.kind {
	case KindBool:
		return fmt.Sprintf("%s@%d[bit %d] %s", a.path, a.position, a.bit, a.kind)
	case KindEnum:
		return fmt.Sprintf("%s@%d %s%v", a.path, a.position, a.kind, a.values)
	default:
		return fmt.Sprintf("%s@%d %s", a.path, a.position, a.kind)
	}
}
