package accessor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		acc   Accessor
		buf   []byte
		index int
		want  any
	}{
		{"bool bit set", Bool("Flag", 0, 2, AccessRead), []byte{0x04}, 0, true},
		{"bool bit clear", Bool("Flag", 0, 0, AccessRead), []byte{0x04}, 0, false},
		{"bool high bit", Bool("Waterfall", 0, 7, AccessRead), []byte{0x80}, 0, true},
		{"byte", Byte("Hours", 0, AccessRead), []byte{0xC8}, 0, 200},
		{"byte at index", Byte("Hours", 3, AccessRead), []byte{0, 0, 0, 0x2A}, 3, 42},
		{"word", Word("Counter", 0, AccessRead), []byte{0x01, 0x2C}, 0, 300},
		{"word max", Word("Counter", 0, AccessRead), []byte{0xFF, 0xFF}, 0, 65535},
		{"temperature", Temperature("SetpointG", 0, AccessReadWrite), []byte{0x01, 0x2C}, 0, "16.666666666666668 °C"},
		{"temperature whole", Temperature("SetpointG", 0, AccessReadWrite), []byte{0x01, 0x68}, 0, "20.0 °C"},
		{"temperature zero", Temperature("SetpointG", 0, AccessReadWrite), []byte{0x00, 0x00}, 0, "0.0 °C"},
		{"time", Time("FilterStart", 0, AccessRead), []byte{0x08, 0x1E}, 0, "08:30"},
		{"time midnight", Time("FilterStart", 1, AccessRead), []byte{0xFF, 0x00, 0x00}, 1, "00:00"},
		{"enum plain", Enum("Units", 0, 0, 0, []string{"F", "C"}, AccessRead), []byte{0x01}, 0, "C"},
		{"enum shifted and masked", Enum("UdP2", 0, 2, 4, []string{"OFF", "LO", "HI"}, AccessRead), []byte{0b0000_1001}, 0, "HI"},
		{"enum mask only", Enum("UdP1", 0, 0, 4, []string{"OFF", "LO", "HI"}, AccessRead), []byte{0b1111_0001}, 0, "LO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.acc.Decode(tt.buf, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeEnumOutOfRange(t *testing.T) {
	acc := Enum("Mode", 12, 0, 0, []string{"A", "B"}, AccessRead)

	got, err := acc.Decode([]byte{0x05}, 0)
	assert.Equal(t, Unknown, got)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "Mode", rangeErr.Path)
	assert.Equal(t, 5, rangeErr.Index)
	assert.Equal(t, byte(0x05), rangeErr.Raw)
	assert.Equal(t, 12, rangeErr.Position)
	assert.Equal(t, []string{"A", "B"}, rangeErr.Values)
	assert.Contains(t, err.Error(), "Mode")
}

func TestDecodeTruncated(t *testing.T) {
	for _, acc := range []Accessor{
		Word("W", 0, AccessRead),
		Temperature("T", 0, AccessRead),
		Time("H", 0, AccessRead),
	} {
		t.Run(acc.Kind().String(), func(t *testing.T) {
			got, err := acc.Decode([]byte{0x00, 0x01}, 1)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrTruncated)
		})
	}

	_, err := Byte("B", 0, AccessRead).Decode([]byte{0x01}, 0)
	assert.NoError(t, err, "single-byte kinds fit on the last byte")
}

func TestDecodeDoesNotMutate(t *testing.T) {
	buf := []byte{0x12, 0x34, 0x56}
	orig := append([]byte(nil), buf...)

	for _, acc := range []Accessor{
		Bool("B", 0, 1, AccessRead),
		Word("W", 0, AccessRead),
		Enum("E", 0, 1, 2, []string{"x", "y"}, AccessRead),
		Time("T", 1, AccessRead),
	} {
		_, _ = acc.Decode(buf, 0)
	}
	assert.Equal(t, orig, buf)
}

func TestEnumCopiesValues(t *testing.T) {
	values := []string{"A", "B"}
	acc := Enum("E", 0, 0, 0, values, AccessRead)
	values[0] = "changed"

	got, err := acc.Decode([]byte{0}, 0)
	require.NoError(t, err)
	assert.Equal(t, "A", got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		acc     Accessor
		wantErr bool
	}{
		{"valid bool", Bool("B", 0, 7, AccessRead), false},
		{"bit out of range", Bool("B", 0, 8, AccessRead), true},
		{"empty path", Byte("", 0, AccessRead), true},
		{"negative position", Byte("B", -1, AccessRead), true},
		{"enum without values", Enum("E", 0, 0, 0, nil, AccessRead), true},
		{"enum mask not power of two", Enum("E", 0, 0, 3, []string{"a"}, AccessRead), true},
		{"enum mask power of two", Enum("E", 0, 0, 8, []string{"a"}, AccessRead), false},
		{"enum shift too large", Enum("E", 0, 8, 0, []string{"a"}, AccessRead), true},
		{"word", Word("W", 10, AccessReadWrite), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.acc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseKindAndAccess(t *testing.T) {
	k, err := ParseKind("Temp")
	require.NoError(t, err)
	assert.Equal(t, KindTemperature, k)

	_, err = ParseKind("float")
	assert.Error(t, err)

	a, err := ParseAccess("ALL")
	require.NoError(t, err)
	assert.Equal(t, AccessReadWrite, a)

	a, err = ParseAccess("")
	require.NoError(t, err)
	assert.Equal(t, AccessRead, a)

	_, err = ParseAccess("execute")
	assert.Error(t, err)
}

func TestFormatTemperature(t *testing.T) {
	assert.Equal(t, "16.666666666666668 °C", FormatTemperature(300))
	assert.Equal(t, "38.5 °C", FormatTemperature(693))
	assert.Equal(t, "0.05555555555555555 °C", FormatTemperature(1))
}
