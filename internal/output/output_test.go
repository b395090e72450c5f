package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dccourt/esphome-gecko/internal/accessor"
	"github.com/dccourt/esphome-gecko/internal/decoder"
	"github.com/dccourt/esphome-gecko/internal/offset"
	"github.com/dccourt/esphome-gecko/internal/schema"
)

// testReport decodes a frame with one value of every outcome: plain values,
// an out-of-range enum, a set flag and a word cut off by the frame end.
func testReport(t *testing.T) *Report {
	t.Helper()
	s, err := schema.New("test", []accessor.Accessor{
		accessor.Byte("Hours", 0, accessor.AccessRead),
		accessor.Temperature("Setpoint", 1, accessor.AccessReadWrite),
		accessor.Enum("Mode", 3, 0, 0, []string{"A", "B"}, accessor.AccessRead),
		accessor.Bool("Heater", 4, 0, accessor.AccessRead),
		accessor.Word("Tail", 5, accessor.AccessRead),
	})
	require.NoError(t, err)

	buf := []byte{14, 0x02, 0x49, 5, 0x01, 0xFF}
	return &Report{
		Revision: "test",
		Source:   "builtin",
		Length:   len(buf),
		Result:   decoder.DecodeResult(buf, s, nil),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatDetailed, false},
		{"detailed", FormatDetailed, false},
		{"Compact", FormatCompact, false},
		{"json", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"cbor", FormatCBOR, false},
		{"xml", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
	assert.True(t, FormatCBOR.Binary())
	assert.False(t, FormatJSON.Binary())
}

func mustParse(t *testing.T, s string) Format {
	t.Helper()
	f, err := ParseFormat(s)
	require.NoError(t, err)
	return f
}

func TestRowsOrderAndOverwrite(t *testing.T) {
	s, err := schema.New("test", []accessor.Accessor{
		accessor.Byte("Late", 2, accessor.AccessRead),
		accessor.Byte("Early", 0, accessor.AccessRead),
		accessor.Byte("Twice", 1, accessor.AccessRead),
	})
	require.NoError(t, err)

	// raw 2 -> 1 and raw 3 -> 2, so Twice decodes at raw 1 and raw 2
	res := decoder.DecodeResult([]byte{10, 11, 12, 13}, s, offset.Table{{Threshold: 2, Delta: -1}})

	rows := Rows(res)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Early", "Twice", "Late"}, []string{rows[0].Path, rows[1].Path, rows[2].Path})
	assert.Equal(t, 12, rows[1].Value)
	assert.Equal(t, 2, rows[1].RawIndex)
	assert.Nil(t, Rows(nil))
}

func TestWritePlainDetailed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatDetailed, testReport(t), Options{}))

	want := `Revision:  test (builtin)
Length:    6 bytes, 6 consumed

  POS   RAW   FIELD     VALUE
  0000  0000  Hours     14
  0001  0001  Setpoint  32.5 °C
  0003  0003  Mode      Unknown !
  0004  0004  Heater    true

Warnings:
  enum accessor Mode out-of-range for [A B]: value is 5 (raw byte: 5), position is 3

Skipped:
  ✗ Tail (word) at 0005->0005
`
	assert.Equal(t, want, buf.String())
}

func TestWriteStyledDetailed(t *testing.T) {
	rep := testReport(t)
	rep.Description = "Test frame"
	rep.Controller = "pool-house"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatDetailed, rep, Options{Styled: true, Width: 80}))

	out := buf.String()
	for _, want := range []string{"TEST", "Test frame", "pool-house", "Setpoint", "32.5 °C", "Unknown", "Warnings:", "Tail (word)"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteCompact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCompact, testReport(t), Options{}))
	assert.Equal(t, "Hours=14\nSetpoint=32.5 °C\nMode=Unknown\nHeater=true\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, testReport(t), Options{}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "test", got["revision"])
	assert.Equal(t, float64(6), got["consumed"])
	assert.Equal(t, map[string]any{
		"Hours":    float64(14),
		"Setpoint": "32.5 °C",
		"Mode":     "Unknown",
		"Heater":   true,
	}, got["values"])
	assert.Equal(t, []any{"Tail"}, got["skipped"])
	assert.Len(t, got["warnings"], 1)
	assert.NotContains(t, buf.String(), "controller", "empty controller is omitted")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, testReport(t), Options{}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "revision: test\n"), out)
	assert.Contains(t, out, "\n  Heater: true\n")
	assert.Contains(t, out, "consumed: 6\n")
}

func TestWriteCBORIsDeterministic(t *testing.T) {
	rep := testReport(t)

	var first, second bytes.Buffer
	require.NoError(t, Write(&first, FormatCBOR, rep, Options{}))
	require.NoError(t, Write(&second, FormatCBOR, rep, Options{}))
	assert.Equal(t, first.Bytes(), second.Bytes())

	var doc document
	require.NoError(t, cbor.Unmarshal(first.Bytes(), &doc))
	assert.Equal(t, "test", doc.Revision)
	assert.Equal(t, "32.5 °C", doc.Values["Setpoint"])
	assert.Equal(t, []string{"Tail"}, doc.Skipped)
}

func TestWriteWithoutResult(t *testing.T) {
	for _, f := range []Format{FormatDetailed, FormatCompact, FormatJSON, FormatYAML, FormatCBOR} {
		err := Write(&bytes.Buffer{}, f, &Report{Revision: "x"}, Options{})
		assert.ErrorIs(t, err, errNoResult, f.String())
	}
}

func TestWriteYAMLDecodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, testReport(t), Options{}))

	var doc document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 14, doc.Values["Hours"])
	assert.Equal(t, 6, doc.Length)
}
