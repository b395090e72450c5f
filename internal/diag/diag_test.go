package diag

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dccourt/esphome-gecko/internal/accessor"
)

func TestHexDumpLines(t *testing.T) {
	data := []byte{
		0x13, 0x02, 0x49, 0x04, 0x00, 0x00, 0x06, 0x00,
		0x00, 0x00, 0x06, 0x00, 0x03, 0x01, 0x0C, 0x0B,
		0x00, 0x00, 0x00, 0x00,
	}

	lines := HexDumpLines(data)
	require.Len(t, lines, 2)
	assert.Equal(t, "00000000: 13 02 49 04 00 00 06 00  00 00 06 00 03 01 0C 0B  ..I.............", lines[0])
	assert.Equal(t, "00000010: 00 00 00 00                                       ....", lines[1])

	// ASCII columns line up regardless of line length
	assert.Equal(t, strings.LastIndex(lines[0], "  ")+2, strings.LastIndex(lines[1], " ")+1)
}

func TestHexDumpEmpty(t *testing.T) {
	assert.Empty(t, HexDumpLines(nil))
	assert.Equal(t, "", HexDump(nil))
}

func TestFieldEventString(t *testing.T) {
	ev := FieldEvent{RawIndex: 70, Position: 67, Path: "SetpointG", Value: "38.5 °C"}
	assert.Equal(t, "0046->0043: SetpointG = 38.5 °C", ev.String())

	// A negative base offset can move early bytes before position zero
	ev = FieldEvent{RawIndex: 2, Position: -3, Path: "Hours", Value: 14}
	assert.Equal(t, "0002->-0003: Hours = 14", ev.String())
}

func TestFormatIndex(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0000"},
		{0x46, "0046"},
		{0x1234, "1234"},
		{-3, "-0003"},
		{-0x41, "-0041"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatIndex(tt.n), "FormatIndex(%d)", tt.n)
	}

	w := Warning{Path: "Clock", RawIndex: 1, Position: -4, Err: fmt.Errorf("time: %w", accessor.ErrTruncated)}
	assert.Equal(t, "Clock at 0001->-0004 skipped: time: buffer truncated", w.String())
}

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf)

	s.HexDump([]byte("AB"))
	s.Field(FieldEvent{RawIndex: 0, Position: 0, Path: "Hours", Value: 12})
	s.Warn(Warning{Path: "Mode", Err: &accessor.RangeError{Path: "Mode", Values: []string{"A", "B"}, Index: 5, Raw: 5, Position: 3}})
	s.Warn(Warning{Path: "Clock", RawIndex: 9, Position: 9, Err: fmt.Errorf("time: %w", accessor.ErrTruncated)})

	out := buf.String()
	assert.Contains(t, out, "Data length: 2 bytes\n")
	assert.Contains(t, out, ColumnHeader)
	assert.Contains(t, out, "00000000: 41 42")
	assert.Contains(t, out, "0000->0000: Hours = 12\n")
	assert.Contains(t, out, "WARNING: enum accessor Mode out-of-range for [A B]: value is 5 (raw byte: 5), position is 3\n")
	assert.Contains(t, out, "WARNING: Clock at 0009->0009 skipped")
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewLogSink(zap.New(core))

	s.HexDump([]byte{0x01})
	s.Field(FieldEvent{Path: "Hours", Value: 1})
	s.Warn(Warning{Path: "Mode", Err: &accessor.RangeError{Path: "Mode", Values: []string{"A"}, Index: 3, Raw: 3}})
	s.Warn(Warning{Path: "Clock", Err: accessor.ErrTruncated})

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "Decoded field", entries[1].Message)
	assert.Equal(t, "Hours", entries[1].ContextMap()["path"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "Enum value out of range", entries[2].Message)
	assert.Equal(t, "Mode", entries[2].ContextMap()["path"])
	assert.Equal(t, "Field skipped", entries[3].Message)
}

func TestRecorderAndTee(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	s := Tee(a, b, Nop{})

	s.HexDump([]byte{1, 2})
	s.Field(FieldEvent{Path: "X"})
	s.Warn(Warning{Path: "Y", Err: accessor.ErrTruncated})

	for _, r := range []*Recorder{a, b} {
		assert.Equal(t, [][]byte{{1, 2}}, r.Dumps())
		assert.Equal(t, []FieldEvent{{Path: "X"}}, r.Fields())
		require.Len(t, r.Warnings(), 1)
		assert.Equal(t, "Y", r.Warnings()[0].Path)
	}
}
