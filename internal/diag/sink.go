package diag

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/dccourt/esphome-gecko/internal/accessor"
)

// FieldEvent describes one decoded field.
type FieldEvent struct {
	RawIndex int    // Index into the input buffer
	Position int    // Logical position after offset correction
	Path     string // Accessor path
	Value    any    // Decoded value
}

// String renders the event in trace form: "<raw>-><logical>: <path> = <value>"
func (e FieldEvent) String() string {
	return fmt.Sprintf("%s->%s: %s = %v", FormatIndex(e.RawIndex), FormatIndex(e.Position), e.Path, e.Value)
}

// FormatIndex renders a buffer index or logical position as 4-digit hex. A
// negative position, which a negative base offset can produce, keeps its sign
// in front of the digits.
func FormatIndex(n int) string {
	if n < 0 {
		return fmt.Sprintf("-%04x", -n)
	}
	return fmt.Sprintf("%04x", n)
}

// Warning describes a field that could not be decoded cleanly. Err is either
// a *accessor.RangeError or wraps accessor.ErrTruncated.
type Warning struct {
	RawIndex int
	Position int
	Path     string
	Err      error
}

// String returns the warning line
func (w Warning) String() string {
	if errors.Is(w.Err, accessor.ErrTruncated) {
		return fmt.Sprintf("%s at %s->%s skipped: %v", w.Path, FormatIndex(w.RawIndex), FormatIndex(w.Position), w.Err)
	}
	return w.Err.Error()
}

// Sink receives decode diagnostics.
type Sink interface {
	HexDump(data []byte)
	Field(ev FieldEvent)
	Warn(w Warning)
}

// Nop is a Sink that discards everything
type Nop struct{}

func (Nop) HexDump([]byte)   {}
func (Nop) Field(FieldEvent) {}
func (Nop) Warn(Warning)     {}

// TextSink writes diagnostics as plain text lines.
type TextSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextSink creates a sink writing to w
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// HexDump writes the length preamble, the column header and the dump
func (s *TextSink) HexDump(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "Data length: %d bytes\n", len(data))
	fmt.Fprintln(s.w, ColumnHeader)
	for _, line := range HexDumpLines(data) {
		fmt.Fprintln(s.w, line)
	}
}

// Field writes one trace line
func (s *TextSink) Field(ev FieldEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, ev.String())
}

// Warn writes a warning line
func (s *TextSink) Warn(w Warning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "WARNING: %s\n", w)
}

// LogSink routes diagnostics into a zap logger. Trace output goes to Debug,
// warnings to Warn.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that logs through logger
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// HexDump logs the buffer at debug level
func (s *LogSink) HexDump(data []byte) {
	s.logger.Debug("Decode input",
		zap.Int("length", len(data)),
		zap.Strings("hex_dump", HexDumpLines(data)),
	)
}

// Field logs a decoded field at debug level
func (s *LogSink) Field(ev FieldEvent) {
	s.logger.Debug("Decoded field",
		zap.Int("raw_index", ev.RawIndex),
		zap.Int("position", ev.Position),
		zap.String("path", ev.Path),
		zap.Any("value", ev.Value),
	)
}

// Warn logs a decode warning
func (s *LogSink) Warn(w Warning) {
	var rangeErr *accessor.RangeError
	if errors.As(w.Err, &rangeErr) {
		s.logger.Warn("Enum value out of range",
			zap.String("path", rangeErr.Path),
			zap.Strings("values", rangeErr.Values),
			zap.Int("index", rangeErr.Index),
			zap.Uint8("raw_byte", rangeErr.Raw),
			zap.Int("position", rangeErr.Position),
			zap.Int("raw_index", w.RawIndex),
		)
		return
	}
	s.logger.Warn("Field skipped",
		zap.String("path", w.Path),
		zap.Int("raw_index", w.RawIndex),
		zap.Int("position", w.Position),
		zap.Error(w.Err),
	)
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu       sync.Mutex
	dumps    [][]byte
	fields   []FieldEvent
	warnings []Warning
}

func (r *Recorder) HexDump(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dumps = append(r.dumps, append([]byte(nil), data...))
}

func (r *Recorder) Field(ev FieldEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields = append(r.fields, ev)
}

func (r *Recorder) Warn(w Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
}

// Dumps returns the buffers passed to HexDump
func (r *Recorder) Dumps() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.dumps...)
}

// Fields returns the recorded field events in arrival order
func (r *Recorder) Fields() []FieldEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FieldEvent(nil), r.fields...)
}

// Warnings returns the recorded warnings in arrival order
func (r *Recorder) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Warning(nil), r.warnings...)
}

// Tee returns a Sink that forwards every event to each of sinks
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

type tee []Sink

func (t tee) HexDump(data []byte) {
	for _, s := range t {
		s.HexDump(data)
	}
}

func (t tee) Field(ev FieldEvent) {
	for _, s := range t {
		s.Field(ev)
	}
}

func (t tee) Warn(w Warning) {
	for _, s := range t {
		s.Warn(w)
	}
}
