// Package decoder walks a controller frame and resolves its bytes into named
// field values using a schema and an offset correction table.
//
// For each raw index the decoder computes the logical position with the
// correction table, stops for good once that position passes the schema's
// highest accessor, and decodes every accessor registered at the position
// against the raw index. Decoding is a pure function of its inputs: the only
// side channel is the optional diagnostic sink, and no state survives between
// calls. Bad field data never fails a decode; it degrades to a sentinel value
// or a skipped field plus a warning on the sink.
package decoder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dccourt/esphome-gecko/internal/accessor"
	"github.com/dccourt/esphome-gecko/internal/diag"
	"github.com/dccourt/esphome-gecko/internal/offset"
	"github.com/dccourt/esphome-gecko/internal/schema"
)

// Values maps field paths to decoded values: bool for flags, int for bytes
// and words, string for enums, temperatures and times.
type Values map[string]any

// Paths returns the populated paths in lexical order
func (v Values) Paths() []string {
	paths := make([]string, 0, len(v))
	for p := range v {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Field records one accessor decode in the order it happened.
type Field struct {
	RawIndex int
	Position int
	Accessor accessor.Accessor
	Value    any
	Warning  error // *accessor.RangeError when Value is accessor.Unknown
}

// Result is the full outcome of a decode.
type Result struct {
	Values   Values
	Fields   []Field // Every decode, including ones later overwritten
	Skipped  []Field // Accessors cut off by the end of the buffer
	Consumed int     // Raw bytes examined before the walk ended
}

// Options control diagnostics. The zero value emits nothing.
type Options struct {
	Sink  diag.Sink // Receives warnings; nil discards them
	Trace bool      // Also send the hex dump and one event per decoded field
}

// Option configures a decode
type Option func(*Options)

// WithSink sends warnings to sink
func WithSink(sink diag.Sink) Option {
	return func(o *Options) { o.Sink = sink }
}

// WithTrace sends the hex dump and per-field events to the sink as well
func WithTrace(trace bool) Option {
	return func(o *Options) { o.Trace = trace }
}

// Decode returns the field values found in buf.
func Decode(buf []byte, s *schema.Schema, corrections offset.Table, opts ...Option) Values {
	return DecodeResult(buf, s, corrections, opts...).Values
}

// DecodeResult decodes buf and also reports the per-field record and how far
// the walk got.
func DecodeResult(buf []byte, s *schema.Schema, corrections offset.Table, opts ...Option) *Result {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	sink := o.Sink
	if sink == nil {
		sink = diag.Nop{}
	}

	res := &Result{Values: make(Values)}

	maxPos, ok := s.MaxPosition()
	if !ok {
		return res
	}

	if o.Trace {
		sink.HexDump(buf)
	}

	for raw := range buf {
		pos := corrections.Apply(raw)
		if pos > maxPos {
			break
		}
		res.Consumed = raw + 1

		for _, acc := range s.At(pos) {
			value, err := acc.Decode(buf, raw)
			field := Field{RawIndex: raw, Position: pos, Accessor: acc, Value: value}

			if err != nil {
				var rangeErr *accessor.RangeError
				if !errors.As(err, &rangeErr) {
					res.Skipped = append(res.Skipped, field)
					sink.Warn(diag.Warning{
						RawIndex: raw,
						Position: pos,
						Path:     acc.Path(),
						Err:      fmt.Errorf("%s: %w", acc.Kind(), err),
					})
					continue
				}
				field.Warning = rangeErr
				sink.Warn(diag.Warning{RawIndex: raw, Position: pos, Path: acc.Path(), Err: rangeErr})
			}

			res.Values[acc.Path()] = value
			res.Fields = append(res.Fields, field)
			if o.Trace {
				sink.Field(diag.FieldEvent{RawIndex: raw, Position: pos, Path: acc.Path(), Value: value})
			}
		}
	}

	return res
}
