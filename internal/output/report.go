package output

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dccourt/esphome-gecko/internal/accessor"
	"github.com/dccourt/esphome-gecko/internal/decoder"
	"github.com/dccourt/esphome-gecko/internal/diag"
)

// Report is one decode together with what it was decoded against.
type Report struct {
	Revision    string
	Description string
	Source      string // "builtin" or the catalog file path
	Controller  string
	Length      int // Frame length after header skipping
	Result      *decoder.Result
}

// Row is the final decode of one path, ready for display.
type Row struct {
	Path     string
	Kind     accessor.Kind
	Position int
	RawIndex int
	Value    any
	Warning  string // Set when Value is the out-of-range sentinel
}

// Text renders the value the way every text format shows it
func (r Row) Text() string {
	return fmt.Sprint(r.Value)
}

// Rows returns the last decode of every path, ordered by position. Paths at
// the same position keep decode order.
func Rows(res *decoder.Result) []Row {
	if res == nil {
		return nil
	}

	last := make(map[string]int, len(res.Fields))
	var order []string
	for i, f := range res.Fields {
		p := f.Accessor.Path()
		if _, seen := last[p]; !seen {
			order = append(order, p)
		}
		last[p] = i
	}

	rows := make([]Row, 0, len(order))
	for _, p := range order {
		f := res.Fields[last[p]]
		row := Row{
			Path:     p,
			Kind:     f.Accessor.Kind(),
			Position: f.Position,
			RawIndex: f.RawIndex,
			Value:    f.Value,
		}
		if f.Warning != nil {
			row.Warning = f.Warning.Error()
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows
}

// SkippedLine describes a field cut off by the end of the frame
func SkippedLine(f decoder.Field) string {
	return fmt.Sprintf("%s (%s) at %s->%s", f.Accessor.Path(), f.Accessor.Kind(), diag.FormatIndex(f.RawIndex), diag.FormatIndex(f.Position))
}

// document is the structured form written by the json, yaml and cbor formats.
type document struct {
	Revision   string         `json:"revision" yaml:"revision" cbor:"revision"`
	Source     string         `json:"source,omitempty" yaml:"source,omitempty" cbor:"source,omitempty"`
	Controller string         `json:"controller,omitempty" yaml:"controller,omitempty" cbor:"controller,omitempty"`
	Length     int            `json:"length" yaml:"length" cbor:"length"`
	Consumed   int            `json:"consumed" yaml:"consumed" cbor:"consumed"`
	Values     map[string]any `json:"values" yaml:"values" cbor:"values"`
	Warnings   []string       `json:"warnings,omitempty" yaml:"warnings,omitempty" cbor:"warnings,omitempty"`
	Skipped    []string       `json:"skipped,omitempty" yaml:"skipped,omitempty" cbor:"skipped,omitempty"`
}

var errNoResult = errors.New("report has no decode result")

func newDocument(rep *Report) (*document, error) {
	if rep == nil || rep.Result == nil {
		return nil, errNoResult
	}

	doc := &document{
		Revision:   rep.Revision,
		Source:     rep.Source,
		Controller: rep.Controller,
		Length:     rep.Length,
		Consumed:   rep.Result.Consumed,
		Values:     make(map[string]any, len(rep.Result.Values)),
	}
	for p, v := range rep.Result.Values {
		doc.Values[p] = v
	}
	for _, row := range Rows(rep.Result) {
		if row.Warning != "" {
			doc.Warnings = append(doc.Warnings, row.Warning)
		}
	}
	for _, f := range rep.Result.Skipped {
		doc.Skipped = append(doc.Skipped, f.Accessor.Path())
	}
	return doc, nil
}
