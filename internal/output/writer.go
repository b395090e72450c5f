package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// encMode writes CBOR with canonical key order so identical decodes encode
// to identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
}

// Options control text rendering
type Options struct {
	Styled bool // Render the detailed format with lipgloss styles
	Width  int  // Terminal width for the styled header; 0 uses MinTerminalWidth
}

// Write renders rep to w in the given format.
func Write(w io.Writer, format Format, rep *Report, opts Options) error {
	switch format {
	case FormatDetailed:
		if rep == nil || rep.Result == nil {
			return errNoResult
		}
		if opts.Styled {
			_, err := io.WriteString(w, renderStyled(rep, opts.Width))
			return err
		}
		_, err := io.WriteString(w, renderPlain(rep))
		return err
	case FormatCompact:
		if rep == nil || rep.Result == nil {
			return errNoResult
		}
		return writeCompact(w, rep)
	}

	doc, err := newDocument(rep)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatCBOR:
		if err := encMode.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode CBOR: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %v", format)
	}
	return nil
}

func writeCompact(w io.Writer, rep *Report) error {
	for _, row := range Rows(rep.Result) {
		if _, err := fmt.Fprintf(w, "%s=%s\n", row.Path, row.Text()); err != nil {
			return err
		}
	}
	return nil
}

func renderPlain(rep *Report) string {
	var b strings.Builder
	res := rep.Result

	fmt.Fprintf(&b, "Revision:  %s", rep.Revision)
	if rep.Source != "" {
		fmt.Fprintf(&b, " (%s)", rep.Source)
	}
	b.WriteString("\n")
	if rep.Controller != "" {
		fmt.Fprintf(&b, "Controller: %s\n", rep.Controller)
	}
	fmt.Fprintf(&b, "Length:    %d bytes, %d consumed\n\n", rep.Length, res.Consumed)

	rows := Rows(res)
	pathWidth := len("FIELD")
	for _, row := range rows {
		if len(row.Path) > pathWidth {
			pathWidth = len(row.Path)
		}
	}

	fmt.Fprintf(&b, "  POS   RAW   %-*s  VALUE\n", pathWidth, "FIELD")
	for _, row := range rows {
		marker := ""
		if row.Warning != "" {
			marker = " " + WarningMarker
		}
		fmt.Fprintf(&b, "  %04x  %04x  %-*s  %s%s\n", row.Position, row.RawIndex, pathWidth, row.Path, row.Text(), marker)
	}

	writeNotes(&b, rows, rep, false)
	return b.String()
}

func renderStyled(rep *Report, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	res := rep.Result

	title := HeaderTitleStyle.Render(strings.ToUpper(rep.Revision))
	top := []string{title}
	if rep.Description != "" {
		top = append(top, HeaderSubtitleStyle.Render(rep.Description))
	}

	params := [][2]string{
		{"Source", rep.Source},
		{"Controller", rep.Controller},
		{"Length", fmt.Sprintf("%d bytes", rep.Length)},
		{"Consumed", fmt.Sprintf("%d bytes", res.Consumed)},
	}
	var paramLines []string
	for _, p := range params {
		if p[1] == "" {
			continue
		}
		paramLines = append(paramLines, HeaderParamKeyStyle.Render(p[0]+":")+" "+HeaderParamValueStyle.Render(p[1]))
	}

	dividerWidth := width - 6
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(PrimaryColor).Render(strings.Repeat("─", dividerWidth))

	header := HeaderBorderStyle(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinVertical(lipgloss.Left, top...),
		divider,
		strings.Join(paramLines, "\n"),
	))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	rows := Rows(res)
	pathWidth := 0
	for _, row := range rows {
		if w := lipgloss.Width(row.Path); w > pathWidth {
			pathWidth = w
		}
	}
	pathCol := PathStyle.Width(pathWidth + 2)

	for _, row := range rows {
		offsets := OffsetStyle.Render(fmt.Sprintf("  %04x %04x  ", row.Position, row.RawIndex))
		value := ValueStyle.Render(row.Text())
		switch {
		case row.Warning != "":
			value = WarningStyle.Render(row.Text() + " " + WarningMarker)
		case row.Value == true:
			value = TrueStyle.Render(row.Text())
		}
		b.WriteString(offsets + pathCol.Render(row.Path) + value + "\n")
	}

	writeNotes(&b, rows, rep, true)
	return b.String()
}

func writeNotes(b *strings.Builder, rows []Row, rep *Report, styled bool) {
	title, warn, skip := plain, plain, plain
	if styled {
		title, warn, skip = SectionTitleStyle.Render, WarningStyle.Render, SkippedStyle.Render
	}

	var warnings []string
	for _, row := range rows {
		if row.Warning != "" {
			warnings = append(warnings, row.Warning)
		}
	}
	if len(warnings) > 0 {
		b.WriteString("\n" + title("Warnings:") + "\n")
		for _, w := range warnings {
			b.WriteString("  " + warn(w) + "\n")
		}
	}

	if len(rep.Result.Skipped) > 0 {
		b.WriteString("\n" + title("Skipped:") + "\n")
		for _, f := range rep.Result.Skipped {
			b.WriteString("  " + skip(SkippedMarker+" "+SkippedLine(f)) + "\n")
		}
	}
}

func plain(s ...string) string {
	return strings.Join(s, " ")
}
