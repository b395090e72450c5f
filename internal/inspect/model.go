package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dccourt/esphome-gecko/internal/diag"
	"github.com/dccourt/esphome-gecko/internal/output"
)

// Pane selects what fills the area under the field list
type Pane int

const (
	PaneNone Pane = iota
	PaneDetail
	PaneHex
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(output.TextColor).Background(output.PrimaryColor).Padding(0, 1).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(output.PrimaryColor).Bold(true)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(output.MutedColor).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(output.MutedColor)
)

// rowItem wraps an output.Row for use with bubbles/list
type rowItem struct {
	row output.Row
}

// FilterValue matches on path, kind and rendered value
func (r rowItem) FilterValue() string {
	return r.row.Path + " " + r.row.Kind.String() + " " + r.row.Text()
}

// rowDelegate renders one field per line
type rowDelegate struct {
	pathWidth int
}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(rowItem)
	if !ok {
		return
	}
	row := ri.row

	offsets := output.OffsetStyle.Render(fmt.Sprintf("%04x %04x", row.Position, row.RawIndex))
	path := fmt.Sprintf("%-*s", d.pathWidth, row.Path)
	value := row.Text()

	switch {
	case index == m.Index():
		path = selectedStyle.Render("→ " + path)
	default:
		path = "  " + output.PathStyle.UnsetBold().Render(path)
	}
	switch {
	case row.Warning != "":
		value = output.WarningStyle.Render(value + " " + output.WarningMarker)
	case row.Value == true:
		value = output.TrueStyle.Render(value)
	}

	fmt.Fprintf(w, "%s %s  %s", offsets, path, value)
}

// Model is the field browser for one decoded frame.
type Model struct {
	Report *output.Report
	Frame  []byte

	List     list.Model
	HexView  viewport.Model
	Pane     Pane
	Help     help.Model
	Keys     keyMap
	Width    int
	Height   int
	Quitting bool
}

// New creates a browser over rep. frame is the decoded buffer, shown in the
// hex dump pane.
func New(rep *output.Report, frame []byte) Model {
	rows := output.Rows(rep.Result)

	pathWidth := 0
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = rowItem{row: row}
		if len(row.Path) > pathWidth {
			pathWidth = len(row.Path)
		}
	}

	l := list.New(items, rowDelegate{pathWidth: pathWidth}, output.MinTerminalWidth, 20)
	l.Title = fmt.Sprintf("%s  %d fields", rep.Revision, len(rows))
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	hex := viewport.New(output.MinTerminalWidth, 10)
	hex.SetContent(strings.Join(append([]string{
		fmt.Sprintf("Data length: %d bytes", len(frame)),
		diag.ColumnHeader,
	}, diag.HexDumpLines(frame)...), "\n"))

	return Model{
		Report:  rep,
		Frame:   frame,
		List:    l,
		HexView: hex,
		Help:    help.New(),
		Keys:    newKeyMap(),
		Width:   output.MinTerminalWidth,
		Height:  24,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the highlighted row
func (m Model) Selected() (output.Row, bool) {
	item, ok := m.List.SelectedItem().(rowItem)
	if !ok {
		return output.Row{}, false
	}
	return item.row, true
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while it is open
		if m.List.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.Keys.Quit):
			m.Quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Help):
			m.Help.ShowAll = !m.Help.ShowAll
			m.resize()
			return m, nil
		case key.Matches(msg, m.Keys.Detail):
			m.toggle(PaneDetail)
			return m, nil
		case key.Matches(msg, m.Keys.Hex):
			m.toggle(PaneHex)
			return m, nil
		}

		if m.Pane == PaneHex {
			m.HexView, cmd = m.HexView.Update(msg)
			return m, cmd
		}
	}

	m.List, cmd = m.List.Update(msg)
	return m, cmd
}

func (m *Model) toggle(p Pane) {
	if m.Pane == p {
		m.Pane = PaneNone
	} else {
		m.Pane = p
	}
	m.resize()
}

// paneHeight is the room taken by the detail or hex pane, borders included
func (m Model) paneHeight() int {
	switch m.Pane {
	case PaneDetail:
		return 6
	case PaneHex:
		h := m.Height / 2
		if h < 6 {
			h = 6
		}
		return h
	default:
		return 0
	}
}

func (m *Model) resize() {
	helpHeight := lipgloss.Height(m.Help.View(m.Keys))
	listHeight := m.Height - m.paneHeight() - helpHeight - 1
	if listHeight < 3 {
		listHeight = 3
	}
	m.List.SetSize(m.Width, listHeight)
	m.Help.Width = m.Width

	m.HexView.Width = m.Width - 4
	if h := m.paneHeight() - 2; h > 0 {
		m.HexView.Height = h
	}
}

// View renders the browser
func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	sections := []string{m.List.View()}

	switch m.Pane {
	case PaneDetail:
		sections = append(sections, paneStyle.Width(m.Width-2).Render(m.detail()))
	case PaneHex:
		sections = append(sections, paneStyle.Width(m.Width-2).Render(m.HexView.View()))
	}

	status := statusStyle.Render(fmt.Sprintf("%d bytes, %d consumed, %d skipped",
		m.Report.Length, m.Report.Result.Consumed, len(m.Report.Result.Skipped)))
	sections = append(sections, status, m.Help.View(m.Keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) detail() string {
	row, ok := m.Selected()
	if !ok {
		return "No field selected"
	}

	lines := []string{
		output.PathStyle.Render(row.Path) + "  " + row.Kind.String(),
		fmt.Sprintf("Position %04x, raw index %04x", row.Position, row.RawIndex),
		"Value: " + row.Text(),
	}
	if row.Warning != "" {
		lines = append(lines, output.WarningStyle.Render(row.Warning))
	}
	return strings.Join(lines, "\n")
}

// Run starts the browser on the alternate screen and blocks until it exits.
func Run(rep *output.Report, frame []byte, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	if _, err := tea.NewProgram(New(rep, frame), opts...).Run(); err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	return nil
}
