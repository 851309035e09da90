package table

import (
	"image/color"

	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Column and Row are re-exported so callers need not import bubbles.
type Column = bubtable.Column
type Row = bubtable.Row

// Model displays a slice of V through a fixed column set. The slice is
// replaced wholesale by SetData; rows are never filtered or sorted here.
type Model[V any] struct {
	table   bubtable.Model
	styles  bubtable.Styles
	data    []V
	columns []Column

	toRow func(V) Row

	noColor bool

	headerFG   color.Color
	headerBG   color.Color
	selectedFG color.Color
	selectedBG color.Color
}

// NewModel creates a table over columns; toRow renders one value.
func NewModel[V any](columns []Column, toRow func(V) Row) *Model[V] {
	t := bubtable.New(
		bubtable.WithColumns(columns),
		bubtable.WithFocused(true),
	)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	t.SetStyles(s)

	m := &Model[V]{
		table:   t,
		styles:  s,
		data:    []V{},
		columns: columns,
		toRow:   toRow,
	}
	m.SetSize(80, 10)
	return m
}

// SetData replaces every row with data.
func (m *Model[V]) SetData(data []V) {
	if data == nil {
		data = []V{}
	}
	m.data = data

	rows := make([]Row, len(data))
	for i, v := range data {
		rows[i] = m.toRow(v)
	}
	m.table.SetRows(rows)

	// An empty table parks the bubbles cursor at -1; bring it back onto a row.
	switch {
	case len(data) > 0 && m.Cursor() < 0:
		m.SetCursor(0)
	case m.Cursor() >= len(data):
		m.SetCursor(max(len(data)-1, 0))
	}
}

// Data returns the rows currently displayed.
func (m *Model[V]) Data() []V {
	return m.data
}

// Len returns the number of rows.
func (m *Model[V]) Len() int {
	return len(m.data)
}

// Columns returns the column definitions.
func (m *Model[V]) Columns() []Column {
	return m.columns
}

// SetColumnWidths resizes columns in order; extra widths are ignored.
func (m *Model[V]) SetColumnWidths(widths ...int) {
	cols := make([]Column, len(m.columns))
	copy(cols, m.columns)
	for i := range cols {
		if i < len(widths) && widths[i] > 0 {
			cols[i].Width = widths[i]
		}
	}
	m.columns = cols
	m.table.SetColumns(cols)
	m.table.SetRows(m.renderRows())
}

func (m *Model[V]) renderRows() []Row {
	rows := make([]Row, len(m.data))
	for i, v := range m.data {
		rows[i] = m.toRow(v)
	}
	return rows
}

func (m *Model[V]) Cursor() int {
	return m.table.Cursor()
}

func (m *Model[V]) SetCursor(pos int) {
	m.table.SetCursor(pos)
}

// SelectedIndex returns the cursor position, or -1 when there are no rows.
func (m *Model[V]) SelectedIndex() int {
	if len(m.data) == 0 {
		return -1
	}
	c := m.Cursor()
	if c < 0 || c >= len(m.data) {
		return -1
	}
	return c
}

// SetSize sets the table dimensions.
func (m *Model[V]) SetSize(width, height int) {
	m.table.SetWidth(width)
	m.table.SetHeight(height)
}

// SetNoColor enables/disables color output.
func (m *Model[V]) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets theme colors; nil leaves a color unchanged.
func (m *Model[V]) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.headerBG = headerBG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
	m.applyColorScheme()
}

func (m *Model[V]) applyColorScheme() {
	s := m.styles

	if m.noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.headerBG != nil {
			s.Header = s.Header.Background(m.headerBG)
		}
		if m.selectedFG != nil {
			s.Selected = s.Selected.Foreground(m.selectedFG)
		}
		if m.selectedBG != nil {
			s.Selected = s.Selected.Background(m.selectedBG)
		}
	}

	m.table.SetStyles(s)
	m.styles = s
}

// Update forwards key handling (cursor movement) to the bubbles table.
func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model[V]) View() string {
	return m.table.View()
}
