package pets

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/petsview/internal/ui/table"
)

// ColumnDef binds a column identifier to the record keys it reads.
type ColumnDef struct {
	ID    string
	Title string
	// Keys are tried in order; matching is case-insensitive.
	Keys []string
	// MaxWidth caps content-based sizing; zero means the column takes the remainder.
	MaxWidth int
}

// The column set is declared once and never derived from the data.
var displayedColumns = []ColumnDef{
	{ID: "name", Title: "NAME", Keys: []string{"name"}, MaxWidth: 24},
	{ID: "kind", Title: "KIND", Keys: []string{"kind"}, MaxWidth: 28},
	{ID: "age", Title: "AGE", Keys: []string{"age"}, MaxWidth: 5},
	// The pet services emit the picture as "URL".
	{ID: "pic", Title: "PIC", Keys: []string{"pic", "url"}},
}

const minPicWidth = 12

// DisplayedColumns returns the fixed column identifiers: name, kind, age, pic.
func DisplayedColumns() []string {
	ids := make([]string, len(displayedColumns))
	for i, c := range displayedColumns {
		ids[i] = c.ID
	}
	return ids
}

func tableColumns() []table.Column {
	cols := make([]table.Column, len(displayedColumns))
	for i, c := range displayedColumns {
		w := c.MaxWidth
		if w == 0 {
			w = 40
		}
		cols[i] = table.Column{Title: c.Title, Width: w}
	}
	return cols
}

func petToRow(p Pet) table.Row {
	row := make(table.Row, len(displayedColumns))
	for i, c := range displayedColumns {
		row[i] = Cell(p, c)
	}
	return row
}

// Cell renders the value of column c for p, or "" when p has none of c.Keys.
func Cell(p Pet, c ColumnDef) string {
	for _, k := range c.Keys {
		if v, ok := lookup(p, k); ok {
			return singleLine(FormatValue(v))
		}
	}
	return ""
}

func lookup(p Pet, key string) (any, bool) {
	if v, ok := p[key]; ok {
		return v, true
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, key) {
			return p[k], true
		}
	}
	return nil, false
}

// FormatValue renders a decoded JSON value for display.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func singleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}

// columnWidths sizes the bounded columns to their content and hands the rest
// of totalWidth to the open-ended column.
func columnWidths(rows []Pet, totalWidth int) []int {
	widths := make([]int, len(displayedColumns))
	used := 0
	open := -1
	for i, c := range displayedColumns {
		if c.MaxWidth == 0 {
			open = i
			continue
		}
		w := runewidth.StringWidth(c.Title)
		for _, p := range rows {
			if cw := runewidth.StringWidth(Cell(p, c)); cw > w {
				w = cw
			}
		}
		widths[i] = min(w, c.MaxWidth)
		used += widths[i] + 1
	}
	if open >= 0 {
		widths[open] = max(totalWidth-used-1, minPicWidth)
	}
	return widths
}
