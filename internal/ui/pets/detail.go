package pets

import (
	"fmt"
	"sort"
	"strings"

	runewidth "github.com/mattn/go-runewidth"
)

// renderDetail shows every field of row i, keys sorted.
func (m *Model) renderDetail(i int) string {
	p, ok := m.data.At(i)
	if !ok {
		return m.styles.errText.Render(fmt.Sprintf("pet %d not found", i))
	}
	return m.detailLines(p)
}

func (m *Model) detailLines(p Pet) string {
	keys := make([]string, 0, len(p))
	keyWidth := 0
	for k := range p {
		keys = append(keys, k)
		keyWidth = max(keyWidth, runewidth.StringWidth(k))
	}
	sort.Strings(keys)

	valueWidth := m.width - keyWidth - 2
	if valueWidth < 8 {
		valueWidth = 8
	}

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := runewidth.FillRight(k, keyWidth)
		val := runewidth.Truncate(FormatValue(p[k]), valueWidth, "…")
		b.WriteString(m.styles.key.Render(label))
		b.WriteString("  ")
		b.WriteString(val)
	}
	if len(keys) == 0 {
		b.WriteString("(empty record)")
	}
	return b.String()
}
