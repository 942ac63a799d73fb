package formatter

import (
	"strings"

	"livecrawl/internal/models"

	"github.com/mattn/go-runewidth"
)

// Preview renders the first n records as an aligned Markdown table, with
// titles truncated to maxTitleWidth display columns. CJK characters count
// as two columns.
func Preview(records []models.StreamRecord, n, maxTitleWidth int) string {
	if n > len(records) {
		n = len(records)
	}

	if n <= 0 {
		return ""
	}

	rows := [][]string{{"Date", "Title", "URL"}}

	for _, rec := range records[:n] {
		title := rec.Title
		if maxTitleWidth > 0 {
			title = runewidth.Truncate(title, maxTitleWidth, "…")
		}

		rows = append(rows, []string{rec.Date, title, rec.URL})
	}

	return strings.Join(renderTable(rows), "\n")
}

// renderTable pads every cell to its column's display width and inserts the
// separator row after the header.
func renderTable(rows [][]string) []string {
	colWidths := make([]int, len(rows[0]))

	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	// Ensure min width for separator (usually 3 dashes "---")
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	result := make([]string, 0, len(rows)+1)

	for r, row := range rows {
		result = append(result, renderRow(row, colWidths))

		if r == 0 {
			sep := make([]string, len(colWidths))
			for i, w := range colWidths {
				sep[i] = strings.Repeat("-", w)
			}

			result = append(result, renderRow(sep, colWidths))
		}
	}

	return result
}

func renderRow(cells []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, cell := range cells {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(cell, colWidths[j]))
		sb.WriteString(" |")
	}

	return sb.String()
}
