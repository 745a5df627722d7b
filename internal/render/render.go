// Package render formats header/row sets as fixed-width boxed text tables.
package render

import "strings"

// NoData is returned when there is nothing to render.
const NoData = "No data available"

// Column content wider than this is truncated, never wrapped.
const maxColumnWidth = 50

// Table renders headers and rows as a bordered fixed-width table. It is a
// pure function of its inputs: rows shorter than the header render empty
// cells, cells beyond the header count are dropped, and malformed shapes
// never cause a failure.
func Table(headers []string, rows [][]string) string {
	if len(headers) == 0 && len(rows) == 0 {
		return NoData
	}

	widths := make([]int, len(headers))
	for i, header := range headers {
		width := len(header)
		for _, row := range rows {
			if i < len(row) && len(row[i]) > width {
				width = len(row[i])
			}
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		widths[i] = width
	}

	var b strings.Builder
	border := borderLine(widths)
	b.WriteString(border)
	b.WriteByte('\n')
	b.WriteString(formatRow(headers, widths))
	b.WriteByte('\n')
	b.WriteString(border)
	for _, row := range rows {
		b.WriteByte('\n')
		b.WriteString(formatRow(row, widths))
	}
	b.WriteByte('\n')
	b.WriteString(border)
	return b.String()
}

func borderLine(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, width := range widths {
		b.WriteString(strings.Repeat("-", width+2))
		b.WriteByte('+')
	}
	return b.String()
}

func formatRow(cells []string, widths []int) string {
	var b strings.Builder
	b.WriteByte('|')
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if len(cell) > width {
			cell = cell[:width]
		}
		b.WriteByte(' ')
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", width-len(cell)))
		b.WriteString(" |")
	}
	return b.String()
}
