package main

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	colGap      = 2
	minColWidth = 4
)

// tableData is a plain-text table; styling happens at render time.
type tableData struct {
	headers  []string
	rows     [][]string
	selected []bool
}

// columnWidths fits the natural column widths into total, shrinking the
// widest column first.
func columnWidths(t tableData, total int) []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	budget := total - colGap*max(0, len(widths)-1)
	for sum(widths) > budget {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

// formatRow truncates and pads each cell to its column width.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if runewidth.StringWidth(cell) > w {
			cell = runewidth.Truncate(cell, w, "…")
		}
		parts[i] = runewidth.FillRight(cell, w)
	}
	return strings.Join(parts, strings.Repeat(" ", colGap))
}

// renderTable draws rows [start,end) with the cursor row highlighted.
func renderTable(t tableData, width, cursor, start, end int) string {
	widths := columnWidths(t, width)
	lines := []string{headerStyle.Render(formatRow(t.headers, widths))}
	for i := start; i < end && i < len(t.rows); i++ {
		line := formatRow(t.rows[i], widths)
		switch {
		case i == cursor:
			line = cursorStyle.Render(line)
		case i < len(t.selected) && t.selected[i]:
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
