package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/calvinalkan/school-reports/internal/dataset"
	"github.com/calvinalkan/school-reports/internal/query"
	"github.com/calvinalkan/school-reports/internal/record"
)

const (
	maxCellWidth = 40
	columnGap    = "  "
)

// renderTable lays out headers and rows as aligned columns. Cells wider
// than maxCellWidth are truncated with "...".
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = min(runewidth.StringWidth(h), maxCellWidth)
	}

	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxCellWidth))
		}
	}

	var b strings.Builder

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			cell = runewidth.Truncate(cell, maxCellWidth, "...")
			if i == len(cells)-1 {
				parts[i] = cell
			} else {
				parts[i] = runewidth.FillRight(cell, widths[i])
			}
		}

		b.WriteString(strings.TrimRight(strings.Join(parts, columnGap), " "))
		b.WriteByte('\n')
	}

	writeRow(headers)

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}

	writeRow(rule)

	for _, row := range rows {
		writeRow(row)
	}

	return b.String()
}

// pageTable renders the current page of a query result the way the
// dashboard tables show it.
func pageTable(ds *dataset.Dataset, page query.Page[record.Record]) string {
	rows := make([][]string, len(page.Rows))
	for i, rec := range page.Rows {
		cells := ds.Cells(rec)

		rows[i] = make([]string, len(cells))
		for j, c := range cells {
			rows[i][j] = c.String()
		}
	}

	return renderTable(ds.Headers(), rows)
}

// pageStatus is the "Showing a to b of n" line.
func pageStatus(page query.Page[record.Record]) string {
	return fmt.Sprintf("Showing %d to %d of %d", page.FirstRow(), page.LastRow(), page.TotalRows)
}

// pageButtons renders the page window with the current page bracketed.
func pageButtons(page query.Page[record.Record]) string {
	current := page.PageIndex + 1
	window := query.PageWindow(current, page.TotalPages)

	labels := make([]string, len(window))
	for i, n := range window {
		if n == current {
			labels[i] = "[" + strconv.Itoa(n) + "]"
		} else {
			labels[i] = strconv.Itoa(n)
		}
	}

	return "Pages: " + strings.Join(labels, " ")
}
