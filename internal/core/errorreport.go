package core

import (
	"fmt"
	"io"
)

// WriteErrorReport writes one CSV row per failed import: the line number,
// the error message and the original cells, padded to the header width.
func WriteErrorReport(w io.Writer, report *ImportReport, t *Table) error {
	failed := report.Errors()

	original := make(map[int][]string, len(failed))
	if t != nil && len(failed) > 0 {
		wanted := make(map[int]bool, len(failed))
		for _, o := range failed {
			wanted[o.RowNumber] = true
		}
		for row, err := range t.Rows() {
			if err == nil && wanted[row.Number] {
				original[row.Number] = row.Values
			}
		}
	}

	header := []string{"row_number", "error_message"}
	width := 0
	if t != nil {
		header = append(header, t.Columns()...)
		width = len(t.Header)
	}

	rows := make([][]string, 0, len(failed))
	for _, o := range failed {
		cells := make([]string, width)
		copy(cells, original[o.RowNumber])
		rows = append(rows, append([]string{fmt.Sprint(o.LineNumber), o.ErrorMessage}, cells...))
	}
	return WriteCSV(w, header, rows)
}
