package core

// parse.go turns uploaded CSV bytes into a Table.
//
// Only the header is read eagerly. Data rows are produced lazily by
// Table.Rows, and every call to Rows starts a fresh pass over the input, so
// validation and import can each walk the file without holding all records
// in memory at once.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed CSV file.
type Table struct {
	Header []string

	index HeaderIndex
	data  []byte
}

// ParseRows reads the header of a CSV file. A leading UTF-8 BOM is removed
// and invalid UTF-8 is replaced with U+FFFD.
func ParseRows(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("\uFFFD"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	r := newCSVReader(data)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid csv header: %w", err)
	}

	return &Table{
		Header: header,
		index:  MakeHeaderIndex(header),
		data:   data,
	}, nil
}

// Columns returns the cleaned header names.
func (t *Table) Columns() []string {
	out := make([]string, len(t.Header))
	for i, h := range t.Header {
		out[i] = CleanCell(h)
	}
	return out
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[toKey(name)]
	return ok
}

// Rows yields the data rows in file order. A malformed record yields a
// non-nil error and ends the sequence.
func (t *Table) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		r := newCSVReader(t.data)
		if _, err := r.Read(); err != nil {
			return
		}
		for n := 1; ; n++ {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Row{Number: n, header: t.index}, fmt.Errorf("invalid csv: %w", err))
				return
			}
			if !yield(Row{Number: n, Values: rec, header: t.index}, nil) {
				return
			}
		}
	}
}

// Len counts the items Rows yields, including a trailing parse error.
func (t *Table) Len() int {
	n := 0
	for range t.Rows() {
		n++
	}
	return n
}

func newCSVReader(data []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}
