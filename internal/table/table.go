// Package table holds the rectangular, named-column view of an uploaded CSV
// file that the prediction pipeline works on. Cells stay strings until a
// caller asks for the float matrix, so identifier columns pass through
// untouched.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrEmpty = errors.New("csv file has no header row")

type Table struct {
	Columns []string
	Rows    [][]string
}

// Read parses a CSV stream into a Table. The first record is the header;
// every data record must have the same width (the csv reader enforces this).
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}

	return &Table{Columns: header, Rows: rows}, nil
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) Width() int {
	return len(t.Columns)
}

func (t *Table) index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) HasColumn(name string) bool {
	return t.index(name) >= 0
}

// Column returns a copy of the named column's values, or nil if absent.
func (t *Table) Column(name string) []string {
	i := t.index(name)
	if i < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Drop returns a new Table without the named column. If the column does not
// exist the receiver is returned unchanged.
func (t *Table) Drop(name string) *Table {
	i := t.index(name)
	if i < 0 {
		return t
	}
	cols := make([]string, 0, len(t.Columns)-1)
	cols = append(cols, t.Columns[:i]...)
	cols = append(cols, t.Columns[i+1:]...)

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		nr := make([]string, 0, len(row)-1)
		nr = append(nr, row[:i]...)
		nr = append(nr, row[i+1:]...)
		rows[r] = nr
	}
	return &Table{Columns: cols, Rows: rows}
}

// Missing reports which of the wanted column names are absent, in the wanted
// order.
func (t *Table) Missing(wanted []string) []string {
	var missing []string
	for _, c := range wanted {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Select returns a new Table reduced and reordered to exactly the given
// columns. Columns not listed are dropped.
func (t *Table) Select(cols []string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j := t.index(c)
		if j < 0 {
			return nil, fmt.Errorf("column %q not found", c)
		}
		idx[i] = j
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		nr := make([]string, len(idx))
		for i, j := range idx {
			nr[i] = row[j]
		}
		rows[r] = nr
	}
	return &Table{Columns: append([]string(nil), cols...), Rows: rows}, nil
}

// FloatMatrix converts every cell to float64, row-major.
func (t *Table) FloatMatrix() ([][]float64, error) {
	m := make([][]float64, len(t.Rows))
	for r, row := range t.Rows {
		mr := make([]float64, len(row))
		for i, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %q is not numeric", t.Columns[i], r+1, cell)
			}
			mr[i] = v
		}
		m[r] = mr
	}
	return m, nil
}

// FromMatrix builds a Table from prediction output, formatting values the
// shortest way that round-trips.
func FromMatrix(columns []string, m [][]float64) *Table {
	rows := make([][]string, len(m))
	for r, mr := range m {
		row := make([]string, len(mr))
		for i, v := range mr {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		rows[r] = row
	}
	return &Table{Columns: append([]string(nil), columns...), Rows: rows}
}

// InsertColumn puts a column at position i. The value count must match the
// row count.
func (t *Table) InsertColumn(i int, name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	if i < 0 || i > len(t.Columns) {
		return fmt.Errorf("insert position %d out of range", i)
	}
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, t.Columns[:i]...)
	cols = append(cols, name)
	cols = append(cols, t.Columns[i:]...)
	t.Columns = cols

	for r, row := range t.Rows {
		nr := make([]string, 0, len(row)+1)
		nr = append(nr, row[:i]...)
		nr = append(nr, values[r])
		nr = append(nr, row[i:]...)
		t.Rows[r] = nr
	}
	return nil
}

// Head returns a view of at most n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Write serializes the table as CSV, header first.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
