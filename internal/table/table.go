package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Table is an in-memory listing dataset. Cells are kept as raw strings; numeric
// views coerce on read so the stored values never change after construction.
type Table struct {
	Name    string
	columns []string
	rows    [][]string
	index   map[string]int
}

// New builds a table. Rows shorter than the header are padded with empty cells
// and longer rows are truncated.
func New(name string, columns []string, rows [][]string) *Table {
	t := &Table{Name: name, columns: make([]string, len(columns)), index: make(map[string]int, len(columns))}
	for i, c := range columns {
		c = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
		t.columns[i] = c
		key := normalizeName(c)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	ncol := len(columns)
	t.rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, ncol)
		copy(row, r)
		t.rows = append(t.rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns a copy of the column names in source order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether every named column is present.
func (t *Table) Has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := t.index[normalizeName(c)]; !ok {
			return false
		}
	}
	return true
}

// Strings returns the trimmed cells of a column, or nil if it is absent.
// An empty string means the value is missing.
func (t *Table) Strings(col string) []string {
	idx, ok := t.index[normalizeName(col)]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = strings.TrimSpace(r[idx])
	}
	return out
}

// Floats returns a column coerced to numbers, or nil if it is absent.
// Unparseable and empty cells become NaN.
func (t *Table) Floats(col string) []float64 {
	raw := t.Strings(col)
	if raw == nil {
		return nil
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		if f, ok := ParseNumber(s); ok {
			out[i] = f
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Row returns a copy of the i-th row.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.columns))
	copy(out, t.rows[i])
	return out
}

// WriteCSV writes the header and all rows as comma-separated text.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range t.rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseNumber coerces a cell to a float. Currency symbols, surrounding spaces
// and comma thousands separators are accepted ("$1,060", " $966 ").
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(raw, "-") {
		neg = true
		raw = strings.TrimSpace(raw[1:])
	}
	raw = strings.TrimLeft(raw, "$€£")
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ",", "")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// normalizeName folds case and treats spaces, dashes and underscores alike so
// "neighbourhood group" and "neighbourhood_group" resolve to the same column.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return '_'
		}
		return r
	}, s)
}
