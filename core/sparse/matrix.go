// Package sparse implements a rows×cols matrix of tagged values that only keeps its non-zero cells.
package sparse

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
)

// Cell addresses a matrix position.
type Cell struct {
	Row, Col int
}

// Entry is a stored (non-zero) cell.
type Entry struct {
	Cell
	Value Value
}

// Matrix is not safe for concurrent use; owners guard it with their own lock.
type Matrix struct {
	rows, cols int
	entries    map[Cell]Value
}

// New creates an empty rows×cols matrix.
func New(rows, cols int) (*Matrix, error) {
	if err := vala.BeginValidation().Validate(
		vala.GreaterThan(rows, -1, "rows"),
		vala.GreaterThan(cols, -1, "cols"),
	).Check(); err != nil {
		return nil, opErrorf(opNew, ErrBadShape, "%dx%d: %v", rows, cols, err)
	}
	return &Matrix{rows: rows, cols: cols, entries: make(map[Cell]Value)}, nil
}

// MustNew is New for shapes known to be valid.
func MustNew(rows, cols int) *Matrix {
	m, err := New(rows, cols)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// Len is the number of stored cells.
func (m *Matrix) Len() int { return len(m.entries) }

func (m *Matrix) inRange(r, c int) bool {
	return r >= 0 && r < m.rows && c >= 0 && c < m.cols
}

// Set stores v at (r, c). Zero-equivalent values remove the cell.
func (m *Matrix) Set(r, c int, v Value) error {
	if !m.inRange(r, c) {
		return opErrorf(opSet, ErrOutOfRange, "(%d,%d) in %dx%d", r, c, m.rows, m.cols)
	}
	cell := Cell{r, c}
	if v.IsZero() {
		delete(m.entries, cell)
		return nil
	}
	m.entries[cell] = v
	return nil
}

// At returns the value at (r, c), or Empty when absent or out of range.
func (m *Matrix) At(r, c int) Value {
	return m.entries[Cell{r, c}]
}

// NonZero returns a snapshot of the stored cells.
func (m *Matrix) NonZero() map[Cell]Value {
	out := make(map[Cell]Value, len(m.entries))
	for cell, v := range m.entries {
		out[cell] = v
	}
	return out
}

// Entries returns the stored cells in row-major order.
func (m *Matrix) Entries() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for cell, v := range m.entries {
		out = append(out, Entry{Cell: cell, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Row returns the stored cells of row r keyed by column.
func (m *Matrix) Row(r int) map[int]Value {
	out := make(map[int]Value)
	if r < 0 || r >= m.rows {
		return out
	}
	// narrow rows (entity tables) are cheaper to probe than to scan
	if m.cols <= len(m.entries) {
		for c := 0; c < m.cols; c++ {
			if v, ok := m.entries[Cell{r, c}]; ok {
				out[c] = v
			}
		}
		return out
	}
	for cell, v := range m.entries {
		if cell.Row == r {
			out[cell.Col] = v
		}
	}
	return out
}

// Col returns the stored cells of column c keyed by row.
func (m *Matrix) Col(c int) map[int]Value {
	out := make(map[int]Value)
	for cell, v := range m.entries {
		if cell.Col == c {
			out[cell.Row] = v
		}
	}
	return out
}

// ClearRow removes every stored cell of row r.
func (m *Matrix) ClearRow(r int) {
	for c := range m.Row(r) {
		delete(m.entries, Cell{r, c})
	}
}

// Density is the percentage of stored cells over all addressable cells.
func (m *Matrix) Density() float64 {
	total := m.rows * m.cols
	if total == 0 {
		return 0
	}
	return float64(len(m.entries)) / float64(total) * 100
}

func (m *Matrix) Clone() *Matrix {
	return &Matrix{rows: m.rows, cols: m.cols, entries: m.NonZero()}
}

// Equal reports whether both matrices have the same shape and cells.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols || len(m.entries) != len(o.entries) {
		return false
	}
	for cell, v := range m.entries {
		if !v.Equal(o.entries[cell]) {
			return false
		}
	}
	return true
}

// String renders the matrix densely, one row per line.
func (m *Matrix) String() string {
	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(m.At(r, c).String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatCellKey flattens a cell into its "row,col" persistence key.
func FormatCellKey(cell Cell) string {
	return strconv.Itoa(cell.Row) + "," + strconv.Itoa(cell.Col)
}

// ParseCellKey is the inverse of FormatCellKey.
// Only canonical keys are accepted: no sign, no leading zero, no spaces.
func ParseCellKey(key string) (Cell, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return Cell{}, errors.Wrapf(ErrBadCellKey, "%q", key)
	}
	r, ok := parseIndex(parts[0])
	if !ok {
		return Cell{}, errors.Wrapf(ErrBadCellKey, "%q: row", key)
	}
	c, ok := parseIndex(parts[1])
	if !ok {
		return Cell{}, errors.Wrapf(ErrBadCellKey, "%q: col", key)
	}
	return Cell{r, c}, nil
}

func parseIndex(s string) (int, bool) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || strconv.Itoa(i) != s {
		return 0, false
	}
	return i, true
}
