package sparse

import "sort"

// Add returns a+b over the union of both non-zero sets.
func Add(a, b *Matrix) (*Matrix, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, opErrorf(opAdd, ErrDimensionMismatch, "%dx%d + %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	out := a.Clone()
	for cell, bv := range b.entries {
		sum, err := add(out.entries[cell], bv)
		if err != nil {
			return nil, opErrorf(opAdd, err, "at (%d,%d)", cell.Row, cell.Col)
		}
		if sum.IsZero() {
			delete(out.entries, cell)
		} else {
			out.entries[cell] = sum
		}
	}
	// cells only present in a must be numeric too; Bool ones become Int like summed cells do
	for cell, av := range a.entries {
		if !av.IsNumeric() {
			return nil, opErrorf(opAdd, ErrNonNumeric, "at (%d,%d)", cell.Row, cell.Col)
		}
		if _, inB := b.entries[cell]; inB || av.kind != KindBool {
			continue
		}
		if n := Int(av.AsInt()); n.IsZero() {
			delete(out.entries, cell)
		} else {
			out.entries[cell] = n
		}
	}
	return out, nil
}

// Mul returns the matrix product a·b.
// Entries of b are grouped by row so each entry of a only meets its matching row of b.
func Mul(a, b *Matrix) (*Matrix, error) {
	if a.cols != b.rows {
		return nil, opErrorf(opMul, ErrDimensionMismatch, "%dx%d * %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	byRow := make(map[int][]Entry, b.rows)
	for _, e := range b.Entries() {
		byRow[e.Row] = append(byRow[e.Row], e)
	}

	out := MustNew(a.rows, b.cols)
	for _, ae := range a.Entries() {
		for _, be := range byRow[ae.Col] {
			prod, err := mul(ae.Value, be.Value)
			if err != nil {
				return nil, opErrorf(opMul, err, "(%d,%d)*(%d,%d)", ae.Row, ae.Col, be.Row, be.Col)
			}
			cell := Cell{ae.Row, be.Col}
			sum, err := add(out.entries[cell], prod)
			if err != nil {
				return nil, opErrorf(opMul, err, "at (%d,%d)", cell.Row, cell.Col)
			}
			out.entries[cell] = sum
		}
	}
	// partial sums may cancel out
	for cell, v := range out.entries {
		if v.IsZero() {
			delete(out.entries, cell)
		}
	}
	return out, nil
}

// Transpose returns the cols×rows matrix with every (r,c) moved to (c,r).
func Transpose(a *Matrix) *Matrix {
	out := MustNew(a.cols, a.rows)
	for cell, v := range a.entries {
		out.entries[Cell{cell.Col, cell.Row}] = v
	}
	return out
}

// Identity returns the n×n identity matrix of Int(1).
func Identity(n int) (*Matrix, error) {
	out, err := New(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		out.entries[Cell{i, i}] = Int(1)
	}
	return out, nil
}

// FromEntries builds a rows×cols matrix from cells; zero values are skipped.
func FromEntries(rows, cols int, cells map[Cell]Value) (*Matrix, error) {
	out, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	keys := make([]Cell, 0, len(cells))
	for cell := range cells {
		keys = append(keys, cell)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Row != keys[j].Row {
			return keys[i].Row < keys[j].Row
		}
		return keys[i].Col < keys[j].Col
	})
	for _, cell := range keys {
		if err := out.Set(cell.Row, cell.Col, cells[cell]); err != nil {
			return nil, opErrorf(opFromEntry, err, "%dx%d", rows, cols)
		}
	}
	return out, nil
}
