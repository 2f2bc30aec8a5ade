package matrixdb

import (
	"sort"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/sparse"
)

// Schema describes how records of one kind map onto matrix rows.
type Schema[T any] struct {
	Kind    string
	Columns []string
	Encode  func(rec T) []sparse.Value // one value per column
	Decode  func(row []sparse.Value) T
	SetID   func(rec *T, id int)
	Indexes []Index[T]
}

// Index declares a secondary index. Records whose Key is empty are not indexed.
type Index[T any] struct {
	Name   string // reported as the field of a duplicate key
	Unique bool
	Key    func(rec T) string
}

// Table stores records of one kind in a capacity×columns sparse matrix:
// row i holds the record with id i, ids start at 1 and are never reused.
type Table[T any] struct {
	mutex      sync.RWMutex
	schema     Schema[T]
	capacity   int
	cells      *sparse.Matrix
	nextID     int
	tombstones map[int]struct{}
	indexes    map[string]*HashIndex
}

type TableStats struct {
	core.StoreStats
	Indexes []IndexStats `json:"indexes"`
}

// TableSnapshot is the serializable state of a Table; indexes are rebuilt on restore.
type TableSnapshot struct {
	Kind       string                  `json:"kind"`
	Columns    []string                `json:"columns"`
	NextID     int                     `json:"next_id"`
	Tombstones []int                   `json:"tombstones"`
	Cells      map[string]sparse.Value `json:"cells"`
}

func NewTable[T any](schema Schema[T], capacity, buckets int) (*Table[T], error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(schema.Kind, "kind"),
		vala.GreaterThan(len(schema.Columns), 0, "columns"),
		vala.GreaterThan(capacity, 0, "capacity"),
		vala.GreaterThan(buckets, 0, "buckets"),
	).Check(); err != nil {
		return nil, errors.Wrap(err, "matrixdb: new table")
	}
	cells, err := sparse.New(capacity+1, len(schema.Columns)) // row 0 is never used
	if err != nil {
		return nil, errors.Wrapf(err, "matrixdb: %s table", schema.Kind)
	}
	tbl := &Table[T]{
		schema:     schema,
		capacity:   capacity,
		cells:      cells,
		nextID:     1,
		tombstones: make(map[int]struct{}),
		indexes:    make(map[string]*HashIndex, len(schema.Indexes)),
	}
	for _, def := range schema.Indexes {
		tbl.indexes[def.Name] = NewHashIndex(def.Name, buckets, def.Unique)
	}
	return tbl, nil
}

func (tbl *Table[T]) Kind() string { return tbl.schema.Kind }

func (tbl *Table[T]) live(id int) bool {
	if id < 1 || id >= tbl.nextID {
		return false
	}
	_, dead := tbl.tombstones[id]
	return !dead
}

func (tbl *Table[T]) read(id int) T {
	row := make([]sparse.Value, len(tbl.schema.Columns))
	for c := range row {
		row[c] = tbl.cells.At(id, c)
	}
	return tbl.schema.Decode(row)
}

func (tbl *Table[T]) write(id int, rec T) error {
	row := tbl.schema.Encode(rec)
	if len(row) != len(tbl.schema.Columns) {
		return errors.Errorf("matrixdb: %s encoded %d values for %d columns", tbl.schema.Kind, len(row), len(tbl.schema.Columns))
	}
	for c, v := range row {
		if err := tbl.cells.Set(id, c, v); err != nil {
			return errors.Wrapf(err, "matrixdb: %s #%d", tbl.schema.Kind, id)
		}
	}
	return nil
}

// checkUnique fails when a unique key of rec is held by an id other than self.
func (tbl *Table[T]) checkUnique(rec T, self int) error {
	for _, def := range tbl.schema.Indexes {
		if !def.Unique {
			continue
		}
		key := def.Key(rec)
		if key == "" {
			continue
		}
		if other, ok := tbl.indexes[def.Name].First(key); ok && other != self {
			return &core.DuplicateKeyError{Kind: tbl.schema.Kind, Field: def.Name, Value: key}
		}
	}
	return nil
}

func (tbl *Table[T]) index(id int, rec T) {
	for _, def := range tbl.schema.Indexes {
		if key := def.Key(rec); key != "" {
			tbl.indexes[def.Name].Insert(key, id)
		}
	}
}

func (tbl *Table[T]) unindex(id int, rec T) {
	for _, def := range tbl.schema.Indexes {
		if key := def.Key(rec); key != "" {
			tbl.indexes[def.Name].Remove(key, id)
		}
	}
}

// Insert stores rec under the next id and returns it with its id set.
// A rejected record does not consume an id.
func (tbl *Table[T]) Insert(rec T) (T, error) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	var zero T
	if tbl.nextID > tbl.capacity {
		return zero, errors.Wrapf(core.ErrCapacity, "%s: %d rows", tbl.schema.Kind, tbl.capacity)
	}
	if err := tbl.checkUnique(rec, 0); err != nil {
		return zero, err
	}
	id := tbl.nextID
	tbl.schema.SetID(&rec, id)
	if err := tbl.write(id, rec); err != nil {
		tbl.cells.ClearRow(id)
		return zero, err
	}
	tbl.nextID++
	tbl.index(id, rec)
	return rec, nil
}

func (tbl *Table[T]) Get(id int) (T, error) {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if !tbl.live(id) {
		var zero T
		return zero, errors.Wrapf(core.ErrNotFound, "%s #%d", tbl.schema.Kind, id)
	}
	return tbl.read(id), nil
}

func (tbl *Table[T]) lookup(index, key string) ([]int, error) {
	idx, ok := tbl.indexes[index]
	if !ok {
		return nil, errors.Errorf("matrixdb: %s has no index %q", tbl.schema.Kind, index)
	}
	return idx.Lookup(key), nil
}

// GetBy returns the first record holding key in index.
func (tbl *Table[T]) GetBy(index, key string) (T, error) {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	var zero T
	ids, err := tbl.lookup(index, key)
	if err != nil {
		return zero, err
	}
	if len(ids) == 0 {
		return zero, errors.Wrapf(core.ErrNotFound, "%s %s=%q", tbl.schema.Kind, index, key)
	}
	return tbl.read(ids[0]), nil
}

// Find returns every record holding key in index, in insertion order.
func (tbl *Table[T]) Find(index, key string) ([]T, error) {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	ids, err := tbl.lookup(index, key)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, tbl.read(id))
	}
	return out, nil
}

// All returns the live records in id order.
func (tbl *Table[T]) All() []T {
	return tbl.Filter(nil)
}

// Filter returns the live records matching pred (all when pred is nil), in id order.
func (tbl *Table[T]) Filter(pred func(T) bool) []T {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	out := make([]T, 0, tbl.count())
	for id := 1; id < tbl.nextID; id++ {
		if !tbl.live(id) {
			continue
		}
		rec := tbl.read(id)
		if pred == nil || pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Replace overwrites the record stored under id and moves its index entries.
func (tbl *Table[T]) Replace(id int, rec T) (T, error) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	var zero T
	if !tbl.live(id) {
		return zero, errors.Wrapf(core.ErrNotFound, "%s #%d", tbl.schema.Kind, id)
	}
	if err := tbl.checkUnique(rec, id); err != nil {
		return zero, err
	}
	old := tbl.read(id)
	tbl.schema.SetID(&rec, id)
	if err := tbl.write(id, rec); err != nil {
		_ = tbl.write(id, old)
		return zero, err
	}
	for _, def := range tbl.schema.Indexes {
		oldKey, newKey := def.Key(old), def.Key(rec)
		if oldKey == newKey {
			continue
		}
		idx := tbl.indexes[def.Name]
		if oldKey != "" {
			idx.Remove(oldKey, id)
		}
		if newKey != "" {
			idx.Insert(newKey, id)
		}
	}
	return rec, nil
}

// Delete tombstones id. It reports false when id was not live.
func (tbl *Table[T]) Delete(id int) (bool, error) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if !tbl.live(id) {
		return false, nil
	}
	tbl.unindex(id, tbl.read(id))
	tbl.cells.ClearRow(id)
	tbl.tombstones[id] = struct{}{}
	return true, nil
}

func (tbl *Table[T]) count() int {
	return tbl.nextID - 1 - len(tbl.tombstones)
}

// Count is the number of live records.
func (tbl *Table[T]) Count() int {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()
	return tbl.count()
}

func (tbl *Table[T]) Stats() TableStats {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	stats := TableStats{
		StoreStats: core.StoreStats{
			Kind:     tbl.schema.Kind,
			Capacity: tbl.capacity,
			Live:     tbl.count(),
			NextID:   tbl.nextID,
			NonZero:  tbl.cells.Len(),
			Density:  tbl.cells.Density(),
		},
		Indexes: make([]IndexStats, 0, len(tbl.schema.Indexes)),
	}
	for _, def := range tbl.schema.Indexes {
		stats.Indexes = append(stats.Indexes, tbl.indexes[def.Name].Stats())
	}
	return stats
}

func (tbl *Table[T]) Snapshot() TableSnapshot {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	snap := TableSnapshot{
		Kind:       tbl.schema.Kind,
		Columns:    append([]string(nil), tbl.schema.Columns...),
		NextID:     tbl.nextID,
		Tombstones: make([]int, 0, len(tbl.tombstones)),
		Cells:      make(map[string]sparse.Value, tbl.cells.Len()),
	}
	for id := range tbl.tombstones {
		snap.Tombstones = append(snap.Tombstones, id)
	}
	sort.Ints(snap.Tombstones)
	for cell, v := range tbl.cells.NonZero() {
		snap.Cells[sparse.FormatCellKey(cell)] = v
	}
	return snap
}

// Restore replaces the table content with snap and rebuilds the indexes.
// On error the table is left untouched.
func (tbl *Table[T]) Restore(snap TableSnapshot) error {
	if snap.Kind != tbl.schema.Kind {
		return errors.Errorf("matrixdb: cannot restore %s snapshot into %s table", snap.Kind, tbl.schema.Kind)
	}
	if len(snap.Columns) != len(tbl.schema.Columns) {
		return errors.Errorf("matrixdb: %s snapshot has %d columns, want %d", snap.Kind, len(snap.Columns), len(tbl.schema.Columns))
	}
	for i, col := range snap.Columns {
		if col != tbl.schema.Columns[i] {
			return errors.Errorf("matrixdb: %s snapshot column %d is %q, want %q", snap.Kind, i, col, tbl.schema.Columns[i])
		}
	}
	nextID := snap.NextID
	if nextID < 1 {
		nextID = 1
	}
	if nextID-1 > tbl.capacity {
		return errors.Wrapf(core.ErrCapacity, "%s snapshot holds %d rows", snap.Kind, nextID-1)
	}

	cells, err := sparse.New(tbl.capacity+1, len(tbl.schema.Columns))
	if err != nil {
		return err
	}
	for key, v := range snap.Cells {
		cell, err := sparse.ParseCellKey(key)
		if err != nil {
			return errors.Wrapf(err, "matrixdb: %s snapshot", snap.Kind)
		}
		if cell.Row < 1 || cell.Row >= nextID {
			return errors.Errorf("matrixdb: %s snapshot cell %s beyond next id %d", snap.Kind, key, nextID)
		}
		if err := cells.Set(cell.Row, cell.Col, v); err != nil {
			return errors.Wrapf(err, "matrixdb: %s snapshot", snap.Kind)
		}
	}
	tombstones := make(map[int]struct{}, len(snap.Tombstones))
	for _, id := range snap.Tombstones {
		if id >= 1 && id < nextID {
			tombstones[id] = struct{}{}
		}
	}

	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	tbl.cells = cells
	tbl.nextID = nextID
	tbl.tombstones = tombstones
	for _, idx := range tbl.indexes {
		idx.Reset()
	}
	for id := 1; id < tbl.nextID; id++ {
		if tbl.live(id) {
			tbl.index(id, tbl.read(id))
		}
	}
	return nil
}
