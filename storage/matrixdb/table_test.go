package matrixdb

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/sparse"
)

type item struct {
	ID    int
	Code  string
	Group string
	Qty   int
	Flag  bool
}

var itemSchema = Schema[item]{
	Kind:    "item",
	Columns: []string{"id", "code", "group", "qty", "flag"},
	Encode: func(it item) []sparse.Value {
		return []sparse.Value{
			sparse.Int(int64(it.ID)), sparse.Text(it.Code), sparse.Text(it.Group),
			sparse.Int(int64(it.Qty)), sparse.Bool(it.Flag),
		}
	},
	Decode: func(row []sparse.Value) item {
		return item{
			ID:    int(row[0].AsInt()),
			Code:  row[1].AsText(),
			Group: row[2].AsText(),
			Qty:   int(row[3].AsInt()),
			Flag:  row[4].AsBool(),
		}
	},
	SetID: func(it *item, id int) { it.ID = id },
	Indexes: []Index[item]{
		{Name: "code", Unique: true, Key: func(it item) string { return it.Code }},
		{Name: "group", Key: func(it item) string { return it.Group }},
	},
}

func newItemTable(t *testing.T, capacity int) *Table[item] {
	t.Helper()
	tbl, err := NewTable(itemSchema, capacity, 4)
	require.NoError(t, err)
	return tbl
}

func mustInsert(t *testing.T, tbl *Table[item], it item) item {
	t.Helper()
	got, err := tbl.Insert(it)
	require.NoError(t, err)
	return got
}

func TestNewTable_BadArgs(t *testing.T) {
	_, err := NewTable(itemSchema, 0, 4)
	assert.Error(t, err)
	_, err = NewTable(itemSchema, 10, 0)
	assert.Error(t, err)
	_, err = NewTable(Schema[item]{Columns: itemSchema.Columns}, 10, 4)
	assert.Error(t, err)
}

func TestTable_InsertGet(t *testing.T) {
	tbl := newItemTable(t, 10)

	a := mustInsert(t, tbl, item{Code: "A", Group: "g1", Qty: 3, Flag: true})
	b := mustInsert(t, tbl, item{Code: "B", Group: "g1"})
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)

	got, err := tbl.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	// zero-valued fields are legitimate: a record with Qty 0 and Flag false is still live
	got, err = tbl.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, item{ID: 2, Code: "B", Group: "g1"}, got)

	for _, id := range []int{0, -1, 3, 11} {
		_, err := tbl.Get(id)
		assert.ErrorIs(t, err, core.ErrNotFound, "id %d", id)
	}
}

func TestTable_DuplicateKey(t *testing.T) {
	tbl := newItemTable(t, 10)
	mustInsert(t, tbl, item{Code: "A"})

	_, err := tbl.Insert(item{Code: "A", Group: "other"})
	require.ErrorIs(t, err, core.ErrDuplicateKey)
	var dupErr *core.DuplicateKeyError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, core.DuplicateKeyError{Kind: "item", Field: "code", Value: "A"}, *dupErr)
	assert.Contains(t, err.Error(), `"A"`)

	// the rejected insert neither adds a record nor consumes an id
	assert.Equal(t, 1, tbl.Count())
	next := mustInsert(t, tbl, item{Code: "B"})
	assert.Equal(t, 2, next.ID)
	assert.Empty(t, mustFind(t, tbl, "group", "other"))
}

func TestTable_Capacity(t *testing.T) {
	tbl := newItemTable(t, 2)
	mustInsert(t, tbl, item{Code: "A"})
	b := mustInsert(t, tbl, item{Code: "B"})

	_, err := tbl.Insert(item{Code: "C"})
	require.ErrorIs(t, err, core.ErrCapacity)

	// tombstoned ids are never reused, so deleting does not free room
	ok, err := tbl.Delete(b.ID)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = tbl.Insert(item{Code: "C"})
	require.ErrorIs(t, err, core.ErrCapacity)
}

func mustFind(t *testing.T, tbl *Table[item], index, key string) []item {
	t.Helper()
	items, err := tbl.Find(index, key)
	require.NoError(t, err)
	return items
}

func TestTable_Lookups(t *testing.T) {
	tbl := newItemTable(t, 10)
	a := mustInsert(t, tbl, item{Code: "A", Group: "g1"})
	b := mustInsert(t, tbl, item{Code: "B", Group: "g2"})
	c := mustInsert(t, tbl, item{Code: "C", Group: "g1"})
	mustInsert(t, tbl, item{Code: "D"}) // empty keys are not indexed

	got, err := tbl.GetBy("code", "B")
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = tbl.GetBy("code", "Z")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = tbl.GetBy("nope", "A")
	assert.Error(t, err)

	assert.Equal(t, []item{a, c}, mustFind(t, tbl, "group", "g1"))
	assert.Empty(t, mustFind(t, tbl, "group", ""))

	assert.Len(t, tbl.All(), 4)
	assert.Equal(t, []item{b}, tbl.Filter(func(it item) bool { return it.Group == "g2" }))
}

func TestTable_Replace(t *testing.T) {
	tbl := newItemTable(t, 10)
	a := mustInsert(t, tbl, item{Code: "A", Group: "g1", Qty: 1})
	b := mustInsert(t, tbl, item{Code: "B", Group: "g1"})

	t.Run("moves index entries", func(t *testing.T) {
		a.Code, a.Group, a.Qty = "A2", "g2", 0
		got, err := tbl.Replace(a.ID, a)
		require.NoError(t, err)
		assert.Equal(t, a, got)

		_, err = tbl.GetBy("code", "A")
		assert.ErrorIs(t, err, core.ErrNotFound)
		byCode, err := tbl.GetBy("code", "A2")
		require.NoError(t, err)
		assert.Equal(t, a, byCode)
		assert.Equal(t, []item{b}, mustFind(t, tbl, "group", "g1"))
		assert.Equal(t, []item{a}, mustFind(t, tbl, "group", "g2"))
	})

	t.Run("keeping its own key", func(t *testing.T) {
		b.Qty = 7
		_, err := tbl.Replace(b.ID, b)
		require.NoError(t, err)
	})

	t.Run("key held by another record", func(t *testing.T) {
		b.Code = "A2"
		_, err := tbl.Replace(b.ID, b)
		require.ErrorIs(t, err, core.ErrDuplicateKey)
		got, err := tbl.Get(b.ID)
		require.NoError(t, err)
		assert.Equal(t, "B", got.Code)
	})

	t.Run("absent", func(t *testing.T) {
		_, err := tbl.Replace(42, item{Code: "X"})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestTable_Delete(t *testing.T) {
	tbl := newItemTable(t, 10)
	a := mustInsert(t, tbl, item{Code: "A", Group: "g1"})
	b := mustInsert(t, tbl, item{Code: "B", Group: "g1", Qty: 2})

	ok, err := tbl.Delete(a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// idempotent
	ok, err = tbl.Delete(a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = tbl.Delete(99)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = tbl.Get(a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, []item{b}, tbl.All())
	assert.Equal(t, []item{b}, mustFind(t, tbl, "group", "g1"))

	// the code is free again, under a new id
	c := mustInsert(t, tbl, item{Code: "A"})
	assert.Equal(t, 3, c.ID)

	stats := tbl.Stats()
	assert.Equal(t, "item", stats.Kind)
	assert.Equal(t, 2, stats.Live)
	assert.Equal(t, 4, stats.NextID)
	// b: id, code, group, qty, flag(false) / c: id, code, flag(false)
	assert.Equal(t, 8, stats.NonZero)
	assert.InDelta(t, 8.0/55*100, stats.Density, 1e-9)
	require.Len(t, stats.Indexes, 2)
	assert.Equal(t, 2, stats.Indexes[0].Keys)
}

func TestTable_SnapshotRestore(t *testing.T) {
	tbl := newItemTable(t, 10)
	a := mustInsert(t, tbl, item{Code: "A", Group: "g1", Flag: true})
	b := mustInsert(t, tbl, item{Code: "B", Group: "g1", Qty: 5})
	_, err := tbl.Delete(a.ID)
	require.NoError(t, err)

	data, err := json.Marshal(tbl.Snapshot())
	require.NoError(t, err)
	var snap TableSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	restored := newItemTable(t, 10)
	require.NoError(t, restored.Restore(snap))
	assert.Equal(t, []item{b}, restored.All())
	got, err := restored.GetBy("code", "B")
	require.NoError(t, err)
	assert.Equal(t, b, got)
	_, err = restored.GetBy("code", "A")
	assert.ErrorIs(t, err, core.ErrNotFound)

	c := mustInsert(t, restored, item{Code: "C"})
	assert.Equal(t, 3, c.ID)

	t.Run("rejects foreign snapshots", func(t *testing.T) {
		bad := snap
		bad.Kind = "user"
		assert.Error(t, restored.Restore(bad))

		bad = snap
		bad.Cells = map[string]sparse.Value{"x": sparse.Int(1)}
		assert.ErrorIs(t, restored.Restore(bad), sparse.ErrBadCellKey)

		bad = snap
		bad.NextID = 50
		assert.ErrorIs(t, restored.Restore(bad), core.ErrCapacity)

		// untouched
		assert.Equal(t, 2, restored.Count())
	})
}

func TestTable_Concurrent(t *testing.T) {
	tbl := newItemTable(t, 100)

	const workers, codes = 200, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			code := fmt.Sprintf("C%02d", w%codes)
			it, err := tbl.Insert(item{Code: code, Group: "g"})
			if err != nil {
				if !errors.Is(err, core.ErrDuplicateKey) {
					t.Errorf("Insert(%s) error = %v", code, err)
				}
				_ = tbl.All()
				return
			}
			it.Qty = w
			if _, err := tbl.Replace(it.ID, it); err != nil {
				t.Errorf("Replace(%d) error = %v", it.ID, err)
			}
		}(w)
	}
	wg.Wait()

	all := tbl.All()
	ids := make(map[int]bool, len(all))
	seen := make(map[string]bool, len(all))
	for _, it := range all {
		assert.False(t, ids[it.ID], "duplicate id %d", it.ID)
		assert.False(t, seen[it.Code], "duplicate code %s", it.Code)
		ids[it.ID] = true
		seen[it.Code] = true
	}
	assert.Len(t, all, codes)
	assert.Equal(t, codes, tbl.Count())
	assert.Equal(t, tbl.Count()+1, tbl.Stats().NextID)
}
