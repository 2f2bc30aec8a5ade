package matrixdb

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIndex_Unique(t *testing.T) {
	// a single bucket forces every key into one chain
	for _, buckets := range []int{1, 7, 10000} {
		t.Run("buckets="+strconv.Itoa(buckets), func(t *testing.T) {
			idx := NewHashIndex("username", buckets, true)
			for i := 1; i <= 50; i++ {
				idx.Insert("user"+strconv.Itoa(i), i)
			}
			assert.Equal(t, 50, idx.Len())
			for i := 1; i <= 50; i++ {
				id, ok := idx.First("user" + strconv.Itoa(i))
				require.True(t, ok)
				assert.Equal(t, i, id)
			}
			_, ok := idx.First("nobody")
			assert.False(t, ok)

			idx.Insert("user3", 99) // unique index replaces
			assert.Equal(t, []int{99}, idx.Lookup("user3"))

			assert.False(t, idx.Remove("user3", 3))
			assert.True(t, idx.Remove("user3", 99))
			assert.Nil(t, idx.Lookup("user3"))
			assert.Equal(t, 49, idx.Len())
		})
	}
}

func TestHashIndex_Multi(t *testing.T) {
	idx := NewHashIndex("course_code", 3, false)
	idx.Insert("MAT101", 1)
	idx.Insert("FIS100", 2)
	idx.Insert("MAT101", 3)
	idx.Insert("MAT101", 3)

	assert.Equal(t, []int{1, 3}, idx.Lookup("MAT101"))
	first, ok := idx.First("MAT101")
	require.True(t, ok)
	assert.Equal(t, 1, first)

	// Lookup hands out copies
	ids := idx.Lookup("MAT101")
	ids[0] = 42
	assert.Equal(t, []int{1, 3}, idx.Lookup("MAT101"))

	assert.True(t, idx.Remove("MAT101", 1))
	assert.Equal(t, []int{3}, idx.Lookup("MAT101"))
	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Remove("MAT101", 3))
	assert.Equal(t, 1, idx.Len())
}

func TestHashIndex_Stats(t *testing.T) {
	idx := NewHashIndex("carnet", 1, true)
	idx.Insert("a", 1)
	idx.Insert("b", 2)
	idx.Insert("c", 3)

	stats := idx.Stats()
	assert.Equal(t, IndexStats{
		Name: "carnet", Unique: true, Buckets: 1, UsedBuckets: 1,
		Keys: 3, LongestChain: 3, LoadFactor: 3,
	}, stats)

	idx.Reset()
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Lookup("a"))
}
