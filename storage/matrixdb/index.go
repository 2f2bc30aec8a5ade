package matrixdb

import (
	"github.com/cespare/xxhash/v2"
)

type indexEntry struct {
	key string
	ids []int
}

// HashIndex maps exact keys to entity ids through a fixed bucket array with chaining.
// Unique indexes hold at most one id per key; multi-valued ones keep ids in insertion order.
// It is guarded by the owning Table's lock.
type HashIndex struct {
	name    string
	unique  bool
	buckets [][]indexEntry
	keys    int
}

type IndexStats struct {
	Name         string  `json:"name"`
	Unique       bool    `json:"unique"`
	Buckets      int     `json:"buckets"`
	UsedBuckets  int     `json:"used_buckets"`
	Keys         int     `json:"keys"`
	LongestChain int     `json:"longest_chain"`
	LoadFactor   float64 `json:"load_factor"`
}

func NewHashIndex(name string, buckets int, unique bool) *HashIndex {
	if buckets < 1 {
		buckets = 1
	}
	return &HashIndex{name: name, unique: unique, buckets: make([][]indexEntry, buckets)}
}

func (idx *HashIndex) bucketFor(key string) int {
	return int(xxhash.Sum64String(key) % uint64(len(idx.buckets)))
}

func (idx *HashIndex) find(key string) (int, int) {
	b := idx.bucketFor(key)
	for i, e := range idx.buckets[b] {
		if e.key == key {
			return b, i
		}
	}
	return b, -1
}

// Insert adds id under key. A unique index replaces the id previously held by key.
func (idx *HashIndex) Insert(key string, id int) {
	b, i := idx.find(key)
	if i < 0 {
		idx.buckets[b] = append(idx.buckets[b], indexEntry{key: key, ids: []int{id}})
		idx.keys++
		return
	}
	e := &idx.buckets[b][i]
	if idx.unique {
		e.ids = []int{id}
		return
	}
	for _, existing := range e.ids {
		if existing == id {
			return
		}
	}
	e.ids = append(e.ids, id)
}

// Lookup returns a copy of the ids held by key.
func (idx *HashIndex) Lookup(key string) []int {
	b, i := idx.find(key)
	if i < 0 {
		return nil
	}
	return append([]int(nil), idx.buckets[b][i].ids...)
}

// First returns the oldest id held by key.
func (idx *HashIndex) First(key string) (int, bool) {
	b, i := idx.find(key)
	if i < 0 {
		return 0, false
	}
	return idx.buckets[b][i].ids[0], true
}

// Remove drops id from key; the key goes away with its last id.
func (idx *HashIndex) Remove(key string, id int) bool {
	b, i := idx.find(key)
	if i < 0 {
		return false
	}
	e := &idx.buckets[b][i]
	for j, existing := range e.ids {
		if existing != id {
			continue
		}
		e.ids = append(e.ids[:j], e.ids[j+1:]...)
		if len(e.ids) == 0 {
			chain := idx.buckets[b]
			idx.buckets[b] = append(chain[:i], chain[i+1:]...)
			idx.keys--
		}
		return true
	}
	return false
}

func (idx *HashIndex) Len() int { return idx.keys }

func (idx *HashIndex) Reset() {
	idx.buckets = make([][]indexEntry, len(idx.buckets))
	idx.keys = 0
}

func (idx *HashIndex) Stats() IndexStats {
	stats := IndexStats{Name: idx.name, Unique: idx.unique, Buckets: len(idx.buckets), Keys: idx.keys}
	for _, chain := range idx.buckets {
		if len(chain) == 0 {
			continue
		}
		stats.UsedBuckets++
		if len(chain) > stats.LongestChain {
			stats.LongestChain = len(chain)
		}
	}
	stats.LoadFactor = float64(idx.keys) / float64(len(idx.buckets))
	return stats
}
