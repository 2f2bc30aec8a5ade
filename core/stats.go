package core

// StoreStats is the read-only statistics surface of an entity store.
type StoreStats struct {
	Kind     string  `json:"kind"`
	Capacity int     `json:"capacity"`
	Live     int     `json:"live"`
	NextID   int     `json:"next_id"`
	NonZero  int     `json:"non_zero"`
	Density  float64 `json:"density"`
}
