package wfc

import "math/bits"

const tileSetWordBits = 64

// TileSet is a fixed-capacity bitset of tile ids. Candidate sets and
// constraint rows share this representation, so the propagation hot
// loop works word-at-a-time.
type TileSet []uint64

// NewTileSet returns an empty set with capacity for tileCount ids.
func NewTileSet(tileCount int) TileSet {
	return make(TileSet, (tileCount+tileSetWordBits-1)/tileSetWordBits)
}

// FullTileSet returns the set holding every id in [0, tileCount).
func FullTileSet(tileCount int) TileSet {
	s := NewTileSet(tileCount)
	for i := range s {
		s[i] = ^uint64(0)
	}
	if rem := tileCount % tileSetWordBits; rem != 0 {
		s[len(s)-1] = (1 << rem) - 1
	}
	return s
}

// Has reports whether tile is in the set.
func (s TileSet) Has(tile int) bool {
	return s[tile/tileSetWordBits]&(1<<(tile%tileSetWordBits)) != 0
}

// Add inserts tile into the set.
func (s TileSet) Add(tile int) {
	s[tile/tileSetWordBits] |= 1 << (tile % tileSetWordBits)
}

// Remove deletes tile from the set.
func (s TileSet) Remove(tile int) {
	s[tile/tileSetWordBits] &^= 1 << (tile % tileSetWordBits)
}

// Len returns the number of ids in the set.
func (s TileSet) Len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// Empty reports whether the set holds no ids.
func (s TileSet) Empty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the set.
func (s TileSet) Clone() TileSet {
	out := make(TileSet, len(s))
	copy(out, s)
	return out
}

// Clear removes every id from the set.
func (s TileSet) Clear() {
	for i := range s {
		s[i] = 0
	}
}

// UnionWith adds every id of o to s. Both sets must share a capacity.
func (s TileSet) UnionWith(o TileSet) {
	for i := range s {
		s[i] |= o[i]
	}
}

// IntersectWith removes from s every id not in o. Both sets must
// share a capacity.
func (s TileSet) IntersectWith(o TileSet) {
	for i := range s {
		s[i] &= o[i]
	}
}

// Members returns the ids in the set in ascending order.
func (s TileSet) Members() []int {
	out := make([]int, 0, s.Len())
	s.ForEach(func(tile int) {
		out = append(out, tile)
	})
	return out
}

// ForEach calls fn for every id in the set in ascending order.
func (s TileSet) ForEach(fn func(tile int)) {
	for i, w := range s {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			fn(i*tileSetWordBits + b)
			w &^= 1 << b
		}
	}
}
