package wfc

import (
	"fmt"
	"math"
	"math/rand"
)

// Waves holds the per-cell solver state of one attempt: the candidate
// set and entropy of every cell. Entropy is the candidate count plus
// a fractional noise term drawn once per cell, so min-entropy ties
// resolve deterministically per run.
type Waves struct {
	graph          [][]Edge
	constraints    *Constraints
	rng            *rand.Rand
	entropies      []float32
	tiles          []TileSet
	collapsedCount int
}

// Contradiction reports a cell whose remaining candidates support no
// tile at all in one of its neighbours. It carries the supporter
// cell, its candidates at the moment of propagation, and the face
// being constrained.
type Contradiction struct {
	Cell  int
	Tiles TileSet
	Face  Face
}

func (c *Contradiction) Error() string {
	return fmt.Sprintf("wfc: contradiction at cell %d across face %s (%d supporter candidates)",
		c.Cell, c.Face, c.Tiles.Len())
}

// NewWaves returns an uncollapsed solver over graph and constraints.
// The rng is owned by the solver for the attempt; a fixed seed makes
// the run deterministic.
func NewWaves(graph [][]Edge, constraints *Constraints, rng *rand.Rand) *Waves {
	waveCount := len(graph)
	tileCount := constraints.TileCount()
	w := &Waves{
		graph:       graph,
		constraints: constraints,
		rng:         rng,
		entropies:   make([]float32, waveCount),
		tiles:       make([]TileSet, waveCount),
	}
	for i := range w.entropies {
		w.entropies[i] = float32(tileCount) + rng.Float32() // noise breaks min-entropy ties
		w.tiles[i] = FullTileSet(tileCount)
	}
	return w
}

// MinEntropyWave returns the uncollapsed cell with the smallest
// entropy. When every cell is collapsed the result is 0; callers
// check AreCollapsed first.
func (w *Waves) MinEntropyWave() int {
	minWave := 0
	minEntropy := float32(math.MaxFloat32)
	for wave, entropy := range w.entropies {
		if entropy > 0 && entropy < minEntropy {
			minWave = wave
			minEntropy = entropy
		}
	}
	return minWave
}

// Observe collapses wave to a single tile chosen uniformly at random
// from its candidates.
func (w *Waves) Observe(wave int) {
	members := w.tiles[wave].Members()
	observed := members[w.rng.Intn(len(members))]
	set := NewTileSet(w.constraints.TileCount())
	set.Add(observed)
	w.tiles[wave] = set
	w.collapse(wave)
}

func (w *Waves) collapse(wave int) {
	w.entropies[wave] = 0
	w.collapsedCount++
}

// Propagate restores arc-consistency starting from wave: every cell
// whose candidate set shrinks is pushed back onto the worklist, and a
// per-call visited set avoids redundant fixed-point work. On failure
// it returns a *Contradiction.
func (w *Waves) Propagate(wave int) error {
	stack := []int{wave}
	visited := make([]bool, len(w.graph))
	allowed := NewTileSet(w.constraints.TileCount())
	for len(stack) > 0 {
		wave := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited[wave] = true
		for _, edge := range w.graph[wave] {
			if visited[edge.Cell] || w.entropies[edge.Cell] <= 0 {
				continue
			}
			allowed.Clear()
			w.tiles[wave].ForEach(func(tile int) {
				allowed.UnionWith(w.constraints.Allowed(edge.Face, tile))
			})
			before := w.tiles[edge.Cell].Len()
			w.tiles[edge.Cell].IntersectWith(allowed)
			after := w.tiles[edge.Cell].Len()
			if after == 0 {
				return &Contradiction{Cell: wave, Tiles: w.tiles[wave].Clone(), Face: edge.Face}
			}
			if after != before {
				w.entropies[edge.Cell] -= float32(before - after)
				stack = append(stack, edge.Cell)
			}
		}
	}
	return nil
}

// AreCollapsed reports whether every cell has been observed.
func (w *Waves) AreCollapsed() bool {
	return w.collapsedCount == len(w.entropies)
}

// Tiles returns the candidate set of every cell, indexed by cell. The
// slices are the solver's own state; callers must not mutate them.
func (w *Waves) Tiles() []TileSet { return w.tiles }

// Entropy returns the current entropy of the given cell.
func (w *Waves) Entropy(wave int) float32 { return w.entropies[wave] }
