package wfc

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

// checkerTiles returns two hand-built tiles that must alternate along
// both horizontal axes and stack freely: tile 0 is the Normal hand,
// tile 1 its Inverse.
func checkerTiles() *Tiles {
	a := Connectors{
		Left:  conn(1, SymmetryNormal),
		Right: conn(1, SymmetryNormal),
		Front: conn(3, SymmetryNormal),
		Back:  conn(3, SymmetryNormal),
		Down:  vconn(9, SymmetrySymmetrical, 0),
		Up:    vconn(9, SymmetrySymmetrical, 0),
	}
	b := a
	b.Left = conn(1, SymmetryInverse)
	b.Right = conn(1, SymmetryInverse)
	b.Front = conn(3, SymmetryInverse)
	b.Back = conn(3, SymmetryInverse)
	return &Tiles{
		size:       4,
		voxPaths:   []string{"a.vox", "b.vox"},
		rotations:  []Rotation{R0, R0},
		connectors: []Connectors{a, b},
	}
}

func mustGrid(t *testing.T, w, d, h int) *Grid {
	t.Helper()
	g, err := NewGrid(w, d, h)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestNewWavesInit(t *testing.T) {
	grid := mustGrid(t, 2, 2, 1)
	cs := checkerTiles().Constraints()
	waves := NewWaves(grid.Graph(), cs, rand.New(rand.NewSource(1)))
	if waves.AreCollapsed() {
		t.Errorf("a fresh solver should not be collapsed")
	}
	for cell, tiles := range waves.Tiles() {
		if tiles.Len() != 2 {
			t.Errorf("cell %d: expected all candidates, got %v", cell, tiles.Members())
		}
		entropy := waves.Entropy(cell)
		if entropy < 2 || entropy >= 3 {
			t.Errorf("cell %d: entropy %f outside [T, T+1)", cell, entropy)
		}
	}
}

func TestMinEntropyWave(t *testing.T) {
	grid := mustGrid(t, 4, 1, 1)
	cs := checkerTiles().Constraints()
	waves := NewWaves(grid.Graph(), cs, rand.New(rand.NewSource(1)))
	waves.entropies = []float32{0, 2.5, 1.2, 3}
	if got := waves.MinEntropyWave(); got != 2 {
		t.Errorf("MinEntropyWave = %d, want 2", got)
	}
}

func TestObserveCollapses(t *testing.T) {
	grid := mustGrid(t, 1, 1, 1)
	cs := checkerTiles().Constraints()
	waves := NewWaves(grid.Graph(), cs, rand.New(rand.NewSource(1)))
	waves.Observe(0)
	if waves.Tiles()[0].Len() != 1 {
		t.Errorf("observed cell should hold a single tile")
	}
	if waves.Entropy(0) != 0 {
		t.Errorf("observed cell should have zero entropy")
	}
	if !waves.AreCollapsed() {
		t.Errorf("single-cell grid should be collapsed after one observe")
	}
}

func TestPropagateChain(t *testing.T) {
	grid := mustGrid(t, 3, 1, 1)
	cs := checkerTiles().Constraints()
	waves := NewWaves(grid.Graph(), cs, rand.New(rand.NewSource(1)))

	// Pin the leftmost cell to tile 0 and let the constraint ripple
	// down the strip.
	single := NewTileSet(cs.TileCount())
	single.Add(0)
	waves.tiles[0] = single
	waves.collapse(0)

	if err := waves.Propagate(0); err != nil {
		t.Fatalf("Propagate: %v", err)
	}
	if got := waves.Tiles()[1].Members(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("cell 1 = %v, want [1]", got)
	}
	if got := waves.Tiles()[2].Members(); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("cell 2 = %v, want [0]", got)
	}
	for _, cell := range []int{1, 2} {
		entropy := waves.Entropy(cell)
		if entropy < 1 || entropy >= 2 {
			t.Errorf("cell %d: entropy %f should have dropped to [1, 2)", cell, entropy)
		}
	}
	if waves.AreCollapsed() {
		t.Errorf("propagation must not collapse singleton cells")
	}
}

func TestPropagateContradiction(t *testing.T) {
	// No tile's right face matches any left face, so the first
	// propagation after pinning cell 1 dies on its Left edge.
	a := Connectors{
		Left:  conn(1, SymmetrySymmetrical),
		Right: conn(2, SymmetrySymmetrical),
		Front: conn(5, SymmetrySymmetrical),
		Back:  conn(5, SymmetrySymmetrical),
		Down:  vconn(9, SymmetrySymmetrical, 0),
		Up:    vconn(9, SymmetrySymmetrical, 0),
	}
	b := a
	b.Left = conn(3, SymmetrySymmetrical)
	b.Right = conn(4, SymmetrySymmetrical)
	tiles := &Tiles{
		size:       4,
		voxPaths:   []string{"a.vox", "b.vox"},
		rotations:  []Rotation{R0, R0},
		connectors: []Connectors{a, b},
	}
	grid := mustGrid(t, 2, 1, 1)
	waves := NewWaves(grid.Graph(), tiles.Constraints(), rand.New(rand.NewSource(1)))

	single := NewTileSet(2)
	single.Add(0)
	waves.tiles[1] = single
	waves.collapse(1)

	err := waves.Propagate(1)
	if err == nil {
		t.Fatalf("expected a contradiction")
	}
	var contradiction *Contradiction
	if !errors.As(err, &contradiction) {
		t.Fatalf("expected *Contradiction, got %T", err)
	}
	if contradiction.Cell != 1 || contradiction.Face != FaceLeft {
		t.Errorf("contradiction at cell %d face %s, want cell 1 face Left",
			contradiction.Cell, contradiction.Face)
	}
	if got := contradiction.Tiles.Members(); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("contradiction should carry the supporter candidates, got %v", got)
	}
}

// solveAll drives observe/propagate until collapsed or contradiction.
func solveAll(t *testing.T, waves *Waves) error {
	t.Helper()
	for !waves.AreCollapsed() {
		wave := waves.MinEntropyWave()
		waves.Observe(wave)
		if err := waves.Propagate(wave); err != nil {
			return err
		}
	}
	return nil
}

func TestSolveCheckerboard(t *testing.T) {
	grid := mustGrid(t, 3, 3, 2)
	tiles := checkerTiles()
	cs := tiles.Constraints()
	waves := NewWaves(grid.Graph(), cs, rand.New(rand.NewSource(7)))
	if err := solveAll(t, waves); err != nil {
		t.Fatalf("solve: %v", err)
	}

	if !waves.AreCollapsed() {
		t.Fatalf("solver reported success without collapsing")
	}
	for cell, tileSet := range waves.Tiles() {
		if tileSet.Len() != 1 {
			t.Errorf("cell %d: %d candidates after success", cell, tileSet.Len())
		}
		if waves.Entropy(cell) != 0 {
			t.Errorf("cell %d: nonzero entropy after success", cell)
		}
	}
	// Arc consistency: every remaining tile has a compatible partner
	// across every edge.
	for cell, edges := range grid.Graph() {
		for _, edge := range edges {
			for _, tile := range waves.Tiles()[cell].Members() {
				supported := false
				for _, other := range waves.Tiles()[edge.Cell].Members() {
					if cs.Allowed(edge.Face, tile).Has(other) {
						supported = true
					}
				}
				if !supported {
					t.Errorf("edge (%d -> %d, %s): tile %d unsupported", cell, edge.Cell, edge.Face, tile)
				}
			}
		}
	}
	// The tile parity must alternate along x and y.
	for cell, edges := range grid.Graph() {
		tile := waves.Tiles()[cell].Members()[0]
		for _, edge := range edges {
			if edge.Face.Vertical() {
				continue
			}
			neighbour := waves.Tiles()[edge.Cell].Members()[0]
			if neighbour == tile {
				t.Errorf("cells %d and %d hold the same hand across %s", cell, edge.Cell, edge.Face)
			}
		}
	}
}

func TestEntropyMonotonicity(t *testing.T) {
	grid := mustGrid(t, 3, 2, 1)
	cs := checkerTiles().Constraints()
	waves := NewWaves(grid.Graph(), cs, rand.New(rand.NewSource(3)))

	previous := make([]float32, grid.Len())
	copy(previous, waves.entropies)
	check := func(stage string) {
		for cell, entropy := range waves.entropies {
			if entropy > previous[cell] {
				t.Errorf("%s: entropy of cell %d rose from %f to %f", stage, cell, previous[cell], entropy)
			}
		}
		copy(previous, waves.entropies)
	}
	for !waves.AreCollapsed() {
		wave := waves.MinEntropyWave()
		waves.Observe(wave)
		check("observe")
		if err := waves.Propagate(wave); err != nil {
			t.Fatalf("propagate: %v", err)
		}
		check("propagate")
	}
}

func TestSolveDeterministicPerSeed(t *testing.T) {
	grid := mustGrid(t, 4, 2, 2)
	cs := checkerTiles().Constraints()

	run := func() []TileSet {
		waves := NewWaves(grid.Graph(), cs, rand.New(rand.NewSource(11)))
		if err := solveAll(t, waves); err != nil {
			t.Fatalf("solve: %v", err)
		}
		return waves.Tiles()
	}
	if !reflect.DeepEqual(run(), run()) {
		t.Errorf("identical seeds should produce identical assignments")
	}
}

func TestSolveSingleCell(t *testing.T) {
	grid := mustGrid(t, 1, 1, 1)
	cs := checkerTiles().Constraints()
	waves := NewWaves(grid.Graph(), cs, rand.New(rand.NewSource(1)))
	if err := solveAll(t, waves); err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !waves.AreCollapsed() || waves.Tiles()[0].Len() != 1 {
		t.Errorf("1x1x1 grid should collapse with one observe")
	}
}
