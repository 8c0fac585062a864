package wfc

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrAttemptsExhausted is returned by Run when MaxAttempts is set and
// every attempt ended in a contradiction.
var ErrAttemptsExhausted = errors.New("wfc: attempt budget exhausted")

// Model wires the tile set, the cell grid and the solver into one
// retryable run.
type Model struct {
	grid       *Grid
	tiles      *Tiles
	sampleDir  string
	outputFile string
	logger     Logger

	// MaxAttempts bounds the restart loop; 0 keeps restarting until an
	// attempt succeeds.
	MaxAttempts int
	// Seed fixes the solver RNG when non-zero; 0 draws a fresh seed.
	Seed int64
	// PreviewFile, when set, receives a top-view PNG of the solve.
	PreviewFile string
}

// NewModel loads the manifest of sampleDir and builds the cell grid
// for a width×depth×height output.
func NewModel(sampleDir string, width, depth, height int, outputFile string) (*Model, error) {
	grid, err := NewGrid(width, depth, height)
	if err != nil {
		return nil, err
	}
	tiles, err := LoadTiles(sampleDir)
	if err != nil {
		return nil, err
	}
	return &Model{
		grid:       grid,
		tiles:      tiles,
		sampleDir:  sampleDir,
		outputFile: outputFile,
		logger:     NewDefaultLogger("wfc", false),
	}, nil
}

// SetLogger replaces the model's logger. A nil logger disables
// logging.
func (m *Model) SetLogger(l Logger) {
	if l == nil {
		l = NewNopLogger()
	}
	m.logger = l
}

// Tiles returns the model's tile set.
func (m *Model) Tiles() *Tiles { return m.tiles }

// Grid returns the model's cell graph.
func (m *Model) Grid() *Grid { return m.grid }

// Run expands the tile orbits, builds the constraint table, and
// solves. Contradictions abandon the whole attempt and restart with
// fresh waves; there is no backtracking. On success the viewer
// directive stream is written to the output file.
func (m *Model) Run() error {
	if err := m.tiles.GenerateTransformed(); err != nil {
		return err
	}
	constraints := m.tiles.Constraints()
	m.tiles.DumpConstraints(constraints, m.logger)

	seed := m.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))
	m.logger.Debugf("%d tiles, %d cells, seed %d", m.tiles.Len(), m.grid.Len(), seed)

	for attempt := 1; m.MaxAttempts == 0 || attempt <= m.MaxAttempts; attempt++ {
		attemptID := uuid.NewString()
		waves := NewWaves(m.grid.Graph(), constraints, rng)
		err := m.solve(waves)
		if err == nil {
			m.logger.Infof("collapsed %d cells on attempt %d", m.grid.Len(), attempt)
			if m.PreviewFile != "" {
				if perr := m.writePreview(waves, m.PreviewFile, previewDefaultScale); perr != nil {
					m.logger.Warnf("preview: %v", perr)
				}
			}
			return m.emit(waves)
		}
		var contradiction *Contradiction
		if !errors.As(err, &contradiction) {
			return err
		}
		m.logger.Debugf("attempt %d (%s): %v, restarting", attempt, attemptID, contradiction)
	}
	return ErrAttemptsExhausted
}

// solve drives one attempt to completion or its first contradiction.
func (m *Model) solve(waves *Waves) error {
	for !waves.AreCollapsed() {
		wave := waves.MinEntropyWave()
		waves.Observe(wave)
		if err := waves.Propagate(wave); err != nil {
			return err
		}
	}
	return nil
}

// emit writes the viewer directive stream for a collapsed solve: a
// header naming the import extent, then one line per (cell,
// surviving tile) pair with coordinates pre-multiplied by tile size.
func (m *Model) emit(waves *Waves) (err error) {
	file, err := os.Create(m.outputFile)
	if err != nil {
		return fmt.Errorf("wfc: create output %s: %w", m.outputFile, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "// Generated wfc output\n")
	fmt.Fprintf(w, "mv_import %d\n", m.grid.MaxDimension()*m.tiles.Size())
	for cell, tiles := range waves.Tiles() {
		xyz := m.grid.XYZs()[cell]
		x := xyz[0] * m.tiles.Size()
		y := xyz[1] * m.tiles.Size()
		z := xyz[2] * m.tiles.Size()
		for _, tile := range tiles.Members() {
			path, perr := filepath.Abs(m.tiles.VoxPath(tile))
			if perr != nil {
				return fmt.Errorf("wfc: resolve tile path: %w", perr)
			}
			fmt.Fprintf(w, "%d %d %d %s\n", x, y, z, path)
		}
	}
	return w.Flush()
}

// Run builds a model over sampleDir and solves it, restarting on
// contradictions until an arrangement is found, then writes the
// result to outputFile.
func Run(sampleDir string, width, depth, height int, outputFile string) error {
	model, err := NewModel(sampleDir, width, depth, height, outputFile)
	if err != nil {
		return err
	}
	return model.Run()
}
