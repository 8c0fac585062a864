package wfc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TileConfig is one entry of the sample manifest: a voxel asset stem
// and the connectors of its six faces.
type TileConfig struct {
	Name       string     `json:"name"`
	Connectors Connectors `json:"connectors"`
}

// TileManifest is the config.json layout of a sample directory.
type TileManifest struct {
	TileSize    int          `json:"tile_size"`
	TileConfigs []TileConfig `json:"tile_configs"`
}

// Tiles holds the tile set of a sample directory: the base tiles from
// the manifest plus, after GenerateTransformed, their
// symmetry-generated variants. Tile ids are dense and deterministic:
// base tiles in manifest order, each immediately followed by its
// surviving rotations, then reflections.
type Tiles struct {
	size       int
	voxPaths   []string
	rotations  []Rotation
	connectors []Connectors
}

// LoadTiles reads <sampleDir>/config.json into a base tile set.
func LoadTiles(sampleDir string) (*Tiles, error) {
	configPath := filepath.Join(sampleDir, "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("wfc: read manifest: %w", err)
	}
	var manifest TileManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("wfc: parse manifest %s: %w", configPath, err)
	}
	if manifest.TileSize <= 0 {
		return nil, fmt.Errorf("wfc: manifest %s: tile_size must be positive", configPath)
	}
	if len(manifest.TileConfigs) == 0 {
		return nil, fmt.Errorf("wfc: manifest %s: no tile_configs", configPath)
	}
	tiles := &Tiles{size: manifest.TileSize}
	for _, tc := range manifest.TileConfigs {
		tiles.voxPaths = append(tiles.voxPaths, filepath.Join(sampleDir, tc.Name+".vox"))
		tiles.rotations = append(tiles.rotations, R0)
		tiles.connectors = append(tiles.connectors, tc.Connectors)
	}
	return tiles, nil
}

var orbitRotations = [3]Rotation{R90, R180, R270}
var orbitAxes = [2]Axis{AxisX, AxisY}

// GenerateTransformed expands every base tile with the rotations and
// reflections whose connectors have not been seen in that tile's
// orbit. Each new variant gets a transformed voxel asset written
// beside its source. Symmetric tiles dedupe naturally: a tile
// invariant under R90 generates no rotation variants.
func (t *Tiles) GenerateTransformed() error {
	var (
		paths      []string
		rotations  []Rotation
		connectors []Connectors
	)
	generated := 0
	for i := range t.connectors {
		vox, err := OpenVox(t.voxPaths[i])
		if err != nil {
			return fmt.Errorf("wfc: open tile asset: %w", err)
		}
		paths = append(paths, t.voxPaths[i])
		rotations = append(rotations, t.rotations[i])
		connectors = append(connectors, t.connectors[i])

		dir := filepath.Dir(t.voxPaths[i])
		stem := strings.TrimSuffix(filepath.Base(t.voxPaths[i]), ".vox")
		seen := map[Connectors]bool{t.connectors[i]: true}

		for _, r := range orbitRotations {
			rotated := t.connectors[i].Rotated(r)
			if seen[rotated] {
				continue
			}
			seen[rotated] = true
			path := filepath.Join(dir, fmt.Sprintf("generated-%d-%s_%s.vox", generated, stem, r))
			if err := vox.Rotated(r).Write(path); err != nil {
				return fmt.Errorf("wfc: write generated tile %s: %w", path, err)
			}
			generated++
			paths = append(paths, path)
			rotations = append(rotations, r)
			connectors = append(connectors, rotated)
		}
		for _, a := range orbitAxes {
			reflected := t.connectors[i].Reflected(a)
			if seen[reflected] {
				continue
			}
			seen[reflected] = true
			path := filepath.Join(dir, fmt.Sprintf("generated-%d-%s_f%s.vox", generated, stem, a))
			if err := vox.Reflected(a).Write(path); err != nil {
				return fmt.Errorf("wfc: write generated tile %s: %w", path, err)
			}
			generated++
			paths = append(paths, path)
			rotations = append(rotations, R0)
			connectors = append(connectors, reflected)
		}
	}
	t.voxPaths, t.rotations, t.connectors = paths, rotations, connectors
	return nil
}

// Len returns the number of tiles, including generated variants.
func (t *Tiles) Len() int { return len(t.connectors) }

// Size returns the tile edge length in voxels.
func (t *Tiles) Size() int { return t.size }

// VoxPath returns the voxel asset path of the given tile.
func (t *Tiles) VoxPath(tile int) string { return t.voxPaths[tile] }

// VoxPaths returns the voxel asset path of every tile.
func (t *Tiles) VoxPaths() []string { return t.voxPaths }

// Connectors returns the connectors of the given tile.
func (t *Tiles) Connectors(tile int) Connectors { return t.connectors[tile] }

// Constraints is the per-face adjacency table: Allowed(f, t) is the
// set of tiles that may be placed on the f side of t. The table is
// symmetric under face opposition, and a row may be empty — such
// tiles surface as contradictions at solve time.
type Constraints struct {
	tileCount int
	rows      [FaceCount][]TileSet
}

// TileCount returns the number of tiles the table covers.
func (c *Constraints) TileCount() int { return c.tileCount }

// Allowed returns the tiles that may sit on the f side of tile. The
// returned set is shared; callers must not mutate it.
func (c *Constraints) Allowed(f Face, tile int) TileSet { return c.rows[f][tile] }

// Constraints computes the adjacency table for the current tile set.
// It is a pure function of the tile list.
func (t *Tiles) Constraints() *Constraints {
	n := len(t.connectors)
	cs := &Constraints{tileCount: n}
	for _, f := range Faces {
		rows := make([]TileSet, n)
		for a := 0; a < n; a++ {
			rows[a] = NewTileSet(n)
			for b := 0; b < n; b++ {
				if t.connectors[a].Compatible(t.connectors[b], f) {
					rows[a].Add(b)
				}
			}
		}
		cs.rows[f] = rows
	}
	return cs
}

// DumpConstraints logs the valid-tile table at debug level, one line
// per (face, tile) pair.
func (t *Tiles) DumpConstraints(cs *Constraints, logger Logger) {
	if logger == nil || !logger.DebugEnabled() {
		return
	}
	for _, f := range Faces {
		for tile := 0; tile < cs.TileCount(); tile++ {
			logger.Debugf("%s %s -> %v", f, t.voxPaths[tile], cs.Allowed(f, tile).Members())
		}
	}
}
