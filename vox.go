package wfc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	voxMagicNumber = "VOX "
	voxVersion     = 150

	voxTagMain = "MAIN"
	voxTagSize = "SIZE"
	voxTagXYZI = "XYZI"
	voxTagRGBA = "RGBA"

	voxPaletteCount    = 256
	voxChunkHeaderSize = 8 // int32 content size + int32 children size
)

// Voxel is one filled cell of a vox model. Coordinates are bytes, as
// stored on disk.
type Voxel struct {
	X, Y, Z    uint8
	ColorIndex uint8
}

// VoxPalette holds the 256 RGBA palette entries. Entry 0 is unused;
// voxel colour indices 1..255 select the remaining entries.
type VoxPalette [voxPaletteCount][4]byte

// Vox is a single-model MagicaVoxel file, restricted to the strict
// MAIN/SIZE/XYZI/RGBA layout of version 150. Reading then writing a
// conforming file reproduces it byte for byte.
type Vox struct {
	SizeX, SizeY, SizeZ int32
	Voxels              []Voxel
	Palette             VoxPalette
}

func readVoxTag(r io.Reader) (string, error) {
	var tag [4]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return "", err
	}
	return string(tag[:]), nil
}

func readVoxInt(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// expectVoxChunk consumes a chunk header and returns its content
// size. The chunk tag must match want.
func expectVoxChunk(r io.Reader, want string) (int32, error) {
	tag, err := readVoxTag(r)
	if err != nil {
		return 0, err
	}
	if tag != want {
		return 0, fmt.Errorf("expected %q chunk, got %q", want, tag)
	}
	content, err := readVoxInt(r)
	if err != nil {
		return 0, err
	}
	if _, err := readVoxInt(r); err != nil { // children size
		return 0, err
	}
	return content, nil
}

// OpenVox reads a version-150 vox file from path.
func OpenVox(path string) (*Vox, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	vox, err := readVox(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("wfc: vox file %s: %w", path, err)
	}
	return vox, nil
}

func readVox(r io.Reader) (*Vox, error) {
	magic, err := readVoxTag(r)
	if err != nil {
		return nil, err
	}
	if magic != voxMagicNumber {
		return nil, fmt.Errorf("not a vox file (magic %q)", magic)
	}
	version, err := readVoxInt(r)
	if err != nil {
		return nil, err
	}
	if version != voxVersion {
		return nil, fmt.Errorf("unsupported version %d, expected %d", version, voxVersion)
	}

	if _, err := expectVoxChunk(r, voxTagMain); err != nil {
		return nil, err
	}

	vox := &Vox{}
	if _, err := expectVoxChunk(r, voxTagSize); err != nil {
		return nil, err
	}
	if vox.SizeX, err = readVoxInt(r); err != nil {
		return nil, err
	}
	if vox.SizeY, err = readVoxInt(r); err != nil {
		return nil, err
	}
	if vox.SizeZ, err = readVoxInt(r); err != nil {
		return nil, err
	}

	content, err := expectVoxChunk(r, voxTagXYZI)
	if err != nil {
		return nil, err
	}
	voxelCount, err := readVoxInt(r)
	if err != nil {
		return nil, err
	}
	if voxelCount < 0 || int64(content) != 4+4*int64(voxelCount) {
		return nil, fmt.Errorf("XYZI chunk size %d does not match voxel count %d", content, voxelCount)
	}
	vox.Voxels = make([]Voxel, voxelCount)
	for i := range vox.Voxels {
		var xyzi [4]byte
		if _, err := io.ReadFull(r, xyzi[:]); err != nil {
			return nil, err
		}
		vox.Voxels[i] = Voxel{X: xyzi[0], Y: xyzi[1], Z: xyzi[2], ColorIndex: xyzi[3]}
	}

	if _, err := expectVoxChunk(r, voxTagRGBA); err != nil {
		return nil, err
	}
	for i := 0; i < voxPaletteCount; i++ {
		if _, err := io.ReadFull(r, vox.Palette[i][:]); err != nil {
			return nil, err
		}
	}
	return vox, nil
}

// Write writes the model to path in the strict version-150 layout.
func (v *Vox) Write(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(file)
	sizeContent := int32(12)
	xyziContent := int32(4 + 4*len(v.Voxels))
	rgbaContent := int32(4 * voxPaletteCount)
	mainChildren := 3*(4+voxChunkHeaderSize) + sizeContent + xyziContent + rgbaContent

	out := func(data any) {
		if err == nil {
			err = binary.Write(w, binary.LittleEndian, data)
		}
	}
	out([]byte(voxMagicNumber))
	out(int32(voxVersion))

	out([]byte(voxTagMain))
	out(int32(0)) // MAIN has no content
	out(mainChildren)

	out([]byte(voxTagSize))
	out(sizeContent)
	out(int32(0)) // SIZE has no children
	out(v.SizeX)
	out(v.SizeY)
	out(v.SizeZ)

	out([]byte(voxTagXYZI))
	out(xyziContent)
	out(int32(0)) // XYZI has no children
	out(int32(len(v.Voxels)))
	for _, vx := range v.Voxels {
		out([4]byte{vx.X, vx.Y, vx.Z, vx.ColorIndex})
	}

	out([]byte(voxTagRGBA))
	out(rgbaContent)
	out(int32(0)) // RGBA has no children
	for i := 0; i < voxPaletteCount; i++ {
		out(v.Palette[i])
	}
	if err != nil {
		return err
	}
	return w.Flush()
}

// Rotated returns a copy rotated about the vertical axis, clockwise
// looking down. A coordinate p on a reflected axis of size S maps to
// S-1-p, so the footprint of a square tile is preserved exactly.
func (v *Vox) Rotated(r Rotation) *Vox {
	out := &Vox{SizeX: v.SizeX, SizeY: v.SizeY, SizeZ: v.SizeZ, Palette: v.Palette}
	out.Voxels = make([]Voxel, len(v.Voxels))
	maxX := uint8(v.SizeX - 1)
	maxY := uint8(v.SizeY - 1)
	for i, vx := range v.Voxels {
		x, y := vx.X, vx.Y
		switch r {
		case R90:
			x, y = maxY-vx.Y, vx.X
		case R180:
			x, y = maxX-vx.X, maxY-vx.Y
		case R270:
			x, y = vx.Y, maxX-vx.X
		}
		out.Voxels[i] = Voxel{X: x, Y: y, Z: vx.Z, ColorIndex: vx.ColorIndex}
	}
	return out
}

// Reflected returns a copy mirrored across the given horizontal axis:
// AxisX flips front and back, AxisY flips left and right.
func (v *Vox) Reflected(a Axis) *Vox {
	out := &Vox{SizeX: v.SizeX, SizeY: v.SizeY, SizeZ: v.SizeZ, Palette: v.Palette}
	out.Voxels = make([]Voxel, len(v.Voxels))
	maxX := uint8(v.SizeX - 1)
	maxY := uint8(v.SizeY - 1)
	for i, vx := range v.Voxels {
		x, y := vx.X, vx.Y
		switch a {
		case AxisX:
			y = maxY - vx.Y
		case AxisY:
			x = maxX - vx.X
		}
		out.Voxels[i] = Voxel{X: x, Y: y, Z: vx.Z, ColorIndex: vx.ColorIndex}
	}
	return out
}
