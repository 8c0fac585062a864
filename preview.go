package wfc

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"
)

const previewDefaultScale = 16

// meanColor returns the mean palette colour of a model's voxels,
// giving a quick single-pixel impression of a tile.
func meanColor(vox *Vox) color.NRGBA {
	if len(vox.Voxels) == 0 {
		return color.NRGBA{}
	}
	sum := mgl32.Vec3{}
	for _, v := range vox.Voxels {
		rgba := vox.Palette[v.ColorIndex]
		sum = sum.Add(mgl32.Vec3{float32(rgba[0]), float32(rgba[1]), float32(rgba[2])})
	}
	mean := sum.Mul(1 / float32(len(vox.Voxels)))
	return color.NRGBA{R: uint8(mean.X()), G: uint8(mean.Y()), B: uint8(mean.Z()), A: 255}
}

// writePreview renders the top layer of a collapsed solve as a PNG,
// one mean-coloured square per cell, upscaled by scale. Cells whose
// first surviving tile has no voxels stay transparent.
func (m *Model) writePreview(waves *Waves, path string, scale int) (err error) {
	if scale < 1 {
		scale = 1
	}
	top := image.NewNRGBA(image.Rect(0, 0, m.grid.Width(), m.grid.Depth()))
	z := m.grid.Height() - 1
	for y := 0; y < m.grid.Depth(); y++ {
		for x := 0; x < m.grid.Width(); x++ {
			members := waves.Tiles()[m.grid.Index(x, y, z)].Members()
			if len(members) == 0 {
				continue
			}
			vox, verr := OpenVox(m.tiles.VoxPath(members[0]))
			if verr != nil {
				return fmt.Errorf("wfc: preview tile: %w", verr)
			}
			// Image rows grow downward; grid depth grows away from the viewer.
			top.SetNRGBA(x, m.grid.Depth()-1-y, meanColor(vox))
		}
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, m.grid.Width()*scale, m.grid.Depth()*scale))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), top, top.Bounds(), xdraw.Src, nil)

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(file, scaled)
}
