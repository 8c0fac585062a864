// Package wfc synthesises cuboid arrangements of cubic voxel tiles
// with the wave function collapse algorithm: tiles declare how their
// faces may abut, and the solver collapses a grid of cells until every
// adjacent pair is compatible.
package wfc

import "fmt"

// Face identifies one side of a cubic tile. Left/Right span the x
// axis, Front/Back the y axis, Down/Up the z axis.
type Face int

const (
	FaceLeft Face = iota
	FaceRight
	FaceFront
	FaceBack
	FaceDown
	FaceUp
)

// FaceCount is the number of faces of a tile.
const FaceCount = 6

// Faces lists all six faces in constraint-table order.
var Faces = [FaceCount]Face{FaceLeft, FaceRight, FaceFront, FaceBack, FaceDown, FaceUp}

var faceNames = [FaceCount]string{"Left", "Right", "Front", "Back", "Down", "Up"}

func (f Face) String() string {
	if f < 0 || f >= FaceCount {
		return fmt.Sprintf("Face(%d)", int(f))
	}
	return faceNames[f]
}

// Opposite returns the face on the other side of the same axis.
func (f Face) Opposite() Face {
	switch f {
	case FaceLeft:
		return FaceRight
	case FaceRight:
		return FaceLeft
	case FaceFront:
		return FaceBack
	case FaceBack:
		return FaceFront
	case FaceDown:
		return FaceUp
	case FaceUp:
		return FaceDown
	}
	panic(fmt.Sprintf("wfc: unknown face %d", int(f)))
}

// Vertical reports whether f is an Up or Down face.
func (f Face) Vertical() bool {
	return f == FaceDown || f == FaceUp
}

// Rotation is a quarter-turn rotation about the vertical axis,
// clockwise when looking down. The integer value is the number of
// quarter turns.
type Rotation int

const (
	R0 Rotation = iota
	R90
	R180
	R270
)

var rotationNames = [4]string{"R0", "R90", "R180", "R270"}

func (r Rotation) String() string {
	if r < 0 || int(r) >= len(rotationNames) {
		return fmt.Sprintf("Rotation(%d)", int(r))
	}
	return rotationNames[r]
}

// Axis selects a horizontal reflection. Reflecting across AxisX swaps
// the front and back faces; AxisY swaps left and right.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}
