package wfc

import (
	"encoding/json"
	"fmt"
)

// Symmetry describes the chirality of a face pattern. A Normal face
// only fits its mirror image (Inverse); a Symmetrical face fits
// another Symmetrical face.
type Symmetry int

const (
	SymmetryNormal Symmetry = iota
	SymmetryInverse
	SymmetrySymmetrical
)

var symmetryNames = [3]string{"Normal", "Inverse", "Symmetrical"}

func (s Symmetry) String() string {
	if s < 0 || int(s) >= len(symmetryNames) {
		return fmt.Sprintf("Symmetry(%d)", int(s))
	}
	return symmetryNames[s]
}

func (s Symmetry) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Symmetry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "Normal":
		*s = SymmetryNormal
	case "Inverse":
		*s = SymmetryInverse
	case "Symmetrical":
		*s = SymmetrySymmetrical
	default:
		return fmt.Errorf("wfc: unknown symmetry %q", name)
	}
	return nil
}

// Connector labels one horizontal face of a tile. Two faces fit
// together only when their ids match and their symmetries pair up.
type Connector struct {
	ID       int64    `json:"id"`
	Symmetry Symmetry `json:"symmetry"`
}

// Inverse returns the connector as seen in a mirror.
func (c Connector) Inverse() Connector {
	switch c.Symmetry {
	case SymmetryNormal:
		c.Symmetry = SymmetryInverse
	case SymmetryInverse:
		c.Symmetry = SymmetryNormal
	}
	return c
}

// Fits reports whether c may abut o across a shared edge.
func (c Connector) Fits(o Connector) bool {
	if c.ID != o.ID {
		return false
	}
	switch c.Symmetry {
	case SymmetryNormal:
		return o.Symmetry == SymmetryInverse
	case SymmetryInverse:
		return o.Symmetry == SymmetryNormal
	default:
		return o.Symmetry == SymmetrySymmetrical
	}
}

// VerticalConnector labels an Up or Down face. The rotation index
// locks stacked tiles to the same orientation: floors and ceilings
// may not rotate independently of their stacked partners.
type VerticalConnector struct {
	Connector
	Rotation int `json:"rotation"`
}

// Fits reports whether c may sit against o across a vertical edge.
func (c VerticalConnector) Fits(o VerticalConnector) bool {
	return c.Connector.Fits(o.Connector) && c.Rotation == o.Rotation
}

// rotated advances the rotation index one quarter turn. A Symmetrical
// vertical face has no orientation, so its index stays put — a tile
// that is otherwise rotation-invariant generates no rotation
// variants.
func (c VerticalConnector) rotated() VerticalConnector {
	if c.Symmetry != SymmetrySymmetrical {
		c.Rotation = (c.Rotation + 1) % 4
	}
	return c
}

// Connectors holds the connector of every face of one tile.
type Connectors struct {
	Left  Connector         `json:"left"`
	Right Connector         `json:"right"`
	Front Connector         `json:"front"`
	Back  Connector         `json:"back"`
	Down  VerticalConnector `json:"down"`
	Up    VerticalConnector `json:"up"`
}

func (c Connectors) rotated90() Connectors {
	return Connectors{
		Left:  c.Back,
		Right: c.Front,
		Front: c.Left,
		Back:  c.Right,
		Down:  c.Down.rotated(),
		Up:    c.Up.rotated(),
	}
}

// Rotated returns the connectors of the tile rotated about the
// vertical axis, clockwise looking down. Vertical connectors keep
// their ids; oriented (Normal or Inverse) ones advance their rotation
// index one step per quarter turn, Symmetrical ones keep it.
func (c Connectors) Rotated(r Rotation) Connectors {
	out := c
	for i := 0; i < int(r); i++ {
		out = out.rotated90()
	}
	return out
}

// Reflected returns the connectors mirrored across the given axis.
// Every horizontal pattern changes hands; the pair along the axis
// swaps places. Vertical connectors are untouched.
func (c Connectors) Reflected(a Axis) Connectors {
	switch a {
	case AxisX:
		return Connectors{
			Left:  c.Left.Inverse(),
			Right: c.Right.Inverse(),
			Front: c.Back.Inverse(),
			Back:  c.Front.Inverse(),
			Down:  c.Down,
			Up:    c.Up,
		}
	case AxisY:
		return Connectors{
			Left:  c.Right.Inverse(),
			Right: c.Left.Inverse(),
			Front: c.Front.Inverse(),
			Back:  c.Back.Inverse(),
			Down:  c.Down,
			Up:    c.Up,
		}
	}
	panic(fmt.Sprintf("wfc: unknown axis %d", int(a)))
}

// Horizontal returns the connector on a horizontal face.
func (c Connectors) Horizontal(f Face) Connector {
	switch f {
	case FaceLeft:
		return c.Left
	case FaceRight:
		return c.Right
	case FaceFront:
		return c.Front
	case FaceBack:
		return c.Back
	}
	panic("wfc: not a horizontal face: " + f.String())
}

// Vertical returns the connector on a vertical face.
func (c Connectors) Vertical(f Face) VerticalConnector {
	switch f {
	case FaceDown:
		return c.Down
	case FaceUp:
		return c.Up
	}
	panic("wfc: not a vertical face: " + f.String())
}

// Compatible reports whether a tile with connectors o may be placed
// on the f side of a tile with connectors c.
func (c Connectors) Compatible(o Connectors, f Face) bool {
	if f.Vertical() {
		return c.Vertical(f).Fits(o.Vertical(f.Opposite()))
	}
	return c.Horizontal(f).Fits(o.Horizontal(f.Opposite()))
}
