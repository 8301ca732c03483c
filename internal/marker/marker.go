// Package marker defines the user-placed sample regions on the panel image and
// translates them into concrete sample-point geometry.
package marker

import (
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Shape type discriminators as they appear in the config file.
const (
	TypePoint        = "point"
	TypeSevenSegment = "sevenSegment"
)

// ErrInvalidDefinition is returned when a marker definition fails validation.
var ErrInvalidDefinition = errors.New("invalid marker definition")

// Coord is a position normalized to the source image, each axis in [0,1].
type Coord struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
}

// XY converts the coordinate to a geometry vector.
func (c Coord) XY() geom.XY {
	return geom.XY{X: c.X, Y: c.Y}
}

func (c Coord) inUnitSquare() bool {
	return c.X >= 0 && c.X <= 1 && c.Y >= 0 && c.Y <= 1
}

// Definition is the config-file form of a marker. It carries the union of the
// fields of both shape kinds; Type selects which of them are meaningful.
type Definition struct {
	Name string `json:"name" mapstructure:"name"`
	Type string `json:"type" mapstructure:"type"`

	// Point markers
	Pos Coord `json:"pos" mapstructure:"pos"`

	// Seven-segment markers
	Start   Coord   `json:"start" mapstructure:"start"`
	End     Coord   `json:"end" mapstructure:"end"`
	Bottom  Coord   `json:"bottom" mapstructure:"bottom"`
	Digits  int     `json:"digits" mapstructure:"digits"`
	Spacing float64 `json:"spacing" mapstructure:"spacing"`

	// Size is the relative side length of the sample site, used for
	// visualization only, never for area sampling.
	Size float64 `json:"size" mapstructure:"size"`
}

// Validate checks marker consistency at configuration-load time. Geometry
// itself never validates, so anything rejected here cannot surface later as a
// degenerate decode.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: marker has no name", ErrInvalidDefinition)
	}

	switch d.Type {
	case TypePoint:
		if !d.Pos.inUnitSquare() {
			return fmt.Errorf("%w: marker %q position outside unit square", ErrInvalidDefinition, d.Name)
		}
	case TypeSevenSegment:
		for _, c := range []Coord{d.Start, d.End, d.Bottom} {
			if !c.inUnitSquare() {
				return fmt.Errorf("%w: marker %q corner outside unit square", ErrInvalidDefinition, d.Name)
			}
		}
		if d.Digits < 1 {
			return fmt.Errorf("%w: marker %q needs at least one digit", ErrInvalidDefinition, d.Name)
		}
		if d.Spacing < 0 {
			return fmt.Errorf("%w: marker %q has negative spacing", ErrInvalidDefinition, d.Name)
		}
		s := SevenSegment{
			Start:   d.Start.XY(),
			End:     d.End.XY(),
			Digits:  d.Digits,
			Spacing: d.Spacing,
		}
		if s.SegmentLength() <= 0 {
			return fmt.Errorf("%w: marker %q digit row too short for %d digits", ErrInvalidDefinition, d.Name, d.Digits)
		}
	default:
		return fmt.Errorf("%w: marker %q has unknown type %q", ErrInvalidDefinition, d.Name, d.Type)
	}

	return nil
}

// Compile converts a validated definition into a Marker with its shape variant.
func (d Definition) Compile() (Marker, error) {
	if err := d.Validate(); err != nil {
		return Marker{}, err
	}

	var shape Shape
	switch d.Type {
	case TypePoint:
		shape = Point{Pos: d.Pos.XY(), Size: d.Size}
	case TypeSevenSegment:
		shape = SevenSegment{
			Start:   d.Start.XY(),
			End:     d.End.XY(),
			Bottom:  d.Bottom.XY(),
			Digits:  d.Digits,
			Spacing: d.Spacing,
			Size:    d.Size,
		}
	}

	return Marker{Name: d.Name, Shape: shape}, nil
}

// Marker is a named sample region ready for a sampling pass.
type Marker struct {
	Name  string
	Shape Shape
}

// Shape is the closed set of marker geometries. Exactly Point and SevenSegment
// implement it.
type Shape interface {
	// Points returns the ordered sample sites for this shape. The slice is
	// built fresh on every call so marker edits take effect immediately.
	Points() []SamplePoint

	isShape()
}

// SamplePoint is a single sample site produced from a shape for one pass.
type SamplePoint struct {
	Pos  geom.XY
	Size float64
}

// Point samples a single location and decodes to a boolean.
type Point struct {
	Pos  geom.XY
	Size float64
}

func (Point) isShape() {}

// SevenSegment samples a row of seven-segment digit cells. Start->End is the
// digit-row axis, Bottom (relative to Start) spans the cell's perpendicular
// extent, so a skewed display can be followed by dragging Bottom.
type SevenSegment struct {
	Start   geom.XY
	End     geom.XY
	Bottom  geom.XY
	Digits  int
	Spacing float64
	Size    float64
}

func (SevenSegment) isShape() {}

// SegmentLength returns the per-digit cell length along the row axis.
func (s SevenSegment) SegmentLength() float64 {
	length := s.End.Sub(s.Start).Length()
	return (length - s.Spacing*float64(s.Digits-1)) / float64(s.Digits)
}
