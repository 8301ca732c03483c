package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSevenSegment() Definition {
	return Definition{
		Name:    "minute",
		Type:    TypeSevenSegment,
		Start:   Coord{X: 0.4, Y: 0.4},
		End:     Coord{X: 0.4, Y: 0.6},
		Bottom:  Coord{X: 0.45, Y: 0.4},
		Digits:  2,
		Spacing: 0.005,
		Size:    0.01,
	}
}

func TestDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr bool
	}{
		{
			name:   "valid seven segment",
			mutate: func(d *Definition) {},
		},
		{
			name: "valid point",
			mutate: func(d *Definition) {
				*d = Definition{Name: "door", Type: TypePoint, Pos: Coord{X: 0.5, Y: 0.5}, Size: 0.01}
			},
		},
		{
			name:    "missing name",
			mutate:  func(d *Definition) { d.Name = "" },
			wantErr: true,
		},
		{
			name:    "unknown type",
			mutate:  func(d *Definition) { d.Type = "circle" },
			wantErr: true,
		},
		{
			name:    "corner outside unit square",
			mutate:  func(d *Definition) { d.End = Coord{X: 1.2, Y: 0.6} },
			wantErr: true,
		},
		{
			name: "point outside unit square",
			mutate: func(d *Definition) {
				*d = Definition{Name: "door", Type: TypePoint, Pos: Coord{X: -0.1, Y: 0.5}}
			},
			wantErr: true,
		},
		{
			name:    "zero digits",
			mutate:  func(d *Definition) { d.Digits = 0 },
			wantErr: true,
		},
		{
			name:    "negative spacing",
			mutate:  func(d *Definition) { d.Spacing = -0.01 },
			wantErr: true,
		},
		{
			name: "row too short for digit count",
			mutate: func(d *Definition) {
				// 10 digits with 0.05 spacing cannot fit a 0.2 axis.
				d.Digits = 10
				d.Spacing = 0.05
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validSevenSegment()
			tt.mutate(&d)

			err := d.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidDefinition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefinitionCompile_Point(t *testing.T) {
	d := Definition{Name: "running", Type: TypePoint, Pos: Coord{X: 0.3, Y: 0.7}, Size: 0.02}

	m, err := d.Compile()
	require.NoError(t, err)

	assert.Equal(t, "running", m.Name)

	shape, ok := m.Shape.(Point)
	require.True(t, ok, "expected a Point shape")
	assert.Equal(t, 0.3, shape.Pos.X)
	assert.Equal(t, 0.7, shape.Pos.Y)
	assert.Equal(t, 0.02, shape.Size)
}

func TestDefinitionCompile_SevenSegment(t *testing.T) {
	d := validSevenSegment()

	m, err := d.Compile()
	require.NoError(t, err)

	shape, ok := m.Shape.(SevenSegment)
	require.True(t, ok, "expected a SevenSegment shape")
	assert.Equal(t, 2, shape.Digits)
	assert.Equal(t, 0.005, shape.Spacing)
	assert.Len(t, shape.Points(), 14)
}

func TestDefinitionCompile_Invalid(t *testing.T) {
	d := validSevenSegment()
	d.Digits = 0

	_, err := d.Compile()
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}
