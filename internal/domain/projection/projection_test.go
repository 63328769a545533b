package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JibranRasheed/NCDK-sub001/internal/testutil"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

type drawing struct {
	g     *molecule.MolecularGraph
	atoms []*molecule.Atom
}

func newDrawing() *drawing {
	return &drawing{g: molecule.NewMolecularGraph("drawing")}
}

func (d *drawing) atom(t *testing.T, symbol string, x, y float64) int {
	t.Helper()
	a := molecule.NewAtom(symbol)
	a.Point2d = &molecule.Point2d{X: x, Y: y}
	idx, err := d.g.AddAtom(a)
	require.NoError(t, err)
	d.atoms = append(d.atoms, a)
	return idx
}

func (d *drawing) bond(t *testing.T, i, j int) *molecule.Bond {
	t.Helper()
	b, err := d.g.AddBond(d.atoms[i], d.atoms[j], molecule.OrderSingle)
	require.NoError(t, err)
	return b
}

// ring draws and closes a ring through the given points.
func (d *drawing) ring(t *testing.T, points ...[2]float64) []int {
	t.Helper()
	idx := make([]int, len(points))
	for i, p := range points {
		idx[i] = d.atom(t, "C", p[0], p[1])
	}
	for i := range idx {
		d.bond(t, idx[i], idx[(i+1)%len(idx)])
	}
	return idx
}

// hexagon returns regular-hexagon vertices starting at (1,0), rotated by
// offset degrees and listed clockwise, or anticlockwise when ccw is set.
func hexagon(offset float64, ccw bool) [][2]float64 {
	step := -60.0
	if ccw {
		step = 60
	}
	pts := make([][2]float64, 6)
	for k := range pts {
		rad := (offset + step*float64(k)) * math.Pi / 180
		pts[k] = [2]float64{math.Cos(rad), math.Sin(rad)}
	}
	return pts
}

// haworth draws a flat hexagon with an up and a down substituent on vertex 0
// and returns the substituent indices.
func haworth(t *testing.T, ccw bool) (*drawing, int, int) {
	t.Helper()
	d := newDrawing()
	d.ring(t, hexagon(0, ccw)...)
	up := d.atom(t, "O", 1, 1)
	down := d.atom(t, "H", 1, -1)
	d.bond(t, 0, up)
	d.bond(t, 0, down)
	return d, up, down
}

func newTestRecognizer(opts Options) (*Recognizer, *testutil.MockLogger, *testutil.RecordingObserver) {
	logger := testutil.NewMockLogger()
	obs := testutil.NewRecordingObserver()
	return NewRecognizer(logger, obs, opts), logger, obs
}

func TestTurns(t *testing.T) {
	tests := []struct {
		name   string
		points []molecule.Point2d
		want   string
		ok     bool
	}{
		{"anticlockwise square", []molecule.Point2d{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, "LLLL", true},
		{"clockwise square", []molecule.Point2d{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}, "RRRR", true},
		{"collinear", []molecule.Point2d{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 1}}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := turns(tt.points)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, string(ts))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		seq        string
		projection Projection
		winding    molecule.Winding
	}{
		{"RRRRR", Haworth, molecule.Clockwise},
		{"LLLLLL", Haworth, molecule.Anticlockwise},
		{"RRRRRRR", Haworth, molecule.Clockwise},
		{"RRLRRL", Chair, molecule.Clockwise},
		{"LRLLRL", Chair, molecule.Anticlockwise},
		{"LLLLRR", Boat, molecule.Anticlockwise},
		{"RRRLLR", Boat, molecule.Clockwise},
	}
	for _, tt := range tests {
		t.Run(tt.seq, func(t *testing.T) {
			s, ok := classify([]turn(tt.seq))
			require.True(t, ok)
			assert.Equal(t, tt.projection, s.projection)
			assert.Equal(t, tt.winding, s.winding)
		})
	}

	for _, seq := range []string{"RRRR", "RRRRRRRR", "RLRLRL", "RRRRRL", "LRRRRR"} {
		_, ok := classify([]turn(seq))
		assert.False(t, ok, seq)
	}
}

func TestRecognize_HaworthHexagon(t *testing.T) {
	d, up, down := haworth(t, false)
	r, _, obs := newTestRecognizer(DefaultOptions())

	found, err := r.Recognize(d.g, Indices(0))
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Same(t, d.atoms[0], found[0].Focus)
	assert.Equal(t, [4]*molecule.Atom{d.atoms[up], d.atoms[5], d.atoms[down], d.atoms[1]}, found[0].Neighbors)
	assert.Equal(t, molecule.Clockwise, found[0].Winding)
	assert.Equal(t, 1, obs.ClassifiedCount(string(Haworth)))
	assert.Equal(t, 1, obs.EmittedCount(molecule.KindTetrahedral))
	assert.Equal(t, 0, obs.TotalDropped())
}

func TestRecognize_HaworthAnticlockwise(t *testing.T) {
	d, up, down := haworth(t, true)
	r, _, _ := newTestRecognizer(DefaultOptions())

	found, err := r.Recognize(d.g, Indices(0))
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Equal(t, [4]*molecule.Atom{d.atoms[up], d.atoms[5], d.atoms[down], d.atoms[1]}, found[0].Neighbors)
	assert.Equal(t, molecule.Anticlockwise, found[0].Winding)
}

func TestRecognize_SkipsUnclassifiedAtoms(t *testing.T) {
	d, _, _ := haworth(t, false)
	r, _, obs := newTestRecognizer(DefaultOptions())

	found, err := r.Recognize(d.g, Indices())
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, 1, obs.ClassifiedCount(string(Haworth)))
}

func TestRecognize_RejectedRings(t *testing.T) {
	tests := []struct {
		name   string
		draw   func(t *testing.T) *drawing
		reason string
	}{
		{
			name: "tilted haworth",
			draw: func(t *testing.T) *drawing {
				d := newDrawing()
				d.ring(t, hexagon(15, false)...)
				top, bottom := d.atom(t, "O", 0.97, 1.26), d.atom(t, "H", 0.97, -0.74)
				d.bond(t, 0, top)
				d.bond(t, 0, bottom)
				return d
			},
			reason: ReasonNotHorizontal,
		},
		{
			name: "slanted substituent",
			draw: func(t *testing.T) *drawing {
				d := newDrawing()
				d.ring(t, hexagon(0, false)...)
				top, bottom := d.atom(t, "O", 1.5, 1), d.atom(t, "H", 1, -1)
				d.bond(t, 0, top)
				d.bond(t, 0, bottom)
				return d
			},
			reason: ReasonOffVertical,
		},
		{
			name: "single substituent",
			draw: func(t *testing.T) *drawing {
				d := newDrawing()
				d.ring(t, hexagon(0, false)...)
				d.bond(t, 0, d.atom(t, "O", 1, 1))
				return d
			},
			reason: ReasonTooFewSubstituents,
		},
		{
			name: "two up substituents",
			draw: func(t *testing.T) *drawing {
				d := newDrawing()
				d.ring(t, hexagon(0, false)...)
				d.bond(t, 0, d.atom(t, "O", 1, 1))
				d.bond(t, 0, d.atom(t, "N", 1, 2))
				return d
			},
			reason: ReasonDuplicateSubstituent,
		},
		{
			name: "collinear ring",
			draw: func(t *testing.T) *drawing {
				d := newDrawing()
				d.ring(t, [2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0}, [2]float64{2, 1}, [2]float64{0, 1})
				return d
			},
			reason: ReasonCollinear,
		},
		{
			name: "wedged substituent",
			draw: func(t *testing.T) *drawing {
				d := newDrawing()
				d.ring(t, hexagon(0, false)...)
				top, bottom := d.atom(t, "O", 1, 1), d.atom(t, "H", 1, -1)
				d.bond(t, 0, top).Stereo = molecule.StereoUp
				d.bond(t, 0, bottom)
				return d
			},
			reason: ReasonNonPlainBond,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.draw(t)
			r, logger, obs := newTestRecognizer(DefaultOptions())

			found, err := r.Recognize(d.g, Indices(0))
			require.NoError(t, err)
			assert.Empty(t, found)
			assert.Equal(t, 1, obs.DroppedCount(tt.reason))
			assert.True(t, logger.HasMessage("debug", "stereo omitted"))
		})
	}
}

func TestRecognize_SkipsCrowdedVertex(t *testing.T) {
	d, up, down := haworth(t, false)
	// vertex 3 sits at (-1,0) and carries three substituents
	d.bond(t, 3, d.atom(t, "O", -1, 1))
	d.bond(t, 3, d.atom(t, "N", -1, -1))
	d.bond(t, 3, d.atom(t, "F", -2, 0))
	r, _, obs := newTestRecognizer(DefaultOptions())

	found, err := r.Recognize(d.g, Indices(0, 3))
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Same(t, d.atoms[0], found[0].Focus)
	assert.Equal(t, [4]*molecule.Atom{d.atoms[up], d.atoms[5], d.atoms[down], d.atoms[1]}, found[0].Neighbors)
	assert.Equal(t, 0, obs.TotalDropped())
}

func TestRecognize_MissingCoordinates(t *testing.T) {
	d, _, _ := haworth(t, false)
	d.atoms[3].Point2d = nil
	r, _, obs := newTestRecognizer(DefaultOptions())

	found, err := r.Recognize(d.g, Indices(0))
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, 1, obs.DroppedCount(ReasonMissingCoordinates))
}

func TestRecognize_Chair(t *testing.T) {
	d := newDrawing()
	d.ring(t,
		[2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 0.6},
		[2]float64{3, 1.2}, [2]float64{2, 0.2}, [2]float64{1, 0.6})
	axial := d.atom(t, "O", 0, 1)
	equatorial := d.atom(t, "H", -1, -0.3)
	d.bond(t, 0, axial)
	d.bond(t, 0, equatorial)

	r, _, obs := newTestRecognizer(DefaultOptions())
	found, err := r.Recognize(d.g, Indices(0))
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Equal(t, [4]*molecule.Atom{d.atoms[axial], d.atoms[5], d.atoms[equatorial], d.atoms[1]}, found[0].Neighbors)
	assert.Equal(t, molecule.Clockwise, found[0].Winding)
	assert.Equal(t, 1, obs.ClassifiedCount(string(Chair)))
}

func TestRecognize_BoatClassifiedNotEmitted(t *testing.T) {
	d := newDrawing()
	d.ring(t,
		[2]float64{0, 1}, [2]float64{1, 0}, [2]float64{2, 0},
		[2]float64{3, 1}, [2]float64{2, 0.4}, [2]float64{1, 0.4})
	d.bond(t, 0, d.atom(t, "O", 0, 2))
	d.bond(t, 0, d.atom(t, "H", -1, 1))

	r, _, obs := newTestRecognizer(DefaultOptions())
	found, err := r.Recognize(d.g, Indices(0))
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, 1, obs.ClassifiedCount(string(Boat)))
}

func TestRecognize_DisabledProjection(t *testing.T) {
	d, _, _ := haworth(t, false)
	r, _, obs := newTestRecognizer(Options{Projections: []Projection{Chair}})

	found, err := r.Recognize(d.g, Indices(0))
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, 1, obs.ClassifiedCount(string(Haworth)))
}

func TestRecognize_RingSizeBounds(t *testing.T) {
	d, _, _ := haworth(t, false)
	r, _, obs := newTestRecognizer(Options{MinRingSize: 5, MaxRingSize: 5})

	found, err := r.Recognize(d.g, Indices(0))
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, 0, obs.ClassifiedCount(string(Haworth)))
}

func TestRecognize_InvalidInput(t *testing.T) {
	r, _, _ := newTestRecognizer(DefaultOptions())

	_, err := r.Recognize(nil, Indices())
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGraph))

	_, err = r.Recognize(molecule.NewMolecularGraph(""), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestPerceive_LeavesInputIntact(t *testing.T) {
	d, _, _ := haworth(t, false)
	r, _, _ := newTestRecognizer(DefaultOptions())

	out, found, err := r.Perceive(d.g, Indices(0))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Len(t, out.StereoElements(), 1)
	assert.Empty(t, d.g.StereoElements())
	assert.Same(t, d.atoms[0], out.Atom(0))
}

func TestPerceive_WithPotentialStereocenters(t *testing.T) {
	d := newDrawing()
	d.ring(t, hexagon(0, false)...)
	for i := 1; i < 6; i++ {
		d.atoms[i].ImplicitH = 2
	}
	d.atoms[1].ImplicitH = 1
	d.bond(t, 0, d.atom(t, "O", 1, 1))
	d.bond(t, 0, d.atom(t, "Cl", 1, -1))
	n := d.atom(t, "N", 0.5, -1.866)
	d.bond(t, 1, n)

	r, _, _ := newTestRecognizer(DefaultOptions())
	out, found, err := r.Perceive(d.g, PotentialStereocenters(d.g))
	require.NoError(t, err)

	require.Len(t, found, 2)
	assert.Same(t, d.atoms[0], found[0].Focus)
	assert.Same(t, d.atoms[1], found[1].Focus)
	assert.Equal(t, [4]*molecule.Atom{d.atoms[1], d.atoms[0], d.atoms[n], d.atoms[2]}, found[1].Neighbors)
	assert.Len(t, out.StereoElements(), 2)
}
