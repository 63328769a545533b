package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JibranRasheed/NCDK-sub001/internal/testutil"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

type fixture struct {
	g     *molecule.MolecularGraph
	atoms []*molecule.Atom
}

func newFixture(t *testing.T, symbols ...string) *fixture {
	t.Helper()
	f := &fixture{g: molecule.NewMolecularGraph("mixture")}
	for _, s := range symbols {
		a := molecule.NewAtom(s)
		_, err := f.g.AddAtom(a)
		require.NoError(t, err)
		f.atoms = append(f.atoms, a)
	}
	return f
}

func (f *fixture) bond(t *testing.T, i, j int, order molecule.BondOrder) *molecule.Bond {
	t.Helper()
	b, err := f.g.AddBond(f.atoms[i], f.atoms[j], order)
	require.NoError(t, err)
	return b
}

func newTestPartitioner() (*Partitioner, *testutil.MockLogger, *testutil.RecordingObserver) {
	logger := testutil.NewMockLogger()
	obs := testutil.NewRecordingObserver()
	return NewPartitioner(logger, obs), logger, obs
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name   string
		adj    [][]int
		labels []int
		n      int
	}{
		{"empty", nil, []int{}, 0},
		{"single", [][]int{{}}, []int{1}, 1},
		{"two isolated", [][]int{{}, {}}, []int{1, 2}, 2},
		{"interleaved", [][]int{{2}, {3}, {0}, {1}}, []int{1, 2, 1, 2}, 2},
		{"chain", [][]int{{1}, {0, 2}, {1}}, []int{1, 1, 1}, 1},
		{"out of range neighbour ignored", [][]int{{5}, {}}, []int{1, 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, n := Label(tt.adj)
			assert.Equal(t, tt.labels, labels)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestPartition_TwoIsolatedAtoms(t *testing.T) {
	f := newFixture(t, "Na", "Cl")
	p, _, _ := newTestPartitioner()

	res, err := p.Partition(f.g)
	require.NoError(t, err)
	require.Len(t, res.Fragments, 2)
	assert.Equal(t, []int{1, 2}, res.Components)
	assert.Same(t, f.atoms[0], res.Fragments[0].Atom(0))
	assert.Same(t, f.atoms[1], res.Fragments[1].Atom(0))
	assert.Equal(t, 1, res.Fragments[0].AtomCount())
	assert.Equal(t, 1, res.Fragments[1].AtomCount())
}

func TestPartition_TrivialGraphIsOneComponent(t *testing.T) {
	f := newFixture(t, "C", "O")
	f.bond(t, 0, 1, molecule.OrderSingle)
	p, _, _ := newTestPartitioner()

	res, err := p.Partition(f.g)
	require.NoError(t, err)
	require.Len(t, res.Fragments, 1)
	assert.Equal(t, []int{1, 1}, res.Components)
	assert.Equal(t, 1, res.Fragments[0].BondCount())
	assert.Equal(t, "mixture", res.Fragments[0].Title())
}

func TestPartition_EmptyGraph(t *testing.T) {
	p, _, _ := newTestPartitioner()
	res, err := p.Partition(molecule.NewMolecularGraph(""))
	require.NoError(t, err)
	assert.Empty(t, res.Fragments)
	assert.Empty(t, res.Components)
}

func TestPartition_RehomesStereo(t *testing.T) {
	// C(F)(Cl)(Br)I . F/C=C/F . O
	f := newFixture(t, "C", "F", "Cl", "Br", "I", "F", "C", "C", "F", "O")
	for _, j := range []int{1, 2, 3, 4} {
		f.bond(t, 0, j, molecule.OrderSingle)
	}
	r0 := f.bond(t, 5, 6, molecule.OrderSingle)
	db := f.bond(t, 6, 7, molecule.OrderDouble)
	r1 := f.bond(t, 7, 8, molecule.OrderSingle)

	th := &molecule.Tetrahedral{
		Focus:     f.atoms[0],
		Neighbors: [4]*molecule.Atom{f.atoms[1], f.atoms[2], f.atoms[3], f.atoms[4]},
		Winding:   molecule.Clockwise,
	}
	dbs := &molecule.DoubleBondStereo{Bond: db, Refs: [2]*molecule.Bond{r0, r1}, Conformation: molecule.Opposite}
	require.NoError(t, f.g.AddStereo(th))
	require.NoError(t, f.g.AddStereo(dbs))

	p, _, obs := newTestPartitioner()
	res, err := p.Partition(f.g)
	require.NoError(t, err)

	require.Len(t, res.Fragments, 3)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 2, 2, 2, 2, 3}, res.Components)
	assert.Equal(t, []molecule.StereoElement{th}, res.Fragments[0].StereoElements())
	assert.Equal(t, []molecule.StereoElement{dbs}, res.Fragments[1].StereoElements())
	assert.Empty(t, res.Fragments[2].StereoElements())
	assert.Equal(t, 4, res.Fragments[0].BondCount())
	assert.Equal(t, 3, res.Fragments[1].BondCount())
	assert.Equal(t, 0, obs.TotalDropped())

	assert.Len(t, f.g.StereoElements(), 2, "input graph is left intact")
}

func TestPartition_ElectronsFollowAtoms(t *testing.T) {
	f := newFixture(t, "O", "N", "C")
	f.bond(t, 1, 2, molecule.OrderSingle)
	require.NoError(t, f.g.AddLonePair(f.atoms[0]))
	require.NoError(t, f.g.AddLonePair(f.atoms[0]))
	require.NoError(t, f.g.AddSingleElectron(f.atoms[1]))

	p, _, obs := newTestPartitioner()
	res, err := p.Partition(f.g)
	require.NoError(t, err)
	assert.Equal(t, 0, obs.TotalDropped())

	require.Len(t, res.Fragments, 2)
	assert.Len(t, res.Fragments[0].LonePairs(), 2)
	assert.Empty(t, res.Fragments[0].SingleElectrons())
	assert.Empty(t, res.Fragments[1].LonePairs())
	require.Len(t, res.Fragments[1].SingleElectrons(), 1)
	assert.Same(t, f.atoms[1], res.Fragments[1].SingleElectrons()[0].Atom)
}

func TestPartition_OtherVariantFollowsFocus(t *testing.T) {
	f := newFixture(t, "C", "C", "O")
	f.bond(t, 0, 1, molecule.OrderSingle)
	other := &molecule.Other{Name: "atropisomer", Focus: f.atoms[2], Config: 1}
	require.NoError(t, f.g.AddStereo(other))

	p, _, _ := newTestPartitioner()
	res, err := p.Partition(f.g)
	require.NoError(t, err)
	require.Len(t, res.Fragments, 2)
	assert.Equal(t, []molecule.StereoElement{other}, res.Fragments[1].StereoElements())
}

// wrappedCenter is a stereo type the partitioner has no case for.
type wrappedCenter struct {
	*molecule.Tetrahedral
}

func TestPartition_UnknownVariantWarns(t *testing.T) {
	f := newFixture(t, "C", "F", "Cl", "Br", "I")
	for _, j := range []int{1, 2, 3, 4} {
		f.bond(t, 0, j, molecule.OrderSingle)
	}
	w := wrappedCenter{&molecule.Tetrahedral{
		Focus:     f.atoms[0],
		Neighbors: [4]*molecule.Atom{f.atoms[1], f.atoms[2], f.atoms[3], f.atoms[4]},
	}}
	require.NoError(t, f.g.AddStereo(w))

	p, logger, obs := newTestPartitioner()
	res, err := p.Partition(f.g)
	require.NoError(t, err)

	require.Len(t, res.Fragments, 1)
	assert.Empty(t, res.Fragments[0].StereoElements())
	assert.True(t, logger.HasMessage("warn", "stereo element not re-homed"))
	assert.Equal(t, 1, obs.DroppedCount(ReasonUnknownVariant))
}

func TestPartitionWith_SpanningBondDropped(t *testing.T) {
	f := newFixture(t, "C", "C", "C", "C")
	r0 := f.bond(t, 0, 1, molecule.OrderSingle)
	db := f.bond(t, 1, 2, molecule.OrderDouble)
	r1 := f.bond(t, 2, 3, molecule.OrderSingle)
	require.NoError(t, f.g.AddStereo(&molecule.DoubleBondStereo{
		Bond: db, Refs: [2]*molecule.Bond{r0, r1}, Conformation: molecule.Together,
	}))

	// An adjacency that disagrees with the bond table.
	adj := [][]int{{1}, {0}, {3}, {2}}
	p, _, obs := newTestPartitioner()
	res, err := p.PartitionWith(f.g, adj)
	require.NoError(t, err)

	require.Len(t, res.Fragments, 2)
	assert.Equal(t, 1, res.Fragments[0].BondCount())
	assert.Equal(t, 1, res.Fragments[1].BondCount())
	assert.Empty(t, res.Fragments[0].StereoElements())
	assert.Empty(t, res.Fragments[1].StereoElements())
	assert.Equal(t, 1, obs.DroppedCount(ReasonSpanningBond))
	assert.Equal(t, 1, obs.DroppedCount(ReasonSplitDoubleBond))
}

func TestPartition_InvalidInput(t *testing.T) {
	p, _, _ := newTestPartitioner()

	_, err := p.Partition(nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGraph))

	f := newFixture(t, "C", "C")
	_, err = p.PartitionWith(f.g, [][]int{{}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGraph))
}
