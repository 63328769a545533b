// Package partition splits a molecular graph into its connected fragments.
package partition

import (
	"fmt"

	"github.com/JibranRasheed/NCDK-sub001/internal/domain/observe"
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/logging"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

// Reasons reported when an element or bond does not reach any fragment.
const (
	ReasonSpanningBond     = "spanning_bond"
	ReasonSplitDoubleBond  = "split_double_bond"
	ReasonUnknownVariant   = "unknown_variant"
	ReasonForeignReference = "foreign_reference"
)

// Result holds the fragments in label order and, per input atom, the 1-based
// label of the fragment it went to.
type Result struct {
	Fragments  []*molecule.MolecularGraph
	Components []int
}

// Partitioner is stateless and safe for concurrent use.
type Partitioner struct {
	logger   logging.Logger
	observer observe.Observer
}

// NewPartitioner returns a Partitioner.  Nil collaborators are replaced by
// nops.
func NewPartitioner(logger logging.Logger, observer observe.Observer) *Partitioner {
	return &Partitioner{
		logger:   logging.OrNop(logger).Named("partition"),
		observer: observe.OrNop(observer),
	}
}

// Label assigns 1-based connected-component labels over an undirected
// adjacency list by breadth-first search from each unlabelled vertex in index
// order.  It returns the labels and the number of components.
func Label(adj [][]int) ([]int, int) {
	labels := make([]int, len(adj))
	queue := make([]int, 0, len(adj))
	n := 0
	for start := range adj {
		if labels[start] != 0 {
			continue
		}
		n++
		labels[start] = n
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, w := range adj[v] {
				if w < 0 || w >= len(adj) || labels[w] != 0 {
					continue
				}
				labels[w] = n
				queue = append(queue, w)
			}
		}
	}
	return labels, n
}

// Partition splits g using its own adjacency.
func (p *Partitioner) Partition(g *molecule.MolecularGraph) (*Result, error) {
	if g == nil {
		return nil, errors.InvalidGraph("graph is nil")
	}
	return p.PartitionWith(g, g.AdjacencyList())
}

// PartitionWith splits g using a caller-supplied adjacency list, which must
// have one entry per atom.  Fragments share atom and bond values with g; g
// itself is not modified.
func (p *Partitioner) PartitionWith(g *molecule.MolecularGraph, adj [][]int) (*Result, error) {
	if g == nil {
		return nil, errors.InvalidGraph("graph is nil")
	}
	if len(adj) != g.AtomCount() {
		return nil, errors.InvalidGraph(fmt.Sprintf("adjacency has %d entries for %d atoms", len(adj), g.AtomCount()))
	}
	track := observe.NewTracker(observe.SourcePartition, p.logger, p.observer)

	labels, n := Label(adj)
	frags := make([]*molecule.MolecularGraph, n)
	for i := range frags {
		frags[i] = molecule.NewMolecularGraph(g.Title())
	}
	fragOf := func(a *molecule.Atom) int {
		idx := g.IndexOf(a)
		if idx < 0 {
			return -1
		}
		return labels[idx] - 1
	}

	for i, a := range g.Atoms() {
		if _, err := frags[labels[i]-1].AddAtom(a); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "add fragment atom")
		}
	}
	for _, b := range g.Bonds() {
		fb, fe := fragOf(b.Begin()), fragOf(b.End())
		if fb != fe {
			track.Drop(ReasonSpanningBond, logging.Int("bond", g.BondIndexOf(b)))
			continue
		}
		if err := frags[fb].AttachBond(b); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "add fragment bond")
		}
	}
	for _, lp := range g.LonePairs() {
		if f := fragOf(lp.Atom); f >= 0 {
			if err := frags[f].AddLonePair(lp.Atom); err != nil {
				return nil, errors.Wrap(err, errors.CodeInternal, "add fragment lone pair")
			}
		}
	}
	for _, se := range g.SingleElectrons() {
		if f := fragOf(se.Atom); f >= 0 {
			if err := frags[f].AddSingleElectron(se.Atom); err != nil {
				return nil, errors.Wrap(err, errors.CodeInternal, "add fragment single electron")
			}
		}
	}

	for _, e := range g.StereoElements() {
		f := p.home(e, fragOf, track)
		if f < 0 {
			continue
		}
		if err := frags[f].AddStereo(e); err != nil {
			track.Drop(ReasonForeignReference, logging.String("kind", string(e.Kind())), logging.Err(err))
		}
	}

	return &Result{Fragments: frags, Components: labels}, nil
}

// home picks the fragment index for a stereo element, or -1 to drop it.
func (p *Partitioner) home(e molecule.StereoElement, fragOf func(*molecule.Atom) int, track observe.Tracker) int {
	switch se := e.(type) {
	case *molecule.Tetrahedral:
		return fragOf(se.Focus)
	case *molecule.ExtendedTetrahedral:
		return fragOf(se.Focus)
	case *molecule.SquarePlanar:
		return fragOf(se.Focus)
	case *molecule.TrigonalBipyramidal:
		return fragOf(se.Focus)
	case *molecule.Octahedral:
		return fragOf(se.Focus)
	case *molecule.DoubleBondStereo:
		fb, fe := fragOf(se.Bond.Begin()), fragOf(se.Bond.End())
		if fb != fe {
			track.Drop(ReasonSplitDoubleBond)
			return -1
		}
		return fb
	case *molecule.Other:
		if se.Focus != nil {
			return fragOf(se.Focus)
		}
		if len(se.Neighbors) > 0 {
			return fragOf(se.Neighbors[0])
		}
	}
	p.logger.Warn("stereo element not re-homed",
		logging.String("type", fmt.Sprintf("%T", e)),
		logging.String("kind", string(e.Kind())))
	track.Observer.Dropped(track.Source, ReasonUnknownVariant)
	return -1
}
