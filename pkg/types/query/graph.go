package query

import (
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

// QueryGraph is a compiled substructure pattern.  Its topology is held in a
// molecule.MolecularGraph; atom and bond predicates, atom-map numbers and
// component groups live in side tables keyed by the topology's atoms and
// bonds.
type QueryGraph struct {
	g        *molecule.MolecularGraph
	atomExpr map[*molecule.Atom]*Expr
	bondExpr map[*molecule.Bond]*Expr
	atomMap  map[*molecule.Atom]int
	groups   map[*molecule.Atom]int
}

// NewQueryGraph returns an empty pattern.
func NewQueryGraph() *QueryGraph {
	return &QueryGraph{
		g:        molecule.NewMolecularGraph(""),
		atomExpr: make(map[*molecule.Atom]*Expr),
		bondExpr: make(map[*molecule.Bond]*Expr),
		atomMap:  make(map[*molecule.Atom]int),
		groups:   make(map[*molecule.Atom]int),
	}
}

// Graph exposes the pattern topology, including its stereo elements.
func (q *QueryGraph) Graph() *molecule.MolecularGraph { return q.g }

// AddAtom creates a query atom holding expr.
func (q *QueryGraph) AddAtom(expr *Expr) (*molecule.Atom, error) {
	if expr == nil {
		expr = True()
	}
	a := &molecule.Atom{Symbol: expr.Symbol(), Aromatic: expr.IsAromaticSymbol()}
	if _, err := q.g.AddAtom(a); err != nil {
		return nil, err
	}
	q.atomExpr[a] = expr
	return a, nil
}

// AddBond creates a query bond holding expr between two pattern atoms.
func (q *QueryGraph) AddBond(begin, end *molecule.Atom, expr *Expr) (*molecule.Bond, error) {
	if expr == nil {
		expr = Primitive(OpSingleOrAromatic, 0)
	}
	b, err := q.g.AddBond(begin, end, orderOf(expr))
	if err != nil {
		return nil, err
	}
	b.Aromatic = expr.Op == OpAromaticBond
	switch expr.Op {
	case OpUpBond:
		b.Stereo = molecule.StereoUp
	case OpDownBond:
		b.Stereo = molecule.StereoDown
	}
	q.bondExpr[b] = expr
	return b, nil
}

func orderOf(e *Expr) molecule.BondOrder {
	switch e.Op {
	case OpOrder:
		return molecule.BondOrder(e.Value)
	case OpUpBond, OpDownBond, OpSingleOrAromatic:
		return molecule.OrderSingle
	}
	return molecule.OrderUnset
}

// AtomExpr returns the predicate of a, or nil for a foreign atom.
func (q *QueryGraph) AtomExpr(a *molecule.Atom) *Expr { return q.atomExpr[a] }

// BondExpr returns the predicate of b, or nil for a foreign bond.
func (q *QueryGraph) BondExpr(b *molecule.Bond) *Expr { return q.bondExpr[b] }

// SetAtomExpr replaces the predicate of a pattern atom in place.  The atom's
// map number and component group are kept.
func (q *QueryGraph) SetAtomExpr(a *molecule.Atom, expr *Expr) error {
	if !q.g.Contains(a) {
		return errors.InvalidGraph("predicate for a foreign query atom")
	}
	q.atomExpr[a] = expr
	return nil
}

// SetAtomMap records an atom-class mapping number.
func (q *QueryGraph) SetAtomMap(a *molecule.Atom, n int) {
	if n == 0 {
		delete(q.atomMap, a)
	} else {
		q.atomMap[a] = n
	}
	a.AtomClass = n
}

// AtomMap returns the mapping number of a, 0 when unset.
func (q *QueryGraph) AtomMap(a *molecule.Atom) int { return q.atomMap[a] }

// SetComponentGroup tags a with a component-grouping id.
func (q *QueryGraph) SetComponentGroup(a *molecule.Atom, id int) {
	if id == 0 {
		delete(q.groups, a)
		return
	}
	q.groups[a] = id
}

// ComponentGroup returns the grouping id of a, 0 when untagged.
func (q *QueryGraph) ComponentGroup(a *molecule.Atom) int { return q.groups[a] }

// HasComponentGroups reports whether any atom is tagged.
func (q *QueryGraph) HasComponentGroups() bool { return len(q.groups) > 0 }

// ComponentGroups returns, per atom index, the grouping id (0 for untagged).
// It returns nil when no atom is tagged.
func (q *QueryGraph) ComponentGroups() []int {
	if len(q.groups) == 0 {
		return nil
	}
	out := make([]int, q.g.AtomCount())
	for a, id := range q.groups {
		out[q.g.IndexOf(a)] = id
	}
	return out
}

// Merge moves every atom, bond, stereo element and side-table entry of other
// into q.  other must not be used afterwards.
func (q *QueryGraph) Merge(other *QueryGraph) error {
	og := other.g
	for _, a := range og.Atoms() {
		if _, err := q.g.AddAtom(a); err != nil {
			return err
		}
		q.atomExpr[a] = other.atomExpr[a]
		if n, ok := other.atomMap[a]; ok {
			q.atomMap[a] = n
		}
		if id, ok := other.groups[a]; ok {
			q.groups[a] = id
		}
	}
	for _, b := range og.Bonds() {
		if err := q.g.AttachBond(b); err != nil {
			return err
		}
		q.bondExpr[b] = other.bondExpr[b]
	}
	for _, e := range og.StereoElements() {
		if err := q.g.AddStereo(e); err != nil {
			return err
		}
	}
	return nil
}
