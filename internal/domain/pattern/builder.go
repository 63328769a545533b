package pattern

import (
	"fmt"

	"github.com/JibranRasheed/NCDK-sub001/internal/domain/observe"
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/logging"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/query"
)

// Reasons reported when a pattern stereo element is omitted.
const (
	ReasonNeighborCount      = "neighbor_count"
	ReasonConflictingMarkers = "conflicting_markers"
	ReasonUnresolvedTerminal = "unresolved_terminal"
)

// Builder compiles syntax trees.  It keeps no state between calls; every
// pattern and every recursive sub-pattern is compiled against its own
// buildState, so a Builder is safe for concurrent use.
type Builder struct {
	logger   logging.Logger
	observer observe.Observer
}

// NewBuilder returns a Builder.  Nil collaborators are replaced by nops.
func NewBuilder(logger logging.Logger, observer observe.Observer) *Builder {
	return &Builder{
		logger:   logging.OrNop(logger).Named("pattern"),
		observer: observe.OrNop(observer),
	}
}

// ringEntry is a pending ring-closure digit.
type ringEntry struct {
	open  bool
	atom  *molecule.Atom
	bond  *query.Expr
	slots []int // position reserved in atom's neighbour list, if tracked
}

// chiralTrack records the order in which a chiral atom meets its neighbours.
// The atom itself appears once, standing for an implicit neighbour.
type chiralTrack struct {
	winding   molecule.Winding
	neighbors []*molecule.Atom
}

// buildState is owned by exactly one (sub)pattern compilation.
type buildState struct {
	q           *query.QueryGraph
	rings       []ringEntry
	chiral      map[*molecule.Atom]*chiralTrack
	chiralOrder []*molecule.Atom
	doubles     []*molecule.Bond
	track       observe.Tracker
}

func (b *Builder) newState() *buildState {
	return &buildState{
		q:      query.NewQueryGraph(),
		chiral: make(map[*molecule.Atom]*chiralTrack),
		track:  observe.NewTracker(observe.SourcePattern, b.logger, b.observer),
	}
}

// Compile builds the QueryGraph of one top-level pattern.
func (b *Builder) Compile(p *Pattern) (*query.QueryGraph, error) {
	if p == nil {
		return nil, errors.MalformedPattern("pattern is nil")
	}
	st := b.newState()
	if err := b.pattern(st, p); err != nil {
		return nil, err
	}
	return st.q, nil
}

// CompileReaction compiles each role group separately, tags every atom
// predicate with its role and merges the groups in reactant, agent, product
// order.
func (b *Builder) CompileReaction(r *Reaction) (*query.QueryGraph, error) {
	if r == nil {
		return nil, errors.MalformedPattern("reaction is nil")
	}
	merged := query.NewQueryGraph()
	groups := []struct {
		role query.Role
		p    *Pattern
	}{
		{query.RoleReactant, r.Reactants},
		{query.RoleAgent, r.Agents},
		{query.RoleProduct, r.Products},
	}
	for _, grp := range groups {
		if grp.p == nil {
			continue
		}
		q, err := b.Compile(grp.p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("%s group", grp.role))
		}
		role := query.ReactionRole(grp.role)
		for _, a := range q.Graph().Atoms() {
			if err := q.SetAtomExpr(a, query.And(q.AtomExpr(a), role)); err != nil {
				return nil, errors.Wrap(err, errors.CodeInternal, "tag reaction role")
			}
		}
		if err := merged.Merge(q); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "merge reaction group")
		}
	}
	return merged, nil
}

// pattern builds every component into st and then resolves stereo.
func (b *Builder) pattern(st *buildState, p *Pattern) error {
	for i, comp := range p.Components {
		if comp == nil || comp.Chain == nil {
			return errors.MalformedPattern(fmt.Sprintf("component %d is empty", i))
		}
		first := st.q.Graph().AtomCount()
		if err := b.chain(st, comp.Chain, nil, nil); err != nil {
			return err
		}
		if comp.Group != 0 {
			for _, a := range st.q.Graph().Atoms()[first:] {
				st.q.SetComponentGroup(a, comp.Group)
			}
		}
	}
	for d, e := range st.rings {
		if e.open {
			return errors.MalformedPattern(fmt.Sprintf("ring closure %d is never closed", d))
		}
	}
	return st.finish()
}

// chain walks ch starting from parent, which may be nil for the first chain
// of a component.  pending is the bond predicate carried into the chain by a
// branch; nil means none was written.  The caller's cursor is not touched.
func (b *Builder) chain(st *buildState, ch *Chain, parent *molecule.Atom, pending *query.Expr) error {
	cursor := parent
	bond := pending
	for i, item := range ch.Items {
		switch n := item.(type) {
		case *Atom:
			atom, err := b.atom(st, n, cursor)
			if err != nil {
				return err
			}
			if cursor != nil {
				if err := st.connect(cursor, atom, bond); err != nil {
					return err
				}
			}
			bond = nil
			if len(n.RingClosures) > 1 {
				return errors.MalformedPattern(fmt.Sprintf("atom at item %d carries %d ring closures", i, len(n.RingClosures)))
			}
			for _, rc := range n.RingClosures {
				if err := b.ring(st, atom, rc, nil); err != nil {
					return err
				}
			}
			cursor = atom
		case *Bond:
			expr, err := b.bondExpr(n)
			if err != nil {
				return err
			}
			bond = expr
		case *Branch:
			if cursor == nil || n.Chain == nil {
				return errors.MalformedPattern(fmt.Sprintf("branch at item %d has no anchor atom", i))
			}
			carried := bond
			if n.Bond != nil {
				expr, err := b.bondExpr(n.Bond)
				if err != nil {
					return err
				}
				carried = expr
			}
			if err := b.chain(st, n.Chain, cursor, carried); err != nil {
				return err
			}
			bond = nil
		case *RingClosure:
			if cursor == nil {
				return errors.MalformedPattern(fmt.Sprintf("ring closure at item %d has no anchor atom", i))
			}
			if err := b.ring(st, cursor, n, bond); err != nil {
				return err
			}
			bond = nil
		default:
			return errors.MalformedPattern(fmt.Sprintf("unexpected %T at chain item %d", item, i))
		}
	}
	return nil
}

// atom creates the query atom for n.  A chirality primitive starts neighbour
// tracking, seeded with the parent and the atom itself.
func (b *Builder) atom(st *buildState, n *Atom, parent *molecule.Atom) (*molecule.Atom, error) {
	expr := query.True()
	if n.Expr != nil {
		e, err := b.expr(n.Expr)
		if err != nil {
			return nil, err
		}
		expr = e
	}
	atom, err := st.q.AddAtom(expr)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "add query atom")
	}
	if n.Map > 0 {
		st.q.SetAtomMap(atom, n.Map)
	}
	if w, ok := chirality(expr); ok {
		tr := &chiralTrack{winding: w}
		if parent != nil {
			tr.neighbors = append(tr.neighbors, parent)
		}
		tr.neighbors = append(tr.neighbors, atom)
		st.chiral[atom] = tr
		st.chiralOrder = append(st.chiralOrder, atom)
	}
	return atom, nil
}

// connect bonds a chain step and records it for stereo.  The parent sees the
// child at the end of its list; the child's list was seeded with the parent.
func (st *buildState) connect(from, to *molecule.Atom, expr *query.Expr) error {
	bond, err := st.q.AddBond(from, to, expr)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMalformedPattern, "chain bond")
	}
	if tr, ok := st.chiral[from]; ok {
		tr.neighbors = append(tr.neighbors, to)
	}
	st.noteBond(bond)
	return nil
}

func (st *buildState) noteBond(b *molecule.Bond) {
	if b.Order == molecule.OrderDouble {
		st.doubles = append(st.doubles, b)
	}
}

// ring opens or closes digit rc.Digit at atom.  chainBond is a bond written
// in the chain just before the digit.
func (b *Builder) ring(st *buildState, atom *molecule.Atom, rc *RingClosure, chainBond *query.Expr) error {
	if rc == nil || rc.Digit < 0 {
		return errors.MalformedPattern("invalid ring closure")
	}
	expr := chainBond
	if rc.Bond != nil {
		e, err := b.bondExpr(rc.Bond)
		if err != nil {
			return err
		}
		expr = e
	}
	if rc.Digit >= len(st.rings) {
		grown := make([]ringEntry, rc.Digit+1)
		copy(grown, st.rings)
		st.rings = grown
	}

	entry := &st.rings[rc.Digit]
	if !entry.open {
		*entry = ringEntry{open: true, atom: atom, bond: expr}
		if tr, ok := st.chiral[atom]; ok {
			entry.slots = []int{len(tr.neighbors)}
			tr.neighbors = append(tr.neighbors, nil)
		}
		return nil
	}

	opener, slots := entry.atom, entry.slots
	// A bond written at the closing digit reads from atom toward opener.
	begin, end := opener, atom
	switch {
	case entry.bond != nil:
		expr = entry.bond
	case expr != nil:
		begin, end = atom, opener
	case st.q.AtomExpr(opener).IsAromaticSymbol() && st.q.AtomExpr(atom).IsAromaticSymbol():
		expr = query.Primitive(query.OpAromaticBond, 0)
	default:
		expr = query.Primitive(query.OpSingleOrAromatic, 0)
	}
	*entry = ringEntry{}

	bond, err := st.q.AddBond(begin, end, expr)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMalformedPattern, fmt.Sprintf("ring closure %d", rc.Digit))
	}
	if tr, ok := st.chiral[opener]; ok && len(slots) == 1 {
		tr.neighbors[slots[0]] = atom
	}
	if tr, ok := st.chiral[atom]; ok {
		tr.neighbors = append(tr.neighbors, opener)
	}
	st.noteBond(bond)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Predicate reduction
// ─────────────────────────────────────────────────────────────────────────────

// expr reduces a predicate subtree bottom-up.  Recursive sub-patterns are
// compiled against a fresh buildState.
func (b *Builder) expr(n Node) (*query.Expr, error) {
	switch e := n.(type) {
	case *LowAnd:
		return b.binary(e.Left, e.Right, query.And)
	case *HighAnd:
		return b.binary(e.Left, e.Right, query.And)
	case *Or:
		return b.binary(e.Left, e.Right, query.Or)
	case *Not:
		if e.Operand == nil {
			return nil, errors.MalformedPattern("negation without operand")
		}
		inner, err := b.expr(e.Operand)
		if err != nil {
			return nil, err
		}
		return query.Not(inner), nil
	case *AtomPrimitive:
		switch e.Op {
		case query.OpElement:
			return query.Element(e.Symbol), nil
		case query.OpAliphaticElement:
			return query.AliphaticElement(e.Symbol), nil
		case query.OpAromaticElement:
			return query.AromaticElement(e.Symbol), nil
		case query.OpTrue:
			return query.True(), nil
		case query.OpFalse:
			return query.False(), nil
		}
		return query.Primitive(e.Op, e.Value), nil
	case *BondPrimitive:
		switch e.Op {
		case query.OpTrue:
			return query.True(), nil
		case query.OpFalse:
			return query.False(), nil
		}
		return query.Primitive(e.Op, e.Value), nil
	case *Recursive:
		if e.Pattern == nil {
			return nil, errors.MalformedPattern("recursive predicate without pattern")
		}
		sub := b.newState()
		if err := b.pattern(sub, e.Pattern); err != nil {
			return nil, err
		}
		if sub.q.Graph().AtomCount() == 0 {
			return nil, errors.MalformedPattern("recursive predicate has no atoms")
		}
		return query.Recursive(sub.q), nil
	case nil:
		return nil, errors.MalformedPattern("missing predicate operand")
	}
	return nil, errors.MalformedPattern(fmt.Sprintf("unexpected %T in predicate", n))
}

func (b *Builder) binary(l, r Node, combine func(l, r *query.Expr) *query.Expr) (*query.Expr, error) {
	left, err := b.expr(l)
	if err != nil {
		return nil, err
	}
	right, err := b.expr(r)
	if err != nil {
		return nil, err
	}
	return combine(left, right), nil
}

func (b *Builder) bondExpr(n *Bond) (*query.Expr, error) {
	if n.Expr == nil {
		return nil, nil
	}
	return b.expr(n.Expr)
}

// chirality finds the first chirality primitive reachable through
// conjunctions.
func chirality(e *query.Expr) (molecule.Winding, bool) {
	if e == nil {
		return 0, false
	}
	switch e.Op {
	case query.OpChirality:
		w := molecule.Winding(e.Value)
		return w, w == molecule.Clockwise || w == molecule.Anticlockwise
	case query.OpAnd:
		if w, ok := chirality(e.Left); ok {
			return w, true
		}
		return chirality(e.Right)
	}
	return 0, false
}

// ─────────────────────────────────────────────────────────────────────────────
// Stereo
// ─────────────────────────────────────────────────────────────────────────────

// finish emits the stereo elements gathered while building.
func (st *buildState) finish() error {
	for _, atom := range st.chiralOrder {
		e := st.tetrahedral(atom, st.chiral[atom])
		if e == nil {
			continue
		}
		if err := st.emit(e); err != nil {
			return err
		}
	}
	for _, db := range st.doubles {
		e := st.doubleBond(db)
		if e == nil {
			continue
		}
		if err := st.emit(e); err != nil {
			return err
		}
	}
	return nil
}

func (st *buildState) emit(e molecule.StereoElement) error {
	if err := st.q.Graph().AddStereo(e); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "add pattern stereo")
	}
	st.track.Emit(e.Kind())
	return nil
}

func (st *buildState) tetrahedral(atom *molecule.Atom, tr *chiralTrack) molecule.StereoElement {
	nbrs := tr.neighbors
	if len(nbrs) == 5 {
		trimmed := make([]*molecule.Atom, 0, 4)
		for _, n := range nbrs {
			if n != atom {
				trimmed = append(trimmed, n)
			}
		}
		nbrs = trimmed
	}
	if len(nbrs) != 4 {
		st.track.Drop(ReasonNeighborCount, logging.Atom(st.q.Graph().IndexOf(atom)), logging.Int("neighbors", len(nbrs)))
		return nil
	}
	e := &molecule.Tetrahedral{Focus: atom, Winding: tr.winding}
	copy(e.Neighbors[:], nbrs)
	return e
}

func (st *buildState) doubleBond(db *molecule.Bond) molecule.StereoElement {
	u, v := db.Begin(), db.End()
	ru, conflictU := st.directional(u, db)
	rv, conflictV := st.directional(v, db)
	switch {
	case conflictU || conflictV:
		st.track.Drop(ReasonConflictingMarkers, logging.Int("bond", st.q.Graph().BondIndexOf(db)))
		return nil
	case ru == nil && rv == nil:
		return nil
	case ru == nil || rv == nil:
		st.track.Drop(ReasonUnresolvedTerminal, logging.Int("bond", st.q.Graph().BondIndexOf(db)))
		return nil
	}
	conf := molecule.Opposite
	if ru.StereoFrom(u) == rv.StereoFrom(v) {
		conf = molecule.Together
	}
	return &molecule.DoubleBondStereo{Bond: db, Refs: [2]*molecule.Bond{ru, rv}, Conformation: conf}
}

// directional returns the first Up/Down bond on a other than db.  A second
// one pointing the same way relative to a is a conflict.
func (st *buildState) directional(a *molecule.Atom, db *molecule.Bond) (*molecule.Bond, bool) {
	var found *molecule.Bond
	for _, b := range st.q.Graph().BondsOf(a) {
		if b == db || !b.Stereo.IsDirectional() {
			continue
		}
		if found == nil {
			found = b
			continue
		}
		if b.StereoFrom(a) == found.StereoFrom(a) {
			return nil, true
		}
	}
	return found, false
}
