package notation

import (
	"fmt"
	"sort"

	"github.com/JibranRasheed/NCDK-sub001/internal/domain/observe"
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/logging"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

// Reasons reported when a stereo element is omitted.
const (
	ReasonNeighborCount      = "neighbor_count"
	ReasonOrdinalRange       = "ordinal_range"
	ReasonCumuleneShape      = "cumulene_shape"
	ReasonConflictingMarkers = "conflicting_markers"
	ReasonUnresolvedTerminal = "unresolved_terminal"
)

// Adapter converts notation graphs.  It holds no per-call state and is safe
// for concurrent use.
type Adapter struct {
	logger   logging.Logger
	observer observe.Observer
}

// NewAdapter returns an Adapter.  Nil collaborators are replaced by nops.
func NewAdapter(logger logging.Logger, observer observe.Observer) *Adapter {
	return &Adapter{
		logger:   logging.OrNop(logger).Named("notation"),
		observer: observe.OrNop(observer),
	}
}

// conversion is the working state of one Adapt call.
type conversion struct {
	in     *Graph
	out    *molecule.MolecularGraph
	atoms  []*molecule.Atom
	bonds  []*molecule.Bond
	edges  [][]int // vertex -> incident edge indices, in input order
	config []ConfigType
	track  observe.Tracker
}

// Adapt builds a MolecularGraph from g.  Atoms and bonds are created one to
// one and in input order.  A bond code outside the table or an edge that
// references a missing vertex fails with ErrCodeInvalidNotation; stereo that
// cannot be resolved is omitted.
func (a *Adapter) Adapt(g *Graph) (*molecule.MolecularGraph, error) {
	if g == nil {
		return nil, errors.InvalidNotation("notation graph is nil")
	}
	c := &conversion{
		in:    g,
		out:   molecule.NewMolecularGraph(g.Title),
		track: observe.NewTracker(observe.SourceNotation, a.logger, a.observer),
	}
	if err := c.buildAtoms(); err != nil {
		return nil, err
	}
	if err := c.buildBonds(); err != nil {
		return nil, err
	}
	c.resolveConfigTypes()

	for u := range g.Vertices {
		e := c.vertexStereo(u)
		if e == nil {
			continue
		}
		if err := c.emit(e); err != nil {
			return nil, err
		}
	}
	for i, edge := range g.Edges {
		if !edge.Code.double() {
			continue
		}
		e := c.doubleBondStereo(i)
		if e == nil {
			continue
		}
		if err := c.emit(e); err != nil {
			return nil, err
		}
	}
	return c.out, nil
}

func (c *conversion) emit(e molecule.StereoElement) error {
	if err := c.out.AddStereo(e); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "add stereo element")
	}
	c.track.Emit(e.Kind())
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Atoms and bonds
// ─────────────────────────────────────────────────────────────────────────────

func (c *conversion) buildAtoms() error {
	c.atoms = make([]*molecule.Atom, len(c.in.Vertices))
	c.edges = make([][]int, len(c.in.Vertices))
	for i, v := range c.in.Vertices {
		atom := molecule.NewAtom(v.Element)
		if v.Charge != nil {
			atom.Charge = molecule.IntPtr(*v.Charge)
		}
		if v.Isotope != nil {
			atom.Isotope = molecule.IntPtr(*v.Isotope)
		}
		atom.Aromatic = v.Aromatic
		atom.ImplicitH = v.ImplicitH
		atom.AtomClass = v.AtomClass
		atom.Label = v.Label
		if _, err := c.out.AddAtom(atom); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "add atom")
		}
		c.atoms[i] = atom
	}
	return nil
}

func (c *conversion) buildBonds() error {
	n := len(c.in.Vertices)
	c.bonds = make([]*molecule.Bond, len(c.in.Edges))
	for i, e := range c.in.Edges {
		if e.U < 0 || e.U >= n || e.V < 0 || e.V >= n {
			return errors.InvalidNotation(fmt.Sprintf("edge %d references vertex outside 0..%d", i, n-1))
		}
		if e.U == e.V {
			return errors.InvalidNotation(fmt.Sprintf("edge %d is a loop on vertex %d", i, e.U))
		}
		order, aromatic, stereo, ok := c.mapCode(e)
		if !ok {
			return errors.InvalidNotation(fmt.Sprintf("edge %d has unmappable bond code %s", i, e.Code))
		}
		b, err := c.out.AddBond(c.atoms[e.U], c.atoms[e.V], order)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInvalidNotation, fmt.Sprintf("edge %d", i))
		}
		b.Aromatic = aromatic
		b.Stereo = stereo
		c.bonds[i] = b
		c.edges[e.U] = append(c.edges[e.U], i)
		c.edges[e.V] = append(c.edges[e.V], i)
	}
	return nil
}

func (c *conversion) mapCode(e Edge) (molecule.BondOrder, bool, molecule.BondStereo, bool) {
	switch e.Code {
	case CodeSingle:
		return molecule.OrderSingle, false, molecule.StereoNone, true
	case CodeUp:
		return molecule.OrderSingle, false, molecule.StereoUp, true
	case CodeDown:
		return molecule.OrderSingle, false, molecule.StereoDown, true
	case CodeImplicit:
		if c.in.Vertices[e.U].Aromatic && c.in.Vertices[e.V].Aromatic {
			return molecule.OrderUnset, true, molecule.StereoNone, true
		}
		return molecule.OrderSingle, false, molecule.StereoNone, true
	case CodeAromatic, CodeImplicitAromatic:
		return molecule.OrderUnset, true, molecule.StereoNone, true
	case CodeDouble:
		return molecule.OrderDouble, false, molecule.StereoNone, true
	case CodeDoubleAromatic:
		return molecule.OrderDouble, true, molecule.StereoNone, true
	case CodeTriple:
		return molecule.OrderTriple, false, molecule.StereoNone, true
	case CodeQuadruple:
		return molecule.OrderQuadruple, false, molecule.StereoNone, true
	}
	return molecule.OrderUnset, false, molecule.StereoNone, false
}

// neighbors returns the vertices adjacent to u in edge order.
func (c *conversion) neighbors(u int) []int {
	vs := make([]int, 0, len(c.edges[u]))
	for _, ei := range c.edges[u] {
		vs = append(vs, c.in.Edges[ei].Other(u))
	}
	return vs
}

func (c *conversion) doubleEdges(u int) []int {
	var out []int
	for _, ei := range c.edges[u] {
		if c.in.Edges[ei].Code.double() {
			out = append(out, ei)
		}
	}
	return out
}

// resolveConfigTypes settles the geometry of bare "@"/"@@" descriptors from
// topology: two double bonds make an allene centre, one a double-bond
// terminal, anything else a tetrahedral centre.
func (c *conversion) resolveConfigTypes() {
	c.config = make([]ConfigType, len(c.in.Vertices))
	for u, v := range c.in.Vertices {
		t := v.Configuration.Type()
		if t == ConfigImplicit {
			switch len(c.doubleEdges(u)) {
			case 2:
				t = ConfigExtendedTetrahedral
			case 1:
				t = ConfigDoubleBond
			default:
				t = ConfigTetrahedral
			}
		}
		c.config[u] = t
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom-centred stereo
// ─────────────────────────────────────────────────────────────────────────────

func (c *conversion) vertexStereo(u int) molecule.StereoElement {
	conf := c.in.Vertices[u].Configuration
	switch c.config[u] {
	case ConfigTetrahedral:
		return c.tetrahedral(u, conf)
	case ConfigExtendedTetrahedral:
		return c.extendedTetrahedral(u, conf)
	case ConfigSquarePlanar:
		vs, ok := c.exactNeighbors(u, 4)
		if !ok || !c.ordinalInRange(u, conf, 3) {
			return nil
		}
		e := &molecule.SquarePlanar{Focus: c.atoms[u], Order: conf.Ordinal()}
		c.fill(e.Neighbors[:], vs)
		return e
	case ConfigTrigonalBipyramidal:
		vs, ok := c.exactNeighbors(u, 5)
		if !ok || !c.ordinalInRange(u, conf, 20) {
			return nil
		}
		e := &molecule.TrigonalBipyramidal{Focus: c.atoms[u], Order: conf.Ordinal()}
		c.fill(e.Neighbors[:], vs)
		return e
	case ConfigOctahedral:
		vs, ok := c.exactNeighbors(u, 6)
		if !ok || !c.ordinalInRange(u, conf, 30) {
			return nil
		}
		e := &molecule.Octahedral{Focus: c.atoms[u], Order: conf.Ordinal()}
		c.fill(e.Neighbors[:], vs)
		return e
	}
	// ConfigNone has nothing to emit and ConfigDoubleBond is consumed by
	// the double-bond pass.
	return nil
}

func (c *conversion) fill(dst []*molecule.Atom, vs []int) {
	for i, v := range vs {
		dst[i] = c.atoms[v]
	}
}

func (c *conversion) exactNeighbors(u, want int) ([]int, bool) {
	vs := c.neighbors(u)
	if len(vs) != want {
		c.track.Drop(ReasonNeighborCount, logging.Atom(u), logging.Int("neighbors", len(vs)), logging.Int("want", want))
		return nil, false
	}
	return vs, true
}

func (c *conversion) ordinalInRange(u int, conf Configuration, max int) bool {
	if n := conf.Ordinal(); n < 1 || n > max {
		c.track.Drop(ReasonOrdinalRange, logging.Atom(u), logging.Int("ordinal", n))
		return false
	}
	return true
}

// tetrahedral uses four explicit neighbours as given.  With three, the focus
// is inserted at its sorted position to stand for the implicit hydrogen or
// lone pair.
func (c *conversion) tetrahedral(u int, conf Configuration) molecule.StereoElement {
	vs := c.neighbors(u)
	switch len(vs) {
	case 4:
	case 3:
		vs = append(vs, u)
		for i := len(vs) - 1; i > 0 && vs[i] < vs[i-1]; i-- {
			vs[i], vs[i-1] = vs[i-1], vs[i]
		}
	default:
		c.track.Drop(ReasonNeighborCount, logging.Atom(u), logging.Int("neighbors", len(vs)))
		return nil
	}
	e := &molecule.Tetrahedral{Focus: c.atoms[u], Winding: conf.Winding()}
	c.fill(e.Neighbors[:], vs)
	return e
}

// extendedTetrahedral walks the cumulated double bonds from the focus to
// both terminals and pools their single-order substituents.  A terminal with
// one substituent contributes itself as the implicit second.
func (c *conversion) extendedTetrahedral(u int, conf Configuration) molecule.StereoElement {
	dbs := c.doubleEdges(u)
	if len(dbs) != 2 {
		c.track.Drop(ReasonCumuleneShape, logging.Atom(u), logging.Int("double_bonds", len(dbs)))
		return nil
	}
	t0, ok0 := c.terminal(u, dbs[0])
	t1, ok1 := c.terminal(u, dbs[1])
	if !ok0 || !ok1 {
		c.track.Drop(ReasonCumuleneShape, logging.Atom(u))
		return nil
	}

	xs := []int{-1, t0, -1, t1}
	for _, term := range [2]struct{ slot, t int }{{0, t0}, {2, t1}} {
		slot, t := term.slot, term.t
		n := 0
		for _, ei := range c.edges[t] {
			edge := c.in.Edges[ei]
			if !edge.Code.singleOrder() {
				continue
			}
			if n == 2 {
				c.track.Drop(ReasonNeighborCount, logging.Atom(u), logging.Int("terminal", t))
				return nil
			}
			xs[slot+n] = edge.Other(t)
			n++
		}
	}
	for _, x := range xs {
		if x < 0 {
			c.track.Drop(ReasonNeighborCount, logging.Atom(u))
			return nil
		}
	}
	sort.Ints(xs)

	e := &molecule.ExtendedTetrahedral{Focus: c.atoms[u], Winding: conf.Winding()}
	c.fill(e.Neighbors[:], xs)
	return e
}

// terminal follows double bonds away from u starting with edge ei until it
// reaches an atom with no further double bond.
func (c *conversion) terminal(u, ei int) (int, bool) {
	prev, via := u, ei
	for steps := 0; steps < len(c.in.Vertices); steps++ {
		next := c.in.Edges[via].Other(prev)
		dbs := c.doubleEdges(next)
		switch len(dbs) {
		case 1:
			return next, true
		case 2:
			if dbs[0] == via {
				via = dbs[1]
			} else {
				via = dbs[0]
			}
			prev = next
		default:
			return -1, false
		}
	}
	return -1, false
}

// ─────────────────────────────────────────────────────────────────────────────
// Double-bond stereo
// ─────────────────────────────────────────────────────────────────────────────

func (c *conversion) doubleBondStereo(ei int) molecule.StereoElement {
	edge := c.in.Edges[ei]
	u, v := edge.U, edge.V

	eu, conflictU := c.directionalEdge(u, ei)
	ev, conflictV := c.directionalEdge(v, ei)
	conflict := conflictU || conflictV
	if !conflict && eu >= 0 && ev >= 0 {
		conf := molecule.Opposite
		if c.in.Edges[eu].CodeFrom(u) == c.in.Edges[ev].CodeFrom(v) {
			conf = molecule.Together
		}
		return &molecule.DoubleBondStereo{
			Bond:         c.bonds[ei],
			Refs:         [2]*molecule.Bond{c.bonds[eu], c.bonds[ev]},
			Conformation: conf,
		}
	}

	if c.config[u] == ConfigDoubleBond && c.config[v] == ConfigDoubleBond {
		if e := c.parityDoubleBond(ei); e != nil {
			return e
		}
	}
	switch {
	case conflict:
		c.track.Drop(ReasonConflictingMarkers, logging.Int("begin", u), logging.Int("end", v))
	case eu >= 0 || ev >= 0 || c.config[u] == ConfigDoubleBond || c.config[v] == ConfigDoubleBond:
		c.track.Drop(ReasonUnresolvedTerminal, logging.Int("begin", u), logging.Int("end", v))
	}
	return nil
}

// directionalEdge finds the Up/Down edge on terminal u other than the double
// bond db.  A terminal with no other edge has no reference.  Two directional
// edges that point the same way relative to u conflict.
func (c *conversion) directionalEdge(u, db int) (int, bool) {
	if len(c.edges[u]) == 1 {
		return -1, false
	}
	found := -1
	for _, ei := range c.edges[u] {
		if ei == db {
			continue
		}
		edge := c.in.Edges[ei]
		if !edge.Code.directional() {
			continue
		}
		if found < 0 {
			found = ei
			continue
		}
		if edge.CodeFrom(u) == c.in.Edges[found].CodeFrom(u) {
			return -1, true
		}
	}
	return found, false
}

// parityDoubleBond reads the conformation from "@DB"-style parity codes on
// both terminals.  Each terminal's neighbours are sorted into a triple, the
// terminal standing in for a missing third, and the reference is taken from
// the position rotationally adjacent to the opposite terminal.
func (c *conversion) parityDoubleBond(ei int) molecule.StereoElement {
	edge := c.in.Edges[ei]
	u, v := edge.U, edge.V

	u3, ok := c.triple(u)
	if !ok {
		return nil
	}
	v3, ok := c.triple(v)
	if !ok {
		return nil
	}
	vPos, uPos := indexOf(u3, v), indexOf(v3, u)
	if vPos < 0 || uPos < 0 {
		return nil
	}

	uhi, ulo := u3[(vPos+1)%3], u3[(vPos+2)%3]
	vhi, vlo := v3[(uPos+1)%3], v3[(uPos+2)%3]
	if c.in.Vertices[u].Configuration.Shorthand() == Clockwise {
		uhi, ulo = ulo, uhi
	}
	if c.in.Vertices[v].Configuration.Shorthand() == Anticlockwise {
		vhi, vlo = vlo, vhi
	}

	var (
		ref0, ref1 *molecule.Bond
		conf       molecule.Conformation
	)
	switch {
	case uhi != u:
		ref0 = c.bondBetween(uhi, u)
		switch {
		case vhi != v:
			ref1, conf = c.bondBetween(vhi, v), molecule.Together
		case vlo != v:
			ref1, conf = c.bondBetween(vlo, v), molecule.Opposite
		}
	case ulo != u:
		ref0 = c.bondBetween(ulo, u)
		switch {
		case vhi != v:
			ref1, conf = c.bondBetween(vhi, v), molecule.Opposite
		case vlo != v:
			ref1, conf = c.bondBetween(vlo, v), molecule.Together
		}
	}
	if ref0 == nil || ref1 == nil {
		return nil
	}
	return &molecule.DoubleBondStereo{
		Bond:         c.bonds[ei],
		Refs:         [2]*molecule.Bond{ref0, ref1},
		Conformation: conf,
	}
}

func (c *conversion) triple(u int) ([]int, bool) {
	vs := c.neighbors(u)
	switch len(vs) {
	case 2:
		vs = append(vs, u)
	case 3:
	default:
		return nil, false
	}
	sort.Ints(vs)
	return vs, true
}

func (c *conversion) bondBetween(x, y int) *molecule.Bond {
	return c.out.BondBetween(c.atoms[x], c.atoms[y])
}

func indexOf(xs []int, x int) int {
	for i, y := range xs {
		if y == x {
			return i
		}
	}
	return -1
}
