package molecule

import (
	"fmt"

	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// MolecularGraph: atoms, bonds, stereo and electron markers
// ─────────────────────────────────────────────────────────────────────────────

// MolecularGraph is an ordered set of atoms with the bonds, stereo elements
// and electron markers defined over them.  Atom indices follow insertion
// order and are significant for stereo neighbour ordering.
//
// A graph is built incrementally through the edit API, which rejects edits
// that would break its invariants: bond endpoints are distinct members of the
// graph, no two bonds join the same pair of atoms, and every atom or bond a
// stereo element references is a member.  Once a producer returns a graph it
// is treated as a complete value; WithStereo and Clone derive new graphs
// instead of editing a published one.
//
// A MolecularGraph is not safe for concurrent mutation.  Concurrent reads of a
// graph that is no longer being edited are safe.
type MolecularGraph struct {
	title string

	atoms     []*Atom
	atomIndex map[*Atom]int

	bonds     []*Bond
	bondIndex map[*Bond]int
	// incident bond indices per atom index, in insertion order
	incident [][]int

	stereo          []StereoElement
	lonePairs       []LonePair
	singleElectrons []SingleElectron
}

// NewMolecularGraph returns an empty graph with the given title.
func NewMolecularGraph(title string) *MolecularGraph {
	return &MolecularGraph{
		title:     title,
		atomIndex: make(map[*Atom]int),
		bondIndex: make(map[*Bond]int),
	}
}

// Title returns the graph title.
func (g *MolecularGraph) Title() string { return g.title }

// SetTitle replaces the graph title.
func (g *MolecularGraph) SetTitle(title string) { g.title = title }

// AddAtom appends a to the graph and returns its index.
func (g *MolecularGraph) AddAtom(a *Atom) (int, error) {
	if a == nil {
		return -1, errors.InvalidGraph("nil atom")
	}
	if idx, ok := g.atomIndex[a]; ok {
		return -1, errors.InvalidGraph("atom already in graph").WithDetail(fmt.Sprintf("index=%d", idx))
	}
	idx := len(g.atoms)
	g.atoms = append(g.atoms, a)
	g.atomIndex[a] = idx
	g.incident = append(g.incident, nil)
	return idx, nil
}

// AddBond creates a bond of the given order between two member atoms.
func (g *MolecularGraph) AddBond(begin, end *Atom, order BondOrder) (*Bond, error) {
	b := &Bond{begin: begin, end: end, Order: order}
	if err := g.AttachBond(b); err != nil {
		return nil, err
	}
	return b, nil
}

// AttachBond adds an existing bond value, typically one taken from another
// graph that shares its atoms, such as a fragment of a partitioned graph.
func (g *MolecularGraph) AttachBond(b *Bond) error {
	if b == nil {
		return errors.InvalidGraph("nil bond")
	}
	if _, ok := g.bondIndex[b]; ok {
		return errors.InvalidGraph("bond already in graph")
	}
	if b.begin == b.end {
		return errors.InvalidGraph("bond endpoints are identical").WithDetail(b.begin.String())
	}
	u, ok := g.atomIndex[b.begin]
	if !ok {
		return errors.InvalidGraph("bond begin atom is not a member").WithDetail(b.begin.String())
	}
	v, ok := g.atomIndex[b.end]
	if !ok {
		return errors.InvalidGraph("bond end atom is not a member").WithDetail(b.end.String())
	}
	if g.BondBetween(b.begin, b.end) != nil {
		return errors.InvalidGraph("atoms are already bonded").WithDetail(fmt.Sprintf("%d-%d", u, v))
	}
	idx := len(g.bonds)
	g.bonds = append(g.bonds, b)
	g.bondIndex[b] = idx
	g.incident[u] = append(g.incident[u], idx)
	g.incident[v] = append(g.incident[v], idx)
	return nil
}

// AddStereo records a stereo element after checking that every atom and bond
// it references belongs to the graph.
func (g *MolecularGraph) AddStereo(e StereoElement) error {
	if e == nil {
		return errors.InvalidGraph("nil stereo element")
	}
	for _, a := range e.Atoms() {
		if !g.Contains(a) {
			return errors.InvalidGraph("stereo element references a foreign atom").
				WithDetail(fmt.Sprintf("kind=%s atom=%s", e.Kind(), a))
		}
	}
	for _, b := range e.Bonds() {
		if !g.ContainsBond(b) {
			return errors.InvalidGraph("stereo element references a foreign bond").
				WithDetail(fmt.Sprintf("kind=%s", e.Kind()))
		}
	}
	g.stereo = append(g.stereo, e)
	return nil
}

// AddLonePair attaches a lone pair to a member atom.
func (g *MolecularGraph) AddLonePair(a *Atom) error {
	if !g.Contains(a) {
		return errors.InvalidGraph("lone pair on a foreign atom")
	}
	g.lonePairs = append(g.lonePairs, LonePair{Atom: a})
	return nil
}

// AddSingleElectron attaches an unpaired electron to a member atom.
func (g *MolecularGraph) AddSingleElectron(a *Atom) error {
	if !g.Contains(a) {
		return errors.InvalidGraph("single electron on a foreign atom")
	}
	g.singleElectrons = append(g.singleElectrons, SingleElectron{Atom: a})
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Read accessors
// ─────────────────────────────────────────────────────────────────────────────

// AtomCount returns the number of atoms.
func (g *MolecularGraph) AtomCount() int { return len(g.atoms) }

// BondCount returns the number of bonds.
func (g *MolecularGraph) BondCount() int { return len(g.bonds) }

// Atom returns the atom at index i, or nil when i is out of range.
func (g *MolecularGraph) Atom(i int) *Atom {
	if i < 0 || i >= len(g.atoms) {
		return nil
	}
	return g.atoms[i]
}

// Bond returns the bond at index i, or nil when i is out of range.
func (g *MolecularGraph) Bond(i int) *Bond {
	if i < 0 || i >= len(g.bonds) {
		return nil
	}
	return g.bonds[i]
}

// Atoms returns the atoms in index order.  The slice is a copy.
func (g *MolecularGraph) Atoms() []*Atom {
	return append([]*Atom(nil), g.atoms...)
}

// Bonds returns the bonds in insertion order.  The slice is a copy.
func (g *MolecularGraph) Bonds() []*Bond {
	return append([]*Bond(nil), g.bonds...)
}

// StereoElements returns the stereo elements in insertion order.
func (g *MolecularGraph) StereoElements() []StereoElement {
	return append([]StereoElement(nil), g.stereo...)
}

// LonePairs returns the lone-pair markers.
func (g *MolecularGraph) LonePairs() []LonePair {
	return append([]LonePair(nil), g.lonePairs...)
}

// SingleElectrons returns the single-electron markers.
func (g *MolecularGraph) SingleElectrons() []SingleElectron {
	return append([]SingleElectron(nil), g.singleElectrons...)
}

// IndexOf returns the index of a, or -1 when a is not a member.
func (g *MolecularGraph) IndexOf(a *Atom) int {
	if idx, ok := g.atomIndex[a]; ok {
		return idx
	}
	return -1
}

// BondIndexOf returns the index of b, or -1 when b is not a member.
func (g *MolecularGraph) BondIndexOf(b *Bond) int {
	if idx, ok := g.bondIndex[b]; ok {
		return idx
	}
	return -1
}

// Contains reports whether a is a member atom.
func (g *MolecularGraph) Contains(a *Atom) bool {
	_, ok := g.atomIndex[a]
	return ok
}

// ContainsBond reports whether b is a member bond.
func (g *MolecularGraph) ContainsBond(b *Bond) bool {
	_, ok := g.bondIndex[b]
	return ok
}

// BondsOf returns the bonds incident to a in insertion order.
func (g *MolecularGraph) BondsOf(a *Atom) []*Bond {
	idx, ok := g.atomIndex[a]
	if !ok {
		return nil
	}
	out := make([]*Bond, 0, len(g.incident[idx]))
	for _, bi := range g.incident[idx] {
		out = append(out, g.bonds[bi])
	}
	return out
}

// Neighbors returns the atoms bonded to a, in bond insertion order.
func (g *MolecularGraph) Neighbors(a *Atom) []*Atom {
	idx, ok := g.atomIndex[a]
	if !ok {
		return nil
	}
	out := make([]*Atom, 0, len(g.incident[idx]))
	for _, bi := range g.incident[idx] {
		out = append(out, g.bonds[bi].Other(a))
	}
	return out
}

// Degree returns the number of bonds incident to a.
func (g *MolecularGraph) Degree(a *Atom) int {
	idx, ok := g.atomIndex[a]
	if !ok {
		return 0
	}
	return len(g.incident[idx])
}

// BondBetween returns the bond joining a and b, or nil.
func (g *MolecularGraph) BondBetween(a, b *Atom) *Bond {
	idx, ok := g.atomIndex[a]
	if !ok {
		return nil
	}
	for _, bi := range g.incident[idx] {
		if g.bonds[bi].Other(a) == b {
			return g.bonds[bi]
		}
	}
	return nil
}

// AdjacencyList returns, for every atom index, the indices of its neighbours
// in bond insertion order.
func (g *MolecularGraph) AdjacencyList() [][]int {
	adj := make([][]int, len(g.atoms))
	for i, a := range g.atoms {
		adj[i] = make([]int, 0, len(g.incident[i]))
		for _, bi := range g.incident[i] {
			adj[i] = append(adj[i], g.atomIndex[g.bonds[bi].Other(a)])
		}
	}
	return adj
}

// ─────────────────────────────────────────────────────────────────────────────
// Derivation
// ─────────────────────────────────────────────────────────────────────────────

// WithStereo returns a graph sharing this graph's atoms and bonds whose stereo
// list is this graph's elements followed by extra.  The receiver is not
// modified.
func (g *MolecularGraph) WithStereo(extra ...StereoElement) (*MolecularGraph, error) {
	out := g.shallowCopy()
	for _, e := range extra {
		if err := out.AddStereo(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (g *MolecularGraph) shallowCopy() *MolecularGraph {
	out := &MolecularGraph{
		title:           g.title,
		atoms:           append([]*Atom(nil), g.atoms...),
		atomIndex:       make(map[*Atom]int, len(g.atoms)),
		bonds:           append([]*Bond(nil), g.bonds...),
		bondIndex:       make(map[*Bond]int, len(g.bonds)),
		incident:        make([][]int, len(g.incident)),
		stereo:          append([]StereoElement(nil), g.stereo...),
		lonePairs:       append([]LonePair(nil), g.lonePairs...),
		singleElectrons: append([]SingleElectron(nil), g.singleElectrons...),
	}
	for a, i := range g.atomIndex {
		out.atomIndex[a] = i
	}
	for b, i := range g.bondIndex {
		out.bondIndex[b] = i
	}
	for i, inc := range g.incident {
		out.incident[i] = append([]int(nil), inc...)
	}
	return out
}

// Clone returns a deep copy: new atom and bond values with stereo elements
// and electron markers rebuilt over them.  Elements of unknown type are not
// carried over.
func (g *MolecularGraph) Clone() *MolecularGraph {
	out := NewMolecularGraph(g.title)
	atoms := make(map[*Atom]*Atom, len(g.atoms))
	for _, a := range g.atoms {
		cp := cloneAtom(a)
		atoms[a] = cp
		out.atoms = append(out.atoms, cp)
		out.atomIndex[cp] = len(out.atoms) - 1
		out.incident = append(out.incident, nil)
	}
	bonds := make(map[*Bond]*Bond, len(g.bonds))
	for i, b := range g.bonds {
		cp := &Bond{begin: atoms[b.begin], end: atoms[b.end], Order: b.Order, Aromatic: b.Aromatic, Stereo: b.Stereo}
		bonds[b] = cp
		out.bonds = append(out.bonds, cp)
		out.bondIndex[cp] = i
	}
	for i, inc := range g.incident {
		out.incident[i] = append([]int(nil), inc...)
	}
	for _, e := range g.stereo {
		if cp := remapStereo(e, atoms, bonds); cp != nil {
			out.stereo = append(out.stereo, cp)
		}
	}
	for _, lp := range g.lonePairs {
		out.lonePairs = append(out.lonePairs, LonePair{Atom: atoms[lp.Atom]})
	}
	for _, se := range g.singleElectrons {
		out.singleElectrons = append(out.singleElectrons, SingleElectron{Atom: atoms[se.Atom]})
	}
	return out
}

func cloneAtom(a *Atom) *Atom {
	cp := *a
	if a.Charge != nil {
		cp.Charge = IntPtr(*a.Charge)
	}
	if a.Isotope != nil {
		cp.Isotope = IntPtr(*a.Isotope)
	}
	if a.Point2d != nil {
		p := *a.Point2d
		cp.Point2d = &p
	}
	if a.Point3d != nil {
		p := *a.Point3d
		cp.Point3d = &p
	}
	return &cp
}
