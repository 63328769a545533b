package molecule

import (
	"fmt"
)

// ─────────────────────────────────────────────────────────────────────────────
// Enumerations
// ─────────────────────────────────────────────────────────────────────────────

// Winding is the rotational sense in which ordered neighbours are read around
// a stereocentre, looking from the first neighbour.
type Winding int

const (
	// Clockwise corresponds to "@@".
	Clockwise Winding = iota + 1

	// Anticlockwise corresponds to "@".
	Anticlockwise
)

func (w Winding) String() string {
	switch w {
	case Clockwise:
		return "clockwise"
	case Anticlockwise:
		return "anticlockwise"
	default:
		return fmt.Sprintf("winding(%d)", int(w))
	}
}

// Invert returns the opposite winding.
func (w Winding) Invert() Winding {
	if w == Clockwise {
		return Anticlockwise
	}
	if w == Anticlockwise {
		return Clockwise
	}
	return w
}

// Conformation is the relative arrangement of the two reference bonds of a
// double-bond stereo element.
type Conformation int

const (
	// ConformationUnset means the arrangement is not specified.
	ConformationUnset Conformation = iota

	// Together means the reference bonds are on the same side (cis, Z-like).
	Together

	// Opposite means the reference bonds are on opposite sides (trans).
	Opposite
)

func (c Conformation) String() string {
	switch c {
	case ConformationUnset:
		return "unset"
	case Together:
		return "together"
	case Opposite:
		return "opposite"
	default:
		return fmt.Sprintf("conformation(%d)", int(c))
	}
}

// Invert swaps Together and Opposite.
func (c Conformation) Invert() Conformation {
	switch c {
	case Together:
		return Opposite
	case Opposite:
		return Together
	default:
		return c
	}
}

// StereoKind names a stereo-element variant.
type StereoKind string

const (
	KindTetrahedral         StereoKind = "tetrahedral"
	KindExtendedTetrahedral StereoKind = "extended_tetrahedral"
	KindDoubleBond          StereoKind = "double_bond"
	KindSquarePlanar        StereoKind = "square_planar"
	KindTrigonalBipyramidal StereoKind = "trigonal_bipyramidal"
	KindOctahedral          StereoKind = "octahedral"
	KindOther               StereoKind = "other"
)

// ─────────────────────────────────────────────────────────────────────────────
// StereoElement: closed sum type
// ─────────────────────────────────────────────────────────────────────────────

// StereoElement is implemented only by the variant types of this package.
// Consumers are expected to switch over the concrete type and handle every
// variant, including *Other.
type StereoElement interface {
	// Kind names the variant.
	Kind() StereoKind

	// Atoms lists every atom the element references, focus first when the
	// variant has one.
	Atoms() []*Atom

	// Bonds lists every bond the element references.
	Bonds() []*Bond

	stereoElement()
}

// Tetrahedral is a tetrahedral centre.  When the focus has only three
// explicit neighbours the focus itself stands in as the implicit fourth.
type Tetrahedral struct {
	Focus     *Atom
	Neighbors [4]*Atom
	Winding   Winding
}

// ExtendedTetrahedral is an axial centre over cumulated double bonds.  Focus
// is the central atom of the cumulene and Neighbors are substituents of the
// two terminal atoms.
type ExtendedTetrahedral struct {
	Focus     *Atom
	Neighbors [4]*Atom
	Winding   Winding
}

// DoubleBondStereo fixes the geometry of a double bond through one reference
// bond on each terminal: Refs[0] touches Bond.Begin() and Refs[1] touches
// Bond.End().
type DoubleBondStereo struct {
	Bond         *Bond
	Refs         [2]*Bond
	Conformation Conformation
}

// SquarePlanar is a square-planar centre with configuration order 1..3.
type SquarePlanar struct {
	Focus     *Atom
	Neighbors [4]*Atom
	Order     int
}

// TrigonalBipyramidal is a trigonal-bipyramidal centre with configuration
// order 1..20.
type TrigonalBipyramidal struct {
	Focus     *Atom
	Neighbors [5]*Atom
	Order     int
}

// Octahedral is an octahedral centre with configuration order 1..30.
type Octahedral struct {
	Focus     *Atom
	Neighbors [6]*Atom
	Order     int
}

// Other carries an element that this toolkit stores but does not interpret,
// such as atropisomeric or helical configurations produced by other readers.
type Other struct {
	Name      string
	Focus     *Atom
	Neighbors []*Atom
	Config    int
}

func (*Tetrahedral) Kind() StereoKind         { return KindTetrahedral }
func (*ExtendedTetrahedral) Kind() StereoKind { return KindExtendedTetrahedral }
func (*DoubleBondStereo) Kind() StereoKind    { return KindDoubleBond }
func (*SquarePlanar) Kind() StereoKind        { return KindSquarePlanar }
func (*TrigonalBipyramidal) Kind() StereoKind { return KindTrigonalBipyramidal }
func (*Octahedral) Kind() StereoKind          { return KindOctahedral }
func (*Other) Kind() StereoKind               { return KindOther }

func (*Tetrahedral) stereoElement()         {}
func (*ExtendedTetrahedral) stereoElement() {}
func (*DoubleBondStereo) stereoElement()    {}
func (*SquarePlanar) stereoElement()        {}
func (*TrigonalBipyramidal) stereoElement() {}
func (*Octahedral) stereoElement()          {}
func (*Other) stereoElement()               {}

func (e *Tetrahedral) Atoms() []*Atom         { return withFocus(e.Focus, e.Neighbors[:]) }
func (e *ExtendedTetrahedral) Atoms() []*Atom { return withFocus(e.Focus, e.Neighbors[:]) }
func (e *SquarePlanar) Atoms() []*Atom        { return withFocus(e.Focus, e.Neighbors[:]) }
func (e *TrigonalBipyramidal) Atoms() []*Atom { return withFocus(e.Focus, e.Neighbors[:]) }
func (e *Octahedral) Atoms() []*Atom          { return withFocus(e.Focus, e.Neighbors[:]) }
func (e *Other) Atoms() []*Atom               { return withFocus(e.Focus, e.Neighbors) }

func (e *DoubleBondStereo) Atoms() []*Atom {
	atoms := make([]*Atom, 0, 6)
	for _, b := range e.Bonds() {
		if b != nil {
			atoms = append(atoms, b.begin, b.end)
		}
	}
	return atoms
}

func (*Tetrahedral) Bonds() []*Bond         { return nil }
func (*ExtendedTetrahedral) Bonds() []*Bond { return nil }
func (*SquarePlanar) Bonds() []*Bond        { return nil }
func (*TrigonalBipyramidal) Bonds() []*Bond { return nil }
func (*Octahedral) Bonds() []*Bond          { return nil }
func (*Other) Bonds() []*Bond               { return nil }

func (e *DoubleBondStereo) Bonds() []*Bond {
	return []*Bond{e.Bond, e.Refs[0], e.Refs[1]}
}

func withFocus(focus *Atom, nbrs []*Atom) []*Atom {
	atoms := make([]*Atom, 0, len(nbrs)+1)
	if focus != nil {
		atoms = append(atoms, focus)
	}
	return append(atoms, nbrs...)
}

// FocusOf returns the atom an element is anchored on, or nil for a
// DoubleBondStereo, which is anchored on its bond, and for foreign types.
func FocusOf(e StereoElement) *Atom {
	switch se := e.(type) {
	case *Tetrahedral:
		return se.Focus
	case *ExtendedTetrahedral:
		return se.Focus
	case *SquarePlanar:
		return se.Focus
	case *TrigonalBipyramidal:
		return se.Focus
	case *Octahedral:
		return se.Focus
	case *Other:
		return se.Focus
	default:
		return nil
	}
}

// remapStereo rebuilds e over the atoms and bonds of a copied graph.  It
// returns nil for types outside the variant set.
func remapStereo(e StereoElement, atoms map[*Atom]*Atom, bonds map[*Bond]*Bond) StereoElement {
	mapAtoms := func(dst, src []*Atom) {
		for i, a := range src {
			dst[i] = atoms[a]
		}
	}
	switch se := e.(type) {
	case *Tetrahedral:
		out := &Tetrahedral{Focus: atoms[se.Focus], Winding: se.Winding}
		mapAtoms(out.Neighbors[:], se.Neighbors[:])
		return out
	case *ExtendedTetrahedral:
		out := &ExtendedTetrahedral{Focus: atoms[se.Focus], Winding: se.Winding}
		mapAtoms(out.Neighbors[:], se.Neighbors[:])
		return out
	case *SquarePlanar:
		out := &SquarePlanar{Focus: atoms[se.Focus], Order: se.Order}
		mapAtoms(out.Neighbors[:], se.Neighbors[:])
		return out
	case *TrigonalBipyramidal:
		out := &TrigonalBipyramidal{Focus: atoms[se.Focus], Order: se.Order}
		mapAtoms(out.Neighbors[:], se.Neighbors[:])
		return out
	case *Octahedral:
		out := &Octahedral{Focus: atoms[se.Focus], Order: se.Order}
		mapAtoms(out.Neighbors[:], se.Neighbors[:])
		return out
	case *DoubleBondStereo:
		return &DoubleBondStereo{
			Bond:         bonds[se.Bond],
			Refs:         [2]*Bond{bonds[se.Refs[0]], bonds[se.Refs[1]]},
			Conformation: se.Conformation,
		}
	case *Other:
		out := &Other{Name: se.Name, Focus: atoms[se.Focus], Config: se.Config,
			Neighbors: make([]*Atom, len(se.Neighbors))}
		mapAtoms(out.Neighbors, se.Neighbors)
		return out
	default:
		return nil
	}
}
