// Package molecule defines the molecular graph model shared by every layer of
// the chemsem toolkit: atoms, bonds, the MolecularGraph container with its
// edit API, and the closed set of stereo-element variants.  Beyond invariant
// checks in the edit API, no chemistry logic lives here.
package molecule

import (
	"fmt"
)

// ─────────────────────────────────────────────────────────────────────────────
// BondOrder: multiplicity of a bond
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder is the formal multiplicity of a bond.  OrderUnset is used for
// aromatic bonds whose Kekulé assignment has not been decided.
type BondOrder int

const (
	// OrderUnset marks a bond without an assigned multiplicity.
	OrderUnset BondOrder = iota

	// OrderSingle is a single bond.
	OrderSingle

	// OrderDouble is a double bond.
	OrderDouble

	// OrderTriple is a triple bond.
	OrderTriple

	// OrderQuadruple is a quadruple bond.
	OrderQuadruple
)

// String returns the lower-case name of the order.
func (o BondOrder) String() string {
	switch o {
	case OrderUnset:
		return "unset"
	case OrderSingle:
		return "single"
	case OrderDouble:
		return "double"
	case OrderTriple:
		return "triple"
	case OrderQuadruple:
		return "quadruple"
	default:
		return fmt.Sprintf("order(%d)", int(o))
	}
}

// Numeric returns the multiplicity as an integer, 0 for OrderUnset.
func (o BondOrder) Numeric() int {
	if o < OrderUnset || o > OrderQuadruple {
		return 0
	}
	return int(o)
}

// ─────────────────────────────────────────────────────────────────────────────
// BondStereo: per-bond display marker
// ─────────────────────────────────────────────────────────────────────────────

// BondStereo is the stereo marker carried by a bond.  Up and Down are the
// directional markers of a linear notation, read from Begin to End.
type BondStereo int

const (
	// StereoNone means the bond carries no stereo marker.
	StereoNone BondStereo = iota

	// StereoUp marks a bond written as "/" from Begin to End.
	StereoUp

	// StereoDown marks a bond written as "\" from Begin to End.
	StereoDown

	// StereoEOrZ marks a double bond whose geometry is taken from coordinates.
	StereoEOrZ
)

// String returns the lower-case name of the marker.
func (s BondStereo) String() string {
	switch s {
	case StereoNone:
		return "none"
	case StereoUp:
		return "up"
	case StereoDown:
		return "down"
	case StereoEOrZ:
		return "e_or_z"
	default:
		return fmt.Sprintf("stereo(%d)", int(s))
	}
}

// Inverse swaps Up and Down and leaves every other marker unchanged.
func (s BondStereo) Inverse() BondStereo {
	switch s {
	case StereoUp:
		return StereoDown
	case StereoDown:
		return StereoUp
	default:
		return s
	}
}

// IsDirectional reports whether the marker is Up or Down.
func (s BondStereo) IsDirectional() bool {
	return s == StereoUp || s == StereoDown
}

// ─────────────────────────────────────────────────────────────────────────────
// Coordinates
// ─────────────────────────────────────────────────────────────────────────────

// Point2d is a depiction coordinate.
type Point2d struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Point3d is a spatial coordinate.
type Point3d struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom and Bond
// ─────────────────────────────────────────────────────────────────────────────

// Atom is a vertex of a MolecularGraph.  Optional properties are pointers and
// stay nil when the source notation did not specify them.
type Atom struct {
	// Symbol is the element symbol ("C", "Cl") or "*" for an unknown atom.
	Symbol string

	// Charge is the formal charge; nil when unspecified.
	Charge *int

	// Isotope is the mass number; nil when unspecified.
	Isotope *int

	// Aromatic is set when the atom was written with an aromatic symbol or
	// perceived as aromatic upstream.
	Aromatic bool

	// ImplicitH is the implicit hydrogen count.
	ImplicitH int

	// Point2d is the depiction coordinate; nil when absent.
	Point2d *Point2d

	// Point3d is the spatial coordinate; nil when absent.
	Point3d *Point3d

	// Label is the free-text label of a pseudo atom.
	Label string

	// AtomClass is the atom-class (mapping) number, 0 when unset.
	AtomClass int
}

// NewAtom returns an atom of the given element with no optional properties.
func NewAtom(symbol string) *Atom {
	return &Atom{Symbol: symbol}
}

// FormalCharge returns the charge, treating an unspecified charge as 0.
func (a *Atom) FormalCharge() int {
	if a.Charge == nil {
		return 0
	}
	return *a.Charge
}

// IsPseudo reports whether the atom is a labelled pseudo atom.
func (a *Atom) IsPseudo() bool {
	return a.Label != ""
}

func (a *Atom) String() string {
	if a == nil {
		return "<nil>"
	}
	if a.Label != "" {
		return a.Label
	}
	return a.Symbol
}

// IntPtr is a convenience for populating the optional integer fields.
func IntPtr(v int) *int {
	return &v
}

// Bond connects two distinct atoms of the same graph.  Bonds are created via
// MolecularGraph.AddBond, which enforces the endpoint invariants.
type Bond struct {
	begin, end *Atom

	// Order is the formal multiplicity.
	Order BondOrder

	// Aromatic marks an aromatic bond.
	Aromatic bool

	// Stereo is the display marker, read from Begin to End.
	Stereo BondStereo
}

// Begin returns the first endpoint.
func (b *Bond) Begin() *Atom { return b.begin }

// End returns the second endpoint.
func (b *Bond) End() *Atom { return b.end }

// Contains reports whether a is an endpoint of b.
func (b *Bond) Contains(a *Atom) bool {
	return a != nil && (b.begin == a || b.end == a)
}

// Other returns the endpoint opposite to a, or nil when a is not an endpoint.
func (b *Bond) Other(a *Atom) *Atom {
	switch a {
	case b.begin:
		return b.end
	case b.end:
		return b.begin
	default:
		return nil
	}
}

// StereoFrom returns the directional marker as read starting from a: the
// marker itself when a is Begin and its inverse when a is End.
func (b *Bond) StereoFrom(a *Atom) BondStereo {
	if a == b.end {
		return b.Stereo.Inverse()
	}
	return b.Stereo
}

// IsPlainSingle reports whether the bond is a non-aromatic single bond
// without a stereo marker.
func (b *Bond) IsPlainSingle() bool {
	return b.Order == OrderSingle && !b.Aromatic && b.Stereo == StereoNone
}

// LonePair marks a non-bonding electron pair on an atom.
type LonePair struct {
	Atom *Atom
}

// SingleElectron marks an unpaired electron on an atom.
type SingleElectron struct {
	Atom *Atom
}
