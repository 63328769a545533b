// Package notation adapts the minimal graph produced by a linear-notation
// tokenizer into a molecule.MolecularGraph, resolving the stereo elements the
// notation implies through parity descriptors and directional bonds.
package notation

import (
	"fmt"
)

// BondCode is the order-or-direction label the tokenizer attaches to an edge.
type BondCode int

const (
	CodeImplicit BondCode = iota
	CodeSingle
	CodeUp
	CodeDown
	CodeImplicitAromatic
	CodeAromatic
	CodeDouble
	CodeDoubleAromatic
	CodeTriple
	CodeQuadruple
)

var bondCodeNames = map[BondCode]string{
	CodeImplicit:         "implicit",
	CodeSingle:           "single",
	CodeUp:               "up",
	CodeDown:             "down",
	CodeImplicitAromatic: "implicit_aromatic",
	CodeAromatic:         "aromatic",
	CodeDouble:           "double",
	CodeDoubleAromatic:   "double_aromatic",
	CodeTriple:           "triple",
	CodeQuadruple:        "quadruple",
}

func (c BondCode) String() string {
	if n, ok := bondCodeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("bond_code(%d)", int(c))
}

// ParseBondCode reads the lower-case name used in input documents.  Unknown
// names yield an out-of-table code so that the adapter reports them.
func ParseBondCode(s string) BondCode {
	for c, n := range bondCodeNames {
		if n == s {
			return c
		}
	}
	return BondCode(-1)
}

// singleOrder reports whether the code denotes a bond of order one in the
// notation, which is how substituents of cumulene terminals are recognised.
func (c BondCode) singleOrder() bool {
	switch c {
	case CodeImplicit, CodeSingle, CodeUp, CodeDown:
		return true
	}
	return false
}

func (c BondCode) directional() bool {
	return c == CodeUp || c == CodeDown
}

func (c BondCode) double() bool {
	return c == CodeDouble
}

// inverse swaps Up and Down.
func (c BondCode) inverse() BondCode {
	switch c {
	case CodeUp:
		return CodeDown
	case CodeDown:
		return CodeUp
	}
	return c
}

// Vertex is one atom of the tokenizer output.
type Vertex struct {
	Element       string
	Charge        *int
	Isotope       *int
	Aromatic      bool
	ImplicitH     int
	AtomClass     int
	Label         string
	Configuration Configuration
}

// Edge joins vertices U and V.  A directional code reads from U to V.
type Edge struct {
	U, V int
	Code BondCode
}

// Other returns the endpoint opposite to u.
func (e Edge) Other(u int) int {
	if e.U == u {
		return e.V
	}
	return e.U
}

// CodeFrom returns the edge code as read starting from u.
func (e Edge) CodeFrom(u int) BondCode {
	if u == e.U {
		return e.Code
	}
	return e.Code.inverse()
}

// Graph is the minimal notation graph.  The order of Edges defines each
// vertex's neighbour order, which stereo descriptors are relative to.
type Graph struct {
	Title    string
	Vertices []Vertex
	Edges    []Edge
}
