// Package pattern compiles substructure-pattern syntax trees into
// query.QueryGraph values.  The tree is produced by an external tokenizer; the
// node kinds below are the whole contract.
package pattern

import (
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/query"
)

// Node is implemented by every syntax-tree node kind.
type Node interface {
	node()
}

// ─────────────────────────────────────────────────────────────────────────────
// Structure
// ─────────────────────────────────────────────────────────────────────────────

// Reaction is a role-tagged pattern "reactants>agents>products".  Any of the
// groups may be nil.
type Reaction struct {
	Reactants *Pattern
	Agents    *Pattern
	Products  *Pattern
}

// Pattern is one top-level pattern made of dot-separated components.
type Pattern struct {
	Components []*Component
}

// Component is a connected piece of a pattern.  A non-zero Group places its
// atoms in a component group, as in "(C).(C)".
type Component struct {
	Group int
	Chain *Chain
}

// Chain is a sequence of Atom, Bond, Branch and RingClosure items.  A Bond
// applies to the next Atom; a RingClosure or Branch applies to the last Atom.
type Chain struct {
	Items []Node
}

// Atom is an atom with its predicate.  A nil Expr matches any atom.
type Atom struct {
	Expr         Node
	Map          int
	RingClosures []*RingClosure
}

// Bond is an explicit bond predicate.  A nil Expr matches single or aromatic.
type Bond struct {
	Expr Node
}

// Branch is a parenthesised sub-chain hanging off the current atom.  Bond,
// when set, connects the current atom to the branch's first atom.
type Branch struct {
	Bond  *Bond
	Chain *Chain
}

// RingClosure is a ring-bond digit with an optional bond predicate.
type RingClosure struct {
	Digit int
	Bond  *Bond
}

// ─────────────────────────────────────────────────────────────────────────────
// Predicates
// ─────────────────────────────────────────────────────────────────────────────

// LowAnd is the ";" conjunction, the loosest operator.
type LowAnd struct {
	Left, Right Node
}

// Or is the "," disjunction.
type Or struct {
	Left, Right Node
}

// HighAnd is the "&" conjunction, or juxtaposition when Implicit.
type HighAnd struct {
	Left, Right Node
	Implicit    bool
}

// Not is the "!" negation.
type Not struct {
	Operand Node
}

// AtomPrimitive is a leaf atom test.  Symbol is read by the element ops,
// Value by the rest.
type AtomPrimitive struct {
	Op     query.Op
	Value  int
	Symbol string
}

// BondPrimitive is a leaf bond test.
type BondPrimitive struct {
	Op    query.Op
	Value int
}

// Recursive is an environment test "$(...)" over a nested pattern.  The first
// atom of the nested pattern is the one matched.
type Recursive struct {
	Pattern *Pattern
}

func (*Reaction) node()      {}
func (*Pattern) node()       {}
func (*Component) node()     {}
func (*Chain) node()         {}
func (*Atom) node()          {}
func (*Bond) node()          {}
func (*Branch) node()        {}
func (*RingClosure) node()   {}
func (*LowAnd) node()        {}
func (*Or) node()            {}
func (*HighAnd) node()       {}
func (*Not) node()           {}
func (*AtomPrimitive) node() {}
func (*BondPrimitive) node() {}
func (*Recursive) node()     {}

// ─────────────────────────────────────────────────────────────────────────────
// Leaf shorthands
// ─────────────────────────────────────────────────────────────────────────────

// Elem tests for an element regardless of aromaticity.
func Elem(symbol string) *AtomPrimitive {
	return &AtomPrimitive{Op: query.OpElement, Symbol: symbol}
}

// Aliphatic tests for an aliphatic element, as in "C".
func Aliphatic(symbol string) *AtomPrimitive {
	return &AtomPrimitive{Op: query.OpAliphaticElement, Symbol: symbol}
}

// Aromatic tests for an aromatic element, as in "c".
func Aromatic(symbol string) *AtomPrimitive {
	return &AtomPrimitive{Op: query.OpAromaticElement, Symbol: symbol}
}

// Prim is an atom primitive with an integer argument.
func Prim(op query.Op, value int) *AtomPrimitive {
	return &AtomPrimitive{Op: op, Value: value}
}

// Chiral marks an atom with "@" (anticlockwise) or "@@" (clockwise).
func Chiral(w molecule.Winding) *AtomPrimitive {
	return &AtomPrimitive{Op: query.OpChirality, Value: int(w)}
}

// BondOf is a bond primitive with an integer argument.
func BondOf(op query.Op, value int) *Bond {
	return &Bond{Expr: &BondPrimitive{Op: op, Value: value}}
}

// DoubleBond is "=".
func DoubleBond() *Bond { return BondOf(query.OpOrder, int(molecule.OrderDouble)) }

// UpBond is "/".
func UpBond() *Bond { return BondOf(query.OpUpBond, 0) }

// DownBond is "\".
func DownBond() *Bond { return BondOf(query.OpDownBond, 0) }

// Seq builds a Chain from items.
func Seq(items ...Node) *Chain {
	return &Chain{Items: items}
}

// Single builds a one-component Pattern.
func Single(items ...Node) *Pattern {
	return &Pattern{Components: []*Component{{Chain: Seq(items...)}}}
}
