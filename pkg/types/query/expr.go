// Package query defines the substructure-pattern model: predicate expressions
// over atoms and bonds and the QueryGraph that attaches them to a topology.
package query

import (
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Op: predicate operator
// ─────────────────────────────────────────────────────────────────────────────

// Op is the operator of an Expr node.
type Op int

const (
	OpTrue Op = iota
	OpFalse
	OpAnd
	OpOr
	OpNot

	// atom primitives
	OpElement          // Text = symbol, aliphatic or aromatic
	OpAliphaticElement // Text = symbol
	OpAromaticElement  // Text = symbol
	OpAromatic
	OpAliphatic
	OpAtomicNumber
	OpDegree
	OpTotalHCount
	OpImplicitHCount
	OpRingCount
	OpRingSize
	OpRingMember
	OpValence
	OpConnectivity
	OpRingBondCount
	OpFormalCharge
	OpIsotope
	OpHasIsotope
	OpChirality // Value = winding, 1 clockwise, 2 anticlockwise
	OpHybridisation
	OpPeriodicGroup
	OpHeavyDegree
	OpReactionRole // Value = Role
	OpRecursive    // Sub = nested pattern

	// bond primitives
	OpSingleOrAromatic
	OpSingleOrDouble
	OpDoubleOrAromatic
	OpOrder // Value = multiplicity
	OpAromaticBond
	OpAliphaticBond
	OpRingBond
	OpUpBond
	OpDownBond
)

var opNames = map[Op]string{
	OpTrue: "TRUE", OpFalse: "FALSE", OpAnd: "AND", OpOr: "OR", OpNot: "NOT",
	OpElement: "ELEMENT", OpAliphaticElement: "ALIPHATIC_ELEMENT", OpAromaticElement: "AROMATIC_ELEMENT",
	OpAromatic: "IS_AROMATIC", OpAliphatic: "IS_ALIPHATIC", OpAtomicNumber: "ATOMIC_NUMBER",
	OpDegree: "DEGREE", OpTotalHCount: "TOTAL_H_COUNT", OpImplicitHCount: "IMPL_H_COUNT",
	OpRingCount: "RING_COUNT", OpRingSize: "RING_SIZE", OpRingMember: "IS_IN_RING",
	OpValence: "VALENCE", OpConnectivity: "TOTAL_DEGREE", OpRingBondCount: "RING_BOND_COUNT",
	OpFormalCharge: "FORMAL_CHARGE", OpIsotope: "ISOTOPE", OpHasIsotope: "HAS_ISOTOPE",
	OpChirality: "STEREOCHEMISTRY", OpHybridisation: "HYBRIDISATION", OpPeriodicGroup: "PERIODIC_GROUP",
	OpHeavyDegree: "HEAVY_DEGREE", OpReactionRole: "REACTION_ROLE", OpRecursive: "RECURSIVE",
	OpSingleOrAromatic: "SINGLE_OR_AROMATIC", OpSingleOrDouble: "SINGLE_OR_DOUBLE",
	OpDoubleOrAromatic: "DOUBLE_OR_AROMATIC", OpOrder: "ORDER", OpAromaticBond: "IS_AROMATIC_BOND",
	OpAliphaticBond: "IS_ALIPHATIC_BOND", OpRingBond: "IS_IN_RING_BOND", OpUpBond: "UP", OpDownBond: "DOWN",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("OP(%d)", int(o))
}

// ParseOp resolves an operator from its String name, ignoring case.
func ParseOp(name string) (Op, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for op, n := range opNames {
		if n == upper {
			return op, true
		}
	}
	return 0, false
}

// Role is the reaction role an atom was declared in.
type Role int

const (
	RoleNone Role = iota
	RoleReactant
	RoleAgent
	RoleProduct
)

func (r Role) String() string {
	switch r {
	case RoleReactant:
		return "reactant"
	case RoleAgent:
		return "agent"
	case RoleProduct:
		return "product"
	default:
		return "none"
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Expr: predicate tree
// ─────────────────────────────────────────────────────────────────────────────

// Expr is an immutable predicate over an atom or a bond.  Leaves are
// primitives; And, Or and Not combine them.
type Expr struct {
	Op    Op
	Value int
	Text  string
	Left  *Expr
	Right *Expr
	Sub   *QueryGraph
}

var (
	exprTrue  = &Expr{Op: OpTrue}
	exprFalse = &Expr{Op: OpFalse}
)

// True matches everything.
func True() *Expr { return exprTrue }

// False matches nothing.
func False() *Expr { return exprFalse }

// Primitive returns a leaf with an integer argument.
func Primitive(op Op, value int) *Expr {
	return &Expr{Op: op, Value: value}
}

// Element matches an element regardless of aromaticity.
func Element(symbol string) *Expr {
	return &Expr{Op: OpElement, Text: symbol}
}

// AliphaticElement matches an aliphatic atom of the element.
func AliphaticElement(symbol string) *Expr {
	return &Expr{Op: OpAliphaticElement, Text: symbol}
}

// AromaticElement matches an aromatic atom of the element.
func AromaticElement(symbol string) *Expr {
	return &Expr{Op: OpAromaticElement, Text: symbol}
}

// Recursive matches an atom whose environment matches sub, rooted at sub's
// first atom.
func Recursive(sub *QueryGraph) *Expr {
	return &Expr{Op: OpRecursive, Sub: sub}
}

// ReactionRole matches atoms declared in the given reaction role.
func ReactionRole(r Role) *Expr {
	return &Expr{Op: OpReactionRole, Value: int(r)}
}

// And returns the conjunction, folding constant operands.
func And(left, right *Expr) *Expr {
	switch {
	case left == nil:
		return right
	case right == nil:
		return left
	case left.Op == OpTrue:
		return right
	case right.Op == OpTrue:
		return left
	case left.Op == OpFalse || right.Op == OpFalse:
		return False()
	}
	return &Expr{Op: OpAnd, Left: left, Right: right}
}

// Or returns the disjunction, folding constant operands.
func Or(left, right *Expr) *Expr {
	switch {
	case left == nil:
		return right
	case right == nil:
		return left
	case left.Op == OpTrue || right.Op == OpTrue:
		return True()
	case left.Op == OpFalse:
		return right
	case right.Op == OpFalse:
		return left
	}
	return &Expr{Op: OpOr, Left: left, Right: right}
}

// Not returns the negation, folding constants and double negation.
func Not(e *Expr) *Expr {
	switch e.Op {
	case OpTrue:
		return False()
	case OpFalse:
		return True()
	case OpNot:
		return e.Left
	}
	return &Expr{Op: OpNot, Left: e}
}

// Equal reports structural equality.  Recursive sub-patterns compare by
// identity.
func (e *Expr) Equal(o *Expr) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.Op == o.Op && e.Value == o.Value && e.Text == o.Text && e.Sub == o.Sub &&
		e.Left.Equal(o.Left) && e.Right.Equal(o.Right)
}

// IsAromaticSymbol reports whether the expression is anchored on an aromatic
// element symbol, as in "c" or "[nH]".
func (e *Expr) IsAromaticSymbol() bool {
	if e == nil {
		return false
	}
	switch e.Op {
	case OpAromaticElement:
		return true
	case OpAnd:
		return e.Left.IsAromaticSymbol() || e.Right.IsAromaticSymbol()
	}
	return false
}

// Symbol returns the display symbol for an atom predicate: the element of the
// first element primitive reachable through conjunctions, or "*".
func (e *Expr) Symbol() string {
	if e == nil {
		return "*"
	}
	switch e.Op {
	case OpElement, OpAliphaticElement:
		return e.Text
	case OpAromaticElement:
		if e.Text == "" {
			return "*"
		}
		return strings.ToLower(e.Text[:1]) + e.Text[1:]
	case OpAnd:
		if s := e.Left.Symbol(); s != "*" {
			return s
		}
		return e.Right.Symbol()
	}
	return "*"
}

// String renders the tree in prefix form, e.g. "AND(ELEMENT(C),DEGREE(3))".
func (e *Expr) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e *Expr) write(sb *strings.Builder) {
	if e == nil {
		sb.WriteString("<nil>")
		return
	}
	sb.WriteString(e.Op.String())
	switch e.Op {
	case OpTrue, OpFalse:
	case OpAnd, OpOr:
		sb.WriteByte('(')
		e.Left.write(sb)
		sb.WriteByte(',')
		e.Right.write(sb)
		sb.WriteByte(')')
	case OpNot:
		sb.WriteByte('(')
		e.Left.write(sb)
		sb.WriteByte(')')
	case OpElement, OpAliphaticElement, OpAromaticElement:
		fmt.Fprintf(sb, "(%s)", e.Text)
	case OpRecursive:
		if e.Sub != nil {
			fmt.Fprintf(sb, "(%d atoms)", e.Sub.Graph().AtomCount())
		}
	case OpReactionRole:
		fmt.Fprintf(sb, "(%s)", Role(e.Value))
	case OpAromatic, OpAliphatic, OpRingMember, OpSingleOrAromatic, OpSingleOrDouble,
		OpDoubleOrAromatic, OpAromaticBond, OpAliphaticBond, OpRingBond, OpUpBond, OpDownBond, OpHasIsotope:
	default:
		fmt.Fprintf(sb, "(%d)", e.Value)
	}
}
