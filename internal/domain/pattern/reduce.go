package pattern

import (
	"fmt"

	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
)

// TokenKind classifies an element of a flat predicate token sequence.
type TokenKind int

const (
	TokOperand TokenKind = iota
	TokNot               // "!"
	TokHighAnd           // "&"
	TokOr                // ","
	TokLowAnd            // ";"
)

func (k TokenKind) String() string {
	switch k {
	case TokOperand:
		return "operand"
	case TokNot:
		return "!"
	case TokHighAnd:
		return "&"
	case TokOr:
		return ","
	case TokLowAnd:
		return ";"
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is an operator or an operand of a bracket-atom or bond predicate.
type Token struct {
	Kind    TokenKind
	Operand Node
}

// Operand wraps a predicate node as a token.
func Operand(n Node) Token { return Token{Kind: TokOperand, Operand: n} }

// Operator returns the token for an operator kind.
func Operator(k TokenKind) Token { return Token{Kind: k} }

// Reduce folds a flat token sequence into a predicate tree.  Precedence from
// loosest to tightest is ";", ",", "&" (or juxtaposition), then prefix "!".
// Binary tiers associate to the left.
func Reduce(tokens []Token) (Node, error) {
	if len(tokens) == 0 {
		return nil, errors.MalformedPattern("empty predicate")
	}
	r := &reducer{tokens: tokens}
	n, err := r.lowAnd()
	if err != nil {
		return nil, err
	}
	if r.pos != len(tokens) {
		return nil, errors.MalformedPattern(fmt.Sprintf("unexpected %s at token %d", tokens[r.pos].Kind, r.pos))
	}
	return n, nil
}

type reducer struct {
	tokens []Token
	pos    int
}

func (r *reducer) peek() (TokenKind, bool) {
	if r.pos >= len(r.tokens) {
		return 0, false
	}
	return r.tokens[r.pos].Kind, true
}

func (r *reducer) lowAnd() (Node, error) {
	left, err := r.or()
	if err != nil {
		return nil, err
	}
	for {
		if k, ok := r.peek(); !ok || k != TokLowAnd {
			return left, nil
		}
		r.pos++
		right, err := r.or()
		if err != nil {
			return nil, err
		}
		left = &LowAnd{Left: left, Right: right}
	}
}

func (r *reducer) or() (Node, error) {
	left, err := r.highAnd()
	if err != nil {
		return nil, err
	}
	for {
		if k, ok := r.peek(); !ok || k != TokOr {
			return left, nil
		}
		r.pos++
		right, err := r.highAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
}

func (r *reducer) highAnd() (Node, error) {
	left, err := r.unary()
	if err != nil {
		return nil, err
	}
	for {
		k, ok := r.peek()
		if !ok {
			return left, nil
		}
		implicit := false
		switch k {
		case TokHighAnd:
			r.pos++
		case TokOperand, TokNot:
			implicit = true
		default:
			return left, nil
		}
		right, err := r.unary()
		if err != nil {
			return nil, err
		}
		left = &HighAnd{Left: left, Right: right, Implicit: implicit}
	}
}

func (r *reducer) unary() (Node, error) {
	k, ok := r.peek()
	if !ok {
		return nil, errors.MalformedPattern("predicate ends with an operator")
	}
	switch k {
	case TokNot:
		r.pos++
		operand, err := r.unary()
		if err != nil {
			return nil, err
		}
		return &Not{Operand: operand}, nil
	case TokOperand:
		tok := r.tokens[r.pos]
		r.pos++
		if tok.Operand == nil {
			return nil, errors.MalformedPattern(fmt.Sprintf("operand token %d is empty", r.pos-1))
		}
		return tok.Operand, nil
	}
	return nil, errors.MalformedPattern(fmt.Sprintf("unexpected %s at token %d", k, r.pos))
}
