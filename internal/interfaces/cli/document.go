package cli

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/JibranRasheed/NCDK-sub001/internal/domain/notation"
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/pattern"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/query"
)

// ─────────────────────────────────────────────────────────────────────────────
// Graph documents
// ─────────────────────────────────────────────────────────────────────────────

// GraphInput is one decoded notation graph with its optional depiction
// coordinates, indexed like the vertices.
type GraphInput struct {
	Graph  *notation.Graph
	Coords []*molecule.Point2d
}

// ApplyCoords copies the coordinates onto the atoms of an adapted graph.
func (in *GraphInput) ApplyCoords(g *molecule.MolecularGraph) {
	for i, p := range in.Coords {
		if p != nil && i < g.AtomCount() {
			c := *p
			g.Atom(i).Point2d = &c
		}
	}
}

type graphFile struct {
	graphDoc `yaml:",inline"`
	Graphs   []graphDoc `yaml:"graphs"`
}

type graphDoc struct {
	Title string    `yaml:"title"`
	Atoms []atomDoc `yaml:"atoms"`
	Bonds []bondDoc `yaml:"bonds"`
}

type atomDoc struct {
	Element   string   `yaml:"element"`
	Charge    *int     `yaml:"charge"`
	Isotope   *int     `yaml:"isotope"`
	Aromatic  bool     `yaml:"aromatic"`
	ImplicitH int      `yaml:"implicit_h"`
	Class     int      `yaml:"class"`
	Label     string   `yaml:"label"`
	Config    string   `yaml:"config"`
	X         *float64 `yaml:"x"`
	Y         *float64 `yaml:"y"`
}

type bondDoc struct {
	U    int    `yaml:"u"`
	V    int    `yaml:"v"`
	Code string `yaml:"code"`
}

func invalidDocument(format string, args ...interface{}) *errors.AppError {
	return errors.Newf(errors.ErrCodeInvalidDocument, format, args...)
}

// DecodeGraphs reads a graph document.  The file holds either one graph at the
// top level or a "graphs" list.
func DecodeGraphs(r io.Reader) ([]*GraphInput, error) {
	var f graphFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, invalidDocument("document is empty")
		}
		return nil, errors.Wrap(err, errors.ErrCodeInvalidDocument, "decode graph document")
	}

	single := f.Title != "" || len(f.Atoms) > 0 || len(f.Bonds) > 0
	switch {
	case single && len(f.Graphs) > 0:
		return nil, invalidDocument("document mixes a top-level graph with a graphs list")
	case single:
		f.Graphs = []graphDoc{f.graphDoc}
	case len(f.Graphs) == 0:
		return nil, invalidDocument("document holds no graph")
	}

	out := make([]*GraphInput, len(f.Graphs))
	for i, d := range f.Graphs {
		in, err := d.input()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("graph %d", i))
		}
		out[i] = in
	}
	return out, nil
}

func (d graphDoc) input() (*GraphInput, error) {
	in := &GraphInput{
		Graph:  &notation.Graph{Title: d.Title},
		Coords: make([]*molecule.Point2d, len(d.Atoms)),
	}
	for i, a := range d.Atoms {
		conf, err := notation.ParseConfiguration(a.Config)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidDocument, fmt.Sprintf("atom %d", i))
		}
		if (a.X == nil) != (a.Y == nil) {
			return nil, invalidDocument("atom %d has only one of x and y", i)
		}
		if a.X != nil {
			in.Coords[i] = &molecule.Point2d{X: *a.X, Y: *a.Y}
		}
		in.Graph.Vertices = append(in.Graph.Vertices, notation.Vertex{
			Element:       a.Element,
			Charge:        a.Charge,
			Isotope:       a.Isotope,
			Aromatic:      a.Aromatic,
			ImplicitH:     a.ImplicitH,
			AtomClass:     a.Class,
			Label:         a.Label,
			Configuration: conf,
		})
	}
	for _, b := range d.Bonds {
		code := notation.CodeImplicit
		if b.Code != "" {
			code = notation.ParseBondCode(b.Code)
		}
		in.Graph.Edges = append(in.Graph.Edges, notation.Edge{U: b.U, V: b.V, Code: code})
	}
	return in, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Pattern documents
// ─────────────────────────────────────────────────────────────────────────────

// PatternInput is a decoded pattern document: exactly one of Pattern and
// Reaction is set.
type PatternInput struct {
	Pattern  *pattern.Pattern
	Reaction *pattern.Reaction
}

type patternFile struct {
	patternDoc `yaml:",inline"`
	Reaction   *reactionDoc `yaml:"reaction"`
}

type reactionDoc struct {
	Reactants *patternDoc `yaml:"reactants"`
	Agents    *patternDoc `yaml:"agents"`
	Products  *patternDoc `yaml:"products"`
}

type patternDoc struct {
	Components []componentDoc `yaml:"components"`
}

type componentDoc struct {
	Group int         `yaml:"group"`
	Chain []yaml.Node `yaml:"chain"`
}

type atomItem struct {
	Expr  yaml.Node  `yaml:"expr"`
	Map   int        `yaml:"map"`
	Rings []ringItem `yaml:"rings"`
}

type ringItem struct {
	Digit int       `yaml:"digit"`
	Bond  yaml.Node `yaml:"bond"`
}

type branchItem struct {
	Bond  yaml.Node   `yaml:"bond"`
	Chain []yaml.Node `yaml:"chain"`
}

// DecodePattern reads a pattern document.  Chain items are single-key
// mappings ("atom", "bond", "branch", "ring"); predicates are token lists or
// strings split by splitTokens, reduced with pattern.Reduce.
func DecodePattern(r io.Reader) (*PatternInput, error) {
	var f patternFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, invalidDocument("document is empty")
		}
		return nil, errors.Wrap(err, errors.ErrCodeInvalidDocument, "decode pattern document")
	}

	switch {
	case f.Reaction != nil && len(f.Components) > 0:
		return nil, invalidDocument("document mixes a reaction with top-level components")
	case f.Reaction != nil:
		r := &pattern.Reaction{}
		var err error
		if r.Reactants, err = f.Reaction.Reactants.build(); err != nil {
			return nil, err
		}
		if r.Agents, err = f.Reaction.Agents.build(); err != nil {
			return nil, err
		}
		if r.Products, err = f.Reaction.Products.build(); err != nil {
			return nil, err
		}
		return &PatternInput{Reaction: r}, nil
	case len(f.Components) == 0:
		return nil, invalidDocument("document holds no pattern")
	}

	p, err := f.patternDoc.build()
	if err != nil {
		return nil, err
	}
	return &PatternInput{Pattern: p}, nil
}

func (d *patternDoc) build() (*pattern.Pattern, error) {
	if d == nil {
		return nil, nil
	}
	p := &pattern.Pattern{}
	for _, c := range d.Components {
		ch, err := chain(c.Chain)
		if err != nil {
			return nil, err
		}
		p.Components = append(p.Components, &pattern.Component{Group: c.Group, Chain: ch})
	}
	return p, nil
}

func chain(items []yaml.Node) (*pattern.Chain, error) {
	ch := &pattern.Chain{}
	for i := range items {
		n, err := chainItem(&items[i])
		if err != nil {
			return nil, err
		}
		ch.Items = append(ch.Items, n)
	}
	return ch, nil
}

func chainItem(n *yaml.Node) (pattern.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, invalidDocument("line %d: chain item must be a mapping with one key", n.Line)
	}
	key, val := n.Content[0].Value, n.Content[1]

	switch key {
	case "atom":
		var a atomItem
		if err := val.Decode(&a); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidDocument, fmt.Sprintf("line %d", val.Line))
		}
		expr, err := predicate(&a.Expr, false)
		if err != nil {
			return nil, err
		}
		atom := &pattern.Atom{Expr: expr, Map: a.Map}
		for i := range a.Rings {
			rc, err := a.Rings[i].build()
			if err != nil {
				return nil, err
			}
			atom.RingClosures = append(atom.RingClosures, rc)
		}
		return atom, nil
	case "bond":
		return bond(val)
	case "ring":
		var r ringItem
		if err := val.Decode(&r); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidDocument, fmt.Sprintf("line %d", val.Line))
		}
		return r.build()
	case "branch":
		var b branchItem
		if err := val.Decode(&b); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidDocument, fmt.Sprintf("line %d", val.Line))
		}
		bd, err := optionalBond(&b.Bond)
		if err != nil {
			return nil, err
		}
		ch, err := chain(b.Chain)
		if err != nil {
			return nil, err
		}
		return &pattern.Branch{Bond: bd, Chain: ch}, nil
	}
	return nil, invalidDocument("line %d: unknown chain item %q", n.Line, key)
}

func (r *ringItem) build() (*pattern.RingClosure, error) {
	bd, err := optionalBond(&r.Bond)
	if err != nil {
		return nil, err
	}
	return &pattern.RingClosure{Digit: r.Digit, Bond: bd}, nil
}

func bond(n *yaml.Node) (*pattern.Bond, error) {
	expr, err := predicate(n, true)
	if err != nil {
		return nil, err
	}
	return &pattern.Bond{Expr: expr}, nil
}

// optionalBond returns nil for an absent node.
func optionalBond(n *yaml.Node) (*pattern.Bond, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	return bond(n)
}

// ─────────────────────────────────────────────────────────────────────────────
// Predicate tokens
// ─────────────────────────────────────────────────────────────────────────────

var operatorTokens = map[string]pattern.TokenKind{
	"!": pattern.TokNot,
	"&": pattern.TokHighAnd,
	",": pattern.TokOr,
	";": pattern.TokLowAnd,
}

var bondShorthands = map[string]*pattern.BondPrimitive{
	"-":  {Op: query.OpOrder, Value: int(molecule.OrderSingle)},
	"=":  {Op: query.OpOrder, Value: int(molecule.OrderDouble)},
	"#":  {Op: query.OpOrder, Value: int(molecule.OrderTriple)},
	"$":  {Op: query.OpOrder, Value: int(molecule.OrderQuadruple)},
	":":  {Op: query.OpAromaticBond},
	"~":  {Op: query.OpTrue},
	"@":  {Op: query.OpRingBond},
	"/":  {Op: query.OpUpBond},
	"\\": {Op: query.OpDownBond},
}

var (
	namedToken     = regexp.MustCompile(`^([A-Za-z_]+)(?:\((.*)\))?$`)
	aliphaticToken = regexp.MustCompile(`^[A-Z][a-z]?$`)
	aromaticToken  = regexp.MustCompile(`^[a-z][a-z]?$`)
)

// predicate reduces a token list, or a whitespace-separated string, to a
// predicate tree.  An absent node is nil, the default predicate.
func predicate(n *yaml.Node, isBond bool) (pattern.Node, error) {
	var items []*yaml.Node
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		for _, f := range splitTokens(n.Value) {
			items = append(items, &yaml.Node{Kind: yaml.ScalarNode, Value: f, Line: n.Line})
		}
	case yaml.SequenceNode:
		items = n.Content
	default:
		return nil, invalidDocument("line %d: predicate must be a string or a list", n.Line)
	}

	tokens := make([]pattern.Token, 0, len(items))
	for _, it := range items {
		tok, err := token(it, isBond)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return pattern.Reduce(tokens)
}

// splitTokens breaks a predicate string at whitespace and around the
// operators "!&,;" outside parentheses.
func splitTokens(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		depth int
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case depth == 0 && unicode.IsSpace(r):
			flush()
			continue
		case depth == 0 && strings.ContainsRune("!&,;", r):
			flush()
			out = append(out, string(r))
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}

func token(n *yaml.Node, isBond bool) (pattern.Token, error) {
	if n.Kind == yaml.MappingNode {
		if isBond || len(n.Content) != 2 || n.Content[0].Value != "recursive" {
			return pattern.Token{}, invalidDocument("line %d: only atom predicates take a recursive operand", n.Line)
		}
		var d patternDoc
		if err := n.Content[1].Decode(&d); err != nil {
			return pattern.Token{}, errors.Wrap(err, errors.ErrCodeInvalidDocument, fmt.Sprintf("line %d", n.Line))
		}
		p, err := d.build()
		if err != nil {
			return pattern.Token{}, err
		}
		return pattern.Operand(&pattern.Recursive{Pattern: p}), nil
	}
	if n.Kind != yaml.ScalarNode {
		return pattern.Token{}, invalidDocument("line %d: token must be a string", n.Line)
	}

	text := strings.TrimSpace(n.Value)
	if k, ok := operatorTokens[text]; ok {
		return pattern.Operator(k), nil
	}
	operand, err := operand(text, isBond)
	if err != nil {
		return pattern.Token{}, errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("line %d", n.Line))
	}
	return pattern.Operand(operand), nil
}

// operand reads a shorthand ("C", "c", "*", "@@", "=") or a named primitive
// "NAME" / "NAME(arg)" whose name is a query.Op.
func operand(text string, isBond bool) (pattern.Node, error) {
	if isBond {
		if p, ok := bondShorthands[text]; ok {
			c := *p
			return &c, nil
		}
	} else {
		switch {
		case text == "*":
			return &pattern.AtomPrimitive{Op: query.OpTrue}, nil
		case text == "@":
			return pattern.Chiral(molecule.Anticlockwise), nil
		case text == "@@":
			return pattern.Chiral(molecule.Clockwise), nil
		case aliphaticToken.MatchString(text):
			return pattern.Aliphatic(text), nil
		case aromaticToken.MatchString(text):
			return pattern.Aromatic(strings.ToUpper(text[:1]) + text[1:]), nil
		}
	}

	m := namedToken.FindStringSubmatch(text)
	if m == nil {
		return nil, invalidDocument("unrecognised token %q", text)
	}
	op, ok := query.ParseOp(m[1])
	if !ok {
		return nil, invalidDocument("unknown operator %q", m[1])
	}
	arg := m[2]

	switch op {
	case query.OpAnd, query.OpOr, query.OpNot, query.OpRecursive:
		return nil, invalidDocument("operator %s is structural; use the token form", op)
	case query.OpTrue, query.OpFalse:
		if isBond {
			return &pattern.BondPrimitive{Op: op}, nil
		}
		return &pattern.AtomPrimitive{Op: op}, nil
	}

	if isBond != (op >= query.OpSingleOrAromatic) {
		return nil, invalidDocument("operator %s does not apply here", op)
	}

	switch op {
	case query.OpElement, query.OpAliphaticElement, query.OpAromaticElement:
		if arg == "" {
			return nil, invalidDocument("operator %s needs an element symbol", op)
		}
		return &pattern.AtomPrimitive{Op: op, Symbol: arg}, nil
	case query.OpChirality:
		switch strings.ToLower(arg) {
		case "clockwise", "@@":
			return pattern.Chiral(molecule.Clockwise), nil
		case "anticlockwise", "@":
			return pattern.Chiral(molecule.Anticlockwise), nil
		}
	}

	value := 0
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, invalidDocument("operator %s takes an integer, got %q", op, arg)
		}
		value = v
	}
	if isBond {
		return &pattern.BondPrimitive{Op: op, Value: value}, nil
	}
	return &pattern.AtomPrimitive{Op: op, Value: value}, nil
}
