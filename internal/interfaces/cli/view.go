package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JibranRasheed/NCDK-sub001/internal/domain/partition"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/query"
)

// AtomView is the printable form of an atom.
type AtomView struct {
	Index     int               `json:"index"`
	Symbol    string            `json:"symbol"`
	Charge    *int              `json:"charge,omitempty"`
	Isotope   *int              `json:"isotope,omitempty"`
	Aromatic  bool              `json:"aromatic,omitempty"`
	ImplicitH int               `json:"implicit_h"`
	Class     int               `json:"class,omitempty"`
	Label     string            `json:"label,omitempty"`
	Point     *molecule.Point2d `json:"point,omitempty"`
}

// BondView is the printable form of a bond.
type BondView struct {
	Index    int    `json:"index"`
	Begin    int    `json:"begin"`
	End      int    `json:"end"`
	Order    string `json:"order"`
	Aromatic bool   `json:"aromatic,omitempty"`
	Stereo   string `json:"stereo,omitempty"`
}

// StereoView is the printable form of a stereo element.  Atoms and Bonds are
// indices into the owning graph; -1 marks a reference outside it.
type StereoView struct {
	Kind   string `json:"kind"`
	Atoms  []int  `json:"atoms,omitempty"`
	Bonds  []int  `json:"bonds,omitempty"`
	Config string `json:"config"`
}

// GraphView is the printable form of a molecular graph.
type GraphView struct {
	Title  string       `json:"title,omitempty"`
	Atoms  []AtomView   `json:"atoms"`
	Bonds  []BondView   `json:"bonds"`
	Stereo []StereoView `json:"stereo,omitempty"`
}

// NewGraphView renders g.
func NewGraphView(g *molecule.MolecularGraph) GraphView {
	v := GraphView{
		Title: g.Title(),
		Atoms: make([]AtomView, 0, g.AtomCount()),
		Bonds: make([]BondView, 0, g.BondCount()),
	}
	for i, a := range g.Atoms() {
		v.Atoms = append(v.Atoms, AtomView{
			Index:     i,
			Symbol:    a.Symbol,
			Charge:    a.Charge,
			Isotope:   a.Isotope,
			Aromatic:  a.Aromatic,
			ImplicitH: a.ImplicitH,
			Class:     a.AtomClass,
			Label:     a.Label,
			Point:     a.Point2d,
		})
	}
	for i, b := range g.Bonds() {
		bv := BondView{
			Index:    i,
			Begin:    g.IndexOf(b.Begin()),
			End:      g.IndexOf(b.End()),
			Order:    b.Order.String(),
			Aromatic: b.Aromatic,
		}
		if b.Stereo != molecule.StereoNone {
			bv.Stereo = b.Stereo.String()
		}
		v.Bonds = append(v.Bonds, bv)
	}
	for _, e := range g.StereoElements() {
		v.Stereo = append(v.Stereo, NewStereoView(g, e))
	}
	return v
}

// NewStereoView renders e against the indices of g.
func NewStereoView(g *molecule.MolecularGraph, e molecule.StereoElement) StereoView {
	v := StereoView{Kind: string(e.Kind())}
	for _, a := range e.Atoms() {
		v.Atoms = append(v.Atoms, g.IndexOf(a))
	}
	for _, b := range e.Bonds() {
		v.Bonds = append(v.Bonds, g.BondIndexOf(b))
	}

	switch se := e.(type) {
	case *molecule.Tetrahedral:
		v.Config = se.Winding.String()
	case *molecule.ExtendedTetrahedral:
		v.Config = se.Winding.String()
	case *molecule.DoubleBondStereo:
		v.Config = se.Conformation.String()
	case *molecule.SquarePlanar:
		v.Config = fmt.Sprintf("SP%d", se.Order)
	case *molecule.TrigonalBipyramidal:
		v.Config = fmt.Sprintf("TB%d", se.Order)
	case *molecule.Octahedral:
		v.Config = fmt.Sprintf("OH%d", se.Order)
	case *molecule.Other:
		v.Config = fmt.Sprintf("%s(%d)", se.Name, se.Config)
	}
	return v
}

func (v GraphView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "graph %q: %d atoms, %d bonds, %d stereo\n", v.Title, len(v.Atoms), len(v.Bonds), len(v.Stereo))

	rows := make([][]string, 0, len(v.Atoms))
	for _, a := range v.Atoms {
		rows = append(rows, []string{
			strconv.Itoa(a.Index), a.Symbol, optInt(a.Charge), optInt(a.Isotope),
			strconv.FormatBool(a.Aromatic), strconv.Itoa(a.ImplicitH), point(a.Point),
		})
	}
	sb.WriteString(FormatTable([]string{"ATOM", "SYMBOL", "CHARGE", "ISOTOPE", "AROMATIC", "H", "XY"}, rows))

	if len(v.Bonds) > 0 {
		rows = rows[:0]
		for _, b := range v.Bonds {
			rows = append(rows, []string{
				strconv.Itoa(b.Index), strconv.Itoa(b.Begin), strconv.Itoa(b.End),
				b.Order, strconv.FormatBool(b.Aromatic), b.Stereo,
			})
		}
		sb.WriteString(FormatTable([]string{"BOND", "BEGIN", "END", "ORDER", "AROMATIC", "STEREO"}, rows))
	}
	if len(v.Stereo) > 0 {
		sb.WriteString(stereoTable(v.Stereo))
	}
	return sb.String()
}

func stereoTable(elems []StereoView) string {
	rows := make([][]string, 0, len(elems))
	for _, s := range elems {
		rows = append(rows, []string{s.Kind, ints(s.Atoms), ints(s.Bonds), s.Config})
	}
	return FormatTable([]string{"KIND", "ATOMS", "BONDS", "CONFIG"}, rows)
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func point(p *molecule.Point2d) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.3f,%.3f", p.X, p.Y)
}

func ints(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}

// ─────────────────────────────────────────────────────────────────────────────
// Query graphs
// ─────────────────────────────────────────────────────────────────────────────

// QueryAtomView is one pattern atom and its predicate.
type QueryAtomView struct {
	Index int    `json:"index"`
	Expr  string `json:"expr"`
	Map   int    `json:"map,omitempty"`
	Group int    `json:"group,omitempty"`
}

// QueryBondView is one pattern bond and its predicate.
type QueryBondView struct {
	Index int    `json:"index"`
	Begin int    `json:"begin"`
	End   int    `json:"end"`
	Expr  string `json:"expr"`
}

// QueryView is the printable form of a compiled pattern.
type QueryView struct {
	Atoms  []QueryAtomView `json:"atoms"`
	Bonds  []QueryBondView `json:"bonds"`
	Stereo []StereoView    `json:"stereo,omitempty"`
}

// NewQueryView renders q.
func NewQueryView(q *query.QueryGraph) QueryView {
	g := q.Graph()
	v := QueryView{
		Atoms: make([]QueryAtomView, 0, g.AtomCount()),
		Bonds: make([]QueryBondView, 0, g.BondCount()),
	}
	for i, a := range g.Atoms() {
		v.Atoms = append(v.Atoms, QueryAtomView{
			Index: i,
			Expr:  q.AtomExpr(a).String(),
			Map:   q.AtomMap(a),
			Group: q.ComponentGroup(a),
		})
	}
	for i, b := range g.Bonds() {
		v.Bonds = append(v.Bonds, QueryBondView{
			Index: i,
			Begin: g.IndexOf(b.Begin()),
			End:   g.IndexOf(b.End()),
			Expr:  q.BondExpr(b).String(),
		})
	}
	for _, e := range g.StereoElements() {
		v.Stereo = append(v.Stereo, NewStereoView(g, e))
	}
	return v
}

func (v QueryView) String() string {
	var sb strings.Builder
	rows := make([][]string, 0, len(v.Atoms))
	for _, a := range v.Atoms {
		rows = append(rows, []string{strconv.Itoa(a.Index), strconv.Itoa(a.Map), strconv.Itoa(a.Group), a.Expr})
	}
	sb.WriteString(FormatTable([]string{"ATOM", "MAP", "GROUP", "EXPR"}, rows))

	if len(v.Bonds) > 0 {
		rows = rows[:0]
		for _, b := range v.Bonds {
			rows = append(rows, []string{strconv.Itoa(b.Index), strconv.Itoa(b.Begin), strconv.Itoa(b.End), b.Expr})
		}
		sb.WriteString(FormatTable([]string{"BOND", "BEGIN", "END", "EXPR"}, rows))
	}
	if len(v.Stereo) > 0 {
		sb.WriteString(stereoTable(v.Stereo))
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Partition and projection results
// ─────────────────────────────────────────────────────────────────────────────

// PartitionView is the printable form of a partition.Result.
type PartitionView struct {
	Title      string      `json:"title,omitempty"`
	Components []int       `json:"components"`
	Fragments  []GraphView `json:"fragments"`
}

// NewPartitionView renders res for the graph titled title.
func NewPartitionView(title string, res *partition.Result) PartitionView {
	v := PartitionView{Title: title, Components: res.Components}
	for _, f := range res.Fragments {
		v.Fragments = append(v.Fragments, NewGraphView(f))
	}
	return v
}

func (v PartitionView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "graph %q: %d fragments, components %s\n", v.Title, len(v.Fragments), ints(v.Components))
	for i, f := range v.Fragments {
		fmt.Fprintf(&sb, "fragment %d\n", i+1)
		sb.WriteString(f.String())
	}
	return sb.String()
}

// ProjectView is the graph with the projection centres that were added.
type ProjectView struct {
	Graph   GraphView    `json:"graph"`
	Centers []StereoView `json:"centers"`
}

func (v ProjectView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d projection centres\n", len(v.Centers))
	if len(v.Centers) > 0 {
		sb.WriteString(stereoTable(v.Centers))
	}
	sb.WriteString(v.Graph.String())
	return sb.String()
}

// Views prints several results in input order.
type Views[T fmt.Stringer] []T

func (l Views[T]) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return strings.Join(parts, "\n")
}
