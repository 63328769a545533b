package projection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

// Stereocenters answers whether the atom at an index of the graph being
// perceived is a stereocenter.
type Stereocenters interface {
	IsStereocenter(atom int) bool
}

// StereocenterFunc adapts a function to Stereocenters.
type StereocenterFunc func(atom int) bool

// IsStereocenter implements Stereocenters.
func (f StereocenterFunc) IsStereocenter(atom int) bool { return f(atom) }

// Indices marks the listed atom indices as stereocenters.
func Indices(atoms ...int) Stereocenters {
	set := make(map[int]bool, len(atoms))
	for _, a := range atoms {
		set[a] = true
	}
	return StereocenterFunc(func(atom int) bool { return set[atom] })
}

type classified []bool

func (c classified) IsStereocenter(atom int) bool {
	return atom >= 0 && atom < len(c) && c[atom]
}

// PotentialStereocenters flags non-aromatic atoms with four single-bonded
// neighbours, at most one of them an implicit hydrogen, whose neighbours all
// fall in distinct symmetry classes.  Classes come from iterative refinement
// of local atom invariants, so the result may miss centres that only deeper
// symmetry analysis would separate but never flags two equivalent branches.
func PotentialStereocenters(g *molecule.MolecularGraph) Stereocenters {
	n := g.AtomCount()
	out := make(classified, n)
	if n == 0 {
		return out
	}
	classes := refine(g)

	for i, a := range g.Atoms() {
		if a.Aromatic || a.ImplicitH > 1 || g.Degree(a)+a.ImplicitH != 4 {
			continue
		}
		seen := make(map[int]bool, 4)
		if a.ImplicitH == 1 {
			seen[-1] = true
		}
		ok := true
		for _, b := range g.BondsOf(a) {
			if b.Order != molecule.OrderSingle || b.Aromatic {
				ok = false
				break
			}
			c := classes[g.IndexOf(b.Other(a))]
			if seen[c] {
				ok = false
				break
			}
			seen[c] = true
		}
		out[i] = ok
	}
	return out
}

// refine ranks atoms by their local invariant and then repeatedly by the
// ranks of their neighbourhoods until the number of classes stops growing.
func refine(g *molecule.MolecularGraph) []int {
	atoms := g.Atoms()
	adj := g.AdjacencyList()

	keys := make([]string, len(atoms))
	for i, a := range atoms {
		keys[i] = fmt.Sprintf("%s|%d|%d|%d|%t|%d", a.Symbol, a.FormalCharge(), a.ImplicitH, len(adj[i]), a.Aromatic, isotope(a))
	}
	classes, count := rank(keys)

	for round := 0; round < len(atoms); round++ {
		for i := range atoms {
			nbrs := make([]int, len(adj[i]))
			for k, j := range adj[i] {
				nbrs[k] = classes[j]
			}
			sort.Ints(nbrs)
			var sb strings.Builder
			fmt.Fprintf(&sb, "%d", classes[i])
			for _, c := range nbrs {
				fmt.Fprintf(&sb, ",%d", c)
			}
			keys[i] = sb.String()
		}
		next, nextCount := rank(keys)
		if nextCount == count {
			break
		}
		classes, count = next, nextCount
	}
	return classes
}

func rank(keys []string) ([]int, int) {
	distinct := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			distinct = append(distinct, k)
		}
	}
	sort.Strings(distinct)
	ids := make(map[string]int, len(distinct))
	for i, k := range distinct {
		ids[k] = i
	}
	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = ids[k]
	}
	return out, len(distinct)
}

func isotope(a *molecule.Atom) int {
	if a.Isotope == nil {
		return 0
	}
	return *a.Isotope
}
