// Package rings perceives isolated rings: simple cycles that share no atom
// with any other cycle, so fused and spiro systems are excluded.
package rings

import (
	"sort"
)

type edge [2]int

// finder holds the depth-first state of one biconnected-component search.
type finder struct {
	adj   [][]int
	disc  []int
	low   []int
	clock int
	stack []edge
	comps [][]edge
}

// Isolated returns the isolated rings of the undirected graph adj.  Each ring
// is a closed walk without the repeated start: it begins at the ring's lowest
// vertex index and proceeds towards the lower of that vertex's two ring
// neighbours.  Rings are ordered by their first vertex.
func Isolated(adj [][]int) [][]int {
	f := &finder{
		adj:  adj,
		disc: make([]int, len(adj)),
		low:  make([]int, len(adj)),
	}
	for v := range adj {
		if f.disc[v] == 0 {
			f.visit(v, -1)
		}
	}

	membership := make([]int, len(adj))
	var cycles [][]edge
	for _, comp := range f.comps {
		if len(comp) < 3 {
			continue
		}
		for _, v := range vertices(comp) {
			membership[v]++
		}
		cycles = append(cycles, comp)
	}

	var out [][]int
	for _, comp := range cycles {
		vs := vertices(comp)
		if len(vs) != len(comp) {
			continue
		}
		isolated := true
		for _, v := range vs {
			if membership[v] != 1 {
				isolated = false
				break
			}
		}
		if isolated {
			out = append(out, walk(comp))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Sized keeps the rings whose length lies within [min, max].
func Sized(rings [][]int, min, max int) [][]int {
	var out [][]int
	for _, r := range rings {
		if len(r) >= min && len(r) <= max {
			out = append(out, r)
		}
	}
	return out
}

func (f *finder) visit(u, parent int) {
	f.clock++
	f.disc[u] = f.clock
	f.low[u] = f.clock
	for _, v := range f.adj[u] {
		if v < 0 || v >= len(f.adj) || v == parent {
			continue
		}
		if f.disc[v] == 0 {
			f.stack = append(f.stack, edge{u, v})
			f.visit(v, u)
			if f.low[v] < f.low[u] {
				f.low[u] = f.low[v]
			}
			if f.low[v] >= f.disc[u] {
				f.pop(edge{u, v})
			}
		} else if f.disc[v] < f.disc[u] {
			f.stack = append(f.stack, edge{u, v})
			if f.disc[v] < f.low[u] {
				f.low[u] = f.disc[v]
			}
		}
	}
}

// pop moves edges off the stack down to and including last into a new
// component.
func (f *finder) pop(last edge) {
	var comp []edge
	for len(f.stack) > 0 {
		e := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]
		comp = append(comp, e)
		if e == last {
			break
		}
	}
	f.comps = append(f.comps, comp)
}

func vertices(comp []edge) []int {
	seen := make(map[int]bool, len(comp))
	var vs []int
	for _, e := range comp {
		for _, v := range e {
			if !seen[v] {
				seen[v] = true
				vs = append(vs, v)
			}
		}
	}
	sort.Ints(vs)
	return vs
}

// walk orders the vertices of a simple cycle.
func walk(comp []edge) []int {
	nbrs := make(map[int][]int, len(comp))
	for _, e := range comp {
		nbrs[e[0]] = append(nbrs[e[0]], e[1])
		nbrs[e[1]] = append(nbrs[e[1]], e[0])
	}
	start := vertices(comp)[0]
	first := nbrs[start]
	next := first[0]
	if first[1] < next {
		next = first[1]
	}

	ring := make([]int, 0, len(comp))
	ring = append(ring, start)
	prev, cur := start, next
	for cur != start && len(ring) < len(comp) {
		ring = append(ring, cur)
		ns := nbrs[cur]
		if ns[0] == prev {
			prev, cur = cur, ns[1]
		} else {
			prev, cur = cur, ns[0]
		}
	}
	return ring
}
