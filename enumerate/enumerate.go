// Copyright 2026, the sircel contributors.

// Package enumerate implements the bounded cycle enumerator of
// spec.md section 4.4: a greedy, backtracking depth-first walk over a
// subgraph that returns up to D cyclic paths of a fixed target
// length, in strictly non-increasing order of their first
// distinguishing edge weight.
package enumerate

import "github.com/EugOT/sircel/dbg"

// Cycle is one candidate path returned by the enumerator: an ordered
// walk of exactly Length edges that starts and ends at the same node.
type Cycle struct {
	Sequence string   // concatenated edge labels, overlaps collapsed, leading sentinel still attached
	Weight   int      // minimum edge weight along the cycle
	Labels   []string // the k-mer label of every edge, in walk order
}

// Options bounds one enumeration run.
type Options struct {
	Start        string // u
	FirstNeighbor string // v; the first edge is fixed as u->v
	Length       int    // L, target edge count
	MaxCycles    int    // D
}

// Run walks g from Options.Start, fixing the first edge as
// Start->FirstNeighbor, and returns up to MaxCycles cyclic paths of
// exactly Length edges. Eligibility at each step is determined by
// reachability: a successor is only tried if it can still reach
// Start in exactly the number of edges remaining. Ties among
// equal-weight outgoing edges are broken lexicographically on edge
// label, which dbg.Graph.Finalize already sorted for.
func Run(g *dbg.Graph, opts Options) []Cycle {
	if opts.Length < 1 || opts.MaxCycles < 1 {
		return nil
	}

	reach := reachability(g, opts.Start, opts.Length)

	first := findEdge(g, opts.Start, opts.FirstNeighbor)
	if first == nil {
		return nil
	}
	// The first edge must itself be capable of completing the cycle.
	if opts.Length-1 > 0 && !reach[opts.Length-1][opts.FirstNeighbor] {
		return nil
	}
	if opts.Length == 1 && opts.FirstNeighbor != opts.Start {
		return nil
	}

	var out []Cycle
	labels := []string{first.Label}
	weights := []int{first.Weight}
	walk(g, opts.Start, opts.FirstNeighbor, 1, opts.Length, reach, labels, weights, &out, opts.MaxCycles)
	return out
}

// walk performs the backtracking DFS described in spec.md section
// 4.4. cur is the current node after depth edges have been taken.
func walk(g *dbg.Graph, start, cur string, depth, length int, reach []map[string]bool, labels []string, weights []int, out *[]Cycle, maxCycles int) {
	if len(*out) >= maxCycles {
		return
	}
	if depth == length {
		if cur == start {
			*out = append(*out, buildCycle(labels, weights))
		}
		return
	}

	remaining := length - depth - 1
	for _, e := range g.Out(cur) {
		if len(*out) >= maxCycles {
			return
		}
		if remaining == 0 {
			if e.To != start {
				continue
			}
		} else if !reach[remaining][e.To] {
			continue
		}
		walk(g, start, e.To, depth+1, length, reach, append(labels, e.Label), append(weights, e.Weight), out, maxCycles)
	}
}

func buildCycle(labels []string, weights []int) Cycle {
	min := weights[0]
	for _, w := range weights[1:] {
		if w < min {
			min = w
		}
	}
	return Cycle{Sequence: collapse(labels), Weight: min, Labels: append([]string(nil), labels...)}
}

// collapse concatenates overlapping edge labels (each a k-mer sharing
// a k-1 overlap with the next) into the walk's single base sequence.
func collapse(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	seq := labels[0]
	for _, l := range labels[1:] {
		seq += l[len(l)-1:]
	}
	return seq
}

func findEdge(g *dbg.Graph, from, to string) *dbg.Edge {
	for _, e := range g.Out(from) {
		if e.To == to {
			return &e
		}
	}
	return nil
}

// reachability returns, for each step count 0..length, the set of
// nodes that can reach target in exactly that many edges. reach[0] is
// always {target}.
func reachability(g *dbg.Graph, target string, length int) []map[string]bool {
	reach := make([]map[string]bool, length+1)
	reach[0] = map[string]bool{target: true}
	nodes := g.Nodes()
	for s := 1; s <= length; s++ {
		cur := make(map[string]bool)
		for _, n := range nodes {
			for _, e := range g.Out(n) {
				if reach[s-1][e.To] {
					cur[n] = true
					break
				}
			}
		}
		reach[s] = cur
	}
	return reach
}
