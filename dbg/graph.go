// Copyright 2026, the sircel contributors.

// Package dbg implements the weighted directed multigraph of spec.md
// section 3 (nodes are length-(k-1) strings, edges are k-mers) and the
// subgraph builder of spec.md section 4.3: re-reading a seed's source
// reads by offset, extracting cyclic k-mers, and counting them into
// one edge per distinct k-mer.
package dbg

import "sort"

// Edge is one distinct k-mer observed while building a subgraph. Its
// label is the full k-mer; From and To are its (k-1)-prefix and
// (k-1)-suffix, so that for any edge u->v, u's (k-2)-suffix equals
// v's (k-2)-prefix.
type Edge struct {
	From, To string
	Label    string
	Weight   int
}

// Graph is a weighted directed multigraph keyed by source node. Edges
// leaving the same node are kept sorted by descending weight, then by
// ascending label, so the enumerator can walk them in priority order
// without re-sorting.
type Graph struct {
	out map[string][]Edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{out: make(map[string][]Edge)}
}

// AddOrIncrement records one more occurrence of the k-mer label,
// creating the edge u->v on first sight.
func (g *Graph) AddOrIncrement(from, to, label string) {
	edges := g.out[from]
	for i := range edges {
		if edges[i].To == to && edges[i].Label == label {
			edges[i].Weight++
			g.out[from] = edges
			return
		}
	}
	g.out[from] = append(edges, Edge{From: from, To: to, Label: label, Weight: 1})
}

// Finalize sorts every node's outgoing edge list by descending weight
// then ascending label, the fixed order the enumerator's greedy walk
// and lexicographic tie-break (spec.md section 4.4) depend on. Call
// once after all edges have been added.
func (g *Graph) Finalize() {
	for node, edges := range g.out {
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].Weight != edges[j].Weight {
				return edges[i].Weight > edges[j].Weight
			}
			return edges[i].Label < edges[j].Label
		})
		g.out[node] = edges
	}
}

// Out returns node's outgoing edges in priority order (see Finalize).
func (g *Graph) Out(node string) []Edge {
	return g.out[node]
}

// Nodes returns every node with at least one outgoing edge, sorted
// for deterministic iteration.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.out))
	for n := range g.out {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// EdgeCount returns the total number of distinct edges in the graph.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.out {
		n += len(edges)
	}
	return n
}
