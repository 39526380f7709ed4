package enumerate

import (
	"testing"

	"github.com/EugOT/sircel/dbg"
)

func TestNoCycleWhenGraphHasNone(t *testing.T) {
	g := dbg.NewGraph()
	g.AddOrIncrement("$AAAAA", "AAAAAB", "$AAAAAB")
	g.Finalize()

	cycles := Run(g, Options{Start: "$AAAAA", FirstNeighbor: "AAAAAB", Length: 3, MaxCycles: 5})
	if len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %d", len(cycles))
	}
}

func TestSingleCycleFound(t *testing.T) {
	g := dbg.NewGraph()
	// A two-edge cycle: u -> v -> u.
	g.AddOrIncrement("u", "v", "uv1")
	g.AddOrIncrement("v", "u", "vu1")
	g.Finalize()

	cycles := Run(g, Options{Start: "u", FirstNeighbor: "v", Length: 2, MaxCycles: 5})
	if len(cycles) != 1 {
		t.Fatalf("expected exactly one cycle, got %d", len(cycles))
	}
	if cycles[0].Weight != 1 {
		t.Fatalf("expected weight 1, got %d", cycles[0].Weight)
	}
	if len(cycles[0].Labels) != 2 {
		t.Fatalf("expected 2 edges in the cycle, got %d", len(cycles[0].Labels))
	}
}

func TestDeadEndIsPrunedNotEmitted(t *testing.T) {
	g := dbg.NewGraph()
	g.AddOrIncrement("u", "v", "uv1")
	g.AddOrIncrement("v", "w", "vw1") // w is a dead end, cannot reach u
	g.Finalize()

	cycles := Run(g, Options{Start: "u", FirstNeighbor: "v", Length: 2, MaxCycles: 5})
	if len(cycles) != 0 {
		t.Fatalf("expected the dead-end branch to be pruned, got %d cycles", len(cycles))
	}
}

func TestGreedyOrderPrefersHeavierEdgeFirst(t *testing.T) {
	g := dbg.NewGraph()
	for i := 0; i < 5; i++ {
		g.AddOrIncrement("u", "v", "heavy")
		g.AddOrIncrement("v", "u", "back1")
	}
	g.AddOrIncrement("u", "v2", "light")
	g.AddOrIncrement("v2", "u", "back2")
	g.Finalize()

	// Two independent start neighbors; run separately and confirm the
	// heavy cycle (both edges weight 5) yields a higher bottleneck
	// weight than the light one (both edges weight 1), since a cycle's
	// weight is its lightest edge.
	heavy := Run(g, Options{Start: "u", FirstNeighbor: "v", Length: 2, MaxCycles: 1})
	light := Run(g, Options{Start: "u", FirstNeighbor: "v2", Length: 2, MaxCycles: 1})
	if len(heavy) != 1 || len(light) != 1 {
		t.Fatalf("expected one cycle per start neighbor, got %d and %d", len(heavy), len(light))
	}
	if heavy[0].Weight <= light[0].Weight {
		t.Fatalf("expected the heavy-seeded cycle to outweigh the light one: %d vs %d", heavy[0].Weight, light[0].Weight)
	}
}

func TestRespectsMaxCycles(t *testing.T) {
	g := dbg.NewGraph()
	g.AddOrIncrement("u", "a", "ua")
	g.AddOrIncrement("u", "b", "ub")
	g.AddOrIncrement("a", "u", "au")
	g.AddOrIncrement("a", "u", "au2") // parallel edge: two cycles start with u->a
	g.AddOrIncrement("b", "u", "bu")
	g.Finalize()

	cycles := Run(g, Options{Start: "u", FirstNeighbor: "a", Length: 2, MaxCycles: 1})
	if len(cycles) != 1 {
		t.Fatalf("expected MaxCycles to cap output at 1, got %d", len(cycles))
	}
}

func TestCycleStartsAndEndsAtSameNode(t *testing.T) {
	g := dbg.NewGraph()
	g.AddOrIncrement("u", "v", "uv")
	g.AddOrIncrement("v", "w", "vw")
	g.AddOrIncrement("w", "u", "wu")
	g.Finalize()

	cycles := Run(g, Options{Start: "u", FirstNeighbor: "v", Length: 3, MaxCycles: 5})
	if len(cycles) != 1 {
		t.Fatalf("expected exactly one cycle, got %d", len(cycles))
	}
	if len(cycles[0].Labels) != 3 {
		t.Fatalf("expected edge count 3, got %d", len(cycles[0].Labels))
	}
}
