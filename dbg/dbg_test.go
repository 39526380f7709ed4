package dbg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/EugOT/sircel/fastqio"
)

func TestAddOrIncrementSharesOverlap(t *testing.T) {
	g := NewGraph()
	g.AddOrIncrement("ACGTAC", "CGTACG", "ACGTACG")
	g.AddOrIncrement("ACGTAC", "CGTACG", "ACGTACG")
	g.Finalize()

	edges := g.Out("ACGTAC")
	if len(edges) != 1 {
		t.Fatalf("expected one distinct edge, got %d", len(edges))
	}
	if edges[0].Weight != 2 {
		t.Fatalf("expected weight 2, got %d", edges[0].Weight)
	}
	u, v := edges[0].From, edges[0].To
	if u[1:] != v[:len(v)-1] {
		t.Fatalf("edge %s->%s violates the (k-2)-overlap invariant", u, v)
	}
}

func TestFinalizeOrdersByWeightThenLabel(t *testing.T) {
	g := NewGraph()
	g.AddOrIncrement("AA", "AC", "AAC")
	g.AddOrIncrement("AA", "AG", "AAG")
	g.AddOrIncrement("AA", "AG", "AAG")
	g.Finalize()

	edges := g.Out("AA")
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	if edges[0].Label != "AAG" {
		t.Fatalf("expected heavier edge AAG first, got %s", edges[0].Label)
	}
}

func writeBarcodeFastq(t *testing.T, dir string, seqs []string) *fastqio.File {
	t.Helper()
	path := filepath.Join(dir, "barcodes.fastq")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i, seq := range seqs {
		qual := make([]byte, len(seq))
		for j := range qual {
			qual[j] = 'I'
		}
		f.WriteString("@r")
		f.WriteString(string(rune('0' + i)))
		f.WriteString("\n")
		f.WriteString(seq)
		f.WriteString("\n+\n")
		f.Write(qual)
		f.WriteString("\n")
	}
	f.Close()
	mf, err := fastqio.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mf.Close() })
	return mf
}

func TestBuildProducesEdgesFromOffsets(t *testing.T) {
	dir := t.TempDir()
	mf := writeBarcodeFastq(t, dir, []string{"ACGTACGTACGTAAAA", "ACGTACGTACGTAAAA"})

	var offsets []int64
	err := fastqio.Sequential(mf, 10, 0, func(chunk fastqio.Chunk) error {
		for _, r := range chunk {
			offsets = append(offsets, r.Offset)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	g, err := Build(mf, offsets, BuildOptions{KmerSize: 7, BarcodeStart: 0, BarcodeEnd: 12})
	if err != nil {
		t.Fatal(err)
	}
	if g.EdgeCount() == 0 {
		t.Fatal("expected a nonempty graph")
	}
	for _, node := range g.Nodes() {
		for _, e := range g.Out(node) {
			if e.From[1:] != e.To[:len(e.To)-1] {
				t.Fatalf("edge %s->%s breaks the (k-2)-overlap invariant", e.From, e.To)
			}
		}
	}
}
