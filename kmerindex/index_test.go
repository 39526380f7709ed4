package kmerindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/EugOT/sircel/fastqio"
)

func writeFastq(t *testing.T, dir, name string, records [][2]string) *fastqio.File {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range records {
		seq, qual := r[0], r[1]
		f.WriteString("@read")
		f.WriteString(itoa(i))
		f.WriteString("\n")
		f.WriteString(seq)
		f.WriteString("\n+\n")
		f.WriteString(qual)
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

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}

func qualOf(n int) string {
	q := make([]byte, n)
	for i := range q {
		q[i] = 'I'
	}
	return string(q)
}

func TestBuildIndexesEveryReadBelowCap(t *testing.T) {
	dir := t.TempDir()
	recs := [][2]string{
		{"ACGTACGTACGTAAAA", qualOf(16)},
		{"TTTTACGTACGTAAAA", qualOf(16)},
		{"GGGGACGTACGTAAAA", qualOf(16)},
	}
	mf := writeFastq(t, dir, "r.fastq", recs)

	idx := New(Options{KmerSize: 7, BarcodeStart: 0, BarcodeEnd: 12, Threads: 2, ChunkSize: 2})
	if err := idx.Build(mf, nil); err != nil {
		t.Fatal(err)
	}
	if idx.TotalReads() != 3 {
		t.Fatalf("got %d reads indexed, want 3", idx.TotalReads())
	}
	if idx.TotalKmers() == 0 {
		t.Fatal("expected a nonzero number of k-mers")
	}
	if len(idx.Keys()) == 0 {
		t.Fatal("expected nonempty key set")
	}
}

func TestBuildRespectsCap(t *testing.T) {
	dir := t.TempDir()
	recs := make([][2]string, 10)
	for i := range recs {
		recs[i] = [2]string{"ACGTACGTACGTAAAA", qualOf(16)}
	}
	mf := writeFastq(t, dir, "r.fastq", recs)

	idx := New(Options{KmerSize: 7, BarcodeStart: 0, BarcodeEnd: 12, Threads: 4, Cap: 4, ChunkSize: 3})
	if err := idx.Build(mf, nil); err != nil {
		t.Fatal(err)
	}
	if idx.TotalReads() != 4 {
		t.Fatalf("got %d reads indexed, want cap of 4", idx.TotalReads())
	}
}

func TestLookupFindsAppendedOffsets(t *testing.T) {
	dir := t.TempDir()
	recs := [][2]string{
		{"ACGTACGTACGTAAAA", qualOf(16)},
		{"ACGTACGTACGTAAAA", qualOf(16)},
	}
	mf := writeFastq(t, dir, "r.fastq", recs)

	idx := New(Options{KmerSize: 7, BarcodeStart: 0, BarcodeEnd: 12, Threads: 1})
	if err := idx.Build(mf, nil); err != nil {
		t.Fatal(err)
	}
	keys := idx.Keys()
	if len(keys) == 0 {
		t.Fatal("expected keys")
	}
	sample := keys[0]
	offsets := idx.Lookup([]string{sample})[sample]
	if len(offsets) == 0 {
		t.Fatalf("expected offsets for key %q", sample)
	}
	if idx.Count(sample) != len(offsets) {
		t.Fatalf("Count and Lookup disagree: %d vs %d", idx.Count(sample), len(offsets))
	}
}

func TestMinDinucRejectsLowComplexityBarcodes(t *testing.T) {
	dir := t.TempDir()
	recs := [][2]string{
		{"AAAAAAAAAAAATTTT", qualOf(16)},
	}
	mf := writeFastq(t, dir, "r.fastq", recs)

	idx := New(Options{KmerSize: 7, BarcodeStart: 0, BarcodeEnd: 12, Threads: 1, MinDinuc: 10})
	if err := idx.Build(mf, nil); err != nil {
		t.Fatal(err)
	}
	if idx.TotalKmers() != 0 {
		t.Fatalf("expected the low-complexity barcode to be rejected, got %d k-mers", idx.TotalKmers())
	}
	if idx.TotalReads() != 1 {
		t.Fatalf("rejecting by entropy must not skip the read itself, got %d reads", idx.TotalReads())
	}
}
