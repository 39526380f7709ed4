package kmer

import "testing"

func countSeeds(tuples []Tuple) int {
	n := 0
	for _, t := range tuples {
		if len(t.Kmer) > 0 && t.Kmer[0] == Sentinel {
			n++
		}
	}
	return n
}

func TestExactlyOneSeedWithoutIndel(t *testing.T) {
	seq := "ACGTACGTACGTAAAAAAAAAAAAAAAAAAAA"
	qual := make([]byte, len(seq))
	for i := range qual {
		qual[i] = 'I'
	}
	tuples := Extract(seq, string(qual), 7, 0, 12, false)
	if got := countSeeds(tuples); got != 1 {
		t.Fatalf("got %d seed k-mers, want exactly 1", got)
	}
}

func TestCircularKmerCount(t *testing.T) {
	// barcode length 12, k=7: circularized length = 1 + 12 + 6 = 19,
	// producing 19-7+1 = 13 k-mers per circularization.
	seq := "ACGTACGTACGTAAAA"
	qual := make([]byte, len(seq))
	for i := range qual {
		qual[i] = 'I'
	}
	tuples := Extract(seq, string(qual), 7, 0, 12, false)
	if len(tuples) != 13 {
		t.Fatalf("got %d k-mers, want 13", len(tuples))
	}
}

func TestIndelAddsVariants(t *testing.T) {
	seq := "ACGTACGTACGTAAAA"
	qual := make([]byte, len(seq))
	for i := range qual {
		qual[i] = 'I'
	}
	without := Extract(seq, string(qual), 7, 0, 12, false)
	with := Extract(seq, string(qual), 7, 0, 12, true)
	if len(with) <= len(without) {
		t.Fatalf("indel mode should emit more k-mers: %d vs %d", len(with), len(without))
	}
	if got := countSeeds(with); got != 3 {
		t.Fatalf("indel mode should have 3 seed k-mers (one per circularization), got %d", got)
	}
}

func TestPadsPastReadEnd(t *testing.T) {
	seq := "ACGT"
	qual := "IIII"
	// barcode_end=12 exceeds read length 4; must not crash and must pad
	// deterministically.
	tuples := Extract(seq, qual, 3, 0, 12, false)
	if len(tuples) == 0 {
		t.Fatal("expected k-mers even when barcode window exceeds read length")
	}
}

func TestNeverCrashesOnEmptyInput(t *testing.T) {
	if got := Extract("", "", 7, 0, 12, true); got == nil {
		// nil slice is fine, just must not panic.
		return
	}
}

func TestDegenerateKmerSizeOne(t *testing.T) {
	tuples := Extract("ACGT", "IIII", 1, 0, 4, false)
	if len(tuples) == 0 {
		t.Fatal("kmer_size=1 must not crash and should still produce k-mers")
	}
}
