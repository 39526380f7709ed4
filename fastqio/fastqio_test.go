package fastqio

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFastq(t *testing.T, lines ...string) *File {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "reads.fastq")
	data := ""
	for _, l := range lines {
		data += l + "\n"
	}
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	mf, err := Open(p)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mf.Close() })
	return mf
}

func TestSequentialReadsAllRecords(t *testing.T) {
	mf := writeFastq(t,
		"@r1", "ACGT", "+", "IIII",
		"@r2", "TTTT", "+", "IIII",
		"@r3", "GGGG", "+", "IIII",
	)
	var got []Record
	err := Sequential(mf, 2, 0, func(c Chunk) error {
		got = append(got, c...)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	if got[1].Seq != "TTTT" {
		t.Fatalf("got[1].Seq = %q, want TTTT", got[1].Seq)
	}
}

func TestSequentialRejectsMalformed(t *testing.T) {
	mf := writeFastq(t,
		"@r1", "ACGT", "+", "III", // quality too short
	)
	err := Sequential(mf, 10, 0, func(c Chunk) error { return nil })
	if err == nil {
		t.Fatal("expected malformed-record error")
	}
}

func TestRecordAtExactOffset(t *testing.T) {
	mf := writeFastq(t,
		"@r1", "ACGT", "+", "IIII",
		"@r2", "TTTT", "+", "IIII",
	)
	var offsets []int64
	if err := Sequential(mf, 10, 0, func(c Chunk) error {
		for _, r := range c {
			offsets = append(offsets, r.Offset)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	rec, err := mf.RecordAt(offsets[1])
	if err != nil {
		t.Fatal(err)
	}
	if rec.Seq != "TTTT" {
		t.Fatalf("RecordAt(offsets[1]).Seq = %q, want TTTT", rec.Seq)
	}
}

func TestMaxRecordsCap(t *testing.T) {
	mf := writeFastq(t,
		"@r1", "ACGT", "+", "IIII",
		"@r2", "TTTT", "+", "IIII",
		"@r3", "GGGG", "+", "IIII",
	)
	var n int
	if err := Sequential(mf, 10, 2, func(c Chunk) error {
		n += len(c)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("got %d records, want 2 (cap)", n)
	}
}

func TestBarcodeWindowPadsWithA(t *testing.T) {
	r := Record{Seq: "ACGT"}
	if got := r.BarcodeWindow(0, 6); got != "ACGTAA" {
		t.Fatalf("BarcodeWindow(0,6) = %q, want ACGTAA", got)
	}
}

func TestSequentialPairedAlignsByPosition(t *testing.T) {
	barcodes := writeFastq(t,
		"@b1", "ACGT", "+", "IIII",
		"@b2", "TTTT", "+", "IIII",
	)
	rna := writeFastq(t,
		"@r1", "GGGGCCCC", "+", "IIIIIIII",
		"@r2", "AAAATTTT", "+", "IIIIIIII",
	)
	var pairs []PairChunk
	err := SequentialPaired(barcodes, rna, 10, 0, func(pc PairChunk) error {
		pairs = append(pairs, pc)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 || len(pairs[0].Barcode) != 2 || len(pairs[0].RNA) != 2 {
		t.Fatalf("unexpected pairing shape: %+v", pairs)
	}
	if pairs[0].Barcode[1].Seq != "TTTT" || pairs[0].RNA[1].Seq != "AAAATTTT" {
		t.Fatalf("records not aligned by position: %+v", pairs[0])
	}
}

func TestSequentialPairedFailsOnMismatchedLength(t *testing.T) {
	barcodes := writeFastq(t,
		"@b1", "ACGT", "+", "IIII",
		"@b2", "TTTT", "+", "IIII",
	)
	rna := writeFastq(t,
		"@r1", "GGGG", "+", "IIII",
	)
	err := SequentialPaired(barcodes, rna, 10, 0, func(pc PairChunk) error { return nil })
	if err == nil {
		t.Fatal("expected an error when the RNA file has fewer records than its barcode file")
	}
}
