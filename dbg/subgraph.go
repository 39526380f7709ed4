// Copyright 2026, the sircel contributors.

package dbg

import (
	"github.com/EugOT/sircel/fastqio"
	"github.com/EugOT/sircel/kmer"
	"github.com/pkg/errors"
)

// BuildOptions mirrors the extraction parameters a seed's subgraph
// must be built with; it is the same window and k used to populate
// the k-mer index that produced the seed.
type BuildOptions struct {
	KmerSize      int
	BarcodeStart  int
	BarcodeEnd    int
	IndelTolerant bool
}

// Build re-reads every barcode-file offset in offsets, extracts cyclic
// k-mers from each, and folds them into a fresh graph: one edge per
// distinct k-mer, weighted by local occurrence count. It runs on a
// single worker goroutine and touches no state besides the memory
// map's own read-only bytes, matching spec.md section 4.3's "uses no
// shared mutable state."
func Build(mf *fastqio.File, offsets []int64, opts BuildOptions) (*Graph, error) {
	g := NewGraph()
	for _, off := range offsets {
		rec, err := mf.RecordAt(off)
		if err != nil {
			return nil, errors.Wrapf(err, "dbg: rereading barcode record at offset %d", off)
		}
		tuples := kmer.Extract(rec.Seq, rec.Qual, opts.KmerSize, opts.BarcodeStart, opts.BarcodeEnd, opts.IndelTolerant)
		for _, t := range tuples {
			km := t.Kmer
			if len(km) < 2 {
				continue
			}
			from := km[:len(km)-1]
			to := km[1:]
			g.AddOrIncrement(from, to, km)
		}
	}
	g.Finalize()
	return g, nil
}
