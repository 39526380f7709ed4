// Copyright 2026, the sircel contributors.

// Package assign implements the Read Assigner of spec.md section 4.8:
// for every input record pair, tally which accepted paths its cyclic
// k-mers point to and assign the pair to the single best-supported
// path, or to "unassigned".
package assign

import (
	"encoding/binary"

	"github.com/EugOT/sircel/discover"
	"github.com/EugOT/sircel/fastqio"
	"github.com/EugOT/sircel/kmer"
	"github.com/EugOT/sircel/workerpool"
	"github.com/pkg/errors"
	"github.com/will-rowe/nthash"
	"github.com/willf/bloom"
)

// Unassigned is the special bucket key for pairs with no single best
// match.
const Unassigned = "unassigned"

// Pair mirrors spec.md section 3's (RNA-offset, barcode-offset) tuple.
type Pair struct {
	RNAOffset     int64
	BarcodeOffset int64
}

// Index is the assignment index: cell-barcode (or Unassigned) -> its
// read pairs.
type Index map[string][]Pair

// Options configures assignment.
type Options struct {
	KmerSize      int
	BarcodeStart  int
	BarcodeEnd    int
	IndelTolerant bool
	Threads       int
	ChunkSize     int
}

// lookup holds the k-mer -> accepted-path-IDs multimap and a
// membership-prefilter bloom filter backing it, built by buildLookup
// from accepted paths' edge-labels.
type lookup struct {
	multimap map[string][]string // kmer -> path sequences
	filter   *bloom.BloomFilter
}

func buildLookup(accepted []discover.Candidate) *lookup {
	multimap := make(map[string][]string)
	total := 0
	for _, c := range accepted {
		total += len(c.Labels)
	}
	filter := bloom.NewWithEstimates(uint(total+1), 0.01)
	for _, c := range accepted {
		for _, label := range c.Labels {
			multimap[label] = append(multimap[label], c.Sequence)
			filter.Add(kmerDigest(label))
		}
	}
	return &lookup{multimap: multimap, filter: filter}
}

// kmerDigest reduces a k-mer to a canonical 8-byte hash via nthash,
// the same rolling-hash family the teacher corpus uses for k-mer
// sketches, so the bloom filter never has to hash full k-mer strings.
func kmerDigest(km string) []byte {
	b := []byte(km)
	h, err := nthash.NewHasher(&b, uint(len(b)))
	if err != nil {
		return b
	}
	code, ok := h.Next(true)
	if !ok {
		return b
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, code)
	return buf
}

// Run assigns every record pair in mfBarcode/mfRNA (positionally
// paired, per spec.md section 3) to the accepted path whose cyclic
// k-mers it matches most, or to Unassigned. Assignment is a parallel
// map over chunks with a serial per-chunk merge into index, matching
// spec.md section 4.8's concurrency note. The returned order lists
// each bucket key in the order its first read was assigned, the
// iteration order the splitter uses (spec.md section 4.9).
func Run(mfBarcode, mfRNA *fastqio.File, accepted []discover.Candidate, opts Options) (index Index, order []string, err error) {
	lk := buildLookup(accepted)
	index = make(Index)
	seen := make(map[string]bool)

	chunkSize := opts.ChunkSize
	if chunkSize < 1 {
		chunkSize = 20000
	}

	err = fastqio.SequentialPaired(mfBarcode, mfRNA, chunkSize, 0, func(pc fastqio.PairChunk) error {
		keys, err := workerpool.Map(opts.Threads, pc.Barcode, func(rec fastqio.Record) (string, error) {
			return assignOne(rec, lk, opts), nil
		})
		if err != nil {
			return errors.Wrap(err, "assign: worker failed")
		}
		for i, key := range keys {
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
			index[key] = append(index[key], Pair{
				RNAOffset:     pc.RNA[i].Offset,
				BarcodeOffset: pc.Barcode[i].Offset,
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return index, order, nil
}

func assignOne(rec fastqio.Record, lk *lookup, opts Options) string {
	tuples := kmer.Extract(rec.Seq, rec.Qual, opts.KmerSize, opts.BarcodeStart, opts.BarcodeEnd, opts.IndelTolerant)

	tally := make(map[string]int)
	for _, t := range tuples {
		if !lk.filter.Test(kmerDigest(t.Kmer)) {
			continue
		}
		for _, seq := range lk.multimap[t.Kmer] {
			tally[seq]++
		}
	}

	best := ""
	bestCount := 0
	ties := 0
	for seq, n := range tally {
		switch {
		case n > bestCount:
			best, bestCount, ties = seq, n, 1
		case n == bestCount:
			ties++
		}
	}
	if bestCount == 0 || ties > 1 {
		return Unassigned
	}
	return best
}
