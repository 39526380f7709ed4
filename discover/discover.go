// Copyright 2026, the sircel contributors.

// Package discover implements the Path Discovery Driver of spec.md
// section 4.5: rank indexed k-mers by global frequency, take the top
// B seeds beginning with the sentinel, and fan out subgraph-build plus
// cycle enumeration per seed across a bounded worker pool.
package discover

import (
	"sort"
	"strings"

	"github.com/EugOT/sircel/dbg"
	"github.com/EugOT/sircel/enumerate"
	"github.com/EugOT/sircel/fastqio"
	"github.com/EugOT/sircel/kmer"
	"github.com/EugOT/sircel/kmerindex"
	"github.com/EugOT/sircel/workerpool"
	"github.com/pkg/errors"
)

// Candidate is one cyclic path surfaced by discovery, spec.md
// section 3's (sequence, weight, depth-rank, edge-labels) tuple. The
// sequence has had its leading sentinel stripped.
type Candidate struct {
	Sequence  string
	Weight    int
	DepthRank int
	Labels    []string
}

// Options configures one discovery run.
type Options struct {
	Breadth       int // B
	Depth         int // D, cycles per seed
	KmerSize      int
	BarcodeStart  int
	BarcodeEnd    int
	IndelTolerant bool
	Threads       int
}

// ErrNoSeeds is returned when no indexed k-mer begins with the
// sentinel, the "insufficient data" case named in spec.md section 7.
var ErrNoSeeds = errors.New("discover: no seed k-mers begin with the sentinel")

// Run ranks idx's k-mers by global frequency, takes the top
// opts.Breadth seeds that begin with the sentinel, and for each seed
// builds a subgraph from its offset bucket and enumerates up to
// opts.Depth cycles. Seeds are processed in parallel; candidate order
// across seeds carries no meaning, matching spec.md section 4.5 step 4.
func Run(idx *kmerindex.Index, mf *fastqio.File, opts Options) ([]Candidate, error) {
	seeds := rankSeeds(idx, opts.Breadth)
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}

	perSeed, err := workerpool.Map(opts.Threads, seeds, func(seedKmer string) ([]Candidate, error) {
		return discoverSeed(idx, mf, seedKmer, opts)
	})
	if err != nil {
		return nil, errors.Wrap(err, "discover: seed worker failed")
	}

	var out []Candidate
	for _, cs := range perSeed {
		out = append(out, cs...)
	}
	return out, nil
}

// rankSeeds sorts idx's k-mers by descending occurrence count (a
// proxy for spec.md's "global frequency") and returns up to breadth
// of those beginning with the sentinel.
func rankSeeds(idx *kmerindex.Index, breadth int) []string {
	keys := idx.Keys()
	var starting []string
	for _, k := range keys {
		if len(k) > 0 && k[0] == kmer.Sentinel {
			starting = append(starting, k)
		}
	}
	counts := idx.Lookup(starting)
	sort.SliceStable(starting, func(i, j int) bool {
		ci, cj := len(counts[starting[i]]), len(counts[starting[j]])
		if ci != cj {
			return ci > cj
		}
		return starting[i] < starting[j]
	})
	if breadth > 0 && len(starting) > breadth {
		starting = starting[:breadth]
	}
	return starting
}

// discoverSeed builds the subgraph for one seed k-mer's offset bucket
// and enumerates its cycles.
func discoverSeed(idx *kmerindex.Index, mf *fastqio.File, seedKmer string, opts Options) ([]Candidate, error) {
	offsets := idx.Lookup([]string{seedKmer})[seedKmer]
	if len(offsets) == 0 {
		return nil, nil
	}

	g, err := dbg.Build(mf, offsets, dbg.BuildOptions{
		KmerSize:      opts.KmerSize,
		BarcodeStart:  opts.BarcodeStart,
		BarcodeEnd:    opts.BarcodeEnd,
		IndelTolerant: opts.IndelTolerant,
	})
	if err != nil {
		return nil, err
	}

	u := seedKmer[:len(seedKmer)-1]
	v := seedKmer[1:]
	length := (opts.BarcodeEnd - opts.BarcodeStart) + 1

	cycles := enumerate.Run(g, enumerate.Options{
		Start:         u,
		FirstNeighbor: v,
		Length:        length,
		MaxCycles:     opts.Depth,
	})

	out := make([]Candidate, 0, len(cycles))
	for i, c := range cycles {
		out = append(out, Candidate{
			Sequence:  strings.TrimPrefix(c.Sequence, string(kmer.Sentinel)),
			Weight:    c.Weight,
			DepthRank: i + 1,
			Labels:    c.Labels,
		})
	}
	return out, nil
}
