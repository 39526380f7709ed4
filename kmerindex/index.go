// Copyright 2017, Kerby Shedden and the Muscato contributors.
// Copyright 2026, the sircel contributors.

// Package kmerindex implements the k-mer -> read-offset multimap of
// spec.md section 4.2: index_batch, keys, lookup, and count, built in
// parallel over bounded chunks of the barcode-read file and merged
// serially by a single coordinator, exactly as spec.md section 5
// requires.
package kmerindex

import (
	"sort"

	"github.com/EugOT/sircel/fastqio"
	"github.com/EugOT/sircel/kmer"
	"github.com/EugOT/sircel/runlog"
	"github.com/EugOT/sircel/workerpool"
	"github.com/pkg/errors"
)

// defaultShards is the number of buckets the multimap is partitioned
// into. It only affects spill granularity and lock-free merge
// bookkeeping, never correctness.
const defaultShards = 64

// Options configures index construction.
type Options struct {
	KmerSize      int
	BarcodeStart  int
	BarcodeEnd    int
	IndelTolerant bool
	MinDinuc      int // 0 disables the entropy gate
	Threads       int
	Cap           int // 0 means no cap
	ChunkSize     int // reads per parallel-map chunk, 0 uses a default

	// SpillDir and SpillThresholdBytes enable spill-to-disk per
	// shard; SpillThresholdBytes of 0 disables spilling.
	SpillDir            string
	SpillThresholdBytes int64
}

// Index is the k-mer -> offsets multimap described in spec.md section
// 3. It is discarded after path discovery (spec.md section 4.2).
type Index struct {
	opts   Options
	shards []*shard

	totalReads int
	totalKmers int64

	segment []int // next spill segment number, per shard
}

// New creates an empty Index.
func New(opts Options) *Index {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 20000
	}
	shards := make([]*shard, defaultShards)
	for i := range shards {
		shards[i] = newShard()
	}
	return &Index{
		opts:    opts,
		shards:  shards,
		segment: make([]int, defaultShards),
	}
}

// localIndex is the per-read contribution a worker computes; the
// coordinator folds it into the shared shards afterward.
type localIndex struct {
	offset int64
	kmers  []string // may contain duplicates; multiplicity is preserved
}

// Build indexes up to opts.Cap barcode reads from mf, in file order.
// Each chunk fastqio.Sequential delivers is extracted in parallel
// across opts.Threads workers; the results are then folded into the
// shared shards by the single coordinator goroutine that
// fastqio.Sequential itself runs on, so the shard maps never need
// locking (spec.md section 5's "bounded worker pool with a serial
// merge").
func (idx *Index) Build(mf *fastqio.File, lg *runlog.Logger) error {
	err := fastqio.Sequential(mf, idx.opts.ChunkSize, idx.opts.Cap, func(chunk fastqio.Chunk) error {
		results, err := workerpool.Map(idx.opts.Threads, chunk, func(rec fastqio.Record) (localIndex, error) {
			wk := make([]int, 25)
			return idx.extractOne(rec, wk), nil
		})
		if err != nil {
			return errors.Wrap(err, "kmerindex: extraction worker failed")
		}

		for _, li := range results {
			idx.totalReads++
			for _, km := range li.kmers {
				idx.append(km, li.offset)
				idx.totalKmers++
			}
		}
		if lg != nil && idx.totalReads%1000000 == 0 {
			lg.Count(idx.totalReads, "reads indexed")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if lg != nil {
		lg.Count(idx.totalReads, "reads indexed (final)")
	}
	return nil
}

func (idx *Index) extractOne(rec fastqio.Record, wk []int) localIndex {
	li := localIndex{offset: rec.Offset}
	barcode := rec.BarcodeWindow(idx.opts.BarcodeStart, idx.opts.BarcodeEnd)
	if idx.opts.MinDinuc > 0 && countDinuc([]byte(barcode), wk) < idx.opts.MinDinuc {
		return li
	}
	tuples := kmer.Extract(rec.Seq, rec.Qual, idx.opts.KmerSize, idx.opts.BarcodeStart, idx.opts.BarcodeEnd, idx.opts.IndelTolerant)
	li.kmers = make([]string, len(tuples))
	for i, t := range tuples {
		li.kmers[i] = t.Kmer
	}
	return li
}

// append is only ever called from the single coordinator goroutine
// (Build's fastqio.Sequential callback runs serially), so no
// synchronization is needed around the shard maps themselves.
func (idx *Index) append(kmer string, offset int64) {
	s := idx.shards[shardOf(kmer, len(idx.shards))]
	s.append(kmer, offset)
	if idx.opts.SpillThresholdBytes > 0 && s.approxBytes() > idx.opts.SpillThresholdBytes {
		shardIdx := shardOf(kmer, len(idx.shards))
		idx.segment[shardIdx]++
		_ = s.spill(idx.opts.SpillDir, shardIdx, idx.segment[shardIdx])
	}
}

// Keys enumerates every k-mer currently held in memory. K-mers whose
// entries have been moved to a spill segment (during Build, when
// SpillThresholdBytes is set) are not listed. In the default
// (no-spill) configuration this always matches spec.md's "keys():
// enumerate all k-mers seen."
func (idx *Index) Keys() []string {
	out := make([]string, 0)
	for _, s := range idx.shards {
		for k := range s.data {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Count returns the number of offsets stored for kmer.
func (idx *Index) Count(kmer string) int {
	return len(idx.Lookup([]string{kmer})[kmer])
}

// Lookup performs a bulk read of the bucket contents for each
// requested k-mer, consulting both the in-memory shard and any
// spilled segment.
func (idx *Index) Lookup(kmers []string) map[string][]int64 {
	out := make(map[string][]int64, len(kmers))
	for _, km := range kmers {
		s := idx.shards[shardOf(km, len(idx.shards))]
		var offsets []int64
		offsets = append(offsets, s.data[km]...)
		if s.spilled {
			offsets, _ = lookupSpilled(s.spillPath, km, offsets)
		}
		out[km] = offsets
	}
	return out
}

// TotalReads returns the number of barcode reads actually indexed
// (bounded by Options.Cap).
func (idx *Index) TotalReads() int { return idx.totalReads }

// TotalKmers returns Sum |bucket(k)| across the whole index, the
// invariant spec.md section 8 checks against the number of k-mers
// extracted across indexed reads.
func (idx *Index) TotalKmers() int64 { return idx.totalKmers }
