// Copyright 2026, the sircel contributors.

package kmerindex

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/chmduquesne/rollinghash/buzhash32"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// shardTable is the fixed base hash function the buzhash32 rolling
// hash uses to assign k-mers to shards. A single shared table (rather
// than the teacher's per-hash-function random tables) is enough here:
// shard assignment only needs to be uniform, not cryptographically
// independent.
var shardTable = func() *[256]uint32 {
	var t [256]uint32
	// A fixed, arbitrary full-period multiplicative sequence; any
	// deterministic permutation-like table is sufficient for shard
	// spreading.
	var x uint32 = 2463534242
	for i := range t {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		t[i] = x
	}
	return &t
}()

// shardOf returns which of numShards buckets a k-mer belongs to,
// using the same buzhash32 rolling hash family the teacher used for
// Bloom-filter windows (muscato_screen.go), repurposed here as a
// cheap, deterministic shard-assignment hash for the index's
// sharded multimap.
func shardOf(kmer string, numShards int) int {
	h := buzhash32.NewFromUint32Array(shardTable)
	_, _ = h.Write([]byte(kmer))
	return int(h.Sum32() % uint32(numShards))
}

// shard is one bucket of the k-mer index's multimap. Entries already
// flushed to disk are no longer present in data.
type shard struct {
	data map[string][]int64

	spillPath string
	spilled   bool
}

func newShard() *shard {
	return &shard{data: make(map[string][]int64)}
}

func (s *shard) append(kmer string, offset int64) {
	s.data[kmer] = append(s.data[kmer], offset)
}

// approxBytes estimates the shard's in-memory footprint, used only to
// decide when to spill.
func (s *shard) approxBytes() int64 {
	var n int64
	for k, v := range s.data {
		n += int64(len(k)) + int64(len(v))*8
	}
	return n
}

// spill writes every entry currently in memory to a snappy-compressed
// segment file and clears the in-memory map, the "pluggable backing:
// spill-to-disk when a size threshold is exceeded" behavior named in
// SPEC_FULL.md's Open Questions. It is additive: spilling twice
// appends a new segment rather than overwriting the first.
func (s *shard) spill(dir string, shardIdx, segment int) error {
	if len(s.data) == 0 {
		return nil
	}
	fname := path.Join(dir, fmt.Sprintf("shard_%d_seg_%d.sz", shardIdx, segment))
	f, err := os.Create(fname)
	if err != nil {
		return errors.Wrapf(err, "kmerindex: spilling shard %d", shardIdx)
	}
	defer f.Close()
	w := snappy.NewBufferedWriter(f)
	defer w.Close()
	bw := bufio.NewWriter(w)
	for kmer, offsets := range s.data {
		fmt.Fprintf(bw, "%s\t", kmer)
		for i, o := range offsets {
			if i > 0 {
				bw.WriteByte(',')
			}
			fmt.Fprintf(bw, "%d", o)
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "kmerindex: flushing spill segment")
	}
	s.data = make(map[string][]int64)
	s.spillPath = fname
	s.spilled = true
	return nil
}

// lookupSpilled scans the shard's spill segment (if any) for kmer,
// appending any offsets found to out. This is a linear scan: spilling
// is an explicit opt-in for memory-constrained runs, not the default
// path exercised by ordinary indexing.
func lookupSpilled(spillPath, kmer string, out []int64) ([]int64, error) {
	if spillPath == "" {
		return out, nil
	}
	f, err := os.Open(spillPath)
	if err != nil {
		return out, errors.Wrap(err, "kmerindex: reading spill segment")
	}
	defer f.Close()
	sc := bufio.NewScanner(snappy.NewReader(f))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			continue
		}
		if line[:tab] != kmer {
			continue
		}
		for _, tok := range strings.Split(line[tab+1:], ",") {
			if tok == "" {
				continue
			}
			v, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				continue
			}
			out = append(out, v)
		}
	}
	return out, sc.Err()
}
