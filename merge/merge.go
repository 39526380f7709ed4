// Copyright 2026, the sircel contributors.

// Package merge implements the Candidate Merger of spec.md section
// 4.6: sequencing-error variants of a real barcode are near-Hamming
// neighbors with lower support and are folded into the heavier
// representative.
package merge

import (
	"github.com/EugOT/sircel/discover"
	"github.com/twotwotwo/sorts"
)

// HammingCutoff is the default maximum Hamming distance, on
// equal-length sequences, for two candidates to be considered the
// same barcode with sequencing noise (spec.md section 6).
const HammingCutoff = 3

// byWeight sorts candidates ascending by weight so that, scanning
// pairs (i, j) with i < j, the lighter member of any collapsed pair is
// always the earlier one.
type byWeight []discover.Candidate

func (b byWeight) Len() int           { return len(b) }
func (b byWeight) Less(i, j int) bool { return b[i].Weight < b[j].Weight }
func (b byWeight) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }

// Run returns the surviving subset of candidates after collapsing
// near-Hamming-neighbor duplicates, keeping the heavier representative
// of each collapsed pair. It is idempotent: merging an already-merged
// set returns it unchanged.
func Run(candidates []discover.Candidate, cutoff int) []discover.Candidate {
	ordered := append([]discover.Candidate(nil), candidates...)
	sorts.Sort(byWeight(ordered))

	removed := make([]bool, len(ordered))
	for i := 0; i < len(ordered); i++ {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(ordered); j++ {
			if removed[j] {
				continue
			}
			if len(ordered[i].Sequence) != len(ordered[j].Sequence) {
				continue
			}
			if hamming(ordered[i].Sequence, ordered[j].Sequence) <= cutoff {
				// ordered[i] is the lighter (or equal) of the pair
				// since the slice is ascending by weight; it is the
				// one collapsed away.
				removed[i] = true
				break
			}
		}
	}

	out := make([]discover.Candidate, 0, len(ordered))
	for i, c := range ordered {
		if !removed[i] {
			out = append(out, c)
		}
	}
	return out
}

func hamming(a, b string) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}
