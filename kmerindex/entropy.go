// Copyright 2017, Kerby Shedden and the Muscato contributors.
// Copyright 2026, the sircel contributors.

package kmerindex

// countDinuc returns the number of distinct dinucleotide subsequences
// in seq, using wk as reusable scratch space (len(wk) must be 25).
// Ported from the teacher's utils.CountDinuc, which used the same
// technique to reject low-information Bloom-filter windows; here it
// optionally gates which barcode windows are worth indexing at all
// (Config.MinDinuc, see SPEC_FULL.md "Supplemented features").
func countDinuc(seq []byte, wk []int) int {
	for i := range wk {
		wk[i] = 0
	}

	var last int
	var n int
	for i, x := range seq {
		var v int
		switch x {
		case 'A':
			v = 0
		case 'T':
			v = 1
		case 'G':
			v = 2
		case 'C':
			v = 3
		default:
			v = 4
		}

		if i > 0 {
			k := 5*last + v
			if wk[k] == 0 {
				n++
			}
			wk[k]++
		}
		last = v
	}

	return n
}
