// Copyright 2017, Kerby Shedden and the Muscato contributors.
// Copyright 2026, the sircel contributors.

// Package kmer extracts the cyclic k-mer stream of a barcode read, as
// specified in spec.md section 3 and grounded in the original
// sircel's IO_utils.get_cyclic_kmers.
package kmer

// Sentinel marks the origin of a circularized barcode sequence. It is
// not a DNA symbol, so a seed k-mer (one beginning with Sentinel) is
// unambiguous.
const Sentinel = '$'

// padBase is the deterministic padding base used whenever a window
// would otherwise run past the end of the read (spec.md section 9,
// Open Question 2). The ancestor tool padded with a random base; a
// fixed base keeps extraction reproducible.
const padBase = 'A'

// sentinelQual is a placeholder quality character paired with a
// synthetic padding base in the quality k-mer stream. No consumer
// currently makes decisions from quality k-mers; they are carried
// through because spec.md section 4.1 names them as part of the
// extractor's output.
const sentinelQual = '!'

// Tuple is one (k-mer, quality-k-mer) pair.
type Tuple struct {
	Kmer string
	Qual string
}

// Extract returns the cyclic k-mer stream of seq/qual's barcode
// window [start, end), for k-mer size k. When indel is true, two
// additional circularizations (barcode truncated by one base, barcode
// extended by one base) are flattened into the same result, to
// tolerate a single indel in the barcode region.
//
// Extract never fails: an empty read yields no k-mers, a barcode window
// that runs past the end of a non-empty read is padded with a
// deterministic base up to the window's length, and a circularization
// shorter than k yields no k-mers.
func Extract(seq, qual string, k, start, end int, indel bool) []Tuple {
	if len(seq) == 0 {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}

	barcode := window(seq, start, end, padBase)
	barcodeQual := window(qual, start, end, sentinelQual)

	var out []Tuple
	out = append(out, kmersOf(circularize(barcode, k), circularize(barcodeQual, k), k)...)

	if indel && len(barcode) > 0 {
		truncated := barcode[:len(barcode)-1]
		truncatedQual := barcodeQual[:len(truncated)]
		out = append(out, kmersOf(circularize(truncated, k), circularize(truncatedQual, k), k)...)

		extended := window(seq, start, end+1, padBase)
		extendedQual := window(qual, start, end+1, sentinelQual)
		out = append(out, kmersOf(circularize(extended, k), circularize(extendedQual, k), k)...)
	}

	return out
}

// window slices s[start:end), padding with pad if end runs past
// len(s).
func window(s string, start, end int, pad byte) string {
	if end > len(s) {
		n := end - len(s)
		b := make([]byte, n)
		for i := range b {
			b[i] = pad
		}
		s = s + string(b)
	}
	if start > len(s) {
		start = len(s)
	}
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

// circularize builds "$ + B + B[0:k-1)" from a barcode window B.
func circularize(b string, k int) string {
	prefixLen := k - 1
	if prefixLen < 0 {
		prefixLen = 0
	}
	if prefixLen > len(b) {
		prefixLen = len(b)
	}
	return string(Sentinel) + b + b[:prefixLen]
}

// kmersOf emits every length-k substring of seq/qual in order. seq
// and qual must have equal length, which circularize guarantees since
// it builds both strings from windows of the same length.
func kmersOf(seq, qual string, k int) []Tuple {
	if k <= 0 || k > len(seq) {
		return nil
	}
	out := make([]Tuple, 0, len(seq)-k+1)
	for i := 0; i+k <= len(seq); i++ {
		out = append(out, Tuple{Kmer: seq[i : i+k], Qual: qual[i : i+k]})
	}
	return out
}
