// Copyright 2017, Kerby Shedden and the Muscato contributors.
// Copyright 2026, the sircel contributors.

// Package fastqio addresses FASTQ reads by byte offset into a
// memory-mapped, decompressed file, and validates well-formedness the
// way the original sircel's IO_utils.is_valid_fq_entry does.
package fastqio

import "fmt"

// Record is one 4-line FASTQ entry.
type Record struct {
	Header string
	Seq    string
	Sep    string
	Qual   string

	// Offset is the byte offset of Header's '@' within the source
	// file. End is the offset one past Qual's trailing newline (or
	// end of file), so End-Offset is the record's byte span.
	Offset int64
	End    int64
}

// Pair addresses one input read pair by the byte offsets of its two
// constituent records.
type Pair struct {
	RNAOffset     int64
	BarcodeOffset int64
}

// Validate checks the FASTQ well-formedness invariants named in
// spec.md section 6: line 1 starts with '@', line 3 is a single
// character, and lines 2 and 4 have equal length.
func (r Record) Validate() error {
	if len(r.Header) == 0 || r.Header[0] != '@' {
		return fmt.Errorf("fastqio: record at offset %d: header does not start with '@'", r.Offset)
	}
	if len(r.Sep) != 1 {
		return fmt.Errorf("fastqio: record at offset %d: separator line is not a single character", r.Offset)
	}
	if len(r.Seq) != len(r.Qual) {
		return fmt.Errorf("fastqio: record at offset %d: sequence and quality lengths differ (%d vs %d)", r.Offset, len(r.Seq), len(r.Qual))
	}
	return nil
}

// BarcodeWindow returns the barcode region [start, end) of the
// record's sequence, padding with the deterministic base 'A' if end
// exceeds the read length (spec.md section 9, Open Question 2).
func (r Record) BarcodeWindow(start, end int) string {
	seq := r.Seq
	if end > len(seq) {
		pad := end - len(seq)
		b := make([]byte, pad)
		for i := range b {
			b[i] = 'A'
		}
		seq = seq + string(b)
	}
	if start > len(seq) {
		start = len(seq)
	}
	if end > len(seq) {
		end = len(seq)
	}
	return seq[start:end]
}
