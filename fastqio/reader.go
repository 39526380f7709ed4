// Copyright 2017, Kerby Shedden and the Muscato contributors.
// Copyright 2026, the sircel contributors.

package fastqio

import (
	"bytes"

	"github.com/pkg/errors"
)

// maxResyncLines bounds how many lines RecordAt will skip while
// hunting for a well-formed record starting near a given offset,
// mirroring the original get_next_complete_read's resync loop but
// with a hard stop so a corrupt file fails fast instead of scanning
// to EOF.
const maxResyncLines = 8

// nextLine returns the line starting at pos (without its trailing
// newline) and the offset immediately after the newline. ok is false
// at end of file.
func nextLine(data []byte, pos int64) (line []byte, next int64, ok bool) {
	if pos >= int64(len(data)) {
		return nil, pos, false
	}
	rest := data[pos:]
	idx := bytes.IndexByte(rest, '\n')
	if idx < 0 {
		return rest, int64(len(data)), true
	}
	return rest[:idx], pos + int64(idx) + 1, true
}

// RecordAt returns the FASTQ record beginning at, or within a few
// lines of, offset. If the four lines starting exactly at offset do
// not form a valid record, RecordAt resyncs forward one line at a
// time, the same recovery the ancestor tool performs when an offset
// lands mid-record.
func (mf *File) RecordAt(offset int64) (Record, error) {
	pos := offset
	for attempt := 0; attempt < maxResyncLines; attempt++ {
		start := pos
		var lines [4][]byte
		cursor := pos
		complete := true
		for i := 0; i < 4; i++ {
			l, next, ok := nextLine(mf.data, cursor)
			if !ok {
				complete = false
				break
			}
			lines[i] = l
			cursor = next
		}
		if complete {
			rec := Record{
				Header: string(lines[0]),
				Seq:    string(lines[1]),
				Sep:    string(lines[2]),
				Qual:   string(lines[3]),
				Offset: start,
				End:    cursor,
			}
			if err := rec.Validate(); err == nil {
				return rec, nil
			}
		}
		// Resync: advance past the next line boundary and retry.
		_, next, ok := nextLine(mf.data, pos)
		if !ok {
			break
		}
		pos = next
	}
	return Record{}, errors.Errorf("fastqio: no well-formed record found near offset %d in %s", offset, mf.path)
}

// Chunk is a contiguous run of records read in file order, each
// tagged with its own offset.
type Chunk []Record

// Sequential scans mf from the beginning, delivering records in
// chunks of at most chunkSize to fn. Scanning stops at the first
// malformed record (a fatal condition per spec.md section 7) or once
// maxRecords records have been delivered (maxRecords <= 0 means no
// cap). fn's error, if any, aborts the scan and is returned.
func Sequential(mf *File, chunkSize, maxRecords int, fn func(Chunk) error) error {
	var pos int64
	var delivered int
	var buf Chunk
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := fn(buf); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}
	for pos < int64(len(mf.data)) {
		start := pos
		var lines [4][]byte
		ok := true
		for i := 0; i < 4; i++ {
			l, next, lok := nextLine(mf.data, pos)
			if !lok {
				ok = false
				break
			}
			lines[i] = l
			pos = next
		}
		if !ok {
			if start != int64(len(mf.data)) {
				return errors.Errorf("fastqio: truncated record at offset %d in %s", start, mf.path)
			}
			break
		}
		rec := Record{
			Header: string(lines[0]),
			Seq:    string(lines[1]),
			Sep:    string(lines[2]),
			Qual:   string(lines[3]),
			Offset: start,
			End:    pos,
		}
		if err := rec.Validate(); err != nil {
			return errors.Wrap(err, "fastqio: malformed record")
		}
		buf = append(buf, rec)
		delivered++
		if len(buf) == chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
		if maxRecords > 0 && delivered >= maxRecords {
			return flush()
		}
	}
	return flush()
}

// PairChunk is one aligned chunk of records from two positionally
// paired files (spec.md section 3: "the Nth entry in one corresponds
// to the Nth in the other").
type PairChunk struct {
	Barcode Chunk
	RNA     Chunk
}

// SequentialPaired scans barcodes and rna in lockstep, delivering
// equal-length aligned chunks to fn. It fails if the two files run out
// of records at different points, since positional pairing requires
// equal record counts.
func SequentialPaired(barcodes, rna *File, chunkSize, maxRecords int, fn func(PairChunk) error) error {
	var bPos, rPos int64
	var delivered int
	for {
		var bc, rc Chunk
		for len(bc) < chunkSize {
			if maxRecords > 0 && delivered+len(bc) >= maxRecords {
				break
			}
			if bPos >= int64(len(barcodes.data)) {
				break
			}
			rec, next, err := readRecordSequential(barcodes, bPos)
			if err != nil {
				return err
			}
			if rec == nil {
				break
			}
			bc = append(bc, *rec)
			bPos = next
		}
		for len(rc) < len(bc) {
			if rPos >= int64(len(rna.data)) {
				return errors.New("fastqio: RNA file ran out of records before its paired barcode file")
			}
			rec, next, err := readRecordSequential(rna, rPos)
			if err != nil {
				return err
			}
			if rec == nil {
				return errors.New("fastqio: RNA file ran out of records before its paired barcode file")
			}
			rc = append(rc, *rec)
			rPos = next
		}
		if len(bc) == 0 {
			break
		}
		delivered += len(bc)
		if err := fn(PairChunk{Barcode: bc, RNA: rc}); err != nil {
			return err
		}
		if maxRecords > 0 && delivered >= maxRecords {
			break
		}
		if len(bc) < chunkSize {
			break
		}
	}
	if (maxRecords <= 0 || delivered < maxRecords) && rPos < int64(len(rna.data)) {
		return errors.New("fastqio: barcode file ran out of records before its paired RNA file")
	}
	return nil
}

// readRecordSequential reads one record starting exactly at pos,
// returning (nil, pos, nil) at clean end of file.
func readRecordSequential(mf *File, pos int64) (*Record, int64, error) {
	if pos >= int64(len(mf.data)) {
		return nil, pos, nil
	}
	start := pos
	var lines [4][]byte
	cursor := pos
	for i := 0; i < 4; i++ {
		l, next, ok := nextLine(mf.data, cursor)
		if !ok {
			if i == 0 {
				return nil, start, nil
			}
			return nil, start, errors.Errorf("fastqio: truncated record at offset %d in %s", start, mf.path)
		}
		lines[i] = l
		cursor = next
	}
	rec := Record{
		Header: string(lines[0]),
		Seq:    string(lines[1]),
		Sep:    string(lines[2]),
		Qual:   string(lines[3]),
		Offset: start,
		End:    cursor,
	}
	if err := rec.Validate(); err != nil {
		return nil, start, errors.Wrap(err, "fastqio: malformed record")
	}
	return &rec, cursor, nil
}
