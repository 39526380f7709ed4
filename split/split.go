// Copyright 2026, the sircel contributors.

// Package split implements the Splitter of spec.md section 4.9:
// consume the assignment index and emit per-cell gzipped RNA and
// barcode FASTQ files, a plaintext UMI file, and a batch.txt manifest.
package split

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/EugOT/sircel/assign"
	"github.com/EugOT/sircel/fastqio"
	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

// Options configures the splitter.
type Options struct {
	UMIStart int
	UMIEnd   int
}

// cellDir is the fixed subdirectory name under the output directory
// spec.md section 6 names for per-cell outputs.
const cellDir = "reads_split"

// Run writes one RNA FASTQ, one barcode FASTQ, and one UMI file per
// cell under outDir/reads_split, in the order order lists, plus a
// single batch.txt manifest. Unassigned reads are written like any
// other bucket, under the literal cell name "unassigned".
func Run(outDir string, mfBarcode, mfRNA *fastqio.File, index assign.Index, order []string, opts Options) error {
	dir := filepath.Join(outDir, cellDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "split: creating reads_split directory")
	}

	batch, err := os.Create(filepath.Join(outDir, "batch.txt"))
	if err != nil {
		return errors.Wrap(err, "split: creating batch.txt")
	}
	defer batch.Close()
	bw := bufio.NewWriter(batch)
	defer bw.Flush()

	for _, cell := range order {
		pairs := index[cell]
		if len(pairs) == 0 {
			continue
		}
		rnaPath := filepath.Join(dir, cell+".rna.fastq.gz")
		barcodePath := filepath.Join(dir, cell+".barcode.fastq.gz")
		umiPath := filepath.Join(dir, cell+".umi.txt")

		if err := writeCell(mfBarcode, mfRNA, pairs, cell, rnaPath, barcodePath, umiPath, opts); err != nil {
			return errors.Wrapf(err, "split: writing cell %s", cell)
		}

		fmt.Fprintf(bw, "%s\t%s\t%s\n", cell, umiPath, rnaPath)
	}
	return bw.Flush()
}

func writeCell(mfBarcode, mfRNA *fastqio.File, pairs []assign.Pair, cell, rnaPath, barcodePath, umiPath string, opts Options) error {
	rnaFile, err := os.Create(rnaPath)
	if err != nil {
		return err
	}
	defer rnaFile.Close()
	rnaGz := pgzip.NewWriter(rnaFile)
	defer rnaGz.Close()

	barcodeFile, err := os.Create(barcodePath)
	if err != nil {
		return err
	}
	defer barcodeFile.Close()
	barcodeGz := pgzip.NewWriter(barcodeFile)
	defer barcodeGz.Close()

	umiFile, err := os.Create(umiPath)
	if err != nil {
		return err
	}
	defer umiFile.Close()
	umiW := bufio.NewWriter(umiFile)
	defer umiW.Flush()

	for _, p := range pairs {
		rnaRec, err := mfRNA.RecordAt(p.RNAOffset)
		if err != nil {
			return err
		}
		barcodeRec, err := mfBarcode.RecordAt(p.BarcodeOffset)
		if err != nil {
			return err
		}
		if err := writeRecord(rnaGz, rnaRec, cell); err != nil {
			return err
		}
		if err := writeRecord(barcodeGz, barcodeRec, cell); err != nil {
			return err
		}
		fmt.Fprintln(umiW, umi(barcodeRec, opts))
	}
	if err := umiW.Flush(); err != nil {
		return err
	}
	if err := rnaGz.Close(); err != nil {
		return err
	}
	return barcodeGz.Close()
}

type writer interface {
	Write(p []byte) (int, error)
}

func writeRecord(w writer, rec fastqio.Record, cell string) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n%s\n", rewriteHeader(rec.Header, cell), rec.Seq, rec.Sep, rec.Qual)
	return err
}

// rewriteHeader appends " cell_<name>" to header, then replaces every
// space with an underscore, producing the single-token header
// spec.md section 6 requires downstream quantifiers to be able to
// parse.
func rewriteHeader(header, cell string) string {
	h := header + " cell_" + cell
	return strings.ReplaceAll(h, " ", "_")
}

// umi extracts the UMI substring [UMIStart, UMIEnd) of the barcode
// read's sequence.
func umi(rec fastqio.Record, opts Options) string {
	return rec.BarcodeWindow(opts.UMIStart, opts.UMIEnd)
}
