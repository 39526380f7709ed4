// Copyright 2026, the sircel contributors.

// Package pipeline wires every stage named in spec.md sections 4.1-4.9
// into one end-to-end run, the equivalent of the ancestor tool's
// run_all: index, discover, merge, threshold, assign, split.
package pipeline

import (
	"os"
	"strings"

	"github.com/EugOT/sircel/assign"
	"github.com/EugOT/sircel/collab"
	"github.com/EugOT/sircel/config"
	"github.com/EugOT/sircel/discover"
	"github.com/EugOT/sircel/fastqio"
	"github.com/EugOT/sircel/kmerindex"
	"github.com/EugOT/sircel/merge"
	"github.com/EugOT/sircel/runlog"
	"github.com/EugOT/sircel/split"
	"github.com/EugOT/sircel/threshold"
	"github.com/pkg/errors"
)

// Exit codes named in spec.md section 6.
const (
	ExitOK               = 0
	ExitBadInput         = 1
	ExitMalformedFASTQ   = 2
	ExitInsufficientData = 3
)

// Error wraps a pipeline failure with the exit code the CLI should
// return for it.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func fail(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Run executes the full pipeline and writes every artifact spec.md
// section 6 names under cfg.OutputDir.
func Run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fail(ExitBadInput, err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fail(ExitBadInput, errors.Wrap(err, "pipeline: creating output directory"))
	}

	lg, err := runlog.New(cfg.OutputDir)
	if err != nil {
		return fail(ExitBadInput, err)
	}
	defer lg.Close()

	stopProfile := collab.StartCPUProfile(cfg.CPUProfile, cfg.OutputDir)
	defer stopProfile()

	barcodePath, err := maybeDecompress(cfg.BarcodeFileName, cfg.OutputDir, cfg.NoCleanTemp)
	if err != nil {
		return fail(ExitBadInput, err)
	}
	rnaPath, err := maybeDecompress(cfg.RNAFileName, cfg.OutputDir, cfg.NoCleanTemp)
	if err != nil {
		return fail(ExitBadInput, err)
	}

	lg.Stage("opening input files")
	mfBarcode, err := fastqio.Open(barcodePath)
	if err != nil {
		return fail(ExitBadInput, err)
	}
	defer mfBarcode.Close()
	mfRNA, err := fastqio.Open(rnaPath)
	if err != nil {
		return fail(ExitBadInput, err)
	}
	defer mfRNA.Close()

	lg.Stage("indexing barcode k-mers")
	idx := kmerindex.New(kmerindex.Options{
		KmerSize:      cfg.KmerSize,
		BarcodeStart:  cfg.BarcodeStart,
		BarcodeEnd:    cfg.BarcodeEnd,
		IndelTolerant: cfg.IndelTolerant,
		MinDinuc:      cfg.MinDinuc,
		Threads:       cfg.Threads,
		Cap:           cfg.IndexCap,
		SpillDir:      cfg.OutputDir,
		SpillThresholdBytes: cfg.SpillThresholdBytes,
	})
	if err := idx.Build(mfBarcode, lg); err != nil {
		return fail(ExitMalformedFASTQ, err)
	}

	lg.Stage("discovering candidate paths")
	candidates, err := discover.Run(idx, mfBarcode, discover.Options{
		Breadth:       cfg.Breadth,
		Depth:         cfg.Depth,
		KmerSize:      cfg.KmerSize,
		BarcodeStart:  cfg.BarcodeStart,
		BarcodeEnd:    cfg.BarcodeEnd,
		IndelTolerant: cfg.IndelTolerant,
		Threads:       cfg.Threads,
	})
	if err != nil {
		return fail(ExitInsufficientData, err)
	}
	lg.Count(len(candidates), "cyclic paths found")
	if err := writeCandidates(cfg.OutputDir, "all_paths.txt", candidates); err != nil {
		return fail(ExitBadInput, err)
	}

	lg.Stage("merging near-duplicate candidates")
	merged := merge.Run(candidates, cfg.MergeHammingCutoff)
	lg.Count(len(merged), "paths remaining after merging")
	if err := writeCandidates(cfg.OutputDir, "merged_paths.txt", merged); err != nil {
		return fail(ExitBadInput, err)
	}

	lg.Stage("thresholding merged candidates")
	accepted, fits, err := threshold.Run(merged)
	if err != nil {
		return fail(ExitInsufficientData, errors.Wrap(err, "thresholder"))
	}
	for _, f := range fits {
		if f.DepthRank == 2 {
			lg.Printf("threshold: %f", f.Cutoff)
		}
	}
	lg.Count(len(accepted), "accepted paths")
	if err := threshold.WriteFits(cfg.OutputDir, fits); err != nil {
		return fail(ExitBadInput, err)
	}

	lg.Stage("assigning reads to accepted paths")
	assignIndex, order, err := assign.Run(mfBarcode, mfRNA, accepted, assign.Options{
		KmerSize:      cfg.KmerSize,
		BarcodeStart:  cfg.BarcodeStart,
		BarcodeEnd:    cfg.BarcodeEnd,
		IndelTolerant: cfg.IndelTolerant,
		Threads:       cfg.Threads,
	})
	if err != nil {
		return fail(ExitMalformedFASTQ, err)
	}
	assigned := 0
	for key, pairs := range assignIndex {
		if key != assign.Unassigned {
			assigned += len(pairs)
		}
	}
	lg.Count(assigned, "reads assigned")
	lg.Count(len(assignIndex[assign.Unassigned]), "unassigned read pairs")

	lg.Stage("splitting reads per cell")
	if err := split.Run(cfg.OutputDir, mfBarcode, mfRNA, assignIndex, order, split.Options{
		UMIStart: cfg.UMIStart,
		UMIEnd:   cfg.UMIEnd,
	}); err != nil {
		return fail(ExitBadInput, err)
	}

	weights := make([]int, len(accepted))
	for i, c := range accepted {
		weights[i] = c.Weight
	}
	if err := collab.PlotPaths(cfg.OutputDir, weights); err != nil {
		lg.Printf("plotting paths failed (non-fatal): %v", err)
	}

	lg.Stage("done")
	return nil
}

// maybeDecompress runs the gzip collaborator when path ends in .gz and
// returns the decompressed file's path; any other path is returned
// unchanged. keepTemp is not read: the decompressed file is never
// removed.
func maybeDecompress(path, outDir string, keepTemp bool) (string, error) {
	if !strings.HasSuffix(path, ".gz") {
		return path, nil
	}
	return collab.Decompress(path, outDir)
}
