// Copyright 2026, the sircel contributors.

// Command sircel discovers cell barcodes from single-cell sequencing
// reads without a reference whitelist, assigns reads to the barcodes
// it finds, and splits them into per-cell output files.
package main

import (
	"fmt"
	"os"

	"github.com/EugOT/sircel/config"
	"github.com/EugOT/sircel/pipeline"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flagNames lists every Config field bindable from the command line,
// used to copy only the flags the user actually set onto cfg after
// the profile/JSON layers have been applied - see applyFlags.
var flagNames = []string{
	"barcode-reads", "rna-reads", "output-dir",
	"barcode-start", "barcode-end", "umi-start", "umi-end",
	"kmer-size", "depth", "breadth", "threads", "index-cap",
	"merge-hamming-cutoff", "indel-tolerant", "min-dinuc",
	"cpu-profile", "no-clean-temp",
}

func newRootCmd() *cobra.Command {
	// overlay receives every flag value regardless of whether the
	// user set it; only the entries named in flagNames and reported
	// as Changed() by cobra are copied onto cfg, so an unset flag
	// never clobbers a value the profile or JSON layer provided.
	overlay := config.Defaults()
	var jsonConfig, tomlProfile string

	root := &cobra.Command{
		Use:   "sircel",
		Short: "Discover cell barcodes from single-cell FASTQ reads",
		Long: `sircel indexes barcode reads into a k-mer graph, discovers candidate
cell barcodes as cycles in that graph, merges sequencing-error variants,
thresholds by a per-depth Gaussian fit, assigns every read pair to its
barcode, and splits reads into per-cell output files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Defaults()
			if profile := config.DefaultProfilePath(); profile != "" {
				if _, err := os.Stat(profile); err == nil {
					if err := config.LoadTOMLProfile(cfg, profile); err != nil {
						return err
					}
				}
			}
			if tomlProfile != "" {
				if err := config.LoadTOMLProfile(cfg, tomlProfile); err != nil {
					return err
				}
			}
			if jsonConfig != "" {
				if err := config.LoadJSON(cfg, jsonConfig); err != nil {
					return err
				}
			}
			applyFlags(cmd, cfg, overlay)
			return run(cfg)
		},
	}

	flags := root.Flags()
	flags.StringVar(&overlay.BarcodeFileName, "barcode-reads", overlay.BarcodeFileName, "uncompressed or gzipped FASTQ file of barcode+UMI reads")
	flags.StringVar(&overlay.RNAFileName, "rna-reads", overlay.RNAFileName, "uncompressed or gzipped FASTQ file of transcript reads, paired with barcode-reads")
	flags.StringVar(&overlay.OutputDir, "output-dir", overlay.OutputDir, "directory to write run artifacts under")
	flags.IntVar(&overlay.BarcodeStart, "barcode-start", overlay.BarcodeStart, "0-based start of the barcode window")
	flags.IntVar(&overlay.BarcodeEnd, "barcode-end", overlay.BarcodeEnd, "0-based end (exclusive) of the barcode window")
	flags.IntVar(&overlay.UMIStart, "umi-start", overlay.UMIStart, "0-based start of the UMI window")
	flags.IntVar(&overlay.UMIEnd, "umi-end", overlay.UMIEnd, "0-based end (exclusive) of the UMI window")
	flags.IntVar(&overlay.KmerSize, "kmer-size", overlay.KmerSize, "k-mer length used for the de Bruijn graph")
	flags.IntVar(&overlay.Depth, "depth", overlay.Depth, "cyclic paths retained per seed k-mer")
	flags.IntVar(&overlay.Breadth, "breadth", overlay.Breadth, "seed k-mers explored")
	flags.IntVar(&overlay.Threads, "threads", overlay.Threads, "worker pool size for every parallel-map stage")
	flags.IntVar(&overlay.IndexCap, "index-cap", overlay.IndexCap, "maximum barcode reads to index")
	flags.IntVar(&overlay.MergeHammingCutoff, "merge-hamming-cutoff", overlay.MergeHammingCutoff, "maximum Hamming distance collapsed during merge")
	flags.BoolVar(&overlay.IndelTolerant, "indel-tolerant", overlay.IndelTolerant, "emit truncated/extended circularized k-mer variants")
	flags.IntVar(&overlay.MinDinuc, "min-dinuc", overlay.MinDinuc, "minimum dinucleotide diversity to index a barcode window (0 disables)")
	flags.BoolVar(&overlay.CPUProfile, "cpu-profile", overlay.CPUProfile, "capture a CPU profile of the run")
	flags.BoolVar(&overlay.NoCleanTemp, "no-clean-temp", overlay.NoCleanTemp, "no effect: decompressed/spilled scratch files are always left behind")
	flags.StringVar(&jsonConfig, "config", "", "JSON config file overlaying these flags")
	flags.StringVar(&tomlProfile, "profile", "", "TOML defaults profile, applied before --config and flags")

	return root
}

// applyFlags copies the fields of overlay that the user actually set
// on the command line onto cfg, preserving the precedence order
// documented in SPEC_FULL.md: defaults -> TOML profile -> JSON config
// -> CLI flags, highest wins. An unset flag is left at overlay's
// default and must never overwrite a value the profile or JSON layer
// already set on cfg.
func applyFlags(cmd *cobra.Command, cfg, overlay *config.Config) {
	flags := cmd.Flags()
	for _, name := range flagNames {
		if !flags.Changed(name) {
			continue
		}
		switch name {
		case "barcode-reads":
			cfg.BarcodeFileName = overlay.BarcodeFileName
		case "rna-reads":
			cfg.RNAFileName = overlay.RNAFileName
		case "output-dir":
			cfg.OutputDir = overlay.OutputDir
		case "barcode-start":
			cfg.BarcodeStart = overlay.BarcodeStart
		case "barcode-end":
			cfg.BarcodeEnd = overlay.BarcodeEnd
		case "umi-start":
			cfg.UMIStart = overlay.UMIStart
		case "umi-end":
			cfg.UMIEnd = overlay.UMIEnd
		case "kmer-size":
			cfg.KmerSize = overlay.KmerSize
		case "depth":
			cfg.Depth = overlay.Depth
		case "breadth":
			cfg.Breadth = overlay.Breadth
		case "threads":
			cfg.Threads = overlay.Threads
		case "index-cap":
			cfg.IndexCap = overlay.IndexCap
		case "merge-hamming-cutoff":
			cfg.MergeHammingCutoff = overlay.MergeHammingCutoff
		case "indel-tolerant":
			cfg.IndelTolerant = overlay.IndelTolerant
		case "min-dinuc":
			cfg.MinDinuc = overlay.MinDinuc
		case "cpu-profile":
			cfg.CPUProfile = overlay.CPUProfile
		case "no-clean-temp":
			cfg.NoCleanTemp = overlay.NoCleanTemp
		}
	}
}

func run(cfg *config.Config) error {
	err := pipeline.Run(cfg)
	if err == nil {
		return nil
	}
	if perr, ok := err.(*pipeline.Error); ok {
		fmt.Fprintln(os.Stderr, perr.Error())
		os.Exit(perr.Code)
	}
	return err
}
