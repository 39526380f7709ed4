// Copyright 2017, Kerby Shedden and the Muscato contributors.
// Copyright 2026, the sircel contributors.

// Package config holds the sircel run configuration. A Config value is
// built once at startup (from defaults, an optional TOML profile, an
// optional JSON file, and CLI flags, in that order of increasing
// precedence) and passed explicitly to every stage; no package keeps
// ambient state of its own.
package config

import (
	"encoding/json"
	"os"
	"path"

	"github.com/BurntSushi/toml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// Config carries every tunable parameter of the discovery engine.
type Config struct {

	// BarcodeFileName is the uncompressed FASTQ file holding the
	// barcode+UMI read.
	BarcodeFileName string

	// RNAFileName is the uncompressed FASTQ file holding the
	// transcript read, positionally paired with BarcodeFileName.
	RNAFileName string

	// OutputDir is the directory all run artifacts are written
	// under.
	OutputDir string

	// BarcodeStart and BarcodeEnd delimit the barcode region
	// within the barcode read, [BarcodeStart, BarcodeEnd).
	BarcodeStart int
	BarcodeEnd   int

	// UMIStart and UMIEnd delimit the UMI region within the
	// barcode read, [UMIStart, UMIEnd).
	UMIStart int
	UMIEnd   int

	// KmerSize is k, the De Bruijn node length is KmerSize-1.
	KmerSize int

	// Depth is the number of cyclic paths retained per seed
	// k-mer (the enumerator's D).
	Depth int

	// Breadth is the number of seed k-mers explored (the
	// driver's B).
	Breadth int

	// Threads bounds the worker pool size used by every
	// parallel-map stage.
	Threads int

	// IndexCap bounds the number of barcode reads that are
	// indexed; 0 means no cap. Defaults() sets 5,000,000.
	IndexCap int

	// MergeHammingCutoff is the maximum Hamming distance at
	// which two candidate sequences are considered the same
	// barcode during merging.
	MergeHammingCutoff int

	// IndelTolerant enables the truncated/extended circularized
	// k-mer variants described in spec.md section 3.
	IndelTolerant bool

	// MinDinuc, if nonzero, discards barcode windows whose
	// dinucleotide diversity (utils.CountDinuc in the ancestor
	// tool) is below this count before they are indexed. Zero
	// disables the filter, which is the default so that baseline
	// behavior matches the specification exactly.
	MinDinuc int

	// BloomBits and BloomHashes are not read by any stage: the read
	// assigner sizes its Bloom-filter prefilter from the number of
	// accepted-path k-mers and a 1% false-positive rate.
	BloomBits   uint
	BloomHashes uint

	// SpillThresholdBytes, if nonzero, makes the k-mer index spill
	// a shard to a snappy-compressed segment file on disk once that
	// shard's estimated in-memory size passes this threshold. Zero
	// (the default) keeps everything in memory. The assignment index
	// is always kept in memory.
	SpillThresholdBytes int64

	// CPUProfile, if true, captures a CPU profile of the run into
	// OutputDir/cpu.pprof.
	CPUProfile bool

	// NoCleanTemp is passed to the pipeline but has no effect:
	// scratch files (decompressed inputs, spill segments) are
	// written under OutputDir and are never removed, whether or not
	// it is set.
	NoCleanTemp bool
}

// Defaults returns a Config populated with the parameter defaults
// named in spec.md section 6.
func Defaults() *Config {
	return &Config{
		BarcodeStart:        0,
		BarcodeEnd:          12,
		UMIStart:            12,
		UMIEnd:              20,
		KmerSize:            7,
		Depth:               3,
		Breadth:             1000,
		Threads:             32,
		IndexCap:            5_000_000,
		MergeHammingCutoff:  3,
		IndelTolerant:       false,
		MinDinuc:            0,
		BloomBits:           8_000_000,
		BloomHashes:         4,
		SpillThresholdBytes: 0,
	}
}

// LoadJSON overlays fields from a JSON config file onto c, matching
// the ancestor tool's ReadConfig.
func LoadJSON(c *Config, filename string) error {
	fid, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "config: opening JSON config")
	}
	defer fid.Close()
	dec := json.NewDecoder(fid)
	if err := dec.Decode(c); err != nil {
		return errors.Wrap(err, "config: decoding JSON config")
	}
	return nil
}

// LoadTOMLProfile overlays fields from a named TOML defaults profile
// (see SPEC_FULL.md "Configuration").
func LoadTOMLProfile(c *Config, filename string) error {
	fid, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "config: opening TOML profile")
	}
	defer fid.Close()
	if _, err := toml.NewDecoder(fid).Decode(c); err != nil {
		return errors.Wrap(err, "config: decoding TOML profile")
	}
	return nil
}

// DefaultProfilePath returns ~/.sircel/defaults.toml, or "" if the
// home directory cannot be resolved.
func DefaultProfilePath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return path.Join(home, ".sircel", "defaults.toml")
}

// Validate checks the invariants the engine depends on, returning a
// descriptive error naming the offending stage if one is violated.
func (c *Config) Validate() error {
	if c.BarcodeFileName == "" {
		return errors.New("config: BarcodeFileName not provided")
	}
	if c.RNAFileName == "" {
		return errors.New("config: RNAFileName not provided")
	}
	if c.OutputDir == "" {
		return errors.New("config: OutputDir not provided")
	}
	if c.BarcodeEnd <= c.BarcodeStart {
		return errors.New("config: BarcodeEnd must be greater than BarcodeStart")
	}
	if c.KmerSize < 1 {
		return errors.New("config: KmerSize must be at least 1")
	}
	if c.Depth < 2 {
		return errors.New("config: Depth must be at least 2 (the thresholder needs rank 1 and rank 2)")
	}
	if c.Breadth < 1 {
		return errors.New("config: Breadth must be at least 1")
	}
	if c.Threads < 1 {
		return errors.New("config: Threads must be at least 1")
	}
	return nil
}

// Save writes c as JSON into dir/config.json, mirroring the ancestor
// tool's saveConfig.
func (c *Config) Save(dir string) error {
	fid, err := os.Create(path.Join(dir, "config.json"))
	if err != nil {
		return errors.Wrap(err, "config: saving run configuration")
	}
	defer fid.Close()
	enc := json.NewEncoder(fid)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// BarcodeLength is BarcodeEnd-BarcodeStart, the fixed length of a
// discovered cell barcode.
func (c *Config) BarcodeLength() int {
	return c.BarcodeEnd - c.BarcodeStart
}

// CycleLength is the edge count of a target cyclic path: the barcode
// length plus one node, because the sentinel contributes an extra
// node to the cycle (spec.md section 4.4).
func (c *Config) CycleLength() int {
	return c.BarcodeLength() + 1
}
