// Copyright 2026, the sircel contributors.

// Package collab holds the engine's external-process collaborators:
// gzip decompression ahead of indexing, a PDF path-weight plot, and
// optional CPU profiling. None of these touch core barcode-discovery
// logic; they are modeled as collaborators per spec.md section 6, the
// same separation the teacher draws between muscato's engine and its
// sztool/sort/scipipe shell-outs.
package collab

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/scipipe/scipipe"
)

// Decompress runs gzip -d on gzPath via a one-process scipipe
// workflow and returns the path to the decompressed temporary file.
// The core engine never reads compressed input directly (spec.md
// section 6): "the core operates exclusively on uncompressed files."
func Decompress(gzPath, tmpDir string) (string, error) {
	out := filepath.Join(tmpDir, uuid.NewString()+".fastq")

	wf := scipipe.NewWorkflow("decompress", 2)
	dc := wf.NewProc("dc", fmt.Sprintf("gzip -dc %s > {os:out}", gzPath))
	dc.SetPathStatic("out", out)
	wf.AddProcs(dc)
	wf.SetDriver(dc)
	wf.Run()

	if _, err := os.Stat(out); err != nil {
		return "", errors.Wrapf(err, "collab: decompressing %s", gzPath)
	}
	return out, nil
}
