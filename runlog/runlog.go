// Copyright 2017, Kerby Shedden and the Muscato contributors.
// Copyright 2026, the sircel contributors.

// Package runlog provides the engine's owned log sink. Every
// component receives a *Logger explicitly; none reach for a package
// global, per the no-ambient-state design note in SPEC_FULL.md.
package runlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path"

	"github.com/dustin/go-humanize"
)

// Logger tees progress lines to both an owned run_log.txt file and
// stderr, replacing the ancestor tool's practice of overwriting
// os.Stdout globally (IO_utils.Logger in original_source/sircel/IO_utils.py).
type Logger struct {
	file *os.File
	l    *log.Logger
}

// New creates run_log.txt under dir and returns a Logger writing to
// it and to stderr.
func New(dir string) (*Logger, error) {
	fid, err := os.Create(path.Join(dir, "run_log.txt"))
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(fid, os.Stderr)
	return &Logger{file: fid, l: log.New(mw, "", log.Ltime)}, nil
}

// Close closes the underlying file. Stderr output is unaffected.
func (lg *Logger) Close() error {
	return lg.file.Close()
}

// Stage logs the start of a named pipeline stage.
func (lg *Logger) Stage(name string) {
	lg.l.Printf("=== %s ===", name)
}

// Count logs a humanized progress count, e.g. "5,000,000 reads
// indexed".
func (lg *Logger) Count(n int, what string) {
	lg.l.Printf("%s %s", humanize.Comma(int64(n)), what)
}

// Printf logs a formatted message.
func (lg *Logger) Printf(format string, args ...interface{}) {
	lg.l.Printf(format, args...)
}

// Fatalf logs a formatted message then exits the process with status
// code. Nothing in this module calls it: library code returns errors,
// and cmd/sircel prints them to stderr and calls os.Exit itself.
func (lg *Logger) Fatalf(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	lg.l.Print(msg)
	lg.Close()
	os.Exit(code)
}
