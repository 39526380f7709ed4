// Copyright 2026, the sircel contributors.

// sircel addresses reads by byte offset and re-reads them at random
// later (the subgraph builder and splitter both do this), so the
// decompressed FASTQ files are mapped once into memory for the
// lifetime of the run rather than reopened per access, per the
// "owned memory-mapped region" design note in SPEC_FULL.md. Like the
// ancestor tool's use of golang.org/x/sys/unix for FIFOs, this is a
// Unix-only tool.

package fastqio

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// File is a memory-mapped, offset-addressable FASTQ file. It must
// outlive every Record and Pair that references it.
type File struct {
	path string
	f    *os.File
	data []byte
}

// Open memory-maps path read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "fastqio: opening %s", path)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "fastqio: stat %s", path)
	}
	size := st.Size()
	if size == 0 {
		f.Close()
		return nil, errors.Errorf("fastqio: %s is empty", path)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "fastqio: mmap %s", path)
	}
	return &File{path: path, f: f, data: data}, nil
}

// Close unmaps the file and closes the underlying descriptor.
func (mf *File) Close() error {
	var err error
	if mf.data != nil {
		err = unix.Munmap(mf.data)
		mf.data = nil
	}
	if cerr := mf.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Len returns the mapped region's size in bytes.
func (mf *File) Len() int64 {
	return int64(len(mf.data))
}

// Path returns the path this File was opened from.
func (mf *File) Path() string {
	return mf.path
}
