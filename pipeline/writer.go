// Copyright 2026, the sircel contributors.

package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/EugOT/sircel/discover"
	"github.com/pkg/errors"
)

// writeCandidates writes name under dir as tab-separated: sequence,
// weight, depth-rank, comma-joined k-mer labels (spec.md section 6).
func writeCandidates(dir, name string, candidates []discover.Candidate) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return errors.Wrapf(err, "pipeline: creating %s", name)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, c := range candidates {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", c.Sequence, c.Weight, c.DepthRank, strings.Join(c.Labels, ","))
	}
	return w.Flush()
}
