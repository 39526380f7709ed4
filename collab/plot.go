// Copyright 2026, the sircel contributors.

package collab

import (
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotPaths renders paths_plotted.pdf: accepted paths' weights sorted
// descending, the visualization spec.md section 6 names as optional
// and collaborator-owned.
func PlotPaths(outDir string, weights []int) error {
	sorted := append([]int(nil), weights...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	p := plot.New()
	p.Title.Text = "accepted path weights"
	p.X.Label.Text = "rank"
	p.Y.Label.Text = "weight"

	pts := make(plotter.XYs, len(sorted))
	for i, w := range sorted {
		pts[i].X = float64(i + 1)
		pts[i].Y = float64(w)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "collab: building plot line")
	}
	p.Add(line)

	path := filepath.Join(outDir, "paths_plotted.pdf")
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "collab: saving paths_plotted.pdf")
	}
	return nil
}
