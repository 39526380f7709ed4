// Copyright 2026, the sircel contributors.

// Package threshold implements the Thresholder of spec.md section
// 4.7: a per-depth-rank Gaussian fit over a log-spaced weight
// histogram, with the rank-2 cut-off chosen as the active acceptance
// threshold.
package threshold

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/EugOT/sircel/discover"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"
)

const (
	bins       = 50
	logMax     = 8.0
	activeRank = 2
)

// Fit is one depth-rank's Gaussian fit over its weight histogram.
type Fit struct {
	DepthRank int
	Amplitude float64
	Mean      float64
	Stdev     float64
	Cutoff    float64 // threshold value in weight units
}

// ErrInsufficientData is the "insufficient data" fatal condition of
// spec.md section 7, raised when fewer than two depth ranks have any
// surviving candidates.
var ErrInsufficientData = errors.New("threshold: fewer than two populated depth ranks")

// ErrFitFailed is the fatal condition of spec.md section 9 ("if the
// fit fails, the engine must fail rather than fall back to a
// less-principled rule"), raised when a depth rank's histogram has
// fewer than minNonzeroBins nonzero bins or when Nelder-Mead fails on
// it.
var ErrFitFailed = errors.New("threshold: Gaussian fit did not converge")

// Run groups candidates by depth-rank, fits a Gaussian to each rank's
// weight histogram, and returns the accepted subset (weight strictly
// greater than the rank-2 cut-off) plus every rank's fit.
func Run(candidates []discover.Candidate) ([]discover.Candidate, []Fit, error) {
	byRank := make(map[int][]discover.Candidate)
	for _, c := range candidates {
		byRank[c.DepthRank] = append(byRank[c.DepthRank], c)
	}

	ranks := make([]int, 0, len(byRank))
	for r := range byRank {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	if len(ranks) < 2 {
		return nil, nil, ErrInsufficientData
	}

	edges := binEdges()
	fits := make([]Fit, 0, len(ranks))
	var activeCutoff float64
	haveActive := false
	for _, r := range ranks {
		counts := histogram(byRank[r], edges)
		amp, mean, stdev, err := fitGaussian(counts)
		if err != nil {
			return nil, nil, fmt.Errorf("threshold: depth rank %d: %w: %v", r, ErrFitFailed, err)
		}
		idx := int(math.Floor(mean + 3*math.Abs(stdev)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(edges) {
			idx = len(edges) - 1
		}
		f := Fit{DepthRank: r, Amplitude: amp, Mean: mean, Stdev: stdev, Cutoff: edges[idx]}
		fits = append(fits, f)
		if r == activeRank {
			activeCutoff = f.Cutoff
			haveActive = true
		}
	}
	if !haveActive {
		return nil, nil, ErrInsufficientData
	}

	var accepted []discover.Candidate
	for _, c := range candidates {
		if float64(c.Weight) > activeCutoff {
			accepted = append(accepted, c)
		}
	}
	return accepted, fits, nil
}

func binEdges() []float64 {
	edges := make([]float64, bins+1)
	for i := range edges {
		frac := logMax * float64(i) / float64(bins)
		edges[i] = math.Pow(10, frac)
	}
	return edges
}

func histogram(candidates []discover.Candidate, edges []float64) []float64 {
	counts := make([]float64, len(edges)-1)
	for _, c := range candidates {
		w := float64(c.Weight)
		idx := sort.SearchFloat64s(edges, w) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= len(counts) {
			idx = len(counts) - 1
		}
		counts[idx]++
	}
	return counts
}

// fitGaussian fits amplitude*exp(-(x-mean)^2/(2*stdev^2)) to
// (bin-index, count) pairs with a derivative-free Nelder-Mead search,
// seeded at the fixed initial guess spec.md section 4.7 names. A
// gradient-free method is used because the model is only piecewise
// smooth in stdev near zero.
// minNonzeroBins is the fewest populated histogram bins a three
// parameter Gaussian fit can be meaningfully attempted against; with
// fewer, the least-squares problem is underdetermined and Nelder-Mead
// has no basis to converge on a unique answer.
const minNonzeroBins = 3

func fitGaussian(counts []float64) (amplitude, mean, stdev float64, err error) {
	var nonzero int
	for _, c := range counts {
		if c != 0 {
			nonzero++
		}
	}
	if nonzero < minNonzeroBins {
		return 0, 0, 0, fmt.Errorf("only %d nonzero histogram bin(s), need at least %d to fit", nonzero, minNonzeroBins)
	}

	residual := func(p []float64) float64 {
		amp, mu, sigma := p[0], p[1], p[2]
		if sigma == 0 {
			sigma = 1e-6
		}
		var sum float64
		for x, y := range counts {
			model := amp * math.Exp(-math.Pow(float64(x)-mu, 2)/(2*sigma*sigma))
			d := model - y
			sum += d * d
		}
		return sum
	}

	problem := optimize.Problem{Func: residual}
	init := []float64{100, 25, 10}
	result, err := optimize.Minimize(problem, init, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, 0, 0, err
	}
	if result == nil || len(result.X) < 3 {
		return 0, 0, 0, fmt.Errorf("optimize: no result")
	}
	return result.X[0], result.X[1], result.X[2], nil
}

// WriteFits writes fits.txt: depth, amplitude, mean, stdev, threshold.
func WriteFits(dir string, fits []Fit) error {
	f, err := os.Create(filepath.Join(dir, "fits.txt"))
	if err != nil {
		return errors.Wrap(err, "threshold: creating fits.txt")
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, fit := range fits {
		fmt.Fprintf(w, "%d\t%f\t%f\t%f\t%f\n", fit.DepthRank, fit.Amplitude, fit.Mean, fit.Stdev, fit.Cutoff)
	}
	return w.Flush()
}
