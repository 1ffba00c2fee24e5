// Package peakfit fits a sum of Gaussian peaks to a 1-D histogram, as used
// to extract the chi_c0, chi_c1 and chi_c2 yields from the
// M(gamma e+ e-) - M(e+ e-) spectrum.
package peakfit

import (
	"errors"
	"fmt"
	"math"

	"go-hep.org/x/hep/fit"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/optimize"

	"github.com/decibelcooper/chicplot/hist"
)

// Peak is a Gaussian A exp(-(x-Mean)^2 / 2 Sigma^2) with start values and
// parameter limits. A limit pair with Min >= Max leaves the parameter free.
type Peak struct {
	Name  string
	A     float64
	Mean  float64
	Sigma float64

	MeanMin, MeanMax   float64
	SigmaMin, SigmaMax float64
}

// Model is a sum of peaks fitted on [Lo, Hi].
type Model struct {
	Peaks  []Peak
	Lo, Hi float64
}

// DefaultModel returns the chi_c0, chi_c1 and chi_c2 peaks of the mass
// difference spectrum.
func DefaultModel() Model {
	return Model{
		Lo: 0.25,
		Hi: 0.53,
		Peaks: []Peak{
			{Name: "chi_c0", A: 1e4, Mean: 0.3192, Sigma: 0.015, MeanMin: 0.313, MeanMax: 0.318, SigmaMin: 0.012, SigmaMax: 0.02},
			{Name: "chi_c1", A: 1e4, Mean: 0.4148, Sigma: 0.014, MeanMin: 0.408, MeanMax: 0.420, SigmaMin: 0.010, SigmaMax: 0.020},
			{Name: "chi_c2", A: 1e4, Mean: 0.4584, Sigma: 0.015, MeanMin: 0.455, MeanMax: 0.465, SigmaMin: 0.010, SigmaMax: 0.020},
		},
	}
}

// Validate checks the fit range and the peaks.
func (m Model) Validate() error {
	if len(m.Peaks) == 0 {
		return errors.New("peakfit: no peaks")
	}
	if m.Lo >= m.Hi {
		return fmt.Errorf("peakfit: empty fit range [%g, %g]", m.Lo, m.Hi)
	}
	for i, p := range m.Peaks {
		if p.Sigma <= 0 {
			return fmt.Errorf("peakfit: peak %d: sigma must be positive, got %g", i, p.Sigma)
		}
	}
	return nil
}

func (m Model) start() []float64 {
	ps := make([]float64, 0, 3*len(m.Peaks))
	for _, p := range m.Peaks {
		ps = append(ps, p.A, p.Mean, p.Sigma)
	}
	return ps
}

// bounded maps raw minimiser parameters onto the limits of the model.
func (m Model) bounded(ps []float64) []float64 {
	out := make([]float64, len(ps))
	copy(out, ps)
	for i, p := range m.Peaks {
		out[3*i+1] = clamp(out[3*i+1], p.MeanMin, p.MeanMax)
		out[3*i+2] = clamp(out[3*i+2], p.SigmaMin, p.SigmaMax)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if lo >= hi {
		return v
	}
	return math.Max(lo, math.Min(hi, v))
}

// Eval returns the model at x for the parameters ps, given as consecutive
// (A, Mean, Sigma) triplets.
func (m Model) Eval(x float64, ps []float64) float64 {
	var sum float64
	for i := 0; i+2 < len(ps); i += 3 {
		a, mean, sigma := ps[i], ps[i+1], ps[i+2]
		if sigma == 0 {
			continue
		}
		d := (x - mean) / sigma
		sum += a * math.Exp(-0.5*d*d)
	}
	return sum
}

// Fitted is a fitted peak.
type Fitted struct {
	Name  string
	A     float64
	Mean  float64
	Sigma float64
	Yield float64
}

// Result holds the outcome of a fit.
type Result struct {
	Model    Model
	Params   []float64 // bounded (A, Mean, Sigma) triplets
	Peaks    []Fitted
	Chi2     float64
	NDF      int
	BinWidth float64
}

// Curve evaluates the fitted model.
func (f *Result) Curve(x float64) float64 { return f.Model.Eval(x, f.Params) }

// passes is the number of minimiser restarts from the previous optimum.
const passes = 3

// Fit fits m to the bins of h whose centre lies in [m.Lo, m.Hi].
func Fit(h *hbook.H1D, m Model) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var xs, ys, errs []float64
	for _, bin := range h.Binning.Bins {
		x := bin.XMid()
		if x < m.Lo || x > m.Hi {
			continue
		}
		e := math.Sqrt(bin.SumW2())
		if e == 0 {
			e = 1
		}
		xs = append(xs, x)
		ys = append(ys, bin.SumW())
		errs = append(errs, e)
	}
	ndf := len(xs) - 3*len(m.Peaks)
	if ndf <= 0 {
		return nil, fmt.Errorf("peakfit: %d bins in [%g, %g] for %d parameters", len(xs), m.Lo, m.Hi, 3*len(m.Peaks))
	}

	ps := m.start()
	for i := 0; i < passes; i++ {
		res, err := fit.Curve1D(
			fit.Func1D{
				F: func(x float64, ps []float64) float64 {
					return m.Eval(x, m.bounded(ps))
				},
				Ps:  ps,
				X:   xs,
				Y:   ys,
				Err: errs,
			},
			nil, &optimize.NelderMead{},
		)
		if err != nil {
			return nil, fmt.Errorf("peakfit: %w", err)
		}
		ps = res.X
	}

	out := &Result{
		Model:    m,
		Params:   m.bounded(ps),
		NDF:      ndf,
		BinWidth: hist.BinWidth(h),
	}
	for i := range xs {
		d := (ys[i] - out.Curve(xs[i])) / errs[i]
		out.Chi2 += d * d
	}
	for i, p := range m.Peaks {
		a, mean, sigma := out.Params[3*i], out.Params[3*i+1], math.Abs(out.Params[3*i+2])
		out.Peaks = append(out.Peaks, Fitted{
			Name:  p.Name,
			A:     a,
			Mean:  mean,
			Sigma: sigma,
			Yield: Yield(a, sigma, out.BinWidth),
		})
	}
	return out, nil
}

// Yield converts a Gaussian of amplitude a (entries per bin) and width sigma
// into a number of entries.
func Yield(a, sigma, binWidth float64) float64 {
	return math.Sqrt(2*math.Pi) * a * sigma / binWidth
}
