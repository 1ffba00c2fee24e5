// Package hist books, normalises, projects and persists the histograms of a
// run. Histograms are go-hep hbook objects named through their annotation;
// a Set keeps them in booking order so that output files are reproducible.
package hist

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/hbook"
)

// Set is an ordered collection of named 1-D and 2-D histograms.
type Set struct {
	names []string
	h1    map[string]*hbook.H1D
	h2    map[string]*hbook.H2D
}

func NewSet() *Set {
	return &Set{
		h1: make(map[string]*hbook.H1D),
		h2: make(map[string]*hbook.H2D),
	}
}

// H1D books a 1-D histogram. Booking a name twice is a programming error and
// panics.
func (s *Set) H1D(name, title string, n int, lo, hi float64) *hbook.H1D {
	s.claim(name)
	h := hbook.NewH1D(n, lo, hi)
	annotate(h.Ann, name, title)
	s.h1[name] = h
	return h
}

// H2D books a 2-D histogram.
func (s *Set) H2D(name, title string, nx int, xlo, xhi float64, ny int, ylo, yhi float64) *hbook.H2D {
	s.claim(name)
	h := hbook.NewH2D(nx, xlo, xhi, ny, ylo, yhi)
	annotate(h.Ann, name, title)
	s.h2[name] = h
	return h
}

func (s *Set) claim(name string) {
	if s.Has(name) {
		panic(fmt.Errorf("hist: histogram %q booked twice", name))
	}
	s.names = append(s.names, name)
}

func annotate(ann hbook.Annotation, name, title string) {
	ann["name"] = name
	ann["title"] = title
}

func (s *Set) add1D(h *hbook.H1D) {
	name := Name(h.Ann)
	s.claim(name)
	s.h1[name] = h
}

func (s *Set) add2D(h *hbook.H2D) {
	name := Name(h.Ann)
	s.claim(name)
	s.h2[name] = h
}

// Has reports whether name is booked.
func (s *Set) Has(name string) bool {
	_, ok1 := s.h1[name]
	_, ok2 := s.h2[name]
	return ok1 || ok2
}

// Names returns the histogram names in booking order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of histograms.
func (s *Set) Len() int { return len(s.names) }

// Get1D returns the 1-D histogram called name.
func (s *Set) Get1D(name string) (*hbook.H1D, error) {
	h, ok := s.h1[name]
	if !ok {
		return nil, fmt.Errorf("no 1-D histogram %q", name)
	}
	return h, nil
}

// Get2D returns the 2-D histogram called name.
func (s *Set) Get2D(name string) (*hbook.H2D, error) {
	h, ok := s.h2[name]
	if !ok {
		return nil, fmt.Errorf("no 2-D histogram %q", name)
	}
	return h, nil
}

// Scale multiplies the histogram called name by f.
func (s *Set) Scale(name string, f float64) error {
	if h, ok := s.h1[name]; ok {
		h.Scale(f)
		return nil
	}
	if h, ok := s.h2[name]; ok {
		scale2D(h, f)
		return nil
	}
	return fmt.Errorf("no histogram %q to scale", name)
}

// scale2D multiplies the weights of h by f the way H1D.Scale does: sums of
// weights and weighted moments by f, sums of squared weights by f*f.
func scale2D(h *hbook.H2D, f float64) {
	scale := func(d *hbook.Dist2D) {
		for _, d1 := range []*hbook.Dist1D{&d.X, &d.Y} {
			d1.Dist.SumW *= f
			d1.Dist.SumW2 *= f * f
			d1.Stats.SumWX *= f
			d1.Stats.SumWX2 *= f
		}
		d.Stats.SumWXY *= f
	}
	for i := range h.Binning.Bins {
		scale(&h.Binning.Bins[i].Dist)
	}
	for i := range h.Binning.Outflows {
		scale(&h.Binning.Outflows[i])
	}
	scale(&h.Binning.Dist)
}

// Name returns the "name" annotation.
func Name(ann hbook.Annotation) string {
	v, _ := ann["name"].(string)
	return v
}

// Title returns the "title" annotation.
func Title(ann hbook.Annotation) string {
	v, _ := ann["title"].(string)
	return v
}

// BinWidth returns the uniform bin width of h.
func BinWidth(h *hbook.H1D) float64 {
	return (h.XMax() - h.XMin()) / float64(h.Len())
}

// Integral returns the sum of the in-range bin contents of h.
func Integral(h *hbook.H1D) float64 {
	var sum float64
	for _, bin := range h.Binning.Bins {
		sum += bin.SumW()
	}
	return sum
}

// Integral2D returns the sum of the in-range bin contents of h.
func Integral2D(h *hbook.H2D) float64 {
	var sum float64
	grid := h.GridXYZ()
	nx, ny := grid.Dims()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			sum += grid.Z(i, j)
		}
	}
	return sum
}

// ProjectX sums the rows of h whose bin centre lies in [ylo, yhi] into a 1-D
// histogram over the x axis of h. Bin errors follow the summed squared
// weights of the source bins.
func ProjectX(h *hbook.H2D, ylo, yhi float64) *hbook.H1D {
	nx, ny := h.Binning.Nx, h.Binning.Ny
	out := hbook.NewH1D(nx, h.XMin(), h.XMax())
	annotate(out.Ann, Name(h.Ann)+"_px", Title(h.Ann))
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			b := &h.Binning.Bins[j*nx+i]
			if y := b.YMid(); y < ylo || y > yhi {
				continue
			}
			addDist(out, i, b.Dist.X)
		}
	}
	return out
}

// Rebin merges groups of n adjacent bins. Trailing bins that do not fill a
// whole group are dropped.
func Rebin(h *hbook.H1D, n int) *hbook.H1D {
	if n <= 1 {
		return h
	}
	nbins := h.Len() / n
	if nbins == 0 {
		return h
	}
	width := BinWidth(h)
	out := hbook.NewH1D(nbins, h.XMin(), h.XMin()+float64(nbins*n)*width)
	for k, v := range h.Ann {
		out.Ann[k] = v
	}
	for i := 0; i < nbins; i++ {
		for j := 0; j < n; j++ {
			addDist(out, i, h.Binning.Bins[i*n+j].Dist)
		}
	}
	return out
}

// addDist accumulates the moments of d into bin i of h and into its total.
func addDist(h *hbook.H1D, i int, d hbook.Dist1D) {
	for _, dst := range []*hbook.Dist1D{&h.Binning.Bins[i].Dist, &h.Binning.Dist} {
		dst.Dist.N += d.Dist.N
		dst.Dist.SumW += d.Dist.SumW
		dst.Dist.SumW2 += d.Dist.SumW2
		dst.Stats.SumWX += d.Stats.SumWX
		dst.Stats.SumWX2 += d.Stats.SumWX2
	}
}

// Ratio returns, bin by bin, num/den and the binomial error of that ratio.
// Empty denominator bins give 0 +- 0.
func Ratio(num, den *hbook.H1D) (xs, eff, errs []float64, err error) {
	if num.Len() != den.Len() || num.XMin() != den.XMin() || num.XMax() != den.XMax() {
		return nil, nil, nil, fmt.Errorf("ratio of %q and %q: incompatible binnings", Name(num.Ann), Name(den.Ann))
	}
	n := num.Len()
	xs = make([]float64, n)
	eff = make([]float64, n)
	errs = make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = den.Binning.Bins[i].XMid()
		k := num.Binning.Bins[i].SumW()
		d := den.Binning.Bins[i].SumW()
		if d <= 0 {
			continue
		}
		r := k / d
		eff[i] = r
		errs[i] = math.Sqrt(math.Abs((1 - r) * k / (d * d)))
	}
	return xs, eff, errs, nil
}
