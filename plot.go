// Package chicplot holds the drawing helpers shared by the chic_* commands.
package chicplot

import (
	"image/color"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var lineColors = []color.Color{
	color.RGBA{A: 255},
	color.RGBA{G: 255, A: 255},
	color.RGBA{B: 255, A: 255},
	color.RGBA{R: 255, B: 127, G: 127, A: 255},
}

// LineColor returns the colour of the i-th curve of an overlay.
func LineColor(i int) color.Color {
	if i >= 0 && i < len(lineColors) {
		return lineColors[i]
	}
	return plotutil.Color(i)
}

// NewPlot returns a plot with precise ticks on both axes.
func NewPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}
	return p
}

// LogY switches p to a logarithmic y axis.
func LogY(p *plot.Plot) {
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
}

// AddH1D draws h as the i-th outline of an overlay and labels it in the
// legend unless legend is empty.
func AddH1D(p *plot.Plot, h *hbook.H1D, i int, legend string, logY bool) *hplot.H1D {
	hh := hplot.NewH1D(h, hplot.WithLogY(logY))
	hh.FillColor = nil
	hh.LineStyle.Color = LineColor(i)
	hh.Infos.Style = hplot.HInfoNone
	p.Add(hh)
	if legend != "" {
		p.Legend.Add(legend, hh)
	}
	return hh
}

// Save writes p to path; the extension selects the image format.
func Save(p *plot.Plot, path string) error {
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
