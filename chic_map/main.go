package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/decibelcooper/chicplot"
	"github.com/decibelcooper/chicplot/hist"
)

var (
	name   = flag.String("hist", "hMassGamElecPosi", "2-D histogram to draw")
	zMax   = flag.Float64("zmax", 0, "upper end of the colour scale (0: largest bin)")
	title  = flag.String("title", "", "plot title")
	output = flag.String("output", "out.png", "output file")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <histogram-file>

Draws a mass-vs-pT histogram as a heat map.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() != 1 {
		printUsage()
		logrus.Fatal("Invalid arguments")
	}

	set, err := hist.Read(flag.Arg(0))
	if err != nil {
		logrus.Fatal(err)
	}
	h2, err := set.Get2D(*name)
	if err != nil {
		logrus.Fatal(err)
	}
	grid := h2.GridXYZ()

	zTop := *zMax
	if zTop <= 0 {
		nx, ny := grid.Dims()
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				if z := grid.Z(i, j); z > zTop {
					zTop = z
				}
			}
		}
	}
	if zTop <= 0 {
		logrus.Fatalf("%s is empty", *name)
	}

	t := *title
	if t == "" {
		t = hist.Title(h2.Ann)
	}
	p := chicplot.NewPlot(t, "mass (GeV)", "pT (GeV)")

	img := vgimg.New(670, 400)
	dc := draw.New(img)
	dc0 := draw.Crop(dc, 0, -70, 0, 0)
	dc1 := draw.Crop(dc, 620, 0, 0, 0)

	colorMap := moreland.ExtendedBlackBody()
	colorMap.SetMin(0)
	colorMap.SetMax(zTop)
	heatMap := plotter.NewHeatMap(grid, colorMap.Palette(1000))
	heatMap.Min = 0
	heatMap.Max = zTop
	p.Add(heatMap)
	p.Draw(dc0)

	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: colorMap, Vertical: true})
	bar.HideX()
	bar.Y.Padding = 0
	bar.Draw(dc1)

	w, err := os.Create(*output)
	if err != nil {
		logrus.Fatal(err)
	}
	defer w.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err = png.WriteTo(w); err != nil {
		logrus.Fatal(err)
	}
}
