package main

import (
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"

	"github.com/decibelcooper/chicplot"
	"github.com/decibelcooper/chicplot/hist"
)

var (
	sp     = flag.String("species", "ChiC2", "species")
	conds  = flag.StringSlice("cond", []string{"cndtn_1", "cndtn_2", "cndtn_3"}, "conditions")
	nRebin = flag.Int("rebin", 10, "merge this many pT bins")
	title  = flag.String("title", "", "plot title")
	prefix = flag.String("prefix", "out", "output file prefix")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <histogram-file>

Draws the acceptance efficiency h<species>_pt_<cond> / h<species>_pt_all per
pT bin with binomial errors.

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
	all, err := set.Get1D("h" + *sp + "_pt_all")
	if err != nil {
		logrus.Fatal(err)
	}
	all = hist.Rebin(all, *nRebin)

	t := *title
	if t == "" {
		t = *sp + " acceptance"
	}
	p := chicplot.NewPlot(t, "pT (GeV)", "efficiency")

	for i, c := range *conds {
		h, err := set.Get1D("h" + *sp + "_pt_" + c)
		if err != nil {
			logrus.Fatal(err)
		}
		pts, err := efficiency(hist.Rebin(h, *nRebin), all)
		if err != nil {
			logrus.Fatal(err)
		}

		xerr, err := plotter.NewXErrorBars(pts)
		if err != nil {
			logrus.Fatal(err)
		}
		yerr, err := plotter.NewYErrorBars(pts)
		if err != nil {
			logrus.Fatal(err)
		}
		xerr.LineStyle.Color = chicplot.LineColor(i)
		yerr.LineStyle.Color = chicplot.LineColor(i)
		p.Add(xerr, yerr)
		p.Legend.Add(c, yerr)
	}

	for _, ext := range []string{".pdf", ".png"} {
		if err := chicplot.Save(p, *prefix+ext); err != nil {
			logrus.Fatal(err)
		}
	}
}

// efficiency returns num/den per bin, the x error being the RMS of a
// uniform distribution over the bin.
func efficiency(num, den *hbook.H1D) (plotutil.ErrorPoints, error) {
	xs, eff, errs, err := hist.Ratio(num, den)
	if err != nil {
		return plotutil.ErrorPoints{}, err
	}
	xSigma := hist.BinWidth(den) / 2 / math.Sqrt(3)
	pts := plotutil.ErrorPoints{
		XYs:     make(plotter.XYs, len(xs)),
		XErrors: make(plotter.XErrors, len(xs)),
		YErrors: make(plotter.YErrors, len(xs)),
	}
	for i := range xs {
		pts.XYs[i].X, pts.XYs[i].Y = xs[i], eff[i]
		pts.XErrors[i].Low, pts.XErrors[i].High = xSigma, xSigma
		pts.YErrors[i].Low, pts.YErrors[i].High = errs[i], errs[i]
	}
	return pts, nil
}
