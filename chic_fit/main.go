package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/plot/plotter"

	"github.com/decibelcooper/chicplot"
	"github.com/decibelcooper/chicplot/hist"
	"github.com/decibelcooper/chicplot/peakfit"
)

var (
	cond    = flag.String("cond", "cndtn_1", "condition of the mass difference histogram")
	outDir  = flag.String("outdir", ".", "directory of the fit plots")
	nRebin  = flag.Int("rebin", 1, "merge this many DeltaM bins before fitting")
	ptEdges = chicplot.FloatArrayFlags{Array: []float64{0, 50}}
)

func init() {
	flag.Var(&ptEdges, "pt", "pT bin edges (GeV); one fit per bin; repeat or comma-separate")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <histogram-file>

Fits the chi_c0, chi_c1 and chi_c2 peaks of M(gamma e+ e-) - M(e+ e-).

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

	ranges, err := ptEdges.Ranges()
	if err != nil {
		logrus.Fatalf("--pt: %v", err)
	}

	set, err := hist.Read(flag.Arg(0))
	if err != nil {
		logrus.Fatal(err)
	}
	name := "hMassGamElecPosi_mass_diff_" + *cond
	h2, err := set.Get2D(name)
	if err != nil {
		logrus.Fatal(err)
	}

	for _, r := range ranges {
		h := hist.Rebin(hist.ProjectX(h2, r[0], r[1]), *nRebin)
		f, err := peakfit.Fit(h, peakfit.DefaultModel())
		if err != nil {
			logrus.Fatalf("pT %g-%g: %v", r[0], r[1], err)
		}

		fmt.Printf("pT = %g-%g GeV: chi2/ndf = %.1f/%d\n", r[0], r[1], f.Chi2, f.NDF)
		for _, p := range f.Peaks {
			fmt.Printf("  %-6s N = %10.1f  mean = %.4f  sigma = %.4f\n", p.Name, p.Yield, p.Mean, p.Sigma)
		}

		out := filepath.Join(*outDir, fmt.Sprintf("DeltaMassFit_pt=%g-%g.pdf", r[0], r[1]))
		if err := draw(h, f, r, out); err != nil {
			logrus.Fatal(err)
		}
	}
}

func draw(h *hbook.H1D, f *peakfit.Result, r [2]float64, path string) error {
	p := chicplot.NewPlot(
		fmt.Sprintf("%g < pT < %g GeV", r[0], r[1]),
		"M(gamma e+ e-) - M(e+ e-) (GeV)",
		fmt.Sprintf("Entries / %g MeV", 1000*f.BinWidth),
	)
	chicplot.AddH1D(p, h, 0, "data", false)

	curve := plotter.NewFunction(f.Curve)
	curve.XMin, curve.XMax = f.Model.Lo, f.Model.Hi
	curve.Samples = 500
	curve.Color = chicplot.LineColor(3)
	p.Add(curve)
	p.Legend.Add("fit", curve)

	return chicplot.Save(p, path)
}
