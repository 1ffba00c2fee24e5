package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/decibelcooper/chicplot"
	"github.com/decibelcooper/chicplot/hist"
)

var (
	names  = flag.StringSlice("hist", []string{"hMassGamElecPosi", "hMassGamElecPosi_cndtn_1"}, "mass-vs-pT histograms to project")
	pTMin  = flag.Float64("minpt", 0, "minimum pT of the projection")
	pTMax  = flag.Float64("maxpt", 50, "maximum pT of the projection")
	nRebin = flag.Int("rebin", 1, "merge this many mass bins")
	logY   = flag.Bool("logy", false, "logarithmic y axis")
	title  = flag.String("title", "", "plot title")
	output = flag.String("output", "out.png", "output file")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <histogram-file>

Projects invariant-mass-vs-pT histograms onto the mass axis.

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

	t := *title
	if t == "" {
		t = fmt.Sprintf("%g < pT < %g GeV", *pTMin, *pTMax)
	}
	p := chicplot.NewPlot(t, xLabel((*names)[0]), "entries")
	if *logY {
		chicplot.LogY(p)
	}

	for i, name := range *names {
		h2, err := set.Get2D(name)
		if err != nil {
			logrus.Fatal(err)
		}
		h := hist.Rebin(hist.ProjectX(h2, *pTMin, *pTMax), *nRebin)
		logrus.Infof("%s: %g entries in range", name, hist.Integral(h))

		legend := ""
		if len(*names) > 1 {
			legend = name
		}
		chicplot.AddH1D(p, h, i, legend, *logY)
	}

	if err := chicplot.Save(p, *output); err != nil {
		logrus.Fatal(err)
	}
}

func xLabel(name string) string {
	switch {
	case strings.Contains(name, "mass_diff"):
		return "M(gamma e+ e-) - M(e+ e-) (GeV)"
	case strings.HasPrefix(name, "hMassGamElecPosi"):
		return "M(gamma e+ e-) (GeV)"
	case strings.HasPrefix(name, "hMassElecPosi"):
		return "M(e+ e-) (GeV)"
	case strings.HasPrefix(name, "hMass2Gamma"):
		return "M(gamma gamma) (GeV)"
	}
	return "mass (GeV)"
}
