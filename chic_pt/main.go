package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/decibelcooper/chicplot"
	"github.com/decibelcooper/chicplot/hist"
)

var (
	species = flag.StringSlice("species", []string{"ChiC0", "ChiC1", "ChiC2"}, "species to draw")
	conds   = flag.StringSlice("cond", nil, "conditions to overlay (default: every condition in the file)")
	nRebin  = flag.Int("rebin", 5, "merge this many pT bins")
	logY    = flag.Bool("logy", true, "logarithmic y axis")
	title   = flag.String("title", "", "plot title")
	prefix  = flag.String("prefix", "out", "output file prefix")
	ext     = flag.String("ext", "png", "output format")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <histogram-file>

Overlays the generated pT spectrum of each species with its spectra under
the selection conditions.

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

	for _, sp := range *species {
		path := fmt.Sprintf("%s_%s_pt.%s", *prefix, strings.ToLower(sp), *ext)
		if err := drawSpecies(set, sp, path); err != nil {
			logrus.Fatal(err)
		}
		logrus.Infof("wrote %s", filepath.Clean(path))
	}
}

// conditionsOf lists the conditions of the pT spectra booked for sp.
func conditionsOf(set *hist.Set, sp string) []string {
	if len(*conds) > 0 {
		return *conds
	}
	pre := "h" + sp + "_pt_"
	var out []string
	for _, name := range set.Names() {
		if c, ok := strings.CutPrefix(name, pre); ok && c != "all" {
			out = append(out, c)
		}
	}
	return out
}

func drawSpecies(set *hist.Set, sp string, path string) error {
	t := *title
	if t == "" {
		t = sp
	}
	p := chicplot.NewPlot(t, "pT (GeV)", "d2sigma/dpT dy (mb/GeV)")
	if *logY {
		chicplot.LogY(p)
	}

	names := []string{"h" + sp + "_pt_all"}
	legends := []string{"all"}
	for _, c := range conditionsOf(set, sp) {
		names = append(names, "h"+sp+"_pt_"+c)
		legends = append(legends, c)
	}
	for i, name := range names {
		h, err := set.Get1D(name)
		if err != nil {
			return err
		}
		h = hist.Rebin(h, *nRebin)
		if *nRebin > 1 {
			h.Scale(1 / float64(*nRebin))
		}
		chicplot.AddH1D(p, h, i, legends[i], *logY)
	}
	return chicplot.Save(p, path)
}
