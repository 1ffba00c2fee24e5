package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go-hep.org/x/hep/hbook"

	"github.com/decibelcooper/chicplot"
	"github.com/decibelcooper/chicplot/analysis"
	"github.com/decibelcooper/chicplot/config"
	"github.com/decibelcooper/chicplot/event"
	"github.com/decibelcooper/chicplot/random"
)

var (
	kind       = flag.String("kind", config.SourceHepMC, "input kind (gun, hepmc, lcio, proio)")
	collection = flag.String("collection", "", "LCIO collection or proio tag")
	nEvents    = flag.Int("n", 0, "maximum number of events (0: all; required for the gun)")
	allPhotons = flag.Bool("all", false, "histogram every photon, not only chi_c daughters")
	seed       = flag.Uint64("seed", 1, "gun seed")
	output     = flag.String("output", "out.png", "output file")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] [event-file]

Scans a generator record: counts chi_c entries per status and draws the
true energy of the radiative photons.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	card := config.DefaultRunCard()
	card.Source.Kind = *kind
	card.Source.Collection = *collection
	if flag.NArg() == 1 {
		card.Source.Path = flag.Arg(0)
	}
	if err := card.Validate(); err != nil || flag.NArg() > 1 || (*kind == config.SourceGun && *nEvents <= 0) {
		printUsage()
		logrus.Fatal("Invalid arguments")
	}

	gen, err := analysis.Open(card, random.New(*seed))
	if err != nil {
		logrus.Fatal(err)
	}
	defer gen.Close()

	s := newScan()
	for i := 0; *nEvents <= 0 || i < *nEvents; i++ {
		if !gen.Next() {
			err := gen.Err()
			if err == nil {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			logrus.Fatal(err)
		}
		s.add(gen.Event(), *allPhotons)
	}
	s.report(os.Stdout)

	p := chicplot.NewPlot("", "log_10{E_gamma (GeV)}", "photons")
	chicplot.LogY(p)
	chicplot.AddH1D(p, s.logE, 0, "", true)
	if err := chicplot.Save(p, *output); err != nil {
		logrus.Fatal(err)
	}
}

type statusKey struct{ id, status int }

type scan struct {
	events int
	counts map[statusKey]int
	logE   *hbook.H1D
}

func newScan() *scan {
	return &scan{
		counts: make(map[statusKey]int),
		logE:   hbook.NewH1D(100, -3, 2),
	}
}

func isChiC(id int) bool {
	return id == event.ChiC0 || id == event.ChiC1 || id == event.ChiC2
}

func (s *scan) add(evt *event.Event, all bool) {
	s.events++
	for i, p := range evt.Particles {
		if isChiC(p.ID) {
			s.counts[statusKey{p.ID, p.Status}]++
			for d := p.Daughter1; d > 0 && d <= p.Daughter2; d++ {
				if g, ok := evt.At(d); ok && g.ID == event.Photon && !all {
					s.fill(g)
				}
			}
		}
		if all && p.ID == event.Photon && i > 0 {
			s.fill(p)
		}
	}
}

func (s *scan) fill(g event.Particle) {
	if e := g.P.E(); e > 0 {
		s.logE.Fill(math.Log10(e), 1)
	}
}

func (s *scan) report(w io.Writer) {
	keys := make([]statusKey, 0, len(s.counts))
	for k := range s.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].id != keys[j].id {
			return keys[i].id < keys[j].id
		}
		return keys[i].status < keys[j].status
	})

	fmt.Fprintf(w, "%d events\n", s.events)
	for _, k := range keys {
		fmt.Fprintf(w, "%-8s status %4d: %d\n", event.Name(k.id), k.status, s.counts[k])
	}
	fmt.Fprintf(w, "%g photons histogrammed\n", s.logE.SumW())
}
