// Package analysis runs the event loop: it pulls events from a generator,
// walks their decay chains, normalises the spectra and writes the
// histograms.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/decibelcooper/chicplot/config"
	"github.com/decibelcooper/chicplot/decay"
	"github.com/decibelcooper/chicplot/event"
	"github.com/decibelcooper/chicplot/hist"
	"github.com/decibelcooper/chicplot/random"
	"github.com/decibelcooper/chicplot/resolution"
	"github.com/decibelcooper/chicplot/selection"
)

// Runner owns the histograms of one run.
type Runner struct {
	log    logrus.FieldLogger
	set    *hist.Set
	acc    *selection.Accumulator
	walker *decay.Walker

	yFiducial     float64
	printEvents   int
	progressEvery int
}

// NewRunner books the histograms for the detector setup and the binning of
// card.
func NewRunner(card *config.RunCard, setup *config.Setup, log logrus.FieldLogger) *Runner {
	set := hist.NewSet()
	acc := selection.NewAccumulator(set, setup.Conditions)
	walker := decay.NewWalker(set, decay.Config{
		Species:        setup.Species,
		AncestorStatus: card.Source.AncestorStatus,
		YFiducial:      card.Binning.YFiducial,
		AnyOrder:       setup.AnyOrder,
		Binning:        card.DecayBinning(),
		Photon:         setup.Photon,
		Electron:       setup.Electron,
	}, acc)
	return &Runner{
		log:           log,
		set:           set,
		acc:           acc,
		walker:        walker,
		yFiducial:     card.Binning.YFiducial,
		printEvents:   card.Run.PrintEvents,
		progressEvery: card.Run.ProgressEvery,
	}
}

// Set returns the booked histograms.
func (r *Runner) Set() *hist.Set { return r.set }

// Stats returns the walker counters.
func (r *Runner) Stats() decay.Stats { return r.walker.Stats() }

// Loop runs n trials of gen and returns the number of events walked. A
// trial without an event is skipped, io.EOF ends the loop early and any
// other generator error is returned.
func (r *Runner) Loop(gen event.Generator, n int) (int, error) {
	walked := 0
	for i := 0; i < n; i++ {
		if r.progressEvery > 0 && i > 0 && i%r.progressEvery == 0 {
			r.log.Infof("processed %d of %d events", i, n)
		}
		if !gen.Next() {
			err := gen.Err()
			switch {
			case err == nil:
				continue
			case errors.Is(err, io.EOF):
				r.log.Infof("input exhausted after %d events", walked)
				return walked, nil
			default:
				return walked, fmt.Errorf("event %d: %w", i, err)
			}
		}
		evt := gen.Event()
		if walked < r.printEvents {
			r.list(evt)
		}
		r.walker.Walk(evt)
		walked++
	}
	return walked, nil
}

func (r *Runner) list(evt *event.Event) {
	var b strings.Builder
	if err := event.List(&b, evt); err != nil {
		r.log.Warnf("unable to list event %d: %v", evt.Number, err)
		return
	}
	r.log.Debugf("event %d\n%s", evt.Number, b.String())
}

// Normalize turns the pT and rapidity spectra into differential cross
// sections using the generator summary. It returns the per-event weight
// sigmaGen/nAccepted, or false when no event was accepted and nothing was
// scaled.
func (r *Runner) Normalize(info event.Info) (float64, bool, error) {
	if info.NAccepted == 0 {
		return 0, false, nil
	}
	sigmaWeight := info.SigmaGen / float64(info.NAccepted)
	if err := Normalize(r.set, r.walker.PtSpectra(), sigmaWeight, r.yFiducial); err != nil {
		return 0, false, err
	}
	if err := Normalize(r.set, r.walker.YSpectra(), sigmaWeight, r.yFiducial); err != nil {
		return 0, false, err
	}
	return sigmaWeight, true, nil
}

// Normalize scales each named spectrum by sigmaWeight / (binWidth * 2 * yFiducial).
func Normalize(s *hist.Set, names []string, sigmaWeight, yFiducial float64) error {
	for _, name := range names {
		h, err := s.Get1D(name)
		if err != nil {
			return err
		}
		f := sigmaWeight / (hist.BinWidth(h) * 2 * yFiducial)
		if err := s.Scale(name, f); err != nil {
			return err
		}
	}
	return nil
}

// Summary describes a finished run.
type Summary struct {
	Seed        uint64
	Events      int
	Info        event.Info
	SigmaWeight float64
	Stats       decay.Stats
	Output      string
	Set         *hist.Set
}

// Run executes the run described by card with the detector det: n trials,
// or card.Run.Events when n is zero. The histograms are written to
// card.Run.Output.
func Run(card *config.RunCard, det *config.Detector, n int, log logrus.FieldLogger) (*Summary, error) {
	if n <= 0 {
		n = card.Run.Events
	}
	if n <= 0 {
		return nil, fmt.Errorf("number of events must be positive, got %d", n)
	}

	seed := card.Run.Seed
	if seed == 0 {
		seed = random.NewSeed()
	}
	streams := random.New(seed)
	log.WithField("seed", seed).Info("random streams seeded")

	setup, err := det.Build(resolution.NewSampler(streams.Get(random.StreamSmearing)))
	if err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}

	gen, err := Open(card, streams)
	if err != nil {
		return nil, err
	}
	defer gen.Close()

	r := NewRunner(card, setup, log)
	log.Infof("running %d events from %s source", n, card.Source.Kind)
	walked, err := r.Loop(gen, n)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Seed:   seed,
		Events: walked,
		Info:   gen.Info(),
		Stats:  r.Stats(),
		Output: card.Run.Output,
		Set:    r.set,
	}
	st := sum.Stats
	log.WithFields(logrus.Fields{
		"ancestors":      st.Ancestors,
		"topology_skips": st.TopologySkips,
		"channel_skips":  st.ChannelSkips,
		"accepted":       st.Accepted,
		"pi0s":           st.Pi0s,
	}).Info("decay chains")

	w, ok, err := r.Normalize(sum.Info)
	if err != nil {
		return nil, err
	}
	if ok {
		sum.SigmaWeight = w
		log.Infof("sigmaGen = %g mb, nAccepted = %d, sigma weight = %g mb", sum.Info.SigmaGen, sum.Info.NAccepted, w)
	} else {
		log.Warn("no accepted events, spectra left unnormalised")
	}

	if err := hist.Write(card.Run.Output, r.set); err != nil {
		return nil, err
	}
	log.Infof("wrote %d histograms to %s", r.set.Len(), card.Run.Output)
	return sum, nil
}

// Open returns the event source of card. The gun draws from the generator
// stream of streams.
func Open(card *config.RunCard, streams *random.Streams) (event.Generator, error) {
	src := card.Source
	switch src.Kind {
	case config.SourceGun:
		return event.NewGun(card.GunConfig(), streams.Get(random.StreamGenerator))
	case config.SourceHepMC:
		return event.OpenHepMC(src.Path, src.SigmaGen)
	case config.SourceLCIO:
		coll := src.Collection
		if coll == "" {
			coll = event.MCParticleCollection
		}
		return event.OpenLCIO(src.Path, coll, src.SigmaGen)
	case config.SourceProio:
		tag := src.Collection
		if tag == "" {
			tag = event.DefaultProioTag
		}
		return event.OpenProio(src.Path, tag, src.SigmaGen, src.AncestorStatus)
	}
	return nil, fmt.Errorf("unknown source kind %q", src.Kind)
}
