// Package decay walks chi_cJ -> J/psi gamma -> e+ e- gamma chains through
// an event record, smears the final-state legs and fills the per-species
// spectra and the invariant-mass accumulator.
package decay

import (
	"math"
	"strings"

	"go-hep.org/x/hep/hbook"

	"github.com/decibelcooper/chicplot/event"
	"github.com/decibelcooper/chicplot/hist"
	"github.com/decibelcooper/chicplot/kinem"
	"github.com/decibelcooper/chicplot/resolution"
	"github.com/decibelcooper/chicplot/selection"
)

// Species is one chi_c state of the analysis. Name is used in histogram
// names.
type Species struct {
	Name   string
	ID     int
	Weight float64
}

func DefaultSpecies() []Species {
	return []Species{
		{Name: "ChiC0", ID: event.ChiC0, Weight: 1},
		{Name: "ChiC1", ID: event.ChiC1, Weight: 1},
		{Name: "ChiC2", ID: event.ChiC2, Weight: 1},
	}
}

// Binning of the per-species spectra. Rapidity spectra span the fiducial
// window.
type Binning struct {
	PtBins int
	PtMax  float64
	YBins  int
}

func DefaultBinning() Binning {
	return Binning{PtBins: 250, PtMax: 50, YBins: 250}
}

// M(gamma gamma) binning of the pi0 spectrum.
const (
	Mass2GammaBins = 150
	Mass2GammaMax  = 0.3
)

// Config configures a Walker.
type Config struct {
	Species        []Species
	AncestorStatus int
	YFiducial      float64

	// AnyOrder accepts chi_c daughters stored as (gamma, J/psi).
	AnyOrder bool

	Binning  Binning
	Photon   resolution.Smearer
	Electron resolution.Smearer
}

// DefaultConfig returns the Pythia conventions with the given smearers.
func DefaultConfig(photon, electron resolution.Smearer) Config {
	return Config{
		Species:        DefaultSpecies(),
		AncestorStatus: -62,
		YFiducial:      0.5,
		Binning:        DefaultBinning(),
		Photon:         photon,
		Electron:       electron,
	}
}

// Stats counts what the walker did with the chains it found.
type Stats struct {
	Ancestors     int64 // species entries inside the fiducial window
	TopologySkips int64 // wrong number of daughters
	ChannelSkips  int64 // wrong daughter identities
	Accepted      int64 // chains handed to the accumulator
	Pi0s          int64 // pi0 -> gamma gamma filled
}

type speciesHists struct {
	ptAll    *hbook.H1D
	ptCond   []*hbook.H1D
	yCond    []*hbook.H1D
	gamma    *hbook.H1D
	electron *hbook.H1D
	positron *hbook.H1D
}

// Walker finds the decay chains of every species in an event.
type Walker struct {
	cfg   Config
	acc   *selection.Accumulator
	hists []speciesHists

	mass2Gamma *hbook.H2D

	ptSpectra []string
	ySpectra  []string

	stats Stats
}

// NewWalker books the per-species spectra in s. The conditions of acc name
// the conditional spectra.
func NewWalker(s *hist.Set, cfg Config, acc *selection.Accumulator) *Walker {
	w := &Walker{cfg: cfg, acc: acc}
	b := cfg.Binning

	pt := func(name, title string) *hbook.H1D {
		w.ptSpectra = append(w.ptSpectra, name)
		return s.H1D(name, title, b.PtBins, 0, b.PtMax)
	}
	y := func(name, title string) *hbook.H1D {
		w.ySpectra = append(w.ySpectra, name)
		return s.H1D(name, title, b.YBins, -cfg.YFiducial, cfg.YFiducial)
	}

	for _, sp := range cfg.Species {
		var h speciesHists
		h.ptAll = pt("h"+sp.Name+"_pt_all", "All "+sp.Name+" pT spectrum")
		for _, c := range acc.Conditions() {
			h.ptCond = append(h.ptCond, pt("h"+sp.Name+"_pt_"+c.Name, sp.Name+" pT spectrum, "+c.Name))
			h.yCond = append(h.yCond, y("h"+sp.Name+"_y_"+c.Name, sp.Name+" y spectrum, "+c.Name))
		}
		lower := strings.ToLower(sp.Name)
		h.gamma = pt("hGamma_"+lower+"_pt_all", "gamma pT spectrum")
		h.electron = pt("hElectron_"+lower+"_pt_all", "e- pT spectrum")
		h.positron = pt("hPositron_"+lower+"_pt_all", "e+ pT spectrum")
		w.hists = append(w.hists, h)
	}

	w.mass2Gamma = s.H2D("hMass2Gamma", "M(gamma gamma) vs pT",
		Mass2GammaBins, 0, Mass2GammaMax, selection.PtBins2D, 0, selection.PtMax2D)
	return w
}

// PtSpectra returns the names of the pT spectra, which are normalised per
// unit pT.
func (w *Walker) PtSpectra() []string { return w.ptSpectra }

// YSpectra returns the names of the rapidity spectra.
func (w *Walker) YSpectra() []string { return w.ySpectra }

func (w *Walker) Stats() Stats { return w.stats }

// Walk processes every particle of evt.
func (w *Walker) Walk(evt *event.Event) {
	for i := range evt.Particles {
		p := evt.Particles[i]
		if p.ID == event.Pi0 {
			w.pi0(evt, p)
			continue
		}
		for k, sp := range w.cfg.Species {
			if p.ID == sp.ID {
				w.chain(evt, p, sp, &w.hists[k])
			}
		}
	}
}

func (w *Walker) chain(evt *event.Event, chi event.Particle, sp Species, h *speciesHists) {
	y := chi.Y()
	if chi.Status != w.cfg.AncestorStatus || math.Abs(y) > w.cfg.YFiducial {
		return
	}
	w.stats.Ancestors++
	pt := chi.Pt()
	h.ptAll.Fill(pt, sp.Weight)

	jpsi, gamma, ok := pair(evt, chi)
	if !ok {
		w.stats.TopologySkips++
		return
	}
	switch {
	case jpsi.ID == event.JPsi && gamma.ID == event.Photon:
	case w.cfg.AnyOrder && jpsi.ID == event.Photon && gamma.ID == event.JPsi:
		jpsi, gamma = gamma, jpsi
	default:
		w.stats.ChannelSkips++
		return
	}

	pGamma := w.cfg.Photon.Smear(gamma.P)

	l1, l2, ok := pair(evt, jpsi)
	if !ok {
		w.stats.TopologySkips++
		return
	}
	h.gamma.Fill(kinem.Pt(pGamma), sp.Weight)

	var elec, posi event.Particle
	switch {
	case l1.ID == event.Electron && l2.ID == -event.Electron:
		elec, posi = l1, l2
	case l1.ID == -event.Electron && l2.ID == event.Electron:
		elec, posi = l2, l1
	default:
		w.stats.ChannelSkips++
		return
	}

	legs := selection.Legs{
		Electron: w.cfg.Electron.Smear(elec.P),
		Positron: w.cfg.Electron.Smear(posi.P),
		Photon:   pGamma,
	}
	h.electron.Fill(kinem.Pt(legs.Electron), sp.Weight)
	h.positron.Fill(kinem.Pt(legs.Positron), sp.Weight)

	mask := w.acc.Fill(legs, sp.Weight)
	w.stats.Accepted++
	for c, passed := range mask {
		if passed {
			h.ptCond[c].Fill(pt, sp.Weight)
			h.yCond[c].Fill(y, sp.Weight)
		}
	}
}

func (w *Walker) pi0(evt *event.Event, pi0 event.Particle) {
	if math.Abs(pi0.Y()) > w.cfg.YFiducial {
		return
	}
	g1, g2, ok := pair(evt, pi0)
	if !ok || g1.ID != event.Photon || g2.ID != event.Photon {
		return
	}
	gg := kinem.Sum(w.cfg.Photon.Smear(g1.P), w.cfg.Photon.Smear(g2.P))
	w.mass2Gamma.Fill(kinem.Mass(gg), kinem.Pt(gg), 1)
	w.stats.Pi0s++
}

// pair returns the two daughters of p, and false unless p has exactly two
// daughters inside the record.
func pair(evt *event.Event, p event.Particle) (event.Particle, event.Particle, bool) {
	if p.Daughter1 <= 0 || p.Daughter2-p.Daughter1 != 1 {
		return event.Particle{}, event.Particle{}, false
	}
	d1, ok1 := evt.At(p.Daughter1)
	d2, ok2 := evt.At(p.Daughter2)
	return d1, d2, ok1 && ok2
}
