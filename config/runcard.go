package config

import (
	"fmt"
	"path/filepath"

	"gopkg.in/gcfg.v1"

	"github.com/decibelcooper/chicplot/decay"
	"github.com/decibelcooper/chicplot/event"
	"github.com/decibelcooper/chicplot/hist"
)

// ExampleRunCard documents every run card variable with its default.
const ExampleRunCard = `[Run]

# Number of generator trials. The event count given on the command line takes
# precedence.
# Events = 10000

# Master seed of the random streams. 0 draws a fresh seed, which is logged so
# that the run can be repeated.
Seed = 0

# Output file. The extension selects the format: .root or .yoda.
Output = pythia_chic2.root

# The first PrintEvents events are listed at debug level.
PrintEvents = 1

# Progress is logged every ProgressEvery events.
ProgressEvery = 10000

# Detector description (YAML). Empty uses the built-in ALICE setup.
# Detector = detector.yaml

[Source]

# Kind can be set to one of:
# [ gun | hepmc | lcio | proio ]
Kind = gun

# Input file of the hepmc, lcio and proio sources.
# Path = events.hepmc

# LCIO collection or proio tag holding the generator record.
# Collection = MCParticle

# Generated cross section (mb) reported by file sources that do not carry one.
# SigmaGen = 3e-5

# Status of the chi_c entries the walker starts from: -62 for Pythia records,
# usually 2 for HepMC and LCIO files.
AncestorStatus = -62

[Gun]

# Relative fractions of chi_c0, chi_c1 and chi_c2.
ChiC0Fraction = 1
ChiC1Fraction = 1
ChiC2Fraction = 1

# chi_c pT ~ Gamma(PtShape, PtRate) and y ~ U(-YMax, YMax).
PtShape = 2
PtRate = 0.5
YMax = 1

# Mean number of pi0 -> gamma gamma per event.
Pi0Mean = 2

# Generated cross section (mb).
SigmaGen = 3e-5

[Binning]

# pT spectra: PtBins bins on [0, PtMax] GeV.
PtBins = 250
PtMax = 50

# Rapidity spectra: YBins bins on [-YFiducial, YFiducial]. Chains are only
# followed inside the fiducial window.
YBins = 250
YFiducial = 0.5
`

// Source kinds.
const (
	SourceGun   = "gun"
	SourceHepMC = "hepmc"
	SourceLCIO  = "lcio"
	SourceProio = "proio"
)

type RunSection struct {
	Events        int
	Seed          uint64
	Output        string
	PrintEvents   int
	ProgressEvery int
	Detector      string
}

type SourceSection struct {
	Kind           string
	Path           string
	Collection     string
	SigmaGen       float64
	AncestorStatus int
}

type GunSection struct {
	ChiC0Fraction float64
	ChiC1Fraction float64
	ChiC2Fraction float64
	PtShape       float64
	PtRate        float64
	YMax          float64
	Pi0Mean       float64
	SigmaGen      float64
}

type BinningSection struct {
	PtBins    int
	PtMax     float64
	YBins     int
	YFiducial float64
}

// RunCard is the INI run configuration.
type RunCard struct {
	Run     RunSection
	Source  SourceSection
	Gun     GunSection
	Binning BinningSection
}

// DefaultRunCard returns the values documented in ExampleRunCard.
func DefaultRunCard() *RunCard {
	gun := event.DefaultGunConfig()
	bins := decay.DefaultBinning()
	return &RunCard{
		Run: RunSection{
			Output:        "pythia_chic2.root",
			PrintEvents:   1,
			ProgressEvery: 10000,
		},
		Source: SourceSection{
			Kind:           SourceGun,
			SigmaGen:       gun.SigmaGen,
			AncestorStatus: gun.Status,
		},
		Gun: GunSection{
			ChiC0Fraction: 1,
			ChiC1Fraction: 1,
			ChiC2Fraction: 1,
			PtShape:       gun.PtShape,
			PtRate:        gun.PtRate,
			YMax:          gun.YMax,
			Pi0Mean:       gun.Pi0Mean,
			SigmaGen:      gun.SigmaGen,
		},
		Binning: BinningSection{
			PtBins:    bins.PtBins,
			PtMax:     bins.PtMax,
			YBins:     bins.YBins,
			YFiducial: 0.5,
		},
	}
}

// ReadRunCard reads the run card at path over DefaultRunCard. Relative
// detector and input paths are resolved against the card's directory.
func ReadRunCard(path string) (*RunCard, error) {
	card := DefaultRunCard()
	if err := gcfg.ReadFileInto(card, path); err != nil {
		return nil, fmt.Errorf("reading run card: %w", err)
	}
	dir := filepath.Dir(path)
	card.Run.Detector = resolve(dir, card.Run.Detector)
	card.Source.Path = resolve(dir, card.Source.Path)
	return card, card.Validate()
}

// ParseRunCard reads a run card from a string over DefaultRunCard.
func ParseRunCard(text string) (*RunCard, error) {
	card := DefaultRunCard()
	if err := gcfg.ReadStringInto(card, text); err != nil {
		return nil, fmt.Errorf("parsing run card: %w", err)
	}
	return card, card.Validate()
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks the run card.
func (c *RunCard) Validate() error {
	if c.Run.Events < 0 {
		return fmt.Errorf("Run.Events must be non-negative, got %d", c.Run.Events)
	}
	if _, err := hist.FormatOf(c.Run.Output); err != nil {
		return fmt.Errorf("Run.Output: %w", err)
	}
	if c.Run.ProgressEvery < 0 || c.Run.PrintEvents < 0 {
		return fmt.Errorf("Run.ProgressEvery and Run.PrintEvents must be non-negative")
	}
	switch c.Source.Kind {
	case SourceGun:
		if err := c.GunConfig().Validate(); err != nil {
			return err
		}
	case SourceHepMC, SourceLCIO, SourceProio:
		if c.Source.Path == "" {
			return fmt.Errorf("Source.Path required for %s input", c.Source.Kind)
		}
	default:
		return fmt.Errorf("unknown Source.Kind %q; valid: gun, hepmc, lcio, proio", c.Source.Kind)
	}
	if c.Source.SigmaGen < 0 {
		return fmt.Errorf("Source.SigmaGen must be non-negative, got %g", c.Source.SigmaGen)
	}
	b := c.Binning
	if b.PtBins <= 0 || b.YBins <= 0 || b.PtMax <= 0 || b.YFiducial <= 0 {
		return fmt.Errorf("Binning values must be positive")
	}
	return nil
}

// GunConfig returns the gun described by the card.
func (c *RunCard) GunConfig() event.GunConfig {
	return event.GunConfig{
		Species: []event.GunSpecies{
			{ID: event.ChiC0, Fraction: c.Gun.ChiC0Fraction},
			{ID: event.ChiC1, Fraction: c.Gun.ChiC1Fraction},
			{ID: event.ChiC2, Fraction: c.Gun.ChiC2Fraction},
		},
		PtShape:  c.Gun.PtShape,
		PtRate:   c.Gun.PtRate,
		YMax:     c.Gun.YMax,
		Pi0Mean:  c.Gun.Pi0Mean,
		SigmaGen: c.Gun.SigmaGen,
		Status:   c.Source.AncestorStatus,
	}
}

// DecayBinning returns the spectra binning of the card.
func (c *RunCard) DecayBinning() decay.Binning {
	return decay.Binning{PtBins: c.Binning.PtBins, PtMax: c.Binning.PtMax, YBins: c.Binning.YBins}
}
