package config

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decibelcooper/chicplot/acceptance"
	"github.com/decibelcooper/chicplot/kinem"
	"github.com/decibelcooper/chicplot/resolution"
	"github.com/decibelcooper/chicplot/selection"
)

func sampler() *resolution.Sampler {
	return resolution.NewSampler(rand.NewPCG(1, 1))
}

func TestDefaultDetectorBuild(t *testing.T) {
	d := DefaultDetector()
	require.NoError(t, d.Validate())
	s, err := d.Build(sampler())
	require.NoError(t, err)

	photon, ok := s.Photon.(resolution.ScaledPhoton)
	require.True(t, ok)
	assert.Equal(t, resolution.PHOSEnergy, photon.Energy)
	electron, ok := s.Electron.(resolution.Electron)
	require.True(t, ok)
	assert.Equal(t, resolution.TrackerMomentum, electron.Momentum)

	assert.Equal(t, acceptance.CTS, s.Detectors.Tracker)
	assert.Equal(t, acceptance.EMCAL, s.Detectors.EMCAL)
	assert.Equal(t, acceptance.PHOS, s.Detectors.PHOS)
	assert.Equal(t, 4.0, s.Trigger.Threshold)
	assert.False(t, s.AnyOrder)

	require.Len(t, s.Species, 3)
	assert.Equal(t, "ChiC2", s.Species[2].Name)
	assert.Equal(t, 445, s.Species[2].ID)

	require.Len(t, s.Conditions, 3)
	assert.Equal(t, "cndtn_1", s.Conditions[0].Name)
}

func TestLoadDetector(t *testing.T) {
	d, err := LoadDetector(filepath.Join("testdata", "detector.yaml"))
	require.NoError(t, err)
	s, err := d.Build(sampler())
	require.NoError(t, err)

	photon, ok := s.Photon.(resolution.AngularPhoton)
	require.True(t, ok)
	assert.Equal(t, resolution.EnergyResolution{A: 0.02, B: 0.04, C: 0.01}, photon.Energy)
	assert.Equal(t, resolution.PPRCoordinate, photon.Coordinate)
	assert.Equal(t, resolution.CompactRadius, photon.Radius)
	assert.Equal(t, resolution.IdealMomentum, s.Electron.(resolution.Electron).Momentum)

	assert.Equal(t, acceptance.EMCALQuadrant, s.Detectors.EMCAL)
	assert.Equal(t, acceptance.PHOS, s.Detectors.PHOS, "unset fields keep their defaults")
	assert.Equal(t, 5.5, s.Trigger.Threshold)
	assert.True(t, s.AnyOrder)

	require.Len(t, s.Species, 2)
	assert.Equal(t, 0.34, s.Species[0].Weight)

	require.Len(t, s.Conditions, 5)
	assert.Equal(t, "phos_trigger", s.Conditions[3].Name)
	assert.Equal(t, "hard_photon", s.Conditions[4].Name)

	legs := selection.Legs{
		Electron: kinem.FromPtYPhi(2, 0, 0, 0),
		Positron: kinem.FromPtYPhi(2, 0.1, 3, 0),
		Photon:   kinem.FromPtYPhi(6, 0, 5, 0),
	}
	assert.True(t, s.Conditions[3].Pass(legs))
	assert.False(t, s.Conditions[4].Pass(legs))
	legs.Photon = kinem.FromPtYPhi(9, 0, 5, 0)
	assert.True(t, s.Conditions[4].Pass(legs))
}

func TestParseResolutionParameters(t *testing.T) {
	d, err := ParseDetector([]byte(`
photon:
  energy: {a: 0, b: 0, c: 0}
  coordinate: {a: 0.5}
electron:
  momentum: {a: 0.01, b: 0.002}
`))
	require.NoError(t, err)
	assert.Equal(t, ResolutionSpec{}, d.Photon.Energy, "parameters replace the default preset")

	s, err := d.Build(sampler())
	require.NoError(t, err)
	photon := s.Photon.(resolution.ScaledPhoton)
	assert.Equal(t, resolution.IdealEnergy, photon.Energy)
	assert.Equal(t, resolution.MomentumResolution{A: 0.01, B: 0.002}, s.Electron.(resolution.Electron).Momentum)

	d, err = ParseDetector([]byte("photon:\n  energy: ideal\nelectron:\n  momentum:\n    preset: ideal\n"))
	require.NoError(t, err)
	s, err = d.Build(sampler())
	require.NoError(t, err)
	assert.Equal(t, resolution.IdealEnergy, s.Photon.(resolution.ScaledPhoton).Energy)
	assert.Equal(t, resolution.IdealMomentum, s.Electron.(resolution.Electron).Momentum)

	d, err = ParseDetector([]byte("photon:\n  energy: {preset: phos, a: 0.1}\n"))
	require.NoError(t, err)
	assert.Error(t, d.Validate(), "preset and parameters are exclusive")

	_, err = ParseDetector([]byte("photon:\n  energy: {d: 0.1}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field d not found")
}

func TestLoadDetectorUnknownField(t *testing.T) {
	_, err := LoadDetector(filepath.Join("testdata", "typo.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stratgy")
}

func TestLoadDetectorMissing(t *testing.T) {
	_, err := LoadDetector(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestDetectorValidate(t *testing.T) {
	five := 5.0
	tests := []struct {
		name string
		mod  func(*Detector)
	}{
		{"strategy", func(d *Detector) { d.Photon.Strategy = "gaussian" }},
		{"angular radius", func(d *Detector) {
			d.Photon.Strategy = resolution.StrategyAngular
			d.Photon.Radius = 0
		}},
		{"energy preset", func(d *Detector) { d.Photon.Energy.Preset = "emcal" }},
		{"preset and params", func(d *Detector) { d.Photon.Energy.A = 0.1 }},
		{"momentum c", func(d *Detector) { d.Electron.Momentum = ResolutionSpec{A: 0.01, C: 0.1} }},
		{"tracker eta", func(d *Detector) { d.Acceptance.Tracker.EtaMax = 0 }},
		{"phos window", func(d *Detector) { d.Acceptance.PHOS.PhiMin = 330 }},
		{"emcal variant", func(d *Detector) { d.Acceptance.EMCALVariant = "old" }},
		{"no species", func(d *Detector) { d.Species = nil }},
		{"duplicate species", func(d *Detector) { d.Species[1].Name = "ChiC0" }},
		{"duplicate pdg", func(d *Detector) { d.Species[1].PDG = d.Species[0].PDG }},
		{"negative weight", func(d *Detector) { d.Species[0].Weight = -1 }},
		{"condition name", func(d *Detector) {
			d.Conditions = []ConditionSpec{{Name: "cndtn_2", Terms: []TermSpec{{Leg: "photon", EnergyAbove: &five}}}}
		}},
		{"empty condition", func(d *Detector) { d.Conditions = []ConditionSpec{{Name: "c"}} }},
		{"bad leg", func(d *Detector) {
			d.Conditions = []ConditionSpec{{Name: "c", Terms: []TermSpec{{Leg: "muon", Detector: "phos"}}}}
		}},
		{"bad detector", func(d *Detector) {
			d.Conditions = []ConditionSpec{{Name: "c", Terms: []TermSpec{{Leg: "photon", Detector: "tpc"}}}}
		}},
		{"both kinds", func(d *Detector) {
			d.Conditions = []ConditionSpec{{Name: "c", Terms: []TermSpec{{Leg: "photon", Detector: "phos", EnergyAbove: &five}}}}
		}},
		{"neither kind", func(d *Detector) {
			d.Conditions = []ConditionSpec{{Name: "c", Terms: []TermSpec{{Leg: "photon"}}}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DefaultDetector()
			tt.mod(d)
			assert.Error(t, d.Validate())
			_, err := d.Build(sampler())
			assert.Error(t, err)
		})
	}
}

func TestExampleRunCardMatchesDefaults(t *testing.T) {
	card, err := ParseRunCard(ExampleRunCard)
	require.NoError(t, err)
	assert.Equal(t, DefaultRunCard(), card)
}

func TestReadRunCard(t *testing.T) {
	card, err := ReadRunCard(filepath.Join("testdata", "run.ini"))
	require.NoError(t, err)

	assert.Equal(t, 500, card.Run.Events)
	assert.Equal(t, uint64(1234), card.Run.Seed)
	assert.Equal(t, "out/chic.yoda", card.Run.Output)
	assert.Equal(t, filepath.Join("testdata", "detector.yaml"), card.Run.Detector)
	assert.Equal(t, 1, card.Run.PrintEvents, "default kept")

	gun := card.GunConfig()
	assert.Equal(t, 0.0, gun.Species[0].Fraction)
	assert.Equal(t, 1.0, gun.Species[2].Fraction)
	assert.Equal(t, 0.5, gun.Pi0Mean)
	assert.Equal(t, -62, gun.Status)

	bins := card.DecayBinning()
	assert.Equal(t, 100, bins.PtBins)
	assert.Equal(t, 20.0, bins.PtMax)
	assert.Equal(t, 250, bins.YBins)
}

func TestRunCardValidate(t *testing.T) {
	tests := map[string]string{
		"unknown variable": "[Run]\nEvnts = 3\n",
		"bad output":       "[Run]\nOutput = out.txt\n",
		"unknown source":   "[Source]\nKind = pythia\n",
		"missing path":     "[Source]\nKind = hepmc\n",
		"bad gun":          "[Gun]\nPtRate = 0\n",
		"bad binning":      "[Binning]\nPtBins = 0\n",
		"negative events":  "[Run]\nEvents = -1\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRunCard(text)
			assert.Error(t, err)
		})
	}

	card, err := ParseRunCard("[Source]\nKind = lcio\nPath = events.slcio\nAncestorStatus = 2\n")
	require.NoError(t, err)
	assert.Equal(t, SourceLCIO, card.Source.Kind)
	assert.Equal(t, 2, card.Source.AncestorStatus)
}
