// Package config loads the two configuration files of a run: the INI run
// card (what to generate and where to write it) and the YAML detector
// description (resolutions, acceptances, species and conditions).
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/decibelcooper/chicplot/acceptance"
	"github.com/decibelcooper/chicplot/decay"
	"github.com/decibelcooper/chicplot/event"
	"github.com/decibelcooper/chicplot/resolution"
	"github.com/decibelcooper/chicplot/selection"
)

// Detector is the detector description file.
type Detector struct {
	Photon     PhotonSpec      `yaml:"photon"`
	Electron   ElectronSpec    `yaml:"electron"`
	Acceptance AcceptanceSpec  `yaml:"acceptance"`
	Species    []SpeciesSpec   `yaml:"species"`
	AnyOrder   bool            `yaml:"any_order"`
	Conditions []ConditionSpec `yaml:"conditions"`
}

// ResolutionSpec names a preset, or gives the parameters of a resolution
// directly. In a file, any of a, b or c replaces the default preset, and a
// bare string is a preset name.
type ResolutionSpec struct {
	Preset string  `yaml:"preset"`
	A      float64 `yaml:"a"`
	B      float64 `yaml:"b"`
	C      float64 `yaml:"c"`
}

func (r *ResolutionSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*r = ResolutionSpec{}
		return value.Decode(&r.Preset)
	}
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			switch key := value.Content[i]; key.Value {
			case "preset", "a", "b", "c":
			default:
				return fmt.Errorf("line %d: field %s not found in resolution", key.Line, key.Value)
			}
		}
	}

	var raw struct {
		Preset *string  `yaml:"preset"`
		A      *float64 `yaml:"a"`
		B      *float64 `yaml:"b"`
		C      *float64 `yaml:"c"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.A != nil || raw.B != nil || raw.C != nil {
		*r = ResolutionSpec{}
	}
	for _, f := range []struct {
		dst *float64
		src *float64
	}{{&r.A, raw.A}, {&r.B, raw.B}, {&r.C, raw.C}} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if raw.Preset != nil {
		r.Preset = *raw.Preset
	}
	return nil
}

type PhotonSpec struct {
	Strategy   string         `yaml:"strategy"`
	Energy     ResolutionSpec `yaml:"energy"`
	Coordinate ResolutionSpec `yaml:"coordinate"`
	Radius     float64        `yaml:"radius"` // cm
}

type ElectronSpec struct {
	Momentum ResolutionSpec `yaml:"momentum"`
}

type TrackerSpec struct {
	EtaMax float64 `yaml:"eta_max"`
	PtMin  float64 `yaml:"pt_min"`
}

type CalorimeterSpec struct {
	YMax   float64 `yaml:"y_max"`
	PhiMin float64 `yaml:"phi_min"` // degrees
	PhiMax float64 `yaml:"phi_max"`
	EMin   float64 `yaml:"e_min"`
}

type AcceptanceSpec struct {
	Tracker TrackerSpec     `yaml:"tracker"`
	EMCAL   CalorimeterSpec `yaml:"emcal"`
	PHOS    CalorimeterSpec `yaml:"phos"`

	// EMCALVariant is "reference" or "quadrant".
	EMCALVariant string  `yaml:"emcal_variant"`
	Trigger      float64 `yaml:"trigger"` // GeV
}

type SpeciesSpec struct {
	Name   string  `yaml:"name"`
	PDG    int     `yaml:"pdg"`
	Weight float64 `yaml:"weight"`
}

// ConditionSpec is a named conjunction of terms, appended after the default
// conditions.
type ConditionSpec struct {
	Name  string     `yaml:"name"`
	Terms []TermSpec `yaml:"terms"`
}

// TermSpec requires a leg to be seen by a detector, or to carry more than
// EnergyAbove GeV.
type TermSpec struct {
	Leg         string   `yaml:"leg"`
	Detector    string   `yaml:"detector"`
	EnergyAbove *float64 `yaml:"energy_above"`
}

const (
	EMCALReference = "reference"
	EMCALQuadrant  = "quadrant"
)

// DefaultDetector describes the ALICE setup of the analysis.
func DefaultDetector() *Detector {
	return &Detector{
		Photon: PhotonSpec{
			Strategy:   resolution.StrategyScaled,
			Energy:     ResolutionSpec{Preset: "phos"},
			Coordinate: ResolutionSpec{Preset: "phos"},
			Radius:     resolution.PHOSRadius,
		},
		Electron: ElectronSpec{
			Momentum: ResolutionSpec{Preset: "tracker"},
		},
		Acceptance: AcceptanceSpec{
			Tracker:      TrackerSpec{EtaMax: acceptance.CTS.EtaMax, PtMin: acceptance.CTS.PtMin},
			EMCAL:        calorimeterSpec(acceptance.EMCAL),
			PHOS:         calorimeterSpec(acceptance.PHOS),
			EMCALVariant: EMCALReference,
			Trigger:      4,
		},
		Species: []SpeciesSpec{
			{Name: "ChiC0", PDG: event.ChiC0, Weight: 1},
			{Name: "ChiC1", PDG: event.ChiC1, Weight: 1},
			{Name: "ChiC2", PDG: event.ChiC2, Weight: 1},
		},
	}
}

func calorimeterSpec(c acceptance.Calorimeter) CalorimeterSpec {
	return CalorimeterSpec{YMax: c.YMax, PhiMin: c.PhiMin, PhiMax: c.PhiMax, EMin: c.EMin}
}

// LoadDetector reads a detector file over DefaultDetector. Unknown fields
// are errors.
func LoadDetector(path string) (*Detector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading detector file: %w", err)
	}
	return ParseDetector(data)
}

// ParseDetector decodes a detector description over DefaultDetector.
func ParseDetector(data []byte) (*Detector, error) {
	d := DefaultDetector()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(d); err != nil {
		return nil, fmt.Errorf("parsing detector file: %w", err)
	}
	return d, nil
}

var (
	validStrategies = map[string]bool{resolution.StrategyScaled: true, resolution.StrategyAngular: true}
	validVariants   = map[string]bool{EMCALReference: true, EMCALQuadrant: true}
	validDetectors  = map[string]bool{"tracker": true, "emcal": true, "phos": true, "trigger": true}
)

// Validate checks the description without building it.
func (d *Detector) Validate() error {
	if !validStrategies[d.Photon.Strategy] {
		return fmt.Errorf("photon: unknown strategy %q; valid: scaled, angular", d.Photon.Strategy)
	}
	if d.Photon.Strategy == resolution.StrategyAngular && d.Photon.Radius <= 0 {
		return fmt.Errorf("photon: radius must be positive, got %g", d.Photon.Radius)
	}
	if _, err := d.energy(); err != nil {
		return fmt.Errorf("photon energy: %w", err)
	}
	if _, err := d.coordinate(); err != nil {
		return fmt.Errorf("photon coordinate: %w", err)
	}
	if _, err := d.momentum(); err != nil {
		return fmt.Errorf("electron momentum: %w", err)
	}

	a := d.Acceptance
	if a.Tracker.EtaMax <= 0 {
		return fmt.Errorf("tracker: eta_max must be positive, got %g", a.Tracker.EtaMax)
	}
	for name, c := range map[string]CalorimeterSpec{"emcal": a.EMCAL, "phos": a.PHOS} {
		if c.YMax <= 0 {
			return fmt.Errorf("%s: y_max must be positive, got %g", name, c.YMax)
		}
		if c.PhiMin >= c.PhiMax {
			return fmt.Errorf("%s: empty azimuth window (%g, %g)", name, c.PhiMin, c.PhiMax)
		}
	}
	if !validVariants[a.EMCALVariant] {
		return fmt.Errorf("acceptance: unknown emcal_variant %q; valid: reference, quadrant", a.EMCALVariant)
	}

	if len(d.Species) == 0 {
		return fmt.Errorf("at least one species required")
	}
	names := make(map[string]bool)
	ids := make(map[int]bool)
	for i, s := range d.Species {
		switch {
		case s.Name == "":
			return fmt.Errorf("species[%d]: name required", i)
		case names[s.Name]:
			return fmt.Errorf("species[%d]: duplicate name %q", i, s.Name)
		case ids[s.PDG]:
			return fmt.Errorf("species[%d]: duplicate pdg %d", i, s.PDG)
		case s.Weight < 0:
			return fmt.Errorf("species[%d]: weight must be non-negative, got %g", i, s.Weight)
		}
		names[s.Name] = true
		ids[s.PDG] = true
	}

	conds := make(map[string]bool)
	for _, c := range selection.DefaultConditions(selection.DefaultDetectors()) {
		conds[c.Name] = true
	}
	for i, c := range d.Conditions {
		prefix := fmt.Sprintf("conditions[%d]", i)
		if c.Name == "" {
			return fmt.Errorf("%s: name required", prefix)
		}
		if conds[c.Name] {
			return fmt.Errorf("%s: duplicate name %q", prefix, c.Name)
		}
		conds[c.Name] = true
		if len(c.Terms) == 0 {
			return fmt.Errorf("%s: at least one term required", prefix)
		}
		for j, t := range c.Terms {
			if err := validateTerm(t); err != nil {
				return fmt.Errorf("%s.terms[%d]: %w", prefix, j, err)
			}
		}
	}
	return nil
}

func validateTerm(t TermSpec) error {
	if _, err := selection.ParseLeg(t.Leg); err != nil {
		return err
	}
	switch {
	case t.Detector == "" && t.EnergyAbove == nil:
		return fmt.Errorf("one of detector or energy_above required")
	case t.Detector != "" && t.EnergyAbove != nil:
		return fmt.Errorf("detector and energy_above are exclusive")
	case t.Detector != "" && !validDetectors[t.Detector]:
		return fmt.Errorf("unknown detector %q; valid: tracker, emcal, phos, trigger", t.Detector)
	}
	return nil
}

func (d *Detector) energy() (resolution.EnergyResolution, error) {
	r := d.Photon.Energy
	if r.Preset != "" {
		if r.A != 0 || r.B != 0 || r.C != 0 {
			return resolution.EnergyResolution{}, fmt.Errorf("preset %q and parameters are exclusive", r.Preset)
		}
		return resolution.EnergyPreset(r.Preset)
	}
	return resolution.EnergyResolution{A: r.A, B: r.B, C: r.C}, nil
}

func (d *Detector) coordinate() (resolution.CoordinateResolution, error) {
	r := d.Photon.Coordinate
	if r.Preset != "" {
		if r.A != 0 || r.B != 0 || r.C != 0 {
			return resolution.CoordinateResolution{}, fmt.Errorf("preset %q and parameters are exclusive", r.Preset)
		}
		return resolution.CoordinatePreset(r.Preset)
	}
	if r.C != 0 {
		return resolution.CoordinateResolution{}, fmt.Errorf("coordinate resolution has no c parameter")
	}
	return resolution.CoordinateResolution{A: r.A, B: r.B}, nil
}

func (d *Detector) momentum() (resolution.MomentumResolution, error) {
	r := d.Electron.Momentum
	if r.Preset != "" {
		if r.A != 0 || r.B != 0 || r.C != 0 {
			return resolution.MomentumResolution{}, fmt.Errorf("preset %q and parameters are exclusive", r.Preset)
		}
		return resolution.MomentumPreset(r.Preset)
	}
	if r.C != 0 {
		return resolution.MomentumResolution{}, fmt.Errorf("momentum resolution has no c parameter")
	}
	return resolution.MomentumResolution{A: r.A, B: r.B}, nil
}

// Setup is a built detector description.
type Setup struct {
	Photon     resolution.Smearer
	Electron   resolution.Smearer
	Detectors  selection.Detectors
	Trigger    acceptance.Trigger
	Conditions []selection.Condition
	Species    []decay.Species
	AnyOrder   bool
}

// Build validates d and turns it into smearers drawing from rnd, acceptance
// predicates and conditions.
func (d *Detector) Build(rnd *resolution.Sampler) (*Setup, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	energy, _ := d.energy()
	coord, _ := d.coordinate()
	mom, _ := d.momentum()

	photon, err := resolution.NewPhoton(resolution.PhotonConfig{
		Strategy:   d.Photon.Strategy,
		Energy:     energy,
		Coordinate: coord,
		Radius:     d.Photon.Radius,
	}, rnd)
	if err != nil {
		return nil, err
	}

	a := d.Acceptance
	s := &Setup{
		Photon:   photon,
		Electron: resolution.Electron{Momentum: mom, Rnd: rnd},
		Detectors: selection.Detectors{
			Tracker: acceptance.Tracker{EtaMax: a.Tracker.EtaMax, PtMin: a.Tracker.PtMin},
			PHOS:    calorimeter(a.PHOS),
		},
		Trigger:  acceptance.Trigger{Threshold: a.Trigger},
		AnyOrder: d.AnyOrder,
	}
	if a.EMCALVariant == EMCALQuadrant {
		s.Detectors.EMCAL = acceptance.EMCALQuadrant
	} else {
		s.Detectors.EMCAL = calorimeter(a.EMCAL)
	}

	for _, sp := range d.Species {
		s.Species = append(s.Species, decay.Species{Name: sp.Name, ID: sp.PDG, Weight: sp.Weight})
	}

	s.Conditions = selection.DefaultConditions(s.Detectors)
	for _, c := range d.Conditions {
		terms := make([]selection.Term, 0, len(c.Terms))
		for _, t := range c.Terms {
			terms = append(terms, s.term(t))
		}
		s.Conditions = append(s.Conditions, selection.Condition{Name: c.Name, Pass: selection.All(terms...)})
	}
	return s, nil
}

func calorimeter(c CalorimeterSpec) acceptance.Calorimeter {
	return acceptance.Calorimeter{YMax: c.YMax, PhiMin: c.PhiMin, PhiMax: c.PhiMax, EMin: c.EMin}
}

// term builds a validated TermSpec.
func (s *Setup) term(t TermSpec) selection.Term {
	leg, _ := selection.ParseLeg(t.Leg)
	if t.EnergyAbove != nil {
		return selection.EnergyAbove(leg, *t.EnergyAbove)
	}
	var pred acceptance.Predicate
	switch t.Detector {
	case "tracker":
		pred = s.Detectors.Tracker
	case "emcal":
		pred = s.Detectors.EMCAL
	case "phos":
		pred = s.Detectors.PHOS
	default:
		pred = s.Trigger
	}
	return selection.Detected(leg, pred)
}
