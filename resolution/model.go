// Package resolution emulates the finite resolution of the calorimeters and
// the tracking system: parametrised sigma formulas, a Gaussian sampler bound
// to one random stream, and the strategies that turn a true 4-momentum into
// a measured one.
package resolution

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// EnergyResolution is the calorimeter energy resolution
//
//	sigma_E/E = sqrt(A^2/E^2 + B^2/E + C^2)
//
// with A the noise, B the stochastic and C the constant term (E in GeV).
type EnergyResolution struct {
	A, B, C float64
}

// Sigma returns the absolute energy resolution at e.
func (r EnergyResolution) Sigma(e float64) float64 {
	if e <= 0 {
		return 0
	}
	return e * math.Sqrt(r.A*r.A/(e*e)+r.B*r.B/e+r.C*r.C)
}

// MomentumResolution is the tracking resolution
//
//	sigma_p/p = sqrt(A^2 + (B p)^2)
type MomentumResolution struct {
	A, B float64
}

// Sigma returns the absolute momentum resolution at p.
func (r MomentumResolution) Sigma(p float64) float64 {
	if p <= 0 {
		return 0
	}
	return p * math.Sqrt(r.A*r.A+r.B*p*r.B*p)
}

// CoordinateResolution is the calorimeter hit position resolution in cm,
//
//	sigma_x = sqrt(A^2 + B^2/E)
type CoordinateResolution struct {
	A, B float64
}

// Sigma returns the position resolution for a shower of energy e.
func (r CoordinateResolution) Sigma(e float64) float64 {
	if e <= 0 {
		return 0
	}
	return math.Sqrt(r.A*r.A + r.B*r.B/e)
}

var (
	// PHOSEnergy is the energy resolution of the ALICE PHOS.
	PHOSEnergy = EnergyResolution{A: 0.018, B: 0.033, C: 0.011}

	// IdealEnergy switches energy smearing off.
	IdealEnergy = EnergyResolution{}

	// TrackerMomentum is the ALICE central tracking momentum resolution.
	TrackerMomentum = MomentumResolution{A: 0.008, B: 0.002}

	// IdealMomentum switches momentum smearing off.
	IdealMomentum = MomentumResolution{}

	// PHOSCoordinate is a realistic PHOS position resolution.
	PHOSCoordinate = CoordinateResolution{A: 0.15, B: 0.25}

	// PPRCoordinate is the PHOS position resolution of the physics
	// performance report.
	PPRCoordinate = CoordinateResolution{A: 0.096, B: 0.229}
)

const (
	// PHOSRadius is the distance of PHOS from the interaction point (cm).
	PHOSRadius = 460.0

	// CompactRadius is the distance of a compact calorimeter option (cm).
	CompactRadius = 150.0
)

var energyPresets = map[string]EnergyResolution{
	"phos":  PHOSEnergy,
	"ideal": IdealEnergy,
}

var momentumPresets = map[string]MomentumResolution{
	"tracker": TrackerMomentum,
	"ideal":   IdealMomentum,
}

var coordinatePresets = map[string]CoordinateResolution{
	"phos":  PHOSCoordinate,
	"ppr":   PPRCoordinate,
	"ideal": {},
}

// EnergyPreset returns the named energy resolution.
func EnergyPreset(name string) (EnergyResolution, error) {
	r, ok := energyPresets[name]
	if !ok {
		return r, fmt.Errorf("unknown energy resolution %q; valid: %v", name, keys(energyPresets))
	}
	return r, nil
}

// MomentumPreset returns the named momentum resolution.
func MomentumPreset(name string) (MomentumResolution, error) {
	r, ok := momentumPresets[name]
	if !ok {
		return r, fmt.Errorf("unknown momentum resolution %q; valid: %v", name, keys(momentumPresets))
	}
	return r, nil
}

// CoordinatePreset returns the named coordinate resolution.
func CoordinatePreset(name string) (CoordinateResolution, error) {
	r, ok := coordinatePresets[name]
	if !ok {
		return r, fmt.Errorf("unknown coordinate resolution %q; valid: %v", name, keys(coordinatePresets))
	}
	return r, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Sampler draws Gaussian samples from a single random stream.
type Sampler struct {
	src rand.Source
}

// NewSampler binds a sampler to src. The stream is used as is and never
// re-seeded.
func NewSampler(src rand.Source) *Sampler {
	return &Sampler{src: src}
}

// Gaus samples N(mean, sigma).
func (s *Sampler) Gaus(mean, sigma float64) float64 {
	return distuv.Normal{Mu: mean, Sigma: sigma, Src: s.src}.Rand()
}

// SmearEnergy samples a measured energy around e. Negative samples are
// clamped to 0 so that no trial is lost.
func (s *Sampler) SmearEnergy(r EnergyResolution, e float64) float64 {
	if e <= 0 {
		return 0
	}
	return math.Max(0, s.Gaus(e, r.Sigma(e)))
}

// SmearMomentum samples a measured momentum magnitude around p, clamped
// at 0.
func (s *Sampler) SmearMomentum(r MomentumResolution, p float64) float64 {
	if p <= 0 {
		return 0
	}
	return math.Max(0, s.Gaus(p, r.Sigma(p)))
}

// SmearCoordinate samples a measured hit coordinate (cm) around x for a
// shower of energy e.
func (s *Sampler) SmearCoordinate(r CoordinateResolution, x, e float64) float64 {
	return s.Gaus(x, r.Sigma(e))
}
