package resolution

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/fmom"

	"github.com/decibelcooper/chicplot/kinem"
)

// Smearer turns a true 4-momentum into a measured one.
type Smearer interface {
	Smear(p fmom.PxPyPzE) fmom.PxPyPzE
}

// ScaledPhoton smears the energy and rescales the true 3-momentum so that the
// particle mass is kept. The direction is not smeared.
type ScaledPhoton struct {
	Energy EnergyResolution
	Rnd    *Sampler
}

func (s ScaledPhoton) Smear(p fmom.PxPyPzE) fmom.PxPyPzE {
	ptrue := kinem.P(p)
	if ptrue < kinem.MinP {
		return p
	}
	m := kinem.Mass(p)
	e := math.Max(s.Rnd.SmearEnergy(s.Energy, p.E()), m)
	psmeared := math.Sqrt(math.Max(e*e-m*m, 0))
	return kinem.Scale3(p, psmeared/ptrue, e)
}

// AngularPhoton smears the energy and the shower position. The polar and
// azimuthal angles move by a Gaussian of width sigma_x(E)/Radius and the
// photon is rebuilt as massless, so the output mass is only approximately
// zero when the input was not exactly light-like.
type AngularPhoton struct {
	Energy     EnergyResolution
	Coordinate CoordinateResolution
	Radius     float64 // cm
	Rnd        *Sampler
}

func (s AngularPhoton) Smear(p fmom.PxPyPzE) fmom.PxPyPzE {
	if kinem.P(p) < kinem.MinP {
		return p
	}
	etrue := p.E()
	e := s.Rnd.SmearEnergy(s.Energy, etrue)
	dx := s.Coordinate.Sigma(etrue) / s.Radius
	phi := kinem.Phi(p) + s.Rnd.Gaus(0, dx)
	theta := kinem.Theta(p) + s.Rnd.Gaus(0, dx)
	return kinem.FromAngles(e, theta, phi, e)
}

// Electron smears the 3-momentum magnitude along the true direction and
// recomputes the energy from the true mass.
type Electron struct {
	Momentum MomentumResolution
	Rnd      *Sampler
}

func (s Electron) Smear(p fmom.PxPyPzE) fmom.PxPyPzE {
	ptrue := kinem.P(p)
	if ptrue < kinem.MinP {
		return p
	}
	m := kinem.Mass(p)
	psmeared := s.Rnd.SmearMomentum(s.Momentum, ptrue)
	return kinem.Scale3(p, psmeared/ptrue, math.Sqrt(psmeared*psmeared+m*m))
}

// Photon strategy names.
const (
	StrategyScaled  = "scaled"
	StrategyAngular = "angular"
)

// PhotonConfig selects and parametrises the photon smearing strategy.
type PhotonConfig struct {
	Strategy   string
	Energy     EnergyResolution
	Coordinate CoordinateResolution
	Radius     float64
}

// NewPhoton builds the photon smearer described by c. An empty strategy means
// StrategyScaled.
func NewPhoton(c PhotonConfig, rnd *Sampler) (Smearer, error) {
	switch c.Strategy {
	case "", StrategyScaled:
		return ScaledPhoton{Energy: c.Energy, Rnd: rnd}, nil
	case StrategyAngular:
		if c.Radius <= 0 {
			return nil, fmt.Errorf("angular photon smearing needs a positive radius, got %g", c.Radius)
		}
		return AngularPhoton{Energy: c.Energy, Coordinate: c.Coordinate, Radius: c.Radius, Rnd: rnd}, nil
	}
	return nil, fmt.Errorf("unknown photon smearing strategy %q; valid: %s, %s", c.Strategy, StrategyScaled, StrategyAngular)
}
