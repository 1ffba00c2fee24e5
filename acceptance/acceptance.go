// Package acceptance decides whether a measured 4-momentum is seen by a
// sub-detector. Predicates never panic: momenta without a usable direction
// are rejected by every detector.
package acceptance

import (
	"math"

	"go-hep.org/x/hep/fmom"

	"github.com/decibelcooper/chicplot/kinem"
)

// Predicate is a sub-detector acceptance.
type Predicate interface {
	Detects(p fmom.PxPyPzE) bool
}

// Func adapts a function to a Predicate.
type Func func(p fmom.PxPyPzE) bool

func (f Func) Detects(p fmom.PxPyPzE) bool { return f(p) }

// Tracker is a charged-track acceptance in pseudorapidity and pT.
type Tracker struct {
	EtaMax float64
	PtMin  float64 // inclusive
}

func (t Tracker) Detects(p fmom.PxPyPzE) bool {
	if kinem.Degenerate(p) {
		return false
	}
	return math.Abs(kinem.Eta(p)) < t.EtaMax && kinem.Pt(p) >= t.PtMin
}

// Calorimeter is an electromagnetic calorimeter covering |y| < YMax and
// PhiMin < phi < PhiMax (degrees, phi in [0, 360)), with an energy
// threshold EMin.
type Calorimeter struct {
	YMax           float64
	PhiMin, PhiMax float64
	EMin           float64
}

func (c Calorimeter) Detects(p fmom.PxPyPzE) bool {
	if kinem.Degenerate(p) {
		return false
	}
	phi := kinem.PhiDeg(p)
	return math.Abs(kinem.Rapidity(p)) < c.YMax &&
		phi > c.PhiMin && phi < c.PhiMax &&
		p.E() > c.EMin
}

// QuadrantCalorimeter is the first EMCAL acceptance of the analysis. The
// azimuth is built from atan(py/px) quadrant by quadrant, giving values in
// (-pi, pi], and is compared against a window in radians. Momenta with
// px = py = 0 have no azimuth and are rejected. Kept for comparisons with
// early results; Calorimeter is the reference implementation.
type QuadrantCalorimeter struct {
	YMax           float64
	PhiMin, PhiMax float64 // radians
	EMin           float64
}

func (c QuadrantCalorimeter) Detects(p fmom.PxPyPzE) bool {
	if kinem.Degenerate(p) {
		return false
	}
	px, py := p.Px(), p.Py()
	var phi float64
	switch {
	case px > 0:
		phi = math.Atan(py / px)
	case px < 0 && py >= 0:
		phi = math.Pi + math.Atan(py/px)
	case px < 0 && py < 0:
		phi = math.Atan(py/px) - math.Pi
	case py > 0:
		phi = math.Pi / 2
	case py < 0:
		phi = -math.Pi / 2
	default:
		return false
	}
	return math.Abs(kinem.Rapidity(p)) < c.YMax &&
		phi > c.PhiMin && phi < c.PhiMax &&
		p.E() > c.EMin
}

// Trigger fires when the energy reaches Threshold.
type Trigger struct {
	Threshold float64
}

func (t Trigger) Detects(p fmom.PxPyPzE) bool {
	if kinem.Degenerate(p) {
		return false
	}
	return p.E() >= t.Threshold
}

var (
	// CTS is the ALICE central tracking acceptance.
	CTS = Tracker{EtaMax: 0.8, PtMin: 1.0}

	// EMCAL is the ALICE EMCAL acceptance.
	EMCAL = Calorimeter{YMax: 0.7, PhiMin: 87, PhiMax: 187, EMin: 2.0}

	// PHOS is the ALICE PHOS acceptance.
	PHOS = Calorimeter{YMax: 0.12, PhiMin: 250, PhiMax: 320, EMin: 1.0}

	// EMCALQuadrant is the superseded EMCAL acceptance.
	EMCALQuadrant = QuadrantCalorimeter{
		YMax:   0.7,
		PhiMin: 87. / 90. * math.Pi,
		PhiMax: 187. / 90. * math.Pi,
		EMin:   2.5,
	}
)

// ElectronInCTS reports whether a lepton track is inside CTS.
func ElectronInCTS(p fmom.PxPyPzE) bool { return CTS.Detects(p) }

// PhotonInEMCAL reports whether a shower is inside EMCAL.
func PhotonInEMCAL(p fmom.PxPyPzE) bool { return EMCAL.Detects(p) }

// PhotonInPHOS reports whether a shower is inside PHOS.
func PhotonInPHOS(p fmom.PxPyPzE) bool { return PHOS.Detects(p) }

// TriggeredByPHOS reports whether a PHOS shower fires a trigger set at
// eTrigger.
func TriggeredByPHOS(p fmom.PxPyPzE, eTrigger float64) bool {
	return Trigger{Threshold: eTrigger}.Detects(p)
}
