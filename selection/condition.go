// Package selection holds the named acceptance conditions of the analysis
// and the invariant-mass accumulator that fills the mass spectra of a
// reconstructed chi_c -> J/psi gamma -> e+ e- gamma candidate.
package selection

import (
	"fmt"
	"strings"

	"go-hep.org/x/hep/fmom"

	"github.com/decibelcooper/chicplot/acceptance"
)

// Legs are the three smeared final-state momenta of a candidate.
type Legs struct {
	Electron fmom.PxPyPzE
	Positron fmom.PxPyPzE
	Photon   fmom.PxPyPzE
}

// Leg selects one momentum of Legs.
type Leg int

const (
	Electron Leg = iota
	Positron
	Photon
)

var legNames = [...]string{"electron", "positron", "photon"}

func (l Leg) String() string {
	if l < 0 || int(l) >= len(legNames) {
		return fmt.Sprintf("Leg(%d)", int(l))
	}
	return legNames[l]
}

// ParseLeg maps "electron", "positron" or "photon" to a Leg.
func ParseLeg(name string) (Leg, error) {
	for i, n := range legNames {
		if strings.EqualFold(name, n) {
			return Leg(i), nil
		}
	}
	return 0, fmt.Errorf("unknown leg %q (want one of %s)", name, strings.Join(legNames[:], ", "))
}

// Get returns the momentum of leg.
func (l Legs) Get(leg Leg) fmom.PxPyPzE {
	switch leg {
	case Electron:
		return l.Electron
	case Positron:
		return l.Positron
	default:
		return l.Photon
	}
}

// Term is one factor of a condition.
type Term func(Legs) bool

// Detected requires leg to be inside the acceptance of pred.
func Detected(leg Leg, pred acceptance.Predicate) Term {
	return func(l Legs) bool { return pred.Detects(l.Get(leg)) }
}

// EnergyAbove requires the energy of leg to be strictly above e.
func EnergyAbove(leg Leg, e float64) Term {
	return func(l Legs) bool {
		p := l.Get(leg)
		return p.E() > e
	}
}

// All is the conjunction of terms. It is true for no terms.
func All(terms ...Term) Term {
	return func(l Legs) bool {
		for _, t := range terms {
			if !t(l) {
				return false
			}
		}
		return true
	}
}

// Condition is a named selection. Its name is part of the histogram names
// it fills.
type Condition struct {
	Name string
	Pass Term
}

// Detectors are the sub-detector acceptances the conditions refer to.
type Detectors struct {
	Tracker acceptance.Predicate
	EMCAL   acceptance.Predicate
	PHOS    acceptance.Predicate
}

// DefaultDetectors returns the ALICE CTS, EMCAL and PHOS acceptances.
func DefaultDetectors() Detectors {
	return Detectors{
		Tracker: acceptance.CTS,
		EMCAL:   acceptance.EMCAL,
		PHOS:    acceptance.PHOS,
	}
}

// DefaultConditions returns cndtn_1, cndtn_2 and cndtn_3 over d.
func DefaultConditions(d Detectors) []Condition {
	ctsPHOS := All(
		Detected(Electron, d.Tracker),
		Detected(Positron, d.Tracker),
		Detected(Photon, d.PHOS),
	)
	return []Condition{
		{Name: "cndtn_1", Pass: ctsPHOS},
		{Name: "cndtn_2", Pass: All(ctsPHOS, EnergyAbove(Photon, 5))},
		{Name: "cndtn_3", Pass: All(
			Detected(Electron, d.EMCAL),
			Detected(Positron, d.EMCAL),
			Detected(Photon, d.PHOS),
			EnergyAbove(Photon, 2),
		)},
	}
}
