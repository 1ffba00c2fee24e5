package event

import (
	"strconv"

	"go-hep.org/x/hep/heppdt"
)

// PDG identifiers used by the analysis.
const (
	Electron = 11
	Photon   = 22
	Pi0      = 111
	JPsi     = 443
	ChiC0    = 10441
	ChiC1    = 20443
	ChiC2    = 445
)

type pdgEntry struct {
	name string
	mass float64 // GeV
}

var builtin = map[int]pdgEntry{
	Electron:  {"e-", 0.000510999},
	-Electron: {"e+", 0.000510999},
	Photon:    {"gamma", 0},
	Pi0:       {"pi0", 0.134977},
	JPsi:      {"J/psi", 3.096900},
	ChiC0:     {"chi_0c", 3.41471},
	ChiC1:     {"chi_1c", 3.51067},
	ChiC2:     {"chi_2c", 3.55617},
	SystemID:  {"system", 0},
}

// Name returns the particle name of a PDG id. The analysis species have
// fixed names; other ids are looked up in the go-hep particle data table.
func Name(id int) string {
	if e, ok := builtin[id]; ok {
		return e.name
	}
	if p := heppdt.ParticleByID(heppdt.PID(id)); p != nil {
		return p.Name
	}
	return strconv.Itoa(id)
}

// Mass returns the nominal mass of a PDG id in GeV, and 0 when it is unknown.
func Mass(id int) float64 {
	if e, ok := builtin[id]; ok {
		return e.mass
	}
	if p := heppdt.ParticleByID(heppdt.PID(id)); p != nil {
		return p.Mass
	}
	return 0
}
