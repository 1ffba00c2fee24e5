// Package kinem holds the 4-momentum quantities used by the smearing and
// acceptance code. All functions are total: degenerate inputs produce
// sentinels instead of NaN or Inf.
package kinem

import (
	"math"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sentinel is returned for the rapidity or pseudorapidity of a momentum where
// it is undefined. It lies outside every acceptance window.
const Sentinel = 100.0

// MinP is the smallest 3-momentum magnitude (GeV) that still defines a
// direction.
const MinP = 1e-12

// New builds a 4-momentum from its components.
func New(px, py, pz, e float64) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(px, py, pz, e)
}

func Pt(p fmom.PxPyPzE) float64 {
	return math.Hypot(p.Px(), p.Py())
}

// P returns the magnitude of the 3-momentum.
func P(p fmom.PxPyPzE) float64 {
	return p.P()
}

// M2 returns E^2 - |p|^2.
func M2(p fmom.PxPyPzE) float64 {
	return p.M2()
}

// Mass returns the invariant mass, or 0 when the momentum is space-like.
func Mass(p fmom.PxPyPzE) float64 {
	m2 := p.M2()
	if m2 <= 0 || math.IsNaN(m2) {
		return 0
	}
	return math.Sqrt(m2)
}

// Rapidity returns 1/2 ln((E+pz)/(E-pz)), or Sentinel when E <= |pz|.
func Rapidity(p fmom.PxPyPzE) float64 {
	e, pz := p.E(), p.Pz()
	if e <= math.Abs(pz) {
		return Sentinel
	}
	return 0.5 * math.Log((e+pz)/(e-pz))
}

// Eta returns the pseudorapidity, or Sentinel when the momentum is parallel to
// the beam axis or null.
func Eta(p fmom.PxPyPzE) float64 {
	pp, pz := p.P(), p.Pz()
	if pp <= math.Abs(pz) || pp < MinP {
		return Sentinel
	}
	return 0.5 * math.Log((pp+pz)/(pp-pz))
}

// Phi returns the azimuth in [0, 2pi).
func Phi(p fmom.PxPyPzE) float64 {
	phi := math.Atan2(p.Py(), p.Px())
	if phi < 0 {
		phi += 2 * math.Pi
	}
	if phi >= 2*math.Pi {
		phi = 0
	}
	return phi
}

// PhiDeg returns the azimuth in degrees, in [0, 360).
func PhiDeg(p fmom.PxPyPzE) float64 {
	return Phi(p) * 180 / math.Pi
}

// Theta returns the polar angle in [0, pi].
func Theta(p fmom.PxPyPzE) float64 {
	return math.Atan2(Pt(p), p.Pz())
}

// Degenerate reports whether p cannot be measured: a non-finite component,
// no usable direction, an undefined rapidity (E <= |pz|) or a clearly
// space-like 4-momentum.
func Degenerate(p fmom.PxPyPzE) bool {
	for _, v := range []float64{p.Px(), p.Py(), p.Pz(), p.E()} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	if p.P() < MinP || p.E() <= math.Abs(p.Pz()) {
		return true
	}
	return p.M2() < -spaceLikeTol*p.E()*p.E()
}

// spaceLikeTol absorbs the rounding of light-like momenta rebuilt from angles.
const spaceLikeTol = 1e-9

// Sum adds 4-momenta component by component.
func Sum(ps ...fmom.PxPyPzE) fmom.PxPyPzE {
	var s fmom.PxPyPzE
	for i := range ps {
		fmom.IAdd(&s, &ps[i])
	}
	return s
}

// Scale3 multiplies the 3-momentum by f and sets the energy to e.
func Scale3(p fmom.PxPyPzE, f, e float64) fmom.PxPyPzE {
	return New(p.Px()*f, p.Py()*f, p.Pz()*f, e)
}

// FromAngles builds a momentum of magnitude pmag along (theta, phi) with
// energy e.
func FromAngles(pmag, theta, phi, e float64) fmom.PxPyPzE {
	st, ct := math.Sincos(theta)
	sp, cp := math.Sincos(phi)
	return New(pmag*st*cp, pmag*st*sp, pmag*ct, e)
}

// FromPtYPhi builds the 4-momentum of a particle of mass m with transverse
// momentum pt, rapidity y and azimuth phi.
func FromPtYPhi(pt, y, phi, m float64) fmom.PxPyPzE {
	mt := math.Sqrt(pt*pt + m*m)
	sp, cp := math.Sincos(phi)
	return New(pt*cp, pt*sp, mt*math.Sinh(y), mt*math.Cosh(y))
}

// Boost applies the Lorentz boost taking the rest frame of parent to the lab
// frame to p. A parent that is not time-like leaves p unchanged.
func Boost(p, parent fmom.PxPyPzE) fmom.PxPyPzE {
	if parent.E() <= 0 || parent.M2() <= 0 {
		return p
	}
	beta := fmom.BoostOf(&parent)
	if v2 := r3.Dot(beta, beta); v2 >= 1 {
		return p
	}
	return *fmom.Boost(&p, beta).(*fmom.PxPyPzE)
}
