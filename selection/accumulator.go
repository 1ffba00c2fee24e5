package selection

import (
	"math"

	"go-hep.org/x/hep/fmom"
	"go-hep.org/x/hep/hbook"

	"github.com/decibelcooper/chicplot/hist"
	"github.com/decibelcooper/chicplot/kinem"
)

// Mass spectrum binnings. The y axis of every mass histogram is the pT of
// the system whose mass is on x.
const (
	PtBins2D = 50
	PtMax2D  = 50.

	MassEEBins = 200
	MassEEMin  = 2.6
	MassEEMax  = 3.6

	MassGEEBins = 200
	MassGEEMin  = 3.
	MassGEEMax  = 4.

	DeltaMBins = 160
	DeltaMMin  = 0.
	DeltaMMax  = 0.8
)

// Accumulator fills the invariant-mass spectra of candidates.
type Accumulator struct {
	conds []Condition

	massEE   *hbook.H2D
	massGEE  *hbook.H2D
	deltaM   *hbook.H2D
	condGEE  []*hbook.H2D
	condDelM []*hbook.H2D
}

// NewAccumulator books the mass histograms for conds in s.
func NewAccumulator(s *hist.Set, conds []Condition) *Accumulator {
	a := &Accumulator{conds: conds}

	a.massEE = s.H2D("hMassElecPosi", "M(e+e-) vs pT",
		MassEEBins, MassEEMin, MassEEMax, PtBins2D, 0, PtMax2D)
	a.massGEE = s.H2D("hMassGamElecPosi", "M(gamma e+e-) vs pT",
		MassGEEBins, MassGEEMin, MassGEEMax, PtBins2D, 0, PtMax2D)
	for _, c := range conds {
		a.condGEE = append(a.condGEE, s.H2D("hMassGamElecPosi_"+c.Name, "M(gamma e+e-) vs pT, "+c.Name,
			MassGEEBins, MassGEEMin, MassGEEMax, PtBins2D, 0, PtMax2D))
	}
	a.deltaM = s.H2D("hMassGamElecPosi_mass_diff", "M(gamma e+e-) - M(e+e-) vs pT",
		DeltaMBins, DeltaMMin, DeltaMMax, PtBins2D, 0, PtMax2D)
	for _, c := range conds {
		a.condDelM = append(a.condDelM, s.H2D("hMassGamElecPosi_mass_diff_"+c.Name, "M(gamma e+e-) - M(e+e-) vs pT, "+c.Name,
			DeltaMBins, DeltaMMin, DeltaMMax, PtBins2D, 0, PtMax2D))
	}
	return a
}

// Conditions returns the conditions in fill order.
func (a *Accumulator) Conditions() []Condition { return a.conds }

// Fill adds a candidate with weight w and returns, per condition, whether it
// passed. Candidates with non-finite momenta are not filled and pass nothing.
func (a *Accumulator) Fill(l Legs, w float64) []bool {
	mask := make([]bool, len(a.conds))
	if !finite(l.Electron) || !finite(l.Positron) || !finite(l.Photon) {
		return mask
	}

	ee := kinem.Sum(l.Electron, l.Positron)
	gee := kinem.Sum(ee, l.Photon)
	mEE, mGEE := kinem.Mass(ee), kinem.Mass(gee)
	ptGEE := kinem.Pt(gee)
	dm := mGEE - mEE

	a.massGEE.Fill(mGEE, ptGEE, w)
	a.massEE.Fill(mEE, kinem.Pt(ee), w)
	a.deltaM.Fill(dm, ptGEE, w)

	for i, c := range a.conds {
		if !c.Pass(l) {
			continue
		}
		mask[i] = true
		a.condGEE[i].Fill(mGEE, ptGEE, w)
		a.condDelM[i].Fill(dm, ptGEE, w)
	}
	return mask
}

func finite(p fmom.PxPyPzE) bool {
	for _, v := range []float64{p.Px(), p.Py(), p.Pz(), p.E()} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
