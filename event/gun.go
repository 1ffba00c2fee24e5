package event

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/decibelcooper/chicplot/kinem"
)

// Status codes written by the gun.
const (
	StatusDecayed = -91
	StatusFinal   = 91
)

// GunSpecies is a chi_c state the gun produces with a relative fraction.
type GunSpecies struct {
	ID       int
	Fraction float64
}

// GunConfig configures the charmonium gun.
type GunConfig struct {
	Species []GunSpecies

	// chi_c pT ~ Gamma(PtShape, PtRate), y ~ U(-YMax, YMax)
	PtShape float64
	PtRate  float64
	YMax    float64

	// Pi0Mean is the mean number of pi0 -> gamma gamma per event.
	Pi0Mean float64

	SigmaGen float64 // mb
	Status   int     // given to the chi_c entries
}

func DefaultGunConfig() GunConfig {
	return GunConfig{
		Species: []GunSpecies{
			{ID: ChiC0, Fraction: 1},
			{ID: ChiC1, Fraction: 1},
			{ID: ChiC2, Fraction: 1},
		},
		PtShape:  2,
		PtRate:   0.5,
		YMax:     1,
		Pi0Mean:  2,
		SigmaGen: 3e-5,
		Status:   -62,
	}
}

func (c GunConfig) Validate() error {
	if len(c.Species) == 0 {
		return errors.New("gun: no species")
	}
	var sum float64
	for _, s := range c.Species {
		if s.Fraction < 0 {
			return fmt.Errorf("gun: negative fraction %v for %d", s.Fraction, s.ID)
		}
		if Mass(s.ID) <= Mass(JPsi) {
			return fmt.Errorf("gun: %d cannot decay to J/psi gamma", s.ID)
		}
		sum += s.Fraction
	}
	switch {
	case sum <= 0:
		return errors.New("gun: species fractions sum to zero")
	case c.PtShape <= 0 || c.PtRate <= 0:
		return fmt.Errorf("gun: invalid pT distribution Gamma(%v, %v)", c.PtShape, c.PtRate)
	case c.YMax < 0:
		return fmt.Errorf("gun: negative rapidity range %v", c.YMax)
	case c.Pi0Mean < 0:
		return fmt.Errorf("gun: negative pi0 multiplicity %v", c.Pi0Mean)
	case c.SigmaGen < 0:
		return fmt.Errorf("gun: negative cross section %v", c.SigmaGen)
	}
	return nil
}

// Gun generates one chi_c -> J/psi gamma -> e+ e- gamma decay per event,
// plus a Poisson number of pi0 -> gamma gamma decays.
type Gun struct {
	cfg GunConfig
	n   int64
	evt *Event

	species distuv.Categorical
	pt      distuv.Gamma
	y       distuv.Uniform
	unit    distuv.Uniform
	pi0     *distuv.Poisson
	pi0Pt   distuv.Gamma
}

// NewGun returns a gun drawing from rnd.
func NewGun(cfg GunConfig, rnd *rand.Rand) (*Gun, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	weights := make([]float64, len(cfg.Species))
	for i, s := range cfg.Species {
		weights[i] = s.Fraction
	}
	g := &Gun{
		cfg:     cfg,
		species: distuv.NewCategorical(weights, rnd),
		pt:      distuv.Gamma{Alpha: cfg.PtShape, Beta: cfg.PtRate, Src: rnd},
		y:       distuv.Uniform{Min: -cfg.YMax, Max: cfg.YMax, Src: rnd},
		unit:    distuv.Uniform{Min: 0, Max: 1, Src: rnd},
		pi0Pt:   distuv.Gamma{Alpha: 2, Beta: 2, Src: rnd},
	}
	if cfg.Pi0Mean > 0 {
		g.pi0 = &distuv.Poisson{Lambda: cfg.Pi0Mean, Src: rnd}
	}
	return g, nil
}

func (g *Gun) Next() bool {
	var nodes []node

	sp := g.cfg.Species[int(g.species.Rand())]
	chi := kinem.FromPtYPhi(g.pt.Rand(), g.y.Rand(), g.phi(), Mass(sp.ID))
	jpsi, gamma := g.twoBody(chi, Mass(JPsi), 0)
	elec, posi := g.twoBody(jpsi, Mass(Electron), Mass(Electron))

	lep := []node{
		{id: Electron, status: StatusFinal, p: elec},
		{id: -Electron, status: StatusFinal, p: posi},
	}
	if g.unit.Rand() < 0.5 {
		lep[0], lep[1] = lep[1], lep[0]
	}
	nodes = append(nodes,
		node{id: sp.ID, status: g.cfg.Status, p: chi, children: []int{1, 2}},
		node{id: JPsi, status: StatusDecayed, p: jpsi, children: []int{3, 4}},
		node{id: Photon, status: StatusFinal, p: gamma},
		lep[0], lep[1],
	)

	if g.pi0 != nil {
		for i, n := 0, int(g.pi0.Rand()); i < n; i++ {
			k := len(nodes)
			pi0 := kinem.FromPtYPhi(g.pi0Pt.Rand(), g.y.Rand(), g.phi(), Mass(Pi0))
			g1, g2 := g.twoBody(pi0, 0, 0)
			nodes = append(nodes,
				node{id: Pi0, status: StatusDecayed, p: pi0, children: []int{k + 1, k + 2}},
				node{id: Photon, status: StatusFinal, p: g1},
				node{id: Photon, status: StatusFinal, p: g2},
			)
		}
	}

	g.evt = assemble(int(g.n), nodes)
	g.n++
	return true
}

func (g *Gun) phi() float64 { return 2 * math.Pi * g.unit.Rand() }

// twoBody decays parent isotropically into masses m1 and m2.
func (g *Gun) twoBody(parent fmom.PxPyPzE, m1, m2 float64) (fmom.PxPyPzE, fmom.PxPyPzE) {
	m := kinem.Mass(parent)
	var pstar float64
	if m > m1+m2 {
		pstar = math.Sqrt((m*m-(m1+m2)*(m1+m2))*(m*m-(m1-m2)*(m1-m2))) / (2 * m)
	}
	theta := math.Acos(2*g.unit.Rand() - 1)
	phi := g.phi()
	d1 := kinem.FromAngles(pstar, theta, phi, math.Sqrt(pstar*pstar+m1*m1))
	d2 := kinem.New(-d1.Px(), -d1.Py(), -d1.Pz(), math.Sqrt(pstar*pstar+m2*m2))
	return kinem.Boost(d1, parent), kinem.Boost(d2, parent)
}

func (g *Gun) Event() *Event { return g.evt }

func (g *Gun) Info() Info {
	return Info{SigmaGen: g.cfg.SigmaGen, NAccepted: g.n}
}

func (g *Gun) Err() error   { return nil }
func (g *Gun) Close() error { return nil }
