package decay

import (
	"bytes"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/proio-org/go-proio"
	"github.com/proio-org/go-proio-pb/model/eic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/fmom"

	"github.com/decibelcooper/chicplot/event"
	"github.com/decibelcooper/chicplot/hist"
	"github.com/decibelcooper/chicplot/kinem"
	"github.com/decibelcooper/chicplot/resolution"
	"github.com/decibelcooper/chicplot/selection"
)

const (
	mChiC2 = 3.55617
	mJpsi  = 3.0969
	me     = 0.000510999
)

type fixture struct {
	set    *hist.Set
	walker *Walker
}

func newFixture(t *testing.T, mod func(*Config)) *fixture {
	t.Helper()
	rnd := resolution.NewSampler(rand.NewPCG(1, 2))
	cfg := DefaultConfig(
		resolution.ScaledPhoton{Energy: resolution.IdealEnergy, Rnd: rnd},
		resolution.Electron{Momentum: resolution.IdealMomentum, Rnd: rnd},
	)
	if mod != nil {
		mod(&cfg)
	}
	s := hist.NewSet()
	acc := selection.NewAccumulator(s, selection.DefaultConditions(selection.DefaultDetectors()))
	return &fixture{set: s, walker: NewWalker(s, cfg, acc)}
}

func (f *fixture) sum1D(t *testing.T, name string) float64 {
	t.Helper()
	h, err := f.set.Get1D(name)
	require.NoError(t, err)
	return hist.Integral(h)
}

func (f *fixture) sum2D(t *testing.T, name string) float64 {
	t.Helper()
	h, err := f.set.Get2D(name)
	require.NoError(t, err)
	return h.SumW()
}

// chic2Event returns a chi_c2 with pT 10.1 at y = 0 pointing into PHOS, whose
// photon goes forward along the chi_c2 direction and whose leptons are
// emitted perpendicular to it in the J/psi rest frame.
func chic2Event() *event.Event {
	phi := 285 * math.Pi / 180
	chi := kinem.FromPtYPhi(10.1, 0, phi, mChiC2)

	pstar := (mChiC2*mChiC2 - mJpsi*mJpsi) / (2 * mChiC2)
	dir := kinem.FromAngles(1, math.Pi/2, phi, 0)
	gamma := kinem.Boost(kinem.New(pstar*dir.Px(), pstar*dir.Py(), 0, pstar), chi)
	jpsi := kinem.Boost(kinem.New(-pstar*dir.Px(), -pstar*dir.Py(), 0, math.Hypot(pstar, mJpsi)), chi)

	pe := math.Sqrt(mJpsi*mJpsi/4 - me*me)
	elec := kinem.Boost(kinem.New(0, 0, pe, mJpsi/2), jpsi)
	posi := kinem.Boost(kinem.New(0, 0, -pe, mJpsi/2), jpsi)

	return &event.Event{Particles: []event.Particle{
		{ID: event.SystemID, Status: event.SystemStatus},
		{ID: event.ChiC2, Status: -62, P: chi, Daughter1: 2, Daughter2: 3},
		{ID: event.JPsi, Status: -91, P: jpsi, Daughter1: 4, Daughter2: 5},
		{ID: event.Photon, Status: 91, P: gamma},
		{ID: -event.Electron, Status: 91, P: posi},
		{ID: event.Electron, Status: 91, P: elec},
	}}
}

func binContent(t *testing.T, f *fixture, name string, x float64) float64 {
	t.Helper()
	h, err := f.set.Get2D(name)
	require.NoError(t, err)
	proj := hist.ProjectX(h, 0, selection.PtMax2D)
	i := int((x - proj.XMin()) / hist.BinWidth(proj))
	return proj.Binning.Bins[i].SumW()
}

func TestChiC2EndToEnd(t *testing.T) {
	f := newFixture(t, nil)
	f.walker.Walk(chic2Event())

	assert.Equal(t, Stats{Ancestors: 1, Accepted: 1}, f.walker.Stats())

	assert.InDelta(t, 1, f.sum1D(t, "hChiC2_pt_all"), 1e-12)
	assert.InDelta(t, 1, f.sum1D(t, "hChiC2_pt_cndtn_1"), 1e-12)
	assert.InDelta(t, 1, f.sum1D(t, "hChiC2_y_cndtn_1"), 1e-12)
	assert.InDelta(t, 0, f.sum1D(t, "hChiC2_pt_cndtn_2"), 1e-12, "photon is below 5 GeV")
	assert.InDelta(t, 0, f.sum1D(t, "hChiC2_pt_cndtn_3"), 1e-12, "leptons are outside EMCAL")
	assert.InDelta(t, 1, f.sum1D(t, "hGamma_chic2_pt_all"), 1e-12)
	assert.InDelta(t, 1, f.sum1D(t, "hElectron_chic2_pt_all"), 1e-12)
	assert.InDelta(t, 1, f.sum1D(t, "hPositron_chic2_pt_all"), 1e-12)
	assert.InDelta(t, 0, f.sum1D(t, "hChiC0_pt_all"), 1e-12)

	ptAll, err := f.set.Get1D("hChiC2_pt_all")
	require.NoError(t, err)
	assert.InDelta(t, 1, ptAll.Binning.Bins[50].SumW(), 1e-12, "pT = 10.1 lands in [10, 10.2)")

	assert.InDelta(t, 1, binContent(t, f, "hMassGamElecPosi", mChiC2), 1e-12)
	assert.InDelta(t, 1, binContent(t, f, "hMassGamElecPosi_cndtn_1", mChiC2), 1e-12)
	assert.InDelta(t, 1, binContent(t, f, "hMassElecPosi", mJpsi), 1e-12)
	assert.InDelta(t, 1, binContent(t, f, "hMassGamElecPosi_mass_diff", mChiC2-mJpsi), 1e-12)
	assert.InDelta(t, 1, binContent(t, f, "hMassGamElecPosi_mass_diff_cndtn_1", mChiC2-mJpsi), 1e-12)
	assert.InDelta(t, 0, f.sum2D(t, "hMassGamElecPosi_cndtn_2"), 1e-12)
}

// writeProio stores the particles of evt, the system entry excepted, as
// eic.Particle entries with their daughters as children.
func writeProio(t *testing.T, evt *event.Event) *bytes.Buffer {
	t.Helper()
	pevt := proio.NewEvent()
	parts := make([]*eic.Particle, evt.Len())
	ids := make([]uint64, evt.Len())
	for i := 1; i < evt.Len(); i++ {
		p := evt.Particles[i]
		pdg := int32(p.ID)
		x, y, z := float32(p.P.Px()), float32(p.P.Py()), float32(p.P.Pz())
		m := float32(kinem.Mass(p.P))
		parts[i] = &eic.Particle{Pdg: &pdg, P: &eic.XYZF{X: &x, Y: &y, Z: &z}, Mass: &m}
		ids[i] = pevt.AddEntry(event.DefaultProioTag, parts[i])
	}
	for i := 1; i < evt.Len(); i++ {
		p := evt.Particles[i]
		for d := p.Daughter1; d > 0 && d <= p.Daughter2; d++ {
			parts[i].Child = append(parts[i].Child, ids[d])
		}
	}

	buf := new(bytes.Buffer)
	w := proio.NewWriter(buf)
	require.NoError(t, w.Push(pevt))
	require.NoError(t, w.Close())
	return buf
}

func TestProioChainAccepted(t *testing.T) {
	f := newFixture(t, nil)
	r := event.NewProioReader(writeProio(t, chic2Event()), "", 1e-3, f.walker.cfg.AncestorStatus)
	defer r.Close()
	require.True(t, r.Next(), "%v", r.Err())

	evt := r.Event()
	require.Equal(t, 6, evt.Len())
	assert.Equal(t, f.walker.cfg.AncestorStatus, evt.Particles[1].Status)
	assert.Equal(t, event.FinalStatus, evt.Particles[3].Status)

	f.walker.Walk(evt)
	assert.Equal(t, Stats{Ancestors: 1, Accepted: 1}, f.walker.Stats())
	assert.InDelta(t, 1, f.sum1D(t, "hChiC2_pt_cndtn_1"), 1e-12)
	assert.InDelta(t, 1, binContent(t, f, "hMassGamElecPosi", mChiC2), 1e-12)
}

func TestThreeDaughtersSkipped(t *testing.T) {
	f := newFixture(t, nil)
	evt := chic2Event()
	evt.Particles[1].Daughter2 = 4
	f.walker.Walk(evt)

	assert.Equal(t, Stats{Ancestors: 1, TopologySkips: 1}, f.walker.Stats())
	assert.InDelta(t, 1, f.sum1D(t, "hChiC2_pt_all"), 1e-12)
	assert.InDelta(t, 0, f.sum1D(t, "hGamma_chic2_pt_all"), 1e-12)
	assert.InDelta(t, 0, f.sum2D(t, "hMassGamElecPosi"), 1e-12)
}

func TestJpsiWithoutTwoDaughtersSkipped(t *testing.T) {
	f := newFixture(t, nil)
	evt := chic2Event()
	evt.Particles[2].Daughter1, evt.Particles[2].Daughter2 = 0, 0
	f.walker.Walk(evt)

	assert.Equal(t, Stats{Ancestors: 1, TopologySkips: 1}, f.walker.Stats())
	assert.InDelta(t, 0, f.sum1D(t, "hGamma_chic2_pt_all"), 1e-12)
}

func TestSoftPhotonFailsAcceptance(t *testing.T) {
	f := newFixture(t, nil)
	evt := chic2Event()
	// a 0.5 GeV photon towards PHOS is below every calorimeter threshold
	evt.Particles[3].P = kinem.FromPtYPhi(0.5, 0, 285*math.Pi/180, 0)
	f.walker.Walk(evt)

	assert.Equal(t, int64(1), f.walker.Stats().Accepted)
	assert.InDelta(t, 1, f.sum2D(t, "hMassGamElecPosi"), 1e-12)
	assert.InDelta(t, 1, f.sum2D(t, "hMassGamElecPosi_mass_diff"), 1e-12)
	for _, c := range []string{"cndtn_1", "cndtn_2", "cndtn_3"} {
		assert.InDelta(t, 0, f.sum2D(t, "hMassGamElecPosi_"+c), 1e-12, c)
		assert.InDelta(t, 0, f.sum2D(t, "hMassGamElecPosi_mass_diff_"+c), 1e-12, c)
		assert.InDelta(t, 0, f.sum1D(t, "hChiC2_pt_"+c), 1e-12, c)
		assert.InDelta(t, 0, f.sum1D(t, "hChiC2_y_"+c), 1e-12, c)
	}
}

func TestAncestorSelection(t *testing.T) {
	f := newFixture(t, nil)

	wrongStatus := chic2Event()
	wrongStatus.Particles[1].Status = 2
	f.walker.Walk(wrongStatus)

	forward := chic2Event()
	forward.Particles[1].P = kinem.FromPtYPhi(10, 0.6, 1, mChiC2)
	f.walker.Walk(forward)

	degenerate := chic2Event()
	degenerate.Particles[1].P = fmom.NewPxPyPzE(0, 0, 5, 5)
	f.walker.Walk(degenerate)

	assert.Equal(t, Stats{}, f.walker.Stats())
	assert.InDelta(t, 0, f.sum1D(t, "hChiC2_pt_all"), 1e-12)
}

func TestDaughterOrder(t *testing.T) {
	swapped := func() *event.Event {
		evt := chic2Event()
		evt.Particles[2], evt.Particles[3] = evt.Particles[3], evt.Particles[2]
		return evt
	}

	strict := newFixture(t, nil)
	strict.walker.Walk(swapped())
	assert.Equal(t, Stats{Ancestors: 1, ChannelSkips: 1}, strict.walker.Stats())

	loose := newFixture(t, func(c *Config) { c.AnyOrder = true })
	// the J/psi now sits at index 3 and keeps its daughters
	loose.walker.Walk(swapped())
	assert.Equal(t, Stats{Ancestors: 1, Accepted: 1}, loose.walker.Stats())
}

func TestSameSignLeptonsSkipped(t *testing.T) {
	f := newFixture(t, nil)
	evt := chic2Event()
	evt.Particles[4].ID = event.Electron
	f.walker.Walk(evt)
	assert.Equal(t, Stats{Ancestors: 1, ChannelSkips: 1}, f.walker.Stats())
	assert.InDelta(t, 1, f.sum1D(t, "hGamma_chic2_pt_all"), 1e-12)
	assert.InDelta(t, 0, f.sum1D(t, "hElectron_chic2_pt_all"), 1e-12)
}

func TestSpeciesWeight(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Species[2].Weight = 0.25 })
	f.walker.Walk(chic2Event())
	assert.InDelta(t, 0.25, f.sum1D(t, "hChiC2_pt_all"), 1e-12)
	assert.InDelta(t, 0.25, f.sum2D(t, "hMassGamElecPosi"), 1e-12)
}

func TestPi0(t *testing.T) {
	f := newFixture(t, nil)
	pi0 := kinem.FromPtYPhi(3, 0.1, 2, event.Mass(event.Pi0))
	pstar := event.Mass(event.Pi0) / 2
	g1 := kinem.Boost(kinem.New(pstar, 0, 0, pstar), pi0)
	g2 := kinem.Boost(kinem.New(-pstar, 0, 0, pstar), pi0)
	f.walker.Walk(&event.Event{Particles: []event.Particle{
		{ID: event.SystemID},
		{ID: event.Pi0, Status: -91, P: pi0, Daughter1: 2, Daughter2: 3},
		{ID: event.Photon, Status: 91, P: g1},
		{ID: event.Photon, Status: 91, P: g2},
	}})
	assert.Equal(t, int64(1), f.walker.Stats().Pi0s)
	assert.InDelta(t, 1, binContent(t, f, "hMass2Gamma", event.Mass(event.Pi0)), 1e-12)
}

func TestBooking(t *testing.T) {
	f := newFixture(t, nil)
	assert.Len(t, f.walker.PtSpectra(), 21)
	assert.Len(t, f.walker.YSpectra(), 9)
	assert.Equal(t, 9+31, f.set.Len())
	for _, name := range []string{
		"hChiC0_pt_all", "hChiC1_pt_cndtn_2", "hChiC2_y_cndtn_3",
		"hGamma_chic2_pt_all", "hElectron_chic0_pt_all", "hPositron_chic1_pt_all",
		"hMass2Gamma",
	} {
		assert.True(t, f.set.Has(name), name)
	}

	y, err := f.set.Get1D("hChiC2_y_cndtn_1")
	require.NoError(t, err)
	assert.Equal(t, -0.5, y.XMin())
	assert.Equal(t, 0.5, y.XMax())
	assert.Equal(t, 250, y.Len())
}

func TestWalkGunEvents(t *testing.T) {
	rnd := rand.New(rand.NewPCG(11, 12))
	sampler := resolution.NewSampler(rnd)
	cfg := DefaultConfig(
		resolution.ScaledPhoton{Energy: resolution.PHOSEnergy, Rnd: sampler},
		resolution.Electron{Momentum: resolution.TrackerMomentum, Rnd: sampler},
	)
	s := hist.NewSet()
	acc := selection.NewAccumulator(s, selection.DefaultConditions(selection.DefaultDetectors()))
	w := NewWalker(s, cfg, acc)

	gun, err := event.NewGun(event.DefaultGunConfig(), rnd)
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		require.True(t, gun.Next())
		w.Walk(gun.Event())
	}

	st := w.Stats()
	assert.Greater(t, st.Ancestors, int64(100))
	assert.Equal(t, st.Ancestors, st.Accepted)
	assert.Zero(t, st.TopologySkips)
	assert.Zero(t, st.ChannelSkips)
	assert.Greater(t, st.Pi0s, int64(0))
}
