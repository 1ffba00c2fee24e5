package kinem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRapidityGuard(t *testing.T) {
	tests := []struct {
		name string
		px   float64
		py   float64
		pz   float64
		e    float64
	}{
		{"light-like along z", 0, 0, 1, 1},
		{"E below |pz|", 1, 1, 1, 1},
		{"negative pz", 0, 0, -2, 1},
		{"zero", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Sentinel, Rapidity(New(tt.px, tt.py, tt.pz, tt.e)))
		})
	}
}

func TestRapidityKnownValue(t *testing.T) {
	p := New(1, 0, 1, 3)
	assert.InDelta(t, 0.5*math.Log(2), Rapidity(p), 1e-12)
	assert.InDelta(t, -0.5*math.Log(2), Rapidity(New(1, 0, -1, 3)), 1e-12)
}

func TestEtaGuard(t *testing.T) {
	assert.Equal(t, Sentinel, Eta(New(0, 0, 5, 5)))
	assert.Equal(t, Sentinel, Eta(New(0, 0, 0, 1)))
	assert.InDelta(t, 0, Eta(New(1, 0, 0, 1)), 1e-12)
}

func TestPhiRange(t *testing.T) {
	tests := []struct {
		px, py float64
		want   float64
	}{
		{1, 0, 0},
		{0, 1, 90},
		{-1, 0, 180},
		{0, -1, 270},
		{1, -1, 315},
	}
	for _, tt := range tests {
		got := PhiDeg(New(tt.px, tt.py, 0, 2))
		assert.InDelta(t, tt.want, got, 1e-9, "phi(%v,%v)", tt.px, tt.py)
		assert.True(t, got >= 0 && got < 360)
	}
}

func TestMassClampsSpaceLike(t *testing.T) {
	assert.Equal(t, 0.0, Mass(New(1, 1, 1, 1)))
	assert.InDelta(t, 3.0, Mass(New(0, 0, 4, 5)), 1e-12)
}

func TestBoostPreservesMass(t *testing.T) {
	parent := FromPtYPhi(7, 0.3, 1.2, 3.55617)
	rest := New(0.3, -0.2, 0.4, math.Sqrt(0.29+3.0969*3.0969))
	lab := Boost(rest, parent)
	assert.InDelta(t, Mass(rest), Mass(lab), 1e-9)

	back := Boost(New(0, 0, 0, 3.55617), parent)
	assert.InDelta(t, parent.Px(), back.Px(), 1e-9)
	assert.InDelta(t, parent.Py(), back.Py(), 1e-9)
	assert.InDelta(t, parent.Pz(), back.Pz(), 1e-9)
	assert.InDelta(t, parent.E(), back.E(), 1e-9)
}

func TestBoostSpaceLikeParent(t *testing.T) {
	p := New(0.1, 0.2, 0.3, 1)
	assert.Equal(t, p, Boost(p, New(2, 0, 0, 1)))
	assert.Equal(t, p, Boost(p, New(0, 0, 0, 0)))
}

func TestSum(t *testing.T) {
	s := Sum(New(1, 2, 3, 4), New(-1, 0.5, 1, 2), New(0, 0, 0, 1))
	assert.Equal(t, New(0, 2.5, 4, 7), s)
	assert.Equal(t, New(0, 0, 0, 0), Sum())
}

func TestFromPtYPhi(t *testing.T) {
	p := FromPtYPhi(5, 0.2, 4.5, 3.1)
	assert.InDelta(t, 5, Pt(p), 1e-12)
	assert.InDelta(t, 0.2, Rapidity(p), 1e-12)
	assert.InDelta(t, 4.5, Phi(p), 1e-12)
	assert.InDelta(t, 3.1, Mass(p), 1e-9)
}

func TestDegenerate(t *testing.T) {
	assert.True(t, Degenerate(New(0, 0, 0, 3)))
	assert.True(t, Degenerate(New(math.NaN(), 0, 1, 3)))
	assert.True(t, Degenerate(New(1, 1, 1, 1)))
	assert.True(t, Degenerate(New(0, 0, 2, 2)))
	assert.True(t, Degenerate(New(3, 0, 0, 1)))
	assert.False(t, Degenerate(New(0, 0, 1, 3)))
	assert.False(t, Degenerate(FromAngles(2, 1.1, 0.3, 2)))
}
