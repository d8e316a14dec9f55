// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package calc

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func material(t *testing.T, key string) Material {
	t.Helper()
	m, err := LookupMaterial(key)
	require.NoError(t, err)
	return m
}

func TestCriticalVelocityDefaults(t *testing.T) {
	tests := []struct {
		material string
		assadi03 float64
		assadi11 float64
		zhang25  float64
	}{
		{"Cu", 522.2, 503.9707118852158, 805.9961446220688},
		{"Al", 685.0, 633.997544477459, 1021.8667991946085},
	}
	for _, tt := range tests {
		t.Run(tt.material, func(t *testing.T) {
			v, err := NewInputs(material(t, tt.material)).Evaluate()
			require.NoError(t, err)
			assert.InDelta(t, 0.5649299176260191, v.K1, 1e-12)
			assert.InDelta(t, tt.assadi03, v.Assadi2003, 1e-9)
			assert.InDelta(t, tt.assadi11, v.Assadi2011, 1e-9)
			assert.InDelta(t, tt.zhang25, v.Zhang2025, 1e-9)
		})
	}
}

func TestLookupMaterialByName(t *testing.T) {
	m, err := LookupMaterial("Copper (Cu)")
	require.NoError(t, err)
	assert.Equal(t, "Cu", m.Key)

	_, err = LookupMaterial("Unobtainium")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReferenceDiameterPersists(t *testing.T) {
	in := NewInputs(material(t, "Cu")).WithReferenceDiameter(25)
	in.D = 40
	in = in.WithMaterial(material(t, "Al"))
	assert.Equal(t, 25.0, in.Dref)
	assert.Equal(t, 20.0, in.D, "other parameters reset to the material defaults")

	v, err := in.Evaluate()
	require.NoError(t, err)
	assert.InDelta(t, K1(20, 25), v.K1, 1e-12)
}

func TestInputsValidate(t *testing.T) {
	base := NewInputs(material(t, "Cu"))
	tests := map[string]func(*Inputs){
		"zero diameter":     func(in *Inputs) { in.D = 0 },
		"zero reference":    func(in *Inputs) { in.Dref = 0 },
		"negative density":  func(in *Inputs) { in.Rho = -1 },
		"molten impact":     func(in *Inputs) { in.Tp = in.Tm },
		"zero bulk modulus": func(in *Inputs) { in.B = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := in.Evaluate()
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSweepCritical(t *testing.T) {
	in := NewInputs(material(t, "Cu"))
	s, err := SweepCritical(in, "su", Range{}, 0)
	require.NoError(t, err)

	require.Len(t, s.X, SweepPoints)
	assert.InDelta(t, 165.0, s.X[0], 1e-9)
	assert.InDelta(t, 275.0, s.X[len(s.X)-1], 1e-9)
	require.Len(t, s.Series, 3)

	// Assadi (2003) is linear in su with slope 0.1.
	first, last := s.Series[0].Y[0], s.Series[0].Y[SweepPoints-1]
	assert.InDelta(t, 0.1*(275-165), last-first, 1e-9)

	// Sampling at the current value reproduces the point estimate.
	mid, err := SweepCritical(in, "su", Range{Lo: 165, Hi: 275}, 3)
	require.NoError(t, err)
	v, err := in.Evaluate()
	require.NoError(t, err)
	assert.InDelta(t, v.Assadi2011, mid.Series[1].Y[1], 1e-9)
	assert.InDelta(t, v.Zhang2025, mid.Series[2].Y[1], 1e-9)
}

func TestSweepCriticalRange(t *testing.T) {
	in := NewInputs(material(t, "Cu"))
	_, err := SweepCritical(in, "su", Range{Lo: 100, Hi: 200}, 10)
	assert.ErrorIs(t, err, ErrInvalidInput, "below v/2")
	_, err = SweepCritical(in, "su", Range{Lo: 250, Hi: 200}, 10)
	assert.ErrorIs(t, err, ErrInvalidInput, "inverted")
	_, err = SweepCritical(in, "viscosity", Range{}, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	s, err := SweepCritical(in, "d", Range{Lo: 10, Hi: 30}, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 15, 20, 25, 30}, s.X)
}

func TestAreaRatioInversion(t *testing.T) {
	m, err := MachFromAreaRatio(1, 1.4)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m, 1e-9)

	for _, want := range []float64{1.5, 2, 3, 4.5, 8} {
		for _, gamma := range []float64{1.4, 1.67} {
			m, err := MachFromAreaRatio(AreaRatio(want, gamma), gamma)
			require.NoError(t, err)
			assert.InDelta(t, want, m, 1e-8)
		}
	}

	// No isentropic flow has A/A* below one.
	_, err = MachFromAreaRatio(0.5, 1.4)
	assert.ErrorIs(t, err, ErrNoRoot)
}

func TestAreaRatioBeyondBounds(t *testing.T) {
	_, err := MachFromAreaRatio(AreaRatio(25, 1.4), 1.4)
	assert.ErrorIs(t, err, ErrNoRoot)
}

func TestGasState(t *testing.T) {
	n2, err := LookupGas("N2")
	require.NoError(t, err)
	st := n2.State(0, 30e5, 973)
	assert.InDelta(t, 973, st.Temperature, 1e-9)
	assert.InDelta(t, 30e5, st.Pressure, 1e-6)
	assert.InDelta(t, 30e5/(296.8*973), st.Density, 1e-9)
	assert.Zero(t, st.Velocity)

	sonic := n2.State(1, 30e5, 973)
	assert.InDelta(t, 973/1.2, sonic.Temperature, 1e-9)
}

func TestBrent(t *testing.T) {
	root, err := brent(func(x float64) float64 { return x*x - 2 }, 0, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, root, 1e-11)

	_, err = brent(func(x float64) float64 { return x*x + 1 }, -1, 1)
	assert.ErrorIs(t, err, ErrNoRoot)
}

func TestDormandPrince(t *testing.T) {
	// y' = y, y(0) = 1.
	path, err := dormandPrince(func(_, y float64) (float64, error) { return y, nil }, 0, 1, 1)
	require.NoError(t, err)
	end := path[len(path)-1]
	assert.Equal(t, 1.0, end.X)
	assert.InDelta(t, math.E, end.Y, 1e-2)
	assert.Equal(t, Point{X: 0, Y: 1}, path[0])
}

func TestParticleVelocityDefaults(t *testing.T) {
	v, err := DefaultParticleInputs().Solve()
	require.NoError(t, err)
	assert.InDelta(t, 457, v.Exit, 15)
	assert.Equal(t, 20.0, v.Path[0].Y)
	assert.InDelta(t, 0.1, v.Path[len(v.Path)-1].X, 1e-12)
	for i := 1; i < len(v.Path); i++ {
		assert.Greater(t, v.Path[i].Y, v.Path[i-1].Y, "particle accelerates")
	}
}

func TestParticleVelocityOrdering(t *testing.T) {
	exit := func(mutate func(*ParticleInputs)) float64 {
		in := DefaultParticleInputs()
		mutate(&in)
		v, err := in.Solve()
		require.NoError(t, err)
		return v.Exit
	}
	base := exit(func(*ParticleInputs) {})
	assert.Greater(t, exit(func(in *ParticleInputs) { in.Gas = "He" }), base)
	assert.Greater(t, exit(func(in *ParticleInputs) { in.Material = "Al" }), base)
	assert.Greater(t, exit(func(in *ParticleInputs) { in.P0 = 40e5 }), base)
}

func TestParticleInputsValidate(t *testing.T) {
	in := DefaultParticleInputs()
	in.Gas = "Argon"
	_, err := in.Solve()
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = DefaultParticleInputs()
	in.De = 1e-3
	_, err = in.Solve()
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = DefaultParticleInputs()
	in.Dp = 0
	_, err = in.Solve()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSweepParticle(t *testing.T) {
	s, err := SweepParticle(DefaultParticleInputs(), "P0", Range{Lo: 25e5, Hi: 35e5}, 5)
	require.NoError(t, err)
	require.Len(t, s.Series, 1)
	ys := s.Series[0].Y
	for i := 1; i < len(ys); i++ {
		assert.Greater(t, ys[i], ys[i-1])
	}

	_, err = SweepParticle(DefaultParticleInputs(), "De", Range{}, 5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWriteSVG(t *testing.T) {
	s, err := SweepCritical(NewInputs(material(t, "Al")), "Ti", Range{}, 20)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, s.WriteSVG(&b))
	out := b.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Assadi et al. (2003)")
}
