// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package calc

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SweepPoints is the default number of samples in a sweep.
const SweepPoints = 200

// Series is one curve of a sweep.
type Series struct {
	Name string    `json:"name"`
	Y    []float64 `json:"y"`
}

// Sweep samples one parameter over a range and records each model.
type Sweep struct {
	Param  string    `json:"param"`
	Label  string    `json:"label"`
	YLabel string    `json:"y_label"`
	Title  string    `json:"title"`
	X      []float64 `json:"x"`
	Series []Series  `json:"series"`
}

// param binds a sweepable field of an input struct.
type param[T any] struct {
	label string
	get   func(T) float64
	set   func(*T, float64)
}

var criticalParams = map[string]param[Inputs]{
	"rho":   {"ρ (g/cm³)", func(in Inputs) float64 { return in.Rho }, func(in *Inputs, v float64) { in.Rho = v }},
	"Tm":    {"Tm (°C)", func(in Inputs) float64 { return in.Tm }, func(in *Inputs, v float64) { in.Tm = v }},
	"Cp":    {"Cp (J/kg·K)", func(in Inputs) float64 { return in.Cp }, func(in *Inputs, v float64) { in.Cp = v }},
	"B":     {"B (GPa)", func(in Inputs) float64 { return in.B }, func(in *Inputs, v float64) { in.B = v }},
	"Ti":    {"Ti (°C)", func(in Inputs) float64 { return in.Ti }, func(in *Inputs, v float64) { in.Ti = v }},
	"Tp":    {"Tp (°C)", func(in Inputs) float64 { return in.Tp }, func(in *Inputs, v float64) { in.Tp = v }},
	"su":    {"σu (MPa)", func(in Inputs) float64 { return in.Su }, func(in *Inputs, v float64) { in.Su = v }},
	"d":     {"d (μm)", func(in Inputs) float64 { return in.D }, func(in *Inputs, v float64) { in.D = v }},
	"gamma": {"γ", func(in Inputs) float64 { return in.Gamma }, func(in *Inputs, v float64) { in.Gamma = v }},
}

var particleParams = map[string]param[ParticleInputs]{
	"P0": {"P0 (Pa)", func(in ParticleInputs) float64 { return in.P0 }, func(in *ParticleInputs, v float64) { in.P0 = v }},
	"T0": {"T0 (K)", func(in ParticleInputs) float64 { return in.T0 }, func(in *ParticleInputs, v float64) { in.T0 = v }},
	"dp": {"dp (m)", func(in ParticleInputs) float64 { return in.Dp }, func(in *ParticleInputs, v float64) { in.Dp = v }},
	"Lf": {"Lf (m)", func(in ParticleInputs) float64 { return in.Lf }, func(in *ParticleInputs, v float64) { in.Lf = v }},
	"v0": {"V0 (m/s)", func(in ParticleInputs) float64 { return in.V0 }, func(in *ParticleInputs, v float64) { in.V0 = v }},
}

// CriticalParams lists the parameters SweepCritical accepts.
func CriticalParams() []string {
	return []string{"rho", "Tm", "Cp", "B", "Ti", "Tp", "su", "d", "gamma"}
}

// ParticleParams lists the parameters SweepParticle accepts.
func ParticleParams() []string {
	return []string{"P0", "T0", "dp", "Lf", "v0"}
}

// Range is a sweep interval.
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// DefaultRange is [3v/4, 5v/4] around the current value v.
func DefaultRange(v float64) Range { return Range{Lo: 3 * v / 4, Hi: 5 * v / 4} }

// AllowedRange is [v/2, 3v/2] around the current value v.
func AllowedRange(v float64) Range { return Range{Lo: v / 2, Hi: 3 * v / 2} }

func checkRange(name string, v float64, r Range, n int) (Range, int, error) {
	if r == (Range{}) {
		r = DefaultRange(v)
	}
	if n <= 0 {
		n = SweepPoints
	}
	allowed := AllowedRange(v)
	if allowed.Lo > allowed.Hi {
		allowed.Lo, allowed.Hi = allowed.Hi, allowed.Lo
	}
	if r.Lo > r.Hi || r.Lo < allowed.Lo || r.Hi > allowed.Hi {
		return r, n, fmt.Errorf("%w: range [%g, %g] for %s outside [%g, %g]",
			ErrInvalidInput, r.Lo, r.Hi, name, allowed.Lo, allowed.Hi)
	}
	if n < 2 {
		n = 2
	}
	return r, n, nil
}

func span(r Range, n int) []float64 {
	return floats.Span(make([]float64, n), r.Lo, r.Hi)
}

// SweepCritical evaluates the three critical velocity models while name
// varies over r. A zero Range uses DefaultRange and n <= 0 uses
// SweepPoints. The reference diameter stays fixed.
func SweepCritical(in Inputs, name string, r Range, n int) (Sweep, error) {
	p, ok := criticalParams[name]
	if !ok {
		return Sweep{}, fmt.Errorf("%w: unknown parameter %q", ErrInvalidInput, name)
	}
	if err := in.Validate(); err != nil {
		return Sweep{}, err
	}
	r, n, err := checkRange(name, p.get(in), r, n)
	if err != nil {
		return Sweep{}, err
	}

	s := Sweep{
		Param:  name,
		Label:  p.label,
		YLabel: "Critical Velocity (m/s)",
		Title:  "Critical Velocity vs " + p.label,
		X:      span(r, n),
		Series: []Series{
			{Name: "Assadi et al. (2003)", Y: make([]float64, n)},
			{Name: "Assadi et al. (2011)", Y: make([]float64, n)},
			{Name: "Zhang et al. (2025)", Y: make([]float64, n)},
		},
	}
	for i, x := range s.X {
		cur := in
		p.set(&cur, x)
		v := cur.evaluate()
		s.Series[0].Y[i] = v.Assadi2003
		s.Series[1].Y[i] = v.Assadi2011
		s.Series[2].Y[i] = v.Zhang2025
	}
	return s, nil
}

// SweepParticle solves the nozzle while name varies over r.
func SweepParticle(in ParticleInputs, name string, r Range, n int) (Sweep, error) {
	p, ok := particleParams[name]
	if !ok {
		return Sweep{}, fmt.Errorf("%w: unknown parameter %q", ErrInvalidInput, name)
	}
	if err := in.Validate(); err != nil {
		return Sweep{}, err
	}
	r, n, err := checkRange(name, p.get(in), r, n)
	if err != nil {
		return Sweep{}, err
	}

	s := Sweep{
		Param:  name,
		Label:  p.label,
		YLabel: "Particle Velocity (m/s)",
		Title:  "Particle Velocity vs " + p.label,
		X:      span(r, n),
		Series: []Series{{Name: "Exit velocity", Y: make([]float64, n)}},
	}
	for i, x := range s.X {
		cur := in
		p.set(&cur, x)
		v, err := cur.Solve()
		if err != nil {
			return Sweep{}, fmt.Errorf("%s = %g: %w", name, x, err)
		}
		s.Series[0].Y[i] = v.Exit
	}
	return s, nil
}
