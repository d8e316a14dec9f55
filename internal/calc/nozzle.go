// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package calc

import (
	"fmt"
	"math"
	"slices"
)

// Gas is a carrier gas treated as calorically perfect.
type Gas struct {
	Key   string  `json:"key" yaml:"key"`
	Name  string  `json:"name" yaml:"name"`
	Gamma float64 `json:"gamma" yaml:"gamma"` // ratio of specific heats
	R     float64 `json:"r" yaml:"r"`         // specific gas constant, J/(kg K)
}

var gases = []Gas{
	{Key: "N2", Name: "Nitrogen (N2)", Gamma: 1.4, R: 296.8},
	{Key: "He", Name: "Helium (He)", Gamma: 1.67, R: 2077.1},
	{Key: "Air", Name: "Air", Gamma: 1.4, R: 287.1},
}

// Gases returns the carrier gases of the particle velocity calculator.
func Gases() []Gas { return slices.Clone(gases) }

// LookupGas finds a gas by key ("N2") or display name.
func LookupGas(name string) (Gas, error) {
	for _, g := range gases {
		if g.Key == name || g.Name == name {
			return g, nil
		}
	}
	return Gas{}, fmt.Errorf("%w: unknown gas %q", ErrInvalidInput, name)
}

// Particle is a feedstock for the particle velocity calculator.
type Particle struct {
	Key     string  `json:"key" yaml:"key"`
	Name    string  `json:"name" yaml:"name"`
	Density float64 `json:"density" yaml:"density"` // kg/m3
}

var particles = []Particle{
	{Key: "Cu", Name: "Copper (Cu)", Density: 8960},
	{Key: "Al", Name: "Aluminum (Al)", Density: 2700},
}

// Particles returns the feedstocks of the particle velocity calculator.
func Particles() []Particle { return slices.Clone(particles) }

// LookupParticle finds a feedstock by key or display name.
func LookupParticle(name string) (Particle, error) {
	for _, p := range particles {
		if p.Key == name || p.Name == name {
			return p, nil
		}
	}
	return Particle{}, fmt.Errorf("%w: unknown material %q", ErrInvalidInput, name)
}

// AreaRatio is the isentropic area ratio A/A* at Mach m.
func AreaRatio(m, gamma float64) float64 {
	term := (2 / (gamma + 1)) * (1 + (gamma-1)/2*m*m)
	return math.Pow(term, (gamma+1)/(2*(gamma-1))) / m
}

// upperBounds are tried in turn when Mach 5 does not bracket the root.
var upperBounds = []float64{5, 10, 15, 20}

// MachFromAreaRatio inverts AreaRatio. Ratios below one take the subsonic
// branch, all others the supersonic branch.
func MachFromAreaRatio(ratio, gamma float64) (float64, error) {
	f := func(m float64) float64 {
		if m <= 0 {
			return 1e6
		}
		return AreaRatio(m, gamma) - ratio
	}
	if ratio < 1 {
		return brent(f, 1e-6, 1)
	}

	fa := f(1)
	if math.Abs(fa) < 1e-12 {
		return 1, nil
	}
	for _, b := range upperBounds {
		if fa*f(b) < 0 {
			return brent(f, 1, b)
		}
	}
	return math.NaN(), fmt.Errorf("%w: area ratio %g beyond Mach %g", ErrNoRoot, ratio, upperBounds[len(upperBounds)-1])
}

// GasState is the local static state of an isentropic flow.
type GasState struct {
	Mach        float64 `json:"mach"`
	Temperature float64 `json:"temperature"` // K
	Pressure    float64 `json:"pressure"`    // Pa
	Density     float64 `json:"density"`     // kg/m3
	Velocity    float64 `json:"velocity"`    // m/s
}

// State returns the static state at Mach m for stagnation conditions
// p0 (Pa) and t0 (K).
func (g Gas) State(m, p0, t0 float64) GasState {
	ratio := 1 + (g.Gamma-1)/2*m*m
	t := t0 / ratio
	p := p0 / math.Pow(ratio, g.Gamma/(g.Gamma-1))
	return GasState{
		Mach:        m,
		Temperature: t,
		Pressure:    p,
		Density:     p / (g.R * t),
		Velocity:    m * math.Sqrt(g.Gamma*g.R*t),
	}
}

// DragCoefficient is the sphere drag coefficient used by the calculator.
const DragCoefficient = 0.44

// Length factors to metres. The calculator takes particle diameters in
// micrometres and nozzle dimensions in millimetres.
const (
	Micrometre = 1e-6
	Millimetre = 1e-3
)

// ParticleInputs configures a particle velocity run. Values are SI.
type ParticleInputs struct {
	Gas      string `json:"gas" yaml:"gas"`
	Material string `json:"material" yaml:"material"`

	P0  float64 `json:"p0" yaml:"p0"`   // stagnation pressure, Pa
	T0  float64 `json:"t0" yaml:"t0"`   // stagnation temperature, K
	Dp  float64 `json:"dp" yaml:"dp"`   // particle diameter, m
	Dnt float64 `json:"dnt" yaml:"dnt"` // throat diameter, m
	De  float64 `json:"de" yaml:"de"`   // exit diameter, m
	Lf  float64 `json:"lf" yaml:"lf"`   // divergent length, m
	V0  float64 `json:"v0" yaml:"v0"`   // particle velocity at the throat, m/s
}

// DefaultParticleInputs returns the calculator defaults: nitrogen and
// copper, 30 bar, 973 K, a 20 um particle in a 1.5/5 mm nozzle with a
// 100 mm divergent section.
func DefaultParticleInputs() ParticleInputs {
	return ParticleInputs{
		Gas:      "N2",
		Material: "Cu",
		P0:       30e5,
		T0:       973,
		Dp:       20e-6,
		Dnt:      1.5e-3,
		De:       5.0e-3,
		Lf:       100e-3,
		V0:       20,
	}
}

// Validate rejects geometry and conditions the model cannot evaluate.
func (in ParticleInputs) Validate() error {
	if _, err := LookupGas(in.Gas); err != nil {
		return err
	}
	if _, err := LookupParticle(in.Material); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"stagnation pressure", in.P0},
		{"stagnation temperature", in.T0},
		{"particle diameter", in.Dp},
		{"throat diameter", in.Dnt},
		{"exit diameter", in.De},
		{"divergent length", in.Lf},
		{"throat velocity", in.V0},
	} {
		if !(f.v > 0) {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidInput, f.name)
		}
	}
	if in.De < in.Dnt {
		return fmt.Errorf("%w: exit diameter is smaller than the throat", ErrInvalidInput)
	}
	return nil
}

// ParticleVelocity is the result of a nozzle run.
type ParticleVelocity struct {
	Exit float64 `json:"exit"` // m/s
	Path []Point `json:"path"` // velocity along the divergent section
}

// Solve integrates the particle drag equation from the throat to the
// nozzle exit of a linearly diverging nozzle.
func (in ParticleInputs) Solve() (ParticleVelocity, error) {
	if err := in.Validate(); err != nil {
		return ParticleVelocity{}, err
	}
	gas, _ := LookupGas(in.Gas)
	mat, _ := LookupParticle(in.Material)

	throat := math.Pi * (in.Dnt / 2) * (in.Dnt / 2)
	mass := mat.Density * (4.0 / 3) * math.Pi * math.Pow(in.Dp/2, 3)
	area := math.Pi * (in.Dp / 2) * (in.Dp / 2)

	accel := func(x, vp float64) (float64, error) {
		if vp <= 0 {
			return 1e-6, nil
		}
		d := in.Dnt + (in.De-in.Dnt)*(x/in.Lf)
		m, err := MachFromAreaRatio(math.Pi*(d/2)*(d/2)/throat, gas.Gamma)
		if err != nil {
			return 0, err
		}
		st := gas.State(m, in.P0, in.T0)
		dv := st.Velocity - vp
		return DragCoefficient * st.Density * area / (2 * mass * vp) * dv * dv, nil
	}

	path, err := dormandPrince(accel, 0, in.Lf, in.V0)
	if err != nil {
		return ParticleVelocity{}, fmt.Errorf("integrating particle velocity: %w", err)
	}
	return ParticleVelocity{Exit: path[len(path)-1].Y, Path: path}, nil
}
