// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package calc implements the cold spray calculators: critical velocity
// correlations and the particle velocity in a converging-diverging nozzle.
package calc

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrInvalidInput is returned for inputs outside a model's domain.
var ErrInvalidInput = errors.New("invalid calculator input")

// Material holds the fixed properties of a feedstock and the defaults of
// its adjustable parameters.
type Material struct {
	Key  string `json:"key" yaml:"key"`
	Name string `json:"name" yaml:"name"`

	Rho float64 `json:"rho" yaml:"rho"` // g/cm3
	Tm  float64 `json:"tm" yaml:"tm"`   // melting temperature, C
	Cp  float64 `json:"cp" yaml:"cp"`   // J/(kg K)
	B   float64 `json:"b" yaml:"b"`     // bulk modulus, GPa

	Su    float64 `json:"su" yaml:"su"`       // ultimate strength, MPa
	Ti    float64 `json:"ti" yaml:"ti"`       // initial particle temperature, C
	Tp    float64 `json:"tp" yaml:"tp"`       // particle impact temperature, C
	D     float64 `json:"d" yaml:"d"`         // particle diameter, um
	Dref  float64 `json:"dref" yaml:"dref"`   // reference particle diameter, um
	Gamma float64 `json:"gamma" yaml:"gamma"` // um^0.19
}

var materials = []Material{
	{
		Key: "Cu", Name: "Copper (Cu)",
		Rho: 8.96, Tm: 1083, Cp: 384, B: 140,
		Su: 220, Ti: 320, Tp: 26.85, D: 20, Dref: 10, Gamma: 230,
	},
	{
		Key: "Al", Name: "Aluminum (Al)",
		Rho: 2.70, Tm: 660, Cp: 890, B: 75,
		Su: 110, Ti: 20, Tp: 0, D: 20, Dref: 10, Gamma: 230,
	},
}

// Materials returns the materials of the critical velocity calculator.
func Materials() []Material { return slices.Clone(materials) }

// LookupMaterial finds a material by key ("Cu") or display name.
func LookupMaterial(name string) (Material, error) {
	for _, m := range materials {
		if m.Key == name || m.Name == name {
			return m, nil
		}
	}
	return Material{}, fmt.Errorf("%w: unknown material %q", ErrInvalidInput, name)
}

// Assadi2003 is the empirical correlation of Assadi et al. (2003):
// rho in g/cm3, tm and ti in C, su in MPa. The result is in m/s.
func Assadi2003(rho, tm, su, ti float64) float64 {
	return 667 - 14*rho + 0.08*tm + 0.1*su - 0.4*ti
}

// Assadi2011 is the correlation of Assadi et al. (2011). Inputs use the
// calculator units (g/cm3, C, MPa) and are converted to SI internally.
func Assadi2011(k1, cp, rho, tm, tp, su float64) float64 {
	tmK := tm + 273.15
	tpK := tp + 273.15
	return k1 * math.Sqrt(cp*(tmK-tpK)+16*(su*1e6)/(rho*1000)*((tmK-tpK)/(tmK-293)))
}

// K1 is the particle-size fitting parameter of Assadi2011.
func K1(d, dref float64) float64 {
	return 0.64 * math.Pow(d/dref, -0.18)
}

// Zhang2025 is the reduced-order model of Zhang et al. (2025), building on
// Hassani et al. (2016): su in MPa, b in GPa, rho in g/cm3, tm and tp in C,
// d in um.
func Zhang2025(gamma, su, b, rho, tm, tp, d float64) float64 {
	suPa := su * 1e6
	bPa := b * 1e9
	return gamma * (suPa / bPa) * math.Sqrt(bPa/(rho*1000)) * math.Sqrt((tm-tp)/(tm-20)) * math.Pow(d, -0.19)
}

// Inputs is the state of the critical velocity calculator. The reference
// diameter is kept across material and parameter changes until it is set
// explicitly.
type Inputs struct {
	Material string `json:"material" yaml:"material"`

	Rho   float64 `json:"rho" yaml:"rho"`
	Tm    float64 `json:"tm" yaml:"tm"`
	Cp    float64 `json:"cp" yaml:"cp"`
	B     float64 `json:"b" yaml:"b"`
	Su    float64 `json:"su" yaml:"su"`
	Ti    float64 `json:"ti" yaml:"ti"`
	Tp    float64 `json:"tp" yaml:"tp"`
	D     float64 `json:"d" yaml:"d"`
	Gamma float64 `json:"gamma" yaml:"gamma"`
	Dref  float64 `json:"dref" yaml:"dref"`
}

// NewInputs returns the defaults of m.
func NewInputs(m Material) Inputs {
	return Inputs{
		Material: m.Key,
		Rho:      m.Rho, Tm: m.Tm, Cp: m.Cp, B: m.B,
		Su: m.Su, Ti: m.Ti, Tp: m.Tp, D: m.D, Gamma: m.Gamma,
		Dref: m.Dref,
	}
}

// WithMaterial switches to m and resets every parameter to m's defaults
// except the reference diameter.
func (in Inputs) WithMaterial(m Material) Inputs {
	out := NewInputs(m)
	if in.Dref > 0 {
		out.Dref = in.Dref
	}
	return out
}

// WithReferenceDiameter sets the reference diameter in um.
func (in Inputs) WithReferenceDiameter(dref float64) Inputs {
	in.Dref = dref
	return in
}

// Validate rejects inputs for which a model is undefined.
func (in Inputs) Validate() error {
	switch {
	case in.Rho <= 0:
		return fmt.Errorf("%w: density must be positive", ErrInvalidInput)
	case in.B <= 0:
		return fmt.Errorf("%w: bulk modulus must be positive", ErrInvalidInput)
	case in.D <= 0:
		return fmt.Errorf("%w: particle diameter must be positive", ErrInvalidInput)
	case in.Dref <= 0:
		return fmt.Errorf("%w: reference diameter must be positive", ErrInvalidInput)
	case in.Tp >= in.Tm:
		return fmt.Errorf("%w: impact temperature must be below the melting temperature", ErrInvalidInput)
	case in.Tm <= 20:
		return fmt.Errorf("%w: melting temperature must exceed 20 C", ErrInvalidInput)
	}
	return nil
}

// CriticalVelocity holds the three model estimates in m/s.
type CriticalVelocity struct {
	K1         float64 `json:"k1" yaml:"k1"`
	Assadi2003 float64 `json:"assadi_2003" yaml:"assadi_2003"`
	Assadi2011 float64 `json:"assadi_2011" yaml:"assadi_2011"`
	Zhang2025  float64 `json:"zhang_2025" yaml:"zhang_2025"`
}

// Evaluate runs every model on in.
func (in Inputs) Evaluate() (CriticalVelocity, error) {
	if err := in.Validate(); err != nil {
		return CriticalVelocity{}, err
	}
	return in.evaluate(), nil
}

func (in Inputs) evaluate() CriticalVelocity {
	k1 := K1(in.D, in.Dref)
	return CriticalVelocity{
		K1:         k1,
		Assadi2003: Assadi2003(in.Rho, in.Tm, in.Su, in.Ti),
		Assadi2011: Assadi2011(k1, in.Cp, in.Rho, in.Tm, in.Tp, in.Su),
		Zhang2025:  Zhang2025(in.Gamma, in.Su, in.B, in.Rho, in.Tm, in.Tp, in.D),
	}
}
