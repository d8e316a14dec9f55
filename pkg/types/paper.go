// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the paper records and configuration shared by the
// hub's components.
package types

// PaperType selects which family of study fragments a query may use.
type PaperType string

const (
	PaperAny          PaperType = "any"
	PaperExperimental PaperType = "Experimental"
	PaperNumerical    PaperType = "Numerical"
)

// Paper is one bibliographic record of the dataset, identified by DOI.
// A Paper is immutable after the dataset is loaded.
type Paper struct {
	// DOI is the bare identifier as stored in the graph (e.g. "10.1016/j.surfcoat.2020.125").
	DOI string `json:"doi" yaml:"doi"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year as written in the dataset.
	Year string `json:"year" yaml:"year"`

	// Authors lists the paper authors in dataset order.
	Authors []string `json:"authors" yaml:"authors"`
}

// URL returns the resolvable https://doi.org/ form of the DOI.
func (p Paper) URL() string {
	return "https://doi.org/" + p.DOI
}

// Material is an experimental feedstock or substrate mention.
type Material struct {
	Composition string `json:"composition" yaml:"composition"`
	Condition   string `json:"condition" yaml:"condition"`
}

// PreprocessingKind tags which variant of Preprocessing is set.
type PreprocessingKind string

const (
	PreprocessingHeatTreatment        PreprocessingKind = "heat_treatment"
	PreprocessingPowderProduction     PreprocessingKind = "powder_production"
	PreprocessingSubstratePreparation PreprocessingKind = "substrate_preparation"
)

// Preprocessing is a tagged variant: exactly one kind per value.
type Preprocessing struct {
	Kind PreprocessingKind `json:"kind" yaml:"kind"`

	// AnnealingTemperature and AnnealingTime are set for heat treatment.
	AnnealingTemperature string `json:"annealing_temperature,omitempty" yaml:"annealing_temperature,omitempty"`
	AnnealingTime        string `json:"annealing_time,omitempty" yaml:"annealing_time,omitempty"`

	// Method is set for powder production and substrate preparation.
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
}

// Characterization is a technique (SEM, TEM, XRD...) with its parameters.
type Characterization struct {
	Technique string `json:"technique" yaml:"technique"`
	Parameter string `json:"parameter" yaml:"parameter"`
}

// MicrostructureResult is one reported microstructural feature.
type MicrostructureResult struct {
	Feature string `json:"feature" yaml:"feature"`
	Value   string `json:"value" yaml:"value"`
	Unit    string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// MechanicalProperty is one reported mechanical property.
type MechanicalProperty struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
	Unit  string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Result groups the outcomes reported by an experimental paper.
type Result struct {
	Microstructure       []MicrostructureResult `json:"microstructure,omitempty" yaml:"microstructure,omitempty"`
	Mechanical           []MechanicalProperty   `json:"mechanical,omitempty" yaml:"mechanical,omitempty"`
	DepositionEfficiency string                 `json:"deposition_efficiency,omitempty" yaml:"deposition_efficiency,omitempty"`
	Porosity             string                 `json:"porosity,omitempty" yaml:"porosity,omitempty"`
	PorosityUnit         string                 `json:"porosity_unit,omitempty" yaml:"porosity_unit,omitempty"`
}

// Quantity is a value with its unit as written in the dataset.
type Quantity struct {
	Value string `json:"value" yaml:"value"`
	Unit  string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// ColdSprayProcess holds the run parameters of an experimental study.
type ColdSprayProcess struct {
	CarrierGas        string    `json:"carrier_gas,omitempty" yaml:"carrier_gas,omitempty"`
	GasPressure       *Quantity `json:"gas_pressure,omitempty" yaml:"gas_pressure,omitempty"`
	NozzleTemperature *Quantity `json:"nozzle_temperature,omitempty" yaml:"nozzle_temperature,omitempty"`
	StandOffDistance  *Quantity `json:"stand_off_distance,omitempty" yaml:"stand_off_distance,omitempty"`
	TraverseVelocity  *Quantity `json:"traverse_velocity,omitempty" yaml:"traverse_velocity,omitempty"`
}

// ModelConstant is a named constant of a numerical model.
type ModelConstant struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty"`
	SourceTitle string `json:"source_title,omitempty" yaml:"source_title,omitempty"`
}

// ComputationalStudy describes a numerical study of the process.
type ComputationalStudy struct {
	ModelMaterials    []string        `json:"model_materials,omitempty" yaml:"model_materials,omitempty"`
	Approach          string          `json:"approach,omitempty" yaml:"approach,omitempty"`
	ConstitutiveModel string          `json:"constitutive_model,omitempty" yaml:"constitutive_model,omitempty"`
	Dimensionality    string          `json:"dimensionality,omitempty" yaml:"dimensionality,omitempty"`
	Software          []string        `json:"software,omitempty" yaml:"software,omitempty"`
	MeshResolution    string          `json:"mesh_resolution,omitempty" yaml:"mesh_resolution,omitempty"`
	Constants         []ModelConstant `json:"constants,omitempty" yaml:"constants,omitempty"`
}

// PaperDetail is a Paper with every sub-entity attached to it.
type PaperDetail struct {
	Paper `yaml:",inline"`

	Materials         []Material           `json:"materials,omitempty" yaml:"materials,omitempty"`
	Preprocessing     []Preprocessing      `json:"preprocessing,omitempty" yaml:"preprocessing,omitempty"`
	Characterizations []Characterization   `json:"characterizations,omitempty" yaml:"characterizations,omitempty"`
	Results           []Result             `json:"results,omitempty" yaml:"results,omitempty"`
	Processes         []ColdSprayProcess   `json:"processes,omitempty" yaml:"processes,omitempty"`
	Studies           []ComputationalStudy `json:"studies,omitempty" yaml:"studies,omitempty"`
}

// Type reports whether the paper is experimental, numerical, or neither.
// A paper with both a process and a computational study reports experimental.
func (d PaperDetail) Type() PaperType {
	switch {
	case len(d.Processes) > 0:
		return PaperExperimental
	case len(d.Studies) > 0:
		return PaperNumerical
	default:
		return PaperAny
	}
}
