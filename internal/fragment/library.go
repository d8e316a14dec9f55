// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fragment

import "strings"

type key struct {
	cat    Category
	option string
}

type entry struct {
	fragment *Fragment
	template *KeywordTemplate
}

var categoryVars = map[Category][]string{
	Material:          {"Composition", "Material_Condition"},
	Preprocessing:     {"Preprocessing_Method"},
	ColdSprayProcess:  {"Process_Gas", "Gas_Pressure", "Gas_Temperature", "StandOff_Distance", "Particle_or_Impact_Velocity"},
	Characterization:  {"Characterization_Method"},
	Microstructure:    {"Microstructure_Parameter"},
	Mechanical:        {"Mechanical_Property"},
	ModelMaterial:     {"Model_Material"},
	NumericalApproach: {"Numerical_Approach"},
	ConstitutiveModel: {"Constitutive_Model"},
	Dimensionality:    {"Dimensionality"},
	Software:          {"Software"},
	MeshResolution:    {"Mesh_Resolution"},
	ModelConstants:    {"Model_Constant", "Model_Constant_Source"},
}

// blankMeansAll marks the numerical-study text boxes: left blank they
// show every value instead of filtering.
var blankMeansAll = map[Category]bool{
	NumericalApproach: true,
	ConstitutiveModel: true,
	Software:          true,
}

// option is one registry row: a canned value of a template, or a fixed
// pattern.
type option struct {
	name    string
	value   string
	pattern string
}

// Material regexes are matched case-sensitively against the composition.
var materialOptions = []option{
	{name: "Aluminum and Aluminum Alloys", value: "Al|Aluminum|aluminum"},
	{name: "Copper and Copper Alloys", value: "Cu|Copper|copper"},
	{name: "Nickel and Nickel Alloys", value: "Ni|Nickel|nickel"},
	{name: "Titanium and Titanium Alloys", value: "Ti|Titanium|titanium"},
	{name: "Iron and Steel Alloys", value: "Fe|Iron|Steel|iron|steel"},
	{name: "Magnesium and Magnesium Alloys", value: "Mg|Magnesium|magnesium"},
	{name: "Carbides", value: "SiC|WC|CBN|Carbide|carbide"},
}

const materialPattern = `
?paper a cs:ColdSprayPaper ;
    cs:hasMaterial ?material .
?material cs:hasCondition ?Material_Condition ;
    cs:hasComposition ?Composition .
FILTER (regex(?Composition, "{{keyword}}"))
`

const modelMaterialPattern = `
?paper a cs:ColdSprayPaper ;
    cs:hasComputationalStudy ?comp .
?comp cs:modelsMaterial ?Model_Material .
FILTER (regex(?Model_Material, "{{keyword}}"))
`

var preprocessingOptions = []option{
	{name: "Heat Treatment", pattern: `
?paper cs:hasPreprocessing ?preprocessing .
?preprocessing cs:hasHeatTreatment ?heatTreatment .
?heatTreatment cs:annealingTemperature ?annealingTemperature .
?heatTreatment cs:annealingTime ?annealingTime .
BIND(CONCAT(STR(?annealingTemperature), ", ", STR(?annealingTime)) AS ?Preprocessing_Method)
`},
	{name: "Powder Production", pattern: `
?paper cs:hasPreprocessing ?preprocessing .
?preprocessing cs:hasPowderProduction ?Preprocessing_Method .
`},
	{name: "Substrate Preparation", pattern: `
?paper cs:hasPreprocessing ?preprocessing .
?preprocessing cs:hasSubstratePreparation ?Preprocessing_Method .
`},
}

// Technique names are matched case-sensitively.
var characterizationOptions = []option{
	{name: "Scanning Electron Microscopy", value: "SEM"},
	{name: "Transmission Electron Microscopy", value: "TEM"},
	{name: "Light Optical Microscopy", value: "LOM|Light Optical Microscopy"},
	{name: "Electron Backscatter Diffraction", value: "EBSD"},
	{name: "Energy-dispersive X-ray", value: "EDS|EDX|EDAX"},
	{name: "X-ray Diffraction", value: "XRD"},
	{name: "X-ray Photoelectron Spectroscopy", value: "XPS"},
}

const characterizationPattern = `
?paper cs:hasCharacterization ?characterization .
?characterization cs:techniqueName ?techniqueName .
FILTER (regex(?techniqueName, "{{keyword}}"))
?characterization cs:parameter ?parameter .
BIND(CONCAT(?techniqueName, " : ", STR(?parameter)) AS ?Characterization_Method)
`

// featureWithUnit requires a unit on the feature.
const featureWithUnit = `
?paper a cs:ColdSprayPaper ;
    cs:hasResult ?result .
?result cs:hasMicrostructureResult ?microstructure .
?microstructure cs:featureDescription ?featureDescription .
?microstructure cs:featureValue ?featureValue .
?microstructure cs:featureUnit ?featureUnit .
FILTER (REGEX(STR(?featureDescription), "{{keyword}}", "i"))
BIND(CONCAT(STR(?featureDescription), ": ", STR(?featureValue), " ", STR(?featureUnit)) AS ?Microstructure_Parameter)
`

// featureOptionalUnit appends the unit only when the feature has one.
const featureOptionalUnit = `
?paper a cs:ColdSprayPaper ;
    cs:hasResult ?result .
?result cs:hasMicrostructureResult ?microstructure .
?microstructure cs:featureDescription ?featureDescription .
?microstructure cs:featureValue ?featureValue .
OPTIONAL { ?microstructure cs:featureUnit ?featureUnit }
FILTER (REGEX(STR(?featureDescription), "{{keyword}}", "i"))
BIND(CONCAT(STR(?featureDescription), ": ", STR(?featureValue),
    IF(BOUND(?featureUnit), CONCAT(" ", STR(?featureUnit)), "")) AS ?Microstructure_Parameter)
`

const depositionEfficiencyPattern = `
?paper a cs:ColdSprayPaper ;
    cs:hasResult ?result .
?result cs:depositionEfficiency ?microstructure .
BIND(CONCAT("Deposition Efficiency: ", STR(?microstructure), " %") AS ?Microstructure_Parameter)
`

// Porosity is reported either on the result itself or as a
// microstructure feature; both are shown when present.
const porosityPattern = `
?paper a cs:ColdSprayPaper ;
    cs:hasResult ?result .
?result cs:hasMicrostructureResult ?microstructure .
OPTIONAL {
    ?result cs:porosity ?porosity ;
        cs:porosityUnit ?porosityUnit .
}
OPTIONAL {
    ?microstructure cs:featureDescription ?featureDescription ;
        cs:featureValue ?featureValue ;
        cs:featureUnit ?featureUnit .
    FILTER (REGEX(STR(?featureDescription), "porosity", "i"))
}
BIND(IF(BOUND(?featureDescription),
    CONCAT(STR(?featureDescription), ": ", STR(?featureValue), " ", STR(?featureUnit)),
    "") AS ?MicrostructurePorosity)
BIND(IF(BOUND(?porosity),
    CONCAT("Porosity: ", STR(?porosity), " ", STR(?porosityUnit)),
    "") AS ?csPorosity)
BIND(CONCAT(?MicrostructurePorosity, " ", ?csPorosity) AS ?Microstructure_Parameter)
FILTER (REGEX(?Microstructure_Parameter, "porosity", "i"))
`

var microstructureOptions = []option{
	{name: "Grain Size", value: "grain size", pattern: featureWithUnit},
	{name: "Particle Size", value: "particle size", pattern: featureWithUnit},
	{name: "Deposition Efficiency", pattern: depositionEfficiencyPattern},
	{name: "Porosity", pattern: porosityPattern},
	{name: "Grain Boundary", value: "grain boundary", pattern: featureOptionalUnit},
	{name: "Roughness", value: "roughness", pattern: featureWithUnit},
	{name: "Corrosion Properties", value: "corrosion|Icorr|Ecorr", pattern: featureOptionalUnit},
	{name: "Fracture Morphology", value: "fracture morphology", pattern: featureOptionalUnit},
	{name: "Deformation", value: "deformation", pattern: featureOptionalUnit},
}

const propertyWithUnit = `
?paper a cs:ColdSprayPaper ;
    cs:hasResult ?result .
?result cs:hasMechanicalProperty ?mechanical .
?mechanical cs:propertyName ?propertyName .
?mechanical cs:propertyValue ?propertyValue .
?mechanical cs:propertyUnit ?propertyUnit .
FILTER (REGEX(STR(?propertyName), "{{keyword}}", "i"))
BIND(CONCAT(STR(?propertyName), ": ", STR(?propertyValue), " ", STR(?propertyUnit)) AS ?Mechanical_Property)
`

const propertyOptionalUnit = `
?paper a cs:ColdSprayPaper ;
    cs:hasResult ?result .
?result cs:hasMechanicalProperty ?mechanical .
?mechanical cs:propertyName ?propertyName .
?mechanical cs:propertyValue ?propertyValue .
OPTIONAL { ?mechanical cs:propertyUnit ?propertyUnit }
FILTER (REGEX(STR(?propertyName), "{{keyword}}", "i"))
BIND(CONCAT(STR(?propertyName), ": ", STR(?propertyValue),
    IF(BOUND(?propertyUnit), CONCAT(" ", STR(?propertyUnit)), "")) AS ?Mechanical_Property)
`

var mechanicalOptions = []option{
	{name: "Hardness", value: "hardness"},
	{name: "Tensile Strength", value: "tensile"},
	{name: "Yield Strength", value: "yield"},
	{name: "Bonding Strength", value: "bond|shear|cohesive|adhesion"},
	{name: "Elastic Modulus", value: "elastic modulus|young's modulus"},
	{name: "Wear Properties", value: "wear"},
	{name: "Ductility", value: "ductility|elongation"},
	{name: "Residual Stress", value: "residual stress"},
}

// The cold spray details are one optional block so papers without a
// process record are kept. Particle velocity measurements take
// precedence over the traverse velocity.
const coldSprayPattern = `
OPTIONAL {
    ?paper cs:hasColdSprayProcess ?process .
    OPTIONAL {
        ?process cs:carrierGas ?Process_Gas .
        ?process cs:gasPressure ?gasPressure .
        ?process cs:gasPressureUnit ?gasPressureUnit .
        BIND(CONCAT(STR(?gasPressure), " ", STR(?gasPressureUnit)) AS ?Gas_Pressure)
    }
    OPTIONAL {
        ?process cs:nozzleTemperature ?nozzleTemperature .
        ?process cs:nozzleTemperatureUnit ?nozzleTemperatureUnit .
        BIND(CONCAT(STR(?nozzleTemperature), " ", STR(?nozzleTemperatureUnit)) AS ?Gas_Temperature)
    }
    OPTIONAL {
        ?process cs:standOffDistance ?standOffDistance .
        ?process cs:standOffDistanceUnit ?standOffDistanceUnit .
        BIND(CONCAT(STR(?standOffDistance), " ", STR(?standOffDistanceUnit)) AS ?StandOff_Distance)
    }
    OPTIONAL {
        ?paper cs:hasResult ?result .
        ?result cs:hasMechanicalProperty ?mechProp .
        ?mechProp cs:propertyName ?propName .
        ?mechProp cs:propertyValue ?propVal .
        ?mechProp cs:propertyUnit ?propUnit .
        FILTER (REGEX(STR(?propName), "velocity", "i"))
        BIND(CONCAT(STR(?propName), ": ", STR(?propVal), " ", STR(?propUnit)) AS ?Particle_or_Impact_Velocity)
    }
    OPTIONAL {
        ?process cs:traverseVelocity ?velocity .
        ?process cs:traverseVelocityUnit ?velocityUnit .
        BIND(COALESCE(CONCAT("Traverse Velocity: ", STR(?velocity), " ", STR(?velocityUnit)), "NA") AS ?Particle_or_Impact_Velocity)
    }
}
`

// Numerical study patterns. The "all" variant wraps the pattern in
// OPTIONAL; a keyword replaces it with a case-insensitive filter.
const approachPattern = `
?paper a cs:ColdSprayPaper ;
    cs:hasComputationalStudy ?approach .
?approach cs:hasNumericalApproach ?approach2 .
?approach2 cs:approachType ?Numerical_Approach .
`

const constitutivePattern = `
?paper a cs:ColdSprayPaper ;
    cs:hasComputationalStudy ?cons .
?cons cs:hasNumericalApproach ?cons2 .
?cons2 cs:hasApproachDetail ?cons3 .
?cons3 cs:constitutiveModel ?Constitutive_Model .
`

const dimensionalityPattern = `
?paper a cs:ColdSprayPaper ;
    cs:hasComputationalStudy ?dim .
?dim cs:hasNumericalApproach ?dim2 .
?dim2 cs:dimensionality ?Dimensionality .
`

const softwarePattern = `
?paper a cs:ColdSprayPaper ;
    cs:hasComputationalStudy ?soft .
?soft cs:usesSoftware ?Software .
`

const meshPattern = `
?paper a cs:ColdSprayPaper ;
    cs:hasComputationalStudy ?mesh .
?mesh cs:hasNumericalApproach ?mesh2 .
?mesh2 cs:hasApproachDetail ?mesh3 .
?mesh3 cs:meshResolution ?Mesh_Resolution .
`

const constantsPattern = `
?paper a cs:ColdSprayPaper ;
    cs:hasComputationalStudy ?const .
?const cs:hasNumericalApproach ?const2 .
?const2 cs:hasApproachDetail ?const3 .
?const3 cs:hasModelingConstant ?const4 .
?const4 cs:parameterName ?constpara .
?const4 cs:parameterValue ?constval .
?const4 cs:parameterUnit ?constunit .
OPTIONAL { ?const4 cs:derivedFromSourceTitle ?Model_Constant_Source . }
BIND(CONCAT(STR(?constpara), ": ", STR(?constval),
    IF(BOUND(?constunit), CONCAT(" ", STR(?constunit)), "")) AS ?Model_Constant)
`

var (
	registry    = map[key]entry{}
	optionOrder = map[Category][]string{}
)

func init() {
	templated(Material, OptionAny, materialPattern, materialOptions, true)
	fixed(Preprocessing, OptionAny, preprocessingOptions)
	fixed(ColdSprayProcess, OptionNone, []option{{name: OptionAll, pattern: coldSprayPattern}})
	templated(Characterization, OptionAny, characterizationPattern, characterizationOptions, false)
	templated(Microstructure, OptionNone, featureOptionalUnit, microstructureOptions, true)
	templated(Mechanical, OptionNone, propertyWithUnit, mechanicalOptions, false)
	keyword(Mechanical, propertyOptionalUnit)
	templated(ModelMaterial, OptionAny, modelMaterialPattern, materialOptions, true)

	searchable(NumericalApproach, approachPattern, "Numerical_Approach")
	searchable(ConstitutiveModel, constitutivePattern, "Constitutive_Model")
	fixed(Dimensionality, OptionNone, []option{
		{name: OptionAll, pattern: optional(dimensionalityPattern)},
		{name: "1D", pattern: dimensionalityPattern + `FILTER (regex(?Dimensionality, "1D"))` + "\n"},
		{name: "2D", pattern: dimensionalityPattern + `FILTER (regex(?Dimensionality, "2D"))` + "\n"},
		{name: "3D", pattern: dimensionalityPattern + `FILTER (regex(?Dimensionality, "3D"))` + "\n"},
	})
	searchable(Software, softwarePattern, "Software")
	fixed(MeshResolution, OptionNone, []option{{name: OptionAll, pattern: optional(meshPattern)}})
	fixed(ModelConstants, OptionNone, []option{{name: OptionAll, pattern: optional(constantsPattern)}})
}

// templated registers canned options rendered from one template. An
// option's own pattern, when set, overrides the category template.
func templated(cat Category, sentinel, pattern string, opts []option, withKeyword bool) {
	optionOrder[cat] = append(optionOrder[cat], sentinel)
	for _, o := range opts {
		p := pattern
		if o.pattern != "" {
			p = o.pattern
		}
		f := Fragment{
			Category: cat,
			Option:   o.name,
			Vars:     categoryVars[cat],
			Pattern:  strings.ReplaceAll(p, keywordMarker, EscapeLiteral(o.value)),
		}
		registry[key{cat, o.name}] = entry{fragment: &f}
		optionOrder[cat] = append(optionOrder[cat], o.name)
	}
	if withKeyword {
		keyword(cat, pattern)
	}
}

func keyword(cat Category, pattern string) {
	registry[key{cat, OptionKeyword}] = entry{template: &KeywordTemplate{
		Category: cat,
		Option:   OptionKeyword,
		Vars:     categoryVars[cat],
		pattern:  pattern,
	}}
	optionOrder[cat] = append(optionOrder[cat], OptionKeyword)
}

func fixed(cat Category, sentinel string, opts []option) {
	optionOrder[cat] = append(optionOrder[cat], sentinel)
	for _, o := range opts {
		f := Fragment{Category: cat, Option: o.name, Vars: categoryVars[cat], Pattern: o.pattern}
		registry[key{cat, o.name}] = entry{fragment: &f}
		optionOrder[cat] = append(optionOrder[cat], o.name)
	}
}

// searchable registers a numerical-study text box: all shows every value,
// a keyword filters case-insensitively on variable v.
func searchable(cat Category, pattern, v string) {
	fixed(cat, OptionNone, []option{{name: OptionAll, pattern: optional(pattern)}})
	keyword(cat, pattern+`FILTER (REGEX(STR(?`+v+`), "{{keyword}}", "i"))`+"\n")
}

func optional(pattern string) string {
	return "\nOPTIONAL {" + strings.ReplaceAll(pattern, "\n", "\n    ") + "}\n"
}
