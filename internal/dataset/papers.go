// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/coldspray-hub/internal/graph"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

// ErrPaperNotFound is returned by Describe for a DOI the dataset lacks.
var ErrPaperNotFound = errors.New("paper not found")

const doiResolver = "https://doi.org/"

// vocab resolves local names against the dataset namespace.
type vocab struct {
	g  *graph.Graph
	ns string
}

func newVocab(g *graph.Graph, namespace string) vocab {
	if namespace == "" {
		namespace = types.DefaultNamespace
	}
	return vocab{g: g, ns: namespace}
}

func (v vocab) iri(local string) graph.Term { return graph.IRI(v.ns + local) }

func (v vocab) values(s graph.Term, local string) []string {
	var out []string
	for _, o := range v.g.Objects(s, v.iri(local)) {
		out = append(out, o.Value)
	}
	return out
}

func (v vocab) value(s graph.Term, local string) string {
	o, _ := v.g.Object(s, v.iri(local))
	return o.Value
}

func (v vocab) nodes(s graph.Term, local string) []graph.Term {
	return v.g.Objects(s, v.iri(local))
}

// quantity returns nil when the value predicate is absent.
func (v vocab) quantity(s graph.Term, value, unit string) *types.Quantity {
	o, ok := v.g.Object(s, v.iri(value))
	if !ok {
		return nil
	}
	return &types.Quantity{Value: o.Value, Unit: v.value(s, unit)}
}

func (v vocab) papers() []graph.Term {
	return v.g.Subjects(graph.IRI(graph.RDFType), v.iri("ColdSprayPaper"))
}

func (v vocab) paper(node graph.Term) types.Paper {
	p := types.Paper{DOI: v.value(node, "hasDOI")}
	for _, m := range v.nodes(node, "hasMetadata") {
		if p.Title == "" {
			p.Title = v.value(m, "hasTitle")
		}
		if p.Year == "" {
			p.Year = v.value(m, "hasPublicationYear")
		}
		p.Authors = append(p.Authors, v.values(m, "hasAuthor")...)
	}
	return p
}

// Papers lists every paper of g, newest first. Papers with the same year
// keep dataset order.
func Papers(g *graph.Graph, namespace string) []types.Paper {
	v := newVocab(g, namespace)
	var out []types.Paper
	for _, n := range v.papers() {
		out = append(out, v.paper(n))
	}
	slices.SortStableFunc(out, func(a, b types.Paper) int {
		return compareYear(b.Year, a.Year)
	})
	return out
}

// compareYear orders numeric years numerically and places unparseable
// years before them.
func compareYear(a, b string) int {
	ai, aerr := strconv.Atoi(strings.TrimSpace(a))
	bi, berr := strconv.Atoi(strings.TrimSpace(b))
	switch {
	case aerr == nil && berr == nil:
		return ai - bi
	case aerr != nil && berr != nil:
		return strings.Compare(a, b)
	case aerr != nil:
		return -1
	default:
		return 1
	}
}

// Describe returns the paper with DOI doi and every entity attached to
// it. doi may be bare or a https://doi.org/ URL.
func Describe(g *graph.Graph, namespace, doi string) (types.PaperDetail, error) {
	v := newVocab(g, namespace)
	doi = strings.TrimPrefix(strings.TrimSpace(doi), doiResolver)
	for _, n := range v.papers() {
		if v.value(n, "hasDOI") != doi {
			continue
		}
		return v.detail(n), nil
	}
	return types.PaperDetail{}, ErrPaperNotFound
}

func (v vocab) detail(n graph.Term) types.PaperDetail {
	d := types.PaperDetail{Paper: v.paper(n)}

	for _, m := range v.nodes(n, "hasMaterial") {
		d.Materials = append(d.Materials, types.Material{
			Composition: v.value(m, "hasComposition"),
			Condition:   v.value(m, "hasCondition"),
		})
	}

	for _, p := range v.nodes(n, "hasPreprocessing") {
		for _, ht := range v.nodes(p, "hasHeatTreatment") {
			d.Preprocessing = append(d.Preprocessing, types.Preprocessing{
				Kind:                 types.PreprocessingHeatTreatment,
				AnnealingTemperature: v.value(ht, "annealingTemperature"),
				AnnealingTime:        v.value(ht, "annealingTime"),
			})
		}
		for _, m := range v.values(p, "hasPowderProduction") {
			d.Preprocessing = append(d.Preprocessing, types.Preprocessing{
				Kind: types.PreprocessingPowderProduction, Method: m,
			})
		}
		for _, m := range v.values(p, "hasSubstratePreparation") {
			d.Preprocessing = append(d.Preprocessing, types.Preprocessing{
				Kind: types.PreprocessingSubstratePreparation, Method: m,
			})
		}
	}

	for _, c := range v.nodes(n, "hasCharacterization") {
		d.Characterizations = append(d.Characterizations, types.Characterization{
			Technique: v.value(c, "techniqueName"),
			Parameter: v.value(c, "parameter"),
		})
	}

	for _, r := range v.nodes(n, "hasResult") {
		res := types.Result{
			DepositionEfficiency: v.value(r, "depositionEfficiency"),
			Porosity:             v.value(r, "porosity"),
			PorosityUnit:         v.value(r, "porosityUnit"),
		}
		for _, m := range v.nodes(r, "hasMicrostructureResult") {
			res.Microstructure = append(res.Microstructure, types.MicrostructureResult{
				Feature: v.value(m, "featureDescription"),
				Value:   v.value(m, "featureValue"),
				Unit:    v.value(m, "featureUnit"),
			})
		}
		for _, m := range v.nodes(r, "hasMechanicalProperty") {
			res.Mechanical = append(res.Mechanical, types.MechanicalProperty{
				Name:  v.value(m, "propertyName"),
				Value: v.value(m, "propertyValue"),
				Unit:  v.value(m, "propertyUnit"),
			})
		}
		d.Results = append(d.Results, res)
	}

	for _, p := range v.nodes(n, "hasColdSprayProcess") {
		d.Processes = append(d.Processes, types.ColdSprayProcess{
			CarrierGas:        v.value(p, "carrierGas"),
			GasPressure:       v.quantity(p, "gasPressure", "gasPressureUnit"),
			NozzleTemperature: v.quantity(p, "nozzleTemperature", "nozzleTemperatureUnit"),
			StandOffDistance:  v.quantity(p, "standOffDistance", "standOffDistanceUnit"),
			TraverseVelocity:  v.quantity(p, "traverseVelocity", "traverseVelocityUnit"),
		})
	}

	for _, s := range v.nodes(n, "hasComputationalStudy") {
		d.Studies = append(d.Studies, v.study(s))
	}
	return d
}

func (v vocab) study(s graph.Term) types.ComputationalStudy {
	cs := types.ComputationalStudy{
		ModelMaterials: v.values(s, "modelsMaterial"),
		Software:       v.values(s, "usesSoftware"),
	}
	for _, a := range v.nodes(s, "hasNumericalApproach") {
		if cs.Approach == "" {
			cs.Approach = v.value(a, "approachType")
		}
		if cs.Dimensionality == "" {
			cs.Dimensionality = v.value(a, "dimensionality")
		}
		for _, det := range v.nodes(a, "hasApproachDetail") {
			if cs.ConstitutiveModel == "" {
				cs.ConstitutiveModel = v.value(det, "constitutiveModel")
			}
			if cs.MeshResolution == "" {
				cs.MeshResolution = v.value(det, "meshResolution")
			}
			for _, c := range v.nodes(det, "hasModelingConstant") {
				cs.Constants = append(cs.Constants, types.ModelConstant{
					Name:        v.value(c, "parameterName"),
					Value:       v.value(c, "parameterValue"),
					Unit:        v.value(c, "parameterUnit"),
					SourceTitle: v.value(c, "derivedFromSourceTitle"),
				})
			}
		}
	}
	return cs
}

// Stats summarises a loaded dataset.
type Stats struct {
	Triples      int `json:"triples" yaml:"triples"`
	Papers       int `json:"papers" yaml:"papers"`
	Experimental int `json:"experimental" yaml:"experimental"`
	Numerical    int `json:"numerical" yaml:"numerical"`
}

// ComputeStats counts triples and papers by study type. A paper with
// both a process and a computational study counts in both.
func ComputeStats(g *graph.Graph, namespace string) Stats {
	v := newVocab(g, namespace)
	st := Stats{Triples: g.Len()}
	for _, n := range v.papers() {
		st.Papers++
		if len(v.nodes(n, "hasColdSprayProcess")) > 0 {
			st.Experimental++
		}
		if len(v.nodes(n, "hasComputationalStudy")) > 0 {
			st.Numerical++
		}
	}
	return st
}
