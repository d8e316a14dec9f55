// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose turns a browser Selection into one SPARQL SELECT query.
//
// The query always selects the paper identity (Year, DOI, Title) and
// orders by descending year. Each active filter contributes its fragment
// from the fragment library; only fragments of the selected paper type
// are injected.
package compose

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/coldspray-hub/internal/fragment"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

// ErrInvalidSelection is returned for selections that name an unknown
// paper type or filter option.
var ErrInvalidSelection = errors.New("invalid selection")

// Identity variables, in SELECT order.
const (
	VarYear   = "Year"
	VarDOI    = "DOI"
	VarTitle  = "Title"
	VarAuthor = "Author"
)

const doiResolver = "https://doi.org/"

// Choice is the state of one filter widget: the selected option and, for
// keyword options, the free text.
type Choice struct {
	Option  string `json:"option" yaml:"option"`
	Keyword string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
}

// Selection is the complete browser state for one query. It is passed
// explicitly per request; nothing is remembered between compositions.
type Selection struct {
	PaperType types.PaperType              `json:"paper_type" yaml:"paper_type"`
	Author    string                       `json:"author,omitempty" yaml:"author,omitempty"`
	DOI       string                       `json:"doi,omitempty" yaml:"doi,omitempty"`
	Filters   map[fragment.Category]Choice `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// DefaultSelection returns the initial browser state: any paper type,
// every drop-down on its inactive option, and the numerical-study
// checkboxes checked except model constants.
func DefaultSelection() Selection {
	return Selection{
		PaperType: types.PaperAny,
		Filters: map[fragment.Category]Choice{
			fragment.Material:          {Option: fragment.OptionAny},
			fragment.Preprocessing:     {Option: fragment.OptionAny},
			fragment.ColdSprayProcess:  {Option: fragment.OptionNone},
			fragment.Characterization:  {Option: fragment.OptionAny},
			fragment.Microstructure:    {Option: fragment.OptionNone},
			fragment.Mechanical:        {Option: fragment.OptionNone},
			fragment.ModelMaterial:     {Option: fragment.OptionAny},
			fragment.NumericalApproach: {Option: fragment.OptionAll},
			fragment.ConstitutiveModel: {Option: fragment.OptionAll},
			fragment.Dimensionality:    {Option: fragment.OptionAll},
			fragment.Software:          {Option: fragment.OptionAll},
			fragment.MeshResolution:    {Option: fragment.OptionAll},
			fragment.ModelConstants:    {Option: fragment.OptionNone},
		},
	}
}

// With returns a copy of s with one filter changed.
func (s Selection) With(cat fragment.Category, option, keyword string) Selection {
	filters := make(map[fragment.Category]Choice, len(s.Filters)+1)
	for k, v := range s.Filters {
		filters[k] = v
	}
	filters[cat] = Choice{Option: option, Keyword: keyword}
	s.Filters = filters
	return s
}

// AuthorActive reports whether the author filter contributes to the query.
func (s Selection) AuthorActive() bool {
	return strings.TrimSpace(s.Author) != ""
}

// Query is a composed query with the metadata the presenter needs.
type Query struct {
	Text string `json:"text"`

	// Vars is the SELECT list in order.
	Vars []string `json:"vars"`

	// IdentityColumns is Year, DOI, Title, plus Author when the author
	// filter is active.
	IdentityColumns []string `json:"identity_columns"`

	// Fragments lists the active fragments in injection order.
	Fragments []fragment.Fragment `json:"-"`
}

// Composer renders selections against one vocabulary namespace.
type Composer struct {
	namespace string
}

// New returns a composer whose queries bind "cs:" to namespace.
func New(namespace string) *Composer {
	if namespace == "" {
		namespace = types.DefaultNamespace
	}
	return &Composer{namespace: namespace}
}

// Compose builds the query for sel.
func (c *Composer) Compose(sel Selection) (Query, error) {
	paperType := sel.PaperType
	if paperType == "" {
		paperType = types.PaperAny
	}
	switch paperType {
	case types.PaperAny, types.PaperExperimental, types.PaperNumerical:
	default:
		return Query{}, fmt.Errorf("%w: paper type %q", ErrInvalidSelection, sel.PaperType)
	}

	var active []fragment.Fragment
	if paperType != types.PaperAny {
		for _, cat := range fragment.Categories() {
			if cat.PaperType() != paperType {
				continue
			}
			choice, ok := sel.Filters[cat]
			if !ok {
				continue
			}
			f, err := fragment.Lookup(cat, choice.Option, choice.Keyword)
			if err != nil {
				return Query{}, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
			}
			if f.Active() {
				active = append(active, f)
			}
		}
	}

	b := &Builder{Distinct: true}
	b.Prefix("cs", c.namespace)
	b.Select(VarYear, VarDOI, VarTitle)
	for _, f := range active {
		b.Select(f.Vars...)
	}

	b.Where(identityPattern)
	if doi := strings.TrimSpace(sel.DOI); doi != "" {
		b.Where(`FILTER (REGEX(STR(?DOI), "` + fragment.EscapeLiteral(doi) + `"))`)
	}
	identity := []string{VarYear, VarDOI, VarTitle}
	if sel.AuthorActive() {
		b.Select(VarAuthor)
		b.Where(authorPattern(strings.TrimSpace(sel.Author)))
		identity = append(identity, VarAuthor)
	}
	b.Where(guardPattern(paperType))
	for _, f := range active {
		b.Where(f.Pattern)
	}
	b.OrderBy("DESC(?" + VarYear + ")")

	return Query{
		Text:            b.String(),
		Vars:            b.Vars,
		IdentityColumns: identity,
		Fragments:       active,
	}, nil
}

const identityPattern = `?paper a cs:ColdSprayPaper ;
    cs:hasDOI ?nDOI ;
    cs:hasMetadata ?metadata .
BIND(CONCAT("` + doiResolver + `", STR(?nDOI)) AS ?DOI)
?metadata a cs:Metadata ;
    cs:hasTitle ?Title ;
    cs:hasPublicationYear ?Year .`

func authorPattern(author string) string {
	return `?metadata a cs:Metadata ;
    cs:hasAuthor ?Author .
FILTER (regex(?Author, "` + fragment.EscapeLiteral(author) + `", "i"))`
}

// guardPattern restricts the papers to the selected study type.
func guardPattern(pt types.PaperType) string {
	switch pt {
	case types.PaperExperimental:
		return "?paper a cs:ColdSprayPaper ;\n    cs:hasColdSprayProcess ?y ."
	case types.PaperNumerical:
		return "?paper a cs:ColdSprayPaper ;\n    cs:hasComputationalStudy ?x ."
	}
	return ""
}
