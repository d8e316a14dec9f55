// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fragment holds the static library of query fragments, one per
// filter category and option of the database browser.
//
// A fragment declares the output variables it binds and the graph pattern
// that binds them. The registry is built once at package initialisation
// and never changes; Lookup returns copies.
package fragment

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pdiddy/coldspray-hub/pkg/types"
)

// ErrUnknownOption is returned by Lookup for a category or option that is
// not in the registry.
var ErrUnknownOption = errors.New("unknown filter option")

// Category is a filter of the browser. The order of the constants is the
// UI declaration order, which fixes the order of output variables.
type Category int

const (
	Material Category = iota
	Preprocessing
	ColdSprayProcess
	Characterization
	Microstructure
	Mechanical
	ModelMaterial
	NumericalApproach
	ConstitutiveModel
	Dimensionality
	Software
	MeshResolution
	ModelConstants
)

var categoryNames = [...]string{
	Material:          "material",
	Preprocessing:     "preprocessing",
	ColdSprayProcess:  "cold_spray_process",
	Characterization:  "characterization",
	Microstructure:    "microstructure",
	Mechanical:        "mechanical",
	ModelMaterial:     "model_material",
	NumericalApproach: "numerical_approach",
	ConstitutiveModel: "constitutive_model",
	Dimensionality:    "dimensionality",
	Software:          "software",
	MeshResolution:    "mesh_resolution",
	ModelConstants:    "model_constants",
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory returns the category with the given name.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: category %q", ErrUnknownOption, name)
}

func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(categoryNames) {
		return nil, fmt.Errorf("%w: category %d", ErrUnknownOption, int(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// PaperType reports which study type the category belongs to.
func (c Category) PaperType() types.PaperType {
	if c <= Mechanical {
		return types.PaperExperimental
	}
	return types.PaperNumerical
}

// Checkbox reports whether the category is a checkbox in the UI rather
// than a drop-down. Unchecked is the None option.
func (c Category) Checkbox() bool {
	switch c {
	case ColdSprayProcess, NumericalApproach, ConstitutiveModel,
		Dimensionality, Software, MeshResolution, ModelConstants:
		return true
	}
	return false
}

// Option names shared by several categories.
const (
	OptionAny     = "any"
	OptionNone    = "None"
	OptionAll     = "all"
	OptionKeyword = "Keyword Search"
)

// IsSentinel reports whether option selects nothing.
func IsSentinel(option string) bool {
	return option == "" || option == OptionAny || option == OptionNone
}

// Fragment is the contribution of one selected option to a query.
type Fragment struct {
	Category Category
	Option   string

	// Vars lists the output variables bound by Pattern, in SELECT order.
	Vars []string

	// Pattern is group graph pattern text without enclosing braces.
	Pattern string
}

// Active reports whether the fragment contributes anything.
func (f Fragment) Active() bool {
	return len(f.Vars) > 0 || f.Pattern != ""
}

// KeywordTemplate is a fragment whose pattern takes a user keyword. The
// canned options of a category are instances of the same template.
type KeywordTemplate struct {
	Category Category
	Option   string
	Vars     []string
	pattern  string
}

const keywordMarker = "{{keyword}}"

// Render substitutes keyword into the template. The keyword is escaped for
// a SPARQL string literal and is otherwise inserted verbatim, so regex
// syntax in it keeps its regex meaning.
func (k KeywordTemplate) Render(keyword string) Fragment {
	return Fragment{
		Category: k.Category,
		Option:   k.Option,
		Vars:     slices.Clone(k.Vars),
		Pattern:  strings.ReplaceAll(k.pattern, keywordMarker, EscapeLiteral(keyword)),
	}
}

// EscapeLiteral escapes s for use inside a double-quoted SPARQL string.
func EscapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
)

// Lookup returns the fragment for an option of a category. Sentinel
// options return an inactive fragment. keyword is used only by keyword
// options; for categories whose free-text box means "show all" when left
// blank, a blank keyword selects the all option.
func Lookup(cat Category, option, keyword string) (Fragment, error) {
	if _, ok := optionOrder[cat]; !ok {
		return Fragment{}, fmt.Errorf("%w: category %s", ErrUnknownOption, cat)
	}
	if IsSentinel(option) {
		return Fragment{Category: cat, Option: option}, nil
	}
	if option == OptionKeyword && strings.TrimSpace(keyword) == "" && blankMeansAll[cat] {
		option = OptionAll
	}

	e, ok := registry[key{cat, option}]
	switch {
	case !ok:
		return Fragment{}, fmt.Errorf("%w: %s option %q", ErrUnknownOption, cat, option)
	case e.template != nil && option == OptionKeyword:
		return e.template.Render(keyword), nil
	}
	f := *e.fragment
	f.Vars = slices.Clone(f.Vars)
	return f, nil
}

// Template returns the keyword template of a category, if it has one.
func Template(cat Category) (KeywordTemplate, bool) {
	e, ok := registry[key{cat, OptionKeyword}]
	if !ok || e.template == nil {
		return KeywordTemplate{}, false
	}
	t := *e.template
	t.Vars = slices.Clone(t.Vars)
	return t, true
}

// Options lists the option names of a category in UI order, the inactive
// option first.
func Options(cat Category) []string {
	return slices.Clone(optionOrder[cat])
}

// Vars returns the output variables a category binds when active.
func Vars(cat Category) []string {
	return slices.Clone(categoryVars[cat])
}
