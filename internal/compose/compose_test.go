// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coldspray-hub/internal/fragment"
	"github.com/pdiddy/coldspray-hub/internal/sparql"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

func compose(t *testing.T, sel Selection) Query {
	t.Helper()
	q, err := New("").Compose(sel)
	require.NoError(t, err)
	_, err = sparql.Parse(q.Text)
	require.NoError(t, err, q.Text)
	return q
}

func TestDefaultSelectionIsIdentityOnly(t *testing.T) {
	q := compose(t, DefaultSelection())

	want := `PREFIX cs: <http://www.semanticweb.org/coldspray#>
SELECT DISTINCT ?Year ?DOI ?Title
WHERE {
?paper a cs:ColdSprayPaper ;
    cs:hasDOI ?nDOI ;
    cs:hasMetadata ?metadata .
BIND(CONCAT("https://doi.org/", STR(?nDOI)) AS ?DOI)
?metadata a cs:Metadata ;
    cs:hasTitle ?Title ;
    cs:hasPublicationYear ?Year .
}
ORDER BY DESC(?Year)`
	assert.Equal(t, want, q.Text)
	assert.Equal(t, []string{"Year", "DOI", "Title"}, q.Vars)
	assert.Equal(t, []string{"Year", "DOI", "Title"}, q.IdentityColumns)
	assert.Empty(t, q.Fragments)
}

func TestAnyPaperTypeIgnoresStudyFilters(t *testing.T) {
	sel := DefaultSelection().
		With(fragment.Material, "Carbides", "").
		With(fragment.ModelMaterial, "Carbides", "")
	q := compose(t, sel)
	assert.Equal(t, compose(t, DefaultSelection()).Text, q.Text)
}

func TestSentinelEqualsAbsent(t *testing.T) {
	for _, pt := range []types.PaperType{types.PaperExperimental, types.PaperNumerical} {
		for _, cat := range fragment.Categories() {
			if cat.PaperType() != pt {
				continue
			}
			t.Run(string(pt)+"/"+cat.String(), func(t *testing.T) {
				base := DefaultSelection()
				base.PaperType = pt
				for _, c := range fragment.Categories() {
					base = base.With(c, fragment.Options(c)[1], "")
				}

				withSentinel := base.With(cat, fragment.Options(cat)[0], "")
				absent := base.With(cat, "", "")
				delete(absent.Filters, cat)

				a := compose(t, withSentinel)
				b := compose(t, absent)
				assert.Equal(t, a.Text, b.Text)
				assert.Equal(t, a.Vars, b.Vars)
				for _, v := range fragment.Vars(cat) {
					assert.NotContains(t, a.Vars, v)
				}
			})
		}
	}
}

func TestKeywordVerbatimAndIsolated(t *testing.T) {
	base := DefaultSelection()
	base.PaperType = types.PaperExperimental
	base = base.
		With(fragment.Preprocessing, "Heat Treatment", "").
		With(fragment.Mechanical, "Hardness", "")

	canned := compose(t, base.With(fragment.Material, "Copper and Copper Alloys", ""))
	keyword := compose(t, base.With(fragment.Material, fragment.OptionKeyword, "Inconel 6[0-9]{2}"))

	assert.Contains(t, keyword.Text, `regex(?Composition, "Inconel 6[0-9]{2}")`)
	require.Len(t, keyword.Fragments, 3)
	require.Len(t, canned.Fragments, 3)
	for i := 1; i < 3; i++ {
		assert.Equal(t, canned.Fragments[i], keyword.Fragments[i])
	}
	assert.Equal(t, canned.Vars, keyword.Vars)
}

func TestPaperTypeExclusivity(t *testing.T) {
	sel := DefaultSelection()
	for _, c := range fragment.Categories() {
		sel = sel.With(c, fragment.Options(c)[1], "")
	}

	sel.PaperType = types.PaperExperimental
	exp := compose(t, sel)
	sel.PaperType = types.PaperNumerical
	num := compose(t, sel)

	for _, c := range fragment.Categories() {
		for _, v := range fragment.Vars(c) {
			if c.PaperType() == types.PaperExperimental {
				assert.Contains(t, exp.Vars, v)
				assert.NotContains(t, num.Vars, v)
			} else {
				assert.Contains(t, num.Vars, v)
				assert.NotContains(t, exp.Vars, v)
			}
		}
	}
	assert.Contains(t, exp.Text, "cs:hasColdSprayProcess ?y")
	assert.Contains(t, num.Text, "cs:hasComputationalStudy ?x")
}

func TestVarsFollowDeclarationOrder(t *testing.T) {
	sel := DefaultSelection()
	sel.PaperType = types.PaperExperimental
	sel.Author = "Smith"
	sel = sel.
		With(fragment.Mechanical, "Hardness", "").
		With(fragment.Material, "Carbides", "").
		With(fragment.ColdSprayProcess, fragment.OptionAll, "").
		With(fragment.Characterization, "X-ray Diffraction", "")

	q := compose(t, sel)
	assert.Equal(t, []string{
		"Year", "DOI", "Title",
		"Composition", "Material_Condition",
		"Process_Gas", "Gas_Pressure", "Gas_Temperature", "StandOff_Distance", "Particle_or_Impact_Velocity",
		"Characterization_Method",
		"Mechanical_Property",
		"Author",
	}, q.Vars)
}

func TestNumericalDefaults(t *testing.T) {
	sel := DefaultSelection()
	sel.PaperType = types.PaperNumerical
	q := compose(t, sel)
	assert.Equal(t, []string{
		"Year", "DOI", "Title",
		"Numerical_Approach", "Constitutive_Model", "Dimensionality", "Software", "Mesh_Resolution",
	}, q.Vars)
	assert.Equal(t, 5, strings.Count(q.Text, "OPTIONAL {"))
}

func TestAuthorFilter(t *testing.T) {
	sel := DefaultSelection()
	sel.Author = "  Lovelace "
	q := compose(t, sel)
	assert.Contains(t, q.Text, `FILTER (regex(?Author, "Lovelace", "i"))`)
	assert.Equal(t, []string{"Year", "DOI", "Title", "Author"}, q.IdentityColumns)
	assert.Equal(t, "Author", q.Vars[len(q.Vars)-1])
}

func TestDOIFilter(t *testing.T) {
	sel := DefaultSelection()
	sel.DOI = "10.1016/j.surfcoat"
	q := compose(t, sel)
	assert.Contains(t, q.Text, `FILTER (REGEX(STR(?DOI), "10.1016/j.surfcoat"))`)
	assert.Equal(t, []string{"Year", "DOI", "Title"}, q.IdentityColumns)
}

func TestInvalidSelection(t *testing.T) {
	c := New("")
	_, err := c.Compose(Selection{PaperType: "Theoretical"})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	sel := DefaultSelection().With(fragment.Material, "Unobtainium", "")
	sel.PaperType = types.PaperExperimental
	_, err = c.Compose(sel)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.ErrorIs(t, err, fragment.ErrUnknownOption)
}

func TestCustomNamespace(t *testing.T) {
	q, err := New("http://example.org/cs#").Compose(DefaultSelection())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(q.Text, "PREFIX cs: <http://example.org/cs#>\n"))
}

func TestSelectionJSON(t *testing.T) {
	raw := `{"paper_type":"Experimental","author":"Smith","filters":{"material":{"option":"Keyword Search","keyword":"Al"}}}`
	var sel Selection
	require.NoError(t, json.Unmarshal([]byte(raw), &sel))
	assert.Equal(t, types.PaperExperimental, sel.PaperType)
	assert.Equal(t, Choice{Option: fragment.OptionKeyword, Keyword: "Al"}, sel.Filters[fragment.Material])

	out, err := json.Marshal(sel)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestBuilder(t *testing.T) {
	b := (&Builder{}).Select("a", "b", "a").Where("?a ?p ?b .").Where("  \n").OrderBy("?a")
	assert.Equal(t, []string{"a", "b"}, b.Vars)
	assert.Equal(t, "SELECT ?a ?b\nWHERE {\n?a ?p ?b .\n}\nORDER BY ?a", b.String())

	assert.Equal(t, "SELECT *\nWHERE {\n}", (&Builder{}).String())
}
