// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"slices"
	"strings"
)

// Builder accumulates the parts of a SELECT query and renders them only
// in String. Variables keep their first-added position.
type Builder struct {
	Prefixes []Prefix
	Distinct bool
	Vars     []string
	Body     []string
	Order    []string
}

// Prefix is one PREFIX declaration.
type Prefix struct {
	Name string
	IRI  string
}

// Prefix declares a namespace prefix.
func (b *Builder) Prefix(name, iri string) *Builder {
	b.Prefixes = append(b.Prefixes, Prefix{Name: name, IRI: iri})
	return b
}

// Select appends output variables, skipping ones already selected.
func (b *Builder) Select(vars ...string) *Builder {
	for _, v := range vars {
		if !slices.Contains(b.Vars, v) {
			b.Vars = append(b.Vars, v)
		}
	}
	return b
}

// Where appends a body clause. Blank clauses are dropped.
func (b *Builder) Where(clause string) *Builder {
	if strings.TrimSpace(clause) != "" {
		b.Body = append(b.Body, strings.Trim(clause, "\n"))
	}
	return b
}

// OrderBy appends an order condition such as "DESC(?Year)".
func (b *Builder) OrderBy(cond string) *Builder {
	b.Order = append(b.Order, cond)
	return b
}

// String renders the query.
func (b *Builder) String() string {
	var sb strings.Builder
	for _, p := range b.Prefixes {
		sb.WriteString("PREFIX " + p.Name + ": <" + p.IRI + ">\n")
	}
	sb.WriteString("SELECT ")
	if b.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(b.Vars) == 0 {
		sb.WriteString("*")
	}
	for i, v := range b.Vars {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("?" + v)
	}
	sb.WriteString("\nWHERE {\n")
	for _, clause := range b.Body {
		sb.WriteString(clause)
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	if len(b.Order) > 0 {
		sb.WriteString("\nORDER BY " + strings.Join(b.Order, " "))
	}
	return sb.String()
}
