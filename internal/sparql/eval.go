// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sparql

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/pdiddy/coldspray-hub/internal/graph"
)

// solution maps variable names to bound terms. Solutions are never
// modified once built; extending one copies it.
type solution map[string]graph.Term

func (s solution) with(name string, t graph.Term) solution {
	out := maps.Clone(s)
	if out == nil {
		out = solution{}
	}
	out[name] = t
	return out
}

// key identifies the projection of s on cols for DISTINCT.
func (s solution) key(cols []string) string {
	var b strings.Builder
	for _, c := range cols {
		if t, ok := s[c]; ok {
			b.WriteString(t.NTriples())
		}
		b.WriteByte(0)
	}
	return b.String()
}

// evaluator holds per-query state. It evaluates patterns top-down: every
// element is evaluated once per incoming solution with that solution's
// bindings substituted.
type evaluator struct {
	ctx     context.Context
	graph   *graph.Graph
	regexps map[string]*regexpEntry
	steps   int
}

// checkpoint polls the context every few hundred steps.
func (ev *evaluator) checkpoint() error {
	ev.steps++
	if ev.steps%256 != 0 {
		return nil
	}
	return ev.ctx.Err()
}

func (ev *evaluator) group(g *Group, in []solution) ([]solution, error) {
	sols := in
	var err error
	for i, el := range g.elements {
		if sols, err = ev.element(el, sols); err != nil {
			return nil, err
		}
		if sols, err = ev.filters(g, i, sols); err != nil {
			return nil, err
		}
		if len(sols) == 0 {
			return sols, nil
		}
	}
	return ev.filters(g, len(g.elements), sols)
}

func (ev *evaluator) filters(g *Group, at int, sols []solution) ([]solution, error) {
	for _, f := range g.filters {
		if f.at != at {
			continue
		}
		kept := sols[:0:0]
		for _, s := range sols {
			ok, err := evalBool(ev, f.e, s)
			if err != nil && isFatal(err) {
				return nil, err
			}
			if err == nil && ok {
				kept = append(kept, s)
			}
		}
		sols = kept
	}
	return sols, nil
}

func (ev *evaluator) element(el element, in []solution) ([]solution, error) {
	switch el := el.(type) {
	case *triplePattern:
		return ev.triple(el, in)
	case *Group:
		return ev.group(el, in)
	case *optionalPattern:
		var out []solution
		for _, s := range in {
			ext, err := ev.group(el.g, []solution{s})
			if err != nil {
				return nil, err
			}
			if len(ext) == 0 {
				out = append(out, s)
				continue
			}
			out = append(out, ext...)
		}
		return out, nil
	case *unionPattern:
		var out []solution
		for _, s := range in {
			for _, b := range el.branches {
				ext, err := ev.group(b, []solution{s})
				if err != nil {
					return nil, err
				}
				out = append(out, ext...)
			}
		}
		return out, nil
	case *bindPattern:
		out := make([]solution, 0, len(in))
		for _, s := range in {
			if _, bound := s[el.v]; bound {
				out = append(out, s)
				continue
			}
			v, err := el.e.eval(ev, s)
			switch {
			case err == nil:
				out = append(out, s.with(el.v, v))
			case isFatal(err):
				return nil, err
			default:
				out = append(out, s)
			}
		}
		return out, nil
	}
	return in, nil
}

// triple joins each incoming solution with the matches of one pattern.
func (ev *evaluator) triple(tp *triplePattern, in []solution) ([]solution, error) {
	var out []solution
	for _, s := range in {
		if err := ev.checkpoint(); err != nil {
			return nil, err
		}
		sub, sok := resolve(tp.s, s)
		pred, pok := resolve(tp.p, s)
		obj, ook := resolve(tp.o, s)
		for t := range ev.graph.Match(sub, pred, obj) {
			ext, ok := bindTriple(s, tp, t, sok, pok, ook)
			if ok {
				out = append(out, ext)
			}
		}
	}
	return out, nil
}

// resolve returns the constant for a pattern position, or nil when it is
// a variable not yet bound in s. The flag reports whether the position
// was fixed before matching.
func resolve(n node, s solution) (*graph.Term, bool) {
	if n.v == "" {
		return &n.t, true
	}
	if t, ok := s[n.v]; ok {
		return &t, true
	}
	return nil, false
}

// bindTriple extends s with the variables of tp bound by t. The same
// variable occurring twice in tp must match the same term.
func bindTriple(s solution, tp *triplePattern, t graph.Triple, sok, pok, ook bool) (solution, bool) {
	fresh := map[string]graph.Term{}
	for _, pos := range []struct {
		n     node
		fixed bool
		term  graph.Term
	}{{tp.s, sok, t.S}, {tp.p, pok, t.P}, {tp.o, ook, t.O}} {
		if pos.fixed {
			continue
		}
		if prev, ok := fresh[pos.n.v]; ok && prev != pos.term {
			return nil, false
		}
		fresh[pos.n.v] = pos.term
	}
	if len(fresh) == 0 {
		return s, true
	}
	out := maps.Clone(s)
	if out == nil {
		out = solution{}
	}
	maps.Copy(out, fresh)
	return out, true
}

// order sorts solutions stably. Unbound values sort first, then blank
// nodes, IRIs and literals; numeric literals compare by value.
func (ev *evaluator) order(sols []solution, conds []OrderCondition) error {
	type keyed struct {
		s    solution
		keys []graph.Term
	}
	rows := make([]keyed, len(sols))
	for i, s := range sols {
		rows[i].s = s
		rows[i].keys = make([]graph.Term, len(conds))
		for j, c := range conds {
			v, err := c.Expr.eval(ev, s)
			if err != nil {
				if isFatal(err) {
					return err
				}
				continue
			}
			rows[i].keys[j] = v
		}
	}
	slices.SortStableFunc(rows, func(a, b keyed) int {
		for j, c := range conds {
			r := orderTerms(a.keys[j], b.keys[j])
			if c.Desc {
				r = -r
			}
			if r != 0 {
				return r
			}
		}
		return 0
	})
	for i := range rows {
		sols[i] = rows[i].s
	}
	return nil
}

func orderTerms(a, b graph.Term) int {
	if ra, rb := kindRank(a), kindRank(b); ra != rb {
		return ra - rb
	}
	if a.IsZero() {
		return 0
	}
	if c, err := compare(a, b); err == nil {
		return c
	}
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	return strings.Compare(a.NTriples(), b.NTriples())
}

func kindRank(t graph.Term) int {
	switch t.Kind {
	case graph.KindBlank:
		return 1
	case graph.KindIRI:
		return 2
	case graph.KindLiteral:
		return 3
	}
	return 0
}
