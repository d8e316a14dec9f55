// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sparql

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/coldspray-hub/internal/graph"
)

// Query is a parsed SELECT query.
type Query struct {
	Prefixes map[string]string
	Distinct bool

	// Vars is the projection in SELECT order. It is empty for SELECT *.
	Vars  []string
	Where *Group
	Order []OrderCondition

	// Limit is -1 when the query has no LIMIT.
	Limit  int
	Offset int
}

// OrderCondition is one ORDER BY key.
type OrderCondition struct {
	Expr Expr
	Desc bool
}

// Group is a group graph pattern. Filters apply to the whole group; each
// one is scheduled after the first element that binds all of its
// variables in every solution.
type Group struct {
	elements []element
	filters  []filter
}

type element interface{ isElement() }

// node is a triple pattern position: a variable when v is set, else a
// constant term. Blank node labels in queries are variables named "_:x".
type node struct {
	v string
	t graph.Term
}

type triplePattern struct{ s, p, o node }

type optionalPattern struct{ g *Group }

type unionPattern struct{ branches []*Group }

type bindPattern struct {
	e Expr
	v string
}

func (*triplePattern) isElement()   {}
func (*optionalPattern) isElement() {}
func (*unionPattern) isElement()    {}
func (*bindPattern) isElement()     {}
func (*Group) isElement()           {}

type filter struct {
	e  Expr
	at int
}

// Parse parses a query using only the prefixes it declares.
func Parse(text string) (*Query, error) {
	return parseWithPrefixes(text, nil)
}

func parseWithPrefixes(text string, defaults map[string]string) (q *Query, err error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{src: text, toks: toks, prefixes: maps.Clone(defaults)}
	if p.prefixes == nil {
		p.prefixes = map[string]string{}
	}
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			q, err = nil, perr
		}
	}()
	return p.query(), nil
}

type parser struct {
	src      string
	toks     []token
	i        int
	prefixes map[string]string
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) advance() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) failAt(t token, format string, args ...any) {
	panic(newError(p.src, t.pos, format, args...))
}

func (p *parser) unexpected(t token, want string) {
	if t.kind == tokEOF {
		p.failAt(t, "unexpected end of query, expected %s", want)
	}
	p.failAt(t, "unexpected %s %q, expected %s", t.kind, t.text, want)
}

func (p *parser) isWord(t token, w string) bool {
	return t.kind == tokWord && strings.EqualFold(t.text, w)
}

func (p *parser) isPunct(t token, s string) bool {
	return t.kind == tokPunct && t.text == s
}

func (p *parser) expectPunct(s string) token {
	t := p.advance()
	if !p.isPunct(t, s) {
		p.unexpected(t, "'"+s+"'")
	}
	return t
}

func (p *parser) expectWord(w string) {
	if t := p.advance(); !p.isWord(t, w) {
		p.unexpected(t, w)
	}
}

func (p *parser) query() *Query {
	q := &Query{Limit: -1}
	p.prologue()

	p.expectWord("SELECT")
	if t := p.peek(); p.isWord(t, "DISTINCT") || p.isWord(t, "REDUCED") {
		p.advance()
		q.Distinct = true
	}
	if t := p.peek(); t.kind == tokOp && t.text == "*" {
		p.advance()
	} else {
		for p.peek().kind == tokVar {
			v := p.advance().text
			if !slices.Contains(q.Vars, v) {
				q.Vars = append(q.Vars, v)
			}
		}
		if len(q.Vars) == 0 {
			p.unexpected(p.peek(), "variable or '*'")
		}
	}

	if p.isWord(p.peek(), "WHERE") {
		p.advance()
	}
	q.Where = p.group()
	p.modifiers(q)

	if t := p.peek(); t.kind != tokEOF {
		p.unexpected(t, "end of query")
	}
	q.Prefixes = p.prefixes
	return q
}

func (p *parser) prologue() {
	for {
		t := p.peek()
		switch {
		case p.isWord(t, "PREFIX"):
			p.advance()
			name := p.advance()
			if name.kind != tokPName || !strings.HasSuffix(name.text, ":") {
				p.unexpected(name, "prefix name")
			}
			iri := p.advance()
			if iri.kind != tokIRI {
				p.unexpected(iri, "IRI")
			}
			p.prefixes[strings.TrimSuffix(name.text, ":")] = iri.text
		case p.isWord(t, "BASE"):
			p.advance()
			if iri := p.advance(); iri.kind != tokIRI {
				p.unexpected(iri, "IRI")
			}
		default:
			return
		}
	}
}

func (p *parser) modifiers(q *Query) {
	if p.isWord(p.peek(), "ORDER") {
		p.advance()
		p.expectWord("BY")
		for {
			t := p.peek()
			switch {
			case p.isWord(t, "ASC"), p.isWord(t, "DESC"):
				p.advance()
				p.expectPunct("(")
				e := p.expr()
				p.expectPunct(")")
				q.Order = append(q.Order, OrderCondition{Expr: e, Desc: p.isWord(t, "DESC")})
				continue
			case t.kind == tokVar:
				p.advance()
				q.Order = append(q.Order, OrderCondition{Expr: &varExpr{name: t.text}})
				continue
			case p.isPunct(t, "("):
				p.advance()
				e := p.expr()
				p.expectPunct(")")
				q.Order = append(q.Order, OrderCondition{Expr: e})
				continue
			case t.kind == tokWord && isBuiltin(t.text):
				q.Order = append(q.Order, OrderCondition{Expr: p.primary()})
				continue
			}
			break
		}
		if len(q.Order) == 0 {
			p.unexpected(p.peek(), "order condition")
		}
	}
	for {
		t := p.peek()
		switch {
		case p.isWord(t, "LIMIT"):
			p.advance()
			q.Limit = p.integer()
		case p.isWord(t, "OFFSET"):
			p.advance()
			q.Offset = p.integer()
		default:
			return
		}
	}
}

func (p *parser) integer() int {
	t := p.advance()
	n, err := strconv.Atoi(t.text)
	if t.kind != tokNumber || err != nil || n < 0 {
		p.unexpected(t, "non-negative integer")
	}
	return n
}

// group parses '{' ... '}'.
func (p *parser) group() *Group {
	p.expectPunct("{")
	g := &Group{}
	for {
		t := p.peek()
		switch {
		case p.isPunct(t, "}"):
			p.advance()
			g.schedule()
			return g
		case p.isPunct(t, "."):
			p.advance()
		case p.isWord(t, "FILTER"):
			p.advance()
			g.filters = append(g.filters, filter{e: p.constraint()})
		case p.isWord(t, "OPTIONAL"):
			p.advance()
			g.elements = append(g.elements, &optionalPattern{g: p.group()})
		case p.isWord(t, "BIND"):
			p.advance()
			p.expectPunct("(")
			e := p.expr()
			p.expectWord("AS")
			v := p.advance()
			if v.kind != tokVar {
				p.unexpected(v, "variable")
			}
			p.expectPunct(")")
			g.elements = append(g.elements, &bindPattern{e: e, v: v.text})
		case p.isPunct(t, "{"):
			sub := p.group()
			if !p.isWord(p.peek(), "UNION") {
				g.elements = append(g.elements, sub)
				continue
			}
			u := &unionPattern{branches: []*Group{sub}}
			for p.isWord(p.peek(), "UNION") {
				p.advance()
				u.branches = append(u.branches, p.group())
			}
			g.elements = append(g.elements, u)
		case t.kind == tokEOF:
			p.unexpected(t, "'}'")
		default:
			p.triples(g)
		}
	}
}

// constraint parses the argument of FILTER: a bracketted expression or a
// built-in call.
func (p *parser) constraint() Expr {
	t := p.peek()
	if p.isPunct(t, "(") {
		p.advance()
		e := p.expr()
		p.expectPunct(")")
		return e
	}
	if t.kind == tokWord && isBuiltin(t.text) {
		return p.primary()
	}
	p.unexpected(t, "'(' or function call")
	return nil
}

// triples parses one subject with its property list.
func (p *parser) triples(g *Group) {
	subj := p.term(false)
	for {
		verb := p.verb()
		for {
			obj := p.term(false)
			g.elements = append(g.elements, &triplePattern{s: subj, p: verb, o: obj})
			if !p.isPunct(p.peek(), ",") {
				break
			}
			p.advance()
		}
		if !p.isPunct(p.peek(), ";") {
			return
		}
		for p.isPunct(p.peek(), ";") {
			p.advance()
		}
		if !p.startsVerb(p.peek()) {
			return
		}
	}
}

func (p *parser) startsVerb(t token) bool {
	switch t.kind {
	case tokVar, tokIRI, tokPName:
		return true
	}
	return t.kind == tokWord && t.text == "a"
}

func (p *parser) verb() node {
	t := p.peek()
	if t.kind == tokWord && t.text == "a" {
		p.advance()
		return node{t: graph.IRI(graph.RDFType)}
	}
	if !p.startsVerb(t) {
		p.unexpected(t, "predicate")
	}
	return p.term(true)
}

// term parses a variable, IRI, prefixed name, blank node label or literal.
func (p *parser) term(predicate bool) node {
	t := p.advance()
	switch t.kind {
	case tokVar:
		return node{v: t.text}
	case tokIRI:
		return node{t: graph.IRI(t.text)}
	case tokPName:
		if strings.HasPrefix(t.text, "_:") && !predicate {
			return node{v: t.text}
		}
		return node{t: graph.IRI(p.expand(t))}
	case tokString:
		return node{t: p.literalSuffix(t.text)}
	case tokNumber:
		return node{t: numberTerm(t.text)}
	case tokOp:
		if (t.text == "-" || t.text == "+") && p.peek().kind == tokNumber {
			n := p.advance()
			if t.text == "-" {
				return node{t: numberTerm("-" + n.text)}
			}
			return node{t: numberTerm(n.text)}
		}
	case tokWord:
		if b, ok := booleanTerm(t.text); ok {
			return node{t: b}
		}
	}
	p.unexpected(t, "term")
	return node{}
}

func (p *parser) expand(t token) string {
	prefix, local, _ := strings.Cut(t.text, ":")
	ns, ok := p.prefixes[prefix]
	if !ok {
		p.failAt(t, "undefined prefix %q", prefix)
	}
	return ns + local
}

// literalSuffix attaches an optional language tag or datatype.
func (p *parser) literalSuffix(v string) graph.Term {
	t := p.peek()
	switch {
	case t.kind == tokLangTag:
		p.advance()
		return graph.LangLiteral(v, t.text)
	case p.isPunct(t, "^^"):
		p.advance()
		dt := p.advance()
		switch dt.kind {
		case tokIRI:
			return graph.TypedLiteral(v, dt.text)
		case tokPName:
			return graph.TypedLiteral(v, p.expand(dt))
		}
		p.unexpected(dt, "datatype IRI")
	}
	return graph.Literal(v)
}

func numberTerm(text string) graph.Term {
	switch {
	case strings.ContainsAny(text, "eE"):
		return graph.TypedLiteral(text, graph.XSDDouble)
	case strings.Contains(text, "."):
		return graph.TypedLiteral(text, graph.XSDDecimal)
	default:
		return graph.TypedLiteral(text, graph.XSDInteger)
	}
}

func booleanTerm(word string) (graph.Term, bool) {
	switch strings.ToLower(word) {
	case "true":
		return graph.TypedLiteral("true", graph.XSDBoolean), true
	case "false":
		return graph.TypedLiteral("false", graph.XSDBoolean), true
	}
	return graph.Term{}, false
}

// Expressions, lowest precedence first.

func (p *parser) expr() Expr {
	left := p.and()
	for p.isOp(p.peek(), "||") {
		p.advance()
		left = &binaryExpr{op: "||", l: left, r: p.and()}
	}
	return left
}

func (p *parser) and() Expr {
	left := p.relational()
	for p.isOp(p.peek(), "&&") {
		p.advance()
		left = &binaryExpr{op: "&&", l: left, r: p.relational()}
	}
	return left
}

func (p *parser) relational() Expr {
	left := p.additive()
	if t := p.peek(); t.kind == tokOp {
		switch t.text {
		case "=", "!=", "<", ">", "<=", ">=":
			p.advance()
			return &binaryExpr{op: t.text, l: left, r: p.additive()}
		}
	}
	return left
}

func (p *parser) additive() Expr {
	left := p.multiplicative()
	for {
		t := p.peek()
		if !p.isOp(t, "+") && !p.isOp(t, "-") {
			return left
		}
		p.advance()
		left = &binaryExpr{op: t.text, l: left, r: p.multiplicative()}
	}
}

func (p *parser) multiplicative() Expr {
	left := p.unary()
	for {
		t := p.peek()
		if !p.isOp(t, "*") && !p.isOp(t, "/") {
			return left
		}
		p.advance()
		left = &binaryExpr{op: t.text, l: left, r: p.unary()}
	}
}

func (p *parser) unary() Expr {
	t := p.peek()
	if t.kind == tokOp && (t.text == "!" || t.text == "-" || t.text == "+") {
		p.advance()
		return &unaryExpr{op: t.text, x: p.unary()}
	}
	return p.primary()
}

func (p *parser) isOp(t token, op string) bool {
	return t.kind == tokOp && t.text == op
}

func (p *parser) primary() Expr {
	t := p.advance()
	switch t.kind {
	case tokPunct:
		if t.text == "(" {
			e := p.expr()
			p.expectPunct(")")
			return e
		}
	case tokVar:
		return &varExpr{name: t.text}
	case tokString:
		return &constExpr{term: p.literalSuffix(t.text)}
	case tokNumber:
		return &constExpr{term: numberTerm(t.text)}
	case tokIRI:
		return &constExpr{term: graph.IRI(t.text)}
	case tokPName:
		return &constExpr{term: graph.IRI(p.expand(t))}
	case tokWord:
		if b, ok := booleanTerm(t.text); ok {
			return &constExpr{term: b}
		}
		if isBuiltin(t.text) {
			return p.call(t)
		}
		p.failAt(t, "unknown function %q", t.text)
	}
	p.unexpected(t, "expression")
	return nil
}

func (p *parser) call(name token) Expr {
	fn := strings.ToUpper(name.text)
	p.expectPunct("(")
	var args []Expr
	if !p.isPunct(p.peek(), ")") {
		for {
			args = append(args, p.expr())
			if !p.isPunct(p.peek(), ",") {
				break
			}
			p.advance()
		}
	}
	p.expectPunct(")")

	ar := builtins[fn]
	if len(args) < ar.min || (ar.max >= 0 && len(args) > ar.max) {
		p.failAt(name, "%s: wrong number of arguments (%d)", fn, len(args))
	}
	if fn == "BOUND" {
		if _, ok := args[0].(*varExpr); !ok {
			p.failAt(name, "BOUND requires a variable")
		}
	}
	return &callExpr{fn: fn, args: args}
}

// schedule assigns each filter to the earliest element after which all
// of its variables are bound in every solution. Filters whose variables
// may stay unbound run after the last element.
func (g *Group) schedule() {
	certain := make([]map[string]struct{}, len(g.elements))
	acc := map[string]struct{}{}
	for i, el := range g.elements {
		for v := range certainVars(el) {
			acc[v] = struct{}{}
		}
		certain[i] = maps.Clone(acc)
	}
	for fi := range g.filters {
		f := &g.filters[fi]
		f.at = len(g.elements)
		var vars []string
		f.e.vars(func(v string) { vars = append(vars, v) })
		if len(vars) == 0 {
			continue
		}
	search:
		for i := range g.elements {
			for _, v := range vars {
				if _, ok := certain[i][v]; !ok {
					continue search
				}
			}
			f.at = i
			break
		}
	}
}

// certainVars returns the variables an element binds in every solution
// it produces.
func certainVars(el element) map[string]struct{} {
	out := map[string]struct{}{}
	switch el := el.(type) {
	case *triplePattern:
		for _, n := range []node{el.s, el.p, el.o} {
			if n.v != "" {
				out[n.v] = struct{}{}
			}
		}
	case *Group:
		for _, sub := range el.elements {
			maps.Copy(out, certainVars(sub))
		}
	case *unionPattern:
		for i, b := range el.branches {
			vars := certainVars(b)
			if i == 0 {
				out = vars
				continue
			}
			for v := range out {
				if _, ok := vars[v]; !ok {
					delete(out, v)
				}
			}
		}
	}
	return out
}

// allVars lists the variables of the group in order of first appearance,
// excluding blank node labels.
func (g *Group) allVars() []string {
	var out []string
	add := func(v string) {
		if v != "" && !strings.HasPrefix(v, "_:") && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	var walk func(*Group)
	walk = func(g *Group) {
		for _, el := range g.elements {
			switch el := el.(type) {
			case *triplePattern:
				add(el.s.v)
				add(el.p.v)
				add(el.o.v)
			case *optionalPattern:
				walk(el.g)
			case *unionPattern:
				for _, b := range el.branches {
					walk(b)
				}
			case *bindPattern:
				add(el.v)
			case *Group:
				walk(el)
			}
		}
	}
	walk(g)
	return out
}
