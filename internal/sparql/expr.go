// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sparql

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/coldspray-hub/internal/graph"
)

// Expr is a parsed expression.
type Expr interface {
	eval(ev *evaluator, s solution) (graph.Term, error)
	vars(yield func(string))
}

// errType marks an expression that has no value for a solution. It makes a
// FILTER false and leaves a BIND variable unbound; it never aborts a query.
var errType = errors.New("type error")

func typeErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errType, fmt.Sprintf(format, args...))
}

func isFatal(err error) bool { return errors.Is(err, ErrEvaluation) }

var (
	termTrue  = graph.TypedLiteral("true", graph.XSDBoolean)
	termFalse = graph.TypedLiteral("false", graph.XSDBoolean)
)

func boolTerm(b bool) graph.Term {
	if b {
		return termTrue
	}
	return termFalse
}

type varExpr struct{ name string }

func (e *varExpr) eval(_ *evaluator, s solution) (graph.Term, error) {
	t, ok := s[e.name]
	if !ok {
		return graph.Term{}, typeErr("unbound variable ?%s", e.name)
	}
	return t, nil
}

func (e *varExpr) vars(yield func(string)) { yield(e.name) }

type constExpr struct{ term graph.Term }

func (e *constExpr) eval(*evaluator, solution) (graph.Term, error) { return e.term, nil }
func (e *constExpr) vars(func(string))                             {}

type unaryExpr struct {
	op string
	x  Expr
}

func (e *unaryExpr) vars(yield func(string)) { e.x.vars(yield) }

func (e *unaryExpr) eval(ev *evaluator, s solution) (graph.Term, error) {
	v, err := e.x.eval(ev, s)
	if err != nil {
		return graph.Term{}, err
	}
	switch e.op {
	case "!":
		b, err := ebv(v)
		if err != nil {
			return graph.Term{}, err
		}
		return boolTerm(!b), nil
	case "-":
		n, ok := numeric(v)
		if !ok {
			return graph.Term{}, typeErr("cannot negate %s", v.NTriples())
		}
		return numberResult(-n.f, n.kind), nil
	default:
		if _, ok := numeric(v); !ok {
			return graph.Term{}, typeErr("unary plus on %s", v.NTriples())
		}
		return v, nil
	}
}

type binaryExpr struct {
	op   string
	l, r Expr
}

func (e *binaryExpr) vars(yield func(string)) {
	e.l.vars(yield)
	e.r.vars(yield)
}

func (e *binaryExpr) eval(ev *evaluator, s solution) (graph.Term, error) {
	switch e.op {
	case "||", "&&":
		return e.logical(ev, s)
	}
	l, err := e.l.eval(ev, s)
	if err != nil {
		return graph.Term{}, err
	}
	r, err := e.r.eval(ev, s)
	if err != nil {
		return graph.Term{}, err
	}
	switch e.op {
	case "=":
		eq, err := equal(l, r)
		return boolTerm(eq), err
	case "!=":
		eq, err := equal(l, r)
		return boolTerm(!eq), err
	case "<", ">", "<=", ">=":
		c, err := compare(l, r)
		if err != nil {
			return graph.Term{}, err
		}
		switch e.op {
		case "<":
			return boolTerm(c < 0), nil
		case ">":
			return boolTerm(c > 0), nil
		case "<=":
			return boolTerm(c <= 0), nil
		default:
			return boolTerm(c >= 0), nil
		}
	}
	return arithmetic(e.op, l, r)
}

// logical applies the SPARQL three-valued logic: an error on one side is
// absorbed when the other side decides the result.
func (e *binaryExpr) logical(ev *evaluator, s solution) (graph.Term, error) {
	lb, lerr := evalBool(ev, e.l, s)
	if lerr != nil && isFatal(lerr) {
		return graph.Term{}, lerr
	}
	rb, rerr := evalBool(ev, e.r, s)
	if rerr != nil && isFatal(rerr) {
		return graph.Term{}, rerr
	}
	decisive := e.op == "||"
	switch {
	case lerr == nil && lb == decisive, rerr == nil && rb == decisive:
		return boolTerm(decisive), nil
	case lerr != nil:
		return graph.Term{}, lerr
	case rerr != nil:
		return graph.Term{}, rerr
	}
	return boolTerm(!decisive), nil
}

func evalBool(ev *evaluator, e Expr, s solution) (bool, error) {
	v, err := e.eval(ev, s)
	if err != nil {
		return false, err
	}
	return ebv(v)
}

// ebv computes the effective boolean value of a term.
func ebv(t graph.Term) (bool, error) {
	if !t.IsLiteral() {
		return false, typeErr("no boolean value for %s", t.NTriples())
	}
	switch {
	case t.Datatype == graph.XSDBoolean:
		return t.Value == "true" || t.Value == "1", nil
	case t.IsNumeric():
		n, ok := numeric(t)
		if !ok {
			return false, nil
		}
		return n.f != 0 && !math.IsNaN(n.f), nil
	case t.Datatype == "":
		return t.Value != "", nil
	}
	return false, typeErr("no boolean value for %s", t.NTriples())
}

type numKind uint8

const (
	numInteger numKind = iota
	numDecimal
	numDouble
)

type number struct {
	f    float64
	kind numKind
}

func numeric(t graph.Term) (number, bool) {
	if !t.IsNumeric() {
		return number{}, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	if err != nil {
		return number{}, false
	}
	kind := numInteger
	switch t.Datatype {
	case graph.XSDDecimal:
		kind = numDecimal
	case graph.XSDDouble, graph.XSDFloat:
		kind = numDouble
	}
	return number{f: f, kind: kind}, true
}

func numberResult(f float64, kind numKind) graph.Term {
	switch kind {
	case numInteger:
		return graph.TypedLiteral(strconv.FormatFloat(f, 'f', -1, 64), graph.XSDInteger)
	case numDecimal:
		return graph.TypedLiteral(strconv.FormatFloat(f, 'f', -1, 64), graph.XSDDecimal)
	}
	return graph.TypedLiteral(strconv.FormatFloat(f, 'g', -1, 64), graph.XSDDouble)
}

func arithmetic(op string, l, r graph.Term) (graph.Term, error) {
	a, ok1 := numeric(l)
	b, ok2 := numeric(r)
	if !ok1 || !ok2 {
		return graph.Term{}, typeErr("%s needs numeric operands", op)
	}
	kind := max(a.kind, b.kind)
	switch op {
	case "+":
		return numberResult(a.f+b.f, kind), nil
	case "-":
		return numberResult(a.f-b.f, kind), nil
	case "*":
		return numberResult(a.f*b.f, kind), nil
	}
	if b.f == 0 && kind != numDouble {
		return graph.Term{}, typeErr("division by zero")
	}
	return numberResult(a.f/b.f, max(kind, numDecimal)), nil
}

// stringLike reports whether t is a simple or language-tagged literal.
func stringLike(t graph.Term) bool {
	return t.IsLiteral() && t.Datatype == ""
}

func equal(l, r graph.Term) (bool, error) {
	if a, ok := numeric(l); ok {
		if b, ok := numeric(r); ok {
			return a.f == b.f, nil
		}
	}
	return l == r, nil
}

// compare orders two terms of the same comparable type.
func compare(l, r graph.Term) (int, error) {
	if a, ok := numeric(l); ok {
		if b, ok := numeric(r); ok {
			return cmpFloat(a.f, b.f), nil
		}
	}
	if stringLike(l) && stringLike(r) && l.Lang == r.Lang {
		return strings.Compare(l.Value, r.Value), nil
	}
	if l.IsLiteral() && r.IsLiteral() && l.Datatype == r.Datatype && l.Datatype != "" {
		return strings.Compare(l.Value, r.Value), nil
	}
	return 0, typeErr("cannot compare %s and %s", l.NTriples(), r.NTriples())
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type arity struct{ min, max int }

// builtins lists the supported functions. max -1 means variadic.
var builtins = map[string]arity{
	"BOUND":     {1, 1},
	"COALESCE":  {1, -1},
	"CONCAT":    {0, -1},
	"CONTAINS":  {2, 2},
	"DATATYPE":  {1, 1},
	"IF":        {3, 3},
	"ISBLANK":   {1, 1},
	"ISIRI":     {1, 1},
	"ISLITERAL": {1, 1},
	"ISNUMERIC": {1, 1},
	"ISURI":     {1, 1},
	"LANG":      {1, 1},
	"LCASE":     {1, 1},
	"REGEX":     {2, 3},
	"SAMETERM":  {2, 2},
	"STR":       {1, 1},
	"STRENDS":   {2, 2},
	"STRLEN":    {1, 1},
	"STRSTARTS": {2, 2},
	"UCASE":     {1, 1},
}

func isBuiltin(name string) bool {
	_, ok := builtins[strings.ToUpper(name)]
	return ok
}

type callExpr struct {
	fn   string
	args []Expr
}

func (e *callExpr) vars(yield func(string)) {
	for _, a := range e.args {
		a.vars(yield)
	}
}

func (e *callExpr) eval(ev *evaluator, s solution) (graph.Term, error) {
	switch e.fn {
	case "BOUND":
		_, ok := s[e.args[0].(*varExpr).name]
		return boolTerm(ok), nil
	case "IF":
		c, err := evalBool(ev, e.args[0], s)
		if err != nil {
			return graph.Term{}, err
		}
		if c {
			return e.args[1].eval(ev, s)
		}
		return e.args[2].eval(ev, s)
	case "COALESCE":
		for _, a := range e.args {
			v, err := a.eval(ev, s)
			if err == nil {
				return v, nil
			}
			if isFatal(err) {
				return graph.Term{}, err
			}
		}
		return graph.Term{}, typeErr("COALESCE: no bound argument")
	}

	args := make([]graph.Term, len(e.args))
	for i, a := range e.args {
		v, err := a.eval(ev, s)
		if err != nil {
			return graph.Term{}, err
		}
		args[i] = v
	}

	switch e.fn {
	case "STR":
		if args[0].IsBlank() {
			return graph.Term{}, typeErr("STR of blank node")
		}
		return graph.Literal(args[0].Value), nil
	case "LANG":
		if !args[0].IsLiteral() {
			return graph.Term{}, typeErr("LANG of non-literal")
		}
		return graph.Literal(args[0].Lang), nil
	case "DATATYPE":
		t := args[0]
		switch {
		case !t.IsLiteral():
			return graph.Term{}, typeErr("DATATYPE of non-literal")
		case t.Lang != "":
			return graph.IRI(graph.RDFLang), nil
		case t.Datatype == "":
			return graph.IRI(graph.XSDString), nil
		}
		return graph.IRI(t.Datatype), nil
	case "CONCAT":
		var b strings.Builder
		for _, a := range args {
			if !a.IsLiteral() {
				return graph.Term{}, typeErr("CONCAT of non-literal %s", a.NTriples())
			}
			b.WriteString(a.Value)
		}
		return graph.Literal(b.String()), nil
	case "LCASE", "UCASE":
		t := args[0]
		if !stringLike(t) {
			return graph.Term{}, typeErr("%s of non-string", e.fn)
		}
		if e.fn == "LCASE" {
			t.Value = strings.ToLower(t.Value)
		} else {
			t.Value = strings.ToUpper(t.Value)
		}
		return t, nil
	case "STRLEN":
		if !args[0].IsLiteral() {
			return graph.Term{}, typeErr("STRLEN of non-literal")
		}
		return graph.TypedLiteral(strconv.Itoa(utf8.RuneCountInString(args[0].Value)), graph.XSDInteger), nil
	case "CONTAINS", "STRSTARTS", "STRENDS":
		if !args[0].IsLiteral() || !args[1].IsLiteral() {
			return graph.Term{}, typeErr("%s of non-literal", e.fn)
		}
		a, b := args[0].Value, args[1].Value
		switch e.fn {
		case "CONTAINS":
			return boolTerm(strings.Contains(a, b)), nil
		case "STRSTARTS":
			return boolTerm(strings.HasPrefix(a, b)), nil
		}
		return boolTerm(strings.HasSuffix(a, b)), nil
	case "REGEX":
		return ev.regex(args)
	case "ISIRI", "ISURI":
		return boolTerm(args[0].IsIRI()), nil
	case "ISBLANK":
		return boolTerm(args[0].IsBlank()), nil
	case "ISLITERAL":
		return boolTerm(args[0].IsLiteral()), nil
	case "ISNUMERIC":
		_, ok := numeric(args[0])
		return boolTerm(ok), nil
	case "SAMETERM":
		return boolTerm(args[0] == args[1]), nil
	}
	return graph.Term{}, fmt.Errorf("%w: unsupported function %s", ErrEvaluation, e.fn)
}

type regexpEntry struct {
	re  *regexp.Regexp
	err error
}

// regex evaluates REGEX(text, pattern [, flags]). Compiled patterns are
// cached for the lifetime of one query. An invalid pattern aborts the
// query.
func (ev *evaluator) regex(args []graph.Term) (graph.Term, error) {
	text, pattern := args[0], args[1]
	if !text.IsLiteral() {
		return graph.Term{}, typeErr("REGEX of non-literal %s", text.NTriples())
	}
	if !pattern.IsLiteral() {
		return graph.Term{}, typeErr("REGEX pattern must be a literal")
	}
	flags := ""
	if len(args) == 3 {
		if !args[2].IsLiteral() {
			return graph.Term{}, typeErr("REGEX flags must be a literal")
		}
		flags = args[2].Value
	}

	key := flags + "\x00" + pattern.Value
	entry, ok := ev.regexps[key]
	if !ok {
		entry = compileRegexp(pattern.Value, flags)
		ev.regexps[key] = entry
	}
	if entry.err != nil {
		return graph.Term{}, entry.err
	}
	return boolTerm(entry.re.MatchString(text.Value)), nil
}

func compileRegexp(pattern, flags string) *regexpEntry {
	var mods strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			mods.WriteRune(f)
		default:
			return &regexpEntry{err: fmt.Errorf("%w: unsupported regex flag %q", ErrEvaluation, f)}
		}
	}
	expr := pattern
	if mods.Len() > 0 {
		expr = "(?" + mods.String() + ")" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return &regexpEntry{err: fmt.Errorf("%w: invalid regular expression %q: %v", ErrEvaluation, pattern, err)}
	}
	return &regexpEntry{re: re}
}
