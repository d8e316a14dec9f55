// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sparql

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIRI
	tokPName
	tokVar
	tokString
	tokLangTag
	tokNumber
	tokWord
	tokPunct
	tokOp
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of query"
	case tokIRI:
		return "IRI"
	case tokPName:
		return "prefixed name"
	case tokVar:
		return "variable"
	case tokString:
		return "string"
	case tokLangTag:
		return "language tag"
	case tokNumber:
		return "number"
	case tokWord:
		return "keyword"
	default:
		return "symbol"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer splits a query into tokens. It stops at the first invalid
// character and reports it through err.
type lexer struct {
	src  string
	pos  int
	toks []token
	err  *Error
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for l.err == nil {
		l.skipSpace()
		if l.pos >= len(l.src) {
			l.emit(tokEOF, "", l.pos)
			break
		}
		l.next()
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.toks, nil
}

func (l *lexer) emit(kind tokenKind, text string, pos int) {
	l.toks = append(l.toks, token{kind: kind, text: text, pos: pos})
}

func (l *lexer) fail(pos int, format string, args ...any) {
	l.err = newError(l.src, pos, format, args...)
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) peekAt(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) next() {
	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '<':
		if end, ok := l.scanIRI(); ok {
			l.emit(tokIRI, l.src[start+1:end], start)
			l.pos = end + 1
			return
		}
		if l.peekAt(1) == '=' {
			l.emit(tokOp, "<=", start)
			l.pos += 2
			return
		}
		l.emit(tokOp, "<", start)
		l.pos++
	case c == '>':
		if l.peekAt(1) == '=' {
			l.emit(tokOp, ">=", start)
			l.pos += 2
			return
		}
		l.emit(tokOp, ">", start)
		l.pos++
	case c == '?' || c == '$':
		l.pos++
		name := l.scanName()
		if name == "" {
			l.fail(start, "variable name expected")
			return
		}
		l.emit(tokVar, name, start)
	case c == '"' || c == '\'':
		l.scanString(c)
	case c == '@':
		l.pos++
		tag := l.scanWhile(func(r rune) bool { return r == '-' || isAlnum(r) })
		if tag == "" {
			l.fail(start, "language tag expected")
			return
		}
		l.emit(tokLangTag, tag, start)
	case c >= '0' && c <= '9':
		l.scanNumber()
	case c == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9':
		l.scanNumber()
	case c == '^' && l.peekAt(1) == '^':
		l.emit(tokPunct, "^^", start)
		l.pos += 2
	case strings.IndexByte("{}().;,", c) >= 0:
		l.emit(tokPunct, string(c), start)
		l.pos++
	case c == '|' && l.peekAt(1) == '|':
		l.emit(tokOp, "||", start)
		l.pos += 2
	case c == '&' && l.peekAt(1) == '&':
		l.emit(tokOp, "&&", start)
		l.pos += 2
	case c == '!':
		if l.peekAt(1) == '=' {
			l.emit(tokOp, "!=", start)
			l.pos += 2
			return
		}
		l.emit(tokOp, "!", start)
		l.pos++
	case strings.IndexByte("=+-*/", c) >= 0:
		l.emit(tokOp, string(c), start)
		l.pos++
	case c == ':' || c == '_' || isLetter(c) || c >= utf8.RuneSelf:
		l.scanWordOrPName()
	default:
		l.fail(start, "unexpected character %q", c)
	}
}

// scanIRI reports the index of the closing '>' when the text at l.pos is
// an IRIREF. A '<' followed by whitespace is a comparison operator.
func (l *lexer) scanIRI() (int, bool) {
	for i := l.pos + 1; i < len(l.src); i++ {
		switch c := l.src[i]; {
		case c == '>':
			return i, true
		case c <= ' ' || strings.IndexByte("<\"{}|^`\\", c) >= 0:
			return 0, false
		}
	}
	return 0, false
}

func (l *lexer) scanWhile(ok func(rune) bool) string {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !ok(r) {
			break
		}
		l.pos += size
	}
	return l.src[start:l.pos]
}

func (l *lexer) scanName() string {
	return l.scanWhile(func(r rune) bool { return r == '_' || isAlnum(r) })
}

// scanWordOrPName reads a bare keyword or a prefixed name. A prefixed
// name's local part may contain dots but never ends with one.
func (l *lexer) scanWordOrPName() {
	start := l.pos
	prefix := l.scanWhile(func(r rune) bool { return r == '_' || r == '-' || r == '.' || isAlnum(r) })
	if l.pos < len(l.src) && l.src[l.pos] == ':' {
		l.pos++
		l.scanWhile(func(r rune) bool {
			return r == '_' || r == '-' || r == '.' || r == ':' || r == '%' || isAlnum(r)
		})
		for l.pos > start && l.src[l.pos-1] == '.' {
			l.pos--
		}
		l.emit(tokPName, l.src[start:l.pos], start)
		return
	}
	for strings.HasSuffix(prefix, ".") {
		prefix = prefix[:len(prefix)-1]
		l.pos--
	}
	if prefix == "" {
		l.fail(start, "unexpected character %q", l.src[start])
		return
	}
	l.emit(tokWord, prefix, start)
}

func (l *lexer) scanNumber() {
	start := l.pos
	digits := func() {
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
	}
	digits()
	if l.pos < len(l.src) && l.src[l.pos] == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
		l.pos++
		digits()
	}
	if c := l.peekAt(0); c == 'e' || c == 'E' {
		save := l.pos
		l.pos++
		if c := l.peekAt(0); c == '+' || c == '-' {
			l.pos++
		}
		if c := l.peekAt(0); c >= '0' && c <= '9' {
			digits()
		} else {
			l.pos = save
		}
	}
	l.emit(tokNumber, l.src[start:l.pos], start)
}

// scanString reads a quoted literal, long or short, and emits its
// unescaped value.
func (l *lexer) scanString(quote byte) {
	start := l.pos
	long := strings.HasPrefix(l.src[l.pos:], strings.Repeat(string(quote), 3))
	if long {
		l.pos += 3
	} else {
		l.pos++
	}
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			l.fail(start, "unterminated string")
			return
		}
		c := l.src[l.pos]
		switch {
		case long && strings.HasPrefix(l.src[l.pos:], strings.Repeat(string(quote), 3)):
			l.pos += 3
			l.emit(tokString, b.String(), start)
			return
		case !long && c == quote:
			l.pos++
			l.emit(tokString, b.String(), start)
			return
		case !long && (c == '\n' || c == '\r'):
			l.fail(start, "newline in string")
			return
		case c == '\\':
			if l.pos+1 >= len(l.src) {
				l.fail(l.pos, "unterminated escape")
				return
			}
			esc, ok := unescape(l.src[l.pos+1])
			if !ok {
				l.fail(l.pos, "invalid escape \\%c", l.src[l.pos+1])
				return
			}
			b.WriteByte(esc)
			l.pos += 2
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
}

func unescape(c byte) (byte, bool) {
	switch c {
	case 't':
		return '\t', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case '"', '\'', '\\':
		return c, true
	}
	return 0, false
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
