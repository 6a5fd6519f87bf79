// Package parser turns SQL text into the AST consumed by the engine.
//
// What: A lexer and recursive-descent parser for the dialect mimicsql
// emulates: SELECT with joins/ordering/pagination, INSERT with RETURNING,
// DELETE, DROP, and positional $n placeholders. UPDATE and CREATE TABLE are
// parsed as well so the engine can reject them with a precise error.
// How: A single-pass rune scanner produces identifier, keyword, number,
// string, placeholder, and symbol tokens; the parser walks them with a
// one-token lookahead. Placeholders keep their raw text because index
// resolution happens at evaluation time.
// Why: The engine never inspects SQL text; this package's AST is the entire
// contract between the two, so parsing stays isolated here.
package parser

import (
	"strings"
	"unicode"
)

type tokenType int

const (
	tEOF tokenType = iota
	tIdent
	tNumber
	tString
	tParam
	tSymbol
	tKeyword
)

type token struct {
	Typ tokenType
	Val string
	Pos int
}

type lexer struct {
	s   string
	pos int
}

func newLexer(s string) *lexer { return &lexer{s: s} }

func (lx *lexer) peek() rune {
	if lx.pos >= len(lx.s) {
		return 0
	}
	return rune(lx.s[lx.pos])
}

func (lx *lexer) peekN(n int) rune {
	p := lx.pos + n
	if p >= len(lx.s) {
		return 0
	}
	return rune(lx.s[p])
}

func (lx *lexer) next() rune {
	if lx.pos >= len(lx.s) {
		return 0
	}
	r := rune(lx.s[lx.pos])
	lx.pos++
	return r
}

func (lx *lexer) skipWS() {
	for {
		if lx.pos >= len(lx.s) {
			return
		}
		r := rune(lx.s[lx.pos])
		if unicode.IsSpace(r) {
			lx.pos++
			continue
		}
		if r == '-' && lx.peekN(1) == '-' {
			lx.pos += 2
			for lx.pos < len(lx.s) && lx.s[lx.pos] != '\n' {
				lx.pos++
			}
			continue
		}
		if r == '/' && lx.peekN(1) == '*' {
			lx.pos += 2
			for lx.pos < len(lx.s) {
				if lx.s[lx.pos] == '*' && lx.peekN(1) == '/' {
					lx.pos += 2
					break
				}
				lx.pos++
			}
			continue
		}
		return
	}
}

func (lx *lexer) nextToken() token {
	lx.skipWS()
	start := lx.pos
	if start >= len(lx.s) {
		return token{Typ: tEOF, Pos: start}
	}
	r := lx.peek()
	if r == '\'' {
		return lx.tokenizeString(start)
	}
	if r == '"' {
		return lx.tokenizeQuotedIdent(start)
	}
	if r == '$' {
		return lx.tokenizeParam(start)
	}
	if unicode.IsDigit(r) {
		return lx.tokenizeNumber(start)
	}
	if unicode.IsLetter(r) || r == '_' {
		return lx.tokenizeIdentOrKeyword(start)
	}
	return lx.tokenizeSymbol(start)
}

func (lx *lexer) tokenizeString(start int) token {
	lx.next() // opening quote
	var val strings.Builder
	for lx.pos < len(lx.s) {
		ch := lx.next()
		if ch == '\'' {
			if lx.peek() == '\'' {
				lx.next()
				val.WriteRune('\'')
				continue
			}
			break
		}
		val.WriteRune(ch)
	}
	return token{Typ: tString, Val: val.String(), Pos: start}
}

// tokenizeQuotedIdent handles SQL-style double-quoted identifiers, preserving
// case and allowing embedded double-quotes escaped by doubling ("").
func (lx *lexer) tokenizeQuotedIdent(start int) token {
	lx.next() // opening double-quote
	var val strings.Builder
	for lx.pos < len(lx.s) {
		ch := lx.next()
		if ch == '"' {
			if lx.peek() == '"' {
				lx.next()
				val.WriteRune('"')
				continue
			}
			break
		}
		val.WriteRune(ch)
	}
	return token{Typ: tIdent, Val: val.String(), Pos: start}
}

// tokenizeParam reads a $-placeholder. The text after the dollar sign is
// kept verbatim, digits or not; the evaluator decides what it means.
func (lx *lexer) tokenizeParam(start int) token {
	var val strings.Builder
	val.WriteRune(lx.next()) // '$'
	for lx.pos < len(lx.s) {
		ch := lx.peek()
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			val.WriteRune(ch)
			lx.pos++
		} else {
			break
		}
	}
	return token{Typ: tParam, Val: val.String(), Pos: start}
}

func (lx *lexer) tokenizeNumber(start int) token {
	var val strings.Builder
	dot := false
	for lx.pos < len(lx.s) {
		ch := lx.peek()
		if unicode.IsDigit(ch) || (!dot && ch == '.') {
			if ch == '.' {
				dot = true
			}
			val.WriteRune(ch)
			lx.pos++
		} else {
			break
		}
	}
	return token{Typ: tNumber, Val: val.String(), Pos: start}
}

func (lx *lexer) tokenizeIdentOrKeyword(start int) token {
	var val strings.Builder
	for lx.pos < len(lx.s) {
		ch := lx.peek()
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			val.WriteRune(ch)
			lx.pos++
		} else {
			break
		}
	}
	up := strings.ToUpper(val.String())
	if isKeyword(up) {
		return token{Typ: tKeyword, Val: up, Pos: start}
	}
	return token{Typ: tIdent, Val: val.String(), Pos: start}
}

func (lx *lexer) tokenizeSymbol(start int) token {
	r := lx.peek()
	switch r {
	case '(', ')', ',', '*', '.', ';':
		lx.next()
		return token{Typ: tSymbol, Val: string(r), Pos: start}
	case '=', '<', '>', '!':
		a := lx.next()
		b := lx.peek()
		if (a == '<' && (b == '=' || b == '>')) ||
			(a == '>' && b == '=') ||
			(a == '=' && (b == '<' || b == '>')) ||
			(a == '!' && b == '=') {
			lx.next()
			return token{Typ: tSymbol, Val: string(a) + string(b), Pos: start}
		}
		return token{Typ: tSymbol, Val: string(a), Pos: start}
	default:
		lx.next()
		return token{Typ: tSymbol, Val: string(r), Pos: start}
	}
}

func isKeyword(up string) bool {
	switch up {
	case "SELECT", "FROM", "WHERE",
		"ORDER", "BY", "ASC", "DESC", "LIMIT", "OFFSET",
		"JOIN", "INNER", "LEFT", "RIGHT", "CROSS", "FULL", "OUTER", "ON", "AS",
		"INSERT", "INTO", "VALUES", "RETURNING",
		"DELETE", "DROP", "TABLE",
		"UPDATE", "SET", "CREATE",
		"AND", "OR", "NOT", "LIKE", "BETWEEN",
		"NULL", "TRUE", "FALSE":
		return true
	default:
		return false
	}
}
