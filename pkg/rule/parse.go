// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kraklabs/leviathan/pkg/fact"
)

// ParseFilter parses a filter expression string into its tree form.
//
// Grammar, loosest binding first:
//
//	expr    := and ("||" and)*
//	and     := unary ("&&" unary)*
//	unary   := "!" unary | cmp
//	cmp     := term (("==" | "!=" | "<" | "<=" | ">" | ">=") term)?
//	term    := "(" expr ")" | literal | ident args? path*
//
// Identifiers followed by "(" are builtin calls; dotted identifiers are
// field paths; true/false are boolean literals. Strings take single or
// double quotes.
func ParseFilter(src string) (Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, fmt.Errorf("unexpected %q after expression", p.peek().text)
	}
	return e, nil
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokOp    // && || ! == != < <= > >=
	tokPunct // ( ) , .
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '(' || c == ')' || c == ',' || c == '.':
			toks = append(toks, token{kind: tokPunct, text: string(c), pos: i})
			i++

		case c == '&' || c == '|':
			if i+1 >= len(src) || src[i+1] != c {
				return nil, fmt.Errorf("position %d: lone %q", i, string(c))
			}
			toks = append(toks, token{kind: tokOp, text: src[i : i+2], pos: i})
			i += 2

		case c == '=':
			if i+1 >= len(src) || src[i+1] != '=' {
				return nil, fmt.Errorf("position %d: assignment is not an operator, use ==", i)
			}
			toks = append(toks, token{kind: tokOp, text: "==", pos: i})
			i += 2

		case c == '!' || c == '<' || c == '>':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{kind: tokOp, text: src[i : i+2], pos: i})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
				i++
			}

		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			var sb strings.Builder
			for j < len(src) && src[j] != quote {
				if src[j] == '\\' && j+1 < len(src) {
					j++
				}
				sb.WriteByte(src[j])
				j++
			}
			if j >= len(src) {
				return nil, fmt.Errorf("position %d: unterminated string", i)
			}
			toks = append(toks, token{kind: tokString, text: sb.String(), pos: i})
			i = j + 1

		case c >= '0' && c <= '9' || c == '-' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9':
			j := i + 1
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				// A dot followed by a letter starts a path, not a fraction.
				if src[j] == '.' && j+1 < len(src) && !unicode.IsDigit(rune(src[j+1])) {
					break
				}
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:j], pos: i})
			i = j

		case c == '_' || unicode.IsLetter(rune(c)):
			j := i + 1
			for j < len(src) && (src[j] == '_' || unicode.IsLetter(rune(src[j])) || unicode.IsDigit(rune(src[j]))) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j], pos: i})
			i = j

		default:
			return nil, fmt.Errorf("position %d: unexpected character %q", i, string(c))
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) next() token { t := p.toks[p.pos]; p.pos++; return t }
func (p *parser) eof() bool   { return p.peek().kind == tokEOF }

func (p *parser) accept(kind tokenKind, text string) bool {
	if p.peek().kind == kind && p.peek().text == text {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(kind tokenKind, text string) error {
	if !p.accept(kind, text) {
		return fmt.Errorf("position %d: expected %q, found %q", p.peek().pos, text, p.peek().text)
	}
	return nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOp, "||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: BoolOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOp, "&&") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: BoolAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.accept(tokOp, "!") {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Inner: inner}, nil
	}
	return p.parseCmp()
}

var cmpOps = map[string]CmpOp{
	"==": CmpEq, "!=": CmpNeq,
	"<": CmpLt, "<=": CmpLte,
	">": CmpGt, ">=": CmpGte,
}

func (p *parser) parseCmp() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokOp {
		if op, ok := cmpOps[p.peek().text]; ok {
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			return &CompareExpr{Op: op, Left: left, Right: right}, nil
		}
	}
	return left, nil
}

func (p *parser) parseTerm() (Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokPunct:
		if t.text == "(" {
			p.next()
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokPunct, ")"); err != nil {
				return nil, err
			}
			return inner, nil
		}

	case tokString:
		p.next()
		return &LiteralExpr{Value: fact.StringValue(t.text)}, nil

	case tokNumber:
		p.next()
		if strings.Contains(t.text, ".") {
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return nil, fmt.Errorf("position %d: bad number %q", t.pos, t.text)
			}
			return &LiteralExpr{Value: fact.FloatValue(f)}, nil
		}
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("position %d: bad number %q", t.pos, t.text)
		}
		return &LiteralExpr{Value: fact.IntValue(n)}, nil

	case tokIdent:
		p.next()
		switch t.text {
		case "true":
			return &LiteralExpr{Value: fact.BoolValue(true)}, nil
		case "false":
			return &LiteralExpr{Value: fact.BoolValue(false)}, nil
		}
		if p.accept(tokPunct, "(") {
			return p.parseCallArgs(t.text)
		}
		return p.parsePath(t.text)
	}
	return nil, fmt.Errorf("position %d: unexpected %q", t.pos, t.text)
}

func (p *parser) parseCallArgs(name string) (Expr, error) {
	call := &CallExpr{Func: name}
	if p.accept(tokPunct, ")") {
		return call, nil
	}
	for {
		arg, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.accept(tokPunct, ",") {
			continue
		}
		if err := p.expect(tokPunct, ")"); err != nil {
			return nil, err
		}
		return call, nil
	}
}

func (p *parser) parsePath(root string) (Expr, error) {
	path := &PathExpr{Var: root}
	for p.accept(tokPunct, ".") {
		t := p.next()
		if t.kind != tokIdent {
			return nil, fmt.Errorf("position %d: expected field name, found %q", t.pos, t.text)
		}
		path.Fields = append(path.Fields, t.text)
	}
	return path, nil
}
