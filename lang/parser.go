// Copyright 2014 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lang

import (
	"errors"
	"fmt"
	"strconv"
)

var errTooManyErrors = errors.New("too many errors")

// ParseError is a single syntax error with the source range it applies to.
type ParseError struct {
	Pos Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// parser is a recursive-descent, operator-precedence parser. It
// accumulates at most one error: the first syntax error aborts parsing.
type parser struct {
	lex *lexer
	tok Token
	err error

	// comment is the documentation comment attached to tok, if any -- set
	// by next() when tok immediately follows a buffered comment block with
	// no blank line between them.
	comment []string
}

// Parse parses one source file. On success errs is empty and file is
// non-nil; on failure file is nil -- the parser stops at the first error --
// and errs has exactly one entry.
func Parse(filename, src string) (file *File, errs []error) {
	p := &parser{lex: newLexer(filename, src)}
	defer func() {
		if r := recover(); r != nil {
			if r == errTooManyErrors {
				errs = []error{p.err}
				file = nil
				return
			}
			panic(r)
		}
	}()

	p.next()
	block := p.parseStatements(false)
	p.expect(EOF)

	return &File{Name: filename, Block: block}, nil
}

func (p *parser) fail(pos Position, format string, args ...interface{}) {
	p.err = &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
	panic(errTooManyErrors)
}

// next advances to the next raw token, recording in p.comment any comment
// that immediately preceded it: tok must begin on the line right after the
// buffered comment block ended, with no blank line between -- anything
// else (including the NEWLINE that ends the comment's own line, which is
// left alone so the real token after it still gets a chance) breaks the
// association and the buffered comment is dropped unused.
func (p *parser) next() {
	tok, err := p.lex.Next()
	if err != nil {
		pe := err.(*ParseError)
		p.fail(pe.Pos, "%s", pe.Msg)
	}
	p.comment = nil
	switch tok.Kind {
	case NEWLINE, EOF:
		// Not a declaration -- leave any pending comment buffered for
		// whatever real token follows.
	default:
		if endLine, ok := p.lex.pendingCommentInfo(); ok {
			if tok.Pos.Line == endLine+1 {
				p.comment = p.lex.TakeComment()
			} else {
				p.lex.DropComment()
			}
		}
	}
	p.tok = tok
}

// skipNewlines consumes any run of NEWLINE tokens, used at points where
// blank lines are insignificant (inside bracketed expressions).
func (p *parser) skipNewlines() {
	for p.tok.Kind == NEWLINE {
		p.next()
	}
}

func (p *parser) expect(k Kind) Token {
	if p.tok.Kind != k {
		p.fail(p.tok.Pos, "expected %s, found %s", k, describe(p.tok))
	}
	tok := p.tok
	p.next()
	return tok
}

func describe(t Token) string {
	if t.Kind == IDENT || t.Kind == INT || t.Kind == STRING {
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	}
	return t.Kind.String()
}

// parseStatements parses statements until a terminating RBRACE (if
// inBlock) or EOF, skipping blank lines between statements.
func (p *parser) parseStatements(inBlock bool) *Block {
	b := &Block{HasBraces: inBlock}
	for {
		p.skipNewlines()
		if inBlock && p.tok.Kind == RBRACE {
			break
		}
		if p.tok.Kind == EOF {
			break
		}
		stmt := p.parseStatement()
		b.Stmts = append(b.Stmts, stmt)
		p.endStatement()
	}
	return b
}

// endStatement requires that a statement be followed by a newline, the
// start of the next statement's closing brace, or EOF -- i.e. statements
// are newline-terminated, not semicolon-terminated.
func (p *parser) endStatement() {
	if p.tok.Kind == NEWLINE || p.tok.Kind == EOF || p.tok.Kind == RBRACE {
		return
	}
	p.fail(p.tok.Pos, "expected end of statement, found %s", describe(p.tok))
}

func (p *parser) parseStatement() Statement {
	switch p.tok.Kind {
	case IF:
		return p.parseCondition()
	case IDENT:
		return p.parseIdentStatement()
	default:
		p.fail(p.tok.Pos, "expected assignment, function call, or if statement, found %s", describe(p.tok))
		return nil
	}
}

func (p *parser) parseIdentStatement() Statement {
	name := p.tok.Text
	pos := p.tok.Pos
	comment := p.comment
	p.next()

	switch p.tok.Kind {
	case ASSIGN, PLUSEQ, MINUSEQ:
		op := p.tok.Kind
		p.next()
		p.skipNewlines()
		value := p.parseExpression()
		return &Assignment{Name: name, NamePos: pos, Op: op, Value: value, Comment: comment}
	case LPAREN:
		if name == "foreach" {
			return p.parseForEach(pos)
		}
		call := p.parseCallTail(name, pos)
		return call
	default:
		p.fail(p.tok.Pos, "expected \"=\", \"+=\", \"-=\", or \"(\", found %s", describe(p.tok))
		return nil
	}
}

// parseForEach parses `foreach(iter, list) { body }`. foreach is not a
// reserved word -- it is recognized here by name the same way a target
// type or template invocation is -- so the iteration variable is required
// to be a bare identifier rather than a general expression.
func (p *parser) parseForEach(forPos Position) *ForEach {
	p.expect(LPAREN)
	p.skipNewlines()
	if p.tok.Kind != IDENT {
		p.fail(p.tok.Pos, "expected foreach loop variable, found %s", describe(p.tok))
	}
	iter := p.tok.Text
	iterPos := p.tok.Pos
	p.next()
	p.skipNewlines()
	p.expect(COMMA)
	p.skipNewlines()
	list := p.parseExpression()
	p.skipNewlines()
	p.expect(RPAREN)
	body := p.parseBlock()
	return &ForEach{ForPos: forPos, Iter: iter, IterPos: iterPos, List: list, Body: body}
}

func (p *parser) parseCallTail(name string, namePos Position) *Call {
	p.expect(LPAREN)
	p.skipNewlines()
	var args []Expression
	for p.tok.Kind != RPAREN {
		args = append(args, p.parseExpression())
		p.skipNewlines()
		if p.tok.Kind == COMMA {
			p.next()
			p.skipNewlines()
			continue
		}
		break
	}
	p.skipNewlines()
	rparen := p.expect(RPAREN)

	call := &Call{Name: name, NamePos: namePos, Args: args, EndPos: rparen.Pos}
	// A call may optionally be followed, on the same or a continued line,
	// by a brace block (template/target bodies).
	if p.tok.Kind == LBRACE {
		call.Block = p.parseBlock()
		call.EndPos = call.Block.End()
	}
	return call
}

func (p *parser) parseBlock() *Block {
	lbrace := p.expect(LBRACE)
	block := p.parseStatements(true)
	block.LBrace = lbrace.Pos
	rbrace := p.expect(RBRACE)
	block.RBrace = rbrace.Pos
	return block
}

func (p *parser) parseCondition() *Condition {
	ifPos := p.tok.Pos
	p.expect(IF)
	p.expect(LPAREN)
	p.skipNewlines()
	cond := p.parseExpression()
	p.skipNewlines()
	p.expect(RPAREN)
	then := p.parseBlock()

	c := &Condition{IfPos: ifPos, Cond: cond, Then: then}

	// `else` may appear on the same line as the closing brace, so peek
	// past at most the tokens of this statement without consuming a
	// newline that would otherwise terminate it.
	if p.tok.Kind == ELSE {
		p.next()
		if p.tok.Kind == IF {
			c.Else = p.parseCondition()
		} else {
			c.Else = p.parseBlock()
		}
	}
	return c
}

// Expression grammar, lowest to highest precedence:
//   || && == != < <= > >= + - unary! primary

func (p *parser) parseExpression() Expression {
	return p.parseOr()
}

func (p *parser) parseOr() Expression {
	x := p.parseAnd()
	for p.tok.Kind == OROR {
		op := p.tok
		p.next()
		p.skipNewlines()
		y := p.parseAnd()
		x = &BinaryExpr{X: x, Op: op.Kind, OpPos: op.Pos, Y: y}
	}
	return x
}

func (p *parser) parseAnd() Expression {
	x := p.parseEquality()
	for p.tok.Kind == ANDAND {
		op := p.tok
		p.next()
		p.skipNewlines()
		y := p.parseEquality()
		x = &BinaryExpr{X: x, Op: op.Kind, OpPos: op.Pos, Y: y}
	}
	return x
}

func (p *parser) parseEquality() Expression {
	x := p.parseComparison()
	for p.tok.Kind == EQ || p.tok.Kind == NE {
		op := p.tok
		p.next()
		p.skipNewlines()
		y := p.parseComparison()
		x = &BinaryExpr{X: x, Op: op.Kind, OpPos: op.Pos, Y: y}
	}
	return x
}

func (p *parser) parseComparison() Expression {
	x := p.parseAdditive()
	for p.tok.Kind == LT || p.tok.Kind == LE || p.tok.Kind == GT || p.tok.Kind == GE {
		op := p.tok
		p.next()
		p.skipNewlines()
		y := p.parseAdditive()
		x = &BinaryExpr{X: x, Op: op.Kind, OpPos: op.Pos, Y: y}
	}
	return x
}

func (p *parser) parseAdditive() Expression {
	x := p.parseUnary()
	for p.tok.Kind == PLUS || p.tok.Kind == MINUS {
		op := p.tok
		p.next()
		p.skipNewlines()
		y := p.parseUnary()
		x = &BinaryExpr{X: x, Op: op.Kind, OpPos: op.Pos, Y: y}
	}
	return x
}

func (p *parser) parseUnary() Expression {
	if p.tok.Kind == NOT {
		op := p.tok
		p.next()
		x := p.parseUnary()
		return &UnaryExpr{OpPos: op.Pos, Op: NOT, X: x}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() Expression {
	x := p.parsePrimary()
	for {
		switch p.tok.Kind {
		case DOT:
			p.next()
			fieldPos := p.tok.Pos
			field := p.expect(IDENT).Text
			x = &AccessorExpr{X: x, Field: field, FieldPos: fieldPos}
		case LBRACK:
			p.next()
			p.skipNewlines()
			idx := p.parseExpression()
			p.skipNewlines()
			rbrack := p.expect(RBRACK)
			x = &IndexExpr{X: x, Index: idx, RBrack: rbrack.Pos}
		default:
			return x
		}
	}
}

func (p *parser) parsePrimary() Expression {
	switch p.tok.Kind {
	case INT:
		return p.parseIntLit()
	case TRUE, FALSE:
		return p.parseBoolLit()
	case STRING:
		return p.parseStringLit()
	case IDENT:
		name := p.tok.Text
		pos := p.tok.Pos
		p.next()
		if p.tok.Kind == LPAREN {
			return p.parseCallTail(name, pos)
		}
		return &Ident{Name: name, NamePos: pos}
	case LBRACK:
		return p.parseListExpr()
	case LPAREN:
		p.next()
		p.skipNewlines()
		x := p.parseExpression()
		p.skipNewlines()
		p.expect(RPAREN)
		return x
	default:
		p.fail(p.tok.Pos, "expected expression, found %s", describe(p.tok))
		return nil
	}
}

func (p *parser) parseIntLit() Expression {
	tok := p.tok
	p.next()
	v, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		p.fail(tok.Pos, "invalid integer literal %q", tok.Text)
	}
	end := Position{Filename: tok.Pos.Filename, Line: tok.Pos.Line, Column: tok.Pos.Column + len(tok.Text), Offset: tok.Pos.Offset + len(tok.Text)}
	return &Literal{StartPos: tok.Pos, EndPos: end, Int: &v}
}

func (p *parser) parseBoolLit() Expression {
	tok := p.tok
	p.next()
	v := tok.Kind == TRUE
	end := Position{Filename: tok.Pos.Filename, Line: tok.Pos.Line, Column: tok.Pos.Column + len(tok.Text), Offset: tok.Pos.Offset + len(tok.Text)}
	return &Literal{StartPos: tok.Pos, EndPos: end, Bool: &v}
}

func (p *parser) parseListExpr() Expression {
	lbrack := p.expect(LBRACK)
	p.skipNewlines()
	var elems []Expression
	for p.tok.Kind != RBRACK {
		elems = append(elems, p.parseExpression())
		p.skipNewlines()
		if p.tok.Kind == COMMA {
			p.next()
			p.skipNewlines()
			continue
		}
		break
	}
	p.skipNewlines()
	rbrack := p.expect(RBRACK)
	return &ListExpr{LBrack: lbrack.Pos, RBrack: rbrack.Pos, Elems: elems}
}

// parseStringLit splits the raw string body into literal chunks and
// embedded expressions per the $var / ${expr} interpolation grammar, then
// recursively re-lexes each embedded expression with a fresh parser.
func (p *parser) parseStringLit() Expression {
	tok := p.tok
	p.next()
	chunks, err := splitInterpolation(tok.Text, tok.Pos)
	if err != nil {
		pe := err.(*ParseError)
		p.fail(pe.Pos, "%s", pe.Msg)
	}
	end := Position{Filename: tok.Pos.Filename, Line: tok.Pos.Line, Column: tok.Pos.Column + len(tok.Text) + 2, Offset: tok.Pos.Offset + len(tok.Text) + 2}
	return &StringLit{StartPos: tok.Pos, EndPos: end, Chunks: chunks}
}

func splitInterpolation(body string, basePos Position) ([]StringChunk, error) {
	var chunks []StringChunk
	var lit []byte
	runes := []rune(body)
	i := 0
	flush := func() {
		if len(lit) > 0 {
			chunks = append(chunks, StringChunk{Literal: unescape(string(lit))})
			lit = nil
		}
	}
	for i < len(runes) {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) {
			lit = append(lit, []byte(string(runes[i:i+2]))...)
			i += 2
			continue
		}
		if r == '$' && i+1 < len(runes) {
			if runes[i+1] == '{' {
				j := i + 2
				depth := 1
				for j < len(runes) && depth > 0 {
					if runes[j] == '{' {
						depth++
					} else if runes[j] == '}' {
						depth--
						if depth == 0 {
							break
						}
					}
					j++
				}
				if depth != 0 {
					return nil, &ParseError{Pos: basePos, Msg: "unterminated ${...} interpolation"}
				}
				exprSrc := string(runes[i+2 : j])
				flush()
				expr, errs := parseEmbeddedExpression(exprSrc, basePos)
				if len(errs) > 0 {
					return nil, errs[0]
				}
				chunks = append(chunks, StringChunk{Expr: expr})
				i = j + 1
				continue
			}
			if isIdentStart(runes[i+1]) {
				j := i + 1
				for j < len(runes) && isIdentPart(runes[j]) {
					j++
				}
				name := string(runes[i+1 : j])
				flush()
				chunks = append(chunks, StringChunk{Expr: &Ident{Name: name, NamePos: basePos}})
				i = j
				continue
			}
		}
		lit = append(lit, []byte(string(r))...)
		i++
	}
	flush()
	return chunks, nil
}

func isIdentStart(r rune) bool { return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isIdentPart(r rune) bool  { return isIdentStart(r) || (r >= '0' && r <= '9') }

func unescape(s string) string {
	var b []byte
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			i++
			switch runes[i] {
			case 'n':
				b = append(b, '\n')
			case 't':
				b = append(b, '\t')
			case '"', '\\', '$':
				b = append(b, byte(runes[i]))
			default:
				b = append(b, byte(runes[i]))
			}
			continue
		}
		b = append(b, []byte(string(runes[i]))...)
	}
	return string(b)
}

// ParseExpression parses a single standalone expression, such as the
// captured stdout of an exec_script("value") invocation. Unlike Parse, it
// does not expect a sequence of statements.
func ParseExpression(filename, src string) (expr Expression, errs []error) {
	return parseEmbeddedExpression(src, Position{Filename: filename, Line: 1, Column: 1})
}

func parseEmbeddedExpression(src string, basePos Position) (expr Expression, errs []error) {
	p := &parser{lex: newLexer(basePos.Filename, src)}
	defer func() {
		if r := recover(); r != nil {
			if r == errTooManyErrors {
				errs = []error{p.err}
				expr = nil
				return
			}
			panic(r)
		}
	}()
	p.next()
	expr = p.parseExpression()
	p.expect(EOF)
	return expr, nil
}
