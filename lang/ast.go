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

// Node is implemented by every AST type. Every node carries a source range.
type Node interface {
	Pos() Position
	End() Position
}

// Statement is a top-level or block-level construct that has a side
// effect on a scope rather than producing a Value by itself.
type Statement interface {
	Node
	stmtTag()
}

// Expression produces a Value when evaluated.
type Expression interface {
	Node
	exprTag()
}

// File is the result of parsing one source file.
type File struct {
	Name  string
	Block *Block
}

func (f *File) Pos() Position { return f.Block.Pos() }
func (f *File) End() Position { return f.Block.End() }

// Block is an ordered sequence of statements delimited by braces (or, for
// the file's top level, by start/end of input). A Block is also the node
// used wherever the grammar requires a value-producing scope literal: the
// evaluator runs its statements in a fresh child scope and, in that
// context, yields the resulting Scope as a Value.
type Block struct {
	LBrace Position
	RBrace Position
	Stmts  []Statement

	// HasBraces distinguishes an explicit `{ ... }` block from the
	// implicit top-level block of a file (which has no delimiters).
	HasBraces bool
}

func (b *Block) Pos() Position { return b.LBrace }
func (b *Block) End() Position { return b.RBrace }

// Assignment is `name = expr`, `name += expr`, or `name -= expr`.
type Assignment struct {
	Name    string
	NamePos Position
	Op      Kind // ASSIGN, PLUSEQ, or MINUSEQ
	Value   Expression
	Comment []string
}

func (a *Assignment) Pos() Position { return a.NamePos }
func (a *Assignment) End() Position { return a.Value.End() }
func (a *Assignment) stmtTag()      {}

// Condition is an `if`/`else if`/`else` chain. Else is either another
// *Condition (else if), a *Block (else), or nil.
type Condition struct {
	IfPos Position
	Cond  Expression
	Then  *Block
	Else  Node // *Condition, *Block, or nil
}

func (c *Condition) Pos() Position { return c.IfPos }
func (c *Condition) End() Position {
	if c.Else != nil {
		return c.Else.End()
	}
	return c.Then.End()
}
func (c *Condition) stmtTag() {}

// ForEach is `foreach(iter, list) { body }`.
type ForEach struct {
	ForPos Position
	Iter   string
	IterPos Position
	List   Expression
	Body   *Block
}

func (f *ForEach) Pos() Position { return f.ForPos }
func (f *ForEach) End() Position { return f.Body.End() }
func (f *ForEach) stmtTag()      {}

// Call is a function call, used either as a statement (a built-in or
// template invocation executed for its side effects, e.g. declaring a
// target) or as an expression; Call implements both Statement and
// Expression. Block is non-nil for the
// `name(args) { ... }` form.
type Call struct {
	NamePos Position
	Name    string
	Args    []Expression
	Block   *Block
	EndPos  Position
}

func (c *Call) Pos() Position { return c.NamePos }
func (c *Call) End() Position { return c.EndPos }
func (c *Call) stmtTag()      {}
func (c *Call) exprTag()      {}

// Literal is an integer or boolean literal.
type Literal struct {
	StartPos Position
	EndPos   Position
	Int      *int64
	Bool     *bool
}

func (l *Literal) Pos() Position { return l.StartPos }
func (l *Literal) End() Position { return l.EndPos }
func (l *Literal) exprTag()      {}

// StringChunk is either a literal run of text or an embedded expression
// inside an interpolated string literal ($var or ${expr}).
type StringChunk struct {
	Literal string
	Expr    Expression // nil if this chunk is a literal run
}

// StringLit is a (possibly interpolated) string literal.
type StringLit struct {
	StartPos Position
	EndPos   Position
	Chunks   []StringChunk
}

func (s *StringLit) Pos() Position { return s.StartPos }
func (s *StringLit) End() Position { return s.EndPos }
func (s *StringLit) exprTag()      {}

// Ident is a bare identifier reference.
type Ident struct {
	NamePos Position
	Name    string
}

func (i *Ident) Pos() Position { return i.NamePos }
func (i *Ident) End() Position { return Position{Filename: i.NamePos.Filename, Line: i.NamePos.Line, Column: i.NamePos.Column + len(i.Name), Offset: i.NamePos.Offset + len(i.Name)} }
func (i *Ident) exprTag()      {}

// ListExpr is a `[a, b, c]` list literal.
type ListExpr struct {
	LBrack Position
	RBrack Position
	Elems  []Expression
}

func (l *ListExpr) Pos() Position { return l.LBrack }
func (l *ListExpr) End() Position { return l.RBrack }
func (l *ListExpr) exprTag()      {}

// UnaryExpr is `!x`.
type UnaryExpr struct {
	OpPos Position
	Op    Kind
	X     Expression
}

func (u *UnaryExpr) Pos() Position { return u.OpPos }
func (u *UnaryExpr) End() Position { return u.X.End() }
func (u *UnaryExpr) exprTag()      {}

// BinaryExpr is `x OP y` for any of +, -, ==, !=, <, <=, >, >=, &&, ||.
type BinaryExpr struct {
	X     Expression
	Op    Kind
	OpPos Position
	Y     Expression
}

func (b *BinaryExpr) Pos() Position { return b.X.Pos() }
func (b *BinaryExpr) End() Position { return b.Y.End() }
func (b *BinaryExpr) exprTag()      {}

// AccessorExpr is `x.field`.
type AccessorExpr struct {
	X        Expression
	Field    string
	FieldPos Position
}

func (a *AccessorExpr) Pos() Position { return a.X.Pos() }
func (a *AccessorExpr) End() Position { return Position{Filename: a.FieldPos.Filename, Line: a.FieldPos.Line, Column: a.FieldPos.Column + len(a.Field), Offset: a.FieldPos.Offset + len(a.Field)} }
func (a *AccessorExpr) exprTag()      {}

// IndexExpr is `x[index]`.
type IndexExpr struct {
	X      Expression
	Index  Expression
	RBrack Position
}

func (ix *IndexExpr) Pos() Position { return ix.X.Pos() }
func (ix *IndexExpr) End() Position { return ix.RBrack }
func (ix *IndexExpr) exprTag()      {}
