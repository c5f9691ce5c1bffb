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

import "testing"

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, errs := Parse("test", src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return f
}

func TestParseAssignment(t *testing.T) {
	f := mustParse(t, `x = 1`)
	if len(f.Block.Stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(f.Block.Stmts))
	}
	a, ok := f.Block.Stmts[0].(*Assignment)
	if !ok {
		t.Fatalf("got %T, want *Assignment", f.Block.Stmts[0])
	}
	if a.Name != "x" || a.Op != ASSIGN {
		t.Errorf("got %+v", a)
	}
}

func TestParseCallWithBlock(t *testing.T) {
	f := mustParse(t, `executable("cmd") {
  sources = ["main.c"]
}`)
	call, ok := f.Block.Stmts[0].(*Call)
	if !ok {
		t.Fatalf("got %T, want *Call", f.Block.Stmts[0])
	}
	if call.Name != "executable" || len(call.Args) != 1 {
		t.Fatalf("got %+v", call)
	}
	if call.Block == nil || len(call.Block.Stmts) != 1 {
		t.Fatalf("expected one statement in the call's block, got %+v", call.Block)
	}
}

func TestParseListAndBinaryPrecedence(t *testing.T) {
	f := mustParse(t, `x = [1 + 2, 3]`)
	a := f.Block.Stmts[0].(*Assignment)
	list, ok := a.Value.(*ListExpr)
	if !ok || len(list.Elems) != 2 {
		t.Fatalf("got %+v", a.Value)
	}
	if _, ok := list.Elems[0].(*BinaryExpr); !ok {
		t.Errorf("expected the first element to be a binary expression, got %T", list.Elems[0])
	}
}

func TestParseAttachesAnAdjacentCommentToTheFollowingAssignment(t *testing.T) {
	f := mustParse(t, "# enable the frobnicator\nx = 1")
	a := f.Block.Stmts[0].(*Assignment)
	if len(a.Comment) != 1 || a.Comment[0] != "enable the frobnicator" {
		t.Errorf("got comment %v, want [\"enable the frobnicator\"]", a.Comment)
	}
}

func TestParseMergesConsecutiveCommentLines(t *testing.T) {
	f := mustParse(t, "# line one\n# line two\nx = 1")
	a := f.Block.Stmts[0].(*Assignment)
	if len(a.Comment) != 2 || a.Comment[0] != "line one" || a.Comment[1] != "line two" {
		t.Errorf("got comment %v, want [\"line one\" \"line two\"]", a.Comment)
	}
}

func TestParseDropsACommentSeparatedByABlankLine(t *testing.T) {
	f := mustParse(t, "# stale comment\n\nx = 1")
	a := f.Block.Stmts[0].(*Assignment)
	if len(a.Comment) != 0 {
		t.Errorf("got comment %v, want none (blank line should break the association)", a.Comment)
	}
}

func TestParseDoesNotAttachACommentAcrossAnUnrelatedStatement(t *testing.T) {
	f := mustParse(t, "y = 1\n# doc for x\nx = 2")
	if len(f.Block.Stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(f.Block.Stmts))
	}
	y := f.Block.Stmts[0].(*Assignment)
	if len(y.Comment) != 0 {
		t.Errorf("got comment %v on y, want none", y.Comment)
	}
	x := f.Block.Stmts[1].(*Assignment)
	if len(x.Comment) != 1 || x.Comment[0] != "doc for x" {
		t.Errorf("got comment %v on x, want [\"doc for x\"]", x.Comment)
	}
}

func TestParseStringInterpolationSplitsIntoChunks(t *testing.T) {
	f := mustParse(t, `x = "prefix $name suffix ${1 + 2}"`)
	a := f.Block.Stmts[0].(*Assignment)
	s, ok := a.Value.(*StringLit)
	if !ok {
		t.Fatalf("got %T, want *StringLit", a.Value)
	}
	if len(s.Chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	var sawIdent, sawExpr bool
	for _, c := range s.Chunks {
		if c.Expr == nil {
			continue
		}
		switch c.Expr.(type) {
		case *Ident:
			sawIdent = true
		case *BinaryExpr:
			sawExpr = true
		}
	}
	if !sawIdent {
		t.Error("expected a $name chunk to parse to an *Ident")
	}
	if !sawExpr {
		t.Error("expected a ${1 + 2} chunk to parse to a *BinaryExpr")
	}
}

func TestParseIfElse(t *testing.T) {
	f := mustParse(t, `if (x == 1) {
  y = 2
} else {
  y = 3
}`)
	cond, ok := f.Block.Stmts[0].(*Condition)
	if !ok {
		t.Fatalf("got %T, want *Condition", f.Block.Stmts[0])
	}
	if cond.Then == nil || cond.Else == nil {
		t.Fatalf("expected both branches to be present, got %+v", cond)
	}
}

func TestParseAccessorAndIndex(t *testing.T) {
	f := mustParse(t, `x = foo.bar[0]`)
	a := f.Block.Stmts[0].(*Assignment)
	ix, ok := a.Value.(*IndexExpr)
	if !ok {
		t.Fatalf("got %T, want *IndexExpr", a.Value)
	}
	if _, ok := ix.X.(*AccessorExpr); !ok {
		t.Errorf("got %T, want *AccessorExpr", ix.X)
	}
}

func TestParseStopsAtFirstSyntaxError(t *testing.T) {
	_, errs := Parse("test", `x = `)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want exactly 1 (single-error accumulation), got %v", len(errs), errs)
	}
}

func TestParseExpressionStandalone(t *testing.T) {
	expr, errs := ParseExpression("test", `1 + 2`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := expr.(*BinaryExpr); !ok {
		t.Fatalf("got %T, want *BinaryExpr", expr)
	}
}
