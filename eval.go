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

package basalt

import (
	"github.com/basalt-build/basalt/lang"
)

// Evaluator tree-walks an AST, producing Values and, for statement forms,
// side effects on a Scope. It holds a reference back to the owning Context
// only so built-ins can reach the scheduler (import, exec_script) and the
// target graph (target-declaring functions).
type Evaluator struct {
	ctx *Context
}

func newEvaluator(ctx *Context) *Evaluator { return &Evaluator{ctx: ctx} }

// EvalFile runs every top-level statement of f against scope, which the
// caller has already prepared (for the buildconfig file, the context's root
// scope; for every file the scheduler loads, the root build file included,
// a fresh child of the root scope). An import() in f evaluates the imported
// file to completion before the next statement of f runs.
func (ev *Evaluator) EvalFile(scope *Scope, f *lang.File) *Err {
	return ev.execBlock(scope, f.Block)
}

func (ev *Evaluator) execBlock(scope *Scope, block *lang.Block) *Err {
	for _, stmt := range block.Stmts {
		if err := ev.execStmt(scope, stmt); err != nil {
			return err
		}
	}
	return nil
}

// evalBlockAsScope runs block's statements in a fresh child of parent and
// returns that child as a Scope value -- the mechanism behind every
// "{ ... }" that is used where a value is expected (declare_args bodies,
// set_defaults bodies, the block following a target-declaring or template
// call).
func (ev *Evaluator) evalBlockAsScope(parent *Scope, block *lang.Block) (*Scope, *Err) {
	child := NewChild(parent)
	if err := ev.execBlock(child, block); err != nil {
		return nil, err
	}
	return child, nil
}

func (ev *Evaluator) execStmt(scope *Scope, stmt lang.Statement) *Err {
	switch s := stmt.(type) {
	case *lang.Assignment:
		return ev.execAssignment(scope, s)
	case *lang.Condition:
		return ev.execCondition(scope, s)
	case *lang.ForEach:
		return ev.execForEach(scope, s)
	case *lang.Call:
		_, err := ev.evalCall(scope, s)
		return err
	default:
		return generatorErr(stmt.Pos(), "unhandled statement type %T", stmt)
	}
}

func (ev *Evaluator) execAssignment(scope *Scope, a *lang.Assignment) *Err {
	val, err := ev.evalExpr(scope, a.Value)
	if err != nil {
		return err
	}
	val = val.Clone()
	val.Pos = a.NamePos

	switch a.Op {
	case lang.ASSIGN:
		if err := scope.Set(a.Name, val, a.NamePos, SetDefault); err != nil {
			return err
		}
	case lang.PLUSEQ:
		combined, err := addValues(scope, a.Name, a.NamePos, val)
		if err != nil {
			return err
		}
		if serr := scope.Set(a.Name, combined, a.NamePos, SetToEnclosing); serr != nil {
			return serr
		}
	case lang.MINUSEQ:
		combined, err := subValues(scope, a.Name, a.NamePos, val)
		if err != nil {
			return err
		}
		if serr := scope.Set(a.Name, combined, a.NamePos, SetToEnclosing); serr != nil {
			return serr
		}
	default:
		return generatorErr(a.NamePos, "unknown assignment operator")
	}
	if len(a.Comment) > 0 {
		scope.SetComment(a.Name, a.Comment)
	}
	return nil
}

func addValues(scope *Scope, name string, pos lang.Position, rhs Value) (Value, *Err) {
	_, lhs, ok := scope.GetMutable(name)
	if !ok {
		return Value{}, nameErr(pos, "%q was not declared before use with +=", name)
	}
	return binaryAdd(lhs, rhs)
}

func subValues(scope *Scope, name string, pos lang.Position, rhs Value) (Value, *Err) {
	_, lhs, ok := scope.GetMutable(name)
	if !ok {
		return Value{}, nameErr(pos, "%q was not declared before use with -=", name)
	}
	return binarySub(lhs, rhs)
}

func (ev *Evaluator) execCondition(scope *Scope, c *lang.Condition) *Err {
	cond, err := ev.evalExpr(scope, c.Cond)
	if err != nil {
		return err
	}
	if cond.Kind != BoolKind {
		return typeErr(c.Cond.Pos(), "condition must be a boolean, got %s", cond.Kind)
	}
	if cond.Bool {
		return ev.execBlock(scope, c.Then)
	}
	switch e := c.Else.(type) {
	case nil:
		return nil
	case *lang.Condition:
		return ev.execCondition(scope, e)
	case *lang.Block:
		return ev.execBlock(scope, e)
	default:
		return generatorErr(c.IfPos, "unhandled else clause type %T", e)
	}
}

// execForEach evaluates `foreach(iter, list) { body }`. iter is bound in
// a fresh scope on every iteration so that writes to it
// never alias the original list element. `+=` and `-=` on a name declared
// outside body write back to the enclosing scope through SetToEnclosing; a
// plain `=` declares the name in the per-iteration scope, which is
// discarded when the iteration ends.
func (ev *Evaluator) execForEach(scope *Scope, f *lang.ForEach) *Err {
	listVal, err := ev.evalExpr(scope, f.List)
	if err != nil {
		return err
	}
	if listVal.Kind != ListKind {
		return typeErr(f.List.Pos(), "foreach requires a list, got %s", listVal.Kind)
	}
	for _, elem := range listVal.List {
		child := NewChild(scope)
		if serr := child.Set(f.Iter, elem.Clone(), f.IterPos, SetDefault); serr != nil {
			return serr
		}
		child.MarkAllUsed() // the loop variable need not be read every iteration
		if err := ev.execBlock(child, f.Body); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) evalExpr(scope *Scope, expr lang.Expression) (Value, *Err) {
	switch e := expr.(type) {
	case *lang.Literal:
		return ev.evalLiteral(e), nil
	case *lang.StringLit:
		return ev.evalStringLit(scope, e)
	case *lang.Ident:
		v, ok := scope.Get(e.Name)
		if !ok {
			return Value{}, nameErr(e.NamePos, "undefined identifier %q", e.Name)
		}
		return v, nil
	case *lang.ListExpr:
		return ev.evalListExpr(scope, e)
	case *lang.UnaryExpr:
		return ev.evalUnary(scope, e)
	case *lang.BinaryExpr:
		return ev.evalBinary(scope, e)
	case *lang.AccessorExpr:
		return ev.evalAccessor(scope, e)
	case *lang.IndexExpr:
		return ev.evalIndex(scope, e)
	case *lang.Call:
		return ev.evalCall(scope, e)
	default:
		return Value{}, generatorErr(expr.Pos(), "unhandled expression type %T", expr)
	}
}

// EvalConstExpr evaluates an expression with no scope: integer, boolean,
// and string literals (interpolation-free) and lists of the same. It is
// used for command-line build argument overrides, which are written in the
// same literal grammar as a declare_args() default but never see a scope.
func EvalConstExpr(expr lang.Expression) (Value, error) {
	switch e := expr.(type) {
	case *lang.Literal:
		return (&Evaluator{}).evalLiteral(e), nil
	case *lang.StringLit:
		if len(e.Chunks) > 1 || (len(e.Chunks) == 1 && e.Chunks[0].Expr != nil) {
			return Value{}, syntaxErr(e.StartPos, "string interpolation is not allowed here")
		}
		if len(e.Chunks) == 0 {
			return StringValue(e.StartPos, ""), nil
		}
		return StringValue(e.StartPos, e.Chunks[0].Literal), nil
	case *lang.ListExpr:
		elems := make([]Value, len(e.Elems))
		for i, el := range e.Elems {
			v, err := EvalConstExpr(el)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return ListValue(e.LBrack, elems), nil
	case *lang.UnaryExpr:
		v, err := EvalConstExpr(e.X)
		if err != nil {
			return Value{}, err
		}
		if v.Kind != BoolKind {
			return Value{}, typeErr(e.OpPos, "! requires a bool, got %s", v.Kind)
		}
		return BoolValue(e.OpPos, !v.Bool), nil
	default:
		return Value{}, syntaxErr(expr.Pos(), "only literal values are allowed here")
	}
}

func (ev *Evaluator) evalLiteral(l *lang.Literal) Value {
	switch {
	case l.Int != nil:
		return IntValue(l.StartPos, *l.Int)
	case l.Bool != nil:
		return BoolValue(l.StartPos, *l.Bool)
	default:
		return NoneValue(l.StartPos)
	}
}

func (ev *Evaluator) evalStringLit(scope *Scope, s *lang.StringLit) (Value, *Err) {
	if len(s.Chunks) == 1 && s.Chunks[0].Expr == nil {
		return StringValue(s.StartPos, s.Chunks[0].Literal), nil
	}
	var out string
	for _, chunk := range s.Chunks {
		if chunk.Expr == nil {
			out += chunk.Literal
			continue
		}
		v, err := ev.evalExpr(scope, chunk.Expr)
		if err != nil {
			return Value{}, err
		}
		s2, ierr := v.ToInterpolated()
		if ierr != nil {
			return Value{}, ierr
		}
		out += s2
	}
	return StringValue(s.StartPos, out), nil
}

func (ev *Evaluator) evalListExpr(scope *Scope, l *lang.ListExpr) (Value, *Err) {
	elems := make([]Value, len(l.Elems))
	for i, e := range l.Elems {
		v, err := ev.evalExpr(scope, e)
		if err != nil {
			return Value{}, err
		}
		elems[i] = v.Clone()
	}
	return ListValue(l.LBrack, elems), nil
}

func (ev *Evaluator) evalUnary(scope *Scope, u *lang.UnaryExpr) (Value, *Err) {
	v, err := ev.evalExpr(scope, u.X)
	if err != nil {
		return Value{}, err
	}
	if u.Op != lang.NOT {
		return Value{}, generatorErr(u.OpPos, "unhandled unary operator")
	}
	if v.Kind != BoolKind {
		return Value{}, typeErr(u.X.Pos(), "! requires a boolean operand, got %s", v.Kind)
	}
	return BoolValue(u.OpPos, !v.Bool), nil
}

func (ev *Evaluator) evalBinary(scope *Scope, b *lang.BinaryExpr) (Value, *Err) {
	switch b.Op {
	case lang.ANDAND, lang.OROR:
		x, err := ev.evalExpr(scope, b.X)
		if err != nil {
			return Value{}, err
		}
		if x.Kind != BoolKind {
			return Value{}, typeErr(b.X.Pos(), "%s requires boolean operands, got %s", b.Op, x.Kind)
		}
		if b.Op == lang.ANDAND && !x.Bool {
			return BoolValue(b.OpPos, false), nil
		}
		if b.Op == lang.OROR && x.Bool {
			return BoolValue(b.OpPos, true), nil
		}
		y, err := ev.evalExpr(scope, b.Y)
		if err != nil {
			return Value{}, err
		}
		if y.Kind != BoolKind {
			return Value{}, typeErr(b.Y.Pos(), "%s requires boolean operands, got %s", b.Op, y.Kind)
		}
		return BoolValue(b.OpPos, y.Bool), nil
	}

	x, err := ev.evalExpr(scope, b.X)
	if err != nil {
		return Value{}, err
	}
	y, err := ev.evalExpr(scope, b.Y)
	if err != nil {
		return Value{}, err
	}

	switch b.Op {
	case lang.PLUS:
		return binaryAdd(x, y)
	case lang.MINUS:
		return binarySub(x, y)
	case lang.EQ:
		return BoolValue(b.OpPos, x.Equal(y)), nil
	case lang.NE:
		return BoolValue(b.OpPos, !x.Equal(y)), nil
	case lang.LT, lang.LE, lang.GT, lang.GE:
		return compareValues(b.OpPos, b.Op, x, y)
	default:
		return Value{}, generatorErr(b.OpPos, "unhandled binary operator %s", b.Op)
	}
}

// binaryAdd implements `+`: string concatenation, list concatenation (a
// scalar on the right appends as a single element), and integer addition.
func binaryAdd(x, y Value) (Value, *Err) {
	if x.Kind == ListKind {
		if y.Kind == ListKind {
			return ListValue(x.Pos, append(append([]Value{}, x.List...), y.List...)), nil
		}
		return ListValue(x.Pos, append(append([]Value{}, x.List...), y.Clone())), nil
	}
	if x.Kind != y.Kind {
		return Value{}, typeErr(x.Pos, "cannot add %s to %s", y.Kind, x.Kind)
	}
	switch x.Kind {
	case StringKind:
		return StringValue(x.Pos, x.Str+y.Str), nil
	case IntKind:
		return IntValue(x.Pos, x.Int+y.Int), nil
	default:
		return Value{}, typeErr(x.Pos, "operator + is not defined for %s", x.Kind)
	}
}

// binarySub implements `-`: integer subtraction, or list element removal.
// Removing an element that is not present is a hygiene error, not a silent
// no-op.
func binarySub(x, y Value) (Value, *Err) {
	if x.Kind != ListKind {
		if x.Kind == IntKind && y.Kind == IntKind {
			return IntValue(x.Pos, x.Int-y.Int), nil
		}
		return Value{}, typeErr(x.Pos, "operator - is not defined for %s", x.Kind)
	}
	var toRemove []Value
	if y.Kind == ListKind {
		toRemove = y.List
	} else {
		toRemove = []Value{y}
	}
	out := append([]Value{}, x.List...)
	for _, r := range toRemove {
		idx := -1
		for i, e := range out {
			if e.Equal(r) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return Value{}, generatorErr(r.Pos, "value %s not in list", r)
		}
		out = append(out[:idx], out[idx+1:]...)
	}
	return ListValue(x.Pos, out), nil
}

func compareValues(pos lang.Position, op lang.Kind, x, y Value) (Value, *Err) {
	if x.Kind != y.Kind || (x.Kind != IntKind && x.Kind != StringKind) {
		return Value{}, typeErr(pos, "comparison operators require two integers or two strings, got %s and %s", x.Kind, y.Kind)
	}
	var less, equal bool
	if x.Kind == IntKind {
		less = x.Int < y.Int
		equal = x.Int == y.Int
	} else {
		less = x.Str < y.Str
		equal = x.Str == y.Str
	}
	switch op {
	case lang.LT:
		return BoolValue(pos, less), nil
	case lang.LE:
		return BoolValue(pos, less || equal), nil
	case lang.GT:
		return BoolValue(pos, !less && !equal), nil
	case lang.GE:
		return BoolValue(pos, !less), nil
	default:
		return Value{}, generatorErr(pos, "unhandled comparison operator %s", op)
	}
}

func (ev *Evaluator) evalAccessor(scope *Scope, a *lang.AccessorExpr) (Value, *Err) {
	v, err := ev.evalExpr(scope, a.X)
	if err != nil {
		return Value{}, err
	}
	if v.Kind != ScopeKind {
		return Value{}, typeErr(a.X.Pos(), "%q is not a scope", a.Field)
	}
	fv, ok := v.Scope.Get(a.Field)
	if !ok {
		return Value{}, nameErr(a.FieldPos, "scope has no member %q", a.Field)
	}
	return fv, nil
}

func (ev *Evaluator) evalIndex(scope *Scope, ix *lang.IndexExpr) (Value, *Err) {
	v, err := ev.evalExpr(scope, ix.X)
	if err != nil {
		return Value{}, err
	}
	i, err := ev.evalExpr(scope, ix.Index)
	if err != nil {
		return Value{}, err
	}
	if v.Kind != ListKind {
		return Value{}, typeErr(ix.X.Pos(), "cannot index a %s", v.Kind)
	}
	if i.Kind != IntKind {
		return Value{}, typeErr(ix.Index.Pos(), "list index must be an integer, got %s", i.Kind)
	}
	if i.Int < 0 || i.Int >= int64(len(v.List)) {
		return Value{}, generatorErr(ix.Index.Pos(), "list index %d out of range (length %d)", i.Int, len(v.List))
	}
	return v.List[i.Int], nil
}

// evalCall dispatches a function call by name to a built-in first, then to
// a template visible in scope, then fails.
func (ev *Evaluator) evalCall(scope *Scope, call *lang.Call) (Value, *Err) {
	if fn, ok := builtinFuncs[call.Name]; ok {
		return fn(ev, scope, call)
	}
	if tmpl, ok := scope.LookupTemplate(call.Name); ok {
		return ev.instantiateTemplate(scope, tmpl, call)
	}
	return Value{}, nameErr(call.NamePos, "unknown function or template %q", call.Name)
}

// defined(ident) and defined(scope.ident) test presence without marking
// used.
func (ev *Evaluator) evalDefinedArg(scope *Scope, expr lang.Expression) (bool, *Err) {
	switch e := expr.(type) {
	case *lang.Ident:
		_, b := scope.lookup(e.Name)
		return b != nil, nil
	case *lang.AccessorExpr:
		v, err := ev.evalExpr(scope, e.X)
		if err != nil {
			return false, err
		}
		if v.Kind != ScopeKind {
			return false, typeErr(e.X.Pos(), "defined() requires a scope on the left of '.', got %s", v.Kind)
		}
		_, b := v.Scope.lookup(e.Field)
		return b != nil, nil
	default:
		return false, typeErr(expr.Pos(), "defined() requires an identifier or scope.identifier argument")
	}
}
