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
	"fmt"
	"strconv"
	"strings"

	"github.com/basalt-build/basalt/lang"
)

// Kind identifies which field of a Value is live.
type Kind int

const (
	NoneKind Kind = iota
	IntKind
	BoolKind
	StringKind
	ListKind
	ScopeKind
)

func (k Kind) String() string {
	switch k {
	case NoneKind:
		return "none"
	case IntKind:
		return "integer"
	case BoolKind:
		return "boolean"
	case StringKind:
		return "string"
	case ListKind:
		return "list"
	case ScopeKind:
		return "scope"
	default:
		return "unknown"
	}
}

// Value is the tagged variant every expression in the language evaluates
// to. It carries the source location of the expression that produced it,
// so later errors (a type mismatch three assignments downstream of the
// literal) can still point at something useful.
//
// Values are copy-on-assign: Set on a Scope always stores a fresh Value
// struct. List and Scope values share the underlying slice/*Scope, which is
// safe because nothing mutates a List's backing slice or a Scope's bindings
// in place after the Value escapes its producing expression -- operations
// that would (list append, scope write) always produce a new Value instead.
type Value struct {
	Kind Kind
	Pos  lang.Position

	Int   int64
	Bool  bool
	Str   string
	List  []Value
	Scope *Scope
}

func NoneValue(pos lang.Position) Value  { return Value{Kind: NoneKind, Pos: pos} }
func IntValue(pos lang.Position, v int64) Value { return Value{Kind: IntKind, Pos: pos, Int: v} }
func BoolValue(pos lang.Position, v bool) Value { return Value{Kind: BoolKind, Pos: pos, Bool: v} }
func StringValue(pos lang.Position, v string) Value {
	return Value{Kind: StringKind, Pos: pos, Str: v}
}
func ListValue(pos lang.Position, v []Value) Value {
	return Value{Kind: ListKind, Pos: pos, List: v}
}
func ScopeValue(pos lang.Position, s *Scope) Value {
	return Value{Kind: ScopeKind, Pos: pos, Scope: s}
}

func (v Value) IsNone() bool { return v.Kind == NoneKind }

// Clone returns a deep copy of v: list elements are cloned recursively, a
// scope reference is kept shared (the *Scope itself is not copied). Used by
// the evaluator wherever a value is stored
// into more than one place to preserve copy-on-assign semantics for lists.
func (v Value) Clone() Value {
	if v.Kind != ListKind {
		return v
	}
	out := make([]Value, len(v.List))
	for i, e := range v.List {
		out[i] = e.Clone()
	}
	return Value{Kind: ListKind, Pos: v.Pos, List: out}
}

// Equal reports whether two values are structurally equal. Scope values
// are compared by identity, matching "equality is identity" for reference
// types elsewhere in the data model.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case NoneKind:
		return true
	case IntKind:
		return v.Int == o.Int
	case BoolKind:
		return v.Bool == o.Bool
	case StringKind:
		return v.Str == o.Str
	case ScopeKind:
		return v.Scope == o.Scope
	case ListKind:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ToInterpolated coerces a value to a string for use inside a string
// interpolation chunk: integers print as decimal, booleans as true/false,
// lists only in the bracketed debug form, and scopes are a hard error --
// there is no meaningful textual form for a scope.
func (v Value) ToInterpolated() (string, *Err) {
	switch v.Kind {
	case StringKind:
		return v.Str, nil
	case IntKind:
		return strconv.FormatInt(v.Int, 10), nil
	case BoolKind:
		if v.Bool {
			return "true", nil
		}
		return "false", nil
	case ListKind:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			s, err := e.ToInterpolated()
			if err != nil {
				return "", err
			}
			parts[i] = debugQuote(e, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case NoneKind:
		return "", typeErr(v.Pos, "cannot interpolate a none value")
	case ScopeKind:
		return "", typeErr(v.Pos, "cannot interpolate a scope value")
	default:
		return "", typeErr(v.Pos, "cannot interpolate value of unknown kind")
	}
}

func debugQuote(v Value, s string) string {
	if v.Kind == StringKind {
		return strconv.Quote(s)
	}
	return s
}

func (v Value) String() string {
	switch v.Kind {
	case NoneKind:
		return "<none>"
	case IntKind:
		return strconv.FormatInt(v.Int, 10)
	case BoolKind:
		return strconv.FormatBool(v.Bool)
	case StringKind:
		return strconv.Quote(v.Str)
	case ListKind:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ScopeKind:
		return fmt.Sprintf("<scope %p>", v.Scope)
	default:
		return "<invalid value>"
	}
}

// StringList extracts the string contents of a ListKind value of strings,
// used pervasively by built-ins and the target builder. Returns a typed
// error naming the offending element's position if any element is not a
// string.
func (v Value) StringList() ([]string, *Err) {
	if v.Kind != ListKind {
		return nil, typeErr(v.Pos, "expected a list, got %s", v.Kind)
	}
	out := make([]string, len(v.List))
	for i, e := range v.List {
		if e.Kind != StringKind {
			return nil, typeErr(e.Pos, "expected a string in list, got %s", e.Kind)
		}
		out[i] = e.Str
	}
	return out, nil
}
