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
	"strings"

	"github.com/basalt-build/basalt/lang"
)

// ErrKind classifies an Err so callers and tests can distinguish syntax
// problems from dependency problems from generator bookkeeping problems
// without string-matching the message.
type ErrKind int

const (
	SyntaxErr ErrKind = iota
	TypeErr
	NameErr
	UsageErr
	DependencyErr
	IOErr
	GeneratorErr
)

func (k ErrKind) String() string {
	switch k {
	case SyntaxErr:
		return "syntax error"
	case TypeErr:
		return "type error"
	case NameErr:
		return "name error"
	case UsageErr:
		return "usage error"
	case DependencyErr:
		return "dependency error"
	case IOErr:
		return "I/O error"
	case GeneratorErr:
		return "generator error"
	default:
		return "error"
	}
}

// Err is a structured error value. Errors are returned alongside results,
// never panicked.
type Err struct {
	Kind ErrKind
	Msg  string
	Pos  lang.Position
	// DeclPos is set for errors that refer back to a declaration site
	// distinct from the error's own position (redefinition errors).
	// Unused-variable errors carry the declaration site as Pos instead.
	DeclPos lang.Position
	Sub     []*Err
}

func (e *Err) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", e.Pos, e.Kind, e.Msg)
	if e.DeclPos.IsValid() {
		fmt.Fprintf(&b, " (declared at %s)", e.DeclPos)
	}
	for _, sub := range e.Sub {
		fmt.Fprintf(&b, "\n  %s", sub.Error())
	}
	return b.String()
}

func newErr(kind ErrKind, pos lang.Position, format string, args ...interface{}) *Err {
	return &Err{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func syntaxErr(pos lang.Position, format string, args ...interface{}) *Err {
	return newErr(SyntaxErr, pos, format, args...)
}

func typeErr(pos lang.Position, format string, args ...interface{}) *Err {
	return newErr(TypeErr, pos, format, args...)
}

func nameErr(pos lang.Position, format string, args ...interface{}) *Err {
	return newErr(NameErr, pos, format, args...)
}

func usageErr(declPos lang.Position, format string, args ...interface{}) *Err {
	e := newErr(UsageErr, declPos, format, args...)
	return e
}

func dependencyErr(pos lang.Position, format string, args ...interface{}) *Err {
	return newErr(DependencyErr, pos, format, args...)
}

func ioErr(pos lang.Position, format string, args ...interface{}) *Err {
	return newErr(IOErr, pos, format, args...)
}

func generatorErr(pos lang.Position, format string, args ...interface{}) *Err {
	return newErr(GeneratorErr, pos, format, args...)
}
