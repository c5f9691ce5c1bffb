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
	"sort"

	"github.com/basalt-build/basalt/lang"
)

// SetOption controls how Scope.Set resolves the shadowing and write-target
// rules.
type SetOption int

const (
	// SetDefault writes into the current scope, applying the shadowing
	// rule against enclosing scopes.
	SetDefault SetOption = iota
	// SetToEnclosing writes into the nearest enclosing scope (including
	// the current one) that already defines the name. Used by += / -=.
	SetToEnclosing
	// SetOverwrite permits shadowing a non-none value in an enclosing
	// scope without error (used by set_defaults and forward_variables_from).
	SetOverwrite
)

type binding struct {
	value    Value
	used     bool
	declPos  lang.Position
	comment  []string
	imported bool // whitelisted from the unused-variable check
}

// Scope is a lexical environment: a mapping from identifier to (Value,
// usage flag, declaration location), a parent link, and the templates
// defined directly within it.
type Scope struct {
	parent    *Scope
	vars      map[string]*binding
	templates map[string]*Template
	settings  *Settings

	isRoot      bool
	markAllUsed bool

	importedFiles map[string]bool
}

// NewRootScope creates the scope that is the ultimate ancestor of every
// other scope in a run: it has no parent and owns the Settings.
func NewRootScope(settings *Settings) *Scope {
	return &Scope{vars: map[string]*binding{}, templates: map[string]*Template{}, settings: settings, isRoot: true}
}

// NewChild creates a block-scoped child of s (foreach/target bodies).
func NewChild(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: map[string]*binding{}, templates: map[string]*Template{}, settings: parent.settings}
}

// MakeClosure returns a scope usable as the capture point for a template:
// a view that still resolves lookups through s, but whose own (empty)
// variable map means it never itself fails the unused-variable check.
// Each template gets its own closure object so multiple templates defined
// in the same scope don't alias bookkeeping.
func (s *Scope) MakeClosure() *Scope {
	return &Scope{parent: s, vars: map[string]*binding{}, templates: map[string]*Template{}, settings: s.settings}
}

func (s *Scope) Settings() *Settings { return s.settings }

// Get looks up name, walking the enclosing chain, and marks it used at the
// scope that owns it.
func (s *Scope) Get(name string) (Value, bool) {
	owner, b := s.lookup(name)
	if owner == nil {
		return Value{}, false
	}
	b.used = true
	return b.value, true
}

// GetMutable is like Get but also returns the owning scope, for callers
// (+=, -=) that need to write back to wherever the binding actually lives.
func (s *Scope) GetMutable(name string) (*Scope, Value, bool) {
	owner, b := s.lookup(name)
	if owner == nil {
		return nil, Value{}, false
	}
	b.used = true
	return owner, b.value, true
}

func (s *Scope) lookup(name string) (*Scope, *binding) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return cur, b
		}
	}
	return nil, nil
}

// DeclaredHere reports whether name is declared directly in s (not an
// ancestor), without marking it used.
func (s *Scope) DeclaredHere(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Set writes value under name according to opt, returning an error on a
// shadowing violation or, for SetToEnclosing, on a write to an undeclared
// name.
func (s *Scope) Set(name string, value Value, declPos lang.Position, opt SetOption) *Err {
	switch opt {
	case SetToEnclosing:
		owner, existing := s.lookup(name)
		if owner == nil {
			return nameErr(declPos, "%q was not declared before use with += or -=", name)
		}
		existing.value = value
		existing.used = false
		return nil
	case SetOverwrite:
		if b, ok := s.vars[name]; ok {
			b.value = value
			b.used = false
			return nil
		}
		s.vars[name] = &binding{value: value, declPos: declPos}
		return nil
	default: // SetDefault
		if b, ok := s.vars[name]; ok {
			b.value = value
			b.used = false
			return nil
		}
		if owner, existing := s.lookup(name); owner != nil {
			if !existing.value.IsNone() {
				return nameErr(declPos, "cannot redefine %q, which was already declared at %s", name, existing.declPos).withDecl(existing.declPos)
			}
		}
		s.vars[name] = &binding{value: value, declPos: declPos}
		return nil
	}
}

func (e *Err) withDecl(pos lang.Position) *Err {
	e.DeclPos = pos
	return e
}

// SetComment attaches a documentation comment to the most recent binding
// of name declared directly in s (used by the parser's comment-attachment
// pass).
func (s *Scope) SetComment(name string, comment []string) {
	if b, ok := s.vars[name]; ok {
		b.comment = comment
	}
}

// MarkUsed marks name used without reading it (the effect of the
// `not_needed()` built-in and of forward_variables_from on its source).
func (s *Scope) MarkUsed(name string) {
	if _, b := s.lookup(name); b != nil {
		b.used = true
	}
}

// MarkAllUsed exempts every variable declared directly in s, present and
// future, from the unused-variable check. Used for scopes whose contents
// are consumed structurally rather than by name (e.g. default-scope
// templates copied in wholesale by set_defaults).
func (s *Scope) MarkAllUsed() { s.markAllUsed = true }

// MarkImported marks name, which must already be declared in s, as having
// arrived via import() -- imported names are whitelisted from the unused
// check at the importing scope (requiring every import to be individually
// consumed would make import() unusable for grouping).
func (s *Scope) MarkImported(name string) {
	if b, ok := s.vars[name]; ok {
		b.imported = true
	}
}

// CheckForUnusedVars reports every variable declared directly in s that
// was never read, exported, or explicitly exempted: every declared
// variable must be consumed by something.
func (s *Scope) CheckForUnusedVars() *Err {
	if s.markAllUsed {
		return nil
	}
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var sub []*Err
	for _, name := range names {
		b := s.vars[name]
		if b.used || b.imported {
			continue
		}
		sub = append(sub, usageErr(b.declPos, "%q is assigned but never used", name))
	}
	if len(sub) == 0 {
		return nil
	}
	if len(sub) == 1 {
		return sub[0]
	}
	return &Err{Kind: UsageErr, Pos: sub[0].Pos, Msg: "unused variables", Sub: sub}
}

// AddTemplate registers a template defined directly in s. Returns an error
// if a template with that name already exists in this scope.
func (s *Scope) AddTemplate(t *Template) *Err {
	if _, ok := s.templates[t.Name]; ok {
		return nameErr(t.Pos, "template %q is already defined in this scope", t.Name)
	}
	s.templates[t.Name] = t
	return nil
}

// LookupTemplate walks the enclosing chain for a template named name.
func (s *Scope) LookupTemplate(name string) (*Template, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.templates[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// TopLevelBindings returns the name/value pairs declared directly in s,
// used by import() to copy a file's top-level scope into the caller.
func (s *Scope) TopLevelBindings() map[string]Value {
	out := make(map[string]Value, len(s.vars))
	for name, b := range s.vars {
		out[name] = b.value
	}
	return out
}

// TopLevelTemplates returns the templates defined directly in s.
func (s *Scope) TopLevelTemplates() map[string]*Template {
	out := make(map[string]*Template, len(s.templates))
	for name, t := range s.templates {
		out[name] = t
	}
	return out
}

// TopLevelDeclPositions returns the declaration site of each variable
// declared directly in s, keyed by name -- used by declare_args() to
// attribute build-argument defaults back to where they were written.
func (s *Scope) TopLevelDeclPositions() map[string]lang.Position {
	out := make(map[string]lang.Position, len(s.vars))
	for name, b := range s.vars {
		out[name] = b.declPos
	}
	return out
}

// DeclaredNames returns, in sorted order, the names of every variable
// declared directly in s. Used by forward_variables_from("*") and
// not_needed("*").
func (s *Scope) DeclaredNames() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarkFileImported records that path has been imported into s, returning
// true the first time and false on any later call -- the mechanism behind
// import()'s idempotence: importing the same file twice is a no-op.
func (s *Scope) MarkFileImported(path string) bool {
	if s.importedFiles == nil {
		s.importedFiles = make(map[string]bool)
	}
	if s.importedFiles[path] {
		return false
	}
	s.importedFiles[path] = true
	return true
}
