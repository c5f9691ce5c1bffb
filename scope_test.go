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
	"testing"

	"github.com/basalt-build/basalt/lang"
)

func testSettings() *Settings {
	return &Settings{SourceRoot: "/src", BuildDir: "/out"}
}

func TestScopeGetWalksParentChain(t *testing.T) {
	root := NewRootScope(testSettings())
	if err := root.Set("x", IntValue(lang.Position{Line: 1}, 1), lang.Position{Line: 1}, SetDefault); err != nil {
		t.Fatal(err)
	}
	child := NewChild(root)
	v, ok := child.Get("x")
	if !ok || v.Int != 1 {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestScopeSetDefaultRejectsShadowing(t *testing.T) {
	root := NewRootScope(testSettings())
	pos := lang.Position{Line: 1}
	if err := root.Set("x", IntValue(pos, 1), pos, SetDefault); err != nil {
		t.Fatal(err)
	}
	child := NewChild(root)
	if err := child.Set("x", IntValue(pos, 2), pos, SetDefault); err == nil {
		t.Fatal("expected a shadowing error")
	}
}

func TestScopeSetOverwritePermitsShadowing(t *testing.T) {
	root := NewRootScope(testSettings())
	pos := lang.Position{Line: 1}
	if err := root.Set("x", IntValue(pos, 1), pos, SetDefault); err != nil {
		t.Fatal(err)
	}
	child := NewChild(root)
	if err := child.Set("x", IntValue(pos, 2), pos, SetOverwrite); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := child.Get("x")
	if v.Int != 2 {
		t.Errorf("got %d, want 2", v.Int)
	}
}

func TestScopeUnusedVariableIsAnError(t *testing.T) {
	root := NewRootScope(testSettings())
	pos := lang.Position{Line: 1}
	if err := root.Set("unused", IntValue(pos, 1), pos, SetDefault); err != nil {
		t.Fatal(err)
	}
	if err := root.CheckForUnusedVars(); err == nil {
		t.Fatal("expected an unused-variable error")
	}
}

func TestScopeUsedVariablePassesCheck(t *testing.T) {
	root := NewRootScope(testSettings())
	pos := lang.Position{Line: 1}
	if err := root.Set("used", IntValue(pos, 1), pos, SetDefault); err != nil {
		t.Fatal(err)
	}
	root.Get("used")
	if err := root.CheckForUnusedVars(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScopeMarkImportedExemptsFromUnusedCheck(t *testing.T) {
	root := NewRootScope(testSettings())
	pos := lang.Position{Line: 1}
	if err := root.Set("x", IntValue(pos, 1), pos, SetDefault); err != nil {
		t.Fatal(err)
	}
	root.MarkImported("x")
	if err := root.CheckForUnusedVars(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScopeMarkFileImportedIsIdempotent(t *testing.T) {
	root := NewRootScope(testSettings())
	if !root.MarkFileImported("/src/BUILD.basalt") {
		t.Fatal("expected the first MarkFileImported to return true")
	}
	if root.MarkFileImported("/src/BUILD.basalt") {
		t.Fatal("expected a repeat MarkFileImported to return false")
	}
}

func TestScopeSetToEnclosingRequiresPriorDeclaration(t *testing.T) {
	root := NewRootScope(testSettings())
	pos := lang.Position{Line: 1}
	if err := root.Set("never_declared", IntValue(pos, 1), pos, SetToEnclosing); err == nil {
		t.Fatal("expected an error writing += to an undeclared name")
	}
}

func TestScopeDeclaredNamesIsSorted(t *testing.T) {
	root := NewRootScope(testSettings())
	pos := lang.Position{Line: 1}
	for _, name := range []string{"c", "a", "b"} {
		if err := root.Set(name, IntValue(pos, 1), pos, SetDefault); err != nil {
			t.Fatal(err)
		}
	}
	got := root.DeclaredNames()
	want := []string{"a", "b", "c"}
	for i, name := range want {
		if got[i] != name {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
