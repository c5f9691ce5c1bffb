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

func evalSrc(t *testing.T, src string) *Scope {
	t.Helper()
	file, errs := lang.Parse("test", src)
	if len(errs) > 0 {
		t.Fatalf("parse error: %v", errs)
	}
	ctx := NewContext(testSettings())
	scope := NewChild(ctx.rootScope)
	if err := ctx.eval.EvalFile(scope, file); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return scope
}

func TestEvalStringInterpolation(t *testing.T) {
	scope := evalSrc(t, `name = "world"
greeting = "hello $name, ${1 + 2}"
`)
	scope.Get("name")
	v, _ := scope.Get("greeting")
	if v.Str != "hello world, 3" {
		t.Errorf("got %q", v.Str)
	}
}

func TestEvalListPlusConcatenates(t *testing.T) {
	scope := evalSrc(t, `a = [1, 2]
a += [3]
`)
	v, _ := scope.Get("a")
	if len(v.List) != 3 || v.List[2].Int != 3 {
		t.Errorf("got %v", v)
	}
}

func TestEvalIfElse(t *testing.T) {
	scope := evalSrc(t, `x = 1
if (x == 1) {
  y = "one"
} else {
  y = "other"
}
`)
	scope.Get("x")
	v, _ := scope.Get("y")
	if v.Str != "one" {
		t.Errorf("got %q", v.Str)
	}
}

func TestEvalBoolShortCircuitOperators(t *testing.T) {
	scope := evalSrc(t, `a = true || false
b = false && true
`)
	va, _ := scope.Get("a")
	vb, _ := scope.Get("b")
	if !va.Bool || vb.Bool {
		t.Errorf("got a=%v b=%v", va.Bool, vb.Bool)
	}
}

func TestEvalAssertFailsOnFalseCondition(t *testing.T) {
	file, errs := lang.Parse("test", `assert(1 == 2, "should never be equal")`)
	if len(errs) > 0 {
		t.Fatalf("parse error: %v", errs)
	}
	ctx := NewContext(testSettings())
	scope := NewChild(ctx.rootScope)
	if err := ctx.eval.EvalFile(scope, file); err == nil {
		t.Fatal("expected assert() to fail")
	}
}

func TestEvalDefinedDoesNotMarkArgumentUsed(t *testing.T) {
	file, errs := lang.Parse("test", `x = 1
y = defined(x)
`)
	if len(errs) > 0 {
		t.Fatalf("parse error: %v", errs)
	}
	ctx := NewContext(testSettings())
	scope := NewChild(ctx.rootScope)
	if err := ctx.eval.EvalFile(scope, file); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	y, _ := scope.Get("y")
	if !y.Bool {
		t.Error("expected defined(x) to be true")
	}
	if err := scope.CheckForUnusedVars(); err == nil {
		t.Fatal("expected x to still count as unused: defined() must not mark it used")
	}
}

func TestEvalForwardVariablesFromCopiesAndMarksUsed(t *testing.T) {
	scope := evalSrc(t, `template("lib") {
  forward_variables_from(invoker, ["sources"])
  assert(sources == ["a.c"])
}
lib("foo") {
  sources = ["a.c"]
}
`)
	_ = scope
}

func TestEvalForeach(t *testing.T) {
	scope := evalSrc(t, `total = 0
items = [1, 2, 3]
foreach(item, items) {
  total += item
}
`)
	scope.Get("items")
	v, _ := scope.Get("total")
	if v.Int != 6 {
		t.Errorf("got %d, want 6", v.Int)
	}
}
