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

	"github.com/google/go-cmp/cmp"

	"github.com/basalt-build/basalt/lang"
)

func TestExecutableDeclarationCommitsATarget(t *testing.T) {
	ctx := NewContext(testSettings())
	evalWithCtx(t, ctx, `executable("app") {
  sources = ["main.cc"]
  deps = [":lib"]
}
static_library("lib") {
  sources = ["lib.cc"]
}
`)
	label, err := ctx.interner.ParseLabel("//:app", "//", nil)
	if err != nil {
		t.Fatal(err)
	}
	target, ok := ctx.graph.Lookup(label)
	if !ok {
		t.Fatal("expected //:app to be committed to the graph")
	}
	if target.Type != Executable || len(target.Sources) != 1 || target.Sources[0] != "main.cc" {
		t.Fatalf("got %+v", target)
	}
	if len(target.PrivateDeps) != 1 || target.PrivateDeps[0].Kind != PrivateDep {
		t.Fatalf("got deps %+v", target.PrivateDeps)
	}
}

func TestCopyTargetDefaultsOutputsFromSources(t *testing.T) {
	ctx := NewContext(testSettings())
	evalWithCtx(t, ctx, `copy("assets") {
  sources = ["data/a.png", "data/b.png"]
}
`)
	label, err := ctx.interner.ParseLabel("//:assets", "//", nil)
	if err != nil {
		t.Fatal(err)
	}
	target, _ := ctx.graph.Lookup(label)
	want := []string{"//a.png", "//b.png"}
	if diff := cmp.Diff(want, target.OutputTmpl); diff != "" {
		t.Fatalf("default outputs mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateBindsTargetNameAndInvoker(t *testing.T) {
	ctx := NewContext(testSettings())
	evalWithCtx(t, ctx, `template("wrapped_exe") {
  executable(target_name) {
    forward_variables_from(invoker, ["sources"])
  }
}
wrapped_exe("myapp") {
  sources = ["main.cc"]
}
`)
	label, err := ctx.interner.ParseLabel("//:myapp", "//", nil)
	if err != nil {
		t.Fatal(err)
	}
	target, ok := ctx.graph.Lookup(label)
	if !ok {
		t.Fatal("expected the template instantiation to commit //:myapp")
	}
	if len(target.Sources) != 1 || target.Sources[0] != "main.cc" {
		t.Fatalf("got %+v", target.Sources)
	}
}

func TestUnknownTargetTypeBindingIsUnaffected(t *testing.T) {
	if _, ok := targetTypeNames["frobnicate"]; ok {
		t.Fatal("frobnicate should not be a recognized target type")
	}
}

func TestDuplicateTargetDefinitionIsAnError(t *testing.T) {
	ctx := NewContext(testSettings())
	file1 := `executable("dup") {
  sources = []
}
`
	evalWithCtx(t, ctx, file1)

	scope := NewChild(ctx.rootScope)
	f, errs := lang.Parse("test2", `executable("dup") {
  sources = []
}
`)
	if len(errs) > 0 {
		t.Fatalf("parse error: %v", errs)
	}
	if err := ctx.eval.EvalFile(scope, f); err == nil {
		t.Fatal("expected a duplicate target definition error")
	}
}
