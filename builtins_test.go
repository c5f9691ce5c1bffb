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

func evalWithCtx(t *testing.T, ctx *Context, src string) *Scope {
	t.Helper()
	file, errs := lang.Parse("test", src)
	if len(errs) > 0 {
		t.Fatalf("parse error: %v", errs)
	}
	scope := NewChild(ctx.rootScope)
	if err := ctx.eval.EvalFile(scope, file); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return scope
}

func TestDeclareArgsRegistersADefault(t *testing.T) {
	ctx := NewContext(testSettings())
	evalWithCtx(t, ctx, `declare_args() {
  enable_foo = true
}
`)
	v, ok := ctx.argValue("enable_foo")
	if !ok || !v.Bool {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestDeclareArgsIsOverriddenByExternalArgs(t *testing.T) {
	settings := testSettings()
	settings.Args = map[string]Value{"enable_foo": BoolValue(lang.Position{}, false)}
	ctx := NewContext(settings)
	evalWithCtx(t, ctx, `declare_args() {
  enable_foo = true
}
`)
	v, ok := ctx.argValue("enable_foo")
	if !ok || v.Bool {
		t.Fatalf("expected the --args override to win, got %v, %v", v, ok)
	}
	if len(ctx.UnusedArgOverrides()) != 0 {
		t.Errorf("enable_foo was declared, should not show up as unused")
	}
}

func TestUnusedArgOverrideIsReported(t *testing.T) {
	settings := testSettings()
	settings.Args = map[string]Value{"never_declared": BoolValue(lang.Position{}, true)}
	ctx := NewContext(settings)
	unused := ctx.UnusedArgOverrides()
	if len(unused) != 1 || unused[0] != "never_declared" {
		t.Fatalf("got %v", unused)
	}
}

func TestRedeclaringABuildArgIsAnError(t *testing.T) {
	ctx := NewContext(testSettings())
	evalWithCtx(t, ctx, `declare_args() {
  x = 1
}
`)
	file, errs := lang.Parse("test2", `declare_args() {
  x = 2
}
`)
	if len(errs) > 0 {
		t.Fatalf("parse error: %v", errs)
	}
	scope := NewChild(ctx.rootScope)
	if err := ctx.eval.EvalFile(scope, file); err == nil {
		t.Fatal("expected a redeclaration error")
	}
}

func TestNotNeededMarksWithoutReading(t *testing.T) {
	scope := evalSrc(t, `x = 1
not_needed(["x"])
`)
	if err := scope.CheckForUnusedVars(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetPathInfoName(t *testing.T) {
	scope := evalSrc(t, `n = get_path_info("foo/bar.cc", "name")
e = get_path_info("foo/bar.cc", "extension")
d = get_path_info("foo/bar.cc", "dir")
`)
	n, _ := scope.Get("n")
	e, _ := scope.Get("e")
	d, _ := scope.Get("d")
	if n.Str != "bar" || e.Str != "cc" || d.Str != "foo" {
		t.Errorf("got name=%q extension=%q dir=%q", n.Str, e.Str, d.Str)
	}
}

func TestRebasePathToAbsolute(t *testing.T) {
	scope := evalSrc(t, `p = rebase_path("bar.cc")
`)
	p, _ := scope.Get("p")
	if p.Str != "//bar.cc" {
		t.Errorf("got %q, want //bar.cc", p.Str)
	}
}

func TestExecScriptFailsHardWithoutAScriptExecutable(t *testing.T) {
	file, errs := lang.Parse("test", `x = exec_script("helper.py", ["a"])`)
	if len(errs) > 0 {
		t.Fatalf("parse error: %v", errs)
	}
	ctx := NewContext(testSettings())
	scope := NewChild(ctx.rootScope)
	if err := ctx.eval.EvalFile(scope, file); err == nil {
		t.Fatal("expected exec_script() to fail hard when no script executable is configured")
	}
}

func TestSetDefaultsRegistersADefaultScope(t *testing.T) {
	ctx := NewContext(testSettings())
	evalWithCtx(t, ctx, `set_defaults("executable") {
  visibility = ["*"]
}
`)
	if _, ok := ctx.defaultsFor(Executable); !ok {
		t.Fatal("expected set_defaults(\"executable\") to register a default scope")
	}
}

func TestSetDefaultsCalledTwiceForSameTypeIsAnError(t *testing.T) {
	ctx := NewContext(testSettings())
	evalWithCtx(t, ctx, `set_defaults("executable") {
  visibility = ["*"]
}
`)
	file, errs := lang.Parse("test2", `set_defaults("executable") {
  visibility = ["//only:me"]
}
`)
	if len(errs) > 0 {
		t.Fatalf("parse error: %v", errs)
	}
	scope := NewChild(ctx.rootScope)
	if err := ctx.eval.EvalFile(scope, file); err == nil {
		t.Fatal("expected a duplicate set_defaults() error")
	}
}
