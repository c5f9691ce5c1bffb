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

import "testing"

func newTestCtx(t *testing.T) *Context {
	t.Helper()
	return NewContext(testSettings())
}

func mustLabel(t *testing.T, c *Context, raw, dir string) *Label {
	t.Helper()
	l, err := c.interner.ParseLabel(raw, dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestResolveDetectsDependencyCycle(t *testing.T) {
	c := newTestCtx(t)
	a := mustLabel(t, c, "//:a", "//")
	b := mustLabel(t, c, "//:b", "//")

	ta := &Target{Label: a, Type: StaticLibrary, PrivateDeps: []DepEdge{{Label: b, Kind: PrivateDep}}}
	tb := &Target{Label: b, Type: StaticLibrary, PrivateDeps: []DepEdge{{Label: a, Kind: PrivateDep}}}
	if err := c.commitTarget(ta); err != nil {
		t.Fatal(err)
	}
	if err := c.commitTarget(tb); err != nil {
		t.Fatal(err)
	}

	errs := c.ResolveDependencies()
	if len(errs) == 0 {
		t.Fatal("expected a dependency cycle error")
	}
}

func TestResolveMissingDependencyIsAnError(t *testing.T) {
	c := newTestCtx(t)
	a := mustLabel(t, c, "//:a", "//")
	missing := mustLabel(t, c, "//:missing", "//")
	ta := &Target{Label: a, Type: StaticLibrary, PrivateDeps: []DepEdge{{Label: missing, Kind: PrivateDep}}}
	if err := c.commitTarget(ta); err != nil {
		t.Fatal(err)
	}
	if errs := c.ResolveDependencies(); len(errs) == 0 {
		t.Fatal("expected an undeclared-dependency error")
	}
}

func TestResolvePropagatesAllDependentConfigsTransitively(t *testing.T) {
	c := newTestCtx(t)
	cfg := mustLabel(t, c, "//:cfg", "//")
	leaf := mustLabel(t, c, "//:leaf", "//")
	mid := mustLabel(t, c, "//:mid", "//")
	top := mustLabel(t, c, "//:top", "//")

	leafT := &Target{Label: leaf, Type: StaticLibrary, AllDependentConfigs: []*Label{cfg}}
	midT := &Target{Label: mid, Type: StaticLibrary, PrivateDeps: []DepEdge{{Label: leaf, Kind: PrivateDep}}}
	topT := &Target{Label: top, Type: Executable, PrivateDeps: []DepEdge{{Label: mid, Kind: PrivateDep}}}
	for _, tgt := range []*Target{leafT, midT, topT} {
		if err := c.commitTarget(tgt); err != nil {
			t.Fatal(err)
		}
	}

	if errs := c.ResolveDependencies(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(topT.ResolvedAllDependentConfigs) != 1 || topT.ResolvedAllDependentConfigs[0] != cfg {
		t.Fatalf("expected cfg to propagate two hops through all_dependent_configs, got %v", topT.ResolvedAllDependentConfigs)
	}
}

func TestResolvePublicConfigsDoNotCrossAPrivateDep(t *testing.T) {
	c := newTestCtx(t)
	cfg := mustLabel(t, c, "//:cfg", "//")
	leaf := mustLabel(t, c, "//:leaf", "//")
	mid := mustLabel(t, c, "//:mid", "//")
	top := mustLabel(t, c, "//:top", "//")

	leafT := &Target{Label: leaf, Type: StaticLibrary, PublicConfigs: []*Label{cfg}}
	midT := &Target{Label: mid, Type: StaticLibrary, PrivateDeps: []DepEdge{{Label: leaf, Kind: PrivateDep}}}
	topT := &Target{Label: top, Type: Executable, PrivateDeps: []DepEdge{{Label: mid, Kind: PrivateDep}}}
	for _, tgt := range []*Target{leafT, midT, topT} {
		if err := c.commitTarget(tgt); err != nil {
			t.Fatal(err)
		}
	}

	if errs := c.ResolveDependencies(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(midT.ResolvedPublicConfigs) != 0 {
		t.Errorf("mid should not see leaf's public_configs: leaf is a private dep of mid, got %v", midT.ResolvedPublicConfigs)
	}
}

func TestResolvePublicConfigsCrossAPublicDepChain(t *testing.T) {
	c := newTestCtx(t)
	cfg := mustLabel(t, c, "//:cfg", "//")
	leaf := mustLabel(t, c, "//:leaf", "//")
	mid := mustLabel(t, c, "//:mid", "//")

	leafT := &Target{Label: leaf, Type: StaticLibrary, PublicConfigs: []*Label{cfg}}
	midT := &Target{Label: mid, Type: StaticLibrary, PublicDeps: []DepEdge{{Label: leaf, Kind: PublicDep}}}
	for _, tgt := range []*Target{leafT, midT} {
		if err := c.commitTarget(tgt); err != nil {
			t.Fatal(err)
		}
	}

	if errs := c.ResolveDependencies(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(midT.ResolvedPublicConfigs) != 1 || midT.ResolvedPublicConfigs[0] != cfg {
		t.Fatalf("expected mid to inherit cfg through a public dep, got %v", midT.ResolvedPublicConfigs)
	}
}

func TestResolveVisibilityRejectsANonAdmittedDependent(t *testing.T) {
	c := newTestCtx(t)
	lib := mustLabel(t, c, "//lib:lib", "//lib")
	other := mustLabel(t, c, "//other:x", "//other")

	libT := &Target{Label: lib, Type: StaticLibrary, Visibility: []string{"//allowed:*"}}
	otherT := &Target{Label: other, Type: Executable, PrivateDeps: []DepEdge{{Label: lib, Kind: PrivateDep}}}
	for _, tgt := range []*Target{libT, otherT} {
		if err := c.commitTarget(tgt); err != nil {
			t.Fatal(err)
		}
	}

	if errs := c.ResolveDependencies(); len(errs) == 0 {
		t.Fatal("expected a visibility error: //other:x is not in //lib:lib's visibility list")
	}
}

func TestResolveVisibilityWildcardAdmitsEveryone(t *testing.T) {
	c := newTestCtx(t)
	lib := mustLabel(t, c, "//lib:lib", "//lib")
	other := mustLabel(t, c, "//other:x", "//other")

	libT := &Target{Label: lib, Type: StaticLibrary, Visibility: []string{"*"}}
	otherT := &Target{Label: other, Type: Executable, PrivateDeps: []DepEdge{{Label: lib, Kind: PrivateDep}}}
	for _, tgt := range []*Target{libT, otherT} {
		if err := c.commitTarget(tgt); err != nil {
			t.Fatal(err)
		}
	}

	if errs := c.ResolveDependencies(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestResolveAssertNoDepsCatchesATransitiveDependency(t *testing.T) {
	c := newTestCtx(t)
	banned := mustLabel(t, c, "//:banned", "//")
	mid := mustLabel(t, c, "//:mid", "//")
	top := mustLabel(t, c, "//:top", "//")

	bannedT := &Target{Label: banned, Type: StaticLibrary}
	midT := &Target{Label: mid, Type: StaticLibrary, PrivateDeps: []DepEdge{{Label: banned, Kind: PrivateDep}}}
	topT := &Target{Label: top, Type: Executable, PrivateDeps: []DepEdge{{Label: mid, Kind: PrivateDep}}, AssertNoDeps: []string{"//:banned"}}
	for _, tgt := range []*Target{bannedT, midT, topT} {
		if err := c.commitTarget(tgt); err != nil {
			t.Fatal(err)
		}
	}

	if errs := c.ResolveDependencies(); len(errs) == 0 {
		t.Fatal("expected assert_no_deps to catch the transitive dependency on //:banned")
	}
}

func TestResolvePropagatesLibsThroughSourceSets(t *testing.T) {
	c := newTestCtx(t)
	ss := mustLabel(t, c, "//:ss", "//")
	exe := mustLabel(t, c, "//:exe", "//")

	ssT := &Target{Label: ss, Type: SourceSet, Libs: []string{"m"}}
	exeT := &Target{Label: exe, Type: Executable, PrivateDeps: []DepEdge{{Label: ss, Kind: PrivateDep}}}
	for _, tgt := range []*Target{ssT, exeT} {
		if err := c.commitTarget(tgt); err != nil {
			t.Fatal(err)
		}
	}

	if errs := c.ResolveDependencies(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(exeT.TransitiveLibs) != 1 || exeT.TransitiveLibs[0] != "m" {
		t.Fatalf("expected libm to propagate through the source_set, got %v", exeT.TransitiveLibs)
	}
}

func TestResolveDataDepsMayCycleWithoutError(t *testing.T) {
	c := newTestCtx(t)
	a := mustLabel(t, c, "//:a", "//")
	b := mustLabel(t, c, "//:b", "//")

	ta := &Target{Label: a, Type: Executable, DataDeps: []DepEdge{{Label: b, Kind: DataDep}}}
	tb := &Target{Label: b, Type: Executable, DataDeps: []DepEdge{{Label: a, Kind: DataDep}}}
	if err := c.commitTarget(ta); err != nil {
		t.Fatal(err)
	}
	if err := c.commitTarget(tb); err != nil {
		t.Fatal(err)
	}

	if errs := c.ResolveDependencies(); len(errs) != 0 {
		t.Fatalf("data_deps may cycle; unexpected errors: %v", errs)
	}
}

func TestLabelInterningIsPointerEqual(t *testing.T) {
	c := newTestCtx(t)
	a1, err := c.interner.ParseLabel("//dir:name", "//", nil)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := c.interner.ParseLabel("dir:name", "//", nil)
	if err != nil {
		t.Fatal(err)
	}
	if a1 != a2 {
		t.Error("expected the absolute and relative spellings of the same label to intern to the same pointer")
	}
}
