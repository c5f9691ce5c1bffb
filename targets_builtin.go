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
	"path"
	"strings"

	"github.com/basalt-build/basalt/lang"
	"github.com/basalt-build/basalt/pathtools"
)

var targetTypeNames = map[string]TargetType{
	"group":           Group,
	"executable":      Executable,
	"static_library":  StaticLibrary,
	"shared_library":  SharedLibrary,
	"loadable_module": LoadableModule,
	"source_set":      SourceSet,
	"action":          Action,
	"action_foreach":  ActionForEach,
	"bundle_data":     BundleData,
	"copy":            Copy,
}

func parseTargetType(name string, pos lang.Position) (TargetType, *Err) {
	if t, ok := targetTypeNames[name]; ok {
		return t, nil
	}
	return UnknownTarget, generatorErr(pos, "unknown target type %q", name)
}

func init() {
	for name := range targetTypeNames {
		tt := targetTypeNames[name]
		builtinFuncs[name] = makeTargetBuiltin(tt)
	}
}

// makeTargetBuiltin returns the built-in function for one target type. A
// target-declaring call enters a fresh scope with current_toolchain,
// target_gen_dir, target_out_dir, and target_name pre-bound, runs the
// body, then builds and commits a Target from the resulting bindings.
func makeTargetBuiltin(tt TargetType) builtinFunc {
	return func(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
		if err := requireArgs(call, 1, 1); err != nil {
			return Value{}, err
		}
		nameVal, err := ev.evalExpr(scope, call.Args[0])
		if err != nil {
			return Value{}, err
		}
		if nameVal.Kind != StringKind {
			return Value{}, typeErr(call.Args[0].Pos(), "%s() name must be a string, got %s", tt, nameVal.Kind)
		}

		settings := ev.ctx.settings
		currentDir := sourceDirOf(settings.SourceRoot, call.NamePos.Filename)
		label := ev.ctx.interner.intern(currentDir, nameVal.Str, settings.CurrentToolchain)

		body := NewChild(scope)
		if defaults, ok := ev.ctx.defaultsFor(tt); ok {
			for name, v := range defaults.TopLevelBindings() {
				if serr := body.Set(name, v.Clone(), call.NamePos, SetOverwrite); serr != nil {
					return Value{}, serr
				}
			}
		}
		if serr := body.Set("target_name", StringValue(call.NamePos, nameVal.Str), call.NamePos, SetOverwrite); serr != nil {
			return Value{}, serr
		}
		if serr := body.Set("current_toolchain", StringValue(call.NamePos, currentToolchainString(settings)), call.NamePos, SetOverwrite); serr != nil {
			return Value{}, serr
		}
		if serr := body.Set("target_gen_dir", StringValue(call.NamePos, currentDir), call.NamePos, SetOverwrite); serr != nil {
			return Value{}, serr
		}
		if serr := body.Set("target_out_dir", StringValue(call.NamePos, currentDir), call.NamePos, SetOverwrite); serr != nil {
			return Value{}, serr
		}
		body.MarkUsed("target_name")
		body.MarkUsed("current_toolchain")
		body.MarkUsed("target_gen_dir")
		body.MarkUsed("target_out_dir")

		if call.Block != nil {
			if berr := ev.execBlock(body, call.Block); berr != nil {
				return Value{}, berr
			}
		}

		// buildTarget reads every recognized field off body (marking each one
		// used via Get) before the unused-variable check runs, so only
		// genuinely unreferenced helper variables are flagged.
		target, terr := buildTarget(ev.ctx, label, tt, call.NamePos, body)
		if terr != nil {
			return Value{}, terr
		}
		if uerr := body.CheckForUnusedVars(); uerr != nil {
			return Value{}, uerr
		}
		if cerr := ev.ctx.commitTarget(target); cerr != nil {
			return Value{}, cerr
		}
		return ScopeValue(call.NamePos, body), nil
	}
}

func currentToolchainString(s *Settings) string {
	tc := s.CurrentToolchain
	if tc == nil {
		tc = s.DefaultToolchain
	}
	if tc == nil {
		return ""
	}
	return tc.String()
}

// buildTarget maps a target-declaration scope's recognized bindings onto
// a Target record, field by field. The field set is fixed and small, so
// this unpacks directly rather than reflecting over an arbitrary
// per-target properties struct.
func buildTarget(ctx *Context, label *Label, tt TargetType, pos lang.Position, scope *Scope) (*Target, *Err) {
	t := &Target{Label: label, Type: tt, Pos: pos, Toolchain: ctx.settings.CurrentToolchain}
	if v, ok := scope.Get("target_out_dir"); ok {
		t.OutDir = v.Str
	}

	strField := func(name string, dst *string) *Err {
		v, ok := scope.Get(name)
		if !ok || v.IsNone() {
			return nil
		}
		if v.Kind != StringKind {
			return typeErr(v.Pos, "%s must be a string, got %s", name, v.Kind)
		}
		*dst = v.Str
		return nil
	}
	listField := func(name string, dst *[]string) *Err {
		v, ok := scope.Get(name)
		if !ok || v.IsNone() {
			return nil
		}
		list, lerr := v.StringList()
		if lerr != nil {
			return lerr
		}
		*dst = list
		return nil
	}
	labelListField := func(name string, dst *[]*Label) *Err {
		v, ok := scope.Get(name)
		if !ok || v.IsNone() {
			return nil
		}
		raws, lerr := v.StringList()
		if lerr != nil {
			return lerr
		}
		currentDir := sourceDirOf(ctx.settings.SourceRoot, pos.Filename)
		out := make([]*Label, len(raws))
		for i, r := range raws {
			l, perr := ctx.interner.ParseLabel(r, currentDir, ctx.settings.CurrentToolchain)
			if perr != nil {
				return dependencyErr(v.Pos, "%v", perr)
			}
			out[i] = l
		}
		*dst = out
		return nil
	}
	depListField := func(name string, kind DepKind, dst *[]DepEdge) *Err {
		v, ok := scope.Get(name)
		if !ok || v.IsNone() {
			return nil
		}
		raws, lerr := v.StringList()
		if lerr != nil {
			return lerr
		}
		currentDir := sourceDirOf(ctx.settings.SourceRoot, pos.Filename)
		out := make([]DepEdge, len(raws))
		for i, r := range raws {
			l, perr := ctx.interner.ParseLabel(r, currentDir, ctx.settings.CurrentToolchain)
			if perr != nil {
				return dependencyErr(v.Pos, "%v", perr)
			}
			out[i] = DepEdge{Label: l, Kind: kind, Pos: v.Pos}
		}
		*dst = out
		return nil
	}

	for _, step := range []func() *Err{
		func() *Err { return listField("sources", &t.Sources) },
		func() *Err { return listField("inputs", &t.Inputs) },
		func() *Err { return listField("outputs", &t.OutputTmpl) },
		func() *Err { return listField("public", &t.PublicHeaders) },
		func() *Err { return labelListField("public_configs", &t.PublicConfigs) },
		func() *Err { return labelListField("all_dependent_configs", &t.AllDependentConfigs) },
		func() *Err { return labelListField("configs", &t.Configs) },
		func() *Err { return depListField("deps", PrivateDep, &t.PrivateDeps) },
		func() *Err { return depListField("public_deps", PublicDep, &t.PublicDeps) },
		func() *Err { return depListField("data_deps", DataDep, &t.DataDeps) },
		func() *Err { return listField("args", &t.Args) },
		func() *Err { return strField("script", &t.Script) },
		func() *Err { return strField("depfile", &t.Depfile) },
		func() *Err { return strField("pool", &t.Pool) },
		func() *Err { return listField("assert_no_deps", &t.AssertNoDeps) },
		func() *Err { return listField("visibility", &t.Visibility) },
		func() *Err { return listField("libs", &t.Libs) },
		func() *Err { return listField("lib_dirs", &t.LibDirs) },
		func() *Err { return listField("frameworks", &t.Frameworks) },
	} {
		if err := step(); err != nil {
			return nil, err
		}
	}

	if t.Type == Copy && len(t.OutputTmpl) == 0 && len(t.Sources) > 0 {
		baseNames := make([]string, len(t.Sources))
		for i, src := range t.Sources {
			baseNames[i] = path.Base(src)
		}
		// pathtools.PrefixPaths joins with filepath.Join, which collapses the
		// leading "//" of a source-rooted dir down to a single slash; restore
		// it so the defaulted outputs stay "//"-rooted like every other path.
		t.OutputTmpl = pathtools.PrefixPaths(baseNames, t.OutDir)
		for i, o := range t.OutputTmpl {
			if !strings.HasPrefix(o, "//") {
				t.OutputTmpl[i] = "//" + strings.TrimPrefix(o, "/")
			}
		}
	}

	return t, nil
}
