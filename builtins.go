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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/basalt-build/basalt/lang"
)

// builtinFunc is the shape every built-in function shares with a template
// invocation: it sees the raw call so it can control argument evaluation
// itself (defined() must not mark its argument used; template() must not
// evaluate its block as an ordinary expression).
type builtinFunc func(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err)

// builtinFuncs is populated here with the language-core built-ins; the
// target-declaring functions (executable, static_library, action, ...)
// are added by targets_builtin.go's init, keeping this file free of
// knowledge about Target construction.
var builtinFuncs map[string]builtinFunc

func init() {
	builtinFuncs = map[string]builtinFunc{
		"print":                  biPrint,
		"defined":                biDefined,
		"assert":                 biAssert,
		"not_needed":             biNotNeeded,
		"forward_variables_from": biForwardVariablesFrom,
		"template":               biTemplate,
		"import":                 biImport,
		"declare_args":           biDeclareArgs,
		"set_defaults":           biSetDefaults,
		"get_path_info":          biGetPathInfo,
		"rebase_path":            biRebasePath,
		"get_target_outputs":     biGetTargetOutputs,
		"read_file":              biReadFile,
		"write_file":             biWriteFile,
		"exec_script":            biExecScript,
	}
}

func requireArgs(call *lang.Call, min, max int) *Err {
	n := len(call.Args)
	if n < min || (max >= 0 && n > max) {
		if min == max {
			return generatorErr(call.NamePos, "%s() takes %d argument(s), got %d", call.Name, min, n)
		}
		return generatorErr(call.NamePos, "%s() takes between %d and %d arguments, got %d", call.Name, min, max, n)
	}
	return nil
}

func evalArgs(ev *Evaluator, scope *Scope, call *lang.Call) ([]Value, *Err) {
	out := make([]Value, len(call.Args))
	for i, a := range call.Args {
		v, err := ev.evalExpr(scope, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func biPrint(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	args, err := evalArgs(ev, scope, call)
	if err != nil {
		return Value{}, err
	}
	parts := make([]string, len(args))
	for i, a := range args {
		s, ierr := a.ToInterpolated()
		if ierr != nil {
			return Value{}, ierr
		}
		parts[i] = s
	}
	fmt.Fprintln(ev.ctx.Stdout, strings.Join(parts, " "))
	return NoneValue(call.NamePos), nil
}

// biDefined implements defined(ident) / defined(scope.ident), which tests
// presence without marking the identifier used.
func biDefined(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 1, 1); err != nil {
		return Value{}, err
	}
	ok, err := ev.evalDefinedArg(scope, call.Args[0])
	if err != nil {
		return Value{}, err
	}
	return BoolValue(call.NamePos, ok), nil
}

func biAssert(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 1, 2); err != nil {
		return Value{}, err
	}
	cond, err := ev.evalExpr(scope, call.Args[0])
	if err != nil {
		return Value{}, err
	}
	if cond.Kind != BoolKind {
		return Value{}, typeErr(call.Args[0].Pos(), "assert() requires a boolean, got %s", cond.Kind)
	}
	if cond.Bool {
		return NoneValue(call.NamePos), nil
	}
	if len(call.Args) == 2 {
		msg, err := ev.evalExpr(scope, call.Args[1])
		if err != nil {
			return Value{}, err
		}
		s, ierr := msg.ToInterpolated()
		if ierr != nil {
			return Value{}, ierr
		}
		return Value{}, generatorErr(call.NamePos, "assertion failed: %s", s)
	}
	return Value{}, generatorErr(call.NamePos, "assertion failed")
}

// biNotNeeded marks variables used without reading them, the named
// complement to mark_used: not_needed(["a", "b"]) marks them in the
// current scope, not_needed(from_scope, ["a", "b"]) marks them in
// from_scope. "*" marks every variable declared directly in the scope.
func biNotNeeded(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 1, 2); err != nil {
		return Value{}, err
	}
	target := scope
	namesArg := call.Args[0]
	if len(call.Args) == 2 {
		fromVal, err := ev.evalExpr(scope, call.Args[0])
		if err != nil {
			return Value{}, err
		}
		if fromVal.Kind != ScopeKind {
			return Value{}, typeErr(call.Args[0].Pos(), "not_needed() first argument must be a scope, got %s", fromVal.Kind)
		}
		target = fromVal.Scope
		namesArg = call.Args[1]
	}
	names, err := evalNameList(ev, scope, namesArg, target)
	if err != nil {
		return Value{}, err
	}
	for _, n := range names {
		target.MarkUsed(n)
	}
	return NoneValue(call.NamePos), nil
}

// forward_variables_from(from_scope, variable_list) copies each named
// variable from from_scope into the current scope, marking the source
// read, without requiring the template body to name every field
// individually.
func biForwardVariablesFrom(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 2, 2); err != nil {
		return Value{}, err
	}
	fromVal, err := ev.evalExpr(scope, call.Args[0])
	if err != nil {
		return Value{}, err
	}
	if fromVal.Kind != ScopeKind {
		return Value{}, typeErr(call.Args[0].Pos(), "forward_variables_from() first argument must be a scope, got %s", fromVal.Kind)
	}
	from := fromVal.Scope
	names, nerr := evalNameList(ev, scope, call.Args[1], from)
	if nerr != nil {
		return Value{}, nerr
	}
	for _, n := range names {
		v, ok := from.Get(n)
		if !ok {
			continue
		}
		if serr := scope.Set(n, v.Clone(), call.NamePos, SetOverwrite); serr != nil {
			return Value{}, serr
		}
	}
	return NoneValue(call.NamePos), nil
}

// evalNameList evaluates a variable-name-list argument shared by
// not_needed and forward_variables_from: either a list of strings, or the
// literal string "*" meaning every name declared directly in wildcardScope.
func evalNameList(ev *Evaluator, scope *Scope, expr lang.Expression, wildcardScope *Scope) ([]string, *Err) {
	v, err := ev.evalExpr(scope, expr)
	if err != nil {
		return nil, err
	}
	if v.Kind == StringKind && v.Str == "*" {
		return wildcardScope.DeclaredNames(), nil
	}
	return v.StringList()
}

// biTemplate implements `template(name) { body }`: capture the enclosing
// scope and register the template under name.
func biTemplate(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 1, 1); err != nil {
		return Value{}, err
	}
	if call.Block == nil {
		return Value{}, generatorErr(call.NamePos, "template() requires a block body")
	}
	nameVal, err := ev.evalExpr(scope, call.Args[0])
	if err != nil {
		return Value{}, err
	}
	if nameVal.Kind != StringKind {
		return Value{}, typeErr(call.Args[0].Pos(), "template() name must be a string, got %s", nameVal.Kind)
	}
	t := &Template{Name: nameVal.Str, Pos: call.NamePos, Body: call.Block, DefScope: scope.MakeClosure()}
	if terr := scope.AddTemplate(t); terr != nil {
		return Value{}, terr
	}
	return NoneValue(call.NamePos), nil
}

// instantiateTemplate runs tmpl's body against a fresh instance scope
// parented at its definition-time capture scope, with target_name and
// invoker pre-bound.
func (ev *Evaluator) instantiateTemplate(scope *Scope, tmpl *Template, call *lang.Call) (Value, *Err) {
	if len(call.Args) != 1 {
		return Value{}, generatorErr(call.NamePos, "%s() takes exactly one argument, the instance name", tmpl.Name)
	}
	nameVal, err := ev.evalExpr(scope, call.Args[0])
	if err != nil {
		return Value{}, err
	}
	if nameVal.Kind != StringKind {
		return Value{}, typeErr(call.Args[0].Pos(), "%s() name must be a string, got %s", tmpl.Name, nameVal.Kind)
	}

	var invoker *Scope
	if call.Block != nil {
		inv, ierr := ev.evalBlockAsScope(scope, call.Block)
		if ierr != nil {
			return Value{}, ierr
		}
		inv.MarkAllUsed()
		invoker = inv
	} else {
		invoker = NewChild(scope)
		invoker.MarkAllUsed()
	}

	instScope := NewChild(tmpl.DefScope)
	if serr := instScope.Set("target_name", StringValue(call.NamePos, nameVal.Str), call.NamePos, SetOverwrite); serr != nil {
		return Value{}, serr
	}
	if serr := instScope.Set("invoker", ScopeValue(call.NamePos, invoker), call.NamePos, SetOverwrite); serr != nil {
		return Value{}, serr
	}
	instScope.MarkUsed("target_name")
	instScope.MarkUsed("invoker")

	if berr := ev.execBlock(instScope, tmpl.Body); berr != nil {
		return Value{}, berr
	}
	if uerr := instScope.CheckForUnusedVars(); uerr != nil {
		return Value{}, uerr
	}
	return ScopeValue(call.NamePos, instScope), nil
}

// biImport implements import(path): load path at most once per run, then
// copy its top-level bindings and templates into the caller's scope
// -- importing the same file twice is a no-op, not an error.
func biImport(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 1, 1); err != nil {
		return Value{}, err
	}
	pathVal, err := ev.evalExpr(scope, call.Args[0])
	if err != nil {
		return Value{}, err
	}
	if pathVal.Kind != StringKind {
		return Value{}, typeErr(call.Args[0].Pos(), "import() requires a string path, got %s", pathVal.Kind)
	}

	root := ev.ctx.settings.SourceRoot
	currentDir := sourceDirOf(root, call.NamePos.Filename)
	abs := resolveSourcePath(root, currentDir, pathVal.Str)

	if !scope.MarkFileImported(abs) {
		return NoneValue(call.NamePos), nil
	}

	imported, ierr := ev.ctx.sched.Load(abs, call.NamePos)
	if ierr != nil {
		return Value{}, ierr
	}

	for name, v := range imported.TopLevelBindings() {
		if serr := scope.Set(name, v.Clone(), call.NamePos, SetOverwrite); serr != nil {
			return Value{}, serr
		}
		scope.MarkImported(name)
	}
	for _, t := range imported.TopLevelTemplates() {
		if terr := scope.AddTemplate(t); terr != nil {
			return Value{}, terr
		}
	}
	return NoneValue(call.NamePos), nil
}

// biDeclareArgs implements declare_args() { name = default ... }: each
// assignment in the body becomes a declared build argument, overridden by
// any matching --args value.
func biDeclareArgs(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 0, 0); err != nil {
		return Value{}, err
	}
	if call.Block == nil {
		return Value{}, generatorErr(call.NamePos, "declare_args() requires a block body")
	}
	child := NewChild(scope)
	if berr := ev.execBlock(child, call.Block); berr != nil {
		return Value{}, berr
	}
	positions := child.TopLevelDeclPositions()
	for name, def := range child.TopLevelBindings() {
		if derr := ev.ctx.declareArg(name, positions[name], def); derr != nil {
			return Value{}, derr
		}
		if v, ok := ev.ctx.argValue(name); ok {
			if serr := child.Set(name, v, positions[name], SetOverwrite); serr != nil {
				return Value{}, serr
			}
		}
	}
	child.MarkAllUsed()
	return NoneValue(call.NamePos), nil
}

// biSetDefaults implements set_defaults(target_type) { ... }: the body's
// resulting scope is copied into each matching target invocation's scope
// before its own body runs.
func biSetDefaults(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 1, 1); err != nil {
		return Value{}, err
	}
	if call.Block == nil {
		return Value{}, generatorErr(call.NamePos, "set_defaults() requires a block body")
	}
	typeVal, err := ev.evalExpr(scope, call.Args[0])
	if err != nil {
		return Value{}, err
	}
	if typeVal.Kind != StringKind {
		return Value{}, typeErr(call.Args[0].Pos(), "set_defaults() requires a string target type, got %s", typeVal.Kind)
	}
	tt, terr := parseTargetType(typeVal.Str, call.Args[0].Pos())
	if terr != nil {
		return Value{}, terr
	}
	defaults, berr := ev.evalBlockAsScope(scope, call.Block)
	if berr != nil {
		return Value{}, berr
	}
	defaults.MarkAllUsed()
	if derr := ev.ctx.setDefaults(tt, defaults); derr != nil {
		return Value{}, derr
	}
	return NoneValue(call.NamePos), nil
}

func biGetPathInfo(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 2, 2); err != nil {
		return Value{}, err
	}
	args, err := evalArgs(ev, scope, call)
	if err != nil {
		return Value{}, err
	}
	if args[1].Kind != StringKind {
		return Value{}, typeErr(call.Args[1].Pos(), "get_path_info() second argument must be a string, got %s", args[1].Kind)
	}
	what := args[1].Str

	switch args[0].Kind {
	case StringKind:
		s, perr := pathInfoOne(args[0].Str, what)
		if perr != nil {
			return Value{}, perr
		}
		return StringValue(call.NamePos, s), nil
	case ListKind:
		strs, serr := args[0].StringList()
		if serr != nil {
			return Value{}, serr
		}
		out := make([]Value, len(strs))
		for i, s := range strs {
			r, perr := pathInfoOne(s, what)
			if perr != nil {
				return Value{}, perr
			}
			out[i] = StringValue(call.NamePos, r)
		}
		return ListValue(call.NamePos, out), nil
	default:
		return Value{}, typeErr(call.Args[0].Pos(), "get_path_info() requires a string or list of strings, got %s", args[0].Kind)
	}
}

func biRebasePath(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 1, 3); err != nil {
		return Value{}, err
	}
	args, err := evalArgs(ev, scope, call)
	if err != nil {
		return Value{}, err
	}
	currentDir := sourceDirOf(ev.ctx.settings.SourceRoot, call.NamePos.Filename)
	oldBase := currentDir
	newBase := ""
	if len(args) >= 2 {
		if args[1].Kind != StringKind {
			return Value{}, typeErr(call.Args[1].Pos(), "rebase_path() new_base must be a string, got %s", args[1].Kind)
		}
		newBase = args[1].Str
	}
	if len(args) == 3 {
		if args[2].Kind != StringKind {
			return Value{}, typeErr(call.Args[2].Pos(), "rebase_path() old_base must be a string, got %s", args[2].Kind)
		}
		oldBase = args[2].Str
	}

	switch args[0].Kind {
	case StringKind:
		return StringValue(call.NamePos, rebaseOne(args[0].Str, newBase, oldBase)), nil
	case ListKind:
		strs, serr := args[0].StringList()
		if serr != nil {
			return Value{}, serr
		}
		out := make([]Value, len(strs))
		for i, s := range strs {
			out[i] = StringValue(call.NamePos, rebaseOne(s, newBase, oldBase))
		}
		return ListValue(call.NamePos, out), nil
	default:
		return Value{}, typeErr(call.Args[0].Pos(), "rebase_path() requires a string or list of strings, got %s", args[0].Kind)
	}
}

func biGetTargetOutputs(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 1, 1); err != nil {
		return Value{}, err
	}
	v, err := ev.evalExpr(scope, call.Args[0])
	if err != nil {
		return Value{}, err
	}
	if v.Kind != StringKind {
		return Value{}, typeErr(call.Args[0].Pos(), "get_target_outputs() requires a string label, got %s", v.Kind)
	}
	currentDir := sourceDirOf(ev.ctx.settings.SourceRoot, call.NamePos.Filename)
	label, perr := ev.ctx.interner.ParseLabel(v.Str, currentDir, ev.ctx.settings.CurrentToolchain)
	if perr != nil {
		return Value{}, dependencyErr(call.Args[0].Pos(), "%v", perr)
	}
	t, ok := ev.ctx.graph.Lookup(label)
	if !ok {
		return Value{}, dependencyErr(call.NamePos, "get_target_outputs(): %s has not been declared yet", label)
	}
	out := make([]Value, len(t.Outputs))
	for i, o := range t.Outputs {
		out[i] = StringValue(call.NamePos, o)
	}
	return ListValue(call.NamePos, out), nil
}

// biReadFile implements read_file(path, format). The file's content
// becomes a generator dependency: a change to it must re-trigger
// generation.
func biReadFile(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 1, 2); err != nil {
		return Value{}, err
	}
	args, err := evalArgs(ev, scope, call)
	if err != nil {
		return Value{}, err
	}
	if args[0].Kind != StringKind {
		return Value{}, typeErr(call.Args[0].Pos(), "read_file() requires a string path, got %s", args[0].Kind)
	}
	format := ""
	if len(args) == 2 {
		if args[1].Kind != StringKind {
			return Value{}, typeErr(call.Args[1].Pos(), "read_file() format must be a string, got %s", args[1].Kind)
		}
		format = args[1].Str
	}

	root := ev.ctx.settings.SourceRoot
	currentDir := sourceDirOf(root, call.NamePos.Filename)
	abs := resolveSourcePath(root, currentDir, args[0].Str)

	data, rerr := os.ReadFile(abs)
	if rerr != nil {
		return Value{}, ioErr(call.NamePos, "read_file(%q): %v", args[0].Str, rerr)
	}
	ev.ctx.addGenDep(abs)
	return convertOutput(ev, data, format, call.NamePos)
}

// biWriteFile implements write_file(path, data, [format]).
func biWriteFile(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 2, 3); err != nil {
		return Value{}, err
	}
	args, err := evalArgs(ev, scope, call)
	if err != nil {
		return Value{}, err
	}
	if args[0].Kind != StringKind {
		return Value{}, typeErr(call.Args[0].Pos(), "write_file() requires a string path, got %s", args[0].Kind)
	}

	var data []byte
	switch args[1].Kind {
	case StringKind:
		data = []byte(args[1].Str)
	case ListKind:
		lines, serr := args[1].StringList()
		if serr != nil {
			return Value{}, serr
		}
		data = []byte(strings.Join(lines, "\n") + "\n")
	default:
		s, ierr := args[1].ToInterpolated()
		if ierr != nil {
			return Value{}, ierr
		}
		data = []byte(s)
	}

	root := ev.ctx.settings.SourceRoot
	currentDir := sourceDirOf(root, call.NamePos.Filename)
	abs := resolveSourcePath(root, currentDir, args[0].Str)

	if merr := os.MkdirAll(filepath.Dir(abs), 0o755); merr != nil {
		return Value{}, ioErr(call.NamePos, "write_file(%q): %v", args[0].Str, merr)
	}
	if werr := os.WriteFile(abs, data, 0o644); werr != nil {
		return Value{}, ioErr(call.NamePos, "write_file(%q): %v", args[0].Str, werr)
	}
	return NoneValue(call.NamePos), nil
}

// biExecScript implements exec_script(script, args, [result_processor],
// [input_files]) -- the one escape hatch to external processes. A missing
// script executable is a hard error the first time exec_script runs,
// rather than silently skipping the call.
func biExecScript(ev *Evaluator, scope *Scope, call *lang.Call) (Value, *Err) {
	if err := requireArgs(call, 1, 4); err != nil {
		return Value{}, err
	}
	args, err := evalArgs(ev, scope, call)
	if err != nil {
		return Value{}, err
	}
	if args[0].Kind != StringKind {
		return Value{}, typeErr(call.Args[0].Pos(), "exec_script() requires a string script path, got %s", args[0].Kind)
	}
	var scriptArgs []string
	if len(args) >= 2 {
		scriptArgs, err = args[1].StringList()
		if err != nil {
			return Value{}, err
		}
	}
	processor := ""
	if len(args) >= 3 {
		if args[2].Kind != StringKind {
			return Value{}, typeErr(call.Args[2].Pos(), "exec_script() result processor must be a string, got %s", args[2].Kind)
		}
		processor = args[2].Str
	}
	var inputFiles []string
	if len(args) == 4 {
		inputFiles, err = args[3].StringList()
		if err != nil {
			return Value{}, err
		}
	}

	executable := ev.ctx.settings.ScriptExecutable
	if executable == "" {
		return Value{}, ioErr(call.NamePos, "exec_script(): no script executable is configured")
	}
	if _, statErr := os.Stat(executable); statErr != nil {
		return Value{}, ioErr(call.NamePos, "exec_script(): script executable %q: %v", executable, statErr)
	}

	root := ev.ctx.settings.SourceRoot
	currentDir := sourceDirOf(root, call.NamePos.Filename)
	scriptPath := resolveSourcePath(root, currentDir, args[0].Str)
	ev.ctx.addGenDep(scriptPath)
	for _, f := range inputFiles {
		ev.ctx.addGenDep(resolveSourcePath(root, currentDir, f))
	}

	cmd := exec.Command(executable, append([]string{scriptPath}, scriptArgs...)...)
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if runErr := cmd.Run(); runErr != nil {
		return Value{}, ioErr(call.NamePos, "exec_script(%q): %v: %s", args[0].Str, runErr, stderr.String())
	}

	if processor == "" {
		return NoneValue(call.NamePos), nil
	}
	return convertOutput(ev, stdout.Bytes(), processor, call.NamePos)
}

// convertOutput applies one of exec_script/read_file's result-processor
// conversions to raw bytes.
func convertOutput(ev *Evaluator, data []byte, processor string, pos lang.Position) (Value, *Err) {
	text := string(data)
	switch processor {
	case "", "value":
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return NoneValue(pos), nil
		}
		expr, errs := lang.ParseExpression(pos.Filename, trimmed)
		if len(errs) > 0 {
			return Value{}, syntaxErr(pos, "could not parse value: %v", errs[0])
		}
		isolated := NewChild(ev.ctx.rootScope)
		v, verr := ev.evalExpr(isolated, expr)
		if verr != nil {
			return Value{}, verr
		}
		return v, nil
	case "string":
		return StringValue(pos, text), nil
	case "trim string":
		return StringValue(pos, strings.TrimSpace(text)), nil
	case "list lines":
		return linesValue(text, pos, false), nil
	case "trim list lines":
		return linesValue(text, pos, true), nil
	case "scope":
		file, errs := lang.Parse(pos.Filename, text)
		if len(errs) > 0 {
			return Value{}, syntaxErr(pos, "could not parse scope: %v", errs[0])
		}
		isolated := NewChild(ev.ctx.rootScope)
		if berr := ev.execBlock(isolated, file.Block); berr != nil {
			return Value{}, berr
		}
		return ScopeValue(pos, isolated), nil
	case "json":
		var decoded interface{}
		if jerr := json.Unmarshal(data, &decoded); jerr != nil {
			return Value{}, syntaxErr(pos, "could not parse json: %v", jerr)
		}
		return jsonToValue(decoded, pos)
	default:
		return Value{}, generatorErr(pos, "unknown result processor %q", processor)
	}
}

func linesValue(text string, pos lang.Position, trim bool) Value {
	raw := strings.Split(text, "\n")
	var lines []string
	for _, l := range raw {
		if trim {
			l = strings.TrimSpace(l)
		}
		lines = append(lines, l)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	out := make([]Value, len(lines))
	for i, l := range lines {
		out[i] = StringValue(pos, l)
	}
	return ListValue(pos, out)
}

func jsonToValue(v interface{}, pos lang.Position) (Value, *Err) {
	switch t := v.(type) {
	case nil:
		return NoneValue(pos), nil
	case bool:
		return BoolValue(pos, t), nil
	case float64:
		return IntValue(pos, int64(t)), nil
	case string:
		return StringValue(pos, t), nil
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			elemVal, err := jsonToValue(e, pos)
			if err != nil {
				return Value{}, err
			}
			out[i] = elemVal
		}
		return ListValue(pos, out), nil
	case map[string]interface{}:
		s := NewRootScope(nil)
		for k, e := range t {
			fieldVal, err := jsonToValue(e, pos)
			if err != nil {
				return Value{}, err
			}
			if serr := s.Set(k, fieldVal, pos, SetDefault); serr != nil {
				return Value{}, serr
			}
			s.MarkUsed(k)
		}
		s.MarkAllUsed()
		return ScopeValue(pos, s), nil
	default:
		return Value{}, generatorErr(pos, "unsupported json value %v", t)
	}
}
