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

// Command gen evaluates a basalt build description rooted at a BUILD.basalt
// file and writes the generated build.ninja, args.gn, and build.ninja.d into
// an output directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/basalt-build/basalt"
	"github.com/basalt-build/basalt/deptools"
	"github.com/basalt-build/basalt/lang"
)

var (
	flagRoot             string
	flagDotfile          string
	flagIDE              string
	flagScriptExecutable string
	flagArgs             []string
)

func main() {
	root := &cobra.Command{
		Use:   "gen <out-dir>",
		Short: "Evaluate a basalt build description and emit Ninja build files",
		Args:  cobra.ExactArgs(1),
		RunE:  runGen,
	}
	root.Flags().StringVar(&flagRoot, "root", ".", "source root directory containing the root build file")
	root.Flags().StringVar(&flagDotfile, "dotfile", "", "path to the .basaltrc dotfile (defaults to <root>/.basaltrc)")
	root.Flags().StringVar(&flagIDE, "ide", "", "emit IDE project metadata of the given kind alongside the Ninja files")
	root.Flags().StringVar(&flagScriptExecutable, "script-executable", "", "interpreter used to run exec_script() scripts")
	root.Flags().StringArrayVar(&flagArgs, "args", nil, "build argument override, name=value, repeatable")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gen:", err)
		os.Exit(1)
	}
}

func runGen(cmd *cobra.Command, cmdArgs []string) error {
	outDir := cmdArgs[0]
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	sourceRoot, err := filepath.Abs(flagRoot)
	if err != nil {
		return err
	}

	dotfile := flagDotfile
	if dotfile == "" {
		dotfile = filepath.Join(sourceRoot, ".basaltrc")
	}
	rootFile, buildConfigFile, err := readDotfile(dotfile)
	if err != nil {
		return err
	}

	args, err := parseArgs(flagArgs)
	if err != nil {
		return err
	}

	settings := &basalt.Settings{
		SourceRoot:       sourceRoot,
		BuildDir:         outDir,
		DotfilePath:      dotfile,
		BuildConfigPath:  buildConfigFile,
		ScriptExecutable: flagScriptExecutable,
		Args:             args,
	}

	ctx := basalt.NewContext(settings)

	// The buildconfig is loaded directly onto the shared root scope, before
	// the root build file, so its bindings are already in place as defaults
	// by the time anything inherits from that scope.
	if berr := ctx.LoadBuildConfig(buildConfigFile); berr != nil {
		fmt.Fprintln(os.Stderr, "gen:", berr)
		return fmt.Errorf("loading buildconfig %s", buildConfigFile)
	}

	genDeps, errs := ctx.Load(rootFile)
	genDeps = append([]string{buildConfigFile}, genDeps...)
	if len(errs) == 0 {
		errs = ctx.ResolveDependencies()
	}
	if unused := ctx.UnusedArgOverrides(); len(unused) > 0 {
		for _, name := range unused {
			errs = append(errs, fmt.Errorf("--args supplied a value for %q, but it was never declared with declare_args()", name))
		}
	}
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, "gen:", e)
		}
		return fmt.Errorf("%d error(s)", len(errs))
	}

	if err := writeOutputs(ctx, outDir, genDeps); err != nil {
		return err
	}

	if flagIDE != "" {
		ctx.Log.Warnf("IDE project emission for %q is not implemented; skipping", flagIDE)
	}

	return nil
}

func writeOutputs(ctx *basalt.Context, outDir string, genDeps []string) error {
	ninjaPath := filepath.Join(outDir, "build.ninja")
	f, err := os.Create(ninjaPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := basalt.EmitNinja(f, ctx); err != nil {
		return err
	}

	if err := ctx.WriteArgsFile(outDir); err != nil {
		return err
	}

	return deptools.WriteDepFile(filepath.Join(outDir, "build.ninja.d"), ninjaPath, genDeps)
}

// readDotfile reads the `root = "//path/to/BUILD.basalt"` and
// `buildconfig = "//path/to/BUILDCONFIG.basalt"` assignments a .basaltrc
// dotfile is expected to contain, resolving both relative to the directory
// that contains the dotfile.
func readDotfile(path string) (rootFile, buildConfigFile string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading dotfile: %w", err)
	}
	file, errs := lang.Parse(path, string(data))
	if len(errs) > 0 {
		return "", "", fmt.Errorf("parsing dotfile %s: %v", path, errs[0])
	}
	resolved := map[string]string{}
	for _, stmt := range file.Block.Stmts {
		assign, ok := stmt.(*lang.Assignment)
		if !ok || (assign.Name != "root" && assign.Name != "buildconfig") {
			continue
		}
		v, verr := basalt.EvalConstExpr(assign.Value)
		if verr != nil || v.Kind != basalt.StringKind {
			return "", "", fmt.Errorf("dotfile %s: %s must be a string literal", path, assign.Name)
		}
		rel := strings.TrimPrefix(v.Str, "//")
		resolved[assign.Name] = filepath.Join(filepath.Dir(path), filepath.FromSlash(rel))
	}
	rootFile, ok := resolved["root"]
	if !ok {
		return "", "", fmt.Errorf("dotfile %s: missing a root = \"//...\" assignment", path)
	}
	buildConfigFile, ok = resolved["buildconfig"]
	if !ok {
		return "", "", fmt.Errorf("dotfile %s: missing a buildconfig = \"//...\" assignment", path)
	}
	return rootFile, buildConfigFile, nil
}

// parseArgs turns repeated name=value --args flags into build-argument
// override values by parsing each value as a standalone expression, the
// same grammar declare_args() defaults are written in.
func parseArgs(raw []string) (map[string]basalt.Value, error) {
	out := make(map[string]basalt.Value, len(raw))
	for _, kv := range raw {
		eq := strings.Index(kv, "=")
		if eq < 0 {
			return nil, fmt.Errorf("--args %q is missing an \"=value\"", kv)
		}
		name, valSrc := kv[:eq], kv[eq+1:]
		expr, errs := lang.ParseExpression("--args", valSrc)
		if len(errs) > 0 {
			return nil, fmt.Errorf("--args %s=%s: %v", name, valSrc, errs[0])
		}
		v, err := basalt.EvalConstExpr(expr)
		if err != nil {
			return nil, fmt.Errorf("--args %s=%s: %v", name, valSrc, err)
		}
		out[name] = v
	}
	return out, nil
}
