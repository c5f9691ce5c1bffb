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
	"io"
	"sort"
)

// EmitNinja writes a build.ninja file for the resolved target graph to w.
// Each target type maps to a small, fixed rule; this is intentionally the
// simplest possible lowering (one rule per action or linkable target, one
// shared copy rule, phony for groups; no toolchain-specific flag assembly).
// The generator's job stops at producing a syntactically valid Ninja file,
// not at modeling a particular compiler's flag grammar: the link rules'
// commands refer to a $cc variable that this file does not define.
func EmitNinja(w io.StringWriter, c *Context) error {
	nw := newNinjaWriter(w)

	if err := nw.Comment("Generated by basalt. Do not edit."); err != nil {
		return err
	}
	if err := nw.BlankLine(); err != nil {
		return err
	}

	targets := c.graph.Targets()
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Label.String() < targets[j].Label.String()
	})

	pools := map[string]bool{}
	for _, t := range targets {
		if t.Pool != "" && t.Pool != "console" {
			pools[t.Pool] = true
		}
	}
	poolNames := make([]string, 0, len(pools))
	for name := range pools {
		poolNames = append(poolNames, name)
	}
	sort.Strings(poolNames)
	for _, name := range poolNames {
		if err := nw.Pool(name); err != nil {
			return err
		}
		if err := nw.ScopedAssign("depth", "1"); err != nil {
			return err
		}
		if err := nw.BlankLine(); err != nil {
			return err
		}
	}

	for _, t := range targets {
		if t.Type == Copy {
			if err := nw.Rule("copy"); err != nil {
				return err
			}
			if err := nw.ScopedAssign("command", "cp $in $out"); err != nil {
				return err
			}
			if err := nw.BlankLine(); err != nil {
				return err
			}
			break
		}
	}

	var defaults []string
	for _, t := range targets {
		if err := emitTarget(nw, t); err != nil {
			return err
		}
		if t.Type == Executable {
			defaults = append(defaults, ninjaTargetName(t))
		}
	}

	if len(defaults) > 0 {
		if err := nw.BlankLine(); err != nil {
			return err
		}
		if err := nw.Default(defaults...); err != nil {
			return err
		}
	}

	return nil
}

// ninjaTargetName is the phony Ninja output name standing in for a target's
// label. Concrete output files are used where a target declares them
// (outputs/sources); anything without a concrete output falls back to its
// mangled label so other targets still have something to depend on.
func ninjaTargetName(t *Target) string {
	if len(t.Outputs) > 0 {
		return t.Outputs[0]
	}
	return "phony/" + mangleLabel(t.Label)
}

func mangleLabel(l *Label) string {
	s := l.String()
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			out = append(out, byte(r))
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func emitTarget(nw *ninjaWriter, t *Target) error {
	name := ninjaTargetName(t)

	switch t.Type {
	case Group, BundleData:
		return nw.Build(t.Label.String(), "phony", []string{name}, nil, t.Sources, nil, nil, nil)

	case Copy:
		if len(t.Sources) == 0 || len(t.Outputs) == 0 {
			return nw.Build(t.Label.String(), "phony", []string{name}, nil, nil, nil, nil, nil)
		}
		return nw.Build(t.Label.String(), "copy", []string{t.Outputs[0]}, nil, t.Sources[:1], nil, nil, nil)

	case Action, ActionForEach:
		rule := fmt.Sprintf("basalt_action_%s", mangleLabel(t.Label))
		if err := nw.Rule(rule); err != nil {
			return err
		}
		command := shellEscape(t.Script)
		for _, a := range ninjaAndShellEscapeArgs(t.Args) {
			command += " " + a
		}
		if err := nw.ScopedAssign("command", command); err != nil {
			return err
		}
		if t.Depfile != "" {
			if err := nw.ScopedAssign("depfile", t.Depfile); err != nil {
				return err
			}
		}
		if err := nw.BlankLine(); err != nil {
			return err
		}
		outs := t.Outputs
		if len(outs) == 0 {
			outs = []string{name}
		}
		return nw.Build(t.Label.String(), rule, outs, nil, t.Inputs, nil, nil, nil)

	default: // Executable, StaticLibrary, SharedLibrary, LoadableModule, SourceSet
		rule := fmt.Sprintf("basalt_link_%s", mangleLabel(t.Label))
		if err := nw.Rule(rule); err != nil {
			return err
		}
		if err := nw.ScopedAssign("command", "$cc $in -o $out"); err != nil {
			return err
		}
		if err := nw.BlankLine(); err != nil {
			return err
		}
		return nw.Build(t.Label.String(), rule, []string{name}, nil, t.Sources, nil, nil, nil)
	}
}
