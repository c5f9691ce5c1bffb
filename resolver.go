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
	"strings"

	"github.com/hashicorp/go-multierror"
)

// resolveState is the three-color marker used by cycle detection: white
// (unvisited), gray (on the current DFS stack), black (finished).
type resolveState int

const (
	white resolveState = iota
	gray
	black
)

// resolve walks the committed target graph through label lookup, cycle
// detection, config propagation, library propagation, visibility checking,
// and assertion checks; it keeps no record of targets that write runtime-dep
// files. Every missing dependency is reported together and resolution stops
// there; a dependency cycle stops it with that one error. After those two
// steps, visibility and assert_no_deps failures are collected across all
// targets rather than stopping at the first one.
func resolve(c *Context) []error {
	targets := c.graph.Targets()

	var merr *multierror.Error

	if errs := checkDepsExist(c, targets); len(errs) > 0 {
		for _, e := range errs {
			merr = multierror.Append(merr, e)
		}
		return merr.Errors
	}

	if err := detectCycles(targets); err != nil {
		return []error{err}
	}

	hardDeps := make(map[*Label][]*Label, len(targets))
	for _, t := range targets {
		hardDeps[t.Label] = hardDepLabels(t)
	}
	closure := make(map[*Label][]*Label, len(targets))
	for _, t := range targets {
		closure[t.Label] = transitiveClosure(t.Label, hardDeps)
	}

	propagateConfigs(c, targets, closure)
	propagateLibs(c, targets, closure)

	for _, t := range targets {
		if err := checkVisibility(c, t); err != nil {
			merr = multierror.Append(merr, err)
		}
		if err := checkAssertNoDeps(c, t, closure[t.Label]); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	if merr != nil {
		return merr.Errors
	}
	return nil
}

func checkDepsExist(c *Context, targets []*Target) []error {
	var errs []error
	for _, t := range targets {
		for _, edges := range [][]DepEdge{t.PrivateDeps, t.PublicDeps, t.DataDeps} {
			for _, e := range edges {
				if _, ok := c.graph.Lookup(e.Label); !ok {
					errs = append(errs, dependencyErr(e.Pos, "%s depends on %s, which was never declared", t.Label, e.Label))
				}
			}
		}
	}
	return errs
}

func hardDepLabels(t *Target) []*Label {
	out := make([]*Label, 0, len(t.PrivateDeps)+len(t.PublicDeps))
	for _, e := range t.PrivateDeps {
		out = append(out, e.Label)
	}
	for _, e := range t.PublicDeps {
		out = append(out, e.Label)
	}
	return out
}

// detectCycles runs a depth-first traversal over hard deps (deps and
// public_deps; data_deps may legitimately cycle) with the standard
// three-color marking scheme. Re-entering a gray node reports the witness
// path. The dependency graph must stay a DAG; only data_deps may cycle.
func detectCycles(targets []*Target) *Err {
	for _, t := range targets {
		t.resolveState = white
	}
	byLabel := make(map[*Label]*Target, len(targets))
	for _, t := range targets {
		byLabel[t.Label] = t
	}

	var stack []*Label
	var visit func(l *Label) *Err
	visit = func(l *Label) *Err {
		t := byLabel[l]
		t.resolveState = gray
		stack = append(stack, l)
		for _, e := range append(append([]DepEdge{}, t.PrivateDeps...), t.PublicDeps...) {
			dep := byLabel[e.Label]
			switch dep.resolveState {
			case gray:
				witness := append(append([]*Label{}, stack...), e.Label)
				return dependencyErr(t.Pos, "dependency cycle: %s", joinLabels(witness))
			case white:
				if err := visit(e.Label); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		t.resolveState = black
		return nil
	}

	for _, t := range targets {
		if t.resolveState == white {
			if err := visit(t.Label); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinLabels(labels []*Label) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.String()
	}
	return strings.Join(parts, " -> ")
}

// transitiveClosure returns every label reachable from start via hard
// deps, in depth-first post-order (first occurrence kept), the ordering
// rule used for all_dependent_configs propagation.
func transitiveClosure(start *Label, hardDeps map[*Label][]*Label) []*Label {
	seen := map[*Label]bool{start: true}
	var order []*Label
	var visit func(l *Label)
	visit = func(l *Label) {
		for _, d := range hardDeps[l] {
			if seen[d] {
				continue
			}
			seen[d] = true
			visit(d)
			order = append(order, d)
		}
	}
	visit(start)
	return order
}

// propagateConfigs propagates configs: all_dependent_configs
// reach every transitive (hard-dep) dependent; public_configs reach a
// dependent only along a chain of public edges. Order is first-occurrence
// depth-first post-order of deps; duplicates are dropped keeping the
// earliest.
func propagateConfigs(c *Context, targets []*Target, closure map[*Label][]*Label) {
	byLabel := make(map[*Label]*Target, len(targets))
	for _, t := range targets {
		byLabel[t.Label] = t
	}

	for _, t := range targets {
		out := dedupLabels(append([]*Label{}, t.AllDependentConfigs...))
		for _, depLabel := range closure[t.Label] {
			dep := byLabel[depLabel]
			out = append(out, dep.AllDependentConfigs...)
		}
		t.ResolvedAllDependentConfigs = dedupLabels(out)
	}

	var publicClosure func(l *Label, seen map[*Label]bool) []*Label
	publicClosure = func(l *Label, seen map[*Label]bool) []*Label {
		t := byLabel[l]
		var out []*Label
		for _, e := range t.PublicDeps {
			if seen[e.Label] {
				continue
			}
			seen[e.Label] = true
			out = append(out, e.Label)
			out = append(out, publicClosure(e.Label, seen)...)
		}
		return out
	}

	for _, t := range targets {
		out := dedupLabels(append([]*Label{}, t.PublicConfigs...))
		for _, depLabel := range publicClosure(t.Label, map[*Label]bool{t.Label: true}) {
			dep := byLabel[depLabel]
			out = append(out, dep.PublicConfigs...)
		}
		t.ResolvedPublicConfigs = dedupLabels(out)
	}
}

func dedupLabels(in []*Label) []*Label {
	seen := make(map[*Label]bool, len(in))
	out := make([]*Label, 0, len(in))
	for _, l := range in {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// propagateLibs unions libs/lib_dirs/frameworks
// union along the public-dep closure for linkable targets; source sets
// are transparent and propagate whatever reaches them onward.
func propagateLibs(c *Context, targets []*Target, closure map[*Label][]*Label) {
	byLabel := make(map[*Label]*Target, len(targets))
	for _, t := range targets {
		byLabel[t.Label] = t
	}
	for _, t := range targets {
		libs := dedupStrings(append([]string{}, t.Libs...))
		dirs := dedupStrings(append([]string{}, t.LibDirs...))
		frameworks := dedupStrings(append([]string{}, t.Frameworks...))
		for _, depLabel := range closure[t.Label] {
			dep := byLabel[depLabel]
			if dep.Type == SourceSet || dep.Type.linkable() {
				libs = append(libs, dep.Libs...)
				dirs = append(dirs, dep.LibDirs...)
				frameworks = append(frameworks, dep.Frameworks...)
			}
		}
		t.TransitiveLibs = dedupStrings(libs)
		t.TransitiveLibDirs = dedupStrings(dirs)
		t.TransitiveFrameworks = dedupStrings(frameworks)
		t.HardDepClosure = closure[t.Label]
		if t.Type == Action || t.Type == ActionForEach || t.Type == Copy {
			t.Outputs = append([]string{}, t.OutputTmpl...)
		}
	}
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// checkVisibility checks that for every edge T -> D, D's
// visibility patterns must admit T's label.
func checkVisibility(c *Context, t *Target) *Err {
	for _, edges := range [][]DepEdge{t.PrivateDeps, t.PublicDeps, t.DataDeps} {
		for _, e := range edges {
			dep, ok := c.graph.Lookup(e.Label)
			if !ok || len(dep.Visibility) == 0 {
				continue
			}
			if !matchesAnyVisibility(t.Label, dep.Visibility, dep.Label.Dir, c) {
				return dependencyErr(e.Pos, "%s is not visible to %s (visibility: %v)", dep.Label, t.Label, dep.Visibility)
			}
		}
	}
	return nil
}

// checkAssertNoDeps checks that assert_no_deps patterns
// are tested against T's full transitive (hard) dependency set.
func checkAssertNoDeps(c *Context, t *Target, closure []*Label) *Err {
	if len(t.AssertNoDeps) == 0 {
		return nil
	}
	for _, depLabel := range closure {
		if matchesAnyVisibility(depLabel, t.AssertNoDeps, t.Label.Dir, c) {
			return dependencyErr(t.Pos, "%s is forbidden by assert_no_deps on %s, but is a transitive dependency", depLabel, t.Label)
		}
	}
	return nil
}

// matchesAnyVisibility tests candidate against a set of GN-style label
// patterns ("*", "dir:*", or an exact label), resolved relative to
// baseDir.
func matchesAnyVisibility(candidate *Label, patterns []string, baseDir string, c *Context) bool {
	for _, p := range patterns {
		if p == "*" {
			return true
		}
		if strings.HasSuffix(p, ":*") {
			dirPattern := strings.TrimSuffix(p, ":*")
			dir := dirPattern
			if dir == "" {
				dir = baseDir
			} else if !strings.HasPrefix(dir, "//") {
				dir = joinSourceDir(baseDir, dir)
			}
			if candidate.Dir == dir {
				return true
			}
			continue
		}
		resolved, err := c.interner.ParseLabel(p, baseDir, c.settings.CurrentToolchain)
		if err == nil && resolved == candidate {
			return true
		}
	}
	return false
}
