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

import "github.com/basalt-build/basalt/lang"

// TargetType is the closed set of target kinds the language can declare.
type TargetType int

const (
	UnknownTarget TargetType = iota
	Group
	Executable
	StaticLibrary
	SharedLibrary
	LoadableModule
	SourceSet
	Action
	ActionForEach
	BundleData
	Copy
)

func (t TargetType) String() string {
	switch t {
	case Group:
		return "group"
	case Executable:
		return "executable"
	case StaticLibrary:
		return "static_library"
	case SharedLibrary:
		return "shared_library"
	case LoadableModule:
		return "loadable_module"
	case SourceSet:
		return "source_set"
	case Action:
		return "action"
	case ActionForEach:
		return "action_foreach"
	case BundleData:
		return "bundle_data"
	case Copy:
		return "copy"
	default:
		return "unknown"
	}
}

// linkable reports whether a target of this type participates in library
// and lib_dir propagation.
func (t TargetType) linkable() bool {
	switch t {
	case Executable, StaticLibrary, SharedLibrary, LoadableModule:
		return true
	default:
		return false
	}
}

// DepEdge is one outgoing dependency edge from a Target, tagged with the
// kind of dependency list it was declared in. All three kinds are
// visibility-checked; Kind determines config-propagation semantics (only
// Public edges propagate public_configs) and cycle detection (Data edges
// may cycle).
type DepKind int

const (
	PrivateDep DepKind = iota
	PublicDep
	DataDep
)

func (k DepKind) String() string {
	switch k {
	case PublicDep:
		return "public_deps"
	case DataDep:
		return "data_deps"
	default:
		return "deps"
	}
}

type DepEdge struct {
	Label *Label
	Kind  DepKind
	Pos   lang.Position
}

// Target is the canonical, post-evaluation record of a declared build
// target. Target becomes immutable once committed to the graph; only the
// resolver-computed fields are mutated afterward, and only by the
// resolver, on the main thread, so no resolver step ever sees a
// partially-committed target.
type Target struct {
	Label *Label
	Type  TargetType
	Pos   lang.Position

	Sources       []string
	Inputs        []string
	Outputs       []string
	PublicHeaders []string

	PublicConfigs          []*Label
	AllDependentConfigs    []*Label
	Configs                []*Label

	PrivateDeps []DepEdge
	PublicDeps  []DepEdge
	DataDeps    []DepEdge

	Args       []string
	Script     string
	OutputTmpl []string
	OutDir     string
	Depfile    string
	Pool       string
	AssertNoDeps []string

	Libs       []string
	LibDirs    []string
	Frameworks []string

	Visibility []string // label patterns, unresolved strings from the author

	Toolchain *Label

	// Resolver-computed fields, valid only after Context.ResolveDependencies.
	ResolvedPublicConfigs       []*Label
	ResolvedAllDependentConfigs []*Label
	TransitiveLibs              []string
	TransitiveLibDirs           []string
	TransitiveFrameworks        []string
	HardDepClosure              []*Label

	resolveState resolveState // cycle-detection marker, see resolver.go
}

// TargetGraph is the set of resolved targets plus the edges implied by
// their dependency lists.
type TargetGraph struct {
	byLabel map[*Label]*Target
	order   []*Label // insertion order, used for deterministic iteration
}

func newTargetGraph() *TargetGraph {
	return &TargetGraph{byLabel: make(map[*Label]*Target)}
}

// Add commits t to the graph. Returns an error if a target with the same
// label was already committed (duplicate target definition).
func (g *TargetGraph) Add(t *Target) *Err {
	if _, exists := g.byLabel[t.Label]; exists {
		return generatorErr(t.Pos, "duplicate target definition for %s", t.Label)
	}
	g.byLabel[t.Label] = t
	g.order = append(g.order, t.Label)
	return nil
}

func (g *TargetGraph) Lookup(l *Label) (*Target, bool) {
	t, ok := g.byLabel[l]
	return t, ok
}

// Targets returns every committed target in commit order.
func (g *TargetGraph) Targets() []*Target {
	out := make([]*Target, len(g.order))
	for i, l := range g.order {
		out[i] = g.byLabel[l]
	}
	return out
}

func (g *TargetGraph) Len() int { return len(g.order) }
