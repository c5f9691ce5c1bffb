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
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/basalt-build/basalt/lang"
)

// Context holds all state needed to turn a root build file into a
// resolved target graph and, ultimately, a set of Ninja files. It proceeds
// through four phases: Load, Evaluate (interleaved with Load by the
// scheduler), Resolve, and Write (external).
type Context struct {
	Log    *logrus.Logger
	Stdout io.Writer

	interner *labelInterner
	rootScope *Scope
	settings  *Settings
	eval      *Evaluator
	sched     *Scheduler

	mu             sync.Mutex
	graph          *TargetGraph
	defaultsByType map[TargetType]*Scope
	declaredArgs   map[string]*declaredArg
	warnings       []*Err
}

type declaredArg struct {
	pos     lang.Position
	def     Value
	overridden bool
}

// NewContext creates a Context for one generator run. settings must have
// SourceRoot and BuildDir populated; Args holds the --args overrides that
// declare_args will apply against declared defaults.
func NewContext(settings *Settings) *Context {
	log := logrus.New()
	c := &Context{
		Log:            log,
		Stdout:         os.Stdout,
		interner:       newLabelInterner(),
		settings:       settings,
		graph:          newTargetGraph(),
		defaultsByType: make(map[TargetType]*Scope),
		declaredArgs:   make(map[string]*declaredArg),
	}
	c.rootScope = NewRootScope(settings)
	c.eval = newEvaluator(c)
	c.sched = newScheduler(c)
	return c
}

// Interner exposes the Context's label interner to built-ins that need to
// resolve a label string relative to the scope it was written in.
func (c *Context) Interner() *labelInterner { return c.interner }

// Settings returns the run's immutable settings.
func (c *Context) Settings() *Settings { return c.settings }

// Graph returns the target graph built so far. Safe to call only after
// Load has returned; during loading the graph is main-thread-only state.
func (c *Context) Graph() *TargetGraph { return c.graph }

func (c *Context) warn(e *Err) {
	c.mu.Lock()
	c.warnings = append(c.warnings, e)
	c.mu.Unlock()
	c.Log.Warnf("%s", e.Error())
}

// Warnings returns every warning recorded during the run.
func (c *Context) Warnings() []*Err { return c.warnings }

// LoadBuildConfig parses and evaluates the buildconfig file at path
// directly against the context's shared root scope, before any build file
// is loaded. Its top-level bindings land on the root scope itself rather
// than a child of it, so every file's own root-of-import scope (a child of
// c.rootScope, see loadAndEvaluate) inherits them as defaults -- matching
// GN's Setup::RunConfigFile.
func (c *Context) LoadBuildConfig(path string) *Err {
	data, err := os.ReadFile(path)
	if err != nil {
		return ioErr(lang.Position{}, "reading buildconfig %s: %v", path, err)
	}
	file, errs := lang.Parse(path, string(data))
	if len(errs) > 0 {
		pe, ok := errs[0].(*lang.ParseError)
		if !ok {
			return syntaxErr(lang.Position{}, "parsing buildconfig %s: %v", path, errs[0])
		}
		return syntaxErr(pe.Pos, "%s", pe.Msg)
	}
	return c.eval.EvalFile(c.rootScope, file)
}

// Load parses and evaluates rootFile and everything it transitively
// imports, via the Scheduler. It returns once the work frontier empties,
// along with the generator-dependency file list.
func (c *Context) Load(rootFile string) (genDeps []string, errs []error) {
	return c.sched.Run(rootFile)
}

// ResolveDependencies walks the committed target graph performing label
// resolution, cycle detection, config/library propagation, and visibility
// and assertion validation.
func (c *Context) ResolveDependencies() []error {
	return resolve(c)
}

// declareArg registers a build argument default the first time
// declare_args() runs for it; later calls for the same name are a name
// error (redeclaration), matching the one-shot nature of variable
// declaration elsewhere in the language.
func (c *Context) declareArg(name string, pos lang.Position, def Value) *Err {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.declaredArgs[name]; ok {
		return nameErr(pos, "build argument %q was already declared at %s", name, existing.pos)
	}
	overridden := false
	if ov, ok := c.settings.Args[name]; ok {
		def = ov
		overridden = true
	}
	c.declaredArgs[name] = &declaredArg{pos: pos, def: def, overridden: overridden}
	return nil
}

func (c *Context) argValue(name string) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.declaredArgs[name]
	if !ok {
		return Value{}, false
	}
	return d.def, true
}

// UnusedArgOverrides returns the names from Settings.Args that were never
// claimed by a declare_args() block anywhere in the run -- a generator
// error at emission time.
func (c *Context) UnusedArgOverrides() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var unused []string
	for name := range c.settings.Args {
		if _, ok := c.declaredArgs[name]; !ok {
			unused = append(unused, name)
		}
	}
	return unused
}

func (c *Context) setDefaults(t TargetType, scope *Scope) *Err {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.defaultsByType[t]; ok {
		return generatorErr(lang.Position{}, "set_defaults(%q) was already called", t)
	}
	c.defaultsByType[t] = scope
	return nil
}

func (c *Context) defaultsFor(t TargetType) (*Scope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.defaultsByType[t]
	return s, ok
}

func (c *Context) commitTarget(t *Target) *Err {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph.Add(t)
}

// addGenDep records path as a generator dependency via the scheduler, for
// built-ins (read_file, exec_script) that consult file content outside the
// normal Load path.
func (c *Context) addGenDep(path string) {
	c.sched.addGenDep(path)
}
