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
	"context"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/basalt-build/basalt/lang"
	"github.com/basalt-build/basalt/pathtools"
)

// LoadState is the lifecycle of one cached file load.
type LoadState int

const (
	Requested LoadState = iota
	Loading
	Loaded
	Failed
)

type loadEntry struct {
	state LoadState
	scope *Scope
	err   *Err
	done  chan struct{}
}

// Scheduler owns the loader's concurrency: a semaphore-bounded worker pool
// that performs parsing, a per-file load cache, the generator-dependency
// list, the unknown-generated-inputs map, and the latched failure flag.
// Evaluation itself is not parallel -- it proceeds on whichever goroutine
// is driving the recursive Load/import chain, which for a single root file
// is exactly one goroutine at a time, giving the "file evaluation
// completes before any downstream importer resumes" guarantee for free.
type Scheduler struct {
	ctx *Context
	fs  pathtools.FileSystem
	sem *semaphore.Weighted

	cacheMu sync.Mutex
	cache   map[string]*loadEntry

	stateMu       sync.Mutex
	genDeps       []string
	unknownInputs map[string]*Target

	failMu   sync.Mutex
	failed   bool
	firstErr *Err
}

func newScheduler(ctx *Context) *Scheduler {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		ctx:           ctx,
		fs:            pathtools.OsFs,
		sem:           semaphore.NewWeighted(int64(workers)),
		cache:         make(map[string]*loadEntry),
		unknownInputs: make(map[string]*Target),
	}
}

// Run loads rootFile and everything it transitively imports. It returns
// once the work frontier empties: no Load is Requested or Loading and no
// worker task is outstanding.
func (s *Scheduler) Run(rootFile string) (genDeps []string, errs []error) {
	_, err := s.Load(rootFile, lang.Position{})
	if err != nil {
		errs = append(errs, err)
	}
	s.stateMu.Lock()
	genDeps = append([]string(nil), s.genDeps...)
	s.stateMu.Unlock()
	return genDeps, errs
}

// Load ensures path has been parsed and evaluated exactly once, returning
// its top-level scope. A call for a path that is already Loaded or Failed
// returns the cached result; a call for a path that is still Loading (a
// re-entrant import, since evaluation runs on one goroutine) is reported
// as an import cycle.
func (s *Scheduler) Load(path string, importerPos lang.Position) (*Scope, *Err) {
	s.cacheMu.Lock()
	entry, exists := s.cache[path]
	if !exists {
		entry = &loadEntry{state: Requested, done: make(chan struct{})}
		s.cache[path] = entry
		s.cacheMu.Unlock()
		return s.loadAndEvaluate(path, entry, importerPos)
	}
	if entry.state == Loading {
		s.cacheMu.Unlock()
		return nil, dependencyErr(importerPos, "import cycle detected while loading %q", path)
	}
	s.cacheMu.Unlock()

	<-entry.done // Loaded or Failed; safe to read without the lock now
	return entry.scope, entry.err
}

func (s *Scheduler) loadAndEvaluate(path string, entry *loadEntry, importerPos lang.Position) (*Scope, *Err) {
	entry.state = Loading

	file, perr := s.parseOnWorker(path)
	if perr != nil {
		return s.finishFailed(entry, path, perr)
	}
	s.addGenDep(path)

	child := NewChild(s.ctx.rootScope)
	if eerr := s.ctx.eval.EvalFile(child, file); eerr != nil {
		return s.finishFailed(entry, path, eerr)
	}
	if uerr := child.CheckForUnusedVars(); uerr != nil {
		return s.finishFailed(entry, path, uerr)
	}

	entry.scope = child
	entry.state = Loaded
	close(entry.done)
	return entry.scope, nil
}

func (s *Scheduler) finishFailed(entry *loadEntry, path string, err *Err) (*Scope, *Err) {
	entry.err = err
	entry.state = Failed
	close(entry.done)
	s.fail(err)
	return nil, err
}

// parseOnWorker reads and parses path on a semaphore-bounded worker
// goroutine, then blocks for its result -- the "worker parses the file
// into an AST, then posts the AST back" leg of the load protocol.
func (s *Scheduler) parseOnWorker(path string) (*lang.File, *Err) {
	if err := s.sem.Acquire(context.Background(), 1); err != nil {
		return nil, ioErr(lang.Position{}, "could not schedule parse of %q: %v", path, err)
	}

	type result struct {
		file *lang.File
		err  *Err
	}
	resCh := make(chan result, 1)
	go func() {
		defer s.sem.Release(1)
		r, err := s.fs.Open(path)
		if err != nil {
			resCh <- result{nil, ioErr(lang.Position{}, "%s: %v", path, err)}
			return
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			resCh <- result{nil, ioErr(lang.Position{}, "%s: %v", path, err)}
			return
		}
		file, errs := lang.Parse(path, string(data))
		if len(errs) > 0 {
			resCh <- result{nil, syntaxErr(lang.Position{Filename: path}, "%v", errs[0])}
			return
		}
		resCh <- result{file, nil}
	}()

	r := <-resCh
	return r.file, r.err
}

func (s *Scheduler) addGenDep(path string) {
	s.stateMu.Lock()
	s.genDeps = append(s.genDeps, path)
	s.stateMu.Unlock()
}

// recordUnknownInput notes that output was produced by t, for the
// post-hoc validation pass that flags generated inputs nothing declared.
func (s *Scheduler) recordUnknownInput(output string, t *Target) {
	s.stateMu.Lock()
	s.unknownInputs[output] = t
	s.stateMu.Unlock()
}

// fail latches the first error; once set, it is the only one reported --
// later errors in the same run are suppressed.
func (s *Scheduler) fail(err *Err) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if !s.failed {
		s.failed = true
		s.firstErr = err
	}
}

func (s *Scheduler) Failed() bool {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failed
}

func (s *Scheduler) FirstError() *Err {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.firstErr
}
