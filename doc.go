// Copyright 2015 Google Inc. All rights reserved.
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

// Package basalt implements a meta-build system core: a small,
// GN-flavored declarative language for describing build targets, and the
// loader, evaluator, and dependency resolver that turn a tree of build
// files into a resolved target graph ready for Ninja emission.
//
// A build file declares targets by calling built-in functions such as
// executable(), static_library(), or action():
//
//	executable("cmd") {
//	    sources = ["main.c"]
//	    deps = [":libfoo"]
//	}
//
//	static_library("libfoo") {
//	    sources = ["foo.c"]
//	    public = ["foo.h"]
//	    public_configs = [":foo_config"]
//	}
//
// Targets are identified by labels of the form //dir:name, scoped to the
// build file's directory by default. Build files may declare reusable
// template() closures, import() other files into their own scope, and
// read external configuration through declare_args().
//
// A Context drives one generator run: Load parses and evaluates every
// file transitively reachable from a root build file via a bounded
// worker pool, and ResolveDependencies walks the resulting target graph
// performing cycle detection, label resolution, and config, library, and
// visibility propagation. The cmd/gen command wires both phases together
// with Ninja and build-argument-file emission.
package basalt
