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

// Settings holds the run-wide configuration every Scope can see: the
// source root, the build output directory, the toolchain this scope is
// evaluating under, and the script executable used by exec_script.
//
// Settings is immutable once construction finishes; a Context takes exactly
// one for the whole run and every scope carries a reference to it. There is
// no separate Settings per toolchain.
type Settings struct {
	SourceRoot        string
	BuildDir          string
	DotfilePath       string
	BuildConfigPath   string
	DefaultToolchain  *Label
	CurrentToolchain  *Label
	ScriptExecutable  string
	Args              map[string]Value // values supplied externally via --args
}
