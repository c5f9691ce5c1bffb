// Copyright 2016 Google Inc. All rights reserved.
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
	"github.com/basalt-build/basalt/lang"
)

// Template is a captured closure: the body of a `template(name) { ... }`
// declaration, the scope it closed over at definition time, and the
// position it was declared at. Instantiating it (`name("inst") { ... }`)
// runs Body in a fresh scope parented at DefScope.
type Template struct {
	Name     string
	Pos      lang.Position
	Body     *lang.Block
	DefScope *Scope
}
