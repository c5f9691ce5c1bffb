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
	"strings"
	"sync"
)

// Label is a fully-qualified, interned target identifier:
// //source/dir:name(toolchain). Labels are interned so that equality is a
// pointer comparison rather than a field-by-field struct comparison.
type Label struct {
	Dir       string // source-root-relative, always starts with "//"
	Name      string
	Toolchain *Label // nil means "the default toolchain of the referencing context"
}

func (l *Label) String() string {
	if l == nil {
		return "<nil label>"
	}
	s := l.Dir + ":" + l.Name
	if l.Toolchain != nil {
		s += "(" + l.Toolchain.String() + ")"
	}
	return s
}

// labelInterner interns Labels so that two references to the same
// dir:name(toolchain) triple resolve to the same *Label, making equality a
// pointer comparison everywhere downstream (cycle detection, visibility
// checks, graph edges).
type labelInterner struct {
	mu    sync.Mutex
	table map[string]*Label
}

func newLabelInterner() *labelInterner {
	return &labelInterner{table: make(map[string]*Label)}
}

func (in *labelInterner) intern(dir, name string, toolchain *Label) *Label {
	key := dir + ":" + name
	if toolchain != nil {
		key += "(" + toolchain.String() + ")"
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if l, ok := in.table[key]; ok {
		return l
	}
	l := &Label{Dir: dir, Name: name, Toolchain: toolchain}
	in.table[key] = l
	return l
}

// ParseLabel resolves a label string written in a build-description file,
// relative to the directory of the file it appears in, into an interned
// Label. Accepted forms:
//
//	:name                  -- same directory as currentDir
//	//dir/sub:name          -- absolute, from the source root
//	//dir/sub:name(//tc:x)  -- with an explicit toolchain
//	dir/sub:name            -- relative to currentDir (GN also permits this)
func (in *labelInterner) ParseLabel(raw, currentDir string, defaultToolchain *Label) (*Label, error) {
	s := raw
	var toolchain *Label
	if idx := strings.LastIndex(s, "("); idx >= 0 && strings.HasSuffix(s, ")") {
		tcStr := s[idx+1 : len(s)-1]
		s = s[:idx]
		tc, err := in.ParseLabel(tcStr, currentDir, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid toolchain in label %q: %w", raw, err)
		}
		toolchain = tc
	} else {
		toolchain = defaultToolchain
	}

	colon := strings.LastIndex(s, ":")
	if colon < 0 {
		return nil, fmt.Errorf("label %q is missing a \":name\" component", raw)
	}
	dirPart, namePart := s[:colon], s[colon+1:]
	if namePart == "" {
		return nil, fmt.Errorf("label %q has an empty target name", raw)
	}

	var dir string
	switch {
	case dirPart == "":
		dir = currentDir
	case strings.HasPrefix(dirPart, "//"):
		dir = dirPart
	default:
		dir = joinSourceDir(currentDir, dirPart)
	}

	return in.intern(dir, namePart, toolchain), nil
}

func joinSourceDir(base, rel string) string {
	if !strings.HasPrefix(base, "//") {
		base = "//" + strings.TrimPrefix(base, "/")
	}
	trimmed := strings.TrimSuffix(base, "/")
	return trimmed + "/" + rel
}
