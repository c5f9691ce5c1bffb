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

import "strings"

// ninjaEscape escapes '$' so a string can be embedded in a Ninja variable
// assignment without Ninja treating it as the start of a variable
// reference. It is required on any action's arguments before they reach a
// Ninja "command" line.
func ninjaEscape(s string) string {
	return ninjaEscaper.Replace(s)
}

var ninjaEscaper = strings.NewReplacer("$", "$$")

func shellUnsafeChar(r rune) bool {
	switch {
	case 'A' <= r && r <= 'Z',
		'a' <= r && r <= 'z',
		'0' <= r && r <= '9',
		r == '_', r == '+', r == '-', r == '=', r == '.', r == ',', r == '/':
		return false
	default:
		return true
	}
}

// shellEscape wraps s in single quotes if it contains characters the
// shell would otherwise treat specially, escaping any single quotes it
// already contains.
func shellEscape(s string) string {
	if strings.IndexFunc(s, shellUnsafeChar) == -1 {
		return s
	}
	return `'` + singleQuoteReplacer.Replace(s) + `'`
}

var singleQuoteReplacer = strings.NewReplacer(`'`, `'\''`)

// ninjaAndShellEscapeArgs prepares action arguments for
// embedding in a Ninja "command" line: shell-quote first, then escape any
// Ninja metacharacters the quoting left behind.
func ninjaAndShellEscapeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = ninjaEscape(shellEscape(a))
	}
	return out
}
