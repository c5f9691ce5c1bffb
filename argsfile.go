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
	"os"
	"path/filepath"
	"sort"
)

// WriteArgsFile writes <out-dir>/args.gn, the effective set of declared
// build arguments and the values they resolved to -- the defaults declared
// by declare_args() blocks, overridden where --args supplied a value.
func (c *Context) WriteArgsFile(outDir string) error {
	c.mu.Lock()
	names := make([]string, 0, len(c.declaredArgs))
	for name := range c.declaredArgs {
		names = append(names, name)
	}
	sort.Strings(names)

	f, err := os.Create(filepath.Join(outDir, "args.gn"))
	if err != nil {
		c.mu.Unlock()
		return err
	}
	defer f.Close()

	for _, name := range names {
		d := c.declaredArgs[name]
		comment := ""
		if d.overridden {
			comment = "  # overridden via --args"
		}
		if _, err := fmt.Fprintf(f, "%s = %s%s\n", name, d.def.String(), comment); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.mu.Unlock()
	return nil
}
