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
	"path"
	"path/filepath"
	"strings"
)

// sourceDirOf returns the "//"-rooted source directory containing the file
// at absPath, relative to root. Every built-in that resolves a path
// written in a build file uses this to find "here".
func sourceDirOf(root, absPath string) string {
	rel, err := filepath.Rel(root, filepath.Dir(absPath))
	if err != nil || rel == "." {
		return "//"
	}
	return "//" + filepath.ToSlash(rel)
}

// resolveSourcePath turns a path written in a build file -- either
// "//rooted/at/source/root" or "relative/to/the/current/file" -- into an
// absolute filesystem path under root.
func resolveSourcePath(root, currentDir, raw string) string {
	var rel string
	if strings.HasPrefix(raw, "//") {
		rel = strings.TrimPrefix(raw, "//")
	} else {
		rel = path.Join(strings.TrimPrefix(currentDir, "//"), raw)
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

// pathInfoOne implements one get_path_info(path, what) query on a single
// virtual, "//"-rooted or relative path string.
func pathInfoOne(p, what string) (string, *Err) {
	switch what {
	case "file":
		return path.Base(p), nil
	case "name":
		b := path.Base(p)
		if i := strings.LastIndex(b, "."); i > 0 {
			b = b[:i]
		}
		return b, nil
	case "extension":
		b := path.Base(p)
		if i := strings.LastIndex(b, "."); i > 0 {
			return b[i+1:], nil
		}
		return "", nil
	case "dir":
		d := path.Dir(p)
		if d == "." {
			return "//", nil
		}
		return d, nil
	case "abspath":
		if strings.HasPrefix(p, "//") {
			return path.Clean(p), nil
		}
		return "//" + strings.TrimPrefix(path.Clean(p), "/"), nil
	default:
		return "", nil
	}
}

// rebaseOne implements one rebase_path(path, new_base, old_base) query.
// old_base/new_base are "//"-rooted virtual directories; new_base == ""
// requests the absolute "//"-rooted form rather than a relative one.
func rebaseOne(p, newBase, oldBase string) string {
	abs := p
	if !strings.HasPrefix(abs, "//") {
		abs = path.Join(oldBase, abs)
	}
	// path.Clean collapses the leading "//" to "/"; put it back.
	abs = "//" + strings.TrimPrefix(path.Clean(abs), "/")
	if newBase == "" {
		return abs
	}
	rel, err := filepath.Rel(filepath.FromSlash(newBase), filepath.FromSlash(abs))
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}
