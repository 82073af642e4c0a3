/*
Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package manifest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// searchSpec is a parsed `.search_set`/`.search_add` mode: how many
// directory levels below each search root to descend.
type searchSpec struct {
	unbounded bool
	maxDepth  int
}

func parseSearchMode(s string) (searchSpec, error) {
	switch {
	case s == "shallow":
		return searchSpec{maxDepth: 0}, nil
	case s == "all":
		return searchSpec{unbounded: true}, nil
	case strings.HasPrefix(s, "cdepth"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, "cdepth"))
		if err != nil || n < 0 {
			return searchSpec{}, errors.Errorf("invalid search mode %q", s)
		}
		return searchSpec{maxDepth: n}, nil
	default:
		return searchSpec{}, errors.Errorf("unknown search mode %q", s)
	}
}

func parseExtensions(s string) map[string]bool {
	exts := map[string]bool{}
	for _, e := range strings.Split(s, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return exts
}

// searchFiles walks root up to spec's depth bound, collecting absolute
// paths of files whose extension (case-sensitive, dot included) is in
// exts, sorted for deterministic file-list contents.
func searchFiles(root string, spec searchSpec, exts map[string]bool) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		depth := strings.Count(rel, string(filepath.Separator))
		if d.IsDir() {
			if !spec.unbounded && depth >= spec.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !spec.unbounded && depth > spec.maxDepth {
			return nil
		}
		if exts[filepath.Ext(path)] {
			abs, absErr := filepath.Abs(path)
			if absErr != nil {
				return absErr
			}
			out = append(out, abs)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "searching %s", root)
	}
	sort.Strings(out)
	return out, nil
}
