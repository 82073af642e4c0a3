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

// handlers.go - the per-directive semantics of §4.5's directive table.

import (
	"os"
	"path/filepath"
)

func (it *Interpreter) checkNameFree(name string, kind declKind, site string) bool {
	if existing, ok := it.declared[name]; ok {
		if existing == declLabel && kind == declLabel && !it.Strict {
			it.diags.Warnf(site, "label %q redeclared", name)
			return true
		}
		it.diags.Errorf(site, false, "name %q already declared (%s)", name, kindName(existing))
		return false
	}
	it.declared[name] = kind
	return true
}

func kindName(k declKind) string {
	switch k {
	case declTarget:
		return "target"
	case declLabel:
		return "label"
	case declFlist:
		return "file list"
	default:
		return "unknown"
	}
}

func (it *Interpreter) doTarget(name, site string) {
	if !it.checkNameFree(name, declTarget, site) {
		return
	}
	it.targets[name] = NewTarget(name, it.ManifestDir)
}

func (it *Interpreter) doLabel(name, site string) {
	if !it.checkNameFree(name, declLabel, site) {
		return
	}
	it.labels[name] = true
}

func (it *Interpreter) doFlist(name, site string) {
	if !it.checkNameFree(name, declFlist, site) {
		return
	}
	it.fileLists[name] = NewFileList(name)
}

func (it *Interpreter) resolvePath(raw string) string {
	if filepath.IsAbs(raw) {
		return raw
	}
	return filepath.Join(it.ManifestDir, raw)
}

func (it *Interpreter) lookupTarget(name, site, directive string) (*Target, bool) {
	t, ok := it.targets[name]
	if !ok {
		it.diags.Errorf(site, false, ".%s: %q is not a declared target", directive, name)
	}
	return t, ok
}

func (it *Interpreter) doIncludeDirectory(args []mtoken, site string) {
	if len(args) < 2 {
		it.diags.Errorf(site, false, ".include_directory: expected (target, path…)")
		return
	}
	t, ok := it.lookupTarget(args[0].Value, site, "include_directory")
	if !ok {
		return
	}
	for _, a := range args[1:] {
		t.AddIncludeDirectory(it.resolvePath(a.Value))
	}
}

func (it *Interpreter) doSearch(args []mtoken, site string, union bool) {
	if len(args) < 3 {
		it.diags.Errorf(site, false, ".search_set/.search_add: expected (flist, mode, extensions, dir…)")
		return
	}
	fl, ok := it.fileLists[args[0].Value]
	if !ok {
		it.diags.Errorf(site, false, ".search_set/.search_add: %q is not a declared file list", args[0].Value)
		return
	}
	spec, err := parseSearchMode(args[1].Value)
	if err != nil {
		it.diags.Errorf(site, false, "%v", err)
		return
	}
	exts := parseExtensions(args[2].Value)

	var found []string
	for _, dirArg := range args[3:] {
		dir := it.resolvePath(dirArg.Value)
		files, err := searchFiles(dir, spec, exts)
		if err != nil {
			it.diags.Errorf(site, false, "%v", err)
			continue
		}
		found = append(found, files...)
	}
	if union {
		fl.Add(found)
	} else {
		fl.Set(found)
	}
}

func (it *Interpreter) doAddTarget(args []mtoken, site string) {
	if len(args) < 1 {
		it.diags.Errorf(site, false, ".add_target: expected (target, item…)")
		return
	}
	t, ok := it.lookupTarget(args[0].Value, site, "add_target")
	if !ok {
		return
	}
	for _, item := range args[1:] {
		if fl, ok := it.fileLists[item.Value]; ok {
			for _, f := range fl.Files() {
				t.AddBuildFile(f)
			}
			continue
		}
		path := it.resolvePath(item.Value)
		info, err := os.Stat(path)
		if err != nil {
			it.diags.Errorf(site, false, ".add_target: %q does not exist as a path or file list", item.Value)
			continue
		}
		if info.IsDir() {
			it.diags.Errorf(site, false, ".add_target: %q is a directory; use .search_set/.search_add to expand it", item.Value)
			continue
		}
		t.AddBuildFile(path)
	}
}

func (it *Interpreter) doDefine(args []mtoken, site string) {
	if len(args) != 3 {
		it.diags.Errorf(site, false, ".define: expected (target, NAME, VALUE)")
		return
	}
	t, ok := it.lookupTarget(args[0].Value, site, "define")
	if !ok {
		return
	}
	if err := t.AddDefinition(args[1].Value, args[2].Value); err != nil {
		it.diags.Errorf(site, false, "%v", err)
	}
}

func (it *Interpreter) doEntry(args []mtoken, site string) {
	if len(args) != 2 {
		it.diags.Errorf(site, false, ".entry: expected (target, SYMBOL)")
		return
	}
	t, ok := it.lookupTarget(args[0].Value, site, "entry")
	if !ok {
		return
	}
	if err := t.SetEntrySymbol(args[1].Value, site); err != nil {
		it.diags.Errorf(site, false, "%v", err)
	}
}

func (it *Interpreter) doOutput(args []mtoken, site string) {
	if len(args) < 2 || len(args) > 3 {
		it.diags.Errorf(site, false, ".output: expected (target, dir[, name])")
		return
	}
	t, ok := it.lookupTarget(args[0].Value, site, "output")
	if !ok {
		return
	}
	dir := it.resolvePath(args[1].Value)
	if !filepath.IsAbs(args[1].Value) {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				it.diags.Errorf(site, false, ".output: cannot create %q: %v", dir, err)
				return
			}
		}
	}
	t.OutputDirectory = dir
	if len(args) == 3 {
		t.OutputName = args[2].Value
	}
}

func (it *Interpreter) doFormat(args []mtoken, site string) {
	if len(args) != 2 {
		it.diags.Errorf(site, false, ".format: expected (target, \"bin\"|\"hex\"|\"elf\")")
		return
	}
	t, ok := it.lookupTarget(args[0].Value, site, "format")
	if !ok {
		return
	}
	switch Format(args[1].Value) {
	case FormatBin, FormatHex, FormatELF:
		t.Format = Format(args[1].Value)
	default:
		it.diags.Errorf(site, false, ".format: unknown format %q", args[1].Value)
	}
}

func (it *Interpreter) doDepends(args []mtoken, site string) {
	if len(args) < 2 {
		it.diags.Errorf(site, false, ".depends: expected (target, dep…)")
		return
	}
	t, ok := it.lookupTarget(args[0].Value, site, "depends")
	if !ok {
		return
	}
	for _, depArg := range args[1:] {
		depName := depArg.Value
		dep, ok := it.targets[depName]
		if !ok {
			it.diags.Errorf(site, false, ".depends: %q is not a declared target", depName)
			continue
		}
		if t.HasDependency(depName) {
			it.diags.Warnf(site, ".depends: %q already depends on %q", t.Name, depName)
			continue
		}
		if it.dependsOn(dep, t.Name) {
			it.diags.Errorf(site, false, ".depends: adding %q as a dependency of %q would create a cycle", depName, t.Name)
			continue
		}
		t.AddDependency(depName)
	}
}

// dependsOn reports whether target start transitively depends on name,
// via a plain DFS over the dependency graph built so far. This is a
// stricter superset of the direct-back-edge minimum §4.5 requires.
func (it *Interpreter) dependsOn(start *Target, name string) bool {
	visited := map[string]bool{}
	var walk func(t *Target) bool
	walk = func(t *Target) bool {
		if visited[t.Name] {
			return false
		}
		visited[t.Name] = true
		for _, dep := range t.Dependencies {
			if dep == name {
				return true
			}
			if next, ok := it.targets[dep]; ok && walk(next) {
				return true
			}
		}
		return false
	}
	return walk(start)
}
