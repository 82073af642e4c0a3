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
	"fmt"
	"sort"
)

// Definition is one (name, value) pair from a target's `.define`
// directives, substituted into that target's tokens by the
// preprocessor (§4.4 step 2).
type Definition struct {
	Name  string
	Value string
}

// Format is a target's declared output encoding (§3).
type Format string

const (
	FormatNone Format = ""
	FormatBin  Format = "bin"
	FormatHex  Format = "hex"
	FormatELF  Format = "elf"
)

// Target is a build unit: one set of source files, preprocessor
// definitions, and output configuration producing one artifact (§3).
type Target struct {
	Name string

	WorkingDirectory string

	includeDirectories []string
	includeDirSeen     map[string]bool

	buildFiles []string
	buildSeen  map[string]bool

	EntrySymbol string
	EntrySite   string // provenance of the first @entry/.entry site, for redefinition diagnostics

	OutputDirectory string
	OutputName      string

	Definitions   []Definition
	definedNames  map[string]bool
	Dependencies  []string
	dependencySeen map[string]bool

	Format Format
	Built  bool
}

// NewTarget creates a target rooted at workingDirectory (the manifest
// directory, per §4.5's `.target` row).
func NewTarget(name, workingDirectory string) *Target {
	return &Target{
		Name:             name,
		WorkingDirectory: workingDirectory,
		includeDirSeen:   map[string]bool{},
		buildSeen:        map[string]bool{},
		definedNames:     map[string]bool{},
		dependencySeen:   map[string]bool{},
	}
}

// IncludeDirectories returns the target's include-search set in
// insertion order.
func (t *Target) IncludeDirectories() []string {
	return append([]string(nil), t.includeDirectories...)
}

// AddIncludeDirectory adds dir to the target's include set (a set, not
// a list — duplicates are silently absorbed). Returns whether dir was
// newly added.
func (t *Target) AddIncludeDirectory(dir string) bool {
	if t.includeDirSeen[dir] {
		return false
	}
	t.includeDirSeen[dir] = true
	t.includeDirectories = append(t.includeDirectories, dir)
	return true
}

// BuildFiles returns the target's file set in insertion order. Callers
// that need a deterministic build order (§5) use SortedBuildFiles
// instead, as internal/pipeline does.
func (t *Target) BuildFiles() []string {
	return append([]string(nil), t.buildFiles...)
}

// SortedBuildFiles returns BuildFiles sorted lexicographically by
// absolute path, satisfying §5's determinism requirement.
func (t *Target) SortedBuildFiles() []string {
	files := t.BuildFiles()
	sort.Strings(files)
	return files
}

// AddBuildFile unions path into the target's build-file set. Returns
// whether it was newly added.
func (t *Target) AddBuildFile(path string) bool {
	if t.buildSeen[path] {
		return false
	}
	t.buildSeen[path] = true
	t.buildFiles = append(t.buildFiles, path)
	return true
}

// SetEntrySymbol assigns the target's entry symbol. Per §3, it is
// assignable once; a second call returns an error naming both sites.
func (t *Target) SetEntrySymbol(symbol, site string) error {
	if t.EntrySymbol != "" {
		return fmt.Errorf("entry symbol already set to %q at %s (redefinition at %s)", t.EntrySymbol, t.EntrySite, site)
	}
	t.EntrySymbol = symbol
	t.EntrySite = site
	return nil
}

// AddDefinition inserts (name, value) into the target's definitions.
// Per P3, names must be unique within a target.
func (t *Target) AddDefinition(name, value string) error {
	if t.definedNames[name] {
		return fmt.Errorf("definition %q already set on target %q", name, t.Name)
	}
	t.definedNames[name] = true
	t.Definitions = append(t.Definitions, Definition{Name: name, Value: value})
	return nil
}

// HasDependency reports whether dep is already a direct dependency of
// this target, used by `.depends`'s repeated-dep warning.
func (t *Target) HasDependency(dep string) bool {
	return t.dependencySeen[dep]
}

// AddDependency appends dep to the target's dependency list without
// any cycle checking — the interpreter's `.depends` handler owns cycle
// detection across the whole target graph (§4.5).
func (t *Target) AddDependency(dep string) {
	t.dependencySeen[dep] = true
	t.Dependencies = append(t.Dependencies, dep)
}

// FileList is a named, reusable set of file paths (§3), populated by
// `.search_set` (replace) or `.search_add` (union).
type FileList struct {
	Name  string
	files []string
	seen  map[string]bool
}

func NewFileList(name string) *FileList {
	return &FileList{Name: name, seen: map[string]bool{}}
}

func (f *FileList) Files() []string { return append([]string(nil), f.files...) }

// Set replaces the file list's contents.
func (f *FileList) Set(files []string) {
	f.files = nil
	f.seen = map[string]bool{}
	f.Add(files)
}

// Add unions files into the file list.
func (f *FileList) Add(files []string) {
	for _, path := range files {
		if f.seen[path] {
			continue
		}
		f.seen[path] = true
		f.files = append(f.files, path)
	}
}
