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
	"strings"
)

// Dump renders the interpreted manifest the way compiler2.py's
// build(..., dump=True) did: a deterministic, sectioned text summary
// suitable for writing to `_smake_build_dump_.txt` (§6).
func (it *Interpreter) Dump() string {
	var b strings.Builder

	b.WriteString("Labels:\n")
	for _, name := range sortedKeys(it.labels) {
		fmt.Fprintf(&b, "  %s\n", name)
	}

	b.WriteString("File lists:\n")
	for _, name := range sortedFileListKeys(it.fileLists) {
		fl := it.fileLists[name]
		fmt.Fprintf(&b, "  %s: %d file(s)\n", name, len(fl.Files()))
		for _, f := range fl.Files() {
			fmt.Fprintf(&b, "    %s\n", f)
		}
	}

	b.WriteString("Targets:\n")
	for _, name := range sortedTargetKeys(it.targets) {
		t := it.targets[name]
		fmt.Fprintf(&b, "  %s:\n", t.Name)
		fmt.Fprintf(&b, "    working_directory: %s\n", t.WorkingDirectory)
		fmt.Fprintf(&b, "    entry_symbol: %s\n", t.EntrySymbol)
		fmt.Fprintf(&b, "    output: %s/%s\n", t.OutputDirectory, t.OutputName)
		fmt.Fprintf(&b, "    format: %s\n", t.Format)
		fmt.Fprintf(&b, "    build_files: %d\n", len(t.BuildFiles()))
		fmt.Fprintf(&b, "    dependencies: %s\n", strings.Join(t.Dependencies, ", "))
		fmt.Fprintf(&b, "    include_directories: %s\n", strings.Join(t.IncludeDirectories(), ", "))
	}

	return b.String()
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedFileListKeys(m map[string]*FileList) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedTargetKeys(m map[string]*Target) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// VerifyTarget is the opt-in readiness advisory adapted from
// compiler2.py's Target.verify: missing entry symbol, build files, or
// output directory are reported as errors; missing dependencies or
// include directories only as debug notes, since a target with
// neither is often intentional (a standalone leaf target).
func (it *Interpreter) VerifyTarget(name string) {
	t, ok := it.targets[name]
	if !ok {
		it.diags.Errorf("", false, "verify: %q is not a declared target", name)
		return
	}
	if t.EntrySymbol == "" {
		it.diags.Errorf("", false, "target %q has no entry symbol", name)
	}
	if len(t.BuildFiles()) == 0 {
		it.diags.Errorf("", false, "target %q has no build files", name)
	}
	if t.OutputDirectory == "" {
		it.diags.Errorf("", false, "target %q has no output directory", name)
	}
	if len(t.Dependencies) == 0 {
		it.diags.Debugf("", "target %q declares no dependencies", name)
	}
	if len(t.IncludeDirectories()) == 0 {
		it.diags.Debugf("", "target %q declares no include directories", name)
	}
}
