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

// Package pipeline wires the per-target stage sequence together:
// tokenize, preprocess, and assemble each build file of a target, in
// the target's deterministic file order (§5), returning one combined
// assembler result per target.
package pipeline

import (
	"sort"

	"github.com/karbysCantCode/computer/internal/assemble"
	"github.com/karbysCantCode/computer/internal/manifest"
	"github.com/karbysCantCode/computer/internal/preprocess"
	"github.com/karbysCantCode/computer/internal/session"
	"github.com/karbysCantCode/computer/internal/token"
)

// BuildTarget runs tokenize → preprocess over every build file of tgt,
// in sorted order, concatenates the resulting live token streams, then
// assembles the concatenation as one unit against sess's instruction
// registry.
func BuildTarget(sess *session.Session, tgt *manifest.Target) *assemble.Result {
	files := tgt.SortedBuildFiles()
	sess.Log.WithField("target", tgt.Name).WithField("files", len(files)).Debug("building target")

	var all []*token.Token
	for _, f := range files {
		toks := preprocess.Run(f, tgt, sess.Diags)
		all = append(all, toks...)
	}

	return assemble.Run(all, sess.Registry, sess.Diags)
}

// BuildAll runs BuildTarget over every target in it, in name-sorted
// order for reproducible diagnostic ordering, and returns a map of
// target name to assembler result.
func BuildAll(sess *session.Session, it *manifest.Interpreter) map[string]*assemble.Result {
	targets := it.Targets()
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]*assemble.Result, len(targets))
	for _, name := range names {
		results[name] = BuildTarget(sess, targets[name])
	}
	return results
}
