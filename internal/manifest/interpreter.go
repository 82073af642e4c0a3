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

// Package manifest implements the build-manifest interpreter (§4.5):
// a directive-driven parser that builds target descriptions, file-set
// collections, and label scopes out of the declarative manifest file.
package manifest

import (
	"os"
	"path/filepath"

	"github.com/karbysCantCode/computer/internal/diag"
	"github.com/pkg/errors"
)

// declKind records which namespace a name was declared in, for the
// cross-namespace collision checks §3/§4.5 require.
type declKind int

const (
	declTarget declKind = iota
	declLabel
	declFlist
)

// Interpreter holds the manifest's parse result: targets, file lists,
// and the free-standing label set used by `.ifdef`/`.ifndef`.
type Interpreter struct {
	ManifestDir string
	// Strict makes same-namespace `.label` redeclaration an error
	// instead of a warning, per compiler2.py's build(..., strict=true)
	// parameter (see SPEC_FULL.md §12).
	Strict bool

	targets   map[string]*Target
	fileLists map[string]*FileList
	labels    map[string]bool
	declared  map[string]declKind

	diags *diag.Sink
}

func newInterpreter(manifestDir string, diags *diag.Sink) *Interpreter {
	return &Interpreter{
		ManifestDir: manifestDir,
		targets:     map[string]*Target{},
		fileLists:   map[string]*FileList{},
		labels:      map[string]bool{},
		declared:    map[string]declKind{},
		diags:       diags,
	}
}

// Targets returns the parsed target map, keyed by name.
func (it *Interpreter) Targets() map[string]*Target { return it.targets }

// FileLists returns the parsed file-list map, keyed by name.
func (it *Interpreter) FileLists() map[string]*FileList { return it.fileLists }

// Target looks up a parsed target by name.
func (it *Interpreter) Target(name string) (*Target, bool) {
	t, ok := it.targets[name]
	return t, ok
}

// ParseFile reads path and interprets it as a manifest, rooted at
// path's directory. Diagnostics are pushed onto diags; the function
// itself only errors on I/O failure to read the manifest file.
func ParseFile(path string, diags *diag.Sink) (*Interpreter, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	dir := filepath.Dir(path)
	it := newInterpreter(dir, diags)
	tokens := tokenizeManifest(src)
	it.parseRange(tokens, 0, len(tokens))
	return it, nil
}

func (it *Interpreter) parseRange(tokens []mtoken, start, end int) {
	i := start
	for i < end && tokens[i].Kind != mEOF {
		tok := tokens[i]
		if tok.Kind != mDirective {
			it.diags.Errorf(tok.site(), false, "expected a directive, found %q", tok.Value)
			i = it.skipToNextDirective(tokens, i+1, end)
			continue
		}
		i = it.dispatch(tokens, i, end)
	}
}

func (it *Interpreter) skipToNextDirective(tokens []mtoken, from, end int) int {
	for i := from; i < end; i++ {
		if tokens[i].Kind == mDirective {
			return i
		}
	}
	return end
}

func (it *Interpreter) findMatchingBrace(tokens []mtoken, openIdx int) int {
	depth := 1
	for i := openIdx + 1; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case mLBrace:
			depth++
		case mRBrace:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (it *Interpreter) dispatch(tokens []mtoken, i, end int) int {
	dtok := tokens[i]
	switch dtok.Value {
	case "target":
		return it.doSimpleName(tokens, i, end, it.doTarget)
	case "label":
		return it.doSimpleName(tokens, i, end, it.doLabel)
	case "flist":
		return it.doSimpleName(tokens, i, end, it.doFlist)
	case "ifdef":
		return it.doConditional(tokens, i, end, false)
	case "ifndef":
		return it.doConditional(tokens, i, end, true)
	case "include_directory":
		return it.doParenForm(tokens, i, end, it.doIncludeDirectory)
	case "search_set":
		return it.doParenForm(tokens, i, end, func(args []mtoken, site string) { it.doSearch(args, site, false) })
	case "search_add":
		return it.doParenForm(tokens, i, end, func(args []mtoken, site string) { it.doSearch(args, site, true) })
	case "add_target":
		return it.doParenForm(tokens, i, end, it.doAddTarget)
	case "define":
		return it.doParenForm(tokens, i, end, it.doDefine)
	case "entry":
		return it.doParenForm(tokens, i, end, it.doEntry)
	case "output":
		return it.doParenForm(tokens, i, end, it.doOutput)
	case "format":
		return it.doParenForm(tokens, i, end, it.doFormat)
	case "depends":
		return it.doParenForm(tokens, i, end, it.doDepends)
	default:
		it.diags.Errorf(dtok.site(), false, "unknown directive \".%s\"", dtok.Value)
		return it.skipToNextDirective(tokens, i+1, end)
	}
}

// doSimpleName handles the three directives that take a single bare
// NAME with no parentheses: `.target`, `.label`, `.flist`.
func (it *Interpreter) doSimpleName(tokens []mtoken, i, end int, handler func(name, site string)) int {
	dtok := tokens[i]
	if i+1 >= end || tokens[i+1].Kind != mIdentifier {
		it.diags.Errorf(dtok.site(), false, ".%s: expected a name", dtok.Value)
		return it.skipToNextDirective(tokens, i+1, end)
	}
	handler(tokens[i+1].Value, dtok.site())
	return i + 2
}

func (it *Interpreter) doConditional(tokens []mtoken, i, end int, negate bool) int {
	dtok := tokens[i]
	if i+1 >= end || tokens[i+1].Kind != mIdentifier {
		it.diags.Errorf(dtok.site(), false, ".%s: expected NAME", dtok.Value)
		return it.skipToNextDirective(tokens, i+1, end)
	}
	name := tokens[i+1].Value
	if i+2 >= end || tokens[i+2].Kind != mLBrace {
		it.diags.Errorf(dtok.site(), false, ".%s %s: expected '{'", dtok.Value, name)
		return it.skipToNextDirective(tokens, i+2, end)
	}
	closeIdx := it.findMatchingBrace(tokens, i+2)
	if closeIdx == -1 {
		it.diags.Errorf(dtok.site(), false, ".%s %s: missing closing '}'", dtok.Value, name)
		return end
	}
	defined := it.labels[name]
	if negate {
		defined = !defined
	}
	if defined {
		it.parseRange(tokens, i+3, closeIdx)
	}
	return closeIdx + 1
}

// doParenForm handles every directive of the form `.word (a, b, c…)`.
func (it *Interpreter) doParenForm(tokens []mtoken, i, end int, handler func(args []mtoken, site string)) int {
	dtok := tokens[i]
	if i+1 >= end || tokens[i+1].Kind != mLParen {
		it.diags.Errorf(dtok.site(), false, ".%s: expected '('", dtok.Value)
		return it.skipToNextDirective(tokens, i+1, end)
	}
	args, next, ok := it.collectArgs(tokens, i+1, end)
	if !ok {
		it.diags.Errorf(dtok.site(), false, ".%s: malformed argument list", dtok.Value)
		return it.skipToNextDirective(tokens, next, end)
	}
	handler(args, dtok.site())
	return next
}

func (it *Interpreter) collectArgs(tokens []mtoken, openIdx, end int) ([]mtoken, int, bool) {
	i := openIdx + 1
	var args []mtoken
	if i < end && tokens[i].Kind == mRParen {
		return args, i + 1, true
	}
	for {
		if i >= end || (tokens[i].Kind != mIdentifier && tokens[i].Kind != mString) {
			return args, i, false
		}
		args = append(args, tokens[i])
		i++
		if i >= end {
			return args, i, false
		}
		if tokens[i].Kind == mRParen {
			return args, i + 1, true
		}
		if tokens[i].Kind != mComma {
			return args, i, false
		}
		i++
	}
}
