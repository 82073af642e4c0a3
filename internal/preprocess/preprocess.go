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

// Package preprocess implements the preprocessor (§4.4): file
// inclusion with search-path resolution, single-value and block macro
// substitution, entry-symbol designation, and flattening into a
// single live token stream per target.
//
// Value macros (target-level definitions and the value form of
// @define) are word-boundary regex substitutions applied in place to
// token values. Block macros and @include results are token lists
// spliced in during a single final walk rather than re-tokenized.
package preprocess

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/karbysCantCode/computer/internal/diag"
	"github.com/karbysCantCode/computer/internal/lexer"
	"github.com/karbysCantCode/computer/internal/manifest"
	"github.com/karbysCantCode/computer/internal/token"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// Run preprocesses path (already an absolute, resolved build file) in
// the context of tgt, returning the flattened, dead-token-free stream.
func Run(path string, tgt *manifest.Target, diags *diag.Sink) []*token.Token {
	return preprocessFile(path, tgt, diags, map[string]bool{})
}

func preprocessFile(path string, tgt *manifest.Target, diags *diag.Sink, includeChain map[string]bool) []*token.Token {
	if includeChain[path] {
		diags.Errorf(path, true, "circular @include: %s is already being processed", path)
		return nil
	}
	includeChain[path] = true
	defer delete(includeChain, path)

	lexed, err := lexer.TokenizeFile(path, diags)
	if err != nil {
		diags.Errorf(path, true, "cannot read %s: %v", path, err)
		return nil
	}
	tokens := lexed.Tokens

	applyDefinitions(tokens, tgt.Definitions)

	p := &preprocessor{
		tgt:          tgt,
		diags:        diags,
		includeChain: includeChain,
		splices:      map[int][]*token.Token{},
	}
	p.process(tokens, lexed.Directives)
	return p.splice(tokens)
}

// applyDefinitions implements §4.4 step 2: every target-level
// `.define` is a word-boundary substring substitution applied over
// ALL tokens of the file, in declaration order.
func applyDefinitions(tokens []*token.Token, defs []manifest.Definition) {
	for _, d := range defs {
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(d.Name) + `\b`)
		for _, tk := range tokens {
			tk.Value = pattern.ReplaceAllString(tk.Value, d.Value)
		}
	}
}

type valueSub struct {
	pattern     *regexp.Regexp
	replacement string
	fromIndex   int
}

type blockSub struct {
	name      string
	tokens    []*token.Token
	fromIndex int
}

type preprocessor struct {
	tgt          *manifest.Target
	diags        *diag.Sink
	includeChain map[string]bool

	valueSubs []valueSub
	blockSubs []blockSub
	splices   map[int][]*token.Token
}

func (p *preprocessor) process(tokens []*token.Token, directives map[int]bool) {
	indexes := make([]int, 0, len(directives))
	for idx := range directives {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		if idx >= len(tokens) {
			continue
		}
		switch tokens[idx].Value {
		case "@include":
			p.handleInclude(tokens, idx)
		case "@define":
			p.handleDefine(tokens, idx)
		case "@entry":
			p.handleEntry(tokens, idx)
		default:
			tk := tokens[idx]
			p.diags.Warnf(tk.Site(), "unrecognized directive %q", tk.Value)
		}
	}
}

func markDead(tokens []*token.Token, indexes ...int) {
	for _, i := range indexes {
		if i >= 0 && i < len(tokens) {
			tokens[i].Dead = true
		}
	}
}

func (p *preprocessor) handleInclude(tokens []*token.Token, idx int) {
	directiveTok := tokens[idx]
	if idx+1 >= len(tokens) || !isStringLiteral(tokens[idx+1].Value) {
		p.diags.Errorf(directiveTok.Site(), false, "@include: missing quoted path argument")
		markDead(tokens, idx)
		return
	}
	argTok := tokens[idx+1]
	markDead(tokens, idx, idx+1)

	raw := unquote(argTok.Value)
	if filepath.Ext(raw) != ".spasm" {
		raw += ".spasm"
	}

	resolved, ok := resolveInclude(raw, p.tgt)
	if !ok {
		p.diags.Errorf(argTok.Site(), false, "@include: cannot resolve %q", raw)
		return
	}

	sub := preprocessFile(resolved, p.tgt, p.diags, p.includeChain)
	p.splices[idx] = sub
}

// resolveInclude implements §4.4's three-tier search order: (a)
// absolute or CWD-relative existence, (b) each of the target's
// include directories, (c) the target's working directory.
func resolveInclude(raw string, tgt *manifest.Target) (string, bool) {
	if fileExists(raw) {
		abs, err := filepath.Abs(raw)
		if err == nil {
			return abs, true
		}
	}
	for _, dir := range tgt.IncludeDirectories() {
		candidate := filepath.Join(dir, raw)
		if fileExists(candidate) {
			abs, err := filepath.Abs(candidate)
			if err == nil {
				return abs, true
			}
		}
	}
	candidate := filepath.Join(tgt.WorkingDirectory, raw)
	if fileExists(candidate) {
		abs, err := filepath.Abs(candidate)
		if err == nil {
			return abs, true
		}
	}
	return "", false
}

func (p *preprocessor) handleDefine(tokens []*token.Token, idx int) {
	directiveTok := tokens[idx]
	if idx+1 >= len(tokens) {
		p.diags.Errorf(directiveTok.Site(), false, "@define: missing NAME")
		markDead(tokens, idx)
		return
	}
	nameTok := tokens[idx+1]
	if !identifierPattern.MatchString(nameTok.Value) {
		p.diags.Errorf(nameTok.Site(), false, "@define: %q is not a valid identifier", nameTok.Value)
		markDead(tokens, idx, idx+1)
		return
	}
	if idx+2 >= len(tokens) {
		p.diags.Errorf(directiveTok.Site(), false, "@define %s: missing value", nameTok.Value)
		markDead(tokens, idx, idx+1)
		return
	}

	openTok := tokens[idx+2]
	if openTok.Value == `\` {
		p.handleBlockDefine(tokens, idx, nameTok)
		return
	}

	valueTok := openTok
	p.valueSubs = append(p.valueSubs, valueSub{
		pattern:     regexp.MustCompile(`\b` + regexp.QuoteMeta(nameTok.Value) + `\b`),
		replacement: valueTok.Value,
		fromIndex:   idx,
	})
	markDead(tokens, idx, idx+1, idx+2)
}

func (p *preprocessor) handleBlockDefine(tokens []*token.Token, idx int, nameTok *token.Token) {
	closeIdx := -1
	for i := idx + 3; i < len(tokens); i++ {
		if tokens[i].Value == `\` {
			closeIdx = i
			break
		}
	}
	if closeIdx == -1 {
		p.diags.Errorf(nameTok.Site(), false, "@define %s: unterminated block (no closing \\)", nameTok.Value)
		markDead(tokens, idx, idx+1, idx+2)
		return
	}

	body := make([]*token.Token, 0, closeIdx-(idx+3))
	for i := idx + 3; i < closeIdx; i++ {
		body = append(body, tokens[i].Clone())
	}
	p.blockSubs = append(p.blockSubs, blockSub{name: nameTok.Value, tokens: body, fromIndex: idx})

	dead := make([]int, 0, closeIdx-idx+1)
	for i := idx; i <= closeIdx; i++ {
		dead = append(dead, i)
	}
	markDead(tokens, dead...)
}

func (p *preprocessor) handleEntry(tokens []*token.Token, idx int) {
	directiveTok := tokens[idx]
	if idx+1 >= len(tokens) {
		p.diags.Errorf(directiveTok.Site(), false, "@entry: missing SYMBOL")
		markDead(tokens, idx)
		return
	}
	symTok := tokens[idx+1]
	if err := p.tgt.SetEntrySymbol(symTok.Value, symTok.Site()); err != nil {
		p.diags.Errorf(symTok.Site(), false, "%v", err)
	}
	markDead(tokens, idx, idx+1)
}

func (p *preprocessor) splice(tokens []*token.Token) []*token.Token {
	for _, vs := range p.valueSubs {
		for i := vs.fromIndex + 1; i < len(tokens); i++ {
			tokens[i].Value = vs.pattern.ReplaceAllString(tokens[i].Value, vs.replacement)
		}
	}

	out := make([]*token.Token, 0, len(tokens))
	for i, tk := range tokens {
		if repl, ok := p.splices[i]; ok {
			out = append(out, repl...)
			continue
		}
		if tk.Dead {
			continue
		}
		if repl, ok := p.matchBlockSub(i, tk.Value); ok {
			out = append(out, cloneAll(repl)...)
			continue
		}
		out = append(out, tk)
	}
	return out
}

// matchBlockSub finds the most-recently-registered block macro whose
// name matches value and whose definition site precedes index i — a
// later @define of the same name shadows an earlier one.
func (p *preprocessor) matchBlockSub(i int, value string) ([]*token.Token, bool) {
	var winner *blockSub
	for idx := range p.blockSubs {
		bs := &p.blockSubs[idx]
		if bs.name == value && bs.fromIndex < i {
			winner = bs
		}
	}
	if winner == nil {
		return nil, false
	}
	return winner.tokens, true
}

func cloneAll(tokens []*token.Token) []*token.Token {
	out := make([]*token.Token, len(tokens))
	for i, tk := range tokens {
		out[i] = tk.Clone()
	}
	return out
}

func isStringLiteral(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

func unquote(s string) string {
	if isStringLiteral(s) {
		return s[1 : len(s)-1]
	}
	return s
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
