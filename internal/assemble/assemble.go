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

// Package assemble implements the assembler front-end (§4.6): it
// consumes a preprocessed, flattened token stream and recognizes
// label, variable, and instruction lines, producing a typed
// instruction list plus the label/variable scope arena. It does not
// encode machine words — only validates and defers label/variable
// resolution, per §4.6.
package assemble

import (
	"regexp"
	"strings"

	"github.com/karbysCantCode/computer/internal/diag"
	"github.com/karbysCantCode/computer/internal/isa"
	"github.com/karbysCantCode/computer/internal/token"
)

var labelLinePattern = regexp.MustCompile(`^\.[A-Za-z_]\w*:?$`)

// Result is the assembler's output for one target's token stream.
type Result struct {
	Arena        *Arena
	Instructions []*Instruction
	Variables    []*Variable
}

// Assembler holds state threaded across the lines of one token stream
// (a whole target's concatenated files, in internal/pipeline): the
// currently open label scope, per §4.6 ("current_label").
type Assembler struct {
	diags   *diag.Sink
	reg     *isa.Registry
	arena   *Arena
	current ScopeHandle
	result  Result
}

// Run assembles tokens (already flattened and dead-token-free) against
// registry reg, logging diagnostics on diags and returning whatever
// instructions were successfully recognized.
func Run(tokens []*token.Token, reg *isa.Registry, diags *diag.Sink) *Result {
	arena, top := NewArena()
	a := &Assembler{diags: diags, reg: reg, arena: arena, current: top}
	a.result.Arena = arena

	for _, line := range groupLines(tokens) {
		a.processLine(line)
	}
	return &a.result
}

// groupLines splits a flattened stream into per-source-line runs: a
// new group starts whenever the (Filepath, Line) pair changes, since
// the preprocessor may have spliced together tokens from more than one
// file and a multi-line string token moves the cursor across lines.
func groupLines(tokens []*token.Token) [][]*token.Token {
	var groups [][]*token.Token
	var cur []*token.Token
	for _, tk := range tokens {
		if len(cur) > 0 && (cur[0].Filepath != tk.Filepath || cur[0].Line != tk.Line) {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, tk)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func (a *Assembler) processLine(line []*token.Token) {
	if len(line) == 0 {
		return
	}
	first := line[0].Value

	switch {
	case labelLinePattern.MatchString(first):
		a.processLabelLine(line)
	case isVarKeyword(first):
		a.processVariableLine(line)
	default:
		a.processInstructionLine(line)
	}
}

func isVarKeyword(s string) bool {
	_, ok := parseVarKind(s)
	return ok
}

func (a *Assembler) processLabelLine(line []*token.Token) {
	if len(line) != 1 {
		a.diags.Errorf(line[0].Site(), false, "label line %q: expected a single label token", line[0].Value)
		return
	}
	name := strings.TrimSuffix(strings.TrimPrefix(line[0].Value, "."), ":")
	h, err := a.arena.NewScope(a.current, name, line[0].Site())
	if err != nil {
		a.diags.Errorf(line[0].Site(), false, "%v", err)
		return
	}
	a.current = h
}

func (a *Assembler) processVariableLine(line []*token.Token) {
	kind, _ := parseVarKind(line[0].Value)
	site := line[0].Site()
	rest := make([]string, 0, len(line)-1)
	for _, tk := range line[1:] {
		rest = append(rest, tk.Value)
	}
	v, err := buildVariable(kind, rest, site)
	if err != nil {
		a.diags.Errorf(site, false, "%v", err)
		return
	}
	if defErr := a.arena.DefineName(a.current, v.Name, site); defErr != nil {
		a.diags.Errorf(site, false, "%v", defErr)
		return
	}
	v.ParentScope = a.current
	a.result.Variables = append(a.result.Variables, v)
}

func (a *Assembler) processInstructionLine(line []*token.Token) {
	site := line[0].Site()
	mnemonic := line[0].Value
	inst, ok := a.reg.Lookup(mnemonic)
	if !ok {
		a.diags.Errorf(site, false, "not an opcode: %q", mnemonic)
		return
	}
	operandToks := line[1:]
	if len(operandToks) != len(inst.Operands) {
		a.diags.Errorf(site, false, "%s: expected %d operand(s), got %d", mnemonic, len(inst.Operands), len(operandToks))
		return
	}

	args := make([]Argument, 0, len(operandToks))
	ok = true
	for i, tk := range operandToks {
		spec := inst.Operands[i]
		text := strings.TrimSuffix(tk.Value, ",")
		if !spec.IsValid(text) {
			a.diags.Errorf(tk.Site(), false, "%s: operand %d %q is not valid for %s", mnemonic, i+1, text, spec.Types)
			ok = false
			continue
		}
		args = append(args, classifyArgument(spec, text))
	}
	if !ok {
		return
	}

	a.result.Instructions = append(a.result.Instructions, &Instruction{
		Mnemonic: mnemonic,
		Type:     inst,
		Args:     args,
		Scope:    a.current,
		Site:     site,
	})
}

func classifyArgument(spec isa.OperandSpec, text string) Argument {
	if spec.Types.Has(isa.OperandRegister) && spec.Range.ValidRegisters[strings.ToLower(text)] {
		return Argument{Kind: ArgRegister, Text: text}
	}
	if spec.Types.Has(isa.OperandImmediate) {
		if n, ok := isa.ParseImmediate(text); ok && n >= spec.Range.ImmediateMin && n <= spec.Range.ImmediateMax {
			return Argument{Kind: ArgImmediate, Text: text, Immediate: n}
		}
	}
	hasLabel := spec.Types.Has(isa.OperandLabel)
	hasVariable := spec.Types.Has(isa.OperandVariable)
	switch {
	case hasLabel && hasVariable:
		return Argument{Kind: ArgSymbol, Text: text}
	case hasLabel:
		return Argument{Kind: ArgLabel, Text: text}
	case hasVariable:
		return Argument{Kind: ArgVariable, Text: text}
	default:
		return Argument{Kind: ArgSymbol, Text: text}
	}
}
