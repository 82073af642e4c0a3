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

package assemble

import "github.com/karbysCantCode/computer/internal/isa"

// ArgumentKind classifies one resolved operand of an Instruction.
type ArgumentKind int

const (
	ArgRegister ArgumentKind = iota
	ArgImmediate
	ArgLabel
	ArgVariable
	// ArgSymbol marks an operand valid only by identifier shape, whose
	// slot accepts both LABEL and VARIABLE — which one it names is left
	// for the resolution pass over the completed scope arena (§4.6:
	// "resolution is deferred").
	ArgSymbol
)

// Argument is one typed, as-yet-possibly-unresolved instruction operand.
type Argument struct {
	Kind      ArgumentKind
	Text      string
	Immediate int64 // valid only when Kind == ArgImmediate
}

// Instruction is one recognized instruction line with validated,
// typed arguments — not yet encoded to machine words (§4.6: "only to
// validate and produce the instruction list... encoding happens
// downstream").
type Instruction struct {
	Mnemonic string
	Type     *isa.InstructionType
	Args     []Argument
	Scope    ScopeHandle
	Site     string
}
