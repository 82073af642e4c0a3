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

import (
	"strings"
	"testing"

	"github.com/karbysCantCode/computer/internal/diag"
	"github.com/karbysCantCode/computer/internal/isa"
	"github.com/karbysCantCode/computer/internal/lexer"
	"github.com/karbysCantCode/computer/internal/token"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `INSTRUCTION_NAME,OPCODE,BITFLAGS,ARGUMENT_1_TYPE,ARGUMENT_1_RANGE,ARGUMENT_1_BIT_LENGTH,ARGUMENT_2_TYPE,ARGUMENT_2_RANGE,ARGUMENT_2_BIT_LENGTH
HALT,000,0,,,,,,
ADI,001,0,REGISTER,r0-r7,3,IMMEDIATE,-16:15,5
BEQ,010,0,REGISTER,r0-r7,3,LABEL:VARIABLE,,0
`

func loadRegistry(t *testing.T) *isa.Registry {
	t.Helper()
	d := diag.New()
	reg, err := isa.Load(strings.NewReader(sampleCSV), "test.csv", d)
	require.NoError(t, err)
	require.False(t, d.HasErrors())
	return reg
}

func tokenize(t *testing.T, body string) []*token.Token {
	t.Helper()
	d := diag.New()
	res := lexer.TokenizeString("test.spasm", body, d)
	require.False(t, d.HasErrors())
	return res.Tokens
}

func TestInstructionLineValidatesOperands(t *testing.T) {
	reg := loadRegistry(t)
	d := diag.New()
	toks := tokenize(t, "ADI r1, 1\nHALT\n")
	res := Run(toks, reg, d)
	require.False(t, d.HasErrors())
	require.Len(t, res.Instructions, 2)
	require.Equal(t, "ADI", res.Instructions[0].Mnemonic)
	require.Equal(t, ArgRegister, res.Instructions[0].Args[0].Kind)
	require.Equal(t, ArgImmediate, res.Instructions[0].Args[1].Kind)
	require.EqualValues(t, 1, res.Instructions[0].Args[1].Immediate)
}

func TestInstructionOutOfRangeImmediateIsError(t *testing.T) {
	reg := loadRegistry(t)
	d := diag.New()
	toks := tokenize(t, "ADI r1, 999\n")
	res := Run(toks, reg, d)
	require.True(t, d.HasErrors())
	require.Empty(t, res.Instructions)
}

func TestUnknownOpcodeIsError(t *testing.T) {
	reg := loadRegistry(t)
	d := diag.New()
	toks := tokenize(t, "NOTANOP r1\n")
	res := Run(toks, reg, d)
	require.True(t, d.HasErrors())
	require.Empty(t, res.Instructions)
}

func TestLabelLineOpensScope(t *testing.T) {
	reg := loadRegistry(t)
	d := diag.New()
	toks := tokenize(t, ".loop\nHALT\n.loop\n")
	res := Run(toks, reg, d)
	require.True(t, d.HasErrors()) // second .loop collides with the first
	require.Len(t, res.Instructions, 1)
}

func TestVariableLineFixedSize(t *testing.T) {
	reg := loadRegistry(t)
	d := diag.New()
	toks := tokenize(t, "WORD COUNT 5\n")
	res := Run(toks, reg, d)
	require.False(t, d.HasErrors())
	require.Len(t, res.Variables, 1)
	require.Equal(t, "COUNT", res.Variables[0].Name)
	require.Equal(t, 2, res.Variables[0].SizeBytes)
	require.EqualValues(t, 5, res.Variables[0].Value)
}

// S6 — auto-sized TEXT integer variable.
func TestTextAutoSizeInteger(t *testing.T) {
	reg := loadRegistry(t)
	d := diag.New()
	toks := tokenize(t, "TEXT auto X 0x100\nTEXT auto Y 0\nTEXT auto Z 255\nTEXT auto W -1\n")
	res := Run(toks, reg, d)
	require.False(t, d.HasErrors())
	require.Len(t, res.Variables, 4)
	require.Equal(t, "X", res.Variables[0].Name)
	require.EqualValues(t, 256, res.Variables[0].Value)
	require.Equal(t, 2, res.Variables[0].SizeBytes)
	require.Equal(t, "Y", res.Variables[1].Name)
	require.Equal(t, 1, res.Variables[1].SizeBytes)
	require.Equal(t, "Z", res.Variables[2].Name)
	require.Equal(t, 1, res.Variables[2].SizeBytes)
	require.Equal(t, "W", res.Variables[3].Name)
	require.Equal(t, 1, res.Variables[3].SizeBytes)
}

func TestVariableCollisionReportsError(t *testing.T) {
	reg := loadRegistry(t)
	d := diag.New()
	toks := tokenize(t, "WORD COUNT 1\nWORD COUNT 2\n")
	_ = Run(toks, reg, d)
	require.True(t, d.HasErrors())
}

func TestAmbiguousLabelOrVariableOperandIsSymbol(t *testing.T) {
	reg := loadRegistry(t)
	d := diag.New()
	toks := tokenize(t, "BEQ r0, target\n")
	res := Run(toks, reg, d)
	require.False(t, d.HasErrors())
	require.Len(t, res.Instructions, 1)
	require.Equal(t, ArgSymbol, res.Instructions[0].Args[1].Kind)
}
