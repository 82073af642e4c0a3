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

package isa

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/karbysCantCode/computer/internal/diag"
	"github.com/pkg/errors"
)

// InstructionType is the static description of one opcode: its bit
// layout and its ordered operand slots.
type InstructionType struct {
	Name       string
	OpcodeBits uint16
	FlagBits   uint16
	Operands   []OperandSpec
}

// Registry is the immutable-after-load instruction set, keyed by
// lowercased mnemonic per §4.6's case-insensitive opcode matching.
type Registry struct {
	instructions   map[string]*InstructionType
	knownRegisters map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		instructions:   map[string]*InstructionType{},
		knownRegisters: map[string]bool{},
	}
}

// Lookup finds an instruction type by mnemonic, case-insensitively.
func (r *Registry) Lookup(name string) (*InstructionType, bool) {
	it, ok := r.instructions[strings.ToLower(name)]
	return it, ok
}

// IsKnownRegister reports whether name appeared in any row's
// ARGUMENT_i_RANGE register set while the registry was loaded.
func (r *Registry) IsKnownRegister(name string) bool {
	return r.knownRegisters[strings.ToLower(name)]
}

// Len returns the number of loaded instruction types, used for trace
// logging ("loaded N instructions from isa.csv").
func (r *Registry) Len() int { return len(r.instructions) }

func (r *Registry) addRegisters(set map[string]bool) {
	for name := range set {
		r.knownRegisters[name] = true
	}
}

func parseBitLiteral(s string) (uint64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	return strconv.ParseUint(clean, 2, 16)
}

func col(record []string, colIndex map[string]int, name string) (string, bool) {
	idx, ok := colIndex[name]
	if !ok || idx >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[idx]), true
}

// LoadFile opens path and loads the instruction set from it, pushing
// per-row errors onto diags rather than aborting the whole file; see
// §4.2 ("the row is skipped").
func LoadFile(path string, diags *diag.Sink) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening instruction set file %s", path)
	}
	defer f.Close()
	return Load(f, path, diags)
}

// Load reads a header-row CSV instruction-set description from r.
// sourceName labels diagnostics (typically the file path).
func Load(r io.Reader, sourceName string, diags *diag.Sink) (*Registry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading instruction set header row")
	}
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[strings.TrimSpace(h)] = i
	}

	reg := NewRegistry()
	rowNum := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			diags.Errorf(fmt.Sprintf("%s:%d", sourceName, rowNum), false, "malformed csv row: %v", err)
			continue
		}
		inst, ok := parseRow(record, colIndex, reg, sourceName, rowNum, diags)
		if !ok {
			continue
		}
		reg.instructions[strings.ToLower(inst.Name)] = inst
	}
	return reg, nil
}

func parseRow(record []string, colIndex map[string]int, reg *Registry, sourceName string, rowNum int, diags *diag.Sink) (*InstructionType, bool) {
	site := fmt.Sprintf("%s:%d", sourceName, rowNum)

	name, ok := col(record, colIndex, "INSTRUCTION_NAME")
	if !ok || name == "" {
		diags.Errorf(site, false, "missing INSTRUCTION_NAME")
		return nil, false
	}

	inst := &InstructionType{Name: name}

	if opcodeStr, ok := col(record, colIndex, "OPCODE"); ok && opcodeStr != "" {
		bits, err := parseBitLiteral(opcodeStr)
		if err != nil {
			diags.Errorf(site, false, "instruction %s: malformed OPCODE %q: %v", name, opcodeStr, err)
			return nil, false
		}
		inst.OpcodeBits = uint16(bits)
	}

	if flagsStr, ok := col(record, colIndex, "BITFLAGS"); ok && flagsStr != "" {
		bits, err := parseBitLiteral(flagsStr)
		if err != nil {
			diags.Errorf(site, false, "instruction %s: malformed BITFLAGS %q: %v", name, flagsStr, err)
			return nil, false
		}
		inst.FlagBits = uint16(bits)
	}

	for i := 1; ; i++ {
		typeCol := fmt.Sprintf("ARGUMENT_%d_TYPE", i)
		if _, present := colIndex[typeCol]; !present {
			break
		}
		typeStr, _ := col(record, colIndex, typeCol)
		if typeStr == "" {
			break
		}
		types, err := ParseOperandType(typeStr)
		if err != nil {
			diags.Errorf(site, false, "instruction %s operand %d: %v", name, i, err)
			return nil, false
		}

		rangeStr, _ := col(record, colIndex, fmt.Sprintf("ARGUMENT_%d_RANGE", i))
		rng, err := ParseOperandRange(rangeStr)
		if err != nil {
			diags.Errorf(site, false, "instruction %s operand %d: %v", name, i, err)
			return nil, false
		}

		bitLenStr, _ := col(record, colIndex, fmt.Sprintf("ARGUMENT_%d_BIT_LENGTH", i))
		bitLen := 0
		if bitLenStr != "" {
			n, err := strconv.Atoi(bitLenStr)
			if err != nil {
				diags.Errorf(site, false, "instruction %s operand %d: malformed ARGUMENT_%d_BIT_LENGTH %q", name, i, i, bitLenStr)
				return nil, false
			}
			bitLen = n
		}

		reg.addRegisters(rng.ValidRegisters)
		inst.Operands = append(inst.Operands, OperandSpec{Types: types, Range: rng, BitLength: bitLen})
	}

	return inst, true
}
