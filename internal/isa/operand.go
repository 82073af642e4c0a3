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

// Package isa loads the instruction-set description (§4.2 of the
// toolchain spec) from a header-row CSV file into an in-memory,
// write-once-then-read-only registry of opcodes and their operand
// shapes.
package isa

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// OperandType is a bitset over the four operand kinds an argument
// slot may accept. ARGUMENT_i_TYPE's colon-separated union ("REGISTER:IMMEDIATE")
// becomes an OR of these bits.
type OperandType uint8

const (
	OperandRegister OperandType = 1 << iota
	OperandImmediate
	OperandLabel
	OperandVariable
)

func (t OperandType) Has(o OperandType) bool { return t&o != 0 }

func (t OperandType) String() string {
	var tags []string
	if t.Has(OperandRegister) {
		tags = append(tags, "REGISTER")
	}
	if t.Has(OperandImmediate) {
		tags = append(tags, "IMMEDIATE")
	}
	if t.Has(OperandLabel) {
		tags = append(tags, "LABEL")
	}
	if t.Has(OperandVariable) {
		tags = append(tags, "VARIABLE")
	}
	return strings.Join(tags, ":")
}

// ParseOperandType parses an ARGUMENT_i_TYPE cell, e.g. "REGISTER:IMMEDIATE".
func ParseOperandType(s string) (OperandType, error) {
	var out OperandType
	for _, tag := range strings.Split(s, ":") {
		tag = strings.ToUpper(strings.TrimSpace(tag))
		switch tag {
		case "REGISTER":
			out |= OperandRegister
		case "IMMEDIATE":
			out |= OperandImmediate
		case "LABEL":
			out |= OperandLabel
		case "VARIABLE":
			out |= OperandVariable
		default:
			return 0, errors.Errorf("unknown operand type tag %q", tag)
		}
	}
	if out == 0 {
		return 0, errors.New("empty operand type")
	}
	return out, nil
}

// OperandRange holds the immediate bound and/or named-register set an
// operand slot accepts, per §4.2's mixed grammar.
type OperandRange struct {
	HasImmediate   bool
	ImmediateMin   int64
	ImmediateMax   int64
	ValidRegisters map[string]bool
}

var (
	immediatePairPattern = regexp.MustCompile(`-?\d+:-?\d+`)
	// rangeTokenPattern finds either an "a-b" pair or a single bare
	// identifier, scanning the range string once the immediate pair
	// (if any) has been removed. See DESIGN.md, Open Question 4.
	rangeTokenPattern = regexp.MustCompile(`\w+-\w+|\w+`)
	gprRangePattern   = regexp.MustCompile(`^([A-Za-z]+?)(\d+)-[A-Za-z]+(\d+)$`)
)

// ParseOperandRange parses an ARGUMENT_i_RANGE cell. The immediate pair
// is extracted first (it occurs at most once), then whatever is left
// over is scanned for register tokens and ranges (see DESIGN.md, Open
// Question 4).
func ParseOperandRange(s string) (OperandRange, error) {
	r := OperandRange{ValidRegisters: map[string]bool{}}

	remainder := s
	if loc := immediatePairPattern.FindStringIndex(s); loc != nil {
		pair := s[loc[0]:loc[1]]
		parts := strings.SplitN(pair, ":", 2)
		minVal, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return OperandRange{}, errors.Wrapf(err, "invalid immediate min %q", parts[0])
		}
		maxVal, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return OperandRange{}, errors.Wrapf(err, "invalid immediate max %q", parts[1])
		}
		if minVal > maxVal {
			return OperandRange{}, errors.Errorf("immediate range %q has min > max", pair)
		}
		r.HasImmediate = true
		r.ImmediateMin = minVal
		r.ImmediateMax = maxVal
		remainder = s[:loc[0]] + " " + s[loc[1]:]
	}

	for _, tok := range rangeTokenPattern.FindAllString(remainder, -1) {
		if m := gprRangePattern.FindStringSubmatch(tok); m != nil {
			prefix, lo, hi := m[1], m[2], m[3]
			loN, err := strconv.Atoi(lo)
			if err != nil {
				return OperandRange{}, errors.Wrapf(err, "invalid register range %q", tok)
			}
			hiN, err := strconv.Atoi(hi)
			if err != nil {
				return OperandRange{}, errors.Wrapf(err, "invalid register range %q", tok)
			}
			if loN > hiN {
				loN, hiN = hiN, loN
			}
			for n := loN; n <= hiN; n++ {
				r.ValidRegisters[strings.ToLower(prefix)+strconv.Itoa(n)] = true
			}
			continue
		}
		r.ValidRegisters[strings.ToLower(tok)] = true
	}

	return r, nil
}

// ParseImmediate accepts decimal, 0x-hex, and 0b-binary literals with
// embedded underscores ignored, per §4.6/§6. A leading '-' is accepted
// only on decimal literals; a signed hex or binary literal is rejected.
func ParseImmediate(tok string) (int64, bool) {
	clean := strings.ReplaceAll(tok, "_", "")
	neg := false
	if strings.HasPrefix(clean, "-") {
		neg = true
		clean = clean[1:]
	}
	var v uint64
	var err error
	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		if neg {
			return 0, false
		}
		v, err = strconv.ParseUint(clean[2:], 16, 64)
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		if neg {
			return 0, false
		}
		v, err = strconv.ParseUint(clean[2:], 2, 64)
	default:
		v, err = strconv.ParseUint(clean, 10, 64)
	}
	if err != nil {
		return 0, false
	}
	n := int64(v)
	if neg {
		n = -n
	}
	return n, true
}

// OperandSpec is one argument slot in an instruction's signature.
type OperandSpec struct {
	Types     OperandType
	Range     OperandRange
	BitLength int
}

// IsValid reports whether tok can fill this operand slot under ANY of
// the slot's declared types. Label/Variable operands are accepted on
// shape alone (a bare identifier) since their resolution is deferred
// to later stages (§4.6).
func (o OperandSpec) IsValid(tok string) bool {
	if o.Types.Has(OperandRegister) && o.Range.ValidRegisters[strings.ToLower(tok)] {
		return true
	}
	if o.Types.Has(OperandImmediate) && o.Range.HasImmediate {
		if n, ok := ParseImmediate(tok); ok && n >= o.Range.ImmediateMin && n <= o.Range.ImmediateMax {
			return true
		}
	}
	if (o.Types.Has(OperandLabel) || o.Types.Has(OperandVariable)) && isIdentifier(tok) {
		return true
	}
	return false
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func isIdentifier(tok string) bool {
	return identifierPattern.MatchString(tok)
}
