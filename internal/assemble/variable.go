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
	"math/bits"
	"strconv"
	"strings"

	"github.com/karbysCantCode/computer/internal/isa"
	"github.com/pkg/errors"
)

// VarKind is a variable's declared storage type (§3).
type VarKind int

const (
	VarUnassigned VarKind = iota
	VarChar
	VarWord
	VarDword
	VarQword
	VarText
)

func (k VarKind) fixedSize() (int, bool) {
	switch k {
	case VarChar:
		return 1, true
	case VarWord:
		return 2, true
	case VarDword:
		return 4, true
	case VarQword:
		return 8, true
	default:
		return 0, false
	}
}

func parseVarKind(keyword string) (VarKind, bool) {
	switch keyword {
	case "CHAR":
		return VarChar, true
	case "WORD":
		return VarWord, true
	case "DWORD":
		return VarDword, true
	case "QWORD":
		return VarQword, true
	case "TEXT":
		return VarText, true
	default:
		return VarUnassigned, false
	}
}

// Variable is one declared storage location (§3). Value holds an int64
// for an integer literal or a string for a quoted-string literal.
type Variable struct {
	Name        string
	Kind        VarKind
	SizeBytes   int
	Value       any
	ParentScope ScopeHandle
	Site        string
}

// autoSizeInt implements §3's integer auto-sizing rule: ceil((bits +
// sign_bit) / 8), with 0 mapping to 1 byte (S6).
func autoSizeInt(v int64) int {
	if v == 0 {
		return 1
	}
	mag := v
	if mag < 0 {
		mag = -mag
	}
	bitLen := bits.Len64(uint64(mag))
	if v < 0 {
		bitLen++
	}
	return (bitLen + 7) / 8
}

// buildVariable validates and constructs a Variable from a variable
// line's tokens. kind is already resolved from the leading keyword;
// rest is [NAME, VALUE] for fixed-size kinds or [SIZE, NAME, VALUE]
// for TEXT.
func buildVariable(kind VarKind, rest []string, site string) (*Variable, error) {
	if kind == VarText {
		if len(rest) != 3 {
			return nil, errors.Errorf("TEXT variable: expected SIZE NAME VALUE, got %d token(s)", len(rest))
		}
		sizeTok, name, valueTok := rest[0], rest[1], rest[2]
		v := &Variable{Name: name, Kind: VarText, ParentScope: NoScope, Site: site}
		if isQuotedString(valueTok) {
			v.Value = unquoteString(valueTok)
		} else {
			n, ok := isa.ParseImmediate(valueTok)
			if !ok {
				return nil, errors.Errorf("TEXT variable %s: invalid value %q", name, valueTok)
			}
			v.Value = n
		}
		if sizeTok == "auto" {
			v.SizeBytes = autoSizeTextValue(v.Value)
		} else {
			n, err := strconv.Atoi(sizeTok)
			if err != nil || n <= 0 {
				return nil, errors.Errorf("TEXT variable %s: invalid explicit size %q", name, sizeTok)
			}
			v.SizeBytes = n
		}
		return v, nil
	}

	if len(rest) != 2 {
		return nil, errors.Errorf("variable: expected NAME VALUE, got %d token(s)", len(rest))
	}
	name, valueTok := rest[0], rest[1]
	size, _ := kind.fixedSize()
	v := &Variable{Name: name, Kind: kind, SizeBytes: size, ParentScope: NoScope, Site: site}
	if isQuotedString(valueTok) {
		v.Value = unquoteString(valueTok)
	} else {
		n, ok := isa.ParseImmediate(valueTok)
		if !ok {
			return nil, errors.Errorf("variable %s: invalid value %q", name, valueTok)
		}
		v.Value = n
	}
	return v, nil
}

func autoSizeTextValue(value any) int {
	switch val := value.(type) {
	case string:
		if len(val) == 0 {
			return 1
		}
		return len(val)
	case int64:
		return autoSizeInt(val)
	default:
		return 1
	}
}

func isQuotedString(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)
}

func unquoteString(s string) string {
	if isQuotedString(s) {
		return s[1 : len(s)-1]
	}
	return s
}
