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

package lexer

import (
	"testing"

	"github.com/karbysCantCode/computer/internal/diag"
	"github.com/stretchr/testify/require"
)

func check(t *testing.T, a1 any, a2 any) {
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func values(r *Result) []string {
	out := make([]string, len(r.Tokens))
	for i, tk := range r.Tokens {
		out[i] = tk.Value
	}
	return out
}

// S1 — string literal containing a literal newline is one token on
// its starting line.
func TestStringSpansLines(t *testing.T) {
	d := diag.New()
	r := TokenizeString(t.Name(), "\"hello\nworld\"", d)
	require.False(t, d.HasErrors())
	require.Len(t, r.Tokens, 1)
	check(t, r.Tokens[0].Value, "\"hello\nworld\"")
	check(t, r.Tokens[0].Line, 1)
}

// S2 — nested block comments are not supported: everything up to the
// first "*;" is one comment, and a later stray "*;" is an error.
func TestNestedBlockCommentNotSupported(t *testing.T) {
	d := diag.New()
	r := TokenizeString(t.Name(), ";* a ;* b *; c *;", d)
	require.Equal(t, []string{"c", "*;"}, values(r))
	require.True(t, d.HasErrors())
}

func TestLineComment(t *testing.T) {
	d := diag.New()
	r := TokenizeString(t.Name(), "ADI r1, 1 ; load constant\nHALT", d)
	require.False(t, d.HasErrors())
	require.Equal(t, []string{"ADI", "r1,", "1", "HALT"}, values(r))
	check(t, r.Tokens[3].Line, 2)
}

func TestDirectiveTokenRecorded(t *testing.T) {
	d := diag.New()
	r := TokenizeString(t.Name(), "@include \"helpers\"\nHALT", d)
	require.False(t, d.HasErrors())
	require.Equal(t, []string{"@include", "\"helpers\"", "HALT"}, values(r))
	check(t, r.Directives[0], true)
	_, isDirective := r.Directives[1]
	check(t, isDirective, false)
}

func TestReservedBracketIsError(t *testing.T) {
	d := diag.New()
	r := TokenizeString(t.Name(), "[r1]", d)
	require.True(t, d.HasErrors())
	require.Equal(t, []string{"[", "r1", "]"}, values(r))
}

func TestUnterminatedStringStopsFile(t *testing.T) {
	d := diag.New()
	r := TokenizeString(t.Name(), "HALT \"oops", d)
	require.True(t, d.HasErrors())
	require.Equal(t, []string{"HALT"}, values(r))
}

func TestEscapedQuoteDoesNotTerminateString(t *testing.T) {
	d := diag.New()
	r := TokenizeString(t.Name(), `"a \"b\" c"`, d)
	require.False(t, d.HasErrors())
	require.Len(t, r.Tokens, 1)
	check(t, r.Tokens[0].Value, `"a \"b\" c"`)
}

// P6 (partial, no strings or comments in the input): tokenize, drop nothing dead,
// join with single spaces, retokenize — same token values in order.
func TestRoundTripPreservesValues(t *testing.T) {
	d := diag.New()
	source := "start: ADI r1, 1\nHALT"
	r1 := TokenizeString(t.Name(), source, d)
	joined := ""
	for i, tk := range r1.Tokens {
		if i > 0 {
			joined += " "
		}
		joined += tk.Value
	}
	r2 := TokenizeString(t.Name(), joined, d)
	require.Equal(t, values(r1), values(r2))
}
