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

// Package token holds the single token shape shared by the lexer,
// preprocessor, and assembler front-end. A Token never outlives the
// pipeline run that created it; it is a value, not a handle.
package token

import "fmt"

// Token is one lexeme plus its provenance. Dead marks a token the
// preprocessor consumed (an @include or @define directive line, for
// instance) so the final flattened stream can skip it without losing
// the line/file history that produced it.
type Token struct {
	Value    string
	Line     int
	Filepath string
	Dead     bool
}

func New(value, filepath string, line int) *Token {
	return &Token{Value: value, Line: line, Filepath: filepath}
}

// Site renders the provenance as "path:line" for diagnostic messages.
func (t *Token) Site() string {
	if t == nil {
		return "<nil>:0"
	}
	return fmt.Sprintf("%s:%d", t.Filepath, t.Line)
}

// IsDirective reports whether the token's raw text opens with '@', the
// marker for preprocessor directives (@include, @define, @entry).
func (t *Token) IsDirective() bool {
	return len(t.Value) > 0 && t.Value[0] == '@'
}

// Clone copies a token's value and provenance without its Dead flag,
// used when the preprocessor copies a block macro's body out of its
// definition and into each place the macro is expanded.
func (t *Token) Clone() *Token {
	return &Token{Value: t.Value, Line: t.Line, Filepath: t.Filepath}
}

func (t *Token) String() string {
	return fmt.Sprintf("%s@%s", t.Value, t.Site())
}

// Stream is a token slice with a helper for skipping dead tokens.
type Stream []*Token

// Live returns the stream with Dead tokens elided, in order.
func (s Stream) Live() Stream {
	out := make(Stream, 0, len(s))
	for _, tk := range s {
		if !tk.Dead {
			out = append(out, tk)
		}
	}
	return out
}
