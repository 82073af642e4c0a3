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

// Package lexer implements the source tokenizer (§4.3): context
// sensitive lexing of assembly sources, including block comments,
// multi-line strings, reserved brackets, and '@'-prefixed directives.
package lexer

import (
	"fmt"

	"github.com/karbysCantCode/computer/internal/diag"
	"github.com/karbysCantCode/computer/internal/token"
)

// Result is one file's tokenization: its live token stream plus the
// set of indices into that stream pointing at directive tokens (any
// token whose raw text begins with '@').
type Result struct {
	Tokens     []*token.Token
	Directives map[int]bool
}

// TokenizeFile reads path whole and tokenizes it. An unterminated
// string or block comment logs an error and stops tokenizing early,
// returning whatever tokens were produced before the failure.
func TokenizeFile(path string, diags *diag.Sink) (*Result, error) {
	r, err := newFileReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return tokenize(r, path, diags), nil
}

// TokenizeString tokenizes body as though it were the file named by
// ident, for tests and for the preprocessor's synthesized fragments.
func TokenizeString(ident, body string, diags *diag.Sink) *Result {
	return tokenize(newStringReader(body), ident, diags)
}

type scanner struct {
	r      *pushbackByteReader
	path   string
	line   int
	diags  *diag.Sink
	result Result
}

func tokenize(r *pushbackByteReader, path string, diags *diag.Sink) *Result {
	sc := &scanner{r: r, path: path, line: 1, diags: diags, result: Result{Directives: map[int]bool{}}}
	sc.run()
	return &sc.result
}

func (sc *scanner) emit(value string, startLine int) {
	tk := token.New(value, sc.path, startLine)
	if len(value) > 0 && value[0] == '@' {
		sc.result.Directives[len(sc.result.Tokens)] = true
	}
	sc.result.Tokens = append(sc.result.Tokens, tk)
}

func (sc *scanner) errorf(line int, format string, args ...any) {
	sc.diags.Errorf(fmt.Sprintf("%s:%d", sc.path, line), false, format, args...)
}

// run is the top-level scan loop: at every point it is "between
// tokens" and decides, from the next byte, which lexeme (in the
// priority order from §4.3) to recognize.
func (sc *scanner) run() {
	for {
		b, err := sc.r.ReadByte()
		if err != nil {
			return
		}
		switch {
		case b == '\n':
			sc.line++
		case isWhitespace(b):
			// elided, already counted above for '\n'
		case b == '"':
			if !sc.scanString() {
				return
			}
		case b == ';':
			nb, rerr := sc.r.ReadByte()
			if rerr == nil && nb == '*' {
				if !sc.scanBlockComment() {
					return
				}
			} else {
				if rerr == nil {
					sc.r.UnreadByte(nb)
				}
				sc.scanLineComment()
			}
		case b == '*':
			sc.scanMaybeStrayCommentClose(b)
		case isBracket(b):
			startLine := sc.line
			sc.emit(string(b), startLine)
			sc.errorf(startLine, "reserved bracket %q is not a valid token", string(b))
		default:
			sc.scanRun(b)
		}
	}
}

// scanMaybeStrayCommentClose handles a lone "*;" encountered outside
// an open block comment (S2): it is recognized as a single reserved
// token and logged as an error, distinct from an ordinary generic run
// starting with '*'.
func (sc *scanner) scanMaybeStrayCommentClose(first byte) {
	nb, err := sc.r.ReadByte()
	if err == nil && nb == ';' {
		startLine := sc.line
		sc.emit("*;", startLine)
		sc.errorf(startLine, "stray block-comment terminator %q outside any comment", "*;")
		return
	}
	if err == nil {
		sc.r.UnreadByte(nb)
	}
	sc.scanRun(first)
}

// scanLineComment discards "; ... " up to but not including the
// terminating newline, which the outer loop re-reads to keep its
// line counter correct.
func (sc *scanner) scanLineComment() {
	for {
		b, err := sc.r.ReadByte()
		if err != nil {
			return
		}
		if b == '\n' {
			sc.r.UnreadByte(b)
			return
		}
	}
}

// scanBlockComment discards everything up to and including the FIRST
// "*;" found after the opening ";*" — greedy, non-nesting, per §4.3
// and scenario S2. Returns false (and logs an error) on EOF first.
func (sc *scanner) scanBlockComment() bool {
	startLine := sc.line
	var prev byte
	havePrev := false
	for {
		b, err := sc.r.ReadByte()
		if err != nil {
			sc.errorf(startLine, "unterminated block comment")
			return false
		}
		if b == '\n' {
			sc.line++
		}
		if havePrev && prev == '*' && b == ';' {
			return true
		}
		prev = b
		havePrev = true
	}
}

// scanString accumulates a double-quoted string literal that may span
// multiple lines and contains \" escapes, returning the token
// including its surrounding quotes. Returns false (and logs an error)
// on EOF before the closing quote.
func (sc *scanner) scanString() bool {
	startLine := sc.line
	buf := []byte{'"'}
	for {
		b, err := sc.r.ReadByte()
		if err != nil {
			sc.errorf(startLine, "unterminated string literal")
			return false
		}
		if b == '\n' {
			sc.line++
		}
		if b == '\\' {
			nb, err := sc.r.ReadByte()
			if err != nil {
				sc.errorf(startLine, "unterminated string literal")
				return false
			}
			if nb == '\n' {
				sc.line++
			}
			buf = append(buf, b, nb)
			continue
		}
		buf = append(buf, b)
		if b == '"' {
			sc.emit(string(buf), startLine)
			return true
		}
	}
}

// scanRun accumulates a run of non-whitespace bytes starting with
// first, terminating at (but not consuming) the next whitespace byte,
// reserved bracket, or EOF. This covers both '@'-directives and generic
// tokens; emit tells them apart by inspecting the leading byte.
func (sc *scanner) scanRun(first byte) {
	startLine := sc.line
	buf := []byte{first}
	for {
		b, err := sc.r.ReadByte()
		if err != nil {
			break
		}
		if isWhitespace(b) || isBracket(b) {
			sc.r.UnreadByte(b)
			break
		}
		buf = append(buf, b)
	}
	sc.emit(string(buf), startLine)
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isBracket(b byte) bool {
	switch b {
	case '(', ')', '[', ']', '{', '}':
		return true
	}
	return false
}
