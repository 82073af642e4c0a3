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

package manifest

// lexer.go - the manifest's own small tokenizer (§4.5): directives,
// parens, braces, commas, identifiers, quoted strings, line and block
// comments. Distinct from internal/lexer (the source tokenizer) since
// the manifest dialect's lexeme set and its need for column tracking
// differ enough to not share a scanner.

import "fmt"

type mKind int

const (
	mDirective mKind = iota
	mIdentifier
	mString
	mLParen
	mRParen
	mLBrace
	mRBrace
	mComma
	mEOF
)

type mtoken struct {
	Kind  mKind
	Value string
	Line  int
	Col   int
}

func (t mtoken) site() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Col)
}

func isReserved(b byte) bool {
	switch b {
	case '(', ')', '{', '}', ',', '"', ';':
		return true
	}
	return false
}

func isManifestWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

type mscanner struct {
	src  []byte
	pos  int
	line int
	col  int
}

func tokenizeManifest(src []byte) []mtoken {
	sc := &mscanner{src: src, line: 1, col: 1}
	var out []mtoken
	for {
		tok, ok := sc.next()
		if !ok {
			break
		}
		out = append(out, tok)
	}
	out = append(out, mtoken{Kind: mEOF, Line: sc.line, Col: sc.col})
	return out
}

func (sc *mscanner) peekByte() (byte, bool) {
	if sc.pos >= len(sc.src) {
		return 0, false
	}
	return sc.src[sc.pos], true
}

func (sc *mscanner) advance() (byte, bool) {
	b, ok := sc.peekByte()
	if !ok {
		return 0, false
	}
	sc.pos++
	if b == '\n' {
		sc.line++
		sc.col = 1
	} else {
		sc.col++
	}
	return b, true
}

// next returns the next token, or ok=false at end of input.
func (sc *mscanner) next() (mtoken, bool) {
	for {
		b, ok := sc.peekByte()
		if !ok {
			return mtoken{}, false
		}
		if isManifestWhitespace(b) {
			sc.advance()
			continue
		}
		if b == ';' {
			sc.consumeComment()
			continue
		}
		break
	}

	startLine, startCol := sc.line, sc.col
	b, _ := sc.advance()

	switch b {
	case '(':
		return mtoken{Kind: mLParen, Value: "(", Line: startLine, Col: startCol}, true
	case ')':
		return mtoken{Kind: mRParen, Value: ")", Line: startLine, Col: startCol}, true
	case '{':
		return mtoken{Kind: mLBrace, Value: "{", Line: startLine, Col: startCol}, true
	case '}':
		return mtoken{Kind: mRBrace, Value: "}", Line: startLine, Col: startCol}, true
	case ',':
		return mtoken{Kind: mComma, Value: ",", Line: startLine, Col: startCol}, true
	case '"':
		return sc.scanString(startLine, startCol), true
	case '.':
		return sc.scanDirective(startLine, startCol), true
	default:
		return sc.scanIdentifier(b, startLine, startCol), true
	}
}

// consumeComment discards "; ... \n" or ";* ... *;" (greedy,
// non-nesting, matching the source tokenizer's §4.3 rule).
func (sc *mscanner) consumeComment() {
	sc.advance() // the ';'
	if b, ok := sc.peekByte(); ok && b == '*' {
		sc.advance()
		var prev byte
		havePrev := false
		for {
			b, ok := sc.advance()
			if !ok {
				return
			}
			if havePrev && prev == '*' && b == ';' {
				return
			}
			prev = b
			havePrev = true
		}
	}
	for {
		b, ok := sc.peekByte()
		if !ok || b == '\n' {
			return
		}
		sc.advance()
	}
}

func (sc *mscanner) scanString(line, col int) mtoken {
	var buf []byte
	for {
		b, ok := sc.advance()
		if !ok || b == '\n' {
			return mtoken{Kind: mString, Value: string(buf), Line: line, Col: col}
		}
		if b == '"' {
			return mtoken{Kind: mString, Value: string(buf), Line: line, Col: col}
		}
		if b == '\\' {
			if nb, ok := sc.peekByte(); ok && nb == '"' {
				sc.advance()
				buf = append(buf, '"')
				continue
			}
		}
		buf = append(buf, b)
	}
}

func (sc *mscanner) scanDirective(line, col int) mtoken {
	var buf []byte
	for {
		b, ok := sc.peekByte()
		if !ok || isManifestWhitespace(b) || isReserved(b) || b == '.' {
			break
		}
		sc.advance()
		buf = append(buf, b)
	}
	return mtoken{Kind: mDirective, Value: string(buf), Line: line, Col: col}
}

func (sc *mscanner) scanIdentifier(first byte, line, col int) mtoken {
	buf := []byte{first}
	for {
		b, ok := sc.peekByte()
		if !ok || isManifestWhitespace(b) || isReserved(b) {
			break
		}
		sc.advance()
		buf = append(buf, b)
	}
	return mtoken{Kind: mIdentifier, Value: string(buf), Line: line, Col: col}
}
