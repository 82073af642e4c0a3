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

// pbr.go - a byte reader that supports pushing back exactly one byte,
// the input abstraction the tokenizer scans with. UnreadByte never
// panics: a second pushback simply replaces the pending byte, since the
// tokenizer here recovers from errors rather than aborting.

import (
	"bufio"
	"io"
	"os"
	"strings"
)

type pushbackByteReader struct {
	br      io.ByteReader
	pending byte
	hasPending bool
	closer  io.Closer
}

func newFileReader(path string) (*pushbackByteReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &pushbackByteReader{br: bufio.NewReader(f), closer: f}, nil
}

func newStringReader(body string) *pushbackByteReader {
	return &pushbackByteReader{br: strings.NewReader(body)}
}

func (p *pushbackByteReader) ReadByte() (byte, error) {
	if p.hasPending {
		p.hasPending = false
		return p.pending, nil
	}
	return p.br.ReadByte()
}

func (p *pushbackByteReader) UnreadByte(b byte) {
	p.pending = b
	p.hasPending = true
}

func (p *pushbackByteReader) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}
