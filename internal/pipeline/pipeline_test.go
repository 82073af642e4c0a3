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

package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/karbysCantCode/computer/internal/isa"
	"github.com/karbysCantCode/computer/internal/manifest"
	"github.com/karbysCantCode/computer/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testCSV = `INSTRUCTION_NAME,OPCODE,BITFLAGS,ARGUMENT_1_TYPE,ARGUMENT_1_RANGE,ARGUMENT_1_BIT_LENGTH,ARGUMENT_2_TYPE,ARGUMENT_2_RANGE,ARGUMENT_2_BIT_LENGTH
HALT,000,0,,,,,,
ADI,001,0,REGISTER,r0-r7,3,IMMEDIATE,-16:15,5
`

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	sess := session.New(t.TempDir(), io.Discard, logrus.ErrorLevel)
	reg, err := isa.Load(strings.NewReader(testCSV), "test.csv", sess.Diags)
	require.NoError(t, err)
	sess.Registry = reg
	return sess
}

func TestBuildTargetAcrossMultipleFilesInSortedOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.spasm"), []byte("HALT\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.spasm"), []byte("ADI r1, 2\n"), 0o644))

	tgt := manifest.NewTarget("t", dir)
	tgt.AddBuildFile(filepath.Join(dir, "b.spasm"))
	tgt.AddBuildFile(filepath.Join(dir, "a.spasm"))

	sess := newTestSession(t)
	result := BuildTarget(sess, tgt)
	require.False(t, sess.Diags.HasErrors())
	require.Len(t, result.Instructions, 2)
	// a.spasm sorts before b.spasm, so ADI is assembled first.
	require.Equal(t, "ADI", result.Instructions[0].Mnemonic)
	require.Equal(t, "HALT", result.Instructions[1].Mnemonic)
}

func TestBuildAllCoversEveryTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "m.manifest"), []byte(`.target A
.target B
`), 0o644))

	sess := newTestSession(t)
	it, err := manifest.ParseFile(filepath.Join(dir, "m.manifest"), sess.Diags)
	require.NoError(t, err)

	results := BuildAll(sess, it)
	require.Len(t, results, 2)
	_, hasA := results["A"]
	_, hasB := results["B"]
	require.True(t, hasA)
	require.True(t, hasB)
}
