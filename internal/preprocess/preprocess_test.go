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

package preprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/karbysCantCode/computer/internal/diag"
	"github.com/karbysCantCode/computer/internal/manifest"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// S3 — macro block expansion.
func TestBlockMacroExpansion(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.spasm", "@define INC \\ ADI r1, 1 \\\nINC\nINC\n")

	tgt := manifest.NewTarget("t", dir)
	d := diag.New()
	tokens := Run(main, tgt, d)
	require.False(t, d.HasErrors())

	var vals []string
	for _, tk := range tokens {
		vals = append(vals, tk.Value)
	}
	require.Equal(t, []string{"ADI", "r1,", "1", "ADI", "r1,", "1"}, vals)
}

// S4 — include resolution via a target include directory; spliced
// tokens carry the included file's own provenance.
func TestIncludeResolutionViaIncludeDirectory(t *testing.T) {
	root := t.TempDir()
	incDir := filepath.Join(root, "inc")
	require.NoError(t, os.Mkdir(incDir, 0o755))
	helpers := writeFile(t, incDir, "helpers.spasm", "HALT\n")
	main := writeFile(t, root, "main.spasm", `@include "helpers"`+"\n")

	tgt := manifest.NewTarget("t", root)
	tgt.AddIncludeDirectory(incDir)
	d := diag.New()

	tokens := Run(main, tgt, d)
	require.False(t, d.HasErrors())
	require.Len(t, tokens, 1)
	require.Equal(t, "HALT", tokens[0].Value)
	require.Equal(t, helpers, tokens[0].Filepath)
}

func TestSelfIncludeCycleIsError(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.spasm", `@include "main"`+"\n")

	tgt := manifest.NewTarget("t", dir)
	d := diag.New()
	_ = Run(main, tgt, d)
	require.True(t, d.HasErrors())
}

func TestEntrySymbolRedefinitionIsError(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.spasm", "@entry start\n@entry other\n")

	tgt := manifest.NewTarget("t", dir)
	d := diag.New()
	_ = Run(main, tgt, d)
	require.True(t, d.HasErrors())
	require.Equal(t, "start", tgt.EntrySymbol)
}

// P7 — idempotence: no directives, no definitions, tokens pass
// through unchanged (dead flags stay false).
func TestIdempotenceWithNoDirectives(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.spasm", "start: ADI r1, 1\nHALT\n")

	tgt := manifest.NewTarget("t", dir)
	d := diag.New()
	tokens := Run(main, tgt, d)
	require.False(t, d.HasErrors())

	var vals []string
	for _, tk := range tokens {
		require.False(t, tk.Dead)
		vals = append(vals, tk.Value)
	}
	require.Equal(t, []string{"start:", "ADI", "r1,", "1", "HALT"}, vals)
}

func TestTargetDefinitionSubstitution(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.spasm", "ADI r1, SIZE\n")

	tgt := manifest.NewTarget("t", dir)
	require.NoError(t, tgt.AddDefinition("SIZE", "16"))
	d := diag.New()
	tokens := Run(main, tgt, d)
	require.False(t, d.HasErrors())

	require.Equal(t, "16", tokens[2].Value)
}
