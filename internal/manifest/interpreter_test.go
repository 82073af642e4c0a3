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

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/karbysCantCode/computer/internal/diag"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) (string, *diag.Sink) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "build.manifest")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path, diag.New()
}

// S5 — dependency cycle detection.
func TestDependencyCycleIsError(t *testing.T) {
	path, d := writeManifest(t, `.target A
.target B
.depends (A, "B")
.depends (B, "A")
`)
	it, err := ParseFile(path, d)
	require.NoError(t, err)
	require.True(t, d.HasErrors())
	require.Len(t, d.Errors(), 1)

	a, ok := it.Target("A")
	require.True(t, ok)
	require.Equal(t, []string{"B"}, a.Dependencies)

	b, ok := it.Target("B")
	require.True(t, ok)
	require.Empty(t, b.Dependencies)
}

func TestRepeatedDependencyIsWarning(t *testing.T) {
	path, d := writeManifest(t, `.target A
.target B
.depends (A, "B")
.depends (A, "B")
`)
	_, err := ParseFile(path, d)
	require.NoError(t, err)
	require.False(t, d.HasErrors())
	require.True(t, d.HasWarnings())
}

func TestCrossNamespaceCollisionIsError(t *testing.T) {
	path, d := writeManifest(t, `.target A
.label A
`)
	_, err := ParseFile(path, d)
	require.NoError(t, err)
	require.True(t, d.HasErrors())
}

func TestLabelRedeclarationWarnsUnlessStrict(t *testing.T) {
	path, d := writeManifest(t, `.label A
.label A
`)
	_, err := ParseFile(path, d)
	require.NoError(t, err)
	require.False(t, d.HasErrors())
	require.True(t, d.HasWarnings())
}

func TestIfdefExecutesBodyWhenLabelDefined(t *testing.T) {
	path, d := writeManifest(t, `.label DEBUG
.ifdef DEBUG {
  .target A
}
.ifndef DEBUG {
  .target B
}
`)
	it, err := ParseFile(path, d)
	require.NoError(t, err)
	require.False(t, d.HasErrors())
	_, hasA := it.Target("A")
	_, hasB := it.Target("B")
	require.True(t, hasA)
	require.False(t, hasB)
}

func TestSearchSetReplacesSearchAddUnions(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.spasm"), []byte("HALT\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.spasm"), []byte("HALT\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.txt"), []byte("x"), 0o644))

	path := filepath.Join(root, "build.manifest")
	body := `.flist SRC
.search_set (SRC, shallow, ".spasm", "` + root + `")
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	d := diag.New()
	it, err := ParseFile(path, d)
	require.NoError(t, err)
	require.False(t, d.HasErrors())

	fl, ok := it.fileLists["SRC"]
	require.True(t, ok)
	require.Len(t, fl.Files(), 2)
}

func TestAddTargetAcceptsFileAndFlist(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.spasm"), []byte("HALT\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.spasm"), []byte("HALT\n"), 0o644))

	path := filepath.Join(root, "build.manifest")
	body := `.target T
.flist SRC
.search_set (SRC, shallow, ".spasm", "` + root + `")
.add_target (T, SRC)
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	d := diag.New()
	it, err := ParseFile(path, d)
	require.NoError(t, err)
	require.False(t, d.HasErrors())

	tgt, ok := it.Target("T")
	require.True(t, ok)
	require.Len(t, tgt.BuildFiles(), 2)
}

func TestVerifyTargetReportsMissingEssentials(t *testing.T) {
	path, d := writeManifest(t, `.target T
`)
	it, err := ParseFile(path, d)
	require.NoError(t, err)
	it.VerifyTarget("T")
	require.True(t, d.HasErrors())
	require.GreaterOrEqual(t, len(d.Errors()), 3)
}

func TestDumpProducesSections(t *testing.T) {
	path, d := writeManifest(t, `.target T
.label L
.flist F
`)
	it, err := ParseFile(path, d)
	require.NoError(t, err)
	out := it.Dump()
	require.Contains(t, out, "Labels:")
	require.Contains(t, out, "File lists:")
	require.Contains(t, out, "Targets:")
	require.Contains(t, out, "  L\n")
	require.Contains(t, out, "  F:")
	require.Contains(t, out, "  T:")
}
