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

package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func check(t *testing.T, a1 any, a2 any) {
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func TestFIFOOrder(t *testing.T) {
	s := New()
	s.Warnf("a:1", "first")
	s.Warnf("a:2", "second")
	e, ok := s.PopWarning()
	check(t, ok, true)
	check(t, e.Message, "first")
	e, ok = s.PopWarning()
	check(t, ok, true)
	check(t, e.Message, "second")
	_, ok = s.PopWarning()
	check(t, ok, false)
}

func TestExitCodeZeroIffNoErrors(t *testing.T) {
	s := New()
	s.Warnf("a:1", "just a warning")
	s.Debugf("a:1", "just a debug note")
	require.Equal(t, 0, s.ExitCode())

	s.Errorf("a:2", false, "non-fatal error")
	require.Equal(t, 1, s.ExitCode())
}

func TestHasFatal(t *testing.T) {
	s := New()
	s.Errorf("a:1", false, "recoverable")
	require.False(t, s.HasFatal())
	s.Errorf("a:2", true, "stop the stage")
	require.True(t, s.HasFatal())
}

func TestDrainEmptiesAllQueues(t *testing.T) {
	s := New()
	s.Debugf("a:1", "loaded isa")
	s.Warnf("a:2", "unused label")
	s.Errorf("a:3", false, "bad operand")

	var lines []string
	s.Drain(func(line string) { lines = append(lines, line) })

	require.Equal(t, []string{
		"[DEBUG]: a:1: loaded isa",
		"[WARNING]: a:2: unused label",
		"[ERROR]: a:3: bad operand",
	}, lines)
	require.False(t, s.HasWarnings())
	require.False(t, s.HasErrors())
	require.False(t, s.HasDebugs())
}
