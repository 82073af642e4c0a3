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

// Package session carries the explicit, threaded replacement for
// global mutable compiler state called for by Design Notes §9: one
// Session value holds the diagnostics sink, the working directory,
// and the loaded instruction-set registry, and is passed by reference
// into every stage instead of each stage reaching for package-level
// variables.
package session

import (
	"io"
	"os"

	"github.com/karbysCantCode/computer/internal/diag"
	"github.com/karbysCantCode/computer/internal/isa"
	"github.com/sirupsen/logrus"
)

// Session is the one piece of state every pipeline stage needs.
type Session struct {
	Diags            *diag.Sink
	WorkingDirectory string
	Registry         *isa.Registry
	Log              *logrus.Logger
}

// New builds a Session with a fresh diagnostics sink and a logrus
// logger writing to w at level. Registry is left nil; callers load it
// via LoadRegistry once the instruction-set CSV path is known.
func New(workingDirectory string, w io.Writer, level logrus.Level) *Session {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	return &Session{
		Diags:            diag.New(),
		WorkingDirectory: workingDirectory,
		Log:              logger,
	}
}

// LoadRegistry reads the instruction-set CSV at path and installs it
// as the session's Registry, tracing the load via the operational
// logger and pushing any row-level problems onto the diagnostics sink.
func (s *Session) LoadRegistry(path string) error {
	reg, err := isa.LoadFile(path, s.Diags)
	if err != nil {
		return err
	}
	s.Registry = reg
	s.Log.WithField("instructions", reg.Len()).Debugf("loaded instruction set from %s", path)
	return nil
}

// DrainDiagnostics writes every queued diagnostic to stdout-shaped w
// in spec.md §6's envelope, then returns the process exit code implied
// by whether any error was ever queued.
func (s *Session) DrainDiagnostics(w io.Writer) int {
	s.Diags.Drain(func(line string) {
		io.WriteString(w, line+"\n")
	})
	return s.Diags.ExitCode()
}

// Default constructs a Session rooted at the current working
// directory, logging at Info level to stderr.
func Default() (*Session, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return New(wd, os.Stderr, logrus.InfoLevel), nil
}
