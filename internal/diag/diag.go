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

// Package diag is the diagnostics channel: three independent FIFO
// queues (warnings, errors, debug notes) that every pipeline stage
// appends to and the CLI drains at the end of a run. It is a pure
// domain value — it has nothing to do with the operational trace
// logging that internal/session emits through logrus.
package diag

import "fmt"

// Entry is one diagnostic line. Fatal marks an error severe enough
// that the stage producing it should stop processing the current
// file/target, though the run as a whole keeps going per spec's
// tolerant-stage policy.
type Entry struct {
	Message string
	Site    string
	Fatal   bool
}

func (e Entry) String() string {
	if e.Site == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Site, e.Message)
}

// Sink holds the three FIFO queues. The zero value is ready to use.
type Sink struct {
	warnings []Entry
	errors   []Entry
	debugs   []Entry
}

func New() *Sink {
	return &Sink{}
}

func (s *Sink) Warnf(site, format string, args ...any) {
	s.warnings = append(s.warnings, Entry{Message: fmt.Sprintf(format, args...), Site: site})
}

func (s *Sink) Errorf(site string, fatal bool, format string, args ...any) {
	s.errors = append(s.errors, Entry{Message: fmt.Sprintf(format, args...), Site: site, Fatal: fatal})
}

func (s *Sink) Debugf(site, format string, args ...any) {
	s.debugs = append(s.debugs, Entry{Message: fmt.Sprintf(format, args...), Site: site})
}

// PopWarning removes and returns the oldest warning, FIFO order.
func (s *Sink) PopWarning() (Entry, bool) { return pop(&s.warnings) }

// PopError removes and returns the oldest error, FIFO order.
func (s *Sink) PopError() (Entry, bool) { return pop(&s.errors) }

// PopDebug removes and returns the oldest debug note, FIFO order.
func (s *Sink) PopDebug() (Entry, bool) { return pop(&s.debugs) }

func pop(q *[]Entry) (Entry, bool) {
	if len(*q) == 0 {
		return Entry{}, false
	}
	e := (*q)[0]
	*q = (*q)[1:]
	return e, true
}

func (s *Sink) HasWarnings() bool { return len(s.warnings) > 0 }
func (s *Sink) HasErrors() bool   { return len(s.errors) > 0 }
func (s *Sink) HasDebugs() bool   { return len(s.debugs) > 0 }

// HasFatal reports whether any queued error is marked fatal.
func (s *Sink) HasFatal() bool {
	for _, e := range s.errors {
		if e.Fatal {
			return true
		}
	}
	return false
}

// Warnings, Errors, and Debugs return a snapshot copy of the current
// queue contents without draining them, for the dump file and tests.
func (s *Sink) Warnings() []Entry { return append([]Entry(nil), s.warnings...) }
func (s *Sink) Errors() []Entry   { return append([]Entry(nil), s.errors...) }
func (s *Sink) Debugs() []Entry   { return append([]Entry(nil), s.debugs...) }

// ExitCode implements spec.md §7's rule: zero iff no errors were
// ever queued, regardless of warnings or debug notes.
func (s *Sink) ExitCode() int {
	if len(s.errors) > 0 {
		return 1
	}
	return 0
}

// Drain writes every queued diagnostic to w in the envelope format
// from spec.md §6 ("[WARNING]: msg", "[ERROR]: msg", "[DEBUG]: msg"),
// debug first, then warnings, then errors, and empties all three
// queues as it goes.
func (s *Sink) Drain(w func(string)) {
	for e, ok := s.PopDebug(); ok; e, ok = s.PopDebug() {
		w(fmt.Sprintf("[DEBUG]: %s", e))
	}
	for e, ok := s.PopWarning(); ok; e, ok = s.PopWarning() {
		w(fmt.Sprintf("[WARNING]: %s", e))
	}
	for e, ok := s.PopError(); ok; e, ok = s.PopError() {
		w(fmt.Sprintf("[ERROR]: %s", e))
	}
}
