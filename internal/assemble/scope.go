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

package assemble

import "github.com/pkg/errors"

// ScopeHandle indexes a scope record in an Arena. Per Design Notes §9,
// the label tree is an arena of handles rather than parent pointers,
// so scopes can be walked and serialized without worrying about
// ownership cycles.
type ScopeHandle int

// NoScope is the handle of a label's absent parent (the file's
// top-level, unnamed scope has no parent of its own).
const NoScope ScopeHandle = -1

type scope struct {
	name    string
	parent  ScopeHandle
	site    string
	address uint16 // unresolved until a later pass; 0 here
	names   map[string]string // name -> definition site, variables and child labels share this namespace
}

// Arena owns every scope created during one target's assembly. Handle
// 0 is always the file's top-level scope (no name, no parent).
type Arena struct {
	scopes []scope
}

// NewArena creates an arena seeded with the top-level scope and
// returns it along with that scope's handle.
func NewArena() (*Arena, ScopeHandle) {
	a := &Arena{scopes: []scope{{parent: NoScope, names: map[string]string{}}}}
	return a, ScopeHandle(0)
}

// NewScope creates a child scope named name under parent, after
// checking name doesn't collide with anything visible from parent's
// chain (§4.6 item 1: "collision reports both definition sites").
func (a *Arena) NewScope(parent ScopeHandle, name, site string) (ScopeHandle, error) {
	if existingSite, ok := a.lookupSite(parent, name); ok {
		return NoScope, errors.Errorf("label %q already defined at %s (redefinition at %s)", name, existingSite, site)
	}
	h := ScopeHandle(len(a.scopes))
	a.scopes = append(a.scopes, scope{name: name, parent: parent, site: site, names: map[string]string{}})
	a.scopes[parent].names[name] = site
	return h, nil
}

// DefineName reserves name in scope h, after the same chain-collision
// check NewScope performs. Used for variables.
func (a *Arena) DefineName(h ScopeHandle, name, site string) error {
	if existingSite, ok := a.lookupSite(h, name); ok {
		return errors.Errorf("%q already defined at %s (redefinition at %s)", name, existingSite, site)
	}
	a.scopes[h].names[name] = site
	return nil
}

// lookupSite walks the chain from h upward looking for name, returning
// the site it was defined at and whether it was found (P4: "a lookup
// N in scope S yields the nearest ancestor scope defining N").
func (a *Arena) lookupSite(h ScopeHandle, name string) (string, bool) {
	for cur := h; cur != NoScope; cur = a.scopes[cur].parent {
		if site, ok := a.scopes[cur].names[name]; ok {
			return site, true
		}
	}
	return "", false
}

// Lookup reports whether name is visible from scope h.
func (a *Arena) Lookup(h ScopeHandle, name string) bool {
	_, ok := a.lookupSite(h, name)
	return ok
}

// Name returns the scope's own name ("" for the top-level scope).
func (a *Arena) Name(h ScopeHandle) string { return a.scopes[h].name }

// Parent returns the scope's parent handle.
func (a *Arena) Parent(h ScopeHandle) ScopeHandle { return a.scopes[h].parent }
