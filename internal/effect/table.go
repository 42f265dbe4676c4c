package effect

import (
	"sort"

	"github.com/nerrad567/lumen-core/internal/zone"
)

// Key identifies a setter by zone and effect name.
type Key struct {
	Zone   zone.ID
	Effect string
}

// Table maps (zone, effect) pairs to setters. It is the capability table
// a driver hands to a device at construction and is read-only afterwards.
type Table struct {
	setters map[Key]Setter
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{setters: make(map[Key]Setter)}
}

// Register adds or replaces the setter for effect on zone z.
func (t *Table) Register(z zone.ID, effect string, s Setter) {
	t.setters[Key{Zone: z, Effect: effect}] = s
}

// Lookup returns the setter for effect on zone z.
func (t *Table) Lookup(z zone.ID, effect string) (Setter, bool) {
	if t == nil {
		return Setter{}, false
	}
	s, ok := t.setters[Key{Zone: z, Effect: effect}]
	return s, ok && s.Valid()
}

// Effects returns the effect names registered for zone z, sorted.
func (t *Table) Effects(z zone.ID) []string {
	if t == nil {
		return nil
	}
	var out []string
	for k := range t.setters {
		if k.Zone == z {
			out = append(out, k.Effect)
		}
	}
	sort.Strings(out)
	return out
}

// Zones returns the zones with at least one setter, in canonical order.
func (t *Table) Zones() []zone.ID {
	if t == nil {
		return nil
	}
	seen := make(map[zone.ID]bool)
	for k := range t.setters {
		seen[k.Zone] = true
	}
	var out []zone.ID
	for _, z := range zone.All {
		if seen[z] {
			out = append(out, z)
		}
	}
	return out
}

// Len returns the number of registered setters.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.setters)
}
