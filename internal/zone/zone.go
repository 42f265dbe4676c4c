package zone

import (
	"fmt"
	"strings"
)

// ID names a physically distinct lighting region of a device.
type ID string

// Known lighting zones.
const (
	Backlight    ID = "backlight"
	Logo         ID = "logo"
	Scroll       ID = "scroll"
	Left         ID = "left"
	Right        ID = "right"
	Charging     ID = "charging"
	FastCharging ID = "fast_charging"
	FullyCharged ID = "fully_charged"
	Channel1     ID = "channel1"
	Channel2     ID = "channel2"
	Channel3     ID = "channel3"
	Channel4     ID = "channel4"
	Channel5     ID = "channel5"
	Channel6     ID = "channel6"
)

// All lists every zone in canonical order. Restore and persistence walk
// zones in this order.
var All = []ID{
	Backlight, Logo, Scroll, Left, Right,
	Charging, FastCharging, FullyCharged,
	Channel1, Channel2, Channel3, Channel4, Channel5, Channel6,
}

// Valid reports whether id is one of the known zones.
func (id ID) Valid() bool {
	for _, z := range All {
		if z == id {
			return true
		}
	}
	return false
}

// Parse converts a zone name into an ID.
func Parse(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownZone, s)
	}
	return id, nil
}

// Prefix returns the camel-cased form used when composing capability
// names: "" for the backlight, "Logo" for logo, "FastCharging" for
// fast_charging.
func (id ID) Prefix() string {
	if id == Backlight {
		return ""
	}
	return Camel(string(id))
}

// Camel upper-cases the first letter and removes underscores, capitalizing
// the letter that followed each one.
func Camel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := true
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}

// Key returns the persistence key for a field of this zone, e.g.
// "logo_effect".
func (id ID) Key(field string) string {
	return string(id) + "_" + field
}
