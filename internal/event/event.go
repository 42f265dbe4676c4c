package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/lumen-core/internal/zone"
)

// Kind classifies an event.
type Kind string

// Event kinds.
const (
	// KindEffect is broadcast after an effect is applied to a zone.
	KindEffect Kind = "effect"

	// KindBrightness is broadcast after a zone's brightness changes.
	KindBrightness Kind = "brightness"

	// KindBattery is broadcast when a battery poll crosses the low threshold.
	KindBattery Kind = "battery"

	// KindState is broadcast when a device is added or closed.
	KindState Kind = "state"
)

// Event is a notification from one device to its observers.
type Event struct {
	ID     string    `json:"id" cbor:"1,keyasint"`
	Kind   Kind      `json:"kind" cbor:"2,keyasint"`
	Source string    `json:"source" cbor:"3,keyasint"`
	Zone   zone.ID   `json:"zone,omitempty" cbor:"4,keyasint,omitempty"`
	Effect string    `json:"effect,omitempty" cbor:"5,keyasint,omitempty"`
	Args   []int     `json:"args,omitempty" cbor:"6,keyasint,omitempty"`
	Value  float64   `json:"value,omitempty" cbor:"7,keyasint,omitempty"`
	State  string    `json:"state,omitempty" cbor:"8,keyasint,omitempty"`
	Time   time.Time `json:"time" cbor:"9,keyasint"`
}

// NewEffect builds an effect event: the originating device, the zone,
// the effect name and the arguments it was applied with.
func NewEffect(source string, z zone.ID, effect string, args ...int) Event {
	return Event{
		ID:     uuid.NewString(),
		Kind:   KindEffect,
		Source: source,
		Zone:   z,
		Effect: effect,
		Args:   append([]int(nil), args...),
		Time:   time.Now().UTC(),
	}
}

// NewBrightness builds a brightness event.
func NewBrightness(source string, z zone.ID, brightness float64) Event {
	return Event{
		ID:     uuid.NewString(),
		Kind:   KindBrightness,
		Source: source,
		Zone:   z,
		Value:  brightness,
		Time:   time.Now().UTC(),
	}
}

// NewBattery builds a battery event carrying the charge percentage.
func NewBattery(source string, level float64, charging bool) Event {
	state := "discharging"
	if charging {
		state = "charging"
	}
	return Event{
		ID:     uuid.NewString(),
		Kind:   KindBattery,
		Source: source,
		Value:  level,
		State:  state,
		Time:   time.Now().UTC(),
	}
}

// NewState builds a lifecycle event.
func NewState(source, state string) Event {
	return Event{
		ID:     uuid.NewString(),
		Kind:   KindState,
		Source: source,
		State:  state,
		Time:   time.Now().UTC(),
	}
}
