package zone

import (
	"fmt"
	"strconv"
	"strings"
)

// Zone field names, used both as persistence key suffixes and as
// field selectors for Model.Set.
const (
	FieldActive     = "active"
	FieldBrightness = "brightness"
	FieldEffect     = "effect"
	FieldColors     = "colors"
	FieldSpeed      = "speed"
	FieldWaveDir    = "wave_dir"
)

// Fields lists the persisted fields in the order they are written.
var Fields = []string{FieldEffect, FieldActive, FieldBrightness, FieldColors, FieldSpeed, FieldWaveDir}

// DefaultEffect is the effect every zone starts with and falls back to.
const DefaultEffect = "spectrum"

// Defaults for a fresh zone.
const (
	DefaultBrightness = 75.0
	DefaultSpeed      = 1
	DefaultWaveDir    = 1
)

// State is the lighting state of one zone.
type State struct {
	Present    bool
	Active     bool
	Brightness float64
	Effect     string
	Colors     Palette
	Speed      int
	WaveDir    int
}

// DefaultState returns the state a zone has before anything is restored.
func DefaultState() State {
	return State{
		Active:     true,
		Brightness: DefaultBrightness,
		Effect:     DefaultEffect,
		Colors:     DefaultPalette,
		Speed:      DefaultSpeed,
		WaveDir:    DefaultWaveDir,
	}
}

// ParseBool accepts the boolean spellings of INI-style stores:
// 1/yes/true/on and 0/no/false/off, case-insensitively.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
