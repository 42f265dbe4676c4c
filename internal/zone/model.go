package zone

import (
	"fmt"
	"strconv"
	"strings"
)

// Logger defines the logging interface used by the zone model.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Reader is the read side of a persistence store.
type Reader interface {
	HasSection(section string) bool
	Get(section, key string) (string, bool)
}

// Writer is the write side of a persistence store.
type Writer interface {
	Set(section, key, value string)
}

// Model holds the state of every zone of one device.
//
// Zone presence is fixed at construction. Model is not safe for
// concurrent use; the owning device serializes access.
type Model struct {
	zones  map[ID]*State
	logger Logger
}

// NewModel creates a model in which the given zones are present and every
// zone holds default state.
func NewModel(present []ID) *Model {
	m := &Model{
		zones:  make(map[ID]*State, len(All)),
		logger: noopLogger{},
	}
	for _, id := range All {
		st := DefaultState()
		m.zones[id] = &st
	}
	for _, id := range present {
		if st, ok := m.zones[id]; ok {
			st.Present = true
		}
	}
	return m
}

// SetLogger sets the logger used to report restore fallbacks.
func (m *Model) SetLogger(logger Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Present returns the present zones in canonical order.
func (m *Model) Present() []ID {
	var out []ID
	for _, id := range All {
		if m.zones[id].Present {
			out = append(out, id)
		}
	}
	return out
}

// IsPresent reports whether the device has the zone.
func (m *Model) IsPresent(id ID) bool {
	st, ok := m.zones[id]
	return ok && st.Present
}

// State returns a copy of the zone's state.
func (m *Model) State(id ID) (State, error) {
	st, ok := m.zones[id]
	if !ok {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownZone, id)
	}
	return *st, nil
}

// Set assigns one field of a zone and reports whether the stored value
// changed. Values must have the field's type: bool for active, float64
// (or int) for brightness, string for effect, Palette or a nine-element
// []int for colors, int for speed and wave_dir.
func (m *Model) Set(id ID, field string, value any) (bool, error) {
	st, ok := m.zones[id]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownZone, id)
	}

	switch field {
	case FieldActive:
		v, ok := value.(bool)
		if !ok {
			return false, invalid(field, value)
		}
		changed := st.Active != v
		st.Active = v
		return changed, nil

	case FieldBrightness:
		var v float64
		switch b := value.(type) {
		case float64:
			v = b
		case int:
			v = float64(b)
		default:
			return false, invalid(field, value)
		}
		changed := st.Brightness != v
		st.Brightness = v
		return changed, nil

	case FieldEffect:
		v, ok := value.(string)
		if !ok || v == "" {
			return false, invalid(field, value)
		}
		changed := st.Effect != v
		st.Effect = v
		return changed, nil

	case FieldColors:
		var p Palette
		switch c := value.(type) {
		case Palette:
			p = c
		case []int:
			var err error
			if p, err = PaletteFromInts(c); err != nil {
				return false, err
			}
		default:
			return false, invalid(field, value)
		}
		changed := st.Colors != p
		st.Colors = p
		return changed, nil

	case FieldSpeed, FieldWaveDir:
		v, ok := value.(int)
		if !ok {
			return false, invalid(field, value)
		}
		target := &st.Speed
		if field == FieldWaveDir {
			target = &st.WaveDir
		}
		changed := *target != v
		*target = v
		return changed, nil
	}

	return false, fmt.Errorf("%w: %q", ErrUnknownField, field)
}

func invalid(field string, value any) error {
	return fmt.Errorf("%w: %s cannot be %T(%v)", ErrInvalidValue, field, value, value)
}

// Load reads the stored fields of every present zone from section.
// Missing keys keep their defaults. Values that fail to parse fall back
// to the default for that field alone; the return value counts them.
// A missing section leaves every zone at its defaults.
func (m *Model) Load(r Reader, section string) int {
	if !r.HasSection(section) {
		return 0
	}

	defaulted := 0
	for _, id := range m.Present() {
		st := m.zones[id]
		def := DefaultState()

		for _, field := range Fields {
			raw, ok := r.Get(section, id.Key(field))
			if !ok {
				m.logger.Info("persisted field missing, using default", "section", section, "key", id.Key(field))
				continue
			}
			if err := st.apply(field, raw, def); err != nil {
				defaulted++
				m.logger.Warn("persisted field invalid, using default",
					"section", section, "key", id.Key(field), "value", raw, "error", err)
			}
		}
	}
	return defaulted
}

// apply parses raw into field, resetting the field to def on failure.
func (st *State) apply(field, raw string, def State) error {
	switch field {
	case FieldEffect:
		if raw == "" {
			st.Effect = def.Effect
			return fmt.Errorf("%w: empty effect", ErrInvalidValue)
		}
		st.Effect = raw
	case FieldActive:
		v, err := ParseBool(raw)
		if err != nil {
			st.Active = def.Active
			return err
		}
		st.Active = v
	case FieldBrightness:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			st.Brightness = def.Brightness
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		st.Brightness = v
	case FieldColors:
		p, err := ParsePalette(raw)
		if err != nil {
			st.Colors = def.Colors
			return err
		}
		st.Colors = p
	case FieldSpeed:
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			st.Speed = def.Speed
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		st.Speed = v
	case FieldWaveDir:
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			st.WaveDir = def.WaveDir
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		st.WaveDir = v
	}
	return nil
}

// Save writes every field of every present zone into section.
func (m *Model) Save(w Writer, section string) {
	for _, id := range m.Present() {
		st := m.zones[id]
		w.Set(section, id.Key(FieldEffect), st.Effect)
		w.Set(section, id.Key(FieldActive), strconv.FormatBool(st.Active))
		w.Set(section, id.Key(FieldBrightness), formatFloat(st.Brightness))
		w.Set(section, id.Key(FieldColors), st.Colors.String())
		w.Set(section, id.Key(FieldSpeed), strconv.Itoa(st.Speed))
		w.Set(section, id.Key(FieldWaveDir), strconv.Itoa(st.WaveDir))
	}
}
