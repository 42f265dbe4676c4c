package effect

import (
	"fmt"

	"github.com/nerrad567/lumen-core/internal/zone"
)

// Args builds the argument list for a setter of the given arity from a
// zone's stored state.
//
// Colors fill the 3, 6 and 9 argument forms. A single argument is the
// speed for starlightRandom and the direction for wave and wheel. The 4
// and 7 argument forms append the speed to one or two colors. Ripple
// effects return ErrManaged.
func Args(effect string, arity int, st zone.State) ([]int, error) {
	colors := st.Colors.Ints(zone.PaletteLen)

	switch arity {
	case 0:
		return nil, nil
	case 1:
		switch effect {
		case StarlightRandom:
			return []int{st.Speed}, nil
		case Wave, Wheel:
			return []int{st.WaveDir}, nil
		case RippleRandomColour:
			return nil, fmt.Errorf("%w: %s", ErrManaged, effect)
		}
		return nil, fmt.Errorf("%w: %s with 1 argument", ErrUnhandledEffect, effect)
	case 3:
		return colors[:3], nil
	case 4:
		switch effect {
		case StarlightSingle, Reactive:
			return append(colors[:3:3], st.Speed), nil
		case Ripple:
			return nil, fmt.Errorf("%w: %s", ErrManaged, effect)
		}
		return nil, fmt.Errorf("%w: %s with 4 arguments", ErrUnhandledEffect, effect)
	case 6:
		return colors[:6], nil
	case 7:
		return append(colors[:6:6], st.Speed), nil
	case 9:
		return colors, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedArity, arity)
}

// Update is one zone field change produced by applying an effect.
type Update struct {
	Field string
	Value any
}

// Updates is the inverse of Args: it maps the arguments an effect was
// applied with back onto the zone fields they came from. The first
// update is always the effect name. Colors replace the leading channels
// of current and leave the rest untouched.
func Updates(effect string, args []int, current zone.Palette) ([]Update, error) {
	out := []Update{{Field: zone.FieldEffect, Value: effect}}

	withColors := func(n int) ([]Update, error) {
		p := current
		for i := 0; i < n; i++ {
			if args[i] < 0 || args[i] > 255 {
				return nil, fmt.Errorf("%w: channel %d is %d", ErrArgumentRange, i, args[i])
			}
			p[i] = uint8(args[i])
		}
		return append(out, Update{Field: zone.FieldColors, Value: p}), nil
	}

	switch len(args) {
	case 0:
		return out, nil
	case 1:
		switch effect {
		case StarlightRandom:
			return append(out, Update{Field: zone.FieldSpeed, Value: args[0]}), nil
		case Wave, Wheel:
			return append(out, Update{Field: zone.FieldWaveDir, Value: args[0]}), nil
		case RippleRandomColour:
			return out, nil
		}
		return nil, fmt.Errorf("%w: %s with 1 argument", ErrUnhandledEffect, effect)
	case 3, 6, 9:
		return withColors(len(args))
	case 4:
		switch effect {
		case StarlightSingle, Reactive:
			u, err := withColors(3)
			if err != nil {
				return nil, err
			}
			return append(u, Update{Field: zone.FieldSpeed, Value: args[3]}), nil
		case Ripple:
			return withColors(3)
		}
		return nil, fmt.Errorf("%w: %s with 4 arguments", ErrUnhandledEffect, effect)
	case 7:
		u, err := withColors(6)
		if err != nil {
			return nil, err
		}
		return append(u, Update{Field: zone.FieldSpeed, Value: args[6]}), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedArity, len(args))
}
