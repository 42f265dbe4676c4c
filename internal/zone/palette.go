package zone

import (
	"fmt"
	"strconv"
	"strings"
)

// PaletteLen is the number of channel values in a palette: three RGB triples.
const PaletteLen = 9

// Palette holds up to three RGB colors as nine channel values.
type Palette [PaletteLen]uint8

// DefaultPalette is green, cyan and blue.
var DefaultPalette = Palette{0, 255, 0, 0, 255, 255, 0, 0, 255}

// ParsePalette parses the persisted form: exactly nine space-separated
// integers in 0..255.
func ParsePalette(s string) (Palette, error) {
	var p Palette
	fields := strings.Split(s, " ")
	if len(fields) != PaletteLen {
		return p, fmt.Errorf("%w: %d values, want %d", ErrInvalidPalette, len(fields), PaletteLen)
	}
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Palette{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidPalette, f)
		}
		if v < 0 || v > 255 {
			return Palette{}, fmt.Errorf("%w: %d out of range", ErrInvalidPalette, v)
		}
		p[i] = uint8(v)
	}
	return p, nil
}

// PaletteFromInts builds a palette from exactly nine channel values.
func PaletteFromInts(values []int) (Palette, error) {
	var p Palette
	if len(values) != PaletteLen {
		return p, fmt.Errorf("%w: %d values, want %d", ErrInvalidPalette, len(values), PaletteLen)
	}
	for i, v := range values {
		if v < 0 || v > 255 {
			return Palette{}, fmt.Errorf("%w: %d out of range", ErrInvalidPalette, v)
		}
		p[i] = uint8(v)
	}
	return p, nil
}

// String returns the persisted form.
func (p Palette) String() string {
	parts := make([]string, PaletteLen)
	for i, v := range p {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, " ")
}

// Bytes returns the nine channel values as raw bytes.
func (p Palette) Bytes() []byte {
	b := make([]byte, PaletteLen)
	copy(b, p[:])
	return b
}

// Ints returns the first n channel values as ints.
func (p Palette) Ints(n int) []int {
	if n > PaletteLen {
		n = PaletteLen
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = int(p[i])
	}
	return out
}
