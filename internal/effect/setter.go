package effect

import "fmt"

// Func is the uniform signature every setter is reduced to.
type Func func(args ...int) error

// Setter is a device capability that applies one effect to one zone.
// Its arity is fixed when it is built.
type Setter struct {
	arity int
	fn    Func
}

// NewSetter wraps fn as a setter taking exactly arity arguments.
func NewSetter(arity int, fn Func) Setter {
	return Setter{arity: arity, fn: fn}
}

// Setter0 builds a setter that takes no arguments.
func Setter0(fn func() error) Setter {
	return NewSetter(0, func(...int) error { return fn() })
}

// Setter1 builds a setter that takes one value (speed or direction).
func Setter1(fn func(v int) error) Setter {
	return NewSetter(1, func(a ...int) error { return fn(a[0]) })
}

// Setter3 builds a setter that takes one RGB color.
func Setter3(fn func(r, g, b uint8) error) Setter {
	return NewSetter(3, func(a ...int) error {
		c, err := channels(a)
		if err != nil {
			return err
		}
		return fn(c[0], c[1], c[2])
	})
}

// Setter4 builds a setter that takes one RGB color and a speed.
func Setter4(fn func(r, g, b uint8, speed int) error) Setter {
	return NewSetter(4, func(a ...int) error {
		c, err := channels(a[:3])
		if err != nil {
			return err
		}
		return fn(c[0], c[1], c[2], a[3])
	})
}

// Setter6 builds a setter that takes two RGB colors.
func Setter6(fn func(r1, g1, b1, r2, g2, b2 uint8) error) Setter {
	return NewSetter(6, func(a ...int) error {
		c, err := channels(a)
		if err != nil {
			return err
		}
		return fn(c[0], c[1], c[2], c[3], c[4], c[5])
	})
}

// Setter7 builds a setter that takes two RGB colors and a speed.
func Setter7(fn func(r1, g1, b1, r2, g2, b2 uint8, speed int) error) Setter {
	return NewSetter(7, func(a ...int) error {
		c, err := channels(a[:6])
		if err != nil {
			return err
		}
		return fn(c[0], c[1], c[2], c[3], c[4], c[5], a[6])
	})
}

// Setter9 builds a setter that takes three RGB colors.
func Setter9(fn func(c [9]uint8) error) Setter {
	return NewSetter(9, func(a ...int) error {
		c, err := channels(a)
		if err != nil {
			return err
		}
		var p [9]uint8
		copy(p[:], c)
		return fn(p)
	})
}

// Arity returns the number of arguments the setter takes.
func (s Setter) Arity() int {
	return s.arity
}

// Valid reports whether the setter has a function behind it.
func (s Setter) Valid() bool {
	return s.fn != nil
}

// Call invokes the setter after checking the argument count.
func (s Setter) Call(args ...int) error {
	if s.fn == nil {
		return ErrSetterNotFound
	}
	if len(args) != s.arity {
		return fmt.Errorf("%w: got %d, want %d", ErrArgumentCount, len(args), s.arity)
	}
	return s.fn(args...)
}

func channels(a []int) ([]uint8, error) {
	out := make([]uint8, len(a))
	for i, v := range a {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: channel %d is %d", ErrArgumentRange, i, v)
		}
		out[i] = uint8(v)
	}
	return out, nil
}
