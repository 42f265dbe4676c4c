package effect

import "errors"

// Domain errors for the effect package.
var (
	// ErrSetterNotFound is returned when a zone has no setter for an effect
	// (after falling back to spectrum).
	ErrSetterNotFound = errors.New("effect: setter not found")

	// ErrUnsupportedArity is returned when a setter takes an argument count
	// the dispatcher does not know how to fill.
	ErrUnsupportedArity = errors.New("effect: unsupported setter arity")

	// ErrUnhandledEffect is returned when a setter's arity is supported but
	// the effect is not one of the names that arity is filled for.
	ErrUnhandledEffect = errors.New("effect: unhandled effect for setter arity")

	// ErrManaged is returned for effects driven by a separate animation
	// manager. They are never re-applied by restore.
	ErrManaged = errors.New("effect: managed effect is not restored")

	// ErrArgumentCount is returned when a setter is called with the wrong
	// number of arguments.
	ErrArgumentCount = errors.New("effect: wrong argument count")

	// ErrArgumentRange is returned when a color argument is outside 0..255.
	ErrArgumentRange = errors.New("effect: argument out of range")
)
