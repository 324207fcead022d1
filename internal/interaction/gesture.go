// Package interaction turns user gestures into external forces on a fluid.
package interaction

import (
	"fmt"
	"strings"
)

// Intent is what a gesture asks the fluid to do.
type Intent int

const (
	None Intent = iota
	// Point pushes along the gesture direction.
	Point
	// Push is a strong Point.
	Push
	// Attract pulls particles toward the gesture position.
	Attract
	// Repel drives particles away from the gesture position.
	Repel
)

var intentNames = [...]string{"none", "point", "push", "attract", "repel"}

func (i Intent) String() string {
	if i < 0 || int(i) >= len(intentNames) {
		return fmt.Sprintf("Intent(%d)", int(i))
	}
	return intentNames[i]
}

// ParseIntent accepts an intent name in any case.
func ParseIntent(s string) (Intent, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range intentNames {
		if s == name {
			return Intent(i), nil
		}
	}
	return None, fmt.Errorf("interaction: unknown intent %q", s)
}

func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Intent) UnmarshalText(text []byte) error {
	v, err := ParseIntent(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// Multiplier scales the gesture strength.
func (i Intent) Multiplier() float64 {
	switch i {
	case Point:
		return 1
	case Push:
		return 2
	case Attract:
		return -0.5
	case Repel:
		return 1.5
	default:
		return 0
	}
}

// Radial reports whether the force acts along the line to the gesture
// position rather than along a fixed direction.
func (i Intent) Radial() bool {
	return i == Attract || i == Repel
}
