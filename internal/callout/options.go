package callout

import (
	"fmt"
	"strings"
)

// Phrasing selects how the clock position is spoken.
type Phrasing int

const (
	// PhrasingClock speaks a single clip per hour ("three o'clock").
	PhrasingClock Phrasing = iota
	// PhrasingOClock speaks the bare number followed by an "o'clock" clip.
	PhrasingOClock
)

// String returns the configuration name of the phrasing.
func (p Phrasing) String() string {
	switch p {
	case PhrasingClock:
		return "clock"
	case PhrasingOClock:
		return "oclock"
	default:
		return fmt.Sprintf("Phrasing(%d)", int(p))
	}
}

// ParsePhrasing parses a configuration value.
func ParsePhrasing(s string) (Phrasing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clock":
		return PhrasingClock, nil
	case "oclock", "o'clock":
		return PhrasingOClock, nil
	default:
		return PhrasingClock, fmt.Errorf("unknown phrasing %q (want clock or oclock)", s)
	}
}

// Options controls callout wording.
type Options struct {
	UseAliases bool
	DorkMode   bool
	Phrasing   Phrasing
}

// DefaultOptions returns the default wording: aliases on, plain tone,
// one clip per clock hour.
func DefaultOptions() Options {
	return Options{
		UseAliases: true,
		Phrasing:   PhrasingClock,
	}
}
