package callout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgnsrekt/trafficcall/internal/audio"
)

// ErrSegmentMissing is returned when a segment needed for a callout was
// never loaded.
var ErrSegmentMissing = errors.New("segment not loaded")

// Voice is the set of clips a callout is assembled from.
type Voice struct {
	Traffic    *audio.Clip     // leading tone
	Bogey      *audio.Clip     // leading tone in dork mode
	ClockHours [12]*audio.Clip // ClockHours[h-1] speaks hour h
	Aliases    []*audio.Clip
	Low        *audio.Clip
	High       *audio.Clip
	Level      *audio.Clip
	OClock     *audio.Clip // spoken after the hour with PhrasingOClock
}

// Validate checks that every segment opts can call for is present.
func (v *Voice) Validate(opts Options) error {
	if v == nil {
		return fmt.Errorf("voice: %w", ErrSegmentMissing)
	}

	var missing []string
	need := func(name string, c *audio.Clip) {
		if c == nil {
			missing = append(missing, name)
		}
	}

	if opts.DorkMode {
		need("bogey", v.Bogey)
	} else {
		need("traffic", v.Traffic)
	}
	for i, c := range v.ClockHours {
		need(fmt.Sprintf("clock %d", i+1), c)
	}
	need("low", v.Low)
	need("high", v.High)
	need("level", v.Level)
	if opts.Phrasing == PhrasingOClock {
		need("oclock", v.OClock)
	}
	if opts.UseAliases {
		if len(v.Aliases) == 0 {
			missing = append(missing, "aliases")
		}
		for i, c := range v.Aliases {
			need(fmt.Sprintf("alias %d", i), c)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrSegmentMissing, strings.Join(missing, ", "))
	}
	return nil
}
