package callout

import (
	"fmt"
	"sync/atomic"

	"github.com/dgnsrekt/trafficcall/internal/audio"
	"github.com/dgnsrekt/trafficcall/internal/traffic"
)

// Builder assembles callouts from a Voice. Build is meant to be called from
// a single goroutine; SetOptions may be called from any.
type Builder struct {
	voice   *Voice
	aliases *AliasTable
	opts    atomic.Pointer[Options]
}

// NewBuilder creates a builder speaking with voice.
func NewBuilder(voice *Voice, opts Options) *Builder {
	b := &Builder{
		voice:   voice,
		aliases: NewAliasTable(),
	}
	b.opts.Store(&opts)
	return b
}

// Options returns the current wording options.
func (b *Builder) Options() Options {
	return *b.opts.Load()
}

// SetOptions replaces the wording options for subsequent builds.
func (b *Builder) SetOptions(opts Options) {
	b.opts.Store(&opts)
}

// Aliases returns the builder's alias table.
func (b *Builder) Aliases() *AliasTable {
	return b.aliases
}

// Build returns the segments announcing alert, in speaking order:
// tone, alias (if enabled), clock position, then level, low or high.
// It fails with ErrSegmentMissing rather than leave a segment out.
func (b *Builder) Build(alert traffic.Alert) ([]*audio.Clip, error) {
	opts := b.Options()
	v := b.voice
	if v == nil {
		return nil, fmt.Errorf("voice: %w", ErrSegmentMissing)
	}

	tone, toneName := v.Traffic, "traffic"
	if opts.DorkMode {
		tone, toneName = v.Bogey, "bogey"
	}
	if tone == nil {
		return nil, missing(toneName)
	}

	hour := alert.ClockPosition()
	if hour < 1 || hour > len(v.ClockHours) {
		return nil, fmt.Errorf("clock position %d out of range", hour)
	}
	hourClip := v.ClockHours[hour-1]
	if hourClip == nil {
		return nil, missing(fmt.Sprintf("clock %d", hour))
	}

	vertical := alert.Vertical()
	var verticalClip *audio.Clip
	switch vertical {
	case traffic.Level:
		verticalClip = v.Level
	case traffic.Low:
		verticalClip = v.Low
	case traffic.High:
		verticalClip = v.High
	}
	if verticalClip == nil {
		return nil, missing(vertical.String())
	}

	if opts.Phrasing == PhrasingOClock && v.OClock == nil {
		return nil, missing("oclock")
	}
	if opts.UseAliases && len(v.Aliases) == 0 {
		return nil, missing("aliases")
	}

	seq := make([]*audio.Clip, 0, 5)
	seq = append(seq, tone)

	if opts.UseAliases {
		// Wraps once the pool is exhausted
		slot := b.aliases.Index(alert.ID()) % len(v.Aliases)
		alias := v.Aliases[slot]
		if alias == nil {
			return nil, missing(fmt.Sprintf("alias %d", slot))
		}
		seq = append(seq, alias)
	}

	seq = append(seq, hourClip)
	if opts.Phrasing == PhrasingOClock {
		seq = append(seq, v.OClock)
	}
	seq = append(seq, verticalClip)

	return seq, nil
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrSegmentMissing, name)
}
