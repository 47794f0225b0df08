package segments

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/trafficcall/internal/audio"
	"github.com/dgnsrekt/trafficcall/internal/cache"
	"github.com/dgnsrekt/trafficcall/internal/callout"
)

// clockNames are the segment names of the twelve clock hours.
var clockNames = [12]string{
	"one", "two", "three", "four", "five", "six",
	"seven", "eight", "nine", "ten", "eleven", "twelve",
}

// Loader decodes manifest files into clips in the output device format.
type Loader struct {
	SampleRate int
	Channels   int

	// Cache, if set, holds decoded PCM between runs
	Cache cache.Cache

	loaded int
	bytes  uint64
	hits   int
}

// NewLoader creates a loader for the given output format.
func NewLoader(sampleRate, channels int, c cache.Cache) *Loader {
	return &Loader{SampleRate: sampleRate, Channels: channels, Cache: c}
}

// Load decodes every file named in m. Segments the manifest leaves out stay
// nil in the voice.
func (l *Loader) Load(m *Manifest) (*callout.Voice, error) {
	start := time.Now()
	v := &callout.Voice{}

	var err error
	load := func(name, file string) *audio.Clip {
		if err != nil || file == "" {
			return nil
		}
		var c *audio.Clip
		c, err = l.LoadClip(name, m.resolve(file))
		return c
	}

	v.Traffic = load("traffic", m.Traffic)
	v.Bogey = load("bogey", m.Bogey)
	for i, file := range m.Clock {
		v.ClockHours[i] = load(clockNames[i], file)
	}
	v.OClock = load("oclock", m.OClock)
	for i, file := range m.Aliases {
		v.Aliases = append(v.Aliases, load(fmt.Sprintf("alias-%d", i), file))
	}
	v.Low = load("low", m.Low)
	v.High = load("high", m.High)
	v.Level = load("level", m.Level)

	if err != nil {
		return nil, err
	}

	log.Info("Voice loaded",
		"name", m.Name,
		"segments", l.loaded,
		"size", humanize.Bytes(l.bytes),
		"cached", l.hits,
		"took", time.Since(start).Round(time.Millisecond))
	return v, nil
}

// LoadClip decodes one file, going through the cache when there is one.
func (l *Loader) LoadClip(name, path string) (*audio.Clip, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", name, err)
	}

	key := cache.ClipKey{
		Path:       path,
		Size:       fi.Size(),
		ModTime:    fi.ModTime(),
		SampleRate: l.SampleRate,
		Channels:   l.Channels,
	}.String()

	var clip *audio.Clip
	hit := false
	if l.Cache != nil {
		if pcm, ok := l.Cache.Get(key); ok {
			clip, err = audio.NewPCMClip(name, pcm, l.SampleRate, l.Channels)
			hit = err == nil
		}
	}

	if !hit {
		clip, err = audio.LoadClip(path, name, l.SampleRate, l.Channels)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", name, err)
		}
		if l.Cache != nil {
			if err := l.Cache.Put(key, clip.PCM); err != nil {
				log.Warn("Cannot cache segment", "segment", name, "err", err)
			}
		}
	}

	l.loaded++
	l.bytes += uint64(len(clip.PCM))
	if hit {
		l.hits++
	}

	log.Debug("Segment loaded",
		"segment", name,
		"file", path,
		"size", humanize.Bytes(uint64(len(clip.PCM))),
		"duration", clip.Duration(),
		"cached", hit)
	return clip, nil
}

// LoadVoice reads the manifest at path and loads it.
func LoadVoice(path string, sampleRate, channels int, c cache.Cache) (*callout.Voice, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return NewLoader(sampleRate, channels, c).Load(m)
}
