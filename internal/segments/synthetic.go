package segments

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/dgnsrekt/trafficcall/internal/audio"
	"github.com/dgnsrekt/trafficcall/internal/callout"
)

// Synthetic returns a voice of short beeps, one pitch per segment. It lets
// the alerter run without a recorded voice pack.
func Synthetic(sampleRate, channels int, aliases int) *callout.Voice {
	freq := 440.0
	next := func(name string) *audio.Clip {
		c := beep(name, freq, 120*time.Millisecond, sampleRate, channels)
		freq *= 1.06
		return c
	}

	v := &callout.Voice{
		Traffic: next("traffic"),
		Bogey:   next("bogey"),
		OClock:  next("oclock"),
		Low:     next("low"),
		High:    next("high"),
		Level:   next("level"),
	}
	for i := range v.ClockHours {
		v.ClockHours[i] = next(clockNames[i])
	}
	for i := 0; i < aliases; i++ {
		v.Aliases = append(v.Aliases, next(fmt.Sprintf("alias-%d", i)))
	}
	return v
}

// beep renders a sine tone with a short linear fade at both ends.
func beep(name string, freq float64, d time.Duration, sampleRate, channels int) *audio.Clip {
	frames := int(d.Seconds() * float64(sampleRate))
	fade := frames / 10
	pcm := make([]byte, frames*channels*2)

	for i := 0; i < frames; i++ {
		gain := 0.3
		if i < fade {
			gain *= float64(i) / float64(fade)
		} else if i > frames-fade {
			gain *= float64(frames-i) / float64(fade)
		}
		s := int16(gain * math.MaxInt16 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint16(pcm[(i*channels+ch)*2:], uint16(s))
		}
	}

	return &audio.Clip{Name: name, PCM: pcm, SampleRate: sampleRate, Channels: channels}
}
