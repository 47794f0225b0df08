package callout

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/trafficcall/internal/audio"
	"github.com/dgnsrekt/trafficcall/internal/traffic"
)

func clip(name string) *audio.Clip {
	return &audio.Clip{Name: name, PCM: make([]byte, 4), SampleRate: 44100, Channels: 2}
}

func testVoice() *Voice {
	v := &Voice{
		Traffic: clip("traffic"),
		Bogey:   clip("bogey"),
		Aliases: []*audio.Clip{clip("alpha"), clip("bravo"), clip("charlie")},
		Low:     clip("low"),
		High:    clip("high"),
		Level:   clip("level"),
		OClock:  clip("oclock"),
	}
	for h := 1; h <= 12; h++ {
		v.ClockHours[h-1] = clip(strconv.Itoa(h))
	}
	return v
}

func names(seq []*audio.Clip) []string {
	out := make([]string, len(seq))
	for i, c := range seq {
		out[i] = c.Name
	}
	return out
}

// eastAlert places traffic due east of an ownship at (0,0) heading north.
func eastAlert(id string, ownAlt, trafficAlt int) traffic.Alert {
	return traffic.Alert{
		Traffic: traffic.Report{
			Identifier: id,
			Position:   traffic.Position{Latitude: 0, Longitude: 0.1},
			Altitude:   trafficAlt,
		},
		Ownship: traffic.Ownship{Altitude: ownAlt},
	}
}

func TestBuild_DueEastLevel(t *testing.T) {
	b := NewBuilder(testVoice(), DefaultOptions())

	seq, err := b.Build(eastAlert("N1", 1000, 1000))
	require.NoError(t, err)
	assert.Equal(t, []string{"traffic", "alpha", "3", "level"}, names(seq))
}

func TestBuild_WithoutAliases(t *testing.T) {
	b := NewBuilder(testVoice(), Options{})

	seq, err := b.Build(eastAlert("N1", 1000, 1000))
	require.NoError(t, err)
	assert.Equal(t, []string{"traffic", "3", "level"}, names(seq))
	assert.Equal(t, 0, b.Aliases().Len(), "aliases must not be assigned while disabled")
}

func TestBuild_VerticalWording(t *testing.T) {
	b := NewBuilder(testVoice(), Options{})

	tests := []struct {
		name       string
		trafficAlt int
		want       string
	}{
		{"500 below is low", 500, "low"},
		{"500 above is high", 1500, "high"},
		{"99 below is level", 901, "level"},
		{"100 below is low", 900, "low"},
		{"100 above is high", 1100, "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := b.Build(eastAlert("N1", 1000, tt.trafficAlt))
			require.NoError(t, err)
			assert.Equal(t, tt.want, seq[len(seq)-1].Name)
		})
	}
}

func TestBuild_AliasesInFirstSeenOrder(t *testing.T) {
	b := NewBuilder(testVoice(), DefaultOptions())

	var got []string
	for _, id := range []string{"A", "B", "A", "C", "B"} {
		seq, err := b.Build(eastAlert(id, 1000, 1000))
		require.NoError(t, err)
		got = append(got, seq[1].Name)
	}

	assert.Equal(t, []string{"alpha", "bravo", "alpha", "charlie", "bravo"}, got)
	assert.Equal(t, []string{"A", "B", "C"}, b.Aliases().Identifiers())
}

func TestBuild_AliasWraparound(t *testing.T) {
	b := NewBuilder(testVoice(), DefaultOptions())

	var got []string
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		seq, err := b.Build(eastAlert(id, 1000, 1000))
		require.NoError(t, err)
		got = append(got, seq[1].Name)
	}

	// The fourth and fifth identifiers share aliases with the first two
	assert.Equal(t, []string{"alpha", "bravo", "charlie", "alpha", "bravo"}, got)
	idx, ok := b.Aliases().Lookup("E")
	assert.True(t, ok)
	assert.Equal(t, 4, idx)
}

func TestBuild_DorkMode(t *testing.T) {
	b := NewBuilder(testVoice(), Options{DorkMode: true})

	seq, err := b.Build(eastAlert("N1", 1000, 1000))
	require.NoError(t, err)
	assert.Equal(t, "bogey", seq[0].Name)
}

func TestBuild_OClockPhrasing(t *testing.T) {
	b := NewBuilder(testVoice(), Options{UseAliases: true, Phrasing: PhrasingOClock})

	seq, err := b.Build(eastAlert("N1", 1000, 500))
	require.NoError(t, err)
	assert.Equal(t, []string{"traffic", "alpha", "3", "oclock", "low"}, names(seq))
}

func TestBuild_SetOptions(t *testing.T) {
	b := NewBuilder(testVoice(), DefaultOptions())
	b.SetOptions(Options{DorkMode: true})

	assert.Equal(t, Options{DorkMode: true}, b.Options())
	seq, err := b.Build(eastAlert("N1", 1000, 1000))
	require.NoError(t, err)
	assert.Equal(t, []string{"bogey", "3", "level"}, names(seq))
}

func TestBuild_ClockPositions(t *testing.T) {
	b := NewBuilder(testVoice(), Options{})

	tests := []struct {
		name    string
		lat     float64
		lon     float64
		heading float64
		want    string
	}{
		{"ahead", 0.1, 0, 0, "12"},
		{"behind", -0.1, 0, 0, "6"},
		{"left", 0, -0.1, 0, "9"},
		{"east while heading east", 0, 0.1, 90, "12"},
		{"north while heading east", 0.1, 0, 90, "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := traffic.Alert{
				Traffic: traffic.Report{Identifier: "X", Position: traffic.Position{Latitude: tt.lat, Longitude: tt.lon}},
				Ownship: traffic.Ownship{Heading: tt.heading},
			}
			seq, err := b.Build(alert)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seq[1].Name)
		})
	}
}

func TestBuild_MissingSegments(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		mutate func(v *Voice)
	}{
		{"no tone", Options{}, func(v *Voice) { v.Traffic = nil }},
		{"no bogey in dork mode", Options{DorkMode: true}, func(v *Voice) { v.Bogey = nil }},
		{"no hour", Options{}, func(v *Voice) { v.ClockHours[2] = nil }},
		{"no level", Options{}, func(v *Voice) { v.Level = nil }},
		{"no oclock", Options{Phrasing: PhrasingOClock}, func(v *Voice) { v.OClock = nil }},
		{"no aliases", Options{UseAliases: true}, func(v *Voice) { v.Aliases = nil }},
		{"nil alias", Options{UseAliases: true}, func(v *Voice) { v.Aliases[0] = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testVoice()
			tt.mutate(v)
			b := NewBuilder(v, tt.opts)

			seq, err := b.Build(eastAlert("N1", 1000, 1000))
			assert.ErrorIs(t, err, ErrSegmentMissing)
			assert.Nil(t, seq)
			assert.ErrorIs(t, v.Validate(tt.opts), ErrSegmentMissing)
		})
	}

	_, err := NewBuilder(nil, Options{}).Build(eastAlert("N1", 1000, 1000))
	assert.ErrorIs(t, err, ErrSegmentMissing)
}

func TestVoice_Validate(t *testing.T) {
	v := testVoice()
	assert.NoError(t, v.Validate(DefaultOptions()))
	assert.NoError(t, v.Validate(Options{DorkMode: true, Phrasing: PhrasingOClock}))

	// Unused segments are not required
	v.Bogey = nil
	v.OClock = nil
	v.Aliases = nil
	assert.NoError(t, v.Validate(Options{}))
}

func TestParsePhrasing(t *testing.T) {
	for in, want := range map[string]Phrasing{
		"":        PhrasingClock,
		"clock":   PhrasingClock,
		"OClock":  PhrasingOClock,
		"o'clock": PhrasingOClock,
	} {
		got, err := ParsePhrasing(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePhrasing("sundial")
	assert.Error(t, err)
	assert.Equal(t, "oclock", PhrasingOClock.String())
}
