// Package config holds the trafficcall configuration: the output device,
// the voice, the alert wording flags, the traffic intake and the segment
// cache. Values come from the YAML config file, TRAFFICCALL_* environment
// variables and command line flags, all merged by viper.
package config

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/trafficcall/internal/audio"
	"github.com/dgnsrekt/trafficcall/internal/callout"
)

// Config contains all trafficcall configuration options.
type Config struct {
	Device DeviceConfig `yaml:"device"`
	Voice  VoiceConfig  `yaml:"voice"`
	Alerts AlertsConfig `yaml:"alerts"`
	Intake IntakeConfig `yaml:"intake"`
	Cache  CacheConfig  `yaml:"cache"`
}

// DeviceConfig selects and sets up the audio output.
type DeviceConfig struct {
	Backend    string  `yaml:"backend" env:"TRAFFICCALL_DEVICE_BACKEND" envDefault:"oto"`
	SampleRate int     `yaml:"sample_rate" env:"TRAFFICCALL_DEVICE_SAMPLE_RATE" envDefault:"44100"`
	Channels   int     `yaml:"channels" env:"TRAFFICCALL_DEVICE_CHANNELS" envDefault:"2"`
	BufferSize int     `yaml:"buffer_size" env:"TRAFFICCALL_DEVICE_BUFFER_SIZE" envDefault:"4096"`
	Volume     float64 `yaml:"volume" env:"TRAFFICCALL_DEVICE_VOLUME" envDefault:"1.0"`
}

// VoiceConfig points at the recorded segments.
type VoiceConfig struct {
	// Manifest is a voice.yml file or a directory holding one. When empty
	// a synthetic beep voice is used.
	Manifest         string `yaml:"manifest" env:"TRAFFICCALL_VOICE_MANIFEST"`
	SyntheticAliases int    `yaml:"synthetic_aliases" env:"TRAFFICCALL_VOICE_SYNTHETIC_ALIASES" envDefault:"6"`
}

// AlertsConfig holds the callout wording flags. They are applied live when
// the config file changes.
type AlertsConfig struct {
	UseAliases bool   `yaml:"use_aliases" env:"TRAFFICCALL_ALERTS_USE_ALIASES" envDefault:"true"`
	DorkMode   bool   `yaml:"dork_mode" env:"TRAFFICCALL_ALERTS_DORK_MODE" envDefault:"false"`
	Phrasing   string `yaml:"phrasing" env:"TRAFFICCALL_ALERTS_PHRASING" envDefault:"clock"`
}

// IntakeConfig configures the HTTP traffic intake.
type IntakeConfig struct {
	Enabled   bool    `yaml:"enabled" env:"TRAFFICCALL_INTAKE_ENABLED" envDefault:"true"`
	Listen    string  `yaml:"listen" env:"TRAFFICCALL_INTAKE_LISTEN" envDefault:":8089"`
	RateLimit float64 `yaml:"rate_limit" env:"TRAFFICCALL_INTAKE_RATE_LIMIT" envDefault:"20"`
	Burst     int     `yaml:"burst" env:"TRAFFICCALL_INTAKE_BURST" envDefault:"40"`
}

// CacheConfig configures the decoded segment cache.
type CacheConfig struct {
	Enabled          bool   `yaml:"enabled" env:"TRAFFICCALL_CACHE_ENABLED" envDefault:"true"`
	Directory        string `yaml:"dir" env:"TRAFFICCALL_CACHE_DIR"`
	MaxSize          int64  `yaml:"max_size" env:"TRAFFICCALL_CACHE_MAX_SIZE" envDefault:"64"` // MB
	CompressionLevel int    `yaml:"compression_level" env:"TRAFFICCALL_CACHE_COMPRESSION_LEVEL" envDefault:"3"`
}

var validBackends = []string{"oto", "portaudio", "mock"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	player := audio.DefaultPlayerConfig()
	opts := callout.DefaultOptions()

	return Config{
		Device: DeviceConfig{
			Backend:    "oto",
			SampleRate: player.SampleRate,
			Channels:   player.Channels,
			BufferSize: player.BufferSize,
			Volume:     1.0,
		},
		Voice: VoiceConfig{
			SyntheticAliases: 6,
		},
		Alerts: AlertsConfig{
			UseAliases: opts.UseAliases,
			DorkMode:   opts.DorkMode,
			Phrasing:   opts.Phrasing.String(),
		},
		Intake: IntakeConfig{
			Enabled:   true,
			Listen:    ":8089",
			RateLimit: 20,
			Burst:     40,
		},
		Cache: CacheConfig{
			Enabled:          true,
			MaxSize:          64,
			CompressionLevel: 3,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Validate device backend
	backendValid := false
	for _, b := range validBackends {
		if strings.EqualFold(c.Device.Backend, b) {
			backendValid = true
			c.Device.Backend = b
			break
		}
	}
	if !backendValid {
		return fmt.Errorf("invalid device backend '%s': must be one of %v", c.Device.Backend, validBackends)
	}

	if err := audio.ValidateConfig(c.PlayerConfig()); err != nil {
		return fmt.Errorf("device: %w", err)
	}
	if c.Device.Volume < 0.0 || c.Device.Volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", c.Device.Volume)
	}

	if c.Voice.SyntheticAliases < 0 || c.Voice.SyntheticAliases > 26 {
		return fmt.Errorf("synthetic aliases must be between 0 and 26, got %d", c.Voice.SyntheticAliases)
	}

	p, err := callout.ParsePhrasing(c.Alerts.Phrasing)
	if err != nil {
		return fmt.Errorf("alerts: %w", err)
	}
	c.Alerts.Phrasing = p.String()

	if c.Intake.Enabled {
		if c.Intake.Listen == "" {
			return fmt.Errorf("intake listen address cannot be empty")
		}
		if c.Intake.RateLimit <= 0 {
			return fmt.Errorf("intake rate limit must be positive, got %f", c.Intake.RateLimit)
		}
		if c.Intake.Burst < 1 {
			return fmt.Errorf("intake burst must be at least 1, got %d", c.Intake.Burst)
		}
	}

	if c.Cache.Enabled {
		if c.Cache.MaxSize < 1 {
			return fmt.Errorf("cache max size must be at least 1 MB, got %d", c.Cache.MaxSize)
		}
		if c.Cache.CompressionLevel < 0 || c.Cache.CompressionLevel > 22 {
			return fmt.Errorf("cache compression level must be between 0 and 22, got %d", c.Cache.CompressionLevel)
		}
	}

	return nil
}

// PlayerConfig converts the device settings for audio.NewPlayer.
func (c *Config) PlayerConfig() audio.PlayerConfig {
	pc := audio.DefaultPlayerConfig()
	pc.SampleRate = c.Device.SampleRate
	pc.Channels = c.Device.Channels
	pc.BufferSize = c.Device.BufferSize
	return pc
}

// CalloutOptions converts the alert flags for the message builder. The
// phrasing must have passed Validate.
func (c *Config) CalloutOptions() callout.Options {
	p, _ := callout.ParsePhrasing(c.Alerts.Phrasing)
	return callout.Options{
		UseAliases: c.Alerts.UseAliases,
		DorkMode:   c.Alerts.DorkMode,
		Phrasing:   p,
	}
}

// CacheCapacity returns the cache size limit in bytes.
func (c *Config) CacheCapacity() int64 {
	return c.Cache.MaxSize * 1024 * 1024
}
