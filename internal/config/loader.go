package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// LoadFromViper loads the configuration from Viper. The TRAFFICCALL_*
// environment variables and their defaults form the base that keys set in
// Viper override.
func LoadFromViper() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return DefaultConfig(), fmt.Errorf("invalid environment: %w", err)
	}

	// Device settings
	if viper.IsSet("device.backend") {
		cfg.Device.Backend = viper.GetString("device.backend")
	}
	if viper.IsSet("device.sample_rate") {
		cfg.Device.SampleRate = viper.GetInt("device.sample_rate")
	}
	if viper.IsSet("device.channels") {
		cfg.Device.Channels = viper.GetInt("device.channels")
	}
	if viper.IsSet("device.buffer_size") {
		cfg.Device.BufferSize = viper.GetInt("device.buffer_size")
	}
	if viper.IsSet("device.volume") {
		cfg.Device.Volume = viper.GetFloat64("device.volume")
	}

	// Voice settings
	if viper.IsSet("voice.manifest") {
		cfg.Voice.Manifest = viper.GetString("voice.manifest")
	}
	if viper.IsSet("voice.synthetic_aliases") {
		cfg.Voice.SyntheticAliases = viper.GetInt("voice.synthetic_aliases")
	}

	// Alert flags
	if viper.IsSet("alerts.use_aliases") {
		cfg.Alerts.UseAliases = viper.GetBool("alerts.use_aliases")
	}
	if viper.IsSet("alerts.dork_mode") {
		cfg.Alerts.DorkMode = viper.GetBool("alerts.dork_mode")
	}
	if viper.IsSet("alerts.phrasing") {
		cfg.Alerts.Phrasing = viper.GetString("alerts.phrasing")
	}

	// Intake settings
	if viper.IsSet("intake.enabled") {
		cfg.Intake.Enabled = viper.GetBool("intake.enabled")
	}
	if viper.IsSet("intake.listen") {
		cfg.Intake.Listen = viper.GetString("intake.listen")
	}
	if viper.IsSet("intake.rate_limit") {
		cfg.Intake.RateLimit = viper.GetFloat64("intake.rate_limit")
	}
	if viper.IsSet("intake.burst") {
		cfg.Intake.Burst = viper.GetInt("intake.burst")
	}

	// Cache settings
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Directory = viper.GetString("cache.dir")
	}
	if viper.IsSet("cache.max_size") {
		cfg.Cache.MaxSize = viper.GetInt64("cache.max_size")
	}
	if viper.IsSet("cache.compression_level") {
		cfg.Cache.CompressionLevel = viper.GetInt("cache.compression_level")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SetDefaults sets default values in Viper.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("device.backend", defaults.Device.Backend)
	viper.SetDefault("device.sample_rate", defaults.Device.SampleRate)
	viper.SetDefault("device.channels", defaults.Device.Channels)
	viper.SetDefault("device.buffer_size", defaults.Device.BufferSize)
	viper.SetDefault("device.volume", defaults.Device.Volume)

	viper.SetDefault("voice.manifest", defaults.Voice.Manifest)
	viper.SetDefault("voice.synthetic_aliases", defaults.Voice.SyntheticAliases)

	viper.SetDefault("alerts.use_aliases", defaults.Alerts.UseAliases)
	viper.SetDefault("alerts.dork_mode", defaults.Alerts.DorkMode)
	viper.SetDefault("alerts.phrasing", defaults.Alerts.Phrasing)

	viper.SetDefault("intake.enabled", defaults.Intake.Enabled)
	viper.SetDefault("intake.listen", defaults.Intake.Listen)
	viper.SetDefault("intake.rate_limit", defaults.Intake.RateLimit)
	viper.SetDefault("intake.burst", defaults.Intake.Burst)

	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.dir", defaults.Cache.Directory)
	viper.SetDefault("cache.max_size", defaults.Cache.MaxSize)
	viper.SetDefault("cache.compression_level", defaults.Cache.CompressionLevel)
}

// Watch reloads the configuration whenever the config file is written and
// passes every valid result to onChange. Invalid edits are logged and
// ignored.
func Watch(onChange func(Config)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		reload(e, onChange)
	})
	viper.WatchConfig()
}

func reload(e fsnotify.Event, onChange func(Config)) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}

	cfg, err := LoadFromViper()
	if err != nil {
		log.Warn("Ignoring configuration change", "file", e.Name, "err", err)
		return
	}

	log.Info("Configuration reloaded", "file", e.Name)
	onChange(cfg)
}
