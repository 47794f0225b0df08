package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"

	"github.com/dgnsrekt/trafficcall/internal/alerts"
	"github.com/dgnsrekt/trafficcall/internal/audio"
	"github.com/dgnsrekt/trafficcall/internal/cache"
	"github.com/dgnsrekt/trafficcall/internal/callout"
	"github.com/dgnsrekt/trafficcall/internal/config"
	"github.com/dgnsrekt/trafficcall/internal/segments"
)

// subsystem is one alerting instance with the device and cache it owns.
type subsystem struct {
	alerter *alerts.Alerter
	cache   *cache.DiskCache

	closeDevice func() error
}

func newSubsystem(cfg config.Config) (*subsystem, error) {
	s := &subsystem{}

	device, closeDevice, err := openDevice(cfg)
	if err != nil {
		return nil, err
	}
	s.closeDevice = closeDevice

	if cfg.Cache.Enabled {
		if s.cache, err = openCache(cfg); err != nil {
			// Decoding without a cache is only slower
			log.Warn("Segment cache unavailable", "err", err)
		}
	}

	voice, err := loadVoice(cfg, s.cache)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	if s.alerter, err = alerts.New(device, voice, cfg.CalloutOptions()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the alerter, the device and the cache, in that order.
func (s *subsystem) Close() error {
	var errs []error
	if s.alerter != nil {
		errs = append(errs, s.alerter.Close())
	}
	if s.closeDevice != nil {
		errs = append(errs, s.closeDevice())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	return errors.Join(errs...)
}

func openDevice(cfg config.Config) (audio.Device, func() error, error) {
	switch cfg.Device.Backend {
	case "mock":
		m := audio.DefaultMockPlayer()
		log.Info("Using mock audio device")
		return m, m.Close, nil

	case "portaudio":
		p, err := audio.NewStreamPlayer(cfg.PlayerConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open portaudio device: %w", err)
		}
		return p, p.Close, nil

	default:
		p, err := audio.NewPlayer(cfg.PlayerConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open audio device: %w", err)
		}
		if err := p.SetVolume(cfg.Device.Volume); err != nil {
			log.Warn("Cannot set volume", "err", err)
		}
		return p, p.Close, nil
	}
}

func openCache(cfg config.Config) (*cache.DiskCache, error) {
	dir := cfg.Cache.Directory
	if dir == "" {
		base, err := gap.NewScope(gap.User, "trafficcall").CacheDir()
		if err != nil {
			return nil, fmt.Errorf("unable to find cache directory: %w", err)
		}
		dir = filepath.Join(base, "segments")
	}
	return cache.NewDiskCache(dir, cfg.CacheCapacity(), cfg.Cache.CompressionLevel)
}

func loadVoice(cfg config.Config, dc *cache.DiskCache) (*callout.Voice, error) {
	if cfg.Voice.Manifest == "" {
		log.Info("No voice configured, using synthetic tones", "aliases", cfg.Voice.SyntheticAliases)
		return segments.Synthetic(cfg.Device.SampleRate, cfg.Device.Channels, cfg.Voice.SyntheticAliases), nil
	}

	var c cache.Cache
	if dc != nil {
		c = dc
	}
	voice, err := segments.LoadVoice(cfg.Voice.Manifest, cfg.Device.SampleRate, cfg.Device.Channels, c)
	if err != nil {
		return nil, fmt.Errorf("unable to load voice: %w", err)
	}
	return voice, nil
}
