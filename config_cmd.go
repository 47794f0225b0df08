package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# Audio output
device:
  # Backend: oto, portaudio (needs a portaudio build) or mock
  backend: "oto"
  # 44100 or 48000
  sample_rate: 44100
  # 1 (mono) or 2 (stereo)
  channels: 2
  buffer_size: 4096
  # Volume level (0.0 to 1.0)
  volume: 1.0

# Recorded callout segments
voice:
  # voice.yml or a directory holding one. Leave empty for synthetic tones.
  manifest: ""
  # Number of aliases in the synthetic voice
  synthetic_aliases: 6

# Callout wording. Changes apply while running.
alerts:
  # Speak an alias before the clock position
  use_aliases: true
  # Open with the alternate tone
  dork_mode: false
  # clock ("three o'clock" as one clip) or oclock ("three" + "o'clock")
  phrasing: "clock"

# HTTP traffic intake
intake:
  enabled: true
  listen: ":8089"
  # Traffic reports per second, and burst
  rate_limit: 20
  burst: 40

# Decoded segment cache
cache:
  enabled: true
  # Defaults to the user cache directory
  # dir: "~/.cache/trafficcall/segments"
  # Maximum size in MB
  max_size: 64
  # zstd level, 0 disables compression
  compression_level: 3
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the trafficcall config file",
	Long:    paragraph(fmt.Sprintf("\n%s the trafficcall config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("trafficcall config\ntrafficcall config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	// A broken config file must still be editable
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("trafficcall", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
