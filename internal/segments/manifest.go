// Package segments loads the spoken clips that callouts are assembled from.
// A voice is a directory of audio files described by a YAML manifest:
//
//	traffic: traffic.mp3
//	bogey: bogey.mp3
//	clock: [one.mp3, two.mp3, ..., twelve.mp3]
//	oclock: oclock.mp3
//	aliases: [alpha.mp3, bravo.mp3, charlie.mp3]
//	low: low.mp3
//	high: high.mp3
//	level: level.mp3
//
// Relative paths are resolved against the manifest's directory.
package segments

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// ManifestName is the manifest file name looked for in a voice directory.
const ManifestName = "voice.yml"

// ErrInvalidManifest is returned for manifests that cannot describe a voice.
var ErrInvalidManifest = errors.New("invalid voice manifest")

// Manifest lists the file for each segment of a voice.
type Manifest struct {
	Name    string   `yaml:"name"`
	Traffic string   `yaml:"traffic"`
	Bogey   string   `yaml:"bogey"`
	Clock   []string `yaml:"clock"`
	OClock  string   `yaml:"oclock"`
	Aliases []string `yaml:"aliases"`
	Low     string   `yaml:"low"`
	High    string   `yaml:"high"`
	Level   string   `yaml:"level"`

	dir string
}

// ReadManifest reads a manifest file, or voice.yml inside a directory.
// A leading ~ is expanded to the home directory.
func ReadManifest(path string) (*Manifest, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, ManifestName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest parses manifest YAML. Relative paths resolve against the
// working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the shape of the manifest. Which segments are actually
// required depends on the callout options and is checked by the voice.
func (m *Manifest) Validate() error {
	if n := len(m.Clock); n != 0 && n != 12 {
		return fmt.Errorf("%w: clock lists %d files, want 12", ErrInvalidManifest, n)
	}
	return nil
}

// resolve returns file relative to the manifest directory.
func (m *Manifest) resolve(file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	if expanded, err := homedir.Expand(file); err == nil && expanded != file {
		return expanded
	}
	return filepath.Join(m.dir, file)
}
