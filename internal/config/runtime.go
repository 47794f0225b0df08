package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Runtime holds settings read only from the environment. They decide where
// the config file and logs live, so they cannot come from the config file.
type Runtime struct {
	LogFile       string `env:"TRAFFICCALL_LOG_FILE"`
	ConfigHome    string `env:"TRAFFICCALL_CONFIG_HOME"`
	XDGConfigHome string `env:"XDG_CONFIG_HOME"`
	Debug         bool   `env:"TRAFFICCALL_DEBUG" envDefault:"false"`
}

// LoadRuntime reads a .env file from the working directory, if there is
// one, then parses the environment.
func LoadRuntime(files ...string) (Runtime, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Runtime{}, fmt.Errorf("error loading .env: %w", err)
	}

	rt, err := env.ParseAs[Runtime]()
	if err != nil {
		return Runtime{}, fmt.Errorf("error parsing environment: %w", err)
	}
	return rt, nil
}
