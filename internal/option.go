package internal

import (
	"fmt"

	pkgconfig "github.com/mos-jef/title-crm/pkg/config"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	configFile string
}

// WithConfig sets a fully built application configuration. It takes
// precedence over WithConfigFile.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithConfigFile defers configuration to startup: defaults overlaid
// with the YAML file at path.
func WithConfigFile(path string) Option {
	return func(a *application) {
		a.configFile = path
	}
}

// resolveConfig produces the effective configuration from the applied
// options.
func (a *application) resolveConfig() (*Config, error) {
	if a.config != nil {
		return a.config, nil
	}
	if a.configFile == "" {
		return nil, fmt.Errorf("config is required")
	}
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(a.configFile, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", a.configFile, err)
	}
	return cfg, nil
}
