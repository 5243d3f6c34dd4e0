package vks

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig is the on disk description of an App, so that layers, extensions
// and debugging can be toggled without recompiling.
type AppConfig struct {
	Name       string        `yaml:"name"`
	EngineName string        `yaml:"engine_name,omitempty"`
	Version    VersionConfig `yaml:"version,omitempty"`
	APIVersion VersionConfig `yaml:"api_version,omitempty"`

	Layers     []string `yaml:"layers,omitempty"`
	Extensions []string `yaml:"extensions,omitempty"`

	// Debug enables the Khronos validation layer.
	Debug bool `yaml:"debug,omitempty"`
}

type VersionConfig struct {
	Major int `yaml:"major"`
	Minor int `yaml:"minor"`
	Patch int `yaml:"patch"`
}

func (v VersionConfig) version() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// LoadAppConfig reads an AppConfig from a YAML file.
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config %q", path)
	}
	return ParseAppConfig(data)
}

// ParseAppConfig parses an AppConfig from YAML bytes.
func ParseAppConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to parse app config")
	}
	if cfg.Name == "" {
		return nil, errors.New("app config is missing a name")
	}
	return &cfg, nil
}

// App builds an App from the config.
func (c *AppConfig) App() *App {
	app := &App{
		Name:       c.Name,
		EngineName: c.EngineName,
		Version:    c.Version.version(),
		APIVersion: c.APIVersion.version(),
	}
	for _, layer := range c.Layers {
		app.EnableLayer(layer)
	}
	for _, ext := range c.Extensions {
		app.EnableExtension(ext)
	}
	if c.Debug {
		app.EnableDebugging()
	}
	return app
}
