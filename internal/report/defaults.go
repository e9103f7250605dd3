package report

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// DefaultConfig is the configuration used when none has been saved.
func DefaultConfig() Config {
	cfg, err := ParseConfigYAML(defaultsYAML)
	if err != nil {
		panic("report: embedded defaults.yaml: " + err.Error())
	}
	return cfg
}

// LoadDefaults reads a default configuration from path, or returns the
// embedded one when path is empty.
func LoadDefaults(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read report defaults %s", path)
	}
	return ParseConfigYAML(data)
}

func ParseConfigYAML(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse report config")
	}
	return cfg, nil
}
