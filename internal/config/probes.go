package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/hamed0406/httprobe/internal/probe"
)

type probesFile struct {
	Probes []probe.RawConfig `yaml:"probes"`
}

// LoadProbes reads raw probe definitions from a YAML file. Definitions are not
// validated here; see probe.NewConfig.
func LoadProbes(path string) ([]probe.RawConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read probes: %w", err)
	}
	return ParseProbes(b)
}

func ParseProbes(b []byte) ([]probe.RawConfig, error) {
	var f probesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse probes yaml: %w", err)
	}
	return f.Probes, nil
}
