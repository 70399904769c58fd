package policy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedVersion is returned for policy files whose version is not 1.
var ErrUnsupportedVersion = errors.New("unsupported policy version")

func LoadPolicy(path string) (*PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes a policy document held in memory.
func ParsePolicy(data []byte) (*PolicyConfig, error) {
	var cfg PolicyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, cfg.Version)
	}

	if cfg.Modules == nil {
		cfg.Modules = make(map[string]ModuleConfig)
	}

	if cfg.Findings == nil {
		cfg.Findings = make(map[string]FindingConfig)
	}

	return &cfg, nil
}
