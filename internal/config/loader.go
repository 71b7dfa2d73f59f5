package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvConfigPath names the env var pointing at an optional config file.
const EnvConfigPath = "ROBOCLOUD_CONFIG"

const envPrefix = "ROBOCLOUD_"

// optionalKeys are reported through Config.Missing.
var optionalKeys = []string{KeyJointStatesTopic, KeyPublishFrequency, KeyUseVisualMesh} //nolint:gochecknoglobals // fixed key list

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML or TOML by extension) if ROBOCLOUD_CONFIG is set
//  3. env (prefix ROBOCLOUD_)
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvConfigPath))
}

// LoadFile is Load with an explicit config file path; path may be empty.
func LoadFile(_ context.Context, path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like ROBOCLOUD_PUBLISH_FREQUENCY -> publish_frequency.
	// Underscores are kept to match the flat koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.source = path
	cfg.absent = make(map[string]bool, len(optionalKeys))
	for _, key := range optionalKeys {
		if !k.Exists(key) {
			cfg.absent[key] = true
		}
	}

	if cfg.RobotDescription == "" && cfg.RobotDescriptionFile != "" {
		b, err := os.ReadFile(cfg.RobotDescriptionFile)
		if err != nil {
			return nil, fmt.Errorf("%w: robot_description_file: %w", ErrLoadConfig, err)
		}
		cfg.RobotDescription = string(b)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.RobotDescription) == "" {
		return ErrMissingRobotDescription
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.PublishFrequency <= 0 {
		return fmt.Errorf("%w: publish_frequency must be positive, got %v", ErrInvalidConfig, c.PublishFrequency)
	}
	if c.JointStatesTopic == "" {
		return fmt.Errorf("%w: joint_states_topic must not be empty", ErrInvalidConfig)
	}
	if c.StateWaitTimeoutMS <= 0 {
		return fmt.Errorf("%w: state_wait_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.MetricsRefreshIntervalMS <= 0 {
		return fmt.Errorf("%w: metrics_refresh_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return TOMLParser(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported config file extension %q", ErrLoadConfig, filepath.Ext(path))
	}
}
