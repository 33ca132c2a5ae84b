package gate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/framegate/framegate/internal/stats"
)

// Statistic names the summary statistic a gate tests. The string values
// are the field names used in output records and failure reasons.
type Statistic string

const (
	StatMean        Statistic = "mean"
	StatMedian      Statistic = "median"
	StatTrimmedMean Statistic = "trimmedMean"
)

// ConfigError reports an invalid gate configuration. Configuration is
// rejected before any computation begins.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gate: invalid config: %s: %s", e.Field, e.Reason)
}

// TrimConfig selects the outlier-trimming strategy by name.
type TrimConfig struct {
	Strategy string  `yaml:"strategy"` // none | drop_first_n | drop_beyond_stddev
	N        int     `yaml:"n"`
	K        float64 `yaml:"k"`
}

// Config holds all configurable gate parameters.
type Config struct {
	MinAcceptableFPS float64    `yaml:"min_acceptable_fps"`
	Statistic        string     `yaml:"statistic"` // mean | median | trimmed_mean
	Trim             TrimConfig `yaml:"trim"`
	FrameMarkers     []string   `yaml:"frame_markers"`
}

// DefaultConfig returns the built-in gate configuration: 30 FPS floor on
// the trimmed mean, first five samples dropped as startup noise.
func DefaultConfig() *Config {
	return &Config{
		MinAcceptableFPS: 30,
		Statistic:        "trimmed_mean",
		Trim: TrimConfig{
			Strategy: "drop_first_n",
			N:        5,
		},
		FrameMarkers: []string{"DrawFrame"},
	}
}

// LoadConfig loads gate configuration from a YAML file.
// Empty path falls back to ~/.framegate/gate.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads gate configuration and returns the SHA-256
// hash of the raw YAML bytes on disk. When no file exists (defaults
// used), the hash is the SHA-256 of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), emptyHash(), nil
		}
		path = filepath.Join(home, ".framegate", "gate.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), emptyHash(), nil
		}
		return nil, "", fmt.Errorf("failed to read gate config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Start with defaults, YAML overwrites only specified fields.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse gate config: %w", err)
	}

	return cfg, hash, nil
}

func emptyHash() string {
	h := sha256.Sum256(nil)
	return "sha256:" + hex.EncodeToString(h[:])
}

// Validate rejects configurations that cannot be evaluated. Returns
// *ConfigError on the first violation found.
func (c *Config) Validate() error {
	if c.MinAcceptableFPS <= 0 {
		return &ConfigError{Field: "min_acceptable_fps", Reason: "must be positive"}
	}
	if _, err := c.StatisticUnderTest(); err != nil {
		return err
	}
	if _, err := c.TrimStrategy(); err != nil {
		return err
	}
	return nil
}

// StatisticUnderTest maps the configured statistic name to a Statistic.
func (c *Config) StatisticUnderTest() (Statistic, error) {
	switch c.Statistic {
	case "mean":
		return StatMean, nil
	case "median":
		return StatMedian, nil
	case "trimmed_mean", "":
		return StatTrimmedMean, nil
	default:
		return "", &ConfigError{Field: "statistic", Reason: fmt.Sprintf("unknown statistic %q", c.Statistic)}
	}
}

// TrimStrategy maps the configured trim section to a stats.Trim.
func (c *Config) TrimStrategy() (stats.Trim, error) {
	switch c.Trim.Strategy {
	case "none", "":
		return stats.Trim{Kind: stats.TrimNone}, nil
	case "drop_first_n":
		if c.Trim.N < 0 {
			return stats.Trim{}, &ConfigError{Field: "trim.n", Reason: "must not be negative"}
		}
		return stats.Trim{Kind: stats.TrimDropFirstN, N: c.Trim.N}, nil
	case "drop_beyond_stddev":
		if c.Trim.K <= 0 {
			return stats.Trim{}, &ConfigError{Field: "trim.k", Reason: "must be positive"}
		}
		return stats.Trim{Kind: stats.TrimDropBeyondStdDev, K: c.Trim.K}, nil
	default:
		return stats.Trim{}, &ConfigError{Field: "trim.strategy", Reason: fmt.Sprintf("unknown strategy %q", c.Trim.Strategy)}
	}
}

// Markers returns the frame-boundary marker names to match, defaulting
// when the config leaves them unset.
func (c *Config) Markers() []string {
	if len(c.FrameMarkers) == 0 {
		return []string{"DrawFrame"}
	}
	return c.FrameMarkers
}

// DefaultConfigYAML returns a commented YAML string for init-config.
func DefaultConfigYAML() string {
	return `# framegate gate configuration
# Generated by: framegate init-config
#
# The gate passes when the selected statistic of the instantaneous-FPS
# samples is at or above min_acceptable_fps.

min_acceptable_fps: 30

# Statistic under test: mean | median | trimmed_mean
statistic: trimmed_mean

# Outlier trimming applied before the trimmed mean.
#   strategy: none | drop_first_n | drop_beyond_stddev
#   n: samples dropped from the start of the trace (drop_first_n)
#   k: standard deviations from the mean kept (drop_beyond_stddev)
trim:
  strategy: drop_first_n
  n: 5

# Event names treated as frame-completion markers. Marker names vary
# by browser build.
frame_markers:
  - DrawFrame
`
}
