package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rindex/rindex/internal/util"
	"gopkg.in/yaml.v3"
)

// Bytes per KB
const KB = 1024

// CLI verbosity values accepted by ConfigOverride.LogLvl
const (
	ErrorVerbose = util.MinVerbose + iota
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultLogLvl is the log level used when no verbosity is given
	DefaultLogLvl = util.WarnLevel

	// DefaultSkipErrors aborts indexing on the first unreadable entry
	DefaultSkipErrors = false

	// DefaultChunkSize is the read buffer size used while computing checksums
	DefaultChunkSize = 64 * KB

	// DefaultSentinelName marks a repository root
	DefaultSentinelName = "rindex.toml"
)

// Config contains runtime configuration values for the indexer.
type Config struct {
	LogLvl       util.LogLevel // Minimum level written to the log (Default Warn)
	SkipErrors   bool          // Skip entries that fail to load or read instead of aborting (Default false)
	ChunkSize    int           // Read buffer size in bytes when hashing file content (Default 64KB)
	SentinelName string        // File name that marks a repository root (Default rindex.toml)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a CLI style verbosity between ErrorVerbose and TraceVerbose
	LogLvl       *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	SkipErrors   *bool   `yaml:"skip_errors,omitempty" json:"skip_errors,omitempty"`
	ChunkSize    *int    `yaml:"chunk_size,omitempty" json:"chunk_size,omitempty"`
	SentinelName *string `yaml:"sentinel_name,omitempty" json:"sentinel_name,omitempty"`
}

// NewConfig creates a Config with default values and applies override when
// it is not nil.
func NewConfig(override *ConfigOverride) *Config {
	cfg := &Config{
		LogLvl:       DefaultLogLvl,
		SkipErrors:   DefaultSkipErrors,
		ChunkSize:    DefaultChunkSize,
		SentinelName: DefaultSentinelName,
	}
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = util.LevelFromVerbose(*override.LogLvl)
	}
	if override.SkipErrors != nil {
		c.SkipErrors = *override.SkipErrors
	}
	if override.ChunkSize != nil {
		c.ChunkSize = *override.ChunkSize
	}
	if override.SentinelName != nil {
		c.SentinelName = *override.SentinelName
	}
}

// Validate reports values that cannot be used
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.SentinelName == "" || strings.ContainsRune(c.SentinelName, filepath.Separator) {
		return fmt.Errorf("sentinel_name must be a plain file name, got %q", c.SentinelName)
	}
	return nil
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewConfig(override)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}
