package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/smart-calc-suite/internal/config"
	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address     string `yaml:"address"`
	MaxBodySize string `yaml:"maxBodySize"`
	// PageIdleTimeout unmounts pages not looked up for this long. Zero keeps
	// pages until they are deleted.
	PageIdleTimeout time.Duration `yaml:"pageIdleTimeout"`
	// MaxPages caps concurrently mounted pages. Zero means no cap.
	MaxPages      int                   `yaml:"maxPages"`
	Logging       config.LoggingConfig  `yaml:"logging"`
	Insight       config.InsightConfig  `yaml:"insight"`
	Visitors      config.VisitorsConfig `yaml:"visitors"`
	bodySizeBytes int64
}

// seeded holds the defaults of keys whose zero value is meaningful. Decoding
// over it keeps them unless the file sets them explicitly.
func seeded() *Config {
	return &Config{
		PageIdleTimeout: constants.DefaultPageIdleTimeout,
		MaxPages:        constants.DefaultMaxPages,
		Visitors:        config.VisitorsConfig{GrowthRate: constants.VisitorGrowthPerMinute},
	}
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := seeded()
	_ = cfg.normalize()
	return cfg
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := seeded()

	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// SetBodySizeBytes overrides the configured request body limit.
func (c *Config) SetBodySizeBytes(size int64) {
	if size > 0 {
		c.bodySizeBytes = size
		c.MaxBodySize = strconv.FormatInt(size, 10)
	}
}

// Validate checks the page limits and the sections shared with the CLI
// configuration.
func (c *Config) Validate() error {
	if c.PageIdleTimeout < 0 {
		return fmt.Errorf("pageIdleTimeout must not be negative, got %s", c.PageIdleTimeout)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("maxPages must not be negative, got %d", c.MaxPages)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if _, err := c.Visitors.EpochTime(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	shared := config.Configuration{Insight: c.Insight, Visitors: c.Visitors}
	shared.ApplyDefaults()
	c.Insight = shared.Insight
	c.Visitors = shared.Visitors

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySizeBytes = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = strconv.FormatInt(constants.DefaultMaxBodySizeBytes, 10)
		return nil
	}

	size, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = size
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 || (n != 0 && result/multiplier != n) {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
