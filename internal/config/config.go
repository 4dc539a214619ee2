// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/iwvelando/smart-calc-suite/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for smart-calc-suite.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Insight  InsightConfig  `yaml:"insight,omitempty"`
	Visitors VisitorsConfig `yaml:"visitors,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json, yaml
}

// InsightConfig holds the settings of the insight collaborator.
type InsightConfig struct {
	// APIKey is the credential. When empty it is read from APIKeyEnv.
	APIKey string `yaml:"apiKey,omitempty"`
	// APIKeyEnv names the environment variable holding the credential.
	APIKeyEnv string        `yaml:"apiKeyEnv,omitempty"`
	Model     string        `yaml:"model,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// VisitorsConfig holds the visitor counter simulation parameters.
type VisitorsConfig struct {
	Base       float64       `yaml:"base,omitempty"`
	GrowthRate float64       `yaml:"growthRate,omitempty"`
	Epoch      string        `yaml:"epoch,omitempty"` // RFC 3339
	Interval   time.Duration `yaml:"interval,omitempty"`
}

// Key returns the configured credential, falling back to the environment.
// An empty result is valid and disables network insights.
func (c InsightConfig) Key() string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	env := c.APIKeyEnv
	if env == "" {
		env = constants.DefaultInsightAPIKeyEnv
	}
	return strings.TrimSpace(os.Getenv(env))
}

// EpochTime parses the configured launch epoch.
func (v VisitorsConfig) EpochTime() (time.Time, error) {
	epoch, err := time.Parse(time.RFC3339, v.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid visitors epoch %q: %w", v.Epoch, err)
	}
	return epoch, nil
}

// Defaults returns a configuration populated with the built-in defaults.
func Defaults() *Configuration {
	conf := &Configuration{
		Visitors: VisitorsConfig{GrowthRate: constants.VisitorGrowthPerMinute},
	}
	conf.ApplyDefaults()
	return conf
}

// ApplyDefaults fills every unset field with its default. GrowthRate is left
// alone because zero is a valid flat baseline; loaders seed it before
// decoding instead.
func (c *Configuration) ApplyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Insight.APIKeyEnv == "" {
		c.Insight.APIKeyEnv = constants.DefaultInsightAPIKeyEnv
	}
	if c.Insight.Model == "" {
		c.Insight.Model = constants.DefaultInsightModel
	}
	if c.Visitors.Base == 0 {
		c.Visitors.Base = constants.VisitorBaseCount
	}
	if c.Visitors.Epoch == "" {
		c.Visitors.Epoch = constants.VisitorLaunchEpoch
	}
	if c.Visitors.Interval <= 0 {
		c.Visitors.Interval = constants.VisitorTickInterval
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationIfExists behaves like LoadConfiguration but returns the
// defaults when configPath does not exist.
func LoadConfigurationIfExists(configPath string) (*Configuration, error) {
	if configPath == "" {
		return decode(newViper())
	}
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return decode(newViper())
	}
	return LoadConfiguration(configPath)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix("smartcalc")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Environment overrides only apply to keys viper knows about.
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputfile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("insight.apikey", "")
	v.SetDefault("insight.apikeyenv", constants.DefaultInsightAPIKeyEnv)
	v.SetDefault("insight.model", constants.DefaultInsightModel)
	v.SetDefault("insight.timeout", time.Duration(0))
	v.SetDefault("visitors.base", float64(constants.VisitorBaseCount))
	v.SetDefault("visitors.growthrate", constants.VisitorGrowthPerMinute)
	v.SetDefault("visitors.epoch", constants.VisitorLaunchEpoch)
	v.SetDefault("visitors.interval", constants.VisitorTickInterval)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.ApplyDefaults()
	return &configuration, nil
}

// ValidateConfiguration checks the configuration, returning an error for
// unusable values and warnings for degraded but valid setups.
func (c *Configuration) ValidateConfiguration() ([]string, error) {
	var warnings []string

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return nil, err
	}
	if err := c.Logging.Validate(); err != nil {
		return nil, err
	}
	if _, err := c.Visitors.EpochTime(); err != nil {
		return nil, err
	}
	if c.Visitors.GrowthRate < 0 {
		warnings = append(warnings, fmt.Sprintf("visitors growthRate %v is negative; the baseline will shrink over time", c.Visitors.GrowthRate))
	}
	if c.Insight.Key() == "" {
		warnings = append(warnings, fmt.Sprintf("no insight credential configured (set %s); AI insights are unavailable", c.Insight.APIKeyEnv))
	}
	return warnings, nil
}
