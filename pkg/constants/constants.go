// Package constants provides shared constants for the smart-calc-suite application.
package constants

import "time"

// Insight collaborator messages
const (
	// InsightFallbackMessage is shown whenever an insight fetch fails for any reason.
	InsightFallbackMessage = "Unable to fetch AI insights at this moment."

	// InsightMissingKeyMessage is returned when no credential is configured.
	InsightMissingKeyMessage = "AI insights are unavailable (API Key missing)."

	// InsightEmptyMessage is returned when the service answers with no text.
	InsightEmptyMessage = "Could not generate insight."

	// DefaultInsightModel is the text-generation model used for insights
	DefaultInsightModel = "gemini-2.5-flash"

	// DefaultInsightAPIKeyEnv is the environment variable holding the credential
	DefaultInsightAPIKeyEnv = "API_KEY"
)

// Calculation constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// PercentSuffix selects percentage formatting for a result
	PercentSuffix = "%"

	// ResultDecimals is the number of decimal digits rendered for every result
	ResultDecimals = 2
)

// Visitor counter defaults
const (
	// VisitorBaseCount is the displayed count at the launch epoch
	VisitorBaseCount = 12500

	// VisitorGrowthPerMinute is the simulated number of visitors per minute since launch
	VisitorGrowthPerMinute = 0.85

	// VisitorLaunchEpoch is the simulated launch instant (RFC 3339)
	VisitorLaunchEpoch = "2024-09-01T00:00:00Z"

	// VisitorTickInterval is how often an open page adds one visitor
	VisitorTickInterval = 45 * time.Second
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum JSON request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP server
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultPageIdleTimeout is how long a mounted page may go unused before
	// the server unmounts it
	DefaultPageIdleTimeout = 30 * time.Minute

	// DefaultMaxPages caps the pages one server keeps mounted
	DefaultMaxPages = 1000
)

// Project metadata
const (
	// ProjectName is reported by the MCP server and the version endpoint
	ProjectName = "smart-calc-suite"
)
