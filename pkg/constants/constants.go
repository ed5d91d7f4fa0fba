// Package constants provides shared constants for the market-score application.
package constants

import "time"

// Score constants
const (
	// MinScore is the lowest total a breakdown can report
	MinScore = 0

	// MaxScore is the highest total a breakdown can report and the required
	// sum of the six non-penalty category maxima
	MaxScore = 100

	// SignificantChangeRatio is the relative delta at which a numeric field
	// change is reported as significant (30%)
	SignificantChangeRatio = 0.30

	// DecimalPlaces is the precision used for prices and royalties
	DecimalPlaces = 2
)

// Marketplace constants
const (
	// DefaultMarket is the marketplace whose built-in configuration is used
	// for unknown market identifiers
	DefaultMarket = "US"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultDatabaseFile is the default SQLite database used by the server
	DefaultDatabaseFile = "market-score.db"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultRequestTimeout bounds the handling time of one API request
	DefaultRequestTimeout = 30 * time.Second
)
