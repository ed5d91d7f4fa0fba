// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/scoreconfig"
	"github.com/iwvelando/market-score/internal/status"
	"github.com/iwvelando/market-score/pkg/constants"
	"github.com/iwvelando/market-score/pkg/validation"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for market-score.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Store    StoreConfig    `yaml:"store,omitempty"`
	Markets  map[string]any `yaml:"markets,omitempty"`
	Keywords []KeywordInput `yaml:"keywords,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// StoreConfig points at the SQLite database holding keyword records.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// KeywordInput is one keyword to score in batch mode.
type KeywordInput struct {
	Keyword         string
	Market          string
	SearchVolume    int
	CompetitorCount int
	Price           float64
	RoyaltyPerSale  float64
	TrafficSource   string
	Structural      market.StructuralChecklist
	CatalogSignals  market.CatalogSignals
	Relevance       string
	Competition     string
	Notes           string
	Status          string
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// ScoreOverrides decodes the per-market override blocks. Each market is
// decoded on its own so a malformed block is reported as a warning and
// skipped rather than failing the whole configuration.
func (c *Configuration) ScoreOverrides() (map[string]scoreconfig.PartialScoreConfig, []string) {
	overrides := make(map[string]scoreconfig.PartialScoreConfig, len(c.Markets))
	var warnings []string

	ids := make([]string, 0, len(c.Markets))
	for id := range c.Markets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		override, err := DecodeOverride(c.Markets[id])
		code := market.Normalize(id)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("ignoring malformed score override for market %s: %s", code, err))
			continue
		}
		overrides[code] = override
	}
	return overrides, warnings
}

// DecodeOverride decodes a loosely typed override block. Unknown keys are an
// error.
func DecodeOverride(raw any) (scoreconfig.PartialScoreConfig, error) {
	var override scoreconfig.PartialScoreConfig
	if raw == nil {
		return override, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &override,
	})
	if err != nil {
		return override, err
	}
	if err := decoder.Decode(raw); err != nil {
		return scoreconfig.PartialScoreConfig{}, err
	}
	return override, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	ids := make([]string, 0, len(c.Markets))
	for id := range c.Markets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := market.Lookup(id); !ok {
			warnings = append(warnings, fmt.Sprintf("Score override for unsupported market %s will layer on %s defaults", market.Normalize(id), constants.DefaultMarket))
		}
	}

	for i, kw := range c.Keywords {
		name := kw.Keyword
		if strings.TrimSpace(name) == "" {
			warnings = append(warnings, fmt.Sprintf("Keyword #%d has no keyword text", i+1))
			name = fmt.Sprintf("#%d", i+1)
		}
		warnings = append(warnings, validation.ValidateKeywordInput(validation.KeywordInput{
			Name:            name,
			Market:          kw.Market,
			SearchVolume:    kw.SearchVolume,
			CompetitorCount: kw.CompetitorCount,
			Price:           kw.Price,
			RoyaltyPerSale:  kw.RoyaltyPerSale,
			TrafficSource:   kw.TrafficSource,
			SellingTitles:   string(kw.CatalogSignals.SellingTitles),
		})...)
		if kw.Status != "" {
			if _, ok := status.Parse(kw.Status); !ok {
				warnings = append(warnings, fmt.Sprintf("Keyword '%s' has unknown status %q which will be ignored", name, kw.Status))
			}
		}
	}

	return warnings
}
