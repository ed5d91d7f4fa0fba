package scoreconfig

import (
	"fmt"
	"strings"

	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/pkg/constants"
)

// Resolver returns the effective ScoreConfig for a market. It holds no global
// state: defaults and overrides are injected at construction and never
// modified afterwards.
type Resolver struct {
	defaults  map[string]ScoreConfig
	overrides map[string]PartialScoreConfig
}

// NewResolver builds a resolver over the given per-market defaults and user
// overrides. A nil defaults map selects BuiltInDefaults. Both maps are copied
// and their keys canonicalised with market.Normalize.
func NewResolver(defaults map[string]ScoreConfig, overrides map[string]PartialScoreConfig) *Resolver {
	if defaults == nil {
		defaults = BuiltInDefaults()
	}

	r := &Resolver{
		defaults:  make(map[string]ScoreConfig, len(defaults)),
		overrides: make(map[string]PartialScoreConfig, len(overrides)),
	}
	for id, cfg := range defaults {
		r.defaults[market.Normalize(id)] = cfg.Clone()
	}
	for id, override := range overrides {
		r.overrides[market.Normalize(id)] = override
	}
	return r
}

// Resolve returns the config for marketID and any non-fatal warnings. Unknown
// markets use the global default. An override that would make the config
// invalid is ignored and reported as a warning. Repeated calls with the same
// id return structurally equal configs.
func (r *Resolver) Resolve(marketID string) (ScoreConfig, []string) {
	id := market.Normalize(marketID)
	var warnings []string

	base := r.base(id, &warnings)

	override, ok := r.overrides[id]
	if !ok || override.IsEmpty() {
		return base.Clone(), warnings
	}

	merged := Merge(base, override)
	if problems := merged.Validate(); len(problems) > 0 {
		warnings = append(warnings, fmt.Sprintf("ignoring score override for market %s: %s", id, strings.Join(problems, "; ")))
		return base.Clone(), warnings
	}
	return merged, warnings
}

// HasOverride reports whether a non-empty override is stored for marketID.
func (r *Resolver) HasOverride(marketID string) bool {
	override, ok := r.overrides[market.Normalize(marketID)]
	return ok && !override.IsEmpty()
}

func (r *Resolver) base(id string, warnings *[]string) ScoreConfig {
	if cfg, ok := r.defaults[id]; ok {
		problems := cfg.Validate()
		if len(problems) == 0 {
			return cfg
		}
		*warnings = append(*warnings, fmt.Sprintf("ignoring invalid defaults for market %s: %s", id, strings.Join(problems, "; ")))
	}

	if cfg, ok := r.defaults[constants.DefaultMarket]; ok && id != constants.DefaultMarket {
		if len(cfg.Validate()) == 0 {
			return cfg
		}
	}
	return Default()
}

// Check reports the problems override would cause if it were stored for
// marketID. An empty result means Resolve would accept it.
func (r *Resolver) Check(marketID string, override PartialScoreConfig) []string {
	id := market.Normalize(marketID)
	var ignored []string
	return Merge(r.base(id, &ignored), override).Validate()
}
