// Package report scores every keyword listed in a configuration file.
package report

import (
	"fmt"

	"github.com/iwvelando/market-score/internal/config"
	"github.com/iwvelando/market-score/internal/engine"
	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/internal/scoreconfig"
	"go.uber.org/zap"
)

// GetReport builds a record for every configured keyword, in configuration
// order, and returns them with the warnings raised along the way.
func GetReport(logger *zap.Logger, conf config.Configuration) ([]keyword.Record, []string) {
	if logger == nil {
		logger = zap.NewNop()
	}

	overrides, warnings := conf.ScoreOverrides()
	eng := engine.New(logger, scoreconfig.NewResolver(nil, overrides))

	seen := make(map[string]bool)
	results := make([]keyword.Record, 0, len(conf.Keywords))
	for _, input := range conf.Keywords {
		rec, created := eng.Create(input.Keyword, input.Market)
		result := eng.Evaluate(rec, input.Update())

		for _, w := range append(created, result.Warnings...) {
			if !seen[w] {
				seen[w] = true
				warnings = append(warnings, w)
			}
		}

		logger.Debug(fmt.Sprintf("scored keyword %s", result.Record.Keyword),
			zap.String("op", "report.GetReport"),
			zap.String("market", result.Record.Market),
			zap.Int("score", result.Record.MarketScore),
			zap.String("status", string(result.Record.Lifecycle.Status)),
		)
		results = append(results, result.Record)
	}

	return results, warnings
}
