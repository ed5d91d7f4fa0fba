package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/scoreconfig"
	"go.uber.org/zap"
)

// SaveOverride stores the override for marketID, replacing any earlier one.
func (s *Store) SaveOverride(ctx context.Context, marketID string, override scoreconfig.PartialScoreConfig) error {
	body, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("failed to encode override: %w", err)
	}
	code := market.Normalize(marketID)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO score_overrides (market, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(market) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		code, string(body), s.timestamp())
	if err != nil {
		return fmt.Errorf("failed to save override for %s: %w", code, err)
	}
	return nil
}

// DeleteOverride removes the stored override for marketID if there is one.
func (s *Store) DeleteOverride(ctx context.Context, marketID string) error {
	code := market.Normalize(marketID)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM score_overrides WHERE market = ?`, code); err != nil {
		return fmt.Errorf("failed to delete override for %s: %w", code, err)
	}
	return nil
}

// LoadOverrides returns every stored override keyed by market. A row whose
// body no longer decodes is skipped and reported as a warning.
func (s *Store) LoadOverrides(ctx context.Context) (map[string]scoreconfig.PartialScoreConfig, []string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT market, body FROM score_overrides ORDER BY market`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	overrides := make(map[string]scoreconfig.PartialScoreConfig)
	var warnings []string
	for rows.Next() {
		var code, body string
		if err := rows.Scan(&code, &body); err != nil {
			return nil, nil, fmt.Errorf("failed to scan override: %w", err)
		}
		var override scoreconfig.PartialScoreConfig
		if err := json.Unmarshal([]byte(body), &override); err != nil {
			warning := fmt.Sprintf("ignoring unreadable stored score override for market %s: %s", code, err)
			warnings = append(warnings, warning)
			s.logger.Warn(warning, zap.String("op", "store.LoadOverrides"))
			continue
		}
		overrides[code] = override
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	return overrides, warnings, nil
}
