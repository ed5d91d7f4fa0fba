// Package engine coordinates a keyword update: it merges the change,
// journals tracked fields, and recomputes score and status when market
// inputs moved.
package engine

import (
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/market-score/internal/journal"
	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/scoreconfig"
	"github.com/iwvelando/market-score/internal/scoring"
	"github.com/iwvelando/market-score/internal/status"
	"go.uber.org/zap"
)

// ConfigResolver supplies the score configuration for a market along with
// any non-fatal warnings.
type ConfigResolver interface {
	Resolve(marketID string) (scoreconfig.ScoreConfig, []string)
}

// Orchestrator is safe for concurrent use on different records. Updates to
// the same record must be serialised by the caller.
type Orchestrator struct {
	logger   *zap.Logger
	resolver ConfigResolver
	journal  *journal.Journal
}

// Evaluation is the outcome of one update.
type Evaluation struct {
	Record keyword.Record
	// Recomputed is true when market inputs changed and the score was rebuilt.
	Recomputed bool
	// Significant holds the new history entries whose numeric change passed
	// the significance threshold.
	Significant []journal.Entry
	Warnings    []string
}

// New returns an orchestrator backed by resolver. A nil resolver uses the
// built-in defaults without overrides.
func New(logger *zap.Logger, resolver ConfigResolver) *Orchestrator {
	return NewWithJournal(logger, resolver, journal.New())
}

// NewWithJournal returns an orchestrator that stamps history through j.
func NewWithJournal(logger *zap.Logger, resolver ConfigResolver, j *journal.Journal) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = scoreconfig.NewResolver(nil, nil)
	}
	if j == nil {
		j = journal.New()
	}
	return &Orchestrator{logger: logger, resolver: resolver, journal: j}
}

// Create builds a new record with a default observation, scored and with an
// automatic status.
func (o *Orchestrator) Create(term, marketID string) (keyword.Record, []string) {
	rec := keyword.Record{
		ID:             uuid.NewString(),
		Keyword:        strings.TrimSpace(term),
		Market:         market.Normalize(marketID),
		Observation:    market.DefaultObservation(),
		CatalogSignals: market.CatalogSignals{SellingTitles: market.CatalogNone},
	}

	cfg, warnings := o.resolve(rec.Market, "engine.Create")
	rec = rescore(rec, cfg)

	o.logger.Debug("keyword created",
		zap.String("op", "engine.Create"),
		zap.String("id", rec.ID),
		zap.String("market", rec.Market),
		zap.Int("score", rec.MarketScore),
	)
	return rec, warnings
}

// Evaluate applies update to rec and returns the resulting record as one
// value. History gains one entry per tracked or audited field whose value
// changed, in the order the fields were supplied. When any market input
// changed the score is recomputed and, unless the status was set by hand,
// the status is re-derived. An empty update returns rec unchanged.
func (o *Orchestrator) Evaluate(rec keyword.Record, update keyword.Update) Evaluation {
	result := Evaluation{Record: rec}
	if update.IsEmpty() {
		return result
	}

	next := keyword.Apply(rec, update)

	var entries []journal.Entry
	for _, field := range update.Fields() {
		if !update.Audited(field) {
			continue
		}
		oldValue, newValue := rec.Value(field), next.Value(field)
		entry := o.journal.Diff(field, oldValue, newValue)
		if entry == nil {
			continue
		}
		entries = append(entries, *entry)
		if journal.IsSignificantChange(field, oldValue, newValue) {
			result.Significant = append(result.Significant, *entry)
		}
	}

	if !next.MarketInputsEqual(rec) {
		cfg, warnings := o.resolve(next.Market, "engine.Evaluate")
		result.Warnings = warnings
		next = rescore(next, cfg)
		result.Recomputed = true

		o.logger.Debug("keyword rescored",
			zap.String("op", "engine.Evaluate"),
			zap.String("id", next.ID),
			zap.Int("previousScore", rec.MarketScore),
			zap.Int("score", next.MarketScore),
			zap.String("status", string(next.Lifecycle.Status)),
			zap.Bool("manuallySet", next.Lifecycle.ManuallySet),
		)
	}

	next.History = journal.Append(rec.History, entries...)
	for _, entry := range result.Significant {
		o.logger.Info("significant change",
			zap.String("op", "engine.Evaluate"),
			zap.String("id", next.ID),
			zap.String("field", string(entry.Field)),
			zap.Any("old", entry.OldValue),
			zap.Any("new", entry.NewValue),
		)
	}

	result.Record = next
	return result
}

// RecomputeOnly scores the given inputs for marketID without touching any
// record or journal. Used for previews.
func (o *Orchestrator) RecomputeOnly(obs market.Observation, structural market.StructuralChecklist, catalog market.CatalogSignals, marketID string) (scoring.Breakdown, []string) {
	cfg, warnings := o.resolve(marketID, "engine.RecomputeOnly")
	return scoring.Calculate(obs, structural, catalog, cfg), warnings
}

// ResetStatusToAutomatic clears the manual flag and re-derives the status from
// the record's current score. A resulting status change is journaled.
func (o *Orchestrator) ResetStatusToAutomatic(rec keyword.Record) (keyword.Record, []string) {
	cfg, warnings := o.resolve(rec.Market, "engine.ResetStatusToAutomatic")

	next := rec
	next.Lifecycle = status.ResetToAutomatic(rec.Lifecycle, rec.MarketScore, cfg.StatusThresholds)
	if entry := o.journal.Diff(journal.FieldStatus, rec.Value(journal.FieldStatus), next.Value(journal.FieldStatus)); entry != nil {
		next.History = journal.Append(rec.History, *entry)
	}
	return next, warnings
}

// Resolve exposes the resolver so callers can show the effective config.
func (o *Orchestrator) Resolve(marketID string) (scoreconfig.ScoreConfig, []string) {
	return o.resolve(marketID, "engine.Resolve")
}

func (o *Orchestrator) resolve(marketID, op string) (scoreconfig.ScoreConfig, []string) {
	cfg, warnings := o.resolver.Resolve(marketID)
	for _, warning := range warnings {
		o.logger.Warn("Configuration warning: "+warning,
			zap.String("op", op),
			zap.String("market", marketID),
		)
	}
	return cfg, warnings
}

func rescore(rec keyword.Record, cfg scoreconfig.ScoreConfig) keyword.Record {
	rec.Breakdown = scoring.Calculate(rec.Observation, rec.Structural, rec.CatalogSignals, cfg)
	rec.MarketScore = rec.Breakdown.Total
	rec.Lifecycle = status.Apply(rec.Lifecycle, rec.MarketScore, cfg.StatusThresholds)
	return rec
}
