package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/scoreconfig"
	"github.com/iwvelando/market-score/internal/scoring"
	"github.com/iwvelando/market-score/internal/status"
	"go.uber.org/zap"
)

type marketSummary struct {
	Code        string `json:"code"`
	Country     string `json:"country"`
	Currency    string `json:"currency"`
	Host        string `json:"host"`
	HasOverride bool   `json:"hasOverride"`
}

type marketsResponse struct {
	Markets  []marketSummary `json:"markets"`
	Warnings []string        `json:"warnings,omitempty"`
}

type marketConfigResponse struct {
	Market   string                  `json:"market"`
	Known    bool                    `json:"known"`
	Config   scoreconfig.ScoreConfig `json:"config"`
	Warnings []string                `json:"warnings,omitempty"`
}

type previewRequest struct {
	Market         string                     `json:"market"`
	Observation    market.Observation         `json:"observation"`
	Structural     market.StructuralChecklist `json:"structural"`
	CatalogSignals market.CatalogSignals      `json:"catalogSignals"`
}

type previewResponse struct {
	Market    string            `json:"market"`
	Breakdown scoring.Breakdown `json:"breakdown"`
	Status    status.Status     `json:"status"`
	Warnings  []string          `json:"warnings,omitempty"`
}

func (h *handler) handleListMarkets(w http.ResponseWriter, r *http.Request) {
	_, resolver := h.current()

	h.mu.RLock()
	warnings := append([]string(nil), h.warnings...)
	h.mu.RUnlock()

	list := market.Marketplaces()
	resp := marketsResponse{Markets: make([]marketSummary, 0, len(list)), Warnings: warnings}
	for _, mp := range list {
		resp.Markets = append(resp.Markets, marketSummary{
			Code:        mp.Code,
			Country:     mp.Country,
			Currency:    mp.Currency,
			Host:        mp.Host,
			HasOverride: resolver.HasOverride(mp.Code),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleMarketConfig(w http.ResponseWriter, r *http.Request) {
	code := market.Normalize(chi.URLParam(r, "market"))
	eng, _ := h.current()

	cfg, warnings := eng.Resolve(code)
	_, known := market.Lookup(code)
	h.writeJSON(w, http.StatusOK, marketConfigResponse{Market: code, Known: known, Config: cfg, Warnings: warnings})
}

func (h *handler) handlePutOverride(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutOverride"
	code := market.Normalize(chi.URLParam(r, "market"))
	if code == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "market is required", op)
		return
	}

	var override scoreconfig.PartialScoreConfig
	if !h.decodeBody(w, r, &override, op) {
		return
	}

	_, resolver := h.current()
	if problems := resolver.Check(code, override); len(problems) > 0 {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    "override would produce an invalid score configuration",
			"problems": problems,
		})
		return
	}

	if err := h.repo.SaveOverride(r.Context(), code, override); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	if !h.reload(w, r, op) {
		return
	}

	h.logger.Info("score override stored",
		zap.String("op", op),
		zap.String("market", code),
	)
	h.handleMarketConfig(w, r)
}

func (h *handler) handleDeleteOverride(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteOverride"
	code := market.Normalize(chi.URLParam(r, "market"))

	if err := h.repo.DeleteOverride(r.Context(), code); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	if !h.reload(w, r, op) {
		return
	}
	h.handleMarketConfig(w, r)
}

func (h *handler) reload(w http.ResponseWriter, r *http.Request, op string) bool {
	stored, warnings, err := h.repo.LoadOverrides(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return false
	}
	h.rebuild(stored, warnings)
	return true
}

func (h *handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePreview"
	var req previewRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	code := market.Normalize(req.Market)
	if strings.TrimSpace(code) == "" {
		code = market.LookupOrDefault("").Code
	}

	eng, _ := h.current()
	breakdown, warnings := eng.RecomputeOnly(req.Observation, req.Structural, req.CatalogSignals, code)
	cfg, _ := eng.Resolve(code)

	h.writeJSON(w, http.StatusOK, previewResponse{
		Market:    code,
		Breakdown: breakdown,
		Status:    status.Derive(breakdown.Total, cfg.StatusThresholds),
		Warnings:  warnings,
	})
}
