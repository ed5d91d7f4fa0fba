package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/market-score/internal/journal"
	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/pkg/constants"
	"go.uber.org/zap"
)

type keywordResponse struct {
	Record      keyword.Record  `json:"record"`
	Recomputed  bool            `json:"recomputed"`
	Significant []journal.Entry `json:"significant,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
}

type keywordListResponse struct {
	Keywords []keyword.Record `json:"keywords"`
}

func (h *handler) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		h.respondStoreError(w, err, "server.handleListKeywords")
		return
	}
	if records == nil {
		records = []keyword.Record{}
	}
	h.writeJSON(w, http.StatusOK, keywordListResponse{Keywords: records})
}

func (h *handler) handleCreateKeyword(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateKeyword"
	var update keyword.Update
	if !h.decodeBody(w, r, &update, op) {
		return
	}
	if update.Keyword == nil || strings.TrimSpace(*update.Keyword) == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "keyword is required", op)
		return
	}

	marketID := constants.DefaultMarket
	if update.Market != nil && strings.TrimSpace(*update.Market) != "" {
		marketID = *update.Market
	}
	eng, _ := h.current()
	rec, warnings := eng.Create(*update.Keyword, marketID)

	update.Keyword = nil
	update.Market = nil
	result := eng.Evaluate(rec, update)
	result.Warnings = append(warnings, result.Warnings...)

	if err := h.repo.Save(r.Context(), result.Record); err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	h.logger.Info("keyword created",
		zap.String("op", op),
		zap.String("id", result.Record.ID),
		zap.String("keyword", result.Record.Keyword),
		zap.String("market", result.Record.Market),
		zap.Int("score", result.Record.MarketScore),
	)
	h.writeJSON(w, http.StatusCreated, keywordResponse{
		Record:      result.Record,
		Recomputed:  true,
		Significant: result.Significant,
		Warnings:    result.Warnings,
	})
}

func (h *handler) handleGetKeyword(w http.ResponseWriter, r *http.Request) {
	rec, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err, "server.handleGetKeyword")
		return
	}
	h.writeJSON(w, http.StatusOK, keywordResponse{Record: rec})
}

func (h *handler) handleUpdateKeyword(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpdateKeyword"
	id := chi.URLParam(r, "id")

	var update keyword.Update
	if !h.decodeBody(w, r, &update, op) {
		return
	}

	unlock := h.locks.Lock(id)
	defer unlock()

	rec, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	eng, _ := h.current()
	result := eng.Evaluate(rec, update)
	if !update.IsEmpty() {
		if err := h.repo.Save(r.Context(), result.Record); err != nil {
			h.respondStoreError(w, err, op)
			return
		}
	}

	h.writeJSON(w, http.StatusOK, keywordResponse{
		Record:      result.Record,
		Recomputed:  result.Recomputed,
		Significant: result.Significant,
		Warnings:    result.Warnings,
	})
}

func (h *handler) handleDeleteKeyword(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteKeyword"
	id := chi.URLParam(r, "id")

	unlock := h.locks.Lock(id)
	defer unlock()

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleResetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleResetStatus"
	id := chi.URLParam(r, "id")

	unlock := h.locks.Lock(id)
	defer unlock()

	rec, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	eng, _ := h.current()
	next, warnings := eng.ResetStatusToAutomatic(rec)
	if err := h.repo.Save(r.Context(), next); err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, keywordResponse{Record: next, Warnings: warnings})
}
