// Package profile serves the signed-in user's overview: recent searches,
// saved strategies and upcoming trips.
package profile

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"tripwise/db"
	"tripwise/models"
	"tripwise/strategies"
	"tripwise/trips"
	"tripwise/utils"
)

type Store interface {
	ListSearchHistory(ctx context.Context, userID string, limit int64) ([]models.SearchHistory, error)
	DeleteSearchHistory(ctx context.Context, userID, id string) error
	ListSavedStrategies(ctx context.Context, userID string) ([]models.SavedStrategy, error)
	ListTrips(ctx context.Context, userID string) ([]models.Trip, error)
}

type Handler struct {
	store Store
	log   *zap.Logger
}

func NewHandler(store Store, log *zap.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// HistoryView is a past search with its result snapshot decoded.
type HistoryView struct {
	ID         string            `json:"id"`
	Query      string            `json:"query"`
	Degraded   bool              `json:"degraded"`
	Timestamp  time.Time         `json:"timestamp"`
	Strategies []models.Strategy `json:"strategies"`
}

type Overview struct {
	History []HistoryView          `json:"history"`
	Saved   []strategies.SavedView `json:"saved"`
	Trips   []trips.TripView       `json:"trips"`
}

func (h *Handler) historyViews(list []models.SearchHistory) []HistoryView {
	out := make([]HistoryView, 0, len(list))
	for _, hist := range list {
		ss, err := hist.Strategies()
		if err != nil {
			h.log.Warn("unreadable search snapshot", zap.String("id", hist.ID), zap.Error(err))
		}
		if ss == nil {
			ss = []models.Strategy{}
		}
		out = append(out, HistoryView{ID: hist.ID, Query: hist.Query, Degraded: hist.Degraded, Timestamp: hist.Timestamp, Strategies: ss})
	}
	return out
}

// GET /api/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)

	history, err := h.store.ListSearchHistory(ctx, userID, db.HistoryLimit)
	if err != nil {
		h.fail(w, "list history", userID, err)
		return
	}
	saved, err := h.store.ListSavedStrategies(ctx, userID)
	if err != nil {
		h.fail(w, "list strategies", userID, err)
		return
	}
	upcoming, err := h.store.ListTrips(ctx, userID)
	if err != nil {
		h.fail(w, "list trips", userID, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, Overview{
		History: h.historyViews(history),
		Saved:   strategies.SavedViews(saved, h.log),
		Trips:   trips.TripViews(upcoming),
	})
}

// GET /api/history
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	history, err := h.store.ListSearchHistory(r.Context(), userID, db.HistoryLimit)
	if err != nil {
		h.fail(w, "list history", userID, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, h.historyViews(history))
}

// DELETE /api/history/:id
func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	err := h.store.DeleteSearchHistory(r.Context(), userID, ps.ByName("id"))
	if errors.Is(err, db.ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Search not found")
		return
	}
	if err != nil {
		h.fail(w, "delete history", userID, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "deleted"})
}

func (h *Handler) fail(w http.ResponseWriter, op, userID string, err error) {
	h.log.Error(op, zap.String("user_id", userID), zap.Error(err))
	utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load profile data")
}
