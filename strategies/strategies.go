// Package strategies serves strategy generation, critique and the saved-strategy collection.
package strategies

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"tripwise/db"
	"tripwise/export"
	"tripwise/models"
	"tripwise/mq"
	"tripwise/normalize"
	"tripwise/pipeline"
	"tripwise/utils"
)

// Generator is the strategy pipeline.
type Generator interface {
	Run(ctx context.Context, userID, problem, origin string) pipeline.Result
	CritiqueStrategy(ctx context.Context, userID string, s models.Strategy) (normalize.Critique, []pipeline.Attempt)
}

type Store interface {
	CreateSearchHistory(ctx context.Context, userID, query string, results []models.Strategy, degraded bool) (models.SearchHistory, error)
	CreateSavedStrategy(ctx context.Context, ss models.SavedStrategy) (models.SavedStrategy, error)
	ListSavedStrategies(ctx context.Context, userID string) ([]models.SavedStrategy, error)
	GetSavedStrategy(ctx context.Context, userID, id string) (models.SavedStrategy, error)
	DeleteSavedStrategy(ctx context.Context, userID, id string) error
}

type Events interface {
	Emit(ctx context.Context, name, userID, entityID string)
}

type Handler struct {
	gen       Generator
	store     Store
	events    Events
	publicURL string
	log       *zap.Logger
}

func NewHandler(gen Generator, store Store, events Events, publicURL string, log *zap.Logger) *Handler {
	return &Handler{gen: gen, store: store, events: events, publicURL: strings.TrimRight(publicURL, "/"), log: log}
}

type analyzeRequest struct {
	Problem string `json:"problem"`
	Origin  string `json:"origin"`
}

type analyzeResponse struct {
	Problem    string            `json:"problem"`
	Strategies []models.Strategy `json:"strategies"`
	Degraded   bool              `json:"degraded"`
	Warning    string            `json:"warning,omitempty"`
	Provider   models.Provider   `json:"provider,omitempty"`
}

// POST /api/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req analyzeRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Problem = strings.TrimSpace(req.Problem)
	if req.Problem == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "problem is required")
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	res := h.gen.Run(r.Context(), userID, req.Problem, req.Origin)

	if userID != "" {
		hist, err := h.store.CreateSearchHistory(r.Context(), userID, req.Problem, res.Strategies, res.Degraded)
		if err != nil {
			h.log.Error("save search history", zap.String("user_id", userID), zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save search")
			return
		}
		h.events.Emit(r.Context(), mq.SearchCreated, userID, hist.ID)
	}

	utils.RespondWithJSON(w, http.StatusOK, analyzeResponse{
		Problem:    req.Problem,
		Strategies: res.Strategies,
		Degraded:   res.Degraded,
		Warning:    res.Warning,
		Provider:   res.Provider,
	})
}

// POST /api/critique
func (h *Handler) Critique(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var s models.Strategy
	if err := utils.DecodeJSON(w, r, &s); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.Valid() {
		utils.RespondWithError(w, http.StatusBadRequest, "title and summary are required")
		return
	}
	c, _ := h.gen.CritiqueStrategy(r.Context(), utils.GetUserIDFromRequest(r), s)
	utils.RespondWithJSON(w, http.StatusOK, c)
}

// POST /api/strategies
func (h *Handler) Save(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	var s models.Strategy
	if err := utils.DecodeJSON(w, r, &s); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(s.Title) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "title is required")
		return
	}

	ss, err := models.NewSavedStrategy(userID, s)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.store.CreateSavedStrategy(r.Context(), ss)
	if err != nil {
		h.log.Error("save strategy", zap.String("user_id", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save strategy")
		return
	}
	h.events.Emit(r.Context(), mq.StrategySaved, userID, saved.ID)

	view, _ := newSavedView(saved)
	utils.RespondWithJSON(w, http.StatusCreated, view)
}

// SavedView is a saved strategy with its content decoded.
type SavedView struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Critique  string                 `json:"critique,omitempty"`
	Score     float64                `json:"score"`
	CreatedAt time.Time              `json:"created_at"`
	Details   models.StrategyContent `json:"details"`
}

func newSavedView(ss models.SavedStrategy) (SavedView, error) {
	details, err := ss.Details()
	return SavedView{
		ID:        ss.ID,
		Title:     ss.Title,
		Critique:  ss.Critique,
		Score:     ss.Score,
		CreatedAt: ss.CreatedAt,
		Details:   details,
	}, err
}

// SavedViews decodes a list, skipping records whose content is unreadable.
func SavedViews(list []models.SavedStrategy, log *zap.Logger) []SavedView {
	out := make([]SavedView, 0, len(list))
	for _, ss := range list {
		v, err := newSavedView(ss)
		if err != nil {
			log.Warn("skip unreadable saved strategy", zap.String("id", ss.ID), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

// GET /api/strategies
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	list, err := h.store.ListSavedStrategies(r.Context(), userID)
	if err != nil {
		h.log.Error("list strategies", zap.String("user_id", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch strategies")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, SavedViews(list, h.log))
}

// GET /api/strategies/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ss, ok := h.load(w, r, ps.ByName("id"))
	if !ok {
		return
	}
	view, err := newSavedView(ss)
	if err != nil {
		h.log.Error("decode strategy", zap.String("id", ss.ID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Stored strategy is unreadable")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view)
}

// DELETE /api/strategies/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	err := h.store.DeleteSavedStrategy(r.Context(), userID, ps.ByName("id"))
	switch {
	case errors.Is(err, db.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Strategy not found")
	case err != nil:
		h.log.Error("delete strategy", zap.String("user_id", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete strategy")
	default:
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "deleted"})
	}
}

// GET /api/strategies/:id/pdf
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ss, ok := h.load(w, r, ps.ByName("id"))
	if !ok {
		return
	}
	doc, err := export.StrategyPDF(ss, h.shareURL(ss.ID))
	if err != nil {
		h.log.Error("render strategy pdf", zap.String("id", ss.ID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=strategy-%s.pdf", ss.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (h *Handler) shareURL(id string) string {
	if h.publicURL == "" {
		return ""
	}
	return h.publicURL + "/strategies/" + id
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request, id string) (models.SavedStrategy, bool) {
	userID := utils.GetUserIDFromRequest(r)
	ss, err := h.store.GetSavedStrategy(r.Context(), userID, id)
	if errors.Is(err, db.ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Strategy not found")
		return ss, false
	}
	if err != nil {
		h.log.Error("get strategy", zap.String("id", id), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch strategy")
		return ss, false
	}
	return ss, true
}
