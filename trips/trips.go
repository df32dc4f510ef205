// Package trips turns saved strategies into dated calendar entries.
package trips

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"tripwise/db"
	"tripwise/models"
	"tripwise/mq"
	"tripwise/utils"
)

// DefaultTripDays is used when no end date is given and no itinerary length is known.
const DefaultTripDays = 7

type Store interface {
	GetSavedStrategy(ctx context.Context, userID, id string) (models.SavedStrategy, error)
	CreateOrUpdateTrip(ctx context.Context, t models.Trip) (models.Trip, error)
	ListTrips(ctx context.Context, userID string) ([]models.Trip, error)
	DeleteTrip(ctx context.Context, userID, id string) error
}

type Events interface {
	Emit(ctx context.Context, name, userID, entityID string)
}

type Handler struct {
	store  Store
	events Events
	log    *zap.Logger
}

func NewHandler(store Store, events Events, log *zap.Logger) *Handler {
	return &Handler{store: store, events: events, log: log}
}

type tripRequest struct {
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	StrategyID  string `json:"strategy_id"`
}

var (
	errStartRequired       = errors.New("start_date is required")
	errDestinationRequired = errors.New("destination is required")
	errEndBeforeStart      = errors.New("end_date is before start_date")
)

// planTrip applies the date and destination defaults. linked is the saved
// strategy named by req.StrategyID, or nil for a manual trip.
func planTrip(userID string, req tripRequest, linked *models.SavedStrategy) (models.Trip, error) {
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return models.Trip{}, err
	}
	if start == nil {
		return models.Trip{}, errStartRequired
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return models.Trip{}, err
	}

	trip := models.Trip{
		UserID:      userID,
		Destination: strings.TrimSpace(req.Destination),
		StartDate:   *start,
	}

	days := DefaultTripDays
	if linked != nil {
		id := linked.ID
		trip.StrategyID = &id
		if trip.Destination == "" {
			trip.Destination = linked.Title
		}
		if details, err := linked.Details(); err == nil && len(details.Itinerary) > 0 {
			days = len(details.Itinerary)
		}
	}
	if trip.Destination == "" {
		return models.Trip{}, errDestinationRequired
	}

	if end != nil {
		trip.EndDate = *end
	} else {
		trip.EndDate = start.AddDate(0, 0, days)
	}
	if trip.EndDate.Before(trip.StartDate) {
		return models.Trip{}, errEndBeforeStart
	}
	return trip, nil
}

// POST /api/trips
func (h *Handler) CreateOrUpdate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	var req tripRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var linked *models.SavedStrategy
	if id := strings.TrimSpace(req.StrategyID); id != "" {
		ss, err := h.store.GetSavedStrategy(r.Context(), userID, id)
		if errors.Is(err, db.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Strategy not found")
			return
		}
		if err != nil {
			h.log.Error("load strategy for trip", zap.String("strategy_id", id), zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch strategy")
			return
		}
		linked = &ss
	}

	trip, err := planTrip(userID, req, linked)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.store.CreateOrUpdateTrip(r.Context(), trip)
	if err != nil {
		h.log.Error("save trip", zap.String("user_id", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save trip")
		return
	}
	h.events.Emit(r.Context(), mq.TripUpserted, userID, saved.ID)
	utils.RespondWithJSON(w, http.StatusOK, newTripView(saved))
}

// TripView renders dates as YYYY-MM-DD.
type TripView struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	StrategyID  *string   `json:"strategy_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTripView(t models.Trip) TripView {
	return TripView{
		ID:          t.ID,
		Destination: t.Destination,
		StartDate:   t.StartDate.Format(utils.DateLayout),
		EndDate:     t.EndDate.Format(utils.DateLayout),
		StrategyID:  t.StrategyID,
		UpdatedAt:   t.UpdatedAt,
	}
}

func TripViews(list []models.Trip) []TripView {
	out := make([]TripView, 0, len(list))
	for _, t := range list {
		out = append(out, newTripView(t))
	}
	return out
}

// GET /api/trips
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	list, err := h.store.ListTrips(r.Context(), userID)
	if err != nil {
		h.log.Error("list trips", zap.String("user_id", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch trips")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, TripViews(list))
}

// DELETE /api/trips/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	err := h.store.DeleteTrip(r.Context(), userID, ps.ByName("id"))
	switch {
	case errors.Is(err, db.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Trip not found")
	case err != nil:
		h.log.Error("delete trip", zap.String("user_id", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete trip")
	default:
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "deleted"})
	}
}
