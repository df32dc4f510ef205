// Package settings manages a user's own provider API keys.
package settings

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"tripwise/llm"
	"tripwise/models"
	"tripwise/mq"
	"tripwise/utils"
)

type Sealer interface {
	SealKeys(userID string, plain map[models.Provider]string) (models.ProviderKeys, error)
}

type KeyStore interface {
	GetProviderKeys(ctx context.Context, userID string) (*models.ProviderKeys, error)
	SetProviderKeys(ctx context.Context, keys models.ProviderKeys) error
}

type Events interface {
	Emit(ctx context.Context, name, userID, entityID string)
}

type Handler struct {
	sealer   Sealer
	store    KeyStore
	adapters []llm.Adapter
	events   Events
	log      *zap.Logger
}

func NewHandler(sealer Sealer, store KeyStore, adapters []llm.Adapter, events Events, log *zap.Logger) *Handler {
	return &Handler{sealer: sealer, store: store, adapters: adapters, events: events, log: log}
}

type keysResponse struct {
	Configured map[models.Provider]bool `json:"configured"`
}

// GET /api/settings/keys reports which providers have a stored key. Values are never returned.
func (h *Handler) GetKeys(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	keys, err := h.store.GetProviderKeys(r.Context(), userID)
	if err != nil {
		h.log.Error("load provider keys", zap.String("user_id", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load keys")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, keysResponse{Configured: keys.Configured()})
}

type updateRequest struct {
	GeminiKey    string `json:"gemini_key"`
	OpenAIKey    string `json:"openai_key"`
	AnthropicKey string `json:"anthropic_key"`
}

// PUT /api/settings/keys replaces all three keys; a blank or missing key clears it.
func (h *Handler) UpdateKeys(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	var req updateRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sealed, err := h.sealer.SealKeys(userID, map[models.Provider]string{
		models.ProviderGemini:    req.GeminiKey,
		models.ProviderOpenAI:    req.OpenAIKey,
		models.ProviderAnthropic: req.AnthropicKey,
	})
	if err != nil {
		h.log.Error("seal provider keys", zap.String("user_id", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to encrypt keys")
		return
	}
	if err := h.store.SetProviderKeys(r.Context(), sealed); err != nil {
		h.log.Error("store provider keys", zap.String("user_id", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save keys")
		return
	}
	h.events.Emit(r.Context(), mq.CredentialsUpdated, userID, "")
	utils.RespondWithJSON(w, http.StatusOK, keysResponse{Configured: sealed.Configured()})
}

type verifyRequest struct {
	Provider string `json:"provider"`
	Key      string `json:"key"`
}

type verifyResponse struct {
	Provider models.Provider `json:"provider"`
	Valid    bool            `json:"valid"`
	Reason   llm.ErrorKind   `json:"reason,omitempty"`
}

// POST /api/settings/keys/verify makes a minimal live call with a candidate key.
// A rejected key is a normal 200 answer with valid=false.
func (h *Handler) VerifyKey(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req verifyRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := models.ParseProvider(req.Provider)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "key is required")
		return
	}
	adapter, ok := llm.Find(h.adapters, p)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "provider not enabled")
		return
	}

	resp := verifyResponse{Provider: p, Valid: true}
	if err := adapter.Verify(r.Context(), key); err != nil {
		resp.Valid = false
		resp.Reason = llm.KindOf(err)
		h.log.Info("key verification failed", zap.String("provider", string(p)), zap.String("kind", string(resp.Reason)))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
