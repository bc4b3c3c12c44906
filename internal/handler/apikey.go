package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/eventwish/wishadmin/internal/auth"
	"github.com/eventwish/wishadmin/internal/handler/dto"
	"github.com/eventwish/wishadmin/internal/model"
	"github.com/eventwish/wishadmin/internal/repository"
)

// APIKeyHandler manages the keys back-office operators use to reach
// the admin API. The plaintext key is returned once at creation and
// never stored; only its hash and display prefix persist.
type APIKeyHandler struct {
	logger *slog.Logger
	repo   *repository.Repository
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(logger *slog.Logger, repo *repository.Repository) *APIKeyHandler {
	return &APIKeyHandler{
		logger: logger,
		repo:   repo,
	}
}

// CreateAPIKey handles POST /api/v1/api-keys.
func (h *APIKeyHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := auth.AuthFromContext(ctx)
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req model.APIKeyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	for _, scope := range req.Scopes {
		if !slices.Contains(model.ValidScopes, scope) {
			h.writeError(w, http.StatusBadRequest, "INVALID_SCOPE",
				"Unknown scope "+scope+"; valid scopes are read, write, admin")
			return
		}
	}

	// A key issued without scopes can only read dashboards.
	if len(req.Scopes) == 0 {
		req.Scopes = []string{model.ScopeRead}
	}

	generated, err := auth.GenerateAPIKey(auth.EnvLive)
	if err != nil {
		h.logger.Error("api_key_generate_failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate API key")
		return
	}

	apiKey := &model.APIKey{
		ID:            ulid.Make().String(),
		UserID:        authCtx.UserID,
		KeyHash:       generated.Hash,
		KeyPrefix:     generated.Prefix,
		Scopes:        req.Scopes,
		RateLimitTier: model.TierDefault,
		Name:          req.Name,
		CreatedAt:     time.Now(),
	}

	if err := h.repo.CreateAPIKey(ctx, apiKey); err != nil {
		h.logger.Error("api_key_create_failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create API key")
		return
	}

	h.logger.Info("api_key_created",
		"key_id", apiKey.ID,
		"key_prefix", apiKey.KeyPrefix,
		"user_id", apiKey.UserID,
	)

	// The only response that ever carries the plaintext key.
	writeJSON(w, http.StatusCreated, model.APIKeyCreateResponse{
		ID:            apiKey.ID,
		Key:           generated.Plaintext,
		Name:          apiKey.Name,
		KeyPrefix:     apiKey.KeyPrefix,
		Scopes:        apiKey.Scopes,
		RateLimitTier: apiKey.RateLimitTier,
		CreatedAt:     apiKey.CreatedAt,
	})
}

// ListAPIKeys handles GET /api/v1/api-keys.
// Lists the caller's own keys, prefixes only.
func (h *APIKeyHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := auth.AuthFromContext(ctx)
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	keys, err := h.repo.ListAPIKeysByUserID(ctx, authCtx.UserID)
	if err != nil {
		h.logger.Error("api_key_list_failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list API keys")
		return
	}

	responses := make([]model.APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		responses = append(responses, key.ToResponse())
	}

	writeJSON(w, http.StatusOK, map[string]any{"keys": responses})
}

// RevokeAPIKey handles DELETE /api/v1/api-keys/{key_id}.
// Missing, foreign and already-revoked keys all answer 404 so a caller
// cannot probe which key IDs exist.
func (h *APIKeyHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := auth.AuthFromContext(ctx)
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	keyID := chi.URLParam(r, "key_id")
	if keyID == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_KEY_ID", "Key ID is required")
		return
	}

	key, err := h.repo.GetAPIKeyByID(ctx, keyID)
	if err != nil || key.UserID != authCtx.UserID || key.IsRevoked() {
		h.writeError(w, http.StatusNotFound, "KEY_NOT_FOUND", "API key not found or already revoked")
		return
	}

	if err := h.repo.RevokeAPIKey(ctx, keyID); err != nil {
		h.logger.Error("api_key_revoke_failed", "error", err, "key_id", keyID)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke API key")
		return
	}

	h.logger.Info("api_key_revoked",
		"key_id", keyID,
		"user_id", authCtx.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// RotateAPIKey handles POST /api/v1/api-keys/{key_id}/rotate.
// Issues a fresh key with the old key's name, scopes and tier, then
// revokes the old one. The new key is created first so the operator is
// never left without a working credential.
func (h *APIKeyHandler) RotateAPIKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := auth.AuthFromContext(ctx)
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	keyID := chi.URLParam(r, "key_id")
	if keyID == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_KEY_ID", "Key ID is required")
		return
	}

	oldKey, err := h.repo.GetAPIKeyByID(ctx, keyID)
	if err != nil || oldKey.UserID != authCtx.UserID || oldKey.IsRevoked() {
		h.writeError(w, http.StatusNotFound, "KEY_NOT_FOUND", "API key not found or already revoked")
		return
	}

	generated, err := auth.GenerateAPIKey(auth.EnvLive)
	if err != nil {
		h.logger.Error("api_key_generate_failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate API key")
		return
	}

	now := time.Now()
	newKey := &model.APIKey{
		ID:            ulid.Make().String(),
		UserID:        oldKey.UserID,
		KeyHash:       generated.Hash,
		KeyPrefix:     generated.Prefix,
		Scopes:        oldKey.Scopes,
		RateLimitTier: oldKey.RateLimitTier,
		Name:          oldKey.Name,
		CreatedAt:     now,
	}

	if err := h.repo.CreateAPIKey(ctx, newKey); err != nil {
		h.logger.Error("api_key_rotate_failed", "error", err, "key_id", oldKey.ID)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to rotate API key")
		return
	}

	if err := h.repo.RevokeAPIKey(ctx, oldKey.ID); err != nil {
		// The replacement already exists; the operator can revoke the
		// old key separately.
		h.logger.Error("api_key_rotate_revoke_failed", "error", err, "key_id", oldKey.ID)
	}

	h.logger.Info("api_key_rotated",
		"old_key_id", oldKey.ID,
		"new_key_id", newKey.ID,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusCreated, model.APIKeyRotateResponse{
		OldKeyID:        oldKey.ID,
		OldKeyRevokedAt: now,
		NewKey: model.APIKeyCreateResponse{
			ID:            newKey.ID,
			Key:           generated.Plaintext,
			Name:          newKey.Name,
			KeyPrefix:     newKey.KeyPrefix,
			Scopes:        newKey.Scopes,
			RateLimitTier: newKey.RateLimitTier,
			CreatedAt:     newKey.CreatedAt,
		},
	})
}

func (h *APIKeyHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
