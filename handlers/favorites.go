package handlers

import (
	"context"
	"errors"
	"net/http"

	"flashplan/apperr"
	"flashplan/datastore"
	"flashplan/metrics"
	"flashplan/session"
	"flashplan/validation"

	"go.uber.org/zap"
)

type FavoriteHandler struct {
	favorites *datastore.FavoriteRepository
	plans     *datastore.PlanRepository
	sessions  *session.Manager
}

func NewFavoriteHandler(favorites *datastore.FavoriteRepository, plans *datastore.PlanRepository, sessions *session.Manager) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, plans: plans, sessions: sessions}
}

// ListFavorites handles GET /favorites
func (h *FavoriteHandler) ListFavorites(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	ids, err := h.favorites.ListPlanIDs(ctx, userID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	plans, err := h.plans.GetByIDs(ctx, ids)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"favoriteIds": ids,
		"plans":       plans,
	})
}

// ToggleFavorite handles POST /favorites
func (h *FavoriteHandler) ToggleFavorite(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	planID, err := validation.DecodePlanRef(r.Body)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if _, err := h.plans.GetByID(ctx, planID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			respondError(ctx, w, apperr.NotFound("Plan no encontrado"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	action, err := h.favorites.Toggle(ctx, userID, planID)
	if errors.Is(err, datastore.ErrFavoriteConflict) {
		metrics.RecordLedger("favorite", "conflict")
		respondError(ctx, w, apperr.Conflict("El favorito cambió mientras tanto, inténtalo de nuevo"))
		return
	}
	if err != nil {
		metrics.RecordLedger("favorite", "error")
		respondError(ctx, w, err)
		return
	}

	metrics.RecordLedger("favorite", string(action))
	logRequest(ctx, "info", "Favorite toggled",
		zap.String("user_id", userID), zap.String("plan_id", planID), zap.String("action", string(action)))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"action": action,
		"planId": planID,
	})
}
