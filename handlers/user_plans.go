package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"flashplan/apperr"
	"flashplan/datastore"
	"flashplan/metrics"
	"flashplan/models"
	"flashplan/session"
	"flashplan/validation"

	"go.uber.org/zap"
)

// UserPlanHandler serves the caller's memberships (joined plans).
type UserPlanHandler struct {
	memberships *datastore.MembershipRepository
	plans       *datastore.PlanRepository
	sessions    *session.Manager
	now         func() time.Time
}

func NewUserPlanHandler(memberships *datastore.MembershipRepository, plans *datastore.PlanRepository, sessions *session.Manager) *UserPlanHandler {
	return &UserPlanHandler{memberships: memberships, plans: plans, sessions: sessions, now: time.Now}
}

// ListUserPlans handles GET /user/plans
func (h *UserPlanHandler) ListUserPlans(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	memberships, err := h.memberships.ListForUser(ctx, userID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"plans": memberships})
}

// JoinPlan handles POST /user/plans. The snapshot comes from the
// catalogue, not from the request body.
func (h *UserPlanHandler) JoinPlan(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	planID, err := validation.DecodePlanRef(r.Body)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	plan, err := h.plans.GetByID(ctx, planID)
	if errors.Is(err, datastore.ErrNotFound) {
		respondError(ctx, w, apperr.NotFound("Plan no encontrado"))
		return
	}
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	now := h.now().UTC()
	err = h.memberships.Join(ctx, models.NewMembership(userID, plan, now), models.NewJoinedNotification(userID, plan, now))
	if errors.Is(err, datastore.ErrAlreadyJoined) {
		metrics.RecordLedger("join", "conflict")
		respondError(ctx, w, apperr.Conflict("Ya te has unido a este plan"))
		return
	}
	if err != nil {
		metrics.RecordLedger("join", "error")
		respondError(ctx, w, err)
		return
	}

	metrics.RecordLedger("join", "ok")
	logRequest(ctx, "info", "Plan joined", zap.String("user_id", userID), zap.String("plan_id", planID))
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateUserPlan handles PUT /user/plans
func (h *UserPlanHandler) UpdateUserPlan(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	cmd, err := validation.DecodeStatusChange(r.Body)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	err = h.memberships.SetStatus(ctx, userID, cmd.PlanID, cmd.Status)
	switch {
	case errors.Is(err, datastore.ErrMembershipNotFound):
		metrics.RecordLedger("set_status", "not_found")
		respondError(ctx, w, apperr.NotFound("No te has unido a este plan"))
		return
	case errors.Is(err, datastore.ErrInvalidTransition):
		metrics.RecordLedger("set_status", "invalid_transition")
		respondError(ctx, w, apperr.Conflict("Un plan completado no puede volver a estar pendiente"))
		return
	case err != nil:
		metrics.RecordLedger("set_status", "error")
		respondError(ctx, w, err)
		return
	}

	metrics.RecordLedger("set_status", "ok")
	logRequest(ctx, "info", "Plan status updated",
		zap.String("user_id", userID), zap.String("plan_id", cmd.PlanID), zap.String("status", string(cmd.Status)))
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CancelUserPlan handles DELETE /user/plans. Cancelling a plan that was
// never joined succeeds without changing anything.
func (h *UserPlanHandler) CancelUserPlan(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	planID, err := validation.DecodePlanRef(r.Body)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	removed, err := h.memberships.Cancel(ctx, userID, planID)
	if err != nil {
		metrics.RecordLedger("cancel", "error")
		respondError(ctx, w, err)
		return
	}

	result := "ok"
	if !removed {
		result = "noop"
	}
	metrics.RecordLedger("cancel", result)
	logRequest(ctx, "info", "Plan cancelled",
		zap.String("user_id", userID), zap.String("plan_id", planID), zap.Bool("removed", removed))
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
