package handlers

import (
	"context"
	"errors"
	"net/http"

	"flashplan/apperr"
	"flashplan/datastore"
	"flashplan/session"
	"flashplan/validation"

	"go.uber.org/zap"
)

const msgNotificationNotFound = "Notificación no encontrada"

type NotificationHandler struct {
	notifications *datastore.NotificationRepository
	sessions      *session.Manager
}

func NewNotificationHandler(notifications *datastore.NotificationRepository, sessions *session.Manager) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, sessions: sessions}
}

// ListNotifications handles GET /notifications
func (h *NotificationHandler) ListNotifications(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	notifications, err := h.notifications.ListForUser(ctx, userID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

// UpdateNotifications handles PUT /notifications: one id, or markAllRead.
func (h *NotificationHandler) UpdateNotifications(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	cmd, err := validation.DecodeNotificationUpdate(r.Body)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if cmd.MarkAllRead {
		n, err := h.notifications.MarkAllRead(ctx, userID)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		logRequest(ctx, "info", "Notifications marked read", zap.String("user_id", userID), zap.Int64("count", n))
	} else {
		err := h.notifications.MarkRead(ctx, userID, cmd.NotificationID)
		if errors.Is(err, datastore.ErrNotFound) {
			respondError(ctx, w, apperr.NotFound(msgNotificationNotFound))
			return
		}
		if err != nil {
			respondError(ctx, w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteNotification handles DELETE /notifications
func (h *NotificationHandler) DeleteNotification(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	ref, err := validation.DecodeNotificationRef(r.Body)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	err = h.notifications.Delete(ctx, userID, ref.NotificationID)
	if errors.Is(err, datastore.ErrNotFound) {
		respondError(ctx, w, apperr.NotFound(msgNotificationNotFound))
		return
	}
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
