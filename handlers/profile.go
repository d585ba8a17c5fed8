package handlers

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"flashplan/apperr"
	"flashplan/datastore"
	"flashplan/models"
	"flashplan/session"
	"flashplan/validation"

	"go.uber.org/zap"
)

// ProfileHandler serves profile completion, avatar and settings updates.
type ProfileHandler struct {
	users    *datastore.UserRepository
	sessions *session.Manager
	now      func() time.Time
	suffix   func() int
}

func NewProfileHandler(users *datastore.UserRepository, sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{
		users:    users,
		sessions: sessions,
		now:      time.Now,
		suffix:   func() int { return rand.Intn(1000) },
	}
}

// UpdateProfile handles PUT /user/profile
func (h *ProfileHandler) UpdateProfile(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	p, err := validation.DecodeProfile(r.Body)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	update := models.ProfileUpdate{
		Name:       p.FirstName + " " + p.LastName,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Location:   p.Location,
		Age:        p.Age,
		Nickname:   "@" + strings.ToLower(p.FirstName) + strconv.Itoa(h.suffix()),
		Avatar:     p.Avatar,
		JoinedDate: joinedDate(h.now()),
	}
	if err := h.users.UpdateProfile(ctx, userID, update); err != nil {
		h.respondUserError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Profile completed", zap.String("user_id", userID))
	h.respondUser(ctx, w, userID)
}

// UpdateAvatar handles PATCH /user/profile
func (h *ProfileHandler) UpdateAvatar(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	a, err := validation.DecodeAvatar(r.Body)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.users.UpdateAvatar(ctx, userID, a.Avatar); err != nil {
		h.respondUserError(ctx, w, err)
		return
	}
	h.respondUser(ctx, w, userID)
}

// GetSettings handles GET /user/settings
func (h *ProfileHandler) GetSettings(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		h.respondUserError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"settings": user.Response().Settings})
}

// ReplaceSettings handles PUT /user/settings. The object is stored whole.
func (h *ProfileHandler) ReplaceSettings(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	cmd, err := validation.DecodeSettings(r.Body)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.users.ReplaceSettings(ctx, userID, cmd.Settings); err != nil {
		h.respondUserError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Settings replaced", zap.String("user_id", userID))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"settings": cmd.Settings,
	})
}

func (h *ProfileHandler) respondUser(ctx context.Context, w http.ResponseWriter, userID string) {
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		h.respondUserError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user.Response(),
	})
}

// respondUserError treats a vanished account like a dead session.
func (h *ProfileHandler) respondUserError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, datastore.ErrNotFound) {
		respondError(ctx, w, apperr.Authentication(apperr.MsgNotAuthenticated))
		return
	}
	respondError(ctx, w, err)
}
