package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"flashplan/apperr"
	"flashplan/datastore"
	"flashplan/metrics"
	"flashplan/models"
	"flashplan/ratelimit"
	"flashplan/session"
	"flashplan/validation"

	"github.com/google/uuid"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// msgRegisteredNoSession answers a registration whose account was stored
// but whose session could not be issued; retrying would give 409.
const msgRegisteredNoSession = "Cuenta creada, pero no se pudo iniciar sesión. Inicia sesión para continuar"

// AuthHandler serves registration, login, logout and the current user.
type AuthHandler struct {
	users         *datastore.UserRepository
	notifications *datastore.NotificationRepository
	sessions      *session.Manager
	limiter       *ratelimit.Limiter
	bcryptCost    int
	now           func() time.Time

	dummyOnce sync.Once
	dummy     []byte
}

func NewAuthHandler(users *datastore.UserRepository, notifications *datastore.NotificationRepository,
	sessions *session.Manager, limiter *ratelimit.Limiter, bcryptCost int) *AuthHandler {
	return &AuthHandler{
		users:         users,
		notifications: notifications,
		sessions:      sessions,
		limiter:       limiter,
		bcryptCost:    bcryptCost,
		now:           time.Now,
	}
}

// dummyHash is compared against when the email is unknown, so that path
// pays for a bcrypt comparison at the same cost as a real one.
func (h *AuthHandler) dummyHash() []byte {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("flashplan-dummy-password"), h.bcryptCost)
	})
	return h.dummy
}

func (h *AuthHandler) allow(ctx context.Context, w http.ResponseWriter, r *http.Request, operation string) bool {
	if h.limiter == nil || h.limiter.Allow(ratelimit.ClientKey(r)) {
		return true
	}
	metrics.RecordAuth(operation, "rate_limited")
	respondError(ctx, w, apperr.RateLimited())
	return false
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if !h.allow(ctx, w, r, "register") {
		return
	}

	creds, err := validation.DecodeCredentials(r.Body, true)
	if err != nil {
		metrics.RecordAuth("register", "invalid")
		respondError(ctx, w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), h.bcryptCost)
	if err != nil {
		metrics.RecordAuth("register", "error")
		respondError(ctx, w, err)
		return
	}

	now := h.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: string(hash),
		JoinedDate:   joinedDate(now),
		Settings:     models.DefaultSettings(),
		CreatedAt:    now,
	}
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, datastore.ErrEmailTaken) {
			metrics.RecordAuth("register", "conflict")
			respondError(ctx, w, apperr.Conflict("Ya existe una cuenta con este correo"))
			return
		}
		metrics.RecordAuth("register", "error")
		respondError(ctx, w, err)
		return
	}

	if err := h.notifications.Create(ctx, models.NewWelcomeNotification(user.ID, now)); err != nil {
		// the account exists; a missing welcome notice is not worth failing over
		logRequest(ctx, "error", "Failed to create welcome notification", zap.Error(err), zap.String("user_id", user.ID))
	}

	if _, err := h.sessions.Create(ctx, w, user.ID); err != nil {
		metrics.RecordAuth("register", "session_error")
		logRequest(ctx, "error", "Account created without session", zap.Error(err), zap.String("user_id", user.ID))
		respondError(ctx, w, errs.NewInternalServerError(msgRegisteredNoSession))
		return
	}

	metrics.RecordAuth("register", "ok")
	logRequest(ctx, "info", "User registered", zap.String("user_id", user.ID))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"profileCompleted": false,
	})
}

// Login handles POST /auth/login. Unknown email and wrong password give the
// same 401 response.
func (h *AuthHandler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if !h.allow(ctx, w, r, "login") {
		return
	}

	creds, err := validation.DecodeCredentials(r.Body, false)
	if err != nil {
		metrics.RecordAuth("login", "invalid")
		respondError(ctx, w, err)
		return
	}

	user, err := h.users.GetByEmail(ctx, creds.Email)
	if err != nil && !errors.Is(err, datastore.ErrNotFound) {
		metrics.RecordAuth("login", "error")
		respondError(ctx, w, err)
		return
	}

	hash := h.dummyHash()
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil || user == nil {
		metrics.RecordAuth("login", "invalid_credentials")
		respondError(ctx, w, apperr.Authentication(apperr.MsgInvalidCredentials))
		return
	}

	if _, err := h.sessions.Create(ctx, w, user.ID); err != nil {
		metrics.RecordAuth("login", "error")
		respondError(ctx, w, err)
		return
	}

	metrics.RecordAuth("login", "ok")
	logRequest(ctx, "info", "Login successful", zap.String("user_id", user.ID))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"profileCompleted": user.ProfileCompleted,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(ctx, w, r, h.sessions); !ok {
		return
	}

	if err := h.sessions.Destroy(ctx, w, r); err != nil {
		respondError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Logged out")
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if errors.Is(err, datastore.ErrNotFound) {
		// session outlived its account
		respondError(ctx, w, apperr.Authentication(apperr.MsgNotAuthenticated))
		return
	}
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user.Response()})
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// joinedDate renders t as "enero de 2026".
func joinedDate(t time.Time) string {
	return spanishMonths[t.Month()-1] + " de " + t.Format("2006")
}
