// Package session issues, resolves and revokes opaque session tokens and
// carries them in an HTTP-only cookie.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"flashplan/metrics"
	"flashplan/models"
)

const (
	// CookieName is the cookie carrying the session token.
	CookieName = "flashplan_session"
	// DefaultTTL is the absolute session lifetime.
	DefaultTTL = 30 * 24 * time.Hour

	tokenBytes = 32
)

// Manager is safe for concurrent use. It holds no session state of its
// own: every Resolve goes to the Store.
type Manager struct {
	store        Store
	ttl          time.Duration
	cookieSecure bool
	now          func() time.Time
	random       func([]byte) (int, error)
}

type Option func(*Manager)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithEntropy overrides crypto/rand.Read, for tests.
func WithEntropy(read func([]byte) (int, error)) Option {
	return func(m *Manager) { m.random = read }
}

func NewManager(store Store, ttl time.Duration, cookieSecure bool, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		store:        store,
		ttl:          ttl,
		cookieSecure: cookieSecure,
		now:          time.Now,
		random:       rand.Read,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create stores a new session for userID and sets the cookie on w.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, userID string) (string, error) {
	token, err := m.newToken()
	if err != nil {
		metrics.RecordSession("create", "entropy_error")
		return "", err
	}

	now := m.now().UTC()
	sess := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.store.Create(ctx, sess); err != nil {
		metrics.RecordSession("create", "store_error")
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	metrics.RecordSession("create", "ok")
	return token, nil
}

// ResolveToken returns the owning user id. ok is false when the token is
// unknown or expired; err is only set when the store itself failed.
func (m *Manager) ResolveToken(ctx context.Context, token string) (userID string, ok bool, err error) {
	if token == "" {
		metrics.RecordSession("resolve", "missing")
		return "", false, nil
	}

	sess, err := m.store.Get(ctx, token)
	if errors.Is(err, ErrNotFound) {
		metrics.RecordSession("resolve", "unknown")
		return "", false, nil
	}
	if err != nil {
		metrics.RecordSession("resolve", "store_error")
		return "", false, err
	}
	if sess.Expired(m.now()) {
		metrics.RecordSession("resolve", "expired")
		return "", false, nil
	}

	metrics.RecordSession("resolve", "ok")
	return sess.UserID, true, nil
}

// Resolve reads the session cookie from r and resolves it.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (string, bool, error) {
	return m.ResolveToken(ctx, TokenFromRequest(r))
}

// Destroy deletes the caller's session, if any, and clears the cookie.
// Destroying an absent session is not an error.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if token := TokenFromRequest(r); token != "" {
		if err := m.store.Delete(ctx, token); err != nil {
			metrics.RecordSession("destroy", "store_error")
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	metrics.RecordSession("destroy", "ok")
	return nil
}

// PurgeExpired physically removes sessions past their expiry.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.PurgeExpired(ctx, m.now())
}

// TokenFromRequest returns the session cookie value, or "".
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (m *Manager) newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := m.random(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
