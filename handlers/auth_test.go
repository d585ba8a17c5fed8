package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"flashplan/ratelimit"
	"flashplan/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_Validation(t *testing.T) {
	e := newTestEnv(t, nil)

	tests := []struct {
		name    string
		body    interface{}
		message string
	}{
		{"malformed json", `{"email":`, "JSON inválido"},
		{"missing password", map[string]string{"email": "a@b.com"}, "Email y contraseña requeridos"},
		{"bad email", map[string]string{"email": "nope", "password": "secret1"}, "Email no válido"},
		{"short password", map[string]string{"email": "a@b.com", "password": "12345"}, "La contraseña debe tener al menos 6 caracteres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, e.h.Auth.Register, http.MethodPost, "/auth/register", tt.body, nil, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["error"])
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestRegister_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	e := newTestEnv(t, nil)
	e.register(t, "a@b.com", "secret1")

	rec := call(t, e.h.Auth.Register, http.MethodPost, "/auth/register",
		map[string]string{"email": "  A@B.COM ", "password": "another1"}, nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Ya existe una cuenta con este correo", decode(t, rec)["error"])

	// the original password still works
	rec = call(t, e.h.Auth.Login, http.MethodPost, "/auth/login",
		map[string]string{"email": "a@b.com", "password": "secret1"}, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_NewAccountDefaults(t *testing.T) {
	e := newTestEnv(t, nil)
	cookie, _ := e.register(t, "a@b.com", "secret1")

	user := decode(t, call(t, e.h.Auth.Me, http.MethodGet, "/auth/me", nil, cookie, nil))["user"].(map[string]interface{})
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, false, user["profileCompleted"])
	assert.EqualValues(t, 0, user["totalPlans"])
	assert.NotContains(t, user, "passwordHash")

	settings := user["settings"].(map[string]interface{})
	assert.Equal(t, "dark", settings["theme"])
	assert.Equal(t, "es", settings["language"])

	notices := decode(t, call(t, e.h.Notifications.ListNotifications, http.MethodGet, "/notifications", nil, cookie, nil))
	assert.Len(t, notices["notifications"], 1, "welcome notice")
}

func TestLogin_SucceedsWithSameIdentity(t *testing.T) {
	e := newTestEnv(t, nil)
	_, userID := e.register(t, "a@b.com", "secret1")

	rec := call(t, e.h.Auth.Login, http.MethodPost, "/auth/login",
		map[string]string{"email": "A@b.com", "password": "secret1"}, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["profileCompleted"])

	me := decode(t, call(t, e.h.Auth.Me, http.MethodGet, "/auth/me", nil, sessionCookie(t, rec), nil))
	assert.Equal(t, userID, me["user"].(map[string]interface{})["_id"])
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	e := newTestEnv(t, nil)
	e.register(t, "a@b.com", "secret1")

	unknown := call(t, e.h.Auth.Login, http.MethodPost, "/auth/login",
		map[string]string{"email": "nobody@b.com", "password": "secret1"}, nil, nil)
	wrong := call(t, e.h.Auth.Login, http.MethodPost, "/auth/login",
		map[string]string{"email": "a@b.com", "password": "secret2"}, nil, nil)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestLogout_TokenNeverResolvesAgain(t *testing.T) {
	e := newTestEnv(t, nil)
	cookie, _ := e.register(t, "a@b.com", "secret1")

	rec := call(t, e.h.Auth.Logout, http.MethodPost, "/auth/logout", nil, cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(t, rec)
	assert.Less(t, cleared.MaxAge, 0)

	rec = call(t, e.h.Auth.Me, http.MethodGet, "/auth/me", nil, cookie, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, e.h.Auth.Logout, http.MethodPost, "/auth/logout", nil, cookie, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredSessionIsTreatedAsLoggedOut(t *testing.T) {
	e := newTestEnv(t, nil)
	cookie, _ := e.register(t, "a@b.com", "secret1")

	e.clock.t = e.clock.t.Add(session.DefaultTTL + time.Minute)

	rec := call(t, e.h.UserPlans.ListUserPlans, http.MethodGet, "/user/plans", nil, cookie, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No autenticado", decode(t, rec)["error"])
}

func TestAuth_RateLimitedPerClient(t *testing.T) {
	e := newTestEnv(t, ratelimit.New(1, 2))

	creds := map[string]string{"email": "a@b.com", "password": "wrong12"}
	for i := 0; i < 2; i++ {
		rec := call(t, e.h.Auth.Login, http.MethodPost, "/auth/login", creds, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := call(t, e.h.Auth.Login, http.MethodPost, "/auth/login", creds, nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["error"])
}

func TestDummyHash_UsesConfiguredCost(t *testing.T) {
	h := NewAuthHandler(nil, nil, nil, nil, bcrypt.MinCost+1)

	cost, err := bcrypt.Cost(h.dummyHash())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
	assert.Equal(t, h.dummyHash(), h.dummyHash(), "generated once")
}

func TestRegister_SessionFailureKeepsAccountUsable(t *testing.T) {
	e := newTestEnv(t, nil)
	broken := session.NewManager(session.NewSQLStore(e.db), session.DefaultTTL, false,
		session.WithEntropy(func([]byte) (int, error) { return 0, errors.New("entropy exhausted") }))
	h := New(e.db, nil, broken, nil, Options{BcryptCost: bcrypt.MinCost, PlanCacheTTL: time.Minute})

	rec := call(t, h.Auth.Register, http.MethodPost, "/auth/register",
		map[string]string{"email": "a@b.com", "password": "secret1"}, nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgRegisteredNoSession, decode(t, rec)["error"])
	assert.Empty(t, rec.Result().Cookies())

	// the account was stored, so logging in is the way forward
	rec = call(t, e.h.Auth.Login, http.MethodPost, "/auth/login",
		map[string]string{"email": "a@b.com", "password": "secret1"}, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sessionCookie(t, rec)
}

func TestJoinedDate(t *testing.T) {
	assert.Equal(t, "enero de 2026", joinedDate(time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "diciembre de 2025", joinedDate(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}
