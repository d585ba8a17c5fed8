package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	e := newTestEnv(t, nil)
	cookie, _ := e.register(t, "a@b.com", "secret1")
	e.h.Profile.suffix = func() int { return 42 }

	rec := call(t, e.h.Profile.UpdateProfile, http.MethodPut, "/user/profile", map[string]string{
		"firstName": "Lucía", "lastName": "García", "location": "Madrid", "age": "29",
	}, cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	user := decode(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "Lucía García", user["name"])
	assert.Equal(t, "@lucía42", user["nickname"])
	assert.Equal(t, true, user["profileCompleted"])
	assert.Equal(t, "", user["avatar"])

	rec = call(t, e.h.Auth.Login, http.MethodPost, "/auth/login",
		map[string]string{"email": "a@b.com", "password": "secret1"}, nil, nil)
	assert.Equal(t, true, decode(t, rec)["profileCompleted"])
}

func TestUpdateProfile_RequiresAllFields(t *testing.T) {
	e := newTestEnv(t, nil)
	cookie, _ := e.register(t, "a@b.com", "secret1")

	rec := call(t, e.h.Profile.UpdateProfile, http.MethodPut, "/user/profile", map[string]string{
		"firstName": "Lucía", "lastName": "  ", "location": "Madrid", "age": "29",
	}, cookie, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Todos los campos son obligatorios", decode(t, rec)["error"])
}

func TestUpdateAvatar(t *testing.T) {
	e := newTestEnv(t, nil)
	cookie, _ := e.register(t, "a@b.com", "secret1")

	rec := call(t, e.h.Profile.UpdateAvatar, http.MethodPatch, "/user/profile", map[string]string{"avatar": "/a.png"}, cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "/a.png", user["avatar"])
	assert.Equal(t, false, user["profileCompleted"])

	rec = call(t, e.h.Profile.UpdateAvatar, http.MethodPatch, "/user/profile", map[string]string{}, cookie, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettings_ReplaceWhole(t *testing.T) {
	e := newTestEnv(t, nil)
	cookie, _ := e.register(t, "a@b.com", "secret1")

	rec := call(t, e.h.Profile.GetSettings, http.MethodGet, "/user/settings", nil, cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dark", decode(t, rec)["settings"].(map[string]interface{})["theme"])

	rec = call(t, e.h.Profile.ReplaceSettings, http.MethodPut, "/user/settings",
		map[string]interface{}{"settings": map[string]interface{}{"theme": "light", "fontSize": 14}}, cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])

	rec = call(t, e.h.Profile.GetSettings, http.MethodGet, "/user/settings", nil, cookie, nil)
	settings := decode(t, rec)["settings"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"theme": "light", "fontSize": float64(14)}, settings)

	rec = call(t, e.h.Profile.ReplaceSettings, http.MethodPut, "/user/settings", `{"settings": null}`, cookie, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
