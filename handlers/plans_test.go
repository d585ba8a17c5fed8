package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"flashplan/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planIDs(t *testing.T, body map[string]interface{}) []string {
	t.Helper()
	ids := []string{}
	for _, p := range body["plans"].([]interface{}) {
		ids = append(ids, p.(map[string]interface{})["id"].(string))
	}
	return ids
}

func TestListPlans_CategoryAndDistance(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := call(t, e.h.Plans.ListPlans, http.MethodGet, "/plans?category=Musica,Gastronomia&maxDistance=2", nil, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"5", "1", "2"}, planIDs(t, decode(t, rec)))
}

func TestListPlans_Filters(t *testing.T) {
	e := newTestEnv(t, nil)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"4", "5", "3", "1", "2", "6"}},
		{"?search=jazz", []string{"1"}},
		{"?search=" + url.QueryEscape("%"), []string{}},
		{"?category=Bienestar", []string{"4"}},
		{"?maxDistance=1", []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := call(t, e.h.Plans.ListPlans, http.MethodGet, "/plans"+tt.query, nil, nil, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, planIDs(t, decode(t, rec)))
		})
	}
}

func TestListPlans_InvalidDistance(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := call(t, e.h.Plans.ListPlans, http.MethodGet, "/plans?maxDistance=far", nil, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "maxDistance no válido", decode(t, rec)["error"])
}

func TestGetPlan(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := call(t, e.h.Plans.GetPlan, http.MethodGet, "/plans/3", nil, nil, map[string]string{"id": "3"})
	require.Equal(t, http.StatusOK, rec.Code)
	plan := decode(t, rec)["plan"].(map[string]interface{})
	assert.Equal(t, "Escape Room Espacial", plan["name"])

	rec = call(t, e.h.Plans.GetPlan, http.MethodGet, "/plans/99", nil, nil, map[string]string{"id": "99"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Plan no encontrado", decode(t, rec)["error"])
}

func TestFilterKey_IsCanonical(t *testing.T) {
	d := 2.0
	a := models.PlanFilter{Categories: []string{"Musica", "Gastronomia"}, Search: "Jazz", MaxDistance: &d}
	b := models.PlanFilter{Categories: []string{"Gastronomia", "Musica"}, Search: "jazz", MaxDistance: &d}
	assert.Equal(t, filterKey(a), filterKey(b))
	assert.NotEqual(t, filterKey(a), filterKey(models.PlanFilter{}))
}
