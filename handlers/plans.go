package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"flashplan/apperr"
	"flashplan/datastore"
	"flashplan/models"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/cache"
	"go.uber.org/zap"
)

// PlanHandler serves the public plan catalogue. Responses are cached
// when a cache is configured; the catalogue is read-only at runtime.
type PlanHandler struct {
	plans    *datastore.PlanRepository
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewPlanHandler accepts a nil cache.
func NewPlanHandler(plans *datastore.PlanRepository, cache cache.Cache, cacheTTL time.Duration) *PlanHandler {
	return &PlanHandler{plans: plans, cache: cache, cacheTTL: cacheTTL}
}

// ListPlans handles GET /plans?category=a,b&search=x&maxDistance=2.5
func (h *PlanHandler) ListPlans(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	filter, err := parsePlanFilter(r.URL.Query())
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	cacheKey := "plans:list:" + filterKey(filter)
	if body, ok := h.cached(cacheKey); ok {
		logRequest(ctx, "debug", "Serving plans from cache")
		writeCached(w, body)
		return
	}

	plans, err := h.plans.List(ctx, filter)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Plans retrieved", zap.Int("count", len(plans)))
	h.respondCached(ctx, w, cacheKey, map[string]interface{}{"plans": plans})
}

// GetPlan handles GET /plans/{id}
func (h *PlanHandler) GetPlan(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	cacheKey := "plans:one:" + id
	if body, ok := h.cached(cacheKey); ok {
		logRequest(ctx, "debug", "Serving plan from cache", zap.String("plan_id", id))
		writeCached(w, body)
		return
	}

	plan, err := h.plans.GetByID(ctx, id)
	if errors.Is(err, datastore.ErrNotFound) {
		respondError(ctx, w, apperr.NotFound("Plan no encontrado"))
		return
	}
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	h.respondCached(ctx, w, cacheKey, map[string]interface{}{"plan": plan})
}

// cached returns a stored response body. Bodies are stored as strings:
// the redis cache JSON-encodes values, and a string survives that round
// trip unchanged where a []byte would come back base64 encoded.
func (h *PlanHandler) cached(key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	value, err := h.cache.Get(key)
	if err != nil {
		return nil, false
	}
	body, ok := value.(string)
	if !ok {
		return nil, false
	}
	return []byte(body), true
}

func (h *PlanHandler) respondCached(ctx context.Context, w http.ResponseWriter, key string, body interface{}) {
	response, err := json.Marshal(body)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.Set(key, string(response), h.cacheTTL); err != nil {
			logRequest(ctx, "error", "Failed to cache response", zap.Error(err), zap.String("key", key))
		}
	}
	writeCached(w, response)
}

func writeCached(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func parsePlanFilter(q url.Values) (models.PlanFilter, error) {
	var filter models.PlanFilter

	if raw := q.Get("category"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				filter.Categories = append(filter.Categories, c)
			}
		}
	}

	filter.Search = strings.TrimSpace(q.Get("search"))

	if raw := q.Get("maxDistance"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 {
			return filter, apperr.Validation("maxDistance no válido")
		}
		filter.MaxDistance = &d
	}
	return filter, nil
}

// filterKey is a canonical cache key for filter.
func filterKey(filter models.PlanFilter) string {
	categories := append([]string(nil), filter.Categories...)
	sort.Strings(categories)

	key := strings.Join(categories, ",") + "|" + strings.ToLower(filter.Search) + "|"
	if filter.MaxDistance != nil {
		key += strconv.FormatFloat(*filter.MaxDistance, 'f', -1, 64)
	}
	return key
}
