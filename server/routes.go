package server

import (
	"context"
	"net/http"

	"flashplan/handlers"
	"flashplan/metrics"

	"github.com/umakantv/go-utils/httpserver"
)

// RouteEntry pairs a route with its handler.
type RouteEntry struct {
	Route   httpserver.Route
	Handler httpserver.HandlerFunc
}

func route(name, method, path string, fn func(ctx context.Context, w http.ResponseWriter, r *http.Request)) RouteEntry {
	return RouteEntry{
		Route: httpserver.Route{
			Name:     name,
			Method:   method,
			Path:     path,
			AuthType: "none",
		},
		Handler: httpserver.HandlerFunc(fn),
	}
}

// Routes is the full route table.
func Routes(h *handlers.Handlers) []RouteEntry {
	return []RouteEntry{
		route("HealthCheck", "GET", "/health", health),
		route("Metrics", "GET", "/metrics", func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		}),

		route("Register", "POST", "/auth/register", h.Auth.Register),
		route("Login", "POST", "/auth/login", h.Auth.Login),
		route("Logout", "POST", "/auth/logout", h.Auth.Logout),
		route("Me", "GET", "/auth/me", h.Auth.Me),

		route("ListPlans", "GET", "/plans", h.Plans.ListPlans),
		route("GetPlan", "GET", "/plans/{id}", h.Plans.GetPlan),

		route("ListFavorites", "GET", "/favorites", h.Favorites.ListFavorites),
		route("ToggleFavorite", "POST", "/favorites", h.Favorites.ToggleFavorite),

		route("ListNotifications", "GET", "/notifications", h.Notifications.ListNotifications),
		route("UpdateNotifications", "PUT", "/notifications", h.Notifications.UpdateNotifications),
		route("DeleteNotification", "DELETE", "/notifications", h.Notifications.DeleteNotification),

		route("ListUserPlans", "GET", "/user/plans", h.UserPlans.ListUserPlans),
		route("JoinPlan", "POST", "/user/plans", h.UserPlans.JoinPlan),
		route("UpdateUserPlan", "PUT", "/user/plans", h.UserPlans.UpdateUserPlan),
		route("CancelUserPlan", "DELETE", "/user/plans", h.UserPlans.CancelUserPlan),

		route("UpdateProfile", "PUT", "/user/profile", h.Profile.UpdateProfile),
		route("UpdateAvatar", "PATCH", "/user/profile", h.Profile.UpdateAvatar),
		route("GetSettings", "GET", "/user/settings", h.Profile.GetSettings),
		route("ReplaceSettings", "PUT", "/user/settings", h.Profile.ReplaceSettings),
	}
}

func health(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy", "service": "flashplan"}`))
}
