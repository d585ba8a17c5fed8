package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"flashplan/apperr"
	"flashplan/session"

	"github.com/umakantv/go-utils/httpserver"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// logRequest logs with the route name, method and path taken from the
// httpserver request context, followed by message and fields.
func logRequest(ctx context.Context, level string, message string, fields ...zap.Field) {
	routeName := httpserver.GetRouteName(ctx)
	method := httpserver.GetRouteMethod(ctx)
	path := httpserver.GetRoutePath(ctx)

	logMsg := time.Now().Format("2006-01-02 15:04:05") + " - " + routeName + " - " + method + " - " + path
	if message != "" {
		logMsg += " - " + message
	}

	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", method),
		zap.String("path", path),
	}, fields...)

	switch level {
	case "info":
		logger.Info(logMsg, allFields...)
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	}
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// respondError writes {"error": message} with the AppError's code. Errors
// that are not an AppError are logged with their cause and answered 500.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	appErr, ok := apperr.From(err)
	if !ok {
		logRequest(ctx, "error", "Request failed", zap.Error(err))
	} else {
		logRequest(ctx, "info", appErr.Message, zap.Int("status", appErr.Code))
	}
	respondJSON(w, appErr.Code, map[string]string{"error": appErr.Message})
}

// requireUser resolves the session cookie. When it returns false the
// response has already been written.
func requireUser(ctx context.Context, w http.ResponseWriter, r *http.Request, sessions *session.Manager) (string, bool) {
	userID, ok, err := sessions.Resolve(ctx, r)
	if err != nil {
		respondError(ctx, w, err)
		return "", false
	}
	if !ok {
		respondError(ctx, w, apperr.Authentication(apperr.MsgNotAuthenticated))
		return "", false
	}
	return userID, true
}
