// Package handlers implements the HTTP API. Every handler has the
// httpserver.HandlerFunc signature and resolves the session itself.
package handlers

import (
	"time"

	"flashplan/datastore"
	"flashplan/ratelimit"
	"flashplan/session"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/cache"
)

// Options carries the tunables the handlers need from configuration.
type Options struct {
	BcryptCost   int
	PlanCacheTTL time.Duration
}

// Handlers groups one handler per resource.
type Handlers struct {
	Auth          *AuthHandler
	Plans         *PlanHandler
	Favorites     *FavoriteHandler
	Notifications *NotificationHandler
	UserPlans     *UserPlanHandler
	Profile       *ProfileHandler
}

// New builds every handler over the same database. planCache and limiter
// may be nil.
func New(db *sqlx.DB, planCache cache.Cache, sessions *session.Manager, limiter *ratelimit.Limiter, opts Options) *Handlers {
	users := datastore.NewUserRepository(db)
	plans := datastore.NewPlanRepository(db)
	notifications := datastore.NewNotificationRepository(db)

	return &Handlers{
		Auth:          NewAuthHandler(users, notifications, sessions, limiter, opts.BcryptCost),
		Plans:         NewPlanHandler(plans, planCache, opts.PlanCacheTTL),
		Favorites:     NewFavoriteHandler(datastore.NewFavoriteRepository(db), plans, sessions),
		Notifications: NewNotificationHandler(notifications, sessions),
		UserPlans:     NewUserPlanHandler(datastore.NewMembershipRepository(db), plans, sessions),
		Profile:       NewProfileHandler(users, sessions),
	}
}
