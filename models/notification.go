package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification types understood by the client.
const (
	NotificationPlan     = "plan"
	NotificationFavorite = "favorite"
	NotificationReminder = "reminder"
	NotificationNew      = "new"
	NotificationSocial   = "social"
)

type Notification struct {
	ID        string    `json:"_id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Time      string    `json:"time" db:"time"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// NewWelcomeNotification is the first notice in a new account's mailbox.
func NewWelcomeNotification(userID string, now time.Time) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      NotificationNew,
		Title:     "¡Bienvenido a FlashPlan!",
		Message:   "Descubre planes cerca de ti y únete en segundos.",
		Time:      "Ahora",
		CreatedAt: now,
	}
}

// NewJoinedNotification confirms that the user joined plan.
func NewJoinedNotification(userID string, plan *Plan, now time.Time) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      NotificationPlan,
		Title:     "Te has unido a " + plan.Name,
		Message:   fmt.Sprintf("%s · %s a las %s", plan.Location, plan.Date, plan.Time),
		Time:      "Ahora",
		CreatedAt: now,
	}
}
