package models

import "time"

// MembershipStatus is the lifecycle state of a joined plan.
type MembershipStatus string

const (
	StatusUpcoming  MembershipStatus = "upcoming"
	StatusCompleted MembershipStatus = "completed"
)

// Valid reports whether s is a known status.
func (s MembershipStatus) Valid() bool {
	return s == StatusUpcoming || s == StatusCompleted
}

// Membership ("user_plan") records a user having joined a plan.
// Plan display fields are a snapshot taken at join time.
type Membership struct {
	UserID    string           `json:"userId" db:"user_id"`
	PlanID    string           `json:"planId" db:"plan_id"`
	Title     string           `json:"title" db:"title"`
	Location  string           `json:"location" db:"location"`
	Address   string           `json:"address" db:"address"`
	Distance  float64          `json:"distance" db:"distance"`
	Time      string           `json:"time" db:"time"`
	Date      string           `json:"date" db:"date"`
	Image     string           `json:"image" db:"image"`
	Status    MembershipStatus `json:"status" db:"status"`
	Category  string           `json:"category" db:"category"`
	Price     float64          `json:"price" db:"price"`
	Latitude  float64          `json:"latitude" db:"latitude"`
	Longitude float64          `json:"longitude" db:"longitude"`
	JoinedAt  time.Time        `json:"joinedAt" db:"joined_at"`
}

// NewMembership snapshots plan for userID with status upcoming.
func NewMembership(userID string, plan *Plan, joinedAt time.Time) *Membership {
	return &Membership{
		UserID:    userID,
		PlanID:    plan.ID,
		Title:     plan.Name,
		Location:  plan.Location,
		Address:   plan.Address,
		Distance:  plan.Distance,
		Time:      plan.Time,
		Date:      plan.Date,
		Image:     plan.Image,
		Status:    StatusUpcoming,
		Category:  plan.Category,
		Price:     plan.Price,
		Latitude:  plan.Latitude,
		Longitude: plan.Longitude,
		JoinedAt:  joinedAt,
	}
}

// FavoriteAction is the outcome of a favorite toggle.
type FavoriteAction string

const (
	FavoriteAdded   FavoriteAction = "added"
	FavoriteRemoved FavoriteAction = "removed"
)
