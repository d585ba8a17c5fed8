package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// User represents an account in the system.
// PasswordHash is bcrypt; it never leaves the datastore layer in responses.
type User struct {
	ID               string    `db:"id"`
	Email            string    `db:"email"`
	PasswordHash     string    `db:"password_hash"`
	Name             string    `db:"name"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	Nickname         string    `db:"nickname"`
	Location         string    `db:"location"`
	Age              string    `db:"age"`
	Avatar           string    `db:"avatar"`
	JoinedDate       string    `db:"joined_date"`
	TotalPlans       int       `db:"total_plans"`
	UpcomingPlans    int       `db:"upcoming_plans"`
	ProfileCompleted bool      `db:"profile_completed"`
	Settings         Settings  `db:"settings"`
	CreatedAt        time.Time `db:"created_at"`
}

// Settings is the free-form preferences object. Unknown keys pass through.
type Settings map[string]interface{}

// DefaultSettings returns the preferences given to new accounts.
func DefaultSettings() Settings {
	return Settings{
		"notifications":    true,
		"locationServices": true,
		"emailUpdates":     false,
		"showDistance":     true,
		"autoRefresh":      true,
		"theme":            "dark",
		"language":         "es",
	}
}

// Value stores settings as a JSON text column.
func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads settings from a JSON text column.
func (s *Settings) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("settings: unsupported column type")
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(raw, s)
}

// UserResponse is the public projection of a User.
type UserResponse struct {
	ID               string   `json:"_id"`
	Email            string   `json:"email"`
	Name             string   `json:"name"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Nickname         string   `json:"nickname"`
	Location         string   `json:"location"`
	Age              string   `json:"age"`
	Avatar           string   `json:"avatar"`
	JoinedDate       string   `json:"joinedDate"`
	TotalPlans       int      `json:"totalPlans"`
	UpcomingPlans    int      `json:"upcomingPlans"`
	ProfileCompleted bool     `json:"profileCompleted"`
	Settings         Settings `json:"settings"`
}

// Response strips secrets and fills in default settings.
func (u *User) Response() UserResponse {
	settings := u.Settings
	if settings == nil {
		settings = DefaultSettings()
	}
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Nickname:         u.Nickname,
		Location:         u.Location,
		Age:              u.Age,
		Avatar:           u.Avatar,
		JoinedDate:       u.JoinedDate,
		TotalPlans:       u.TotalPlans,
		UpcomingPlans:    u.UpcomingPlans,
		ProfileCompleted: u.ProfileCompleted,
		Settings:         settings,
	}
}

// ProfileUpdate is the validated profile-completion command.
type ProfileUpdate struct {
	Name       string
	FirstName  string
	LastName   string
	Location   string
	Age        string
	Nickname   string
	Avatar     string
	JoinedDate string
}
