// Package testutil provides a throwaway SQLite database with the service
// schema applied, plus raw fixtures that avoid importing the packages
// under test.
package testutil

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flashplan/database"
	"flashplan/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// NewDB opens a file-backed SQLite database under t.TempDir().
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "flashplan.db") + "?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	dbConn, err := sqlx.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	require.NoError(t, database.ApplySchema(dbConn))
	return dbConn
}

// InsertUser adds a bare user row with zeroed counters.
func InsertUser(t *testing.T, dbConn *sqlx.DB, id, email string) {
	t.Helper()
	_, err := dbConn.Exec(
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, email, "not-a-real-hash", time.Now().UTC())
	require.NoError(t, err)
}

// InsertPlans adds catalogue rows with their folded search name.
func InsertPlans(t *testing.T, dbConn *sqlx.DB, plans ...models.Plan) {
	t.Helper()
	for _, p := range plans {
		row := struct {
			models.Plan
			NameLower string `db:"name_lower"`
		}{p, strings.ToLower(p.Name)}
		_, err := dbConn.NamedExec(`
			INSERT INTO plans (id, name, category, distance, attendees, price, time, date,
				location, address, description, image, organizer, capacity, latitude, longitude, name_lower)
			VALUES (:id, :name, :category, :distance, :attendees, :price, :time, :date,
				:location, :address, :description, :image, :organizer, :capacity, :latitude, :longitude, :name_lower)`, row)
		require.NoError(t, err)
	}
}

// Counters reads a user's denormalised plan counters.
func Counters(t *testing.T, dbConn *sqlx.DB, userID string) (total, upcoming int) {
	t.Helper()
	row := dbConn.QueryRow(`SELECT total_plans, upcoming_plans FROM users WHERE id = ?`, userID)
	require.NoError(t, row.Scan(&total, &upcoming))
	return total, upcoming
}

// SamplePlans is a small catalogue covering several categories and distances.
func SamplePlans() []models.Plan {
	return []models.Plan{
		{ID: "1", Name: "Concierto Jazz en Vivo", Category: "Musica", Distance: 0.8, Time: "19:30", Date: "2026-01-09", Location: "Jazz Club Central"},
		{ID: "2", Name: "Trattoria La Nonna", Category: "Gastronomia", Distance: 1.2, Time: "20:00", Date: "2026-01-09", Location: "Trattoria La Nonna"},
		{ID: "3", Name: "Escape Room Espacial", Category: "Entretenimiento", Distance: 2.5, Time: "18:00", Date: "2026-01-09", Location: "Mystery Box Madrid"},
		{ID: "4", Name: "Yoga al Atardecer", Category: "Bienestar", Distance: 1.8, Time: "20:30", Date: "2026-01-08", Location: "Parque del Retiro"},
		{ID: "5", Name: "Noche de Flamenco", Category: "Musica", Distance: 2.0, Time: "22:00", Date: "2026-01-08", Location: "Tablao Sur"},
		{ID: "6", Name: "Ruta de Tapas", Category: "Gastronomia", Distance: 3.4, Time: "13:00", Date: "2026-01-10", Location: "La Latina"},
	}
}
