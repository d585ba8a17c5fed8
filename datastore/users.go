package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"flashplan/models"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, password_hash, name, first_name, last_name, nickname,
	location, age, avatar, joined_date, total_plans, upcoming_plans,
	profile_completed, settings, created_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. The email must already be case-folded.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :password_hash, :name, :first_name, :last_name, :nickname,
			:location, :age, :avatar, :joined_date, :total_plans, :upcoming_plans,
			:profile_completed, :settings, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile completes the profile. An empty Avatar keeps the current one.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, p models.ProfileUpdate) error {
	query := `
		UPDATE users
		SET name = ?, first_name = ?, last_name = ?, location = ?, age = ?,
			nickname = ?, joined_date = ?, profile_completed = ?,
			avatar = CASE WHEN ? <> '' THEN ? ELSE avatar END
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		p.Name, p.FirstName, p.LastName, p.Location, p.Age,
		p.Nickname, p.JoinedDate, true,
		p.Avatar, p.Avatar,
		id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireOneRow(res)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id, avatar string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET avatar = ? WHERE id = ?`), avatar, id)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return requireOneRow(res)
}

// ReplaceSettings overwrites the whole settings object.
func (r *UserRepository) ReplaceSettings(ctx context.Context, id string, settings models.Settings) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET settings = ? WHERE id = ?`), settings, id)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
