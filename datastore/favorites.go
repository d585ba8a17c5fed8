package datastore

import (
	"context"
	"fmt"
	"time"

	"flashplan/models"

	"github.com/jmoiron/sqlx"
)

type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Toggle removes the favorite if present, otherwise adds it. Two calls
// return the pair to its original state. ErrFavoriteConflict means a
// concurrent toggle added the same favorite first.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, planID string) (models.FavoriteAction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		tx.Rebind(`DELETE FROM favorites WHERE user_id = ? AND plan_id = ?`),
		userID, planID)
	if err != nil {
		return "", fmt.Errorf("failed to delete favorite: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read affected rows: %w", err)
	}

	action := models.FavoriteRemoved
	if removed == 0 {
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO favorites (user_id, plan_id, created_at) VALUES (?, ?, ?)`),
			userID, planID, time.Now().UTC())
		if isUniqueViolation(err) {
			return "", ErrFavoriteConflict
		}
		if err != nil {
			return "", fmt.Errorf("failed to insert favorite: %w", err)
		}
		action = models.FavoriteAdded
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit favorite toggle: %w", err)
	}
	return action, nil
}

// ListPlanIDs returns the user's favorited plan ids, newest first.
func (r *FavoriteRepository) ListPlanIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids,
		r.db.Rebind(`SELECT plan_id FROM favorites WHERE user_id = ? ORDER BY created_at DESC, plan_id ASC`),
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	return ids, nil
}
