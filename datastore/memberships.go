package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"flashplan/models"

	"github.com/jmoiron/sqlx"
)

const membershipColumns = `user_id, plan_id, title, location, address, distance, time, date,
	image, status, category, price, latitude, longitude, joined_at`

// MembershipRepository is the membership ledger. Each operation that
// touches user_plans also adjusts the owner's denormalised counters in
// the same transaction, using relative updates only.
type MembershipRepository struct {
	db *sqlx.DB
}

func NewMembershipRepository(db *sqlx.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Join records m and bumps total_plans and upcoming_plans. notice, when
// non-nil, is written in the same transaction. A second join of the same
// (user, plan) fails with ErrAlreadyJoined and leaves counters untouched.
func (r *MembershipRepository) Join(ctx context.Context, m *models.Membership, notice *models.Notification) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO user_plans (` + membershipColumns + `)
		VALUES (:user_id, :plan_id, :title, :location, :address, :distance, :time, :date,
			:image, :status, :category, :price, :latitude, :longitude, :joined_at)
	`
	if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyJoined
		}
		return fmt.Errorf("failed to insert membership: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE users SET total_plans = total_plans + 1, upcoming_plans = upcoming_plans + 1 WHERE id = ?`),
		m.UserID)
	if err != nil {
		return fmt.Errorf("failed to increment plan counters: %w", err)
	}
	if err := requireOneRow(res); err != nil {
		return err
	}

	if notice != nil {
		if err := insertNotification(ctx, tx, notice); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit join: %w", err)
	}
	return nil
}

// SetStatus moves a membership to status. Completing an upcoming plan
// decrements upcoming_plans once; completing an already-completed plan is
// a no-op. Moving a completed plan back to upcoming is ErrInvalidTransition.
func (r *MembershipRepository) SetStatus(ctx context.Context, userID, planID string, status models.MembershipStatus) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := membershipStatus(ctx, tx, userID, planID)
	if err != nil {
		return err
	}

	switch {
	case current == status:
		return nil
	case status == models.StatusUpcoming:
		return ErrInvalidTransition
	}

	res, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE user_plans SET status = ? WHERE user_id = ? AND plan_id = ? AND status = ?`),
		models.StatusCompleted, userID, planID, models.StatusUpcoming)
	if err != nil {
		return fmt.Errorf("failed to update membership status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`UPDATE users SET `+decrementClamped("upcoming_plans")+` WHERE id = ?`),
			userID)
		if err != nil {
			return fmt.Errorf("failed to decrement upcoming plans: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status change: %w", err)
	}
	return nil
}

// Cancel removes the membership and reverses its counter contribution.
// Cancelling a plan that was never joined reports false and changes nothing.
func (r *MembershipRepository) Cancel(ctx context.Context, userID, planID string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status, err := membershipStatus(ctx, tx, userID, planID)
	if errors.Is(err, ErrMembershipNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx,
		tx.Rebind(`DELETE FROM user_plans WHERE user_id = ? AND plan_id = ?`),
		userID, planID)
	if err != nil {
		return false, fmt.Errorf("failed to delete membership: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		// removed by a concurrent cancel between our read and delete
		return false, nil
	}

	counters := decrementClamped("total_plans")
	if status == models.StatusUpcoming {
		counters += ", " + decrementClamped("upcoming_plans")
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE users SET `+counters+` WHERE id = ?`), userID); err != nil {
		return false, fmt.Errorf("failed to decrement plan counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit cancel: %w", err)
	}
	return true, nil
}

// ListForUser returns the user's memberships, most recently joined first.
func (r *MembershipRepository) ListForUser(ctx context.Context, userID string) ([]models.Membership, error) {
	memberships := []models.Membership{}
	query := `SELECT ` + membershipColumns + ` FROM user_plans WHERE user_id = ? ORDER BY joined_at DESC, plan_id ASC`
	if err := r.db.SelectContext(ctx, &memberships, r.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	return memberships, nil
}

func membershipStatus(ctx context.Context, tx *sqlx.Tx, userID, planID string) (models.MembershipStatus, error) {
	var status models.MembershipStatus
	err := tx.GetContext(ctx, &status,
		tx.Rebind(`SELECT status FROM user_plans WHERE user_id = ? AND plan_id = ?`),
		userID, planID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrMembershipNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read membership status: %w", err)
	}
	return status, nil
}
