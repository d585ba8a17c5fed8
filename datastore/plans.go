package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"flashplan/models"

	"github.com/jmoiron/sqlx"
)

const planColumns = `id, name, category, distance, attendees, price, time, date,
	location, address, description, image, organizer, capacity, latitude, longitude`

// planRow adds the search column, which holds strings.ToLower(name).
// SQLite's LOWER only folds ASCII, so folding happens here on insert.
type planRow struct {
	models.Plan
	NameLower string `db:"name_lower"`
}

// PlanRepository is the read side of the plan catalogue, plus the bulk
// insert used by seeding.
type PlanRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// List returns plans matching every non-empty filter field, soonest first.
func (r *PlanRepository) List(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error) {
	var (
		where []string
		args  []interface{}
	)

	if len(filter.Categories) > 0 {
		clause, inArgs, err := sqlx.In("category IN (?)", filter.Categories)
		if err != nil {
			return nil, fmt.Errorf("failed to build category filter: %w", err)
		}
		where = append(where, clause)
		args = append(args, inArgs...)
	}
	if filter.Search != "" {
		where = append(where, `name_lower LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(filter.Search))
	}
	if filter.MaxDistance != nil {
		where = append(where, "distance <= ?")
		args = append(args, *filter.MaxDistance)
	}

	query := `SELECT ` + planColumns + ` FROM plans`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, time ASC, id ASC"

	plans := []models.Plan{}
	if err := r.db.SelectContext(ctx, &plans, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	return plans, nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.GetContext(ctx, &plan, r.db.Rebind(`SELECT `+planColumns+` FROM plans WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &plan, nil
}

// GetByIDs returns the plans that exist among ids, soonest first.
func (r *PlanRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Plan, error) {
	plans := []models.Plan{}
	if len(ids) == 0 {
		return plans, nil
	}
	query, args, err := sqlx.In(`SELECT `+planColumns+` FROM plans WHERE id IN (?) ORDER BY date ASC, time ASC, id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build plan id filter: %w", err)
	}
	if err := r.db.SelectContext(ctx, &plans, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query plans by id: %w", err)
	}
	return plans, nil
}

func (r *PlanRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM plans`); err != nil {
		return 0, fmt.Errorf("failed to count plans: %w", err)
	}
	return n, nil
}

// InsertMany adds plans in one transaction.
func (r *PlanRepository) InsertMany(ctx context.Context, plans []models.Plan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO plans (` + planColumns + `, name_lower)
		VALUES (:id, :name, :category, :distance, :attendees, :price, :time, :date,
			:location, :address, :description, :image, :organizer, :capacity, :latitude, :longitude, :name_lower)
	`
	for i := range plans {
		row := planRow{Plan: plans[i], NameLower: strings.ToLower(plans[i].Name)}
		if _, err := tx.NamedExecContext(ctx, query, &row); err != nil {
			return fmt.Errorf("failed to insert plan %s: %w", plans[i].ID, err)
		}
	}
	return tx.Commit()
}
