package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/planning"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type planningRepositoryImpl struct {
	db *database.DB
}

func NewPlanningRepository(db *database.DB) planning.PlanningRepository {
	return &planningRepositoryImpl{db: db}
}

const planningColumns = `id, user_id, is_template, day_of_week, date, start_time, end_time, created_at, updated_at`

const templateDayConstraint = "plannings_one_template_per_day"

func scanPlanning(row pgx.Row) (planning.Planning, error) {
	var p planning.Planning
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.IsTemplate,
		&p.DayOfWeek,
		&p.Date,
		&p.StartTime,
		&p.EndTime,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func collectPlannings(rows pgx.Rows) ([]planning.Planning, error) {
	defer rows.Close()

	plans := make([]planning.Planning, 0)
	for rows.Next() {
		p, err := scanPlanning(rows)
		if err != nil {
			return nil, fmt.Errorf("scan planning: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Create implements planning.PlanningRepository.
func (r *planningRepositoryImpl) Create(ctx context.Context, p planning.Planning) (planning.Planning, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO plannings (id, user_id, is_template, day_of_week, date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + planningColumns

	created, err := scanPlanning(q.QueryRow(ctx, query,
		p.ID, p.UserID, p.IsTemplate, p.DayOfWeek, p.Date, p.StartTime, p.EndTime,
	))
	if err != nil {
		if database.IsUniqueViolation(err, templateDayConstraint) {
			return planning.Planning{}, planning.ErrTemplateDayExists
		}
		return planning.Planning{}, fmt.Errorf("insert planning: %w", err)
	}
	return created, nil
}

// CreateTemplates implements planning.PlanningRepository.
func (r *planningRepositoryImpl) CreateTemplates(ctx context.Context, plans []planning.Planning) error {
	if len(plans) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	for _, p := range plans {
		batch.Queue(`
			INSERT INTO plannings (id, user_id, is_template, day_of_week, start_time, end_time)
			VALUES ($1, $2, TRUE, $3, $4, $5)
			ON CONFLICT DO NOTHING
		`, p.ID, p.UserID, p.DayOfWeek, p.StartTime, p.EndTime)
	}

	results := q.SendBatch(ctx, batch)
	for range plans {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert template planning: %w", err)
		}
	}
	return results.Close()
}

// GetByID implements planning.PlanningRepository.
func (r *planningRepositoryImpl) GetByID(ctx context.Context, id string) (planning.Planning, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanPlanning(q.QueryRow(ctx, `SELECT `+planningColumns+` FROM plannings WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return planning.Planning{}, planning.ErrPlanningNotFound
		}
		return planning.Planning{}, fmt.Errorf("get planning %s: %w", id, err)
	}
	return found, nil
}

// Update implements planning.PlanningRepository.
func (r *planningRepositoryImpl) Update(ctx context.Context, p planning.Planning) (planning.Planning, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE plannings
		SET day_of_week = $2, date = $3, start_time = $4, end_time = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + planningColumns

	updated, err := scanPlanning(q.QueryRow(ctx, query, p.ID, p.DayOfWeek, p.Date, p.StartTime, p.EndTime))
	if err != nil {
		if database.IsNoRows(err) {
			return planning.Planning{}, planning.ErrPlanningNotFound
		}
		if database.IsUniqueViolation(err, templateDayConstraint) {
			return planning.Planning{}, planning.ErrTemplateDayExists
		}
		return planning.Planning{}, fmt.Errorf("update planning %s: %w", p.ID, err)
	}
	return updated, nil
}

// Delete implements planning.PlanningRepository.
func (r *planningRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM plannings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete planning %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return planning.ErrPlanningNotFound
	}
	return nil
}

// ListForUser implements planning.PlanningRepository.
func (r *planningRepositoryImpl) ListForUser(ctx context.Context, userID string) ([]planning.Planning, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+planningColumns+`
		FROM plannings
		WHERE user_id = $1
		ORDER BY is_template, date, day_of_week, created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list plannings for %s: %w", userID, err)
	}
	return collectPlannings(rows)
}

// ListTemplates implements planning.PlanningRepository.
func (r *planningRepositoryImpl) ListTemplates(ctx context.Context, userID string) ([]planning.Planning, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+planningColumns+`
		FROM plannings
		WHERE user_id = $1 AND is_template
		ORDER BY day_of_week
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates for %s: %w", userID, err)
	}
	return collectPlannings(rows)
}

// ListDated implements planning.PlanningRepository.
func (r *planningRepositoryImpl) ListDated(ctx context.Context, userID string, from, to time.Time) ([]planning.Planning, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+planningColumns+`
		FROM plannings
		WHERE user_id = $1 AND NOT is_template AND date >= $2::date AND date <= $3::date
		ORDER BY date, start_time
	`, userID, from.Format(planning.DateLayout), to.Format(planning.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list dated plannings for %s: %w", userID, err)
	}
	return collectPlannings(rows)
}
