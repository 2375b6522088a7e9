package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type clockRepositoryImpl struct {
	db *database.DB
}

func NewClockRepository(db *database.DB) clock.ClockRepository {
	return &clockRepositoryImpl{db: db}
}

const clockColumns = `id, user_id, clock_in, clock_out, hours_worked, late, early_leave, short_day, created_at, updated_at`

func scanClock(row pgx.Row) (clock.Clock, error) {
	var c clock.Clock
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.ClockIn,
		&c.ClockOut,
		&c.HoursWorked,
		&c.Late,
		&c.EarlyLeave,
		&c.ShortDay,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func collectClocks(rows pgx.Rows) ([]clock.Clock, error) {
	defer rows.Close()

	clocks := make([]clock.Clock, 0)
	for rows.Next() {
		c, err := scanClock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clock: %w", err)
		}
		clocks = append(clocks, c)
	}
	return clocks, rows.Err()
}

// Create implements clock.ClockRepository.
func (r *clockRepositoryImpl) Create(ctx context.Context, c clock.Clock) (clock.Clock, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO clocks (id, user_id, clock_in)
		VALUES ($1, $2, $3)
		RETURNING ` + clockColumns

	created, err := scanClock(q.QueryRow(ctx, query, c.ID, c.UserID, c.ClockIn))
	if err != nil {
		if database.IsUniqueViolation(err, "clocks_one_open_per_user") {
			return clock.Clock{}, clock.ErrOpenClockExists
		}
		return clock.Clock{}, fmt.Errorf("insert clock: %w", err)
	}
	return created, nil
}

// GetByID implements clock.ClockRepository.
func (r *clockRepositoryImpl) GetByID(ctx context.Context, id string) (clock.Clock, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanClock(q.QueryRow(ctx, `SELECT `+clockColumns+` FROM clocks WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return clock.Clock{}, clock.ErrClockNotFound
		}
		return clock.Clock{}, fmt.Errorf("get clock %s: %w", id, err)
	}
	return found, nil
}

// HasOpenClock implements clock.ClockRepository.
func (r *clockRepositoryImpl) HasOpenClock(ctx context.Context, userID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM clocks WHERE user_id = $1 AND clock_out IS NULL)
	`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check open clock: %w", err)
	}
	return exists, nil
}

// Close implements clock.ClockRepository.
func (r *clockRepositoryImpl) Close(ctx context.Context, c clock.Clock) (clock.Clock, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE clocks
		SET clock_out = $2, hours_worked = $3, late = $4, early_leave = $5, short_day = $6,
			updated_at = NOW()
		WHERE id = $1 AND clock_out IS NULL
		RETURNING ` + clockColumns

	closed, err := scanClock(q.QueryRow(ctx, query, c.ID, c.ClockOut, c.HoursWorked, c.Late, c.EarlyLeave, c.ShortDay))
	if err != nil {
		if database.IsNoRows(err) {
			return clock.Clock{}, clock.ErrClockAlreadyClosed
		}
		return clock.Clock{}, fmt.Errorf("close clock %s: %w", c.ID, err)
	}
	return closed, nil
}

// Delete implements clock.ClockRepository.
func (r *clockRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM clocks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete clock %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return clock.ErrClockNotFound
	}
	return nil
}

// List implements clock.ClockRepository.
func (r *clockRepositoryImpl) List(ctx context.Context, filter clock.ListFilter) ([]clock.Clock, error) {
	q := GetQuerier(ctx, r.db)

	var (
		where []string
		args  []interface{}
	)
	if filter.UserIDs != nil {
		args = append(args, filter.UserIDs)
		where = append(where, fmt.Sprintf("user_id = ANY($%d::uuid[])", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("clock_in >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("clock_in <= $%d", len(args)))
	}

	query := `SELECT ` + clockColumns + ` FROM clocks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY clock_in DESC, id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clocks: %w", err)
	}
	return collectClocks(rows)
}

// ListInRange implements clock.ClockRepository.
func (r *clockRepositoryImpl) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]clock.Clock, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+clockColumns+`
		FROM clocks
		WHERE user_id = $1 AND clock_in >= $2 AND clock_in <= $3
		ORDER BY clock_in
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list clocks in range for %s: %w", userID, err)
	}
	return collectClocks(rows)
}

// SumHours implements clock.ClockRepository.
func (r *clockRepositoryImpl) SumHours(ctx context.Context, userID string, start, end time.Time) (float64, error) {
	q := GetQuerier(ctx, r.db)

	var total float64
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(hours_worked), 0)::double precision
		FROM clocks
		WHERE user_id = $1 AND clock_in >= $2 AND clock_in <= $3 AND hours_worked IS NOT NULL
	`, userID, start, end).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum hours for %s: %w", userID, err)
	}
	return total, nil
}

// CountInRange implements clock.ClockRepository.
func (r *clockRepositoryImpl) CountInRange(ctx context.Context, userID string, start, end time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM clocks
		WHERE user_id = $1 AND clock_in >= $2 AND clock_in <= $3
	`, userID, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count clocks for %s: %w", userID, err)
	}
	return count, nil
}
