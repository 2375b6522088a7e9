package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type kpiRepositoryImpl struct {
	db *database.DB
}

func NewKPIRepository(db *database.DB) kpi.KPIRepository {
	return &kpiRepositoryImpl{db: db}
}

const kpiColumns = `id, name, description, metric, scope, target_user_id, target_team_id, params, created_by, created_at`

func scanKPI(row pgx.Row) (kpi.KPI, error) {
	var (
		k      kpi.KPI
		params []byte
	)
	err := row.Scan(
		&k.ID,
		&k.Name,
		&k.Description,
		&k.Metric,
		&k.Scope,
		&k.TargetUserID,
		&k.TargetTeamID,
		&params,
		&k.CreatedBy,
		&k.CreatedAt,
	)
	if len(params) > 0 {
		k.Params = params
	}
	return k, err
}

func collectKPIs(rows pgx.Rows) ([]kpi.KPI, error) {
	defer rows.Close()

	kpis := make([]kpi.KPI, 0)
	for rows.Next() {
		k, err := scanKPI(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kpi: %w", err)
		}
		kpis = append(kpis, k)
	}
	return kpis, rows.Err()
}

// Create implements kpi.KPIRepository.
func (r *kpiRepositoryImpl) Create(ctx context.Context, k kpi.KPI) (kpi.KPI, error) {
	q := GetQuerier(ctx, r.db)

	var params interface{}
	if len(k.Params) > 0 {
		params = string(k.Params)
	}

	query := `
		INSERT INTO kpis (id, name, description, metric, scope, target_user_id, target_team_id, params, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
		RETURNING ` + kpiColumns

	created, err := scanKPI(q.QueryRow(ctx, query,
		k.ID, k.Name, k.Description, k.Metric, k.Scope, k.TargetUserID, k.TargetTeamID, params, k.CreatedBy,
	))
	if err != nil {
		return kpi.KPI{}, fmt.Errorf("insert kpi: %w", err)
	}
	return created, nil
}

// GetByID implements kpi.KPIRepository.
func (r *kpiRepositoryImpl) GetByID(ctx context.Context, id string) (kpi.KPI, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanKPI(q.QueryRow(ctx, `SELECT `+kpiColumns+` FROM kpis WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return kpi.KPI{}, kpi.ErrKPINotFound
		}
		return kpi.KPI{}, fmt.Errorf("get kpi %s: %w", id, err)
	}
	return found, nil
}

// Delete implements kpi.KPIRepository.
func (r *kpiRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM kpis WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete kpi %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return kpi.ErrKPINotFound
	}
	return nil
}

// List implements kpi.KPIRepository.
func (r *kpiRepositoryImpl) List(ctx context.Context) ([]kpi.KPI, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+kpiColumns+` FROM kpis ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list kpis: %w", err)
	}
	return collectKPIs(rows)
}

// ListForManager implements kpi.KPIRepository.
func (r *kpiRepositoryImpl) ListForManager(ctx context.Context, managerID string, teamIDs, userIDs []string) ([]kpi.KPI, error) {
	q := GetQuerier(ctx, r.db)

	if teamIDs == nil {
		teamIDs = []string{}
	}
	if userIDs == nil {
		userIDs = []string{}
	}
	rows, err := q.Query(ctx, `
		SELECT `+kpiColumns+`
		FROM kpis
		WHERE created_by = $1
		   OR (scope = 'team' AND target_team_id = ANY($2::uuid[]))
		   OR (scope = 'user' AND target_user_id = ANY($3::uuid[]))
		ORDER BY created_at DESC, id
	`, managerID, teamIDs, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list kpis for manager %s: %w", managerID, err)
	}
	return collectKPIs(rows)
}

// ListForUser implements kpi.KPIRepository.
func (r *kpiRepositoryImpl) ListForUser(ctx context.Context, userID string) ([]kpi.KPI, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+kpiColumns+`
		FROM kpis
		WHERE scope = 'user' AND target_user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list kpis for user %s: %w", userID, err)
	}
	return collectKPIs(rows)
}
