package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type teamRepositoryImpl struct {
	db *database.DB
}

func NewTeamRepository(db *database.DB) team.TeamRepository {
	return &teamRepositoryImpl{db: db}
}

const teamColumns = `id, name, description, manager_id, created_at, updated_at`

func scanTeam(row pgx.Row) (team.Team, error) {
	var t team.Team
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.ManagerID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func collectTeams(rows pgx.Rows) ([]team.Team, error) {
	defer rows.Close()

	teams := make([]team.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create implements team.TeamRepository.
func (r *teamRepositoryImpl) Create(ctx context.Context, t team.Team) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO teams (id, name, description, manager_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + teamColumns

	created, err := scanTeam(q.QueryRow(ctx, query, t.ID, t.Name, t.Description, t.ManagerID))
	if err != nil {
		return team.Team{}, fmt.Errorf("insert team: %w", err)
	}
	return created, nil
}

// GetByID implements team.TeamRepository.
func (r *teamRepositoryImpl) GetByID(ctx context.Context, id string) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanTeam(q.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return team.Team{}, team.ErrTeamNotFound
		}
		return team.Team{}, fmt.Errorf("get team %s: %w", id, err)
	}
	return found, nil
}

// List implements team.TeamRepository.
func (r *teamRepositoryImpl) List(ctx context.Context) ([]team.Team, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return collectTeams(rows)
}

// ListForUser implements team.TeamRepository.
func (r *teamRepositoryImpl) ListForUser(ctx context.Context, userID string) ([]team.Team, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+teamColumns+`
		FROM teams t
		WHERE t.manager_id = $1
		   OR EXISTS (SELECT 1 FROM team_users tu WHERE tu.team_id = t.id AND tu.user_id = $1)
		ORDER BY t.name, t.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams for user %s: %w", userID, err)
	}
	return collectTeams(rows)
}

// Update implements team.TeamRepository.
func (r *teamRepositoryImpl) Update(ctx context.Context, t team.Team) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE teams
		SET name = $2, description = $3, manager_id = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + teamColumns

	updated, err := scanTeam(q.QueryRow(ctx, query, t.ID, t.Name, t.Description, t.ManagerID))
	if err != nil {
		if database.IsNoRows(err) {
			return team.Team{}, team.ErrTeamNotFound
		}
		return team.Team{}, fmt.Errorf("update team %s: %w", t.ID, err)
	}
	return updated, nil
}

// Delete implements team.TeamRepository.
func (r *teamRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete team %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrTeamNotFound
	}
	return nil
}

// AddMember implements team.TeamRepository.
func (r *teamRepositoryImpl) AddMember(ctx context.Context, teamID, userID string) (team.Membership, error) {
	q := GetQuerier(ctx, r.db)

	var m team.Membership
	err := q.QueryRow(ctx, `
		INSERT INTO team_users (team_id, user_id)
		VALUES ($1, $2)
		RETURNING team_id, user_id, created_at
	`, teamID, userID).Scan(&m.TeamID, &m.UserID, &m.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "team_users_pkey") {
			return team.Membership{}, team.ErrMemberExists
		}
		return team.Membership{}, fmt.Errorf("add member %s to team %s: %w", userID, teamID, err)
	}
	return m, nil
}

// RemoveMember implements team.TeamRepository.
func (r *teamRepositoryImpl) RemoveMember(ctx context.Context, teamID, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM team_users WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("remove member %s from team %s: %w", userID, teamID, err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrMemberNotFound
	}
	return nil
}

// IsMember implements team.TeamRepository.
func (r *teamRepositoryImpl) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_users WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

// ListMemberIDs implements team.TeamRepository.
func (r *teamRepositoryImpl) ListMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT user_id FROM team_users
		WHERE team_id = $1
		ORDER BY created_at, user_id
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list members of team %s: %w", teamID, err)
	}
	return collectIDs(rows)
}

// ScopeUserIDs implements team.TeamRepository.
func (r *teamRepositoryImpl) ScopeUserIDs(ctx context.Context, managerID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		WITH scoped AS (
			SELECT t.id, t.manager_id
			FROM teams t
			WHERE t.manager_id = $1
			   OR EXISTS (SELECT 1 FROM team_users tu WHERE tu.team_id = t.id AND tu.user_id = $1)
		)
		SELECT tu.user_id FROM team_users tu JOIN scoped s ON s.id = tu.team_id
		UNION
		SELECT s.manager_id FROM scoped s
	`, managerID)
	if err != nil {
		return nil, fmt.Errorf("resolve scope for %s: %w", managerID, err)
	}
	return collectIDs(rows)
}

// StrictScopeUserIDs implements team.TeamRepository.
func (r *teamRepositoryImpl) StrictScopeUserIDs(ctx context.Context, managerID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT DISTINCT tu.user_id
		FROM team_users tu
		JOIN teams t ON t.id = tu.team_id
		WHERE t.manager_id = $1
	`, managerID)
	if err != nil {
		return nil, fmt.Errorf("resolve strict scope for %s: %w", managerID, err)
	}
	return collectIDs(rows)
}
