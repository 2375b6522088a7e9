package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, firstname, lastname, email, phone, password_hash, profile,
		lateness_count, lateness_month, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Firstname,
		&u.Lastname,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.Role,
		&u.LatenessCount,
		&u.LatenessMonth,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func collectUsers(rows pgx.Rows) ([]user.User, error) {
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (id, firstname, lastname, email, phone, password_hash, profile)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.ID,
		newUser.Firstname,
		newUser.Lastname,
		newUser.Email,
		newUser.Phone,
		newUser.PasswordHash,
		newUser.Role,
	))
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("get user %s: %w", id, err)
	}

	return found, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("get user by email: %w", err)
	}

	return found, nil
}

// ExistsByEmail implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY lastname, firstname, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collectUsers(rows)
}

// ListByIDs implements user.UserRepository.
func (r *userRepositoryImpl) ListByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	if len(ids) == 0 {
		return []user.User{}, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ANY($1::uuid[])
		ORDER BY lastname, firstname, id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}
	return collectUsers(rows)
}

// Update implements user.UserRepository.
func (r *userRepositoryImpl) Update(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET firstname = $2, lastname = $3, email = $4, phone = $5,
			password_hash = $6, profile = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	updated, err := scanUser(q.QueryRow(ctx, query,
		u.ID,
		u.Firstname,
		u.Lastname,
		u.Email,
		u.Phone,
		u.PasswordHash,
		u.Role,
	))
	if err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrUserNotFound
		}
		if database.IsUniqueViolation(err, "users_email_key") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("update user %s: %w", u.ID, err)
	}

	return updated, nil
}

// Delete implements user.UserRepository.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err, "teams_manager_id_fkey") {
			return user.ErrUserManagesTeam
		}
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ApplyLateness implements user.UserRepository.
// Mirrors user.NextLatenessCounter in one statement so concurrent clock-outs cannot lose updates.
func (r *userRepositoryImpl) ApplyLateness(ctx context.Context, userID, monthKey string, late bool) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET lateness_count = CASE WHEN lateness_month IS NOT DISTINCT FROM $2 THEN lateness_count ELSE 0 END
				+ CASE WHEN $3 THEN 1 ELSE 0 END,
			lateness_month = $2
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, userID, monthKey, late)
	if err != nil {
		return fmt.Errorf("apply lateness for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ReconcileLateness implements user.UserRepository.
// The user rows are locked before counting: a clock-out that already holds its
// user's row commits first and is counted, one that has not yet reached the
// counter waits and then adds its own increment on top of the recount.
func (r *userRepositoryImpl) ReconcileLateness(ctx context.Context, monthKey string, from, to time.Time) (int64, error) {
	var changed int64
	err := NewTransactor(r.db).WithinTx(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		if _, err := q.Exec(ctx, `SELECT id FROM users ORDER BY id FOR UPDATE`); err != nil {
			return fmt.Errorf("lock users: %w", err)
		}

		query := `
			UPDATE users u
			SET lateness_count = COALESCE(c.late_count, 0),
				lateness_month = $1
			FROM users base
			LEFT JOIN (
				SELECT user_id, COUNT(*) AS late_count
				FROM clocks
				WHERE late AND clock_out IS NOT NULL AND clock_in >= $2 AND clock_in < $3
				GROUP BY user_id
			) c ON c.user_id = base.id
			WHERE u.id = base.id
			  AND (u.lateness_month IS DISTINCT FROM $1 OR u.lateness_count <> COALESCE(c.late_count, 0))
		`

		tag, err := q.Exec(ctx, query, monthKey, from, to)
		if err != nil {
			return err
		}
		changed = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("reconcile lateness for %s: %w", monthKey, err)
	}
	return changed, nil
}
