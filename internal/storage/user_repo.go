package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) CreateUser(ctx context.Context, u models.User) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO "user" (user_id, username, email, full_name, affiliation, password, is_superuser, is_active)
VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, $7, $8)`,
		u.UserID, u.Username, u.Email, u.FullName, u.Affiliation, u.Password, u.IsSuperuser, u.IsActive,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) UpdateUser(ctx context.Context, u models.User) error {
	tag, err := r.db.Pool.Exec(ctx, `
UPDATE "user"
SET username=$2, email=$3, full_name=$4, affiliation=NULLIF($5,''),
    password=$6, is_superuser=$7, is_active=$8
WHERE user_id=$1`,
		u.UserID, u.Username, u.Email, u.FullName, u.Affiliation, u.Password, u.IsSuperuser, u.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

const userColumns = `user_id::text, username, email, full_name, COALESCE(affiliation,''), password, is_superuser, is_active`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.UserID, &u.Username, &u.Email, &u.FullName, &u.Affiliation, &u.Password, &u.IsSuperuser, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, util.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM "user" WHERE user_id=$1`, userID))
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM "user" WHERE username=$1`, username))
}

func (r *UserRepo) ListUsers(ctx context.Context, activeOnly bool) ([]models.User, error) {
	q := `SELECT ` + userColumns + ` FROM "user"`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY username`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// ListProjectUsers returns all users holding a permission row for a project.
func (r *UserRepo) ListProjectUsers(ctx context.Context, projectID string) ([]models.User, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT u.user_id::text, u.username, u.email, u.full_name, COALESCE(u.affiliation,''), u.password, u.is_superuser, u.is_active
FROM "user" u
JOIN project_permissions pp ON pp.user_id = u.user_id
WHERE pp.project_id=$1
ORDER BY u.username`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project users: %w", err)
	}
	defer rows.Close()

	out := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) SaveToken(ctx context.Context, t models.AuthToken) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO auth_token (token_id, username, valid_til)
VALUES ($1, $2, $3)
ON CONFLICT (token_id) DO UPDATE SET valid_til = EXCLUDED.valid_til`,
		t.TokenID, t.Username, t.ValidTil,
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *UserRepo) GetToken(ctx context.Context, tokenID string) (models.AuthToken, error) {
	var t models.AuthToken
	err := r.db.Pool.QueryRow(ctx,
		`SELECT token_id::text, username, valid_til FROM auth_token WHERE token_id=$1`, tokenID).
		Scan(&t.TokenID, &t.Username, &t.ValidTil)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AuthToken{}, util.ErrNotFound
	}
	if err != nil {
		return models.AuthToken{}, fmt.Errorf("get token: %w", err)
	}
	return t, nil
}

func (r *UserRepo) DeleteToken(ctx context.Context, tokenID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM auth_token WHERE token_id=$1`, tokenID)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
