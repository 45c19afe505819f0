package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type AssignmentRepo struct {
	db *DB
}

func NewAssignmentRepo(db *DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// CreateAssignments bulk-inserts the assignments of a freshly generated
// scope in one transaction, preserving their order.
func (r *AssignmentRepo) CreateAssignments(ctx context.Context, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin assignments: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range assignments {
		if _, err := tx.Exec(ctx, `
INSERT INTO assignment (assignment_id, assignment_scope_id, user_id, item_id, annotation_scheme_id, status)
VALUES ($1, $2, $3, $4, $5, $6)`,
			a.AssignmentID, a.ScopeID, a.UserID, a.ItemID, a.SchemeID, a.Status,
		); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}
	return tx.Commit(ctx)
}

const assignmentColumns = `assignment_id::text, assignment_scope_id::text, user_id::text,
       item_id::text, annotation_scheme_id::text, status, "order"`

func scanAssignment(row pgx.Row) (models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(&a.AssignmentID, &a.ScopeID, &a.UserID, &a.ItemID, &a.SchemeID, &a.Status, &a.Order)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Assignment{}, util.ErrNotFound
	}
	if err != nil {
		return models.Assignment{}, fmt.Errorf("scan assignment: %w", err)
	}
	return a, nil
}

func (r *AssignmentRepo) GetAssignment(ctx context.Context, assignmentID string) (models.Assignment, error) {
	return scanAssignment(r.db.Pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignment WHERE assignment_id=$1`, assignmentID))
}

func (r *AssignmentRepo) ListAssignmentsForScope(ctx context.Context, scopeID string) ([]models.Assignment, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignment WHERE assignment_scope_id=$1 ORDER BY "order"`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("list assignments for scope: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (r *AssignmentRepo) ListAssignmentsForUser(ctx context.Context, scopeID, userID string) ([]models.Assignment, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT `+assignmentColumns+`
FROM assignment
WHERE assignment_scope_id=$1 AND user_id=$2
ORDER BY "order"`, scopeID, userID)
	if err != nil {
		return nil, fmt.Errorf("list assignments for user: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func collectAssignments(rows pgx.Rows) ([]models.Assignment, error) {
	out := make([]models.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return out, nil
}

// NextOpenAssignment returns the user's next not-yet-finished assignment in a
// scope, ordered by assignment order.
func (r *AssignmentRepo) NextOpenAssignment(ctx context.Context, scopeID, userID string) (models.Assignment, error) {
	return scanAssignment(r.db.Pool.QueryRow(ctx, `
SELECT `+assignmentColumns+`
FROM assignment
WHERE assignment_scope_id=$1 AND user_id=$2 AND status != 'FULL'
ORDER BY "order"
LIMIT 1`, scopeID, userID))
}

// CountOpenAssignments returns the per-status counts for a user in a scope.
func (r *AssignmentRepo) CountAssignments(ctx context.Context, scopeID, userID string) (open, partial, full int, err error) {
	err = r.db.Pool.QueryRow(ctx, `
SELECT COUNT(*) FILTER (WHERE status='OPEN'),
       COUNT(*) FILTER (WHERE status='PARTIAL'),
       COUNT(*) FILTER (WHERE status='FULL')
FROM assignment
WHERE assignment_scope_id=$1 AND user_id=$2`, scopeID, userID).
		Scan(&open, &partial, &full)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count assignments: %w", err)
	}
	return open, partial, full, nil
}

func (r *AssignmentRepo) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status models.AssignmentStatus) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE assignment SET status=$2 WHERE assignment_id=$1`, assignmentID, status)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}
