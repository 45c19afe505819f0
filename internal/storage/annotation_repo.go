package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type AnnotationRepo struct {
	db *DB
}

func NewAnnotationRepo(db *DB) *AnnotationRepo {
	return &AnnotationRepo{db: db}
}

// checkAnnotationMatch guards the invariant that an annotation's replicated
// user, item and scheme columns agree with its assignment. Empty fields pass
// and are filled from the assignment on insert.
func checkAnnotationMatch(a models.Annotation, asg models.Assignment) error {
	if (a.UserID != "" && a.UserID != asg.UserID) ||
		(a.ItemID != "" && a.ItemID != asg.ItemID) ||
		(a.SchemeID != "" && a.SchemeID != asg.SchemeID) {
		return fmt.Errorf("annotation does not match assignment %s: %w", a.AssignmentID, util.ErrInvalidConfig)
	}
	return nil
}

// SaveAnnotation upserts one annotation. User, item and scheme are forced to
// match the assignment, so replicated columns cannot drift.
func (r *AnnotationRepo) SaveAnnotation(ctx context.Context, a models.Annotation) error {
	asg, err := scanAssignment(r.db.Pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignment WHERE assignment_id=$1`, a.AssignmentID))
	if err != nil {
		return fmt.Errorf("resolve assignment: %w", err)
	}
	if err := checkAnnotationMatch(a, asg); err != nil {
		return err
	}

	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO annotation (annotation_id, assignment_id, user_id, item_id, annotation_scheme_id,
  key, repeat, parent, value_bool, value_int, value_float, value_str,
  text_offset_start, text_offset_stop)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8,'')::uuid, $9, $10, $11, $12, $13, $14)
ON CONFLICT (assignment_id, key, parent, repeat) DO UPDATE SET
  value_bool = EXCLUDED.value_bool,
  value_int = EXCLUDED.value_int,
  value_float = EXCLUDED.value_float,
  value_str = EXCLUDED.value_str,
  text_offset_start = EXCLUDED.text_offset_start,
  text_offset_stop = EXCLUDED.text_offset_stop,
  time_updated = NOW()`,
		a.AnnotationID, a.AssignmentID, asg.UserID, asg.ItemID, asg.SchemeID,
		a.Key, a.Repeat, a.Parent, a.ValueBool, a.ValueInt, a.ValueFloat, a.ValueStr,
		a.TextOffsetStart, a.TextOffsetStop,
	)
	if err != nil {
		return fmt.Errorf("save annotation: %w", err)
	}
	return nil
}

const annotationColumns = `annotation_id::text, assignment_id::text, user_id::text, item_id::text,
       annotation_scheme_id::text, key, repeat, COALESCE(parent::text,''),
       value_bool, value_int, value_float, value_str,
       text_offset_start, text_offset_stop, time_created, time_updated`

func scanAnnotation(row pgx.Row) (models.Annotation, error) {
	var a models.Annotation
	err := row.Scan(&a.AnnotationID, &a.AssignmentID, &a.UserID, &a.ItemID,
		&a.SchemeID, &a.Key, &a.Repeat, &a.Parent,
		&a.ValueBool, &a.ValueInt, &a.ValueFloat, &a.ValueStr,
		&a.TextOffsetStart, &a.TextOffsetStop, &a.TimeCreated, &a.TimeUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Annotation{}, util.ErrNotFound
	}
	if err != nil {
		return models.Annotation{}, fmt.Errorf("scan annotation: %w", err)
	}
	return a, nil
}

func collectAnnotations(rows pgx.Rows) ([]models.Annotation, error) {
	out := make([]models.Annotation, 0)
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}
	return out, nil
}

func (r *AnnotationRepo) ListAnnotationsForAssignment(ctx context.Context, assignmentID string) ([]models.Annotation, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+annotationColumns+` FROM annotation WHERE assignment_id=$1 ORDER BY key, repeat`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list annotations for assignment: %w", err)
	}
	defer rows.Close()
	return collectAnnotations(rows)
}

func (r *AnnotationRepo) ListAnnotationsForItem(ctx context.Context, itemID string) ([]models.Annotation, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+annotationColumns+` FROM annotation WHERE item_id=$1 ORDER BY user_id, key, repeat`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list annotations for item: %w", err)
	}
	defer rows.Close()
	return collectAnnotations(rows)
}

// ListAnnotationsForScope returns all annotations collected in one scope,
// the unit at which annotations get resolved and exported.
func (r *AnnotationRepo) ListAnnotationsForScope(ctx context.Context, scopeID string) ([]models.Annotation, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT a.annotation_id::text, a.assignment_id::text, a.user_id::text, a.item_id::text,
       a.annotation_scheme_id::text, a.key, a.repeat, COALESCE(a.parent::text,''),
       a.value_bool, a.value_int, a.value_float, a.value_str,
       a.text_offset_start, a.text_offset_stop, a.time_created, a.time_updated
FROM annotation a
JOIN assignment s ON s.assignment_id = a.assignment_id
WHERE s.assignment_scope_id=$1
ORDER BY a.item_id, a.user_id, a.key, a.repeat`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("list annotations for scope: %w", err)
	}
	defer rows.Close()
	return collectAnnotations(rows)
}

func (r *AnnotationRepo) DeleteAnnotation(ctx context.Context, annotationID string) error {
	// Child annotations cascade via the parent FK.
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM annotation WHERE annotation_id=$1`, annotationID)
	if err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}
