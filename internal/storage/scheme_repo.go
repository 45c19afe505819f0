package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

// SchemeRepo covers annotation schemes and their assignment scopes.
type SchemeRepo struct {
	db *DB
}

func NewSchemeRepo(db *DB) *SchemeRepo {
	return &SchemeRepo{db: db}
}

func (r *SchemeRepo) CreateScheme(ctx context.Context, s models.AnnotationScheme) error {
	labels, err := toJSONB(s.Labels)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO annotation_scheme (annotation_scheme_id, project_id, name, description, labels)
VALUES ($1, $2, $3, NULLIF($4,''), $5)`,
		s.SchemeID, s.ProjectID, s.Name, s.Description, labels,
	)
	if err != nil {
		return fmt.Errorf("create scheme: %w", err)
	}
	return nil
}

func (r *SchemeRepo) UpdateScheme(ctx context.Context, s models.AnnotationScheme) error {
	labels, err := toJSONB(s.Labels)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, `
UPDATE annotation_scheme
SET name=$2, description=NULLIF($3,''), labels=$4, time_updated=NOW()
WHERE annotation_scheme_id=$1`,
		s.SchemeID, s.Name, s.Description, labels,
	)
	if err != nil {
		return fmt.Errorf("update scheme: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

const schemeColumns = `annotation_scheme_id::text, project_id::text, name,
       COALESCE(description,''), labels, time_created, time_updated`

func scanScheme(row pgx.Row) (models.AnnotationScheme, error) {
	var s models.AnnotationScheme
	var labels []byte
	err := row.Scan(&s.SchemeID, &s.ProjectID, &s.Name, &s.Description, &labels, &s.TimeCreated, &s.TimeUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AnnotationScheme{}, util.ErrNotFound
	}
	if err != nil {
		return models.AnnotationScheme{}, fmt.Errorf("scan scheme: %w", err)
	}
	if err := fromJSONB(labels, &s.Labels); err != nil {
		return models.AnnotationScheme{}, err
	}
	return s, nil
}

func (r *SchemeRepo) GetScheme(ctx context.Context, schemeID string) (models.AnnotationScheme, error) {
	return scanScheme(r.db.Pool.QueryRow(ctx,
		`SELECT `+schemeColumns+` FROM annotation_scheme WHERE annotation_scheme_id=$1`, schemeID))
}

// GetSchemeForScope resolves the scheme a scope's assignments follow.
func (r *SchemeRepo) GetSchemeForScope(ctx context.Context, scopeID string) (models.AnnotationScheme, error) {
	return scanScheme(r.db.Pool.QueryRow(ctx, `
SELECT s.annotation_scheme_id::text, s.project_id::text, s.name,
       COALESCE(s.description,''), s.labels, s.time_created, s.time_updated
FROM annotation_scheme s
JOIN assignment_scope sc ON sc.annotation_scheme_id = s.annotation_scheme_id
WHERE sc.assignment_scope_id=$1`, scopeID))
}

func (r *SchemeRepo) ListSchemes(ctx context.Context, projectID string) ([]models.AnnotationScheme, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+schemeColumns+` FROM annotation_scheme WHERE project_id=$1 ORDER BY time_created DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}
	defer rows.Close()

	out := make([]models.AnnotationScheme, 0)
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SchemeRepo) DeleteScheme(ctx context.Context, schemeID string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM annotation_scheme WHERE annotation_scheme_id=$1`, schemeID)
	if err != nil {
		return fmt.Errorf("delete scheme: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (r *SchemeRepo) CreateScope(ctx context.Context, sc models.AssignmentScope) error {
	cfg, err := toJSONB(sc.Config)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO assignment_scope (assignment_scope_id, annotation_scheme_id, name, description, config)
VALUES ($1, $2, $3, NULLIF($4,''), $5)`,
		sc.ScopeID, sc.SchemeID, sc.Name, sc.Description, cfg,
	)
	if err != nil {
		return fmt.Errorf("create scope: %w", err)
	}
	return nil
}

const scopeColumns = `assignment_scope_id::text, annotation_scheme_id::text, name,
       COALESCE(description,''), config, time_created`

func scanScope(row pgx.Row) (models.AssignmentScope, error) {
	var sc models.AssignmentScope
	var cfg []byte
	err := row.Scan(&sc.ScopeID, &sc.SchemeID, &sc.Name, &sc.Description, &cfg, &sc.TimeCreated)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AssignmentScope{}, util.ErrNotFound
	}
	if err != nil {
		return models.AssignmentScope{}, fmt.Errorf("scan scope: %w", err)
	}
	if len(cfg) > 0 {
		sc.Config = &models.AssignmentScopeConfig{}
		if err := fromJSONB(cfg, sc.Config); err != nil {
			return models.AssignmentScope{}, err
		}
	}
	return sc, nil
}

func (r *SchemeRepo) GetScope(ctx context.Context, scopeID string) (models.AssignmentScope, error) {
	return scanScope(r.db.Pool.QueryRow(ctx,
		`SELECT `+scopeColumns+` FROM assignment_scope WHERE assignment_scope_id=$1`, scopeID))
}

func (r *SchemeRepo) ListScopes(ctx context.Context, schemeID string) ([]models.AssignmentScope, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+scopeColumns+` FROM assignment_scope WHERE annotation_scheme_id=$1 ORDER BY time_created DESC`, schemeID)
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	defer rows.Close()

	out := make([]models.AssignmentScope, 0)
	for rows.Next() {
		sc, err := scanScope(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ListScopesForProject lists scopes across all schemes of a project.
func (r *SchemeRepo) ListScopesForProject(ctx context.Context, projectID string) ([]models.AssignmentScope, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT sc.assignment_scope_id::text, sc.annotation_scheme_id::text, sc.name,
       COALESCE(sc.description,''), sc.config, sc.time_created
FROM assignment_scope sc
JOIN annotation_scheme s ON s.annotation_scheme_id = sc.annotation_scheme_id
WHERE s.project_id=$1
ORDER BY sc.time_created DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list scopes for project: %w", err)
	}
	defer rows.Close()

	out := make([]models.AssignmentScope, 0)
	for rows.Next() {
		sc, err := scanScope(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
