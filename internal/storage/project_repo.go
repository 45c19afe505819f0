package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type ProjectRepo struct {
	db *DB
}

func NewProjectRepo(db *DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

func (r *ProjectRepo) CreateProject(ctx context.Context, p models.Project) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO project (project_id, name, description, type)
VALUES ($1, $2, NULLIF($3,''), $4)`,
		p.ProjectID, p.Name, p.Description, p.Type,
	)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepo) UpdateProject(ctx context.Context, p models.Project) error {
	tag, err := r.db.Pool.Exec(ctx, `
UPDATE project SET name=$2, description=NULLIF($3,''), type=$4 WHERE project_id=$1`,
		p.ProjectID, p.Name, p.Description, p.Type,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (r *ProjectRepo) GetProject(ctx context.Context, projectID string) (models.Project, error) {
	var p models.Project
	err := r.db.Pool.QueryRow(ctx, `
SELECT project_id::text, name, COALESCE(description,''), type
FROM project WHERE project_id=$1`, projectID).
		Scan(&p.ProjectID, &p.Name, &p.Description, &p.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Project{}, util.ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepo) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT project_id::text, name, COALESCE(description,''), type
FROM project ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]models.Project, 0)
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ProjectID, &p.Name, &p.Description, &p.Type); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

// ListProjectsForUser returns projects the user has a permission row for;
// superusers see everything.
func (r *ProjectRepo) ListProjectsForUser(ctx context.Context, userID string) ([]models.Project, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT DISTINCT p.project_id::text, p.name, COALESCE(p.description,''), p.type
FROM project p
LEFT JOIN project_permissions pp ON pp.project_id = p.project_id
WHERE pp.user_id=$1 OR EXISTS (SELECT 1 FROM "user" u WHERE u.user_id=$1 AND u.is_superuser)
ORDER BY p.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects for user: %w", err)
	}
	defer rows.Close()

	out := make([]models.Project, 0)
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ProjectID, &p.Name, &p.Description, &p.Type); err != nil {
			return nil, fmt.Errorf("scan project for user: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) DeleteProject(ctx context.Context, projectID string) error {
	// Items, schemes, scopes, assignments, annotations and imports go with it
	// via ON DELETE CASCADE.
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM project WHERE project_id=$1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

const permissionColumns = `project_permission_id::text, project_id::text, user_id::text, owner,
       dataset_read, dataset_edit, imports_read, imports_edit,
       annotations_read, annotations_edit, pipelines_read, pipelines_edit,
       artefacts_read, artefacts_edit`

func scanPermissions(row pgx.Row) (models.ProjectPermissions, error) {
	var pp models.ProjectPermissions
	err := row.Scan(&pp.ProjectPermissionID, &pp.ProjectID, &pp.UserID, &pp.Owner,
		&pp.DatasetRead, &pp.DatasetEdit, &pp.ImportsRead, &pp.ImportsEdit,
		&pp.AnnotationsRead, &pp.AnnotationsEdit, &pp.PipelinesRead, &pp.PipelinesEdit,
		&pp.ArtefactsRead, &pp.ArtefactsEdit)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ProjectPermissions{}, util.ErrNotFound
	}
	if err != nil {
		return models.ProjectPermissions{}, fmt.Errorf("scan permissions: %w", err)
	}
	return pp, nil
}

func (r *ProjectRepo) UpsertPermissions(ctx context.Context, pp models.ProjectPermissions) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO project_permissions (project_permission_id, project_id, user_id, owner,
  dataset_read, dataset_edit, imports_read, imports_edit,
  annotations_read, annotations_edit, pipelines_read, pipelines_edit,
  artefacts_read, artefacts_edit)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (project_id, user_id) DO UPDATE SET
  owner = EXCLUDED.owner,
  dataset_read = EXCLUDED.dataset_read, dataset_edit = EXCLUDED.dataset_edit,
  imports_read = EXCLUDED.imports_read, imports_edit = EXCLUDED.imports_edit,
  annotations_read = EXCLUDED.annotations_read, annotations_edit = EXCLUDED.annotations_edit,
  pipelines_read = EXCLUDED.pipelines_read, pipelines_edit = EXCLUDED.pipelines_edit,
  artefacts_read = EXCLUDED.artefacts_read, artefacts_edit = EXCLUDED.artefacts_edit`,
		pp.ProjectPermissionID, pp.ProjectID, pp.UserID, pp.Owner,
		pp.DatasetRead, pp.DatasetEdit, pp.ImportsRead, pp.ImportsEdit,
		pp.AnnotationsRead, pp.AnnotationsEdit, pp.PipelinesRead, pp.PipelinesEdit,
		pp.ArtefactsRead, pp.ArtefactsEdit,
	)
	if err != nil {
		return fmt.Errorf("upsert permissions: %w", err)
	}
	return nil
}

func (r *ProjectRepo) GetPermissions(ctx context.Context, projectID, userID string) (models.ProjectPermissions, error) {
	return scanPermissions(r.db.Pool.QueryRow(ctx,
		`SELECT `+permissionColumns+` FROM project_permissions WHERE project_id=$1 AND user_id=$2`,
		projectID, userID))
}

func (r *ProjectRepo) ListPermissions(ctx context.Context, projectID string) ([]models.ProjectPermissions, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+permissionColumns+` FROM project_permissions WHERE project_id=$1`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	out := make([]models.ProjectPermissions, 0)
	for rows.Next() {
		pp, err := scanPermissions(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pp)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) ListAllPermissions(ctx context.Context) ([]models.ProjectPermissions, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+permissionColumns+` FROM project_permissions`)
	if err != nil {
		return nil, fmt.Errorf("list all permissions: %w", err)
	}
	defer rows.Close()

	out := make([]models.ProjectPermissions, 0)
	for rows.Next() {
		pp, err := scanPermissions(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pp)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) DeletePermissions(ctx context.Context, projectPermissionID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM project_permissions WHERE project_permission_id=$1`, projectPermissionID)
	if err != nil {
		return fmt.Errorf("delete permissions: %w", err)
	}
	return nil
}
