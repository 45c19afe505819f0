package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type ImportRepo struct {
	db *DB
}

func NewImportRepo(db *DB) *ImportRepo {
	return &ImportRepo{db: db}
}

func (r *ImportRepo) CreateImport(ctx context.Context, imp models.Import) error {
	cfg, err := toJSONB(imp.Config)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO import (import_id, user_id, project_id, pipeline_task_id, name, description, type, config)
VALUES ($1, NULLIF($2,'')::uuid, $3, NULLIF($4,''), $5, $6, $7, $8)`,
		imp.ImportID, imp.UserID, imp.ProjectID, imp.PipelineTaskID,
		imp.Name, imp.Description, imp.Type, cfg,
	)
	if err != nil {
		return fmt.Errorf("create import: %w", err)
	}
	return nil
}

const importColumns = `import_id::text, COALESCE(user_id::text,''), project_id::text,
       COALESCE(pipeline_task_id,''), name, description, type, config,
       time_created, time_started, time_finished`

func scanImport(row pgx.Row) (models.Import, error) {
	var imp models.Import
	var cfg []byte
	err := row.Scan(&imp.ImportID, &imp.UserID, &imp.ProjectID,
		&imp.PipelineTaskID, &imp.Name, &imp.Description, &imp.Type, &cfg,
		&imp.TimeCreated, &imp.TimeStarted, &imp.TimeFinished)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Import{}, util.ErrNotFound
	}
	if err != nil {
		return models.Import{}, fmt.Errorf("scan import: %w", err)
	}
	if len(cfg) > 0 {
		imp.Config = &models.ImportConfig{}
		if err := fromJSONB(cfg, imp.Config); err != nil {
			return models.Import{}, err
		}
	}
	return imp, nil
}

func (r *ImportRepo) GetImport(ctx context.Context, importID string) (models.Import, error) {
	return scanImport(r.db.Pool.QueryRow(ctx,
		`SELECT `+importColumns+` FROM import WHERE import_id=$1`, importID))
}

func (r *ImportRepo) ListImports(ctx context.Context, projectID string) ([]models.Import, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+importColumns+` FROM import WHERE project_id=$1 ORDER BY time_created DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	out := make([]models.Import, 0)
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}
	return out, nil
}

// MarkStarted stamps the import as running, refusing to start when another
// import of the same project is already in flight.
func (r *ImportRepo) MarkStarted(ctx context.Context, importID, pipelineTaskID string) error {
	var running bool
	err := r.db.Pool.QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1 FROM import other
  WHERE other.project_id = (SELECT project_id FROM import WHERE import_id=$1)
    AND other.import_id != $1
    AND other.time_started IS NOT NULL AND other.time_finished IS NULL
)`, importID).Scan(&running)
	if err != nil {
		return fmt.Errorf("check running imports: %w", err)
	}
	if running {
		return util.ErrParallelImport
	}

	tag, err := r.db.Pool.Exec(ctx, `
UPDATE import SET time_started=NOW(), pipeline_task_id=NULLIF($2,'') WHERE import_id=$1`,
		importID, pipelineTaskID)
	if err != nil {
		return fmt.Errorf("mark import started: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (r *ImportRepo) MarkFinished(ctx context.Context, importID string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE import SET time_finished=NOW() WHERE import_id=$1`, importID)
	if err != nil {
		return fmt.Errorf("mark import finished: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

// LinkItem records the import/item relation. Existing links are kept as-is,
// importing an already-known item is a regular occurrence.
func (r *ImportRepo) LinkItem(ctx context.Context, importID, itemID string, linkType models.ImportItemType) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO m2m_import_item (import_id, item_id, type)
VALUES ($1, $2, $3)
ON CONFLICT (import_id, item_id) DO NOTHING`,
		importID, itemID, linkType)
	if err != nil {
		return fmt.Errorf("link import item: %w", err)
	}
	return nil
}

func (r *ImportRepo) ListImportItems(ctx context.Context, importID string) ([]models.ImportItem, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT import_id::text, item_id::text, type, time_created
FROM m2m_import_item
WHERE import_id=$1
ORDER BY time_created`, importID)
	if err != nil {
		return nil, fmt.Errorf("list import items: %w", err)
	}
	defer rows.Close()

	out := make([]models.ImportItem, 0)
	for rows.Next() {
		var m models.ImportItem
		if err := rows.Scan(&m.ImportID, &m.ItemID, &m.Type, &m.TimeCreated); err != nil {
			return nil, fmt.Errorf("scan import item: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ImportRepo) CountImportItems(ctx context.Context, importID string) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM m2m_import_item WHERE import_id=$1`, importID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count import items: %w", err)
	}
	return n, nil
}
