package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type BotAnnotationRepo struct {
	db *DB
}

func NewBotAnnotationRepo(db *DB) *BotAnnotationRepo {
	return &BotAnnotationRepo{db: db}
}

func (r *BotAnnotationRepo) CreateMetaData(ctx context.Context, m models.BotAnnotationMetaData) error {
	meta, err := toJSONB(m.Meta)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO bot_annotation_metadata (bot_annotation_metadata_id, name, kind, project_id,
  assignment_scope_id, annotation_scheme_id, meta)
VALUES ($1, $2, $3, $4, NULLIF($5,'')::uuid, NULLIF($6,'')::uuid, $7)`,
		m.MetaID, m.Name, m.Kind, m.ProjectID, m.ScopeID, m.SchemeID, meta,
	)
	if err != nil {
		return fmt.Errorf("create bot annotation metadata: %w", err)
	}
	return nil
}

func (r *BotAnnotationRepo) GetMetaData(ctx context.Context, metaID string) (models.BotAnnotationMetaData, error) {
	var m models.BotAnnotationMetaData
	var meta []byte
	err := r.db.Pool.QueryRow(ctx, `
SELECT bot_annotation_metadata_id::text, name, kind, project_id::text,
       COALESCE(assignment_scope_id::text,''), COALESCE(annotation_scheme_id::text,''), meta
FROM bot_annotation_metadata
WHERE bot_annotation_metadata_id=$1`, metaID).
		Scan(&m.MetaID, &m.Name, &m.Kind, &m.ProjectID, &m.ScopeID, &m.SchemeID, &meta)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.BotAnnotationMetaData{}, util.ErrNotFound
	}
	if err != nil {
		return models.BotAnnotationMetaData{}, fmt.Errorf("get bot annotation metadata: %w", err)
	}
	if err := fromJSONB(meta, &m.Meta); err != nil {
		return models.BotAnnotationMetaData{}, err
	}
	return m, nil
}

// SaveBotAnnotations upserts a batch belonging to one metadata row; re-running
// a bot against the same scope overwrites its previous values.
func (r *BotAnnotationRepo) SaveBotAnnotations(ctx context.Context, annotations []models.BotAnnotation) error {
	if len(annotations) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bot annotations: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range annotations {
		if _, err := tx.Exec(ctx, `
INSERT INTO bot_annotation (bot_annotation_id, bot_annotation_metadata_id, item_id,
  key, repeat, value_bool, value_int, value_float, value_str, confidence)
VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, $7, $8, $9, $10)
ON CONFLICT (bot_annotation_metadata_id, item_id, key, repeat) DO UPDATE SET
  value_bool = EXCLUDED.value_bool,
  value_int = EXCLUDED.value_int,
  value_float = EXCLUDED.value_float,
  value_str = EXCLUDED.value_str,
  confidence = EXCLUDED.confidence,
  time_updated = NOW()`,
			b.BotAnnotationID, b.MetaID, b.ItemID,
			b.Key, b.Repeat, b.ValueBool, b.ValueInt, b.ValueFloat, b.ValueStr, b.Confidence,
		); err != nil {
			return fmt.Errorf("save bot annotation: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *BotAnnotationRepo) ListBotAnnotations(ctx context.Context, metaID string) ([]models.BotAnnotation, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT bot_annotation_id::text, bot_annotation_metadata_id::text, item_id::text,
       COALESCE(key,''), repeat, value_bool, value_int, value_float, value_str,
       confidence, time_created, time_updated
FROM bot_annotation
WHERE bot_annotation_metadata_id=$1
ORDER BY item_id, key, repeat`, metaID)
	if err != nil {
		return nil, fmt.Errorf("list bot annotations: %w", err)
	}
	defer rows.Close()

	out := make([]models.BotAnnotation, 0)
	for rows.Next() {
		var b models.BotAnnotation
		if err := rows.Scan(&b.BotAnnotationID, &b.MetaID, &b.ItemID,
			&b.Key, &b.Repeat, &b.ValueBool, &b.ValueInt, &b.ValueFloat, &b.ValueStr,
			&b.Confidence, &b.TimeCreated, &b.TimeUpdated); err != nil {
			return nil, fmt.Errorf("scan bot annotation: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bot annotations: %w", err)
	}
	return out, nil
}
