package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type ItemRepo struct {
	db *DB
}

func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// checkItemType guards the invariant that all items of a project carry the
// project's type (generic items are additionally allowed for "basic" and
// full texts everywhere, the extension table is the same).
func checkItemType(projectType models.ProjectType, itemType models.ItemType) error {
	switch projectType {
	case models.ProjectTypeTwitter:
		if itemType == models.ItemTypeTwitter {
			return nil
		}
	case models.ProjectTypeAcademic, models.ProjectTypePatents:
		if itemType == models.ItemTypeAcademic || itemType == models.ItemTypeFullText {
			return nil
		}
	case models.ProjectTypeBasic:
		if itemType == models.ItemTypeGeneric || itemType == models.ItemTypeFullText {
			return nil
		}
	}
	return fmt.Errorf("%w: item type %q in %q project", util.ErrTypeMismatch, itemType, projectType)
}

// insertBaseItem writes the base row after validating the item type against
// the project type. Runs inside the caller's transaction.
func insertBaseItem(ctx context.Context, tx pgx.Tx, it models.Item) error {
	var projectType models.ProjectType
	err := tx.QueryRow(ctx, `SELECT type FROM project WHERE project_id=$1`, it.ProjectID).Scan(&projectType)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get project type: %w", err)
	}
	if err := checkItemType(projectType, it.Type); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO item (item_id, project_id, text, type) VALUES ($1, $2, $3, $4)`,
		it.ItemID, it.ProjectID, util.SanitizeText(it.Text), it.Type,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepo) GetItem(ctx context.Context, itemID string) (models.Item, error) {
	var it models.Item
	err := r.db.Pool.QueryRow(ctx, `
SELECT item_id::text, project_id::text, text, type FROM item WHERE item_id=$1`, itemID).
		Scan(&it.ItemID, &it.ProjectID, &it.Text, &it.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Item{}, util.ErrNotFound
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (r *ItemRepo) ListItems(ctx context.Context, projectID string, limit, offset int) ([]models.Item, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT item_id::text, project_id::text, text, type
FROM item
WHERE project_id=$1
ORDER BY item_id
LIMIT $2 OFFSET $3`, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	out := make([]models.Item, 0)
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ItemID, &it.ProjectID, &it.Text, &it.Type); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}

func (r *ItemRepo) CountItems(ctx context.Context, projectID string) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM item WHERE project_id=$1`, projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// RandomItemIDs draws a random sample of item IDs from a project, used when
// generating annotation assignments.
func (r *ItemRepo) RandomItemIDs(ctx context.Context, projectID string, numItems int) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT item_id::text FROM item WHERE project_id=$1 ORDER BY random() LIMIT $2`,
		projectID, numItems)
	if err != nil {
		return nil, fmt.Errorf("random items: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, numItems)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan random item: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// RandomItemIDsExcluding draws a sample while skipping items that already have
// an assignment in any of the excluded scopes.
func (r *ItemRepo) RandomItemIDsExcluding(ctx context.Context, projectID string, numItems int, excludedScopes []string) ([]string, error) {
	if len(excludedScopes) == 0 {
		return r.RandomItemIDs(ctx, projectID, numItems)
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT i.item_id::text
FROM item i
WHERE i.project_id=$1
  AND NOT EXISTS (
    SELECT 1 FROM assignment a
    WHERE a.item_id = i.item_id AND a.assignment_scope_id = ANY($3)
  )
ORDER BY random()
LIMIT $2`, projectID, numItems, excludedScopes)
	if err != nil {
		return nil, fmt.Errorf("random items excluding scopes: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, numItems)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan random item: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *ItemRepo) DeleteItem(ctx context.Context, itemID string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM item WHERE item_id=$1`, itemID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

// CreateGenericItem writes the base row plus the generic extension. Full-text
// items share the extension table, their body lives in item.text.
func (r *ItemRepo) CreateGenericItem(ctx context.Context, g models.GenericItem, itemType models.ItemType) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin generic item: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertBaseItem(ctx, tx, models.Item{
		ItemID: g.ItemID, ProjectID: g.ProjectID, Text: g.Text, Type: itemType,
	}); err != nil {
		return err
	}

	meta, err := toJSONB(g.Meta)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO generic_item (item_id, meta) VALUES ($1, $2)`, g.ItemID, meta); err != nil {
		return fmt.Errorf("insert generic item: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *ItemRepo) GetGenericItem(ctx context.Context, itemID string) (models.GenericItem, error) {
	var g models.GenericItem
	var meta []byte
	err := r.db.Pool.QueryRow(ctx, `
SELECT i.item_id::text, i.project_id::text, i.text, g.meta
FROM item i JOIN generic_item g ON g.item_id = i.item_id
WHERE i.item_id=$1`, itemID).
		Scan(&g.ItemID, &g.ProjectID, &g.Text, &meta)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.GenericItem{}, util.ErrNotFound
	}
	if err != nil {
		return models.GenericItem{}, fmt.Errorf("get generic item: %w", err)
	}
	if err := fromJSONB(meta, &g.Meta); err != nil {
		return models.GenericItem{}, err
	}
	return g, nil
}
