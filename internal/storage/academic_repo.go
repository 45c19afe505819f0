package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type AcademicRepo struct {
	db *DB
}

func NewAcademicRepo(db *DB) *AcademicRepo {
	return &AcademicRepo{db: db}
}

// CreateAcademicItem writes the base row plus the academic extension.
func (r *AcademicRepo) CreateAcademicItem(ctx context.Context, a models.AcademicItem) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin academic item: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertBaseItem(ctx, tx, models.Item{
		ItemID: a.ItemID, ProjectID: a.ProjectID, Text: a.Text, Type: models.ItemTypeAcademic,
	}); err != nil {
		return err
	}

	keywords, err := toJSONB(a.Keywords)
	if err != nil {
		return err
	}
	authors, err := toJSONB(a.Authors)
	if err != nil {
		return err
	}
	meta, err := toJSONB(a.Meta)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO academic_item (item_id, doi, wos_id, scopus_id, openalex_id, s2_id, pubmed_id,
  title, title_slug, publication_year, source, keywords, authors, meta)
VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), NULLIF($7,''),
  NULLIF($8,''), NULLIF($9,''), $10, NULLIF($11,''), $12, $13, $14)`,
		a.ItemID, a.DOI, a.WosID, a.ScopusID, a.OpenAlexID, a.S2ID, a.PubmedID,
		a.Title, a.TitleSlug, a.PublicationYear, a.Source, keywords, authors, meta,
	)
	if err != nil {
		return fmt.Errorf("insert academic item: %w", err)
	}
	return tx.Commit(ctx)
}

// UpdateAcademicItem fills gaps in an existing record with data from another
// source; present values win over incoming ones except for the source IDs,
// which are merged.
func (r *AcademicRepo) UpdateAcademicItem(ctx context.Context, a models.AcademicItem) error {
	keywords, err := toJSONB(a.Keywords)
	if err != nil {
		return err
	}
	authors, err := toJSONB(a.Authors)
	if err != nil {
		return err
	}
	meta, err := toJSONB(a.Meta)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, `
UPDATE academic_item SET
  doi = COALESCE(academic_item.doi, NULLIF($2,'')),
  wos_id = COALESCE(academic_item.wos_id, NULLIF($3,'')),
  scopus_id = COALESCE(academic_item.scopus_id, NULLIF($4,'')),
  openalex_id = COALESCE(academic_item.openalex_id, NULLIF($5,'')),
  s2_id = COALESCE(academic_item.s2_id, NULLIF($6,'')),
  pubmed_id = COALESCE(academic_item.pubmed_id, NULLIF($7,'')),
  title = COALESCE(academic_item.title, NULLIF($8,'')),
  title_slug = COALESCE(academic_item.title_slug, NULLIF($9,'')),
  publication_year = COALESCE(academic_item.publication_year, $10),
  source = COALESCE(academic_item.source, NULLIF($11,'')),
  keywords = COALESCE(academic_item.keywords, $12),
  authors = COALESCE(academic_item.authors, $13),
  meta = COALESCE(academic_item.meta, $14)
WHERE item_id=$1`,
		a.ItemID, a.DOI, a.WosID, a.ScopusID, a.OpenAlexID, a.S2ID, a.PubmedID,
		a.Title, a.TitleSlug, a.PublicationYear, a.Source, keywords, authors, meta,
	)
	if err != nil {
		return fmt.Errorf("update academic item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

const academicColumns = `i.item_id::text, i.project_id::text, i.text,
       COALESCE(a.doi,''), COALESCE(a.wos_id,''), COALESCE(a.scopus_id,''),
       COALESCE(a.openalex_id,''), COALESCE(a.s2_id,''), COALESCE(a.pubmed_id,''),
       COALESCE(a.title,''), COALESCE(a.title_slug,''), a.publication_year,
       COALESCE(a.source,''), a.keywords, a.authors, a.meta`

func scanAcademicItem(row pgx.Row) (models.AcademicItem, error) {
	var a models.AcademicItem
	var keywords, authors, meta []byte
	err := row.Scan(&a.ItemID, &a.ProjectID, &a.Text,
		&a.DOI, &a.WosID, &a.ScopusID, &a.OpenAlexID, &a.S2ID, &a.PubmedID,
		&a.Title, &a.TitleSlug, &a.PublicationYear, &a.Source, &keywords, &authors, &meta)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AcademicItem{}, util.ErrNotFound
	}
	if err != nil {
		return models.AcademicItem{}, fmt.Errorf("scan academic item: %w", err)
	}
	if err := fromJSONB(keywords, &a.Keywords); err != nil {
		return models.AcademicItem{}, err
	}
	if err := fromJSONB(authors, &a.Authors); err != nil {
		return models.AcademicItem{}, err
	}
	if err := fromJSONB(meta, &a.Meta); err != nil {
		return models.AcademicItem{}, err
	}
	return a, nil
}

func (r *AcademicRepo) GetAcademicItem(ctx context.Context, itemID string) (models.AcademicItem, error) {
	return scanAcademicItem(r.db.Pool.QueryRow(ctx, `
SELECT `+academicColumns+`
FROM item i JOIN academic_item a ON a.item_id = i.item_id
WHERE i.item_id=$1`, itemID))
}

func (r *AcademicRepo) ListAcademicItems(ctx context.Context, projectID string, limit, offset int) ([]models.AcademicItem, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT `+academicColumns+`
FROM item i JOIN academic_item a ON a.item_id = i.item_id
WHERE i.project_id=$1
ORDER BY i.item_id
LIMIT $2 OFFSET $3`, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list academic items: %w", err)
	}
	defer rows.Close()

	out := make([]models.AcademicItem, 0)
	for rows.Next() {
		a, err := scanAcademicItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate academic items: %w", err)
	}
	return out, nil
}

// FindDuplicates returns item IDs in the project whose title slug matches,
// optionally also requiring DOI or WoS ID equality. An empty result means the
// item is new to the project.
func (r *AcademicRepo) FindDuplicates(ctx context.Context, projectID string, a models.AcademicItem, checkDOI, checkWosID bool) ([]string, error) {
	if a.TitleSlug == "" {
		return nil, nil
	}
	q := `
SELECT a.item_id::text
FROM academic_item a
JOIN item i ON i.item_id = a.item_id
WHERE i.project_id=$1 AND a.title_slug=$2`
	args := []any{projectID, a.TitleSlug}
	if checkDOI && a.DOI != "" {
		args = append(args, a.DOI)
		q += fmt.Sprintf(` AND a.doi=$%d`, len(args))
	}
	if checkWosID && a.WosID != "" {
		args = append(args, a.WosID)
		q += fmt.Sprintf(` AND a.wos_id=$%d`, len(args))
	}

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan duplicate: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
