package activities

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"golang.org/x/sync/errgroup"

	"nacsos/internal/academic"
	"nacsos/internal/annotate"
	"nacsos/internal/config"
	"nacsos/internal/models"
	"nacsos/internal/storage"
	"nacsos/internal/util"
)

type Activities struct {
	cfg       config.Config
	items     *storage.ItemRepo
	academics *storage.AcademicRepo
	twitter   *storage.TwitterRepo
	imports   *storage.ImportRepo
	projects  *storage.ProjectRepo
	service   *annotate.Service
}

func New(cfg config.Config, db *storage.DB) *Activities {
	items := storage.NewItemRepo(db)
	return &Activities{
		cfg:       cfg,
		items:     items,
		academics: storage.NewAcademicRepo(db),
		twitter:   storage.NewTwitterRepo(db),
		imports:   storage.NewImportRepo(db),
		projects:  storage.NewProjectRepo(db),
		service: annotate.NewService(
			storage.NewSchemeRepo(db),
			items,
			storage.NewAssignmentRepo(db),
			storage.NewAnnotationRepo(db),
			storage.NewBotAnnotationRepo(db),
		),
	}
}

// MarkImportStartedActivity claims the import for this pipeline run. Fails
// when another import is still running in the same project.
func (a *Activities) MarkImportStartedActivity(ctx context.Context, in MarkImportStartedInput) (MarkImportStartedOutput, error) {
	imp, err := a.imports.GetImport(ctx, in.ImportID)
	if err != nil {
		return MarkImportStartedOutput{}, err
	}
	if err := a.imports.MarkStarted(ctx, in.ImportID, in.PipelineTaskID); err != nil {
		return MarkImportStartedOutput{}, err
	}
	return MarkImportStartedOutput{ProjectID: imp.ProjectID, ImportType: string(imp.Type)}, nil
}

func (a *Activities) MarkImportFinishedActivity(ctx context.Context, in MarkImportFinishedInput) error {
	return a.imports.MarkFinished(ctx, in.ImportID)
}

// ImportItemsActivity fetches records from the import's source, merges them
// into the project via title-slug deduplication and links every touched item
// to the import. Progress is reported through heartbeats so long API fetches
// survive worker restarts.
func (a *Activities) ImportItemsActivity(ctx context.Context, in ImportItemsInput) (ImportItemsOutput, error) {
	imp, err := a.imports.GetImport(ctx, in.ImportID)
	if err != nil {
		return ImportItemsOutput{}, err
	}
	cfg := imp.Config
	if cfg == nil {
		cfg = &models.ImportConfig{}
	}

	var counts ImportItemsOutput
	ingest := func(item models.AcademicItem) error {
		if err := a.ingestAcademic(ctx, imp, *cfg, item, &counts); err != nil {
			return err
		}
		if counts.Linked%a.cfg.ImportBatchSize == 0 {
			activity.RecordHeartbeat(ctx, counts)
		}
		return nil
	}

	switch imp.Type {
	case models.ImportTypeScopusCSV:
		f, err := os.Open(cfg.Path)
		if err != nil {
			return counts, fmt.Errorf("open scopus csv: %w", err)
		}
		defer f.Close()
		err = academic.ReadScopusCSV(f, imp.ProjectID, ingest)
		return counts, err

	case models.ImportTypeScopusAPI:
		client := academic.NewClient(a.cfg.APIMaxReqPerSec, a.cfg.APIMaxRetries)
		api := academic.NewScopusAPI(client, resolveKey(cfg.APIKey, a.cfg.ScopusAPIKey))
		return counts, api.Fetch(ctx, cfg.Query, ingest)

	case models.ImportTypeOpenAlex:
		client := academic.NewClient(a.cfg.APIMaxReqPerSec, a.cfg.APIMaxRetries)
		api := academic.NewOpenAlexAPI(client, resolveKey(cfg.APIKey, a.cfg.OpenAlexAPIKey), a.cfg.OpenAlexMailto)
		return counts, api.Fetch(ctx, cfg.Query, ingest)

	case models.ImportTypeJSONL:
		return counts, a.importJSONL(ctx, imp, cfg.Path, ingest)

	case models.ImportTypeTwitter:
		return counts, a.importTweets(ctx, imp, cfg.Path, &counts)

	case models.ImportTypePDF:
		return counts, a.importPDFs(ctx, imp, cfg.Path, &counts)

	default:
		return counts, fmt.Errorf("import type %q has no importer", imp.Type)
	}
}

// ingestAcademic merges one incoming record into the project. Known
// duplicates (same title slug, optionally same DOI) are updated in place,
// everything else becomes a new item.
func (a *Activities) ingestAcademic(ctx context.Context, imp models.Import, cfg models.ImportConfig, item models.AcademicItem, counts *ImportItemsOutput) error {
	item.ProjectID = imp.ProjectID
	if item.TitleSlug == "" {
		item.TitleSlug = academic.TitleSlug(item.Title)
	}

	duplicates, err := a.academics.FindDuplicates(ctx, imp.ProjectID, item, cfg.DedupByDOI, false)
	if err != nil {
		return err
	}
	linkType := models.ImportItemExplicit
	if len(duplicates) > 0 {
		item.ItemID = duplicates[0]
		if err := a.academics.UpdateAcademicItem(ctx, item); err != nil {
			return err
		}
		counts.Updated++
	} else {
		item.ItemID = uuid.NewString()
		if err := a.academics.CreateAcademicItem(ctx, item); err != nil {
			return err
		}
		counts.Imported++
	}
	if err := a.imports.LinkItem(ctx, imp.ImportID, item.ItemID, linkType); err != nil {
		return err
	}
	counts.Linked++
	return nil
}

func (a *Activities) importJSONL(ctx context.Context, imp models.Import, path string, ingest func(models.AcademicItem) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open jsonl: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var item models.AcademicItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return fmt.Errorf("jsonl line %d: %w", line, err)
		}
		if err := ingest(item); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (a *Activities) importTweets(ctx context.Context, imp models.Import, path string, counts *ImportItemsOutput) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open tweets: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var tweet models.TwitterItem
		if err := json.Unmarshal([]byte(raw), &tweet); err != nil {
			return fmt.Errorf("tweets line %d: %w", line, err)
		}
		tweet.ProjectID = imp.ProjectID

		existing, lookupErr := a.twitter.GetByTwitterID(ctx, imp.ProjectID, tweet.TwitterID)
		itemID, created, err := tweetDedup(existing, lookupErr, imp.ProjectID)
		if err != nil {
			return err
		}
		tweet.ItemID = itemID
		if created {
			if err := a.twitter.CreateTwitterItem(ctx, tweet); err != nil {
				return err
			}
			counts.Imported++
		} else {
			counts.Updated++
		}
		if err := a.imports.LinkItem(ctx, imp.ImportID, tweet.ItemID, models.ImportItemExplicit); err != nil {
			return err
		}
		counts.Linked++
		if counts.Linked%a.cfg.ImportBatchSize == 0 {
			activity.RecordHeartbeat(ctx, *counts)
		}
	}
	return scanner.Err()
}

// tweetDedup maps the project-scoped lookup result onto the import decision:
// reuse the project's existing item for the tweet, mint a new one when the
// tweet is unknown, or propagate the lookup failure. An item resolved from a
// different project is refused so imports never link across projects.
func tweetDedup(existing models.TwitterItem, lookupErr error, projectID string) (itemID string, created bool, err error) {
	if lookupErr == nil {
		if existing.ProjectID != projectID {
			return "", false, fmt.Errorf("tweet %d resolved to item %s in project %s",
				existing.TwitterID, existing.ItemID, existing.ProjectID)
		}
		return existing.ItemID, false, nil
	}
	if errors.Is(lookupErr, util.ErrNotFound) {
		return uuid.NewString(), true, nil
	}
	return "", false, fmt.Errorf("look up tweet: %w", lookupErr)
}

// importPDFs ingests a single PDF or every PDF in a directory as full-text
// items. Text extraction runs in parallel, inserts stay sequential.
func (a *Activities) importPDFs(ctx context.Context, imp models.Import, path string, counts *ImportItemsOutput) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat pdf path: %w", err)
	}

	paths := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("read pdf dir: %w", err)
		}
		paths = paths[:0]
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
				continue
			}
			paths = append(paths, filepath.Join(path, e.Name()))
		}
		sort.Strings(paths)
	}

	items := make([]models.GenericItem, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item, err := academic.ReadPDFItem(p, imp.ProjectID)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, item := range items {
		item.ItemID = uuid.NewString()
		if err := a.items.CreateGenericItem(ctx, item, models.ItemTypeFullText); err != nil {
			return err
		}
		if err := a.imports.LinkItem(ctx, imp.ImportID, item.ItemID, models.ImportItemExplicit); err != nil {
			return err
		}
		counts.Imported++
		counts.Linked++
		activity.RecordHeartbeat(ctx, *counts)
	}
	return nil
}

func (a *Activities) GenerateAssignmentsActivity(ctx context.Context, in GenerateAssignmentsInput) (GenerateAssignmentsOutput, error) {
	assignments, err := a.service.GenerateAssignments(ctx, in.ScopeID)
	if err != nil {
		return GenerateAssignmentsOutput{}, err
	}
	return GenerateAssignmentsOutput{NumAssignments: len(assignments)}, nil
}

func (a *Activities) ResolveScopeActivity(ctx context.Context, in ResolveScopeInput) (ResolveScopeOutput, error) {
	meta, err := a.service.ResolveScope(ctx, in.ScopeID, in.Name)
	if err != nil {
		return ResolveScopeOutput{}, err
	}
	return ResolveScopeOutput{MetaID: meta.MetaID}, nil
}

// resolveKey treats the configured value as the name of an environment
// variable holding the actual key, so secrets never end up in import configs.
func resolveKey(alias, fallback string) string {
	if alias == "" {
		return fallback
	}
	if v := os.Getenv(alias); v != "" {
		return v
	}
	return fallback
}
