package annotate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

// The stores below are the slices of the storage repositories the service
// needs, so tests can swap in fakes.

type SchemeStore interface {
	GetScheme(ctx context.Context, schemeID string) (models.AnnotationScheme, error)
	GetSchemeForScope(ctx context.Context, scopeID string) (models.AnnotationScheme, error)
	GetScope(ctx context.Context, scopeID string) (models.AssignmentScope, error)
}

type ItemSource interface {
	RandomItemIDs(ctx context.Context, projectID string, numItems int) ([]string, error)
	RandomItemIDsExcluding(ctx context.Context, projectID string, numItems int, excludedScopes []string) ([]string, error)
}

type AssignmentStore interface {
	CreateAssignments(ctx context.Context, assignments []models.Assignment) error
	GetAssignment(ctx context.Context, assignmentID string) (models.Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, assignmentID string, status models.AssignmentStatus) error
}

type AnnotationStore interface {
	SaveAnnotation(ctx context.Context, a models.Annotation) error
	ListAnnotationsForAssignment(ctx context.Context, assignmentID string) ([]models.Annotation, error)
	ListAnnotationsForScope(ctx context.Context, scopeID string) ([]models.Annotation, error)
}

type BotAnnotationStore interface {
	CreateMetaData(ctx context.Context, m models.BotAnnotationMetaData) error
	SaveBotAnnotations(ctx context.Context, annotations []models.BotAnnotation) error
}

// Service glues the pure annotation logic to the repositories: generating a
// scope's assignments, accepting annotations while keeping assignment
// statuses current, and resolving finished scopes.
type Service struct {
	schemes     SchemeStore
	items       ItemSource
	assignments AssignmentStore
	annotations AnnotationStore
	bots        BotAnnotationStore
}

func NewService(schemes SchemeStore, items ItemSource, assignments AssignmentStore, annotations AnnotationStore, bots BotAnnotationStore) *Service {
	return &Service{
		schemes:     schemes,
		items:       items,
		assignments: assignments,
		annotations: annotations,
		bots:        bots,
	}
}

// GenerateAssignments draws the item pool for a scope per its random config
// and persists the generated assignments.
func (s *Service) GenerateAssignments(ctx context.Context, scopeID string) ([]models.Assignment, error) {
	scope, err := s.schemes.GetScope(ctx, scopeID)
	if err != nil {
		return nil, fmt.Errorf("load scope: %w", err)
	}
	if scope.Config == nil {
		return nil, fmt.Errorf("scope %s has no config: %w", scopeID, util.ErrInvalidConfig)
	}
	scheme, err := s.schemes.GetScheme(ctx, scope.SchemeID)
	if err != nil {
		return nil, fmt.Errorf("load scheme: %w", err)
	}

	var pool []string
	if scope.Config.ConfigType == models.ScopeConfigRandomExclusion {
		pool, err = s.items.RandomItemIDsExcluding(ctx, scheme.ProjectID, scope.Config.NumItems, scope.Config.ExcludedScopes)
	} else {
		pool, err = s.items.RandomItemIDs(ctx, scheme.ProjectID, scope.Config.NumItems)
	}
	if err != nil {
		return nil, fmt.Errorf("draw item pool: %w", err)
	}

	assignments, err := RandomAssignments(&scope, pool)
	if err != nil {
		return nil, err
	}
	if err := s.assignments.CreateAssignments(ctx, assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// SaveAnnotation validates an annotation against its assignment's scheme,
// stores it and brings the assignment status up to date.
func (s *Service) SaveAnnotation(ctx context.Context, a models.Annotation) (models.AssignmentStatus, error) {
	assignment, err := s.assignments.GetAssignment(ctx, a.AssignmentID)
	if err != nil {
		return "", fmt.Errorf("load assignment: %w", err)
	}
	scheme, err := s.schemes.GetScheme(ctx, assignment.SchemeID)
	if err != nil {
		return "", fmt.Errorf("load scheme: %w", err)
	}
	labels := FlattenLabels(scheme.Labels)
	if err := ValidateAnnotation(LabelIndex(labels), &a); err != nil {
		return "", err
	}
	if err := s.annotations.SaveAnnotation(ctx, a); err != nil {
		return "", err
	}

	annotations, err := s.annotations.ListAnnotationsForAssignment(ctx, a.AssignmentID)
	if err != nil {
		return "", fmt.Errorf("list annotations: %w", err)
	}
	status := AssignmentStatusFor(labels, annotations)
	if status != assignment.Status {
		if err := s.assignments.UpdateAssignmentStatus(ctx, a.AssignmentID, status); err != nil {
			return "", err
		}
	}
	return status, nil
}

// ResolveScope runs a majority vote over all annotations of a scope and
// stores the consolidated values as a new bot annotation batch.
func (s *Service) ResolveScope(ctx context.Context, scopeID, name string) (models.BotAnnotationMetaData, error) {
	scheme, err := s.schemes.GetSchemeForScope(ctx, scopeID)
	if err != nil {
		return models.BotAnnotationMetaData{}, fmt.Errorf("load scheme: %w", err)
	}
	annotations, err := s.annotations.ListAnnotationsForScope(ctx, scopeID)
	if err != nil {
		return models.BotAnnotationMetaData{}, fmt.Errorf("list annotations: %w", err)
	}

	meta := models.BotAnnotationMetaData{
		MetaID:    uuid.NewString(),
		Name:      name,
		Kind:      models.BotKindResolve,
		ProjectID: scheme.ProjectID,
		ScopeID:   scopeID,
		SchemeID:  scheme.SchemeID,
		Meta:      map[string]any{"strategy": "majority_vote", "num_annotations": len(annotations)},
	}

	resolved, err := MajorityVote(LabelIndex(FlattenLabels(scheme.Labels)), annotations, meta.MetaID)
	if err != nil {
		return models.BotAnnotationMetaData{}, err
	}
	if err := s.bots.CreateMetaData(ctx, meta); err != nil {
		return models.BotAnnotationMetaData{}, err
	}
	if err := s.bots.SaveBotAnnotations(ctx, resolved); err != nil {
		return models.BotAnnotationMetaData{}, err
	}
	return meta, nil
}
