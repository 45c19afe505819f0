package annotate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type fakeStores struct {
	schemes     map[string]models.AnnotationScheme
	scopes      map[string]models.AssignmentScope
	itemPool    []string
	assignments map[string]models.Assignment
	annotations []models.Annotation
	botMeta     []models.BotAnnotationMetaData
	botAnns     []models.BotAnnotation

	excludingCalled bool
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		schemes:     map[string]models.AnnotationScheme{},
		scopes:      map[string]models.AssignmentScope{},
		assignments: map[string]models.Assignment{},
	}
}

func (f *fakeStores) GetScheme(_ context.Context, schemeID string) (models.AnnotationScheme, error) {
	s, ok := f.schemes[schemeID]
	if !ok {
		return models.AnnotationScheme{}, util.ErrNotFound
	}
	return s, nil
}

func (f *fakeStores) GetSchemeForScope(ctx context.Context, scopeID string) (models.AnnotationScheme, error) {
	sc, ok := f.scopes[scopeID]
	if !ok {
		return models.AnnotationScheme{}, util.ErrNotFound
	}
	return f.GetScheme(ctx, sc.SchemeID)
}

func (f *fakeStores) GetScope(_ context.Context, scopeID string) (models.AssignmentScope, error) {
	sc, ok := f.scopes[scopeID]
	if !ok {
		return models.AssignmentScope{}, util.ErrNotFound
	}
	return sc, nil
}

func (f *fakeStores) RandomItemIDs(_ context.Context, _ string, numItems int) ([]string, error) {
	if numItems > len(f.itemPool) {
		numItems = len(f.itemPool)
	}
	return f.itemPool[:numItems], nil
}

func (f *fakeStores) RandomItemIDsExcluding(ctx context.Context, projectID string, numItems int, _ []string) ([]string, error) {
	f.excludingCalled = true
	return f.RandomItemIDs(ctx, projectID, numItems)
}

func (f *fakeStores) CreateAssignments(_ context.Context, assignments []models.Assignment) error {
	for _, a := range assignments {
		f.assignments[a.AssignmentID] = a
	}
	return nil
}

func (f *fakeStores) GetAssignment(_ context.Context, assignmentID string) (models.Assignment, error) {
	a, ok := f.assignments[assignmentID]
	if !ok {
		return models.Assignment{}, util.ErrNotFound
	}
	return a, nil
}

func (f *fakeStores) UpdateAssignmentStatus(_ context.Context, assignmentID string, status models.AssignmentStatus) error {
	a, ok := f.assignments[assignmentID]
	if !ok {
		return util.ErrNotFound
	}
	a.Status = status
	f.assignments[assignmentID] = a
	return nil
}

func (f *fakeStores) SaveAnnotation(_ context.Context, a models.Annotation) error {
	f.annotations = append(f.annotations, a)
	return nil
}

func (f *fakeStores) ListAnnotationsForAssignment(_ context.Context, assignmentID string) ([]models.Annotation, error) {
	var out []models.Annotation
	for _, a := range f.annotations {
		if a.AssignmentID == assignmentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStores) ListAnnotationsForScope(_ context.Context, _ string) ([]models.Annotation, error) {
	return f.annotations, nil
}

func (f *fakeStores) CreateMetaData(_ context.Context, m models.BotAnnotationMetaData) error {
	f.botMeta = append(f.botMeta, m)
	return nil
}

func (f *fakeStores) SaveBotAnnotations(_ context.Context, annotations []models.BotAnnotation) error {
	f.botAnns = append(f.botAnns, annotations...)
	return nil
}

func serviceFixture() (*Service, *fakeStores) {
	f := newFakeStores()
	f.schemes["scheme-1"] = models.AnnotationScheme{
		SchemeID:  "scheme-1",
		ProjectID: "project-1",
		Labels:    testScheme(),
	}
	f.scopes["scope-1"] = models.AssignmentScope{
		ScopeID:  "scope-1",
		SchemeID: "scheme-1",
		Config: &models.AssignmentScopeConfig{
			ConfigType:            models.ScopeConfigRandom,
			Users:                 []string{"u1", "u2"},
			NumItems:              5,
			MinAssignmentsPerItem: 1,
			MaxAssignmentsPerItem: 2,
			NumMultiCodedItems:    2,
			RandomSeed:            7,
		},
	}
	f.itemPool = testPool(10)
	return NewService(f, f, f, f, f), f
}

func TestServiceGenerateAssignments(t *testing.T) {
	ctx := context.Background()
	svc, f := serviceFixture()

	assignments, err := svc.GenerateAssignments(ctx, "scope-1")
	require.NoError(t, err)
	require.NotEmpty(t, assignments)
	require.Len(t, f.assignments, len(assignments))
	require.False(t, f.excludingCalled)

	for _, a := range assignments {
		require.Equal(t, "scope-1", a.ScopeID)
		require.Equal(t, "scheme-1", a.SchemeID)
	}
}

func TestServiceGenerateAssignmentsWithExclusion(t *testing.T) {
	ctx := context.Background()
	svc, f := serviceFixture()
	scope := f.scopes["scope-1"]
	scope.Config.ConfigType = models.ScopeConfigRandomExclusion
	scope.Config.ExcludedScopes = []string{"scope-0"}
	f.scopes["scope-1"] = scope

	_, err := svc.GenerateAssignments(ctx, "scope-1")
	require.NoError(t, err)
	require.True(t, f.excludingCalled)
}

func TestServiceSaveAnnotationUpdatesStatus(t *testing.T) {
	ctx := context.Background()
	svc, f := serviceFixture()
	f.assignments["as-1"] = models.Assignment{
		AssignmentID: "as-1", ScopeID: "scope-1", SchemeID: "scheme-1",
		UserID: "u1", ItemID: "item-001", Status: models.AssignmentStatusOpen,
	}

	status, err := svc.SaveAnnotation(ctx, models.Annotation{
		AnnotationID: "an-1", AssignmentID: "as-1", UserID: "u1",
		ItemID: "item-001", SchemeID: "scheme-1",
		Key: "rel", Repeat: 1, ValueBool: ptr(true),
	})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusPartial, status)
	require.Equal(t, models.AssignmentStatusPartial, f.assignments["as-1"].Status)

	status, err = svc.SaveAnnotation(ctx, models.Annotation{
		AnnotationID: "an-2", AssignmentID: "as-1", UserID: "u1",
		ItemID: "item-001", SchemeID: "scheme-1",
		Key: "tech", Repeat: 1, ValueInt: ptr(0),
	})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusFull, status)
	require.Equal(t, models.AssignmentStatusFull, f.assignments["as-1"].Status)
}

func TestServiceSaveAnnotationRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc, f := serviceFixture()
	f.assignments["as-1"] = models.Assignment{
		AssignmentID: "as-1", ScopeID: "scope-1", SchemeID: "scheme-1",
		UserID: "u1", ItemID: "item-001", Status: models.AssignmentStatusOpen,
	}

	_, err := svc.SaveAnnotation(ctx, models.Annotation{
		AssignmentID: "as-1", Key: "rel", Repeat: 1, ValueInt: ptr(3),
	})
	require.Error(t, err)
	require.Empty(t, f.annotations)
}

func TestServiceResolveScope(t *testing.T) {
	ctx := context.Background()
	svc, f := serviceFixture()
	f.annotations = []models.Annotation{
		{UserID: "u1", ItemID: "i1", Key: "rel", ValueBool: ptr(true)},
		{UserID: "u2", ItemID: "i1", Key: "rel", ValueBool: ptr(true)},
	}

	meta, err := svc.ResolveScope(ctx, "scope-1", "consolidated round 1")
	require.NoError(t, err)
	require.Equal(t, models.BotKindResolve, meta.Kind)
	require.Equal(t, "project-1", meta.ProjectID)
	require.Equal(t, "scheme-1", meta.SchemeID)

	require.Len(t, f.botMeta, 1)
	require.Len(t, f.botAnns, 1)
	require.Equal(t, meta.MetaID, f.botAnns[0].MetaID)
	require.True(t, *f.botAnns[0].ValueBool)
}
