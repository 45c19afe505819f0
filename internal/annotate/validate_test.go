package annotate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nacsos/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestValidateAnnotation(t *testing.T) {
	idx := LabelIndex(FlattenLabels(testScheme()))

	require.NoError(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "rel", Repeat: 1, ValueBool: ptr(true),
	}))
	require.NoError(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "tech", Repeat: 2, ValueInt: ptr(1),
	}))

	require.Error(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "nope", Repeat: 1, ValueBool: ptr(true),
	}), "unknown key")
	require.Error(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "rel", Repeat: 2, ValueBool: ptr(true),
	}), "repeat beyond max_repeat")
	require.Error(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "rel", Repeat: 1, ValueInt: ptr(1),
	}), "wrong value column")
	require.Error(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "rel", Repeat: 1, ValueBool: ptr(true), ValueStr: ptr("x"),
	}), "more than one value")
	require.Error(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "tech", Repeat: 1, ValueInt: ptr(7),
	}), "undefined choice")
	require.Error(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "ccs_storage", Repeat: 1, ValueInt: ptr(0),
	}), "nested label without parent")
}

func TestValidateAnnotationInText(t *testing.T) {
	idx := LabelIndex(FlattenLabels([]models.SchemeLabel{
		{Key: "span", Kind: models.LabelKindInText, MaxRepeat: 5},
	}))

	require.NoError(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "span", Repeat: 1, ValueStr: ptr("solar"),
		TextOffsetStart: ptr(10), TextOffsetStop: ptr(15),
	}))
	require.Error(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "span", Repeat: 1, ValueStr: ptr("solar"),
	}), "missing offsets")
	require.Error(t, ValidateAnnotation(idx, &models.Annotation{
		Key: "span", Repeat: 1, ValueStr: ptr("solar"),
		TextOffsetStart: ptr(15), TextOffsetStop: ptr(10),
	}), "inverted offsets")
}

func TestAssignmentStatusFor(t *testing.T) {
	labels := FlattenLabels(testScheme())

	require.Equal(t, models.AssignmentStatusOpen, AssignmentStatusFor(labels, nil))
	require.Equal(t, models.AssignmentStatusPartial, AssignmentStatusFor(labels, []models.Annotation{
		{Key: "rel", ValueBool: ptr(true)},
	}))
	require.Equal(t, models.AssignmentStatusFull, AssignmentStatusFor(labels, []models.Annotation{
		{Key: "rel", ValueBool: ptr(true)},
		{Key: "tech", ValueInt: ptr(0)},
	}))

	// nested labels do not count towards completion
	require.Equal(t, models.AssignmentStatusFull, AssignmentStatusFor(labels, []models.Annotation{
		{Key: "rel", ValueBool: ptr(false)},
		{Key: "tech", ValueInt: ptr(1)},
	}))
}
