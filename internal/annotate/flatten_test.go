package annotate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nacsos/internal/models"
)

func testScheme() []models.SchemeLabel {
	return []models.SchemeLabel{
		{
			Name: "Relevant", Key: "rel", Kind: models.LabelKindBool,
			Required: true, MaxRepeat: 1,
		},
		{
			Name: "Technology", Key: "tech", Kind: models.LabelKindSingle,
			Required: true, MaxRepeat: 3,
			Choices: []models.SchemeLabelChoice{
				{Name: "Solar", Value: 0},
				{Name: "CCS", Value: 1, Children: []models.SchemeLabel{
					{Name: "Storage type", Key: "ccs_storage", Kind: models.LabelKindSingle,
						MaxRepeat: 1,
						Choices: []models.SchemeLabelChoice{
							{Name: "Geological", Value: 0},
							{Name: "Ocean", Value: 1},
						}},
				}},
			},
		},
	}
}

func TestFlattenLabels(t *testing.T) {
	flat := FlattenLabels(testScheme())
	require.Len(t, flat, 3)

	require.Equal(t, "rel", flat[0].Key)
	require.Empty(t, flat[0].ParentKey)
	require.Nil(t, flat[0].ParentChoice)
	require.Equal(t, 1, flat[0].MaxRepeat)

	require.Equal(t, "tech", flat[1].Key)
	require.Len(t, flat[1].Choices, 2)

	require.Equal(t, "ccs_storage", flat[2].Key)
	require.Equal(t, "tech", flat[2].ParentKey)
	require.NotNil(t, flat[2].ParentChoice)
	require.Equal(t, 1, *flat[2].ParentChoice)
}

func TestFlattenLabelsDefaultsMaxRepeat(t *testing.T) {
	flat := FlattenLabels([]models.SchemeLabel{{Key: "x", Kind: models.LabelKindStr}})
	require.Equal(t, 1, flat[0].MaxRepeat)
}
