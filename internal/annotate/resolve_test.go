package annotate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nacsos/internal/models"
)

func TestMajorityVoteBool(t *testing.T) {
	idx := LabelIndex(FlattenLabels(testScheme()))

	resolved, err := MajorityVote(idx, []models.Annotation{
		{UserID: "u1", ItemID: "i1", Key: "rel", ValueBool: ptr(true)},
		{UserID: "u2", ItemID: "i1", Key: "rel", ValueBool: ptr(true)},
		{UserID: "u3", ItemID: "i1", Key: "rel", ValueBool: ptr(false)},
		{UserID: "u1", ItemID: "i2", Key: "rel", ValueBool: ptr(false)},
	}, "meta-1")
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	require.Equal(t, "meta-1", resolved[0].MetaID)
	require.Equal(t, "i1", resolved[0].ItemID)
	require.NotNil(t, resolved[0].ValueBool)
	require.True(t, *resolved[0].ValueBool)
	require.InDelta(t, 2.0/3.0, *resolved[0].Confidence, 1e-9)

	require.Equal(t, "i2", resolved[1].ItemID)
	require.False(t, *resolved[1].ValueBool)
	require.InDelta(t, 1.0, *resolved[1].Confidence, 1e-9)
}

func TestMajorityVoteSingleTieBreaksLow(t *testing.T) {
	idx := LabelIndex(FlattenLabels(testScheme()))

	resolved, err := MajorityVote(idx, []models.Annotation{
		{UserID: "u1", ItemID: "i1", Key: "tech", ValueInt: ptr(1)},
		{UserID: "u2", ItemID: "i1", Key: "tech", ValueInt: ptr(0)},
	}, "meta-1")
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.Equal(t, 0, *resolved[0].ValueInt)
	require.InDelta(t, 0.5, *resolved[0].Confidence, 1e-9)
}

func TestMajorityVoteMulti(t *testing.T) {
	idx := LabelIndex(FlattenLabels([]models.SchemeLabel{
		{Key: "topics", Kind: models.LabelKindMulti, MaxRepeat: 3,
			Choices: []models.SchemeLabelChoice{
				{Name: "a", Value: 0}, {Name: "b", Value: 1}, {Name: "c", Value: 2},
			}},
	}))

	resolved, err := MajorityVote(idx, []models.Annotation{
		{UserID: "u1", ItemID: "i1", Key: "topics", Repeat: 1, ValueInt: ptr(0)},
		{UserID: "u1", ItemID: "i1", Key: "topics", Repeat: 2, ValueInt: ptr(1)},
		{UserID: "u2", ItemID: "i1", Key: "topics", Repeat: 1, ValueInt: ptr(1)},
		{UserID: "u3", ItemID: "i1", Key: "topics", Repeat: 1, ValueInt: ptr(2)},
	}, "meta-1")
	require.NoError(t, err)

	// only value 1 reaches half of the three voters besides singletons
	require.Len(t, resolved, 1)
	require.Equal(t, 1, *resolved[0].ValueInt)
	require.Equal(t, 1, resolved[0].Repeat)
	require.InDelta(t, 2.0/3.0, *resolved[0].Confidence, 1e-9)
}

func TestMajorityVoteErrors(t *testing.T) {
	idx := LabelIndex(FlattenLabels(testScheme()))

	_, err := MajorityVote(idx, nil, "meta-1")
	require.Error(t, err)

	_, err = MajorityVote(idx, []models.Annotation{
		{UserID: "u1", ItemID: "i1", Key: "nope", ValueBool: ptr(true)},
	}, "meta-1")
	require.Error(t, err)

	strIdx := LabelIndex(FlattenLabels([]models.SchemeLabel{
		{Key: "note", Kind: models.LabelKindStr, MaxRepeat: 1},
	}))
	_, err = MajorityVote(strIdx, []models.Annotation{
		{UserID: "u1", ItemID: "i1", Key: "note", ValueStr: ptr("free text")},
	}, "meta-1")
	require.Error(t, err)
}
