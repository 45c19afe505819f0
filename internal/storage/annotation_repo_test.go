package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

func TestCheckAnnotationMatch(t *testing.T) {
	asg := models.Assignment{
		AssignmentID: "as-1",
		UserID:       "u1",
		ItemID:       "i1",
		SchemeID:     "s1",
	}

	ok := []models.Annotation{
		{AssignmentID: "as-1", UserID: "u1", ItemID: "i1", SchemeID: "s1"},
		// empty fields are filled from the assignment, not rejected
		{AssignmentID: "as-1"},
		{AssignmentID: "as-1", UserID: "u1"},
		{AssignmentID: "as-1", ItemID: "i1", SchemeID: "s1"},
	}
	for _, a := range ok {
		require.NoError(t, checkAnnotationMatch(a, asg))
	}

	mismatched := []models.Annotation{
		{AssignmentID: "as-1", UserID: "u2", ItemID: "i1", SchemeID: "s1"},
		{AssignmentID: "as-1", UserID: "u1", ItemID: "i2", SchemeID: "s1"},
		{AssignmentID: "as-1", UserID: "u1", ItemID: "i1", SchemeID: "s2"},
		{AssignmentID: "as-1", UserID: "u2"},
	}
	for _, a := range mismatched {
		require.ErrorIs(t, checkAnnotationMatch(a, asg), util.ErrInvalidConfig,
			"user=%s item=%s scheme=%s", a.UserID, a.ItemID, a.SchemeID)
	}
}
