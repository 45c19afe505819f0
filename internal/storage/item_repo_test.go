package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

func TestCheckItemType(t *testing.T) {
	allowed := []struct {
		project models.ProjectType
		item    models.ItemType
	}{
		{models.ProjectTypeTwitter, models.ItemTypeTwitter},
		{models.ProjectTypeAcademic, models.ItemTypeAcademic},
		{models.ProjectTypeAcademic, models.ItemTypeFullText},
		{models.ProjectTypePatents, models.ItemTypeAcademic},
		{models.ProjectTypePatents, models.ItemTypeFullText},
		{models.ProjectTypeBasic, models.ItemTypeGeneric},
		{models.ProjectTypeBasic, models.ItemTypeFullText},
	}
	for _, c := range allowed {
		require.NoError(t, checkItemType(c.project, c.item), "%s/%s", c.project, c.item)
	}

	denied := []struct {
		project models.ProjectType
		item    models.ItemType
	}{
		{models.ProjectTypeTwitter, models.ItemTypeAcademic},
		{models.ProjectTypeTwitter, models.ItemTypeFullText},
		{models.ProjectTypeAcademic, models.ItemTypeTwitter},
		{models.ProjectTypeAcademic, models.ItemTypeGeneric},
		{models.ProjectTypeBasic, models.ItemTypeAcademic},
		{models.ProjectType("unknown"), models.ItemTypeGeneric},
	}
	for _, c := range denied {
		require.ErrorIs(t, checkItemType(c.project, c.item), util.ErrTypeMismatch, "%s/%s", c.project, c.item)
	}
}
