package annotate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"nacsos/internal/models"
)

func testScope(cfg models.AssignmentScopeConfig) *models.AssignmentScope {
	return &models.AssignmentScope{
		ScopeID:  "scope-1",
		SchemeID: "scheme-1",
		Config:   &cfg,
	}
}

func testPool(n int) []string {
	pool := make([]string, n)
	for i := range pool {
		pool[i] = fmt.Sprintf("item-%03d", i)
	}
	return pool
}

func TestRandomAssignments(t *testing.T) {
	scope := testScope(models.AssignmentScopeConfig{
		ConfigType:            models.ScopeConfigRandom,
		Users:                 []string{"u1", "u2", "u3"},
		NumItems:              20,
		MinAssignmentsPerItem: 1,
		MaxAssignmentsPerItem: 3,
		NumMultiCodedItems:    5,
		RandomSeed:            1337,
	})
	pool := testPool(50)

	assignments, err := RandomAssignments(scope, pool)
	require.NoError(t, err)

	perItem := map[string][]string{}
	for _, a := range assignments {
		require.Equal(t, "scope-1", a.ScopeID)
		require.Equal(t, "scheme-1", a.SchemeID)
		require.Equal(t, models.AssignmentStatusOpen, a.Status)
		require.NotEmpty(t, a.AssignmentID)
		perItem[a.ItemID] = append(perItem[a.ItemID], a.UserID)
	}
	require.Len(t, perItem, 20)

	multiCoded := 0
	for itemID, users := range perItem {
		require.GreaterOrEqual(t, len(users), 1, itemID)
		require.LessOrEqual(t, len(users), 3, itemID)
		seen := map[string]bool{}
		for _, u := range users {
			require.False(t, seen[u], "user assigned twice to %s", itemID)
			seen[u] = true
		}
		if len(users) > 1 {
			multiCoded++
		}
	}
	require.Equal(t, 5, multiCoded)
}

func TestRandomAssignmentsDeterministic(t *testing.T) {
	scope := testScope(models.AssignmentScopeConfig{
		ConfigType:            models.ScopeConfigRandom,
		Users:                 []string{"u1", "u2"},
		NumItems:              10,
		MinAssignmentsPerItem: 1,
		MaxAssignmentsPerItem: 2,
		NumMultiCodedItems:    3,
		RandomSeed:            42,
	})
	pool := testPool(30)

	first, err := RandomAssignments(scope, pool)
	require.NoError(t, err)
	second, err := RandomAssignments(scope, pool)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].ItemID, second[i].ItemID)
		require.Equal(t, first[i].UserID, second[i].UserID)
	}
}

func TestRandomAssignmentsRejectsBadConfigs(t *testing.T) {
	base := models.AssignmentScopeConfig{
		ConfigType:            models.ScopeConfigRandom,
		Users:                 []string{"u1", "u2"},
		NumItems:              10,
		MinAssignmentsPerItem: 1,
		MaxAssignmentsPerItem: 2,
		NumMultiCodedItems:    2,
		RandomSeed:            1,
	}
	pool := testPool(20)

	for name, mutate := range map[string]func(*models.AssignmentScopeConfig){
		"unknown config type": func(c *models.AssignmentScopeConfig) { c.ConfigType = "systematic" },
		"empty user pool":     func(c *models.AssignmentScopeConfig) { c.Users = nil },
		"min below one":       func(c *models.AssignmentScopeConfig) { c.MinAssignmentsPerItem = 0 },
		"max below min":       func(c *models.AssignmentScopeConfig) { c.MaxAssignmentsPerItem = 0 },
		"max beyond users":    func(c *models.AssignmentScopeConfig) { c.MaxAssignmentsPerItem = 3 },
		"too many multi":      func(c *models.AssignmentScopeConfig) { c.NumMultiCodedItems = 11 },
	} {
		cfg := base
		mutate(&cfg)
		_, err := RandomAssignments(testScope(cfg), pool)
		require.Error(t, err, name)
	}

	_, err := RandomAssignments(testScope(base), testPool(5))
	require.Error(t, err, "pool smaller than num_items")
}
