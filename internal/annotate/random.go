package annotate

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

// RandomAssignments draws assignments for a scope from a pool of item IDs
// following the scope's random config. All randomness comes from the config's
// seed, so re-running with the same pool reproduces the same assignments.
//
// Every drawn item is assigned to MinAssignmentsPerItem users; a random
// subset of NumMultiCodedItems items additionally receives up to
// MaxAssignmentsPerItem coders. Users are handed out round robin from a
// shuffled rotation to keep workloads even.
func RandomAssignments(scope *models.AssignmentScope, itemIDs []string) ([]models.Assignment, error) {
	cfg := scope.Config
	if cfg == nil {
		return nil, fmt.Errorf("scope %s has no config: %w", scope.ScopeID, util.ErrInvalidConfig)
	}
	if cfg.ConfigType != models.ScopeConfigRandom && cfg.ConfigType != models.ScopeConfigRandomExclusion {
		return nil, fmt.Errorf("config type %q: %w", cfg.ConfigType, util.ErrInvalidConfig)
	}
	if len(cfg.Users) == 0 {
		return nil, fmt.Errorf("no users in pool: %w", util.ErrInvalidConfig)
	}
	if cfg.MinAssignmentsPerItem < 1 || cfg.MaxAssignmentsPerItem < cfg.MinAssignmentsPerItem {
		return nil, fmt.Errorf("assignments per item %d..%d: %w",
			cfg.MinAssignmentsPerItem, cfg.MaxAssignmentsPerItem, util.ErrInvalidConfig)
	}
	if cfg.MaxAssignmentsPerItem > len(cfg.Users) {
		return nil, fmt.Errorf("max %d assignments per item but only %d users: %w",
			cfg.MaxAssignmentsPerItem, len(cfg.Users), util.ErrInvalidConfig)
	}
	if cfg.NumMultiCodedItems > cfg.NumItems {
		return nil, fmt.Errorf("%d multi-coded of %d items: %w",
			cfg.NumMultiCodedItems, cfg.NumItems, util.ErrInvalidConfig)
	}
	if len(itemIDs) < cfg.NumItems {
		return nil, fmt.Errorf("pool holds %d items, need %d: %w",
			len(itemIDs), cfg.NumItems, util.ErrInvalidConfig)
	}

	rng := rand.New(rand.NewSource(cfg.RandomSeed))

	items := make([]string, 0, cfg.NumItems)
	for _, i := range rng.Perm(len(itemIDs))[:cfg.NumItems] {
		items = append(items, itemIDs[i])
	}

	multiCoded := make(map[int]bool, cfg.NumMultiCodedItems)
	for _, i := range rng.Perm(cfg.NumItems)[:cfg.NumMultiCodedItems] {
		multiCoded[i] = true
	}

	rotation := make([]string, len(cfg.Users))
	copy(rotation, cfg.Users)
	rng.Shuffle(len(rotation), func(i, j int) {
		rotation[i], rotation[j] = rotation[j], rotation[i]
	})
	cursor := 0
	nextUser := func() string {
		u := rotation[cursor%len(rotation)]
		cursor++
		return u
	}

	var assignments []models.Assignment
	for i, itemID := range items {
		coders := cfg.MinAssignmentsPerItem
		if multiCoded[i] {
			lo := min(cfg.MinAssignmentsPerItem+1, cfg.MaxAssignmentsPerItem)
			coders = lo + rng.Intn(cfg.MaxAssignmentsPerItem-lo+1)
		}
		for c := 0; c < coders; c++ {
			assignments = append(assignments, models.Assignment{
				AssignmentID: uuid.NewString(),
				ScopeID:      scope.ScopeID,
				UserID:       nextUser(),
				ItemID:       itemID,
				SchemeID:     scope.SchemeID,
				Status:       models.AssignmentStatusOpen,
			})
		}
	}
	return assignments, nil
}
