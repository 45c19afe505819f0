package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

// Permission names one flag of models.ProjectPermissions.
type Permission string

const (
	PermOwner           Permission = "owner"
	PermDatasetRead     Permission = "dataset_read"
	PermDatasetEdit     Permission = "dataset_edit"
	PermImportsRead     Permission = "imports_read"
	PermImportsEdit     Permission = "imports_edit"
	PermAnnotationsRead Permission = "annotations_read"
	PermAnnotationsEdit Permission = "annotations_edit"
	PermPipelinesRead   Permission = "pipelines_read"
	PermPipelinesEdit   Permission = "pipelines_edit"
	PermArtefactsRead   Permission = "artefacts_read"
	PermArtefactsEdit   Permission = "artefacts_edit"
)

// HasPermission checks one flag on a permission set. Owners pass every check.
func HasPermission(pp models.ProjectPermissions, perm Permission) bool {
	if pp.Owner {
		return true
	}
	switch perm {
	case PermOwner:
		return pp.Owner
	case PermDatasetRead:
		return pp.DatasetRead
	case PermDatasetEdit:
		return pp.DatasetEdit
	case PermImportsRead:
		return pp.ImportsRead
	case PermImportsEdit:
		return pp.ImportsEdit
	case PermAnnotationsRead:
		return pp.AnnotationsRead
	case PermAnnotationsEdit:
		return pp.AnnotationsEdit
	case PermPipelinesRead:
		return pp.PipelinesRead
	case PermPipelinesEdit:
		return pp.PipelinesEdit
	case PermArtefactsRead:
		return pp.ArtefactsRead
	case PermArtefactsEdit:
		return pp.ArtefactsEdit
	}
	return false
}

// PermissionStore is the slice of the project repository the resolver needs.
type PermissionStore interface {
	GetPermissions(ctx context.Context, projectID, userID string) (models.ProjectPermissions, error)
}

type cachedPermissions struct {
	permissions models.ProjectPermissions
	fetched     time.Time
}

// PermissionResolver looks up the effective permissions of a user in a
// project. Superusers receive a virtual all-permissions set without needing
// explicit permission rows. Lookups are cached for a short time since
// permission checks happen on every request while grants rarely change.
type PermissionResolver struct {
	users UserStore
	perms PermissionStore
	ttl   time.Duration

	mu    sync.Mutex
	cache map[string]cachedPermissions
}

func NewPermissionResolver(users UserStore, perms PermissionStore, ttl time.Duration) *PermissionResolver {
	return &PermissionResolver{
		users: users,
		perms: perms,
		ttl:   ttl,
		cache: make(map[string]cachedPermissions),
	}
}

// Resolve returns the effective permission set for a user in a project, or
// ErrPermissionDenied if the user has no access at all.
func (r *PermissionResolver) Resolve(ctx context.Context, projectID, userID string) (models.ProjectPermissions, error) {
	key := projectID + "|" + userID

	r.mu.Lock()
	if entry, ok := r.cache[key]; ok && time.Since(entry.fetched) < r.ttl {
		r.mu.Unlock()
		return entry.permissions, nil
	}
	r.mu.Unlock()

	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.ProjectPermissions{}, fmt.Errorf("resolve user: %w", err)
	}

	var pp models.ProjectPermissions
	if user.IsSuperuser {
		pp = models.VirtualAdmin(projectID, userID)
	} else {
		pp, err = r.perms.GetPermissions(ctx, projectID, userID)
		if errors.Is(err, util.ErrNotFound) {
			return models.ProjectPermissions{}, ErrPermissionDenied
		}
		if err != nil {
			return models.ProjectPermissions{}, fmt.Errorf("resolve permissions: %w", err)
		}
	}

	r.mu.Lock()
	r.cache[key] = cachedPermissions{permissions: pp, fetched: time.Now()}
	r.mu.Unlock()
	return pp, nil
}

// Require resolves the permission set and checks that every requested flag is
// granted.
func (r *PermissionResolver) Require(ctx context.Context, projectID, userID string, required ...Permission) (models.ProjectPermissions, error) {
	pp, err := r.Resolve(ctx, projectID, userID)
	if err != nil {
		return models.ProjectPermissions{}, err
	}
	for _, perm := range required {
		if !HasPermission(pp, perm) {
			return models.ProjectPermissions{}, fmt.Errorf("%w: %s", ErrPermissionDenied, perm)
		}
	}
	return pp, nil
}

// Invalidate drops the cached entry for a user in a project, e.g. after a
// grant changed.
func (r *PermissionResolver) Invalidate(projectID, userID string) {
	r.mu.Lock()
	delete(r.cache, projectID+"|"+userID)
	r.mu.Unlock()
}
