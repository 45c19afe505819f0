package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type fakeStore struct {
	users  map[string]models.User
	tokens map[string]models.AuthToken
	perms  map[string]models.ProjectPermissions

	permLookups int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  map[string]models.User{},
		tokens: map[string]models.AuthToken{},
		perms:  map[string]models.ProjectPermissions{},
	}
}

func (s *fakeStore) GetUserByID(_ context.Context, userID string) (models.User, error) {
	for _, u := range s.users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return models.User{}, util.ErrNotFound
}

func (s *fakeStore) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	u, ok := s.users[username]
	if !ok {
		return models.User{}, util.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) SaveToken(_ context.Context, t models.AuthToken) error {
	s.tokens[t.TokenID] = t
	return nil
}

func (s *fakeStore) GetToken(_ context.Context, tokenID string) (models.AuthToken, error) {
	t, ok := s.tokens[tokenID]
	if !ok {
		return models.AuthToken{}, util.ErrNotFound
	}
	return t, nil
}

func (s *fakeStore) DeleteToken(_ context.Context, tokenID string) error {
	delete(s.tokens, tokenID)
	return nil
}

func (s *fakeStore) GetPermissions(_ context.Context, projectID, userID string) (models.ProjectPermissions, error) {
	s.permLookups++
	pp, ok := s.perms[projectID+"|"+userID]
	if !ok {
		return models.ProjectPermissions{}, util.ErrNotFound
	}
	return pp, nil
}

func (s *fakeStore) addUser(t *testing.T, username, password string, superuser, active bool) models.User {
	t.Helper()
	hashed, err := HashPassword(password, 4)
	require.NoError(t, err)
	u := models.User{
		UserID:      username + "-id",
		Username:    username,
		Email:       username + "@example.org",
		Password:    hashed,
		IsSuperuser: superuser,
		IsActive:    active,
	}
	s.users[username] = u
	return u
}

func TestPasswordRoundtrip(t *testing.T) {
	hashed, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hashed)
	require.True(t, CheckPassword(hashed, "s3cret"))
	require.False(t, CheckPassword(hashed, "wrong"))
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(t, "ada", "s3cret", false, true)
	a := NewAuthenticator(store)

	token, err := a.Login(ctx, "ada", "s3cret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token.TokenID)
	require.NotNil(t, token.ValidTil)

	user, err := a.Authenticate(ctx, token.TokenID)
	require.NoError(t, err)
	require.Equal(t, "ada", user.Username)

	require.NoError(t, a.Logout(ctx, token.TokenID))
	_, err = a.Authenticate(ctx, token.TokenID)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejections(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(t, "ada", "s3cret", false, true)
	store.addUser(t, "bob", "s3cret", false, false)
	a := NewAuthenticator(store)

	_, err := a.Login(ctx, "ada", "wrong", 0)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login(ctx, "nobody", "s3cret", 0)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login(ctx, "bob", "s3cret", 0)
	require.ErrorIs(t, err, ErrUserInactive)
}

func TestPermanentToken(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(t, "ada", "s3cret", false, true)
	a := NewAuthenticator(store)

	token, err := a.Login(ctx, "ada", "s3cret", 0)
	require.NoError(t, err)
	require.Nil(t, token.ValidTil)

	_, err = a.Authenticate(ctx, token.TokenID)
	require.NoError(t, err)
}

func TestExpiredTokenIsDeleted(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(t, "ada", "s3cret", false, true)
	a := NewAuthenticator(store)

	expired := time.Now().Add(-time.Minute)
	store.tokens["tok"] = models.AuthToken{TokenID: "tok", Username: "ada", ValidTil: &expired}

	_, err := a.Authenticate(ctx, "tok")
	require.ErrorIs(t, err, ErrTokenExpired)
	require.NotContains(t, store.tokens, "tok")
}

func TestPermissionResolver(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	ada := store.addUser(t, "ada", "s3cret", false, true)
	root := store.addUser(t, "root", "s3cret", true, true)
	store.perms["p1|"+ada.UserID] = models.ProjectPermissions{
		ProjectID: "p1", UserID: ada.UserID,
		AnnotationsRead: true, AnnotationsEdit: true,
	}

	r := NewPermissionResolver(store, store, time.Minute)

	pp, err := r.Resolve(ctx, "p1", ada.UserID)
	require.NoError(t, err)
	require.True(t, HasPermission(pp, PermAnnotationsEdit))
	require.False(t, HasPermission(pp, PermDatasetEdit))

	// superusers get the virtual admin set without a permission row
	pp, err = r.Resolve(ctx, "p1", root.UserID)
	require.NoError(t, err)
	require.True(t, pp.Owner)
	require.True(t, HasPermission(pp, PermDatasetEdit))

	// no permission row means no access
	bob := store.addUser(t, "bob", "s3cret", false, true)
	_, err = r.Resolve(ctx, "p1", bob.UserID)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestPermissionResolverCaches(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	ada := store.addUser(t, "ada", "s3cret", false, true)
	store.perms["p1|"+ada.UserID] = models.ProjectPermissions{
		ProjectID: "p1", UserID: ada.UserID, DatasetRead: true,
	}

	r := NewPermissionResolver(store, store, time.Minute)

	_, err := r.Resolve(ctx, "p1", ada.UserID)
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "p1", ada.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, store.permLookups)

	r.Invalidate("p1", ada.UserID)
	_, err = r.Resolve(ctx, "p1", ada.UserID)
	require.NoError(t, err)
	require.Equal(t, 2, store.permLookups)
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	ada := store.addUser(t, "ada", "s3cret", false, true)
	store.perms["p1|"+ada.UserID] = models.ProjectPermissions{
		ProjectID: "p1", UserID: ada.UserID, ImportsRead: true,
	}

	r := NewPermissionResolver(store, store, time.Minute)

	_, err := r.Require(ctx, "p1", ada.UserID, PermImportsRead)
	require.NoError(t, err)
	_, err = r.Require(ctx, "p1", ada.UserID, PermImportsRead, PermImportsEdit)
	require.ErrorIs(t, err, ErrPermissionDenied)
}
