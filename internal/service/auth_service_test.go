package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faya/preorder-api/internal/auth"
	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/internal/events"
	"github.com/faya/preorder-api/internal/repository/repotest"
	"github.com/faya/preorder-api/pkg/apperrors"
)

func newAuthService(t *testing.T) (*AuthService, *repotest.Store, *auth.Codec, *recordingDispatcher) {
	t.Helper()
	store := repotest.NewStore()
	codec := testCodec(t)
	dispatcher := &recordingDispatcher{}
	svc := NewAuthService(AuthDependencies{
		Users:      store.Users(),
		Codec:      codec,
		Hasher:     auth.NewPasswordHasher(4),
		Dispatcher: dispatcher,
		AccessTTL:  testAccessTTL,
		RefreshTTL: testRefreshTTL,
	})
	return svc, store, codec, dispatcher
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	svc, _, codec, dispatcher := newAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, RegisterInput{FullName: " Ada Student ", Email: " Ada@Campus.EDU ", Password: "longenough"})
	require.NoError(t, err)

	assert.Equal(t, "Ada Student", user.FullName)
	assert.Equal(t, "ada@campus.edu", user.Email)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.NotEqual(t, "longenough", user.PasswordHash)

	access, err := codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, access.Subject)
	assert.Equal(t, domain.TokenKindAccess, access.Kind)

	refresh, err := codec.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenKindRefresh, refresh.Kind)
	assert.WithinDuration(t, time.Now().Add(testRefreshTTL), pair.RefreshExpiresAt, 5*time.Second)

	assert.Equal(t, []events.EventType{events.EventUserRegistered}, dispatcher.types())
}

func TestRegisterDuplicateEmailIsStorageConflict(t *testing.T) {
	svc, _, _, _ := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{FullName: "Ada", Email: "ada@campus.edu", Password: "longenough"})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, RegisterInput{FullName: "Ada Again", Email: "ADA@campus.edu", Password: "longenough"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindStorageConflict, apperrors.Classify(err).Kind)
}

func TestLogin(t *testing.T) {
	svc, store, _, _ := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{FullName: "Ada", Email: "ada@campus.edu", Password: "longenough"})
	require.NoError(t, err)

	user, pair, err := svc.Login(ctx, "ADA@campus.edu", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "ada@campus.edu", user.Email)
	assert.NotEmpty(t, pair.AccessToken)

	_, _, err = svc.Login(ctx, "ada@campus.edu", "wrong-password")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))

	_, _, err = svc.Login(ctx, "nobody@campus.edu", "longenough")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))

	hash, err := auth.NewPasswordHasher(4).Hash("longenough")
	require.NoError(t, err)
	store.AddUser(domain.User{Email: "sus@campus.edu", PasswordHash: hash, Role: domain.RoleStudent, Status: domain.UserStatusSuspended})
	_, _, err = svc.Login(ctx, "sus@campus.edu", "longenough")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))

	store.Err = errors.New("db down")
	_, _, err = svc.Login(ctx, "ada@campus.edu", "longenough")
	assert.Equal(t, apperrors.KindUnexpected, apperrors.Classify(err).Kind)
}

func TestRefresh(t *testing.T) {
	svc, _, _, _ := newAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, RegisterInput{FullName: "Ada", Email: "ada@campus.edu", Password: "longenough"})
	require.NoError(t, err)

	refreshed, next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)
	assert.NotEmpty(t, next.AccessToken)

	_, _, err = svc.Refresh(ctx, pair.AccessToken)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired), "access tokens cannot refresh")

	_, _, err = svc.Refresh(ctx, "garbage")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))
}

func TestMe(t *testing.T) {
	svc, _, _, _ := newAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, RegisterInput{FullName: "Ada", Email: "ada@campus.edu", Password: "longenough"})
	require.NoError(t, err)

	got, err := svc.Me(ctx, auth.PrincipalFromUser(user))
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Me(ctx, &auth.Principal{ID: "gone"})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = svc.Me(ctx, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))
}
