package auth

import (
	"context"
	"testing"
	"time"

	"bookinghub/config"
	"bookinghub/models"
	"bookinghub/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	accounts map[string]*models.Account
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, a *models.Account) error {
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeUsers) SetDeviceToken(_ context.Context, id, token string) error {
	f.accounts[id].DeviceToken = token
	return nil
}

type fakeProviders struct {
	byUser map[string]*models.Provider
}

func (f *fakeProviders) GetByUserID(_ context.Context, userID string) (*models.Provider, error) {
	if p, ok := f.byUser[userID]; ok {
		return p, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeProviders) GetByID(_ context.Context, id string) (*models.Provider, error) {
	for _, p := range f.byUser {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeProviders) ListByBusiness(context.Context, string) ([]models.Provider, error) {
	return nil, nil
}

func (f *fakeProviders) SetIdentityVerified(_ context.Context, userID string, verified bool) error {
	f.byUser[userID].IdentityVerified = verified
	return nil
}

func newTestStore(t *testing.T) (*SessionStore, *fakeProviders, *miniredis.Miniredis) {
	t.Helper()
	config.AppConfig.JWTSecret = "test-secret"

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &fakeUsers{accounts: map[string]*models.Account{
		"u1": {ID: "u1", Email: "ada@example.com", PasswordHash: string(hash)},
		"u2": {ID: "u2", Email: "orphan@example.com", PasswordHash: string(hash)},
	}}
	providers := &fakeProviders{byUser: map[string]*models.Provider{
		"u1": {ID: "p1", UserID: "u1", BusinessID: "biz1", LocationID: "loc1",
			ProviderRole: "dispatcher", FirstName: "Ada", LastName: "Lovelace", IsActive: true},
	}}
	return NewSessionStore(users, providers, client, time.Hour, zap.NewNop()), providers, mr
}

func TestSignInBuildsAuthUser(t *testing.T) {
	store, _, mr := newTestStore(t)
	ctx := context.Background()

	sess, err := store.SignIn(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, models.AuthUser{
		ID: "u1", Email: "ada@example.com", ProviderID: "p1", BusinessID: "biz1",
		LocationID: "loc1", ProviderRole: "dispatcher", FirstName: "Ada", LastName: "Lovelace",
	}, sess.User)
	assert.True(t, mr.Exists(sessionKey(sess.Token)))

	user, err := store.Lookup(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "p1", user.ProviderID)
}

func TestLookupKeepsFixedLifetime(t *testing.T) {
	store, _, mr := newTestStore(t)
	ctx := context.Background()

	sess, err := store.SignIn(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 2*time.Second)

	mr.FastForward(40 * time.Minute)
	_, err = store.Lookup(ctx, sess.Token)
	require.NoError(t, err)
	ttl := mr.TTL(sessionKey(sess.Token))
	assert.True(t, ttl > 19*time.Minute && ttl <= 20*time.Minute, ttl)

	// A re-joined entry is capped at the token's exp, not a fresh TTL.
	mr.Del(sessionKey(sess.Token))
	_, err = store.Lookup(ctx, sess.Token)
	require.NoError(t, err)
	ttl = mr.TTL(sessionKey(sess.Token))
	assert.True(t, ttl > 0 && ttl <= time.Hour, ttl)
}

func TestSignInRejectsBadPassword(t *testing.T) {
	store, _, _ := newTestStore(t)

	_, err := store.SignIn(context.Background(), "ada@example.com", "wrong")
	assert.Equal(t, 401, utils.StatusFor(err))
}

func TestSignInRequiresProviderRecord(t *testing.T) {
	store, _, mr := newTestStore(t)

	_, err := store.SignIn(context.Background(), "orphan@example.com", "hunter22")
	assert.Equal(t, 401, utils.StatusFor(err))
	assert.Empty(t, mr.Keys())
}

func TestLookupSignsOutInactiveProvider(t *testing.T) {
	store, providers, mr := newTestStore(t)
	ctx := context.Background()

	sess, err := store.SignIn(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	// Drop the cached entry so the next lookup re-joins the provider record.
	mr.Del(sessionKey(sess.Token))
	providers.byUser["u1"].IsActive = false

	_, err = store.Lookup(ctx, sess.Token)
	assert.Equal(t, 401, utils.StatusFor(err))
	assert.False(t, mr.Exists(sessionKey(sess.Token)))
}

func TestSignOutInvalidatesSession(t *testing.T) {
	store, _, mr := newTestStore(t)
	ctx := context.Background()

	sess, err := store.SignIn(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, store.SignOut(ctx, sess.Token))
	assert.False(t, mr.Exists(sessionKey(sess.Token)))
}

func TestLookupRejectsGarbageToken(t *testing.T) {
	store, _, _ := newTestStore(t)

	_, err := store.Lookup(context.Background(), "not-a-jwt")
	assert.Equal(t, 401, utils.StatusFor(err))
}

func TestUserContextRoundTrip(t *testing.T) {
	ctx := WithUser(context.Background(), &models.AuthUser{ID: "u1"})
	user, ok := UserFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)

	_, ok = UserFrom(context.Background())
	assert.False(t, ok)
}
