package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dtroode/storefront/internal/mocks"
	"github.com/dtroode/storefront/internal/model"
	"github.com/dtroode/storefront/internal/storage/memory"
	"github.com/dtroode/storefront/internal/testutil"
	"github.com/dtroode/storefront/internal/token"
)

var (
	errServer   = errors.New("GET current-user/: server responded 500")
	errRejected = fmt.Errorf("POST token/: %w", model.ErrUnauthorized)
	errOffline  = fmt.Errorf("%w: GET current-user/: connection refused", model.ErrNetwork)
)

func ana() *model.Identity {
	return &model.Identity{
		User:   model.User{ID: 1, Username: "ana"},
		Client: &model.Client{ID: 50, Name: "Ana", Email: "ana@example.com"},
	}
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk unreadable")
}
func (brokenKV) Set(context.Context, string, string) error { return nil }
func (brokenKV) Delete(context.Context, string) error     { return nil }

func storedTokens(t *testing.T, kv model.KVStore, access, refresh string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, model.KeyAccessToken, access))
	if refresh != "" {
		require.NoError(t, kv.Set(ctx, model.KeyRefreshToken, refresh))
	}
}

func hasKey(t *testing.T, kv model.KVStore, key string) bool {
	t.Helper()
	_, found, err := kv.Get(context.Background(), key)
	require.NoError(t, err)
	return found
}

func TestBootstrap(t *testing.T) {
	tests := []struct {
		name          string
		token         string
		lenient       bool
		profile       *model.Identity
		profileErr    error
		wantAuth      bool
		wantDegraded  bool
		wantUsername  string
		wantPurged    bool
		wantLastError bool
	}{
		{name: "no stored token", lenient: true},
		{name: "valid token", token: "t", lenient: true, profile: ana(), wantAuth: true, wantUsername: "ana"},
		{name: "profile unavailable, lenient", token: "t", lenient: true, profileErr: errServer, wantAuth: true, wantDegraded: true, wantUsername: model.PlaceholderUsername},
		{name: "profile unreachable, lenient", token: "t", lenient: true, profileErr: errOffline, wantAuth: true, wantDegraded: true, wantUsername: model.PlaceholderUsername},
		{name: "token rejected", token: "t", lenient: true, profileErr: errRejected, wantPurged: true},
		{name: "token rejected, strict", token: "t", profileErr: errRejected, wantPurged: true},
		{name: "profile unavailable, strict", token: "t", profileErr: errServer, wantPurged: true, wantLastError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := memory.New()
			if tt.token != "" {
				storedTokens(t, kv, tt.token, "r")
			}

			auth := &mocks.Authenticator{}
			auth.On("CurrentUser", mock.Anything).Return(tt.profile, tt.profileErr).Maybe()

			s := New(kv, auth, testutil.MakeNoopLogger(), WithLenientBootstrap(tt.lenient))
			assert.Equal(t, model.SessionUninitialized, s.Snapshot().State)

			s.Bootstrap(ctx)

			snap := s.Snapshot()
			assert.False(t, snap.Loading)
			assert.Equal(t, tt.wantAuth, snap.IsAuthenticated())
			assert.Equal(t, tt.wantAuth, s.IsAuthenticated())
			assert.Equal(t, tt.wantDegraded, snap.Degraded)
			assert.Equal(t, tt.wantLastError, snap.LastError != nil)
			if tt.wantAuth {
				assert.Equal(t, model.SessionAuthenticated, snap.State)
				assert.Equal(t, tt.wantUsername, snap.Identity.User.Username)
			} else {
				assert.Equal(t, model.SessionAnonymous, snap.State)
			}
			if tt.token != "" {
				assert.Equal(t, !tt.wantPurged, hasKey(t, kv, model.KeyAccessToken))
				assert.Equal(t, !tt.wantPurged, hasKey(t, kv, model.KeyRefreshToken))
			}
			if tt.token == "" {
				auth.AssertNotCalled(t, "CurrentUser", mock.Anything)
			}
		})
	}
}

func TestBootstrap_PlaceholderFromClaims(t *testing.T) {
	issuer := token.NewJWT("secret")
	access, err := issuer.GenerateAccessToken(9, "carla")
	require.NoError(t, err)

	kv := memory.New()
	storedTokens(t, kv, access, "")

	auth := &mocks.Authenticator{}
	auth.On("CurrentUser", mock.Anything).Return(nil, errServer)

	s := New(kv, auth, testutil.MakeNoopLogger(), WithTokenInspector(token.NewJWT("")))
	s.Bootstrap(context.Background())

	snap := s.Snapshot()
	require.True(t, snap.IsAuthenticated())
	assert.True(t, snap.Degraded)
	assert.Equal(t, "carla", snap.Identity.User.Username)
	assert.False(t, snap.IsClient())
}

func TestBootstrap_ExpiredToken(t *testing.T) {
	issuer := token.NewJWT("secret")
	access, err := issuer.GenerateAccessToken(1, "ana")
	require.NoError(t, err)
	later := func() time.Time { return time.Now().Add(time.Hour) }

	t.Run("refreshes before fetching profile", func(t *testing.T) {
		kv := memory.New()
		storedTokens(t, kv, access, "refresh-1")

		auth := &mocks.Authenticator{}
		auth.On("RefreshToken", mock.Anything, "refresh-1").Return(model.TokenPair{Access: "fresh"}, nil).Once()
		auth.On("CurrentUser", mock.Anything).Return(ana(), nil).Once()

		s := New(kv, auth, testutil.MakeNoopLogger(), WithTokenInspector(token.NewJWT("")), WithClock(later))
		s.Bootstrap(context.Background())

		assert.True(t, s.IsAuthenticated())
		stored, _, _ := kv.Get(context.Background(), model.KeyAccessToken)
		assert.Equal(t, "fresh", stored)
		refresh, _, _ := kv.Get(context.Background(), model.KeyRefreshToken)
		assert.Equal(t, "refresh-1", refresh)
		auth.AssertExpectations(t)
	})

	t.Run("signs out without refresh token", func(t *testing.T) {
		kv := memory.New()
		storedTokens(t, kv, access, "")

		auth := &mocks.Authenticator{}
		s := New(kv, auth, testutil.MakeNoopLogger(), WithTokenInspector(token.NewJWT("")), WithClock(later))
		s.Bootstrap(context.Background())

		snap := s.Snapshot()
		assert.Equal(t, model.SessionAnonymous, snap.State)
		assert.False(t, snap.Loading)
		assert.False(t, hasKey(t, kv, model.KeyAccessToken))
		auth.AssertNotCalled(t, "CurrentUser", mock.Anything)
	})

	t.Run("rejected refresh signs out", func(t *testing.T) {
		kv := memory.New()
		storedTokens(t, kv, access, "refresh-1")

		auth := &mocks.Authenticator{}
		auth.On("RefreshToken", mock.Anything, "refresh-1").Return(model.TokenPair{}, errRejected)

		s := New(kv, auth, testutil.MakeNoopLogger(), WithTokenInspector(token.NewJWT("")), WithClock(later))
		s.Bootstrap(context.Background())

		assert.False(t, s.IsAuthenticated())
		assert.False(t, s.Snapshot().Loading)
		assert.False(t, hasKey(t, kv, model.KeyRefreshToken))
		auth.AssertNotCalled(t, "CurrentUser", mock.Anything)
	})
}

func TestBootstrap_StorageFailure(t *testing.T) {
	auth := &mocks.Authenticator{}
	s := New(brokenKV{}, auth, testutil.MakeNoopLogger())
	s.Bootstrap(context.Background())

	snap := s.Snapshot()
	assert.Equal(t, model.SessionAnonymous, snap.State)
	assert.False(t, snap.Loading)
	assert.Error(t, snap.LastError)
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctx := context.Background()
		kv := memory.New()
		auth := &mocks.Authenticator{}
		auth.On("ObtainToken", mock.Anything, "ana", "secret1").Return(model.TokenPair{Access: "a", Refresh: "r"}, nil)
		auth.On("CurrentUser", mock.Anything).Return(ana(), nil)

		s := New(kv, auth, testutil.MakeNoopLogger())
		s.Bootstrap(ctx)
		require.NoError(t, s.Login(ctx, "ana", "secret1"))

		snap := s.Snapshot()
		assert.Equal(t, model.SessionAuthenticated, snap.State)
		assert.False(t, snap.Degraded)
		assert.Nil(t, snap.LastError)
		assert.True(t, s.IsClient())
		id, ok := snap.ClientID()
		assert.True(t, ok)
		assert.Equal(t, int64(50), id)

		access, _, _ := kv.Get(ctx, model.KeyAccessToken)
		refresh, _, _ := kv.Get(ctx, model.KeyRefreshToken)
		assert.Equal(t, "a", access)
		assert.Equal(t, "r", refresh)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		ctx := context.Background()
		kv := memory.New()
		auth := &mocks.Authenticator{}
		auth.On("ObtainToken", mock.Anything, "ana", "bad").Return(model.TokenPair{}, errRejected)

		s := New(kv, auth, testutil.MakeNoopLogger())
		s.Bootstrap(ctx)
		err := s.Login(ctx, "ana", "bad")

		assert.ErrorIs(t, err, model.ErrUnauthorized)
		snap := s.Snapshot()
		assert.False(t, snap.IsAuthenticated())
		assert.False(t, snap.Loading)
		assert.Equal(t, err, snap.LastError)
		assert.False(t, hasKey(t, kv, model.KeyAccessToken))
	})

	t.Run("profile fetch fails", func(t *testing.T) {
		ctx := context.Background()
		kv := memory.New()
		auth := &mocks.Authenticator{}
		auth.On("ObtainToken", mock.Anything, "ana", "secret1").Return(model.TokenPair{Access: "a", Refresh: "r"}, nil)
		auth.On("CurrentUser", mock.Anything).Return(nil, errServer)

		s := New(kv, auth, testutil.MakeNoopLogger())
		require.NoError(t, s.Login(ctx, "ana", "secret1"))

		snap := s.Snapshot()
		require.True(t, snap.IsAuthenticated())
		assert.True(t, snap.Degraded)
		assert.Equal(t, "ana", snap.Identity.User.Username)
		assert.False(t, snap.IsClient())
	})

	t.Run("clears previous error", func(t *testing.T) {
		ctx := context.Background()
		auth := &mocks.Authenticator{}
		auth.On("ObtainToken", mock.Anything, "ana", "bad").Return(model.TokenPair{}, errRejected)
		auth.On("ObtainToken", mock.Anything, "ana", "secret1").Return(model.TokenPair{Access: "a"}, nil)
		auth.On("CurrentUser", mock.Anything).Return(ana(), nil)

		s := New(memory.New(), auth, testutil.MakeNoopLogger())
		require.Error(t, s.Login(ctx, "ana", "bad"))
		require.Error(t, s.Snapshot().LastError)
		require.NoError(t, s.Login(ctx, "ana", "secret1"))
		assert.Nil(t, s.Snapshot().LastError)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	storedTokens(t, kv, "a", "r")

	auth := &mocks.Authenticator{}
	auth.On("CurrentUser", mock.Anything).Return(ana(), nil)

	s := New(kv, auth, testutil.MakeNoopLogger())
	s.Bootstrap(ctx)
	require.True(t, s.IsAuthenticated())

	s.Logout(ctx)
	s.Logout(ctx)

	snap := s.Snapshot()
	assert.Equal(t, model.SessionAnonymous, snap.State)
	assert.Nil(t, snap.Identity)
	assert.False(t, hasKey(t, kv, model.KeyAccessToken))
	assert.False(t, hasKey(t, kv, model.KeyRefreshToken))
}

func TestRefresh(t *testing.T) {
	signedIn := func(t *testing.T, refresh string) (*Store, *mocks.Authenticator, *memory.Store) {
		t.Helper()
		kv := memory.New()
		storedTokens(t, kv, "a", refresh)
		auth := &mocks.Authenticator{}
		auth.On("CurrentUser", mock.Anything).Return(ana(), nil)
		s := New(kv, auth, testutil.MakeNoopLogger())
		s.Bootstrap(context.Background())
		require.True(t, s.IsAuthenticated())
		return s, auth, kv
	}

	t.Run("rotates tokens", func(t *testing.T) {
		s, auth, kv := signedIn(t, "r1")
		auth.On("RefreshToken", mock.Anything, "r1").Return(model.TokenPair{Access: "a2", Refresh: "r2"}, nil)

		require.NoError(t, s.Refresh(context.Background()))

		access, _, _ := kv.Get(context.Background(), model.KeyAccessToken)
		refresh, _, _ := kv.Get(context.Background(), model.KeyRefreshToken)
		assert.Equal(t, "a2", access)
		assert.Equal(t, "r2", refresh)
		assert.True(t, s.IsAuthenticated())
	})

	t.Run("rejected", func(t *testing.T) {
		s, auth, kv := signedIn(t, "r1")
		auth.On("RefreshToken", mock.Anything, "r1").Return(model.TokenPair{}, errRejected)

		err := s.Refresh(context.Background())
		assert.ErrorIs(t, err, model.ErrUnauthorized)
		assert.Equal(t, model.SessionAnonymous, s.Snapshot().State)
		assert.False(t, hasKey(t, kv, model.KeyAccessToken))
	})

	t.Run("network failure keeps session", func(t *testing.T) {
		s, auth, kv := signedIn(t, "r1")
		auth.On("RefreshToken", mock.Anything, "r1").Return(model.TokenPair{}, errOffline)

		err := s.Refresh(context.Background())
		assert.ErrorIs(t, err, model.ErrNetwork)
		assert.True(t, s.IsAuthenticated())
		assert.True(t, hasKey(t, kv, model.KeyAccessToken))
	})

	t.Run("no refresh token", func(t *testing.T) {
		s, _, _ := signedIn(t, "")
		err := s.Refresh(context.Background())
		assert.ErrorIs(t, err, model.ErrNoRefreshToken)
		assert.False(t, s.IsAuthenticated())
	})
}

func TestReloadIdentity(t *testing.T) {
	ctx := context.Background()
	auth := &mocks.Authenticator{}
	auth.On("ObtainToken", mock.Anything, "ana", "secret1").Return(model.TokenPair{Access: "a"}, nil)
	auth.On("CurrentUser", mock.Anything).Return(nil, errServer).Once()

	s := New(memory.New(), auth, testutil.MakeNoopLogger())
	require.NoError(t, s.Login(ctx, "ana", "secret1"))
	require.True(t, s.Snapshot().Degraded)

	auth.On("CurrentUser", mock.Anything).Return(nil, errOffline).Once()
	assert.ErrorIs(t, s.ReloadIdentity(ctx), model.ErrNetwork)
	assert.True(t, s.Snapshot().Degraded)

	updated := ana()
	updated.Client.Name = "Ana María"
	auth.On("CurrentUser", mock.Anything).Return(updated, nil).Once()
	require.NoError(t, s.ReloadIdentity(ctx))

	snap := s.Snapshot()
	assert.False(t, snap.Degraded)
	assert.Equal(t, "Ana María", snap.Identity.Client.Name)
}

func TestSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	storedTokens(t, kv, "a", "r")
	auth := &mocks.Authenticator{}
	auth.On("CurrentUser", mock.Anything).Return(ana(), nil)

	s := New(kv, auth, testutil.MakeNoopLogger())
	s.Bootstrap(ctx)

	snap := s.Snapshot()
	snap.Identity.User.Username = "mallory"
	snap.Identity.Client.Name = "Mallory"

	again := s.Snapshot()
	assert.Equal(t, "ana", again.Identity.User.Username)
	assert.Equal(t, "Ana", again.Identity.Client.Name)
}

func TestSubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	kv := memory.New()
	auth := &mocks.Authenticator{}
	auth.On("ObtainToken", mock.Anything, "ana", "secret1").Return(model.TokenPair{Access: "a"}, nil)
	auth.On("CurrentUser", mock.Anything).Return(ana(), nil)

	s := New(kv, auth, testutil.MakeNoopLogger())
	updates := s.Subscribe(ctx)

	s.Bootstrap(ctx)
	got := <-updates
	assert.Equal(t, model.SessionAnonymous, got.State)

	require.NoError(t, s.Login(ctx, "ana", "secret1"))
	got = <-updates
	assert.Equal(t, model.SessionAuthenticated, got.State)
	assert.Equal(t, "ana", got.Identity.User.Username)

	cancel()
	for range updates {
	}
}

func TestSubscribe_ConcurrentUpdatesEndOnFinalState(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	s := New(memory.New(), &mocks.Authenticator{}, testutil.MakeNoopLogger())
	updates := s.Subscribe(ctx)

	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%2 == 0 {
					s.anonymous(nil)
					return
				}
				s.authenticated(ana(), false)
			}(i)
		}
		wg.Wait()

		got := <-updates
		assert.Equal(t, s.Snapshot().State, got.State, "round %d", round)
	}

	cancel()
	for range updates {
	}
}
