// Package session tracks who is signed in. Tokens live in the key-value
// store; the identity lives in memory and is rebuilt by Bootstrap.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/model"
	"github.com/dtroode/storefront/internal/notify"
)

// Store owns the authentication state of the running application.
// Network calls run outside the lock; concurrent flows race and the last
// write wins.
type Store struct {
	mu    sync.Mutex
	state model.Session

	kv        model.KVStore
	auth      model.Authenticator
	inspector model.TokenInspector
	logger    *logger.Logger
	hub       *notify.Hub[model.Session]

	lenient bool
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLenientBootstrap sets whether a non-auth failure of the profile fetch
// during Bootstrap keeps the user signed in with a placeholder identity.
// The default is true.
func WithLenientBootstrap(lenient bool) Option {
	return func(s *Store) {
		s.lenient = lenient
	}
}

// WithTokenInspector lets the store read expiry and username from access tokens.
func WithTokenInspector(i model.TokenInspector) Option {
	return func(s *Store) {
		s.inspector = i
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store in the Uninitialized state. Call Bootstrap before use.
func New(kv model.KVStore, auth model.Authenticator, logger *logger.Logger, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		auth:    auth,
		logger:  logger,
		hub:     notify.NewHub[model.Session](),
		lenient: true,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() model.Session {
	out := s.state
	if out.Identity != nil {
		identity := *out.Identity
		if identity.Client != nil {
			client := *identity.Client
			identity.Client = &client
		}
		out.Identity = &identity
	}
	return out
}

// Subscribe delivers a snapshot after every state change until ctx is done.
func (s *Store) Subscribe(ctx context.Context) <-chan model.Session {
	return s.hub.Subscribe(ctx)
}

// IsAuthenticated reports whether an identity is present.
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// IsClient reports whether the identity is linked to a client record.
func (s *Store) IsClient() bool {
	return s.Snapshot().IsClient()
}

// update publishes under the lock so subscribers see changes in commit order.
func (s *Store) update(fn func(*model.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	s.hub.Publish(s.snapshot())
}

func (s *Store) authenticated(identity *model.Identity, degraded bool) {
	s.update(func(st *model.Session) {
		st.State = model.SessionAuthenticated
		st.Identity = identity
		st.Degraded = degraded
		st.Loading = false
	})
}

func (s *Store) anonymous(lastErr error) {
	s.update(func(st *model.Session) {
		st.State = model.SessionAnonymous
		st.Identity = nil
		st.Degraded = false
		st.Loading = false
		st.LastError = lastErr
	})
}

// Bootstrap restores the session from the persisted tokens. It always leaves
// the store Authenticated or Anonymous with Loading false.
func (s *Store) Bootstrap(ctx context.Context) {
	s.update(func(st *model.Session) {
		st.State = model.SessionLoading
		st.Loading = true
		st.LastError = nil
	})

	access, found, err := s.kv.Get(ctx, model.KeyAccessToken)
	if err != nil {
		s.logger.Error("Session store: failed to read access token", "error", err.Error())
		s.purge(ctx)
		s.anonymous(err)
		return
	}
	if !found || access == "" {
		s.logger.Debug("Session store: no stored token")
		s.anonymous(nil)
		return
	}

	claims, hasClaims := s.claims(access)
	if hasClaims && claims.Expired(s.now()) {
		s.logger.Info("Session store: access token expired, refreshing", "expired_at", claims.ExpiresAt)
		if err := s.refresh(ctx); err != nil {
			if s.Snapshot().State == model.SessionAnonymous {
				return
			}
			s.logger.Warn("Session store: refresh during bootstrap failed", "error", err.Error())
		}
	}

	identity, err := s.auth.CurrentUser(ctx)
	switch {
	case err == nil:
		s.logger.Info("Session store: session restored", "username", identity.User.Username)
		s.authenticated(identity, false)
	case model.IsAuthFailure(err):
		s.logger.Info("Session store: stored token rejected, signing out", "error", err.Error())
		s.purge(ctx)
		s.anonymous(nil)
	case s.lenient:
		s.logger.Warn("Session store: profile fetch failed, keeping placeholder identity", "error", err.Error())
		s.authenticated(s.placeholder(access), true)
	default:
		s.logger.Warn("Session store: profile fetch failed, signing out", "error", err.Error())
		s.purge(ctx)
		s.anonymous(err)
	}
}

// Login exchanges credentials for tokens, persists them and loads the identity.
// A failing profile fetch still signs the user in with a minimal identity.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.update(func(st *model.Session) {
		st.Loading = true
		st.LastError = nil
	})

	fail := func(err error) error {
		s.update(func(st *model.Session) {
			st.Loading = false
			st.LastError = err
		})
		return err
	}

	pair, err := s.auth.ObtainToken(ctx, username, password)
	if err != nil {
		s.logger.Info("Session store: login rejected", "username", username, "error", err.Error())
		return fail(err)
	}
	if pair.Access == "" {
		return fail(errors.New("login response has no access token"))
	}

	if err := s.kv.Set(ctx, model.KeyAccessToken, pair.Access); err != nil {
		return fail(fmt.Errorf("failed to store access token: %w", err))
	}
	if pair.Refresh != "" {
		if err := s.kv.Set(ctx, model.KeyRefreshToken, pair.Refresh); err != nil {
			return fail(fmt.Errorf("failed to store refresh token: %w", err))
		}
	}

	identity, err := s.auth.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("Session store: profile fetch after login failed", "username", username, "error", err.Error())
		s.authenticated(&model.Identity{User: model.User{Username: username}}, true)
		return nil
	}

	s.logger.Info("Session store: logged in", "username", identity.User.Username)
	s.authenticated(identity, false)
	return nil
}

// Logout discards the tokens and the identity. It is safe to call repeatedly.
func (s *Store) Logout(ctx context.Context) {
	s.purge(ctx)
	s.anonymous(nil)
	s.logger.Info("Session store: logged out")
}

// Refresh exchanges the stored refresh token for a new access token. A
// rejected refresh signs the user out; a network failure changes nothing.
func (s *Store) Refresh(ctx context.Context) error {
	return s.refresh(ctx)
}

func (s *Store) refresh(ctx context.Context) error {
	refresh, found, err := s.kv.Get(ctx, model.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("failed to read refresh token: %w", err)
	}
	if !found || refresh == "" {
		s.purge(ctx)
		s.anonymous(nil)
		return model.ErrNoRefreshToken
	}

	pair, err := s.auth.RefreshToken(ctx, refresh)
	if err != nil {
		if errors.Is(err, model.ErrNetwork) {
			return err
		}
		s.logger.Info("Session store: refresh rejected, signing out", "error", err.Error())
		s.purge(ctx)
		s.anonymous(err)
		return err
	}

	if err := s.kv.Set(ctx, model.KeyAccessToken, pair.Access); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if pair.Refresh != "" {
		if err := s.kv.Set(ctx, model.KeyRefreshToken, pair.Refresh); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}
	}

	s.logger.Debug("Session store: access token refreshed")
	return nil
}

// ReloadIdentity fetches the identity again and replaces the current one.
func (s *Store) ReloadIdentity(ctx context.Context) error {
	identity, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload identity: %w", err)
	}
	s.authenticated(identity, false)
	return nil
}

// AccessClaims returns what the stored access token says about itself.
func (s *Store) AccessClaims(ctx context.Context) (model.AccessClaims, bool) {
	access, found, err := s.kv.Get(ctx, model.KeyAccessToken)
	if err != nil || !found {
		return model.AccessClaims{}, false
	}
	return s.claims(access)
}

func (s *Store) claims(access string) (model.AccessClaims, bool) {
	if s.inspector == nil {
		return model.AccessClaims{}, false
	}
	claims, err := s.inspector.ParseAccessToken(access)
	if err != nil {
		s.logger.Debug("Session store: access token is not inspectable", "error", err.Error())
		return model.AccessClaims{}, false
	}
	return claims, true
}

func (s *Store) placeholder(access string) *model.Identity {
	username := model.PlaceholderUsername
	if claims, ok := s.claims(access); ok && claims.Username != "" {
		username = claims.Username
	}
	return &model.Identity{User: model.User{Username: username}}
}

func (s *Store) purge(ctx context.Context) {
	for _, key := range []string{model.KeyAccessToken, model.KeyRefreshToken} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.logger.Error("Session store: failed to delete token", "key", key, "error", err.Error())
		}
	}
}
