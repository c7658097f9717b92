package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dtroode/storefront/internal/model"
)

// AuthService covers the credential and account endpoints.
type AuthService struct {
	c *Client
}

var _ model.Authenticator = (*AuthService)(nil)
var _ model.AccountAPI = (*AuthService)(nil)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// ErrEmptyToken is returned when the token endpoint answers without an access token.
var ErrEmptyToken = errors.New("token response has no access token")

// ObtainToken exchanges username and password for a token pair.
func (s *AuthService) ObtainToken(ctx context.Context, username, password string) (model.TokenPair, error) {
	var pair model.TokenPair
	err := s.c.sendJSON(ctx, http.MethodPost, "token/", false, credentials{Username: username, Password: password}, &pair)
	if err != nil {
		return model.TokenPair{}, err
	}
	if pair.Access == "" {
		return model.TokenPair{}, ErrEmptyToken
	}
	return pair, nil
}

// RefreshToken exchanges a refresh token for a new access token. The returned
// pair carries a refresh token only when the backend rotates it.
func (s *AuthService) RefreshToken(ctx context.Context, refresh string) (model.TokenPair, error) {
	var pair model.TokenPair
	err := s.c.sendJSON(ctx, http.MethodPost, "token/refresh/", false, refreshRequest{Refresh: refresh}, &pair)
	if err != nil {
		return model.TokenPair{}, err
	}
	if pair.Access == "" {
		return model.TokenPair{}, ErrEmptyToken
	}
	return pair, nil
}

// CurrentUser fetches the identity behind the stored access token.
func (s *AuthService) CurrentUser(ctx context.Context) (*model.Identity, error) {
	var identity model.Identity
	if err := s.c.sendJSON(ctx, http.MethodGet, "current-user/", true, nil, &identity); err != nil {
		return nil, err
	}
	if identity.User.Username == "" {
		return nil, fmt.Errorf("current user response has no username")
	}
	return &identity, nil
}

// Register creates a user together with a new client record.
func (s *AuthService) Register(ctx context.Context, r model.Registration) (map[string]any, error) {
	var out map[string]any
	if err := s.c.sendJSON(ctx, http.MethodPost, "register/", false, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LinkUserClient creates a user for an existing client record matched by email.
func (s *AuthService) LinkUserClient(ctx context.Context, r model.LinkRequest) (map[string]any, error) {
	var out map[string]any
	if err := s.c.sendJSON(ctx, http.MethodPost, "link-user-client/", false, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}
