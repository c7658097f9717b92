package model

import "context"

// Authenticator is the part of the backend the session talks to.
type Authenticator interface {
	ObtainToken(ctx context.Context, username, password string) (TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (TokenPair, error)
	CurrentUser(ctx context.Context) (*Identity, error)
}
