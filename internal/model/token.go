package model

import "time"

// TokenPair is the result of a credential exchange. Refresh may be empty when
// the backend does not rotate refresh tokens.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// AccessClaims is what the client can learn from an access token on its own.
type AccessClaims struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

// Expired reports whether the token has an expiry that lies before now.
func (c AccessClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// TokenInspector decodes access tokens.
type TokenInspector interface {
	ParseAccessToken(token string) (AccessClaims, error)
}
