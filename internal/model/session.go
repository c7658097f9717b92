package model

// SessionState is a step of the session lifecycle.
type SessionState int

const (
	SessionUninitialized SessionState = iota
	SessionLoading
	SessionAuthenticated
	SessionAnonymous
)

func (s SessionState) String() string {
	switch s {
	case SessionUninitialized:
		return "uninitialized"
	case SessionLoading:
		return "loading"
	case SessionAuthenticated:
		return "authenticated"
	case SessionAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// PlaceholderUsername names the identity used when a stored token could not be
// resolved to a profile.
const PlaceholderUsername = "authenticated user"

// Session is a snapshot of the authentication state.
// Degraded is set when the identity was synthesized instead of fetched.
type Session struct {
	State     SessionState
	Identity  *Identity
	Loading   bool
	Degraded  bool
	LastError error
}

// IsAuthenticated reports whether an identity is present.
func (s Session) IsAuthenticated() bool {
	return s.Identity != nil
}

// IsClient reports whether the identity is linked to a client record.
func (s Session) IsClient() bool {
	return s.Identity != nil && s.Identity.Client != nil
}

// ClientID returns the linked client id, if any.
func (s Session) ClientID() (int64, bool) {
	if !s.IsClient() {
		return 0, false
	}
	return s.Identity.Client.ID, true
}
