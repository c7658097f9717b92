package service

import (
	"context"

	"github.com/dtroode/storefront/internal/model"
)

type staticSession struct {
	sess      model.Session
	reloadErr error
	reloads   int
}

func (s *staticSession) Snapshot() model.Session { return s.sess }

func (s *staticSession) ReloadIdentity(context.Context) error {
	s.reloads++
	return s.reloadErr
}

func signedIn(clientID int64) *staticSession {
	identity := &model.Identity{User: model.User{ID: 1, Username: "ana"}}
	if clientID != 0 {
		identity.Client = &model.Client{ID: clientID, Name: "Ana", Email: "ana@example.com"}
	}
	return &staticSession{sess: model.Session{State: model.SessionAuthenticated, Identity: identity}}
}

func anonymous() *staticSession {
	return &staticSession{sess: model.Session{State: model.SessionAnonymous}}
}
