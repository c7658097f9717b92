package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/model"
)

// IdentityReloader is a session whose identity can be fetched again.
type IdentityReloader interface {
	SessionView
	ReloadIdentity(ctx context.Context) error
}

// Profile reads and edits the client record linked to the signed-in user.
type Profile struct {
	session IdentityReloader
	clients model.ClientAPI
	logger  *logger.Logger
}

// NewProfile creates new Profile instance.
func NewProfile(session IdentityReloader, clients model.ClientAPI, logger *logger.Logger) *Profile {
	return &Profile{
		session: session,
		clients: clients,
		logger:  logger,
	}
}

func (p *Profile) clientID() (int64, error) {
	sess := p.session.Snapshot()
	if !sess.IsAuthenticated() {
		return 0, ErrLoginRequired
	}
	id, ok := sess.ClientID()
	if !ok {
		return 0, ErrClientNotLinked
	}
	return id, nil
}

// Get fetches the linked client record.
func (p *Profile) Get(ctx context.Context) (*model.Client, error) {
	id, err := p.clientID()
	if err != nil {
		return nil, err
	}
	client, err := p.clients.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client %d: %w", id, err)
	}
	return client, nil
}

// Update saves the linked client record and refreshes the session identity.
// A failed identity reload is logged; the update itself has succeeded.
func (p *Profile) Update(ctx context.Context, in model.ClientInput) (*model.Client, error) {
	id, err := p.clientID()
	if err != nil {
		return nil, err
	}

	v := &validator{}
	v.check(strings.TrimSpace(in.Name) != "", "nombre", "name is required")
	v.check(strings.TrimSpace(in.Email) != "", "email", "email is required")
	v.check(in.Email == "" || emailPattern.MatchString(in.Email), "email", "email is not valid")
	if err := v.err(); err != nil {
		return nil, err
	}

	client, err := p.clients.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update client %d: %w", id, err)
	}
	p.logger.Info("Profile service: client updated", "client_id", id)

	if err := p.session.ReloadIdentity(ctx); err != nil {
		p.logger.Warn("Profile service: failed to reload identity", "error", err.Error())
	}

	return client, nil
}
