package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/model"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Account creates user accounts.
type Account struct {
	api    model.AccountAPI
	logger *logger.Logger
}

// NewAccount creates new Account instance.
func NewAccount(api model.AccountAPI, logger *logger.Logger) *Account {
	return &Account{api: api, logger: logger}
}

func validateCredentials(v *validator, username, email, password, password2 string) {
	v.check(strings.TrimSpace(username) != "", "username", "username is required")

	v.check(strings.TrimSpace(email) != "", "email", "email is required")
	v.check(strings.TrimSpace(email) == "" || emailPattern.MatchString(email), "email", "email is not valid")

	v.check(password != "", "password", "password is required")
	v.check(password == "" || len(password) >= minPasswordLength, "password",
		fmt.Sprintf("password must be at least %d characters", minPasswordLength))

	v.check(password == password2, "password2", "passwords do not match")
}

// Register creates a user together with a new client record.
func (a *Account) Register(ctx context.Context, r model.Registration) error {
	v := &validator{}
	validateCredentials(v, r.Username, r.Email, r.Password, r.Password2)
	v.check(strings.TrimSpace(r.Address) != "", "direccion", "address is required")
	if err := v.err(); err != nil {
		return err
	}

	if _, err := a.api.Register(ctx, r); err != nil {
		a.logger.Info("Account service: registration rejected", "username", r.Username, "error", err.Error())
		return fmt.Errorf("failed to register: %w", err)
	}

	a.logger.Info("Account service: user registered", "username", r.Username)
	return nil
}

// LinkClient creates a user for an existing client record with the same email.
func (a *Account) LinkClient(ctx context.Context, r model.LinkRequest) error {
	v := &validator{}
	validateCredentials(v, r.Username, r.Email, r.Password, r.Password2)
	if err := v.err(); err != nil {
		return err
	}

	if _, err := a.api.LinkUserClient(ctx, r); err != nil {
		a.logger.Info("Account service: link rejected", "username", r.Username, "error", err.Error())
		return fmt.Errorf("failed to link client: %w", err)
	}

	a.logger.Info("Account service: user linked to client", "username", r.Username)
	return nil
}
