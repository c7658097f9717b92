package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/storefront/internal/mocks"
	"github.com/dtroode/storefront/internal/model"
	"github.com/dtroode/storefront/internal/testutil"
)

func TestProfile_Get(t *testing.T) {
	ctx := context.Background()
	clients := &mocks.ClientAPI{}
	clients.On("Get", mock.Anything, int64(50)).Return(&model.Client{ID: 50, Name: "Ana"}, nil)

	got, err := NewProfile(signedIn(50), clients, testutil.MakeNoopLogger()).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	_, err = NewProfile(signedIn(0), clients, testutil.MakeNoopLogger()).Get(ctx)
	assert.ErrorIs(t, err, ErrClientNotLinked)

	_, err = NewProfile(anonymous(), clients, testutil.MakeNoopLogger()).Get(ctx)
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestProfile_Update(t *testing.T) {
	ctx := context.Background()
	in := model.ClientInput{Name: "Ana María", Email: "ana@example.com", Address: "Calle 2"}

	t.Run("saves and reloads identity", func(t *testing.T) {
		sess := signedIn(50)
		clients := &mocks.ClientAPI{}
		clients.On("Update", mock.Anything, int64(50), in).Return(&model.Client{ID: 50, Name: "Ana María"}, nil)

		got, err := NewProfile(sess, clients, testutil.MakeNoopLogger()).Update(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "Ana María", got.Name)
		assert.Equal(t, 1, sess.reloads)
	})

	t.Run("reload failure does not fail the update", func(t *testing.T) {
		sess := signedIn(50)
		sess.reloadErr = errors.New("offline")
		clients := &mocks.ClientAPI{}
		clients.On("Update", mock.Anything, int64(50), in).Return(&model.Client{ID: 50}, nil)

		_, err := NewProfile(sess, clients, testutil.MakeNoopLogger()).Update(ctx, in)
		assert.NoError(t, err)
	})

	t.Run("backend rejects", func(t *testing.T) {
		sess := signedIn(50)
		clients := &mocks.ClientAPI{}
		clients.On("Update", mock.Anything, int64(50), in).Return(nil, model.ErrForbidden)

		_, err := NewProfile(sess, clients, testutil.MakeNoopLogger()).Update(ctx, in)
		assert.ErrorIs(t, err, model.ErrForbidden)
		assert.Zero(t, sess.reloads)
	})

	t.Run("invalid email", func(t *testing.T) {
		clients := &mocks.ClientAPI{}
		_, err := NewProfile(signedIn(50), clients, testutil.MakeNoopLogger()).Update(ctx, model.ClientInput{Name: "Ana", Email: "nope"})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "email")
		clients.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}
