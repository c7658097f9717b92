package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/model"
)

const requestIDHeader = "X-Request-ID"

// bearerTransport attaches the access token read from storage at request time.
type bearerTransport struct {
	next   http.RoundTripper
	tokens model.KVStore
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, found, err := t.tokens.Get(req.Context(), model.KeyAccessToken)
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}
	if found && token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.next.RoundTrip(req)
}

// requestIDTransport tags every request with a unique id.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(requestIDHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(requestIDHeader, uuid.NewString())
	}
	return t.next.RoundTrip(req)
}

// loggingTransport logs method, path, duration and status of every request.
type loggingTransport struct {
	next   http.RoundTripper
	logger *logger.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	t.logger.Debug("API request started",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(requestIDHeader))

	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.logger.Error("API request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error())
		return nil, err
	}

	t.logger.Info("API request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"duration_ms", duration.Milliseconds(),
		"status", resp.StatusCode)

	return resp, nil
}
