// Package api is the HTTP client of the storefront REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/model"
)

const maxResponseBody = 4 << 20

// Config contains client parameters.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Security SecurityLayer
}

// Client issues requests against the backend. Requests are sent once; nothing is retried.
type Client struct {
	baseURL *url.URL
	public  *http.Client
	private *http.Client

	Auth      *AuthService
	Products  *ProductService
	Clients   *ClientService
	Orders    *OrderService
	Dashboard *DashboardService
}

// NewClient creates a client. Authenticated requests carry the access token
// found in tokens at the time of the request.
func NewClient(cfg Config, tokens model.KVStore, logger *logger.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	security := cfg.Security
	if security == nil {
		security = NewPlainTransport()
	}
	rt, err := security.Transport()
	if err != nil {
		return nil, fmt.Errorf("failed to build transport: %w", err)
	}

	logged := &loggingTransport{next: rt, logger: logger}

	c := &Client{
		baseURL: base,
		public: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &requestIDTransport{next: logged},
		},
		private: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &requestIDTransport{next: &bearerTransport{next: logged, tokens: tokens}},
		},
	}

	c.Auth = &AuthService{c: c}
	c.Products = &ProductService{c: c}
	c.Clients = &ClientService{c: c}
	c.Orders = &OrderService{c: c}
	c.Dashboard = &DashboardService{c: c}

	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	auth        bool
}

func (c *Client) send(ctx context.Context, r request, out any) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: r.path, RawQuery: r.query.Encode()})

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	hc := c.public
	if r.auth {
		hc = c.private
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", model.ErrNetwork, r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", model.ErrNetwork, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &Error{Method: r.method, Path: r.path, Status: resp.StatusCode, Body: body}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, auth bool, in, out any) error {
	r := request{method: method, path: path, auth: auth}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r.body = bytes.NewReader(payload)
		r.contentType = "application/json"
	}
	return c.send(ctx, r, out)
}

type formField struct {
	name  string
	value string
}

// sendForm posts a multipart form. file is attached under fileField when set.
func (c *Client) sendForm(ctx context.Context, method, path string, fields []formField, fileField string, file *model.Upload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}

	if file != nil && file.Content != nil {
		part, err := w.CreateFormFile(fileField, file.Filename)
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("failed to copy form file: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	return c.send(ctx, request{
		method:      method,
		path:        path,
		body:        &buf,
		contentType: w.FormDataContentType(),
		auth:        true,
	}, out)
}

// decodeList accepts both a paginated envelope and a bare array.
func decodeList[T any](raw json.RawMessage) (model.Page[T], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return model.Page[T]{}, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return model.Page[T]{}, fmt.Errorf("failed to decode list: %w", err)
		}
		return model.Page[T]{Count: len(items), Results: items}, nil
	}

	var page model.Page[T]
	if err := json.Unmarshal(raw, &page); err != nil {
		return model.Page[T]{}, fmt.Errorf("failed to decode page: %w", err)
	}
	return page, nil
}

func itemPath(collection string, id int64, sub ...string) string {
	p := fmt.Sprintf("%s/%d/", collection, id)
	for _, s := range sub {
		p += s + "/"
	}
	return p
}
