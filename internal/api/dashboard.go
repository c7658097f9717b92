package api

import (
	"context"
	"net/http"
)

// DashboardService exposes the backend summary figures.
type DashboardService struct {
	c *Client
}

// Get returns the dashboard document as sent by the backend.
func (s *DashboardService) Get(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := s.c.sendJSON(ctx, http.MethodGet, "dashboard/", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
