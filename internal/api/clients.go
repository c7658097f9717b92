package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dtroode/storefront/internal/model"
)

// ClientService covers customer records.
type ClientService struct {
	c *Client
}

var _ model.ClientAPI = (*ClientService)(nil)

// List returns one page of clients.
func (s *ClientService) List(ctx context.Context, query url.Values) (model.Page[model.Client], error) {
	var raw json.RawMessage
	if err := s.c.send(ctx, request{method: http.MethodGet, path: "clientes/", query: query, auth: true}, &raw); err != nil {
		return model.Page[model.Client]{}, err
	}
	return decodeList[model.Client](raw)
}

// Get returns one client.
func (s *ClientService) Get(ctx context.Context, id int64) (*model.Client, error) {
	var cl model.Client
	if err := s.c.send(ctx, request{method: http.MethodGet, path: itemPath("clientes", id), auth: true}, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

// Create adds a client.
func (s *ClientService) Create(ctx context.Context, in model.ClientInput) (*model.Client, error) {
	var cl model.Client
	if err := s.c.sendForm(ctx, http.MethodPost, "clientes/", clientFields(in), "foto", in.Photo, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

// Update replaces a client. The photo is only sent when a new one is given.
func (s *ClientService) Update(ctx context.Context, id int64, in model.ClientInput) (*model.Client, error) {
	var cl model.Client
	if err := s.c.sendForm(ctx, http.MethodPut, itemPath("clientes", id), clientFields(in), "foto", in.Photo, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

// Delete removes a client.
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	return s.c.send(ctx, request{method: http.MethodDelete, path: itemPath("clientes", id), auth: true}, nil)
}

// Orders lists the orders of a client.
func (s *ClientService) Orders(ctx context.Context, id int64) ([]model.Order, error) {
	var raw json.RawMessage
	if err := s.c.send(ctx, request{method: http.MethodGet, path: itemPath("clientes", id, "pedidos"), auth: true}, &raw); err != nil {
		return nil, err
	}
	page, err := decodeList[model.Order](raw)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func clientFields(in model.ClientInput) []formField {
	return []formField{
		{name: "nombre", value: in.Name},
		{name: "email", value: in.Email},
		{name: "direccion", value: in.Address},
	}
}
