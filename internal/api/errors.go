package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/dtroode/storefront/internal/model"
)

// Error is a request the server answered with a 4xx or 5xx status.
type Error struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: server responded %d", e.Method, e.Path, e.Status)
	if detail := e.Detail(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Unwrap maps the status onto the model sentinel errors.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return model.ErrUnauthorized
	case http.StatusForbidden:
		return model.ErrForbidden
	case http.StatusNotFound:
		return model.ErrNotFound
	default:
		return nil
	}
}

// priorityFields are checked in order before falling back to every field.
var priorityFields = []string{"error", "detail", "username", "email", "password", "non_field_errors"}

// Detail extracts a human readable message from a REST framework error body.
func (e *Error) Detail() string {
	var body any
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}

	switch v := body.(type) {
	case string:
		return v
	case []any:
		return flatten(v)
	case map[string]any:
		for _, key := range priorityFields {
			if msg := flatten(v[key]); msg != "" {
				return msg
			}
		}

		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if msg := flatten(v[k]); msg != "" {
				parts = append(parts, k+": "+msg)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// NetworkMessage is shown when no response was received.
const NetworkMessage = "the server did not respond; check your connection and try again"

// Message turns err into a message fit for the user. fallback is used when the
// error carries nothing more specific.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		if detail := apiErr.Detail(); detail != "" {
			return detail
		}
		return fallback
	}

	if errors.Is(err, model.ErrNetwork) {
		return NetworkMessage
	}

	return fallback
}
