package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/alexiusacademia/civcalc/internal/tree"
)

// APIError is a non-success response from the calculation service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorFromResponse reads a failed response into an APIError. The message is
// the body's "detail" field when the body is JSON, else the raw text, else
// "HTTP <status>".
func errorFromResponse(status int, body []byte) *APIError {
	return &APIError{Status: status, Message: extractMessage(status, body)}
}

func extractMessage(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text != "" {
		if v, err := tree.Decode(body); err == nil && v.IsObject() {
			if msg := detailText(v.Get("detail")); msg != "" {
				return msg
			}
		}
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

// detailText flattens a detail value. FastAPI validation errors arrive as a
// list of objects carrying "msg".
func detailText(d tree.Value) string {
	switch d.Kind() {
	case tree.KindNull:
		return ""
	case tree.KindString:
		s, _ := d.AsString()
		return strings.TrimSpace(s)
	case tree.KindArray:
		var msgs []string
		for _, it := range d.Items() {
			if m, ok := it.Get("msg").AsString(); ok && m != "" {
				loc := it.Get("loc")
				if loc.Len() > 0 {
					m = fmt.Sprintf("%s: %s", loc.Index(loc.Len()-1).String(), m)
				}
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return d.String()
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var e *APIError
	return errors.As(err, &e) && e.Status == status
}

// StatusText is a short label for logs.
func (e *APIError) StatusText() string {
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}
