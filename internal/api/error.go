package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/cart"
)

var (
	// -- Transport --
	ErrRequestFailed = errors.New("request failed")

	// -- Business Rules --
	// ErrPromoRejected is shared with the cart so callers can match it without importing api.
	ErrPromoRejected = cart.ErrPromoRejected

	// -- Resource State --
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("not authenticated")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
	// Errors carries per-item messages when the server sends them.
	Errors []string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

type errorBody struct {
	Error   string   `json:"error"`
	Errors  []string `json:"errors"`
	Detail  string   `json:"detail"`
	Message string   `json:"message"`
}

func newStatusError(method, path string, status int, body []byte) *StatusError {
	se := &StatusError{Method: method, Path: path, Status: status}

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		se.Errors = eb.Errors
		for _, m := range []string{eb.Error, eb.Detail, eb.Message} {
			if m != "" {
				se.Message = m
				break
			}
		}
	}
	if se.Message == "" {
		se.Message = strings.ToLower(http.StatusText(status))
	}
	return se
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
