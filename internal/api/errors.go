package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a failed API call: a non-2xx status or an envelope with
// success=false. 401 and 404 unwrap to ErrUnauthorized and ErrNotFound.
type Error struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("api error %d: %s (request %s)", e.StatusCode, msg, e.RequestID)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}
