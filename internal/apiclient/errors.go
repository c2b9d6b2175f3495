package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Details string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// NetworkError means the backend could not be reached at all.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: backend unavailable: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsNetwork reports whether err is a connection failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// Messages shown to users for errors without a more specific text.
const (
	MsgCannotConnect = "Cannot connect to server. Please check your connection and try again."
	MsgLoginRequired = "Please log in to continue."
	MsgGeneric       = "Something went wrong. Please try again."
)

// UserMessage turns err into the text a page shows in its toast or banner.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var userErr interface{ UserMessage() string }
	if errors.As(err, &userErr) {
		return userErr.UserMessage()
	}

	if IsNetwork(err) {
		return MsgCannotConnect
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return MsgGeneric
	}
	switch {
	case apiErr.Status >= http.StatusInternalServerError:
		return MsgGeneric
	case apiErr.Message != "":
		return apiErr.Message
	case apiErr.Status == http.StatusUnauthorized:
		return MsgLoginRequired
	default:
		return http.StatusText(apiErr.Status)
	}
}
