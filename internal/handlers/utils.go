package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/merchke/storefront/internal/apiclient"
	"github.com/merchke/storefront/internal/forms"
	"github.com/merchke/storefront/internal/services"
	"github.com/sirupsen/logrus"
)

type contextKey string

const contextVisitorKey contextKey = "visitor"

const maxBodyBytes = 1 << 20

// authFormPaths are the sign-in and registration routes. Their failures
// are shown on the form itself, never as a redirect to it.
var authFormPaths = map[string]bool{
	"/auth/login":    true,
	"/auth/register": true,
}

// ErrorResponse is the body of every failed gateway request.
type ErrorResponse struct {
	Error    string             `json:"error"`
	Fields   []forms.FieldError `json:"fields,omitempty"`
	Redirect string             `json:"redirect,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func withVisitor(ctx context.Context, v *Visitor) context.Context {
	return context.WithValue(ctx, contextVisitorKey, v)
}

func visitorFrom(ctx context.Context) *Visitor {
	v, _ := ctx.Value(contextVisitorKey).(*Visitor)
	return v
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}

// responder turns service and upstream errors into gateway responses.
type responder struct {
	log       logrus.FieldLogger
	loginPath string
}

func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Error: apiclient.UserMessage(err)}
	status := http.StatusInternalServerError

	var (
		validation *forms.ValidationError
		serviceErr services.Error
		apiErr     *apiclient.APIError
	)
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		resp.Fields = validation.Fields
	case errors.Is(err, services.ErrNotSignedIn):
		status = http.StatusUnauthorized
		resp.Redirect = rs.loginPath
	case errors.As(err, &serviceErr):
		status = http.StatusBadRequest
	case apiclient.IsNetwork(err):
		status = http.StatusBadGateway
	case errors.As(err, &apiErr):
		status = apiErr.Status
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
	}

	if v := visitorFrom(r.Context()); v != nil && v.AuthExpired() {
		resp.Redirect = rs.loginPath
	}
	if authFormPaths[strings.TrimSuffix(r.URL.Path, "/")] {
		resp.Redirect = ""
	}

	entry := rs.log.WithError(err).WithFields(logrus.Fields{"path": r.URL.Path, "status": status})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	writeJSON(w, status, resp)
}
