// Package response shapes every JSON body the API returns. The envelope
// matches what the React client expects: a success flag, an optional message,
// and the payload keys spread at the top level.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/fusionfit/storefront/pkg/apperr"
	"github.com/fusionfit/storefront/pkg/logger"
)

// M is the payload map spread into the response envelope.
type M map[string]interface{}

func write(w http.ResponseWriter, status int, body M) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// OK sends a 200 with success:true and the given payload keys.
func OK(w http.ResponseWriter, payload M) {
	envelope := M{"success": true}
	for k, v := range payload {
		envelope[k] = v
	}
	write(w, http.StatusOK, envelope)
}

// Created sends a 201 with success:true and the given payload keys.
func Created(w http.ResponseWriter, payload M) {
	envelope := M{"success": true}
	for k, v := range payload {
		envelope[k] = v
	}
	write(w, http.StatusCreated, envelope)
}

// Error sends success:false with a message under the given status.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, M{"success": false, "message": message})
}

// ValidationError sends a 400 with a field→message map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusBadRequest, M{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}

// FromError maps a service error onto the wire. Typed apperr errors keep
// their status and message; anything else becomes a logged 500 with a
// generic body.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("request failed",
			"error", err.Error(),
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
	Error(w, status, apperr.Message(err))
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}
