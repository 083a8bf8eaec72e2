// Package httputil centralizes JSON response and error envelope writing so all
// handlers translate domain errors to HTTP the same way.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "petities/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads the request body into a value of type T. A missing or
// syntactically invalid body yields a coded bad_request error ready for
// WriteError.
func Decode[T any](r *http.Request) (*T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return &v, nil
}

// WriteError maps a coded domain error onto an HTTP status and JSON envelope.
// Internal errors deliberately omit the description so store details never leak
// to callers.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	code := dErrors.CodeInternal
	message := ""
	if errors.As(err, &de) {
		code = de.Code
		message = de.Message
	}

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal && message != "" {
		body["error_description"] = message
	}
	WriteJSON(w, toHTTPStatus(code), body)
}

func toHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeGone:
		return http.StatusGone
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
