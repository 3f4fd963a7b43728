package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"vrp-route-service/internal/platform/apperr"
	"vrp-route-service/internal/platform/logging"
)

// maxBodyBytes bounds request bodies; explicit matrices dominate the size.
const maxBodyBytes = 8 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("encode failed")
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorBody{Error: msg, Code: string(apperr.CodeInvalidInput)})
}

// writeAppError maps a service error to its status. Internal causes are
// logged, not returned.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	code := apperr.CodeOf(err)

	msg := "internal server error"
	var ae *apperr.Error
	if code != apperr.CodeInternal && errors.As(err, &ae) {
		msg = ae.Error()
	}

	log := logging.FromContext(r.Context())
	if status >= 500 {
		log.Error().Err(err).Str("code", string(code)).Msg("request failed")
	} else {
		log.Warn().Err(err).Str("code", string(code)).Msg("request rejected")
	}
	writeJSON(w, r, status, errorBody{Error: msg, Code: string(code)})
}

// decodeJSON reads exactly one JSON object into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
