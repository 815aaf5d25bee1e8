package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

const (
	codeNotFound         = "not_found"
	codeBadRequest       = "bad_request"
	codeForbidden        = "forbidden"
	codeConflict         = "conflict"
	codeMethodNotAllowed = "method_not_allowed"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorResponse{Code: code, Message: message})
}

// writeDomainError maps the error taxonomy to status codes. Anything
// unclassified becomes a 500 with no internal detail.
func writeDomainError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	default:
		logger.Error().Err(err).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
