// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/plantline/plantline/internal/orders"
	"github.com/plantline/plantline/internal/transition"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Guard denials and store
// conflicts are 409, missing evidence is 422, unknown IDs are 404, anything
// unrecognized is a 500.
func writeError(w http.ResponseWriter, err error) {
	var gerr *transition.GuardrailError
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case transition.KindBlocked:
			writeJSON(w, http.StatusConflict, errorBody{
				Error:  "transition blocked",
				Kind:   string(gerr.Kind),
				Reason: gerr.Reason,
			})
			return
		case transition.KindMissingOverrideEvidence, transition.KindMissingTransitionEvidence:
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{
				Error:  "evidence required",
				Kind:   string(gerr.Kind),
				Reason: gerr.Reason,
			})
			return
		case transition.KindCollaboratorFailure:
			// Unwrap to the underlying store error below.
			err = errors.Unwrap(gerr)
			if err == nil {
				writeJSON(w, http.StatusBadGateway, errorBody{Error: "collaborator failure", Kind: string(gerr.Kind)})
				return
			}
		}
	}

	switch {
	case errors.Is(err, orders.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "order not found"})
	case errors.Is(err, orders.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "order already advanced"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

// writeValidationError answers 400 for malformed input.
func writeValidationError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// writeUnauthorized answers 401.
func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
}
