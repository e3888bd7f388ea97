package handler

import (
	"accioncsat/internal/cache"
	"accioncsat/internal/form"
	"accioncsat/internal/model"
	"accioncsat/internal/service"
	"encoding/json"
	"errors"
	"net/http"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// IncompleteFormResponse is returned with 422 when a submit finds unanswered questions.
// Focus is the question the client should scroll to.
type IncompleteFormResponse struct {
	Error   string             `json:"error"`
	Missing []string           `json:"missing"`
	Focus   string             `json:"focus"`
	Session *model.SessionView `json:"session,omitempty"`
}

// writeServiceError maps service and form errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error, view *model.SessionView) {
	var incomplete *form.IncompleteFormError
	switch {
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusUnprocessableEntity, IncompleteFormResponse{
			Error:   "form incomplete",
			Missing: incomplete.Missing,
			Focus:   incomplete.Focus,
			Session: view,
		})
	case errors.Is(err, cache.ErrSessionNotFound),
		errors.Is(err, form.ErrUnknownQuestion):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, form.ErrAnswerKind),
		errors.Is(err, form.ErrInvalidOption),
		errors.Is(err, form.ErrNotRating),
		errors.Is(err, form.ErrEmptyJustification),
		errors.Is(err, form.ErrJustificationNeeded):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, form.ErrNoPendingPrompt),
		errors.Is(err, form.ErrNotLowRating),
		errors.Is(err, form.ErrSubmissionInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
