package handler

import (
	"accioncsat/internal/service"
	"net/http"
)

// SurveyHandler serves the questionnaire and starts form sessions
type SurveyHandler struct {
	formSvc *service.FormService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(formSvc *service.FormService) *SurveyHandler {
	return &SurveyHandler{formSvc: formSvc}
}

// Get handles GET /v1/survey
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.formSvc.Schema())
}

// StartSession handles POST /v1/sessions
func (h *SurveyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.formSvc.Start(r.Context())
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}
