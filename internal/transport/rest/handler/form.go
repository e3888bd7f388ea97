package handler

import (
	"accioncsat/internal/model"
	"accioncsat/internal/service"
	"accioncsat/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// FormHandler handles the operations of one respondent's form session
type FormHandler struct {
	formSvc *service.FormService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formSvc *service.FormService) *FormHandler {
	return &FormHandler{formSvc: formSvc}
}

// AnswerRequest is the body for replacing an answer; value is a string or a list of strings
type AnswerRequest struct {
	Value *model.Answer `json:"value"`
}

// ToggleRequest is the body for checking or unchecking a multi-choice option
type ToggleRequest struct {
	Value   string `json:"value"`
	Checked bool   `json:"checked"`
}

// RatingRequest is the body for a rating pick
type RatingRequest struct {
	Rating string `json:"rating"`
}

// JustificationRequest is the body for a low-rating justification
type JustificationRequest struct {
	Text string `json:"text"`
}

// Get handles GET /v1/form
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.formSvc.Get(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateAnswer handles PUT /v1/form/answers/{key}
func (h *FormHandler) UpdateAnswer(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.formSvc.UpdateField(r.Context(), middleware.GetSessionID(r.Context()), key, *req.Value)
	h.respond(w, view, err)
}

// ToggleOption handles POST /v1/form/answers/{key}/options
func (h *FormHandler) ToggleOption(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.formSvc.ToggleOption(r.Context(), middleware.GetSessionID(r.Context()), key, req.Value, req.Checked)
	h.respond(w, view, err)
}

// SelectRating handles POST /v1/form/ratings/{key}
func (h *FormHandler) SelectRating(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.formSvc.SelectRating(r.Context(), middleware.GetSessionID(r.Context()), key, req.Rating)
	h.respond(w, view, err)
}

// EditLowRating handles POST /v1/form/ratings/{key}/edit
func (h *FormHandler) EditLowRating(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	view, err := h.formSvc.EditLowRating(r.Context(), middleware.GetSessionID(r.Context()), key)
	h.respond(w, view, err)
}

// SubmitJustification handles POST /v1/form/prompt
func (h *FormHandler) SubmitJustification(w http.ResponseWriter, r *http.Request) {
	var req JustificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.formSvc.SubmitJustification(r.Context(), middleware.GetSessionID(r.Context()), req.Text)
	h.respond(w, view, err)
}

// CancelPrompt handles DELETE /v1/form/prompt
func (h *FormHandler) CancelPrompt(w http.ResponseWriter, r *http.Request) {
	view, err := h.formSvc.CancelPrompt(r.Context(), middleware.GetSessionID(r.Context()))
	h.respond(w, view, err)
}

// Submit handles POST /v1/form/submit
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	view, err := h.formSvc.Submit(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, view)
		return
	}
	writeJSON(w, http.StatusAccepted, view)
}

// End handles DELETE /v1/form
func (h *FormHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.formSvc.End(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		writeServiceError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FormHandler) respond(w http.ResponseWriter, view *model.SessionView, err error) {
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
