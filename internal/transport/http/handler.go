package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"startup-apply-service/internal/app"
	"startup-apply-service/internal/domain"
)

// Handler exposes the one-shot REST surface: fetching the rendered form and
// submitting a complete value map without a websocket session.
type Handler struct {
	service *app.FormService
}

func NewHandler(service *app.FormService) *Handler {
	return &Handler{service: service}
}

// Register mounts the REST routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /forms/{id}", h.GetForm)
	mux.HandleFunc("POST /forms/{id}/submissions", h.SubmitForm)
}

// GetForm returns the sectioned, rendered view of a form with blank state.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	formID := r.PathValue("id")
	schema, err := h.service.Schema(r.Context(), formID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderForm(schema, app.SessionView{}))
}

// SubmitForm validates the posted value map and forwards it to the webhook.
// 422 carries the field error map, 502 the generic submit-level message.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	formID := r.PathValue("id")

	var values domain.FormState
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	outcome, err := h.service.SubmitDirect(r.Context(), formID, values)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	switch {
	case !outcome.Result.Valid:
		writeJSON(w, http.StatusUnprocessableEntity, outcome)
	case outcome.SubmitError != "":
		writeJSON(w, http.StatusBadGateway, outcome)
	default:
		writeJSON(w, http.StatusCreated, outcome)
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrFormNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
