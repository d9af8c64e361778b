package transport

import (
	"encoding/json"
	"net/http"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/service"
)

// EventHandler serves the owner-scoped event CRUD plus the engagement
// endpoints. All routes require auth; the uid comes from the context.
type EventHandler struct {
	service service.EventService
	mux     *http.ServeMux
}

func NewEventHandler(svc service.EventService) *EventHandler {
	h := &EventHandler{
		service: svc,
		mux:     http.NewServeMux(),
	}
	h.routes()
	return h
}

func (h *EventHandler) routes() {
	h.mux.HandleFunc("GET /{$}", h.handleList)
	h.mux.HandleFunc("POST /{$}", h.handleCreate)

	h.mux.HandleFunc("GET /{id}", h.handleGet)
	h.mux.HandleFunc("PUT /{id}", h.handleUpdate)
	h.mux.HandleFunc("DELETE /{id}", h.handleDelete)

	h.mux.HandleFunc("POST /{id}/save", h.handleSave)
	h.mux.HandleFunc("POST /{id}/share", h.handleShare)
}

func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handleList lists the caller's events
// @Summary List Own Events
// @Tags events
// @Produce json
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size"
// @Success 200 {object} domain.SearchResult
// @Security BearerAuth
// @Router /events [get]
func (h *EventHandler) handleList(w http.ResponseWriter, r *http.Request) {
	params := parseSearchParams(r.URL.Query())

	result, err := h.service.List(r.Context(), UserID(r.Context()), params.Page, params.Limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleCreate creates a new event owned by the caller
// @Summary Create Event
// @Tags events
// @Accept json
// @Produce json
// @Param event body domain.EventDTO true "Event Data"
// @Success 201 {object} domain.APIResponse{data=domain.Event}
// @Failure 400 {object} domain.APIResponse{error=string}
// @Security BearerAuth
// @Router /events [post]
func (h *EventHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var dto domain.EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, domain.ErrValidation("invalid JSON body"))
		return
	}

	event, err := h.service.Create(r.Context(), UserID(r.Context()), &dto)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, domain.APIResponse{Data: event})
}

// handleGet retrieves one of the caller's events
// @Summary Get Event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} domain.APIResponse{data=domain.Event}
// @Failure 403 {object} domain.APIResponse{error=string}
// @Failure 404 {object} domain.APIResponse{error=string}
// @Security BearerAuth
// @Router /events/{id} [get]
func (h *EventHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.Get(r.Context(), UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.APIResponse{Data: event})
}

// handleUpdate replaces the mutable fields of an owned event
// @Summary Update Event
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param event body domain.EventDTO true "Updated Event Data"
// @Success 200 {object} domain.APIResponse{data=domain.Event}
// @Failure 400 {object} domain.APIResponse{error=string}
// @Failure 403 {object} domain.APIResponse{error=string}
// @Security BearerAuth
// @Router /events/{id} [put]
func (h *EventHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var dto domain.EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, domain.ErrValidation("invalid JSON body"))
		return
	}

	event, err := h.service.Update(r.Context(), UserID(r.Context()), r.PathValue("id"), &dto)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.APIResponse{Data: event})
}

// handleDelete removes an owned event
// @Summary Delete Event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} domain.APIResponse{data=string}
// @Failure 403 {object} domain.APIResponse{error=string}
// @Security BearerAuth
// @Router /events/{id} [delete]
func (h *EventHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), UserID(r.Context()), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.APIResponse{Data: "Deleted successfully"})
}

// handleSave bumps an event's save counter
// @Summary Save Event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} domain.APIResponse{data=int64}
// @Failure 404 {object} domain.APIResponse{error=string}
// @Security BearerAuth
// @Router /events/{id}/save [post]
func (h *EventHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.RecordSave(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"saveCount": count})
}

// handleShare bumps an event's share counter
// @Summary Share Event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} domain.APIResponse{data=int64}
// @Failure 404 {object} domain.APIResponse{error=string}
// @Security BearerAuth
// @Router /events/{id}/share [post]
func (h *EventHandler) handleShare(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.RecordShare(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"shareCount": count})
}
