package transport

import (
	"net/http"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/service"
)

// CommunityHandler serves discoverable events created by other users.
type CommunityHandler struct {
	service service.CommunityService
	mux     *http.ServeMux
}

func NewCommunityHandler(svc service.CommunityService) *CommunityHandler {
	h := &CommunityHandler{
		service: svc,
		mux:     http.NewServeMux(),
	}
	h.routes()
	return h
}

func (h *CommunityHandler) routes() {
	h.mux.HandleFunc("GET /events", h.handleSearch)
	h.mux.HandleFunc("GET /events/{id}", h.handleGet)
}

func (h *CommunityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handleSearch lists other users' discoverable events
// @Summary Community Events
// @Description Search discoverable events excluding the caller's own. With random=true and limit=1, returns a single pick as {"event": ...|null}.
// @Tags community
// @Produce json
// @Param q query string false "Keyword"
// @Param category query string false "Exact category, case-insensitive"
// @Param city query string false "Exact city, case-insensitive"
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size"
// @Param random query bool false "Shuffle results"
// @Success 200 {object} domain.SearchResult
// @Security BearerAuth
// @Router /community/events [get]
func (h *CommunityHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := parseSearchParams(r.URL.Query())
	userID := UserID(r.Context())

	if params.Random && params.Limit == 1 {
		event, err := h.service.PickOne(r.Context(), userID, params)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"event": event})
		return
	}

	result, err := h.service.Search(r.Context(), userID, params)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleGet retrieves one community event
// @Summary Get Community Event
// @Tags community
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} domain.APIResponse{data=domain.Event}
// @Failure 404 {object} domain.APIResponse{error=string}
// @Security BearerAuth
// @Router /community/events/{id} [get]
func (h *CommunityHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.APIResponse{Data: event})
}
