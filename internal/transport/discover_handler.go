package transport

import (
	"net/http"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/service"
)

// DiscoverHandler serves the public aggregated discovery feed.
type DiscoverHandler struct {
	service service.DiscoverService
}

func NewDiscoverHandler(svc service.DiscoverService) *DiscoverHandler {
	return &DiscoverHandler{service: svc}
}

// handleSearch runs an aggregated discovery search
// @Summary Discover Events
// @Description Search the merged internal and external event feed
// @Tags discover
// @Produce json
// @Param q query string false "Keyword (also matches venue, city, address)"
// @Param category query string false "Exact category, case-insensitive"
// @Param city query string false "Exact city, case-insensitive"
// @Param region query string false "Exact region, case-insensitive"
// @Param from query string false "Earliest start date (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Latest start date (RFC3339 or YYYY-MM-DD)"
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size, max 50"
// @Param random query bool false "Shuffle instead of sorting by date"
// @Success 200 {object} domain.SearchResult
// @Router /discover [get]
func (h *DiscoverHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := parseSearchParams(r.URL.Query())

	result, err := h.service.Search(r.Context(), params)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleGet retrieves one discoverable event
// @Summary Get Discover Event
// @Tags discover
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} domain.APIResponse{data=domain.Event}
// @Failure 404 {object} domain.APIResponse{error=string}
// @Router /discover/{id} [get]
func (h *DiscoverHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.APIResponse{Data: event})
}

// handleRandom picks one random matching event
// @Summary Random Event
// @Description One uniformly random event from the filtered feed, null when nothing matches
// @Tags discover
// @Produce json
// @Param q query string false "Keyword"
// @Param category query string false "Exact category, case-insensitive"
// @Param city query string false "Exact city, case-insensitive"
// @Success 200 {object} domain.APIResponse{data=domain.Event}
// @Router /random [get]
func (h *DiscoverHandler) handleRandom(w http.ResponseWriter, r *http.Request) {
	params := parseSearchParams(r.URL.Query())

	event, err := h.service.Random(r.Context(), params)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"event": event})
}
