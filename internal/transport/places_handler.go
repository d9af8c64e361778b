package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"eventease/backend/internal/cron"
	"eventease/backend/internal/domain"
	"eventease/backend/internal/service"
)

// RefreshRunner runs the background passes synchronously for the admin
// refresh endpoint.
type RefreshRunner interface {
	RunIngest(ctx context.Context) (cron.IngestSummary, error)
	RunPlaces(ctx context.Context) (cron.PlacesSummary, error)
}

// PlacesHandler serves the cached Places lookups plus the cache admin
// endpoints.
type PlacesHandler struct {
	service service.PlacesService
	refresh RefreshRunner
	mux     *http.ServeMux
}

func NewPlacesHandler(svc service.PlacesService, refresh RefreshRunner) *PlacesHandler {
	h := &PlacesHandler{
		service: svc,
		refresh: refresh,
		mux:     http.NewServeMux(),
	}
	h.routes()
	return h
}

func (h *PlacesHandler) routes() {
	h.mux.HandleFunc("GET /autocomplete", h.handleAutocomplete)
	h.mux.HandleFunc("GET /details/{placeId}", h.handleDetails)
	h.mux.HandleFunc("GET /venues", h.handleVenues)
	h.mux.HandleFunc("POST /geocode", h.handleGeocode)
	h.mux.HandleFunc("GET /stats", h.handleStats)
	h.mux.HandleFunc("POST /refresh", h.handleRefresh)
}

func (h *PlacesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handleAutocomplete suggests places for a partial input
// @Summary Place Autocomplete
// @Description Cached place suggestions; empty when the input is shorter than 2 characters
// @Tags places
// @Produce json
// @Param input query string true "Partial place name"
// @Success 200 {object} service.AutocompleteResult
// @Security BearerAuth
// @Router /places/autocomplete [get]
func (h *PlacesHandler) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Autocomplete(r.Context(), r.URL.Query().Get("input"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleDetails fetches one place's details
// @Summary Place Details
// @Tags places
// @Produce json
// @Param placeId path string true "Place ID"
// @Success 200 {object} service.DetailsResult
// @Security BearerAuth
// @Router /places/details/{placeId} [get]
func (h *PlacesHandler) handleDetails(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Details(r.Context(), r.PathValue("placeId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleVenues lists cached venues by popularity
// @Summary Popular Venues
// @Tags places
// @Produce json
// @Param city query string false "Filter by city, case-insensitive"
// @Param limit query int false "Max venues, default 50"
// @Success 200 {object} domain.APIResponse{data=[]domain.Venue}
// @Security BearerAuth
// @Router /places/venues [get]
func (h *PlacesHandler) handleVenues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	venues, err := h.service.Venues(r.Context(), q.Get("city"), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.APIResponse{Data: venues})
}

// handleGeocode resolves an address to coordinates
// @Summary Geocode Address
// @Tags places
// @Accept json
// @Produce json
// @Param address body domain.GeocodeDTO true "Address to resolve"
// @Success 200 {object} service.GeocodeOutcome
// @Failure 400 {object} domain.APIResponse{error=string}
// @Security BearerAuth
// @Router /places/geocode [post]
func (h *PlacesHandler) handleGeocode(w http.ResponseWriter, r *http.Request) {
	var dto domain.GeocodeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, domain.ErrValidation("invalid JSON body"))
		return
	}
	if err := domain.Validate.Struct(&dto); err != nil {
		respondError(w, domain.ErrValidation("address must be at least 5 characters"))
		return
	}

	outcome, err := h.service.Geocode(r.Context(), dto.Address)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// handleStats reports cache sizes and TTLs
// @Summary Cache Stats
// @Tags places
// @Produce json
// @Success 200 {object} service.StatsResult
// @Security BearerAuth
// @Router /places/stats [get]
func (h *PlacesHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// handleRefresh runs the refresh passes synchronously
// @Summary Trigger Refresh
// @Description Runs the event ingestion and places maintenance passes and returns their summaries
// @Tags places
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /places/refresh [post]
func (h *PlacesHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ingest, err := h.refresh.RunIngest(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	places, err := h.refresh.RunPlaces(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ingest":   ingest,
		"venues":   places.Venues,
		"searches": places.Searches,
		"cleanup":  places.Cleanup,
	})
}
