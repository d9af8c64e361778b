package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter initializes the main HTTP handler using Go 1.22+ ServeMux.
// Public routes are mounted directly; /events/, /community/ and /places/
// require a verified Firebase ID token.
func NewRouter(
	discoverSvc service.DiscoverService,
	eventSvc service.EventService,
	communitySvc service.CommunityService,
	placesSvc service.PlacesService,
	uiSvc service.UIConfigService,
	refresh RefreshRunner,
	verifier TokenVerifier,
) http.Handler {
	mux := http.NewServeMux()

	discoverHandler := NewDiscoverHandler(discoverSvc)
	mux.HandleFunc("GET /discover", discoverHandler.handleSearch)
	mux.HandleFunc("GET /discover/{id}", discoverHandler.handleGet)
	mux.HandleFunc("GET /random", discoverHandler.handleRandom)

	uiHandler := NewUIConfigHandler(uiSvc)
	mux.HandleFunc("GET /ui/config", uiHandler.handleGet)

	mux.HandleFunc("GET /health", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	eventHandler := NewEventHandler(eventSvc)
	mux.Handle("/events/", http.StripPrefix("/events", WithAuth(eventHandler, verifier)))

	communityHandler := NewCommunityHandler(communitySvc)
	mux.Handle("/community/", http.StripPrefix("/community", WithAuth(communityHandler, verifier)))

	placesHandler := NewPlacesHandler(placesSvc, refresh)
	mux.Handle("/places/", http.StripPrefix("/places", WithAuth(placesHandler, verifier)))

	return mux
}

// handleHealth reports liveness
// @Summary Health Check
// @Tags system
// @Produce json
// @Success 200 {object} domain.APIResponse{data=string}
// @Router /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.APIResponse{Data: "ok"})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	var forbiddenErr *domain.ForbiddenError
	var upstreamErr *domain.UpstreamError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &forbiddenErr):
		status = http.StatusForbidden
	case errors.As(err, &upstreamErr):
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, domain.APIResponse{Error: err.Error()})
}

// parseSearchParams reads the shared discovery query parameters. Both `q`
// and `query` are accepted for the keyword; dates accept RFC3339 or plain
// dates.
func parseSearchParams(q url.Values) domain.SearchParams {
	params := domain.SearchParams{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		City:     q.Get("city"),
		Region:   q.Get("region"),
	}
	if params.Query == "" {
		params.Query = q.Get("query")
	}

	params.From = parseTimeParam(q.Get("from"))
	params.To = parseTimeParam(q.Get("to"))

	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		params.Limit = limit
	}
	if random := q.Get("random"); random == "true" || random == "1" {
		params.Random = true
	}
	return params
}

func parseTimeParam(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
