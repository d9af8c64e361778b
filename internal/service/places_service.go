package service

import (
	"context"
	"log"
	"strings"
	"time"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/metrics"
	"eventease/backend/internal/repository"
	"eventease/backend/internal/source"
)

// Cache TTLs by kind. Geocode entries have no TTL: coordinates do not go
// stale.
const (
	AutocompleteTTL = 24 * time.Hour
	PlaceDetailsTTL = 7 * 24 * time.Hour
	VenueTTL        = 30 * 24 * time.Hour
)

const apiNotConfigured = "places API not configured"

// AutocompleteResult carries predictions plus cache metadata. CacheAge is
// in minutes (short-TTL kind).
type AutocompleteResult struct {
	Predictions []domain.Prediction `json:"predictions"`
	Cached      bool                `json:"cached"`
	CacheAge    int                 `json:"cacheAge,omitempty"`
	Warning     string              `json:"warning,omitempty"`
}

// DetailsResult carries one place plus cache metadata. CacheAge is in
// hours (long-TTL kind).
type DetailsResult struct {
	Place    *domain.PlaceDetails `json:"place"`
	Cached   bool                 `json:"cached"`
	CacheAge int                  `json:"cacheAge,omitempty"`
	Warning  string               `json:"warning,omitempty"`
}

// GeocodeOutcome carries resolved coordinates; Latitude/Longitude are nil
// when the address could not be resolved.
type GeocodeOutcome struct {
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	FormattedAddress string   `json:"formattedAddress,omitempty"`
	Cached           bool     `json:"cached"`
	Warning          string   `json:"warning,omitempty"`
}

// TTLInfo is the human-readable TTL block in the stats response.
type TTLInfo struct {
	AutocompleteHours int `json:"autocompleteHours"`
	PlaceDetailsDays  int `json:"placeDetailsDays"`
	VenueDays         int `json:"venueDays"`
}

type StatsResult struct {
	Cache domain.CacheStats `json:"cache"`
	TTL   TTLInfo           `json:"ttl"`
}

// PlacesService wraps the Places provider behind the Firestore cache. All
// cache operations fail open: an unreachable store degrades to a live
// provider call, and a failing provider degrades to an empty result with a
// warning, never an error on the request.
type PlacesService interface {
	Autocomplete(ctx context.Context, input string) (*AutocompleteResult, error)
	Details(ctx context.Context, placeID string) (*DetailsResult, error)
	Geocode(ctx context.Context, address string) (*GeocodeOutcome, error)
	Venues(ctx context.Context, city string, limit int) ([]domain.Venue, error)
	Stats(ctx context.Context) (*StatsResult, error)
}

type placesService struct {
	cache    repository.PlacesCacheRepository
	provider source.PlacesProvider
	now      func() time.Time
}

func NewPlacesService(cache repository.PlacesCacheRepository, provider source.PlacesProvider, now func() time.Time) PlacesService {
	if now == nil {
		now = time.Now
	}
	return &placesService{cache: cache, provider: provider, now: now}
}

func (s *placesService) Autocomplete(ctx context.Context, input string) (*AutocompleteResult, error) {
	if len(input) < 2 {
		return &AutocompleteResult{Predictions: []domain.Prediction{}}, nil
	}

	entry, err := s.cache.GetAutocomplete(ctx, input)
	if err != nil {
		log.Printf("[places] autocomplete cache read failed: %v", err)
	}
	if entry != nil {
		age := s.now().Sub(entry.CachedAt)
		if age < AutocompleteTTL {
			metrics.CacheHits.WithLabelValues("autocomplete").Inc()
			return &AutocompleteResult{
				Predictions: entry.Predictions,
				Cached:      true,
				CacheAge:    int(age.Minutes()),
			}, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("autocomplete").Inc()

	if !s.provider.Enabled() {
		return &AutocompleteResult{Predictions: []domain.Prediction{}, Warning: apiNotConfigured}, nil
	}

	predictions, err := s.provider.Autocomplete(ctx, input, "establishment|geocode")
	if err != nil {
		log.Printf("[places] autocomplete provider failed: %v", err)
		return &AutocompleteResult{Predictions: []domain.Prediction{}, Warning: "places lookup unavailable"}, nil
	}
	metrics.ProviderCalls.WithLabelValues("places_autocomplete").Inc()

	if err := s.cache.SetAutocomplete(ctx, input, &repository.AutocompleteEntry{
		Query:       input,
		Predictions: predictions,
		CachedAt:    s.now().UTC(),
		Source:      "google_places_api",
	}); err != nil {
		log.Printf("[places] autocomplete cache write failed: %v", err)
	}

	if predictions == nil {
		predictions = []domain.Prediction{}
	}
	return &AutocompleteResult{Predictions: predictions}, nil
}

func (s *placesService) Details(ctx context.Context, placeID string) (*DetailsResult, error) {
	if placeID == "" {
		return nil, domain.ErrValidation("place id required")
	}

	entry, err := s.cache.GetDetails(ctx, placeID)
	if err != nil {
		log.Printf("[places] details cache read failed: %v", err)
	}
	if entry != nil {
		age := s.now().Sub(entry.CachedAt)
		if age < PlaceDetailsTTL {
			metrics.CacheHits.WithLabelValues("details").Inc()
			place := entry.Place
			return &DetailsResult{
				Place:    &place,
				Cached:   true,
				CacheAge: int(age.Hours()),
			}, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("details").Inc()

	if !s.provider.Enabled() {
		return &DetailsResult{Warning: apiNotConfigured}, nil
	}

	place, err := s.provider.Details(ctx, placeID)
	if err != nil {
		log.Printf("[places] details provider failed: %v", err)
		return &DetailsResult{Warning: "place details unavailable"}, nil
	}
	metrics.ProviderCalls.WithLabelValues("places_details").Inc()

	if err := s.cache.SetDetails(ctx, placeID, &repository.DetailsEntry{
		Place:    *place,
		CachedAt: s.now().UTC(),
		Source:   "google_places_api",
	}); err != nil {
		log.Printf("[places] details cache write failed: %v", err)
	}

	return &DetailsResult{Place: place}, nil
}

func (s *placesService) Geocode(ctx context.Context, address string) (*GeocodeOutcome, error) {
	entry, err := s.cache.GetGeocode(ctx, address)
	if err != nil {
		log.Printf("[places] geocode cache read failed: %v", err)
	}
	if entry != nil {
		metrics.CacheHits.WithLabelValues("geocode").Inc()
		return &GeocodeOutcome{
			Latitude:         &entry.Latitude,
			Longitude:        &entry.Longitude,
			FormattedAddress: entry.FormattedAddress,
			Cached:           true,
		}, nil
	}
	metrics.CacheMisses.WithLabelValues("geocode").Inc()

	if !s.provider.Enabled() {
		return &GeocodeOutcome{Warning: apiNotConfigured}, nil
	}

	result, err := s.provider.Geocode(ctx, address)
	if err != nil {
		log.Printf("[places] geocode provider failed: %v", err)
		return &GeocodeOutcome{Warning: "geocoding unavailable"}, nil
	}
	metrics.ProviderCalls.WithLabelValues("geocode").Inc()
	if result == nil {
		return &GeocodeOutcome{}, nil
	}

	if err := s.cache.SetGeocode(ctx, address, &repository.GeocodeEntry{
		Latitude:         result.Latitude,
		Longitude:        result.Longitude,
		FormattedAddress: result.FormattedAddress,
		OriginalAddress:  address,
		CachedAt:         s.now().UTC(),
	}); err != nil {
		log.Printf("[places] geocode cache write failed: %v", err)
	}

	return &GeocodeOutcome{
		Latitude:         &result.Latitude,
		Longitude:        &result.Longitude,
		FormattedAddress: result.FormattedAddress,
	}, nil
}

func (s *placesService) Venues(ctx context.Context, city string, limit int) ([]domain.Venue, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	venues, err := s.cache.ListVenues(ctx, strings.ToLower(strings.TrimSpace(city)), limit)
	if err != nil {
		return nil, err
	}
	if venues == nil {
		venues = []domain.Venue{}
	}
	return venues, nil
}

func (s *placesService) Stats(ctx context.Context) (*StatsResult, error) {
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsResult{
		Cache: *stats,
		TTL: TTLInfo{
			AutocompleteHours: int(AutocompleteTTL.Hours()),
			PlaceDetailsDays:  int(PlaceDetailsTTL.Hours() / 24),
			VenueDays:         int(VenueTTL.Hours() / 24),
		},
	}, nil
}
