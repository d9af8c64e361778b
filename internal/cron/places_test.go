package cron

import (
	"context"
	"testing"
	"time"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/repository"

	"golang.org/x/time/rate"
)

type stubPlacesCache struct {
	autocomplete map[string]*repository.AutocompleteEntry
	setKeys      []string
	venues       map[string]*domain.Venue
	deleted      int
}

func (c *stubPlacesCache) GetAutocomplete(ctx context.Context, key string) (*repository.AutocompleteEntry, error) {
	return c.autocomplete[key], nil
}
func (c *stubPlacesCache) SetAutocomplete(ctx context.Context, key string, entry *repository.AutocompleteEntry) error {
	c.setKeys = append(c.setKeys, key)
	return nil
}
func (c *stubPlacesCache) GetDetails(ctx context.Context, placeID string) (*repository.DetailsEntry, error) {
	return nil, nil
}
func (c *stubPlacesCache) SetDetails(ctx context.Context, placeID string, entry *repository.DetailsEntry) error {
	return nil
}
func (c *stubPlacesCache) GetGeocode(ctx context.Context, address string) (*repository.GeocodeEntry, error) {
	return nil, nil
}
func (c *stubPlacesCache) SetGeocode(ctx context.Context, address string, entry *repository.GeocodeEntry) error {
	return nil
}
func (c *stubPlacesCache) ListVenues(ctx context.Context, cityLower string, limit int) ([]domain.Venue, error) {
	return nil, nil
}
func (c *stubPlacesCache) UpsertVenue(ctx context.Context, key string, venue *domain.Venue) error {
	if c.venues == nil {
		c.venues = map[string]*domain.Venue{}
	}
	c.venues[key] = venue
	return nil
}
func (c *stubPlacesCache) DeleteStale(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	return c.deleted, nil
}
func (c *stubPlacesCache) Stats(ctx context.Context) (*domain.CacheStats, error) {
	return &domain.CacheStats{}, nil
}

type stubPlacesProvider struct {
	on       bool
	geocodes int
	warmed   []string
}

func (p *stubPlacesProvider) Enabled() bool { return p.on }
func (p *stubPlacesProvider) Autocomplete(ctx context.Context, input, types string) ([]domain.Prediction, error) {
	p.warmed = append(p.warmed, input)
	return []domain.Prediction{{PlaceID: "x"}}, nil
}
func (p *stubPlacesProvider) Details(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	return nil, nil
}
func (p *stubPlacesProvider) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	p.geocodes++
	return &domain.GeocodeResult{Latitude: 30.0, Longitude: -97.0}, nil
}

func floatPtr(f float64) *float64 { return &f }

func TestGroupByVenue(t *testing.T) {
	events := []domain.Event{
		{VenueName: "Blue Note", City: "New York"},
		{VenueName: "blue note", City: "new york", Latitude: floatPtr(40.7), Longitude: floatPtr(-74.0)},
		{VenueName: "Moody Center", City: "Austin"},
		{VenueName: "", City: "Austin"},
	}

	groups := groupByVenue(events)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	key := repository.VenueDocID("Blue Note", "New York")
	group, ok := groups[key]
	if !ok {
		t.Fatalf("missing group for %q", key)
	}
	if group.count != 2 {
		t.Errorf("Blue Note count = %d, want 2", group.count)
	}
	if group.venue.Latitude == nil || *group.venue.Latitude != 40.7 {
		t.Errorf("coordinates from a later event should backfill the group")
	}
}

func TestPlacesMaintenance_RunPass(t *testing.T) {
	now := time.Date(2025, 5, 1, 3, 0, 0, 0, time.UTC)

	repo := &stubDiscoverRepo{
		venues: []domain.Event{
			{VenueName: "Moody Center", City: "Austin", Address: "2001 Robert Dedman Dr"},
			{VenueName: "Moody Center", City: "Austin", Address: "2001 Robert Dedman Dr"},
		},
	}
	cache := &stubPlacesCache{
		deleted: 7,
		autocomplete: map[string]*repository.AutocompleteEntry{
			// One fresh term is skipped by the pre-cache stage.
			"concert hall": {Query: "concert hall", CachedAt: now.Add(-1 * time.Hour)},
		},
	}
	provider := &stubPlacesProvider{on: true}

	m := NewPlacesMaintenance(repo, cache, provider)
	m.now = func() time.Time { return now }
	m.geocodeLimiter = rate.NewLimiter(rate.Inf, 1)
	m.precacheLimiter = rate.NewLimiter(rate.Inf, 1)

	summary, err := m.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass() error: %v", err)
	}

	if summary.Venues.Cached != 1 {
		t.Errorf("Venues.Cached = %d, want 1", summary.Venues.Cached)
	}
	if summary.Venues.Geocoded != 1 {
		t.Errorf("Venues.Geocoded = %d, want 1 (venue had no coordinates)", summary.Venues.Geocoded)
	}
	if summary.Cleanup.Deleted != 7 {
		t.Errorf("Cleanup.Deleted = %d, want 7", summary.Cleanup.Deleted)
	}
	if summary.Searches.Cached != len(popularSearches)-1 {
		t.Errorf("Searches.Cached = %d, want %d (one fresh term skipped)",
			summary.Searches.Cached, len(popularSearches)-1)
	}

	key := repository.VenueDocID("Moody Center", "Austin")
	venue := cache.venues[key]
	if venue == nil {
		t.Fatalf("venue %q not cached", key)
	}
	if venue.Popularity != 2 {
		t.Errorf("Popularity = %d, want the event count 2", venue.Popularity)
	}
	if venue.CityLower != "austin" {
		t.Errorf("CityLower = %q, want austin", venue.CityLower)
	}
	if venue.Latitude == nil {
		t.Error("venue should carry geocoded coordinates")
	}
}
