package cron

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/metrics"
	"eventease/backend/internal/repository"
	"eventease/backend/internal/source"

	"golang.org/x/time/rate"
)

// popularSearches is the fixed list of autocomplete terms kept warm by the
// maintenance pass.
var popularSearches = []string{
	"concert hall",
	"stadium",
	"theater",
	"arena",
	"convention center",
	"music venue",
	"nightclub",
	"bar",
	"park",
	"amphitheater",
}

const (
	venueScanLimit    = 500
	staleCacheMaxAge  = 30 * 24 * time.Hour
	cleanupBatchLimit = 100
	precacheFreshAge  = 24 * time.Hour
)

// PlacesSummary reports what one maintenance pass did.
type PlacesSummary struct {
	Venues struct {
		Cached   int `json:"cached"`
		Geocoded int `json:"geocoded"`
	} `json:"venues"`
	Searches struct {
		Cached int `json:"cached"`
	} `json:"searches"`
	Cleanup struct {
		Deleted int `json:"deleted"`
	} `json:"cleanup"`
}

// PlacesMaintenance refreshes the venue cache from stored events, pre-warms
// popular autocomplete searches, and sweeps stale cache entries.
type PlacesMaintenance struct {
	events   repository.DiscoverRepository
	cache    repository.PlacesCacheRepository
	provider source.PlacesProvider

	geocodeLimiter  *rate.Limiter
	precacheLimiter *rate.Limiter
	now             func() time.Time
}

func NewPlacesMaintenance(events repository.DiscoverRepository, cache repository.PlacesCacheRepository, provider source.PlacesProvider) *PlacesMaintenance {
	return &PlacesMaintenance{
		events:          events,
		cache:           cache,
		provider:        provider,
		geocodeLimiter:  rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		precacheLimiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		now:             time.Now,
	}
}

func (m *PlacesMaintenance) Name() string { return "places-maintenance" }

func (m *PlacesMaintenance) Run(ctx context.Context) error {
	_, err := m.RunPass(ctx)
	return err
}

// RunPass runs all three stages and returns the combined summary. Stage
// failures are logged and do not stop the remaining stages.
func (m *PlacesMaintenance) RunPass(ctx context.Context) (PlacesSummary, error) {
	var summary PlacesSummary

	cached, geocoded, err := m.refreshVenues(ctx)
	if err != nil {
		log.Printf("[cron] places-maintenance: venue refresh failed: %v", err)
	}
	summary.Venues.Cached = cached
	summary.Venues.Geocoded = geocoded

	warmed, err := m.precachePopularSearches(ctx)
	if err != nil {
		log.Printf("[cron] places-maintenance: search pre-cache failed: %v", err)
	}
	summary.Searches.Cached = warmed

	deleted, err := m.cache.DeleteStale(ctx, m.now().Add(-staleCacheMaxAge), cleanupBatchLimit)
	if err != nil {
		log.Printf("[cron] places-maintenance: stale sweep failed: %v", err)
	}
	summary.Cleanup.Deleted = deleted

	log.Printf("[cron] places-maintenance: venues cached=%d geocoded=%d, searches warmed=%d, stale deleted=%d",
		cached, geocoded, warmed, deleted)
	return summary, ctx.Err()
}

type venueGroup struct {
	venue domain.Venue
	count int
}

func (m *PlacesMaintenance) refreshVenues(ctx context.Context) (cached, geocoded int, err error) {
	events, err := m.events.WithVenues(ctx, venueScanLimit)
	if err != nil {
		return 0, 0, fmt.Errorf("scan events: %w", err)
	}

	groups := groupByVenue(events)
	for key, group := range groups {
		if err := ctx.Err(); err != nil {
			return cached, geocoded, err
		}

		venue := group.venue
		if (venue.Latitude == nil || venue.Longitude == nil) && m.provider.Enabled() && venue.Address != "" {
			if err := m.geocodeLimiter.Wait(ctx); err != nil {
				return cached, geocoded, err
			}
			address := fmt.Sprintf("%s, %s, %s", venue.Name, venue.Address, venue.City)
			result, gerr := m.provider.Geocode(ctx, address)
			metrics.ProviderCalls.WithLabelValues("google_maps").Inc()
			if gerr != nil {
				log.Printf("[cron] places-maintenance: geocode failed for %s: %v", venue.Name, gerr)
			} else if result != nil {
				venue.Latitude = &result.Latitude
				venue.Longitude = &result.Longitude
				geocoded++
			}
		}

		venue.CityLower = strings.ToLower(venue.City)
		venue.Popularity = group.count
		venue.CachedAt = m.now()
		if uerr := m.cache.UpsertVenue(ctx, key, &venue); uerr != nil {
			log.Printf("[cron] places-maintenance: venue upsert failed for %s: %v", venue.Name, uerr)
			continue
		}
		cached++
	}
	return cached, geocoded, nil
}

// groupByVenue collapses events onto distinct (venue, city) pairs, counting
// events per venue and keeping the first coordinates seen.
func groupByVenue(events []domain.Event) map[string]venueGroup {
	groups := make(map[string]venueGroup)
	for _, e := range events {
		name := strings.TrimSpace(e.VenueName)
		if name == "" {
			continue
		}
		key := repository.VenueDocID(name, e.City)
		group, ok := groups[key]
		if !ok {
			group = venueGroup{venue: domain.Venue{
				Name:      name,
				City:      e.City,
				Region:    e.Region,
				Address:   e.Address,
				Latitude:  e.Latitude,
				Longitude: e.Longitude,
			}}
		} else {
			if group.venue.Latitude == nil && e.Latitude != nil && e.Longitude != nil {
				group.venue.Latitude = e.Latitude
				group.venue.Longitude = e.Longitude
			}
		}
		group.count++
		groups[key] = group
	}
	return groups
}

func (m *PlacesMaintenance) precachePopularSearches(ctx context.Context) (int, error) {
	if !m.provider.Enabled() {
		log.Printf("[cron] places-maintenance: provider not configured, skipping pre-cache")
		return 0, nil
	}

	warmed := 0
	for _, term := range popularSearches {
		if err := ctx.Err(); err != nil {
			return warmed, err
		}

		existing, err := m.cache.GetAutocomplete(ctx, term)
		if err != nil {
			log.Printf("[cron] places-maintenance: cache read failed for %q: %v", term, err)
		} else if existing != nil && m.now().Sub(existing.CachedAt) < precacheFreshAge {
			continue
		}

		if err := m.precacheLimiter.Wait(ctx); err != nil {
			return warmed, err
		}

		predictions, err := m.provider.Autocomplete(ctx, term, "establishment")
		metrics.ProviderCalls.WithLabelValues("google_maps").Inc()
		if err != nil {
			log.Printf("[cron] places-maintenance: pre-cache fetch failed for %q: %v", term, err)
			continue
		}

		entry := &repository.AutocompleteEntry{
			Query:       term,
			Predictions: predictions,
			CachedAt:    m.now(),
			Source:      "cron_precache",
		}
		if err := m.cache.SetAutocomplete(ctx, term, entry); err != nil {
			log.Printf("[cron] places-maintenance: cache write failed for %q: %v", term, err)
			continue
		}
		warmed++
	}
	return warmed, nil
}
