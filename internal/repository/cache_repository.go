package repository

import (
	"context"
	"strings"
	"time"
	"unicode"

	"eventease/backend/internal/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	CollectionPlacesCache  = "placesCache"
	CollectionGeocodeCache = "geocodeCache"
	CollectionVenueCache   = "venueCache"
)

// maxCacheKeyLen bounds derived document IDs.
const maxCacheKeyLen = 100

// AutocompleteEntry caches one autocomplete query's predictions.
type AutocompleteEntry struct {
	Query       string              `firestore:"query"`
	Predictions []domain.Prediction `firestore:"predictions"`
	CachedAt    time.Time           `firestore:"cachedAt"`
	Source      string              `firestore:"source"`
}

// DetailsEntry caches one place's detail record.
type DetailsEntry struct {
	Place    domain.PlaceDetails `firestore:"place"`
	CachedAt time.Time           `firestore:"cachedAt"`
	Source   string              `firestore:"source"`
}

// GeocodeEntry caches one resolved address. Geocode entries have no TTL:
// coordinates do not go stale, so they live until explicitly purged.
type GeocodeEntry struct {
	Latitude         float64   `firestore:"latitude"`
	Longitude        float64   `firestore:"longitude"`
	FormattedAddress string    `firestore:"formattedAddress"`
	OriginalAddress  string    `firestore:"originalAddress"`
	CachedAt         time.Time `firestore:"cachedAt"`
}

// PlacesCacheRepository is the TTL-keyed cache over the document store.
// Reads never delete; staleness is judged by callers against per-kind TTLs
// and eviction happens only in the periodic cleanup sweep.
type PlacesCacheRepository interface {
	GetAutocomplete(ctx context.Context, key string) (*AutocompleteEntry, error)
	SetAutocomplete(ctx context.Context, key string, entry *AutocompleteEntry) error
	GetDetails(ctx context.Context, placeID string) (*DetailsEntry, error)
	SetDetails(ctx context.Context, placeID string, entry *DetailsEntry) error
	GetGeocode(ctx context.Context, address string) (*GeocodeEntry, error)
	SetGeocode(ctx context.Context, address string, entry *GeocodeEntry) error
	ListVenues(ctx context.Context, cityLower string, limit int) ([]domain.Venue, error)
	UpsertVenue(ctx context.Context, key string, venue *domain.Venue) error
	// DeleteStale removes up to limit placesCache entries cached before the
	// cutoff, in one batch. Returns the number deleted.
	DeleteStale(ctx context.Context, cutoff time.Time, limit int) (int, error)
	Stats(ctx context.Context) (*domain.CacheStats, error)
}

type placesCacheRepo struct {
	client *firestore.Client
}

func NewPlacesCacheRepository(client *firestore.Client) PlacesCacheRepository {
	return &placesCacheRepo{client: client}
}

// AutocompleteDocID derives the placesCache document ID for a free-text
// autocomplete query.
func AutocompleteDocID(input string) string {
	return "autocomplete_" + NormalizeCacheKey(input)
}

// DetailsDocID derives the placesCache document ID for a place ID.
func DetailsDocID(placeID string) string {
	return truncateKey("details_" + sanitizeKey(placeID))
}

// GeocodeDocID derives the geocodeCache document ID for an address.
func GeocodeDocID(address string) string {
	return NormalizeCacheKey(address)
}

// VenueDocID derives the venueCache document ID from a venue name and city.
func VenueDocID(name, city string) string {
	return NormalizeCacheKey(name + "|" + city)
}

// NormalizeCacheKey lower-cases, collapses whitespace to underscores and
// strips path-unsafe characters so the result is a deterministic, valid
// Firestore document ID.
func NormalizeCacheKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r == '/' || r == '\\' || r == '#' || r == '[' || r == ']' || r == '*':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return truncateKey(b.String())
}

func sanitizeKey(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(s)
}

func truncateKey(s string) string {
	if len(s) > maxCacheKeyLen {
		return s[:maxCacheKeyLen]
	}
	return s
}

func (r *placesCacheRepo) GetAutocomplete(ctx context.Context, key string) (*AutocompleteEntry, error) {
	doc, err := r.client.Collection(CollectionPlacesCache).Doc(AutocompleteDocID(key)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry AutocompleteEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *placesCacheRepo) SetAutocomplete(ctx context.Context, key string, entry *AutocompleteEntry) error {
	_, err := r.client.Collection(CollectionPlacesCache).Doc(AutocompleteDocID(key)).Set(ctx, entry)
	return err
}

func (r *placesCacheRepo) GetDetails(ctx context.Context, placeID string) (*DetailsEntry, error) {
	doc, err := r.client.Collection(CollectionPlacesCache).Doc(DetailsDocID(placeID)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry DetailsEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *placesCacheRepo) SetDetails(ctx context.Context, placeID string, entry *DetailsEntry) error {
	_, err := r.client.Collection(CollectionPlacesCache).Doc(DetailsDocID(placeID)).Set(ctx, entry)
	return err
}

func (r *placesCacheRepo) GetGeocode(ctx context.Context, address string) (*GeocodeEntry, error) {
	doc, err := r.client.Collection(CollectionGeocodeCache).Doc(GeocodeDocID(address)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry GeocodeEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *placesCacheRepo) SetGeocode(ctx context.Context, address string, entry *GeocodeEntry) error {
	_, err := r.client.Collection(CollectionGeocodeCache).Doc(GeocodeDocID(address)).Set(ctx, entry)
	return err
}

func (r *placesCacheRepo) ListVenues(ctx context.Context, cityLower string, limit int) ([]domain.Venue, error) {
	q := r.client.Collection(CollectionVenueCache).
		OrderBy("popularity", firestore.Desc).
		Limit(limit)
	if cityLower != "" {
		q = r.client.Collection(CollectionVenueCache).
			Where("cityLower", "==", cityLower).
			OrderBy("popularity", firestore.Desc).
			Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var venues []domain.Venue
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var v domain.Venue
		if err := doc.DataTo(&v); err != nil {
			continue
		}
		v.ID = doc.Ref.ID
		venues = append(venues, v)
	}
	return venues, nil
}

func (r *placesCacheRepo) UpsertVenue(ctx context.Context, key string, venue *domain.Venue) error {
	_, err := r.client.Collection(CollectionVenueCache).Doc(key).Set(ctx, venue)
	return err
}

func (r *placesCacheRepo) DeleteStale(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	iter := r.client.Collection(CollectionPlacesCache).
		Where("cachedAt", "<", cutoff).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	batch := r.client.Batch()
	deleted := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		batch.Delete(doc.Ref)
		deleted++
	}

	if deleted == 0 {
		return 0, nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *placesCacheRepo) Stats(ctx context.Context) (*domain.CacheStats, error) {
	autocomplete, err := countQuery(ctx, r.client.Collection(CollectionPlacesCache).Where("query", "!=", ""))
	if err != nil {
		return nil, err
	}
	details, err := countQuery(ctx, r.client.Collection(CollectionPlacesCache).Where("place", "!=", nil))
	if err != nil {
		return nil, err
	}
	geocode, err := countQuery(ctx, r.client.Collection(CollectionGeocodeCache).Query)
	if err != nil {
		return nil, err
	}
	venues, err := countQuery(ctx, r.client.Collection(CollectionVenueCache).Query)
	if err != nil {
		return nil, err
	}

	return &domain.CacheStats{
		AutocompleteEntries: int64(autocomplete),
		PlaceDetailsEntries: int64(details),
		GeocodeEntries:      int64(geocode),
		VenueEntries:        int64(venues),
	}, nil
}
