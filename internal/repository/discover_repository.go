package repository

import (
	"context"
	"fmt"
	"time"

	"eventease/backend/internal/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const CollectionDiscoverEvents = "discoverEvents"

// upsertChunkSize keeps each committed batch safely under the Firestore
// per-batch operation limit of 500.
const upsertChunkSize = 400

type DiscoverRepository interface {
	// RecentDiscoverable returns at most limit recent documents ordered by
	// start time descending, falling back to creation time when the start
	// time ordering is unusable (many imported docs lack the field).
	RecentDiscoverable(ctx context.Context, limit int) ([]domain.Event, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// UpsertBatch merge-writes events keyed by their precomputed IDs in
	// chunks, preserving engagement counters on existing documents.
	// Returns the number of documents written.
	UpsertBatch(ctx context.Context, events []domain.Event) (int, error)
	// WithVenues returns up to limit events that carry a venue name, for
	// the venue cache refresh.
	WithVenues(ctx context.Context, limit int) ([]domain.Event, error)
}

type discoverRepo struct {
	client *firestore.Client
}

func NewDiscoverRepository(client *firestore.Client) DiscoverRepository {
	return &discoverRepo{client: client}
}

func (r *discoverRepo) RecentDiscoverable(ctx context.Context, limit int) ([]domain.Event, error) {
	col := r.client.Collection(CollectionDiscoverEvents)

	events, err := collectEvents(col.OrderBy("startAt", firestore.Desc).Limit(limit).Documents(ctx))
	if err == nil {
		return events, nil
	}

	// Ordering by startAt fails when the index is unusable; fall back to
	// creation order.
	return collectEvents(col.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx))
}

func (r *discoverRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	doc, err := r.client.Collection(CollectionDiscoverEvents).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrNotFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	var e domain.Event
	if err := doc.DataTo(&e); err != nil {
		return nil, err
	}
	e.ID = doc.Ref.ID
	return &e, nil
}

func (r *discoverRepo) UpsertBatch(ctx context.Context, events []domain.Event) (int, error) {
	written := 0
	for start := 0; start < len(events); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(events) {
			end = len(events)
		}

		batch := r.client.Batch()
		for _, e := range events[start:end] {
			if e.ID == "" {
				continue
			}
			ref := r.client.Collection(CollectionDiscoverEvents).Doc(e.ID)
			batch.Set(ref, upsertData(e), firestore.MergeAll)
			written++
		}
		if _, err := batch.Commit(ctx); err != nil {
			return written, fmt.Errorf("commit upsert batch: %w", err)
		}
	}
	return written, nil
}

func (r *discoverRepo) WithVenues(ctx context.Context, limit int) ([]domain.Event, error) {
	iter := r.client.Collection(CollectionDiscoverEvents).
		Where("venueName", "!=", "").
		Limit(limit).
		Documents(ctx)
	return collectEvents(iter)
}

// upsertData flattens an event for a merge write. Engagement counters are
// internal-only and deliberately excluded so refreshes never clobber them.
func upsertData(e domain.Event) map[string]interface{} {
	data := map[string]interface{}{
		"id":             e.ID,
		"source":         e.Source,
		"title":          e.Title,
		"description":    e.Description,
		"startAt":        e.StartAt,
		"endAt":          e.EndAt,
		"venueName":      e.VenueName,
		"address":        e.Address,
		"city":           e.City,
		"region":         e.Region,
		"country":        e.Country,
		"latitude":       e.Latitude,
		"longitude":      e.Longitude,
		"categories":     e.Categories,
		"imageUrl":       e.ImageURL,
		"ticketUrl":      e.TicketURL,
		"ticketPrice":    e.TicketPrice,
		"sourceUrl":      e.SourceURL,
		"sourcePlatform": e.SourcePlatform,
		"externalId":     e.ExternalID,
		"isDiscoverable": e.IsDiscoverable,
		"updatedAt":      time.Now().UTC(),
	}
	if e.StartAtGuessed {
		data["startAtGuessed"] = true
	}
	if !e.CreatedAt.IsZero() {
		data["createdAt"] = e.CreatedAt
	}
	return data
}

func collectEvents(iter *firestore.DocumentIterator) ([]domain.Event, error) {
	defer iter.Stop()

	var events []domain.Event
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var e domain.Event
		if err := doc.DataTo(&e); err != nil {
			// Skip malformed documents rather than failing the scan.
			continue
		}
		e.ID = doc.Ref.ID
		events = append(events, e)
	}
	return events, nil
}
