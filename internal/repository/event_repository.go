package repository

import (
	"context"
	"fmt"
	"time"

	"eventease/backend/internal/domain"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const CollectionEvents = "events"

type EventRepository interface {
	ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.Event, int, error)
	// ListDiscoverable returns up to limit community-visible events for the
	// in-memory filter path.
	ListDiscoverable(ctx context.Context, limit int) ([]domain.Event, error)
	CountDiscoverable(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	// IncrementEngagement atomically adjusts one engagement counter and
	// returns the event with the new count applied.
	IncrementEngagement(ctx context.Context, id, field string, delta int64) (*domain.Event, error)
}

type eventRepo struct {
	client *firestore.Client
}

func NewEventRepository(client *firestore.Client) EventRepository {
	return &eventRepo{client: client}
}

func (r *eventRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.Event, int, error) {
	base := r.client.Collection(CollectionEvents).Where("userId", "==", userID)

	total, err := countQuery(ctx, base)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	iter := base.
		OrderBy("startAt", firestore.Desc).
		OrderBy("createdAt", firestore.Desc).
		Offset(offset).
		Limit(limit).
		Documents(ctx)

	events, err := collectEvents(iter)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepo) ListDiscoverable(ctx context.Context, limit int) ([]domain.Event, error) {
	base := r.client.Collection(CollectionEvents).Where("isDiscoverable", "==", true)

	events, err := collectEvents(base.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx))
	if err == nil {
		return events, nil
	}
	// Ordering can fail on heterogeneous documents; serve unordered rather
	// than erroring the whole request.
	return collectEvents(base.Limit(limit).Documents(ctx))
}

func (r *eventRepo) CountDiscoverable(ctx context.Context) (int, error) {
	return countQuery(ctx, r.client.Collection(CollectionEvents).Where("isDiscoverable", "==", true))
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	doc, err := r.client.Collection(CollectionEvents).Doc(id).Get(ctx)
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

func (r *eventRepo) Create(ctx context.Context, event *domain.Event) error {
	_, err := r.client.Collection(CollectionEvents).Doc(event.ID).Set(ctx, event)
	return err
}

func (r *eventRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	updates["updatedAt"] = time.Now().UTC()
	_, err := r.client.Collection(CollectionEvents).Doc(id).Set(ctx, updates, firestore.MergeAll)
	return err
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(CollectionEvents).Doc(id).Delete(ctx)
	return err
}

func (r *eventRepo) IncrementEngagement(ctx context.Context, id, field string, delta int64) (*domain.Event, error) {
	ref := r.client.Collection(CollectionEvents).Doc(id)

	var updated domain.Event
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return domain.ErrNotFound("event not found")
		}
		if err != nil {
			return err
		}
		if err := doc.DataTo(&updated); err != nil {
			return err
		}
		updated.ID = doc.Ref.ID

		var count int64
		switch field {
		case "saveCount":
			updated.SaveCount += delta
			if updated.SaveCount < 0 {
				updated.SaveCount = 0
			}
			count = updated.SaveCount
		case "shareCount":
			updated.ShareCount += delta
			if updated.ShareCount < 0 {
				updated.ShareCount = 0
			}
			count = updated.ShareCount
		case "commentCount":
			updated.CommentCount += delta
			if updated.CommentCount < 0 {
				updated.CommentCount = 0
			}
			count = updated.CommentCount
		default:
			return domain.ErrValidation("unknown engagement field %q", field)
		}

		return tx.Update(ref, []firestore.Update{
			{Path: field, Value: count},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func countQuery(ctx context.Context, q firestore.Query) (int, error) {
	res, err := q.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["total"]
	if !ok {
		return 0, fmt.Errorf("count aggregation returned no result")
	}
	value, ok := v.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count aggregation type %T", v)
	}
	return int(value.GetIntegerValue()), nil
}
