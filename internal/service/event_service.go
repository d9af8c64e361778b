package service

import (
	"context"
	"log"
	"time"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/repository"

	"github.com/google/uuid"
)

// Notifier delivers engagement milestone notifications. Implementations
// must be safe for detached use: delivery failure is logged, never
// surfaced to the caller whose action triggered it.
type Notifier interface {
	MilestoneReached(ctx context.Context, event *domain.Event, metric string, count int64) error
	IsMilestone(metric string, count int64) bool
}

type EventService interface {
	List(ctx context.Context, userID string, page, limit int) (*domain.SearchResult, error)
	Get(ctx context.Context, userID, id string) (*domain.Event, error)
	Create(ctx context.Context, userID string, dto *domain.EventDTO) (*domain.Event, error)
	Update(ctx context.Context, userID, id string, dto *domain.EventDTO) (*domain.Event, error)
	Delete(ctx context.Context, userID, id string) error
	// RecordSave and RecordShare atomically bump the counter and, on a
	// milestone, dispatch a notification without blocking the response.
	RecordSave(ctx context.Context, id string) (int64, error)
	RecordShare(ctx context.Context, id string) (int64, error)
}

type eventService struct {
	repo     repository.EventRepository
	notifier Notifier
}

func NewEventService(repo repository.EventRepository, notifier Notifier) EventService {
	return &eventService{repo: repo, notifier: notifier}
}

func (s *eventService) List(ctx context.Context, userID string, page, limit int) (*domain.SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	events, total, err := s.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}
	return &domain.SearchResult{
		Events:     events,
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}

func (s *eventService) Get(ctx context.Context, userID, id string) (*domain.Event, error) {
	if id == "" {
		return nil, domain.ErrValidation("id is required")
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, domain.ErrForbidden("you do not have access to this event")
	}
	return e, nil
}

func (s *eventService) Create(ctx context.Context, userID string, dto *domain.EventDTO) (*domain.Event, error) {
	if err := domain.Validate.Struct(dto); err != nil {
		return nil, domain.ErrValidation("invalid event: %v", err)
	}

	now := time.Now().UTC()
	e := eventFromDTO(dto)
	e.ID = uuid.New().String()
	e.UserID = userID
	e.Source = domain.SourceInternal
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *eventService) Update(ctx context.Context, userID, id string, dto *domain.EventDTO) (*domain.Event, error) {
	if id == "" {
		return nil, domain.ErrValidation("id is required")
	}
	if err := domain.Validate.Struct(dto); err != nil {
		return nil, domain.ErrValidation("invalid event: %v", err)
	}

	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch := eventFromDTO(dto)
	updates := map[string]interface{}{
		"title":          patch.Title,
		"description":    patch.Description,
		"startAt":        patch.StartAt,
		"endAt":          patch.EndAt,
		"venueName":      patch.VenueName,
		"address":        patch.Address,
		"city":           patch.City,
		"region":         patch.Region,
		"country":        patch.Country,
		"latitude":       patch.Latitude,
		"longitude":      patch.Longitude,
		"categories":     patch.Categories,
		"imageUrl":       patch.ImageURL,
		"ticketUrl":      patch.TicketURL,
		"ticketPrice":    patch.TicketPrice,
		"sourceUrl":      patch.SourceURL,
		"sourcePlatform": patch.SourcePlatform,
		"isDiscoverable": patch.IsDiscoverable,
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	updated := *existing
	applyPatch(&updated, patch)
	return &updated, nil
}

func (s *eventService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *eventService) RecordSave(ctx context.Context, id string) (int64, error) {
	return s.increment(ctx, id, "saveCount", "saves")
}

func (s *eventService) RecordShare(ctx context.Context, id string) (int64, error) {
	return s.increment(ctx, id, "shareCount", "shares")
}

func (s *eventService) increment(ctx context.Context, id, field, metric string) (int64, error) {
	if id == "" {
		return 0, domain.ErrValidation("id is required")
	}

	e, err := s.repo.IncrementEngagement(ctx, id, field, 1)
	if err != nil {
		return 0, err
	}

	var count int64
	switch field {
	case "saveCount":
		count = e.SaveCount
	case "shareCount":
		count = e.ShareCount
	}

	if s.notifier != nil && s.notifier.IsMilestone(metric, count) {
		// Detached: the increment already committed, notification failure
		// must not affect the response.
		go func(e domain.Event) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.notifier.MilestoneReached(ctx, &e, metric, count); err != nil {
				log.Printf("[events] milestone notification failed for %s: %v", e.ID, err)
			}
		}(*e)
	}
	return count, nil
}

func eventFromDTO(dto *domain.EventDTO) *domain.Event {
	return &domain.Event{
		Title:          dto.Title,
		Description:    dto.Description,
		StartAt:        parseTimePtr(dto.StartAt),
		EndAt:          parseTimePtr(dto.EndAt),
		VenueName:      dto.VenueName,
		Address:        dto.Address,
		City:           dto.City,
		Region:         dto.Region,
		Country:        dto.Country,
		Latitude:       dto.Latitude,
		Longitude:      dto.Longitude,
		Categories:     dedupeStrings(dto.Categories),
		ImageURL:       dto.ImageURL,
		TicketURL:      dto.TicketURL,
		TicketPrice:    dto.TicketPrice,
		SourceURL:      dto.SourceURL,
		SourcePlatform: dto.SourcePlatform,
		IsDiscoverable: dto.IsDiscoverable,
	}
}

func applyPatch(dst *domain.Event, patch *domain.Event) {
	dst.Title = patch.Title
	dst.Description = patch.Description
	dst.StartAt = patch.StartAt
	dst.EndAt = patch.EndAt
	dst.VenueName = patch.VenueName
	dst.Address = patch.Address
	dst.City = patch.City
	dst.Region = patch.Region
	dst.Country = patch.Country
	dst.Latitude = patch.Latitude
	dst.Longitude = patch.Longitude
	dst.Categories = patch.Categories
	dst.ImageURL = patch.ImageURL
	dst.TicketURL = patch.TicketURL
	dst.TicketPrice = patch.TicketPrice
	dst.SourceURL = patch.SourceURL
	dst.SourcePlatform = patch.SourcePlatform
	dst.IsDiscoverable = patch.IsDiscoverable
	dst.UpdatedAt = time.Now().UTC()
}

func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
