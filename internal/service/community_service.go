package service

import (
	"context"
	"math/rand"
	"sync"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/repository"
)

const communityDefaultLimit = 12

// CommunityService searches user-shared events. It is the internal-only
// variant of discovery: same filter semantics, no external augmentation,
// and the caller's own events are excluded.
type CommunityService interface {
	Search(ctx context.Context, userID string, params domain.SearchParams) (*domain.SearchResult, error)
	// PickOne is the "event of the day" mode: one uniformly random match,
	// or nil when the filtered pool is empty.
	PickOne(ctx context.Context, userID string, params domain.SearchParams) (*domain.Event, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
}

type communityService struct {
	repo repository.EventRepository

	mu  sync.Mutex
	rng *rand.Rand
}

func NewCommunityService(repo repository.EventRepository, rng *rand.Rand) CommunityService {
	return &communityService{repo: repo, rng: rng}
}

func (s *communityService) Search(ctx context.Context, userID string, params domain.SearchParams) (*domain.SearchResult, error) {
	if params.Limit < 1 {
		params.Limit = communityDefaultLimit
	}
	if params.Limit > maxPoolLimit {
		params.Limit = maxPoolLimit
	}
	if params.Page < 1 {
		params.Page = 1
	}

	pool, err := s.filteredPool(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	if params.Random {
		s.mu.Lock()
		s.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		s.mu.Unlock()
		page := pool
		if len(page) > params.Limit {
			page = page[:params.Limit]
		}
		return &domain.SearchResult{
			Events:     page,
			Pagination: domain.NewPagination(1, params.Limit, len(pool)),
		}, nil
	}

	offset := (params.Page - 1) * params.Limit
	return &domain.SearchResult{
		Events:     paginate(pool, offset, params.Limit),
		Pagination: domain.NewPagination(params.Page, params.Limit, len(pool)),
	}, nil
}

func (s *communityService) PickOne(ctx context.Context, userID string, params domain.SearchParams) (*domain.Event, error) {
	pool, err := s.filteredPool(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	picked := pool[s.rng.Intn(len(pool))]
	s.mu.Unlock()
	return &picked, nil
}

func (s *communityService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Non-discoverable events are hidden, not forbidden: do not leak their
	// existence.
	if !e.IsDiscoverable {
		return nil, domain.ErrNotFound("event not found")
	}
	return e, nil
}

func (s *communityService) filteredPool(ctx context.Context, userID string, params domain.SearchParams) ([]domain.Event, error) {
	candidates, err := s.repo.ListDiscoverable(ctx, maxPoolLimit)
	if err != nil {
		return nil, err
	}

	withoutOwn := make([]domain.Event, 0, len(candidates))
	for _, e := range candidates {
		if e.UserID == userID {
			continue
		}
		withoutOwn = append(withoutOwn, e)
	}
	return dedupeByID(filterEvents(withoutOwn, params)), nil
}
