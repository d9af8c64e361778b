package service

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/repository"
	"eventease/backend/internal/source"
)

// maxScan bounds how many recent documents one aggregation call reads from
// the store. Filtering happens in memory over this window.
const maxScan = 400

const (
	defaultPageLimit = 20
	maxPageLimit     = 50
	// maxPoolLimit applies to bulk/random pools instead of the page cap.
	maxPoolLimit = 500
)

type DiscoverService interface {
	// Search aggregates internal and external candidates, then filters,
	// deduplicates, sorts and paginates them.
	Search(ctx context.Context, params domain.SearchParams) (*domain.SearchResult, error)
	// Random returns one uniformly chosen event from the filtered set, or
	// nil when nothing matches.
	Random(ctx context.Context, params domain.SearchParams) (*domain.Event, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
}

type discoverService struct {
	repo    repository.DiscoverRepository
	sources []source.EventSource

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDiscoverService builds the aggregation engine. rng drives the random
// selection modes and is injectable for deterministic tests.
func NewDiscoverService(repo repository.DiscoverRepository, sources []source.EventSource, rng *rand.Rand) DiscoverService {
	return &discoverService{repo: repo, sources: sources, rng: rng}
}

func (s *discoverService) Search(ctx context.Context, params domain.SearchParams) (*domain.SearchResult, error) {
	params = clampParams(params)

	internal, err := s.repo.RecentDiscoverable(ctx, maxScan)
	if err != nil {
		return nil, err
	}

	external := s.fetchExternal(ctx, params)

	filtered := filterEvents(internal, params)
	merged := dedupeByID(append(filtered, external...))

	if params.Random {
		return s.randomResult(merged, params), nil
	}

	sortByStartAt(merged)

	offset := (params.Page - 1) * params.Limit
	page := paginate(merged, offset, params.Limit)
	return &domain.SearchResult{
		Events:     page,
		Pagination: domain.NewPagination(params.Page, params.Limit, len(merged)),
	}, nil
}

func (s *discoverService) Random(ctx context.Context, params domain.SearchParams) (*domain.Event, error) {
	params = clampParams(params)

	internal, err := s.repo.RecentDiscoverable(ctx, maxScan)
	if err != nil {
		return nil, err
	}

	filtered := dedupeByID(filterEvents(internal, params))
	if len(filtered) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	picked := filtered[s.rng.Intn(len(filtered))]
	s.mu.Unlock()
	return &picked, nil
}

func (s *discoverService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsDiscoverable {
		return nil, domain.ErrNotFound("event not found")
	}
	return e, nil
}

// fetchExternal augments a query with live provider results. Sources run
// concurrently; each one fails open, so augmentation can only add events,
// never fail the request. Augmentation is skipped for unconstrained
// queries — the cron-warmed cache covers those.
func (s *discoverService) fetchExternal(ctx context.Context, params domain.SearchParams) []domain.Event {
	if params.Query == "" && params.City == "" {
		return nil
	}

	q := source.Query{Keyword: params.Query, City: params.City, Category: params.Category}

	results := make([][]domain.Event, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		if !src.Enabled() {
			continue
		}
		wg.Add(1)
		go func(i int, src source.EventSource) {
			defer wg.Done()
			results[i] = src.FetchEvents(ctx, q)
		}(i, src)
	}
	wg.Wait()

	var merged []domain.Event
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	return merged
}

func (s *discoverService) randomResult(pool []domain.Event, params domain.SearchParams) *domain.SearchResult {
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
	}
}

// clampParams normalizes page and limit before use. Random pools may run
// up to the bulk cap; regular pages are capped at 50.
func clampParams(p domain.SearchParams) domain.SearchParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	max := maxPageLimit
	if p.Random {
		max = maxPoolLimit
	}
	if p.Limit > max {
		p.Limit = max
	}
	return p
}

// filterEvents applies the in-memory discovery filter: visibility, an
// inclusive date window on startAt, exact (case-insensitive) category,
// city and region matches, and a substring query across the searchable
// text fields.
func filterEvents(events []domain.Event, p domain.SearchParams) []domain.Event {
	q := strings.ToLower(strings.TrimSpace(p.Query))

	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if !e.IsDiscoverable {
			continue
		}
		if p.From != nil && e.StartAt != nil && e.StartAt.Before(*p.From) {
			continue
		}
		if p.To != nil && e.StartAt != nil && e.StartAt.After(*p.To) {
			continue
		}
		if p.Category != "" && !hasCategory(e.Categories, p.Category) {
			continue
		}
		if p.City != "" && !strings.EqualFold(e.City, p.City) {
			continue
		}
		if p.Region != "" && !strings.EqualFold(e.Region, p.Region) {
			continue
		}
		if q != "" && !matchesQuery(e, q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func hasCategory(categories []string, want string) bool {
	for _, c := range categories {
		if strings.EqualFold(c, want) {
			return true
		}
	}
	return false
}

func matchesQuery(e domain.Event, q string) bool {
	hay := strings.ToLower(strings.Join([]string{
		e.Title, e.Description, e.VenueName, e.City, e.Region, e.Address,
	}, " "))
	return strings.Contains(hay, q)
}

// dedupeByID drops later duplicates, keeping first-seen order. Applying it
// twice is a no-op.
func dedupeByID(events []domain.Event) []domain.Event {
	seen := make(map[string]bool, len(events))
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

// sortByStartAt orders ascending by start time. Events with a missing or
// guessed start time go to the end, keeping their relative merge order.
func sortByStartAt(events []domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := sortTime(events[i]), sortTime(events[j])
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
}

// sortTime returns the effective sort key; nil means "sort last".
func sortTime(e domain.Event) *time.Time {
	if e.StartAt == nil || e.StartAtGuessed {
		return nil
	}
	return e.StartAt
}

func paginate(events []domain.Event, offset, limit int) []domain.Event {
	if offset >= len(events) {
		return []domain.Event{}
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}
	return events[offset:end]
}
