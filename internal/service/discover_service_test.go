package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"eventease/backend/internal/domain"
	"eventease/backend/internal/source"
)

// MockDiscoverRepo implements repository.DiscoverRepository for service
// tests.
type MockDiscoverRepo struct {
	RecentFunc     func(ctx context.Context, limit int) ([]domain.Event, error)
	GetFunc        func(ctx context.Context, id string) (*domain.Event, error)
	UpsertFunc     func(ctx context.Context, events []domain.Event) (int, error)
	WithVenuesFunc func(ctx context.Context, limit int) ([]domain.Event, error)
}

func (m *MockDiscoverRepo) RecentDiscoverable(ctx context.Context, limit int) ([]domain.Event, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}
	return nil, nil
}
func (m *MockDiscoverRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound("event not found")
}
func (m *MockDiscoverRepo) UpsertBatch(ctx context.Context, events []domain.Event) (int, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, events)
	}
	return len(events), nil
}
func (m *MockDiscoverRepo) WithVenues(ctx context.Context, limit int) ([]domain.Event, error) {
	if m.WithVenuesFunc != nil {
		return m.WithVenuesFunc(ctx, limit)
	}
	return nil, nil
}

// MockSource implements source.EventSource.
type MockSource struct {
	SourceName string
	On         bool
	FetchFunc  func(ctx context.Context, q source.Query) []domain.Event
}

func (m *MockSource) Name() string  { return m.SourceName }
func (m *MockSource) Enabled() bool { return m.On }
func (m *MockSource) FetchEvents(ctx context.Context, q source.Query) []domain.Event {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, q)
	}
	return nil
}

func discoverable(id, title, city string, start *time.Time) domain.Event {
	return domain.Event{
		ID:             id,
		Title:          title,
		City:           city,
		StartAt:        start,
		Source:         domain.SourceInternal,
		IsDiscoverable: true,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func newTestRNG() *rand.Rand { return rand.New(rand.NewSource(42)) }

func TestDiscoverSearch_MergesAndSorts(t *testing.T) {
	day := func(d int) *time.Time {
		return timePtr(time.Date(2025, 7, d, 20, 0, 0, 0, time.UTC))
	}

	repo := &MockDiscoverRepo{
		RecentFunc: func(ctx context.Context, limit int) ([]domain.Event, error) {
			return []domain.Event{
				discoverable("int-2", "Later Show", "Austin", day(20)),
				discoverable("int-1", "Earlier Show", "Austin", day(5)),
			}, nil
		},
	}
	src := &MockSource{
		SourceName: "seatgeek",
		On:         true,
		FetchFunc: func(ctx context.Context, q source.Query) []domain.Event {
			e := discoverable("sg-9", "External Show", "Austin", day(10))
			e.Source = domain.SourceSeatGeek
			return []domain.Event{e}
		},
	}

	svc := NewDiscoverService(repo, []source.EventSource{src}, newTestRNG())

	result, err := svc.Search(context.Background(), domain.SearchParams{City: "Austin"})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	wantOrder := []string{"int-1", "sg-9", "int-2"}
	if len(result.Events) != len(wantOrder) {
		t.Fatalf("got %d events, want %d", len(result.Events), len(wantOrder))
	}
	for i, id := range wantOrder {
		if result.Events[i].ID != id {
			t.Errorf("events[%d].ID = %q, want %q", i, result.Events[i].ID, id)
		}
	}
	if result.Pagination.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Pagination.Total)
	}
}

func TestDiscoverSearch_DedupePrefersInternal(t *testing.T) {
	start := timePtr(time.Date(2025, 7, 5, 20, 0, 0, 0, time.UTC))

	repo := &MockDiscoverRepo{
		RecentFunc: func(ctx context.Context, limit int) ([]domain.Event, error) {
			return []domain.Event{discoverable("google_abc", "Stored Copy", "Austin", start)}, nil
		},
	}
	src := &MockSource{
		SourceName: "google_events",
		On:         true,
		FetchFunc: func(ctx context.Context, q source.Query) []domain.Event {
			e := discoverable("google_abc", "Live Copy", "Austin", start)
			e.Source = domain.SourceGoogleEvents
			return []domain.Event{e}
		},
	}

	svc := NewDiscoverService(repo, []source.EventSource{src}, newTestRNG())

	result, err := svc.Search(context.Background(), domain.SearchParams{City: "Austin"})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(result.Events) != 1 {
		t.Fatalf("got %d events, want 1 after dedupe", len(result.Events))
	}
	if result.Events[0].Title != "Stored Copy" {
		t.Errorf("dedupe kept %q, want the stored copy", result.Events[0].Title)
	}
}

func TestDiscoverSearch_SkipsAugmentationWithoutConstraints(t *testing.T) {
	repo := &MockDiscoverRepo{}
	called := false
	src := &MockSource{
		SourceName: "seatgeek",
		On:         true,
		FetchFunc: func(ctx context.Context, q source.Query) []domain.Event {
			called = true
			return nil
		},
	}

	svc := NewDiscoverService(repo, []source.EventSource{src}, newTestRNG())
	if _, err := svc.Search(context.Background(), domain.SearchParams{}); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if called {
		t.Error("source called for a query without keyword or city")
	}
}

func TestDiscoverSearch_GuessedDatesSortLast(t *testing.T) {
	day := timePtr(time.Date(2025, 7, 5, 20, 0, 0, 0, time.UTC))

	guessed := discoverable("g1", "Vague Date", "Austin", timePtr(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	guessed.StartAtGuessed = true

	repo := &MockDiscoverRepo{
		RecentFunc: func(ctx context.Context, limit int) ([]domain.Event, error) {
			return []domain.Event{guessed, discoverable("k1", "Known Date", "Austin", day)}, nil
		},
	}

	svc := NewDiscoverService(repo, nil, newTestRNG())

	result, err := svc.Search(context.Background(), domain.SearchParams{City: "Austin"})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if result.Events[0].ID != "k1" || result.Events[1].ID != "g1" {
		t.Errorf("guessed-date event should sort last, got order %q, %q",
			result.Events[0].ID, result.Events[1].ID)
	}
}

func TestDiscoverSearch_Pagination(t *testing.T) {
	events := make([]domain.Event, 45)
	for i := range events {
		events[i] = discoverable(
			"e"+string(rune('A'+i/26))+string(rune('a'+i%26)),
			"Show", "Austin",
			timePtr(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i)*time.Hour)),
		)
	}
	repo := &MockDiscoverRepo{
		RecentFunc: func(ctx context.Context, limit int) ([]domain.Event, error) {
			return events, nil
		},
	}
	svc := NewDiscoverService(repo, nil, newTestRNG())

	result, err := svc.Search(context.Background(), domain.SearchParams{Page: 3, Limit: 20})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if len(result.Events) != 5 {
		t.Errorf("page 3 has %d events, want the 5 leftover", len(result.Events))
	}
	p := result.Pagination
	if p.Total != 45 || p.TotalPages != 3 || !p.HasPrevPage || p.HasNextPage {
		t.Errorf("unexpected pagination: %+v", p)
	}
}

func TestDiscoverSearch_EmptyResultIsNotAnError(t *testing.T) {
	repo := &MockDiscoverRepo{}
	svc := NewDiscoverService(repo, nil, newTestRNG())

	result, err := svc.Search(context.Background(), domain.SearchParams{City: "Nowhere"})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(result.Events) != 0 || result.Pagination.Total != 0 {
		t.Errorf("want empty result, got %+v", result)
	}
	if result.Pagination.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1 for an empty set", result.Pagination.TotalPages)
	}
}

func TestDiscoverRandom_UniformPick(t *testing.T) {
	pool := []domain.Event{
		discoverable("a", "A", "Austin", nil),
		discoverable("b", "B", "Austin", nil),
		discoverable("c", "C", "Austin", nil),
	}
	repo := &MockDiscoverRepo{
		RecentFunc: func(ctx context.Context, limit int) ([]domain.Event, error) {
			return pool, nil
		},
	}
	svc := NewDiscoverService(repo, nil, newTestRNG())

	counts := map[string]int{}
	for i := 0; i < 300; i++ {
		event, err := svc.Random(context.Background(), domain.SearchParams{})
		if err != nil {
			t.Fatalf("Random() error: %v", err)
		}
		counts[event.ID]++
	}

	for _, id := range []string{"a", "b", "c"} {
		if counts[id] == 0 {
			t.Errorf("event %q never picked in 300 draws", id)
		}
	}
}

func TestDiscoverRandom_EmptyPool(t *testing.T) {
	repo := &MockDiscoverRepo{}
	svc := NewDiscoverService(repo, nil, newTestRNG())

	event, err := svc.Random(context.Background(), domain.SearchParams{})
	if err != nil {
		t.Fatalf("Random() error: %v", err)
	}
	if event != nil {
		t.Errorf("want nil pick from empty pool, got %+v", event)
	}
}

func TestDiscoverGetEvent_HidesNonDiscoverable(t *testing.T) {
	repo := &MockDiscoverRepo{
		GetFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			return &domain.Event{ID: id, IsDiscoverable: false}, nil
		},
	}
	svc := NewDiscoverService(repo, nil, newTestRNG())

	_, err := svc.GetEvent(context.Background(), "hidden")
	if _, ok := err.(*domain.NotFoundError); !ok {
		t.Errorf("want NotFoundError for hidden event, got %v", err)
	}
}

func TestFilterEvents(t *testing.T) {
	start := timePtr(time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC))
	events := []domain.Event{
		{ID: "1", Title: "Jazz Night", City: "Austin", Region: "TX", Categories: []string{"Music"}, StartAt: start, IsDiscoverable: true},
		{ID: "2", Title: "Hidden", City: "Austin", IsDiscoverable: false},
		{ID: "3", Title: "Ballet", City: "Dallas", Categories: []string{"Arts & Theater"}, StartAt: start, IsDiscoverable: true},
	}

	t.Run("Visibility", func(t *testing.T) {
		got := filterEvents(events, domain.SearchParams{})
		if len(got) != 2 {
			t.Fatalf("got %d events, want 2 visible", len(got))
		}
	})

	t.Run("CityCaseInsensitive", func(t *testing.T) {
		got := filterEvents(events, domain.SearchParams{City: "austin"})
		if len(got) != 1 || got[0].ID != "1" {
			t.Fatalf("city filter got %+v", got)
		}
	})

	t.Run("CategoryExact", func(t *testing.T) {
		got := filterEvents(events, domain.SearchParams{Category: "music"})
		if len(got) != 1 || got[0].ID != "1" {
			t.Fatalf("category filter got %+v", got)
		}
	})

	t.Run("QuerySubstring", func(t *testing.T) {
		got := filterEvents(events, domain.SearchParams{Query: "jazz"})
		if len(got) != 1 || got[0].ID != "1" {
			t.Fatalf("query filter got %+v", got)
		}
	})

	t.Run("DateWindowInclusive", func(t *testing.T) {
		got := filterEvents(events, domain.SearchParams{From: start, To: start})
		if len(got) != 2 {
			t.Fatalf("inclusive window got %d events, want 2", len(got))
		}
	})

	t.Run("DateWindowExcludes", func(t *testing.T) {
		after := timePtr(start.Add(24 * time.Hour))
		got := filterEvents(events, domain.SearchParams{From: after})
		if len(got) != 0 {
			t.Fatalf("window should exclude all, got %d", len(got))
		}
	})
}

func TestDedupeByID_Idempotent(t *testing.T) {
	events := []domain.Event{
		{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "c"}, {ID: "b"},
	}

	once := dedupeByID(events)
	twice := dedupeByID(once)

	if len(once) != 3 {
		t.Fatalf("dedupe kept %d, want 3", len(once))
	}
	if len(twice) != len(once) {
		t.Fatalf("dedupe not idempotent: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("order changed on second pass at %d", i)
		}
	}
}

func TestClampParams(t *testing.T) {
	got := clampParams(domain.SearchParams{Page: -2, Limit: 9999})
	if got.Page != 1 || got.Limit != maxPageLimit {
		t.Errorf("clampParams = page %d limit %d", got.Page, got.Limit)
	}

	got = clampParams(domain.SearchParams{Random: true, Limit: 9999})
	if got.Limit != maxPoolLimit {
		t.Errorf("random pool limit = %d, want %d", got.Limit, maxPoolLimit)
	}

	got = clampParams(domain.SearchParams{})
	if got.Limit != defaultPageLimit {
		t.Errorf("default limit = %d, want %d", got.Limit, defaultPageLimit)
	}
}
