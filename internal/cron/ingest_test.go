package cron

import (
	"context"
	"testing"
	"time"

	"eventease/backend/internal/budget"
	"eventease/backend/internal/domain"
	"eventease/backend/internal/source"

	"golang.org/x/time/rate"
)

type stubSource struct {
	name    string
	on      bool
	fetched []source.Query
	events  []domain.Event
}

func (s *stubSource) Name() string  { return s.name }
func (s *stubSource) Enabled() bool { return s.on }
func (s *stubSource) FetchEvents(ctx context.Context, q source.Query) []domain.Event {
	s.fetched = append(s.fetched, q)
	// Real sources build a fresh slice per call; return a copy so the
	// ingestor's in-place city pinning does not alias across fetches.
	return append([]domain.Event(nil), s.events...)
}

type stubDiscoverRepo struct {
	upserted [][]domain.Event
	venues   []domain.Event
}

func (r *stubDiscoverRepo) RecentDiscoverable(ctx context.Context, limit int) ([]domain.Event, error) {
	return nil, nil
}
func (r *stubDiscoverRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return nil, domain.ErrNotFound("event not found")
}
func (r *stubDiscoverRepo) UpsertBatch(ctx context.Context, events []domain.Event) (int, error) {
	r.upserted = append(r.upserted, events)
	return len(events), nil
}
func (r *stubDiscoverRepo) WithVenues(ctx context.Context, limit int) ([]domain.Event, error) {
	return r.venues, nil
}

func newTestIngestor(src source.EventSource, repo *stubDiscoverRepo, tracker *budget.Tracker, cities []string) *Ingestor {
	ing := NewIngestor(src, repo, tracker)
	ing.cities = cities
	ing.limiter = rate.NewLimiter(rate.Inf, 1)
	return ing
}

func TestIngestRunPass_UpsertsPerCity(t *testing.T) {
	src := &stubSource{
		name: "google_events",
		on:   true,
		events: []domain.Event{
			{ID: "google_1", SourceURL: "https://x/1", City: "somewhere"},
			{ID: "google_2", SourceURL: "https://x/2"},
		},
	}
	repo := &stubDiscoverRepo{}
	tracker := budget.New(250, nil)

	ing := newTestIngestor(src, repo, tracker, []string{"Austin, TX", "Miami, FL"})

	summary, err := ing.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass() error: %v", err)
	}

	if summary.CitiesFetched != 2 {
		t.Errorf("CitiesFetched = %d, want 2", summary.CitiesFetched)
	}
	if summary.EventsSaved != 4 {
		t.Errorf("EventsSaved = %d, want 4", summary.EventsSaved)
	}
	if len(repo.upserted) != 2 {
		t.Fatalf("UpsertBatch called %d times, want 2", len(repo.upserted))
	}

	// Every event is pinned to the fetched city, without the state suffix.
	for _, e := range repo.upserted[0] {
		if e.City != "Austin" {
			t.Errorf("event city = %q, want Austin", e.City)
		}
	}
	for _, e := range repo.upserted[1] {
		if e.City != "Miami" {
			t.Errorf("event city = %q, want Miami", e.City)
		}
	}
}

func TestIngestRunPass_RespectsDailyCap(t *testing.T) {
	src := &stubSource{name: "google_events", on: true, events: []domain.Event{{ID: "g"}}}
	repo := &stubDiscoverRepo{}
	tracker := budget.New(250, nil)

	ing := newTestIngestor(src, repo, tracker, []string{"Austin, TX"})

	for i := 0; i < 3; i++ {
		if _, err := ing.RunPass(context.Background()); err != nil {
			t.Fatalf("RunPass() error: %v", err)
		}
	}

	// Two passes fetch, the third finds the city at its daily cap.
	if len(src.fetched) != 2 {
		t.Errorf("source fetched %d times, want 2 (daily cap)", len(src.fetched))
	}
}

func TestIngestRunPass_StopsWhenBudgetExhausted(t *testing.T) {
	src := &stubSource{name: "google_events", on: true, events: []domain.Event{{ID: "g"}}}
	repo := &stubDiscoverRepo{}
	tracker := budget.New(1, nil)

	ing := newTestIngestor(src, repo, tracker, []string{"A", "B", "C"})

	summary, err := ing.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass() error: %v", err)
	}

	if summary.CitiesFetched != 1 {
		t.Errorf("CitiesFetched = %d, want 1 under a budget of 1", summary.CitiesFetched)
	}
	if used, cap := tracker.Usage(); used != cap {
		t.Errorf("Usage() = (%d, %d), want exhausted", used, cap)
	}
}

func TestIngestRunPass_DisabledSourceSkips(t *testing.T) {
	src := &stubSource{name: "google_events", on: false}
	repo := &stubDiscoverRepo{}

	ing := newTestIngestor(src, repo, budget.New(250, nil), []string{"Austin, TX"})

	summary, err := ing.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass() error: %v", err)
	}
	if summary.CitiesFetched != 0 || len(src.fetched) != 0 {
		t.Errorf("disabled source should not fetch, summary %+v", summary)
	}
}

func TestRunnerUntilNextRun(t *testing.T) {
	r := NewRunner(nil, 6, 18)

	tests := []struct {
		name string
		at   time.Time
		want time.Duration
	}{
		{"BeforeMorning", time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC), 2 * time.Hour},
		{"BetweenRuns", time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC), 10*time.Hour + 30*time.Minute},
		{"AfterEvening", time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC), 11 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.now = func() time.Time { return tt.at }
			if got := r.untilNextRun(); got != tt.want {
				t.Errorf("untilNextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}
