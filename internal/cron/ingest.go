package cron

import (
	"context"
	"log"
	"strings"
	"time"

	"eventease/backend/internal/budget"
	"eventease/backend/internal/metrics"
	"eventease/backend/internal/repository"
	"eventease/backend/internal/source"

	"golang.org/x/time/rate"
)

// targetCities is sized so that, at two passes per day and two fetches per
// city per day, a 250-search monthly budget is fully used without going
// over. Raising the budget allows a longer list.
var targetCities = []string{
	"New York, NY",
	"Los Angeles, CA",
	"Chicago, IL",
	"Miami, FL",
	"San Francisco, CA",
	"Austin, TX",
	"Las Vegas, NV",
	"London, UK",
}

// IngestSummary reports what one ingestion pass did.
type IngestSummary struct {
	CitiesFetched int `json:"citiesFetched"`
	EventsSaved   int `json:"eventsSaved"`
	BudgetUsed    int `json:"budgetUsed"`
	BudgetCap     int `json:"budgetCap"`
}

// Ingestor pulls Google Events results for each target city and upserts
// them into the discover collection, gated by the API budget.
type Ingestor struct {
	events  source.EventSource
	repo    repository.DiscoverRepository
	budget  *budget.Tracker
	limiter *rate.Limiter
	cities  []string
	now     func() time.Time
}

func NewIngestor(events source.EventSource, repo repository.DiscoverRepository, tracker *budget.Tracker) *Ingestor {
	return &Ingestor{
		events: events,
		repo:   repo,
		budget: tracker,
		// polite pacing between upstream calls
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		cities:  targetCities,
		now:     time.Now,
	}
}

func (ing *Ingestor) Name() string { return "event-ingest" }

// Run executes one pass over the target cities. Per-city failures are
// absorbed by the fail-open source adapter; the pass continues.
func (ing *Ingestor) Run(ctx context.Context) error {
	_, err := ing.RunPass(ctx)
	return err
}

// RunPass is Run with the summary exposed, for the admin refresh endpoint.
func (ing *Ingestor) RunPass(ctx context.Context) (IngestSummary, error) {
	summary := IngestSummary{}
	summary.BudgetUsed, summary.BudgetCap = ing.budget.Usage()

	if !ing.events.Enabled() {
		log.Printf("[cron] event-ingest: source %s not configured, skipping", ing.events.Name())
		return summary, nil
	}
	if ing.budget.Exhausted() {
		log.Printf("[cron] event-ingest: monthly budget exhausted (%d/%d)", summary.BudgetUsed, summary.BudgetCap)
		metrics.BudgetSkips.Inc()
		return summary, nil
	}

	for _, city := range ing.cities {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if ing.budget.Exhausted() {
			metrics.BudgetSkips.Inc()
			break
		}
		if !ing.budget.CanFetch(city) {
			metrics.BudgetSkips.Inc()
			continue
		}

		if err := ing.limiter.Wait(ctx); err != nil {
			return summary, err
		}

		events := ing.events.FetchEvents(ctx, source.Query{City: city})
		ing.budget.RecordFetch(city)
		metrics.ProviderCalls.WithLabelValues(ing.events.Name()).Inc()
		summary.CitiesFetched++

		if len(events) == 0 {
			continue
		}

		// Provider addresses are noisy; pin every event to the city it
		// was fetched for.
		cityName := strings.TrimSpace(strings.Split(city, ",")[0])
		for i := range events {
			events[i].City = cityName
		}

		saved, err := ing.repo.UpsertBatch(ctx, events)
		if err != nil {
			log.Printf("[cron] event-ingest: upsert for %s failed: %v", city, err)
			continue
		}
		summary.EventsSaved += saved
		log.Printf("[cron] event-ingest: saved %d events for %s", saved, city)
	}

	summary.BudgetUsed, summary.BudgetCap = ing.budget.Usage()
	log.Printf("[cron] event-ingest: pass complete, cities=%d saved=%d budget=%d/%d",
		summary.CitiesFetched, summary.EventsSaved, summary.BudgetUsed, summary.BudgetCap)
	return summary, nil
}
