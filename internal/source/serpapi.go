package source

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eventease/backend/internal/domain"
)

const serpAPIBaseURL = "https://serpapi.com/search.json"

// GoogleEventIDPrefix namespaces discover documents ingested from Google
// Events results.
const GoogleEventIDPrefix = "google_"

// SerpAPIClient fetches and normalizes Google Events results via SerpApi.
type SerpAPIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewSerpAPIClient(apiKey string) *SerpAPIClient {
	return &SerpAPIClient{
		apiKey:  apiKey,
		baseURL: serpAPIBaseURL,
		client:  newHTTPClient(),
		now:     time.Now,
	}
}

func (c *SerpAPIClient) Name() string { return "google_events" }

func (c *SerpAPIClient) Enabled() bool { return c.apiKey != "" }

type serpAPIResponse struct {
	EventsResults []serpAPIEvent `json:"events_results"`
}

type serpAPIEvent struct {
	Title string `json:"title"`
	Date  struct {
		StartDate string `json:"start_date"`
		When      string `json:"when"`
	} `json:"date"`
	Address     []string `json:"address"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	Venue       struct {
		Name string `json:"name"`
	} `json:"venue"`
	Thumbnail  string `json:"thumbnail"`
	Image      string `json:"image"`
	TicketInfo []struct {
		Source string `json:"source"`
		Link   string `json:"link"`
		Price  string `json:"price"`
	} `json:"ticket_info"`
}

// FetchEvents runs a Google Events search. Any failure is logged and
// returns an empty batch.
func (c *SerpAPIClient) FetchEvents(ctx context.Context, q Query) []domain.Event {
	if !c.Enabled() {
		log.Println("[serpapi] api key not set, skipping search")
		return nil
	}

	query := buildEventsQuery(q)
	if query == "" {
		return nil
	}

	params := url.Values{}
	params.Set("engine", "google_events")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("hl", "en")
	params.Set("gl", "us")

	var resp serpAPIResponse
	if err := getJSON(ctx, c.client, c.baseURL+"?"+params.Encode(), &resp); err != nil {
		log.Printf("[serpapi] fetch failed for %q: %v", query, err)
		return nil
	}
	if len(resp.EventsResults) == 0 {
		log.Printf("[serpapi] no events for query %q", query)
		return nil
	}

	events := make([]domain.Event, 0, len(resp.EventsResults))
	for _, ev := range resp.EventsResults {
		if ev.Link == "" {
			continue
		}
		events = append(events, c.mapEvent(ev))
	}
	return events
}

func buildEventsQuery(q Query) string {
	switch {
	case q.Keyword != "" && q.City != "":
		return q.Keyword + " in " + q.City
	case q.Keyword != "":
		return q.Keyword
	case q.City != "":
		return "Events in " + q.City
	default:
		return ""
	}
}

func (c *SerpAPIClient) mapEvent(ev serpAPIEvent) domain.Event {
	now := c.now().UTC()

	startAt, guessed := parseEventDate(ev.Date.StartDate, ev.Date.When, now)

	imageURL := ev.Thumbnail
	if ev.Image != "" {
		imageURL = ev.Image
	}
	imageURL = UpgradeImageURL(imageURL)

	var ticketPrice string
	ticketURL := ev.Link
	if len(ev.TicketInfo) > 0 {
		ticketURL = ev.TicketInfo[0].Link
		for _, t := range ev.TicketInfo {
			if t.Price != "" {
				ticketPrice = t.Price
				break
			}
		}
	}

	fullAddress := strings.Join(ev.Address, ", ")
	city := ""
	if len(ev.Address) > 1 {
		city = strings.TrimSpace(strings.SplitN(ev.Address[1], ",", 2)[0])
	}

	venueName := orDefault(ev.Venue.Name, "Unknown Venue")
	description := ev.Description
	if description == "" {
		description = ev.Title + " at " + venueName
	}

	return domain.Event{
		ID:             ExternalEventID(GoogleEventIDPrefix, ev.Link),
		Source:         domain.SourceGoogleEvents,
		Title:          ev.Title,
		Description:    description,
		StartAt:        &startAt,
		StartAtGuessed: guessed,
		VenueName:      venueName,
		Address:        fullAddress,
		City:           city,
		Country:        "US",
		Categories:     []string{"Events"},
		ImageURL:       imageURL,
		TicketURL:      ticketURL,
		TicketPrice:    ticketPrice,
		SourceURL:      ev.Link,
		SourcePlatform: "google_events",
		ExternalID:     ev.Link,
		IsDiscoverable: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// eventDateLayouts are tried in order against provider date strings with
// the current year appended when missing.
var eventDateLayouts = []string{
	"Jan 2 2006",
	"Jan 2, 2006",
	"Mon, Jan 2 2006",
	"Mon, Jan 2, 2006",
	"Jan 2, 3:04 PM 2006",
	"Mon, Jan 2, 3:04 PM 2006",
	"January 2 2006",
	time.RFC3339,
}

// parseEventDate parses the loose date strings Google Events returns
// ("Dec 7", "Fri, Dec 8", "Dec 2, 9:00 PM"). The current year is assumed
// when absent. If nothing parses, the fetch time is returned with
// guessed=true so the aggregation sort can demote the event.
func parseEventDate(startDate, when string, now time.Time) (time.Time, bool) {
	year := now.Format("2006")

	for _, raw := range []string{startDate, firstDateSegment(when)} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		candidate := raw
		if !strings.Contains(candidate, year) {
			candidate = candidate + " " + year
		}
		for _, layout := range eventDateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.UTC(), false
			}
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), false
			}
		}
	}
	return now, true
}

// firstDateSegment strips the range tail from a "when" string like
// "Dec 2, 9:00 PM – Dec 3, 1:00 AM".
func firstDateSegment(when string) string {
	for _, sep := range []string{"–", " - "} {
		if i := strings.Index(when, sep); i >= 0 {
			return strings.TrimSpace(when[:i])
		}
	}
	return when
}
