package source

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventease/backend/internal/domain"
)

const seatgeekBaseURL = "https://api.seatgeek.com/2/events"

// seatgeekCategories maps the SeatGeek taxonomy onto the canonical category
// set. Unmapped taxonomy slugs fall back to the raw provider string.
var seatgeekCategories = map[string]string{
	"concert":                   "Music",
	"music_festival":            "Music",
	"classical":                 "Music",
	"classical_opera":           "Music",
	"concerts":                  "Music",
	"sports":                    "Sports",
	"nba":                       "Sports",
	"nfl":                       "Sports",
	"mlb":                       "Sports",
	"nhl":                       "Sports",
	"mls":                       "Sports",
	"soccer":                    "Sports",
	"theater":                   "Arts & Theater",
	"broadway_tickets_national": "Arts & Theater",
	"dance_performance_tour":    "Arts & Theater",
	"comedy":                    "Comedy",
	"family":                    "Family",
	"circus":                    "Family",
}

// SeatGeekClient fetches and normalizes events from the SeatGeek API.
type SeatGeekClient struct {
	clientID string
	baseURL  string
	client   *http.Client
	now      func() time.Time
}

func NewSeatGeekClient(clientID string) *SeatGeekClient {
	return &SeatGeekClient{
		clientID: clientID,
		baseURL:  seatgeekBaseURL,
		client:   newHTTPClient(),
		now:      time.Now,
	}
}

func (c *SeatGeekClient) Name() string { return "seatgeek" }

func (c *SeatGeekClient) Enabled() bool { return c.clientID != "" }

type seatgeekResponse struct {
	Events []seatgeekEvent `json:"events"`
}

type seatgeekEvent struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ShortTitle  string `json:"short_title"`
	Type        string `json:"type"`
	DatetimeUTC string `json:"datetime_utc"`
	URL         string `json:"url"`
	Venue       struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"venue"`
	Performers []struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	} `json:"performers"`
	Stats struct {
		LowestPrice  *float64 `json:"lowest_price"`
		HighestPrice *float64 `json:"highest_price"`
	} `json:"stats"`
}

// FetchEvents queries SeatGeek sorted by popularity score. Any failure is
// logged and returns an empty batch.
func (c *SeatGeekClient) FetchEvents(ctx context.Context, q Query) []domain.Event {
	if !c.Enabled() {
		log.Println("[seatgeek] client id not set, skipping search")
		return nil
	}

	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("sort", "score.desc")
	params.Set("per_page", "20")
	if q.Keyword != "" {
		params.Set("q", q.Keyword)
	}
	if q.City != "" {
		params.Set("venue.city", q.City)
	}

	var resp seatgeekResponse
	if err := getJSON(ctx, c.client, c.baseURL+"?"+params.Encode(), &resp); err != nil {
		log.Printf("[seatgeek] fetch failed: %v", err)
		return nil
	}

	events := make([]domain.Event, 0, len(resp.Events))
	for _, sg := range resp.Events {
		if sg.URL == "" {
			// No usable link means no stable ID can be derived.
			continue
		}
		events = append(events, c.mapEvent(sg))
	}
	return events
}

func (c *SeatGeekClient) mapEvent(sg seatgeekEvent) domain.Event {
	now := c.now().UTC()

	title := sg.ShortTitle
	if title == "" {
		title = sg.Title
	}

	var startAt *time.Time
	guessed := false
	if t, err := time.Parse("2006-01-02T15:04:05", sg.DatetimeUTC); err == nil {
		utc := t.UTC()
		startAt = &utc
	} else {
		startAt = &now
		guessed = true
	}

	var imageURL string
	for _, p := range sg.Performers {
		if p.Image != "" {
			imageURL = UpgradeImageURL(p.Image)
			break
		}
	}

	var ticketPrice string
	if sg.Stats.LowestPrice != nil {
		ticketPrice = fmt.Sprintf("$%.0f", *sg.Stats.LowestPrice)
	}

	e := domain.Event{
		ID:             "sg-" + strconv.FormatInt(sg.ID, 10),
		Source:         domain.SourceSeatGeek,
		Title:          title,
		StartAt:        startAt,
		StartAtGuessed: guessed,
		VenueName:      orDefault(sg.Venue.Name, "Unknown Venue"),
		Address:        sg.Venue.Address,
		City:           sg.Venue.City,
		Region:         sg.Venue.State,
		Country:        sg.Venue.Country,
		Categories:     mapCategories([]string{sg.Type}, seatgeekCategories),
		ImageURL:       imageURL,
		TicketURL:      sg.URL,
		TicketPrice:    ticketPrice,
		SourceURL:      sg.URL,
		SourcePlatform: "seatgeek",
		ExternalID:     sg.URL,
		IsDiscoverable: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	e.Description = c.synthesizeDescription(sg, e)
	return e
}

// synthesizeDescription builds a short promotional paragraph for sources
// that do not ship rich descriptions in list results.
func (c *SeatGeekClient) synthesizeDescription(sg seatgeekEvent, e domain.Event) string {
	var parts []string

	names := make([]string, 0, len(sg.Performers))
	for _, p := range sg.Performers {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) > 0 {
		parts = append(parts, "See "+strings.Join(names, ", ")+" live")
	} else {
		parts = append(parts, e.Title)
	}

	where := e.VenueName
	if e.City != "" {
		where += " in " + e.City
	}
	parts[0] += " at " + where + "."

	if e.TicketPrice != "" {
		parts = append(parts, "Tickets from "+e.TicketPrice+".")
	}
	parts = append(parts, "More info: "+e.SourceURL)

	return strings.Join(parts, " ")
}

// mapCategories translates provider categories through a lookup table,
// keeping unmapped slugs verbatim and deduplicating the result.
func mapCategories(raw []string, table map[string]string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r == "" {
			continue
		}
		mapped, ok := table[strings.ToLower(r)]
		if !ok {
			mapped = r
		}
		if seen[mapped] {
			continue
		}
		seen[mapped] = true
		out = append(out, mapped)
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
