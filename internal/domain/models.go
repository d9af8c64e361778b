package domain

import (
	"time"
)

// Event sources. External events carry a source prefix in their ID so the
// same document can be upserted on every refresh without colliding with
// store-assigned internal IDs.
const (
	SourceInternal     = "internal"
	SourceSeatGeek     = "seatgeek"
	SourceGoogleEvents = "google_events"
)

// Event is the canonical, source-agnostic event shape. Internal events are
// user-owned documents in the "events" collection; externally sourced events
// live in "discoverEvents" keyed by a content hash of their source URL.
type Event struct {
	ID          string `json:"id" firestore:"id"`
	UserID      string `json:"userId,omitempty" firestore:"userId,omitempty"`
	Source      string `json:"source" firestore:"source"`
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`

	StartAt *time.Time `json:"startAt" firestore:"startAt"`
	EndAt   *time.Time `json:"endAt" firestore:"endAt"`
	// StartAtGuessed marks events whose provider date could not be parsed
	// and was substituted with the fetch time. Guessed dates sort after
	// real ones.
	StartAtGuessed bool `json:"-" firestore:"startAtGuessed,omitempty"`

	VenueName string   `json:"venueName" firestore:"venueName"`
	Address   string   `json:"address" firestore:"address"`
	City      string   `json:"city" firestore:"city"`
	Region    string   `json:"region" firestore:"region"`
	Country   string   `json:"country" firestore:"country"`
	Latitude  *float64 `json:"latitude" firestore:"latitude"`
	Longitude *float64 `json:"longitude" firestore:"longitude"`

	Categories []string `json:"categories" firestore:"categories"`

	ImageURL       string `json:"imageUrl" firestore:"imageUrl"`
	TicketURL      string `json:"ticketUrl" firestore:"ticketUrl"`
	TicketPrice    string `json:"ticketPrice" firestore:"ticketPrice"`
	SourceURL      string `json:"sourceUrl" firestore:"sourceUrl"`
	SourcePlatform string `json:"sourcePlatform" firestore:"sourcePlatform"`
	ExternalID     string `json:"externalId,omitempty" firestore:"externalId,omitempty"`

	IsDiscoverable bool `json:"isDiscoverable" firestore:"isDiscoverable"`

	// Engagement counters are internal-only and mutated exclusively through
	// transactional increments; external refreshes must never overwrite them.
	SaveCount    int64 `json:"saveCount" firestore:"saveCount"`
	ShareCount   int64 `json:"shareCount" firestore:"shareCount"`
	CommentCount int64 `json:"commentCount" firestore:"commentCount"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// SearchParams carries the discovery query surface. Zero values mean
// "no filter".
type SearchParams struct {
	Query    string
	Category string
	City     string
	Region   string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
	Random   bool
}

// Pagination mirrors the wire shape returned alongside every event list.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// SearchResult is the aggregation output: one page of events plus the
// pagination envelope computed over the full filtered set.
type SearchResult struct {
	Events     []Event    `json:"events"`
	Pagination Pagination `json:"pagination"`
}

// NewPagination computes the envelope for a filtered total. A total of zero
// still yields one (empty) page.
func NewPagination(page, limit, total int) Pagination {
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
