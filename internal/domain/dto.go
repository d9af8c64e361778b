package domain

import "github.com/go-playground/validator/v10"

var Validate = validator.New()

// EventDTO is the inbound body for creating or replacing a user event.
// Timestamps arrive as RFC3339 strings; empty means absent.
type EventDTO struct {
	Title          string   `json:"title" validate:"required"`
	Description    string   `json:"description"`
	StartAt        string   `json:"startAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndAt          string   `json:"endAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	VenueName      string   `json:"venueName"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	Region         string   `json:"region"`
	Country        string   `json:"country"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Categories     []string `json:"categories"`
	ImageURL       string   `json:"imageUrl"`
	TicketURL      string   `json:"ticketUrl"`
	TicketPrice    string   `json:"ticketPrice"`
	SourceURL      string   `json:"sourceUrl"`
	SourcePlatform string   `json:"sourcePlatform"`
	IsDiscoverable bool     `json:"isDiscoverable"`
}

// GeocodeDTO is the inbound body for POST /places/geocode.
type GeocodeDTO struct {
	Address string `json:"address" validate:"required,min=5"`
}

// APIResponse is the standard wrapper for non-list responses.
type APIResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Warning string      `json:"warning,omitempty"`
}
