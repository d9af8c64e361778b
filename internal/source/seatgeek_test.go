package source

import (
	"strings"
	"testing"
	"time"
)

func testSeatGeekEvent() seatgeekEvent {
	sg := seatgeekEvent{
		ID:          8675309,
		Title:       "The National with Special Guests at Moody Center",
		ShortTitle:  "The National",
		Type:        "concert",
		DatetimeUTC: "2025-09-12T01:30:00",
		URL:         "https://seatgeek.com/the-national-tickets/8675309",
	}
	sg.Venue.Name = "Moody Center"
	sg.Venue.City = "Austin"
	sg.Venue.State = "TX"
	sg.Venue.Country = "US"
	sg.Performers = []struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	}{
		{Name: "The National", Image: "https://seatgeek.com/images/performers/1/small.jpg"},
	}
	lowest := 54.0
	sg.Stats.LowestPrice = &lowest
	return sg
}

func TestSeatGeekMapEvent(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c := &SeatGeekClient{clientID: "test", now: func() time.Time { return now }}

	got := c.mapEvent(testSeatGeekEvent())

	if got.ID != "sg-8675309" {
		t.Errorf("ID = %q, want sg-8675309", got.ID)
	}
	if got.Source != "seatgeek" {
		t.Errorf("Source = %q", got.Source)
	}
	if got.Title != "The National" {
		t.Errorf("Title = %q, want the short title", got.Title)
	}
	if got.StartAt == nil || got.StartAt.Day() != 12 {
		t.Errorf("StartAt = %v", got.StartAt)
	}
	if got.StartAtGuessed {
		t.Error("guessed flag set for a parsable datetime")
	}
	if len(got.Categories) != 1 || got.Categories[0] != "Music" {
		t.Errorf("Categories = %v, want [Music]", got.Categories)
	}
	if got.TicketPrice != "$54" {
		t.Errorf("TicketPrice = %q, want $54", got.TicketPrice)
	}
	if !strings.Contains(got.ImageURL, "huge.jpg") {
		t.Errorf("ImageURL = %q, want upgraded rendition", got.ImageURL)
	}
	if !strings.Contains(got.Description, "See The National live at Moody Center in Austin.") {
		t.Errorf("Description = %q", got.Description)
	}
	if !strings.Contains(got.Description, "Tickets from $54.") {
		t.Errorf("Description missing price: %q", got.Description)
	}
}

func TestSeatGeekMapEvent_BadDateGuesses(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c := &SeatGeekClient{clientID: "test", now: func() time.Time { return now }}

	sg := testSeatGeekEvent()
	sg.DatetimeUTC = "TBD"

	got := c.mapEvent(sg)
	if !got.StartAtGuessed {
		t.Error("unparsable datetime should set the guessed flag")
	}
	if got.StartAt == nil || !got.StartAt.Equal(now) {
		t.Errorf("StartAt = %v, want fetch time", got.StartAt)
	}
}

func TestMapCategories(t *testing.T) {
	got := mapCategories([]string{"concert", "nba", "underwater_polo", "concerts", ""}, seatgeekCategories)

	want := []string{"Music", "Sports", "underwater_polo"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
