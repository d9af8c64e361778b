package source

import (
	"testing"
	"time"
)

func TestParseEventDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		startDate string
		when      string
		wantMonth time.Month
		wantDay   int
		wantGuess bool
	}{
		{
			name:      "PlainMonthDay",
			startDate: "Dec 7",
			wantMonth: time.December,
			wantDay:   7,
		},
		{
			name:      "WeekdayPrefix",
			startDate: "",
			when:      "Fri, Dec 8",
			wantMonth: time.December,
			wantDay:   8,
		},
		{
			name:      "WhenWithRange",
			startDate: "",
			when:      "Dec 2, 9:00 PM – Dec 3, 1:00 AM",
			wantMonth: time.December,
			wantDay:   2,
		},
		{
			name:      "StartDatePreferred",
			startDate: "Jul 4",
			when:      "Aug 1",
			wantMonth: time.July,
			wantDay:   4,
		},
		{
			name:      "Unparsable",
			startDate: "sometime soon",
			when:      "who knows",
			wantGuess: true,
		},
		{
			name:      "Empty",
			wantGuess: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, guessed := parseEventDate(tt.startDate, firstDateSegment(tt.when), now)

			if guessed != tt.wantGuess {
				t.Fatalf("guessed = %v, want %v", guessed, tt.wantGuess)
			}
			if tt.wantGuess {
				if !got.Equal(now) {
					t.Errorf("guessed date = %v, want fetch time %v", got, now)
				}
				return
			}
			if got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("parsed %v, want month=%v day=%d", got, tt.wantMonth, tt.wantDay)
			}
			if got.Year() != now.Year() {
				t.Errorf("parsed year %d, want current year %d", got.Year(), now.Year())
			}
		})
	}
}

func TestBuildEventsQuery(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"KeywordAndCity", Query{Keyword: "jazz", City: "Austin, TX"}, "jazz in Austin, TX"},
		{"KeywordOnly", Query{Keyword: "jazz"}, "jazz"},
		{"CityOnly", Query{City: "Austin, TX"}, "Events in Austin, TX"},
		{"Neither", Query{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildEventsQuery(tt.q); got != tt.want {
				t.Errorf("buildEventsQuery(%+v) = %q, want %q", tt.q, got, tt.want)
			}
		})
	}
}

func TestSerpAPIMapEvent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c := &SerpAPIClient{now: func() time.Time { return now }}

	ev := serpAPIEvent{
		Title: "Summer Jazz Night",
		Link:  "https://example.com/jazz-night",
	}
	ev.Date.StartDate = "Jul 4"
	ev.Address = []string{"Blue Note, 131 W 3rd St", "New York, NY"}
	ev.Venue.Name = "Blue Note"

	got := c.mapEvent(ev)

	if got.ID != ExternalEventID(GoogleEventIDPrefix, ev.Link) {
		t.Errorf("ID = %q, want md5-derived google id", got.ID)
	}
	if got.Source != "google_events" {
		t.Errorf("Source = %q, want google_events", got.Source)
	}
	if got.City != "New York" {
		t.Errorf("City = %q, want New York", got.City)
	}
	if got.StartAt == nil || got.StartAt.Month() != time.July || got.StartAt.Day() != 4 {
		t.Errorf("StartAt = %v, want July 4", got.StartAt)
	}
	if got.StartAtGuessed {
		t.Error("StartAtGuessed should be false for a parsable date")
	}
	if got.Description != "Summer Jazz Night at Blue Note" {
		t.Errorf("Description = %q", got.Description)
	}
	if !got.IsDiscoverable {
		t.Error("mapped external events must be discoverable")
	}
}
