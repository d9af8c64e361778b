package source

import (
	"strings"
	"testing"
)

func TestUpgradeImageURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "Empty",
			in:   "",
			want: "",
		},
		{
			name: "GoogleUserContent_SizeSuffix",
			in:   "https://lh3.googleusercontent.com/abc=s300",
			want: "https://lh3.googleusercontent.com/abc=s1200",
		},
		{
			name: "GoogleUserContent_CroppedSuffix",
			in:   "https://lh3.googleusercontent.com/abc=s96-c",
			want: "https://lh3.googleusercontent.com/abc=s1200",
		},
		{
			name: "GoogleThumbnail_NoSuffix",
			in:   "https://encrypted-tbn0.gstatic.com/images?q=tbn:abc",
			want: "https://encrypted-tbn0.gstatic.com/images?q=tbn:abc",
		},
		{
			name: "SeatGeek_SmallRendition",
			in:   "https://seatgeek.com/images/performers/12345/small.jpg",
			want: "https://seatgeek.com/images/performers/12345/huge.jpg",
		},
		{
			name: "SeatGeek_AlreadyHuge",
			in:   "https://seatgeek.com/images/performers/12345/huge.jpg",
			want: "https://seatgeek.com/images/performers/12345/huge.jpg",
		},
		{
			name: "UnknownHost_Unchanged",
			in:   "https://example.com/poster.png?w=100",
			want: "https://example.com/poster.png?w=100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpgradeImageURL(tt.in); got != tt.want {
				t.Errorf("UpgradeImageURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUpgradeImageURL_Ticketmaster(t *testing.T) {
	got := UpgradeImageURL("https://s1.ticketm.net/dam/a/abc.jpg?w=205&h=115")

	for _, want := range []string{"width=1024", "height=576", "fit=crop"} {
		if !strings.Contains(got, want) {
			t.Errorf("upgraded URL missing %q: %s", want, got)
		}
	}
	for _, banned := range []string{"w=205", "h=115"} {
		if strings.Contains(got, banned) {
			t.Errorf("upgraded URL still carries legacy param %q: %s", banned, got)
		}
	}
}

func TestUpgradeImageURL_Eventbrite(t *testing.T) {
	got := UpgradeImageURL("https://img.evbuc.com/https%3A%2F%2Fcdn.example%2Fimg.jpg?w=200&h=100")

	if !strings.Contains(got, "w=1080") || !strings.Contains(got, "h=540") {
		t.Errorf("upgraded URL missing target dimensions: %s", got)
	}
}

func TestUpgradeImageURL_MalformedURL(t *testing.T) {
	// A ticketmaster URL that fails parsing must pass through unchanged.
	in := "https://ticketmaster.com/%zz"
	if got := UpgradeImageURL(in); got != in {
		t.Errorf("malformed URL changed: %q -> %q", in, got)
	}
}
