package domain

import "time"

// Prediction is one autocomplete suggestion, normalized from the Places
// provider payload.
type Prediction struct {
	PlaceID       string   `json:"placeId" firestore:"placeId"`
	Description   string   `json:"description" firestore:"description"`
	MainText      string   `json:"mainText" firestore:"mainText"`
	SecondaryText string   `json:"secondaryText" firestore:"secondaryText"`
	Types         []string `json:"types" firestore:"types"`
}

// PlaceDetails is the normalized detail record for a single place.
type PlaceDetails struct {
	PlaceID          string   `json:"placeId" firestore:"placeId"`
	Name             string   `json:"name" firestore:"name"`
	FormattedAddress string   `json:"formattedAddress" firestore:"formattedAddress"`
	Latitude         float64  `json:"latitude" firestore:"latitude"`
	Longitude        float64  `json:"longitude" firestore:"longitude"`
	Rating           float64  `json:"rating" firestore:"rating"`
	Types            []string `json:"types" firestore:"types"`
	PhotoReferences  []string `json:"photoReferences" firestore:"photoReferences"`
}

// GeocodeResult is a resolved address.
type GeocodeResult struct {
	Latitude         float64 `json:"latitude" firestore:"latitude"`
	Longitude        float64 `json:"longitude" firestore:"longitude"`
	FormattedAddress string  `json:"formattedAddress" firestore:"formattedAddress"`
}

// Venue is a cached event venue with a popularity score derived from how
// many stored events happen there.
type Venue struct {
	ID         string    `json:"id" firestore:"-"`
	Name       string    `json:"name" firestore:"name"`
	City       string    `json:"city" firestore:"city"`
	CityLower  string    `json:"cityLower" firestore:"cityLower"`
	Region     string    `json:"region" firestore:"region"`
	Address    string    `json:"address" firestore:"address"`
	Latitude   *float64  `json:"latitude" firestore:"latitude"`
	Longitude  *float64  `json:"longitude" firestore:"longitude"`
	Popularity int       `json:"popularity" firestore:"popularity"`
	CachedAt   time.Time `json:"cachedAt" firestore:"cachedAt"`
}

// CacheStats summarizes the places cache collections for monitoring.
type CacheStats struct {
	AutocompleteEntries int64 `json:"autocompleteEntries"`
	PlaceDetailsEntries int64 `json:"placeDetailsEntries"`
	GeocodeEntries      int64 `json:"geocodeEntries"`
	VenueEntries        int64 `json:"venueEntries"`
}
