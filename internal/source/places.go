package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"eventease/backend/internal/domain"
)

const mapsBaseURL = "https://maps.googleapis.com/maps/api"

// PlacesProvider is the third-party Places surface the caching layer wraps.
type PlacesProvider interface {
	Enabled() bool
	Autocomplete(ctx context.Context, input, types string) ([]domain.Prediction, error)
	Details(ctx context.Context, placeID string) (*domain.PlaceDetails, error)
	Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error)
}

// GooglePlacesClient talks to the Google Maps Platform web services.
type GooglePlacesClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGooglePlacesClient(apiKey string) *GooglePlacesClient {
	return &GooglePlacesClient{
		apiKey:  apiKey,
		baseURL: mapsBaseURL,
		client:  newHTTPClient(),
	}
}

func (c *GooglePlacesClient) Enabled() bool { return c.apiKey != "" }

type autocompleteResponse struct {
	Status      string `json:"status"`
	Predictions []struct {
		PlaceID              string `json:"place_id"`
		Description          string `json:"description"`
		StructuredFormatting struct {
			MainText      string `json:"main_text"`
			SecondaryText string `json:"secondary_text"`
		} `json:"structured_formatting"`
		Types []string `json:"types"`
	} `json:"predictions"`
}

func (c *GooglePlacesClient) Autocomplete(ctx context.Context, input, types string) ([]domain.Prediction, error) {
	params := url.Values{}
	params.Set("input", input)
	params.Set("key", c.apiKey)
	params.Set("types", types)

	var resp autocompleteResponse
	if err := getJSON(ctx, c.client, c.baseURL+"/place/autocomplete/json?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places autocomplete status %s", resp.Status)
	}

	predictions := make([]domain.Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		predictions = append(predictions, domain.Prediction{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
			Types:         p.Types,
		})
	}
	return predictions, nil
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Rating float64  `json:"rating"`
		Types  []string `json:"types"`
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"result"`
}

func (c *GooglePlacesClient) Details(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", c.apiKey)
	params.Set("fields", "name,formatted_address,geometry,types,rating,photos,opening_hours")

	var resp detailsResponse
	if err := getJSON(ctx, c.client, c.baseURL+"/place/details/json?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("place details status %s", resp.Status)
	}

	photos := make([]string, 0, 3)
	for _, p := range resp.Result.Photos {
		if len(photos) == 3 {
			break
		}
		photos = append(photos, p.PhotoReference)
	}

	return &domain.PlaceDetails{
		PlaceID:          placeID,
		Name:             resp.Result.Name,
		FormattedAddress: resp.Result.FormattedAddress,
		Latitude:         resp.Result.Geometry.Location.Lat,
		Longitude:        resp.Result.Geometry.Location.Lng,
		Rating:           resp.Result.Rating,
		Types:            resp.Result.Types,
		PhotoReferences:  photos,
	}, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves an address. A clean zero-result lookup returns
// (nil, nil).
func (c *GooglePlacesClient) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	var resp geocodeResponse
	if err := getJSON(ctx, c.client, c.baseURL+"/geocode/json?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status == "ZERO_RESULTS" || len(resp.Results) == 0 {
		return nil, nil
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("geocode status %s", resp.Status)
	}

	first := resp.Results[0]
	return &domain.GeocodeResult{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}
