package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nimbus/internal/types"
)

// GeocoderClient resolves free-text location queries ("Portland, OR",
// "10001") to coordinates via the Nominatim search API.
type GeocoderClient struct {
	base    *BaseClient
	baseURL string
}

// NewGeocoderClient creates a GeocoderClient against baseURL.
func NewGeocoderClient(httpClient *http.Client, baseURL, userAgent string, retry RetryPolicy, opts ...BaseClientOption) *GeocoderClient {
	return &GeocoderClient{
		base:    NewBaseClient(httpClient, "geocoder", retry, userAgent, opts...),
		baseURL: baseURL,
	}
}

// nominatimResult is one entry of the search response. Coordinates arrive as
// strings.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search resolves a query to its best-matching location. The search is
// limited to US results to match the forecast provider's coverage area.
// A query with no matches returns a not-found AppError rather than an
// empty result.
func (c *GeocoderClient) Search(ctx context.Context, query string) (*types.NamedLocation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidQuery,
			"search query must not be empty", nil)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("countrycodes", "us")
	u := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())

	var results []nominatimResult
	if err := c.base.getJSON(ctx, u, &results, types.ErrCodeUpstreamGeocoder); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeNotFoundLocation,
			fmt.Sprintf("no location found for %q", query), nil,
			map[string]any{"query": query})
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamGeocoder,
			"geocoder returned malformed coordinates", nil)
	}
	if err := types.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}

	return &types.NamedLocation{
		Location: types.Location{Lat: lat, Lon: lon},
		Name:     results[0].DisplayName,
	}, nil
}

// suggestLimit bounds autocomplete responses.
const suggestLimit = 5

// Suggest returns up to suggestLimit candidate locations for a partial
// query, deduplicated by display name. An empty result set is not an
// error for suggestions.
func (c *GeocoderClient) Suggest(ctx context.Context, query string) ([]types.NamedLocation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidQuery,
			"search query must not be empty", nil)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(suggestLimit))
	q.Set("countrycodes", "us")
	u := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())

	var results []nominatimResult
	if err := c.base.getJSON(ctx, u, &results, types.ErrCodeUpstreamGeocoder); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(results))
	suggestions := make([]types.NamedLocation, 0, len(results))
	for _, r := range results {
		if _, dup := seen[r.DisplayName]; dup {
			continue
		}
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		if err := types.ValidateLocation(lat, lon); err != nil {
			continue
		}
		seen[r.DisplayName] = struct{}{}
		suggestions = append(suggestions, types.NamedLocation{
			Location: types.Location{Lat: lat, Lon: lon},
			Name:     r.DisplayName,
		})
	}
	return suggestions, nil
}

// Reverse names the place at a coordinate pair, used to label a
// device-provided position.
func (c *GeocoderClient) Reverse(ctx context.Context, lat, lon float64) (*types.NamedLocation, error) {
	if err := types.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	u := fmt.Sprintf("%s/reverse?%s", c.baseURL, q.Encode())

	var result nominatimResult
	if err := c.base.getJSON(ctx, u, &result, types.ErrCodeUpstreamGeocoder); err != nil {
		return nil, err
	}
	if result.DisplayName == "" {
		return nil, types.NewAppError(types.ErrCodeNotFoundLocation,
			"no place found at these coordinates", nil)
	}

	return &types.NamedLocation{
		Location: types.Location{Lat: lat, Lon: lon},
		Name:     result.DisplayName,
	}, nil
}
