package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vehiculos/internal/eligibility"
	apperrors "vehiculos/internal/errors"
)

// Client talks to the OpenRouteService geocoder. It resolves destination
// texts into places, classifies them against the configured home region and
// serves autocomplete suggestions.
type Client struct {
	apiKey     string
	baseURL    string
	homeRegion string
	httpc      *http.Client
}

func NewClient(apiKey, baseURL, homeRegion string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		homeRegion: homeRegion,
		httpc:      &http.Client{Timeout: 15 * time.Second},
	}
}

type Place struct {
	Label  string
	Lat    float64
	Lon    float64
	Region string
}

// Suggestion is one autocomplete candidate for a destination text.
type Suggestion struct {
	Label  string  `json:"label"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Region string  `json:"region,omitempty"`
}

// Classify geocodes the destination and compares its region against the home
// region. A destination whose region cannot be determined counts as remote.
func (c *Client) Classify(ctx context.Context, destinationText string) (eligibility.Zone, *Place, error) {
	places, err := c.search(ctx, destinationText, 1)
	if err != nil {
		return "", nil, err
	}
	if len(places) == 0 {
		return "", nil, fmt.Errorf("%w: no geocode results for %q", apperrors.ErrLookupUnavailable, destinationText)
	}
	p := places[0]
	if p.Region != "" && strings.EqualFold(strings.TrimSpace(p.Region), c.homeRegion) {
		return eligibility.ZoneLocal, &p, nil
	}
	return eligibility.ZoneRemote, &p, nil
}

// Suggest returns up to five candidates for the query. Queries shorter than
// three characters are answered empty without bothering the provider.
func (c *Client) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if len(query) < 3 {
		return []Suggestion{}, nil
	}
	places, err := c.search(ctx, query, 5)
	if err != nil {
		return nil, err
	}
	out := make([]Suggestion, 0, len(places))
	for _, p := range places {
		out = append(out, Suggestion{Label: p.Label, Lat: p.Lat, Lon: p.Lon, Region: p.Region})
	}
	return out, nil
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label  string `json:"label"`
			Name   string `json:"name"`
			Region string `json:"region"`
			State  string `json:"state"`
			County string `json:"county"`
		} `json:"properties"`
	} `json:"features"`
}

func (c *Client) search(ctx context.Context, text string, size int) ([]Place, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("size", strconv.Itoa(size))
	endpoint := c.baseURL + "/geocode/search?" + params.Encode()

	resp, err := c.doWithRetry(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode geocode response: %v", apperrors.ErrLookupUnavailable, err)
	}

	places := make([]Place, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		region := f.Properties.Region
		if region == "" {
			region = f.Properties.State
		}
		if region == "" {
			region = f.Properties.County
		}
		label := f.Properties.Label
		if label == "" {
			label = f.Properties.Name
		}
		places = append(places, Place{
			Label:  label,
			Lon:    f.Geometry.Coordinates[0],
			Lat:    f.Geometry.Coordinates[1],
			Region: region,
		})
	}
	return places, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx)
// with exponential backoff while respecting context cancellation.
func (c *Client) doWithRetry(ctx context.Context, endpoint string) (*http.Response, error) {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpc.Do(req)
		if err == nil {
			if resp.StatusCode == http.StatusOK {
				return resp, nil
			}
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("geocode status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
				return nil, lastErr
			}
		} else {
			lastErr = err
		}

		if attempt == maxAttempts {
			break
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}
