package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const observationsURL = "https://api.stlouisfed.org/fred/series/observations"

// SpreadSeries is the FRED series ID for the ICE BofA BBB US Corporate OAS.
const SpreadSeries = "BAMLC0A4CBBB"

// Client fetches economic data series from FRED.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	log     zerolog.Logger
}

// NewClient creates a new FRED client. An empty API key is allowed; callers
// should treat it as "FRED unavailable" and fall back.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: observationsURL,
		apiKey:  apiKey,
		log:     log.With().Str("client", "fred").Logger(),
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint for tests.
func NewClientWithBaseURL(baseURL, apiKey string, log zerolog.Logger) *Client {
	c := NewClient(apiKey, log)
	c.baseURL = baseURL
	return c
}

// HasAPIKey reports whether the client is configured with an API key.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// GetLatestValue returns the newest non-missing observation of a series.
// FRED publishes missing values as ".".
func (c *Client) GetLatestValue(ctx context.Context, seriesID string) (float64, error) {
	if c.apiKey == "" {
		return 0, fmt.Errorf("no FRED API key configured")
	}

	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("sort_order", "desc")
	params.Set("limit", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("FRED request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("FRED returned %d: %s", resp.StatusCode, body)
	}

	var parsed observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode FRED response: %w", err)
	}

	for _, obs := range parsed.Observations {
		if obs.Value == "." {
			continue
		}
		val, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		c.log.Debug().Str("series", seriesID).Str("date", obs.Date).Float64("value", val).Msg("Fetched observation")
		return val, nil
	}

	return 0, fmt.Errorf("no usable observations for %s", seriesID)
}
