package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/stavrosk/weltfolio/pkg/formulas"
)

const chartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// VIXSymbol is the Yahoo symbol for the CBOE volatility index.
const VIXSymbol = "^VIX"

// Client fetches daily price history from the Yahoo Finance chart API.
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: chartBaseURL,
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint. Used by
// tests to point the client at a local server.
func NewClientWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	c := NewClient(log)
	c.baseURL = baseURL
	return c
}

// GetDailyHistory returns the daily close series for a symbol over the
// given range (Yahoo range strings: "5d", "1y", "5y", ...). Null closes on
// non-trading days are dropped.
func (c *Client) GetDailyHistory(ctx context.Context, symbol, period string) ([]formulas.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/%s?range=%s&interval=1d", c.baseURL, url.PathEscape(symbol), url.QueryEscape(period))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; weltfolio/1.0)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chart request for %s returned %d: %s", symbol, resp.StatusCode, body)
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", symbol, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data returned for %s", symbol)
	}

	result := parsed.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	series := make([]formulas.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		series = append(series, formulas.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no usable closes for %s", symbol)
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("period", period).
		Int("points", len(series)).
		Msg("Fetched price history")

	return series, nil
}

// GetLatestClose returns the most recent daily close for a symbol.
func (c *Client) GetLatestClose(ctx context.Context, symbol string) (float64, error) {
	series, err := c.GetDailyHistory(ctx, symbol, "5d")
	if err != nil {
		return 0, err
	}
	return series[len(series)-1].Close, nil
}
