// Package finnhub is a thin client for the Finnhub market-data API.
// The free tier allows 60 requests/minute; batch callers are expected
// to pace themselves.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://finnhub.io/api/v1"

// Client calls the Finnhub REST API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Finnhub client. baseURL may be empty to use the
// production endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Quote is a real-time quote. Field names follow Finnhub's wire format.
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// CompanyProfile is basic company information
type CompanyProfile struct {
	Country   string  `json:"country"`
	Currency  string  `json:"currency"`
	Exchange  string  `json:"exchange"`
	MarketCap float64 `json:"marketCapitalization"`
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker"`
	WebURL    string  `json:"weburl"`
	Logo      string  `json:"logo"`
	Industry  string  `json:"finnhubIndustry"`
}

// Candles is a daily OHLC time series
type Candles struct {
	Close      []float64 `json:"c"`
	High       []float64 `json:"h"`
	Low        []float64 `json:"l"`
	Open       []float64 `json:"o"`
	Timestamps []int64   `json:"t"`
	Volumes    []int64   `json:"v"`
	Status     string    `json:"s"`
}

// MarketStatus describes whether US markets are open
type MarketStatus struct {
	Exchange string `json:"exchange"`
	Holiday  string `json:"holiday"`
	IsOpen   bool   `json:"isOpen"`
	Session  string `json:"session"`
	Timezone string `json:"timezone"`
}

// SymbolMatch is one search result
type SymbolMatch struct {
	Description string `json:"description"`
	DisplaySym  string `json:"displaySymbol"`
	Symbol      string `json:"symbol"`
	Type        string `json:"type"`
}

type searchResponse struct {
	Count  int           `json:"count"`
	Result []SymbolMatch `json:"result"`
}

// GetQuote fetches the latest quote for a ticker. Returns (nil, nil)
// for unknown tickers: Finnhub answers those with an all-zero quote
// rather than an error status.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*Quote, error) {
	var quote Quote
	if err := c.get(ctx, "/quote", url.Values{"symbol": {ticker}}, &quote); err != nil {
		return nil, err
	}
	if quote.Current == 0 && quote.PreviousClose == 0 {
		return nil, nil
	}
	return &quote, nil
}

// GetCompanyProfile fetches company information for a ticker. Returns
// (nil, nil) when the ticker is unknown (empty response body).
func (c *Client) GetCompanyProfile(ctx context.Context, ticker string) (*CompanyProfile, error) {
	var profile CompanyProfile
	if err := c.get(ctx, "/stock/profile2", url.Values{"symbol": {ticker}}, &profile); err != nil {
		return nil, err
	}
	if profile.Name == "" {
		return nil, nil
	}
	return &profile, nil
}

// GetCandles fetches daily candles covering the last days calendar
// days. Returns (nil, nil) when Finnhub has no data for the range.
func (c *Client) GetCandles(ctx context.Context, ticker string, days int) (*Candles, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	params := url.Values{
		"symbol":     {ticker},
		"resolution": {"D"},
		"from":       {fmt.Sprintf("%d", from.Unix())},
		"to":         {fmt.Sprintf("%d", to.Unix())},
	}
	var candles Candles
	if err := c.get(ctx, "/stock/candle", params, &candles); err != nil {
		return nil, err
	}
	if candles.Status != "ok" || len(candles.Timestamps) == 0 {
		return nil, nil
	}
	return &candles, nil
}

// GetMarketStatus fetches the current US market session state
func (c *Client) GetMarketStatus(ctx context.Context) (*MarketStatus, error) {
	var status MarketStatus
	if err := c.get(ctx, "/stock/market-status", url.Values{"exchange": {"US"}}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SearchSymbols looks up tickers matching a free-text query
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]SymbolMatch, error) {
	var resp searchResponse
	if err := c.get(ctx, "/search", url.Values{"q": {query}}, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("token", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("finnhub request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("finnhub returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode finnhub response: %w", err)
	}
	return nil
}

// TradeDate normalizes a quote timestamp (seconds) to the UTC midnight
// of its trading day. A zero timestamp falls back to today.
func TradeDate(timestamp int64) time.Time {
	t := time.Now().UTC()
	if timestamp > 0 {
		t = time.Unix(timestamp, 0).UTC()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
