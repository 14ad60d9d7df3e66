// Package pricing keeps the per-ticker price cache fresh and answers
// price lookups for the ledger and the API. Trades never call the
// provider directly; they execute at the latest price this service has
// persisted.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/Andrew-dev1/StockSprout/internal/database"
	"github.com/Andrew-dev1/StockSprout/internal/finnhub"
	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// RefreshStatus classifies the outcome of one ticker's refresh
type RefreshStatus string

const (
	StatusUpdated RefreshStatus = "updated"
	StatusSkipped RefreshStatus = "skipped"
	StatusError   RefreshStatus = "error"
)

// RefreshResult is the outcome of refreshing one ticker
type RefreshResult struct {
	Ticker string          `json:"ticker"`
	Status RefreshStatus   `json:"status"`
	Price  decimal.Decimal `json:"price,omitempty"`
	Err    string          `json:"error,omitempty"`
}

// Service reads prices from the store and refreshes them from Finnhub.
// The Redis client is optional; without it live quotes are fetched on
// every call.
type Service struct {
	db       *database.DB
	client   *finnhub.Client
	rdb      *redis.Client
	quoteTTL time.Duration
	// delay between provider calls during batch refresh, to stay
	// inside the free-tier rate limit
	requestDelay time.Duration
}

// NewService creates a pricing service
func NewService(db *database.DB, client *finnhub.Client, rdb *redis.Client, quoteTTL, requestDelay time.Duration) *Service {
	return &Service{
		db:           db,
		client:       client,
		rdb:          rdb,
		quoteTTL:     quoteTTL,
		requestDelay: requestDelay,
	}
}

// LatestPrice returns the newest persisted price for a ticker
func (s *Service) LatestPrice(ticker string) (*models.StockPrice, error) {
	stock, err := s.db.GetStockByTicker(ticker)
	if err != nil {
		return nil, err
	}
	return s.db.GetLatestPrice(stock.ID)
}

// PriceHistory returns up to limit persisted observations for a ticker,
// oldest first.
func (s *Service) PriceHistory(ticker string, limit int) ([]*models.StockPrice, error) {
	stock, err := s.db.GetStockByTicker(ticker)
	if err != nil {
		return nil, err
	}
	return s.db.GetPriceHistory(stock.ID, limit)
}

// Refresh fetches the previous-close price for one stock and persists
// it under its trading date. A date that is already recorded is
// skipped, so repeated runs within a day are harmless. Provider
// failures leave the store untouched.
func (s *Service) Refresh(ctx context.Context, stock *models.Stock) RefreshResult {
	quote, err := s.client.GetQuote(ctx, stock.Ticker)
	if err != nil {
		return RefreshResult{Ticker: stock.Ticker, Status: StatusError, Err: err.Error()}
	}
	if quote == nil {
		return RefreshResult{Ticker: stock.Ticker, Status: StatusError, Err: "no quote data available"}
	}

	// Previous close is the official price of the last completed
	// trading day; the current price moves all session long.
	price := decimal.NewFromFloat(quote.PreviousClose)
	if price.Sign() <= 0 {
		return RefreshResult{Ticker: stock.Ticker, Status: StatusError, Err: "provider returned non-positive price"}
	}

	observation := &models.StockPrice{
		StockID: stock.ID,
		Date:    finnhub.TradeDate(quote.Timestamp),
		Price:   price,
	}
	inserted, err := s.db.InsertPriceObservation(observation)
	if err != nil {
		return RefreshResult{Ticker: stock.Ticker, Status: StatusError, Err: err.Error()}
	}
	if !inserted {
		existing, err := s.db.GetPriceForDate(stock.ID, observation.Date)
		if err != nil {
			return RefreshResult{Ticker: stock.Ticker, Status: StatusError, Err: err.Error()}
		}
		return RefreshResult{Ticker: stock.Ticker, Status: StatusSkipped, Price: existing.Price}
	}
	return RefreshResult{Ticker: stock.Ticker, Status: StatusUpdated, Price: price}
}

// RefreshAll refreshes every active stock, pacing provider calls and
// carrying on past per-ticker failures. One bad ticker never aborts the
// rest of the batch.
func (s *Service) RefreshAll(ctx context.Context) ([]RefreshResult, error) {
	stocks, err := s.db.GetActiveStocks()
	if err != nil {
		return nil, fmt.Errorf("failed to list active stocks: %w", err)
	}

	results := make([]RefreshResult, 0, len(stocks))
	for i, stock := range stocks {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		result := s.Refresh(ctx, stock)
		if result.Status == StatusError {
			log.Printf("price refresh failed for %s: %s", stock.Ticker, result.Err)
		}
		results = append(results, result)

		if i < len(stocks)-1 && s.requestDelay > 0 {
			select {
			case <-time.After(s.requestDelay):
			case <-ctx.Done():
				return results, ctx.Err()
			}
		}
	}
	return results, nil
}

// Candles returns the provider's daily OHLC series for the last days
// calendar days. Unknown tickers return (nil, nil).
func (s *Service) Candles(ctx context.Context, ticker string, days int) (*finnhub.Candles, error) {
	return s.client.GetCandles(ctx, ticker, days)
}

// MarketStatus reports whether US markets are currently open
func (s *Service) MarketStatus(ctx context.Context) (*finnhub.MarketStatus, error) {
	return s.client.GetMarketStatus(ctx)
}

// SearchSymbols looks up tickers matching a free-text query
func (s *Service) SearchSymbols(ctx context.Context, query string) ([]finnhub.SymbolMatch, error) {
	return s.client.SearchSymbols(ctx, query)
}

// SeedStock adds a ticker to the tradable universe. The company profile
// fills in the display fields and the current quote seeds the first
// price observation, so the stock is buyable immediately. Seeding an
// existing ticker re-activates it and refreshes its metadata.
func (s *Service) SeedStock(ctx context.Context, ticker string) (*models.Stock, error) {
	profile, err := s.client.GetCompanyProfile(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, database.ErrStockNotFound
	}

	stock := &models.Stock{
		Ticker:   ticker,
		Name:     profile.Name,
		LogoURL:  profile.Logo,
		IsActive: true,
	}
	if err := s.db.SaveStock(stock); err != nil {
		return nil, err
	}

	result := s.Refresh(ctx, stock)
	if result.Status == StatusError {
		log.Printf("initial price fetch failed for %s: %s", ticker, result.Err)
	}
	return stock, nil
}

// CachedQuote returns the live quote for a ticker, read through Redis
// when a client is configured. Unknown tickers return (nil, nil).
func (s *Service) CachedQuote(ctx context.Context, ticker string) (*finnhub.Quote, error) {
	key := "quote:" + ticker

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Result()
		if err == nil {
			var quote finnhub.Quote
			if err := json.Unmarshal([]byte(cached), &quote); err == nil {
				return &quote, nil
			}
		} else if err != redis.Nil {
			log.Printf("quote cache read failed for %s: %v", ticker, err)
		}
	}

	quote, err := s.client.GetQuote(ctx, ticker)
	if err != nil || quote == nil {
		return quote, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(quote); err == nil {
			if err := s.rdb.Set(ctx, key, data, s.quoteTTL).Err(); err != nil {
				log.Printf("quote cache write failed for %s: %v", ticker, err)
			}
		}
	}
	return quote, nil
}
