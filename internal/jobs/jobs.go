// Package jobs runs the background loops that keep prices fresh and
// record daily portfolio snapshots. Both loops run once at startup and
// then on their configured interval until the context is canceled.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/Andrew-dev1/StockSprout/internal/database"
	"github.com/Andrew-dev1/StockSprout/internal/finnhub"
	"github.com/Andrew-dev1/StockSprout/internal/kafka"
	"github.com/Andrew-dev1/StockSprout/internal/models"
	"github.com/Andrew-dev1/StockSprout/internal/pricing"
)

// Runner owns the background jobs. The producer is optional.
type Runner struct {
	db       *database.DB
	pricing  *pricing.Service
	producer *kafka.Producer

	refreshInterval  time.Duration
	snapshotInterval time.Duration
}

// NewRunner creates a job runner
func NewRunner(db *database.DB, pricingSvc *pricing.Service, producer *kafka.Producer, refreshInterval, snapshotInterval time.Duration) *Runner {
	return &Runner{
		db:               db,
		pricing:          pricingSvc,
		producer:         producer,
		refreshInterval:  refreshInterval,
		snapshotInterval: snapshotInterval,
	}
}

// Start launches both job loops. It returns immediately; the loops stop
// when ctx is canceled.
func (r *Runner) Start(ctx context.Context) {
	go r.loop(ctx, "price refresh", r.refreshInterval, r.refreshPrices)
	go r.loop(ctx, "portfolio snapshot", r.snapshotInterval, r.recordSnapshots)
}

func (r *Runner) loop(ctx context.Context, name string, interval time.Duration, run func(context.Context)) {
	run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("%s job stopped: %v", name, ctx.Err())
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}

// refreshPrices refreshes every active stock and logs a batch summary.
// Per-ticker failures are already logged by the pricing service.
func (r *Runner) refreshPrices(ctx context.Context) {
	results, err := r.pricing.RefreshAll(ctx)
	if err != nil {
		log.Printf("price refresh aborted: %v", err)
		return
	}

	var updated, skipped, failed int
	for _, result := range results {
		switch result.Status {
		case pricing.StatusUpdated:
			updated++
			if r.producer != nil {
				if err := r.producer.PublishPriceUpdated(ctx, result.Ticker, result.Price); err != nil {
					log.Printf("kafka publish failed: %v", err)
				}
			}
		case pricing.StatusSkipped:
			skipped++
		case pricing.StatusError:
			failed++
		}
	}
	log.Printf("price refresh done: %d updated, %d skipped, %d failed", updated, skipped, failed)
}

// recordSnapshots writes today's portfolio snapshot for every child.
// Snapshots are idempotent per day; a child whose rollup fails is
// skipped and the rest of the batch carries on.
func (r *Runner) recordSnapshots(ctx context.Context) {
	children, err := r.db.GetAllChildren()
	if err != nil {
		log.Printf("snapshot job aborted: %v", err)
		return
	}

	today := finnhub.TradeDate(0)
	var written, failed int
	for _, child := range children {
		if ctx.Err() != nil {
			return
		}

		portfolio, err := r.db.GetPortfolio(child.ID)
		if err != nil {
			log.Printf("snapshot rollup failed for user %s: %v", child.ID, err)
			failed++
			continue
		}

		snapshot := &models.PortfolioSnapshot{
			UserID:         child.ID,
			Date:           today,
			PortfolioValue: portfolio.TotalValue,
			CashBalance:    portfolio.Balance,
			TotalValue:     portfolio.TotalValue.Add(portfolio.Balance),
		}
		inserted, err := r.db.CreatePortfolioSnapshot(snapshot)
		if err != nil {
			log.Printf("snapshot write failed for user %s: %v", child.ID, err)
			failed++
			continue
		}
		if inserted {
			written++
		}
	}
	log.Printf("snapshot job done: %d written, %d failed, %d children", written, failed, len(children))
}
