package crawler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/contactcrawl/internal/model"
)

// DefaultConcurrency is the number of seeds crawled at the same time.
const DefaultConcurrency = 4

// BatchRunner crawls several seeds concurrently. Each seed gets its own
// crawl run; nothing is shared between seeds except the factory.
type BatchRunner struct {
	// factory returns the crawler for a seed. It may return the same
	// Crawler for every seed or a per-site configured one.
	factory func(seed string) *Crawler

	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

// WithConcurrency sets the number of concurrent crawls. Values below 1 are
// ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchRunner) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRunner) {
		b.logger = logger
	}
}

// NewBatchRunner creates a BatchRunner.
func NewBatchRunner(factory func(seed string) *Crawler, opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Run crawls every seed and returns results in seed order. A seed that
// never started because ctx ended has a nil entry.
func (b *BatchRunner) Run(ctx context.Context, seeds []string) ([]*model.CrawlResult, error) {
	results := make([]*model.CrawlResult, len(seeds))
	var mu sync.Mutex

	err := b.RunWithCallback(ctx, seeds, func(result *model.CrawlResult, index int) {
		mu.Lock()
		results[index] = result
		mu.Unlock()
	})

	return results, err
}

// RunWithCallback crawls every seed and calls callback as each finishes.
// callback runs on the crawling goroutine and must be safe for concurrent
// use. The returned error is ctx's error if the batch was cut short.
func (b *BatchRunner) RunWithCallback(
	ctx context.Context,
	seeds []string,
	callback func(result *model.CrawlResult, index int),
) error {
	b.logger.Info("starting batch crawl",
		"seeds", len(seeds),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			b.logger.Info("crawling seed", "seed", seed, "index", i+1, "total", len(seeds))

			result, err := b.factory(seed).Crawl(gctx, seed)
			if err != nil {
				b.logger.Warn("crawl interrupted", "seed", seed, "error", err)
			} else {
				b.logger.Info("crawl completed",
					"seed", seed,
					"state", result.State.String(),
					"pages", result.PagesAttempted,
					"records", len(result.Records),
				)
			}

			callback(result, i)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	b.logger.Info("batch crawl complete",
		"seeds", len(seeds),
		"elapsed", time.Since(start),
	)

	return ctx.Err()
}
