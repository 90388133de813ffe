// Package crawler implements a bounded breadth-first contact crawl.
//
// # Architecture
//
// A Crawler starts from a seed URL and repeatedly pops the next entry of a
// FIFO frontier, fetches it, extracts contact signals and queues every new
// page link. Profile links found on a page are resolved inline before the
// next entry is popped. The crawl stops in one of two normal terminal
// states:
//
//   - Exhausted: the frontier ran out before the page budget.
//   - BudgetCapped: the budget (default 50 fetch attempts) was spent while
//     entries were still pending. Pending entries are abandoned.
//
// A cancelled context ends the crawl in the Cancelled state.
//
// # Frontier
//
// The frontier is an append-only list with a cursor. A URL is queued only if
// the exact string has never been queued before. No normalization is done:
// "/about", "/about#team" and "http://host/about" are three entries.
// Relative entries are resolved against the page that linked them when they
// are fetched.
//
// # Failures
//
// Every fetch attempt spends budget, successful or not. Failed fetches and
// failed profile resolutions are recorded in the result and never abort the
// crawl.
//
// # Usage
//
//	c := crawler.New(fetcher, resolver, crawler.WithMaxPages(50))
//	result, err := c.Crawl(ctx, "https://example.com")
//
// BatchRunner crawls several seeds concurrently with errgroup, one
// independent run per seed.
package crawler
