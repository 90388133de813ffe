package crawler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/contactcrawl/internal/extractor"
	"github.com/nao1215/contactcrawl/internal/fetch"
	"github.com/nao1215/contactcrawl/internal/model"
)

// DefaultMaxPages is the fetch-attempt budget of a crawl.
const DefaultMaxPages = 50

// Fetcher retrieves one page. *fetch.HTTPFetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// ProfileResolver turns a profile link into details. *profile.Resolver
// satisfies it. On failure it still returns details carrying the URL.
type ProfileResolver interface {
	Resolve(ctx context.Context, profileURL string) (model.ProfileDetails, error)
}

// PageEvent describes one processed frontier entry. It is passed to the
// page hook after the entry has been fully handled.
type PageEvent struct {
	// URL is the frontier entry as discovered.
	URL string

	// Attempt is the budget counter after this fetch.
	Attempt int

	// Err is the fetch error, nil on success.
	Err error

	// Record is the contact record produced, nil if the page had no signal.
	Record *model.ContactRecord

	// NewLinks is the number of URLs this page added to the frontier.
	NewLinks int
}

// Crawler walks a site breadth-first from a seed and collects contact
// signals. A Crawler holds configuration only: every Crawl call gets fresh
// run state, so one Crawler can serve many sequential or concurrent crawls.
type Crawler struct {
	fetcher       Fetcher
	resolver      ProfileResolver
	extractor     *extractor.Extractor
	maxPages      int
	cacheProfiles bool
	logger        *slog.Logger
	onPage        func(PageEvent)
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMaxPages sets the fetch-attempt budget. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *extractor.Extractor) Option {
	return func(c *Crawler) {
		if e != nil {
			c.extractor = e
		}
	}
}

// WithProfileCache resolves each profile link at most once per crawl.
// Without it a link is resolved again on every page it appears on.
func WithProfileCache(enabled bool) Option {
	return func(c *Crawler) {
		c.cacheProfiles = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPageHook registers fn to be called after every frontier entry.
func WithPageHook(fn func(PageEvent)) Option {
	return func(c *Crawler) {
		c.onPage = fn
	}
}

// New creates a Crawler using f for pages and r for profile links.
func New(f Fetcher, r ProfileResolver, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:   f,
		resolver:  r,
		extractor: extractor.New(),
		maxPages:  DefaultMaxPages,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// MaxPages returns the configured budget.
func (c *Crawler) MaxPages() int {
	return c.maxPages
}

// run is the mutable state of one crawl.
type run struct {
	frontier *frontier
	budget   budget
	result   *model.CrawlResult
	resolved map[string]bool
}

// Crawl runs a crawl from seed until the frontier is empty or the budget is
// spent. Per-page and per-profile failures are recorded in the result and
// never returned.
//
// The result is never nil. The only error is the context's, returned when
// ctx ends the crawl early; the result then holds everything collected so
// far with state Cancelled.
func (c *Crawler) Crawl(ctx context.Context, seed string) (*model.CrawlResult, error) {
	r := &run{
		frontier: newFrontier(seed),
		budget:   budget{max: c.maxPages},
		result:   model.NewCrawlResult(seed, c.maxPages),
		resolved: make(map[string]bool),
	}
	r.result.StartedAt = time.Now()
	r.result.State = model.StateRunning

	logger := c.logger.With("seed", seed)
	logger.Debug("crawl started", "max_pages", c.maxPages)

	err := c.loop(ctx, r, logger)

	r.result.PagesAttempted = r.budget.used
	r.result.Frontier = r.frontier.urls()
	r.result.FinishedAt = time.Now()

	logger.Debug("crawl finished",
		"state", r.result.State.String(),
		"pages", r.budget.used,
		"records", len(r.result.Records),
		"abandoned", r.frontier.pending(),
	)

	return r.result, err
}

func (c *Crawler) loop(ctx context.Context, r *run, logger *slog.Logger) error {
	for r.frontier.hasNext() {
		if err := ctx.Err(); err != nil {
			r.result.State = model.StateCancelled
			return err
		}

		if r.budget.exhausted() {
			r.result.State = model.StateBudgetCapped
			return nil
		}

		c.visit(ctx, r, r.frontier.next(), logger)
	}

	if err := ctx.Err(); err != nil {
		r.result.State = model.StateCancelled
		return err
	}

	r.result.State = model.StateExhausted
	return nil
}

// visit fetches one frontier entry and folds its signals into the run.
func (c *Crawler) visit(ctx context.Context, r *run, entry frontierEntry, logger *slog.Logger) {
	target := fetch.ResolveReference(entry.referrer, entry.raw)

	page, err := c.fetcher.Fetch(ctx, target)
	r.budget.spend()
	event := PageEvent{URL: entry.raw, Attempt: r.budget.used, Err: err}

	if err != nil {
		logger.Debug("fetch failed", "url", target, "error", err)
		r.result.FetchFailures = append(r.result.FetchFailures, model.Failure{URL: target, Reason: err.Error()})
		c.emit(event)
		return
	}

	// Links on a redirected page are relative to where it ended up.
	base := page.FinalURL
	if base == "" {
		base = target
	}

	signals, err := c.extractor.Extract(page.Body)
	if err != nil {
		// Contacts found before the markup error are still used.
		logger.Debug("link extraction failed", "url", target, "error", err)
	}

	for _, link := range signals.Pages {
		if r.frontier.push(link, base) {
			event.NewLinks++
		}
	}

	for _, link := range signals.Profiles {
		c.resolveProfile(ctx, r, link, logger)
	}

	if signals.HasContacts() {
		rec := model.ContactRecord{
			SourceURL: target,
			Emails:    signals.Emails,
			Phones:    signals.Phones,
			Profiles:  signals.Profiles,
		}
		r.result.Records = append(r.result.Records, rec)
		event.Record = &rec
		logger.Debug("contacts found",
			"url", target,
			"emails", rec.Emails,
			"phones", rec.Phones,
			"profiles", rec.Profiles,
		)
	}

	c.emit(event)
}

func (c *Crawler) resolveProfile(ctx context.Context, r *run, link string, logger *slog.Logger) {
	if c.cacheProfiles && r.resolved[link] {
		return
	}
	r.resolved[link] = true

	details, err := c.resolver.Resolve(ctx, link)
	if err != nil {
		logger.Debug("profile resolution failed", "profile", link, "error", err)
		r.result.ProfileFailures = append(r.result.ProfileFailures, model.Failure{URL: link, Reason: err.Error()})
		details = model.ProfileDetails{URL: link}
	}
	if details.URL == "" {
		details.URL = link
	}
	// An empty resolution never replaces one that found something.
	if prev, ok := r.result.Profiles[link]; ok && details.IsEmpty() && !prev.IsEmpty() {
		return
	}

	r.result.Profiles[link] = details
}

func (c *Crawler) emit(event PageEvent) {
	if c.onPage != nil {
		c.onPage(event)
	}
}

// IsCancellation reports whether err came from an ended context.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
