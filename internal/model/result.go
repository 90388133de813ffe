package model

import (
	"sort"
	"time"
)

// Failure records a page or profile that could not be fetched.
// Failures never abort a crawl; they are kept for observability.
type Failure struct {
	// URL is the address that failed.
	URL string `json:"url"`

	// Reason is the error message.
	Reason string `json:"reason"`
}

// CrawlResult is the best-effort output of one crawl.
//
// Design decision: We keep failures and the frontier inside the result
// rather than returning errors so a caller always receives whatever was
// collected, even when most pages failed.
type CrawlResult struct {
	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// State is the terminal state of the crawl.
	State CrawlState `json:"state"`

	// PagesAttempted is the budget counter: every fetch attempt, successful or not.
	PagesAttempted int `json:"pages_attempted"`

	// MaxPages is the budget the crawl ran with.
	MaxPages int `json:"max_pages"`

	// Records holds one entry per page with findings, in visitation order.
	Records []ContactRecord `json:"records"`

	// Profiles maps every profile link found to its resolved details.
	Profiles map[string]ProfileDetails `json:"profiles"`

	// FetchFailures lists pages whose fetch failed.
	FetchFailures []Failure `json:"fetch_failures,omitempty"`

	// ProfileFailures lists profile links whose resolution failed.
	ProfileFailures []Failure `json:"profile_failures,omitempty"`

	// Frontier is the full backing sequence of URLs seen, seed first.
	Frontier []string `json:"frontier,omitempty"`

	// StartedAt is when the crawl started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl reached its terminal state.
	FinishedAt time.Time `json:"finished_at"`
}

// NewCrawlResult creates an empty result for the given seed.
func NewCrawlResult(seed string, maxPages int) *CrawlResult {
	return &CrawlResult{
		Seed:     seed,
		State:    StateIdle,
		MaxPages: maxPages,
		Records:  make([]ContactRecord, 0),
		Profiles: make(map[string]ProfileDetails),
	}
}

// Duration returns how long the crawl ran.
func (r *CrawlResult) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Emails returns every unique email across all records in visitation order.
func (r *CrawlResult) Emails() []string {
	return r.collect(func(rec ContactRecord) []string { return rec.Emails })
}

// Phones returns every unique phone number across all records.
func (r *CrawlResult) Phones() []string {
	return r.collect(func(rec ContactRecord) []string { return rec.Phones })
}

// ProfileURLs returns every unique profile link across all records.
func (r *CrawlResult) ProfileURLs() []string {
	return r.collect(func(rec ContactRecord) []string { return rec.Profiles })
}

func (r *CrawlResult) collect(field func(ContactRecord) []string) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, rec := range r.Records {
		for _, v := range field(rec) {
			if !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}
	}
	return values
}

// SourcesOf returns the source URLs of every record containing value.
func (r *CrawlResult) SourcesOf(kind ContactKind, value string) []string {
	sources := make([]string, 0)
	for _, rec := range r.Records {
		var values []string
		switch kind {
		case KindEmail:
			values = rec.Emails
		case KindPhone:
			values = rec.Phones
		case KindProfile:
			values = rec.Profiles
		}
		for _, v := range values {
			if v == value {
				sources = append(sources, rec.SourceURL)
				break
			}
		}
	}
	return sources
}

// SortedProfileURLs returns the keys of Profiles sorted alphabetically.
func (r *CrawlResult) SortedProfileURLs() []string {
	urls := make([]string, 0, len(r.Profiles))
	for u := range r.Profiles {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// Summary condenses a result into counts.
type Summary struct {
	Pages           int `json:"pages"`
	Records         int `json:"records"`
	Emails          int `json:"emails"`
	Phones          int `json:"phones"`
	Profiles        int `json:"profiles"`
	FetchFailures   int `json:"fetch_failures"`
	ProfileFailures int `json:"profile_failures"`
}

// Summary returns aggregate counts for the result.
func (r *CrawlResult) Summary() Summary {
	return Summary{
		Pages:           r.PagesAttempted,
		Records:         len(r.Records),
		Emails:          len(r.Emails()),
		Phones:          len(r.Phones()),
		Profiles:        len(r.ProfileURLs()),
		FetchFailures:   len(r.FetchFailures),
		ProfileFailures: len(r.ProfileFailures),
	}
}

// TotalSignals returns the number of unique contact signals found.
func (s Summary) TotalSignals() int {
	return s.Emails + s.Phones + s.Profiles
}
