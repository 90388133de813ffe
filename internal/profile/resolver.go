package profile

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/contactcrawl/internal/fetch"
	"github.com/nao1215/contactcrawl/internal/model"
)

// Selectors for the parts of a t.me profile page.
const (
	avatarSelector = "img"
	titleSelector  = "div.tgme_page_title span"
	bioSelector    = "div.tgme_page_description"
)

// Fetcher retrieves a page. *fetch.HTTPFetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// Resolver fetches profile pages and parses their details.
type Resolver struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver that fetches with f.
func NewResolver(f Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: f,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches profileURL and extracts its details. No retries are made.
//
// The returned details always carry URL. On a fetch failure every other
// field is empty and the error wraps ErrProfileFetch.
func (r *Resolver) Resolve(ctx context.Context, profileURL string) (model.ProfileDetails, error) {
	details := model.ProfileDetails{URL: profileURL}

	page, err := r.fetcher.Fetch(ctx, profileURL)
	if err != nil {
		r.logger.Debug("profile fetch failed", "url", profileURL, "error", err)
		return details, fmt.Errorf("%w: %s: %w", ErrProfileFetch, profileURL, err)
	}

	parsed, err := ParseDetails(page.Body)
	if err != nil {
		return details, fmt.Errorf("%s: %w", profileURL, err)
	}
	parsed.URL = profileURL

	return parsed, nil
}

// ParseDetails extracts profile details from a profile page body.
// Absent elements leave the matching field empty.
func ParseDetails(body []byte) (model.ProfileDetails, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.ProfileDetails{}, fmt.Errorf("%w: %w", ErrProfileParse, err)
	}

	var details model.ProfileDetails

	// The first image on the page is the avatar even when it has no src.
	if src, ok := doc.Find(avatarSelector).First().Attr("src"); ok {
		details.AvatarURL = strings.TrimSpace(src)
	}
	details.Title = strings.TrimSpace(doc.Find(titleSelector).First().Text())
	details.Bio = strings.TrimSpace(doc.Find(bioSelector).First().Text())

	return details, nil
}
