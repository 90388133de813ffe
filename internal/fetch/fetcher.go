package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

const (
	// DefaultTimeout bounds a single fetch, including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize is the number of body bytes kept per page.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024

	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

	maxRedirects = 10
)

// Page is a fetched response.
type Page struct {
	// URL is the URL that was requested.
	URL string

	// FinalURL is the URL after redirects.
	FinalURL string

	StatusCode  int
	ContentType string

	// Body is the decoded body, truncated at the fetcher's size cap.
	Body []byte

	// Truncated reports whether Body was cut at the size cap.
	Truncated bool
}

// HTTPFetcher fetches pages with a shared *http.Client.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
	cookie      string
	headers     map[string]string
	compression bool
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header. An empty value keeps the default.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout sets the per-fetch timeout. Non-positive values disable it.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize sets the body size cap in bytes.
func WithMaxBodySize(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithCookie sets a raw Cookie header value sent with every request.
func WithCookie(cookie string) Option {
	return func(f *HTTPFetcher) {
		f.cookie = cookie
	}
}

// WithHeaders adds extra request headers. They override the defaults.
func WithHeaders(headers map[string]string) Option {
	return func(f *HTTPFetcher) {
		if f.headers == nil {
			f.headers = make(map[string]string, len(headers))
		}
		maps.Copy(f.headers, headers)
	}
}

// WithHTTPClient replaces the underlying client, e.g. with one that dials
// through a SOCKS5 proxy.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithCompression controls whether the fetcher advertises and decodes
// compressed encodings. It is on by default. Tor clients turn it off.
func WithCompression(enabled bool) Option {
	return func(f *HTTPFetcher) {
		f.compression = enabled
	}
}

// NewHTTPFetcher creates a fetcher with sane defaults.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		compression: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = newDefaultClient()
	}

	return f
}

func newDefaultClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// Fetch performs a GET for rawURL.
//
// rawURL must be absolute. Any HTTP status is returned as a Page; only
// ErrInvalidURL, ErrTransport and ErrReadBody (wrapped) are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidURL, rawURL, err)
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	body, truncated, err := f.readBody(resp)
	if err != nil {
		return nil, err
	}

	finalURL := target.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{
		URL:         rawURL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Truncated:   truncated,
	}, nil
}

func (f *HTTPFetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if f.compression {
		req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
}

// readBody decodes and reads at most maxBodySize bytes. The extra byte read
// past the cap only detects truncation.
func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, bool, error) {
	if resp.Body == nil {
		return nil, false, nil
	}

	reader := io.Reader(resp.Body)
	closers := []io.Closer{resp.Body}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return nil, false, fmt.Errorf("%w: gzip: %w", ErrReadBody, err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodySize+1))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrReadBody, err)
	}

	if int64(len(body)) > f.maxBodySize {
		return body[:f.maxBodySize], true, nil
	}
	return body, false, nil
}

// Client returns the underlying HTTP client.
func (f *HTTPFetcher) Client() *http.Client {
	return f.client
}

// ParseTarget parses rawURL and checks that it is an absolute http(s) URL.
func ParseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s: unsupported scheme %q", ErrInvalidURL, rawURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %s: missing host", ErrInvalidURL, rawURL)
	}
	return u, nil
}

// ResolveReference resolves ref against base. If base is empty or either
// value does not parse, ref is returned unchanged and the fetch reports the
// problem.
func ResolveReference(base, ref string) string {
	if base == "" {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
