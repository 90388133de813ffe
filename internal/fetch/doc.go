// Package fetch retrieves pages over HTTP for the crawler and the profile
// resolver.
//
// An HTTPFetcher performs a single GET per call. It applies a per-request
// timeout, caps the body at a configurable size, decodes gzip, deflate and
// brotli encodings, and attaches the configured User-Agent, cookie and extra
// headers. Any HTTP status is a successful fetch: callers decide what to do
// with a 404 body. Only transport, URL and body-read problems are errors.
//
// The underlying *http.Client is replaceable, which is how requests are
// routed through a SOCKS5 proxy or an embedded Tor daemon (see package tor).
package fetch
