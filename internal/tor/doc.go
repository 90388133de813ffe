// Package tor routes crawl traffic through a SOCKS5 proxy, normally Tor.
//
// Client wraps a SOCKS5 dialer and hands out *http.Client values for the
// fetcher. EmbeddedTor starts a private Tor daemon with tornago when no
// external proxy is available. The onion helpers validate .onion seeds
// before any network traffic is attempted.
package tor
