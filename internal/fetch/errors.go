package fetch

import "errors"

var (
	// ErrInvalidURL is returned when a URL cannot be parsed or is not an
	// absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid fetch URL")

	// ErrTransport is returned when the request could not be completed:
	// DNS failure, refused connection, TLS error, timeout or cancellation.
	ErrTransport = errors.New("transport failure")

	// ErrReadBody is returned when the response body could not be read or
	// decoded.
	ErrReadBody = errors.New("failed to read response body")
)
