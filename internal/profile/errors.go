package profile

import "errors"

var (
	// ErrProfileFetch is returned when the profile page could not be fetched.
	// The accompanying details carry only the URL.
	ErrProfileFetch = errors.New("failed to fetch profile page")

	// ErrProfileParse is returned when the fetched body is not parseable markup.
	ErrProfileParse = errors.New("failed to parse profile page")
)
