// Package config holds the settings of a contactcrawl run.
//
// Config is a flat struct filled from CLI flags on top of NewConfig defaults
// and checked once with Validate. Per-site overrides (cookie, headers, page
// budget, User-Agent) come from an optional YAML file, .contactcrawl, found
// in the working directory or the home directory.
package config
