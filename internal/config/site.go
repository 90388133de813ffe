package config

import (
	"maps"
	"net/url"
	"strings"
)

// SiteConfig holds per-host crawl settings.
type SiteConfig struct {
	// Cookie is a raw Cookie header value, e.g. "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPages overrides the global page budget. Zero keeps the global value.
	MaxPages int `yaml:"maxPages,omitempty"`

	// UserAgent overrides the global User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File is the structure of the .contactcrawl file.
type File struct {
	// Sites maps a host (e.g. "example.com") to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless a site entry overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the settings for host merged over the defaults.
// Host lookup is case-insensitive.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	site, ok := cf.Sites[host]
	if !ok {
		for k, v := range cf.Sites {
			if strings.EqualFold(k, host) {
				site, ok = v, true
				break
			}
		}
	}
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.MaxPages != 0 {
		result.MaxPages = site.MaxPages
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}

	return result
}

// HostOf returns the host part of a seed URL, without port, or the input
// unchanged when it does not parse.
func HostOf(seed string) string {
	u, err := url.Parse(seed)
	if err != nil || u.Host == "" {
		return seed
	}
	return u.Hostname()
}
