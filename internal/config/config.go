package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxPages is the fetch-attempt budget per seed.
	DefaultMaxPages = 50

	// DefaultTimeout bounds a single page or profile fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of seeds crawled at once.
	DefaultBatchSize = 4

	// DefaultMaxBodySize is the number of body bytes kept per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultProfilePrefix marks messaging-profile links.
	DefaultProfilePrefix = "https://t.me/"

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "contactcrawl/1.0 (+https://github.com/nao1215/contactcrawl)"

	// DefaultTorStartupTimeout is how long the embedded Tor daemon may take
	// to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is used for XDG directory paths.
	AppName = "contactcrawl"
)

// Config holds all options of a crawl run.
type Config struct {
	// Seeds are the URLs to start crawling from. Each seed is an
	// independent crawl.
	Seeds []string

	// MaxPages is the fetch-attempt budget per seed.
	MaxPages int

	// Timeout bounds each page or profile fetch.
	Timeout time.Duration

	// UserAgent is the User-Agent header.
	UserAgent string

	// MaxBodySize is the body size cap in bytes. Zero means the default.
	MaxBodySize int64

	// ProfilePrefix marks messaging-profile links.
	ProfilePrefix string

	// CacheProfiles resolves each profile link once per crawl instead of on
	// every page it appears on.
	CacheProfiles bool

	// ProxyAddress routes all fetches through a SOCKS5 proxy at host:port.
	ProxyAddress string

	// UseEmbeddedTor starts a private Tor daemon and routes fetches through it.
	UseEmbeddedTor bool

	// TorStartupTimeout bounds embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// BatchSize is the number of seeds crawled concurrently.
	BatchSize int

	// ConfigFilePath is an explicit path to the YAML site file.
	ConfigFilePath string

	// SiteConfigs holds the loaded site file, nil if none was found.
	SiteConfigs *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// SaveToDB stores every result in the history database.
	SaveToDB bool

	// DBDir is the directory of the history database.
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches logs to JSON lines.
	LogJSON bool

	// MaskContacts masks email and phone values in logs.
	MaskContacts bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxPages:          DefaultMaxPages,
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		ProfilePrefix:     DefaultProfilePrefix,
		TorStartupTimeout: DefaultTorStartupTimeout,
		BatchSize:         DefaultBatchSize,
		SaveToDB:          true,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the data directory (~/.local/share/contactcrawl on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory (~/.config/contactcrawl on Linux).
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.ProxyAddress != "" && c.UseEmbeddedTor {
		return ErrConflictingProxy
	}
	if !strings.HasPrefix(c.ProfilePrefix, "http://") && !strings.HasPrefix(c.ProfilePrefix, "https://") {
		return ErrInvalidProfilePrefix
	}
	return nil
}

// UsesProxy reports whether fetches go through SOCKS5.
func (c *Config) UsesProxy() bool {
	return c.ProxyAddress != "" || c.UseEmbeddedTor
}

// SiteFor returns the effective site settings for host, with the global
// MaxPages and UserAgent applied where the site file does not override them.
func (c *Config) SiteFor(host string) SiteConfig {
	var sc SiteConfig
	if c.SiteConfigs != nil {
		sc = c.SiteConfigs.GetSiteConfig(host)
	}
	if sc.MaxPages == 0 {
		sc.MaxPages = c.MaxPages
	}
	if sc.UserAgent == "" {
		sc.UserAgent = c.UserAgent
	}
	return sc
}
