package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/contactcrawl/internal/config"
	"github.com/nao1215/contactcrawl/internal/crawler"
	"github.com/nao1215/contactcrawl/internal/database"
	"github.com/nao1215/contactcrawl/internal/extractor"
	"github.com/nao1215/contactcrawl/internal/fetch"
	"github.com/nao1215/contactcrawl/internal/log"
	"github.com/nao1215/contactcrawl/internal/model"
	"github.com/nao1215/contactcrawl/internal/profile"
	"github.com/nao1215/contactcrawl/internal/report"
	"github.com/nao1215/contactcrawl/internal/tor"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <seed-url>...",
		Short: "Crawl websites for emails, phone numbers and Telegram profiles",
		Long: `Crawl fetches each seed URL and follows the links it finds breadth-first,
extracting contact details from every page, until no new links remain or the
page budget is spent. Every fetch attempt counts against the budget,
including failed ones. Telegram profile links (https://t.me/...) are not
crawled; they are resolved into name, avatar and bio.

Several seeds are crawled concurrently (--batch). Each seed is independent.

Examples:
  # Crawl one site with the default budget of 50 pages
  contactcrawl crawl https://example.com/

  # Raise the budget and print JSON
  contactcrawl crawl -p 200 --json https://example.com/

  # Crawl an onion service through a running Tor proxy
  contactcrawl crawl --proxy 127.0.0.1:9050 http://<v3-address>.onion/

  # Start a private Tor daemon for the crawl
  contactcrawl crawl --tor http://<v3-address>.onion/

  # Write a Markdown report to a file
  contactcrawl crawl -m -o reports/example.md https://example.com/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum fetch attempts per seed")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page or profile fetch")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of seeds crawled concurrently")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum bytes read from each response body")
	cmd.Flags().String("profile-prefix", config.DefaultProfilePrefix,
		"URL prefix that marks messaging-profile links")
	cmd.Flags().Bool("cache-profiles", false,
		"Resolve each profile link once per crawl instead of on every page it appears on")

	cmd.Flags().StringP("proxy", "x", "",
		"Route all requests through a SOCKS5 proxy (host:port), e.g. Tor at 127.0.0.1:9050")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and route all requests through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .contactcrawl in current or home directory)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("quiet", "q", false,
		"Do not print per-page progress")

	cmd.Flags().Bool("no-db", false,
		"Do not store results in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(cmd.ErrOrStderr(), log.Options{
		Verbose:      cfg.Verbose,
		JSON:         cfg.LogJSON,
		MaskContacts: cfg.MaskContacts,
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	return runCrawl(ctx, cfg, logger, crawlIO{
		stdout:   cmd.OutOrStdout(),
		stderr:   cmd.ErrOrStderr(),
		progress: !quiet,
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// persistentBool reads a flag from the command or, failing that, the root.
func persistentBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from cobra command flags and the site file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.ProfilePrefix, err = flags.GetString("profile-prefix"); err != nil {
		return nil, err
	}
	if cfg.CacheProfiles, err = flags.GetBool("cache-profiles"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UseEmbeddedTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose = persistentBool(cmd, "verbose")
	cfg.LogJSON = persistentBool(cmd, "log-json")
	cfg.MaskContacts = persistentBool(cmd, "mask-contacts")

	if err := cfg.LoadSiteConfigs(); err != nil {
		return nil, err
	}

	cfg.Seeds = args

	return cfg, nil
}

// crawlIO carries the command's output streams.
type crawlIO struct {
	stdout   io.Writer
	stderr   io.Writer
	progress bool
}

// runCrawl crawls every seed, stores the results and writes the report.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out crawlIO) error {
	for _, seed := range cfg.Seeds {
		if err := tor.ValidateSeed(seed, cfg.UsesProxy()); err != nil {
			return err
		}
	}

	logger.Info("starting crawl",
		"seeds", len(cfg.Seeds),
		"max_pages", cfg.MaxPages,
		"batch", cfg.BatchSize,
		"proxy", cfg.UsesProxy(),
		"save_to_db", cfg.SaveToDB,
	)

	var db *database.ResultDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	client, cleanup, err := proxyClient(ctx, cfg, logger, out.stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	var mu sync.Mutex
	printf := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out.stderr, format, a...)
	}

	factory := func(seed string) *crawler.Crawler {
		return newCrawler(cfg, seed, client, logger, func(ev crawler.PageEvent) {
			if !out.progress {
				return
			}
			status := ""
			switch {
			case ev.Err != nil:
				status = " (failed)"
			case ev.Record != nil:
				status = fmt.Sprintf(" (%d contact signal(s))", ev.Record.SignalCount())
			}
			printf("[%s] %d: %s%s\n", seed, ev.Attempt, ev.URL, status)
		})
	}

	runner := crawler.NewBatchRunner(factory,
		crawler.WithConcurrency(cfg.BatchSize),
		crawler.WithBatchLogger(logger),
	)

	start := time.Now()
	results := make([]*model.CrawlResult, len(cfg.Seeds))
	runErr := runner.RunWithCallback(ctx, cfg.Seeds, func(result *model.CrawlResult, index int) {
		mu.Lock()
		results[index] = result
		mu.Unlock()

		s := result.Summary()
		printf("[%s] %s after %d page(s): %d email(s), %d phone(s), %d profile(s)\n",
			result.Seed, report.StateLabel(result.State), s.Pages, s.Emails, s.Phones, s.Profiles)

		// Results are stored even when the crawl was cancelled.
		if err := saveResult(context.WithoutCancel(ctx), db, result, logger); err != nil {
			logger.Error("failed to save crawl result", "seed", result.Seed, "error", err)
		}
	})
	printf("Crawled %d seed(s) in %s\n", len(cfg.Seeds), time.Since(start).Round(time.Millisecond))

	if err := outputReport(cfg, results, out.stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("crawl interrupted: %w", runErr)
	}
	return nil
}

// newCrawler builds a crawler for one seed with its site settings applied.
func newCrawler(cfg *config.Config, seed string, client *tor.Client, logger *slog.Logger, hook func(crawler.PageEvent)) *crawler.Crawler {
	site := cfg.SiteFor(config.HostOf(seed))

	fetchOpts := []fetch.Option{
		fetch.WithUserAgent(site.UserAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithCookie(site.Cookie),
		fetch.WithHeaders(site.Headers),
	}
	if client != nil {
		fetchOpts = append(fetchOpts,
			fetch.WithHTTPClient(client.NewHTTPClient(tor.WithInsecureTLS(tor.IsOnionURL(seed)))),
			fetch.WithCompression(false),
		)
	}
	f := fetch.NewHTTPFetcher(fetchOpts...)

	return crawler.New(f, profile.NewResolver(f, profile.WithLogger(logger)),
		crawler.WithMaxPages(site.MaxPages),
		crawler.WithExtractor(extractor.New(extractor.WithProfilePrefix(cfg.ProfilePrefix))),
		crawler.WithProfileCache(cfg.CacheProfiles),
		crawler.WithLogger(logger),
		crawler.WithPageHook(hook),
	)
}

// proxyClient returns the SOCKS5 client for the run, nil when requests go
// direct. cleanup stops an embedded daemon and is always safe to call.
func proxyClient(ctx context.Context, cfg *config.Config, logger *slog.Logger, stderr io.Writer) (*tor.Client, func(), error) {
	noop := func() {}

	switch {
	case cfg.ProxyAddress != "":
		client, err := tor.NewClient(cfg.ProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create proxy client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, noop, fmt.Errorf("proxy check failed for %s: %w", cfg.ProxyAddress, status.Err())
		}
		logger.Info("SOCKS5 proxy connection verified", "address", cfg.ProxyAddress)
		return client, noop, nil

	case cfg.UseEmbeddedTor:
		fmt.Fprintln(stderr, "Starting embedded Tor daemon...")
		fmt.Fprintf(stderr, "This may take 1-3 minutes while Tor bootstraps.\n\n")

		embedded := tor.NewEmbeddedTor(
			tor.WithStartupTimeout(cfg.TorStartupTimeout),
			tor.WithTorLogger(logger),
		)
		if err := embedded.Start(ctx); err != nil {
			return nil, noop, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		cleanup := func() {
			logger.Info("stopping embedded Tor daemon")
			if err := embedded.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}

		client, err := embedded.NewClient(cfg.Timeout)
		if err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			cleanup()
			return nil, noop, fmt.Errorf("embedded Tor proxy check failed: %w", status.Err())
		}
		fmt.Fprintf(stderr, "Embedded Tor ready at %s\n\n", embedded.SocksAddr())
		return client, cleanup, nil

	default:
		return nil, noop, nil
	}
}

// saveResult stores result when db is open. A nil db is a no-op.
func saveResult(ctx context.Context, db *database.ResultDB, result *model.CrawlResult, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	id, err := db.SaveCrawlResult(ctx, result)
	if err != nil {
		return err
	}
	logger.Info("crawl result saved", "seed", result.Seed, "run_id", id)
	return nil
}

// reportWriter picks the writer for the configured format.
func reportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport writes the batch report to cfg.ReportFile or stdout.
func outputReport(cfg *config.Config, results []*model.CrawlResult, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list personal contact data.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := reportWriter(cfg, output).WriteAll(results)
	return err
}
