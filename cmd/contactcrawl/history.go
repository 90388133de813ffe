package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/contactcrawl/internal/config"
	"github.com/nao1215/contactcrawl/internal/database"
	"github.com/nao1215/contactcrawl/internal/log"
	"github.com/nao1215/contactcrawl/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [seed-url]",
		Short: "Show stored crawl results",
		Long: `History reads the results database written by 'contactcrawl crawl'.

Without arguments it lists every stored run, newest first. With a seed URL
it lists the runs of that seed only.

Examples:
  # List all stored runs
  contactcrawl history

  # List the runs of one seed
  contactcrawl history https://example.com/

  # List every seed in the database
  contactcrawl history --list-seeds

  # Show the full report of run 12
  contactcrawl history --id 12

  # Find every page an address was seen on, across all runs
  contactcrawl history --find info@example.com

  # Delete run 12
  contactcrawl history --delete 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-seeds", "L", false,
		"List every seed with stored runs")
	cmd.Flags().Int64P("id", "i", 0,
		"Show the stored result of a run by ID")
	cmd.Flags().StringP("find", "f", "",
		"Find every stored sighting of an email, phone number or profile link")
	cmd.Flags().Int64("delete", 0,
		"Delete a stored run by ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (with --id)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// historyOptions are the parsed history flags.
type historyOptions struct {
	seed      string
	listSeeds bool
	runID     int64
	find      string
	deleteID  int64
	json      bool
	markdown  bool
	dbDir     string
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryFlags(cmd, args)
	if err != nil {
		return err
	}

	logger := log.New(cmd.ErrOrStderr(), log.Options{
		Verbose:      persistentBool(cmd, "verbose"),
		JSON:         persistentBool(cmd, "log-json"),
		MaskContacts: persistentBool(cmd, "mask-contacts"),
	})

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl history yet. Use 'contactcrawl crawl <seed-url>' to crawl a site.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Debug("database opened", "path", db.Path())

	return runHistory(commandContext(cmd), db, opts, cmd.OutOrStdout())
}

func parseHistoryFlags(cmd *cobra.Command, args []string) (*historyOptions, error) {
	flags := cmd.Flags()
	opts := &historyOptions{dbDir: config.XDGDataDir()}

	var err error
	if opts.listSeeds, err = flags.GetBool("list-seeds"); err != nil {
		return nil, err
	}
	if opts.runID, err = flags.GetInt64("id"); err != nil {
		return nil, err
	}
	if opts.find, err = flags.GetString("find"); err != nil {
		return nil, err
	}
	if opts.deleteID, err = flags.GetInt64("delete"); err != nil {
		return nil, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		opts.dbDir = dbDir
	}
	if len(args) == 1 {
		opts.seed = args[0]
	}

	modes := 0
	for _, set := range []bool{opts.listSeeds, opts.runID != 0, opts.find != "", opts.deleteID != 0} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return nil, errors.New("--list-seeds, --id, --find and --delete are mutually exclusive")
	}
	if modes == 1 && opts.seed != "" {
		return nil, errors.New("a seed argument only applies to the run listing")
	}
	if opts.json && opts.markdown {
		return nil, config.ErrConflictingReportFormats
	}

	return opts, nil
}

func runHistory(ctx context.Context, db *database.ResultDB, opts *historyOptions, out io.Writer) error {
	switch {
	case opts.listSeeds:
		return listSeeds(ctx, db, opts, out)
	case opts.runID != 0:
		return showRun(ctx, db, opts, out)
	case opts.find != "":
		return findContact(ctx, db, opts, out)
	case opts.deleteID != 0:
		return deleteRun(ctx, db, opts.deleteID, out)
	default:
		return listRuns(ctx, db, opts, out)
	}
}

func listSeeds(ctx context.Context, db *database.ResultDB, opts *historyOptions, out io.Writer) error {
	seeds, err := db.ListSeeds(ctx)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSON(out, nonNilStrings(seeds))
	}

	if len(seeds) == 0 {
		fmt.Fprintln(out, "No seeds found in the database.")
		return nil
	}
	fmt.Fprintf(out, "Crawled seeds (%d):\n\n", len(seeds))
	for _, seed := range seeds {
		fmt.Fprintf(out, "  • %s\n", seed)
	}
	fmt.Fprintln(out, "\nUse 'contactcrawl history <seed-url>' to see the runs of a seed.")
	return nil
}

func listRuns(ctx context.Context, db *database.ResultDB, opts *historyOptions, out io.Writer) error {
	runs, err := db.ListRuns(ctx, opts.seed)
	if err != nil {
		return err
	}
	if opts.json {
		if runs == nil {
			runs = []database.RunMetadata{}
		}
		return writeJSON(out, runs)
	}

	if len(runs) == 0 {
		if opts.seed != "" {
			fmt.Fprintf(out, "No runs found for %s\n", opts.seed)
		} else {
			fmt.Fprintln(out, "No runs found in the database.")
		}
		return nil
	}

	fmt.Fprintf(out, "Stored runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-14s  %-7s  %s\n", "ID", "Started", "State", "Pages", "Seed / Signals")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-14s  %-7s  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.State,
			fmt.Sprintf("%d/%d", r.PagesAttempted, r.MaxPages),
			r.Seed,
		)
		fmt.Fprintf(out, "  %-6s  %-20s  %-14s  %-7s  E:%d P:%d T:%d\n", "", "", "", "",
			r.Summary.Emails, r.Summary.Phones, r.Summary.Profiles)
	}
	fmt.Fprintln(out, "\nUse 'contactcrawl history --id <id>' to show a stored result.")
	return nil
}

func showRun(ctx context.Context, db *database.ResultDB, opts *historyOptions, out io.Writer) error {
	result, err := db.GetRun(ctx, opts.runID)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("run with ID %d not found", opts.runID)
	}

	var w report.Writer
	switch {
	case opts.json:
		w = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case opts.markdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(true))
	}
	_, err = w.Write(result)
	return err
}

func findContact(ctx context.Context, db *database.ResultDB, opts *historyOptions, out io.Writer) error {
	sightings, err := db.FindContact(ctx, opts.find)
	if err != nil {
		return err
	}
	if opts.json {
		if sightings == nil {
			sightings = []database.Sighting{}
		}
		return writeJSON(out, sightings)
	}

	if len(sightings) == 0 {
		fmt.Fprintf(out, "%s was not found in any stored run.\n", opts.find)
		return nil
	}

	fmt.Fprintf(out, "%s was seen %d time(s):\n\n", opts.find, len(sightings))
	for _, s := range sightings {
		fmt.Fprintf(out, "  run %-5d %s  %-8s %s\n",
			s.RunID, s.StartedAt.Local().Format("2006-01-02 15:04"), s.Kind, s.SourceURL)
	}
	return nil
}

func deleteRun(ctx context.Context, db *database.ResultDB, id int64, out io.Writer) error {
	deleted, err := db.DeleteRun(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("run with ID %d not found", id)
	}
	fmt.Fprintf(out, "Deleted run %d\n", id)
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
