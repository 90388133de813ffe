package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/contactcrawl/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs plain-text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have no entries.
	showEmpty bool

	// verbose adds source pages and failure lists.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose adds the pages each contact was found on and the failure lists.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one result in human-readable form.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeSummary(&sb, result)
	w.writeContacts(&sb, result, "EMAIL ADDRESSES", model.KindEmail, result.Emails())
	w.writeContacts(&sb, result, "PHONE NUMBERS", model.KindPhone, result.Phones())
	w.writeProfiles(&sb, result)
	if w.verbose {
		w.writeFailures(&sb, "FETCH FAILURES", result.FetchFailures)
		w.writeFailures(&sb, "PROFILE FAILURES", result.ProfileFailures)
	}
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteAll outputs every result of a batch one after another.
func (w *SimpleWriter) WriteAll(results []*model.CrawlResult) (int, error) {
	return writeEach(results, w.Write)
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                       CONTACT CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Seed:           %s\n", result.Seed)
	if !result.StartedAt.IsZero() {
		fmt.Fprintf(sb, "Started:        %s\n", result.StartedAt.Format(timeLayout))
		fmt.Fprintf(sb, "Duration:       %s\n", result.Duration().Round(time.Millisecond))
	}
	fmt.Fprintf(sb, "Pages Fetched:  %d / %d\n", result.PagesAttempted, result.MaxPages)

	status := StateLabel(result.State)
	switch result.State {
	case model.StateBudgetCapped:
		status += fmt.Sprintf(" (%d queued pages not visited)", abandoned(result))
	case model.StateCancelled:
		status += " (partial results)"
	}
	fmt.Fprintf(sb, "Status:         %s\n\n", status)
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, result *model.CrawlResult) {
	s := result.Summary()

	w.writeSection(sb, "SUMMARY")
	fmt.Fprintf(sb, "  Pages with contacts: %d\n", s.Records)
	fmt.Fprintf(sb, "  Emails:              %d\n", s.Emails)
	fmt.Fprintf(sb, "  Phones:              %d\n", s.Phones)
	fmt.Fprintf(sb, "  Profiles:            %d\n", s.Profiles)
	fmt.Fprintf(sb, "  Fetch failures:      %d\n", s.FetchFailures)
	fmt.Fprintf(sb, "  Profile failures:    %d\n\n", s.ProfileFailures)
}

func (w *SimpleWriter) writeContacts(sb *strings.Builder, result *model.CrawlResult, title string, kind model.ContactKind, values []string) {
	if len(values) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, title)
	if len(values) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}
	for _, v := range values {
		fmt.Fprintf(sb, "  %s\n", v)
		if w.verbose {
			for _, src := range result.SourcesOf(kind, v) {
				fmt.Fprintf(sb, "      found on %s\n", src)
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeProfiles(sb *strings.Builder, result *model.CrawlResult) {
	links := result.ProfileURLs()
	if len(links) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, "MESSAGING PROFILES")
	if len(links) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}
	for _, link := range links {
		fmt.Fprintf(sb, "  %s\n", link)
		p := result.Profiles[link]
		if p.Title != "" {
			fmt.Fprintf(sb, "      Name:   %s\n", p.Title)
		}
		if p.Bio != "" {
			fmt.Fprintf(sb, "      Bio:    %s\n", oneLine(p.Bio))
		}
		if p.AvatarURL != "" {
			fmt.Fprintf(sb, "      Avatar: %s\n", p.AvatarURL)
		}
		if w.verbose {
			for _, src := range result.SourcesOf(model.KindProfile, link) {
				fmt.Fprintf(sb, "      found on %s\n", src)
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, title string, failures []model.Failure) {
	if len(failures) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, title)
	if len(failures) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}
	for _, f := range failures {
		fmt.Fprintf(sb, "  %s\n      %s\n", f.URL, f.Reason)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// oneLine collapses runs of whitespace, including newlines, to single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
