package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/contactcrawl/internal/model"
)

// MarkdownWriter outputs results as Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one result as a Markdown document.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeContacts(md, result, "Email Addresses", model.KindEmail, result.Emails())
	w.writeContacts(md, result, "Phone Numbers", model.KindPhone, result.Phones())
	w.writeProfiles(md, result)
	w.writeFailures(md, result)

	return len(md.String()), md.Build()
}

// WriteAll outputs every result of a batch one after another.
func (w *MarkdownWriter) WriteAll(results []*model.CrawlResult) (int, error) {
	return writeEach(results, w.Write)
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Contact Crawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Seed", "`" + result.Seed + "`"},
	}
	if !result.StartedAt.IsZero() {
		rows = append(rows,
			[]string{"Started", result.StartedAt.Format(timeLayout)},
			[]string{"Duration", result.Duration().String()},
		)
	}
	rows = append(rows,
		[]string{"Pages Fetched", strconv.Itoa(result.PagesAttempted) + " / " + strconv.Itoa(result.MaxPages)},
		[]string{"Status", statusText(result.State)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func statusText(state model.CrawlState) string {
	switch state {
	case model.StateExhausted:
		return "✅ " + StateLabel(state)
	case model.StateBudgetCapped:
		return "⚠️ " + StateLabel(state)
	case model.StateCancelled:
		return "❌ " + StateLabel(state)
	default:
		return StateLabel(state)
	}
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.CrawlResult) {
	s := result.Summary()

	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Signal", "Count"},
		Rows: [][]string{
			{"📧 Emails", strconv.Itoa(s.Emails)},
			{"📞 Phones", strconv.Itoa(s.Phones)},
			{"💬 Profiles", strconv.Itoa(s.Profiles)},
			{"**Total**", "**" + strconv.Itoa(s.TotalSignals()) + "**"},
			{"Pages with contacts", strconv.Itoa(s.Records)},
			{"Fetch failures", strconv.Itoa(s.FetchFailures)},
			{"Profile failures", strconv.Itoa(s.ProfileFailures)},
		},
	})
	md.PlainText("")

	if s.TotalSignals() > 0 {
		w.writePieChart(md, s)
	}

	w.writeAlert(md, result, s)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Contact Signals"),
		piechart.WithShowData(true),
	)

	if s.Emails > 0 {
		chart.LabelAndIntValue("Emails", uint64(s.Emails))
	}
	if s.Phones > 0 {
		chart.LabelAndIntValue("Phones", uint64(s.Phones))
	}
	if s.Profiles > 0 {
		chart.LabelAndIntValue("Profiles", uint64(s.Profiles))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.CrawlResult, s model.Summary) {
	switch {
	case result.State == model.StateCancelled:
		md.Warningf("The crawl was cancelled after %d page(s); results are partial.", result.PagesAttempted)
	case result.State == model.StateBudgetCapped:
		md.Importantf("The page budget of %d was reached; %d queued page(s) were not visited.",
			result.MaxPages, abandoned(result))
	case s.FetchFailures > 0 && s.FetchFailures == s.Pages:
		md.Cautionf("Every fetch failed (%d page(s)).", s.FetchFailures)
	case s.TotalSignals() == 0:
		md.Note("No contact signals were found.")
	default:
		md.Tip(fmt.Sprintf("Found %d contact signal(s) on %d page(s).", s.TotalSignals(), s.Records))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeContacts(md *markdown.Markdown, result *model.CrawlResult, title string, kind model.ContactKind, values []string) {
	if len(values) == 0 {
		return
	}

	md.H2(title)
	md.PlainText("")

	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{cell(v), cell(strings.Join(result.SourcesOf(kind, v), ", "))})
	}
	md.Table(markdown.TableSet{
		Header: []string{kindLabel(kind), "Found On"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeProfiles(md *markdown.Markdown, result *model.CrawlResult) {
	links := result.ProfileURLs()
	if len(links) == 0 {
		return
	}

	md.H2("Messaging Profiles")
	md.PlainText("")

	rows := make([][]string, 0, len(links))
	for _, link := range links {
		p := result.Profiles[link]
		rows = append(rows, []string{cell(link), cell(p.Title), cell(p.Bio), cell(p.AvatarURL)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Profile", "Name", "Bio", "Avatar"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, result *model.CrawlResult) {
	failures := make([][]string, 0, len(result.FetchFailures)+len(result.ProfileFailures))
	for _, f := range result.FetchFailures {
		failures = append(failures, []string{"page", cell(f.URL), cell(f.Reason)})
	}
	for _, f := range result.ProfileFailures {
		failures = append(failures, []string{"profile", cell(f.URL), cell(f.Reason)})
	}
	if len(failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "URL", "Reason"},
		Rows:   failures,
	})
	md.PlainText("")
}

// cell makes s safe inside a Markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}
