package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/contactcrawl/internal/model"
)

// Writer renders crawl results.
type Writer interface {
	// Write renders one result and returns the bytes written.
	Write(result *model.CrawlResult) (int, error)

	// WriteAll renders the results of a batch in seed order. Nil entries
	// (seeds that never started) are skipped.
	WriteAll(results []*model.CrawlResult) (int, error)
}

// MultiWriter writes to several Writers in turn, stopping at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
func (m *MultiWriter) Write(result *model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAll outputs the batch to all configured Writers.
func (m *MultiWriter) WriteAll(results []*model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteAll(results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// writeEach calls write for every non-nil result.
func writeEach(results []*model.CrawlResult, write func(*model.CrawlResult) (int, error)) (int, error) {
	var total int
	for _, r := range results {
		if r == nil {
			continue
		}
		n, err := write(r)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// StateLabel turns a crawl state into a display label, e.g. "Budget Capped".
func StateLabel(state model.CrawlState) string {
	return cases.Title(language.English).String(strings.ReplaceAll(state.String(), "_", " "))
}

func kindLabel(kind model.ContactKind) string {
	return cases.Title(language.English).String(kind.String())
}

// abandoned returns how many frontier entries were never attempted.
func abandoned(result *model.CrawlResult) int {
	n := len(result.Frontier) - result.PagesAttempted
	if n < 0 {
		return 0
	}
	return n
}

const timeLayout = "2006-01-02 15:04:05 MST"
