package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/contactcrawl/internal/model"
)

// JSONWriter outputs results as JSON.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the result as one JSON object.
func (w *JSONWriter) Write(result *model.CrawlResult) (int, error) {
	return w.writeJSON(result)
}

// WriteAll outputs the batch as one JSON array, skipping nil entries.
func (w *JSONWriter) WriteAll(results []*model.CrawlResult) (int, error) {
	return w.writeJSON(nonNil(results))
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps a result with the tool version and its summary counts.
type JSONReport struct {
	Version string             `json:"version"`
	Summary model.Summary      `json:"summary"`
	Result  *model.CrawlResult `json:"result"`
}

// NewJSONReport creates a JSONReport for result.
func NewJSONReport(result *model.CrawlResult, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Summary: result.Summary(),
		Result:  result,
	}
}

// JSONBatchReport wraps the results of a batch.
type JSONBatchReport struct {
	Version string        `json:"version"`
	Reports []*JSONReport `json:"reports"`
}

// FullJSONWriter outputs results wrapped with version and summary.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for wrapped reports.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs one wrapped result.
func (w *FullJSONWriter) Write(result *model.CrawlResult) (int, error) {
	return w.writeJSON(NewJSONReport(result, w.version))
}

// WriteAll outputs the batch as one JSONBatchReport.
func (w *FullJSONWriter) WriteAll(results []*model.CrawlResult) (int, error) {
	batch := &JSONBatchReport{
		Version: w.version,
		Reports: make([]*JSONReport, 0, len(results)),
	}
	for _, r := range nonNil(results) {
		batch.Reports = append(batch.Reports, NewJSONReport(r, w.version))
	}
	return w.writeJSON(batch)
}

func nonNil(results []*model.CrawlResult) []*model.CrawlResult {
	out := make([]*model.CrawlResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
