// Package report renders crawl results for people and tools.
//
// Three writers share the Writer interface:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter and FullJSONWriter: JSON for other programs
//   - MarkdownWriter: Markdown with a Mermaid chart of the signal mix
package report
