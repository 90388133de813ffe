// Package main provides the entry point for the contactcrawl CLI.
//
// contactcrawl crawls a website breadth-first from one or more seed URLs,
// up to a fixed page budget, and reports the email addresses, phone
// numbers and Telegram profiles it finds.
//
// Usage:
//
//	contactcrawl crawl https://example.com/
//	contactcrawl history --find info@example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
