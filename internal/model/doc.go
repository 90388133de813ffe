// Package model defines the data structures produced by a contact crawl.
//
// The types here are plain records: the crawler creates them, reports and the
// results database consume them. None of them perform I/O.
//
// # Core Types
//
//   - ContactRecord: contact signals found on a single source page
//   - ProfileDetails: metadata resolved from a messaging-profile link
//   - CrawlResult: everything one crawl produced, in visitation order
//   - CrawlState: where the crawl stopped and why
//
// # Set Semantics
//
// Emails, phones and profiles are stored as slices holding unique values in
// first-seen order. They marshal to JSON arrays and keep report output stable.
package model
