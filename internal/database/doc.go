// Package database stores finished crawl results in SQLite.
//
// Only results are stored: the seed, terminal state, every contact sighting
// and every resolved profile. Crawl state (frontier, budget) is never
// persisted, so a stored run can be inspected but not resumed.
//
// The driver is modernc.org/sqlite, which needs no cgo. The whole history
// lives in a single file under the XDG data directory.
package database
