package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when the database file does not
	// exist and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrNilResult is returned when SaveCrawlResult receives a nil result.
	ErrNilResult = errors.New("crawl result is nil")
)
