// Package services holds the business logic between the HTTP transport
// and the data pipeline. The dashboard service owns the refresh cycle
// (fetch, clean, join) and the in-memory dataset snapshots the handlers
// read from.
package services
