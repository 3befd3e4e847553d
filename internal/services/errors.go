package services

import "errors"

// Sentinel errors returned by the dashboard service. Handlers map these
// to HTTP status codes with errors.Is.
var (
	// ErrNotRefreshed means no dataset has been loaded yet. Returned
	// until the first successful refresh completes.
	ErrNotRefreshed = errors.New("dashboard data not loaded yet")

	// ErrYearNotAvailable means the requested year has no orders in the
	// current dataset.
	ErrYearNotAvailable = errors.New("year not available")

	// ErrCityNotAvailable means a requested city is not among the
	// selectable cities of the current dataset.
	ErrCityNotAvailable = errors.New("city not available")

	// ErrEmptyDataset means cleaning dropped every order row, so there
	// is nothing to serve.
	ErrEmptyDataset = errors.New("dataset empty after cleaning")
)
