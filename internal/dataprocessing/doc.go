// Package dataprocessing cleans the three raw sheet tables and joins them
// into the denormalized enriched-order set the analytics layer consumes.
//
// Cleaning is forgiving by design: individual malformed values become
// invalid (missing) markers and are never escalated to errors. Only a
// missing required column aborts processing, as a SchemaError. Orders
// without a parsable order_date are the one class of record dropped
// outright; every drop and coercion is counted in CleanStats so data
// quality regressions stay observable.
package dataprocessing
