// Package sheets fetches the three source tables from published Google
// Sheets. The default path is the unauthenticated CSV export endpoint
// with a time-boxed request and a single retry; deployments with an API
// key can switch to the Sheets API instead. Fetched raw tables are
// memoized for a short TTL so UI interactions do not refetch, and the
// last good tables are kept around for stale serving when a refresh
// fails at the source.
package sheets
