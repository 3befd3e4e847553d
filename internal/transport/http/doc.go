// Package http contains the chi HTTP handlers of the dashboard API.
// Handlers parse and validate requests, delegate to the service layer,
// and map service errors to RFC 7807 problem responses.
package http
