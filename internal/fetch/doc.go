// Package fetch provides the pooled HTTP client shared by manifest sources
// and status API providers.
//
// This package is internal to serverboard. Every request goes through
// [Client.Fetch], which captures the outcome in a [Response] value instead of
// returning a separate error, so callers handle success and failure in one
// place.
package fetch
