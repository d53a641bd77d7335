// Package remote provides the HTTP client for the remote persistent store.
//
// The remote store is an external collaborator: this package only wraps
// its JSON API for device and schedule resources, attaching the bearer
// credential supplied by the auth layer. It holds no state beyond the
// configured base URL and timeout.
//
// Failure mapping matters more than the plumbing here: transport-level
// failures and 5xx responses become ErrUnavailable, which the
// synchronization controller treats as "fall back to the local cache",
// never as a fatal condition.
package remote
