// Package cache implements the durable local cache for offline operation.
//
// The cache is a key-value store over SQLite holding the last-known
// device and schedule collections under the fixed keys "devices" and
// "schedules". The synchronization controller writes through to it after
// every successful remote load and falls back to it when the remote
// store is unreachable.
//
// The cache is never authoritative: a fresher in-memory value in the
// controller always wins, and cached snapshots are replaced wholesale,
// never merged.
package cache
