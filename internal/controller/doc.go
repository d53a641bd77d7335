// Package controller reconciles blind state across the remote HTTP
// store, the durable local cache and the live MQTT transport.
//
// The controller owns the authoritative in-memory device collection.
// Every mutation of that collection, whether an inbound status merge or
// an optimistic command application, serializes on a single mutex, so
// merges never interleave field by field. Reads hand out copies.
//
// Loading is remote-first: the remote store is the source of truth when
// reachable and its responses are written through to the cache; when it
// is not, the cache serves the last-known collection and the controller
// flips to offline, where commands still apply optimistically and land
// in the cache. Load never fails outright.
//
// Observers registered with AddObserver are invoked after every change,
// outside the controller lock.
package controller
