// Package api provides the read-only HTTP observer surface for the blind
// sync service.
//
// It exposes the synchronization controller's current view: health,
// service status, the device collection and the schedule collection.
// All routes are GET; device mutations and commands flow through the
// controller's own API and the remote store, never through this server.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
