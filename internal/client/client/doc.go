// Package client talks to the devfeed backend over gRPC. GRPCClient plays
// the three external services the app depends on: the auth provider, the
// document store and the object-storage presigner.
//
// Access tokens ride in request metadata; an expired one is refreshed once,
// transparently, using the refresh token persisted under SessionKey. A failed
// refresh signs the user out.
package client
