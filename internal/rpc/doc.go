// Package rpc is the wire contract between the devfeed client and backend:
// the devfeed.v1.Backend gRPC service, its message types and a JSON codec
// that carries them.
//
// Messages are plain Go structs, not generated protobuf types. Importing the
// package registers the codec with grpc's encoding registry under the
// content-subtype CodecName ("json"). BackendClient selects it on every
// call, and the server picks it from the request's content-type. Other
// services on the same server, such as grpc.health.v1.Health, keep the
// default protobuf codec.
package rpc
