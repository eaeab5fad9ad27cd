// Package transport defines the interfaces between the RPC layer and the network.
//
//   - IRPCClientTransport: sends serialized requests for a shard to one of the
//     configured endpoints and returns the raw response.
//
//   - IRPCServerTransport: receives requests, extracts the shard id and hands the
//     payload to the registered ServerHandleFunc.
//
// The http subpackage contains the only implementation.
package transport
