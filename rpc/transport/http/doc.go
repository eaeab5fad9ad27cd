// Package http implements the RPC transports over plain HTTP.
//
// Requests are sent as POST /{shardId} with the serialized message as body, the
// response body is the serialized reply. The client picks endpoints round-robin
// and, if RetryCount is above zero, repeats a failed request on the next endpoint
// up to RetryCount more times.
// With log level debug the server logs every request.
package http
