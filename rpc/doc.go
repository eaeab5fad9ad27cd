// Package rpc connects the todo service to store nodes running in other processes.
//
// Subpackages:
//
//   - common: the Message protocol plus client and server configuration.
//
//   - serializer: JSON and GOB encodings of a Message.
//
//   - transport: client and server transport interfaces, implemented over HTTP.
//
//   - server: hosts lstore and dstore shards and answers store requests.
//
//   - client: a store.IStore that forwards every call to a server.
package rpc
