// Package common holds the types shared by the RPC client, server and transports.
//
//   - Message: the single request/response structure exchanged between the
//     todo API and a store node. Which fields are set depends on MsgType.
//
//   - ServerConfig: configuration of a store node (shards, RAFT parameters,
//     endpoint). It converts itself into the Dragonboat configuration structs.
//
//   - ClientConfig: endpoints, timeout and retry count used by client transports.
package common
