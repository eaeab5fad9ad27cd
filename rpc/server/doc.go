// Package server implements the store node side of the RPC layer.
//
// A server hosts any number of shards, each one a store.IStore. Incoming
// common.Message requests are translated into calls on the addressed store.
// Shards come in two types:
//
//   - ShardTypeLocalIStore: an lstore.NewLocalStore backed by a maple database,
//     kept in memory of this process only.
//
//   - ShardTypeRemoteIStore: a dstore replica. All nodes listed in ClusterMembers
//     run the same shard and agree on every write via RAFT. RTTMillisecond,
//     SnapshotEntries, CompactionOverhead, DataDir, ReplicaID and ClusterMembers
//     must be set when this type is used.
//
// Example:
//
//	config := common.ServerConfig{
//	  Shards:        []common.ServerShard{{ShardID: 100, Type: common.ShardTypeLocalIStore}},
//	  Endpoint:      "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel:      "info",
//	}
//
//	s := server.NewRPCServer(config, http.NewHttpServerTransport(), serializer.NewJSONSerializer())
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Requests are handled concurrently, Serve must only be called once.
package server
