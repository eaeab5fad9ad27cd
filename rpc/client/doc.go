// Package client implements store.IStore on top of the RPC layer.
//
// NewRPCStore returns a store whose operations are sent to a store node started
// with "dtodo store serve". The todo service uses it when it runs with
// --store=remote, so the todos live in an lstore or dstore shard on another process.
//
//	config := common.ClientConfig{
//	  Endpoints:     []string{"http://localhost:8080"},
//	  TimeoutSecond: 5,
//	}
//	s, err := client.NewRPCStore(100, config, http.NewHttpClientTransport(), serializer.NewJSONSerializer())
//	if err != nil { ... }
//	err = s.Set("todos/1", data)
//
// Failures are returned as *store.Error with code RetCInternalError. The store is
// safe for concurrent use when the transport is.
package client
