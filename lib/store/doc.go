// Package store provides a high-level interface for key-value storage operations
// with unified error handling. It serves as an abstraction layer over the
// lower-level db.KVDB implementations, adding write index management and
// standardized error reporting.
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for interacting with
//     a key-value store (Set, Get, Delete, Has, Keys). All implementations share this
//     interface, so applications like the todo service can switch between storage
//     backends without code changes and can be tested against an in-memory store.
//
//   - Error System: A structured error type (*Error) with typed return codes
//     (RetCode), allowing callers to distinguish internal failures from
//     unsupported or invalid operations.
//
//   - DBFactory: A function type that abstracts the creation of underlying db.KVDB
//     instances.
//
// Implementations:
//
//	- Local Store (lstore): A non-distributed implementation that directly
//	  utilizes a db.KVDB instance. It manages write index progression internally
//	  using atomic operations.
//
//	- Distributed Store (dstore): An implementation built on the Dragonboat
//	  RAFT consensus library that replicates all writes across multiple nodes.
//
//	- RPC Store (github.com/ValentinKolb/dTodo/rpc/client): Forwards all operations
//	  to a store node over an RPC transport.
package store
