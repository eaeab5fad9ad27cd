// Package maple implements an in-memory key-value database (KVDB) with
// sharded concurrent access. It provides a complete implementation of the
// db.KVDB interface.
//
// Key Components:
//
//   - mapleImpl: The central database structure implementing db.KVDB. It manages shards
//     and provides the public API for key-value operations. The mapleImpl does not
//     generate write indices itself, the caller passes them with every write. That way
//     the caller decides how indices are produced (an atomic counter in lstore, the
//     RAFT log index in dstore).
//
//   - Shard: A partition of the database that manages a subset of the key space.
//     Each shard holds an xsync.MapOf keyed by the original string key, which keeps
//     keys enumerable for the Keys operation.
//
//   - Entry: The stored value plus the write index it was written with. The index
//     is used to detect and reject stale writes.
//
// Sharding Strategy:
//
//	String keys are hashed with FNV-1a using a database specific seed. The hash is
//	right-shifted by 7 bits to use higher-quality bits and then mapped onto a shard.
//
// Persistence:
//
//	Save writes a fuzzy snapshot (concurrent writes are allowed while saving) in a
//	small binary format: a magic number, the format version, the seed and the list
//	of entries. Load replaces the whole database with the content of a snapshot.
//
// Usage Example:
//
//	database := maple.NewMapleDB(nil)
//	database.Set("1", []byte(`{"id":"1"}`), 1)
//	value, ok := database.Get("1")
//	keys := database.Keys()
package maple
