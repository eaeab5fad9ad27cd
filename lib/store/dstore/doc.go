// Package dstore implements a replicated key-value store on top of the Dragonboat
// RAFT library. It satisfies store.IStore, so the todo service can run against a
// cluster of store nodes instead of a single in-process map without any change.
//
// The package has three parts:
//
//   - storeImpl: the store.IStore implementation. It turns every write into a
//     Command, proposes it with SyncPropose and translates the result code back
//     into a *store.Error.
//
//   - KVStateMachine: a Dragonboat IConcurrentStateMachine holding the db.KVDB.
//     Update applies committed commands, Lookup answers queries.
//
//   - internal: the Command and Query types and the binary command format.
//
// Writes:
//
//	Set and Delete are serialized, proposed to the shard and applied on every
//	replica once a majority committed them. The RAFT log index becomes the write
//	index of the entry, so all replicas agree on the order of writes.
//
// Reads:
//
//	Get, Has and Keys use SyncRead and are linearizable. GetDBInfo uses StaleRead
//	and may return slightly outdated numbers.
//
// Retries:
//
//	When Dragonboat reports ErrSystemBusy the operation is retried up to five
//	times, sleeping a tenth of the timeout in between. Every attempt is bounded by
//	the store timeout.
//
// Snapshots:
//
//	Snapshots are fuzzy: SaveSnapshot streams db.KVDB.Save while writes continue,
//	RecoverFromSnapshot calls db.KVDB.Load and the log entries after the snapshot
//	are replayed on top.
//
// Example:
//
//	nh, err := dragonboat.NewNodeHost(nodeHostConfig)
//	if err != nil { ... }
//
//	dbFactory := func() db.KVDB { return maple.NewMapleDB(nil) }
//
//	err = nh.StartConcurrentReplica(
//	    clusterMembers,
//	    false,
//	    dstore.CreateStateMachineFactory(dbFactory),
//	    shardConfig)
//	if err != nil { ... }
//
//	s := dstore.NewDistributedStore(nh, shardID, 5*time.Second)
//
// For a single node without replication use the lstore package.
package dstore
