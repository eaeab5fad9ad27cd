package dstore

import (
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/lib/store"
	"github.com/ValentinKolb/dTodo/lib/store/dstore/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
	"io"
	"time"
)

// slowBatch is the batch duration above which Update logs a warning
const slowBatch = time.Millisecond

// KVStateMachine applies replicated store commands to a KVDB.
// It implements sm.IConcurrentStateMachine, lookups may run while a batch is applied.
type KVStateMachine struct {
	replicaID uint64
	shardID   uint64
	database  db.KVDB
}

// CreateStateMachineFactory returns the factory passed to NodeHost.StartConcurrentReplica.
// Every replica gets its own database created by dbFactory.
func CreateStateMachineFactory(dbFactory store.DBFactory) func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return &KVStateMachine{
			replicaID: replicaID,
			shardID:   shardID,
			database:  dbFactory(),
		}
	}
}

// --------------------------------------------------------------------------
// Reads
// --------------------------------------------------------------------------

// Lookup answers an internal.Query from the local database.
func (fsm *KVStateMachine) Lookup(itf interface{}) (interface{}, error) {
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("invalid Query type: %T", itf))
	}

	switch q.Type {
	case internal.QueryTGet:
		if err := fsm.require(db.FeatureGet); err != nil {
			return nil, err
		}
		val, found := fsm.database.Get(q.Key)
		return internal.QueryResult{Value: val, Ok: found}, nil

	case internal.QueryTHas:
		if err := fsm.require(db.FeatureHas); err != nil {
			return nil, err
		}
		return fsm.database.Has(q.Key), nil

	case internal.QueryTKeys:
		if err := fsm.require(db.FeatureKeys); err != nil {
			return nil, err
		}
		return fsm.database.Keys(), nil

	case internal.QueryTGetDBInfo:
		return fsm.database.GetInfo(), nil

	default:
		return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("unknown Query operation: %d", q.Type))
	}
}

// require returns a RetCUnsupportedOperation error if the database lacks feature
func (fsm *KVStateMachine) require(feature db.Feature) error {
	if fsm.database.SupportsFeature(feature) {
		return nil
	}
	return store.NewError(store.RetCUnsupportedOperation, fmt.Sprintf("%s operation is not supported", feature))
}

// --------------------------------------------------------------------------
// Writes
// --------------------------------------------------------------------------

// Update applies a batch of committed entries in log order.
// The RAFT index of each entry becomes the write index in the database, so replaying
// entries that are already part of a snapshot has no effect.
// Bad entries get an error result and do not stop the batch.
func (fsm *KVStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {
	start := time.Now()

	for i := range entries {
		entries[i].Result = fsm.apply(entries[i])
	}

	if elapsed := time.Since(start); elapsed > slowBatch && len(entries) > 0 {
		log.Warningf("shard %d: applying %d entries took %s", fsm.shardID, len(entries), elapsed)
	}
	return entries, nil
}

// apply executes a single entry and returns its result
func (fsm *KVStateMachine) apply(e sm.Entry) sm.Result {
	failed := func(code store.RetCode, format string, args ...any) sm.Result {
		return sm.Result{Value: uint64(code), Data: []byte(fmt.Sprintf(format, args...))}
	}

	if len(e.Cmd) == 0 {
		return failed(store.RetCInvalidOperation, "empty command ignored")
	}

	var cmd internal.Command
	if err := cmd.Deserialize(e.Cmd); err != nil {
		return failed(store.RetCInternalError, "failed to deserialize command: %v", err)
	}

	feature, err := cmd.Type.ToDBFeature()
	if err != nil {
		return failed(store.RetCInvalidOperation, "unknown Command operation: %s", cmd.Type)
	}
	if !fsm.database.SupportsFeature(feature) {
		return failed(store.RetCUnsupportedOperation, "%s operation is not supported", cmd.Type)
	}

	switch cmd.Type {
	case internal.CommandTSet:
		fsm.database.Set(cmd.Key, cmd.Value, e.Index)
	case internal.CommandTDelete:
		fsm.database.Delete(cmd.Key, e.Index)
	}
	return sm.Result{Value: uint64(store.RetCSuccess)}
}

// --------------------------------------------------------------------------
// Snapshots
// --------------------------------------------------------------------------

// PrepareSnapshot has nothing to capture, the database supports fuzzy snapshots
func (fsm *KVStateMachine) PrepareSnapshot() (interface{}, error) {
	return nil, nil
}

// SaveSnapshot writes the database to w
func (fsm *KVStateMachine) SaveSnapshot(_ interface{}, w io.Writer, _ sm.ISnapshotFileCollection, _ <-chan struct{}) error {
	if err := fsm.require(db.FeatureSave); err != nil {
		return err
	}
	return fsm.database.Save(w)
}

// RecoverFromSnapshot replaces the database with a snapshot written by SaveSnapshot
func (fsm *KVStateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, _ <-chan struct{}) error {
	if err := fsm.require(db.FeatureLoad); err != nil {
		return err
	}
	log.Infof("shard %d replica %d: recovering from snapshot", fsm.shardID, fsm.replicaID)
	return fsm.database.Load(r)
}

func (fsm *KVStateMachine) Close() error {
	return fsm.database.Close()
}
