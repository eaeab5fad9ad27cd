package dstore

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/lib/store"
	"github.com/ValentinKolb/dTodo/lib/store/dstore/internal"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var log = logger.GetLogger("store")

// raftStore implements store.IStore on top of a single Dragonboat shard.
// Writes go through the RAFT log, reads are linearizable unless noted otherwise.
type raftStore struct {
	nh      *dragonboat.NodeHost
	shardID uint64
	session *client.Session
	timeout time.Duration
	retries int
	busy    *metrics.Counter
}

// NewDistributedStore returns a store backed by the shard shardID of nh.
// timeout limits each proposal and read. busyRetries is the number of extra attempts
// for requests rejected with ErrSystemBusy, with 0 every failure is returned at once.
func NewDistributedStore(nh *dragonboat.NodeHost, shardID uint64, timeout time.Duration, busyRetries int) store.IStore {
	return &raftStore{
		nh:      nh,
		shardID: shardID,
		session: nh.GetNoOPSession(shardID),
		timeout: timeout,
		retries: max(0, busyRetries),
		busy:    metrics.GetOrCreateCounter(fmt.Sprintf(`dtodo_store_busy_total{shard="%d"}`, shardID)),
	}
}

// --------------------------------------------------------------------------
// RAFT helpers
// --------------------------------------------------------------------------

// withBusyRetry runs op once plus up to s.retries more times while it returns
// dragonboat.ErrSystemBusy. Between attempts it waits a tenth of the store timeout.
func (s *raftStore) withBusyRetry(name string, op func(ctx context.Context) error) error {
	attempts := 1 + s.retries
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := op(ctx)
		cancel()

		if !errors.Is(err, dragonboat.ErrSystemBusy) {
			return err
		}
		s.busy.Inc()
		if attempt == attempts {
			return store.NewError(store.RetCInternalError, fmt.Sprintf("%s: shard %d busy after %d attempt(s)", name, s.shardID, attempts))
		}

		log.Infof("%s: shard %d busy, retrying (%d/%d)", name, s.shardID, attempt, attempts)
		time.Sleep(s.timeout / 10)
	}
}

// propose replicates cmd and maps the state machine result to a *store.Error
func (s *raftStore) propose(cmd internal.Command) error {
	var result uint64
	var data []byte

	err := s.withBusyRetry("propose "+cmd.Type.String(), func(ctx context.Context) error {
		res, err := s.nh.SyncPropose(ctx, s.session, cmd.Serialize())
		result, data = res.Value, res.Data
		return err
	})
	if err != nil {
		return asStoreError(err)
	}

	if result != uint64(store.RetCSuccess) {
		return store.NewError(store.RetCode(result), string(data))
	}
	return nil
}

// query asks the state machine and converts the answer to R.
// With stale set the local replica is read without consulting the leader.
func query[R any](s *raftStore, q internal.Query, stale bool) (R, error) {
	var zero R
	var res interface{}

	err := s.withBusyRetry("read", func(ctx context.Context) error {
		var err error
		if stale {
			res, err = s.nh.StaleRead(s.shardID, q)
		} else {
			res, err = s.nh.SyncRead(ctx, s.shardID, q)
		}
		return err
	})
	if err != nil {
		return zero, asStoreError(err)
	}

	typed, ok := res.(R)
	if !ok {
		return zero, store.NewError(store.RetCInternalError, fmt.Sprintf("unexpected query result %T, expected %T", res, zero))
	}
	return typed, nil
}

// asStoreError keeps *store.Error values and wraps everything else as internal error
func asStoreError(err error) *store.Error {
	var se *store.Error
	if errors.As(err, &se) {
		return se
	}
	return store.NewError(store.RetCInternalError, err.Error())
}

// --------------------------------------------------------------------------
// Interface Methods (docs see store/interface.go)
// --------------------------------------------------------------------------

func (s *raftStore) Set(key string, value []byte) error {
	return s.propose(internal.Command{Type: internal.CommandTSet, Key: key, Value: value})
}

func (s *raftStore) Delete(key string) error {
	return s.propose(internal.Command{Type: internal.CommandTDelete, Key: key})
}

func (s *raftStore) Get(key string) ([]byte, bool, error) {
	res, err := query[internal.QueryResult](s, internal.Query{Type: internal.QueryTGet, Key: key}, false)
	if err != nil {
		return nil, false, err
	}
	return res.Value, res.Ok, nil
}

func (s *raftStore) Has(key string) (bool, error) {
	return query[bool](s, internal.Query{Type: internal.QueryTHas, Key: key}, false)
}

func (s *raftStore) Keys() ([]string, error) {
	return query[[]string](s, internal.Query{Type: internal.QueryTKeys}, false)
}

// GetDBInfo reads the local replica, the numbers may lag behind the leader
func (s *raftStore) GetDBInfo() (db.DatabaseInfo, error) {
	return query[db.DatabaseInfo](s, internal.Query{Type: internal.QueryTGetDBInfo}, true)
}
