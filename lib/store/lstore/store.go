package lstore

import (
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/lib/store"
	"sync/atomic"
)

// localStore serves a single in-process database. Every write gets the next
// value of a counter as write index, so later writes always win.
type localStore struct {
	db       db.KVDB
	writeIdx atomic.Uint64
}

// NewLocalStore creates a store over a database created by factory.
// The store is not replicated, its content is lost when the process exits.
func NewLocalStore(factory store.DBFactory) store.IStore {
	return &localStore{db: factory()}
}

// require returns a RetCUnsupportedOperation error if the database lacks feature
func (s *localStore) require(feature db.Feature) error {
	if s.db.SupportsFeature(feature) {
		return nil
	}
	return store.NewError(store.RetCUnsupportedOperation, fmt.Sprintf("%s operation is not supported", feature))
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *localStore) Set(key string, value []byte) error {
	if err := s.require(db.FeatureSet); err != nil {
		return err
	}
	s.db.Set(key, value, s.writeIdx.Add(1))
	return nil
}

func (s *localStore) Delete(key string) error {
	if err := s.require(db.FeatureDelete); err != nil {
		return err
	}
	s.db.Delete(key, s.writeIdx.Add(1))
	return nil
}

func (s *localStore) Get(key string) ([]byte, bool, error) {
	if err := s.require(db.FeatureGet); err != nil {
		return nil, false, err
	}
	val, ok := s.db.Get(key)
	return val, ok, nil
}

func (s *localStore) Has(key string) (bool, error) {
	if err := s.require(db.FeatureHas); err != nil {
		return false, err
	}
	return s.db.Has(key), nil
}

func (s *localStore) Keys() ([]string, error) {
	if err := s.require(db.FeatureKeys); err != nil {
		return nil, err
	}
	return s.db.Keys(), nil
}

func (s *localStore) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}
