// Package lstore implements a local, in-memory, single-node key-value store based on the
// store.IStore interface. It is a thin wrapper around any db.KVDB implementation
// with automatic write index management. Data is not persisted between process restarts.
//
// The store keeps an atomic counter that is incremented with every write and passed to
// the db.KVDB as the write index. Before executing an operation the store checks whether
// the underlying db.KVDB supports it and returns store.RetCUnsupportedOperation otherwise.
//
// Usage Example:
//
//	factory := func() db.KVDB { return maple.NewMapleDB(nil) }
//	s := lstore.NewLocalStore(factory)
//
//	err := s.Set("1", []byte(`{"id":"1","title":"Buy milk"}`))
//	value, exists, err := s.Get("1")
//	keys, err := s.Keys()
package lstore
