package maple

import (
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/lib/db/engines/maple/internal"
	"github.com/ValentinKolb/dTodo/lib/db/util"
	"io"
	"runtime"
	"sync/atomic"
)

const (
	magicNum     = "MAPLEDB\x00"
	mapleVersion = 4
	// per entry bookkeeping counted in GetInfo: index, key length and value length
	entryOverhd = 16
)

// mapleImpl keeps all entries in memory, spread over xsync maps by key hash
type mapleImpl struct {
	numShards int
	seed      uint64
	shards    []*internal.Shard
	currIndex atomic.Uint64
}

// DBOptions tunes NewMapleDB, a zero NumShards means one shard per CPU
type DBOptions struct {
	NumShards int
}

// NewMapleDB creates an empty database, opts may be nil
func NewMapleDB(opts *DBOptions) db.KVDB {
	n := runtime.NumCPU()
	if opts != nil && opts.NumShards > 0 {
		n = opts.NumShards
	}
	return &mapleImpl{
		numShards: n,
		seed:      util.GenerateSeed(),
		shards:    newShards(n),
	}
}

func newShards(n int) []*internal.Shard {
	shards := make([]*internal.Shard, n)
	for i := 0; i < n; i++ {
		shards[i] = internal.NewShard()
	}
	return shards
}

func (maple *mapleImpl) shardFor(key string) *internal.Shard {
	return internal.GetShard(util.HashString(key, maple.seed), maple.shards)
}

// Set stores a copy of value unless the key holds an entry with a higher index
func (maple *mapleImpl) Set(key string, value []byte, writeIdx uint64) {
	maple.SetWriteIdx(writeIdx)

	valueCopy := append(make([]byte, 0, len(value)), value...)

	maple.shardFor(key).Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded && writeIdx < old.Index {
			return old, false
		}
		return internal.Entry{
			Value: valueCopy,
			Index: writeIdx,
		}, false
	})
}

// Delete drops the key unless its entry has a higher index than writeIdx
func (maple *mapleImpl) Delete(key string, writeIdx uint64) {
	maple.SetWriteIdx(writeIdx)

	maple.shardFor(key).Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		// returning delete for a missing key keeps Compute from inserting it
		return old, !loaded || writeIdx >= old.Index
	})
}

func (maple *mapleImpl) Get(key string) ([]byte, bool) {
	e, ok := maple.shardFor(key).Data.Load(key)
	if !ok {
		return nil, false
	}
	return append(make([]byte, 0, len(e.Value)), e.Value...), true
}

func (maple *mapleImpl) Has(key string) bool {
	_, ok := maple.shardFor(key).Data.Load(key)
	return ok
}

// Keys may miss or include entries written while it runs
func (maple *mapleImpl) Keys() []string {
	keys := make([]string, 0, maple.size())
	for _, shard := range maple.shards {
		shard.Data.Range(func(key string, _ internal.Entry) bool {
			keys = append(keys, key)
			return true
		})
	}
	return keys
}

func (maple *mapleImpl) size() int {
	n := 0
	for _, shard := range maple.shards {
		n += shard.Data.Size()
	}
	return n
}

// Save writes a fuzzy snapshot, concurrent writes may or may not be included.
//
// Layout (little endian):
//
//	magic | version uint8 | seed uint64 | count uint64 |
//	count * (keyLen uint32 | key | index uint64 | valueLen uint32 | value)
func (maple *mapleImpl) Save(w io.Writer) error {
	type snapshotEntry struct {
		key   string
		entry internal.Entry
	}

	// collect first, the entry count is part of the header
	var entries []snapshotEntry
	for _, shard := range maple.shards {
		shard.Data.Range(func(key string, e internal.Entry) bool {
			value := make([]byte, len(e.Value))
			copy(value, e.Value)
			entries = append(entries, snapshotEntry{key, internal.Entry{Value: value, Index: e.Index}})
			return true
		})
	}

	sw := newSnapshotWriter(w)
	sw.write([]byte(magicNum))
	sw.uint8(mapleVersion)
	sw.uint64(maple.seed)
	sw.uint64(uint64(len(entries)))

	for _, item := range entries {
		sw.blob([]byte(item.key))
		sw.uint64(item.entry.Index)
		sw.blob(item.entry.Value)
	}

	return sw.flush()
}

// Load replaces all entries, the current state is kept if the snapshot is incomplete.
// Load must not run concurrently with other calls.
func (maple *mapleImpl) Load(r io.Reader) error {
	sr := newSnapshotReader(r)
	if err := sr.header(); err != nil {
		return err
	}

	seed := sr.uint64()
	count := sr.uint64()

	shards := newShards(maple.numShards)
	var maxIndex uint64

	for i := uint64(0); i < count && sr.err == nil; i++ {
		key := string(sr.blob())
		index := sr.uint64()
		value := sr.blob()
		if sr.err != nil {
			break
		}

		maxIndex = max(maxIndex, index)
		internal.GetShard(util.HashString(key, seed), shards).Data.Store(key, internal.Entry{
			Value: value,
			Index: index,
		})
	}
	if sr.err != nil {
		return fmt.Errorf("failed to read snapshot: %w", sr.err)
	}

	maple.shards = shards
	maple.seed = seed
	maple.currIndex.Store(0)
	maple.SetWriteIdx(maxIndex)

	return nil
}

func (maple *mapleImpl) GetInfo() db.DatabaseInfo {
	sizeBytes := 0
	keyCount := 0
	shardSizes := make([]int, len(maple.shards))

	for i, shard := range maple.shards {
		shard.Data.Range(func(key string, entry internal.Entry) bool {
			sizeBytes += len(key) + len(entry.Value) + entryOverhd
			keyCount++
			return true
		})
		shardSizes[i] = shard.Data.Size()
	}

	meta := &struct {
		CurrentWriteIndex uint64 `json:"current_write_index"`
		ShardCount        int    `json:"shard_count"`
		ShardSizes        []int  `json:"shard_sizes"`
	}{
		CurrentWriteIndex: maple.currIndex.Load(),
		ShardCount:        len(maple.shards),
		ShardSizes:        shardSizes,
	}

	return db.DatabaseInfo{
		SizeBytes: sizeBytes,
		KeyCount:  keyCount,
		DbType:    db.ImplMaple,
		SupportedFeatures: []db.Feature{
			db.FeatureSet, db.FeatureGet, db.FeatureDelete,
			db.FeatureHas, db.FeatureKeys,
			db.FeatureSave, db.FeatureLoad,
		},
		Metadata: meta,
	}
}

const supported = db.FeatureSet | db.FeatureGet | db.FeatureDelete | db.FeatureHas |
	db.FeatureKeys | db.FeatureSave | db.FeatureLoad

func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	return supported&feature == feature
}

// Close drops all entries
func (maple *mapleImpl) Close() error {
	for _, shard := range maple.shards {
		shard.Data.Clear()
	}
	return nil
}

func (maple *mapleImpl) SetWriteIdx(newIdx uint64) {
	for {
		currIdx := maple.currIndex.Load()
		if newIdx <= currIdx {
			return
		}
		if maple.currIndex.CompareAndSwap(currIdx, newIdx) {
			return
		}
	}
}

func (maple *mapleImpl) WriteIdx() uint64 {
	return maple.currIndex.Load()
}
