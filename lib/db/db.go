package db

import (
	"io"
	"math/bits"
)

type Implementation string

const (
	ImplMaple Implementation = "maple"
)

// Feature is a bit set of KVDB operations, several features can be or-ed together
type Feature uint64

const (
	FeatureSet Feature = 1 << iota
	FeatureGet
	FeatureDelete
	FeatureHas
	FeatureKeys
	FeatureSave
	FeatureLoad
)

var featureNames = [...]string{"Set", "Get", "Delete", "Has", "Keys", "Save", "Load"}

// String names a single feature, combined or unknown bits yield "Unknown"
func (f Feature) String() string {
	if bits.OnesCount64(uint64(f)) != 1 {
		return "Unknown"
	}
	if i := bits.TrailingZeros64(uint64(f)); i < len(featureNames) {
		return featureNames[i]
	}
	return "Unknown"
}

// DatabaseInfo describes a database, Metadata is implementation specific
type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	KeyCount          int            `json:"key_count"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// KVDB is the storage engine below a store. Every write carries the index of the
// raft entry (or local counter) that produced it, a write with a lower index than
// the stored entry is ignored. Implementations must be safe for concurrent use,
// except Load.
type KVDB interface {
	Set(key string, value []byte, writeIndex uint64)
	// Delete of a missing key is a no-op
	Delete(key string, writeIndex uint64)

	// Get returns a copy of the stored value
	Get(key string) (value []byte, loaded bool)
	Has(key string) (loaded bool)
	Keys() (keys []string)

	Save(w io.Writer) (err error)
	// Load replaces the whole state with the snapshot read from r
	Load(r io.Reader) (err error)

	SupportsFeature(feature Feature) (ok bool)
	GetInfo() (info DatabaseInfo)

	// SetWriteIdx only ever raises the index
	SetWriteIdx(index uint64)
	WriteIdx() (index uint64)

	Close() (err error)
}
