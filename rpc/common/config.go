package common

import (
	"fmt"
	"github.com/lni/dragonboat/v4/config"
	"sort"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Dragonboat configuration
// --------------------------------------------------------------------------

// Election and heartbeat timeouts in multiples of RTTMillisecond
const (
	electionRTTFactor  = 10
	heartbeatRTTFactor = 1
)

// ToDragonboatConfig returns the replica configuration for shardId
func (c *ServerConfig) ToDragonboatConfig(shardId uint64) config.Config {
	return config.Config{
		ReplicaID:          c.ReplicaID,
		ShardID:            shardId,
		ElectionRTT:        electionRTTFactor,
		HeartbeatRTT:       heartbeatRTTFactor,
		CheckQuorum:        true,
		SnapshotEntries:    c.SnapshotEntries,
		CompactionOverhead: c.CompactionOverhead,
		MaxInMemLogSize:    0,
	}
}

// ToNodeHostConfig returns the NodeHost configuration, the RAFT log and snapshots are kept in DataDir
func (c *ServerConfig) ToNodeHostConfig() config.NodeHostConfig {
	return config.NodeHostConfig{
		WALDir:         c.DataDir,
		NodeHostDir:    c.DataDir,
		RTTMillisecond: c.RTTMillisecond,
		RaftAddress:    c.ClusterMembers[c.ReplicaID],
	}
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerShardType selects the store implementation backing a shard
type ServerShardType string

const (
	ShardTypeLocalIStore  ServerShardType = "lstore"
	ShardTypeRemoteIStore ServerShardType = "dstore"
)

// ParseShardType converts the name used on the command line into a ServerShardType
func ParseShardType(s string) (ServerShardType, error) {
	switch ServerShardType(s) {
	case ShardTypeLocalIStore, ShardTypeRemoteIStore:
		return ServerShardType(s), nil
	default:
		return "", fmt.Errorf("invalid shard type %q, must be one of lstore, dstore", s)
	}
}

type ServerShard struct {
	// ShardID is the ID of the shard
	ShardID uint64
	// Type is the store implementation of the shard
	Type ServerShardType
}

// ServerConfig holds all configuration parameters for the RAFT cluster.
type ServerConfig struct {
	// shards served by this node
	Shards []ServerShard

	// Dragonboat parameters
	RTTMillisecond     uint64
	SnapshotEntries    uint64
	CompactionOverhead uint64
	DataDir            string
	ReplicaID          uint64
	ClusterMembers     map[uint64]string

	// remote kvStore parameters
	TimeoutSecond int64
	// BusyRetries repeats requests rejected with ErrSystemBusy, 0 disables it
	BusyRetries int

	// RPC transport settings
	Endpoint string

	// Logging configuration
	LogLevel string
}

// HasRemoteShard checks if the configuration contains any remote shards
func (c *ServerConfig) HasRemoteShard() bool {
	for _, shard := range c.Shards {
		if shard.Type == ShardTypeRemoteIStore {
			return true
		}
	}
	return false
}

// String renders the configuration for the startup log
func (c *ServerConfig) String() string {
	var p ConfigPrinter

	p.Section("RPC Server")
	p.Field("Endpoint", c.Endpoint)
	p.Field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	p.Section("Logging")
	p.Field("Log Level", c.LogLevel)

	p.Section("Shards")
	for _, shard := range c.Shards {
		p.Field(strconv.FormatUint(shard.ShardID, 10), string(shard.Type))
	}

	if !c.HasRemoteShard() {
		return p.String()
	}

	p.Section("Node Identity")
	p.Field("RAFT Address", c.ClusterMembers[c.ReplicaID])
	p.Field("Node ID", strconv.FormatUint(c.ReplicaID, 10))

	p.Section("RAFT Parameters")
	p.Field("Busy Retries", strconv.Itoa(c.BusyRetries))
	p.Field("Round Trip Time", fmt.Sprintf("%d ms", c.RTTMillisecond))
	p.Field("Election Timeout", fmt.Sprintf("%d ms", c.RTTMillisecond*electionRTTFactor))
	p.Field("Heartbeat Interval", fmt.Sprintf("%d ms", c.RTTMillisecond*heartbeatRTTFactor))
	p.Field("Snapshot Entries", strconv.FormatUint(c.SnapshotEntries, 10))
	p.Field("Compaction Overhead", strconv.FormatUint(c.CompactionOverhead, 10))
	p.Field("Data Directory", c.DataDir)

	p.Section("Cluster")
	ids := make([]uint64, 0, len(c.ClusterMembers))
	for id := range c.ClusterMembers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p.Field(fmt.Sprintf("Node %d", id), c.ClusterMembers[id])
	}

	return p.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	// RetryCount is the number of extra attempts after a failed request, 0 fails immediately
	RetryCount int
}

// String renders the configuration for the startup log
func (c *ClientConfig) String() string {
	var p ConfigPrinter

	p.Section("RPC Client")
	p.Field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	p.Field("Retry Count", strconv.Itoa(c.RetryCount))
	for i, endpoint := range c.Endpoints {
		p.Field(fmt.Sprintf("Endpoint %d", i), endpoint)
	}

	return p.String()
}

// --------------------------------------------------------------------------
// Printing
// --------------------------------------------------------------------------

// ConfigPrinter renders configuration structs as aligned "name: value" lines grouped in sections.
// The zero value is ready to use.
type ConfigPrinter struct {
	sb strings.Builder
}

// Section starts a new section with an upper case title
func (p *ConfigPrinter) Section(title string) {
	fmt.Fprintf(&p.sb, "\n%s\n", strings.ToUpper(title))
}

// Field adds a single line to the current section
func (p *ConfigPrinter) Field(name, value string) {
	fmt.Fprintf(&p.sb, "  %-22s: %s\n", name, value)
}

func (p *ConfigPrinter) String() string {
	return p.sb.String()
}
