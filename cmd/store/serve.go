package store

import (
	"fmt"
	cmdUtil "github.com/ValentinKolb/dTodo/cmd/util"
	"github.com/ValentinKolb/dTodo/lib/db/util"
	"github.com/ValentinKolb/dTodo/lib/logging"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"github.com/ValentinKolb/dTodo/rpc/server"
	"github.com/ValentinKolb/dTodo/rpc/transport/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strconv"
	"strings"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	serveCmd       = &cobra.Command{
		Use:   "serve",
		Short: "Start a store node",
		Long: `Start a store node serving one or more shards over HTTP. Point dtodo serve --store=remote at it.
The configuration can be set via command line flags or environment variables. The format of the environment variables is DTODO_<flag> (e.g. DTODO_REPLICA_ID=node-1)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	key := "shards"
	serveCmd.Flags().String(key, "100=lstore", cmdUtil.WrapString("Comma-separated list of shards to serve. Format: ID=TYPE where TYPE is one of: lstore, dstore"))

	key = "rtt-millisecond"
	serveCmd.Flags().Int(key, 100, cmdUtil.WrapString("(dstore) RTTMillisecond defines the average Round Trip Time (RTT) in milliseconds between two NodeHost instances"))

	key = "snapshot-entries"
	serveCmd.Flags().Int(key, 10, cmdUtil.WrapString("(dstore) SnapshotEntries defines after how many applied Raft log entries the state machine is snapshotted. 0 disables automatic snapshots"))

	key = "compaction-overhead"
	serveCmd.Flags().Int(key, 5, cmdUtil.WrapString("(dstore) CompactionOverhead defines the number of log entries kept after a snapshot. Recommended value is about 1/2 of SnapshotEntries"))

	key = "data-dir"
	serveCmd.Flags().String(key, "data", cmdUtil.WrapString("(dstore) DataDir is the directory used for the RAFT log and snapshots"))

	key = "replica-id"
	serveCmd.Flags().String(key, "", cmdUtil.WrapString("(dstore) ReplicaID is the unique name of this node (e.g. 'node-1')"))

	key = "cluster-members"
	serveCmd.Flags().String(key, "", cmdUtil.WrapString("(dstore) Comma-separated list of RAFT addresses in the format 'node-1=localhost:63001,node-2=localhost:63002,...'"))

	key = "timeout"
	serveCmd.Flags().Int64(key, 5, cmdUtil.WrapString("(dstore) Timeout of RAFT proposals and reads in seconds"))

	key = "busy-retries"
	serveCmd.Flags().Int(key, 0, cmdUtil.WrapString("(dstore) How many times a request rejected with 'system busy' is repeated. 0 reports the failure immediately"))

	key = "endpoint"
	serveCmd.Flags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the store node will listen"))

	key = "log-level"
	serveCmd.Flags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the flags and environment variables into the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	shards, err := parseShards(viper.GetString("shards"))
	if err != nil {
		return err
	}
	serveCmdConfig.Shards = shards

	serveCmdConfig.RTTMillisecond = viper.GetUint64("rtt-millisecond")
	serveCmdConfig.SnapshotEntries = viper.GetUint64("snapshot-entries")
	serveCmdConfig.CompactionOverhead = viper.GetUint64("compaction-overhead")
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.BusyRetries = viper.GetInt("busy-retries")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	if _, err := logging.ParseLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	if id := viper.GetString("replica-id"); id != "" {
		serveCmdConfig.ReplicaID = uint64(util.HashString(id, 0))
	} else if serveCmdConfig.HasRemoteShard() {
		return fmt.Errorf("replica-id is required for dstore shards")
	}

	members, err := parseClusterMembers(viper.GetString("cluster-members"))
	if err != nil {
		return err
	}
	serveCmdConfig.ClusterMembers = members

	if serveCmdConfig.HasRemoteShard() {
		if len(members) == 0 {
			return fmt.Errorf("cluster-members is required for dstore shards")
		}
		if _, ok := members[serveCmdConfig.ReplicaID]; !ok {
			return fmt.Errorf("no address found for replica %s in cluster members", viper.GetString("replica-id"))
		}
	}

	return nil
}

// parseShards parses a list like "100=lstore,200=dstore"
func parseShards(value string) ([]common.ServerShard, error) {
	var shards []common.ServerShard
	for _, shardConfig := range cmdUtil.SplitList(value) {
		parts := strings.Split(shardConfig, "=")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid shard format: %s (expected ID=TYPE)", shardConfig)
		}

		shardID, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid shard ID %s: %v", parts[0], err)
		}

		shardType, err := common.ParseShardType(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, err
		}

		shards = append(shards, common.ServerShard{
			ShardID: shardID,
			Type:    shardType,
		})
	}

	if len(shards) == 0 {
		return nil, fmt.Errorf("at least one shard is required")
	}
	return shards, nil
}

// parseClusterMembers parses a list like "node-1=localhost:63001,node-2=localhost:63002".
// Member names are hashed to replica ids the same way as the replica-id flag.
func parseClusterMembers(value string) (map[uint64]string, error) {
	members := make(map[uint64]string)
	for _, member := range cmdUtil.SplitList(value) {
		parts := strings.Split(member, "=")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid cluster member format: %s (expected ID=address)", member)
		}
		members[uint64(util.HashString(strings.TrimSpace(parts[0]), 0))] = strings.TrimSpace(parts[1])
	}
	return members, nil
}

// run starts the store node
func run(_ *cobra.Command, _ []string) error {
	if err := logging.InitLoggers(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	return server.NewRPCServer(
		*serveCmdConfig,
		http.NewHttpServerTransport(),
		s,
	).Serve()
}
