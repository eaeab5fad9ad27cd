package server

import (
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/lib/db/engines/maple"
	"github.com/ValentinKolb/dTodo/lib/store"
	"github.com/ValentinKolb/dTodo/lib/store/dstore"
	"github.com/ValentinKolb/dTodo/lib/store/lstore"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"github.com/ValentinKolb/dTodo/rpc/serializer"
	"github.com/ValentinKolb/dTodo/rpc/transport"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a store node serving the shards listed in config.
// Nothing is started before Serve is called.
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		stores:     xsync.NewMapOf[uint64, store.IStore](),
		newDB:      func() db.KVDB { return maple.NewMapleDB(nil) },
	}
}

// RPCServer maps shard ids to stores and answers serialized requests for them
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	stores     *xsync.MapOf[uint64, store.IStore]
	newDB      store.DBFactory
	nodeHost   *dragonboat.NodeHost
}

// Serve opens all shards and blocks in the transport until it fails
func (s *RPCServer) Serve() error {
	Logger.Infof("%s", s.config.String())

	if err := s.init(); err != nil {
		return err
	}
	defer s.Close()
	return s.transport.Listen(s.config)
}

// Close stops the RAFT node host if one was started
func (s *RPCServer) Close() {
	if s.nodeHost != nil {
		s.nodeHost.Close()
		s.nodeHost = nil
	}
}

func (s *RPCServer) init() error {
	if s.config.HasRemoteShard() {
		nh, err := dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return fmt.Errorf("failed to create node host: %w", err)
		}
		s.nodeHost = nh
	}

	for _, shard := range s.config.Shards {
		st, err := s.openShard(shard)
		if err != nil {
			return err
		}
		s.stores.Store(shard.ShardID, st)
	}

	s.transport.RegisterHandler(s.handle)
	Logger.Infof("serving %d shard(s)", s.stores.Size())
	return nil
}

func (s *RPCServer) openShard(shard common.ServerShard) (store.IStore, error) {
	switch shard.Type {
	case common.ShardTypeLocalIStore:
		Logger.Infof("shard %d: local store", shard.ShardID)
		return lstore.NewLocalStore(s.newDB), nil

	case common.ShardTypeRemoteIStore:
		if s.nodeHost == nil {
			return nil, fmt.Errorf("shard %d: no node host for replicated store", shard.ShardID)
		}
		err := s.nodeHost.StartConcurrentReplica(
			s.config.ClusterMembers,
			false,
			dstore.CreateStateMachineFactory(s.newDB),
			s.config.ToDragonboatConfig(shard.ShardID),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start shard %d: %w", shard.ShardID, err)
		}
		Logger.Infof("shard %d: replica %d started", shard.ShardID, s.config.ReplicaID)
		timeout := time.Duration(s.config.TimeoutSecond) * time.Second
		return dstore.NewDistributedStore(s.nodeHost, shard.ShardID, timeout, s.config.BusyRetries), nil

	default:
		return nil, fmt.Errorf("invalid shard type: %s", shard.Type)
	}
}

// handle is registered at the transport, failures are answered with MsgTError
func (s *RPCServer) handle(shardId uint64, req []byte) []byte {
	var resp *common.Message

	if st, ok := s.stores.Load(shardId); !ok {
		resp = common.NewErrorResponse(fmt.Sprintf("shard %d not found", shardId))
	} else {
		var msg common.Message
		if err := s.serializer.Deserialize(req, &msg); err != nil {
			resp = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
		} else {
			resp = dispatch(&msg, st)
		}
	}

	out, err := s.serializer.Serialize(*resp)
	if err != nil {
		Logger.Errorf("failed to serialize response for shard %d: %v", shardId, err)
		out, _ = s.serializer.Serialize(*common.NewErrorResponse("failed to serialize response"))
	}
	return out
}
