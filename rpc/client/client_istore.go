package client

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/lib/store"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"github.com/ValentinKolb/dTodo/rpc/serializer"
	"github.com/ValentinKolb/dTodo/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// NewRPCStore creates a store.IStore that forwards every call to a store node.
// The transport is connected before the store is returned.
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcStore{
		shardId:    shardId,
		transport:  transport,
		serializer: serializer,
	}, nil
}

type rpcStore struct {
	shardId    uint64
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// internalError wraps any failure of the RPC round trip into a *store.Error
func internalError(format string, args ...any) error {
	return store.NewError(store.RetCInternalError, fmt.Sprintf(format, args...))
}

// invoke sends req to the shard and returns the decoded answer.
// Error responses and answers of another message type are turned into errors.
func (s *rpcStore) invoke(req *common.Message) (*common.Message, error) {
	payload, err := s.serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	raw, err := s.transport.Send(s.shardId, payload)
	if err != nil {
		Logger.Debugf("%s request to shard %d failed: %v", req.MsgType, s.shardId, err)
		return nil, internalError("%s", err)
	}

	var resp common.Message
	switch err := s.serializer.Deserialize(raw, &resp); {
	case err != nil:
		return nil, internalError("undecodable response: %s", err)
	case resp.MsgType == common.MsgTError || resp.Err != "":
		return nil, internalError("store node: %s", resp.Err)
	case resp.MsgType != req.MsgType:
		return nil, internalError("unexpected response type %s to %s request", resp.MsgType, req.MsgType)
	}
	return &resp, nil
}

func (s *rpcStore) Set(key string, value []byte) error {
	_, err := s.invoke(common.NewSetRequest(key, value))
	return err
}

func (s *rpcStore) Delete(key string) error {
	_, err := s.invoke(common.NewDeleteRequest(key))
	return err
}

func (s *rpcStore) Get(key string) ([]byte, bool, error) {
	resp, err := s.invoke(common.NewGetRequest(key))
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (s *rpcStore) Has(key string) (bool, error) {
	resp, err := s.invoke(common.NewHasRequest(key))
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

// Keys never returns a nil slice on success
func (s *rpcStore) Keys() ([]string, error) {
	resp, err := s.invoke(common.NewKeysRequest())
	if err != nil {
		return nil, err
	}
	if resp.Keys == nil {
		return []string{}, nil
	}
	return resp.Keys, nil
}

func (s *rpcStore) GetDBInfo() (db.DatabaseInfo, error) {
	resp, err := s.invoke(common.NewInfoRequest())
	if err != nil {
		return db.DatabaseInfo{}, err
	}
	var info db.DatabaseInfo
	if err := json.Unmarshal(resp.Meta, &info); err != nil {
		return db.DatabaseInfo{}, internalError("invalid info response: %s", err)
	}
	return info, nil
}
