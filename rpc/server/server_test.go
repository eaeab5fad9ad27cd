package server

import (
	"encoding/json"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"github.com/ValentinKolb/dTodo/rpc/serializer"
	"github.com/ValentinKolb/dTodo/rpc/transport"
	"testing"
)

// captureTransport records the handler instead of listening on a socket
type captureTransport struct {
	handler transport.ServerHandleFunc
}

func (c *captureTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	c.handler = handler
}

func (c *captureTransport) Listen(common.ServerConfig) error {
	return nil
}

func newTestServer(t *testing.T) (*captureTransport, serializer.IRPCSerializer) {
	t.Helper()
	tr := &captureTransport{}
	ser := serializer.NewJSONSerializer()
	s := NewRPCServer(common.ServerConfig{
		Shards:   []common.ServerShard{{ShardID: 100, Type: common.ShardTypeLocalIStore}},
		Endpoint: "127.0.0.1:0",
		LogLevel: "info",
	}, tr, ser)
	if err := s.init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if tr.handler == nil {
		t.Fatalf("init did not register a handler")
	}
	return tr, ser
}

func call(t *testing.T, tr *captureTransport, ser serializer.IRPCSerializer, shardId uint64, req *common.Message) common.Message {
	t.Helper()
	data, err := ser.Serialize(*req)
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	var resp common.Message
	if err := ser.Deserialize(tr.handler(shardId, data), &resp); err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	return resp
}

func TestServerHandlesStoreRequests(t *testing.T) {
	tr, ser := newTestServer(t)

	if resp := call(t, tr, ser, 100, common.NewSetRequest("todos/1", []byte("one"))); resp.Err != "" {
		t.Fatalf("Set failed: %s", resp.Err)
	}

	resp := call(t, tr, ser, 100, common.NewGetRequest("todos/1"))
	if !resp.Ok || string(resp.Value) != "one" || resp.MsgType != common.MsgTKVGet {
		t.Errorf("Unexpected Get response: %+v", resp)
	}

	resp = call(t, tr, ser, 100, common.NewHasRequest("todos/2"))
	if resp.Ok {
		t.Errorf("Has should be false for a missing key")
	}

	resp = call(t, tr, ser, 100, common.NewKeysRequest())
	if len(resp.Keys) != 1 || resp.Keys[0] != "todos/1" {
		t.Errorf("Unexpected keys: %v", resp.Keys)
	}

	resp = call(t, tr, ser, 100, common.NewInfoRequest())
	var info db.DatabaseInfo
	if err := json.Unmarshal(resp.Meta, &info); err != nil {
		t.Fatalf("Info meta is not valid json: %v", err)
	}
	if info.KeyCount != 1 || info.DbType != db.ImplMaple {
		t.Errorf("Unexpected info: %+v", info)
	}

	call(t, tr, ser, 100, common.NewDeleteRequest("todos/1"))
	resp = call(t, tr, ser, 100, common.NewGetRequest("todos/1"))
	if resp.Ok {
		t.Errorf("Key should be gone after Delete")
	}
}

func TestServerErrors(t *testing.T) {
	tr, ser := newTestServer(t)

	resp := call(t, tr, ser, 999, common.NewGetRequest("k"))
	if resp.MsgType != common.MsgTError || resp.Err == "" {
		t.Errorf("Expected error for unknown shard, got %+v", resp)
	}

	var garbage common.Message
	if err := ser.Deserialize(tr.handler(100, []byte("not json")), &garbage); err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	if garbage.MsgType != common.MsgTError {
		t.Errorf("Expected error for undecodable request, got %+v", garbage)
	}

	resp = call(t, tr, ser, 100, &common.Message{MsgType: common.MsgTSuccess})
	if resp.MsgType != common.MsgTError {
		t.Errorf("Expected error for unsupported message type, got %+v", resp)
	}
}

func TestServerRejectsUnknownShardType(t *testing.T) {
	s := NewRPCServer(common.ServerConfig{
		Shards: []common.ServerShard{{ShardID: 1, Type: "lockmgr"}},
	}, &captureTransport{}, serializer.NewJSONSerializer())
	if err := s.init(); err == nil {
		t.Errorf("Expected error for unknown shard type")
	}
}
