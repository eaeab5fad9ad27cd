package transport

import (
	"github.com/ValentinKolb/dTodo/rpc/common"
)

// ServerHandleFunc answers one serialized request addressed to shardId.
// Errors are encoded in the returned message, never signalled out of band.
type ServerHandleFunc func(shardId uint64, req []byte) (resp []byte)

// IRPCServerTransport receives requests from the network and passes them to a ServerHandleFunc
type IRPCServerTransport interface {
	// RegisterHandler must be called before Listen
	RegisterHandler(handler ServerHandleFunc)
	// Listen blocks until the transport fails
	Listen(config common.ServerConfig) error
}

// IRPCClientTransport delivers serialized requests to one of the configured endpoints
type IRPCClientTransport interface {
	Connect(config common.ClientConfig) error
	// Send returns the raw response of the endpoint that answered
	Send(shardId uint64, req []byte) (resp []byte, err error)
	Close() error
}
