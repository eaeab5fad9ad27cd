package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   string `json:"key,omitempty"`   // Used for: Set, Get, Has, Delete
	Value []byte `json:"value,omitempty"` // Used for: Set (request), Get (response)

	// Response only fields
	Keys []string `json:"keys,omitempty"` // Used for: Keys response
	Ok   bool     `json:"ok,omitempty"`   // Used for: Get, Has responses
	Err  string   `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: Info response (json encoded db.DatabaseInfo)
}

// --------------------------------------------------------------------------
// Requests
// --------------------------------------------------------------------------

func NewSetRequest(key string, value []byte) *Message {
	return &Message{MsgType: MsgTKVSet, Key: key, Value: value}
}

func NewDeleteRequest(key string) *Message {
	return &Message{MsgType: MsgTKVDelete, Key: key}
}

func NewGetRequest(key string) *Message {
	return &Message{MsgType: MsgTKVGet, Key: key}
}

func NewHasRequest(key string) *Message {
	return &Message{MsgType: MsgTKVHas, Key: key}
}

func NewKeysRequest() *Message {
	return &Message{MsgType: MsgTKVKeys}
}

func NewInfoRequest() *Message {
	return &Message{MsgType: MsgTKVInfo}
}

// --------------------------------------------------------------------------
// Responses
// --------------------------------------------------------------------------

// A response carries the type of its request. A non-nil err is sent as Err,
// the client turns it back into an error.

func NewSetResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTKVSet}, err)
}

func NewDeleteResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTKVDelete}, err)
}

func NewGetResponse(value []byte, ok bool, err error) *Message {
	return withErr(&Message{MsgType: MsgTKVGet, Value: value, Ok: ok}, err)
}

func NewHasResponse(ok bool, err error) *Message {
	return withErr(&Message{MsgType: MsgTKVHas, Ok: ok}, err)
}

func NewKeysResponse(keys []string, err error) *Message {
	return withErr(&Message{MsgType: MsgTKVKeys, Keys: keys}, err)
}

// NewInfoResponse creates an Info response, info is the json encoded db.DatabaseInfo
func NewInfoResponse(info []byte, err error) *Message {
	return withErr(&Message{MsgType: MsgTKVInfo, Meta: info}, err)
}

// NewErrorResponse is sent when a request could not be decoded or routed to a shard
func NewErrorResponse(err string) *Message {
	return &Message{MsgType: MsgTError, Err: err}
}

func withErr(msg *Message, err error) *Message {
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// --------------------------------------------------------------------------
// Message Types
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

const (
	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IStore operations

	MsgTKVSet    // Set a key-value pair
	MsgTKVDelete // Delete a key-value pair
	MsgTKVGet    // Get a value by key
	MsgTKVHas    // Check if a key exists
	MsgTKVKeys   // List all keys
	MsgTKVInfo   // Database metadata
)

// msgTypeNames holds the wire names used by the JSON serializer
var msgTypeNames = map[MessageType]string{
	MsgTSuccess:  "success",
	MsgTError:    "error",
	MsgTKVSet:    "set",
	MsgTKVDelete: "delete",
	MsgTKVGet:    "get",
	MsgTKVHas:    "has",
	MsgTKVKeys:   "keys",
	MsgTKVInfo:   "info",
}

// String returns the wire name of t, "unknown" for types without one
func (t MessageType) String() string {
	if name, ok := msgTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes the type as its wire name
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a wire name, unknown names are an error
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for msgType, n := range msgTypeNames {
		if n == name {
			*t = msgType
			return nil
		}
	}
	return fmt.Errorf("unknown message type: %s", name)
}
