package serializer

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"sort"
)

// IRPCSerializer turns a common.Message into the bytes sent over a transport and back
type IRPCSerializer interface {
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes b into msg, fields missing in b keep their zero value
	Deserialize(b []byte, msg *common.Message) error
}

var registry = map[string]func() IRPCSerializer{
	"json": NewJSONSerializer,
	"gob":  NewGOBSerializer,
}

// ByName returns the serializer registered under name ("json" or "gob")
func ByName(name string) (IRPCSerializer, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("invalid serializer %q (available: %v)", name, Names())
	}
	return factory(), nil
}

// Names lists the registered serializer names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --------------------------------------------------------------------------
// JSON
// --------------------------------------------------------------------------

type jsonSerializer struct{}

// NewJSONSerializer returns the JSON serializer, message types are encoded as strings
func NewJSONSerializer() IRPCSerializer {
	return jsonSerializer{}
}

func (jsonSerializer) Serialize(msg common.Message) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return b, nil
}

func (jsonSerializer) Deserialize(b []byte, msg *common.Message) error {
	if err := json.Unmarshal(b, msg); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// GOB
// --------------------------------------------------------------------------

type gobSerializer struct{}

// NewGOBSerializer returns a serializer using encoding/gob. Only Go peers can read it.
func NewGOBSerializer() IRPCSerializer {
	return gobSerializer{}
}

func (gobSerializer) Serialize(msg common.Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&msg); err != nil {
		return nil, fmt.Errorf("gob: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobSerializer) Deserialize(b []byte, msg *common.Message) error {
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(msg); err != nil {
		return fmt.Errorf("gob: %w", err)
	}
	return nil
}
