package internal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/db"
)

// CommandType selects the write a raft log entry performs
type CommandType uint8

const (
	CommandTSet CommandType = iota
	CommandTDelete
)

var commandFeatures = map[CommandType]db.Feature{
	CommandTSet:    db.FeatureSet,
	CommandTDelete: db.FeatureDelete,
}

func (ct CommandType) String() string {
	switch ct {
	case CommandTSet:
		return "Set"
	case CommandTDelete:
		return "Delete"
	}
	return fmt.Sprintf("Unknown(%d)", ct)
}

// ToDBFeature returns the database feature needed to apply the command
func (ct CommandType) ToDBFeature() (db.Feature, error) {
	if f, ok := commandFeatures[ct]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown command type %d", ct)
}

// Command is a single raft log entry
type Command struct {
	Type  CommandType
	Key   string
	Value []byte
}

var errShortCommand = errors.New("command truncated")

// Serialize encodes the command as
//
//	type uint8 | uvarint key length | key | value
//
// The value runs until the end of the entry.
func (command *Command) Serialize() []byte {
	buf := make([]byte, 0, 1+binary.MaxVarintLen64+len(command.Key)+len(command.Value))
	buf = append(buf, byte(command.Type))
	buf = binary.AppendUvarint(buf, uint64(len(command.Key)))
	buf = append(buf, command.Key...)
	return append(buf, command.Value...)
}

// Deserialize decodes data produced by Serialize, the value is copied
func (command *Command) Deserialize(data []byte) error {
	if len(data) == 0 {
		return errShortCommand
	}
	keyLen, n := binary.Uvarint(data[1:])
	if n <= 0 {
		return fmt.Errorf("%w: invalid key length", errShortCommand)
	}
	rest := data[1+n:]
	if uint64(len(rest)) < keyLen {
		return fmt.Errorf("%w: key of length %d", errShortCommand, keyLen)
	}

	command.Type = CommandType(data[0])
	command.Key = string(rest[:keyLen])
	command.Value = nil
	if value := rest[keyLen:]; len(value) > 0 {
		command.Value = append([]byte(nil), value...)
	}
	return nil
}

// QueryType selects the read a Lookup performs
type QueryType uint8

const (
	QueryTGet QueryType = iota
	QueryTHas
	QueryTKeys
	QueryTGetDBInfo
)

func (q QueryType) String() string {
	return [...]string{"Get", "Has", "Keys", "GetDBInfo", "Unknown"}[min(int(q), 4)]
}

// Query is passed to SyncRead and StaleRead, Key is empty for Keys and GetDBInfo
type Query struct {
	Type QueryType
	Key  string
}

// QueryResult answers QueryTGet, the other queries return bool, []string or db.DatabaseInfo
type QueryResult struct {
	Ok    bool
	Value []byte
}
