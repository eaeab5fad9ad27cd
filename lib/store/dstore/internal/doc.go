// Package internal holds the messages dstore exchanges with its state machine.
//
// A Command is a write (Set, Delete). It is serialized into the raft log and
// applied on every replica:
//
//	type uint8 | uvarint key length | key | value
//
// A Query is a read (Get, Has, Keys, GetDBInfo). Queries are answered by the local
// replica and never serialized.
package internal
