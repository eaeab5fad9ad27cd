package store

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/db"
)

// DBFactory creates the database a store writes to
type DBFactory func() db.KVDB

// IStore is a key value store that may live in this process, on a store node or
// in a RAFT group. Implementations report failures as *Error.
type IStore interface {
	Set(key string, value []byte) (err error)
	// Delete succeeds for missing keys
	Delete(key string) (err error)
	Get(key string) (value []byte, loaded bool, err error)
	Has(key string) (loaded bool, err error)
	// Keys returns the keys in no particular order
	Keys() (keys []string, err error)
	// GetDBInfo may be served from a stale replica
	GetDBInfo() (info db.DatabaseInfo, err error)
}

// RetCode classifies a store failure
type RetCode uint64

const (
	RetCSuccess RetCode = iota
	RetCInternalError
	RetCUnsupportedOperation
	RetCInvalidOperation
)

var retCodeNames = [...]string{"Success", "InternalError", "UnsupportedOperation", "InvalidOperation"}

func (c RetCode) String() string {
	if c < RetCode(len(retCodeNames)) {
		return retCodeNames[c]
	}
	return "Unknown"
}

// Error is returned by every IStore implementation
type Error struct {
	Code RetCode
	Msg  string
}

func NewError(code RetCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("store error (%s): %s", e.Code, e.Msg)
}

// CodeOf returns the RetCode carried by err, RetCInternalError for foreign errors
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return RetCInternalError
}
