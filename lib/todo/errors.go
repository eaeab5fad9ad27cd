package todo

import "errors"

var (
	// ErrNotFound is returned when no live todo is stored under the requested id.
	ErrNotFound = errors.New("todo not found")
	// ErrEmpty is returned by Random when the store holds no keys at all.
	ErrEmpty = errors.New("no todos found")
	// ErrMalformed is returned when a stored value can not be decoded as a Todo.
	ErrMalformed = errors.New("malformed todo")
)
