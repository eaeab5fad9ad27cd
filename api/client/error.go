package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoTodo is returned by Random when the service has no todo to pick.
// The returned error wraps it together with the message sent by the service.
var ErrNoTodo = errors.New("no todo available")

// HTTPError is returned for every non-2xx response of the todo service
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, string(e.Body))
}

// IsNotFound reports whether err is an HTTPError with status 404
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
