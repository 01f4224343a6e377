package backend

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrTransport wraps failures to reach the backend or read its response.
var ErrTransport = errors.New("backend transport error")

// StatusError reports a non-2xx response.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Code, e.Body)
}

// ErrorClass tags metrics with the status code family.
func (e *StatusError) ErrorClass() string {
	return "http_" + strconv.Itoa(e.Code)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string { return e.op + ": " + e.err.Error() }

func (e *transportError) Unwrap() []error { return []error{ErrTransport, e.err} }

func (e *transportError) ErrorClass() string { return "transport" }
