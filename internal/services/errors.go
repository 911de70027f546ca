package services

import (
	"fmt"
)

type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindBadRequest
)

// Error is returned for every failure the caller can act on. Anything else
// coming out of a service is a store failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "not found"}
	ErrBadRequest = &Error{Kind: KindBadRequest, Message: "bad request"}
)

func notFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func badRequest(format string, args ...interface{}) error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}
