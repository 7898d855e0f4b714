package service

import (
	"errors"
	"fmt"
)

// Error classes. Callers classify with errors.Is; none of them is fatal to the process.
var (
	// ErrValidation marks a malformed inbound message. The message is dropped.
	ErrValidation = errors.New("validation error")
	// ErrStorage marks a failed query or write. It aborts the current message or cycle.
	ErrStorage = errors.New("storage error")
	// ErrTransport marks a failed publish. The command is not retried.
	ErrTransport = errors.New("transport error")
)

func wrapStorage(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
