package services

import (
	"errors"
	"fmt"
)

var ErrConversationIDRequired = errors.New("conversation id is required")

// StorageError wraps a failed read or write against the conversation store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UpstreamError is returned when the completion service fails or its reply
// carries no usable text.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func upstreamErr(format string, args ...any) error {
	return &UpstreamError{Err: fmt.Errorf(format, args...)}
}
