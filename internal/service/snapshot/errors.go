package snapshot

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindContract   ErrorKind = "contract"
	KindFilesystem ErrorKind = "filesystem"
)

func (k ErrorKind) String() string {
	return string(k)
}

// Error is the only error type returned from an export run.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Cause() error {
	return e.Err
}

// Classify wraps err with the given kind, keeping an existing classification intact.
func Classify(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	return &Error{Kind: kind, Err: err}
}

// KindOf returns the classification of err, or an empty kind when err is not classified.
func KindOf(err error) ErrorKind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}

	return ""
}
