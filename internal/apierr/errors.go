// Package apierr defines the error taxonomy shared by the metadata
// store, ingest/retrieval pipelines and the HTTP surface.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP surface can map it to a status
// code without inspecting error strings.
type Kind int

const (
	// KindNotFound covers unknown commits, missing artifact rows, and
	// files that can't be opened on download.
	KindNotFound Kind = iota
	// KindArtifactExists covers a duplicate (commit, path) insert.
	KindArtifactExists
	// KindIO covers filesystem errors.
	KindIO
	// KindTime covers wall-clock read failures.
	KindTime
	// KindStorage covers key-value engine errors, including write
	// conflicts detected at transaction commit.
	KindStorage
	// KindTransport covers body-stream transport errors during upload.
	KindTransport
)

// Error is the shared error type. Every non-NotFound kind maps to a
// 500 response; only KindNotFound maps to 404.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a KindNotFound error with the given message.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ArtifactExists builds a KindArtifactExists error for the given path.
func ArtifactExists(path string) *Error {
	return &Error{Kind: KindArtifactExists, Message: fmt.Sprintf("artifact already exists: %s", path)}
}

// IO wraps a filesystem error.
func IO(err error) *Error {
	return &Error{Kind: KindIO, Message: "io error", Err: err}
}

// Time wraps a wall-clock read failure.
func Time(err error) *Error {
	return &Error{Kind: KindTime, Message: "time error", Err: err}
}

// Storage wraps a key-value engine error.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage error", Err: err}
}

// Transport wraps a body-stream transport error.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Message: "transport error", Err: err}
}

// IsNotFound reports whether err (or something it wraps) is a
// KindNotFound *Error.
func IsNotFound(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindNotFound
}
