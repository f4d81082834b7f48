package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the HTTP surface can pick a status code.
type Kind string

const (
	// KindValidation covers unknown filter keys, name collisions and bad parameter values.
	KindValidation Kind = "validation"
	// KindNotFound covers missing tables, columns, items and view sources.
	KindNotFound Kind = "not_found"
	// KindIO covers ingestion sources that are missing or unreadable.
	KindIO Kind = "io"
	// KindFormat covers sources that cannot be parsed as tabular data.
	KindFormat Kind = "format"
	// KindStore covers engine-level failures.
	KindStore Kind = "store"
)

// Error carries a human readable detail that echoes the offending value.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

func IO(err error, format string, args ...any) *Error {
	return &Error{Kind: KindIO, Detail: fmt.Sprintf(format, args...), Err: err}
}

func Format(err error, format string, args ...any) *Error {
	return &Error{Kind: KindFormat, Detail: fmt.Sprintf(format, args...), Err: err}
}

func Store(err error, detail string) *Error {
	return &Error{Kind: KindStore, Detail: detail, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindStore.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindIO, KindFormat:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
