package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies collection failures. A counter reset is not an
// error kind: it is a recognized state transition surfaced through
// RateSample.Reset.
type ErrorKind int

const (
	// ErrEnumeration means the interface list itself could not be
	// read. Fatal for the cycle, retried on the next one.
	ErrEnumeration ErrorKind = iota
	// ErrCollection means one interface's counter read failed.
	ErrCollection
	// ErrTimeout means one interface's read exceeded its budget.
	ErrTimeout
	// ErrInvalidSample means a sample pair had a non-advancing
	// timestamp and was discarded without touching history.
	ErrInvalidSample
)

func (k ErrorKind) String() string {
	switch k {
	case ErrEnumeration:
		return "enumeration"
	case ErrCollection:
		return "collection"
	case ErrTimeout:
		return "timeout"
	case ErrInvalidSample:
		return "invalid-sample"
	default:
		return "unknown"
	}
}

// CollectionError is the shared failure vocabulary of the engine. A
// per-interface error never aborts the cycle it occurred in.
type CollectionError struct {
	Kind ErrorKind
	ID   InterfaceID
	Err  error
}

func (e *CollectionError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s error on %s: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// NewCollectionError wraps err with a kind and the interface it
// belongs to. A nil err is normalized so Error() stays printable.
func NewCollectionError(kind ErrorKind, id InterfaceID, err error) *CollectionError {
	if err == nil {
		err = errors.New(kind.String())
	}
	return &CollectionError{Kind: kind, ID: id, Err: err}
}

// KindOf extracts the ErrorKind from err, unwrapping as needed.
// Returns ErrCollection for errors that are not CollectionErrors.
func KindOf(err error) ErrorKind {
	var ce *CollectionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrCollection
}
