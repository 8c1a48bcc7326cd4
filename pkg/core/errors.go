package core

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the persistence and import paths.
var (
	ErrRemoteUnreachable  = errors.New("remote unreachable")
	ErrRemoteRejected     = errors.New("remote rejected request")
	ErrRemoteShapeInvalid = errors.New("remote payload is not an array of notes")
	ErrLocalCorrupt       = errors.New("local cache is corrupt")
	ErrImportShapeInvalid = errors.New("import is not a non-empty array of notes")
	ErrCyclicHierarchy    = errors.New("cyclic or orphaned hierarchy")

	ErrNotFound        = errors.New("not found")
	ErrImportCancelled = errors.New("import cancelled")
	ErrInvalidDSN      = errors.New("invalid cache dsn")
)

// RemoteError describes a failed remote load or save.
type RemoteError struct {
	Op         string // "load" or "save"
	StatusCode int    // zero when the request never got a response
	Kind       error  // one of the ErrRemote* kinds
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("remote %s: http %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("remote %s: http %d: %v", e.Op, e.StatusCode, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("remote %s: %v: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("remote %s: %v", e.Op, e.Kind)
	}
}

func (e *RemoteError) Is(target error) bool {
	return target == e.Kind
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
