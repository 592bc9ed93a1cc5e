package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable is matched by every infrastructure failure of the store.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrDuplicateName: display names are globally unique; the user must pick another one.
	ErrDuplicateName = errors.New("display name already taken")
	ErrInvalidName   = errors.New("display name is empty")
	// ErrPrecondition means a transition was requested that the engine would not have offered.
	ErrPrecondition     = errors.New("precondition violation")
	ErrActivityNotFound = errors.New("activity not found")
)

// StorageError wraps a store failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorageUnavailable, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

// storageErr converts a raw store error into *StorageError unless it already
// carries one of the domain sentinels.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, s := range []error{ErrDuplicateName, ErrActivityNotFound, ErrStorageUnavailable} {
		if errors.Is(err, s) {
			return err
		}
	}
	return &StorageError{Op: op, Err: err}
}

// PreconditionError describes which transition was refused and from which state.
type PreconditionError struct {
	Op      string
	CadetID int64
	Have    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v: cadet %d is %s", e.Op, ErrPrecondition, e.CadetID, e.Have)
}

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }
