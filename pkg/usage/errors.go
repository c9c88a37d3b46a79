package usage

import "fmt"

// StorageError wraps a failure from the usage store together with the
// operation that hit it, in the manner of os.PathError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("usage store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err as a StorageError for the named operation.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// DroppedError reports that a record was discarded because the recorder
// queue was full. The request itself is unaffected.
type DroppedError struct {
	RequestID string
}

func (e *DroppedError) Error() string {
	return fmt.Sprintf("usage record for request %s dropped: queue full", e.RequestID)
}
