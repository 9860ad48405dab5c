package keyValueDb

import "errors"

var (
	// ErrDBClosed reports an operation against a closed database.
	ErrDBClosed = errors.New("keyValueDb is closed")

	// ErrKeyNotFound reports a read of a key with no value.
	ErrKeyNotFound = errors.New("key not found")

	// ErrBatchOperationFailed reports a batch that was not applied.
	ErrBatchOperationFailed = errors.New("batch operation failed")
)
