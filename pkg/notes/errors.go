package notes

import "errors"

var (
	ErrEntryNotFound  = errors.New("entry not found")
	ErrStreamNotFound = errors.New("stream not found")
	ErrSyncIDMissing  = errors.New("sync id not initialized")

	// ErrMalformedRecord wraps records that cannot be deserialized.
	ErrMalformedRecord = errors.New("malformed record")
)
