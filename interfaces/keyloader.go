package interfaces

import (
	"context"
	"errors"
)

// ErrNotEncrypted is returned by KeyLoader.KeyStatus for volumes that have no
// encryption and therefore nothing to unlock.
var ErrNotEncrypted = errors.New("dataset is not encrypted")

// KeyStatus is the load state of an encrypted dataset's key.
type KeyStatus int

const (
	// KeyStatusUnavailable means the key is not loaded and the dataset is locked.
	KeyStatusUnavailable KeyStatus = iota

	// KeyStatusAvailable means the key is loaded and the dataset can be mounted.
	KeyStatusAvailable
)

// String returns the value zfs reports for the key status property.
func (s KeyStatus) String() string {
	switch s {
	case KeyStatusAvailable:
		return "available"
	case KeyStatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// KeyLoader queries and changes the key load state of an encrypted dataset.
//
// Implementations must never place the key on persistent storage, in process
// arguments or in logs.
type KeyLoader interface {
	// KeyStatus reports whether the dataset key is currently loaded.
	// A dataset without encryption is an error, not a status.
	KeyStatus(ctx context.Context, dataset string) (KeyStatus, error)

	// LoadKey attempts to unlock the dataset with the supplied key.
	LoadKey(ctx context.Context, dataset string, key []byte) error
}
