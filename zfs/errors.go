package zfs

import (
	"fmt"

	"github.com/samhug/zfs-remote-keyloader/interfaces"
)

// ErrNotEncrypted is returned by KeyStatus when zfs reports keystatus "-".
var ErrNotEncrypted = interfaces.ErrNotEncrypted

// UnexpectedKeyStatusError is returned when zfs prints a keystatus value
// other than available, unavailable or "-".
type UnexpectedKeyStatusError struct {
	Value string
}

func (e *UnexpectedKeyStatusError) Error() string {
	return fmt.Sprintf("unexpected value for keystatus: %q", e.Value)
}
