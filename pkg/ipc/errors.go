package ipc

import (
	"errors"
	"fmt"
)

var (
	// ErrReadOnlyRegion indicates a write through a region mapped read-only.
	ErrReadOnlyRegion = errors.New("region is read-only")
	// ErrClosed indicates the connection to the peer is gone.
	ErrClosed = errors.New("connection closed")
)

// BoundsError reports an offset/size pair outside a region's capacity.
type BoundsError struct {
	Region   string
	Start    uint64
	Size     uint64
	Capacity int
}

// Error implements error.
func (e *BoundsError) Error() string {
	return fmt.Sprintf("region %s: [%d, +%d) exceeds capacity %d", e.Region, e.Start, e.Size, e.Capacity)
}
