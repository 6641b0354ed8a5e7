package ipc

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MapRegion maps a file as a shared Region so two processes can exchange
// payloads through it. The file is created and grown to size by whichever
// side maps it first. A read-only mapping is protected by the MMU: any
// write faults.
func MapRegion(name, path string, size int, writable bool) (*Region, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open region %s: %w", name, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			return nil, fmt.Errorf("size region %s: %w", name, err)
		}
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("map region %s: %w", name, err)
	}
	return &Region{name: name, mem: mem, writable: writable, unmap: unix.Munmap}, nil
}
