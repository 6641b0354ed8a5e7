package ipc

// Region is a fixed-capacity byte window shared with a peer component.
// Regions are created once at startup and never resized.
type Region struct {
	name     string
	mem      []byte
	writable bool
	unmap    func([]byte) error
}

// NewRegion allocates a writable in-process Region of the given size.
func NewRegion(name string, size int) *Region {
	return &Region{name: name, mem: make([]byte, size), writable: true}
}

// Name returns the region name.
func (r *Region) Name() string {
	return r.name
}

// Size returns the capacity in bytes.
func (r *Region) Size() int {
	return len(r.mem)
}

// ReadOnly returns the read view of the region.
func (r *Region) ReadOnly() ReadOnly {
	return ReadOnly{region: r}
}

// ReadWrite returns the write view of the region.
func (r *Region) ReadWrite() ReadWrite {
	return ReadWrite{region: r}
}

// Close releases the mapping, if any.
func (r *Region) Close() error {
	if r.unmap == nil {
		return nil
	}
	mem, unmap := r.mem, r.unmap
	r.mem, r.unmap = nil, nil
	return unmap(mem)
}

func (r *Region) check(start, size uint64) error {
	capacity := uint64(len(r.mem))
	if start > capacity || size > capacity-start {
		return &BoundsError{Region: r.name, Start: start, Size: size, Capacity: len(r.mem)}
	}
	return nil
}

// ReadOnly is the view of a Region owned by the peer for writing.
type ReadOnly struct {
	region *Region
}

// Size returns the capacity of the underlying region.
func (v ReadOnly) Size() int {
	return v.region.Size()
}

// CopyOut copies size bytes at start into a newly allocated slice.
// Nothing is read if the interval is out of bounds.
func (v ReadOnly) CopyOut(start, size uint64) ([]byte, error) {
	if err := v.region.check(start, size); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, v.region.mem[start:start+size])
	return out, nil
}

// ReadWrite is the view of a Region owned by this component for writing.
type ReadWrite struct {
	region *Region
}

// Size returns the capacity of the underlying region.
func (v ReadWrite) Size() int {
	return v.region.Size()
}

// CopyIn copies data into the region at start.
// Nothing is written if the interval is out of bounds.
func (v ReadWrite) CopyIn(start uint64, data []byte) error {
	if !v.region.writable {
		return ErrReadOnlyRegion
	}
	if err := v.region.check(start, uint64(len(data))); err != nil {
		return err
	}
	copy(v.region.mem[start:], data)
	return nil
}
