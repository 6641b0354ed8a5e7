// Package ipc provides the cross-component primitives of a statically
// partitioned system: fixed channels, labelled messages, shared memory
// regions and synchronous calls.
package ipc

// A component talks to a peer through exactly one Channel. Bulk data never
// travels inside a message: the caller places it in a Region it owns for
// writing, sends a small fixed-layout message describing offsets into that
// Region, and blocks until the peer replies with a status Label and a
// payload describing offsets into the Region the peer writes.
//
// Each Region has exactly one writer. Turn-taking of the call protocol
// keeps the two sides from touching a Region at the same time, so no
// locking is involved.
