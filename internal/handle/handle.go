// Package handle implements the File-Handle Table: the one piece of
// mutable state a mounted SCFS file system carries, mapping the handle IDs
// the kernel hands back on every read to whatever this process needs to
// remember between open and release. The locking discipline mirrors
// samples/memfs's use of syncutil.InvariantMutex to guard a map.
package handle

import (
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/syncutil"
)

// SplitEntry is what OpenFile records for a handle opened against a
// SplitFS chunk: the backing path and the byte range within it this handle
// may read.
type SplitEntry struct {
	// IsConfig marks the sentinel handle opened against the synthetic
	// .scfs_config file: no backing path is opened for it, and ReadFile
	// serves it straight out of the pre-marshaled config bytes instead.
	IsConfig   bool
	Path       string
	ChunkStart uint64
	ChunkSize  uint64
}

// CatEntry is what OpenFile records for a handle opened against a CatFS
// virtual file: the ordered list of backing chunk paths that concatenate
// to form it.
type CatEntry struct {
	Chunks []string
}

// Table is a generic handle table: a monotonically increasing ID space
// over a map of V, guarded by an invariant mutex the way memDir guards its
// entries slice. V is SplitEntry or CatEntry for file handles, or
// struct{} for directory handles, which carry no per-open state at all.
type Table[V any] struct {
	mu      syncutil.InvariantMutex
	entries map[fuseops.HandleID]V
	next    uint64
}

// NewTable returns an empty Table.
func NewTable[V any]() *Table[V] {
	t := &Table[V]{
		entries: make(map[fuseops.HandleID]V),
		next:    1,
	}
	t.mu = syncutil.NewInvariantMutex(t.checkInvariants)
	return t
}

func (t *Table[V]) checkInvariants() {
	if t.next == 0 {
		panic("handle: next counter wrapped to zero")
	}
}

// Open allocates a new handle ID bound to v and returns it.
//
// LOCKS_EXCLUDED(t.mu)
func (t *Table[V]) Open(v V) fuseops.HandleID {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := fuseops.HandleID(t.next)
	t.next++
	t.entries[id] = v
	return id
}

// Get returns the value bound to id, if any.
//
// LOCKS_EXCLUDED(t.mu)
func (t *Table[V]) Get(id fuseops.HandleID) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.entries[id]
	return v, ok
}

// Release forgets id. Releasing an ID that was never opened, or was
// already released, is a no-op: the kernel's release and the process's own
// teardown can race harmlessly.
//
// LOCKS_EXCLUDED(t.mu)
func (t *Table[V]) Release(id fuseops.HandleID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, id)
}
