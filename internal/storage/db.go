package storage

import (
	"fmt"
	"strings"
)

// View is the read surface shared by snapshots and forks.
type View interface {
	// Get returns the value stored at key, or nil if there is none.
	Get(key []byte) ([]byte, error)

	// Has reports whether key is present.
	Has(key []byte) (bool, error)

	// Iterator returns an iterator over the half-open domain [start, end) in
	// ascending key order. A nil start or end leaves that side open. The
	// iterator must be closed after use.
	Iterator(start, end []byte) (Iterator, error)
}

// Snapshot is an immutable, point-in-time view of a database. Merges that
// happen after the snapshot was taken are never visible through it.
// Snapshots may be read from several goroutines at once.
type Snapshot interface {
	View

	// Release frees the resources held by the snapshot. The snapshot must not
	// be used afterwards.
	Release()
}

// Database is a byte-keyed store. Reads go through snapshots, writes go
// through forks that are merged back as patches.
type Database interface {
	// Snapshot returns a view fixed at the current committed state.
	Snapshot() (Snapshot, error)

	// Fork returns a writable overlay over a fresh snapshot.
	Fork() (*Fork, error)

	// Merge atomically applies every change of the patch. Either all
	// changes become visible or, if an error is returned, none do.
	Merge(patch *Patch) error

	Close() error
}

// Iterator represents an iterator over a domain of keys. Callers must call
// Close when done. No writes can happen to the underlying view while it is
// being iterated.
//
// As with tm-db, callers must make sure the iterator is valid before calling
// any methods on it, otherwise these methods will panic.
type Iterator interface {
	// Valid returns whether the current iterator is valid. Once invalid, the
	// Iterator remains invalid forever.
	Valid() bool

	// Next moves the iterator to the next key in the database.
	Next()

	// Key returns the key at the current position. The caller must not
	// modify it.
	Key() []byte

	// Value returns the value at the current position. The caller must not
	// modify it.
	Value() []byte

	// Error returns the last error encountered by the iterator, if any.
	Error() error

	// Close closes the iterator, releasing any allocated resources.
	Close() error
}

// BackendType names a database implementation in configuration.
type BackendType string

const (
	// GoLevelDBBackend is the durable, disk-resident backend.
	GoLevelDBBackend BackendType = "goleveldb"
	// MemDBBackend is the volatile in-memory backend.
	MemDBBackend BackendType = "memdb"
)

// NewDB opens a database of the given backend type. The name and directory
// are ignored by the in-memory backend.
func NewDB(backend BackendType, name, dir string) (Database, error) {
	switch BackendType(strings.ToLower(string(backend))) {
	case GoLevelDBBackend:
		return NewLevelDB(name, dir)
	case MemDBBackend:
		return NewMemoryDB(), nil
	default:
		return nil, fmt.Errorf("unknown db_backend %q, expected one of %v", backend,
			[]BackendType{GoLevelDBBackend, MemDBBackend})
	}
}

func cp(bz []byte) []byte {
	if bz == nil {
		return nil
	}
	ret := make([]byte, len(bz))
	copy(ret, bz)
	return ret
}
