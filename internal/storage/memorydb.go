package storage

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

const (
	// The degree of the btree is arbitrary, 32 matches tm-db's MemDB.
	bTreeDegree = 32

	// memIterator buffers this many items per read of the tree.
	memIteratorBatch = 64
)

type item struct {
	key   []byte
	value []byte
}

func (i item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(item).key) < 0
}

// MemoryDB is an in-memory database backed by a copy-on-write B-tree.
// Snapshots are cheap clones of the tree and stay isolated from later
// merges.
type MemoryDB struct {
	mtx    sync.RWMutex
	btree  *btree.BTree
	closed bool
}

var _ Database = (*MemoryDB)(nil)

// NewMemoryDB creates a new, empty in-memory database.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{btree: btree.New(bTreeDegree)}
}

// Snapshot implements Database.
func (db *MemoryDB) Snapshot() (Snapshot, error) {
	// Clone marks the shared nodes copy-on-write, which mutates the source
	// tree, so it needs the exclusive lock.
	db.mtx.Lock()
	defer db.mtx.Unlock()
	if db.closed {
		return nil, storeError("snapshot", ErrClosed)
	}
	return &memSnapshot{tree: db.btree.Clone()}, nil
}

// Fork implements Database.
func (db *MemoryDB) Fork() (*Fork, error) {
	snap, err := db.Snapshot()
	if err != nil {
		return nil, err
	}
	return NewFork(snap), nil
}

// Merge implements Database.
func (db *MemoryDB) Merge(patch *Patch) error {
	if err := patch.validate(); err != nil {
		return storeError("merge", err)
	}

	db.mtx.Lock()
	defer db.mtx.Unlock()
	if db.closed {
		return storeError("merge", ErrClosed)
	}

	patch.Iterate(func(key []byte, change Change) bool {
		if change.IsDelete() {
			db.btree.Delete(item{key: key})
		} else {
			db.btree.ReplaceOrInsert(item{key: key, value: change.Value()})
		}
		return true
	})
	return nil
}

// Close implements Database. Snapshots taken before Close stay readable.
func (db *MemoryDB) Close() error {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	db.closed = true
	return nil
}

type memSnapshot struct {
	tree *btree.BTree
}

var _ Snapshot = (*memSnapshot)(nil)

func (s *memSnapshot) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, storeError("get", ErrEmptyKey)
	}
	i := s.tree.Get(item{key: key})
	if i == nil {
		return nil, nil
	}
	return i.(item).value, nil
}

func (s *memSnapshot) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, storeError("has", ErrEmptyKey)
	}
	return s.tree.Has(item{key: key}), nil
}

func (s *memSnapshot) Iterator(start, end []byte) (Iterator, error) {
	return newMemIterator(s.tree, start, end), nil
}

// Release is a no-op, the clone is reclaimed by the garbage collector.
func (s *memSnapshot) Release() {}

// memIterator walks an immutable tree in batches, resuming after the last
// key it buffered.
type memIterator struct {
	tree      *btree.BTree
	end       []byte
	buf       []item
	pos       int
	exhausted bool
}

func newMemIterator(tree *btree.BTree, start, end []byte) *memIterator {
	it := &memIterator{
		tree: tree,
		end:  end,
		buf:  make([]item, 0, memIteratorBatch),
	}
	it.fill(start, true)
	return it
}

func (it *memIterator) fill(from []byte, inclusive bool) {
	it.buf = it.buf[:0]
	it.pos = 0
	visit := func(i btree.Item) bool {
		next := i.(item)
		if !inclusive && bytes.Equal(next.key, from) {
			return true
		}
		if it.end != nil && bytes.Compare(next.key, it.end) >= 0 {
			return false
		}
		it.buf = append(it.buf, next)
		return len(it.buf) < memIteratorBatch
	}
	if from == nil {
		it.tree.Ascend(visit)
	} else {
		it.tree.AscendGreaterOrEqual(item{key: from}, visit)
	}
	it.exhausted = len(it.buf) < memIteratorBatch
}

func (it *memIterator) Valid() bool {
	return it.pos < len(it.buf)
}

func (it *memIterator) Next() {
	it.assertIsValid()
	it.pos++
	if it.pos == len(it.buf) && !it.exhausted {
		it.fill(it.buf[len(it.buf)-1].key, false)
	}
}

func (it *memIterator) Key() []byte {
	it.assertIsValid()
	return it.buf[it.pos].key
}

func (it *memIterator) Value() []byte {
	it.assertIsValid()
	return it.buf[it.pos].value
}

func (it *memIterator) Error() error { return nil }

func (it *memIterator) Close() error {
	it.buf = nil
	it.pos = 0
	return nil
}

func (it *memIterator) assertIsValid() {
	if !it.Valid() {
		panic("iterator is invalid")
	}
}
