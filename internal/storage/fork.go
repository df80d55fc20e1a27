package storage

import (
	"bytes"

	"github.com/google/btree"
)

// Fork is a writable overlay over a snapshot. Reads see the fork's own
// pending changes first and fall through to the snapshot. Nothing reaches
// the database until the fork is converted into a patch and merged.
//
// A Fork is not safe for concurrent use.
type Fork struct {
	base       Snapshot
	changes    *btree.BTree
	checkpoint *btree.BTree
}

var _ View = (*Fork)(nil)

// NewFork returns an empty fork over snapshot. The fork takes ownership of
// the snapshot and releases it in Release.
func NewFork(snapshot Snapshot) *Fork {
	return &Fork{
		base:    snapshot,
		changes: btree.New(patchDegree),
	}
}

// Put records a write of value at key. Both slices are copied. A nil value
// is stored as an empty one.
func (f *Fork) Put(key, value []byte) {
	if value == nil {
		value = []byte{}
	}
	f.changes.ReplaceOrInsert(changeItem{key: cp(key), change: PutChange(cp(value))})
}

// Delete records the removal of key.
func (f *Fork) Delete(key []byte) {
	f.changes.ReplaceOrInsert(changeItem{key: cp(key), change: DeleteChange()})
}

// Get implements View.
func (f *Fork) Get(key []byte) ([]byte, error) {
	if change, ok := f.change(key); ok {
		return change.Value(), nil
	}
	return f.base.Get(key)
}

// Has implements View.
func (f *Fork) Has(key []byte) (bool, error) {
	if change, ok := f.change(key); ok {
		return !change.IsDelete(), nil
	}
	return f.base.Has(key)
}

// Iterator implements View. The pending changes inside the domain are copied
// when the iterator is created, so later writes to the fork do not show up
// in it.
func (f *Fork) Iterator(start, end []byte) (Iterator, error) {
	base, err := f.base.Iterator(start, end)
	if err != nil {
		return nil, err
	}

	var overlay []changeItem
	visit := func(i btree.Item) bool {
		next := i.(changeItem)
		if end != nil && bytes.Compare(next.key, end) >= 0 {
			return false
		}
		overlay = append(overlay, next)
		return true
	}
	if start == nil {
		f.changes.Ascend(visit)
	} else {
		f.changes.AscendGreaterOrEqual(changeItem{key: start}, visit)
	}

	it := &forkIterator{base: base, overlay: overlay}
	it.advance()
	return it, nil
}

// Checkpoint marks the current set of pending changes as the state Rollback
// returns to.
func (f *Fork) Checkpoint() {
	f.checkpoint = f.changes.Clone()
}

// Rollback discards every change made since the last Checkpoint, or all
// changes if there was none.
func (f *Fork) Rollback() {
	if f.checkpoint == nil {
		f.changes = btree.New(patchDegree)
		return
	}
	f.changes = f.checkpoint.Clone()
}

// Patch returns the pending changes as a patch. The fork stays usable.
func (f *Fork) Patch() *Patch {
	return &Patch{changes: f.changes.Clone()}
}

// Release releases the underlying snapshot.
func (f *Fork) Release() {
	f.base.Release()
}

func (f *Fork) change(key []byte) (Change, bool) {
	i := f.changes.Get(changeItem{key: key})
	if i == nil {
		return Change{}, false
	}
	return i.(changeItem).change, true
}

// forkIterator merges the snapshot iterator with the copied overlay. On equal
// keys the overlay wins, deleted keys are skipped.
type forkIterator struct {
	base    Iterator
	overlay []changeItem
	pos     int

	key   []byte
	value []byte
	valid bool
}

func (it *forkIterator) advance() {
	for {
		baseValid := it.base.Valid()
		overlayValid := it.pos < len(it.overlay)
		if !baseValid && !overlayValid {
			it.valid = false
			return
		}

		var cmp int
		switch {
		case !overlayValid:
			cmp = -1
		case !baseValid:
			cmp = 1
		default:
			cmp = bytes.Compare(it.base.Key(), it.overlay[it.pos].key)
		}

		if cmp < 0 {
			it.key, it.value, it.valid = it.base.Key(), it.base.Value(), true
			it.base.Next()
			return
		}

		next := it.overlay[it.pos]
		it.pos++
		if cmp == 0 {
			it.base.Next()
		}
		if next.change.IsDelete() {
			continue
		}
		it.key, it.value, it.valid = next.key, next.change.Value(), true
		return
	}
}

func (it *forkIterator) Valid() bool { return it.valid }

func (it *forkIterator) Next() {
	if !it.valid {
		panic("iterator is invalid")
	}
	it.advance()
}

func (it *forkIterator) Key() []byte {
	if !it.valid {
		panic("iterator is invalid")
	}
	return it.key
}

func (it *forkIterator) Value() []byte {
	if !it.valid {
		panic("iterator is invalid")
	}
	return it.value
}

func (it *forkIterator) Error() error { return it.base.Error() }

func (it *forkIterator) Close() error {
	it.valid = false
	return it.base.Close()
}
