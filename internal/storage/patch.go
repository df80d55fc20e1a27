package storage

import (
	"bytes"

	"github.com/google/btree"
)

const patchDegree = 32

// Change is a single pending modification of a key: either a put of a value
// or a delete.
type Change struct {
	value  []byte
	delete bool
}

// PutChange returns a change that stores value.
func PutChange(value []byte) Change {
	return Change{value: value}
}

// DeleteChange returns a change that removes the key.
func DeleteChange() Change {
	return Change{delete: true}
}

// IsDelete reports whether the change removes its key.
func (c Change) IsDelete() bool { return c.delete }

// Value returns the stored value of a put change, nil for a delete.
func (c Change) Value() []byte { return c.value }

type changeItem struct {
	key    []byte
	change Change
}

func (i changeItem) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(changeItem).key) < 0
}

// Patch is an ordered set of changes to be applied to a database as one
// unit. The zero value is not usable, use NewPatch.
type Patch struct {
	changes *btree.BTree
}

// NewPatch returns an empty patch.
func NewPatch() *Patch {
	return &Patch{changes: btree.New(patchDegree)}
}

// Put records a put of value at key, replacing any earlier change of the same
// key. Both slices are copied.
func (p *Patch) Put(key, value []byte) {
	p.changes.ReplaceOrInsert(changeItem{key: cp(key), change: PutChange(cp(value))})
}

// Delete records a delete of key, replacing any earlier change of the same
// key.
func (p *Patch) Delete(key []byte) {
	p.changes.ReplaceOrInsert(changeItem{key: cp(key), change: DeleteChange()})
}

// Len returns the number of changed keys.
func (p *Patch) Len() int {
	return p.changes.Len()
}

// Get returns the change recorded for key, if any.
func (p *Patch) Get(key []byte) (Change, bool) {
	item := p.changes.Get(changeItem{key: key})
	if item == nil {
		return Change{}, false
	}
	return item.(changeItem).change, true
}

// Iterate calls fn for every change in ascending key order until fn returns
// false.
func (p *Patch) Iterate(fn func(key []byte, change Change) bool) {
	p.changes.Ascend(func(i btree.Item) bool {
		item := i.(changeItem)
		return fn(item.key, item.change)
	})
}

// validate checks every change before anything is written.
func (p *Patch) validate() error {
	var err error
	p.Iterate(func(key []byte, change Change) bool {
		switch {
		case len(key) == 0:
			err = ErrEmptyKey
		case !change.IsDelete() && change.Value() == nil:
			err = ErrNilValue
		}
		return err == nil
	})
	return err
}
