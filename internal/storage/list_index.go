package storage

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when a list position is not below its
// length.
var ErrIndexOutOfRange = errors.New("list index out of range")

// ListIndex is a dense, 0-based list of values. The length lives at the bare
// prefix key and item i at the prefix followed by Uint64Key(i).
type ListIndex struct {
	base baseIndex
}

// NewListIndex returns a read-only list named name over view.
func NewListIndex(view View, name string) *ListIndex {
	return &ListIndex{base: newBaseIndex(view, name, nil)}
}

// NewListIndexInFamily returns a read-only list that belongs to the family of
// lists named name, distinguished by family.
func NewListIndexInFamily(view View, name string, family []byte) *ListIndex {
	return &ListIndex{base: newBaseIndex(view, name, family)}
}

// Len returns the number of items.
func (l *ListIndex) Len() (uint64, error) {
	bz, err := l.base.get(nil)
	if err != nil || bz == nil {
		return 0, err
	}
	n, err := DecodeUint64Key(bz)
	if err != nil {
		return 0, fmt.Errorf("list length: %w", err)
	}
	return n, nil
}

// IsEmpty reports whether the list has no items.
func (l *ListIndex) IsEmpty() (bool, error) {
	n, err := l.Len()
	return n == 0, err
}

// Get returns item i, or nil if i is out of range.
func (l *ListIndex) Get(i uint64) ([]byte, error) {
	n, err := l.Len()
	if err != nil || i >= n {
		return nil, err
	}
	return l.base.get(Uint64Key(i))
}

// Last returns the last item, or nil if the list is empty.
func (l *ListIndex) Last() ([]byte, error) {
	n, err := l.Len()
	if err != nil || n == 0 {
		return nil, err
	}
	return l.base.get(Uint64Key(n - 1))
}

// Iterator iterates over all items in position order. Iterator keys are
// positions encoded with Uint64Key.
func (l *ListIndex) Iterator() (*IndexIterator, error) {
	return l.IteratorFrom(0)
}

// IteratorFrom iterates over the items starting at position from.
func (l *ListIndex) IteratorFrom(from uint64) (*IndexIterator, error) {
	return l.base.iterator(Uint64Key(from))
}

// Values returns every item in position order.
func (l *ListIndex) Values() ([][]byte, error) {
	it, err := l.Iterator()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var values [][]byte
	for ; it.Valid(); it.Next() {
		values = append(values, cp(it.Value()))
	}
	return values, it.Error()
}

// MutableListIndex is a ListIndex that writes through a fork.
type MutableListIndex struct {
	*ListIndex
	fork *Fork
}

func NewMutableListIndex(fork *Fork, name string) *MutableListIndex {
	return &MutableListIndex{ListIndex: NewListIndex(fork, name), fork: fork}
}

func NewMutableListIndexInFamily(fork *Fork, name string, family []byte) *MutableListIndex {
	return &MutableListIndex{ListIndex: NewListIndexInFamily(fork, name, family), fork: fork}
}

// Push appends value to the end of the list.
func (l *MutableListIndex) Push(value []byte) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	l.fork.Put(l.base.key(Uint64Key(n)), value)
	l.setLen(n + 1)
	return nil
}

// Extend appends every value in order.
func (l *MutableListIndex) Extend(values [][]byte) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	for _, value := range values {
		l.fork.Put(l.base.key(Uint64Key(n)), value)
		n++
	}
	l.setLen(n)
	return nil
}

// Set replaces item i. It fails with ErrIndexOutOfRange if i is not below
// the length.
func (l *MutableListIndex) Set(i uint64, value []byte) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	if i >= n {
		return fmt.Errorf("set %d of %d: %w", i, n, ErrIndexOutOfRange)
	}
	l.fork.Put(l.base.key(Uint64Key(i)), value)
	return nil
}

// Pop removes and returns the last item, or nil if the list is empty.
func (l *MutableListIndex) Pop() ([]byte, error) {
	n, err := l.Len()
	if err != nil || n == 0 {
		return nil, err
	}
	last, err := l.base.get(Uint64Key(n - 1))
	if err != nil {
		return nil, err
	}
	l.fork.Delete(l.base.key(Uint64Key(n - 1)))
	l.setLen(n - 1)
	return last, nil
}

// Truncate shortens the list to n items. Longer requests are no-ops.
func (l *MutableListIndex) Truncate(n uint64) error {
	length, err := l.Len()
	if err != nil {
		return err
	}
	if n >= length {
		return nil
	}
	for i := n; i < length; i++ {
		l.fork.Delete(l.base.key(Uint64Key(i)))
	}
	l.setLen(n)
	return nil
}

// Clear removes all items and the stored length.
func (l *MutableListIndex) Clear() error {
	return l.base.clear(l.fork)
}

func (l *MutableListIndex) setLen(n uint64) {
	l.fork.Put(l.base.key(nil), Uint64Key(n))
}
