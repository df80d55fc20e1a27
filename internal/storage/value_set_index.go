package storage

import (
	"github.com/bftledger/ledger/crypto"
)

// ValueSetIndex is a set of values keyed by their sha256 hash.
type ValueSetIndex struct {
	base baseIndex
}

func NewValueSetIndex(view View, name string) *ValueSetIndex {
	return &ValueSetIndex{base: newBaseIndex(view, name, nil)}
}

// Contains reports whether value is a member.
func (s *ValueSetIndex) Contains(value []byte) (bool, error) {
	return s.ContainsByHash(crypto.Checksum(value))
}

// ContainsByHash reports whether a value with hash h is a member.
func (s *ValueSetIndex) ContainsByHash(h crypto.Hash) (bool, error) {
	return s.base.has(h.Bytes())
}

// Get returns the member with hash h, or nil.
func (s *ValueSetIndex) Get(h crypto.Hash) ([]byte, error) {
	return s.base.get(h.Bytes())
}

// Iterator iterates over the members ordered by hash. Keys are the hashes.
func (s *ValueSetIndex) Iterator() (*IndexIterator, error) {
	return s.base.iterator(nil)
}

// Hashes returns the hashes of all members in ascending order.
func (s *ValueSetIndex) Hashes() ([]crypto.Hash, error) {
	it, err := s.Iterator()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var hashes []crypto.Hash
	for ; it.Valid(); it.Next() {
		h, err := crypto.HashFromBytes(it.Key())
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, it.Error()
}

type MutableValueSetIndex struct {
	*ValueSetIndex
	fork *Fork
}

func NewMutableValueSetIndex(fork *Fork, name string) *MutableValueSetIndex {
	return &MutableValueSetIndex{ValueSetIndex: NewValueSetIndex(fork, name), fork: fork}
}

// Insert adds value to the set.
func (s *MutableValueSetIndex) Insert(value []byte) {
	h := crypto.Checksum(value)
	s.fork.Put(s.base.key(h.Bytes()), value)
}

// Remove deletes value from the set.
func (s *MutableValueSetIndex) Remove(value []byte) {
	s.RemoveByHash(crypto.Checksum(value))
}

// RemoveByHash deletes the member with hash h.
func (s *MutableValueSetIndex) RemoveByHash(h crypto.Hash) {
	s.fork.Delete(s.base.key(h.Bytes()))
}

func (s *MutableValueSetIndex) Clear() error {
	return s.base.clear(s.fork)
}
