package storage

// KeySetIndex is a set of byte keys. Members are stored with empty values.
type KeySetIndex struct {
	base baseIndex
}

func NewKeySetIndex(view View, name string) *KeySetIndex {
	return &KeySetIndex{base: newBaseIndex(view, name, nil)}
}

// Contains reports whether key is a member.
func (s *KeySetIndex) Contains(key []byte) (bool, error) {
	return s.base.has(key)
}

// Iterator iterates over the members in ascending order. Values are empty.
func (s *KeySetIndex) Iterator() (*IndexIterator, error) {
	return s.base.iterator(nil)
}

type MutableKeySetIndex struct {
	*KeySetIndex
	fork *Fork
}

func NewMutableKeySetIndex(fork *Fork, name string) *MutableKeySetIndex {
	return &MutableKeySetIndex{KeySetIndex: NewKeySetIndex(fork, name), fork: fork}
}

func (s *MutableKeySetIndex) Insert(key []byte) {
	s.fork.Put(s.base.key(key), []byte{})
}

func (s *MutableKeySetIndex) Remove(key []byte) {
	s.fork.Delete(s.base.key(key))
}

func (s *MutableKeySetIndex) Clear() error {
	return s.base.clear(s.fork)
}
