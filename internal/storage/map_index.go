package storage

// MapIndex maps arbitrary byte keys to values.
type MapIndex struct {
	base baseIndex
}

// NewMapIndex returns a read-only map named name over view.
func NewMapIndex(view View, name string) *MapIndex {
	return &MapIndex{base: newBaseIndex(view, name, nil)}
}

// NewMapIndexInFamily returns a read-only map that belongs to the family of
// maps named name, distinguished by family.
func NewMapIndexInFamily(view View, name string, family []byte) *MapIndex {
	return &MapIndex{base: newBaseIndex(view, name, family)}
}

// Get returns the value at key or nil.
func (m *MapIndex) Get(key []byte) ([]byte, error) {
	return m.base.get(key)
}

// Contains reports whether key is present.
func (m *MapIndex) Contains(key []byte) (bool, error) {
	return m.base.has(key)
}

// Iterator iterates over the whole map in ascending key order.
func (m *MapIndex) Iterator() (*IndexIterator, error) {
	return m.base.iterator(nil)
}

// IteratorFrom iterates starting at the first key not less than from.
func (m *MapIndex) IteratorFrom(from []byte) (*IndexIterator, error) {
	return m.base.iterator(from)
}

// Keys returns all keys of the map in ascending order.
func (m *MapIndex) Keys() ([][]byte, error) {
	it, err := m.Iterator()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var keys [][]byte
	for ; it.Valid(); it.Next() {
		keys = append(keys, cp(it.Key()))
	}
	return keys, it.Error()
}

// MutableMapIndex is a MapIndex that writes through a fork.
type MutableMapIndex struct {
	*MapIndex
	fork *Fork
}

func NewMutableMapIndex(fork *Fork, name string) *MutableMapIndex {
	return &MutableMapIndex{MapIndex: NewMapIndex(fork, name), fork: fork}
}

func NewMutableMapIndexInFamily(fork *Fork, name string, family []byte) *MutableMapIndex {
	return &MutableMapIndex{MapIndex: NewMapIndexInFamily(fork, name, family), fork: fork}
}

// Put stores value at key.
func (m *MutableMapIndex) Put(key, value []byte) {
	m.fork.Put(m.base.key(key), value)
}

// Remove deletes key.
func (m *MutableMapIndex) Remove(key []byte) {
	m.fork.Delete(m.base.key(key))
}

// Clear deletes every key of the map.
func (m *MutableMapIndex) Clear() error {
	return m.base.clear(m.fork)
}
