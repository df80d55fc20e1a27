package storage

// Entry is an index holding at most one value.
type Entry struct {
	base baseIndex
}

// NewEntry returns a read-only entry named name over view.
func NewEntry(view View, name string) *Entry {
	return &Entry{base: newBaseIndex(view, name, nil)}
}

// Get returns the stored value or nil if the entry is unset.
func (e *Entry) Get() ([]byte, error) {
	return e.base.get(nil)
}

// Exists reports whether the entry holds a value.
func (e *Entry) Exists() (bool, error) {
	return e.base.has(nil)
}

// MutableEntry is an Entry that writes through a fork.
type MutableEntry struct {
	*Entry
	fork *Fork
}

// NewMutableEntry returns a writable entry named name over fork.
func NewMutableEntry(fork *Fork, name string) *MutableEntry {
	return &MutableEntry{Entry: NewEntry(fork, name), fork: fork}
}

// Set stores value in the entry.
func (e *MutableEntry) Set(value []byte) {
	e.fork.Put(e.base.key(nil), value)
}

// Remove unsets the entry.
func (e *MutableEntry) Remove() {
	e.fork.Delete(e.base.key(nil))
}
