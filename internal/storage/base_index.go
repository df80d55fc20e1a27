package storage

// baseIndex namespaces every key of an index under its prefix and reads
// through a View, so a fork-backed index sees its pending changes first.
type baseIndex struct {
	view   View
	prefix []byte
}

func newBaseIndex(view View, name string, family []byte) baseIndex {
	return baseIndex{view: view, prefix: indexPrefix(name, family)}
}

func (b baseIndex) key(sub []byte) []byte {
	key := make([]byte, 0, len(b.prefix)+len(sub))
	key = append(key, b.prefix...)
	return append(key, sub...)
}

func (b baseIndex) get(sub []byte) ([]byte, error) {
	return b.view.Get(b.key(sub))
}

func (b baseIndex) has(sub []byte) (bool, error) {
	return b.view.Has(b.key(sub))
}

// iterator walks the index from sub (inclusive) to the end of the namespace.
func (b baseIndex) iterator(from []byte) (*IndexIterator, error) {
	source, err := b.view.Iterator(b.key(from), prefixEnd(b.prefix))
	if err != nil {
		return nil, err
	}
	return &IndexIterator{source: source, prefixLen: len(b.prefix)}, nil
}

// clear deletes every key of the namespace from fork.
func (b baseIndex) clear(fork *Fork) error {
	it, err := b.iterator(nil)
	if err != nil {
		return err
	}
	var keys [][]byte
	for ; it.Valid(); it.Next() {
		keys = append(keys, b.key(it.Key()))
	}
	if err := it.Error(); err != nil {
		it.Close()
		return err
	}
	if err := it.Close(); err != nil {
		return err
	}
	for _, key := range keys {
		fork.Delete(key)
	}
	return nil
}

// IndexIterator iterates over one index in ascending key order. Keys are
// returned without the index prefix.
type IndexIterator struct {
	source    Iterator
	prefixLen int
}

func (it *IndexIterator) Valid() bool   { return it.source.Valid() }
func (it *IndexIterator) Next()         { it.source.Next() }
func (it *IndexIterator) Key() []byte   { return it.source.Key()[it.prefixLen:] }
func (it *IndexIterator) Value() []byte { return it.source.Value() }
func (it *IndexIterator) Error() error  { return it.source.Error() }
func (it *IndexIterator) Close() error  { return it.source.Close() }
