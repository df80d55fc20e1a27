package storage

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestFork(t *testing.T, kvs ...string) (*MemoryDB, *Fork) {
	t.Helper()
	db := NewMemoryDB()
	if len(kvs) > 0 {
		put(t, db, kvs...)
	}
	fork, err := db.Fork()
	require.NoError(t, err)
	return db, fork
}

func TestForkReadsOwnChanges(t *testing.T) {
	_, fork := newTestFork(t, "a", "1", "b", "2")

	fork.Put([]byte("a"), []byte("10"))
	fork.Delete([]byte("b"))
	fork.Put([]byte("c"), []byte("3"))

	assert.Equal(t, []byte("10"), mustGet(t, fork, "a"))
	assert.Nil(t, mustGet(t, fork, "b"))
	assert.Equal(t, []byte("3"), mustGet(t, fork, "c"))

	ok, err := fork.Has([]byte("b"))
	require.NoError(t, err)
	assert.False(t, ok)

	it, err := fork.Iterator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a=10", "c=3"}, collect(t, it))
}

func TestForkPutNilValue(t *testing.T) {
	db, fork := newTestFork(t)
	fork.Put([]byte("a"), nil)

	value := mustGet(t, fork, "a")
	assert.NotNil(t, value)
	assert.Empty(t, value)
	ok, err := fork.Has([]byte("a"))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, db.Merge(fork.Patch()))
	value = mustGet(t, mustSnapshot(t, db), "a")
	assert.NotNil(t, value)
	assert.Empty(t, value)
}

func TestForkDoesNotTouchDatabase(t *testing.T) {
	db, fork := newTestFork(t, "a", "1")
	fork.Put([]byte("a"), []byte("2"))

	assert.Equal(t, []byte("1"), mustGet(t, mustSnapshot(t, db), "a"))

	require.NoError(t, db.Merge(fork.Patch()))
	assert.Equal(t, []byte("2"), mustGet(t, mustSnapshot(t, db), "a"))
}

func TestForkIteratorIsStable(t *testing.T) {
	_, fork := newTestFork(t, "a", "1")
	fork.Put([]byte("b"), []byte("2"))

	it, err := fork.Iterator(nil, nil)
	require.NoError(t, err)
	fork.Put([]byte("c"), []byte("3"))
	assert.Equal(t, []string{"a=1", "b=2"}, collect(t, it))
}

func TestForkCheckpointRollback(t *testing.T) {
	_, fork := newTestFork(t, "a", "1")

	fork.Put([]byte("b"), []byte("2"))
	fork.Rollback()
	assert.Nil(t, mustGet(t, fork, "b"))
	assert.Equal(t, 0, fork.Patch().Len())

	fork.Put([]byte("b"), []byte("2"))
	fork.Checkpoint()
	fork.Put([]byte("c"), []byte("3"))
	fork.Delete([]byte("a"))
	fork.Rollback()

	assert.Equal(t, []byte("1"), mustGet(t, fork, "a"))
	assert.Equal(t, []byte("2"), mustGet(t, fork, "b"))
	assert.Nil(t, mustGet(t, fork, "c"))

	// A second rollback goes back to the same checkpoint.
	fork.Put([]byte("d"), []byte("4"))
	fork.Rollback()
	assert.Nil(t, mustGet(t, fork, "d"))
	assert.Equal(t, []byte("2"), mustGet(t, fork, "b"))
}

func TestPatch(t *testing.T) {
	patch := NewPatch()
	patch.Put([]byte("b"), []byte("2"))
	patch.Put([]byte("a"), []byte("1"))
	patch.Delete([]byte("c"))
	patch.Put([]byte("a"), []byte("11"))

	assert.Equal(t, 3, patch.Len())

	change, ok := patch.Get([]byte("a"))
	require.True(t, ok)
	assert.False(t, change.IsDelete())
	assert.Equal(t, []byte("11"), change.Value())

	change, ok = patch.Get([]byte("c"))
	require.True(t, ok)
	assert.True(t, change.IsDelete())

	_, ok = patch.Get([]byte("x"))
	assert.False(t, ok)

	var keys []string
	patch.Iterate(func(key []byte, _ Change) bool {
		keys = append(keys, string(key))
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestForkProperties(t *testing.T) {
	rapid.Check(t, rapid.Run(&forkModel{}))
}

// forkModel checks a fork over a populated database against a plain map.
type forkModel struct {
	db    *MemoryDB
	fork  *Fork
	model map[string]string
	saved map[string]string
}

var forkKeys = []string{"a", "b", "c", "d", "e", "f"}

func (m *forkModel) Init(t *rapid.T) {
	m.db = NewMemoryDB()
	m.model = map[string]string{}
	patch := NewPatch()
	for _, k := range forkKeys {
		if rapid.Bool().Draw(t, "present").(bool) {
			v := rapid.StringN(0, 4, -1).Draw(t, "value").(string)
			patch.Put([]byte(k), []byte(v))
			m.model[k] = v
		}
	}
	if err := m.db.Merge(patch); err != nil {
		t.Fatal(err)
	}
	fork, err := m.db.Fork()
	if err != nil {
		t.Fatal(err)
	}
	m.fork = fork
	m.saved = copyModel(m.model)
}

func (m *forkModel) Put(t *rapid.T) {
	k := rapid.SampledFrom(forkKeys).Draw(t, "key").(string)
	v := rapid.StringN(0, 4, -1).Draw(t, "value").(string)
	m.fork.Put([]byte(k), []byte(v))
	m.model[k] = v
}

func (m *forkModel) Delete(t *rapid.T) {
	k := rapid.SampledFrom(forkKeys).Draw(t, "key").(string)
	m.fork.Delete([]byte(k))
	delete(m.model, k)
}

func (m *forkModel) Checkpoint(t *rapid.T) {
	m.fork.Checkpoint()
	m.saved = copyModel(m.model)
}

func (m *forkModel) Rollback(t *rapid.T) {
	m.fork.Rollback()
	m.model = copyModel(m.saved)
}

func (m *forkModel) Merge(t *rapid.T) {
	if err := m.db.Merge(m.fork.Patch()); err != nil {
		t.Fatal(err)
	}
	snap, err := m.db.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	m.fork = NewFork(snap)
	m.saved = copyModel(m.model)
}

func (m *forkModel) Check(t *rapid.T) {
	for _, k := range forkKeys {
		value, err := m.fork.Get([]byte(k))
		require.NoError(t, err)
		expected, ok := m.model[k]
		if !ok {
			require.Nil(t, value, k)
			continue
		}
		require.Equal(t, expected, string(value), k)
	}

	var expected []string
	for k, v := range m.model {
		expected = append(expected, k+"="+v)
	}
	sort.Strings(expected)

	it, err := m.fork.Iterator(nil, nil)
	require.NoError(t, err)
	var actual []string
	for ; it.Valid(); it.Next() {
		actual = append(actual, string(it.Key())+"="+string(it.Value()))
	}
	require.NoError(t, it.Close())
	require.Equal(t, expected, actual)
}

func copyModel(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
