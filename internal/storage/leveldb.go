package storage

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
	dbm "github.com/tendermint/tm-db"
)

// LevelDB is the durable backend. tm-db opens the files and writes atomic
// batches, goleveldb snapshots give each reader an isolated view.
type LevelDB struct {
	db *dbm.GoLevelDB
}

var _ Database = (*LevelDB)(nil)

// NewLevelDB opens (creating if needed) the database name.db inside dir.
func NewLevelDB(name, dir string) (*LevelDB, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, storeError("open", err)
	}
	return &LevelDB{db: db}, nil
}

// Snapshot implements Database.
func (db *LevelDB) Snapshot() (Snapshot, error) {
	snap, err := db.db.DB().GetSnapshot()
	if err != nil {
		return nil, storeError("snapshot", levelError(err))
	}
	return &levelSnapshot{snap: snap}, nil
}

// Fork implements Database.
func (db *LevelDB) Fork() (*Fork, error) {
	snap, err := db.Snapshot()
	if err != nil {
		return nil, err
	}
	return NewFork(snap), nil
}

// Merge implements Database. The whole patch goes into a single synced
// batch.
func (db *LevelDB) Merge(patch *Patch) error {
	if err := patch.validate(); err != nil {
		return storeError("merge", err)
	}

	batch := db.db.NewBatch()
	defer batch.Close()

	var err error
	patch.Iterate(func(key []byte, change Change) bool {
		if change.IsDelete() {
			err = batch.Delete(key)
		} else {
			err = batch.Set(key, change.Value())
		}
		return err == nil
	})
	if err != nil {
		return storeError("merge", err)
	}
	if err := batch.WriteSync(); err != nil {
		return storeError("merge", levelError(err))
	}
	return nil
}

// Close implements Database.
func (db *LevelDB) Close() error {
	if err := db.db.Close(); err != nil {
		return storeError("close", levelError(err))
	}
	return nil
}

func levelError(err error) error {
	if errors.Is(err, leveldb.ErrClosed) {
		return ErrClosed
	}
	return err
}

type levelSnapshot struct {
	snap *leveldb.Snapshot
}

var _ Snapshot = (*levelSnapshot)(nil)

func (s *levelSnapshot) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, storeError("get", ErrEmptyKey)
	}
	value, err := s.snap.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, storeError("get", levelError(err))
	}
	return value, nil
}

func (s *levelSnapshot) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, storeError("has", ErrEmptyKey)
	}
	ok, err := s.snap.Has(key, nil)
	if err != nil {
		return false, storeError("has", levelError(err))
	}
	return ok, nil
}

func (s *levelSnapshot) Iterator(start, end []byte) (Iterator, error) {
	source := s.snap.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return newLevelIterator(source), nil
}

func (s *levelSnapshot) Release() {
	s.snap.Release()
}

type levelIterator struct {
	source iterator.Iterator
	valid  bool
}

func newLevelIterator(source iterator.Iterator) *levelIterator {
	return &levelIterator{source: source, valid: source.Next()}
}

func (it *levelIterator) Valid() bool {
	return it.valid
}

func (it *levelIterator) Next() {
	it.assertIsValid()
	it.valid = it.source.Next()
}

// Key implements Iterator. goleveldb reuses its buffers, so the key is
// copied.
func (it *levelIterator) Key() []byte {
	it.assertIsValid()
	return cp(it.source.Key())
}

func (it *levelIterator) Value() []byte {
	it.assertIsValid()
	return cp(it.source.Value())
}

func (it *levelIterator) Error() error {
	return levelError(it.source.Error())
}

func (it *levelIterator) Close() error {
	it.source.Release()
	it.valid = false
	return nil
}

func (it *levelIterator) assertIsValid() {
	if !it.valid {
		panic("iterator is invalid")
	}
}
